package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/daifugo/internal/game/engine"
	"github.com/palemoky/daifugo/internal/game/status"
)

func TestHistoryStore(t *testing.T) {
	dsn := os.Getenv("DAIFUGO_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("DAIFUGO_TEST_POSTGRES_DSN not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	h, err := NewHistoryStore(ctx, dsn)
	require.NoError(t, err)
	defer h.Close()
	require.NoError(t, h.Migrate(ctx))

	result := engine.RoundResult{
		GameID:      uuid.NewString(),
		Round:       1,
		FinishOrder: []int{1, 0, 2},
		Roles:       map[int]status.RoleRank{1: status.Daifugo, 0: status.Heimin, 2: status.Daihinmin},
		EndedAt:     time.Now().Add(time.Hour).UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, h.RecordRound(ctx, result))
	// 重复记录被忽略
	require.NoError(t, h.RecordRound(ctx, result))

	recent, err := h.RecentRounds(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, result.GameID, recent[0].GameID)
	assert.Equal(t, result.FinishOrder, recent[0].FinishOrder)
	assert.Equal(t, result.Roles, recent[0].Roles)
	assert.True(t, result.EndedAt.Equal(recent[0].EndedAt))
}

func TestNewHistoryStore_BadDSN(t *testing.T) {
	t.Parallel()

	_, err := NewHistoryStore(context.Background(), "not a dsn ::")
	assert.Error(t, err)
}
