package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/palemoky/daifugo/internal/game/engine"
	"github.com/palemoky/daifugo/internal/testutil"
)

func TestRecorders_WritesAll(t *testing.T) {
	t.Parallel()

	failing := &testutil.MockRecorder{}
	failing.On("RecordRound", mock.Anything, mock.Anything).Return(errors.New("disk full"))
	ok := &testutil.SimpleRecorder{}

	result := engine.RoundResult{GameID: "g", Round: 1, FinishOrder: []int{0, 1}}
	err := Recorders{failing, nil, ok}.RecordRound(context.Background(), result)

	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, []engine.RoundResult{result}, ok.Results())
	failing.AssertNumberOfCalls(t, "RecordRound", 1)
}

func TestRecorders_Empty(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Recorders{}.RecordRound(context.Background(), engine.RoundResult{}))
}
