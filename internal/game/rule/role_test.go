package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/palemoky/daifugo/internal/game/status"
)

func TestRolesByFinishOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n        int
		expected []status.RoleRank
	}{
		{1, []status.RoleRank{status.Heimin}},
		{2, []status.RoleRank{status.Daifugo, status.Daihinmin}},
		{3, []status.RoleRank{status.Daifugo, status.Heimin, status.Daihinmin}},
		{4, []status.RoleRank{status.Daifugo, status.Fugo, status.Hinmin, status.Daihinmin}},
		{5, []status.RoleRank{status.Daifugo, status.Fugo, status.Heimin, status.Hinmin, status.Daihinmin}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, RolesByFinishOrder(tt.n), "n=%d", tt.n)
	}
}
