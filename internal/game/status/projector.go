package status

import (
	"slices"

	"github.com/palemoky/daifugo/internal/game/card"
)

// Table 投影所需的牌桌视图
type Table struct {
	Round     int
	Phase     Phase
	Turn      int
	FieldTop  []card.Card
	HasFlowed bool
	Players   []*PrivateStatus
}

// MakePublicStatus 生成公开快照，玩家按座位排列
func MakePublicStatus(t Table) PublicStatus {
	players := make([]PublicPlayerStatus, 0, len(t.Players))
	for _, p := range t.Players {
		players = append(players, MakePublicPlayerStatus(p))
	}
	slices.SortFunc(players, func(a, b PublicPlayerStatus) int {
		return a.Seat - b.Seat
	})

	return PublicStatus{
		Round:     t.Round,
		Phase:     t.Phase,
		Turn:      t.Turn,
		Field:     slices.Clone(t.FieldTop),
		HasFlowed: t.HasFlowed,
		Players:   players,
	}
}

// MakePublicPlayerStatus 从私有状态中提取公开部分
func MakePublicPlayerStatus(p *PrivateStatus) PublicPlayerStatus {
	return PublicPlayerStatus{
		ID:        p.ID,
		Seat:      p.Seat,
		Role:      p.Role,
		CardCount: len(p.Hand),
		HasPassed: p.HasPassed,
	}
}

// MakePrivateStatus 私有快照
func MakePrivateStatus(p *PrivateStatus) PrivateStatus {
	return p.Clone()
}
