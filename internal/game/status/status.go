// Package status 定义玩家状态、公开状态快照以及状态投影。
//
// 投影出来的快照都是深拷贝，交给通知方之后不再与引擎内部状态共享内存。
package status

import (
	"slices"

	"github.com/palemoky/daifugo/internal/game/card"
)

// NoPlayer 座位未分配时的玩家 ID
const NoPlayer = -1

// Phase 游戏阶段
type Phase int

const (
	AcceptingPlayer Phase = iota // 等待玩家加入
	Trading                      // 交换手牌
	BeforePlaying                // 等待出牌
	AfterPlaying                 // 出牌后结算
	End                          // 结束
)

var phaseNames = map[Phase]string{
	AcceptingPlayer: "accepting_player",
	Trading:         "trading",
	BeforePlaying:   "before_playing",
	AfterPlaying:    "after_playing",
	End:             "end",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// RoleRank 身份，按从高到低排列
type RoleRank int

const (
	Daifugo   RoleRank = iota // 大富豪
	Fugo                      // 富豪
	Heimin                    // 平民
	Hinmin                    // 贫民
	Daihinmin                 // 大贫民
)

var roleNames = map[RoleRank]string{
	Daifugo:   "daifugo",
	Fugo:      "fugo",
	Heimin:    "heimin",
	Hinmin:    "hinmin",
	Daihinmin: "daihinmin",
}

func (r RoleRank) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// Counterpart 返回交换手牌的对手身份，平民没有对手
func (r RoleRank) Counterpart() (RoleRank, bool) {
	switch r {
	case Daifugo:
		return Daihinmin, true
	case Daihinmin:
		return Daifugo, true
	case Fugo:
		return Hinmin, true
	case Hinmin:
		return Fugo, true
	default:
		return Heimin, false
	}
}

// TradingCount 该身份在交换阶段需要交出的张数
func (r RoleRank) TradingCount() int {
	switch r {
	case Daifugo:
		return 2
	case Fugo:
		return 1
	default:
		return 0
	}
}

// Seat 座位，PlayerID 为 NoPlayer 表示空位
type Seat struct {
	PlayerID int `json:"player_id"`
}

// PrivateStatus 只发给本人的玩家状态
type PrivateStatus struct {
	ID               int         `json:"id"`
	Seat             int         `json:"seat"`
	Role             RoleRank    `json:"role"`
	Hand             []card.Card `json:"hand"`
	TradingCardCount int         `json:"trading_card_count"`
	HasPassed        bool        `json:"has_passed"`
}

// NewPrivateStatus 新加入玩家的初始状态
func NewPrivateStatus(id int) *PrivateStatus {
	return &PrivateStatus{ID: id, Seat: NoPlayer, Role: Heimin}
}

// Clone 深拷贝
func (p *PrivateStatus) Clone() PrivateStatus {
	c := *p
	c.Hand = slices.Clone(p.Hand)
	return c
}

// IsOut 手牌已出完
func (p *PrivateStatus) IsOut() bool {
	return len(p.Hand) == 0
}

// PublicPlayerStatus 所有人可见的玩家状态，不含手牌内容
type PublicPlayerStatus struct {
	ID        int      `json:"id"`
	Seat      int      `json:"seat"`
	Role      RoleRank `json:"role"`
	CardCount int      `json:"card_count"`
	HasPassed bool     `json:"has_passed"`
}

// PublicStatus 公开的牌桌状态
type PublicStatus struct {
	Round        int                  `json:"round"`
	Phase        Phase                `json:"phase"`
	Turn         int                  `json:"turn"`
	Field        []card.Card          `json:"field"`
	HasFlowed    bool                 `json:"has_flowed"`
	IsElevenBack bool                 `json:"is_eleven_back"`
	IsKakumei    bool                 `json:"is_kakumei"`
	IsShibari    bool                 `json:"is_shibari"`
	Players      []PublicPlayerStatus `json:"players"`
}

// PlayerBySeat 按座位查找公开状态
func (s PublicStatus) PlayerBySeat(seat int) (PublicPlayerStatus, bool) {
	for _, p := range s.Players {
		if p.Seat == seat {
			return p, true
		}
	}
	return PublicPlayerStatus{}, false
}

// EndMessage 结束通知类型
type EndMessage int

const (
	NotEnd   EndMessage = iota // 未结束
	EndRound                   // 本局结束
	EndGame                    // 整场结束
)

var endNames = map[EndMessage]string{
	NotEnd:   "not_end",
	EndRound: "end_round",
	EndGame:  "end_game",
}

func (e EndMessage) String() string {
	if name, ok := endNames[e]; ok {
		return name
	}
	return "unknown"
}
