package client

import (
	"fmt"

	"github.com/palemoky/daifugo/internal/game/card"
	"github.com/palemoky/daifugo/internal/game/rule"
	"github.com/palemoky/daifugo/internal/game/status"
	"github.com/palemoky/daifugo/internal/protocol"
	"github.com/palemoky/daifugo/internal/protocol/codec"
)

// GameState 客户端维护的牌局状态，由服务器消息驱动
type GameState struct {
	PlayerID int
	TableID  string
	Joined   bool

	Public  status.PublicStatus
	Private status.PrivateStatus

	LastEnd  status.EndMessage
	Finished bool

	// 最近一条提示，例如被拒绝的原因
	Notice string

	CardCounter *CardCounter
}

// NewGameState 创建空的牌局状态
func NewGameState() *GameState {
	return &GameState{
		PlayerID:    status.NoPlayer,
		CardCounter: NewCardCounter(),
	}
}

// Apply 根据服务器消息更新状态
func (gs *GameState) Apply(msg *protocol.Message) error {
	switch msg.Type {
	case protocol.MsgJoined:
		p, err := codec.ParsePayload[protocol.JoinedPayload](msg)
		if err != nil {
			return err
		}
		gs.PlayerID, gs.TableID, gs.Joined = p.PlayerID, p.TableID, true
		gs.Notice = fmt.Sprintf("已入座，玩家 %d", p.PlayerID)

	case protocol.MsgJoinRejected, protocol.MsgError:
		p, err := codec.ParsePayload[protocol.ErrorPayload](msg)
		if err != nil {
			return err
		}
		gs.Notice = p.Message

	case protocol.MsgSubmitResult:
		p, err := codec.ParsePayload[protocol.SubmitResultPayload](msg)
		if err != nil {
			return err
		}
		if p.Accepted {
			gs.Notice = ""
		} else {
			gs.Notice = p.Message
		}

	case protocol.MsgStatus:
		p, err := codec.ParsePayload[protocol.StatusPayload](msg)
		if err != nil {
			return err
		}
		if p.Public.Round != gs.Public.Round {
			gs.CardCounter.Reset()
		}
		gs.Public, gs.Private = p.Public, p.Private
		card.SortByRank(gs.Private.Hand)
		gs.CardCounter.Observe(p.Public.Field)

	case protocol.MsgEnd:
		p, err := codec.ParsePayload[protocol.EndPayload](msg)
		if err != nil {
			return err
		}
		gs.LastEnd = p.Kind
		if p.Kind == status.EndGame {
			gs.Finished = true
		}
	}
	return nil
}

// IsMyTurn 是否轮到自己出牌
func (gs *GameState) IsMyTurn() bool {
	return gs.Joined && gs.Public.Phase == status.BeforePlaying && gs.Public.Turn == gs.Private.Seat
}

// MustTrade 交换阶段是否还需要交出手牌
func (gs *GameState) MustTrade() bool {
	return gs.Public.Phase == status.Trading && gs.Private.TradingCardCount > 0
}

// Hint 提示：交换阶段给出最弱的牌，出牌阶段给出能压过场上的最小牌组
func (gs *GameState) Hint() []card.Card {
	switch {
	case gs.MustTrade():
		return rule.WeakestCards(gs.Private.Hand, gs.Private.TradingCardCount)
	case gs.IsMyTurn():
		return rule.FindSmallestBeatingCards(gs.Private.Hand, gs.Public.Field)
	default:
		return nil
	}
}
