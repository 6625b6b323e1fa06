package engine

import (
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/daifugo/internal/apperrors"
	"github.com/palemoky/daifugo/internal/game/card"
	"github.com/palemoky/daifugo/internal/game/rule"
	"github.com/palemoky/daifugo/internal/game/status"
)

// receivedJoinRequest 处理入座请求，满员后自动开局
func (e *Engine) receivedJoinRequest() result {
	if e.phase != status.AcceptingPlayer || !e.accepting {
		return result{playerID: status.NoPlayer, err: apperrors.ErrNotAccepting}
	}
	if len(e.players) >= e.cfg.PlayerCount {
		return result{playerID: status.NoPlayer, err: apperrors.ErrTableFull}
	}

	id := len(e.players)
	e.players = append(e.players, status.NewPrivateStatus(id))
	e.log.Info("✅ 玩家入座", zap.Int("player_id", id), zap.Int("joined", len(e.players)))

	if len(e.players) == e.cfg.PlayerCount {
		e.closeAcceptance()
	}
	return result{playerID: id}
}

// closeAcceptance 截止报名。人数不足时直接结束
func (e *Engine) closeAcceptance() {
	e.accepting = false
	e.stopTimer()

	if len(e.players) < e.cfg.MinPlayers {
		e.log.Warn("玩家不足，牌局取消",
			zap.Int("joined", len(e.players)), zap.Int("min_players", e.cfg.MinPlayers))
		e.phase = status.End
		e.pushEnd(status.EndGame)
		return
	}

	e.seats = make([]status.Seat, len(e.players))
	rule.AssignSeats(e.players, e.seats)
	e.round = 1
	e.startTrading()
}

// startTrading 重新洗牌发牌，按身份设置需要交换的张数
func (e *Engine) startTrading() {
	e.phase = status.Trading
	e.field = nil
	e.flowed = nil
	e.hasFlowed = false
	e.finishOrder = nil
	e.turn = status.NoPlayer

	for _, p := range e.players {
		p.Hand = nil
		p.HasPassed = false
		p.TradingCardCount = p.Role.TradingCount()
	}

	e.deck = card.NewDeck()
	e.deck.Shuffle()
	rule.DealCards(&e.deck, e.players)

	e.log.Info("🃏 发牌完成", zap.Int("round", e.round))
	e.publish()

	if e.pendingTrades() == 0 {
		e.startPlaying()
		return
	}
	e.armTimer(e.cfg.TradeTimeout)
}

func (e *Engine) pendingTrades() int {
	n := 0
	for _, p := range e.players {
		if p.TradingCardCount > 0 {
			n++
		}
	}
	return n
}

// receivedTradingCards 处理交换。无论成功与否，提交者的交换张数都清零
func (e *Engine) receivedTradingCards(p *status.PrivateStatus, cards []card.Card) error {
	if p.TradingCardCount == 0 {
		return apperrors.ErrTradeRejected
	}
	count := p.TradingCardCount
	p.TradingCardCount = 0
	defer e.afterTrade()

	counterRole, ok := p.Role.Counterpart()
	if !ok {
		return apperrors.ErrTradeRejected
	}
	opponent := e.playerWithRole(counterRole)
	if opponent == nil || len(cards) != count {
		e.log.Info("交换被拒绝", zap.Int("player_id", p.ID), zap.Int("expected", count), zap.Int("got", len(cards)))
		return apperrors.ErrTradeRejected
	}

	giver, receiver, ok := rule.TradeCards(p.Hand, cards, opponent.Hand)
	if !ok {
		e.log.Info("交换被拒绝", zap.Int("player_id", p.ID), zap.String("cards", card.Format(cards)))
		return apperrors.ErrTradeRejected
	}
	p.Hand, opponent.Hand = giver, receiver
	e.log.Info("🔁 交换完成", zap.Int("from", p.ID), zap.Int("to", opponent.ID), zap.Int("count", count))
	return nil
}

func (e *Engine) afterTrade() {
	e.publish()
	if e.pendingTrades() == 0 {
		e.stopTimer()
		e.startPlaying()
	}
}

// startPlaying 第一局从 0 号座位开始，之后由大贫民先出
func (e *Engine) startPlaying() {
	e.turn = 0
	if e.round > 1 {
		if p := e.playerWithRole(status.Daihinmin); p != nil {
			e.turn = p.Seat
		}
	}
	e.beforePlaying()
}

func (e *Engine) beforePlaying() {
	e.phase = status.BeforePlaying
	e.publish()
	e.armTimer(e.cfg.TurnTimeout)
}

// receivedPlayingCards 处理出牌。不合法的出牌视为不出
func (e *Engine) receivedPlayingCards(p *status.PrivateStatus, cards []card.Card) error {
	if p.Seat != e.turn {
		return apperrors.ErrNotYourTurn
	}
	e.stopTimer()

	var err error
	if rule.IsPlayLegal(cards, p.Hand, e.fieldTop()) {
		e.field = append(e.field, slices.Clone(cards))
		p.Hand = card.Remove(p.Hand, cards)
		e.hasFlowed = false
		for _, other := range e.players {
			other.HasPassed = false
		}
		if p.IsOut() {
			e.finishOrder = append(e.finishOrder, p.ID)
			e.log.Info("🏁 玩家出完手牌", zap.Int("player_id", p.ID), zap.Int("place", len(e.finishOrder)))
		}
	} else {
		p.HasPassed = true
		err = apperrors.ErrInvalidCards
		if e.allPassedOrOut() {
			e.flow()
		}
	}

	e.phase = status.AfterPlaying
	e.afterPlaying()
	return err
}

func (e *Engine) allPassedOrOut() bool {
	for _, p := range e.players {
		if !p.HasPassed && !p.IsOut() {
			return false
		}
	}
	return true
}

// flow 场上的牌全部流掉
func (e *Engine) flow() {
	for _, play := range e.field {
		e.flowed = append(e.flowed, play...)
	}
	e.field = nil
	e.hasFlowed = true
	for _, p := range e.players {
		p.HasPassed = false
	}
	e.log.Debug("场上的牌流掉", zap.Int("flowed", len(e.flowed)))
}

// afterPlaying 判断本局是否结束，否则把出牌权交给下一个还有手牌的座位
func (e *Engine) afterPlaying() {
	e.publish()

	if e.holders() <= 1 {
		e.endRound()
		return
	}

	next, ok := e.nextTurn()
	if !ok {
		e.log.Error("出牌权无法移交，牌局强制结束",
			zap.Int("turn", e.turn), zap.Int("holders", e.holders()))
		e.phase = status.End
		e.pushEnd(status.EndGame)
		return
	}
	e.turn = next
	e.beforePlaying()
}

func (e *Engine) holders() int {
	n := 0
	for _, p := range e.players {
		if !p.IsOut() {
			n++
		}
	}
	return n
}

// nextTurn 从当前座位往后找下一个还有手牌的座位，绕回当前座位说明没有可移交的玩家
func (e *Engine) nextTurn() (int, bool) {
	n := len(e.seats)
	for i := 1; i < n; i++ {
		seat := (e.turn + i) % n
		if p := e.playerAtSeat(seat); p != nil && !p.IsOut() {
			return seat, true
		}
	}
	return e.turn, false
}

// endRound 结算身份，未到最后一局则开始下一局
func (e *Engine) endRound() {
	for _, p := range rule.BySeat(e.players) {
		if !slices.Contains(e.finishOrder, p.ID) {
			e.finishOrder = append(e.finishOrder, p.ID)
		}
	}

	roles := rule.RolesByFinishOrder(len(e.finishOrder))
	res := RoundResult{
		GameID:      e.id,
		Round:       e.round,
		FinishOrder: slices.Clone(e.finishOrder),
		Roles:       make(map[int]status.RoleRank, len(roles)),
		EndedAt:     time.Now(),
	}
	for i, id := range e.finishOrder {
		e.players[id].Role = roles[i]
		res.Roles[id] = roles[i]
	}
	e.record(res)
	e.log.Info("🎉 本局结束", zap.Int("round", e.round), zap.Ints("finish_order", res.FinishOrder))

	if e.round < e.cfg.Rounds {
		e.pushEnd(status.EndRound)
		e.round++
		e.startTrading()
		return
	}
	e.phase = status.End
	e.stopTimer()
	e.publish()
	e.pushEnd(status.EndGame)
}

// receivedCards 按当前阶段分派提交的牌
func (e *Engine) receivedCards(playerID int, cards []card.Card) error {
	p := e.player(playerID)
	if p == nil {
		return apperrors.ErrUnknownPlayer
	}
	switch e.phase {
	case status.Trading:
		return e.receivedTradingCards(p, cards)
	case status.BeforePlaying:
		return e.receivedPlayingCards(p, cards)
	case status.End:
		return apperrors.ErrGameEnded
	default:
		return apperrors.ErrWrongPhase
	}
}

// onTimeout 等待超时：截止报名、自动交换或自动不出
func (e *Engine) onTimeout() {
	switch e.phase {
	case status.AcceptingPlayer:
		e.log.Info("⏰ 等待玩家超时", zap.Int("joined", len(e.players)))
		e.closeAcceptance()
	case status.Trading:
		for _, p := range e.players {
			if e.phase != status.Trading {
				break
			}
			if p.TradingCardCount > 0 {
				e.log.Info("⏰ 交换超时，自动交出最小的牌", zap.Int("player_id", p.ID))
				_ = e.receivedTradingCards(p, rule.WeakestCards(p.Hand, p.TradingCardCount))
			}
		}
	case status.BeforePlaying:
		if p := e.playerAtSeat(e.turn); p != nil {
			e.log.Info("⏰ 出牌超时，自动不出", zap.Int("player_id", p.ID))
			_ = e.receivedPlayingCards(p, nil)
		}
	}
}

func (e *Engine) fieldTop() []card.Card {
	if len(e.field) == 0 {
		return nil
	}
	return e.field[len(e.field)-1]
}

func (e *Engine) player(id int) *status.PrivateStatus {
	if id < 0 || id >= len(e.players) {
		return nil
	}
	return e.players[id]
}

func (e *Engine) playerAtSeat(seat int) *status.PrivateStatus {
	if seat < 0 || seat >= len(e.seats) {
		return nil
	}
	return e.player(e.seats[seat].PlayerID)
}

func (e *Engine) playerWithRole(role status.RoleRank) *status.PrivateStatus {
	for _, p := range e.players {
		if p.Role == role {
			return p
		}
	}
	return nil
}

func (e *Engine) publicStatus() status.PublicStatus {
	return status.MakePublicStatus(status.Table{
		Round:     e.round,
		Phase:     e.phase,
		Turn:      e.turn,
		FieldTop:  e.fieldTop(),
		HasFlowed: e.hasFlowed,
		Players:   e.players,
	})
}
