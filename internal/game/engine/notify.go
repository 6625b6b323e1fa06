package engine

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/palemoky/daifugo/internal/game/status"
)

type noticeKind int

const (
	noticeStatus noticeKind = iota
	noticeEnd
	noticeRound
)

// notice 待发送的通知。快照在生成时已经是深拷贝
type notice struct {
	kind     noticeKind
	playerID int
	pub      status.PublicStatus
	priv     status.PrivateStatus
	end      status.EndMessage
	round    RoundResult
}

// publish 为每个玩家生成一份状态快照
func (e *Engine) publish() {
	for _, p := range e.players {
		e.outbox = append(e.outbox, notice{
			kind:     noticeStatus,
			playerID: p.ID,
			pub:      e.publicStatus(),
			priv:     status.MakePrivateStatus(p),
		})
	}
}

func (e *Engine) pushEnd(msg status.EndMessage) {
	for _, p := range e.players {
		e.outbox = append(e.outbox, notice{kind: noticeEnd, playerID: p.ID, end: msg})
	}
}

func (e *Engine) record(res RoundResult) {
	e.outbox = append(e.outbox, notice{kind: noticeRound, playerID: status.NoPlayer, round: res})
}

// flush 按玩家并发投递，同一玩家的通知保持顺序
func (e *Engine) flush(ctx context.Context) {
	if len(e.outbox) == 0 {
		return
	}
	pending := e.outbox
	e.outbox = nil

	perPlayer := make(map[int][]notice)
	var rounds []RoundResult
	for _, n := range pending {
		if n.kind == noticeRound {
			rounds = append(rounds, n.round)
			continue
		}
		perPlayer[n.playerID] = append(perPlayer[n.playerID], n)
	}

	// 单条推送失败只记录，后续通知（例如 EndGame）仍然投递
	var g errgroup.Group
	for id, notices := range perPlayer {
		g.Go(func() error {
			for _, n := range notices {
				if err := e.deliver(ctx, n); err != nil {
					e.log.Warn("推送失败", zap.Int("player_id", id), zap.Error(err))
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	if e.recorder == nil {
		return
	}
	for _, res := range rounds {
		if err := e.recorder.RecordRound(ctx, res); err != nil {
			e.log.Error("记录牌局结果失败", zap.Int("round", res.Round), zap.Error(err))
		}
	}
}

func (e *Engine) deliver(ctx context.Context, n notice) error {
	switch n.kind {
	case noticeStatus:
		return e.notifier.PushStatus(ctx, n.playerID, n.pub, n.priv)
	case noticeEnd:
		return e.notifier.PushEnd(ctx, n.playerID, n.end)
	}
	return nil
}

func (e *Engine) armTimer(d time.Duration) {
	e.stopTimer()
	if d <= 0 {
		return
	}
	e.timer = time.NewTimer(d)
	e.timerC = e.timer.C
}

func (e *Engine) stopTimer() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.timerC = nil
}
