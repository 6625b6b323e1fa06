// Package engine 牌桌状态机。
//
// Engine 是单写者的 actor：所有状态只在 Run 所在的 goroutine 中修改，
// 外部通过 Join、SubmitCards 等方法投递事件并等待结果。
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/palemoky/daifugo/internal/apperrors"
	"github.com/palemoky/daifugo/internal/game/card"
	"github.com/palemoky/daifugo/internal/game/status"
)

// Notifier 向玩家推送状态，由传输层实现
type Notifier interface {
	PushStatus(ctx context.Context, playerID int, pub status.PublicStatus, priv status.PrivateStatus) error
	PushEnd(ctx context.Context, playerID int, msg status.EndMessage) error
}

// Recorder 记录每一局的结果，可选
type Recorder interface {
	RecordRound(ctx context.Context, result RoundResult) error
}

// RoundResult 一局结束时的结算
type RoundResult struct {
	GameID      string                  `json:"game_id"`
	Round       int                     `json:"round"`
	FinishOrder []int                   `json:"finish_order"`
	Roles       map[int]status.RoleRank `json:"roles"`
	EndedAt     time.Time               `json:"ended_at"`
}

// Config 牌桌配置
type Config struct {
	PlayerCount   int           // 满员人数
	MinPlayers    int           // 提前截止时开局所需的最少人数
	Rounds        int           // 局数
	TurnTimeout   time.Duration // 出牌超时，超时视为不出，0 表示不限
	TradeTimeout  time.Duration // 交换超时，超时自动交出最小的牌，0 表示不限
	AcceptTimeout time.Duration // 等待玩家超时，超时自动截止，0 表示不限
}

// Validate 检查配置
func (c Config) Validate() error {
	switch {
	case c.PlayerCount < 2 || c.PlayerCount > card.DeckSize:
		return fmt.Errorf("player count must be in [2, %d], got %d", card.DeckSize, c.PlayerCount)
	case c.MinPlayers < 2 || c.MinPlayers > c.PlayerCount:
		return fmt.Errorf("min players must be in [2, %d], got %d", c.PlayerCount, c.MinPlayers)
	case c.Rounds < 1:
		return fmt.Errorf("rounds must be positive, got %d", c.Rounds)
	case c.TurnTimeout < 0 || c.TradeTimeout < 0 || c.AcceptTimeout < 0:
		return errors.New("timeouts must not be negative")
	}
	return nil
}

// Deps 状态机依赖
type Deps struct {
	Notifier Notifier
	Recorder Recorder
	Logger   *zap.Logger
}

// Engine 牌桌状态机
type Engine struct {
	id       string
	cfg      Config
	notifier Notifier
	recorder Recorder
	log      *zap.Logger

	events   chan event
	quit     chan struct{}
	quitOnce sync.Once
	done     chan struct{}

	// 以下字段只在 Run 中访问
	phase       status.Phase
	accepting   bool
	round       int
	players     []*status.PrivateStatus
	seats       []status.Seat
	turn        int
	field       [][]card.Card
	flowed      []card.Card
	hasFlowed   bool
	deck        card.Deck
	finishOrder []int
	timer       *time.Timer
	timerC      <-chan time.Time
	outbox      []notice
}

type eventKind int

const (
	evJoin eventKind = iota
	evSubmit
	evStopAccepting
	evSnapshot
)

type event struct {
	kind     eventKind
	playerID int
	cards    []card.Card
	reply    chan result
}

type result struct {
	playerID int
	err      error
	snapshot status.PublicStatus
}

// New 创建状态机，需要调用 Run 才会开始处理事件
func New(cfg Config, deps Deps) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Notifier == nil {
		return nil, errors.New("engine: notifier is required")
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.NewString()

	return &Engine{
		id:        id,
		cfg:       cfg,
		notifier:  deps.Notifier,
		recorder:  deps.Recorder,
		log:       log.With(zap.String("game_id", id)),
		events:    make(chan event),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
		phase:     status.AcceptingPlayer,
		accepting: true,
		turn:      status.NoPlayer,
	}, nil
}

// ID 牌桌 ID
func (e *Engine) ID() string {
	return e.id
}

// Done Run 返回后关闭
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Exit 强制结束，可以重复调用
func (e *Engine) Exit() {
	e.quitOnce.Do(func() { close(e.quit) })
}

// Join 请求入座，成功返回玩家 ID
func (e *Engine) Join(ctx context.Context) (int, error) {
	r, err := e.call(ctx, event{kind: evJoin})
	if err != nil {
		return status.NoPlayer, err
	}
	return r.playerID, r.err
}

// SubmitCards 提交手牌，交换阶段用于交换，出牌阶段用于出牌。
// 返回 nil 表示被接受，*apperrors.GameError 表示未被接受
func (e *Engine) SubmitCards(ctx context.Context, playerID int, cards []card.Card) error {
	r, err := e.call(ctx, event{kind: evSubmit, playerID: playerID, cards: cards})
	if err != nil {
		return err
	}
	return r.err
}

// StopAccepting 停止接受新玩家
func (e *Engine) StopAccepting(ctx context.Context) error {
	_, err := e.call(ctx, event{kind: evStopAccepting})
	return err
}

// Snapshot 当前的公开状态
func (e *Engine) Snapshot(ctx context.Context) (status.PublicStatus, error) {
	r, err := e.call(ctx, event{kind: evSnapshot})
	return r.snapshot, err
}

func (e *Engine) call(ctx context.Context, ev event) (result, error) {
	ev.reply = make(chan result, 1)
	select {
	case e.events <- ev:
	case <-e.done:
		return result{}, apperrors.ErrGameEnded
	case <-ctx.Done():
		return result{}, ctx.Err()
	}

	select {
	case r := <-ev.reply:
		return r, nil
	case <-e.done:
		select {
		case r := <-ev.reply:
			return r, nil
		default:
			return result{}, apperrors.ErrGameEnded
		}
	case <-ctx.Done():
		return result{}, ctx.Err()
	}
}

// Run 事件循环，直到进入 End、调用 Exit 或 ctx 取消
func (e *Engine) Run(ctx context.Context) error {
	defer close(e.done)
	defer e.stopTimer()

	e.log.Info("🎴 牌桌开始等待玩家", zap.Int("player_count", e.cfg.PlayerCount))
	e.armTimer(e.cfg.AcceptTimeout)

	for {
		select {
		case <-e.quit:
			e.exit(ctx)
			return nil
		case <-ctx.Done():
			e.exit(context.WithoutCancel(ctx))
			return ctx.Err()
		default:
		}

		if e.phase == status.End {
			e.log.Info("牌桌已结束", zap.Int("round", e.round))
			return nil
		}

		select {
		case <-e.quit:
		case <-ctx.Done():
		case ev := <-e.events:
			ev.reply <- e.handle(ev)
			e.flush(ctx)
		case <-e.timerC:
			e.timerC = nil
			e.onTimeout()
			e.flush(ctx)
		}
	}
}

func (e *Engine) handle(ev event) result {
	switch ev.kind {
	case evJoin:
		return e.receivedJoinRequest()
	case evSubmit:
		return result{err: e.receivedCards(ev.playerID, ev.cards)}
	case evStopAccepting:
		if e.phase == status.AcceptingPlayer {
			e.log.Info("停止接受玩家", zap.Int("joined", len(e.players)))
			e.closeAcceptance()
		}
		return result{}
	case evSnapshot:
		return result{snapshot: e.publicStatus()}
	default:
		return result{err: apperrors.ErrInvalidMessage}
	}
}

// exit 响应 Exit：不再处理任何牌局逻辑，通知所有玩家后结束
func (e *Engine) exit(ctx context.Context) {
	if e.phase != status.End {
		e.log.Info("牌桌被强制结束", zap.Stringer("phase", e.phase))
		e.phase = status.End
		e.pushEnd(status.EndGame)
	}
	e.flush(ctx)
}
