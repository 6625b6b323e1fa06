package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/palemoky/daifugo/internal/apperrors"
	"github.com/palemoky/daifugo/internal/game/card"
	"github.com/palemoky/daifugo/internal/game/engine"
	"github.com/palemoky/daifugo/internal/game/rule"
	"github.com/palemoky/daifugo/internal/game/status"
	"github.com/palemoky/daifugo/internal/testutil"
)

func defaultConfig(players int) engine.Config {
	return engine.Config{PlayerCount: players, MinPlayers: 2, Rounds: 1}
}

func startEngine(t *testing.T, cfg engine.Config, deps engine.Deps) (*engine.Engine, context.Context) {
	t.Helper()
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	e, err := engine.New(cfg, deps)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = e.Run(ctx) }()
	t.Cleanup(func() {
		e.Exit()
		<-e.Done()
		cancel()
	})
	return e, ctx
}

func joinAll(t *testing.T, ctx context.Context, e *engine.Engine, n int) []int {
	t.Helper()
	ids := make([]int, 0, n)
	for range n {
		id, err := e.Join(ctx)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func snapshot(t *testing.T, ctx context.Context, e *engine.Engine) status.PublicStatus {
	t.Helper()
	snap, err := e.Snapshot(ctx)
	require.NoError(t, err)
	return snap
}

func playerAt(t *testing.T, snap status.PublicStatus, seat int) status.PublicPlayerStatus {
	t.Helper()
	p, ok := snap.PlayerBySeat(seat)
	require.True(t, ok, "no player at seat %d", seat)
	return p
}

func playerWithRole(t *testing.T, snap status.PublicStatus, role status.RoleRank) status.PublicPlayerStatus {
	t.Helper()
	for _, p := range snap.Players {
		if p.Role == role {
			return p
		}
	}
	t.Fatalf("no player with role %v", role)
	return status.PublicPlayerStatus{}
}

// drive 用能压过场上的最小牌推进牌局，交换阶段交出最小的牌。
// stop 返回 true 时停下并返回当时的快照；牌局结束时返回 false
func drive(t *testing.T, ctx context.Context, e *engine.Engine, n *testutil.SimpleNotifier, stop func(status.PublicStatus) bool) (status.PublicStatus, bool) {
	t.Helper()
	for range 5000 {
		snap, err := e.Snapshot(ctx)
		if errors.Is(err, apperrors.ErrGameEnded) {
			return status.PublicStatus{}, false
		}
		require.NoError(t, err)
		if stop != nil && stop(snap) {
			return snap, true
		}

		switch snap.Phase {
		case status.Trading:
			for _, p := range snap.Players {
				priv := n.Private(p.ID)
				if priv.TradingCardCount > 0 {
					require.NoError(t, e.SubmitCards(ctx, p.ID, rule.WeakestCards(priv.Hand, priv.TradingCardCount)))
					break
				}
			}
		case status.BeforePlaying:
			p := playerAt(t, snap, snap.Turn)
			hand := n.Private(p.ID).Hand
			require.NotEmpty(t, hand, "turn player must hold cards")
			play := rule.FindSmallestBeatingCards(hand, snap.Field)
			err := e.SubmitCards(ctx, p.ID, play)
			if play == nil {
				require.ErrorIs(t, err, apperrors.ErrInvalidCards)
			} else {
				require.NoError(t, err)
			}
		default:
			t.Fatalf("unexpected phase %v", snap.Phase)
		}
	}
	t.Fatal("game did not finish")
	return status.PublicStatus{}, false
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()

	n := testutil.NewSimpleNotifier()
	tests := []struct {
		name string
		cfg  engine.Config
	}{
		{"One player", engine.Config{PlayerCount: 1, MinPlayers: 1, Rounds: 1}},
		{"Min players above capacity", engine.Config{PlayerCount: 3, MinPlayers: 4, Rounds: 1}},
		{"No rounds", engine.Config{PlayerCount: 3, MinPlayers: 2}},
		{"Negative timeout", engine.Config{PlayerCount: 3, MinPlayers: 2, Rounds: 1, TurnTimeout: -time.Second}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := engine.New(tt.cfg, engine.Deps{Notifier: n})
			assert.Error(t, err)
		})
	}

	_, err := engine.New(defaultConfig(3), engine.Deps{})
	assert.Error(t, err, "notifier is required")
}

func TestEngine_FivePlayersDeal(t *testing.T) {
	t.Parallel()

	n := testutil.NewSimpleNotifier()
	e, ctx := startEngine(t, defaultConfig(5), engine.Deps{Notifier: n})

	ids := joinAll(t, ctx, e, 5)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, ids)

	snap := snapshot(t, ctx, e)
	assert.Equal(t, status.BeforePlaying, snap.Phase)
	assert.Equal(t, 1, snap.Round)
	assert.Equal(t, 0, snap.Turn)
	assert.Empty(t, snap.Field)
	require.Len(t, snap.Players, 5)

	seen := make(map[card.Card]bool)
	expected := []int{11, 11, 11, 10, 10}
	for seat, want := range expected {
		p := playerAt(t, snap, seat)
		assert.Equal(t, want, p.CardCount, "seat %d", seat)
		assert.Equal(t, status.Heimin, p.Role)

		priv := n.Private(p.ID)
		assert.Len(t, priv.Hand, want)
		assert.Zero(t, priv.TradingCardCount)
		for _, c := range priv.Hand {
			assert.False(t, seen[c], "card %v dealt twice", c)
			seen[c] = true
		}
	}
	assert.Len(t, seen, card.DeckSize)
	assert.GreaterOrEqual(t, n.StatusCount(), 5, "every player sees the deal")
}

func TestEngine_JoinRejectedAfterStart(t *testing.T) {
	t.Parallel()

	n := testutil.NewSimpleNotifier()
	e, ctx := startEngine(t, defaultConfig(3), engine.Deps{Notifier: n})
	joinAll(t, ctx, e, 3)

	id, err := e.Join(ctx)
	assert.ErrorIs(t, err, apperrors.ErrNotAccepting)
	assert.Equal(t, status.NoPlayer, id)
}

func TestEngine_SubmitBeforeStart(t *testing.T) {
	t.Parallel()

	n := testutil.NewSimpleNotifier()
	e, ctx := startEngine(t, defaultConfig(3), engine.Deps{Notifier: n})
	joinAll(t, ctx, e, 1)

	assert.ErrorIs(t, e.SubmitCards(ctx, 0, nil), apperrors.ErrWrongPhase)
	assert.ErrorIs(t, e.SubmitCards(ctx, 9, nil), apperrors.ErrUnknownPlayer)
}

func TestEngine_NotYourTurn(t *testing.T) {
	t.Parallel()

	n := testutil.NewSimpleNotifier()
	e, ctx := startEngine(t, defaultConfig(3), engine.Deps{Notifier: n})
	joinAll(t, ctx, e, 3)

	before := snapshot(t, ctx, e)
	other := playerAt(t, before, 1)
	hand := n.Private(other.ID).Hand

	err := e.SubmitCards(ctx, other.ID, hand[:1])
	assert.ErrorIs(t, err, apperrors.ErrNotYourTurn)

	after := snapshot(t, ctx, e)
	assert.Equal(t, status.BeforePlaying, after.Phase)
	assert.Equal(t, 0, after.Turn)
	assert.Equal(t, before.Players, after.Players)
}

func TestEngine_IllegalPlayPasses(t *testing.T) {
	t.Parallel()

	n := testutil.NewSimpleNotifier()
	e, ctx := startEngine(t, defaultConfig(3), engine.Deps{Notifier: n})
	joinAll(t, ctx, e, 3)

	snap := snapshot(t, ctx, e)
	first := playerAt(t, snap, 0)
	second := playerAt(t, snap, 1)

	// 打出别人手里的牌
	notMine := n.Private(second.ID).Hand[:1]
	err := e.SubmitCards(ctx, first.ID, notMine)
	assert.ErrorIs(t, err, apperrors.ErrInvalidCards)

	snap = snapshot(t, ctx, e)
	assert.Equal(t, 1, snap.Turn)
	assert.True(t, playerAt(t, snap, 0).HasPassed)
	assert.Equal(t, first.CardCount, playerAt(t, snap, 0).CardCount)
}

func TestEngine_FlowAfterEveryonePasses(t *testing.T) {
	t.Parallel()

	n := testutil.NewSimpleNotifier()
	e, ctx := startEngine(t, defaultConfig(3), engine.Deps{Notifier: n})
	joinAll(t, ctx, e, 3)

	snap := snapshot(t, ctx, e)
	leader := playerAt(t, snap, 0)
	lead := rule.WeakestCards(n.Private(leader.ID).Hand, 1)
	require.NoError(t, e.SubmitCards(ctx, leader.ID, lead))

	snap = snapshot(t, ctx, e)
	assert.Equal(t, lead, snap.Field)
	assert.Equal(t, 1, snap.Turn)

	for _, seat := range []int{1, 2, 0} {
		p := playerAt(t, snap, seat)
		require.ErrorIs(t, e.SubmitCards(ctx, p.ID, nil), apperrors.ErrInvalidCards)
		snap = snapshot(t, ctx, e)
	}

	assert.True(t, snap.HasFlowed)
	assert.Empty(t, snap.Field)
	assert.Equal(t, 1, snap.Turn)
	for _, p := range snap.Players {
		assert.False(t, p.HasPassed)
	}

	// 流掉之后任意合法牌型都可以出
	next := playerAt(t, snap, 1)
	require.NoError(t, e.SubmitCards(ctx, next.ID, rule.StrongestCards(n.Private(next.ID).Hand, 1)))
	snap = snapshot(t, ctx, e)
	assert.False(t, snap.HasFlowed)
}

func TestEngine_PlaysWholeGame(t *testing.T) {
	t.Parallel()

	n := testutil.NewSimpleNotifier()
	rec := &testutil.SimpleRecorder{}
	e, ctx := startEngine(t, defaultConfig(5), engine.Deps{Notifier: n, Recorder: rec})
	ids := joinAll(t, ctx, e, 5)

	_, stopped := drive(t, ctx, e, n, nil)
	assert.False(t, stopped)
	<-e.Done()

	for _, id := range ids {
		assert.Equal(t, []status.EndMessage{status.EndGame}, n.Ends(id))
	}

	final := n.Public(ids[0])
	assert.Equal(t, status.End, final.Phase)
	holders := 0
	for _, p := range final.Players {
		if p.CardCount > 0 {
			holders++
		}
	}
	assert.LessOrEqual(t, holders, 1)

	results := rec.Results()
	require.Len(t, results, 1)
	assert.Equal(t, e.ID(), results[0].GameID)
	assert.Equal(t, 1, results[0].Round)
	assert.ElementsMatch(t, ids, results[0].FinishOrder)
	assert.Equal(t, status.Daifugo, results[0].Roles[results[0].FinishOrder[0]])
	assert.Equal(t, status.Daihinmin, results[0].Roles[results[0].FinishOrder[4]])
}

func TestEngine_TradingBetweenRounds(t *testing.T) {
	t.Parallel()

	n := testutil.NewSimpleNotifier()
	rec := &testutil.SimpleRecorder{}
	cfg := defaultConfig(5)
	cfg.Rounds = 2
	e, ctx := startEngine(t, cfg, engine.Deps{Notifier: n, Recorder: rec})
	ids := joinAll(t, ctx, e, 5)

	snap, stopped := drive(t, ctx, e, n, func(s status.PublicStatus) bool {
		return s.Round == 2 && s.Phase == status.Trading
	})
	require.True(t, stopped)

	daifugo := playerWithRole(t, snap, status.Daifugo)
	fugo := playerWithRole(t, snap, status.Fugo)
	hinmin := playerWithRole(t, snap, status.Hinmin)
	daihinmin := playerWithRole(t, snap, status.Daihinmin)
	assert.Equal(t, status.Heimin, playerWithRole(t, snap, status.Heimin).Role)

	// 从大富豪的座位开始发牌
	for i, want := range []int{11, 11, 11, 10, 10} {
		assert.Equal(t, want, playerAt(t, snap, (daifugo.Seat+i)%5).CardCount)
	}
	assert.Equal(t, 2, n.Private(daifugo.ID).TradingCardCount)
	assert.Equal(t, 1, n.Private(fugo.ID).TradingCardCount)
	assert.Zero(t, n.Private(daihinmin.ID).TradingCardCount)

	// 大富豪交出两张
	offered := rule.WeakestCards(n.Private(daifugo.ID).Hand, 2)
	expectedBack := rule.StrongestCards(n.Private(daihinmin.ID).Hand, 2)
	require.NoError(t, e.SubmitCards(ctx, daifugo.ID, offered))
	snap = snapshot(t, ctx, e)
	assert.Equal(t, status.Trading, snap.Phase)
	assert.Subset(t, n.Private(daihinmin.ID).Hand, offered)
	assert.Subset(t, n.Private(daifugo.ID).Hand, expectedBack)
	assert.Equal(t, 11, playerAt(t, snap, daifugo.Seat).CardCount)
	assert.Zero(t, n.Private(daifugo.ID).TradingCardCount)

	// 富豪交出一张，交换结束，由大贫民先出
	offered = rule.WeakestCards(n.Private(fugo.ID).Hand, 1)
	require.NoError(t, e.SubmitCards(ctx, fugo.ID, offered))
	assert.Subset(t, n.Private(hinmin.ID).Hand, offered)

	snap = snapshot(t, ctx, e)
	assert.Equal(t, status.BeforePlaying, snap.Phase)
	assert.Equal(t, daihinmin.Seat, snap.Turn)

	_, stopped = drive(t, ctx, e, n, nil)
	assert.False(t, stopped)
	<-e.Done()

	for _, id := range ids {
		assert.Equal(t, []status.EndMessage{status.EndRound, status.EndGame}, n.Ends(id))
	}
	results := rec.Results()
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].Round)
	assert.Equal(t, 2, results[1].Round)
}

func TestEngine_TradeRejectedClearsObligation(t *testing.T) {
	t.Parallel()

	n := testutil.NewSimpleNotifier()
	cfg := defaultConfig(2)
	cfg.Rounds = 2
	e, ctx := startEngine(t, cfg, engine.Deps{Notifier: n})
	joinAll(t, ctx, e, 2)

	snap, stopped := drive(t, ctx, e, n, func(s status.PublicStatus) bool {
		return s.Round == 2 && s.Phase == status.Trading
	})
	require.True(t, stopped)

	daifugo := playerWithRole(t, snap, status.Daifugo)
	daihinmin := playerWithRole(t, snap, status.Daihinmin)
	handBefore := n.Private(daifugo.ID).Hand

	// 张数不对
	err := e.SubmitCards(ctx, daifugo.ID, handBefore[:1])
	assert.ErrorIs(t, err, apperrors.ErrTradeRejected)

	snap = snapshot(t, ctx, e)
	assert.Equal(t, status.BeforePlaying, snap.Phase)
	assert.Equal(t, daihinmin.Seat, snap.Turn)
	assert.ElementsMatch(t, handBefore, n.Private(daifugo.ID).Hand)
	assert.Zero(t, n.Private(daifugo.ID).TradingCardCount)

	// 交换已经结束
	assert.ErrorIs(t, e.SubmitCards(ctx, daihinmin.ID, nil), apperrors.ErrInvalidCards)
}

func TestEngine_TradeTimeoutOffersWeakest(t *testing.T) {
	t.Parallel()

	n := testutil.NewSimpleNotifier()
	cfg := defaultConfig(2)
	cfg.Rounds = 2
	cfg.TradeTimeout = 300 * time.Millisecond
	e, ctx := startEngine(t, cfg, engine.Deps{Notifier: n})
	joinAll(t, ctx, e, 2)

	snap, stopped := drive(t, ctx, e, n, func(s status.PublicStatus) bool {
		return s.Round == 2 && s.Phase == status.Trading
	})
	require.True(t, stopped)

	daifugo := playerWithRole(t, snap, status.Daifugo)
	daihinmin := playerWithRole(t, snap, status.Daihinmin)
	weakest := rule.WeakestCards(n.Private(daifugo.ID).Hand, 2)

	assert.Eventually(t, func() bool {
		s, err := e.Snapshot(ctx)
		return err == nil && s.Phase == status.BeforePlaying
	}, 2*time.Second, 10*time.Millisecond)

	assert.Subset(t, n.Private(daihinmin.ID).Hand, weakest)
	assert.Zero(t, n.Private(daifugo.ID).TradingCardCount)
}

func TestEngine_TurnTimeoutAutoPasses(t *testing.T) {
	t.Parallel()

	n := testutil.NewSimpleNotifier()
	cfg := defaultConfig(3)
	cfg.TurnTimeout = 30 * time.Millisecond
	e, ctx := startEngine(t, cfg, engine.Deps{Notifier: n})
	joinAll(t, ctx, e, 3)

	assert.Eventually(t, func() bool {
		s, err := e.Snapshot(ctx)
		return err == nil && (s.Turn != 0 || s.HasFlowed)
	}, 2*time.Second, 5*time.Millisecond)

	snap := snapshot(t, ctx, e)
	for _, p := range snap.Players {
		assert.Equal(t, 18-boolToInt(p.Seat == 2), p.CardCount, "auto-pass must not discard cards")
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func TestEngine_StopAcceptingStartsWithJoinedPlayers(t *testing.T) {
	t.Parallel()

	n := testutil.NewSimpleNotifier()
	e, ctx := startEngine(t, defaultConfig(5), engine.Deps{Notifier: n})
	joinAll(t, ctx, e, 3)

	require.NoError(t, e.StopAccepting(ctx))

	snap := snapshot(t, ctx, e)
	assert.Equal(t, status.BeforePlaying, snap.Phase)
	require.Len(t, snap.Players, 3)
	for seat, want := range []int{18, 18, 17} {
		assert.Equal(t, want, playerAt(t, snap, seat).CardCount)
	}

	_, err := e.Join(ctx)
	assert.ErrorIs(t, err, apperrors.ErrNotAccepting)
}

func TestEngine_StopAcceptingWithTooFewPlayersEnds(t *testing.T) {
	t.Parallel()

	n := &testutil.MockNotifier{}
	n.On("PushEnd", mock.Anything, 0, status.EndGame).Return(nil).Once()

	e, ctx := startEngine(t, defaultConfig(5), engine.Deps{Notifier: n})
	joinAll(t, ctx, e, 1)

	require.NoError(t, e.StopAccepting(ctx))
	<-e.Done()

	n.AssertExpectations(t)
	n.AssertNotCalled(t, "PushStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	_, err := e.Join(ctx)
	assert.ErrorIs(t, err, apperrors.ErrGameEnded)
}

func TestEngine_AcceptTimeout(t *testing.T) {
	t.Parallel()

	n := testutil.NewSimpleNotifier()
	cfg := defaultConfig(5)
	cfg.AcceptTimeout = 200 * time.Millisecond
	e, ctx := startEngine(t, cfg, engine.Deps{Notifier: n})
	joinAll(t, ctx, e, 2)

	assert.Eventually(t, func() bool {
		s, err := e.Snapshot(ctx)
		return err == nil && s.Phase == status.BeforePlaying
	}, 2*time.Second, 10*time.Millisecond)
}

func TestEngine_Exit(t *testing.T) {
	t.Parallel()

	n := testutil.NewSimpleNotifier()
	e, ctx := startEngine(t, defaultConfig(3), engine.Deps{Notifier: n})
	ids := joinAll(t, ctx, e, 3)

	e.Exit()
	e.Exit()

	select {
	case <-e.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop")
	}

	for _, id := range ids {
		assert.Equal(t, []status.EndMessage{status.EndGame}, n.Ends(id))
	}
	assert.ErrorIs(t, e.SubmitCards(ctx, 0, nil), apperrors.ErrGameEnded)
	_, err := e.Snapshot(ctx)
	assert.ErrorIs(t, err, apperrors.ErrGameEnded)
}

func TestEngine_ContextCancelStopsRun(t *testing.T) {
	t.Parallel()

	n := testutil.NewSimpleNotifier()
	e, err := engine.New(defaultConfig(3), engine.Deps{Notifier: n})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- e.Run(ctx) }()

	_, err = e.Join(ctx)
	require.NoError(t, err)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop")
	}
	assert.Equal(t, []status.EndMessage{status.EndGame}, n.Ends(0))
}

func TestEngine_ConcurrentJoins(t *testing.T) {
	t.Parallel()

	n := testutil.NewSimpleNotifier()
	e, ctx := startEngine(t, defaultConfig(5), engine.Deps{Notifier: n})

	type joinResult struct {
		id  int
		err error
	}
	results := make(chan joinResult, 8)
	for range 8 {
		go func() {
			id, err := e.Join(ctx)
			results <- joinResult{id, err}
		}()
	}

	accepted := make(map[int]bool)
	rejected := 0
	for range 8 {
		r := <-results
		if r.err != nil {
			assert.ErrorIs(t, r.err, apperrors.ErrNotAccepting)
			rejected++
			continue
		}
		assert.False(t, accepted[r.id])
		accepted[r.id] = true
	}
	assert.Len(t, accepted, 5)
	assert.Equal(t, 3, rejected)
}
