//go:build !production

package testutil

import (
	"context"
	"slices"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/daifugo/internal/game/status"
)

// MockNotifier 实现 engine.Notifier 的 mock
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) PushStatus(ctx context.Context, playerID int, pub status.PublicStatus, priv status.PrivateStatus) error {
	args := m.Called(ctx, playerID, pub, priv)
	return args.Error(0)
}

func (m *MockNotifier) PushEnd(ctx context.Context, playerID int, msg status.EndMessage) error {
	args := m.Called(ctx, playerID, msg)
	return args.Error(0)
}

// SimpleNotifier 记录收到的通知，不使用 testify（用于不需要断言调用的测试）
type SimpleNotifier struct {
	mu       sync.Mutex
	public   map[int]status.PublicStatus
	private  map[int]status.PrivateStatus
	ends     map[int][]status.EndMessage
	statuses int
}

func NewSimpleNotifier() *SimpleNotifier {
	return &SimpleNotifier{
		public:  make(map[int]status.PublicStatus),
		private: make(map[int]status.PrivateStatus),
		ends:    make(map[int][]status.EndMessage),
	}
}

func (n *SimpleNotifier) PushStatus(_ context.Context, playerID int, pub status.PublicStatus, priv status.PrivateStatus) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.public[playerID] = pub
	n.private[playerID] = priv
	n.statuses++
	return nil
}

func (n *SimpleNotifier) PushEnd(_ context.Context, playerID int, msg status.EndMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ends[playerID] = append(n.ends[playerID], msg)
	return nil
}

// Private 玩家最近一次收到的私有状态
func (n *SimpleNotifier) Private(playerID int) status.PrivateStatus {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.private[playerID]
}

// Public 玩家最近一次收到的公开状态
func (n *SimpleNotifier) Public(playerID int) status.PublicStatus {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.public[playerID]
}

// Ends 玩家收到的结束通知
func (n *SimpleNotifier) Ends(playerID int) []status.EndMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.ends[playerID])
}

// StatusCount 收到的状态通知总数
func (n *SimpleNotifier) StatusCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.statuses
}
