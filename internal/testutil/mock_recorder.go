//go:build !production

package testutil

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/daifugo/internal/game/engine"
)

// MockRecorder 实现 engine.Recorder 的 mock
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordRound(ctx context.Context, result engine.RoundResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

// SimpleRecorder 把结果保存在内存中
type SimpleRecorder struct {
	mu      sync.Mutex
	results []engine.RoundResult
}

func (r *SimpleRecorder) RecordRound(_ context.Context, result engine.RoundResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
	return nil
}

// Results 已记录的结果
func (r *SimpleRecorder) Results() []engine.RoundResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]engine.RoundResult(nil), r.results...)
}
