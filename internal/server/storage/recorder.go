package storage

import (
	"context"
	"errors"

	"github.com/palemoky/daifugo/internal/game/engine"
)

// Recorders 把结果依次写入多个 Recorder，忽略 nil
type Recorders []engine.Recorder

// RecordRound 任一失败都会继续写其余的，返回合并后的错误
func (rs Recorders) RecordRound(ctx context.Context, result engine.RoundResult) error {
	var errs []error
	for _, r := range rs {
		if r == nil {
			continue
		}
		if err := r.RecordRound(ctx, result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
