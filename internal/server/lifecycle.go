package server

import (
	"context"
	"runtime"
	"time"

	"go.uber.org/zap"
)

// statsInterval 监控日志间隔
const statsInterval = 30 * time.Second

// monitorStats 定期记录服务器状态，ctx 取消后退出
func (s *Server) monitorStats(ctx context.Context) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			s.log.Info("监控",
				zap.Int("online", s.hub.OnlineCount()),
				zap.Int("goroutines", runtime.NumGoroutine()),
				zap.Int("active_conns", len(s.semaphore)),
				zap.Int("max_conns", s.maxConnections),
				zap.Float64("alloc_mb", float64(m.Alloc)/1024/1024))
		}
	}
}
