package server

import (
	"net/http"

	"go.uber.org/zap"
)

// handleWebSocket 处理 WebSocket 连接
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientIP := GetClientIP(r)

	select {
	case <-s.ctx.Done():
		http.Error(w, "Server is shutting down", http.StatusServiceUnavailable)
		return
	case <-s.table.Done():
		http.Error(w, "Game is over", http.StatusGone)
		return
	default:
	}

	// 连接数限制检查，连接关闭后释放
	select {
	case s.semaphore <- struct{}{}:
	default:
		s.log.Warn("达到最大连接数限制", zap.Int("max", s.maxConnections), zap.String("ip", clientIP))
		http.Error(w, "Server Full", http.StatusServiceUnavailable)
		return
	}

	// 来源验证失败时 Upgrade 会回复 403
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		<-s.semaphore
		s.log.Debug("WebSocket 升级失败", zap.String("ip", clientIP), zap.Error(err))
		return
	}

	client := NewClient(s, conn)
	client.IP = clientIP
	s.hub.Register(client)
	client.log.Info("连接建立", zap.String("ip", clientIP))

	go client.ReadPump()
	go client.WritePump()
}

// handleHealth 健康检查接口
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	select {
	case <-s.table.Done():
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("ENDED"))
	default:
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// unregisterClient 注销客户端并释放连接名额
func (s *Server) unregisterClient(c *Client) {
	if !s.hub.Unregister(c) {
		return
	}
	s.messageLimiter.RemoveClient(c.ID)
	<-s.semaphore
	c.log.Info("连接断开", zap.Int("player_id", c.PlayerID()))
}
