package server

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/palemoky/daifugo/internal/game/status"
	"github.com/palemoky/daifugo/internal/protocol"
	"github.com/palemoky/daifugo/internal/protocol/codec"
)

// maxPending 未绑定连接的玩家最多缓存的通知数
const maxPending = 64

// Hub 管理连接与玩家的对应关系，实现 engine.Notifier。
//
// Join 的结果先于入座通知返回，所以绑定连接之前收到的通知会先缓存，
// 绑定时按顺序补发。连接断开后该玩家的通知直接丢弃。
type Hub struct {
	log *zap.Logger

	mu       sync.RWMutex
	clients  map[string]*Client
	players  map[int]*Client
	pending  map[int][]*protocol.Message
	departed map[int]bool
}

// NewHub 创建 Hub
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		log:      log,
		clients:  make(map[string]*Client),
		players:  make(map[int]*Client),
		pending:  make(map[int][]*protocol.Message),
		departed: make(map[int]bool),
	}
}

// PushStatus 实现 engine.Notifier
func (h *Hub) PushStatus(_ context.Context, playerID int, pub status.PublicStatus, priv status.PrivateStatus) error {
	msg, err := codec.NewMessage(protocol.MsgStatus, protocol.StatusPayload{Public: pub, Private: priv})
	if err != nil {
		return err
	}
	h.sendTo(playerID, msg)
	return nil
}

// PushEnd 实现 engine.Notifier
func (h *Hub) PushEnd(_ context.Context, playerID int, kind status.EndMessage) error {
	msg, err := codec.NewMessage(protocol.MsgEnd, protocol.EndPayload{Kind: kind})
	if err != nil {
		return err
	}
	h.sendTo(playerID, msg)
	return nil
}

func (h *Hub) sendTo(playerID int, msg *protocol.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.players[playerID]; ok {
		c.SendMessage(msg)
		return
	}
	if h.departed[playerID] {
		h.log.Debug("玩家已离线，丢弃通知", zap.Int("player_id", playerID), zap.String("type", string(msg.Type)))
		return
	}

	queue := append(h.pending[playerID], msg)
	if len(queue) > maxPending {
		queue = queue[len(queue)-maxPending:]
	}
	h.pending[playerID] = queue
}

// Bind 把玩家绑定到连接，并补发缓存的通知。
// 入座后连接已经断开时，玩家直接标记为离线
func (h *Hub) Bind(playerID int, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c.setPlayerID(playerID)
	if _, ok := h.clients[c.ID]; !ok {
		h.departed[playerID] = true
		delete(h.pending, playerID)
		h.log.Debug("连接在入座前已断开", zap.Int("player_id", playerID))
		return
	}
	h.players[playerID] = c
	for _, msg := range h.pending[playerID] {
		c.SendMessage(msg)
	}
	delete(h.pending, playerID)
}

// Register 注册连接
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
}

// Unregister 注销连接，已入座的玩家标记为离线
func (h *Hub) Unregister(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.ID]; !ok {
		return false
	}
	delete(h.clients, c.ID)

	if id := c.PlayerID(); id != status.NoPlayer && h.players[id] == c {
		delete(h.players, id)
		h.departed[id] = true
	}
	c.Close()
	return true
}

// OnlineCount 在线连接数
func (h *Hub) OnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast 广播消息给所有连接
func (h *Hub) Broadcast(msg *protocol.Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		c.SendMessage(msg)
	}
}

// CloseAll 关闭所有连接
func (h *Hub) CloseAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		c.Close()
	}
}
