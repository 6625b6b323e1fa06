// Package client 终端客户端使用的 WebSocket 连接。
package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/palemoky/daifugo/internal/game/card"
	"github.com/palemoky/daifugo/internal/logger"
	"github.com/palemoky/daifugo/internal/protocol"
	"github.com/palemoky/daifugo/internal/protocol/codec"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// 心跳检测间隔
	heartbeatInterval = 5 * time.Second

	bufferSize = 256
)

// ErrClosed 连接已关闭
var ErrClosed = errors.New("connection closed")

// Client WebSocket 客户端
type Client struct {
	conn    *websocket.Conn
	codec   codec.Codec
	log     *zap.Logger
	send    chan []byte
	receive chan *protocol.Message
	done    chan struct{}

	// 网络延迟（毫秒）
	latency atomic.Int64

	mu     sync.Mutex
	closed bool
}

// Dial 连接服务器，codecName 必须与服务器一致
func Dial(ctx context.Context, url, codecName string, log *zap.Logger) (*Client, error) {
	c, err := codec.New(codecName)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	cl := &Client{
		conn:    conn,
		codec:   c,
		log:     log,
		send:    make(chan []byte, bufferSize),
		receive: make(chan *protocol.Message, bufferSize),
		done:    make(chan struct{}),
	}
	go cl.readPump()
	go cl.writePump()
	return cl, nil
}

// readPump 从服务器读取消息
func (c *Client) readPump() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(c.log, r)
		}
		c.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("读取错误", zap.Error(err))
			}
			return
		}

		decoded, err := c.codec.Decode(data)
		if err != nil {
			c.log.Debug("消息解析错误", zap.Error(err))
			continue
		}
		// 解码结果来自对象池，交给调用方前先复制
		msg := &protocol.Message{Type: decoded.Type, Payload: append([]byte(nil), decoded.Payload...), SentAt: decoded.SentAt}
		codec.PutMessage(decoded)

		if msg.Type == protocol.MsgPong {
			if pong, err := codec.ParsePayload[protocol.PongPayload](msg); err == nil {
				c.latency.Store(time.Now().UnixMilli() - pong.ClientTimestamp)
			}
		}

		select {
		case c.receive <- msg:
		case <-c.done:
			return
		}
	}
}

// writePump 向服务器写入消息
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(c.log, r)
		}
		ticker.Stop()
		_ = c.conn.Close()
	}()

	frameType := websocket.TextMessage
	if c.codec.Binary() {
		frameType = websocket.BinaryMessage
	}

	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(frameType, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// SendMessage 发送消息
func (c *Client) SendMessage(msg *protocol.Message) error {
	data, err := c.codec.Encode(msg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return errors.New("send buffer full")
	}
}

// Receive 接收消息，连接关闭后返回 ErrClosed
func (c *Client) Receive(ctx context.Context) (*protocol.Message, error) {
	select {
	case msg := <-c.receive:
		return msg, nil
	case <-c.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done 连接关闭后关闭
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close 关闭连接，可以重复调用
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.done)
	}
}

// Latency 最近一次心跳的往返延迟（毫秒）
func (c *Client) Latency() int64 {
	return c.latency.Load()
}

// --- 便捷方法 ---

// Join 请求入座
func (c *Client) Join(password string) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgJoin, protocol.JoinPayload{Password: password}))
}

// SubmitCards 交换或出牌，空牌组表示不出
func (c *Client) SubmitCards(cards []card.Card) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgSubmitCards, protocol.SubmitCardsPayload{Cards: cards}))
}

// Ping 发送心跳
func (c *Client) Ping() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgPing, protocol.PingPayload{
		Timestamp: time.Now().UnixMilli(),
	}))
}

// StartHeartbeat 定期发送心跳，连接关闭或 ctx 取消后停止
func (c *Client) StartHeartbeat(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := c.Ping(); err != nil {
					return
				}
			case <-c.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}
