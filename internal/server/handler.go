package server

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/palemoky/daifugo/internal/apperrors"
	"github.com/palemoky/daifugo/internal/game/status"
	"github.com/palemoky/daifugo/internal/protocol"
	"github.com/palemoky/daifugo/internal/protocol/codec"
)

// handlerFunc 统一的处理器函数签名
type handlerFunc func(c *Client, msg *protocol.Message)

// initHandlers 初始化消息处理器映射
func (s *Server) initHandlers() {
	s.handlers = map[protocol.MessageType]handlerFunc{
		protocol.MsgJoin:        s.handleJoin,
		protocol.MsgSubmitCards: s.handleSubmitCards,
		protocol.MsgPing:        s.handlePing,
	}
}

// handle 处理消息
func (s *Server) handle(c *Client, msg *protocol.Message) {
	if handler, ok := s.handlers[msg.Type]; ok {
		handler(c, msg)
		return
	}

	c.log.Warn("未知消息类型", zap.String("type", string(msg.Type)), zap.Int("payload_len", len(msg.Payload)))
	c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
}

// handleJoin 处理入座
func (s *Server) handleJoin(c *Client, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.JoinPayload](msg)
	if err != nil {
		c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if c.PlayerID() != status.NoPlayer {
		s.rejectJoin(c, apperrors.ErrInvalidMessage)
		return
	}

	if hash := s.config.Game.TablePasswordHash; hash != "" {
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(payload.Password)) != nil {
			c.log.Info("牌桌密码错误", zap.String("ip", c.IP))
			s.rejectJoin(c, apperrors.ErrBadPassword)
			return
		}
	}

	ctx, cancel := context.WithTimeout(s.ctx, requestTimeout)
	defer cancel()

	id, err := s.table.Join(ctx)
	if err != nil {
		s.rejectJoin(c, err)
		return
	}

	c.SendMessage(codec.MustNewMessage(protocol.MsgJoined, protocol.JoinedPayload{
		PlayerID: id,
		TableID:  s.table.ID(),
	}))
	s.hub.Bind(id, c)
	c.log.Info("玩家入座", zap.Int("player_id", id))

	s.saveSnapshot(ctx)
}

func (s *Server) rejectJoin(c *Client, err error) {
	c.SendMessage(codec.MustNewMessage(protocol.MsgJoinRejected, protocol.NewErrorPayload(apperrors.Code(err))))
}

// handleSubmitCards 处理交换或出牌
func (s *Server) handleSubmitCards(c *Client, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.SubmitCardsPayload](msg)
	if err != nil {
		c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	id := c.PlayerID()
	if id == status.NoPlayer {
		s.sendSubmitResult(c, apperrors.ErrNotJoined)
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, requestTimeout)
	defer cancel()

	err = s.table.SubmitCards(ctx, id, payload.Cards)
	s.sendSubmitResult(c, err)

	var gameErr *apperrors.GameError
	if err != nil && !errors.As(err, &gameErr) {
		c.log.Warn("提交失败", zap.Int("player_id", id), zap.Error(err))
		return
	}
	s.saveSnapshot(ctx)
}

func (s *Server) sendSubmitResult(c *Client, err error) {
	result := protocol.SubmitResultPayload{Accepted: true}
	if err != nil {
		result = protocol.NewSubmitRejected(apperrors.Code(err))
	}
	c.SendMessage(codec.MustNewMessage(protocol.MsgSubmitResult, result))
}

// handlePing 处理心跳
func (s *Server) handlePing(c *Client, msg *protocol.Message) {
	payload, _ := codec.ParsePayload[protocol.PingPayload](msg)
	c.SendMessage(codec.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: payload.Timestamp,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
}

// saveSnapshot 把最新的公开状态写入存储，牌桌结束后跳过
func (s *Server) saveSnapshot(ctx context.Context) {
	if s.snapshots == nil {
		return
	}
	pub, err := s.table.Snapshot(ctx)
	if err != nil {
		if !errors.Is(err, apperrors.ErrGameEnded) {
			s.log.Warn("读取快照失败", zap.Error(err))
		}
		return
	}
	if err := s.snapshots.SaveSnapshot(ctx, s.table.ID(), pub); err != nil {
		s.log.Warn("保存快照失败", zap.Error(err))
	}
}
