// Package codec 负责消息的编解码。
//
// 支持两种格式：json 文本帧（默认）和 proto 二进制帧。
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/palemoky/daifugo/internal/protocol"
)

// 编码名称
const (
	NameJSON  = "json"
	NameProto = "proto"
)

// ErrEmptyFrame 空帧
var ErrEmptyFrame = errors.New("empty frame")

// Codec 消息编解码器
type Codec interface {
	Name() string
	// Binary 是否使用二进制帧发送
	Binary() bool
	Encode(msg *protocol.Message) ([]byte, error)
	// Decode 返回的消息来自对象池，处理完后调用 PutMessage 归还
	Decode(data []byte) (*protocol.Message, error)
}

// New 按名称创建编解码器
func New(name string) (Codec, error) {
	switch name {
	case "", NameJSON:
		return JSON{}, nil
	case NameProto:
		return Proto{}, nil
	}
	return nil, fmt.Errorf("unknown codec %q", name)
}

// NewMessage 创建消息
func NewMessage(msgType protocol.MessageType, payload any) (*protocol.Message, error) {
	msg := &protocol.Message{Type: msgType}
	if payload == nil {
		return msg, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	msg.Payload = data
	return msg, nil
}

// MustNewMessage 创建消息，payload 无法序列化时 panic
func MustNewMessage(msgType protocol.MessageType, payload any) *protocol.Message {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		panic(err)
	}
	return msg
}

// DecodePayload 解析消息的 payload
func DecodePayload(msg *protocol.Message, v any) error {
	if len(msg.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", msg.Type, err)
	}
	return nil
}

// JSON 文本帧编解码
type JSON struct{}

func (JSON) Name() string { return NameJSON }

func (JSON) Binary() bool { return false }

func (JSON) Encode(msg *protocol.Message) ([]byte, error) {
	buf := GetBuffer()
	defer PutBuffer(buf)

	if err := json.NewEncoder(buf).Encode(msg); err != nil {
		return nil, err
	}
	// Encoder 会追加换行，且 buf 会被复用
	return bytes.Clone(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func (JSON) Decode(data []byte) (*protocol.Message, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFrame
	}
	msg := GetMessage()
	if err := json.Unmarshal(data, msg); err != nil {
		PutMessage(msg)
		return nil, err
	}
	if msg.Type == "" {
		PutMessage(msg)
		return nil, errors.New("missing message type")
	}
	return msg, nil
}

// ParsePayload 解析消息的 payload 为指定类型
func ParsePayload[T any](msg *protocol.Message) (T, error) {
	var payload T
	err := DecodePayload(msg, &payload)
	return payload, err
}

// NewErrorMessage 根据错误码创建错误消息
func NewErrorMessage(code int) *protocol.Message {
	return MustNewMessage(protocol.MsgError, protocol.NewErrorPayload(code))
}

// NewErrorMessageWithText 创建带自定义文本的错误消息
func NewErrorMessageWithText(code int, text string) *protocol.Message {
	return MustNewMessage(protocol.MsgError, protocol.ErrorPayload{Code: code, Message: text})
}
