package protocol

import (
	"encoding/json"
	"time"
)

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	SentAt  time.Time       `json:"-"` // 只有二进制编码携带发送时间
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	MsgJoin        MessageType = "join"         // 请求入座
	MsgSubmitCards MessageType = "submit_cards" // 交换或出牌，空牌表示不出
	MsgPing        MessageType = "ping"         // 心跳 ping
)

// 服务端 → 客户端 消息类型
const (
	MsgJoined       MessageType = "joined"        // 入座成功
	MsgJoinRejected MessageType = "join_rejected" // 入座失败
	MsgSubmitResult MessageType = "submit_result" // 提交结果
	MsgStatus       MessageType = "status"        // 牌桌状态
	MsgEnd          MessageType = "end"           // 本局或整场结束
	MsgPong         MessageType = "pong"          // 心跳 pong
	MsgError        MessageType = "error"         // 错误消息
)

// IsClientMessage 是否为客户端可以发送的消息
func (t MessageType) IsClientMessage() bool {
	switch t {
	case MsgJoin, MsgSubmitCards, MsgPing:
		return true
	}
	return false
}
