package protocol

import (
	"github.com/palemoky/daifugo/internal/game/card"
	"github.com/palemoky/daifugo/internal/game/status"
)

// --- 客户端请求 Payloads ---

// JoinPayload 入座请求
type JoinPayload struct {
	Password string `json:"password,omitempty"` // 牌桌密码，未设置时忽略
}

// SubmitCardsPayload 提交手牌请求，出牌阶段空列表表示不出
type SubmitCardsPayload struct {
	Cards []card.Card `json:"cards"`
}

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// --- 服务端响应 Payloads ---

// JoinedPayload 入座成功
type JoinedPayload struct {
	PlayerID int    `json:"player_id"`
	TableID  string `json:"table_id"`
}

// SubmitResultPayload 提交结果，未被接受时带错误码
type SubmitResultPayload struct {
	Accepted bool   `json:"accepted"`
	Code     int    `json:"code,omitempty"`
	Message  string `json:"message,omitempty"`
}

// StatusPayload 牌桌状态，私有部分只发给本人
type StatusPayload struct {
	Public  status.PublicStatus  `json:"public"`
	Private status.PrivateStatus `json:"private"`
}

// EndPayload 结束通知
type EndPayload struct {
	Kind status.EndMessage `json:"kind"`
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"` // 客户端发送的时间戳
	ServerTimestamp int64 `json:"server_timestamp"` // 服务器时间戳（毫秒）
}

// ErrorPayload 错误响应，入座失败也使用它
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewErrorPayload 根据错误码创建错误响应
func NewErrorPayload(code int) ErrorPayload {
	msg, ok := ErrorMessages[code]
	if !ok {
		msg = ErrorMessages[ErrCodeUnknown]
	}
	return ErrorPayload{Code: code, Message: msg}
}

// NewSubmitRejected 未被接受的提交结果
func NewSubmitRejected(code int) SubmitResultPayload {
	p := NewErrorPayload(code)
	return SubmitResultPayload{Code: p.Code, Message: p.Message}
}
