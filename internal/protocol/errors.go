package protocol

// 错误码
const (
	ErrCodeUnknown       = 1000
	ErrCodeInvalidMsg    = 1001
	ErrCodeUnauthorized  = 1002 // 牌桌密码错误
	ErrCodeRateLimit     = 1003
	ErrCodeTableFull     = 2001
	ErrCodeNotAccepting  = 2002 // 报名已截止
	ErrCodeNotJoined     = 2003
	ErrCodeUnknownPlayer = 2004
	ErrCodeWrongPhase    = 3001
	ErrCodeNotYourTurn   = 3002
	ErrCodeInvalidCards  = 3003 // 出牌无效，按不出处理
	ErrCodeTradeRejected = 3004
	ErrCodeGameEnded     = 3005
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:       "未知错误",
	ErrCodeInvalidMsg:    "无效的消息格式",
	ErrCodeUnauthorized:  "牌桌密码错误",
	ErrCodeRateLimit:     "消息发送过于频繁",
	ErrCodeTableFull:     "牌桌已满",
	ErrCodeNotAccepting:  "牌桌已停止接受玩家",
	ErrCodeNotJoined:     "您还没有入座",
	ErrCodeUnknownPlayer: "玩家不存在",
	ErrCodeWrongPhase:    "当前阶段不能出牌",
	ErrCodeNotYourTurn:   "还没轮到您",
	ErrCodeInvalidCards:  "出牌无效，视为不出",
	ErrCodeTradeRejected: "交换的牌无效",
	ErrCodeGameEnded:     "游戏已结束",
}
