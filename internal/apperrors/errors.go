package apperrors

import (
	"errors"

	"github.com/palemoky/daifugo/internal/protocol"
)

// GameError 牌局错误，提交结果中的 NotAccepted 都以它表示
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// 预定义错误
var (
	ErrBadPassword    = newGameError(protocol.ErrCodeUnauthorized)
	ErrTableFull      = newGameError(protocol.ErrCodeTableFull)
	ErrNotAccepting   = newGameError(protocol.ErrCodeNotAccepting)
	ErrNotJoined      = newGameError(protocol.ErrCodeNotJoined)
	ErrUnknownPlayer  = newGameError(protocol.ErrCodeUnknownPlayer)
	ErrWrongPhase     = newGameError(protocol.ErrCodeWrongPhase)
	ErrNotYourTurn    = newGameError(protocol.ErrCodeNotYourTurn)
	ErrInvalidCards   = newGameError(protocol.ErrCodeInvalidCards)
	ErrTradeRejected  = newGameError(protocol.ErrCodeTradeRejected)
	ErrGameEnded      = newGameError(protocol.ErrCodeGameEnded)
	ErrInvalidMessage = newGameError(protocol.ErrCodeInvalidMsg)
)

func newGameError(code int) *GameError {
	return &GameError{Code: code, Message: protocol.ErrorMessages[code]}
}

// Code 取出错误码，非 GameError 返回 ErrCodeUnknown
func Code(err error) int {
	var gameErr *GameError
	if errors.As(err, &gameErr) {
		return gameErr.Code
	}
	return protocol.ErrCodeUnknown
}
