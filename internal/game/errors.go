package game

import (
	"errors"
	"fmt"
)

// Kind classifies a game error for the transport layer.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindForbidden
	KindConflict
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	}
	return "unknown"
}

// Code is a machine-readable error code.
type Code string

const (
	CodeSessionNotFound    Code = "SESSION_NOT_FOUND"
	CodeNotParticipant     Code = "NOT_A_PARTICIPANT"
	CodeSessionFull        Code = "SESSION_FULL"
	CodeAlreadyJoined      Code = "ALREADY_JOINED"
	CodeAlreadyInSession   Code = "ALREADY_IN_SESSION"
	CodeNotEnoughPlayers   Code = "NOT_ENOUGH_PLAYERS"
	CodeWrongStatus        Code = "WRONG_STATUS"
	CodeNotYourTurn        Code = "NOT_YOUR_TURN"
	CodeAlreadyActed       Code = "ALREADY_ACTED"
	CodeMissingRoll        Code = "MISSING_ROLL"
	CodeNotForSale         Code = "NOT_FOR_SALE"
	CodeInsufficientFunds  Code = "INSUFFICIENT_FUNDS"
	CodeInvalidChoice      Code = "INVALID_CHOICE"
	CodeInvalidRequest     Code = "INVALID_REQUEST"
	CodeNotHost            Code = "NOT_HOST"
	CodeUnknownVariant     Code = "UNKNOWN_VARIANT"
	CodeCodeSpaceExhausted Code = "CODE_SPACE_EXHAUSTED"
)

// Error is a game error with a transport classification and a
// machine-readable code.
type Error struct {
	Kind    Kind
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NotFound(code Code, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(code Code, format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Conflict(code Code, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Validation(code Code, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the Kind from err, or 0 if err is not a game error.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return 0
}

// CodeOf extracts the Code from err, or "" if err is not a game error.
func CodeOf(err error) Code {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ""
}
