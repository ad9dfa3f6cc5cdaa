package httpclient

import (
	"errors"
	"fmt"
)

// Kind tags every failure returned by Client.Request.
type Kind int

const (
	KindTimedOut Kind = iota + 1
	KindHTTP
)

func (k Kind) String() string {
	switch k {
	case KindTimedOut:
		return "TimedOut"
	case KindHTTP:
		return "HttpError"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// 面向用户的错误提示
const (
	MsgTimedOut  = "Request timed out"
	MsgFailed    = "Request failed"
	MsgCancelled = "Request cancelled"
)

// ErrTimedOut matches any *Error of KindTimedOut under errors.Is.
var ErrTimedOut = errors.New(MsgTimedOut)

// Error is the only error type Request returns. Status is zero when no
// response was received.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == ErrTimedOut && e.Kind == KindTimedOut
}

// KindOf returns the tag of err, or zero when err did not come from Request.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// StatusOf returns the HTTP status carried by err, or zero.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}
