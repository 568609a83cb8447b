package gateway

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindServer Kind = iota
	KindNetwork
	KindTimeout
	KindCanceled
	KindUnauthorized
	// KindNotGenerated 内容接口返回 404：内容尚未生成，调用方应走生成流程
	KindNotGenerated
	KindInvalidResponse
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotGenerated:
		return "not_generated"
	case KindInvalidResponse:
		return "invalid_response"
	default:
		return "server"
	}
}

const (
	msgNetwork         = "Network error. Please check your connection and try again."
	msgTimeout         = "Request timed out. Please try again."
	msgCanceled        = "Request was canceled."
	msgUnauthorized    = "token expired or invalid"
	msgNotGenerated    = "content not generated yet"
	msgInvalidResponse = "Invalid response format from server"
)

// Error 归一化后的后端错误；Message 可以直接展示给用户
type Error struct {
	Op      string
	Kind    Kind
	Status  int
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) GoString() string {
	return fmt.Sprintf("gateway.Error{Op:%q, Kind:%s, Status:%d, Message:%q}", e.Op, e.Kind, e.Status, e.Message)
}

func KindOf(err error) (Kind, bool) {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind, true
	}
	return 0, false
}

func IsNotGenerated(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindNotGenerated
}

func IsUnauthorized(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindUnauthorized
}

// Message 取最具体的可展示信息，最后回退到 fallback
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var ge *Error
	if errors.As(err, &ge) && ge.Message != "" {
		return ge.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
