package e

import (
	"errors"
	"fmt"
)

// BizError is a caller-facing business error. Services return it when the
// request itself is at fault (validation, not found, conflict); handlers map
// the code to an HTTP status. Infrastructure failures stay plain errors.
type BizError struct {
	Code int
	Msg  string
}

func (b *BizError) Error() string {
	return b.Msg
}

// New creates a BizError with the default message for the code
func New(code int) *BizError {
	return &BizError{Code: code, Msg: GetMsg(code)}
}

// Newf creates a BizError with a custom message
func Newf(code int, format string, args ...any) *BizError {
	return &BizError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// AsBizError unwraps err into a BizError if it is one
func AsBizError(err error) (*BizError, bool) {
	var b *BizError
	if errors.As(err, &b) {
		return b, true
	}
	return nil, false
}
