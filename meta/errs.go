package meta

import (
	"errors"
	"fmt"
)

var ErrTypeMismatch = errors.New("type mismatch")

// Error reports a failure at a node of a snapshot.
type Error struct {
	Path string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.Err, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Path, e.Err, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func nodeErr(path string, err error, msg string, args ...any) *Error {
	return &Error{Path: path, Msg: fmt.Sprintf(msg, args...), Err: err}
}
