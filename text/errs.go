package text

import (
	"errors"
	"fmt"

	"github.com/signadot/metagraph/token"
)

var (
	ErrEmpty        = errors.New("empty")
	ErrFail         = errors.New("fail")
	ErrOutOfMemory  = errors.New("out of memory")
	ErrNotFound     = errors.New("not found")
	ErrNotSupported = errors.New("not supported")
)

// ParseErr locates a parse failure in its source.
type ParseErr struct {
	Err error
	Msg string
	Pos *token.Pos
}

func NewParseErr(e error, msg string, p *token.Pos) *ParseErr {
	return &ParseErr{Err: e, Msg: msg, Pos: p}
}

func (e *ParseErr) Unwrap() error {
	return e.Err
}

func (e *ParseErr) Error() string {
	if e.Pos == nil {
		return fmt.Sprintf("%s: %s", e.Err, e.Msg)
	}
	return fmt.Sprintf("%s: %s at %s", e.Err, e.Msg, e.Pos)
}
