// Package stream provides an in-memory seekable byte stream used as the
// backing store of binary serialization.
package stream

import (
	"errors"
	"fmt"
	"io"
)

var ErrSeek = errors.New("invalid seek")

// Buffer is an io.ReadWriteSeeker over a growable byte slice. Writes at
// the cursor overwrite existing bytes and extend the buffer as needed.
type Buffer struct {
	d   []byte
	off int64
}

func NewBuffer(d []byte) *Buffer {
	return &Buffer{d: d}
}

func (b *Buffer) Bytes() []byte { return b.d }
func (b *Buffer) Len() int      { return len(b.d) }

// Cursor returns the current offset.
func (b *Buffer) Cursor() int64 { return b.off }

func (b *Buffer) Reset() {
	b.d = b.d[:0]
	b.off = 0
}

func (b *Buffer) Write(p []byte) (int, error) {
	end := b.off + int64(len(p))
	if end > int64(len(b.d)) {
		if end > int64(cap(b.d)) {
			nd := make([]byte, end, max(end, 2*int64(cap(b.d))))
			copy(nd, b.d)
			b.d = nd
		} else {
			n := len(b.d)
			b.d = b.d[:end]
			if b.off > int64(n) {
				clear(b.d[n:b.off])
			}
		}
	}
	copy(b.d[b.off:], p)
	b.off = end
	return len(p), nil
}

func (b *Buffer) Read(p []byte) (int, error) {
	if b.off >= int64(len(b.d)) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, b.d[b.off:])
	b.off += int64(n)
	return n, nil
}

func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = b.off + offset
	case io.SeekEnd:
		abs = int64(len(b.d)) + offset
	default:
		return 0, fmt.Errorf("%w: whence %d", ErrSeek, whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("%w: negative position %d", ErrSeek, abs)
	}
	b.off = abs
	return abs, nil
}
