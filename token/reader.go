package token

import "bytes"

// Reader is a movable cursor over an immutable byte slice.
type Reader struct {
	d   []byte
	off int
	pd  *PosDoc
}

func NewReader(d []byte) *Reader {
	return &Reader{d: d}
}

func (r *Reader) Offset() int { return r.off }

// Len returns the number of bytes remaining.
func (r *Reader) Len() int { return len(r.d) - r.off }

func (r *Reader) AtEnd() bool { return r.off >= len(r.d) }

// Cur returns the byte under the cursor or 0 at the end.
func (r *Reader) Cur() byte { return r.Peek(0) }

// Peek returns the byte n positions after the cursor or 0 when that is
// past the end.
func (r *Reader) Peek(n int) byte {
	i := r.off + n
	if i < 0 || i >= len(r.d) {
		return 0
	}
	return r.d[i]
}

// Advance moves the cursor n bytes, stopping at the end.
func (r *Reader) Advance(n int) {
	r.off = min(r.off+n, len(r.d))
}

// Seek moves the cursor to an absolute offset.
func (r *Reader) Seek(off int) {
	r.off = max(0, min(off, len(r.d)))
}

// CheckLength reports whether at least n bytes remain.
func (r *Reader) CheckLength(n int) bool {
	return r.Len() >= n
}

// Compare reports whether the input at the cursor starts with s. It is
// false when fewer than len(s) bytes remain.
func (r *Reader) Compare(s string, caseSensitive bool) bool {
	if !r.CheckLength(len(s)) {
		return false
	}
	d := r.d[r.off : r.off+len(s)]
	if caseSensitive {
		return string(d) == s
	}
	return bytes.EqualFold(d, []byte(s))
}

// Skip advances over bytes accepted by t and returns the count skipped.
func (r *Reader) Skip(t *Table) int {
	start := r.off
	for r.off < len(r.d) && t[r.d[r.off]] {
		r.off++
	}
	return r.off - start
}

// SkipUntil advances to the next occurrence of s. When s does not occur
// the cursor is moved to the end and SkipUntil returns false.
func (r *Reader) SkipUntil(s string) bool {
	i := bytes.Index(r.d[r.off:], []byte(s))
	if i < 0 {
		r.off = len(r.d)
		return false
	}
	r.off += i
	return true
}

// Slice returns the input between start and the cursor.
func (r *Reader) Slice(start int) []byte {
	return r.d[start:r.off]
}

// Rest returns the input from the cursor to the end.
func (r *Reader) Rest() []byte {
	return r.d[r.off:]
}

// Pos returns the position of the cursor.
func (r *Reader) Pos() *Pos {
	return r.PosAt(r.off)
}

func (r *Reader) PosAt(off int) *Pos {
	if r.pd == nil {
		r.pd = NewPosDoc(r.d)
	}
	return r.pd.Pos(off)
}
