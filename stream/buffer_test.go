package stream

import (
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBufferOverwrite(t *testing.T) {
	b := NewBuffer(nil)
	b.Write([]byte("hello world"))
	if _, err := b.Seek(6, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	b.Write([]byte("WORLD!!"))
	if diff := cmp.Diff("hello WORLD!!", string(b.Bytes())); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if b.Cursor() != 13 {
		t.Errorf("cursor %d", b.Cursor())
	}
}

func TestBufferRead(t *testing.T) {
	b := NewBuffer([]byte("abcdef"))
	p := make([]byte, 4)
	n, err := b.Read(p)
	if err != nil || n != 4 || string(p) != "abcd" {
		t.Errorf("read %d %q %v", n, p[:n], err)
	}
	if _, err := b.Seek(-1, io.SeekEnd); err != nil {
		t.Fatal(err)
	}
	n, _ = b.Read(p)
	if n != 1 || p[0] != 'f' {
		t.Errorf("read end %d %q", n, p[:n])
	}
	if _, err := b.Read(p); err != io.EOF {
		t.Errorf("got %v", err)
	}
}

func TestBufferSeekErrors(t *testing.T) {
	b := NewBuffer(nil)
	if _, err := b.Seek(-1, io.SeekStart); !errors.Is(err, ErrSeek) {
		t.Errorf("got %v", err)
	}
	if _, err := b.Seek(0, 7); !errors.Is(err, ErrSeek) {
		t.Errorf("got %v", err)
	}
	b.Seek(4, io.SeekStart)
	b.Write([]byte{1})
	if diff := cmp.Diff([]byte{0, 0, 0, 0, 1}, b.Bytes()); diff != "" {
		t.Errorf("gap not zero filled (-want +got):\n%s", diff)
	}
}
