package parse

import (
	"fmt"
	"io"
	"os"

	"github.com/signadot/metagraph/debug"
	"github.com/signadot/metagraph/format"
	"github.com/signadot/metagraph/text"
	"github.com/signadot/metagraph/token"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Parse parses d. Without a format option the format is guessed from
// the first significant byte: '<' selects XML, anything else JSON.
func Parse(d []byte, opts ...ParseOption) (*text.Doc, error) {
	o := defaultOpts()
	for _, opt := range opts {
		opt(o)
	}
	f := sniff(d)
	if o.format != nil {
		f = *o.format
	}
	if debug.Parse() {
		debug.Logf("parse %d bytes as %s\n", len(d), f)
	}
	switch f {
	case format.XMLFormat:
		return parseXML(d, o)
	case format.JSONFormat:
		return parseJSON(d, o)
	default:
		return nil, fmt.Errorf("%w: cannot parse %s as text", text.ErrNotSupported, f)
	}
}

// ParseReader reads r to the end, decoding UTF-16 input announced by a
// byte order mark, and parses the result.
func ParseReader(r io.Reader, opts ...ParseOption) (*text.Doc, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	d, err := io.ReadAll(transform.NewReader(r, dec))
	if err != nil {
		return nil, err
	}
	return Parse(d, opts...)
}

// ParseFile parses the file at path. Unless a format option is given the
// format is taken from the file suffix.
func ParseFile(path string, opts ...ParseOption) (*text.Doc, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if fmat, err := format.FromSuffix(path); err == nil {
		opts = append([]ParseOption{ParseFormat(fmat)}, opts...)
	}
	doc, err := ParseReader(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func sniff(d []byte) format.Format {
	r := token.NewReader(d)
	if r.Compare(bom, true) {
		r.Advance(len(bom))
	}
	r.Skip(token.Whitespace)
	if r.Cur() == '<' {
		return format.XMLFormat
	}
	return format.JSONFormat
}

const bom = "\xEF\xBB\xBF"
