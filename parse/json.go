package parse

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/signadot/metagraph/text"
	"github.com/signadot/metagraph/token"
)

type jsonParser struct {
	r *token.Reader
}

func parseJSON(d []byte, _ *parseOpts) (*text.Doc, error) {
	p := &jsonParser{r: token.NewReader(d)}
	r := p.r
	if r.Compare(bom, true) {
		r.Advance(len(bom))
	}
	r.Skip(token.Whitespace)
	if r.AtEnd() {
		return nil, text.NewParseErr(text.ErrEmpty, "document is empty", r.Pos())
	}
	root := text.NewTree(text.Node{Name: "JSON"})
	if err := p.value(root); err != nil {
		return nil, err
	}
	r.Skip(token.Whitespace)
	if !r.AtEnd() {
		return nil, p.fail("unexpected data after root value")
	}
	if root.Data.Value != nil {
		return nil, p.fail("root value must be an object or an array")
	}
	doc := &text.Doc{RootArray: root.Data.IsArray}
	for root.Count() > 0 {
		c, err := root.Remove(0)
		if err != nil {
			return nil, err
		}
		doc.Nodes = append(doc.Nodes, c)
	}
	return doc, nil
}

func (p *jsonParser) fail(msg string) error {
	return text.NewParseErr(text.ErrFail, msg, p.r.Pos())
}

func (p *jsonParser) eof() error {
	return p.fail("unexpected end of file")
}

func (p *jsonParser) literal(t *text.Tree, lit, vt string) {
	t.Data.Value = text.Ptr(lit)
	t.Data.ValueType = text.Ptr(vt)
	p.r.Advance(len(lit))
}

// value parses a value into t.
func (p *jsonParser) value(t *text.Tree) error {
	r := p.r
	c := r.Cur()
	switch {
	case r.AtEnd():
		return p.eof()
	case c == '"':
		s, err := p.str()
		if err != nil {
			return err
		}
		t.Data.Value = &s
	case r.Compare("true", false):
		p.literal(t, "true", text.BoolType)
	case r.Compare("false", false):
		p.literal(t, "false", text.BoolType)
	case r.Compare("null", false):
		// null shares the integer tag so that it is written unquoted.
		p.literal(t, "null", text.IntType)
	case c == '-' || token.IsDigit(c):
		s, err := p.number()
		if err != nil {
			return err
		}
		t.Data.Value = &s
		t.Data.ValueType = text.Ptr(text.IntType)
	case c == '{':
		return p.object(t)
	case c == '[':
		return p.array(t)
	default:
		return p.fail("unknown value type")
	}
	return nil
}

func (p *jsonParser) object(t *text.Tree) error {
	r := p.r
	r.Advance(1)
	r.Skip(token.Whitespace)
	if r.Cur() == '}' {
		r.Advance(1)
		return nil
	}
	for {
		r.Skip(token.Whitespace)
		switch {
		case r.AtEnd():
			return p.eof()
		case r.Cur() != '"':
			return p.fail("object member has no name")
		}
		name, err := p.str()
		if err != nil {
			return err
		}
		r.Skip(token.Whitespace)
		switch {
		case r.AtEnd():
			return p.eof()
		case r.Cur() != ':':
			return p.fail(`expected ":"`)
		}
		r.Advance(1)
		r.Skip(token.Whitespace)
		if err := p.value(t.AddData(text.Node{Name: name})); err != nil {
			return err
		}
		r.Skip(token.Whitespace)
		switch {
		case r.AtEnd():
			return p.eof()
		case r.Cur() == ',':
			r.Advance(1)
		case r.Cur() == '}':
			r.Advance(1)
			return nil
		default:
			return p.fail(`expected ","`)
		}
	}
}

func (p *jsonParser) array(t *text.Tree) error {
	r := p.r
	t.Data.IsArray = true
	r.Advance(1)
	r.Skip(token.Whitespace)
	if r.Cur() == ']' {
		r.Advance(1)
		return nil
	}
	for {
		r.Skip(token.Whitespace)
		if err := p.value(t.AddData(text.Node{})); err != nil {
			return err
		}
		r.Skip(token.Whitespace)
		switch {
		case r.AtEnd():
			return p.eof()
		case r.Cur() == ',':
			r.Advance(1)
		case r.Cur() == ']':
			r.Advance(1)
			return nil
		default:
			return p.fail(`expected ","`)
		}
	}
}

func (p *jsonParser) str() (string, error) {
	r := p.r
	r.Advance(1)
	b := &strings.Builder{}
	for {
		c := r.Cur()
		switch {
		case r.AtEnd():
			return "", p.fail("unexpected end of string")
		case c == '"':
			r.Advance(1)
			return b.String(), nil
		case c == '\\':
			if err := p.escape(b); err != nil {
				return "", err
			}
		case c < 0x20 && c != '\t':
			return "", p.fail("disallowed character in a string")
		default:
			b.WriteByte(c)
			r.Advance(1)
		}
	}
}

var escapes = map[byte]byte{
	'"':  '"',
	'\\': '\\',
	'/':  '/',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
}

func (p *jsonParser) escape(b *strings.Builder) error {
	r := p.r
	c := r.Peek(1)
	if e, ok := escapes[c]; ok {
		b.WriteByte(e)
		r.Advance(2)
		return nil
	}
	if c != 'u' {
		if r.Len() < 2 {
			return p.fail("unexpected end of string")
		}
		return p.fail("invalid string escape")
	}
	r.Advance(2)
	x, err := p.hex4()
	if err != nil {
		return err
	}
	ru := rune(x)
	if utf16.IsSurrogate(ru) && r.Compare(`\u`, true) {
		save := r.Offset()
		r.Advance(2)
		y, err := p.hex4()
		if err != nil {
			return err
		}
		if pair := utf16.DecodeRune(ru, rune(y)); pair != utf8.RuneError {
			ru = pair
		} else {
			r.Seek(save)
		}
	}
	b.WriteRune(ru)
	return nil
}

func (p *jsonParser) hex4() (uint64, error) {
	r := p.r
	if !r.CheckLength(4) {
		return 0, p.fail(`\u sequence must have 4 hex digits`)
	}
	start := r.Offset()
	r.Advance(4)
	x, err := strconv.ParseUint(string(r.Slice(start)), 16, 32)
	if err != nil {
		r.Seek(start)
		return 0, p.fail("invalid hex digit")
	}
	return x, nil
}

// number validates a number and returns its source text. All numbers,
// fractional or not, carry the integer value type.
func (p *jsonParser) number() (string, error) {
	r := p.r
	start := r.Offset()
	if r.Cur() == '-' {
		r.Advance(1)
	}
	switch c := r.Cur(); {
	case c == '0':
		r.Advance(1)
	case c >= '1' && c <= '9':
		r.Skip(token.Digits)
	default:
		return "", p.fail("invalid digit")
	}
	if r.Cur() == '.' {
		r.Advance(1)
		if !token.IsDigit(r.Cur()) {
			return "", p.fail("number has invalid decimal part")
		}
		r.Skip(token.Digits)
	}
	if c := r.Cur(); c == 'e' || c == 'E' {
		r.Advance(1)
		if c := r.Cur(); c == '+' || c == '-' {
			r.Advance(1)
		}
		if !token.IsDigit(r.Cur()) {
			return "", p.fail("number has invalid exponent")
		}
		r.Skip(token.Digits)
	}
	return string(r.Slice(start)), nil
}
