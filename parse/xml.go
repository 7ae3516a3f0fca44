package parse

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/signadot/metagraph/text"
	"github.com/signadot/metagraph/token"
)

type xmlParser struct {
	r    *token.Reader
	opts *parseOpts
}

func parseXML(d []byte, o *parseOpts) (*text.Doc, error) {
	p := &xmlParser{r: token.NewReader(d), opts: o}
	r := p.r
	if r.Compare(bom, true) {
		r.Advance(len(bom))
	}
	doc := text.NewDoc()
	for {
		r.Skip(token.Whitespace)
		if r.Cur() == 0 {
			break
		}
		if r.Cur() != '<' {
			return nil, p.fail("expected <")
		}
		r.Advance(1)
		n, err := p.node()
		if err != nil {
			return nil, err
		}
		if n != nil {
			doc.Nodes = append(doc.Nodes, n)
		}
	}
	return doc, nil
}

func (p *xmlParser) fail(msg string) error {
	return text.NewParseErr(text.ErrFail, msg, p.r.Pos())
}

func (p *xmlParser) eod() error {
	return p.fail("unexpected end of data")
}

// node parses the construct following '<'. It returns a nil tree for
// constructs that are dropped by the options.
func (p *xmlParser) node() (*text.Tree, error) {
	r := p.r
	switch r.Cur() {
	case '?':
		r.Advance(1)
		if r.Compare("xml", false) && token.IsWhitespace(r.Peek(3)) {
			r.Advance(4)
			return p.declaration()
		}
		return p.pi()
	case '!':
		switch {
		case r.Compare("!--", true):
			r.Advance(3)
			return p.comment()
		case r.Compare("![CDATA[", true):
			r.Advance(8)
			return p.cdata()
		case r.Compare("!DOCTYPE", true) && token.IsWhitespace(r.Peek(8)):
			r.Advance(9)
			return p.doctype()
		}
		start := r.Offset()
		r.Advance(1)
		for r.Cur() != '>' {
			if r.Cur() == 0 {
				return nil, p.eod()
			}
			r.Advance(1)
		}
		r.Advance(1)
		return nil, text.NewParseErr(text.ErrNotSupported, "no node recognized", r.PosAt(start))
	default:
		return p.element()
	}
}

func (p *xmlParser) declaration() (*text.Tree, error) {
	r := p.r
	t := text.NewTree(text.Node{Name: "xml", Kind: text.Declaration})
	r.Skip(token.Whitespace)
	if err := p.attributes(t); err != nil {
		return nil, err
	}
	if !r.Compare("?>", true) {
		if r.Cur() == 0 {
			return nil, p.eod()
		}
		return nil, p.fail("expected ?>")
	}
	r.Advance(2)
	return t, nil
}

func (p *xmlParser) pi() (*text.Tree, error) {
	r := p.r
	start := r.Offset()
	r.Skip(token.NodeName)
	if r.Offset() == start {
		return nil, p.fail("expected PI target")
	}
	name := string(r.Slice(start))
	r.Skip(token.Whitespace)
	v, err := p.verbatim("?>")
	if err != nil {
		return nil, err
	}
	return text.NewTree(text.Node{Name: name, Value: &v, Kind: text.PI}), nil
}

func (p *xmlParser) comment() (*text.Tree, error) {
	v, err := p.verbatim("-->")
	if err != nil {
		return nil, err
	}
	if !p.opts.comments {
		return nil, nil
	}
	return text.NewTree(text.Node{Value: &v, Kind: text.Comment}), nil
}

func (p *xmlParser) cdata() (*text.Tree, error) {
	v, err := p.verbatim("]]>")
	if err != nil {
		return nil, err
	}
	return text.NewTree(text.Node{Value: &v, Kind: text.CData}), nil
}

// verbatim returns the input up to end and moves past end.
func (p *xmlParser) verbatim(end string) (string, error) {
	r := p.r
	start := r.Offset()
	for !r.Compare(end, true) {
		if r.Cur() == 0 {
			return "", p.eod()
		}
		r.Advance(1)
	}
	v := string(r.Slice(start))
	r.Advance(len(end))
	return v, nil
}

func (p *xmlParser) doctype() (*text.Tree, error) {
	r := p.r
	start := r.Offset()
	depth := 0
	for {
		switch r.Cur() {
		case 0:
			return nil, p.eod()
		case '[':
			depth++
		case ']':
			depth--
		case '>':
			if depth <= 0 {
				v := string(r.Slice(start))
				r.Advance(1)
				return text.NewTree(text.Node{Value: &v, Kind: text.Doctype}), nil
			}
		}
		r.Advance(1)
	}
}

func (p *xmlParser) element() (*text.Tree, error) {
	r := p.r
	start := r.Offset()
	r.Skip(token.NodeName)
	if r.Offset() == start {
		if r.Cur() == 0 {
			return nil, p.eod()
		}
		return nil, p.fail("expected element name")
	}
	t := text.NewTree(text.Node{Name: string(r.Slice(start))})
	r.Skip(token.Whitespace)
	if err := p.attributes(t); err != nil {
		return nil, err
	}
	switch r.Cur() {
	case '>':
		r.Advance(1)
		if err := p.contents(t); err != nil {
			return nil, err
		}
	case '/':
		r.Advance(1)
		if r.Cur() != '>' {
			if r.Cur() == 0 {
				return nil, p.eod()
			}
			return nil, p.fail("expected >")
		}
		r.Advance(1)
	case 0:
		return nil, p.eod()
	default:
		return nil, p.fail("expected >")
	}
	return t, nil
}

func (p *xmlParser) attributes(t *text.Tree) error {
	r := p.r
	for token.AttributeName[r.Cur()] {
		start := r.Offset()
		r.Skip(token.AttributeName)
		name := string(r.Slice(start))
		r.Skip(token.Whitespace)
		if r.Cur() != '=' {
			if r.Cur() == 0 {
				return p.eod()
			}
			return p.fail("expected =")
		}
		r.Advance(1)
		r.Skip(token.Whitespace)
		q := r.Cur()
		var v string
		switch q {
		case '\'':
			r.Advance(1)
			v = p.expand(token.AttrDataSingle, token.AttrDataSinglePure, false)
		case '"':
			r.Advance(1)
			v = p.expand(token.AttrDataDouble, token.AttrDataDoublePure, false)
		case 0:
			return p.eod()
		default:
			return p.fail("expected ' or \"")
		}
		if r.Cur() != q {
			if r.Cur() == 0 {
				return p.eod()
			}
			return p.fail("expected ' or \"")
		}
		r.Advance(1)
		t.AddData(text.Node{Name: name, Value: &v, IsAttribute: true})
		r.Skip(token.Whitespace)
	}
	return nil
}

func (p *xmlParser) contents(t *text.Tree) error {
	r := p.r
	for {
		r.Skip(token.Whitespace)
		switch r.Cur() {
		case 0:
			return p.eod()
		case '<':
			if r.Peek(1) == '/' {
				return p.closing(t)
			}
			r.Advance(1)
			c, err := p.node()
			if err != nil {
				return err
			}
			if c != nil {
				if err := t.Add(c); err != nil {
					return err
				}
			}
		default:
			v := strings.TrimRight(p.expand(token.Text, token.TextPureNoWS, true), " ")
			if v == "" {
				continue
			}
			if t.Data.Value == nil {
				t.Data.Value = &v
				continue
			}
			joined := *t.Data.Value + " " + v
			t.Data.Value = &joined
		}
	}
}

func (p *xmlParser) closing(t *text.Tree) error {
	r := p.r
	r.Advance(2)
	start := r.Offset()
	r.Skip(token.NodeName)
	if p.opts.validateClosing && string(r.Slice(start)) != t.Data.Name {
		return text.NewParseErr(text.ErrFail, "invalid closing tag name", r.PosAt(start))
	}
	r.Skip(token.Whitespace)
	if r.Cur() != '>' {
		if r.Cur() == 0 {
			return p.eod()
		}
		return p.fail("expected >")
	}
	r.Advance(1)
	return nil
}

// expand consumes bytes accepted by stop, expanding entities and, when
// normalize is set, collapsing whitespace runs to one space. pure is the
// subset of stop that needs no translation.
func (p *xmlParser) expand(stop, pure *token.Table, normalize bool) string {
	r := p.r
	start := r.Offset()
	r.Skip(pure)
	b := &strings.Builder{}
	b.Write(r.Slice(start))
	for stop[r.Cur()] {
		c := r.Cur()
		if c == '&' {
			if v, n := entity(r.Rest()); n > 0 {
				b.WriteString(v)
				r.Advance(n)
				continue
			}
		}
		if normalize && token.IsWhitespace(c) {
			b.WriteByte(' ')
			r.Skip(token.Whitespace)
			continue
		}
		b.WriteByte(c)
		r.Advance(1)
	}
	return b.String()
}

var entities = map[string]string{
	"amp":  "&",
	"lt":   "<",
	"gt":   ">",
	"quot": "\"",
	"apos": "'",
}

// entity decodes the entity reference at the start of d and returns its
// expansion and length, or 0 when d does not start with a known entity.
func entity(d []byte) (string, int) {
	if len(d) < 3 || d[0] != '&' {
		return "", 0
	}
	end := -1
	for i := 1; i < len(d) && i < 12; i++ {
		if d[i] == ';' {
			end = i
			break
		}
	}
	if end < 0 {
		return "", 0
	}
	name := string(d[1:end])
	if v, ok := entities[name]; ok {
		return v, end + 1
	}
	if name[0] != '#' || len(name) < 2 {
		return "", 0
	}
	var (
		n   uint64
		err error
	)
	if name[1] == 'x' || name[1] == 'X' {
		n, err = strconv.ParseUint(name[2:], 16, 32)
	} else {
		n, err = strconv.ParseUint(name[1:], 10, 32)
	}
	if err != nil || !utf8.ValidRune(rune(n)) || n == 0 {
		return "", 0
	}
	return string(rune(n)), end + 1
}
