package encode

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/signadot/metagraph/text"
)

func encodeJSON(doc *text.Doc, w io.Writer, es *EncState) error {
	open, closer := "{", "}"
	if doc.RootArray {
		open, closer = "[", "]"
	}
	if err := writeString(w, es.color(text.General, SepColor, open)+"\n"); err != nil {
		return err
	}
	for i, t := range doc.Nodes {
		if err := es.jsonNode(w, t, !doc.RootArray, 1); err != nil {
			return err
		}
		sep := "\n"
		if i != len(doc.Nodes)-1 {
			sep = es.color(text.General, SepColor, ",") + sep
		}
		if err := writeString(w, sep); err != nil {
			return err
		}
	}
	return writeString(w, es.color(text.General, SepColor, closer)+"\n")
}

func (es *EncState) jsonNode(w io.Writer, t *text.Tree, named bool, depth int) error {
	n := &t.Data
	tab := es.tabs(depth)
	s := tab
	if named {
		s += es.color(text.General, NameColor, es.jsonQuote(n.Name)) + es.color(text.General, SepColor, ":") + " "
	}
	hasValue := n.Value != nil
	switch {
	case t.Count() != 0:
		open, closer := "{", "}"
		if n.IsArray {
			open, closer = "[", "]"
		}
		if err := writeString(w, s+es.color(text.General, SepColor, open)+"\n"); err != nil {
			return err
		}
		children := t.Children()
		for i, c := range children {
			if err := es.jsonNode(w, c, !n.IsArray, depth+1); err != nil {
				return err
			}
			sep := "\n"
			if i != len(children)-1 || hasValue {
				sep = es.color(text.General, SepColor, ",") + sep
			}
			if err := writeString(w, sep); err != nil {
				return err
			}
		}
		if hasValue {
			vn := text.NewTree(text.Node{
				Name:      es.valueName,
				Value:     n.Value,
				ValueType: n.ValueType,
			})
			if n.EncapsulationName != nil {
				vn.Data.Name = *n.EncapsulationName
			}
			if err := es.jsonNode(w, vn, !n.IsArray, depth+1); err != nil {
				return err
			}
			if err := writeString(w, "\n"); err != nil {
				return err
			}
		}
		return writeString(w, tab+es.color(text.General, SepColor, closer))
	case hasValue:
		return writeString(w, s+es.jsonValue(n))
	case n.IsArray:
		return writeString(w, s+es.color(text.General, SepColor, "[ ]"))
	default:
		return writeString(w, s+es.color(text.General, SepColor, "{ }"))
	}
}

func (es *EncState) jsonValue(n *text.Node) string {
	v := *n.Value
	if text.IsUnquoted(n.Type()) && IsJSONLiteral(v) {
		if n.Type() == text.BoolType {
			return es.color(text.General, BoolColor, v)
		}
		return es.color(text.General, NumberColor, v)
	}
	return es.color(text.General, ValueColor, es.jsonQuote(v))
}

// IsJSONLiteral reports whether v may be written as an unquoted JSON
// value.
func IsJSONLiteral(v string) bool {
	switch v {
	case "true", "false", "null":
		return true
	case "":
		return false
	}
	i := 0
	if v[i] == '-' {
		i++
	}
	digits := func() int {
		j := i
		for i < len(v) && v[i] >= '0' && v[i] <= '9' {
			i++
		}
		return i - j
	}
	switch {
	case i < len(v) && v[i] == '0':
		i++
	case digits() == 0:
		return false
	}
	if i < len(v) && v[i] == '.' {
		i++
		if digits() == 0 {
			return false
		}
	}
	if i < len(v) && (v[i] == 'e' || v[i] == 'E') {
		i++
		if i < len(v) && (v[i] == '+' || v[i] == '-') {
			i++
		}
		if digits() == 0 {
			return false
		}
	}
	return i == len(v)
}

func (es *EncState) jsonQuote(v string) string {
	if !es.escape {
		return "\"" + v + "\""
	}
	return Quote(v)
}

// Quote returns v as a JSON string literal.
func Quote(v string) string {
	b := &strings.Builder{}
	b.Grow(len(v) + 2)
	b.WriteByte('"')
	for i := 0; i < len(v); {
		c := v[i]
		if c >= utf8.RuneSelf {
			r, n := utf8.DecodeRuneInString(v[i:])
			if r == utf8.RuneError && n == 1 {
				b.WriteRune(utf8.RuneError)
			} else {
				b.WriteString(v[i : i+n])
			}
			i += n
			continue
		}
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			if c < 0x20 {
				fmt.Fprintf(b, `\u%04x`, c)
			} else {
				b.WriteByte(c)
			}
		}
		i++
	}
	b.WriteByte('"')
	return b.String()
}
