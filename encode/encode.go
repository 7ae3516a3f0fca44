package encode

import (
	"bytes"
	"fmt"
	"io"

	"github.com/signadot/metagraph/debug"
	"github.com/signadot/metagraph/format"
	"github.com/signadot/metagraph/text"
)

// DefaultValueNodeName names the synthetic member carrying the value of
// a JSON node that also has children.
const DefaultValueNodeName = "value"

type EncState struct {
	format    format.Format
	indent    string
	valueName string
	escape    bool

	Color func(text.Kind, ColorAttr, string) string
}

func Encode(doc *text.Doc, w io.Writer, opts ...EncodeOption) error {
	es := &EncState{
		indent:    "\t",
		valueName: DefaultValueNodeName,
		escape:    true,
	}
	for _, opt := range opts {
		opt(es)
	}
	if debug.Encode() {
		debug.Logf("encode %d nodes as %s\n", len(doc.Nodes), es.format)
	}
	switch es.format {
	case format.XMLFormat:
		return encodeXML(doc, w, es)
	case format.JSONFormat:
		return encodeJSON(doc, w, es)
	case format.YAMLFormat:
		return encodeYAML(doc, w, es)
	default:
		return fmt.Errorf("%w: cannot encode text as %s", text.ErrNotSupported, es.format)
	}
}

// MustString encodes doc and panics on error.
func MustString(doc *text.Doc, opts ...EncodeOption) string {
	buf := bytes.NewBuffer(nil)
	if err := Encode(doc, buf, opts...); err != nil {
		panic(err)
	}
	return buf.String()
}

func (es *EncState) color(k text.Kind, a ColorAttr, s string) string {
	if es.Color == nil {
		return s
	}
	return es.Color(k, a, s)
}

func (es *EncState) tabs(depth int) string {
	b := make([]byte, 0, depth*len(es.indent))
	for range depth {
		b = append(b, es.indent...)
	}
	return string(b)
}

func writeString(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	return err
}
