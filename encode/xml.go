package encode

import (
	"fmt"
	"io"
	"strings"

	"github.com/signadot/metagraph/text"
)

func encodeXML(doc *text.Doc, w io.Writer, es *EncState) error {
	for _, t := range doc.Nodes {
		if err := es.xmlNode(w, t, 0); err != nil {
			return err
		}
	}
	return nil
}

var (
	xmlTextEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	xmlAttrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\"", "&quot;", "'", "&apos;")
)

func (es *EncState) xmlText(s string) string {
	if !es.escape {
		return s
	}
	return xmlTextEscaper.Replace(s)
}

func (es *EncState) xmlNode(w io.Writer, t *text.Tree, depth int) error {
	n := &t.Data
	if n.IsAttribute {
		return fmt.Errorf("%w: attribute %q outside of an element", text.ErrFail, n.Name)
	}
	k := n.Kind
	tab := es.tabs(depth)
	var s string
	switch k {
	case text.Comment:
		s = es.color(k, SepColor, "<!--") + es.color(k, ValueColor, n.Str()) + es.color(k, SepColor, "-->")
	case text.CData:
		s = "<![CDATA[" + es.color(k, ValueColor, n.Str()) + "]]>"
	case text.Doctype:
		s = es.color(k, SepColor, "<!DOCTYPE ") + es.color(k, ValueColor, n.Str()) + es.color(k, SepColor, ">")
	case text.PI:
		s = es.color(k, SepColor, "<?") + es.color(k, NameColor, n.Name)
		if n.Value != nil {
			s += " " + *n.Value
		}
		s += es.color(k, SepColor, "?>")
	case text.Declaration:
		attrs, err := es.xmlAttrs(t)
		if err != nil {
			return err
		}
		s = es.color(k, SepColor, "<?") + es.color(k, NameColor, "xml") + attrs + es.color(k, SepColor, "?>")
	default:
		return es.xmlElement(w, t, depth)
	}
	return writeString(w, tab+s+"\n")
}

func (es *EncState) xmlAttrs(t *text.Tree) (string, error) {
	b := &strings.Builder{}
	k := t.Data.Kind
	for _, c := range t.Children() {
		if !c.Data.IsAttribute {
			continue
		}
		if c.Data.Name == "" {
			return "", fmt.Errorf("%w: unnamed attribute of %q", text.ErrFail, t.Data.Name)
		}
		v := c.Data.Str()
		if es.escape {
			v = xmlAttrEscaper.Replace(v)
		}
		b.WriteString(" ")
		b.WriteString(es.color(k, AttrNameColor, c.Data.Name))
		b.WriteString(es.color(k, SepColor, "=\""))
		b.WriteString(es.color(k, ValueColor, v))
		b.WriteString(es.color(k, SepColor, "\""))
	}
	return b.String(), nil
}

func (es *EncState) xmlElement(w io.Writer, t *text.Tree, depth int) error {
	n := &t.Data
	tab := es.tabs(depth)
	name := n.Name
	if name == "" {
		name = "unnamed"
	}
	attrs, err := es.xmlAttrs(t)
	if err != nil {
		return err
	}
	elts := text.Elements(t)
	empty := n.Value == nil && len(elts) == 0
	open := es.color(text.General, SepColor, "<") + es.color(text.General, NameColor, name) + attrs
	if empty {
		return writeString(w, tab+open+es.color(text.General, SepColor, " />")+"\n")
	}
	open += es.color(text.General, SepColor, ">")
	if n.Value != nil {
		open += es.color(text.General, ValueColor, es.xmlText(*n.Value))
	}
	if err := writeString(w, tab+open); err != nil {
		return err
	}
	if len(elts) != 0 {
		if err := writeString(w, "\n"); err != nil {
			return err
		}
		for _, c := range elts {
			if err := es.xmlNode(w, c, depth+1); err != nil {
				return err
			}
		}
		if err := writeString(w, tab); err != nil {
			return err
		}
	}
	closeTag := es.color(text.General, SepColor, "</") + es.color(text.General, NameColor, name) + es.color(text.General, SepColor, ">")
	return writeString(w, closeTag+"\n")
}
