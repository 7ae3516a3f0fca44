package encode

import (
	"io"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/signadot/metagraph/text"
)

func encodeYAML(doc *text.Doc, w io.Writer, es *EncState) error {
	var v any
	if doc.RootArray {
		seq := make([]any, 0, len(doc.Nodes))
		for _, t := range doc.Nodes {
			seq = append(seq, es.yamlValue(t))
		}
		v = seq
	} else {
		m := yaml.MapSlice{}
		for _, t := range doc.Nodes {
			m = append(m, yaml.MapItem{Key: t.Data.Name, Value: es.yamlValue(t)})
		}
		v = m
	}
	d, err := yaml.MarshalWithOptions(v, yaml.Indent(2))
	if err != nil {
		return err
	}
	_, err = w.Write(d)
	return err
}

// yamlValue follows the JSON structural rules: arrays become sequences,
// other nodes with children become ordered mappings.
func (es *EncState) yamlValue(t *text.Tree) any {
	n := &t.Data
	if t.Count() == 0 {
		switch {
		case n.Value != nil:
			return yamlScalar(n)
		case n.IsArray:
			return []any{}
		default:
			return yaml.MapSlice{}
		}
	}
	if n.IsArray {
		seq := make([]any, 0, t.Count()+1)
		for _, c := range t.Children() {
			seq = append(seq, es.yamlValue(c))
		}
		if n.Value != nil {
			seq = append(seq, yamlScalar(n))
		}
		return seq
	}
	m := make(yaml.MapSlice, 0, t.Count()+1)
	for _, c := range t.Children() {
		m = append(m, yaml.MapItem{Key: c.Data.Name, Value: es.yamlValue(c)})
	}
	if n.Value != nil {
		name := es.valueName
		if n.EncapsulationName != nil {
			name = *n.EncapsulationName
		}
		m = append(m, yaml.MapItem{Key: name, Value: yamlScalar(n)})
	}
	return m
}

func yamlScalar(n *text.Node) any {
	v := *n.Value
	if !text.IsUnquoted(n.Type()) || !IsJSONLiteral(v) {
		return v
	}
	switch v {
	case "null":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}
