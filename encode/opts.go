package encode

import "github.com/signadot/metagraph/format"

type EncodeOption func(*EncState)

func EncodeFormat(f format.Format) EncodeOption {
	return func(es *EncState) { es.format = f }
}

// FormatFromOpts extracts the format from encode options.
func FormatFromOpts(opts ...EncodeOption) format.Format {
	es := &EncState{}
	for _, opt := range opts {
		opt(es)
	}
	return es.format
}

// EncodeIndent sets the string written once per depth level.
func EncodeIndent(s string) EncodeOption {
	return func(es *EncState) { es.indent = s }
}

// EncodeValueNodeName sets the name of the synthetic JSON member that
// carries the value of a node which also has children.
func EncodeValueNodeName(name string) EncodeOption {
	return func(es *EncState) { es.valueName = name }
}

// EncodeEscape controls entity and string escaping of values.
func EncodeEscape(v bool) EncodeOption {
	return func(es *EncState) { es.escape = v }
}

func EncodeColors(c *Colors) EncodeOption {
	return func(es *EncState) { es.Color = c.Color }
}
