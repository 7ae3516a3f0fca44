package parse

import "github.com/signadot/metagraph/format"

type parseOpts struct {
	format          *format.Format
	validateClosing bool
	comments        bool
}

func defaultOpts() *parseOpts {
	return &parseOpts{validateClosing: true, comments: true}
}

type ParseOption func(*parseOpts)

func ParseXML() ParseOption {
	return ParseFormat(format.XMLFormat)
}
func ParseJSON() ParseOption {
	return ParseFormat(format.JSONFormat)
}
func ParseFormat(f format.Format) ParseOption {
	return func(o *parseOpts) { o.format = &f }
}

// ParseValidateClosingTags controls whether an XML closing tag must
// repeat the name of the element it closes.
func ParseValidateClosingTags(v bool) ParseOption {
	return func(o *parseOpts) { o.validateClosing = v }
}

// ParseComments controls whether XML comments are kept in the tree.
func ParseComments(v bool) ParseOption {
	return func(o *parseOpts) { o.comments = v }
}
