package token

// Table is a character class: Table[c] is true when c belongs to it.
type Table [256]bool

func except(cs ...byte) *Table {
	t := &Table{}
	for i := range t {
		t[i] = true
	}
	t[0] = false
	for _, c := range cs {
		t[c] = false
	}
	return t
}

func only(cs string) *Table {
	t := &Table{}
	for i := 0; i < len(cs); i++ {
		t[cs[i]] = true
	}
	return t
}

var (
	Whitespace = only(" \n\r\t")
	Digits     = only("0123456789")
	HexDigits  = only("0123456789abcdefABCDEF")

	// NodeName accepts element and processing instruction name bytes.
	NodeName = except(' ', '\n', '\r', '\t', '/', '>', '?')
	// AttributeName accepts attribute name bytes.
	AttributeName = except(' ', '\n', '\r', '\t', '/', '<', '>', '=', '?', '!')

	// Attribute value tables stop at the closing quote. The Pure
	// variants also stop at entities.
	AttrDataSingle     = except('\'')
	AttrDataSinglePure = except('\'', '&')
	AttrDataDouble     = except('"')
	AttrDataDoublePure = except('"', '&')

	// Text stops at markup.
	Text = except('<')
	// TextPure stops at markup and entities.
	TextPure = except('<', '&')
	// TextPureNoWS stops at markup, entities and whitespace.
	TextPureNoWS = except('<', '&', ' ', '\n', '\r', '\t')
)

func IsWhitespace(c byte) bool { return Whitespace[c] }
func IsDigit(c byte) bool      { return Digits[c] }
