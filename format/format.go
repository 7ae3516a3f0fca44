package format

import (
	"errors"
	"fmt"
)

type Format int

const (
	XMLFormat Format = iota
	JSONFormat
	YAMLFormat
	BinaryFormat
)

var ErrBadFormat = errors.New("bad format")

func ParseFormat(v string) (Format, error) {
	f, ok := map[string]Format{
		"x":      XMLFormat,
		"xml":    XMLFormat,
		"j":      JSONFormat,
		"json":   JSONFormat,
		"y":      YAMLFormat,
		"yaml":   YAMLFormat,
		"b":      BinaryFormat,
		"bin":    BinaryFormat,
		"binary": BinaryFormat,
	}[v]
	if ok {
		return f, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBadFormat, v)
}

func (f Format) String() string {
	d, err := f.MarshalText()
	if err != nil {
		return err.Error()
	}
	return string(d)
}

func (f Format) MarshalText() ([]byte, error) {
	switch f {
	case XMLFormat:
		return []byte("xml"), nil
	case JSONFormat:
		return []byte("json"), nil
	case YAMLFormat:
		return []byte("yaml"), nil
	case BinaryFormat:
		return []byte("binary"), nil
	default:
		return nil, fmt.Errorf("<err: %d is not a format>", f)
	}
}

func (f *Format) UnmarshalText(d []byte) error {
	pf, err := ParseFormat(string(d))
	if err != nil {
		return err
	}
	*f = pf
	return nil
}

func (f Format) IsXML() bool    { return f == XMLFormat }
func (f Format) IsJSON() bool   { return f == JSONFormat }
func (f Format) IsYAML() bool   { return f == YAMLFormat }
func (f Format) IsBinary() bool { return f == BinaryFormat }

// IsText reports whether documents in f are parsed into a text tree.
func (f Format) IsText() bool { return f == XMLFormat || f == JSONFormat }

// Suffix returns the file extension for this format (including the dot).
func (f Format) Suffix() string {
	switch f {
	case XMLFormat:
		return ".xml"
	case JSONFormat:
		return ".json"
	case YAMLFormat:
		return ".yaml"
	case BinaryFormat:
		return ".bin"
	default:
		return ""
	}
}

// FromSuffix guesses a format from a file name.
func FromSuffix(name string) (Format, error) {
	for _, f := range AllFormats() {
		s := f.Suffix()
		if len(name) > len(s) && name[len(name)-len(s):] == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: no format for %q", ErrBadFormat, name)
}

// AllFormats returns all supported formats in preference order.
func AllFormats() []Format {
	return []Format{XMLFormat, JSONFormat, YAMLFormat, BinaryFormat}
}
