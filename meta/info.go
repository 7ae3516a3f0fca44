package meta

import (
	"strings"

	"go.uber.org/zap"
)

// Flags select what a serialized stream carries besides values.
type Flags uint32

const (
	// LittleEndian selects the byte order of binary values.
	LittleEndian Flags = 1 << iota
	// TypeInfo writes the type name of every parameter and checks it on
	// load.
	TypeInfo
	// Linkage writes an id for every parameter so that references can be
	// resolved.
	Linkage
	// BinaryNames writes parameter names in binary streams so that
	// children are matched by name instead of position.
	BinaryNames
	// SizeInfo writes the body size of every binary node so that unknown
	// nodes can be skipped.
	SizeInfo
	// ValueEncapsulation puts text values in a "value" child node.
	ValueEncapsulation

	allFlags = LittleEndian | TypeInfo | Linkage | BinaryNames | SizeInfo | ValueEncapsulation
)

var flagNames = []struct {
	f    Flags
	name string
}{
	{LittleEndian, "little-endian"},
	{TypeInfo, "type-info"},
	{Linkage, "linkage"},
	{BinaryNames, "binary-names"},
	{SizeInfo, "size-info"},
	{ValueEncapsulation, "value-encapsulation"},
}

func (f Flags) Has(x Flags) bool { return f&x == x }

func (f Flags) String() string {
	var parts []string
	for _, fn := range flagNames {
		if f.Has(fn.f) {
			parts = append(parts, fn.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Info configures a serialization session.
type Info struct {
	Version uint32
	Flags   Flags
	// Logger receives the warnings of a session. A nil Logger discards
	// them.
	Logger *zap.Logger
	// Registry resolves the dynamic types of Poly parameters.
	Registry *Registry

	slots []func(string)
}

// Complete carries every flag.
func Complete() Info {
	return Info{Flags: allFlags}
}

// Minimal carries what is needed to resolve links.
func Minimal() Info {
	return Info{Flags: LittleEndian | Linkage}
}

// Pure carries values only.
func Pure() Info {
	return Info{Flags: LittleEndian}
}

func (i *Info) HasTypeInfo() bool    { return i.Flags.Has(TypeInfo) }
func (i *Info) HasLinkage() bool     { return i.Flags.Has(Linkage) }
func (i *Info) HasNames() bool       { return i.Flags.Has(BinaryNames) }
func (i *Info) HasSizeInfo() bool    { return i.Flags.Has(SizeInfo) }
func (i *Info) IsLittleEndian() bool { return i.Flags.Has(LittleEndian) }

// ConnectLog adds fn to the functions called with every warning.
func (i *Info) ConnectLog(fn func(msg string)) {
	i.slots = append(i.slots, fn)
}

func (i *Info) LogMessage(msg string) {
	if i.Logger != nil {
		i.Logger.Warn(msg, zap.Uint32("version", i.Version), zap.Stringer("flags", i.Flags))
	}
	for _, fn := range i.slots {
		fn(msg)
	}
}
