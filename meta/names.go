package meta

import "strconv"

const (
	valueNode         = "value"
	typeNode          = "type"
	countNode         = "count"
	valueTypeNode     = "value_type"
	keyTypeNode       = "key_type"
	dynamicTypeNode   = "dynamic_type"
	idNode            = "id"
	infoNode          = "info"
	versionNode       = "version"
	flagsNode         = "flags"
	sharedObjectsNode = "shared_objects"
	dataNode          = "data"
	keyNode           = "key"
	firstNode         = "first"
	secondNode        = "second"
)

// voidType is the value type written for an empty weak pointer.
const voidType = "void"

// NullID is the link id written for a nil reference.
const NullID = ^uint32(0)

var magic = [4]byte{'M', 'G', 'P', 'H'}

func sharedName(i int) string {
	return "shared_" + strconv.Itoa(i)
}

// ElementName is the node name of the i-th element of a slice.
func ElementName(i int) string {
	return "e" + strconv.Itoa(i)
}
