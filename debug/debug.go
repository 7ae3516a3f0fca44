package debug

import (
	"os"
	"strconv"
)

type debug struct {
	Parse  bool
	Encode bool
	Link   bool
	Meta   bool
}

var d *debug

func init() {
	d = &debug{}
	d.Parse = boolEnv("METAGRAPH_DEBUG_PARSE")
	d.Encode = boolEnv("METAGRAPH_DEBUG_ENCODE")
	d.Link = boolEnv("METAGRAPH_DEBUG_LINK")
	d.Meta = boolEnv("METAGRAPH_DEBUG_META")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Parse() bool {
	return d.Parse
}
func Encode() bool {
	return d.Encode
}
func Link() bool {
	return d.Link
}
func Meta() bool {
	return d.Meta
}
