package debug

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/signadot/metagraph/text"
)

func Logf(msg string, args ...any) {
	for i := range args {
		a := args[i]
		switch x := a.(type) {
		case map[string]any, []any:
			d, err := json.MarshalIndent(a, "   |", "  ")
			if err != nil {
				args[i] = fmt.Sprintf("%v", a)
				continue
			}
			args[i] = string(d)
		case *text.Tree:
			args[i] = outline(x)
		default:
		}
	}
	fmt.Fprintf(os.Stderr, msg, args...)
}

func outline(t *text.Tree) string {
	b := &strings.Builder{}
	t.Walk(func(n *text.Tree) (bool, error) {
		fmt.Fprintf(b, "\n   |%s%s", strings.Repeat("  ", n.Depth()), n.Data.Name)
		if n.Data.Value != nil {
			fmt.Fprintf(b, "=%q", *n.Data.Value)
		}
		return true, nil
	})
	return b.String()
}
