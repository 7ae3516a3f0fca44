package main

import (
	"fmt"
	"io"

	"github.com/signadot/metagraph/encode"
	"github.com/signadot/metagraph/text"

	"github.com/scott-cotton/cli"
)

func query(cfg *QueryConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Query.Parse(cc, args)
	if err != nil {
		return err
	}
	if cfg.Expr == "" {
		return fmt.Errorf("%w: query requires -e <expr>", cli.ErrUsage)
	}
	sel, err := text.CompileSelector(cfg.Expr)
	if err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	opts := cfg.encOpts(cc.Out, true)
	return eachDoc(cc, args, cfg.parseOpts(), func(_ string, doc *text.Doc) error {
		return queryDoc(cc.Out, sel, doc, cfg.Paths, opts...)
	})
}

// queryDoc writes the nodes of doc matching sel, or their paths.
// Matching attributes are written as elements.
func queryDoc(w io.Writer, sel *text.Selector, doc *text.Doc, paths bool, opts ...encode.EncodeOption) error {
	res := text.NewDoc()
	err := doc.Walk(func(t *text.Tree) (bool, error) {
		ok, err := sel.Match(t)
		if err != nil || !ok {
			return true, err
		}
		if paths {
			_, err := fmt.Fprintln(w, text.Path(t))
			return true, err
		}
		c := t.Clone(nil)
		c.Data.IsAttribute = false
		res.Nodes = append(res.Nodes, c)
		return true, nil
	})
	if err != nil || paths {
		return err
	}
	return encode.Encode(res, w, opts...)
}
