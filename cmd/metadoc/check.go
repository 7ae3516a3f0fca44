package main

import (
	"fmt"
	"io"

	"github.com/signadot/metagraph/parse"
	"github.com/signadot/metagraph/text"

	"github.com/scott-cotton/cli"
)

func check(cfg *CheckConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Check.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"-"}
	}
	failed := 0
	for _, file := range args {
		r, err := openInput(cc, file)
		if err != nil {
			return err
		}
		ok := checkReader(cc.Out, file, r, cfg.parseOpts()...)
		r.Close()
		if !ok {
			failed++
		}
	}
	if failed != 0 {
		return cli.ExitCodeErr(1)
	}
	return nil
}

// checkReader parses r and reports the result on w.
func checkReader(w io.Writer, name string, r io.Reader, opts ...parse.ParseOption) bool {
	doc, err := parse.ParseReader(r, opts...)
	if err != nil {
		fmt.Fprintf(w, "%s: %v\n", name, err)
		return false
	}
	n := 0
	doc.Walk(func(*text.Tree) (bool, error) {
		n++
		return true, nil
	})
	fmt.Fprintf(w, "%s: ok, %d nodes\n", name, n)
	return true
}
