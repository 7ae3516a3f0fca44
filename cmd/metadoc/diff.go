package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/signadot/metagraph/encode"
	"github.com/signadot/metagraph/text"

	"github.com/scott-cotton/cli"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

func diff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		cfg.Diff.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: diff requires 2 args, got %v", cli.ErrUsage, args)
	}
	docs := make([]*text.Doc, 2)
	for i, arg := range args {
		doc, err := getDoc(cc, arg, cfg.parseOpts()...)
		if err != nil {
			return fmt.Errorf("error decoding %s: %w", arg, err)
		}
		docs[i] = doc
	}
	differs, err := diffDocs(cc.Out, docs[0], docs[1], cfg.encOpts(cc.Out, false)...)
	if err != nil {
		return err
	}
	if differs {
		return cli.ExitCodeErr(1)
	}
	return nil
}

// diffDocs writes a line diff of the renderings of a and b and reports
// whether they differ.
func diffDocs(w io.Writer, a, b *text.Doc, opts ...encode.EncodeOption) (bool, error) {
	ba, bb := &bytes.Buffer{}, &bytes.Buffer{}
	if err := encode.Encode(a, ba, opts...); err != nil {
		return false, err
	}
	if err := encode.Encode(b, bb, opts...); err != nil {
		return false, err
	}
	if ba.String() == bb.String() {
		return false, nil
	}
	dmp := diffpatch.New()
	ra, rb, lines := dmp.DiffLinesToRunes(ba.String(), bb.String())
	diffs := dmp.DiffCharsToLines(dmp.DiffMainRunes(ra, rb, false), lines)
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffpatch.DiffDelete:
			prefix = "-"
		case diffpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			if !strings.HasSuffix(line, "\n") {
				line += "\n"
			}
			if _, err := io.WriteString(w, prefix+line); err != nil {
				return true, err
			}
		}
	}
	return true, nil
}
