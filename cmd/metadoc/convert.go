package main

import (
	"io"

	"github.com/signadot/metagraph/encode"
	"github.com/signadot/metagraph/text"

	"github.com/scott-cotton/cli"
)

func convert(cfg *ConvertConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Convert.Parse(cc, args)
	if err != nil {
		return err
	}
	opts := cfg.encOpts(cc.Out, false)
	return eachDoc(cc, args, cfg.parseOpts(), func(_ string, doc *text.Doc) error {
		return encode.Encode(doc, cc.Out, opts...)
	})
}

func view(cfg *ViewConfig, cc *cli.Context, args []string) error {
	args, err := cfg.View.Parse(cc, args)
	if err != nil {
		return err
	}
	opts := cfg.encOpts(cc.Out, true)
	n := 0
	return eachDoc(cc, args, cfg.parseOpts(), func(_ string, doc *text.Doc) error {
		if n > 0 {
			if _, err := io.WriteString(cc.Out, "\n"); err != nil {
				return err
			}
		}
		n++
		return encode.Encode(doc, cc.Out, opts...)
	})
}
