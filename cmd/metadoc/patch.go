package main

import (
	"bytes"
	"fmt"
	"os"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/signadot/metagraph/debug"
	"github.com/signadot/metagraph/encode"
	"github.com/signadot/metagraph/format"
	"github.com/signadot/metagraph/parse"
	"github.com/signadot/metagraph/text"

	"github.com/scott-cotton/cli"
)

func patch(cfg *PatchConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Patch.Parse(cc, args)
	if err != nil {
		cfg.Patch.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if cfg.PatchFile == "" {
		return fmt.Errorf("%w: patch requires -p <patch file>", cli.ErrUsage)
	}
	d, err := os.ReadFile(cfg.PatchFile)
	if err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	ops, err := jsonpatch.DecodePatch(d)
	if err != nil {
		return fmt.Errorf("error decoding patch %s: %w", cfg.PatchFile, err)
	}
	opts := cfg.encOpts(cc.Out, false)
	return eachDoc(cc, args, cfg.parseOpts(), func(_ string, doc *text.Doc) error {
		res, err := patchDoc(doc, ops)
		if err != nil {
			return err
		}
		return encode.Encode(res, cc.Out, opts...)
	})
}

// patchDoc applies ops to the JSON rendering of doc and parses the
// result. Object members come back in the order the patch library
// writes them.
func patchDoc(doc *text.Doc, ops jsonpatch.Patch) (*text.Doc, error) {
	buf := &bytes.Buffer{}
	if err := encode.Encode(doc, buf, encode.EncodeFormat(format.JSONFormat)); err != nil {
		return nil, err
	}
	if debug.Encode() {
		debug.Logf("patching %s\n", buf.String())
	}
	out, err := ops.Apply(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("error applying patch: %w", err)
	}
	return parse.Parse(out, parse.ParseJSON())
}
