package main

import (
	"fmt"
	"io"

	"github.com/signadot/metagraph/meta"

	"github.com/scott-cotton/cli"
)

func header(cfg *HeaderConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Header.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"-"}
	}
	for _, file := range args {
		r, err := openInput(cc, file)
		if err != nil {
			return err
		}
		err = writeHeader(cc.Out, file, r)
		r.Close()
		if err != nil {
			return fmt.Errorf("error reading %s: %w", file, err)
		}
	}
	return nil
}

func writeHeader(w io.Writer, name string, r io.Reader) error {
	version, flags, err := meta.ReadHeader(r)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s: version %d, flags %#x (%s)\n", name, version, uint32(flags), flags)
	return err
}
