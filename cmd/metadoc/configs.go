package main

import (
	"fmt"
	"io"
	"os"

	"github.com/signadot/metagraph/encode"
	"github.com/signadot/metagraph/format"
	"github.com/signadot/metagraph/parse"

	"github.com/scott-cotton/cli"

	"github.com/mattn/go-isatty"
)

type MainConfig struct {
	Color  bool   `cli:"name=color desc='encode with color'"`
	Raw    bool   `cli:"name=raw desc='do not escape values while encoding'"`
	Indent string `cli:"name=indent desc='indentation of one level (default tab)'"`
	Gops   bool   `cli:"name=gops desc='start a gops agent'"`

	X bool `cli:"name=x aliases=xml desc='do i/o in xml'"`
	J bool `cli:"name=j aliases=json desc='do i/o in json'"`
	Y bool `cli:"name=y aliases=yaml desc='output yaml'"`

	InFormat, OutFormat *format.Format

	Out      string
	CloseOut func() error

	Main *cli.Command
}

func (cfg *MainConfig) fmtFunc(fps ...**format.Format) cli.FuncOpt {
	return cli.FuncOpt(func(_ *cli.Context, v string) (any, error) {
		f, err := format.ParseFormat(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		for _, fp := range fps {
			*fp = &f
		}
		return f, nil
	})
}

func (cfg *MainConfig) outOpt(cc *cli.Context, a string) (any, error) {
	cfg.Out = a
	if a == "-" {
		return nil, nil
	}
	f, err := os.OpenFile(cfg.Out, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	cc.Out = f
	cfg.CloseOut = f.Close
	return nil, nil
}

func (cfg *MainConfig) parseOpts() []parse.ParseOption {
	var res []parse.ParseOption
	switch {
	case cfg.X:
		res = append(res, parse.ParseXML())
	case cfg.J:
		res = append(res, parse.ParseJSON())
	}
	if cfg.InFormat != nil {
		res = append(res, parse.ParseFormat(*cfg.InFormat))
	}
	return res
}

func (cfg *MainConfig) outFormat() format.Format {
	f := format.XMLFormat
	switch {
	case cfg.J:
		f = format.JSONFormat
	case cfg.Y:
		f = format.YAMLFormat
	}
	if cfg.OutFormat != nil {
		f = *cfg.OutFormat
	}
	return f
}

// encOpts returns the encoding options. With auto set, colors are used
// when w is a terminal and -color was not given.
func (cfg *MainConfig) encOpts(w io.Writer, auto bool) []encode.EncodeOption {
	res := []encode.EncodeOption{
		encode.EncodeFormat(cfg.outFormat()),
		encode.EncodeEscape(!cfg.Raw),
	}
	if cfg.Indent != "" {
		res = append(res, encode.EncodeIndent(cfg.Indent))
	}
	if cfg.Color {
		return append(res, encode.EncodeColors(encode.NewColors()))
	}
	if !auto {
		return res
	}
	colorsSet := false
	for _, opt := range cfg.Main.Opts {
		if opt.Name != "color" {
			continue
		}
		colorsSet = opt.Value != nil
		break
	}
	if colorsSet {
		return res
	}
	f, ok := w.(*os.File)
	if !ok {
		return res
	}
	if isatty.IsTerminal(f.Fd()) {
		res = append(res, encode.EncodeColors(encode.NewColors()))
	}
	return res
}

type ConvertConfig struct {
	*MainConfig

	Convert *cli.Command
}

type ViewConfig struct {
	*MainConfig

	Comments bool `cli:"name=c desc='include comments'"`
	View     *cli.Command
}

func (cfg *ViewConfig) parseOpts() []parse.ParseOption {
	return append(cfg.MainConfig.parseOpts(), parse.ParseComments(cfg.Comments))
}

type QueryConfig struct {
	*MainConfig

	Expr  string `cli:"name=e desc='expr predicate evaluated on every node'"`
	Paths bool   `cli:"name=paths desc='print the paths of matching nodes only'"`

	Query *cli.Command
}

type PatchConfig struct {
	*MainConfig

	PatchFile string `cli:"name=p desc='file holding the JSON patch'"`

	Patch *cli.Command
}

type DiffConfig struct {
	*MainConfig

	Diff *cli.Command
}

type CheckConfig struct {
	*MainConfig

	Unchecked bool `cli:"name=u desc='do not validate closing tag names'"`

	Check *cli.Command
}

func (cfg *CheckConfig) parseOpts() []parse.ParseOption {
	return append(cfg.MainConfig.parseOpts(), parse.ParseValidateClosingTags(!cfg.Unchecked))
}

type HeaderConfig struct {
	*MainConfig

	Header *cli.Command
}
