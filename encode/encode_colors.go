package encode

import (
	"strings"

	"github.com/signadot/metagraph/text"

	"github.com/fatih/color"
)

type Colorable struct {
	Kind text.Kind
	Attr ColorAttr
}

type ColorAttr int

const (
	NameColor ColorAttr = iota
	AttrNameColor
	ValueColor
	NumberColor
	BoolColor
	SepColor
)

type Colors struct {
	Default func(string, ...any) string
	Map     map[Colorable]func(string, ...any) string
}

func NewColors() *Colors {
	colors := &Colors{
		Default: colorDefault,
		Map:     map[Colorable]func(string, ...any) string{},
	}
	able := Colorable{Kind: text.General}
	able.Attr = NameColor
	colors.Map[able] = color.RGB(128, 168, 196).SprintfFunc()
	able.Attr = AttrNameColor
	colors.Map[able] = color.RGB(196, 96, 16).SprintfFunc()
	able.Attr = ValueColor
	colors.Map[able] = color.RGB(8, 196, 16).SprintfFunc()
	able.Attr = NumberColor
	colors.Map[able] = color.RGB(128, 216, 236).SprintfFunc()
	able.Attr = BoolColor
	colors.Map[able] = color.CyanString
	able.Attr = SepColor
	colors.Map[able] = color.RGB(196, 128, 128).SprintfFunc()

	for _, k := range []text.Kind{text.Comment, text.Doctype} {
		colors.Map[Colorable{Kind: k, Attr: ValueColor}] = color.BlueString
		colors.Map[Colorable{Kind: k, Attr: SepColor}] = color.BlueString
	}
	colors.Map[Colorable{Kind: text.CData, Attr: ValueColor}] = color.RGB(198, 198, 46).SprintfFunc()
	for _, k := range []text.Kind{text.Declaration, text.PI} {
		colors.Map[Colorable{Kind: k, Attr: NameColor}] = color.RGB(74, 92, 138).SprintfFunc()
		colors.Map[Colorable{Kind: k, Attr: SepColor}] = color.RGB(255, 0, 196).SprintfFunc()
	}
	colors.Map[Colorable{Kind: text.Declaration, Attr: AttrNameColor}] = color.RGB(196, 96, 16).SprintfFunc()
	colors.Map[Colorable{Kind: text.Declaration, Attr: ValueColor}] = color.RGB(8, 196, 16).SprintfFunc()
	for k, f := range colors.Map {
		colors.Map[k] = func(v string, _ ...any) string {
			return f(strings.Replace(v, "%", "%%", -1))
		}
	}
	return colors
}

func colorDefault(v string, _ ...any) string { return v }

func (c *Colors) Color(k text.Kind, a ColorAttr, s string) string {
	return c.Get(k, a)(s)
}

func (c *Colors) Get(k text.Kind, a ColorAttr) func(string, ...any) string {
	f := c.Map[Colorable{Kind: k, Attr: a}]
	if f == nil {
		return c.Default
	}
	return f
}
