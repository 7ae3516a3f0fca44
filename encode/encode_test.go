package encode

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/metagraph/format"
	"github.com/signadot/metagraph/parse"
	"github.com/signadot/metagraph/text"
)

func outline(d *text.Doc) []string {
	res := []string{}
	d.Walk(func(t *text.Tree) (bool, error) {
		s := text.Path(t) + "|" + t.Data.Kind.String()
		if t.Data.IsAttribute {
			s += "@"
		}
		if t.Data.Value != nil {
			s += "=" + *t.Data.Value
		}
		res = append(res, s)
		return true, nil
	})
	return res
}

func roundTrip(t *testing.T, in string, f format.Format) {
	t.Helper()
	doc, err := parse.Parse([]byte(in), parse.ParseFormat(f))
	if err != nil {
		t.Fatalf("%q: %v", in, err)
	}
	out, err := encodeString(doc, EncodeFormat(f))
	if err != nil {
		t.Fatalf("%q: %v", in, err)
	}
	doc2, err := parse.Parse([]byte(out), parse.ParseFormat(f))
	if err != nil {
		t.Fatalf("re-parse %q: %v\n%s", in, err, out)
	}
	if diff := cmp.Diff(outline(doc), outline(doc2)); diff != "" {
		t.Errorf("%q round trip (-want +got):\n%s\n%s", in, diff, out)
	}
	if doc.RootArray != doc2.RootArray {
		t.Errorf("%q: root array lost", in)
	}
}

func encodeString(doc *text.Doc, opts ...EncodeOption) (string, error) {
	buf := bytes.NewBuffer(nil)
	err := Encode(doc, buf, opts...)
	return buf.String(), err
}

func TestXMLRoundTrip(t *testing.T) {
	for _, in := range []string{
		`<a/>`,
		`<a b="x&amp;y" c='&quot;q&apos;'/>`,
		`<a>1 &lt; 2</a>`,
		`<a>text<b>inner</b><c/></a>`,
		`<?xml version="1.0"?><!DOCTYPE a [<!ELEMENT a ANY>]><!-- c --><?pi data?><a><![CDATA[<x>]]></a>`,
		`<r><i n="1"/><i n="2"/><i n="3"/></r><r2/>`,
	} {
		roundTrip(t, in, format.XMLFormat)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	for _, in := range []string{
		`{}`,
		`{"a": {}, "b": []}`,
		`{"n": 1023.45e2, "t": true, "z": null, "s": "q\"\\\n\u0001"}`,
		`{"a": {"b": [1, [2, 3], {"c": "d"}]}}`,
		`[{"a": 1}, {"b": 2}]`,
		`[]`,
	} {
		roundTrip(t, in, format.JSONFormat)
	}
}

func TestXMLOutput(t *testing.T) {
	doc, err := parse.Parse([]byte(`<a b="1"><c>x</c><d/></a>`))
	if err != nil {
		t.Fatal(err)
	}
	got, err := encodeString(doc, EncodeFormat(format.XMLFormat))
	if err != nil {
		t.Fatal(err)
	}
	want := "<a b=\"1\">\n\t<c>x</c>\n\t<d />\n</a>\n"
	if got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}
}

func TestXMLSpecialNodes(t *testing.T) {
	doc := text.NewDoc()
	decl := doc.Add(text.Node{Kind: text.Declaration})
	decl.AddData(text.Node{Name: "version", Value: text.Ptr("1.0"), IsAttribute: true})
	doc.Add(text.Node{Kind: text.Doctype, Value: text.Ptr("html")})
	doc.Add(text.Node{Kind: text.Comment, Value: text.Ptr(" c ")})
	doc.Add(text.Node{Name: "go", Kind: text.PI, Value: text.Ptr("fast")})
	doc.Add(text.Node{}).AddData(text.Node{Kind: text.CData, Value: text.Ptr("<&>")})
	got, err := encodeString(doc, EncodeFormat(format.XMLFormat), EncodeIndent("  "))
	if err != nil {
		t.Fatal(err)
	}
	want := `<?xml version="1.0"?>
<!DOCTYPE html>
<!-- c -->
<?go fast?>
<unnamed>
  <![CDATA[<&>]]>
</unnamed>
`
	if got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}
}

func TestXMLAttributeOutsideElement(t *testing.T) {
	doc := text.NewDoc()
	doc.Add(text.Node{Name: "a", IsAttribute: true, Value: text.Ptr("x")})
	if _, err := encodeString(doc, EncodeFormat(format.XMLFormat)); !errors.Is(err, text.ErrFail) {
		t.Errorf("got %v", err)
	}
}

func TestJSONOutput(t *testing.T) {
	doc, err := parse.Parse([]byte(`{"a": {"b": 1, "c": [1, "x"]}, "e": {}}`))
	if err != nil {
		t.Fatal(err)
	}
	got, err := encodeString(doc, EncodeFormat(format.JSONFormat))
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n\t\"a\": {\n\t\t\"b\": 1,\n\t\t\"c\": [\n\t\t\t1,\n\t\t\t\"x\"\n\t\t]\n\t},\n\t\"e\": { }\n}\n"
	if got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}
}

func TestJSONValueNode(t *testing.T) {
	doc, err := parse.Parse([]byte(`<mesh name="cube">8<v/></mesh>`))
	if err != nil {
		t.Fatal(err)
	}
	got, err := encodeString(doc, EncodeFormat(format.JSONFormat), EncodeValueNodeName("text"))
	if err != nil {
		t.Fatal(err)
	}
	back, err := parse.Parse([]byte(got), parse.ParseJSON())
	if err != nil {
		t.Fatalf("%v\n%s", err, got)
	}
	want := []string{
		"/mesh|general",
		"/mesh/name|general=cube",
		"/mesh/v|general",
		"/mesh/text|general=8",
	}
	if diff := cmp.Diff(want, outline(back)); diff != "" {
		t.Errorf("(-want +got):\n%s\n%s", diff, got)
	}

	doc.Nodes[0].Data.EncapsulationName = text.Ptr("count")
	got, err = encodeString(doc, EncodeFormat(format.JSONFormat))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, `"count": "8"`) {
		t.Errorf("encapsulation name not used:\n%s", got)
	}
}

func TestJSONTypedValues(t *testing.T) {
	doc := text.NewDoc()
	doc.Add(text.Node{Name: "i", Value: text.Ptr("12"), ValueType: text.Ptr(text.IntType)})
	doc.Add(text.Node{Name: "b", Value: text.Ptr("true"), ValueType: text.Ptr(text.BoolType)})
	doc.Add(text.Node{Name: "bad", Value: text.Ptr("12abc"), ValueType: text.Ptr(text.IntType)})
	doc.Add(text.Node{Name: "s", Value: text.Ptr("12")})
	got, err := encodeString(doc, EncodeFormat(format.JSONFormat))
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n\t\"i\": 12,\n\t\"b\": true,\n\t\"bad\": \"12abc\",\n\t\"s\": \"12\"\n}\n"
	if got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}
}

func TestIsJSONLiteral(t *testing.T) {
	for v, want := range map[string]bool{
		"0": true, "-0": true, "12": true, "1.5e-3": true, "null": true,
		"": false, "-": false, "01": false, "1.": false, "1e": false, "x": false, "1 ": false,
	} {
		if got := IsJSONLiteral(v); got != want {
			t.Errorf("%q: got %v", v, got)
		}
	}
}

func TestYAML(t *testing.T) {
	doc, err := parse.Parse([]byte(`{"a": {"b": 1, "c": [1, "x"], "f": 2.5}, "e": {}, "n": null}`))
	if err != nil {
		t.Fatal(err)
	}
	got, err := encodeString(doc, EncodeFormat(format.YAMLFormat))
	if err != nil {
		t.Fatal(err)
	}
	for _, frag := range []string{"a:\n", "  b: 1\n", "- x\n", "f: 2.5\n", "e:", "n: null\n"} {
		if !strings.Contains(got, frag) {
			t.Errorf("missing %q in\n%s", frag, got)
		}
	}
	if strings.Index(got, "a:") > strings.Index(got, "e:") {
		t.Errorf("order not kept:\n%s", got)
	}
}

func TestColors(t *testing.T) {
	doc, err := parse.Parse([]byte(`<a b="1%d"><!-- c --></a>`))
	if err != nil {
		t.Fatal(err)
	}
	c := NewColors()
	for _, f := range []format.Format{format.XMLFormat, format.JSONFormat} {
		got, err := encodeString(doc, EncodeFormat(f), EncodeColors(c))
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(got, "1%d") {
			t.Errorf("%s: value mangled:\n%q", f, got)
		}
	}
}

func TestEncodeBinaryNotSupported(t *testing.T) {
	if _, err := encodeString(text.NewDoc(), EncodeFormat(format.BinaryFormat)); !errors.Is(err, text.ErrNotSupported) {
		t.Errorf("got %v", err)
	}
	if FormatFromOpts(EncodeFormat(format.YAMLFormat)) != format.YAMLFormat {
		t.Errorf("format from opts")
	}
}
