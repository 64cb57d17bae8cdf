package css

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"
)

func parseCSS(t *testing.T, src string) *Stylesheet {
	t.Helper()
	return NewParser(zaptest.NewLogger(t)).Parse([]byte(src), "test.css")
}

func TestParseSimpleRule(t *testing.T) {
	sheet := parseCSS(t, `.icon { background: url(img/a.png) no-repeat; color: red }`)

	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	if got := rules[0].Selector(); got != ".icon" {
		t.Errorf("selector = %q", got)
	}
	want := []Declaration{
		{Property: "background", Value: "url(img/a.png) no-repeat"},
		{Property: "color", Value: "red"},
	}
	if diff := cmp.Diff(want, rules[0].Decls); diff != "" {
		t.Errorf("declarations mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSelectorGroup(t *testing.T) {
	sheet := parseCSS(t, `h1, h2 > a, .x:hover { color: red }`)

	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	// whitespace around combinators is not significant and is dropped
	if diff := cmp.Diff([]string{"h1", "h2>a", ".x:hover"}, rules[0].Selectors); diff != "" {
		t.Errorf("selectors mismatch (-want +got):\n%s", diff)
	}
}

func TestParseImportant(t *testing.T) {
	sheet := parseCSS(t, `.a { color: red !important; margin: 0 }`)

	decls := sheet.Rules()[0].Decls
	if len(decls) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(decls))
	}
	if !decls[0].Important || decls[0].Value != "red" {
		t.Errorf("unexpected first declaration %+v", decls[0])
	}
	if decls[1].Important {
		t.Errorf("margin must not be important")
	}
}

func TestParsePropertyLowercased(t *testing.T) {
	sheet := parseCSS(t, `.a { BACKGROUND-IMAGE: url(a.png) }`)
	if got := sheet.Rules()[0].Decls[0].Property; got != "background-image" {
		t.Errorf("property = %q", got)
	}
}

func TestParseNestedAtRules(t *testing.T) {
	src := `
@import url(base.css);
.top { color: blue }
@media screen {
  .inner { background-image: url(b.png) }
  @supports (display: grid) {
    .deep { display: grid }
  }
}
@font-face { font-family: X; src: url(x.woff) }
`
	sheet := parseCSS(t, src)

	var selectors []string
	if err := sheet.Walk(func(r *Rule) error {
		selectors = append(selectors, r.Selector())
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{".top", ".inner", ".deep"}, selectors); diff != "" {
		t.Errorf("walk order mismatch (-want +got):\n%s", diff)
	}

	var names []string
	for _, n := range sheet.Nodes {
		if at, ok := n.(*AtRule); ok {
			names = append(names, at.Name)
		}
	}
	if diff := cmp.Diff([]string{"import", "media", "font-face"}, names); diff != "" {
		t.Errorf("at-rules mismatch (-want +got):\n%s", diff)
	}

	ff := sheet.Nodes[len(sheet.Nodes)-1].(*AtRule)
	if !ff.Block || len(ff.Decls) != 2 || ff.Decls[0].Property != "font-family" {
		t.Errorf("unexpected @font-face %+v", ff)
	}
	imp := sheet.Nodes[0].(*AtRule)
	if imp.Block || imp.Prelude != "url(base.css)" {
		t.Errorf("unexpected @import %+v", imp)
	}
}

func TestParseWalkStops(t *testing.T) {
	sheet := parseCSS(t, `.a{color:red} .b{color:blue}`)
	stop := errors.New("stop")
	count := 0
	err := sheet.Walk(func(*Rule) error {
		count++
		return stop
	})
	if !errors.Is(err, stop) || count != 1 {
		t.Errorf("walk did not stop: err=%v count=%d", err, count)
	}
}

func TestParseMalformed(t *testing.T) {
	sheet := parseCSS(t, `.a { color: red }  .b { color: `)

	if len(sheet.Rules()) == 0 || sheet.Rules()[0].Selector() != ".a" {
		t.Fatalf("rules before syntax error must be kept")
	}
}

func TestParseEmpty(t *testing.T) {
	sheet := parseCSS(t, "")
	if len(sheet.Nodes) != 0 || len(sheet.Warnings) != 0 {
		t.Errorf("unexpected result for empty input: %+v", sheet)
	}
}

func TestRuleEditing(t *testing.T) {
	r := &Rule{Selectors: []string{".a"}, Decls: []Declaration{
		{Property: "color", Value: "red"},
		{Property: "background-image", Value: "url(a.png)"},
		{Property: "margin", Value: "0"},
	}}

	if i := r.Property("BACKGROUND-IMAGE"); i != 1 {
		t.Fatalf("Property index = %d", i)
	}
	if i := r.Property("padding"); i != -1 {
		t.Fatalf("missing property index = %d", i)
	}

	r.Replace(1, Declaration{Property: "background-image", Value: "url(s.png)"})
	r.InsertAfter(1,
		Declaration{Property: "background-position", Value: "0% 0%"},
		Declaration{Property: "background-size", Value: "100% 100%"},
	)
	r.Remove(0)

	var got []string
	for _, d := range r.Decls {
		got = append(got, d.String())
	}
	want := []string{
		"background-image: url(s.png)",
		"background-position: 0% 0%",
		"background-size: 100% 100%",
		"margin: 0",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("declarations mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteTo(t *testing.T) {
	sheet := &Stylesheet{Nodes: []Node{
		&AtRule{Name: "charset", Prelude: `"UTF-8"`},
		&Rule{Selectors: []string{"h1", "h2"}, Decls: []Declaration{
			{Property: "color", Value: "red", Important: true},
		}},
		&AtRule{Name: "media", Prelude: "print", Block: true, Nodes: []Node{
			&Rule{Selectors: []string{".a"}, Decls: []Declaration{{Property: "display", Value: "none"}}},
		}},
	}}

	want := `@charset "UTF-8";

h1,
h2 {
  color: red !important;
}

@media print {
  .a {
    display: none;
  }
}
`
	var buf bytes.Buffer
	n, err := sheet.WriteTo(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(buf.Len()) {
		t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
	}
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}

	buf.Reset()
	if _, err := sheet.WriteCompact(&buf); err != nil {
		t.Fatal(err)
	}
	wantCompact := `@charset "UTF-8";h1,h2{color:red!important}@media print{.a{display:none}}`
	if got := buf.String(); got != wantCompact {
		t.Errorf("compact output\n got %s\nwant %s", got, wantCompact)
	}
}

func TestWriteCompactDropsComments(t *testing.T) {
	sheet := &Stylesheet{Nodes: []Node{
		&Comment{Text: "/* header */"},
		&Rule{Selectors: []string{".a"}, Decls: []Declaration{{Property: "color", Value: "red"}}},
		&Rule{Selectors: []string{".empty"}},
	}}
	var buf bytes.Buffer
	if _, err := sheet.WriteCompact(&buf); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != ".a{color:red}" {
		t.Errorf("compact output %q", got)
	}
	if !strings.Contains(sheet.String(), "/* header */") {
		t.Errorf("readable output must keep comments")
	}
}

func TestParseComments(t *testing.T) {
	sheet := parseCSS(t, `/* header */ .t { color: red; /* inner */ margin: 0 } @media print { /* nested */ .p { color: blue } }`)

	if c, ok := sheet.Nodes[0].(*Comment); !ok || c.Text != "/* header */" {
		t.Fatalf("top level comment must be kept, got %#v", sheet.Nodes[0])
	}
	want := []Declaration{
		{Property: "color", Value: "red"},
		{Property: "margin", Value: "0"},
	}
	if diff := cmp.Diff(want, sheet.Rules()[0].Decls); diff != "" {
		t.Errorf("declarations mismatch (-want +got):\n%s", diff)
	}
	out := sheet.String()
	if strings.Contains(out, "inner") || strings.Contains(out, "nested") {
		t.Errorf("comments inside blocks are dropped, got:\n%s", out)
	}
	if len(sheet.Rules()) != 2 {
		t.Errorf("nested rule lost: %d rules", len(sheet.Rules()))
	}
}

func TestRoundTrip(t *testing.T) {
	src := `.a { background: url("img/a b.png") 0 0 no-repeat } @media print { .b { color: red } }`
	first := parseCSS(t, src)
	second := parseCSS(t, first.String())
	if diff := cmp.Diff(first.String(), second.String()); diff != "" {
		t.Errorf("reparse changed output (-first +second):\n%s", diff)
	}
}

func TestCharset(t *testing.T) {
	sheet := parseCSS(t, `@charset "windows-1251"; .a { color: red }`)
	if got := sheet.Charset(); got != "windows-1251" {
		t.Fatalf("Charset() = %q", got)
	}
	sheet.SetCharset("UTF-8")
	if got := sheet.Charset(); got != "UTF-8" {
		t.Errorf("Charset() after SetCharset = %q", got)
	}

	if got := parseCSS(t, `.a { color: red }`).Charset(); got != "" {
		t.Errorf("Charset() without rule = %q", got)
	}
}

func TestSplitSelectors(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a", []string{"a"}},
		{"a, b", []string{"a", "b"}},
		{`a[title="x,y"], b`, []string{`a[title="x,y"]`, "b"}},
		{"b:not(.c, .d),e", []string{"b:not(.c, .d)", "e"}},
		{" , a ,", []string{"a"}},
		{"", nil},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, splitSelectors(tt.in)); diff != "" {
			t.Errorf("splitSelectors(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}
