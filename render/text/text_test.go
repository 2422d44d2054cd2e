package text

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/wudi/docez/dom"
	"github.com/wudi/docez/unit"
)

func renderString(t *testing.T, doc *dom.Document, opts ...Option) string {
	t.Helper()
	var buf bytes.Buffer
	if err := New(opts...).Render(context.Background(), doc, &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func TestRender_ParagraphsAndHeadings(t *testing.T) {
	doc := dom.NewDocument()
	sec := doc.AddSection()
	sec.AddParagraph("Report").Style = dom.HeadingStyle(1)
	p := sec.AddParagraph("Hello")
	p.AddFootnote("A note.")
	p.AddHyperlink("https://example.com", dom.HyperlinkWeb).AddText(" site")

	out := renderString(t, doc)
	for _, want := range []string{"Report\n======\n", "Hello[1] site <https://example.com>\n", "[1] A note.\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRender_RightTabStop(t *testing.T) {
	doc := dom.NewDocument()
	sec := doc.AddSection()
	p := sec.AddParagraph("Left")
	p.Format.TabStops.Add(dom.TabStop{Position: sec.PageSetup.BodyWidth(), Alignment: dom.TabRight})
	p.AddTab()
	p.AddText("Right")

	out := renderString(t, doc)
	want := "Left" + strings.Repeat(" ", 71) + "Right\n"
	if !strings.Contains(out, want) {
		t.Fatalf("tab not aligned right:\n%q", out)
	}
}

func TestRender_TableWithMerge(t *testing.T) {
	doc := dom.NewDocument()
	sec := doc.AddSection()
	tbl := sec.AddTable(unit.Cm(4), unit.Cm(4))
	r := tbl.AddRow()
	r.Cells[0].AddParagraph("a")
	r.Cells[1].AddParagraph("b")
	r = tbl.AddRow()
	r.Cells[0].AddParagraph("wide")
	r.Cells[0].MergeRight = 1

	out := renderString(t, doc)
	rule := "+" + strings.Repeat("-", 19) + "+" + strings.Repeat("-", 19) + "+"
	want := strings.Join([]string{
		rule,
		"| a" + strings.Repeat(" ", 16) + " | b" + strings.Repeat(" ", 16) + " |",
		rule,
		"| wide" + strings.Repeat(" ", 33) + " |",
		rule,
	}, "\n")
	if !strings.Contains(out, want) {
		t.Fatalf("table layout mismatch:\ngot:\n%s\nwant:\n%s", out, want)
	}
}

func TestRender_HeaderFooterAndSections(t *testing.T) {
	doc := dom.NewDocument()
	for i := 0; i < 2; i++ {
		sec := doc.AddSection()
		sec.Headers.Primary.AddParagraph("Head")
		f := sec.Footers.Primary.AddParagraph("Section ")
		f.AddSectionField()
		sec.AddParagraph("Body")
	}
	out := renderString(t, doc, WithWidth(20))
	for _, want := range []string{"Head\n" + strings.Repeat("-", 20), "Section 1\n", "Section 2\n", strings.Repeat("=", 20)} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWrap(t *testing.T) {
	cases := []struct {
		in   string
		w    int
		want []string
	}{
		{"aaa bbb ccc", 7, []string{"aaa bbb", "ccc"}},
		{"abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"short", 10, []string{"short"}},
		{"", 10, []string{""}},
		{"日本語のテキスト", 6, []string{"日本語", "のテキ", "スト"}},
	}
	for _, tc := range cases {
		if got := wrap(tc.in, tc.w); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("wrap(%q, %d) = %q, want %q", tc.in, tc.w, got, tc.want)
		}
	}
}
