package layout

import (
	"testing"

	"github.com/wudi/docez/builder"
	"github.com/wudi/docez/dom"
	"github.com/wudi/docez/unit"
)

func paragraphs(t *testing.T, blocks []dom.Block) []*dom.Paragraph {
	t.Helper()
	var out []*dom.Paragraph
	for _, b := range blocks {
		if p, ok := b.(*dom.Paragraph); ok {
			out = append(out, p)
		}
	}
	return out
}

func findHyperlink(elems []dom.Element) *dom.Hyperlink {
	for _, e := range elems {
		switch v := e.(type) {
		case *dom.Hyperlink:
			return v
		case *dom.FormattedText:
			if h := findHyperlink(v.Elements); h != nil {
				return h
			}
		}
	}
	return nil
}

func TestComposeMarkdown_Features(t *testing.T) {
	d := builder.New()
	engine := NewEngine(d, WithListIndent(unit.Cm(1)))

	md := "# Title\n\n" +
		"Some *soft* and **bold** text with `code`.\nNext line.\n\n" +
		"- one\n- two\n  1. nested\n\n" +
		"```go\nfunc main() {}\n```\n\n" +
		"| Item | Price |\n|:-----|------:|\n| tea | 2 |\n\n" +
		"---\n\n" +
		"[back](#title) or https://example.com\n"

	if err := engine.ComposeMarkdown(md); err != nil {
		t.Fatalf("ComposeMarkdown failed: %v", err)
	}
	blocks := d.Section().Blocks
	paras := paragraphs(t, blocks)
	if len(paras) < 8 {
		t.Fatalf("got %d paragraphs, want at least 8", len(paras))
	}

	h := paras[0]
	if h.Style != dom.HeadingStyle(1) || h.PlainText() != "Title" {
		t.Errorf("heading = %q in %q, want Title in Heading1", h.PlainText(), h.Style)
	}
	if bm, ok := h.Elements[0].(*dom.BookmarkField); !ok || bm.Name != "title" {
		t.Errorf("heading does not start with the bookmark %q", "title")
	}

	body := paras[1]
	if got, want := body.PlainText(), "Some soft and bold text with code. Next line."; got != want {
		t.Errorf("paragraph text = %q, want %q", got, want)
	}
	var italic, bold, code bool
	for _, e := range body.Elements {
		ft, ok := e.(*dom.FormattedText)
		if !ok {
			continue
		}
		switch {
		case ft.Font.Italic != nil && *ft.Font.Italic:
			italic = true
		case ft.Font.Bold != nil && *ft.Font.Bold:
			bold = true
		case ft.Font.Name == "Courier":
			code = true
		}
	}
	if !italic || !bold || !code {
		t.Errorf("inline formatting lost: italic=%v bold=%v code=%v", italic, bold, code)
	}

	items := paras[2:5]
	wantItems := []string{"• one", "• two", "1. nested"}
	for i, p := range items {
		if p.PlainText() != wantItems[i] {
			t.Errorf("list item %d = %q, want %q", i, p.PlainText(), wantItems[i])
		}
		if p.Style != dom.StyleList {
			t.Errorf("list item %d style = %q", i, p.Style)
		}
	}
	if got := *items[2].Format.LeftIndent; got != unit.Cm(2) {
		t.Errorf("nested item indent = %v, want %v", got, unit.Cm(2))
	}

	code0 := paras[5]
	if code0.Format.Font.Name != "Courier" || code0.PlainText() != "func main() {}" {
		t.Errorf("code block = %q in font %q", code0.PlainText(), code0.Format.Font.Name)
	}

	var tbl *dom.Table
	for _, b := range blocks {
		if v, ok := b.(*dom.Table); ok {
			tbl = v
		}
	}
	if tbl == nil {
		t.Fatal("no table composed")
	}
	if tbl.NumColumns() != 2 || len(tbl.Rows) != 2 {
		t.Fatalf("table is %dx%d, want 2x2", tbl.NumColumns(), len(tbl.Rows))
	}
	if tbl.Column(0).Format.Alignment != dom.AlignLeft || tbl.Column(1).Format.Alignment != dom.AlignRight {
		t.Errorf("column alignments = %v, %v", tbl.Column(0).Format.Alignment, tbl.Column(1).Format.Alignment)
	}
	if !tbl.Rows[0].HeadingFormat || tbl.Rows[1].HeadingFormat {
		t.Errorf("only the first row should be a heading row")
	}
	if got := tbl.Rows[1].Cells[0].Blocks[0].(*dom.Paragraph).PlainText(); got != "tea" {
		t.Errorf("cell text = %q, want tea", got)
	}
	if sum := tbl.Column(0).Width + tbl.Column(1).Width; sum != d.BodyWidth() {
		t.Errorf("star columns span %v, want body width %v", sum, d.BodyWidth())
	}

	rule := paras[6]
	if rule.Format.Borders.Bottom.Style != dom.BorderSingle {
		t.Errorf("thematic break has no bottom border")
	}

	last := paras[7]
	link := findHyperlink(last.Elements)
	if link == nil || link.Type != dom.HyperlinkBookmark || link.Name != "title" {
		t.Fatalf("bookmark link not composed: %+v", link)
	}
	var web bool
	for _, e := range last.Elements {
		if h, ok := e.(*dom.Hyperlink); ok && h.Type == dom.HyperlinkWeb && h.Name == "https://example.com" {
			web = true
		}
	}
	if !web {
		t.Errorf("bare URL was not linkified")
	}
}

func TestComposeMarkdown_Normalizes(t *testing.T) {
	const decomposed = "Cafe\u0301"

	d := builder.New()
	if err := NewEngine(d).ComposeMarkdown(decomposed + "\n"); err != nil {
		t.Fatalf("ComposeMarkdown failed: %v", err)
	}
	if got := d.Section().LastParagraph().PlainText(); got != "Caf\u00e9" {
		t.Errorf("text = %q, want NFC form", got)
	}

	d = builder.New()
	if err := NewEngine(d, WithNormalization(false)).ComposeMarkdown(decomposed + "\n"); err != nil {
		t.Fatalf("ComposeMarkdown failed: %v", err)
	}
	if got := d.Section().LastParagraph().PlainText(); got != decomposed {
		t.Errorf("text = %q, want it unchanged", got)
	}
}

func TestComposeHTML_Features(t *testing.T) {
	d := builder.New()
	engine := NewEngine(d, WithCodeFont("Mono"))

	src := `<html><head><title> Report </title><style>p{}</style></head><body>
<h2 id="intro">Intro   text</h2>
<p>Hello <b>bold</b> and <i>italic</i> <a href="#intro">back</a><br>next</p>
loose <em>words</em>
<ul><li>first</li><li>second<ol start="3"><li>third</li></ol></li></ul>
<pre>a
  b</pre>
<hr>
<table border="1"><thead><tr><th>K</th><th>V</th></tr></thead>
<tbody><tr><td>x</td><td><code>y</code></td></tr><tr><td>z</td></tr></tbody></table>
</body></html>`

	if err := engine.ComposeHTML(src); err != nil {
		t.Fatalf("ComposeHTML failed: %v", err)
	}
	if got := d.Node().Info.Title; got != "Report" {
		t.Errorf("title = %q, want Report", got)
	}

	paras := paragraphs(t, d.Section().Blocks)
	want := []string{
		"Intro text",
		"Hello bold and italic back\nnext",
		"loose words",
		"• first",
		"• second",
		"3. third",
		"a\n  b",
		"",
	}
	if len(paras) != len(want) {
		for _, p := range paras {
			t.Logf("  %q", p.PlainText())
		}
		t.Fatalf("got %d paragraphs, want %d", len(paras), len(want))
	}
	for i, p := range paras {
		if p.PlainText() != want[i] {
			t.Errorf("paragraph %d = %q, want %q", i, p.PlainText(), want[i])
		}
	}
	if paras[0].Style != dom.HeadingStyle(2) {
		t.Errorf("heading style = %q", paras[0].Style)
	}
	if link := findHyperlink(paras[1].Elements); link == nil || link.Type != dom.HyperlinkBookmark || link.Name != "intro" {
		t.Errorf("fragment link not composed as bookmark link: %+v", link)
	}
	if paras[6].Format.Font.Name != "Mono" {
		t.Errorf("pre block font = %q, want Mono", paras[6].Format.Font.Name)
	}

	tbl := d.CurrentTable()
	if tbl == nil {
		t.Fatal("no table composed")
	}
	n := tbl.Node()
	if n.NumColumns() != 2 || len(n.Rows) != 3 {
		t.Fatalf("table is %dx%d, want 2x3", n.NumColumns(), len(n.Rows))
	}
	if !n.Rows[0].HeadingFormat || n.Rows[1].HeadingFormat {
		t.Errorf("th row should be the only heading row")
	}
	if !n.Rows[2].Cells[1].IsEmpty() {
		t.Errorf("short row should leave the last cell empty")
	}
	if n.Borders.Width == nil || *n.Borders.Width != 0.5 {
		t.Errorf("border attribute not applied: %v", n.Borders.Width)
	}
}

func TestImagePath(t *testing.T) {
	e := NewEngine(builder.New(), WithBaseDir("/docs"))
	cases := map[string]string{
		"img/a.png":             "/docs/img/a.png",
		"/abs/b.png":            "/abs/b.png",
		"https://example.com/c": "https://example.com/c",
		"file://rel/d.png":      "/docs/rel/d.png",
	}
	for in, want := range cases {
		if got := e.imagePath(in); got != want {
			t.Errorf("imagePath(%q) = %q, want %q", in, got, want)
		}
	}
}
