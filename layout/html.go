package layout

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/wudi/docez/builder"
	"github.com/wudi/docez/colspec"
	"github.com/wudi/docez/dom"
	"github.com/wudi/docez/observability"
	"github.com/wudi/docez/unit"
)

// ComposeHTML parses source as an HTML document and appends its body at the
// document cursor. Elements carrying an id receive a bookmark. A <title> sets
// the document title when none is set yet.
func (e *Engine) ComposeHTML(source string) error {
	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return err
	}
	w := &htmlWalker{e: e}
	return w.blocks(doc, block{})
}

type htmlWalker struct {
	e       *Engine
	pending *builder.Paragraph
}

func isBlock(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.Html, atom.Head, atom.Body, atom.Title, atom.Script, atom.Style,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.P, atom.Div, atom.Section, atom.Article, atom.Header, atom.Footer, atom.Main, atom.Nav,
		atom.Ul, atom.Ol, atom.Li, atom.Pre, atom.Blockquote, atom.Hr, atom.Table:
		return true
	}
	return false
}

// blocks walks the children of n. Runs of inline content between block
// elements are collected into one paragraph.
func (w *htmlWalker) blocks(n *html.Node, b block) error {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isBlock(c) {
			w.flush()
			if err := w.block(c, b); err != nil {
				return err
			}
			continue
		}
		if c.Type == html.TextNode && w.pending == nil && strings.TrimSpace(c.Data) == "" {
			continue
		}
		if c.Type != html.TextNode && c.Type != html.ElementNode {
			continue
		}
		if w.pending == nil {
			w.pending = w.e.paragraph(b)
		}
		if err := w.inline(w.pending.Node(), c); err != nil {
			return err
		}
	}
	w.flush()
	return nil
}

func (w *htmlWalker) flush() {
	if w.pending != nil {
		trimParagraph(w.pending.Node())
		w.pending = nil
	}
}

func (w *htmlWalker) block(n *html.Node, b block) error {
	switch n.DataAtom {
	case atom.Script, atom.Style:
		return nil
	case atom.Title:
		if info := &w.e.d.Node().Info; info.Title == "" {
			info.Title = strings.TrimSpace(collapse(textContent(n)))
		}
		return nil
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level, _ := strconv.Atoi(n.Data[1:])
		p := w.e.d.AddHeading(level, "")
		w.anchor(p, n)
		return w.paragraphContent(p, n)
	case atom.P:
		p := w.e.paragraph(b)
		w.anchor(p, n)
		return w.paragraphContent(p, n)
	case atom.Ul, atom.Ol:
		return w.list(n, b)
	case atom.Li:
		return w.item(n, b.nested(w.e.listIndent), "• ")
	case atom.Pre:
		w.e.codeParagraph(b, strings.Split(strings.TrimSuffix(textContent(n), "\n"), "\n"))
		return nil
	case atom.Blockquote:
		return w.blocks(n, b.quoted(w.e.quoteIndent))
	case atom.Hr:
		w.e.rule(b)
		return nil
	case atom.Table:
		return w.table(n)
	}
	return w.blocks(n, b)
}

func (w *htmlWalker) anchor(p *builder.Paragraph, n *html.Node) {
	if id := attr(n, "id"); id != "" {
		p.AddBookmark(id)
	}
}

func (w *htmlWalker) paragraphContent(p *builder.Paragraph, n *html.Node) error {
	if err := w.inlines(p.Node(), n); err != nil {
		return err
	}
	trimParagraph(p.Node())
	return nil
}

func (w *htmlWalker) list(n *html.Node, b block) error {
	start := -1
	if n.DataAtom == atom.Ol {
		start = 1
		if v, err := strconv.Atoi(attr(n, "start")); err == nil {
			start = v
		}
	}
	inner := b.nested(w.e.listIndent)
	i := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if c.DataAtom != atom.Li {
			if err := w.block(c, inner); err != nil {
				return err
			}
			continue
		}
		if err := w.item(c, inner, bullet(start, i)); err != nil {
			return err
		}
		i++
	}
	return nil
}

// item writes the inline content of a list item as one marked paragraph;
// nested blocks follow at the item's indent.
func (w *htmlWalker) item(n *html.Node, b block, marker string) error {
	p := w.e.paragraph(b).Style(dom.StyleList).AddText(marker)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isBlock(c) {
			if c.DataAtom == atom.P && p != nil {
				if err := w.inlines(p.Node(), c); err != nil {
					return err
				}
				trimParagraph(p.Node())
				p = nil
				continue
			}
			if p != nil {
				trimParagraph(p.Node())
				p = nil
			}
			if err := w.block(c, b); err != nil {
				return err
			}
			continue
		}
		if p == nil {
			if c.Type == html.TextNode && strings.TrimSpace(c.Data) == "" {
				continue
			}
			p = w.e.paragraph(b).Style(dom.StyleList)
		}
		if err := w.inline(p.Node(), c); err != nil {
			return err
		}
	}
	if p != nil {
		trimParagraph(p.Node())
	}
	return nil
}

// table composes rows of td/th cells. The column count is the widest row;
// colspan and rowspan are not interpreted.
func (w *htmlWalker) table(n *html.Node) error {
	var rows []*html.Node
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Tr:
				rows = append(rows, c)
			case atom.Thead, atom.Tbody, atom.Tfoot:
				collect(c)
			}
		}
	}
	collect(n)

	cols := 0
	for _, r := range rows {
		cols = max(cols, len(cells(r)))
	}
	if cols == 0 {
		return nil
	}
	specs := make([]colspec.Spec, cols)
	for i := range specs {
		specs[i] = colspec.Star(1)
	}
	tbl, err := w.e.d.AddTableColumns(specs...)
	if err != nil {
		return err
	}
	if border := attr(n, "border"); border != "" && border != "0" {
		width := unit.Unit(0.5)
		if v, err := strconv.ParseFloat(border, 64); err == nil {
			width = unit.Unit(v) * unit.Point / 2
		}
		tbl.Borders(width, dom.Black)
	}
	for _, r := range rows {
		var values []any
		header := true
		for _, c := range cells(r) {
			p := builder.NewParagraph()
			if err := w.inlines(p.Node(), c); err != nil {
				return err
			}
			trimParagraph(p.Node())
			values = append(values, p)
			header = header && c.DataAtom == atom.Th
		}
		row, err := tbl.AddRow(values...)
		if err != nil {
			return err
		}
		if header {
			row.Heading(true).Bold(true)
		}
	}
	w.e.log.Debug("html table composed", observability.Int("rows", len(rows)), observability.Int("columns", cols))
	return nil
}

func cells(tr *html.Node) []*html.Node {
	var out []*html.Node
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
			out = append(out, c)
		}
	}
	return out
}

func (w *htmlWalker) inlines(dst dom.ElementContainer, n *html.Node) error {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := w.inline(dst, c); err != nil {
			return err
		}
	}
	return nil
}

func (w *htmlWalker) inline(dst dom.ElementContainer, n *html.Node) error {
	if n.Type == html.TextNode {
		return w.e.addText(dst, collapse(n.Data))
	}
	if n.Type != html.ElementNode {
		return nil
	}
	switch n.DataAtom {
	case atom.Br:
		return dst.Add(&dom.LineBreak{})
	case atom.Img:
		if src := attr(n, "src"); src != "" {
			return w.e.inlineImage(dst, src)
		}
		return nil
	case atom.Code, atom.Tt, atom.Kbd, atom.Samp:
		return w.e.codeText(dst, collapse(textContent(n)))
	case atom.A:
		if id := attr(n, "id"); id != "" {
			if err := dst.Add(&dom.BookmarkField{Name: id}); err != nil {
				return err
			}
		}
		href := attr(n, "href")
		if href == "" {
			return w.inlines(dst, n)
		}
		h, err := w.e.link(dst, href)
		if err != nil {
			return err
		}
		return w.inlines(h, n)
	case atom.Script, atom.Style:
		return nil
	}
	if set := fontChange(n.DataAtom); set != nil {
		ft, err := w.e.formatted(dst, set)
		if err != nil {
			return err
		}
		return w.inlines(ft, n)
	}
	return w.inlines(dst, n)
}

// fontChange returns the font override of an inline formatting element, or
// nil for elements that only group content.
func fontChange(a atom.Atom) func(*dom.Font) {
	switch a {
	case atom.B, atom.Strong:
		return func(f *dom.Font) { f.Bold = dom.Bool(true) }
	case atom.I, atom.Em, atom.Cite, atom.Var:
		return func(f *dom.Font) { f.Italic = dom.Bool(true) }
	case atom.U, atom.Ins:
		return func(f *dom.Font) { f.Underline = dom.UnderlineSingle }
	case atom.Sub:
		return func(f *dom.Font) { f.Subscript = dom.Bool(true) }
	case atom.Sup:
		return func(f *dom.Font) { f.Superscript = dom.Bool(true) }
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return sb.String()
}

// collapse replaces runs of HTML whitespace with a single space.
func collapse(s string) string {
	var sb strings.Builder
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				sb.WriteByte(' ')
			}
			space = true
		default:
			sb.WriteRune(r)
			space = false
		}
	}
	return sb.String()
}

// trimParagraph drops the whitespace collapse leaves at both ends of a
// paragraph's top-level text.
func trimParagraph(p *dom.Paragraph) {
	elems := p.Elements
	for len(elems) > 0 {
		if _, ok := elems[0].(*dom.BookmarkField); !ok {
			break
		}
		elems = elems[1:]
	}
	if len(elems) == 0 {
		return
	}
	if t, ok := elems[0].(*dom.Text); ok {
		t.Content = strings.TrimLeft(t.Content, " ")
	}
	if t, ok := elems[len(elems)-1].(*dom.Text); ok {
		t.Content = strings.TrimRight(t.Content, " ")
	}
}
