package layout

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/wudi/docez/builder"
	"github.com/wudi/docez/colspec"
	"github.com/wudi/docez/dom"
	"github.com/wudi/docez/observability"
)

// ComposeMarkdown parses source as CommonMark with GFM tables and autolinks
// and appends the result at the document cursor. Headings receive a
// bookmark named after their generated id, so "#id" links resolve.
func (e *Engine) ComposeMarkdown(source string) error {
	md := goldmark.New(
		goldmark.WithExtensions(extension.Table, extension.Linkify),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
	src := []byte(source)
	doc := md.Parser().Parse(text.NewReader(src))

	w := &mdWalker{e: e, src: src}
	return w.blocks(doc, block{})
}

type mdWalker struct {
	e   *Engine
	src []byte
}

func (w *mdWalker) blocks(parent ast.Node, b block) error {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if err := w.block(n, b); err != nil {
			return err
		}
	}
	return nil
}

func (w *mdWalker) block(n ast.Node, b block) error {
	switch n := n.(type) {
	case *ast.Heading:
		p := w.e.d.AddHeading(n.Level, "")
		if id, ok := n.AttributeString("id"); ok {
			if name, ok := id.([]byte); ok && len(name) > 0 {
				p.AddBookmark(string(name))
			}
		}
		return w.inlines(p.Node(), n)
	case *ast.Paragraph, *ast.TextBlock:
		return w.inlines(w.e.paragraph(b).Node(), n)
	case *ast.List:
		return w.list(n, b)
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		w.e.codeParagraph(b, w.lines(n))
	case *ast.Blockquote:
		return w.blocks(n, b.quoted(w.e.quoteIndent))
	case *ast.ThematicBreak:
		w.e.rule(b)
	case *east.Table:
		return w.table(n)
	default:
		w.e.log.Debug("markdown block skipped", observability.String("kind", n.Kind().String()))
	}
	return nil
}

func (w *mdWalker) lines(n ast.Node) []string {
	segs := n.Lines()
	out := make([]string, 0, segs.Len())
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		out = append(out, strings.TrimRight(string(seg.Value(w.src)), "\r\n"))
	}
	return out
}

// list writes one paragraph per item paragraph; only the first one of an
// item carries the marker. Nested lists indent one more level.
func (w *mdWalker) list(l *ast.List, b block) error {
	start := -1
	if l.IsOrdered() {
		start = l.Start
	}
	inner := b.nested(w.e.listIndent)
	i := 0
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		marked := false
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			switch c.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				p := w.e.paragraph(inner).Style(dom.StyleList)
				if !marked {
					p.AddText(bullet(start, i))
					marked = true
				}
				if err := w.inlines(p.Node(), c); err != nil {
					return err
				}
			default:
				if err := w.block(c, inner); err != nil {
					return err
				}
			}
		}
		i++
	}
	return nil
}

func (w *mdWalker) table(t *east.Table) error {
	if len(t.Alignments) == 0 {
		return nil
	}
	specs := make([]colspec.Spec, len(t.Alignments))
	for i, a := range t.Alignments {
		specs[i] = colspec.Star(1).Align(columnAlignment(a))
	}
	tbl, err := w.e.d.AddTableColumns(specs...)
	if err != nil {
		return err
	}
	tbl.Borders(0.5, dom.Gray)
	for r := t.FirstChild(); r != nil; r = r.NextSibling() {
		var values []any
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			p := builder.NewParagraph()
			if err := w.inlines(p.Node(), c); err != nil {
				return err
			}
			values = append(values, p)
		}
		row, err := tbl.AddRow(values...)
		if err != nil {
			return err
		}
		if _, ok := r.(*east.TableHeader); ok {
			row.Heading(true).Bold(true)
		}
	}
	return nil
}

func columnAlignment(a east.Alignment) dom.Alignment {
	switch a {
	case east.AlignLeft:
		return dom.AlignLeft
	case east.AlignRight:
		return dom.AlignRight
	case east.AlignCenter:
		return dom.AlignCenter
	}
	return dom.AlignUnset
}

func (w *mdWalker) inlines(dst dom.ElementContainer, parent ast.Node) error {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if err := w.inline(dst, n); err != nil {
			return err
		}
	}
	return nil
}

func (w *mdWalker) inline(dst dom.ElementContainer, n ast.Node) error {
	switch n := n.(type) {
	case *ast.Text:
		if err := w.e.addText(dst, string(n.Segment.Value(w.src))); err != nil {
			return err
		}
		switch {
		case n.HardLineBreak():
			return dst.Add(&dom.LineBreak{})
		case n.SoftLineBreak():
			return dst.Add(dom.NewText(" "))
		}
	case *ast.String:
		return w.e.addText(dst, string(n.Value))
	case *ast.CodeSpan:
		return w.e.codeText(dst, w.plain(n))
	case *ast.Emphasis:
		ft, err := w.e.formatted(dst, func(f *dom.Font) {
			if n.Level >= 2 {
				f.Bold = dom.Bool(true)
			} else {
				f.Italic = dom.Bool(true)
			}
		})
		if err != nil {
			return err
		}
		return w.inlines(ft, n)
	case *ast.Link:
		h, err := w.e.link(dst, string(n.Destination))
		if err != nil {
			return err
		}
		return w.inlines(h, n)
	case *ast.AutoLink:
		h, err := w.e.link(dst, string(n.URL(w.src)))
		if err != nil {
			return err
		}
		return w.e.addText(h, string(n.Label(w.src)))
	case *ast.Image:
		return w.e.inlineImage(dst, string(n.Destination))
	case *ast.RawHTML:
		w.e.log.Debug("raw html skipped")
	default:
		return w.inlines(dst, n)
	}
	return nil
}

// plain concatenates the literal text below n.
func (w *mdWalker) plain(n ast.Node) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			sb.Write(c.Segment.Value(w.src))
		case *ast.String:
			sb.Write(c.Value)
		}
	}
	return sb.String()
}
