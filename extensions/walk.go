package extensions

import (
	"fmt"

	"github.com/wudi/docez/dom"
)

// visitor receives every block and inline element of a document together
// with a readable location such as "section 1, block 3, cell 2:1".
type visitor struct {
	block func(loc string, b dom.Block)
	elem  func(loc string, e dom.Element)
}

func walk(doc *dom.Document, v visitor) {
	for i, s := range doc.Sections {
		walkSection(fmt.Sprintf("section %d", i+1), s, v)
	}
}

func walkSection(loc string, s *dom.Section, v visitor) {
	for _, hf := range headerFooters(s) {
		walkBlocks(loc+" "+hf.name, hf.hf.Blocks, v)
	}
	walkBlocks(loc, s.Blocks, v)
}

type namedHeaderFooter struct {
	name string
	hf   *dom.HeaderFooter
}

func headerFooters(s *dom.Section) []namedHeaderFooter {
	all := []namedHeaderFooter{
		{"header", s.Headers.Primary},
		{"even page header", s.Headers.EvenPage},
		{"first page header", s.Headers.FirstPage},
		{"footer", s.Footers.Primary},
		{"even page footer", s.Footers.EvenPage},
		{"first page footer", s.Footers.FirstPage},
	}
	out := all[:0]
	for _, h := range all {
		if h.hf != nil {
			out = append(out, h)
		}
	}
	return out
}

func walkBlocks(loc string, blocks []dom.Block, v visitor) {
	for i, b := range blocks {
		at := fmt.Sprintf("%s, block %d", loc, i+1)
		if v.block != nil {
			v.block(at, b)
		}
		switch b := b.(type) {
		case *dom.Paragraph:
			walkElements(at, b.Elements, v)
		case *dom.Table:
			for ri, r := range b.Rows {
				for ci, c := range r.Cells {
					walkBlocks(fmt.Sprintf("%s, cell %d:%d", at, ri+1, ci+1), c.Blocks, v)
				}
			}
		case *dom.TextFrame:
			walkBlocks(at+", frame", b.Blocks, v)
		}
	}
}

func walkElements(loc string, elems []dom.Element, v visitor) {
	for _, e := range elems {
		if v.elem != nil {
			v.elem(loc, e)
		}
		switch e := e.(type) {
		case *dom.FormattedText:
			walkElements(loc, e.Elements, v)
		case *dom.Hyperlink:
			walkElements(loc, e.Elements, v)
		case *dom.Footnote:
			walkBlocks(loc+", footnote", e.Blocks, v)
		}
	}
}
