package builder

import (
	"fmt"

	"github.com/wudi/docez/dom"
	"github.com/wudi/docez/observability"
)

// HeaderFooter wraps one header or footer slot of a section.
type HeaderFooter struct {
	hf  *dom.HeaderFooter
	log observability.Logger
}

func (h *HeaderFooter) Node() *dom.HeaderFooter { return h.hf }

func (h *HeaderFooter) AddParagraph(text string) *Paragraph {
	return &Paragraph{p: h.hf.AddParagraph(text), log: h.log}
}

func (h *HeaderFooter) Style(name string) *HeaderFooter { h.hf.Style = name; return h }

// Clear drops all content and tab stops.
func (h *HeaderFooter) Clear() *HeaderFooter {
	h.hf.Clear()
	h.hf.Format.TabStops.ClearAll()
	return h
}

func (d *Document) AddPrimaryHeader(left, center, right any, clear bool) (*HeaderFooter, error) {
	return d.assemble(d.cur.section.Headers.Primary, left, center, right, clear)
}

func (d *Document) AddPrimaryFooter(left, center, right any, clear bool) (*HeaderFooter, error) {
	return d.assemble(d.cur.section.Footers.Primary, left, center, right, clear)
}

// AddEvenPageHeader fills the even-page header and turns on separate odd
// and even headers for the section.
func (d *Document) AddEvenPageHeader(left, center, right any, clear bool) (*HeaderFooter, error) {
	d.cur.section.PageSetup.OddAndEvenPagesHeaderFooter = true
	return d.assemble(d.cur.section.Headers.EvenPage, left, center, right, clear)
}

func (d *Document) AddEvenPageFooter(left, center, right any, clear bool) (*HeaderFooter, error) {
	d.cur.section.PageSetup.OddAndEvenPagesHeaderFooter = true
	return d.assemble(d.cur.section.Footers.EvenPage, left, center, right, clear)
}

// AddFirstPageHeader fills the first-page header and turns on a different
// first page for the section.
func (d *Document) AddFirstPageHeader(left, center, right any, clear bool) (*HeaderFooter, error) {
	d.cur.section.PageSetup.DifferentFirstPageHeaderFooter = true
	return d.assemble(d.cur.section.Headers.FirstPage, left, center, right, clear)
}

func (d *Document) AddFirstPageFooter(left, center, right any, clear bool) (*HeaderFooter, error) {
	d.cur.section.PageSetup.DifferentFirstPageHeaderFooter = true
	return d.assemble(d.cur.section.Footers.FirstPage, left, center, right, clear)
}

// assemble builds one paragraph "left<TAB>center<TAB>right" in hf. With
// clear, previous content goes and tab stops are reset to a centered stop
// at half the body width and a right stop at the body width. Each item may
// be a string, a paragraph whose elements are copied, or nil to skip it.
// The paragraph is attached before items are copied, so on error the items
// copied so far stay visible.
func (d *Document) assemble(hf *dom.HeaderFooter, left, center, right any, clear bool) (*HeaderFooter, error) {
	w := &HeaderFooter{hf: hf, log: d.log}
	if clear {
		w.Clear()
		body := d.BodyWidth()
		hf.Format.TabStops.Add(dom.TabStop{Position: body / 2, Alignment: dom.TabCenter})
		hf.Format.TabStops.Add(dom.TabStop{Position: body, Alignment: dom.TabRight})
	}

	var para *dom.Paragraph
	get := func() *dom.Paragraph {
		if para == nil {
			para = hf.AddParagraph("")
		}
		return para
	}
	if err := addHeaderItem(get, left); err != nil {
		return w, fmt.Errorf("left item: %w", err)
	}
	if center != nil || right != nil {
		get().AddTab()
		if err := addHeaderItem(get, center); err != nil {
			return w, fmt.Errorf("center item: %w", err)
		}
		if right != nil {
			get().AddTab()
			if err := addHeaderItem(get, right); err != nil {
				return w, fmt.Errorf("right item: %w", err)
			}
		}
	}
	return w, nil
}

func addHeaderItem(get func() *dom.Paragraph, item any) error {
	if item == nil || isNilPointer(item) {
		return nil
	}
	switch v := item.(type) {
	case string:
		if v != "" {
			get().AddText(v)
		}
		return nil
	case *Paragraph:
		return dom.Transfer(v.p.Elements, get())
	case *dom.Paragraph:
		return dom.Transfer(v.Elements, get())
	case *FormattedText:
		return dom.Transfer([]dom.Element{v.ft}, get())
	case dom.Element:
		return dom.Transfer([]dom.Element{v}, get())
	}
	return fmt.Errorf("%w: %T", dom.ErrUnsupportedElementKind, item)
}
