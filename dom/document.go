package dom

import (
	"fmt"
	"strings"

	"github.com/wudi/docez/unit"
)

// PageFormat names a standard paper size.
type PageFormat int

const (
	A4 PageFormat = iota
	A0
	A1
	A2
	A3
	A5
	A6
	B5
	Letter
	Legal
	Ledger
)

var pageFormats = [...]struct {
	name string
	w, h unit.Unit
}{
	A4:     {"A4", 210 * unit.Millimeter, 297 * unit.Millimeter},
	A0:     {"A0", 841 * unit.Millimeter, 1189 * unit.Millimeter},
	A1:     {"A1", 594 * unit.Millimeter, 841 * unit.Millimeter},
	A2:     {"A2", 420 * unit.Millimeter, 594 * unit.Millimeter},
	A3:     {"A3", 297 * unit.Millimeter, 420 * unit.Millimeter},
	A5:     {"A5", 148 * unit.Millimeter, 210 * unit.Millimeter},
	A6:     {"A6", 105 * unit.Millimeter, 148 * unit.Millimeter},
	B5:     {"B5", 176 * unit.Millimeter, 250 * unit.Millimeter},
	Letter: {"Letter", 8.5 * unit.Inch, 11 * unit.Inch},
	Legal:  {"Legal", 8.5 * unit.Inch, 14 * unit.Inch},
	Ledger: {"Ledger", 11 * unit.Inch, 17 * unit.Inch},
}

func (f PageFormat) String() string {
	if int(f) < len(pageFormats) {
		return pageFormats[f].name
	}
	return fmt.Sprintf("PageFormat(%d)", int(f))
}

// Size returns the portrait width and height of the format.
func (f PageFormat) Size() (w, h unit.Unit) {
	if int(f) >= len(pageFormats) {
		f = A4
	}
	return pageFormats[f].w, pageFormats[f].h
}

// ParsePageFormat matches a format name case-insensitively.
func ParsePageFormat(s string) (PageFormat, bool) {
	for i, pf := range pageFormats {
		if strings.EqualFold(pf.name, strings.TrimSpace(s)) {
			return PageFormat(i), true
		}
	}
	return A4, false
}

type Orientation int

const (
	Portrait Orientation = iota
	Landscape
)

func (o Orientation) String() string {
	if o == Landscape {
		return "landscape"
	}
	return "portrait"
}

// PageSetup describes the page geometry of a section. PageWidth and
// PageHeight are always the portrait dimensions.
type PageSetup struct {
	PageFormat                     PageFormat
	Orientation                    Orientation
	PageWidth                      unit.Unit
	PageHeight                     unit.Unit
	TopMargin                      unit.Unit
	BottomMargin                   unit.Unit
	LeftMargin                     unit.Unit
	RightMargin                    unit.Unit
	HeaderDistance                 unit.Unit
	FooterDistance                 unit.Unit
	StartingNumber                 int
	OddAndEvenPagesHeaderFooter    bool
	DifferentFirstPageHeaderFooter bool
}

// DefaultPageSetup is A4 portrait with 2.5cm side margins.
func DefaultPageSetup() PageSetup {
	ps := PageSetup{
		TopMargin:      2.5 * unit.Centimeter,
		BottomMargin:   2 * unit.Centimeter,
		LeftMargin:     2.5 * unit.Centimeter,
		RightMargin:    2.5 * unit.Centimeter,
		HeaderDistance: 1.25 * unit.Centimeter,
		FooterDistance: 1.25 * unit.Centimeter,
		StartingNumber: 1,
	}
	ps.SetPageFormat(A4)
	return ps
}

// SetPageFormat sets the format and the matching page size.
func (p *PageSetup) SetPageFormat(f PageFormat) {
	p.PageFormat = f
	p.PageWidth, p.PageHeight = f.Size()
}

// EffectiveSize returns the page size after applying the orientation.
func (p PageSetup) EffectiveSize() (w, h unit.Unit) {
	if p.Orientation == Landscape {
		return p.PageHeight, p.PageWidth
	}
	return p.PageWidth, p.PageHeight
}

// BodyWidth is the page width between the left and right margins.
func (p PageSetup) BodyWidth() unit.Unit {
	w, _ := p.EffectiveSize()
	return w - p.LeftMargin - p.RightMargin
}

// BodyHeight is the page height between the top and bottom margins.
func (p PageSetup) BodyHeight() unit.Unit {
	_, h := p.EffectiveSize()
	return h - p.TopMargin - p.BottomMargin
}

// HeaderFooter holds the blocks shown in one header or footer slot.
type HeaderFooter struct {
	section  *Section
	IsHeader bool
	Style    string
	Format   ParagraphFormat
	Blocks   []Block
}

func (h *HeaderFooter) Section() *Section { return h.section }

func (h *HeaderFooter) AddBlock(b Block) error {
	if err := attachBlock(h, b); err != nil {
		return err
	}
	h.Blocks = append(h.Blocks, b)
	return nil
}

func (h *HeaderFooter) AddParagraph(text string) *Paragraph {
	p := newParagraph(text)
	p.parent = h
	h.Blocks = append(h.Blocks, p)
	return p
}

// Clear drops all blocks.
func (h *HeaderFooter) Clear() {
	for _, b := range h.Blocks {
		b.block().parent = nil
	}
	h.Blocks = nil
}

func (h *HeaderFooter) IsEmpty() bool { return len(h.Blocks) == 0 }

// HeadersFooters groups the three header or footer slots of a section.
type HeadersFooters struct {
	Primary   *HeaderFooter
	EvenPage  *HeaderFooter
	FirstPage *HeaderFooter
}

func newHeadersFooters(s *Section, header bool) HeadersFooters {
	mk := func() *HeaderFooter {
		hf := &HeaderFooter{section: s, IsHeader: header}
		if header {
			hf.Style = StyleHeader
		} else {
			hf.Style = StyleFooter
		}
		return hf
	}
	return HeadersFooters{Primary: mk(), EvenPage: mk(), FirstPage: mk()}
}

// Section is a run of blocks sharing one page setup and header/footer set.
type Section struct {
	document  *Document
	PageSetup PageSetup
	Headers   HeadersFooters
	Footers   HeadersFooters
	Blocks    []Block
}

// NewSection returns a detached section with the default page setup.
func NewSection() *Section {
	s := &Section{PageSetup: DefaultPageSetup()}
	s.Headers = newHeadersFooters(s, true)
	s.Footers = newHeadersFooters(s, false)
	return s
}

func (s *Section) Document() *Document { return s.document }

func (s *Section) AddBlock(b Block) error {
	if err := attachBlock(s, b); err != nil {
		return err
	}
	s.Blocks = append(s.Blocks, b)
	return nil
}

func (s *Section) own(b Block) {
	b.block().parent = s
	s.Blocks = append(s.Blocks, b)
}

func (s *Section) AddParagraph(text string) *Paragraph {
	p := newParagraph(text)
	s.own(p)
	return p
}

// AddTable appends a table with one column per width.
func (s *Section) AddTable(widths ...unit.Unit) *Table {
	t := NewTable(widths...)
	s.own(t)
	return t
}

func (s *Section) AddImage(name string) *Image {
	img := NewImage(name)
	s.own(img)
	return img
}

func (s *Section) AddTextFrame() *TextFrame {
	tf := NewTextFrame()
	s.own(tf)
	return tf
}

func (s *Section) AddChart(typ ChartType) *Chart {
	c := NewChart(typ)
	s.own(c)
	return c
}

func (s *Section) AddPageBreak() *PageBreak {
	pb := &PageBreak{}
	s.own(pb)
	return pb
}

// LastTable returns the most recently added table, or nil.
func (s *Section) LastTable() *Table {
	for i := len(s.Blocks) - 1; i >= 0; i-- {
		if t, ok := s.Blocks[i].(*Table); ok {
			return t
		}
	}
	return nil
}

// LastParagraph returns the most recently added paragraph, or nil.
func (s *Section) LastParagraph() *Paragraph {
	for i := len(s.Blocks) - 1; i >= 0; i-- {
		if p, ok := s.Blocks[i].(*Paragraph); ok {
			return p
		}
	}
	return nil
}

// Info is the document metadata.
type Info struct {
	Title    string
	Author   string
	Subject  string
	Comment  string
	Keywords string
}

// Document is the root of the tree.
type Document struct {
	Info             Info
	Styles           *Styles
	Sections         []*Section
	DefaultPageSetup PageSetup
}

// NewDocument returns an empty document with the predefined styles.
func NewDocument() *Document {
	return &Document{
		Styles:           NewStyles(),
		DefaultPageSetup: DefaultPageSetup(),
	}
}

// AddSection appends a section whose page setup is a copy of the default.
func (d *Document) AddSection() *Section {
	s := NewSection()
	s.PageSetup = d.DefaultPageSetup
	s.document = d
	d.Sections = append(d.Sections, s)
	return s
}

// LastSection returns the most recently added section, or nil.
func (d *Document) LastSection() *Section {
	if len(d.Sections) == 0 {
		return nil
	}
	return d.Sections[len(d.Sections)-1]
}

// ParagraphFormat resolves the effective format of p: the style chain of
// its style (Normal when unset) with the direct formatting on top.
func (d *Document) ParagraphFormat(p *Paragraph) (ParagraphFormat, error) {
	name := p.Style
	if name == "" {
		name = StyleNormal
	}
	f, err := d.Styles.Resolve(name)
	if err != nil {
		return ParagraphFormat{}, err
	}
	f.Apply(p.Format)
	return f, nil
}
