package dom

import (
	"strings"

	"github.com/wudi/docez/unit"
)

// BlockKind names the closed set of block variants.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockTable
	BlockImage
	BlockTextFrame
	BlockChart
	BlockPageBreak
)

func (k BlockKind) String() string {
	return [...]string{"Paragraph", "Table", "Image", "TextFrame", "Chart", "PageBreak"}[k]
}

// Block is a node that lives in a section, cell, header/footer, text frame or
// footnote. The set of implementations is closed.
type Block interface {
	BlockKind() BlockKind
	Parent() any
	block() *node
}

// Paragraph is a sequence of inline elements with optional style and direct
// formatting.
type Paragraph struct {
	node
	Style    string
	Format   ParagraphFormat
	Elements []Element
}

func NewParagraph() *Paragraph { return &Paragraph{} }

func newParagraph(text string) *Paragraph {
	p := &Paragraph{}
	if text != "" {
		p.AddText(text)
	}
	return p
}

func (p *Paragraph) BlockKind() BlockKind { return BlockParagraph }
func (p *Paragraph) block() *node         { return &p.node }

// Add attaches e as the last element.
func (p *Paragraph) Add(e Element) error {
	if err := attachElement(p, e); err != nil {
		return err
	}
	p.Elements = append(p.Elements, e)
	return nil
}

func (p *Paragraph) own(e Element) {
	e.inline().parent = p
	p.Elements = append(p.Elements, e)
}

func (p *Paragraph) AddText(content string) *Text {
	t := &Text{Content: content}
	p.own(t)
	return t
}

func (p *Paragraph) AddFormattedText() *FormattedText {
	ft := &FormattedText{}
	p.own(ft)
	return ft
}

func (p *Paragraph) AddTab() *Tab {
	t := &Tab{}
	p.own(t)
	return t
}

func (p *Paragraph) AddLineBreak() *LineBreak {
	l := &LineBreak{}
	p.own(l)
	return l
}

func (p *Paragraph) AddCharacter(symbol SymbolName, count int) *Character {
	c := &Character{Symbol: symbol, Count: count}
	p.own(c)
	return c
}

func (p *Paragraph) AddBookmark(name string) *BookmarkField {
	b := &BookmarkField{Name: name}
	p.own(b)
	return b
}

func (p *Paragraph) AddHyperlink(name string, typ HyperlinkType) *Hyperlink {
	h := &Hyperlink{Name: name, Type: typ}
	p.own(h)
	return h
}

func (p *Paragraph) AddPageField() *PageField {
	f := &PageField{}
	p.own(f)
	return f
}

func (p *Paragraph) AddNumPagesField() *NumPagesField {
	f := &NumPagesField{}
	p.own(f)
	return f
}

func (p *Paragraph) AddPageRefField(name string) *PageRefField {
	f := &PageRefField{Name: name}
	p.own(f)
	return f
}

func (p *Paragraph) AddSectionField() *SectionField {
	f := &SectionField{}
	p.own(f)
	return f
}

func (p *Paragraph) AddSectionPagesField() *SectionPagesField {
	f := &SectionPagesField{}
	p.own(f)
	return f
}

func (p *Paragraph) AddDateField(format string) *DateField {
	f := &DateField{Format: format}
	p.own(f)
	return f
}

func (p *Paragraph) AddInfoField(name InfoFieldName) *InfoField {
	f := &InfoField{Name: name}
	p.own(f)
	return f
}

func (p *Paragraph) AddFootnote(text string) *Footnote {
	f := &Footnote{}
	if text != "" {
		f.AddParagraph(text)
	}
	p.own(f)
	return f
}

func (p *Paragraph) AddImage(name string) *Image {
	img := NewImage(name)
	p.own(img)
	return img
}

// PlainText concatenates the literal text of the paragraph, descending into
// formatted runs and hyperlinks. Tabs and line breaks become '\t' and '\n';
// fields are skipped.
func (p *Paragraph) PlainText() string {
	var sb strings.Builder
	writePlain(&sb, p.Elements)
	return sb.String()
}

func writePlain(sb *strings.Builder, elems []Element) {
	for _, e := range elems {
		switch v := e.(type) {
		case *Text:
			sb.WriteString(v.Content)
		case *FormattedText:
			writePlain(sb, v.Elements)
		case *Hyperlink:
			writePlain(sb, v.Elements)
		case *Tab:
			sb.WriteByte('\t')
		case *LineBreak:
			sb.WriteByte('\n')
		case *Character:
			n := v.Count
			if n < 1 {
				n = 1
			}
			sb.WriteString(strings.Repeat(string(v.Symbol.Rune()), n))
		}
	}
}

type RelativeHorizontal int

const (
	RelHorizontalCharacter RelativeHorizontal = iota
	RelHorizontalColumn
	RelHorizontalMargin
	RelHorizontalPage
)

func (r RelativeHorizontal) String() string {
	return [...]string{"character", "column", "margin", "page"}[r]
}

type RelativeVertical int

const (
	RelVerticalLine RelativeVertical = iota
	RelVerticalParagraph
	RelVerticalMargin
	RelVerticalPage
)

func (r RelativeVertical) String() string {
	return [...]string{"line", "paragraph", "margin", "page"}[r]
}

type PositionKeyword int

const (
	PositionOffset PositionKeyword = iota
	PositionTop
	PositionCenter
	PositionBottom
	PositionLeft
	PositionRight
	PositionInside
	PositionOutside
)

func (k PositionKeyword) String() string {
	return [...]string{"offset", "top", "center", "bottom", "left", "right", "inside", "outside"}[k]
}

// ShapePosition is either a keyword or, with PositionOffset, a distance from
// the reference area.
type ShapePosition struct {
	Keyword PositionKeyword
	Offset  unit.Unit
}

func At(offset unit.Unit) ShapePosition {
	return ShapePosition{Keyword: PositionOffset, Offset: offset}
}

func Position(k PositionKeyword) ShapePosition { return ShapePosition{Keyword: k} }

type WrapStyle int

const (
	WrapTopBottom WrapStyle = iota
	WrapNone
	WrapThrough
)

func (w WrapStyle) String() string {
	return [...]string{"topBottom", "none", "through"}[w]
}

// Shape carries the placement shared by images and text frames.
type Shape struct {
	Width              unit.Unit
	Height             unit.Unit
	Left               ShapePosition
	Top                ShapePosition
	RelativeHorizontal RelativeHorizontal
	RelativeVertical   RelativeVertical
	Wrap               WrapStyle
}

// Image references an image file by Name. Width and Height are zero when not
// set; IntrinsicWidth and IntrinsicHeight hold the probed natural size.
type Image struct {
	node
	Shape
	Name            string
	LockAspectRatio bool
	IntrinsicWidth  unit.Unit
	IntrinsicHeight unit.Unit
}

func NewImage(name string) *Image { return &Image{Name: name} }

func (i *Image) Kind() ElementKind    { return KindImage }
func (i *Image) BlockKind() BlockKind { return BlockImage }
func (i *Image) inline() *node        { return &i.node }
func (i *Image) block() *node         { return &i.node }

// Size returns the displayed size: explicit dimensions first, the intrinsic
// size scaled by the aspect ratio when only one side is set.
func (i *Image) Size() (w, h unit.Unit) {
	w, h = i.Width, i.Height
	iw, ih := i.IntrinsicWidth, i.IntrinsicHeight
	switch {
	case w == 0 && h == 0:
		return iw, ih
	case w == 0 && ih > 0:
		return h * iw / ih, h
	case h == 0 && iw > 0:
		return w, w * ih / iw
	}
	return w, h
}

// TextFrame is a positioned box holding its own blocks.
type TextFrame struct {
	node
	Shape
	Blocks []Block
}

func NewTextFrame() *TextFrame { return &TextFrame{} }

func (t *TextFrame) BlockKind() BlockKind { return BlockTextFrame }
func (t *TextFrame) block() *node         { return &t.node }

func (t *TextFrame) AddBlock(b Block) error {
	if err := attachBlock(t, b); err != nil {
		return err
	}
	t.Blocks = append(t.Blocks, b)
	return nil
}

func (t *TextFrame) AddParagraph(text string) *Paragraph {
	p := newParagraph(text)
	p.parent = t
	t.Blocks = append(t.Blocks, p)
	return p
}

type ChartType int

const (
	ChartColumn ChartType = iota
	ChartBar
	ChartLine
	ChartPie
	ChartArea
)

func (c ChartType) String() string {
	return [...]string{"column", "bar", "line", "pie", "area"}[c]
}

type Series struct {
	Name   string
	Values []float64
}

// Chart is a data chart block; drawing it is up to the renderer.
type Chart struct {
	node
	Type       ChartType
	Width      unit.Unit
	Height     unit.Unit
	Title      string
	Categories []string
	Series     []Series
}

func NewChart(typ ChartType) *Chart { return &Chart{Type: typ} }

func (c *Chart) BlockKind() BlockKind { return BlockChart }
func (c *Chart) block() *node         { return &c.node }

func (c *Chart) AddSeries(name string, values ...float64) {
	c.Series = append(c.Series, Series{Name: name, Values: append([]float64(nil), values...)})
}

type PageBreak struct{ node }

func (p *PageBreak) BlockKind() BlockKind { return BlockPageBreak }
func (p *PageBreak) block() *node         { return &p.node }
