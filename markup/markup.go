// Package markup stores documents as XML and reads them back.
//
// The format mirrors the tree: a <document> holds <styles> and <section>
// elements, sections hold blocks, paragraphs hold inline elements. Lengths
// are written in points ("12.5pt"); any length accepted by unit.Parse is
// read. Properties that are unset in the tree are omitted.
package markup

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/beevik/etree"

	"github.com/wudi/docez/dom"
	"github.com/wudi/docez/unit"
)

// Version is written to the root element.
const Version = "1"

var (
	ErrNilDocument = errors.New("markup: nil document")
	// ErrInvalid is wrapped by every decoding error caused by the input.
	ErrInvalid = errors.New("markup: invalid document")
)

// Encode writes doc to w as indented XML.
func Encode(w io.Writer, doc *dom.Document) error {
	if doc == nil {
		return ErrNilDocument
	}
	x := etree.NewDocument()
	x.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := x.CreateElement("document")
	root.CreateAttr("version", Version)
	info(root, doc.Info)

	styles := root.CreateElement("styles")
	for _, name := range doc.Styles.Names() {
		st := doc.Styles.Get(name)
		e := styles.CreateElement("style")
		e.CreateAttr("name", st.Name)
		attr(e, "base", st.BaseStyle)
		format(e, st.Format)
	}
	for _, sec := range doc.Sections {
		if err := section(root, sec); err != nil {
			return err
		}
	}

	x.IndentWithSettings(&etree.IndentSettings{Spaces: 2, PreserveLeafWhitespace: true})
	if _, err := x.WriteTo(w); err != nil {
		return fmt.Errorf("markup: %w", err)
	}
	return nil
}

func info(e *etree.Element, in dom.Info) {
	attr(e, "title", in.Title)
	attr(e, "author", in.Author)
	attr(e, "subject", in.Subject)
	attr(e, "comment", in.Comment)
	attr(e, "keywords", in.Keywords)
}

func attr(e *etree.Element, key, value string) {
	if value != "" {
		e.CreateAttr(key, value)
	}
}

func length(e *etree.Element, key string, u *unit.Unit) {
	if u != nil {
		e.CreateAttr(key, u.String())
	}
}

func boolAttr(e *etree.Element, key string, b *bool) {
	if b != nil {
		e.CreateAttr(key, strconv.FormatBool(*b))
	}
}

func colorAttr(e *etree.Element, key string, c dom.Color) {
	if !c.IsEmpty() {
		e.CreateAttr(key, c.Hex())
	}
}

func section(parent *etree.Element, sec *dom.Section) error {
	e := parent.CreateElement("section")
	ps := sec.PageSetup
	p := e.CreateElement("pageSetup")
	p.CreateAttr("format", ps.PageFormat.String())
	p.CreateAttr("orientation", ps.Orientation.String())
	for _, l := range []struct {
		key string
		u   unit.Unit
	}{
		{"width", ps.PageWidth},
		{"height", ps.PageHeight},
		{"top", ps.TopMargin},
		{"bottom", ps.BottomMargin},
		{"left", ps.LeftMargin},
		{"right", ps.RightMargin},
		{"headerDistance", ps.HeaderDistance},
		{"footerDistance", ps.FooterDistance},
	} {
		p.CreateAttr(l.key, l.u.String())
	}
	p.CreateAttr("startingNumber", strconv.Itoa(ps.StartingNumber))
	if ps.OddAndEvenPagesHeaderFooter {
		p.CreateAttr("oddAndEven", "true")
	}
	if ps.DifferentFirstPageHeaderFooter {
		p.CreateAttr("differentFirstPage", "true")
	}

	for _, hf := range []struct {
		tag, slot string
		v         *dom.HeaderFooter
	}{
		{"header", "primary", sec.Headers.Primary},
		{"header", "evenPage", sec.Headers.EvenPage},
		{"header", "firstPage", sec.Headers.FirstPage},
		{"footer", "primary", sec.Footers.Primary},
		{"footer", "evenPage", sec.Footers.EvenPage},
		{"footer", "firstPage", sec.Footers.FirstPage},
	} {
		if hf.v == nil || hf.v.IsEmpty() {
			continue
		}
		he := e.CreateElement(hf.tag)
		he.CreateAttr("slot", hf.slot)
		attr(he, "style", hf.v.Style)
		format(he, hf.v.Format)
		if err := blocks(he, hf.v.Blocks); err != nil {
			return err
		}
	}
	return blocks(e, sec.Blocks)
}

func blocks(parent *etree.Element, bs []dom.Block) error {
	for _, b := range bs {
		switch v := b.(type) {
		case *dom.Paragraph:
			if err := paragraph(parent, v); err != nil {
				return err
			}
		case *dom.Table:
			if err := table(parent, v); err != nil {
				return err
			}
		case *dom.Image:
			image(parent, v)
		case *dom.TextFrame:
			e := parent.CreateElement("textFrame")
			shape(e, v.Shape)
			if err := blocks(e, v.Blocks); err != nil {
				return err
			}
		case *dom.Chart:
			chart(parent, v)
		case *dom.PageBreak:
			parent.CreateElement("pageBreak")
		default:
			return fmt.Errorf("%w: block %T", dom.ErrUnsupportedElementKind, b)
		}
	}
	return nil
}

func paragraph(parent *etree.Element, p *dom.Paragraph) error {
	e := parent.CreateElement("paragraph")
	attr(e, "style", p.Style)
	format(e, p.Format)
	return elements(e, p.Elements)
}

func elements(parent *etree.Element, es []dom.Element) error {
	for _, el := range es {
		switch v := el.(type) {
		case *dom.Text:
			parent.CreateElement("text").SetText(v.Content)
		case *dom.FormattedText:
			e := parent.CreateElement("formattedText")
			attr(e, "style", v.Style)
			font(e, v.Font)
			if err := elements(e, v.Elements); err != nil {
				return err
			}
		case *dom.LineBreak:
			parent.CreateElement("lineBreak")
		case *dom.Tab:
			parent.CreateElement("tab")
		case *dom.BookmarkField:
			parent.CreateElement("bookmark").CreateAttr("name", v.Name)
		case *dom.Hyperlink:
			e := parent.CreateElement("hyperlink")
			e.CreateAttr("name", v.Name)
			e.CreateAttr("type", v.Type.String())
			font(e, v.Font)
			if err := elements(e, v.Elements); err != nil {
				return err
			}
		case *dom.Image:
			image(parent, v)
		case *dom.Character:
			e := parent.CreateElement("character")
			e.CreateAttr("symbol", v.Symbol.String())
			if v.Count != 1 {
				e.CreateAttr("count", strconv.Itoa(v.Count))
			}
		case *dom.PageField:
			field(parent, "pageField", v.Format)
		case *dom.NumPagesField:
			field(parent, "numPagesField", v.Format)
		case *dom.PageRefField:
			field(parent, "pageRefField", v.Format).CreateAttr("name", v.Name)
		case *dom.SectionField:
			field(parent, "sectionField", v.Format)
		case *dom.SectionPagesField:
			field(parent, "sectionPagesField", v.Format)
		case *dom.DateField:
			field(parent, "dateField", v.Format)
		case *dom.InfoField:
			parent.CreateElement("infoField").CreateAttr("name", v.Name.String())
		case *dom.Footnote:
			e := parent.CreateElement("footnote")
			attr(e, "reference", v.Reference)
			format(e, v.Format)
			if err := blocks(e, v.Blocks); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %T", dom.ErrUnsupportedElementKind, el)
		}
	}
	return nil
}

func field(parent *etree.Element, tag, layout string) *etree.Element {
	e := parent.CreateElement(tag)
	attr(e, "format", layout)
	return e
}

func image(parent *etree.Element, img *dom.Image) {
	e := parent.CreateElement("image")
	e.CreateAttr("name", img.Name)
	shape(e, img.Shape)
	if img.LockAspectRatio {
		e.CreateAttr("lockAspectRatio", "true")
	}
	if img.IntrinsicWidth > 0 || img.IntrinsicHeight > 0 {
		e.CreateAttr("intrinsicWidth", img.IntrinsicWidth.String())
		e.CreateAttr("intrinsicHeight", img.IntrinsicHeight.String())
	}
}

func shape(e *etree.Element, s dom.Shape) {
	if s.Width != 0 {
		e.CreateAttr("width", s.Width.String())
	}
	if s.Height != 0 {
		e.CreateAttr("height", s.Height.String())
	}
	if s.Left != (dom.ShapePosition{}) {
		e.CreateAttr("left", position(s.Left))
	}
	if s.Top != (dom.ShapePosition{}) {
		e.CreateAttr("top", position(s.Top))
	}
	if s.RelativeHorizontal != dom.RelHorizontalCharacter {
		e.CreateAttr("relativeHorizontal", s.RelativeHorizontal.String())
	}
	if s.RelativeVertical != dom.RelVerticalLine {
		e.CreateAttr("relativeVertical", s.RelativeVertical.String())
	}
	if s.Wrap != dom.WrapTopBottom {
		e.CreateAttr("wrap", s.Wrap.String())
	}
}

// position writes an offset as a length and a keyword by name.
func position(p dom.ShapePosition) string {
	if p.Keyword == dom.PositionOffset {
		return p.Offset.String()
	}
	return p.Keyword.String()
}

func chart(parent *etree.Element, c *dom.Chart) {
	e := parent.CreateElement("chart")
	e.CreateAttr("type", c.Type.String())
	attr(e, "title", c.Title)
	if c.Width != 0 {
		e.CreateAttr("width", c.Width.String())
	}
	if c.Height != 0 {
		e.CreateAttr("height", c.Height.String())
	}
	for _, cat := range c.Categories {
		e.CreateElement("category").SetText(cat)
	}
	for _, s := range c.Series {
		se := e.CreateElement("series")
		se.CreateAttr("name", s.Name)
		for _, v := range s.Values {
			se.CreateElement("value").SetText(strconv.FormatFloat(v, 'g', -1, 64))
		}
	}
}

func table(parent *etree.Element, t *dom.Table) error {
	e := parent.CreateElement("table")
	attr(e, "style", t.Style)
	length(e, "topPadding", t.TopPadding)
	length(e, "bottomPadding", t.BottomPadding)
	length(e, "leftPadding", t.LeftPadding)
	length(e, "rightPadding", t.RightPadding)
	length(e, "leftIndent", t.LeftIndent)
	format(e, t.Format)
	borders(e, t.Borders)
	shading(e, t.Shading)
	for _, c := range t.Columns() {
		ce := e.CreateElement("column")
		ce.CreateAttr("width", c.Width.String())
		attr(ce, "style", c.Style)
		format(ce, c.Format)
		shading(ce, c.Shading)
	}
	for _, r := range t.Rows {
		re := e.CreateElement("row")
		if r.HeadingFormat {
			re.CreateAttr("heading", "true")
		}
		attr(re, "style", r.Style)
		length(re, "topPadding", r.TopPadding)
		length(re, "bottomPadding", r.BottomPadding)
		length(re, "height", r.Height)
		if r.VerticalAlignment != dom.VAlignTop {
			re.CreateAttr("verticalAlignment", r.VerticalAlignment.String())
		}
		format(re, r.Format)
		borders(re, r.Borders)
		shading(re, r.Shading)
		for _, c := range r.Cells {
			ce := re.CreateElement("cell")
			if c.MergeRight > 0 {
				ce.CreateAttr("mergeRight", strconv.Itoa(c.MergeRight))
			}
			if c.MergeDown > 0 {
				ce.CreateAttr("mergeDown", strconv.Itoa(c.MergeDown))
			}
			if c.VerticalAlignment != dom.VAlignTop {
				ce.CreateAttr("verticalAlignment", c.VerticalAlignment.String())
			}
			attr(ce, "style", c.Style)
			format(ce, c.Format)
			borders(ce, c.Borders)
			shading(ce, c.Shading)
			if err := blocks(ce, c.Blocks); err != nil {
				return err
			}
		}
	}
	return nil
}

// format writes a <format> child when any property of f is set.
func format(parent *etree.Element, f dom.ParagraphFormat) {
	e := etree.NewElement("format")
	if f.Alignment != dom.AlignUnset {
		e.CreateAttr("alignment", f.Alignment.String())
	}
	length(e, "leftIndent", f.LeftIndent)
	length(e, "rightIndent", f.RightIndent)
	length(e, "firstLineIndent", f.FirstLineIndent)
	length(e, "spaceBefore", f.SpaceBefore)
	length(e, "spaceAfter", f.SpaceAfter)
	length(e, "lineSpacing", f.LineSpacing)
	if f.LineSpacingRule != dom.LineSpacingUnset {
		e.CreateAttr("lineSpacingRule", f.LineSpacingRule.String())
	}
	boolAttr(e, "pageBreakBefore", f.PageBreakBefore)
	boolAttr(e, "keepWithNext", f.KeepWithNext)
	if f.OutlineLevel != 0 {
		e.CreateAttr("outlineLevel", strconv.Itoa(f.OutlineLevel))
	}
	font(e, f.Font)
	borders(e, f.Borders)
	shading(e, f.Shading)
	if len(f.TabStops.Stops) > 0 || f.TabStops.Cleared {
		te := e.CreateElement("tabStops")
		if f.TabStops.Cleared {
			te.CreateAttr("cleared", "true")
		}
		for _, ts := range f.TabStops.Stops {
			s := te.CreateElement("tabStop")
			s.CreateAttr("position", ts.Position.String())
			s.CreateAttr("alignment", ts.Alignment.String())
			s.CreateAttr("leader", ts.Leader.String())
		}
	}
	if len(e.Attr) > 0 || len(e.Child) > 0 {
		parent.AddChild(e)
	}
}

func font(parent *etree.Element, f dom.Font) {
	e := etree.NewElement("font")
	attr(e, "name", f.Name)
	if f.Size != 0 {
		e.CreateAttr("size", f.Size.String())
	}
	boolAttr(e, "bold", f.Bold)
	boolAttr(e, "italic", f.Italic)
	if f.Underline != dom.UnderlineUnset {
		e.CreateAttr("underline", f.Underline.String())
	}
	colorAttr(e, "color", f.Color)
	boolAttr(e, "subscript", f.Subscript)
	boolAttr(e, "superscript", f.Superscript)
	if len(e.Attr) > 0 {
		parent.AddChild(e)
	}
}

func borders(parent *etree.Element, b dom.Borders) {
	if !b.IsSet() && b.Distance == nil {
		return
	}
	e := parent.CreateElement("borders")
	length(e, "width", b.Width)
	colorAttr(e, "color", b.Color)
	if b.Style != dom.BorderUnset {
		e.CreateAttr("style", b.Style.String())
	}
	length(e, "distance", b.Distance)
	boolAttr(e, "visible", b.Visible)
	for _, edge := range []struct {
		tag string
		b   dom.Border
	}{{"top", b.Top}, {"right", b.Right}, {"bottom", b.Bottom}, {"left", b.Left}} {
		if !edge.b.IsSet() {
			continue
		}
		be := e.CreateElement(edge.tag)
		length(be, "width", edge.b.Width)
		colorAttr(be, "color", edge.b.Color)
		if edge.b.Style != dom.BorderUnset {
			be.CreateAttr("style", edge.b.Style.String())
		}
		boolAttr(be, "visible", edge.b.Visible)
	}
}

func shading(parent *etree.Element, s dom.Shading) {
	if s.Color.IsEmpty() && s.Visible == nil {
		return
	}
	e := parent.CreateElement("shading")
	colorAttr(e, "color", s.Color)
	boolAttr(e, "visible", s.Visible)
}
