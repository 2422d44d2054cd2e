package markup

import (
	"fmt"
	"io"
	"strconv"

	"github.com/beevik/etree"

	"github.com/wudi/docez/dom"
	"github.com/wudi/docez/unit"
)

// Decode reads a document written by Encode.
func Decode(r io.Reader) (*dom.Document, error) {
	x := etree.NewDocument()
	if _, err := x.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	root := x.Root()
	if root == nil || root.Tag != "document" {
		return nil, fmt.Errorf("%w: root element is not <document>", ErrInvalid)
	}
	if v := root.SelectAttrValue("version", Version); v != Version {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrInvalid, v)
	}

	d := &decoder{}
	doc := dom.NewDocument()
	doc.Info = dom.Info{
		Title:    root.SelectAttrValue("title", ""),
		Author:   root.SelectAttrValue("author", ""),
		Subject:  root.SelectAttrValue("subject", ""),
		Comment:  root.SelectAttrValue("comment", ""),
		Keywords: root.SelectAttrValue("keywords", ""),
	}
	if styles := root.SelectElement("styles"); styles != nil {
		for _, e := range styles.SelectElements("style") {
			d.style(doc.Styles, e)
		}
	}
	for _, e := range root.SelectElements("section") {
		d.section(doc, e)
		if d.err != nil {
			break
		}
	}
	if d.err != nil {
		return nil, d.err
	}
	return doc, nil
}

// decoder keeps the first error; later calls become no-ops that return
// zero values.
type decoder struct {
	err error
}

func (d *decoder) fail(e *etree.Element, format string, args ...any) {
	if d.err == nil {
		d.err = fmt.Errorf("%w: %s: %s", ErrInvalid, e.GetPath(), fmt.Sprintf(format, args...))
	}
}

func (d *decoder) wrap(e *etree.Element, err error) {
	if err != nil && d.err == nil {
		d.err = fmt.Errorf("%w: %s: %w", ErrInvalid, e.GetPath(), err)
	}
}

func (d *decoder) length(e *etree.Element, key string) *unit.Unit {
	a := e.SelectAttr(key)
	if a == nil {
		return nil
	}
	u, err := unit.Parse(a.Value)
	if err != nil {
		d.wrap(e, err)
		return nil
	}
	return &u
}

func (d *decoder) lengthOr(e *etree.Element, key string, dflt unit.Unit) unit.Unit {
	if u := d.length(e, key); u != nil {
		return *u
	}
	return dflt
}

func (d *decoder) bool(e *etree.Element, key string) *bool {
	a := e.SelectAttr(key)
	if a == nil {
		return nil
	}
	b, err := strconv.ParseBool(a.Value)
	if err != nil {
		d.wrap(e, err)
		return nil
	}
	return &b
}

func (d *decoder) int(e *etree.Element, key string, dflt int) int {
	a := e.SelectAttr(key)
	if a == nil {
		return dflt
	}
	n, err := strconv.Atoi(a.Value)
	if err != nil {
		d.wrap(e, err)
		return dflt
	}
	return n
}

func (d *decoder) color(e *etree.Element, key string) dom.Color {
	a := e.SelectAttr(key)
	if a == nil {
		return dom.Color{}
	}
	c, err := dom.ParseColor(a.Value)
	d.wrap(e, err)
	return c
}

type named interface {
	~int
	String() string
}

// enum maps an attribute to the value among the first n of T whose String
// matches. A missing attribute yields the zero value.
func enum[T named](d *decoder, e *etree.Element, key string, n int) T {
	a := e.SelectAttr(key)
	if a == nil {
		return 0
	}
	for i := 0; i < n; i++ {
		if T(i).String() == a.Value {
			return T(i)
		}
	}
	d.fail(e, "unknown %s %q", key, a.Value)
	return 0
}

func (d *decoder) style(styles *dom.Styles, e *etree.Element) {
	name := e.SelectAttrValue("name", "")
	base := e.SelectAttrValue("base", "")
	pf := d.format(e.SelectElement("format"))
	if st := styles.Get(name); st != nil {
		d.wrap(e, styles.SetBase(name, base))
		st.Format = pf
		return
	}
	st, err := styles.Add(name, base)
	if err != nil {
		d.wrap(e, err)
		return
	}
	st.Format = pf
}

func (d *decoder) section(doc *dom.Document, e *etree.Element) {
	sec := doc.AddSection()
	if p := e.SelectElement("pageSetup"); p != nil {
		ps := &sec.PageSetup
		if a := p.SelectAttr("format"); a != nil {
			f, ok := dom.ParsePageFormat(a.Value)
			if !ok {
				d.fail(p, "unknown page format %q", a.Value)
			}
			ps.SetPageFormat(f)
		}
		switch p.SelectAttrValue("orientation", "portrait") {
		case "portrait":
			ps.Orientation = dom.Portrait
		case "landscape":
			ps.Orientation = dom.Landscape
		default:
			d.fail(p, "unknown orientation")
		}
		ps.PageWidth = d.lengthOr(p, "width", ps.PageWidth)
		ps.PageHeight = d.lengthOr(p, "height", ps.PageHeight)
		ps.TopMargin = d.lengthOr(p, "top", ps.TopMargin)
		ps.BottomMargin = d.lengthOr(p, "bottom", ps.BottomMargin)
		ps.LeftMargin = d.lengthOr(p, "left", ps.LeftMargin)
		ps.RightMargin = d.lengthOr(p, "right", ps.RightMargin)
		ps.HeaderDistance = d.lengthOr(p, "headerDistance", ps.HeaderDistance)
		ps.FooterDistance = d.lengthOr(p, "footerDistance", ps.FooterDistance)
		ps.StartingNumber = d.int(p, "startingNumber", ps.StartingNumber)
		ps.OddAndEvenPagesHeaderFooter = flag(d.bool(p, "oddAndEven"))
		ps.DifferentFirstPageHeaderFooter = flag(d.bool(p, "differentFirstPage"))
	}
	for _, he := range e.ChildElements() {
		var set dom.HeadersFooters
		switch he.Tag {
		case "header":
			set = sec.Headers
		case "footer":
			set = sec.Footers
		default:
			continue
		}
		var hf *dom.HeaderFooter
		switch slot := he.SelectAttrValue("slot", "primary"); slot {
		case "primary":
			hf = set.Primary
		case "evenPage":
			hf = set.EvenPage
		case "firstPage":
			hf = set.FirstPage
		default:
			d.fail(he, "unknown slot %q", slot)
			return
		}
		if a := he.SelectAttr("style"); a != nil {
			hf.Style = a.Value
		}
		hf.Format = d.format(he.SelectElement("format"))
		d.blocks(he, hf)
	}
	d.blocks(e, sec)
}

// properties are child elements that describe their parent rather than
// being content.
var properties = map[string]bool{
	"format": true, "font": true, "borders": true, "shading": true,
	"pageSetup": true, "header": true, "footer": true,
}

func (d *decoder) blocks(parent *etree.Element, dst dom.BlockContainer) {
	for _, e := range parent.ChildElements() {
		if d.err != nil {
			return
		}
		if properties[e.Tag] {
			continue
		}
		var b dom.Block
		switch e.Tag {
		case "paragraph":
			p := dom.NewParagraph()
			p.Style = e.SelectAttrValue("style", "")
			p.Format = d.format(e.SelectElement("format"))
			d.elements(e, p)
			b = p
		case "table":
			b = d.table(e)
		case "image":
			b = d.image(e)
		case "textFrame":
			tf := dom.NewTextFrame()
			tf.Shape = d.shape(e)
			d.blocks(e, tf)
			b = tf
		case "chart":
			b = d.chart(e)
		case "pageBreak":
			b = &dom.PageBreak{}
		default:
			d.fail(e, "unexpected block <%s>", e.Tag)
			return
		}
		d.wrap(e, dst.AddBlock(b))
	}
}

func (d *decoder) elements(parent *etree.Element, dst dom.ElementContainer) {
	for _, e := range parent.ChildElements() {
		if d.err != nil {
			return
		}
		if properties[e.Tag] {
			continue
		}
		var el dom.Element
		switch e.Tag {
		case "text":
			el = dom.NewText(e.Text())
		case "formattedText":
			ft := dom.NewFormattedText()
			ft.Style = e.SelectAttrValue("style", "")
			ft.Font = d.font(e.SelectElement("font"))
			d.elements(e, ft)
			el = ft
		case "lineBreak":
			el = &dom.LineBreak{}
		case "tab":
			el = &dom.Tab{}
		case "bookmark":
			el = &dom.BookmarkField{Name: e.SelectAttrValue("name", "")}
		case "hyperlink":
			h := dom.NewHyperlink(e.SelectAttrValue("name", ""), enum[dom.HyperlinkType](d, e, "type", 5))
			h.Font = d.font(e.SelectElement("font"))
			d.elements(e, h)
			el = h
		case "image":
			el = d.image(e)
		case "character":
			el = &dom.Character{Symbol: enum[dom.SymbolName](d, e, "symbol", 11), Count: d.int(e, "count", 1)}
		case "pageField":
			el = &dom.PageField{Format: e.SelectAttrValue("format", "")}
		case "numPagesField":
			el = &dom.NumPagesField{Format: e.SelectAttrValue("format", "")}
		case "pageRefField":
			el = &dom.PageRefField{Name: e.SelectAttrValue("name", ""), Format: e.SelectAttrValue("format", "")}
		case "sectionField":
			el = &dom.SectionField{Format: e.SelectAttrValue("format", "")}
		case "sectionPagesField":
			el = &dom.SectionPagesField{Format: e.SelectAttrValue("format", "")}
		case "dateField":
			el = &dom.DateField{Format: e.SelectAttrValue("format", "")}
		case "infoField":
			el = &dom.InfoField{Name: enum[dom.InfoFieldName](d, e, "name", 4)}
		case "footnote":
			fn := &dom.Footnote{Reference: e.SelectAttrValue("reference", "")}
			fn.Format = d.format(e.SelectElement("format"))
			d.blocks(e, fn)
			el = fn
		default:
			d.fail(e, "unexpected inline element <%s>", e.Tag)
			return
		}
		d.wrap(e, dst.Add(el))
	}
}

func (d *decoder) image(e *etree.Element) *dom.Image {
	img := dom.NewImage(e.SelectAttrValue("name", ""))
	img.Shape = d.shape(e)
	img.LockAspectRatio = flag(d.bool(e, "lockAspectRatio"))
	img.IntrinsicWidth = d.lengthOr(e, "intrinsicWidth", 0)
	img.IntrinsicHeight = d.lengthOr(e, "intrinsicHeight", 0)
	return img
}

func (d *decoder) shape(e *etree.Element) dom.Shape {
	return dom.Shape{
		Width:              d.lengthOr(e, "width", 0),
		Height:             d.lengthOr(e, "height", 0),
		Left:               d.position(e, "left"),
		Top:                d.position(e, "top"),
		RelativeHorizontal: enum[dom.RelativeHorizontal](d, e, "relativeHorizontal", 4),
		RelativeVertical:   enum[dom.RelativeVertical](d, e, "relativeVertical", 4),
		Wrap:               enum[dom.WrapStyle](d, e, "wrap", 3),
	}
}

func (d *decoder) position(e *etree.Element, key string) dom.ShapePosition {
	a := e.SelectAttr(key)
	if a == nil {
		return dom.ShapePosition{}
	}
	for k := dom.PositionTop; k <= dom.PositionOutside; k++ {
		if k.String() == a.Value {
			return dom.Position(k)
		}
	}
	return dom.At(d.lengthOr(e, key, 0))
}

func (d *decoder) chart(e *etree.Element) *dom.Chart {
	c := dom.NewChart(enum[dom.ChartType](d, e, "type", 5))
	c.Title = e.SelectAttrValue("title", "")
	c.Width = d.lengthOr(e, "width", 0)
	c.Height = d.lengthOr(e, "height", 0)
	for _, cat := range e.SelectElements("category") {
		c.Categories = append(c.Categories, cat.Text())
	}
	for _, se := range e.SelectElements("series") {
		var values []float64
		for _, ve := range se.SelectElements("value") {
			v, err := strconv.ParseFloat(ve.Text(), 64)
			d.wrap(ve, err)
			values = append(values, v)
		}
		c.AddSeries(se.SelectAttrValue("name", ""), values...)
	}
	return c
}

func (d *decoder) table(e *etree.Element) *dom.Table {
	cols := e.SelectElements("column")
	widths := make([]unit.Unit, len(cols))
	for i, ce := range cols {
		widths[i] = d.lengthOr(ce, "width", 0)
	}
	t := dom.NewTable(widths...)
	t.Style = e.SelectAttrValue("style", "")
	t.TopPadding = d.length(e, "topPadding")
	t.BottomPadding = d.length(e, "bottomPadding")
	t.LeftPadding = d.length(e, "leftPadding")
	t.RightPadding = d.length(e, "rightPadding")
	t.LeftIndent = d.length(e, "leftIndent")
	t.Format = d.format(e.SelectElement("format"))
	t.Borders = d.borders(e.SelectElement("borders"))
	t.Shading = d.shading(e.SelectElement("shading"))
	for i, ce := range cols {
		col := t.Column(i)
		col.Style = ce.SelectAttrValue("style", "")
		col.Format = d.format(ce.SelectElement("format"))
		col.Shading = d.shading(ce.SelectElement("shading"))
	}
	for _, re := range e.SelectElements("row") {
		r := t.AddRow()
		r.HeadingFormat = flag(d.bool(re, "heading"))
		r.Style = re.SelectAttrValue("style", "")
		r.TopPadding = d.length(re, "topPadding")
		r.BottomPadding = d.length(re, "bottomPadding")
		r.Height = d.length(re, "height")
		r.VerticalAlignment = enum[dom.VerticalAlignment](d, re, "verticalAlignment", 3)
		r.Format = d.format(re.SelectElement("format"))
		r.Borders = d.borders(re.SelectElement("borders"))
		r.Shading = d.shading(re.SelectElement("shading"))
		cells := re.SelectElements("cell")
		if len(cells) > len(r.Cells) {
			d.fail(re, "%d cells in a table of %d columns", len(cells), len(r.Cells))
			return t
		}
		for i, ce := range cells {
			c := r.Cells[i]
			c.MergeRight = d.int(ce, "mergeRight", 0)
			c.MergeDown = d.int(ce, "mergeDown", 0)
			c.VerticalAlignment = enum[dom.VerticalAlignment](d, ce, "verticalAlignment", 3)
			c.Style = ce.SelectAttrValue("style", "")
			c.Format = d.format(ce.SelectElement("format"))
			c.Borders = d.borders(ce.SelectElement("borders"))
			c.Shading = d.shading(ce.SelectElement("shading"))
			d.blocks(ce, c)
		}
	}
	return t
}

func (d *decoder) format(e *etree.Element) dom.ParagraphFormat {
	var f dom.ParagraphFormat
	if e == nil {
		return f
	}
	f.Alignment = enum[dom.Alignment](d, e, "alignment", 5)
	f.LeftIndent = d.length(e, "leftIndent")
	f.RightIndent = d.length(e, "rightIndent")
	f.FirstLineIndent = d.length(e, "firstLineIndent")
	f.SpaceBefore = d.length(e, "spaceBefore")
	f.SpaceAfter = d.length(e, "spaceAfter")
	f.LineSpacing = d.length(e, "lineSpacing")
	f.LineSpacingRule = enum[dom.LineSpacingRule](d, e, "lineSpacingRule", 7)
	f.PageBreakBefore = d.bool(e, "pageBreakBefore")
	f.KeepWithNext = d.bool(e, "keepWithNext")
	f.OutlineLevel = d.int(e, "outlineLevel", 0)
	f.Font = d.font(e.SelectElement("font"))
	f.Borders = d.borders(e.SelectElement("borders"))
	f.Shading = d.shading(e.SelectElement("shading"))
	if te := e.SelectElement("tabStops"); te != nil {
		if flag(d.bool(te, "cleared")) {
			f.TabStops.ClearAll()
		}
		for _, s := range te.SelectElements("tabStop") {
			f.TabStops.Add(dom.TabStop{
				Position:  d.lengthOr(s, "position", 0),
				Alignment: enum[dom.TabAlignment](d, s, "alignment", 4),
				Leader:    enum[dom.TabLeader](d, s, "leader", 4),
			})
		}
	}
	return f
}

func (d *decoder) font(e *etree.Element) dom.Font {
	var f dom.Font
	if e == nil {
		return f
	}
	f.Name = e.SelectAttrValue("name", "")
	f.Size = d.lengthOr(e, "size", 0)
	f.Bold = d.bool(e, "bold")
	f.Italic = d.bool(e, "italic")
	f.Underline = enum[dom.Underline](d, e, "underline", 5)
	f.Color = d.color(e, "color")
	f.Subscript = d.bool(e, "subscript")
	f.Superscript = d.bool(e, "superscript")
	return f
}

func (d *decoder) borders(e *etree.Element) dom.Borders {
	var b dom.Borders
	if e == nil {
		return b
	}
	b.Width = d.length(e, "width")
	b.Color = d.color(e, "color")
	b.Style = enum[dom.BorderStyle](d, e, "style", 5)
	b.Distance = d.length(e, "distance")
	b.Visible = d.bool(e, "visible")
	edge := func(tag string) dom.Border {
		be := e.SelectElement(tag)
		if be == nil {
			return dom.Border{}
		}
		return dom.Border{
			Width:   d.length(be, "width"),
			Color:   d.color(be, "color"),
			Style:   enum[dom.BorderStyle](d, be, "style", 5),
			Visible: d.bool(be, "visible"),
		}
	}
	b.Top = edge("top")
	b.Right = edge("right")
	b.Bottom = edge("bottom")
	b.Left = edge("left")
	return b
}

func (d *decoder) shading(e *etree.Element) dom.Shading {
	if e == nil {
		return dom.Shading{}
	}
	return dom.Shading{Color: d.color(e, "color"), Visible: d.bool(e, "visible")}
}

func flag(b *bool) bool { return b != nil && *b }
