// Package docx renders documents as WordprocessingML with unioffice.
//
// Formatting is written directly on paragraphs and runs from the resolved
// style chain, so the output does not depend on Word's built-in styles.
// Text frames are written inline and charts become value tables.
package docx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/unidoc/unioffice/color"
	"github.com/unidoc/unioffice/common"
	"github.com/unidoc/unioffice/document"
	"github.com/unidoc/unioffice/measurement"
	"github.com/unidoc/unioffice/schema/soo/wml"

	"github.com/wudi/docez/dom"
	"github.com/wudi/docez/observability"
	"github.com/wudi/docez/render"
	"github.com/wudi/docez/unit"
)

var ErrNilDocument = errors.New("docx: nil document")

// Page fields are carried through flattened text between NUL bytes and
// written as Word fields.
var (
	pageMark         = "\x00" + document.FieldCurrentPage + "\x00"
	numPagesMark     = "\x00" + document.FieldNumberOfPages + "\x00"
	sectionPagesMark = "\x00SECTIONPAGES\x00"
)

type Renderer struct {
	log observability.Logger
}

type Option func(*Renderer)

func WithLogger(l observability.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.log = l
		}
	}
}

func New(opts ...Option) *Renderer {
	r := &Renderer{log: observability.NopLogger{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) Render(ctx context.Context, doc *dom.Document, w io.Writer) error {
	if doc == nil {
		return ErrNilDocument
	}
	out := document.New()
	out.CoreProperties.SetTitle(doc.Info.Title)
	out.CoreProperties.SetAuthor(doc.Info.Author)
	if doc.Info.Comment != "" {
		out.CoreProperties.SetDescription(doc.Info.Comment)
	}

	wr := &writer{
		r:       r,
		out:     out,
		formats: render.NewFormats(doc),
		flat: &render.Flattener{Fields: render.Fields{
			Page:         pageMark,
			NumPages:     numPagesMark,
			SectionPages: sectionPagesMark,
			Info:         doc.Info,
		}},
		bookmarks: make(map[string]document.Bookmark),
		images:    make(map[string]common.ImageRef),
	}
	for i, sec := range doc.Sections {
		if err := render.Canceled(ctx); err != nil {
			return err
		}
		wr.flat.Fields.Section = strconv.Itoa(i + 1)
		if err := wr.blocks(ctx, out, sec.Blocks, frame{base: dom.StyleNormal}); err != nil {
			return err
		}
		wr.footnotes()
		if i < len(doc.Sections)-1 {
			brk := out.AddParagraph()
			wr.section(brk.Properties().AddSection(wml.ST_SectionMarkNextPage), sec)
		} else {
			wr.section(out.BodySection(), sec)
		}
	}
	for name, err := range wr.formats.Missing {
		r.log.Warn("style not resolved, using Normal", observability.String("style", name), observability.Error("error", err))
	}
	if err := out.Save(w); err != nil {
		return fmt.Errorf("docx: %w", err)
	}
	return nil
}

type writer struct {
	r         *Renderer
	out       *document.Document
	formats   *render.Formats
	flat      *render.Flattener
	bookmarks map[string]document.Bookmark
	images    map[string]common.ImageRef
}

type frame struct {
	base   string
	layers []dom.ParagraphFormat
}

// paragraphHost is anything paragraphs can be appended to: the body, a
// header, a footer or a table cell.
type paragraphHost interface {
	AddParagraph() document.Paragraph
}

func dist(u unit.Unit) measurement.Distance {
	return measurement.Distance(u.Points()) * measurement.Point
}

func rgb(c dom.Color) color.Color { return color.RGB(c.R, c.G, c.B) }

// section applies page margins and headers/footers to a section break.
func (w *writer) section(s document.Section, sec *dom.Section) {
	ps := sec.PageSetup
	s.SetPageMargins(dist(ps.TopMargin), dist(ps.RightMargin), dist(ps.BottomMargin), dist(ps.LeftMargin),
		dist(ps.HeaderDistance), dist(ps.FooterDistance), 0)
	slots := []struct {
		hf  *dom.HeaderFooter
		typ wml.ST_HdrFtr
	}{
		{sec.Headers.Primary, wml.ST_HdrFtrDefault},
		{sec.Headers.EvenPage, wml.ST_HdrFtrEven},
		{sec.Headers.FirstPage, wml.ST_HdrFtrFirst},
		{sec.Footers.Primary, wml.ST_HdrFtrDefault},
		{sec.Footers.EvenPage, wml.ST_HdrFtrEven},
		{sec.Footers.FirstPage, wml.ST_HdrFtrFirst},
	}
	for _, sl := range slots {
		if sl.hf.IsEmpty() {
			continue
		}
		if sl.typ == wml.ST_HdrFtrEven && !ps.OddAndEvenPagesHeaderFooter ||
			sl.typ == wml.ST_HdrFtrFirst && !ps.DifferentFirstPageHeaderFooter {
			continue
		}
		fr := frame{base: sl.hf.Style, layers: []dom.ParagraphFormat{sl.hf.Format}}
		if sl.hf.IsHeader {
			h := w.out.AddHeader()
			w.flowBlocks(h, sl.hf.Blocks, fr)
			s.SetHeader(h, sl.typ)
		} else {
			f := w.out.AddFooter()
			w.flowBlocks(f, sl.hf.Blocks, fr)
			s.SetFooter(f, sl.typ)
		}
	}
}

func (w *writer) blocks(ctx context.Context, host *document.Document, blocks []dom.Block, fr frame) error {
	for _, b := range blocks {
		if err := render.Canceled(ctx); err != nil {
			return err
		}
		switch v := b.(type) {
		case *dom.Table:
			w.table(v, fr)
		case *dom.Chart:
			w.chart(v)
		default:
			w.flowBlocks(host, []dom.Block{b}, fr)
		}
	}
	return nil
}

// flowBlocks writes blocks that only need paragraphs. Tables nested in cells
// or headers are written one paragraph per row.
func (w *writer) flowBlocks(host paragraphHost, blocks []dom.Block, fr frame) {
	for _, b := range blocks {
		switch v := b.(type) {
		case *dom.Paragraph:
			w.paragraph(host.AddParagraph(), v, fr)
		case *dom.Image:
			w.image(host.AddParagraph().AddRun(), v)
		case *dom.TextFrame:
			w.r.log.Debug("text frame written inline")
			w.flowBlocks(host, v.Blocks, fr)
		case *dom.PageBreak:
			host.AddParagraph().AddRun().AddPageBreak()
		case *dom.Chart:
			host.AddParagraph().AddRun().AddText("[chart: " + v.Title + "]")
		case *dom.Table:
			for _, row := range v.Rows {
				para := host.AddParagraph()
				for i, c := range row.Cells {
					if i > 0 {
						para.AddRun().AddTab()
					}
					for _, cb := range c.Blocks {
						if p, ok := cb.(*dom.Paragraph); ok {
							para.AddRun().AddText(p.PlainText())
						}
					}
				}
			}
		}
	}
}

func (w *writer) paragraph(para document.Paragraph, p *dom.Paragraph, fr frame) {
	pf := w.formats.Paragraph(p, fr.base, fr.layers...)
	props := para.Properties()
	switch pf.Alignment {
	case dom.AlignLeft:
		props.SetAlignment(wml.ST_JcLeft)
	case dom.AlignCenter:
		props.SetAlignment(wml.ST_JcCenter)
	case dom.AlignRight:
		props.SetAlignment(wml.ST_JcRight)
	case dom.AlignJustify:
		props.SetAlignment(wml.ST_JcBoth)
	}
	if pf.LeftIndent != nil {
		props.SetStartIndent(dist(*pf.LeftIndent))
	}
	if pf.RightIndent != nil {
		props.SetEndIndent(dist(*pf.RightIndent))
	}
	if pf.FirstLineIndent != nil {
		props.SetFirstLineIndent(dist(*pf.FirstLineIndent))
	}
	props.SetSpacing(dist(dom.Length(pf.SpaceBefore)), dist(dom.Length(pf.SpaceAfter)))
	if d, rule, ok := lineSpacing(pf); ok {
		props.Spacing().SetLineSpacing(d, rule)
	}
	if pf.KeepWithNext != nil {
		props.SetKeepWithNext(*pf.KeepWithNext)
	}
	if pf.OutlineLevel > 0 {
		props.SetHeadingLevel(pf.OutlineLevel)
	}
	for _, ts := range pf.TabStops.Stops {
		props.AddTabStop(dist(ts.Position), tabAlignment(ts.Alignment), tabLeader(ts.Leader))
	}
	if pf.PageBreakBefore != nil {
		props.SetPageBreakBefore(*pf.PageBreakBefore)
	}

	runs := w.flat.Runs(p.Elements, pf.Font)
	for _, r := range runs {
		w.run(para, r)
	}
}

// lineSpacing maps a line spacing rule to a WordprocessingML line value.
// Auto lines are measured in 240ths of a line, so 12pt is single spacing.
func lineSpacing(pf dom.ParagraphFormat) (measurement.Distance, wml.ST_LineSpacingRule, bool) {
	switch pf.LineSpacingRule {
	case dom.LineSpacingOnePtFive:
		return 18 * measurement.Point, wml.ST_LineSpacingRuleAuto, true
	case dom.LineSpacingDouble:
		return 24 * measurement.Point, wml.ST_LineSpacingRuleAuto, true
	}
	if pf.LineSpacing == nil {
		return 0, wml.ST_LineSpacingRuleUnset, false
	}
	switch pf.LineSpacingRule {
	case dom.LineSpacingMultiple:
		return measurement.Distance(12*float64(*pf.LineSpacing)) * measurement.Point, wml.ST_LineSpacingRuleAuto, true
	case dom.LineSpacingExactly:
		return dist(*pf.LineSpacing), wml.ST_LineSpacingRuleExact, true
	case dom.LineSpacingAtLeast:
		return dist(*pf.LineSpacing), wml.ST_LineSpacingRuleAtLeast, true
	}
	return 0, wml.ST_LineSpacingRuleUnset, false
}

func (w *writer) run(para document.Paragraph, r render.Run) {
	var run document.Run
	switch {
	case r.Link != nil && r.Link.Type != dom.HyperlinkLocal && r.Link.Type != dom.HyperlinkBookmark:
		hl := para.AddHyperLink()
		hl.SetTarget(r.Link.Name)
		run = hl.AddRun()
	case r.Link != nil:
		if bm, ok := w.bookmarks[r.Link.Name]; ok {
			hl := para.AddHyperLink()
			hl.SetTargetBookmark(bm)
			run = hl.AddRun()
		} else {
			run = para.AddRun()
		}
	default:
		run = para.AddRun()
	}
	w.font(run.Properties(), r.Font)

	switch r.Kind {
	case render.RunText:
		addText(run, r.Text)
	case render.RunTab:
		run.AddTab()
	case render.RunBreak:
		run.AddBreak()
	case render.RunImage:
		w.image(run, r.Image)
	case render.RunBookmark:
		w.bookmarks[r.Text] = para.AddBookmark(r.Text)
	}
}

// addText writes s to run, turning field marks into fields.
func addText(run document.Run, s string) {
	for s != "" {
		i := strings.IndexByte(s, 0)
		if i < 0 {
			run.AddText(s)
			return
		}
		if i > 0 {
			run.AddText(s[:i])
		}
		j := strings.IndexByte(s[i+1:], 0)
		if j < 0 {
			run.AddText(s[i+1:])
			return
		}
		run.AddField(s[i+1 : i+1+j])
		s = s[i+2+j:]
	}
}

func (w *writer) font(props document.RunProperties, fnt dom.Font) {
	if fnt.Name != "" {
		props.SetFontFamily(fnt.Name)
	}
	size := render.FontSize(fnt)
	if render.IsSuperscript(fnt) || render.IsSubscript(fnt) {
		size = size * 2 / 3
	}
	props.SetSize(dist(size))
	props.SetBold(fnt.IsBold())
	props.SetItalic(fnt.IsItalic())
	if !fnt.Color.IsEmpty() {
		props.SetColor(rgb(fnt.Color))
	}
	switch fnt.Underline {
	case dom.UnderlineSingle:
		props.SetUnderline(wml.ST_UnderlineSingle, color.Auto)
	case dom.UnderlineDouble:
		props.SetUnderline(wml.ST_UnderlineDouble, color.Auto)
	case dom.UnderlineDotted:
		props.SetUnderline(wml.ST_UnderlineDotted, color.Auto)
	}
}

func (w *writer) image(run document.Run, img *dom.Image) {
	ref, ok := w.images[img.Name]
	if !ok {
		if _, err := os.Stat(img.Name); err != nil {
			w.r.log.Warn("image not found, skipped", observability.String("image", img.Name), observability.Error("error", err))
			return
		}
		ci, err := common.ImageFromFile(img.Name)
		if err != nil {
			w.r.log.Warn("image not readable, skipped", observability.String("image", img.Name), observability.Error("error", err))
			return
		}
		if ref, err = w.out.AddImage(ci); err != nil {
			w.r.log.Warn("image not embedded", observability.String("image", img.Name), observability.Error("error", err))
			return
		}
		w.images[img.Name] = ref
	}
	inl, err := run.AddDrawingInline(ref)
	if err != nil {
		w.r.log.Warn("image not placed", observability.String("image", img.Name), observability.Error("error", err))
		return
	}
	if iw, ih := img.Size(); iw > 0 && ih > 0 {
		inl.SetSize(dist(iw), dist(ih))
	}
}

func (w *writer) table(t *dom.Table, fr frame) {
	if t.NumColumns() == 0 {
		return
	}
	tbl := w.out.AddTable()
	tp := tbl.Properties()
	tp.SetWidth(dist(t.Width()))
	if bd := t.Borders.Edge(dom.EdgeTop); bd.Shown() {
		tp.Borders().SetAll(wml.ST_BorderSingle, borderColor(bd), borderWidth(bd))
	}
	owner := owners(t)
	for r, row := range t.Rows {
		wr := tbl.AddRow()
		for col := 0; col < t.NumColumns(); {
			c := owner[r][col]
			right := spanRight(t, c)
			if c.Column != col {
				col++
				continue
			}
			cell := wr.AddCell()
			cp := cell.Properties()
			cp.SetWidth(spanWidth(t, col, right))
			if right > 0 {
				cp.SetColumnSpan(right + 1)
			}
			col += right + 1
			if c.Row() != row {
				cp.SetVerticalMerge(wml.ST_MergeContinue)
				cell.AddParagraph()
				continue
			}
			if c.MergeDown > 0 {
				cp.SetVerticalMerge(wml.ST_MergeRestart)
			}
			switch c.VerticalAlignment {
			case dom.VAlignCenter:
				cp.SetVerticalAlignment(wml.ST_VerticalJcCenter)
			case dom.VAlignBottom:
				cp.SetVerticalAlignment(wml.ST_VerticalJcBottom)
			}
			if sh := cellShading(t, c); sh.IsVisible() {
				cp.SetShading(wml.ST_ShdClear, color.Auto, rgb(sh.Color))
			}
			bd := t.Borders.Merge(row.Borders).Merge(c.Borders)
			cb := cp.Borders()
			if e := bd.Edge(dom.EdgeTop); e.Shown() {
				cb.SetTop(wml.ST_BorderSingle, borderColor(e), borderWidth(e))
			}
			if e := bd.Edge(dom.EdgeBottom); e.Shown() {
				cb.SetBottom(wml.ST_BorderSingle, borderColor(e), borderWidth(e))
			}
			if e := bd.Edge(dom.EdgeLeft); e.Shown() {
				cb.SetLeft(wml.ST_BorderSingle, borderColor(e), borderWidth(e))
			}
			if e := bd.Edge(dom.EdgeRight); e.Shown() {
				cb.SetRight(wml.ST_BorderSingle, borderColor(e), borderWidth(e))
			}
			if c.IsEmpty() {
				cell.AddParagraph()
			}
			w.flowBlocks(cell, c.Blocks, cellFrame(t, c, fr))
		}
	}
}

// owners maps every grid slot to the cell whose merge covers it.
func owners(t *dom.Table) [][]*dom.Cell {
	owner := make([][]*dom.Cell, len(t.Rows))
	for i := range owner {
		owner[i] = make([]*dom.Cell, t.NumColumns())
	}
	for r, row := range t.Rows {
		for _, c := range row.Cells {
			if owner[r][c.Column] != nil {
				continue
			}
			right := spanRight(t, c)
			down := min(max(c.MergeDown, 0), len(t.Rows)-1-r)
			for dr := 0; dr <= down; dr++ {
				for dc := 0; dc <= right; dc++ {
					if owner[r+dr][c.Column+dc] == nil {
						owner[r+dr][c.Column+dc] = c
					}
				}
			}
		}
	}
	return owner
}

func spanRight(t *dom.Table, c *dom.Cell) int {
	return min(max(c.MergeRight, 0), t.NumColumns()-1-c.Column)
}

// chart writes the series of a chart as a table, categories across.
func (w *writer) chart(c *dom.Chart) {
	if c.Title != "" {
		run := w.out.AddParagraph().AddRun()
		run.Properties().SetBold(true)
		run.AddText(c.Title)
	}
	tbl := w.out.AddTable()
	tbl.Properties().Borders().SetAll(wml.ST_BorderSingle, color.Auto, 0.5*measurement.Point)
	head := tbl.AddRow()
	head.AddCell().AddParagraph()
	for _, cat := range c.Categories {
		head.AddCell().AddParagraph().AddRun().AddText(cat)
	}
	for _, s := range c.Series {
		row := tbl.AddRow()
		row.AddCell().AddParagraph().AddRun().AddText(s.Name)
		for _, v := range s.Values {
			row.AddCell().AddParagraph().AddRun().AddText(strconv.FormatFloat(v, 'f', -1, 64))
		}
	}
}

// footnotes lists the notes of the section at its end.
func (w *writer) footnotes() {
	for i, fn := range w.flat.TakeFootnotes() {
		mark := fn.Reference
		if mark == "" {
			mark = strconv.Itoa(i + 1)
		}
		para := w.out.AddParagraph()
		pf := w.formats.Style(dom.StyleFootnote)
		run := para.AddRun()
		w.font(run.Properties(), pf.Font)
		run.AddText(mark + " ")
		for _, b := range fn.Blocks {
			if p, ok := b.(*dom.Paragraph); ok {
				for _, r := range w.flat.Runs(p.Elements, pf.Font) {
					w.run(para, r)
				}
			}
		}
	}
}

func tabAlignment(a dom.TabAlignment) wml.ST_TabJc {
	switch a {
	case dom.TabCenter:
		return wml.ST_TabJcCenter
	case dom.TabRight:
		return wml.ST_TabJcRight
	case dom.TabDecimal:
		return wml.ST_TabJcDecimal
	}
	return wml.ST_TabJcLeft
}

func tabLeader(l dom.TabLeader) wml.ST_TabTlc {
	switch l {
	case dom.LeaderDots:
		return wml.ST_TabTlcDot
	case dom.LeaderDashes:
		return wml.ST_TabTlcHyphen
	case dom.LeaderLines:
		return wml.ST_TabTlcUnderscore
	}
	return wml.ST_TabTlcNone
}

func borderColor(b dom.Border) color.Color {
	if b.Color.IsEmpty() {
		return color.Auto
	}
	return rgb(b.Color)
}

func borderWidth(b dom.Border) measurement.Distance {
	if b.Width == nil {
		return 0.5 * measurement.Point
	}
	return dist(*b.Width)
}

func spanWidth(t *dom.Table, col, right int) measurement.Distance {
	var u unit.Unit
	for i := col; i <= col+right; i++ {
		u += t.Column(i).Width
	}
	return dist(u)
}

func cellFrame(t *dom.Table, c *dom.Cell, fr frame) frame {
	base := fr.base
	for _, name := range []string{t.Style, t.Column(c.Column).Style, c.Row().Style, c.Style} {
		if name != "" {
			base = name
		}
	}
	layers := append(append([]dom.ParagraphFormat(nil), fr.layers...), t.Format, t.Column(c.Column).Format, c.Row().Format, c.Format)
	return frame{base: base, layers: layers}
}

func cellShading(t *dom.Table, c *dom.Cell) dom.Shading {
	for _, sh := range []dom.Shading{c.Shading, c.Row().Shading, t.Column(c.Column).Shading} {
		if sh.IsVisible() {
			return sh
		}
	}
	return t.Shading
}
