package pdf

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/wudi/docez/dom"
	"github.com/wudi/docez/observability"
	"github.com/wudi/docez/render"
	"github.com/wudi/docez/unit"
)

// defaultTab is the spacing of implicit tab stops.
const defaultTab = 1.25 * unit.Centimeter

// box is a horizontal band blocks are laid out in.
type box struct{ x, w float64 }

// frame carries the style context of a block container.
type frame struct {
	base   string
	layers []dom.ParagraphFormat
}

func (s *state) blocks(ctx context.Context, blocks []dom.Block, fr frame, b box) error {
	for _, blk := range blocks {
		if err := render.Canceled(ctx); err != nil {
			return err
		}
		if err := s.block(ctx, blk, fr, b); err != nil {
			return err
		}
	}
	return nil
}

func (s *state) block(ctx context.Context, blk dom.Block, fr frame, b box) error {
	switch v := blk.(type) {
	case *dom.Paragraph:
		s.paragraph(v, fr, b)
	case *dom.Table:
		return s.table(ctx, v, fr, b)
	case *dom.Image:
		s.image(v, b)
	case *dom.TextFrame:
		return s.textFrame(ctx, v, fr, b)
	case *dom.Chart:
		s.chart(v, b)
	case *dom.PageBreak:
		if s.inFrame == 0 {
			s.f.AddPage()
		}
	}
	return nil
}

func (s *state) paragraph(p *dom.Paragraph, fr frame, b box) {
	f := s.f
	pf := s.formats.Paragraph(p, fr.base, fr.layers...)
	if flag(pf.PageBreakBefore) && s.inFrame == 0 && !s.atPageTop() {
		f.AddPage()
	}
	s.updateFields()
	runs := s.flat.Runs(p.Elements, pf.Font)
	lh := render.LineHeight(pf).Points()
	left := b.x + dom.Length(pf.LeftIndent).Points()
	width := b.w - dom.Length(pf.LeftIndent).Points() - dom.Length(pf.RightIndent).Points()

	y := f.GetY() + dom.Length(pf.SpaceBefore).Points()
	if s.inFrame == 0 {
		_, pageH := f.GetPageSize()
		_, _, _, bottom := f.GetMargins()
		if auto, _ := f.GetAutoPageBreak(); auto && y+lh > pageH-bottom && !s.atPageTop() {
			f.AddPage()
			y = f.GetY()
		}
	}
	f.SetXY(left, y)
	s.outline(pf, runs)

	if pf.Alignment == dom.AlignCenter || pf.Alignment == dom.AlignRight || pf.Alignment == dom.AlignJustify ||
		pf.Borders.IsSet() || pf.Shading.IsVisible() {
		s.alignedParagraph(pf, runs, left, width, lh)
	} else {
		s.flowParagraph(pf, runs, left, width, lh)
	}
	f.SetY(f.GetY() + dom.Length(pf.SpaceAfter).Points())
}

// flowParagraph writes runs with their own fonts, wrapping at the box.
func (s *state) flowParagraph(pf dom.ParagraphFormat, runs []render.Run, left, width, lh float64) {
	f := s.f
	oldLeft, top, oldRight, _ := f.GetMargins()
	pageW, _ := f.GetPageSize()
	f.SetMargins(left, top, pageW-left-width)
	defer f.SetMargins(oldLeft, top, oldRight)

	f.SetX(left + dom.Length(pf.FirstLineIndent).Points())
	for i, r := range runs {
		switch r.Kind {
		case render.RunText:
			s.setFont(r.Font)
			s.writeText(r, lh)
		case render.RunTab:
			s.tab(pf.TabStops, runs[i+1:], left, width, lh, r.Font)
		case render.RunBreak:
			f.Ln(lh)
		case render.RunImage:
			s.inlineImage(r.Image, lh)
		case render.RunBookmark:
			s.anchor(r.Text)
		}
	}
	f.Ln(lh)
}

func (s *state) writeText(r render.Run, lh float64) {
	f := s.f
	txt := s.tr(r.Text)
	id, url := s.link(r.Link)
	size := render.FontSize(r.Font).Points()
	switch {
	case render.IsSuperscript(r.Font):
		f.SubWrite(lh, txt, size*0.6, size*0.4, id, url)
	case render.IsSubscript(r.Font):
		f.SubWrite(lh, txt, size*0.6, -size*0.15, id, url)
	case id != 0:
		f.WriteLinkID(lh, txt, id)
	case url != "":
		f.WriteLinkString(lh, txt, url)
	default:
		f.Write(lh, txt)
	}
}

// alignedParagraph draws the paragraph as one MultiCell. Inline formatting
// collapses to the paragraph font; borders and shading frame the text.
func (s *state) alignedParagraph(pf dom.ParagraphFormat, runs []render.Run, left, width, lh float64) {
	f := s.f
	for _, r := range runs {
		if r.Kind == render.RunBookmark {
			s.anchor(r.Text)
		}
	}
	s.setFont(pf.Font)
	border := ""
	for _, e := range []struct {
		edge dom.Edge
		code string
	}{{dom.EdgeTop, "T"}, {dom.EdgeRight, "R"}, {dom.EdgeBottom, "B"}, {dom.EdgeLeft, "L"}} {
		if bd := pf.Borders.Edge(e.edge); bd.Shown() {
			border += e.code
			s.setLine(bd)
		}
	}
	fill := pf.Shading.IsVisible()
	if fill {
		c := pf.Shading.Color
		f.SetFillColor(int(c.R), int(c.G), int(c.B))
	}
	align := "L"
	switch pf.Alignment {
	case dom.AlignCenter:
		align = "C"
	case dom.AlignRight:
		align = "R"
	case dom.AlignJustify:
		align = "J"
	}
	f.SetX(left)
	f.MultiCell(width, lh, s.tr(plainText(runs)), border, align, fill)
	resetLine(f)
}

// tab advances to the next stop, honouring its alignment against the text
// up to the following tab or break.
func (s *state) tab(stops dom.TabStops, rest []render.Run, left, width, lh float64, fnt dom.Font) {
	f := s.f
	cur := f.GetX() - left
	stop, ok := stops.Next(unit.Pt(cur))
	if !ok {
		n := math.Floor(cur/defaultTab.Points()) + 1
		stop = dom.TabStop{Position: unit.Pt(n * defaultTab.Points())}
	}
	target := left + stop.Position.Points()
	if stop.Alignment == dom.TabRight || stop.Alignment == dom.TabCenter {
		seg := s.segmentWidth(rest)
		if stop.Alignment == dom.TabCenter {
			seg /= 2
		}
		target -= seg
	}
	if target > left+width {
		target = left + width
	}
	if target <= f.GetX() {
		return
	}
	if leader := leaderRune(stop.Leader); leader != "" {
		s.setFont(fnt)
		if dw := f.GetStringWidth(leader); dw > 0 {
			if n := int((target - f.GetX()) / dw); n > 0 {
				f.Write(lh, strings.Repeat(leader, n))
			}
		}
	}
	f.SetX(target)
}

func (s *state) segmentWidth(runs []render.Run) float64 {
	var w float64
	for _, r := range runs {
		if r.Kind == render.RunTab || r.Kind == render.RunBreak {
			break
		}
		if r.Kind == render.RunText {
			s.setFont(r.Font)
			w += s.f.GetStringWidth(s.tr(r.Text))
		}
	}
	return w
}

func leaderRune(l dom.TabLeader) string {
	switch l {
	case dom.LeaderDots:
		return "."
	case dom.LeaderDashes:
		return "-"
	case dom.LeaderLines:
		return "_"
	}
	return ""
}

// link returns the internal link id or the URL a run points to.
func (s *state) link(h *dom.Hyperlink) (int, string) {
	if h == nil || h.Name == "" {
		return 0, ""
	}
	switch h.Type {
	case dom.HyperlinkLocal, dom.HyperlinkBookmark:
		return s.linkID(h.Name), ""
	case dom.HyperlinkFile:
		if !strings.Contains(h.Name, "://") {
			return 0, "file://" + h.Name
		}
	}
	return 0, h.Name
}

func (s *state) linkID(name string) int {
	if id, ok := s.links[name]; ok {
		return id
	}
	id := s.f.AddLink()
	s.links[name] = id
	return id
}

// anchor places a bookmark at the current position.
func (s *state) anchor(name string) {
	if name == "" {
		return
	}
	s.pages.bookmarks[name] = s.pageNumber()
	s.f.SetLink(s.linkID(name), s.f.GetY(), -1)
}

// outline adds headings to the document outline. gofpdf requires levels to
// grow one step at a time.
func (s *state) outline(pf dom.ParagraphFormat, runs []render.Run) {
	if pf.OutlineLevel <= 0 || s.inFrame > 0 {
		return
	}
	title := strings.TrimSpace(plainText(runs))
	if title == "" {
		return
	}
	level := pf.OutlineLevel - 1
	if level > s.outlineLevel+1 {
		level = s.outlineLevel + 1
	}
	s.outlineLevel = level
	s.f.Bookmark(s.tr(title), level, -1)
}

func (s *state) atPageTop() bool {
	_, top, _, _ := s.f.GetMargins()
	return s.f.GetY() <= top+0.01
}

// footnotes lists the notes referenced in the section below a rule.
func (s *state) footnotes(b box) {
	notes := s.flat.TakeFootnotes()
	if len(notes) == 0 {
		return
	}
	f := s.f
	y := f.GetY() + 6
	f.SetLineWidth(0.5)
	f.SetDrawColor(0, 0, 0)
	f.Line(b.x, y, b.x+b.w/3, y)
	f.SetY(y + 4)
	fr := frame{base: dom.StyleFootnote}
	markW := 14.0
	for i, fn := range notes {
		mark := fn.Reference
		if mark == "" {
			mark = strconv.Itoa(i + 1)
		}
		pf := s.formats.Style(dom.StyleFootnote)
		s.setFont(pf.Font)
		y := f.GetY()
		f.SetXY(b.x, y)
		f.CellFormat(markW, render.LineHeight(pf).Points(), s.tr(mark), "", 0, "L", false, 0, "")
		f.SetY(y)
		inner := box{x: b.x + markW, w: b.w - markW}
		if len(fn.Blocks) == 0 {
			f.Ln(render.LineHeight(pf).Points())
		}
		for _, blk := range fn.Blocks {
			s.block(context.Background(), blk, fr, inner)
		}
	}
	if extra := s.flat.Footnotes(); len(extra) > 0 {
		s.r.log.Debug("footnotes inside footnotes are not listed", observability.Int("count", len(extra)))
		s.flat.TakeFootnotes()
	}
}

// measure estimates the height blocks take in a band of width w.
func (s *state) measure(blocks []dom.Block, fr frame, w float64) float64 {
	var h float64
	for _, blk := range blocks {
		switch v := blk.(type) {
		case *dom.Paragraph:
			h += s.paragraphHeight(v, fr, w)
		case *dom.Image:
			_, ih := s.imageExtent(v)
			h += ih
		case *dom.TextFrame:
			if isFlowing(v.Shape) && v.Wrap == dom.WrapTopBottom {
				h += v.Height.Points()
			}
		case *dom.Chart:
			_, ch := chartSize(v, w)
			h += ch
		case *dom.Table:
			for _, rh := range s.rowHeights(v, fr, s.columnEdges(v, box{w: w})) {
				h += rh
			}
		}
	}
	return h
}

func (s *state) paragraphHeight(p *dom.Paragraph, fr frame, w float64) float64 {
	pf := s.formats.Paragraph(p, fr.base, fr.layers...)
	probe := render.Flattener{Fields: s.flat.Fields}
	runs := probe.Runs(p.Elements, pf.Font)
	avail := w - dom.Length(pf.LeftIndent).Points() - dom.Length(pf.RightIndent).Points()
	s.setFont(pf.Font)
	lines := 0
	for _, part := range strings.Split(s.tr(plainText(runs)), "\n") {
		n := 1
		if part != "" && avail > 0 {
			n = len(s.f.SplitText(part, avail))
		}
		if n < 1 {
			n = 1
		}
		lines += n
	}
	lh := render.LineHeight(pf).Points()
	for _, r := range runs {
		if r.Kind == render.RunImage {
			if _, ih := s.imageExtent(r.Image); ih > lh {
				lh = ih
			}
		}
	}
	return dom.Length(pf.SpaceBefore).Points() + float64(lines)*lh + dom.Length(pf.SpaceAfter).Points()
}

// plainText joins run text; tabs become spaces.
func plainText(runs []render.Run) string {
	var sb strings.Builder
	for _, r := range runs {
		switch r.Kind {
		case render.RunText:
			sb.WriteString(r.Text)
		case render.RunTab:
			sb.WriteString("    ")
		case render.RunBreak:
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func flag(b *bool) bool { return b != nil && *b }
