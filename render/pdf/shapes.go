package pdf

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/wudi/docez/dom"
	"github.com/wudi/docez/observability"
	"github.com/wudi/docez/unit"
)

var imageTypes = map[string]string{".jpg": "JPG", ".jpeg": "JPG", ".png": "PNG", ".gif": "GIF"}

// register loads an image into gofpdf. Missing files and formats gofpdf
// cannot embed are skipped with a warning instead of failing the document.
func (s *state) register(img *dom.Image) (*gofpdf.ImageInfoType, string, bool) {
	typ, ok := imageTypes[strings.ToLower(filepath.Ext(img.Name))]
	if !ok {
		s.r.log.Warn("image format not supported, skipped", observability.String("image", img.Name))
		return nil, "", false
	}
	if _, err := os.Stat(img.Name); err != nil {
		s.r.log.Warn("image not found, skipped", observability.String("image", img.Name), observability.Error("error", err))
		return nil, "", false
	}
	info := s.f.RegisterImageOptions(img.Name, gofpdf.ImageOptions{ImageType: typ, ReadDpi: true})
	if info == nil || s.f.Err() {
		return nil, "", false
	}
	return info, typ, true
}

// imageExtent is the displayed size in points; files that cannot be read
// take no space.
func (s *state) imageExtent(img *dom.Image) (w, h float64) {
	uw, uh := img.Size()
	w, h = uw.Points(), uh.Points()
	if w > 0 && h > 0 {
		return w, h
	}
	info, _, ok := s.register(img)
	if !ok {
		return 0, 0
	}
	iw, ih := info.Extent()
	switch {
	case w == 0 && h == 0:
		return iw, ih
	case w == 0:
		return h * iw / ih, h
	default:
		return w, w * ih / iw
	}
}

func (s *state) image(img *dom.Image, b box) {
	info, typ, ok := s.register(img)
	if !ok {
		return
	}
	w, h := s.imageExtent(img)
	if w == 0 || h == 0 {
		w, h = info.Extent()
	}
	x, y, flow := s.place(img.Shape, w, h, b)
	if flow && s.inFrame == 0 {
		_, pageH := s.f.GetPageSize()
		_, _, _, bottom := s.f.GetMargins()
		if y+h > pageH-bottom && !s.atPageTop() {
			s.f.AddPage()
			x, y, _ = s.place(img.Shape, w, h, b)
		}
	}
	s.f.ImageOptions(img.Name, x, y, w, h, false, gofpdf.ImageOptions{ImageType: typ, ReadDpi: true}, 0, "")
	if flow && img.Wrap == dom.WrapTopBottom {
		s.f.SetY(y + h)
	}
}

// inlineImage draws an image on the current line and advances past it.
func (s *state) inlineImage(img *dom.Image, lh float64) {
	_, typ, ok := s.register(img)
	if !ok {
		return
	}
	w, h := s.imageExtent(img)
	x, y := s.f.GetXY()
	s.f.ImageOptions(img.Name, x, y+lh-h, w, h, false, gofpdf.ImageOptions{ImageType: typ, ReadDpi: true}, 0, "")
	s.f.SetX(x + w)
}

func isFlowing(sh dom.Shape) bool {
	return sh.RelativeVertical == dom.RelVerticalLine || sh.RelativeVertical == dom.RelVerticalParagraph
}

// place resolves a shape position. flow reports whether the shape sits in the
// text flow at the current line.
func (s *state) place(sh dom.Shape, w, h float64, b box) (x, y float64, flow bool) {
	pageW, pageH := s.f.GetPageSize()
	_, top, _, bottom := s.f.GetMargins()

	refX, refW := b.x, b.w
	if sh.RelativeHorizontal == dom.RelHorizontalPage {
		refX, refW = 0, pageW
	}
	x = refX + offset(sh.Left, refW, w)

	flow = isFlowing(sh)
	refY, refH := s.f.GetY(), 0.0
	switch sh.RelativeVertical {
	case dom.RelVerticalPage:
		refY, refH = 0, pageH
	case dom.RelVerticalMargin:
		refY, refH = top, pageH-top-bottom
	}
	y = refY + offset(sh.Top, refH, h)
	return x, y, flow
}

func offset(p dom.ShapePosition, ref, size float64) float64 {
	switch p.Keyword {
	case dom.PositionCenter:
		return (ref - size) / 2
	case dom.PositionRight, dom.PositionBottom, dom.PositionOutside:
		return ref - size
	case dom.PositionOffset:
		return p.Offset.Points()
	}
	return 0
}

func (s *state) textFrame(ctx context.Context, tf *dom.TextFrame, fr frame, b box) error {
	w, h := tf.Width.Points(), tf.Height.Points()
	if w <= 0 {
		w = b.w
	}
	x, y, flow := s.place(tf.Shape, w, h, b)
	sx, sy := s.f.GetXY()
	auto, margin := s.f.GetAutoPageBreak()
	s.f.SetAutoPageBreak(false, 0)
	s.inFrame++
	s.f.SetY(y)
	err := s.blocks(ctx, tf.Blocks, fr, box{x: x, w: w})
	s.inFrame--
	s.f.SetAutoPageBreak(auto, margin)
	if flow && tf.Wrap == dom.WrapTopBottom {
		s.f.SetY(y + math.Max(h, s.f.GetY()-y))
	} else {
		s.f.SetXY(sx, sy)
	}
	return err
}

func chartSize(c *dom.Chart, avail float64) (w, h float64) {
	w, h = c.Width.Points(), c.Height.Points()
	if w <= 0 {
		w = avail
	}
	if h <= 0 {
		h = (6 * unit.Centimeter).Points()
	}
	return w, h
}

// palette spreads series colors around the hue circle.
func palette(n int) []colorful.Color {
	out := make([]colorful.Color, n)
	for i := range out {
		out[i] = colorful.Hcl(float64(i)*360/float64(max(n, 1))+30, 0.6, 0.65).Clamped()
	}
	return out
}

// chart draws a plain chart: bars or columns per category, lines, or a pie
// of the first series.
func (s *state) chart(c *dom.Chart, b box) {
	f := s.f
	w, h := chartSize(c, b.w)
	x, y := b.x, f.GetY()
	_, pageH := f.GetPageSize()
	_, _, _, bottom := f.GetMargins()
	if s.inFrame == 0 && y+h > pageH-bottom && !s.atPageTop() {
		f.AddPage()
		y = f.GetY()
	}
	f.SetDrawColor(0, 0, 0)
	f.SetLineWidth(0.5)
	f.Rect(x, y, w, h, "D")
	plotY, plotH := y+4, h-8
	if c.Title != "" {
		f.SetFont("Helvetica", "B", 10)
		f.SetTextColor(0, 0, 0)
		f.SetXY(x, y+2)
		f.CellFormat(w, 14, s.tr(c.Title), "", 0, "C", false, 0, "")
		plotY, plotH = y+18, h-22
	}
	px, pw := x+8, w-16
	colors := palette(len(c.Series))
	setFill := func(i int) {
		r, g, bl := colors[i].RGB255()
		f.SetFillColor(int(r), int(g), int(bl))
		f.SetDrawColor(int(r), int(g), int(bl))
	}

	if c.Type == dom.ChartPie {
		if len(c.Series) == 0 {
			f.SetY(y + h)
			return
		}
		vals := c.Series[0].Values
		var total float64
		for _, v := range vals {
			total += math.Max(v, 0)
		}
		cols := palette(len(vals))
		r := math.Min(pw, plotH) / 2
		cx, cy := px+pw/2, plotY+plotH/2
		start := 0.0
		for i, v := range vals {
			if total == 0 || v <= 0 {
				continue
			}
			sweep := 360 * v / total
			cr, cg, cb := cols[i].RGB255()
			f.SetFillColor(int(cr), int(cg), int(cb))
			pts := []gofpdf.PointType{{X: cx, Y: cy}}
			for a := start; a <= start+sweep; a += 2 {
				rad := a * math.Pi / 180
				pts = append(pts, gofpdf.PointType{X: cx + r*math.Cos(rad), Y: cy - r*math.Sin(rad)})
			}
			end := (start + sweep) * math.Pi / 180
			pts = append(pts, gofpdf.PointType{X: cx + r*math.Cos(end), Y: cy - r*math.Sin(end)})
			f.Polygon(pts, "F")
			start += sweep
		}
		f.SetDrawColor(0, 0, 0)
		f.SetY(y + h)
		return
	}

	var peak float64
	n := 0
	for _, se := range c.Series {
		for _, v := range se.Values {
			peak = math.Max(peak, v)
		}
		n = max(n, len(se.Values))
	}
	if peak <= 0 || n == 0 {
		f.SetDrawColor(0, 0, 0)
		f.SetY(y + h)
		return
	}
	slot := pw / float64(n)
	base := plotY + plotH
	for si, se := range c.Series {
		setFill(si)
		var prevX, prevY float64
		for i, v := range se.Values {
			v = math.Max(v, 0)
			switch c.Type {
			case dom.ChartLine, dom.ChartArea:
				cx := px + slot*(float64(i)+0.5)
				cy := base - plotH*v/peak
				if i > 0 {
					f.Line(prevX, prevY, cx, cy)
				}
				prevX, prevY = cx, cy
			case dom.ChartBar:
				bh := plotH / float64(n) / float64(len(c.Series))
				by := plotY + plotH/float64(n)*float64(i) + bh*float64(si)
				f.Rect(px, by, pw*v/peak, bh*0.9, "F")
			default:
				bw := slot / float64(len(c.Series))
				bx := px + slot*float64(i) + bw*float64(si)
				f.Rect(bx+bw*0.05, base-plotH*v/peak, bw*0.9, plotH*v/peak, "F")
			}
		}
	}
	f.SetDrawColor(0, 0, 0)
	f.SetY(y + h)
}

// setLine configures the pen for a border edge.
func (s *state) setLine(bd dom.Border) {
	w := 0.5
	if bd.Width != nil {
		w = bd.Width.Points()
	}
	s.f.SetLineWidth(w)
	c := bd.Color
	s.f.SetDrawColor(int(c.R), int(c.G), int(c.B))
	switch bd.Style {
	case dom.BorderDot:
		s.f.SetDashPattern([]float64{w, 2 * w}, 0)
	case dom.BorderDash:
		s.f.SetDashPattern([]float64{3 * w, 2 * w}, 0)
	default:
		s.f.SetDashPattern([]float64{}, 0)
	}
}

func resetLine(f *gofpdf.Fpdf) {
	f.SetDashPattern([]float64{}, 0)
	f.SetLineWidth(0.5)
	f.SetDrawColor(0, 0, 0)
}
