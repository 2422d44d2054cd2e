// Package text renders a plain-text preview of a document. Paragraphs are
// word wrapped to a fixed number of terminal columns, tables are drawn with
// ASCII rules and non-text blocks appear as bracketed placeholders. Display
// widths account for wide East Asian characters.
package text

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/wudi/docez/dom"
	"github.com/wudi/docez/observability"
	"github.com/wudi/docez/render"
	"github.com/wudi/docez/unit"
)

const defaultWidth = 80

type Renderer struct {
	width int
	log   observability.Logger
	now   time.Time
}

type Option func(*Renderer)

// WithWidth sets the line width in columns.
func WithWidth(cols int) Option {
	return func(r *Renderer) {
		if cols > 10 {
			r.width = cols
		}
	}
}

func WithLogger(l observability.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.log = l
		}
	}
}

// WithTime fixes the clock used for date fields.
func WithTime(t time.Time) Option {
	return func(r *Renderer) { r.now = t }
}

func New(opts ...Option) *Renderer {
	r := &Renderer{width: defaultWidth, log: observability.NopLogger{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) Render(ctx context.Context, doc *dom.Document, w io.Writer) error {
	if doc == nil {
		return fmt.Errorf("text: nil document")
	}
	p := &printer{
		r:       r,
		formats: render.NewFormats(doc),
		flat: &render.Flattener{Fields: render.Fields{
			Page:         "1",
			NumPages:     "1",
			SectionPages: "1",
			Info:         doc.Info,
			Now:          r.now,
		}},
	}
	for i, sec := range doc.Sections {
		if err := render.Canceled(ctx); err != nil {
			return err
		}
		if i > 0 {
			p.line(strings.Repeat("=", r.width))
		}
		p.flat.Fields.Section = strconv.Itoa(i + 1)
		p.section(sec)
	}
	for name := range p.formats.Missing {
		r.log.Warn("style not resolved, using Normal", observability.String("style", name))
	}
	_, err := io.WriteString(w, p.sb.String())
	return err
}

type printer struct {
	r       *Renderer
	formats *render.Formats
	flat    *render.Flattener
	sb      strings.Builder
	// charWidth is the length one column stands for in the current section.
	charWidth unit.Unit
}

func (p *printer) line(s string) {
	p.sb.WriteString(strings.TrimRight(s, " "))
	p.sb.WriteByte('\n')
}

func (p *printer) section(sec *dom.Section) {
	p.charWidth = sec.PageSetup.BodyWidth() / unit.Unit(p.r.width)
	if p.charWidth <= 0 {
		p.charWidth = 6 * unit.Point
	}
	if hf := sec.Headers.Primary; !hf.IsEmpty() {
		p.blocks(hf.Blocks, hf.Style, p.r.width, "")
		p.line(strings.Repeat("-", p.r.width))
	}
	p.blocks(sec.Blocks, dom.StyleNormal, p.r.width, "")
	for i, fn := range p.flat.TakeFootnotes() {
		mark := fn.Reference
		if mark == "" {
			mark = strconv.Itoa(i + 1)
		}
		if i == 0 {
			p.line("")
			p.line("---")
		}
		var parts []string
		for _, b := range fn.Blocks {
			if para, ok := b.(*dom.Paragraph); ok {
				parts = append(parts, p.inline(para, dom.StyleFootnote, math.MaxInt32))
			}
		}
		p.line("[" + mark + "] " + strings.Join(parts, " "))
	}
	if hf := sec.Footers.Primary; !hf.IsEmpty() {
		p.line(strings.Repeat("-", p.r.width))
		p.blocks(hf.Blocks, hf.Style, p.r.width, "")
	}
}

func (p *printer) blocks(blocks []dom.Block, base string, width int, prefix string) {
	for _, b := range blocks {
		switch v := b.(type) {
		case *dom.Paragraph:
			p.paragraph(v, base, width, prefix)
		case *dom.Table:
			for _, l := range strings.Split(strings.TrimSuffix(p.table(v, base), "\n"), "\n") {
				p.line(prefix + l)
			}
		case *dom.Image:
			p.line(prefix + imageLabel(v))
		case *dom.TextFrame:
			p.blocks(v.Blocks, base, width-2, prefix+"| ")
		case *dom.Chart:
			p.chart(v, prefix)
		case *dom.PageBreak:
			p.line(prefix + "\f")
		}
	}
}

func imageLabel(img *dom.Image) string { return "[image: " + img.Name + "]" }

func (p *printer) paragraph(para *dom.Paragraph, base string, width int, prefix string) {
	pf := p.formats.Paragraph(para, base)
	indent := p.columns(dom.Length(pf.LeftIndent))
	avail := max(width-indent-p.columns(dom.Length(pf.RightIndent)), 10)
	if dom.Length(pf.SpaceBefore) > 0 {
		p.line("")
	}
	text := p.inline(para, base, avail)
	pad := strings.Repeat(" ", indent)
	var lines []string
	for _, part := range strings.Split(text, "\n") {
		lines = append(lines, wrap(part, avail)...)
	}
	for _, l := range lines {
		switch pf.Alignment {
		case dom.AlignCenter:
			l = strings.Repeat(" ", max((avail-runewidth.StringWidth(l))/2, 0)) + l
		case dom.AlignRight:
			l = runewidth.FillLeft(l, avail)
		}
		p.line(prefix + pad + l)
	}
	if pf.OutlineLevel == 1 || pf.OutlineLevel == 2 {
		rule := "="
		if pf.OutlineLevel == 2 {
			rule = "-"
		}
		w := 0
		for _, l := range lines {
			w = max(w, runewidth.StringWidth(l))
		}
		p.line(prefix + pad + strings.Repeat(rule, w))
	}
}

// inline flattens a paragraph to text, expanding tabs against its stops.
func (p *printer) inline(para *dom.Paragraph, base string, width int) string {
	pf := p.formats.Paragraph(para, base)
	runs := p.flat.Runs(para.Elements, pf.Font)
	var sb strings.Builder
	col := 0
	emit := func(s string) {
		sb.WriteString(s)
		if i := strings.LastIndexByte(s, '\n'); i >= 0 {
			col = runewidth.StringWidth(s[i+1:])
		} else {
			col += runewidth.StringWidth(s)
		}
	}
	for i, r := range runs {
		switch r.Kind {
		case render.RunText:
			t := r.Text
			if render.IsSuperscript(r.Font) && r.Footnote != nil {
				t = "[" + t + "]"
			}
			emit(t)
			if r.Link != nil && (r.Link.Type == dom.HyperlinkWeb || r.Link.Type == dom.HyperlinkURL) &&
				(i+1 == len(runs) || runs[i+1].Link != r.Link) && r.Link.Name != "" && r.Link.Name != t {
				emit(" <" + r.Link.Name + ">")
			}
		case render.RunTab:
			emit(p.tab(pf.TabStops, runs[i+1:], col, width))
		case render.RunBreak:
			emit("\n")
		case render.RunImage:
			emit(imageLabel(r.Image))
		}
	}
	return sb.String()
}

// tab returns the fill that moves from col to the next stop.
func (p *printer) tab(stops dom.TabStops, rest []render.Run, col, width int) string {
	target := (col/8 + 1) * 8
	leader := " "
	if stop, ok := stops.Next(unit.Unit(col) * p.charWidth); ok {
		target = p.columns(stop.Position)
		seg := 0
		for _, r := range rest {
			if r.Kind != render.RunText {
				break
			}
			seg += runewidth.StringWidth(r.Text)
		}
		switch stop.Alignment {
		case dom.TabRight:
			target -= seg
		case dom.TabCenter:
			target -= seg / 2
		}
		switch stop.Leader {
		case dom.LeaderDots:
			leader = "."
		case dom.LeaderDashes:
			leader = "-"
		case dom.LeaderLines:
			leader = "_"
		}
	}
	target = min(target, width)
	if target <= col {
		return " "
	}
	return strings.Repeat(leader, target-col)
}

func (p *printer) columns(u unit.Unit) int {
	return int(math.Round(float64(u / p.charWidth)))
}

func (p *printer) chart(c *dom.Chart, prefix string) {
	title := c.Title
	if title == "" {
		title = c.Type.String()
	}
	p.line(prefix + "[chart: " + title + "]")
	for _, s := range c.Series {
		vals := make([]string, len(s.Values))
		for i, v := range s.Values {
			vals[i] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		p.line(prefix + "  " + s.Name + ": " + strings.Join(vals, ", "))
	}
}

// wrap breaks s at spaces so no line is wider than w columns. Words longer
// than a line are split.
func wrap(s string, w int) []string {
	if runewidth.StringWidth(s) <= w {
		return []string{s}
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{strings.TrimSpace(s)}
	}
	lead := s[:len(s)-len(strings.TrimLeft(s, " "))]
	var lines []string
	cur := lead
	curW := runewidth.StringWidth(lead)
	for _, word := range words {
		ww := runewidth.StringWidth(word)
		switch {
		case curW == 0 || cur == lead:
			cur += word
			curW += ww
		case curW+1+ww <= w:
			cur += " " + word
			curW += 1 + ww
		default:
			lines = append(lines, cur)
			cur, curW = word, ww
		}
		for curW > w {
			head := runewidth.Truncate(cur, w, "")
			if head == "" {
				break
			}
			lines = append(lines, head)
			cur = cur[len(head):]
			curW = runewidth.StringWidth(cur)
		}
	}
	return append(lines, cur)
}
