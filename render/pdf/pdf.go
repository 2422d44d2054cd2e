// Package pdf renders documents with gofpdf using the standard Type 1 fonts.
//
// Layout is deliberately simple: paragraphs flow with gofpdf's own line
// breaking, tables are drawn row by row with page breaks between rows, and
// text frames, images and charts are placed by their shape. Page references
// and section page counts need the final pagination, so documents using them
// are laid out twice.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/wudi/docez/dom"
	"github.com/wudi/docez/observability"
	"github.com/wudi/docez/render"
)

// numPagesAlias is replaced by gofpdf with the final page count.
const numPagesAlias = "{nb}"

// ErrNilDocument is returned when Render is called without a document.
var ErrNilDocument = errors.New("pdf: nil document")

// Renderer writes PDF output. A Renderer is safe for concurrent use; every
// call lays out its own gofpdf instance.
type Renderer struct {
	log      observability.Logger
	compress bool
	now      time.Time
	creator  string
}

type Option func(*Renderer)

func WithLogger(l observability.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.log = l
		}
	}
}

// WithCompression toggles stream compression. It is on by default.
func WithCompression(on bool) Option {
	return func(r *Renderer) { r.compress = on }
}

// WithTime fixes the clock used for date fields and the creation date, which
// makes output reproducible.
func WithTime(t time.Time) Option {
	return func(r *Renderer) { r.now = t }
}

// WithCreator sets the producing application recorded in the metadata.
func WithCreator(name string) Option {
	return func(r *Renderer) { r.creator = name }
}

func New(opts ...Option) *Renderer {
	r := &Renderer{log: observability.NopLogger{}, compress: true, creator: "docez"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render lays out doc and writes the PDF to w.
func (r *Renderer) Render(ctx context.Context, doc *dom.Document, w io.Writer) error {
	if doc == nil {
		return ErrNilDocument
	}
	var prior *pagination
	if needsPagination(doc) {
		first, err := r.layout(ctx, doc, nil)
		if err != nil {
			return err
		}
		prior = first.pages
		r.log.Debug("pdf pre-pass finished", observability.Int("pages", first.f.PageCount()))
	}
	st, err := r.layout(ctx, doc, prior)
	if err != nil {
		return err
	}
	if err := st.f.Output(w); err != nil {
		return fmt.Errorf("pdf: %w", err)
	}
	r.log.Debug("pdf written", observability.Int("pages", st.f.PageCount()))
	return nil
}

// pagination is what one layout pass learns about page numbers.
type pagination struct {
	sectionPages []int
	bookmarks    map[string]int
}

// state is the layout of one pass.
type state struct {
	r       *Renderer
	doc     *dom.Document
	f       *gofpdf.Fpdf
	tr      func(string) string
	formats *render.Formats
	flat    *render.Flattener
	prior   *pagination
	pages   *pagination

	sec      *dom.Section
	secIndex int
	// pageSec is the section owning the current page. It lags sec while the
	// footer of the previous section's last page is drawn.
	pageSec      *dom.Section
	pageSecIndex int
	secFirstPage int
	firstNumber  int

	links        map[string]int
	fonts        map[string]string
	outlineLevel int
	inFrame      int
}

func (r *Renderer) layout(ctx context.Context, doc *dom.Document, prior *pagination) (*state, error) {
	ps := doc.DefaultPageSetup
	if len(doc.Sections) > 0 {
		ps = doc.Sections[0].PageSetup
	}
	w, h := ps.EffectiveSize()
	f := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: w.Points(), Ht: h.Points()},
	})
	f.SetCompression(r.compress)
	f.SetCellMargin(0)
	f.AliasNbPages(numPagesAlias)
	if !r.now.IsZero() {
		f.SetCreationDate(r.now)
	}
	f.SetTitle(doc.Info.Title, true)
	f.SetAuthor(doc.Info.Author, true)
	f.SetSubject(doc.Info.Subject, true)
	f.SetKeywords(doc.Info.Keywords, true)
	f.SetCreator(r.creator, true)

	st := &state{
		r:           r,
		doc:         doc,
		f:           f,
		tr:          f.UnicodeTranslatorFromDescriptor(""),
		formats:     render.NewFormats(doc),
		prior:       prior,
		pages:       &pagination{bookmarks: make(map[string]int)},
		links:       make(map[string]int),
		fonts:       make(map[string]string),
		firstNumber: ps.StartingNumber,
	}
	if st.firstNumber < 1 {
		st.firstNumber = 1
	}
	st.flat = &render.Flattener{Fields: render.Fields{
		NumPages: numPagesAlias,
		Info:     doc.Info,
		Now:      r.now,
		PageOf:   st.pageOf,
	}}
	f.SetHeaderFuncMode(st.header, true)
	f.SetFooterFunc(st.footer)

	for i, sec := range doc.Sections {
		if err := render.Canceled(ctx); err != nil {
			return nil, err
		}
		if err := st.section(ctx, i, sec); err != nil {
			return nil, err
		}
	}
	if len(doc.Sections) == 0 {
		f.AddPage()
	}
	st.closeSection()
	st.resolveLinks()
	for name, err := range st.formats.Missing {
		r.log.Warn("style not resolved, using Normal", observability.String("style", name), observability.Error("error", err))
	}
	if err := f.Error(); err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}
	return st, nil
}

func (s *state) section(ctx context.Context, i int, sec *dom.Section) error {
	if i > 0 {
		s.closeSection()
	}
	s.sec, s.secIndex = sec, i
	ps := sec.PageSetup
	w, h := ps.EffectiveSize()
	s.f.SetMargins(ps.LeftMargin.Points(), ps.TopMargin.Points(), ps.RightMargin.Points())
	s.f.SetAutoPageBreak(true, ps.BottomMargin.Points())
	s.f.AddPageFormat("P", gofpdf.SizeType{Wd: w.Points(), Ht: h.Points()})
	s.r.log.Debug("pdf section", observability.Int("section", i+1), observability.String("format", ps.PageFormat.String()))

	body := box{x: ps.LeftMargin.Points(), w: ps.BodyWidth().Points()}
	if err := s.blocks(ctx, sec.Blocks, frame{base: dom.StyleNormal}, body); err != nil {
		return err
	}
	s.footnotes(body)
	return nil
}

// closeSection records the page count of the section being laid out.
func (s *state) closeSection() {
	if s.sec == nil {
		return
	}
	s.pages.sectionPages = append(s.pages.sectionPages, s.f.PageNo()-s.secFirstPage+1)
}

// resolveLinks points links to bookmarks that never appeared at the first
// page so the output stays valid.
func (s *state) resolveLinks() {
	for name, id := range s.links {
		if _, ok := s.pages.bookmarks[name]; !ok {
			s.r.log.Warn("link target not found", observability.String("bookmark", name))
			s.f.SetLink(id, 0, 1)
		}
	}
}

// pageNumber is the displayed number of the current page.
func (s *state) pageNumber() int { return s.f.PageNo() - 1 + s.firstNumber }

func (s *state) pageOf(name string) (int, bool) {
	if n, ok := s.pages.bookmarks[name]; ok {
		return n, true
	}
	if s.prior != nil {
		n, ok := s.prior.bookmarks[name]
		return n, ok
	}
	return 0, false
}

// updateFields refreshes the page dependent field values.
func (s *state) updateFields() {
	fs := &s.flat.Fields
	fs.Page = strconv.Itoa(s.pageNumber())
	fs.Section = strconv.Itoa(s.pageSecIndex + 1)
	fs.SectionPages = "?"
	if s.prior != nil && s.pageSecIndex < len(s.prior.sectionPages) {
		fs.SectionPages = strconv.Itoa(s.prior.sectionPages[s.pageSecIndex])
	} else if len(s.doc.Sections) == 1 {
		fs.SectionPages = numPagesAlias
	}
}

func (s *state) header() {
	if s.pageSec != s.sec {
		s.pageSec, s.pageSecIndex = s.sec, s.secIndex
		s.secFirstPage = s.f.PageNo()
	}
	if s.pageSec == nil {
		return
	}
	ps := s.pageSec.PageSetup
	hf := s.slot(s.pageSec.Headers, ps)
	if hf == nil || hf.IsEmpty() {
		return
	}
	s.f.SetY(ps.HeaderDistance.Points())
	s.headerFooter(hf, ps)
}

func (s *state) footer() {
	if s.pageSec == nil {
		return
	}
	ps := s.pageSec.PageSetup
	hf := s.slot(s.pageSec.Footers, ps)
	if hf == nil || hf.IsEmpty() {
		return
	}
	_, h := ps.EffectiveSize()
	fr := frame{base: hf.Style, layers: []dom.ParagraphFormat{hf.Format}}
	height := s.measure(hf.Blocks, fr, ps.BodyWidth().Points())
	s.f.SetY(h.Points() - ps.FooterDistance.Points() - height)
	s.headerFooter(hf, ps)
}

func (s *state) headerFooter(hf *dom.HeaderFooter, ps dom.PageSetup) {
	auto, margin := s.f.GetAutoPageBreak()
	left, top, right, _ := s.f.GetMargins()
	s.f.SetAutoPageBreak(false, 0)
	s.f.SetMargins(ps.LeftMargin.Points(), top, ps.RightMargin.Points())
	s.inFrame++
	defer func() {
		s.inFrame--
		s.f.SetMargins(left, top, right)
		s.f.SetAutoPageBreak(auto, margin)
	}()
	fr := frame{base: hf.Style, layers: []dom.ParagraphFormat{hf.Format}}
	body := box{x: ps.LeftMargin.Points(), w: ps.BodyWidth().Points()}
	for _, b := range hf.Blocks {
		s.block(context.Background(), b, fr, body)
	}
}

// slot picks the header or footer shown on the current page.
func (s *state) slot(hfs dom.HeadersFooters, ps dom.PageSetup) *dom.HeaderFooter {
	if ps.DifferentFirstPageHeaderFooter && s.f.PageNo() == s.secFirstPage {
		return hfs.FirstPage
	}
	if ps.OddAndEvenPagesHeaderFooter && s.pageNumber()%2 == 0 {
		return hfs.EvenPage
	}
	return hfs.Primary
}

var coreFamilies = map[string]string{
	"helvetica":       "Helvetica",
	"arial":           "Helvetica",
	"times":           "Times",
	"times new roman": "Times",
	"courier":         "Courier",
	"courier new":     "Courier",
	"symbol":          "Symbol",
	"zapfdingbats":    "ZapfDingbats",
}

// family maps a font name to a core family, warning once per substitution.
func (s *state) family(name string) string {
	if name == "" {
		return "Helvetica"
	}
	if fam, ok := s.fonts[name]; ok {
		return fam
	}
	key := strings.ToLower(strings.TrimSpace(name))
	fam, ok := coreFamilies[key]
	if !ok {
		switch {
		case strings.Contains(key, "mono"), strings.Contains(key, "courier"), strings.Contains(key, "consol"):
			fam = "Courier"
		case strings.Contains(key, "sans"):
			fam = "Helvetica"
		case strings.Contains(key, "serif"), strings.Contains(key, "times"),
			strings.Contains(key, "georgia"), strings.Contains(key, "garamond"), strings.Contains(key, "cambria"):
			fam = "Times"
		default:
			fam = "Helvetica"
		}
		s.r.log.Warn("font substituted", observability.String("font", name), observability.String("family", fam))
	}
	s.fonts[name] = fam
	return fam
}

func (s *state) setFont(fnt dom.Font) {
	style := ""
	if fnt.IsBold() {
		style += "B"
	}
	if fnt.IsItalic() {
		style += "I"
	}
	if fnt.Underline != dom.UnderlineUnset && fnt.Underline != dom.UnderlineNone {
		style += "U"
	}
	s.f.SetFont(s.family(fnt.Name), style, render.FontSize(fnt).Points())
	c := fnt.Color
	s.f.SetTextColor(int(c.R), int(c.G), int(c.B))
}

// needsPagination reports whether doc shows values only known after layout.
func needsPagination(doc *dom.Document) bool {
	found := false
	var elems func([]dom.Element)
	var blocks func([]dom.Block)
	elems = func(es []dom.Element) {
		for _, e := range es {
			switch v := e.(type) {
			case *dom.PageRefField, *dom.SectionPagesField:
				found = true
			case *dom.FormattedText:
				elems(v.Elements)
			case *dom.Hyperlink:
				elems(v.Elements)
			case *dom.Footnote:
				blocks(v.Blocks)
			}
		}
	}
	blocks = func(bs []dom.Block) {
		for _, b := range bs {
			switch v := b.(type) {
			case *dom.Paragraph:
				elems(v.Elements)
			case *dom.TextFrame:
				blocks(v.Blocks)
			case *dom.Table:
				for _, row := range v.Rows {
					for _, c := range row.Cells {
						blocks(c.Blocks)
					}
				}
			}
		}
	}
	for _, sec := range doc.Sections {
		blocks(sec.Blocks)
		for _, hfs := range []dom.HeadersFooters{sec.Headers, sec.Footers} {
			blocks(hfs.Primary.Blocks)
			blocks(hfs.EvenPage.Blocks)
			blocks(hfs.FirstPage.Blocks)
		}
	}
	return found
}
