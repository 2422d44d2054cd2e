// Package config loads stylesheets: TOML files that define document info,
// page setup and paragraph styles, applied to a builder document.
//
//	[info]
//	title = "Quarterly report"
//
//	[page]
//	format = "A4"
//	orientation = "landscape"
//	margins = "2cm"
//
//	[[style]]
//	name = "Heading1"
//	font = "Helvetica"
//	size = "16pt"
//	bold = true
//	space_after = "6pt"
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/naoina/toml"

	"github.com/wudi/docez/builder"
	"github.com/wudi/docez/dom"
	"github.com/wudi/docez/unit"
)

// ErrInvalid reports a stylesheet value that cannot be applied.
var ErrInvalid = errors.New("invalid stylesheet")

// Stylesheet is the decoded form of a stylesheet file. Lengths are unit
// literals such as "2cm" or "12pt"; colors are names or "#rrggbb".
type Stylesheet struct {
	Info   Info    `toml:"info"`
	Page   *Page   `toml:"page"`
	Styles []Style `toml:"style"`
}

type Info struct {
	Title    string `toml:"title"`
	Author   string `toml:"author"`
	Subject  string `toml:"subject"`
	Comment  string `toml:"comment"`
	Keywords string `toml:"keywords"`
}

type Page struct {
	Format      string `toml:"format"`
	Orientation string `toml:"orientation"`
	Margins     string `toml:"margins"`
	Top         string `toml:"top"`
	Right       string `toml:"right"`
	Bottom      string `toml:"bottom"`
	Left        string `toml:"left"`
	// StartingNumber is the number of the first page; zero keeps the default.
	StartingNumber int `toml:"starting_number"`
}

// Style defines or updates one named style. Base defaults to Normal for new
// styles and is left alone for existing ones when empty.
type Style struct {
	Name            string `toml:"name"`
	Base            string `toml:"base"`
	Font            string `toml:"font"`
	Size            string `toml:"size"`
	Bold            *bool  `toml:"bold"`
	Italic          *bool  `toml:"italic"`
	Underline       string `toml:"underline"`
	Color           string `toml:"color"`
	Alignment       string `toml:"alignment"`
	LeftIndent      string `toml:"left_indent"`
	RightIndent     string `toml:"right_indent"`
	FirstLineIndent string `toml:"first_line_indent"`
	SpaceBefore     string `toml:"space_before"`
	SpaceAfter      string `toml:"space_after"`
	LineSpacing     string `toml:"line_spacing"`
	LineSpacingRule string `toml:"line_spacing_rule"`
	KeepWithNext    *bool  `toml:"keep_with_next"`
	PageBreakBefore *bool  `toml:"page_break_before"`
	Shading         string `toml:"shading"`
	BorderWidth     string `toml:"border_width"`
	BorderColor     string `toml:"border_color"`
}

// Load reads the stylesheet at path.
func Load(path string) (*Stylesheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ss, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ss, nil
}

// Decode reads a stylesheet from r. Values are checked by Apply.
func Decode(r io.Reader) (*Stylesheet, error) {
	var ss Stylesheet
	if err := toml.NewDecoder(r).Decode(&ss); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	for i, st := range ss.Styles {
		if strings.TrimSpace(st.Name) == "" {
			return nil, fmt.Errorf("%w: style %d has no name", ErrInvalid, i+1)
		}
	}
	return &ss, nil
}

// Apply sets the document info, the page setup of the current section and
// of sections added later, and defines or updates the styles in order. It
// stops at the first invalid value.
func (s *Stylesheet) Apply(d *builder.Document) error {
	s.applyInfo(d)
	if s.Page != nil {
		if err := s.Page.apply(d); err != nil {
			return err
		}
	}
	for _, st := range s.Styles {
		if err := st.apply(d); err != nil {
			return fmt.Errorf("style %q: %w", st.Name, err)
		}
	}
	return nil
}

func (s *Stylesheet) applyInfo(d *builder.Document) {
	set := func(v string, f func(string) *builder.Document) {
		if v != "" {
			f(v)
		}
	}
	set(s.Info.Title, d.SetTitle)
	set(s.Info.Author, d.SetAuthor)
	set(s.Info.Subject, d.SetSubject)
	set(s.Info.Comment, d.SetComment)
	set(s.Info.Keywords, d.SetKeywords)
}

func (p *Page) apply(d *builder.Document) error {
	ps := d.Section().PageSetup
	if p.Format != "" {
		f, ok := dom.ParsePageFormat(p.Format)
		if !ok {
			return fmt.Errorf("%w: page format %q", ErrInvalid, p.Format)
		}
		ps.SetPageFormat(f)
	}
	switch strings.ToLower(p.Orientation) {
	case "":
	case "portrait":
		ps.Orientation = dom.Portrait
	case "landscape":
		ps.Orientation = dom.Landscape
	default:
		return fmt.Errorf("%w: orientation %q", ErrInvalid, p.Orientation)
	}
	if p.Margins != "" {
		m, err := length("margins", p.Margins)
		if err != nil {
			return err
		}
		ps.TopMargin, ps.RightMargin, ps.BottomMargin, ps.LeftMargin = m, m, m, m
	}
	for _, side := range []struct {
		name, v string
		dst     *unit.Unit
	}{
		{"top", p.Top, &ps.TopMargin},
		{"right", p.Right, &ps.RightMargin},
		{"bottom", p.Bottom, &ps.BottomMargin},
		{"left", p.Left, &ps.LeftMargin},
	} {
		if side.v == "" {
			continue
		}
		m, err := length(side.name, side.v)
		if err != nil {
			return err
		}
		*side.dst = m
	}
	if p.StartingNumber != 0 {
		ps.StartingNumber = p.StartingNumber
	}
	if ps.BodyWidth() <= 0 {
		return fmt.Errorf("%w: margins leave no body width", ErrInvalid)
	}
	d.Section().PageSetup = ps
	d.Node().DefaultPageSetup = ps
	return nil
}

func (st Style) apply(d *builder.Document) error {
	var w *builder.Style
	if d.Node().Styles.Get(st.Name) != nil {
		w = d.Style(st.Name)
		if st.Base != "" {
			w.BaseStyle(st.Base)
		}
	} else {
		w = d.AddStyle(st.Name, st.Base)
	}
	if err := w.Err(); err != nil {
		return err
	}

	var size unit.Unit
	if st.Size != "" {
		v, err := length("size", st.Size)
		if err != nil {
			return err
		}
		size = v
	}
	if st.Font != "" {
		w.Font(st.Font, size)
	} else if size != 0 {
		w.FontSize(size)
	}
	if st.Bold != nil {
		w.Bold(*st.Bold)
	}
	if st.Italic != nil {
		w.Italic(*st.Italic)
	}
	if st.Underline != "" {
		u, ok := underline(st.Underline)
		if !ok {
			return fmt.Errorf("%w: underline %q", ErrInvalid, st.Underline)
		}
		w.Node().Format.Font.Underline = u
	}
	if st.Color != "" {
		c, err := dom.ParseColor(st.Color)
		if err != nil {
			return fmt.Errorf("%w: color: %v", ErrInvalid, err)
		}
		w.Color(c)
	}
	if st.Alignment != "" {
		a, ok := dom.ParseAlignment(st.Alignment)
		if !ok {
			return fmt.Errorf("%w: alignment %q", ErrInvalid, st.Alignment)
		}
		w.Alignment(a)
	}
	for _, l := range []struct {
		name, v string
		set     func(unit.Unit) *builder.Style
	}{
		{"left_indent", st.LeftIndent, w.LeftIndent},
		{"right_indent", st.RightIndent, w.RightIndent},
		{"first_line_indent", st.FirstLineIndent, w.FirstLineIndent},
		{"space_before", st.SpaceBefore, w.SpaceBefore},
		{"space_after", st.SpaceAfter, w.SpaceAfter},
	} {
		if l.v == "" {
			continue
		}
		v, err := length(l.name, l.v)
		if err != nil {
			return err
		}
		l.set(v)
	}
	if st.LineSpacing != "" || st.LineSpacingRule != "" {
		if err := st.lineSpacing(w); err != nil {
			return err
		}
	}
	if st.KeepWithNext != nil {
		w.KeepWithNext(*st.KeepWithNext)
	}
	if st.PageBreakBefore != nil {
		w.PageBreakBefore(*st.PageBreakBefore)
	}
	if st.Shading != "" {
		c, err := dom.ParseColor(st.Shading)
		if err != nil {
			return fmt.Errorf("%w: shading: %v", ErrInvalid, err)
		}
		w.Shading(c)
	}
	if st.BorderWidth != "" {
		bw, err := length("border_width", st.BorderWidth)
		if err != nil {
			return err
		}
		bc := dom.Black
		if st.BorderColor != "" {
			if bc, err = dom.ParseColor(st.BorderColor); err != nil {
				return fmt.Errorf("%w: border_color: %v", ErrInvalid, err)
			}
		}
		w.Borders(bw, bc)
	}
	return w.Err()
}

// lineSpacing applies line_spacing and line_spacing_rule. The value is a
// factor for the multiple rule and a length for atLeast and exactly.
func (st Style) lineSpacing(w *builder.Style) error {
	rule := dom.LineSpacingMultiple
	if st.LineSpacingRule != "" {
		r, ok := lineSpacingRule(st.LineSpacingRule)
		if !ok {
			return fmt.Errorf("%w: line_spacing_rule %q", ErrInvalid, st.LineSpacingRule)
		}
		rule = r
	}
	var v unit.Unit
	switch rule {
	case dom.LineSpacingMultiple:
		f, err := strconv.ParseFloat(strings.TrimSpace(st.LineSpacing), 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("%w: line_spacing %q is not a factor", ErrInvalid, st.LineSpacing)
		}
		v = unit.Unit(f)
	case dom.LineSpacingAtLeast, dom.LineSpacingExactly:
		l, err := length("line_spacing", st.LineSpacing)
		if err != nil {
			return err
		}
		v = l
	}
	w.LineSpacing(v, rule)
	return nil
}

func length(name, v string) (unit.Unit, error) {
	u, err := unit.Parse(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalid, name, err)
	}
	return u, nil
}

func underline(s string) (dom.Underline, bool) {
	for u := dom.UnderlineNone; u <= dom.UnderlineDotted; u++ {
		if strings.EqualFold(u.String(), s) {
			return u, true
		}
	}
	return dom.UnderlineUnset, false
}

func lineSpacingRule(s string) (dom.LineSpacingRule, bool) {
	for r := dom.LineSpacingSingle; r <= dom.LineSpacingMultiple; r++ {
		if strings.EqualFold(r.String(), s) {
			return r, true
		}
	}
	return dom.LineSpacingUnset, false
}
