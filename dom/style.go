package dom

import (
	"fmt"
	"strconv"

	"github.com/wudi/docez/unit"
)

// Predefined style names.
const (
	StyleNormal    = "Normal"
	StyleHeading1  = "Heading1"
	StyleList      = "List"
	StyleHeader    = "Header"
	StyleFooter    = "Footer"
	StyleHyperlink = "Hyperlink"
	StyleFootnote  = "Footnote"
)

// HeadingStyle returns the predefined heading style name for level 1..9.
func HeadingStyle(level int) string { return "Heading" + strconv.Itoa(level) }

// Style is a named paragraph format deriving from BaseStyle.
type Style struct {
	Name      string
	BaseStyle string
	Format    ParagraphFormat
}

// Font returns the style's own font, not the resolved one.
func (s *Style) Font() *Font { return &s.Format.Font }

// Styles is the ordered style table of a document.
type Styles struct {
	order  []string
	byName map[string]*Style
}

// NewStyles returns a table holding the predefined styles.
func NewStyles() *Styles {
	s := &Styles{byName: make(map[string]*Style)}
	normal := s.put(StyleNormal, "")
	normal.Format.Font = Font{Name: "Verdana", Size: 10 * unit.Point}
	normal.Format.LineSpacingRule = LineSpacingSingle

	prev := StyleNormal
	for level := 1; level <= 9; level++ {
		h := s.put(HeadingStyle(level), prev)
		h.Format.OutlineLevel = level
		h.Format.KeepWithNext = Bool(true)
		prev = h.Name
	}
	h1 := s.byName[StyleHeading1]
	h1.Format.Font.Size = 16 * unit.Point
	h1.Format.Font.Bold = Bool(true)
	h1.Format.SpaceBefore = unit.Ptr(12 * unit.Point)
	h1.Format.SpaceAfter = unit.Ptr(6 * unit.Point)
	s.byName[HeadingStyle(2)].Format.Font.Size = 14 * unit.Point
	s.byName[HeadingStyle(3)].Format.Font.Size = 12 * unit.Point

	s.put(StyleList, StyleNormal)
	for _, name := range []string{StyleHeader, StyleFooter} {
		hf := s.put(name, StyleNormal)
		hf.Format.TabStops.Add(TabStop{Position: 8 * unit.Centimeter, Alignment: TabCenter})
		hf.Format.TabStops.Add(TabStop{Position: 16 * unit.Centimeter, Alignment: TabRight})
	}
	link := s.put(StyleHyperlink, StyleNormal)
	link.Format.Font.Color = Blue
	link.Format.Font.Underline = UnderlineSingle
	fn := s.put(StyleFootnote, StyleNormal)
	fn.Format.Font.Size = 8 * unit.Point
	return s
}

func (s *Styles) put(name, base string) *Style {
	st := &Style{Name: name, BaseStyle: base}
	s.byName[name] = st
	s.order = append(s.order, name)
	return st
}

// Len returns the number of styles.
func (s *Styles) Len() int { return len(s.order) }

// Names returns the style names in definition order.
func (s *Styles) Names() []string { return append([]string(nil), s.order...) }

// Get returns the named style, or nil.
func (s *Styles) Get(name string) *Style { return s.byName[name] }

// Add defines a style. The base style need not exist yet; a base chain that
// would lead back to name is rejected.
func (s *Styles) Add(name, base string) (*Style, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrUnknownStyle)
	}
	if _, ok := s.byName[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateStyle, name)
	}
	if s.leadsTo(base, name) {
		return nil, fmt.Errorf("%w: %q based on %q", ErrStyleCycle, name, base)
	}
	return s.put(name, base), nil
}

// SetBase changes the base style of an existing style.
func (s *Styles) SetBase(name, base string) error {
	st, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStyle, name)
	}
	if s.leadsTo(base, name) {
		return fmt.Errorf("%w: %q based on %q", ErrStyleCycle, name, base)
	}
	st.BaseStyle = base
	return nil
}

// leadsTo reports whether walking the base chain from start reaches target.
func (s *Styles) leadsTo(start, target string) bool {
	visited := make(map[string]bool)
	for cur := start; cur != "" && !visited[cur]; {
		if cur == target {
			return true
		}
		visited[cur] = true
		st, ok := s.byName[cur]
		if !ok {
			return false
		}
		cur = st.BaseStyle
	}
	return false
}

// Chain returns the style names from the root down to name.
func (s *Styles) Chain(name string) ([]string, error) {
	var chain []string
	visited := make(map[string]bool)
	for cur := name; cur != ""; {
		if visited[cur] {
			return nil, fmt.Errorf("%w: %q", ErrStyleCycle, cur)
		}
		visited[cur] = true
		st, ok := s.byName[cur]
		if !ok {
			if cur == name {
				return nil, fmt.Errorf("%w: %q", ErrUnknownStyle, name)
			}
			return nil, fmt.Errorf("%w: %q (base of %q)", ErrUnresolvedBaseStyle, cur, chain[0])
		}
		chain = append([]string{cur}, chain...)
		cur = st.BaseStyle
	}
	return chain, nil
}

// Resolve returns the effective format of the named style: each style of
// the chain applied from the root down, so derived values win.
func (s *Styles) Resolve(name string) (ParagraphFormat, error) {
	chain, err := s.Chain(name)
	if err != nil {
		return ParagraphFormat{}, err
	}
	var f ParagraphFormat
	for _, n := range chain {
		f.Apply(s.byName[n].Format)
	}
	return f, nil
}

// Clone returns a deep copy of the table.
func (s *Styles) Clone() *Styles {
	c := &Styles{byName: make(map[string]*Style, len(s.byName)), order: append([]string(nil), s.order...)}
	for name, st := range s.byName {
		c.byName[name] = &Style{Name: st.Name, BaseStyle: st.BaseStyle, Format: st.Format.Clone()}
	}
	return c
}
