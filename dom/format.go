package dom

import (
	"sort"
	"strings"

	"github.com/wudi/docez/unit"
)

// Alignment is the horizontal paragraph alignment. AlignUnset inherits.
type Alignment int

const (
	AlignUnset Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
	AlignJustify
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	case AlignJustify:
		return "justify"
	default:
		return ""
	}
}

// ParseAlignment maps "L"/"left", "C"/"center", "R"/"right" and
// "J"/"justify" (case-insensitive) to an Alignment.
func ParseAlignment(s string) (Alignment, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l", "left":
		return AlignLeft, true
	case "c", "center", "centre":
		return AlignCenter, true
	case "r", "right":
		return AlignRight, true
	case "j", "justify", "justified":
		return AlignJustify, true
	}
	return AlignUnset, false
}

type Underline int

const (
	UnderlineUnset Underline = iota
	UnderlineNone
	UnderlineSingle
	UnderlineDouble
	UnderlineDotted
)

func (u Underline) String() string {
	return [...]string{"", "none", "single", "double", "dotted"}[u]
}

type LineSpacingRule int

const (
	LineSpacingUnset LineSpacingRule = iota
	LineSpacingSingle
	LineSpacingOnePtFive
	LineSpacingDouble
	LineSpacingAtLeast
	LineSpacingExactly
	LineSpacingMultiple
)

func (r LineSpacingRule) String() string {
	return [...]string{"", "single", "onePtFive", "double", "atLeast", "exactly", "multiple"}[r]
}

type BorderStyle int

const (
	BorderUnset BorderStyle = iota
	BorderNone
	BorderSingle
	BorderDot
	BorderDash
)

func (s BorderStyle) String() string {
	return [...]string{"", "none", "single", "dot", "dash"}[s]
}

type TabAlignment int

const (
	TabLeft TabAlignment = iota
	TabCenter
	TabRight
	TabDecimal
)

func (a TabAlignment) String() string {
	return [...]string{"left", "center", "right", "decimal"}[a]
}

type TabLeader int

const (
	LeaderSpaces TabLeader = iota
	LeaderDots
	LeaderDashes
	LeaderLines
)

func (l TabLeader) String() string {
	return [...]string{"spaces", "dots", "dashes", "lines"}[l]
}

type VerticalAlignment int

const (
	VAlignTop VerticalAlignment = iota
	VAlignCenter
	VAlignBottom
)

func (v VerticalAlignment) String() string {
	return [...]string{"top", "center", "bottom"}[v]
}

// Font holds character formatting. Empty Name, zero Size, nil flags and the
// empty Color are unset.
type Font struct {
	Name        string
	Size        unit.Unit
	Bold        *bool
	Italic      *bool
	Underline   Underline
	Color       Color
	Subscript   *bool
	Superscript *bool
}

func (f Font) clone() Font {
	f.Bold = clonePtr(f.Bold)
	f.Italic = clonePtr(f.Italic)
	f.Subscript = clonePtr(f.Subscript)
	f.Superscript = clonePtr(f.Superscript)
	return f
}

// Apply overrides the properties of f that are set in o.
func (f *Font) Apply(o Font) {
	if o.Name != "" {
		f.Name = o.Name
	}
	if o.Size != 0 {
		f.Size = o.Size
	}
	if o.Bold != nil {
		f.Bold = clonePtr(o.Bold)
	}
	if o.Italic != nil {
		f.Italic = clonePtr(o.Italic)
	}
	if o.Underline != UnderlineUnset {
		f.Underline = o.Underline
	}
	if !o.Color.IsEmpty() {
		f.Color = o.Color
	}
	if o.Subscript != nil {
		f.Subscript = clonePtr(o.Subscript)
	}
	if o.Superscript != nil {
		f.Superscript = clonePtr(o.Superscript)
	}
}

func (f Font) IsBold() bool   { return f.Bold != nil && *f.Bold }
func (f Font) IsItalic() bool { return f.Italic != nil && *f.Italic }

// Border is the formatting of a single edge.
type Border struct {
	Width   *unit.Unit
	Color   Color
	Style   BorderStyle
	Visible *bool
}

func (b Border) clone() Border {
	b.Width = clonePtr(b.Width)
	b.Visible = clonePtr(b.Visible)
	return b
}

func (b *Border) apply(o Border) {
	if o.Width != nil {
		b.Width = clonePtr(o.Width)
	}
	if !o.Color.IsEmpty() {
		b.Color = o.Color
	}
	if o.Style != BorderUnset {
		b.Style = o.Style
	}
	if o.Visible != nil {
		b.Visible = clonePtr(o.Visible)
	}
}

// IsSet reports whether any property of the edge was given.
func (b Border) IsSet() bool {
	return b.Width != nil || !b.Color.IsEmpty() || b.Style != BorderUnset || b.Visible != nil
}

// Borders holds the defaults for all edges plus per-edge overrides.
type Borders struct {
	Width    *unit.Unit
	Color    Color
	Style    BorderStyle
	Distance *unit.Unit
	Visible  *bool
	Top      Border
	Right    Border
	Bottom   Border
	Left     Border
}

func (b Borders) clone() Borders {
	b.Width = clonePtr(b.Width)
	b.Distance = clonePtr(b.Distance)
	b.Visible = clonePtr(b.Visible)
	b.Top = b.Top.clone()
	b.Right = b.Right.clone()
	b.Bottom = b.Bottom.clone()
	b.Left = b.Left.clone()
	return b
}

func (b *Borders) apply(o Borders) {
	if o.Width != nil {
		b.Width = clonePtr(o.Width)
	}
	if !o.Color.IsEmpty() {
		b.Color = o.Color
	}
	if o.Style != BorderUnset {
		b.Style = o.Style
	}
	if o.Distance != nil {
		b.Distance = clonePtr(o.Distance)
	}
	if o.Visible != nil {
		b.Visible = clonePtr(o.Visible)
	}
	b.Top.apply(o.Top)
	b.Right.apply(o.Right)
	b.Bottom.apply(o.Bottom)
	b.Left.apply(o.Left)
}

// Merge returns a copy of b overridden by the properties set in o.
func (b Borders) Merge(o Borders) Borders {
	r := b.clone()
	r.apply(o)
	return r
}

// IsSet reports whether any border property was given.
func (b Borders) IsSet() bool {
	return b.Width != nil || !b.Color.IsEmpty() || b.Style != BorderUnset || b.Visible != nil ||
		b.Top.IsSet() || b.Right.IsSet() || b.Bottom.IsSet() || b.Left.IsSet()
}

// Shown reports whether the edge draws a line.
func (b Border) Shown() bool {
	if b.Style == BorderNone {
		return false
	}
	if b.Visible != nil {
		return *b.Visible
	}
	return b.Style != BorderUnset || b.Width != nil || !b.Color.IsEmpty()
}

// Edge returns the effective formatting of one edge: the shared defaults
// overridden by the edge's own properties.
func (b Borders) Edge(e Edge) Border {
	eff := Border{Width: clonePtr(b.Width), Color: b.Color, Style: b.Style, Visible: clonePtr(b.Visible)}
	switch e {
	case EdgeTop:
		eff.apply(b.Top)
	case EdgeRight:
		eff.apply(b.Right)
	case EdgeBottom:
		eff.apply(b.Bottom)
	case EdgeLeft:
		eff.apply(b.Left)
	}
	return eff
}

type Shading struct {
	Color   Color
	Visible *bool
}

func (s Shading) clone() Shading {
	s.Visible = clonePtr(s.Visible)
	return s
}

func (s *Shading) apply(o Shading) {
	if !o.Color.IsEmpty() {
		s.Color = o.Color
	}
	if o.Visible != nil {
		s.Visible = clonePtr(o.Visible)
	}
}

// IsVisible reports whether the shading paints anything.
func (s Shading) IsVisible() bool {
	if s.Visible != nil && !*s.Visible {
		return false
	}
	return !s.Color.IsEmpty()
}

type TabStop struct {
	Position  unit.Unit
	Alignment TabAlignment
	Leader    TabLeader
}

// TabStops is an ordered set of tab stops. Cleared discards the stops
// inherited from the style chain.
type TabStops struct {
	Stops   []TabStop
	Cleared bool
}

// Add inserts a stop, replacing one at the same position.
func (t *TabStops) Add(stop TabStop) {
	for i := range t.Stops {
		if t.Stops[i].Position == stop.Position {
			t.Stops[i] = stop
			return
		}
	}
	t.Stops = append(t.Stops, stop)
	sort.Slice(t.Stops, func(i, j int) bool { return t.Stops[i].Position < t.Stops[j].Position })
}

// ClearAll drops every stop, including inherited ones.
func (t *TabStops) ClearAll() {
	t.Stops = nil
	t.Cleared = true
}

func (t TabStops) clone() TabStops {
	t.Stops = append([]TabStop(nil), t.Stops...)
	return t
}

func (t *TabStops) apply(o TabStops) {
	if o.Cleared {
		t.Stops = nil
		t.Cleared = true
	}
	for _, s := range o.Stops {
		t.Add(s)
	}
}

// Next returns the first stop right of pos.
func (t TabStops) Next(pos unit.Unit) (TabStop, bool) {
	for _, s := range t.Stops {
		if s.Position > pos {
			return s, true
		}
	}
	return TabStop{}, false
}

// ParagraphFormat is the direct or style-level formatting of a paragraph.
type ParagraphFormat struct {
	Alignment       Alignment
	LeftIndent      *unit.Unit
	RightIndent     *unit.Unit
	FirstLineIndent *unit.Unit
	SpaceBefore     *unit.Unit
	SpaceAfter      *unit.Unit
	LineSpacing     *unit.Unit
	LineSpacingRule LineSpacingRule
	PageBreakBefore *bool
	KeepWithNext    *bool
	OutlineLevel    int
	Font            Font
	Borders         Borders
	Shading         Shading
	TabStops        TabStops
}

// Clone returns a deep copy.
func (f ParagraphFormat) Clone() ParagraphFormat {
	f.LeftIndent = clonePtr(f.LeftIndent)
	f.RightIndent = clonePtr(f.RightIndent)
	f.FirstLineIndent = clonePtr(f.FirstLineIndent)
	f.SpaceBefore = clonePtr(f.SpaceBefore)
	f.SpaceAfter = clonePtr(f.SpaceAfter)
	f.LineSpacing = clonePtr(f.LineSpacing)
	f.PageBreakBefore = clonePtr(f.PageBreakBefore)
	f.KeepWithNext = clonePtr(f.KeepWithNext)
	f.Font = f.Font.clone()
	f.Borders = f.Borders.clone()
	f.Shading = f.Shading.clone()
	f.TabStops = f.TabStops.clone()
	return f
}

// Apply overrides the properties of f that are set in o.
func (f *ParagraphFormat) Apply(o ParagraphFormat) {
	if o.Alignment != AlignUnset {
		f.Alignment = o.Alignment
	}
	if o.LeftIndent != nil {
		f.LeftIndent = clonePtr(o.LeftIndent)
	}
	if o.RightIndent != nil {
		f.RightIndent = clonePtr(o.RightIndent)
	}
	if o.FirstLineIndent != nil {
		f.FirstLineIndent = clonePtr(o.FirstLineIndent)
	}
	if o.SpaceBefore != nil {
		f.SpaceBefore = clonePtr(o.SpaceBefore)
	}
	if o.SpaceAfter != nil {
		f.SpaceAfter = clonePtr(o.SpaceAfter)
	}
	if o.LineSpacing != nil {
		f.LineSpacing = clonePtr(o.LineSpacing)
	}
	if o.LineSpacingRule != LineSpacingUnset {
		f.LineSpacingRule = o.LineSpacingRule
	}
	if o.PageBreakBefore != nil {
		f.PageBreakBefore = clonePtr(o.PageBreakBefore)
	}
	if o.KeepWithNext != nil {
		f.KeepWithNext = clonePtr(o.KeepWithNext)
	}
	if o.OutlineLevel != 0 {
		f.OutlineLevel = o.OutlineLevel
	}
	f.Font.Apply(o.Font)
	f.Borders.apply(o.Borders)
	f.Shading.apply(o.Shading)
	f.TabStops.apply(o.TabStops)
}

// Length dereferences an optional length, returning zero when unset.
func Length(u *unit.Unit) unit.Unit {
	if u == nil {
		return 0
	}
	return *u
}
