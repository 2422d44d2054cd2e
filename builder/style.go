package builder

import (
	"github.com/wudi/docez/dom"
	"github.com/wudi/docez/unit"
)

// Style wraps a dom.Style. A wrapper for a style that could not be found or
// defined carries the error and ignores all setters.
type Style struct {
	styles *dom.Styles
	style  *dom.Style
	err    error
}

func (s *Style) Node() *dom.Style { return s.style }
func (s *Style) Err() error       { return s.err }

func (s *Style) format() *dom.ParagraphFormat {
	if s.style == nil {
		return &dom.ParagraphFormat{}
	}
	return &s.style.Format
}

// BaseStyle re-parents the style. Cycles are rejected.
func (s *Style) BaseStyle(base string) *Style {
	if s.err == nil {
		if err := s.styles.SetBase(s.style.Name, base); err != nil {
			s.err = err
		}
	}
	return s
}

func (s *Style) Font(name string, size unit.Unit) *Style {
	s.format().Font.Name = name
	if size != 0 {
		s.format().Font.Size = size
	}
	return s
}

func (s *Style) FontSize(size unit.Unit) *Style {
	s.format().Font.Size = size
	return s
}

func (s *Style) Bold(v bool) *Style       { s.format().Font.Bold = dom.Bool(v); return s }
func (s *Style) Italic(v bool) *Style     { s.format().Font.Italic = dom.Bool(v); return s }
func (s *Style) Color(c dom.Color) *Style { s.format().Font.Color = c; return s }

func (s *Style) Underline(v bool) *Style {
	if v {
		s.format().Font.Underline = dom.UnderlineSingle
	} else {
		s.format().Font.Underline = dom.UnderlineNone
	}
	return s
}

func (s *Style) SpaceBefore(w unit.Unit) *Style { s.format().SpaceBefore = unit.Ptr(w); return s }
func (s *Style) SpaceAfter(w unit.Unit) *Style  { s.format().SpaceAfter = unit.Ptr(w); return s }
func (s *Style) LeftIndent(w unit.Unit) *Style  { s.format().LeftIndent = unit.Ptr(w); return s }
func (s *Style) RightIndent(w unit.Unit) *Style { s.format().RightIndent = unit.Ptr(w); return s }

func (s *Style) FirstLineIndent(w unit.Unit) *Style {
	s.format().FirstLineIndent = unit.Ptr(w)
	return s
}

func (s *Style) LineSpacing(w unit.Unit, rule dom.LineSpacingRule) *Style {
	s.format().LineSpacing = unit.Ptr(w)
	if rule != dom.LineSpacingUnset {
		s.format().LineSpacingRule = rule
	}
	return s
}

// SetTabStop adds a tab stop, first dropping the inherited ones when
// clearAll is set.
func (s *Style) SetTabStop(pos unit.Unit, align dom.TabAlignment, leader dom.TabLeader, clearAll bool) *Style {
	if clearAll {
		s.format().TabStops.ClearAll()
	}
	s.format().TabStops.Add(dom.TabStop{Position: pos, Alignment: align, Leader: leader})
	return s
}

func (s *Style) PageBreakBefore(v bool) *Style { s.format().PageBreakBefore = dom.Bool(v); return s }
func (s *Style) KeepWithNext(v bool) *Style    { s.format().KeepWithNext = dom.Bool(v); return s }

func (s *Style) Alignment(a dom.Alignment) *Style { s.format().Alignment = a; return s }

func (s *Style) Borders(w unit.Unit, c dom.Color) *Style {
	s.format().Borders.Width = unit.Ptr(w)
	s.format().Borders.Color = c
	return s
}

func (s *Style) BorderDistance(w unit.Unit) *Style {
	s.format().Borders.Distance = unit.Ptr(w)
	return s
}

func (s *Style) Shading(c dom.Color) *Style { s.format().Shading.Color = c; return s }
