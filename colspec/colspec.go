// Package colspec parses table column specifications and resolves them to
// concrete widths.
//
// A specification lists columns separated by '|'. Each column has up to three
// ';'-separated fields: a width, an optional alignment and an optional style
// name. The width is either a length literal ("2.5cm", "40mm", "72") or a
// star factor ("1*", "3*") claiming a proportional share of the width left
// over by the fixed columns:
//
//	1cm;C|2*|3cm;R;Amount|1*
package colspec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/wudi/docez/dom"
	"github.com/wudi/docez/unit"
)

var (
	// ErrInvalidColumnSpec is returned for a column with too many fields, an
	// unreadable width or a negative fixed width.
	ErrInvalidColumnSpec = errors.New("invalid column spec")

	// ErrDivisionByZeroSpec is returned when star columns exist but their
	// factors sum to zero.
	ErrDivisionByZeroSpec = errors.New("star columns with zero total factor")
)

// Spec describes one column.
type Spec struct {
	Star      bool
	Factor    uint
	Width     unit.Unit
	Alignment dom.Alignment
	Style     string
}

// Fixed returns a column of an absolute width.
func Fixed(w unit.Unit) Spec { return Spec{Width: w} }

// Star returns a proportional column.
func Star(factor uint) Spec { return Spec{Star: true, Factor: factor} }

// Align returns s with the alignment set.
func (s Spec) Align(a dom.Alignment) Spec {
	s.Alignment = a
	return s
}

// WithStyle returns s with the style set.
func (s Spec) WithStyle(name string) Spec {
	s.Style = name
	return s
}

func (s Spec) String() string {
	var sb strings.Builder
	if s.Star {
		sb.WriteString(strconv.FormatUint(uint64(s.Factor), 10))
		sb.WriteByte('*')
	} else {
		sb.WriteString(s.Width.String())
	}
	if s.Alignment != dom.AlignUnset || s.Style != "" {
		sb.WriteByte(';')
		if s.Alignment != dom.AlignUnset {
			sb.WriteString(s.Alignment.String())
		}
	}
	if s.Style != "" {
		sb.WriteByte(';')
		sb.WriteString(s.Style)
	}
	return sb.String()
}

// Format joins specs back into the textual form accepted by Parse.
func Format(specs []Spec) string {
	parts := make([]string, len(specs))
	for i, s := range specs {
		parts[i] = s.String()
	}
	return strings.Join(parts, "|")
}

// Parse reads a column specification string.
func Parse(spec string) ([]Spec, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidColumnSpec)
	}
	tokens := strings.Split(spec, "|")
	specs := make([]Spec, 0, len(tokens))
	for i, tok := range tokens {
		s, err := parseColumn(tok)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i, err)
		}
		specs = append(specs, s)
	}
	if err := check(specs); err != nil {
		return nil, err
	}
	return specs, nil
}

func parseColumn(tok string) (Spec, error) {
	fields := strings.Split(tok, ";")
	if len(fields) > 3 {
		return Spec{}, fmt.Errorf("%w: %q has %d fields", ErrInvalidColumnSpec, tok, len(fields))
	}
	var s Spec
	width := strings.TrimSpace(fields[0])
	if f, ok := strings.CutSuffix(width, "*"); ok {
		n, err := strconv.ParseUint(strings.TrimSpace(f), 10, 32)
		if err != nil {
			return Spec{}, fmt.Errorf("%w: star factor %q", ErrInvalidColumnSpec, width)
		}
		s.Star = true
		s.Factor = uint(n)
	} else {
		w, err := unit.Parse(width)
		if err != nil {
			return Spec{}, fmt.Errorf("%w: %v", ErrInvalidColumnSpec, err)
		}
		s.Width = w
	}
	if len(fields) > 1 {
		if a, ok := dom.ParseAlignment(fields[1]); ok {
			s.Alignment = a
		}
	}
	if len(fields) > 2 {
		s.Style = strings.TrimSpace(fields[2])
	}
	return s, nil
}

func check(specs []Spec) error {
	stars := 0
	var sum uint
	for i, s := range specs {
		if s.Star {
			stars++
			sum += s.Factor
		} else if s.Width < 0 {
			return fmt.Errorf("column %d: %w: negative width %v", i, ErrInvalidColumnSpec, s.Width)
		}
	}
	if stars > 0 && sum == 0 {
		return fmt.Errorf("%w: %d star columns", ErrDivisionByZeroSpec, stars)
	}
	return nil
}

// Resolve computes the width of every column for the given body width.
// Star columns share what the fixed columns leave; when the fixed columns
// are wider than the body, star columns get zero.
func Resolve(specs []Spec, bodyWidth unit.Unit) ([]unit.Unit, error) {
	if err := check(specs); err != nil {
		return nil, err
	}
	var fixed unit.Unit
	var total uint
	for _, s := range specs {
		if s.Star {
			total += s.Factor
		} else {
			fixed += s.Width
		}
	}
	remaining := bodyWidth - fixed
	if remaining < 0 {
		remaining = 0
	}
	widths := make([]unit.Unit, len(specs))
	for i, s := range specs {
		if s.Star {
			widths[i] = remaining * unit.Unit(s.Factor) / unit.Unit(total)
		} else {
			widths[i] = s.Width
		}
	}
	return widths, nil
}

// Clamped reports whether resolving specs at bodyWidth leaves nothing for
// the star columns.
func Clamped(specs []Spec, bodyWidth unit.Unit) bool {
	var fixed unit.Unit
	stars := false
	for _, s := range specs {
		if s.Star {
			stars = true
		} else {
			fixed += s.Width
		}
	}
	return stars && fixed >= bodyWidth
}
