// Package unit models lengths used throughout the document tree.
//
// A Unit is a length in points (1in = 72pt). Literals such as "2.5cm", "1in",
// "12pt", "3mm" or "1pc" are accepted by Parse; a bare number is read as points.
package unit

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Unit is a length expressed in points.
type Unit float64

const (
	Point      Unit = 1
	Pica       Unit = 12
	Inch       Unit = 72
	Millimeter Unit = 72.0 / 25.4
	Centimeter Unit = 72.0 / 2.54
)

// Zero is the zero length.
const Zero Unit = 0

// ErrInvalidLength is returned for literals Parse cannot read.
var ErrInvalidLength = errors.New("invalid length")

var suffixes = []struct {
	suffix string
	factor Unit
}{
	{"pt", Point},
	{"pc", Pica},
	{"in", Inch},
	{"mm", Millimeter},
	{"cm", Centimeter},
}

// Parse converts a length literal to a Unit.
func Parse(s string) (Unit, error) {
	literal := strings.TrimSpace(s)
	if literal == "" {
		return 0, fmt.Errorf("%w: empty literal", ErrInvalidLength)
	}

	factor := Point
	valStr := literal
	lower := strings.ToLower(literal)
	for _, sf := range suffixes {
		if strings.HasSuffix(lower, sf.suffix) {
			factor = sf.factor
			valStr = strings.TrimSpace(literal[:len(literal)-len(sf.suffix)])
			break
		}
	}

	val, err := strconv.ParseFloat(valStr, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLength, s)
	}
	return Unit(val) * factor, nil
}

// MustParse is like Parse but panics on malformed literals. It is meant for
// constants in sample code and tests.
func MustParse(s string) Unit {
	u, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

func Pt(v float64) Unit { return Unit(v) }
func Cm(v float64) Unit { return Unit(v) * Centimeter }
func Mm(v float64) Unit { return Unit(v) * Millimeter }
func In(v float64) Unit { return Unit(v) * Inch }

func (u Unit) Points() float64      { return float64(u) }
func (u Unit) Centimeters() float64 { return float64(u / Centimeter) }
func (u Unit) Millimeters() float64 { return float64(u / Millimeter) }
func (u Unit) Inches() float64      { return float64(u / Inch) }

// String renders the length in points, e.g. "28.3465pt".
func (u Unit) String() string {
	return strconv.FormatFloat(float64(u), 'f', -1, 64) + "pt"
}

// Ptr returns a pointer to a copy of u, for optional format properties.
func Ptr(u Unit) *Unit { return &u }
