package dom

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is an RGB color. The zero value is the empty color, meaning "not set".
type Color struct {
	R, G, B uint8
	set     bool
}

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b, set: true} }

// IsEmpty reports whether the color is unset.
func (c Color) IsEmpty() bool { return !c.set }

// Hex renders the color as "#rrggbb"; the empty color renders as "".
func (c Color) Hex() string {
	if !c.set {
		return ""
	}
	return c.colorful().Hex()
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Blend mixes c towards o in Lab space; t=0 yields c, t=1 yields o.
func (c Color) Blend(o Color, t float64) Color {
	if !c.set {
		return o
	}
	if !o.set {
		return c
	}
	r, g, b := c.colorful().BlendLab(o.colorful(), t).Clamped().RGB255()
	return RGB(r, g, b)
}

func (c Color) String() string {
	if !c.set {
		return "empty"
	}
	return c.Hex()
}

// ParseColor accepts "#rrggbb", "#rgb" or one of the named colors.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Color{}, nil
	}
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c, nil
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	cc, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	r, g, b := cc.RGB255()
	return RGB(r, g, b), nil
}

// Named colors used by report styles.
var (
	Black      = RGB(0, 0, 0)
	White      = RGB(255, 255, 255)
	Gray       = RGB(128, 128, 128)
	LightGray  = RGB(211, 211, 211)
	Red        = RGB(255, 0, 0)
	Green      = RGB(0, 128, 0)
	Blue       = RGB(0, 0, 255)
	Navy       = RGB(0, 0, 128)
	DarkBlue   = RGB(0, 0, 139)
	SkyBlue    = RGB(135, 206, 235)
	Firebrick  = RGB(178, 34, 34)
	LightCoral = RGB(240, 128, 128)
)

var namedColors = map[string]Color{
	"black":      Black,
	"white":      White,
	"gray":       Gray,
	"grey":       Gray,
	"lightgray":  LightGray,
	"red":        Red,
	"green":      Green,
	"blue":       Blue,
	"navy":       Navy,
	"darkblue":   DarkBlue,
	"skyblue":    SkyBlue,
	"firebrick":  Firebrick,
	"lightcoral": LightCoral,
}
