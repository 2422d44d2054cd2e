package render

import (
	"github.com/wudi/docez/dom"
	"github.com/wudi/docez/unit"
)

// Formats resolves effective paragraph formats against a document's styles
// and caches the style part.
type Formats struct {
	styles *dom.Styles
	cache  map[string]dom.ParagraphFormat
	// Missing collects style names that could not be resolved.
	Missing map[string]error
}

func NewFormats(doc *dom.Document) *Formats {
	return &Formats{styles: doc.Styles, cache: make(map[string]dom.ParagraphFormat), Missing: make(map[string]error)}
}

// Style returns the resolved format of a style. A style that cannot be
// resolved falls back to Normal and is recorded in Missing.
func (f *Formats) Style(name string) dom.ParagraphFormat {
	if name == "" {
		name = dom.StyleNormal
	}
	if pf, ok := f.cache[name]; ok {
		return pf.Clone()
	}
	pf, err := f.styles.Resolve(name)
	if err != nil {
		f.Missing[name] = err
		if name != dom.StyleNormal {
			pf = f.Style(dom.StyleNormal)
		}
	}
	f.cache[name] = pf
	return pf.Clone()
}

// Paragraph returns the effective format of p. base names the style used
// when p has none; layers are applied between the style and the direct
// formatting, outermost first (table, column, row, cell).
func (f *Formats) Paragraph(p *dom.Paragraph, base string, layers ...dom.ParagraphFormat) dom.ParagraphFormat {
	name := p.Style
	if name == "" {
		name = base
	}
	pf := f.Style(name)
	for _, l := range layers {
		pf.Apply(l)
	}
	pf.Apply(p.Format)
	return pf
}

// FontSize returns the size of fnt, defaulting to 10pt.
func FontSize(fnt dom.Font) unit.Unit {
	if fnt.Size <= 0 {
		return 10 * unit.Point
	}
	return fnt.Size
}

// LineHeight is the baseline distance for a paragraph in fnt.
func LineHeight(pf dom.ParagraphFormat) unit.Unit {
	size := FontSize(pf.Font)
	switch pf.LineSpacingRule {
	case dom.LineSpacingOnePtFive:
		return size * 1.2 * 1.5
	case dom.LineSpacingDouble:
		return size * 1.2 * 2
	case dom.LineSpacingExactly:
		if pf.LineSpacing != nil {
			return *pf.LineSpacing
		}
	case dom.LineSpacingAtLeast:
		if pf.LineSpacing != nil && *pf.LineSpacing > size*1.2 {
			return *pf.LineSpacing
		}
	case dom.LineSpacingMultiple:
		if pf.LineSpacing != nil {
			return size * 1.2 * *pf.LineSpacing
		}
	}
	return size * 1.2
}
