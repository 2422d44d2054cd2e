package builder

import (
	"fmt"

	"github.com/wudi/docez/dom"
	"github.com/wudi/docez/observability"
	"github.com/wudi/docez/unit"
)

// Paragraph wraps a dom.Paragraph. Content adders that can fail record the
// first error, reported by Err; once set, further content adders do nothing.
type Paragraph struct {
	p   *dom.Paragraph
	log observability.Logger
	err error
}

// NewParagraph returns a detached paragraph holding the given texts.
func NewParagraph(text ...string) *Paragraph {
	p := &Paragraph{p: dom.NewParagraph()}
	for _, t := range text {
		p.p.AddText(t)
	}
	return p
}

// WrapParagraph returns a wrapper for an existing paragraph.
func WrapParagraph(p *dom.Paragraph) *Paragraph { return &Paragraph{p: p} }

func (p *Paragraph) Node() *dom.Paragraph { return p.p }
func (p *Paragraph) Err() error           { return p.err }

func (p *Paragraph) logger() observability.Logger {
	if p.log == nil {
		return observability.NopLogger{}
	}
	return p.log
}

func (p *Paragraph) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

func (p *Paragraph) Style(name string) *Paragraph { p.p.Style = name; return p }

func (p *Paragraph) Bold(v bool) *Paragraph {
	p.p.Format.Font.Bold = dom.Bool(v)
	return p
}

func (p *Paragraph) Italic(v bool) *Paragraph {
	p.p.Format.Font.Italic = dom.Bool(v)
	return p
}

func (p *Paragraph) Underline(u dom.Underline) *Paragraph {
	p.p.Format.Font.Underline = u
	return p
}

func (p *Paragraph) Color(c dom.Color) *Paragraph {
	p.p.Format.Font.Color = c
	return p
}

// Font sets the font name and, when size is non-zero, its size.
func (p *Paragraph) Font(name string, size unit.Unit) *Paragraph {
	p.p.Format.Font.Name = name
	if size != 0 {
		p.p.Format.Font.Size = size
	}
	return p
}

func (p *Paragraph) FontSize(size unit.Unit) *Paragraph {
	p.p.Format.Font.Size = size
	return p
}

func (p *Paragraph) Alignment(a dom.Alignment) *Paragraph {
	p.p.Format.Alignment = a
	return p
}

func (p *Paragraph) LeftIndent(w unit.Unit) *Paragraph {
	p.p.Format.LeftIndent = unit.Ptr(w)
	return p
}

func (p *Paragraph) RightIndent(w unit.Unit) *Paragraph {
	p.p.Format.RightIndent = unit.Ptr(w)
	return p
}

func (p *Paragraph) FirstLineIndent(w unit.Unit) *Paragraph {
	p.p.Format.FirstLineIndent = unit.Ptr(w)
	return p
}

func (p *Paragraph) SpaceBefore(w unit.Unit) *Paragraph {
	p.p.Format.SpaceBefore = unit.Ptr(w)
	return p
}

func (p *Paragraph) SpaceAfter(w unit.Unit) *Paragraph {
	p.p.Format.SpaceAfter = unit.Ptr(w)
	return p
}

func (p *Paragraph) LineSpacing(w unit.Unit, rule dom.LineSpacingRule) *Paragraph {
	p.p.Format.LineSpacing = unit.Ptr(w)
	p.p.Format.LineSpacingRule = rule
	return p
}

func (p *Paragraph) KeepWithNext(v bool) *Paragraph {
	p.p.Format.KeepWithNext = dom.Bool(v)
	return p
}

func (p *Paragraph) PageBreakBefore(v bool) *Paragraph {
	p.p.Format.PageBreakBefore = dom.Bool(v)
	return p
}

func (p *Paragraph) Borders(w unit.Unit, c dom.Color) *Paragraph {
	p.p.Format.Borders.Width = unit.Ptr(w)
	p.p.Format.Borders.Color = c
	return p
}

func (p *Paragraph) BorderDistance(w unit.Unit) *Paragraph {
	p.p.Format.Borders.Distance = unit.Ptr(w)
	return p
}

func (p *Paragraph) Shading(c dom.Color) *Paragraph {
	p.p.Format.Shading.Color = c
	return p
}

// TabStop adds a tab stop, first dropping all others when clearAll is set.
func (p *Paragraph) TabStop(pos unit.Unit, align dom.TabAlignment, leader dom.TabLeader, clearAll bool) *Paragraph {
	if clearAll {
		p.p.Format.TabStops.ClearAll()
	}
	p.p.Format.TabStops.Add(dom.TabStop{Position: pos, Alignment: align, Leader: leader})
	return p
}

func (p *Paragraph) AddText(text string) *Paragraph {
	if p.err == nil {
		p.p.AddText(text)
	}
	return p
}

func (p *Paragraph) AddTab() *Paragraph {
	if p.err == nil {
		p.p.AddTab()
	}
	return p
}

func (p *Paragraph) AddLineBreak() *Paragraph {
	if p.err == nil {
		p.p.AddLineBreak()
	}
	return p
}

func (p *Paragraph) AddCharacter(sym dom.SymbolName, count int) *Paragraph {
	if p.err == nil {
		p.p.AddCharacter(sym, count)
	}
	return p
}

func (p *Paragraph) AddBookmark(name string) *Paragraph {
	if p.err == nil {
		p.p.AddBookmark(name)
	}
	return p
}

func (p *Paragraph) AddPageField() *Paragraph {
	if p.err == nil {
		p.p.AddPageField()
	}
	return p
}

func (p *Paragraph) AddNumPagesField() *Paragraph {
	if p.err == nil {
		p.p.AddNumPagesField()
	}
	return p
}

func (p *Paragraph) AddPageRefField(name string) *Paragraph {
	if p.err == nil {
		p.p.AddPageRefField(name)
	}
	return p
}

func (p *Paragraph) AddSectionField() *Paragraph {
	if p.err == nil {
		p.p.AddSectionField()
	}
	return p
}

func (p *Paragraph) AddSectionPagesField() *Paragraph {
	if p.err == nil {
		p.p.AddSectionPagesField()
	}
	return p
}

// AddDateField adds the current date in a day/month pattern such as
// "dd.MM.yyyy".
func (p *Paragraph) AddDateField(format string) *Paragraph {
	if p.err == nil {
		p.p.AddDateField(format)
	}
	return p
}

func (p *Paragraph) AddInfoField(name dom.InfoFieldName) *Paragraph {
	if p.err == nil {
		p.p.AddInfoField(name)
	}
	return p
}

func (p *Paragraph) AddFootnote(text string) *Paragraph {
	if p.err == nil {
		p.p.AddFootnote(text)
	}
	return p
}

// AddFormattedText attaches ft. A run that already belongs elsewhere is
// rejected with dom.ErrAlreadyAttached.
func (p *Paragraph) AddFormattedText(ft *FormattedText) *Paragraph {
	if p.err == nil {
		if err := p.p.Add(ft.ft); err != nil {
			p.fail(err)
		}
	}
	return p
}

// AddParagraph copies the elements of src into p. Paragraphs do not nest;
// src stays unchanged and may be reused. On failure the elements copied so
// far remain.
func (p *Paragraph) AddParagraph(src any) *Paragraph {
	if p.err != nil {
		return p
	}
	var elems []dom.Element
	switch v := src.(type) {
	case *Paragraph:
		elems = v.p.Elements
	case *dom.Paragraph:
		elems = v.Elements
	default:
		p.fail(fmt.Errorf("%w: %T", dom.ErrUnsupportedElementKind, src))
		return p
	}
	if err := dom.Transfer(elems, p.p); err != nil {
		p.fail(err)
	}
	return p
}

// AddHyperlink adds a hyperlink to target and returns its wrapper.
func (p *Paragraph) AddHyperlink(target string, typ dom.HyperlinkType) *Hyperlink {
	return &Hyperlink{h: p.p.AddHyperlink(target, typ)}
}

// AddImage adds an inline image and returns its wrapper.
func (p *Paragraph) AddImage(path string) *Image {
	img := p.p.AddImage(path)
	if err := probeImage(img); err != nil {
		p.logger().Debug("image size unknown", observability.String("path", path), observability.Error("error", err))
	}
	return &Image{img: img}
}

// FormattedText wraps a dom.FormattedText.
type FormattedText struct {
	ft  *dom.FormattedText
	err error
}

// NewFormattedText returns a detached run holding the given texts.
func NewFormattedText(text ...string) *FormattedText {
	ft := &FormattedText{ft: dom.NewFormattedText()}
	for _, t := range text {
		ft.ft.AddText(t)
	}
	return ft
}

func (f *FormattedText) Node() *dom.FormattedText { return f.ft }
func (f *FormattedText) Err() error               { return f.err }

func (f *FormattedText) Style(name string) *FormattedText { f.ft.Style = name; return f }

func (f *FormattedText) Bold(v bool) *FormattedText {
	f.ft.Font.Bold = dom.Bool(v)
	return f
}

func (f *FormattedText) Italic(v bool) *FormattedText {
	f.ft.Font.Italic = dom.Bool(v)
	return f
}

func (f *FormattedText) Underline(u dom.Underline) *FormattedText {
	f.ft.Font.Underline = u
	return f
}

func (f *FormattedText) Subscript(v bool) *FormattedText {
	f.ft.Font.Subscript = dom.Bool(v)
	return f
}

func (f *FormattedText) Superscript(v bool) *FormattedText {
	f.ft.Font.Superscript = dom.Bool(v)
	return f
}

func (f *FormattedText) Color(c dom.Color) *FormattedText {
	f.ft.Font.Color = c
	return f
}

func (f *FormattedText) Font(name string, size unit.Unit) *FormattedText {
	f.ft.Font.Name = name
	if size != 0 {
		f.ft.Font.Size = size
	}
	return f
}

func (f *FormattedText) FontSize(size unit.Unit) *FormattedText {
	f.ft.Font.Size = size
	return f
}

func (f *FormattedText) AddText(text string) *FormattedText {
	if f.err == nil {
		f.ft.AddText(text)
	}
	return f
}

func (f *FormattedText) AddLineBreak() *FormattedText {
	if f.err == nil {
		if err := f.ft.Add(&dom.LineBreak{}); err != nil {
			f.err = err
		}
	}
	return f
}

func (f *FormattedText) AddFormattedText(inner *FormattedText) *FormattedText {
	if f.err == nil {
		if err := f.ft.Add(inner.ft); err != nil {
			f.err = err
		}
	}
	return f
}

// Hyperlink wraps a dom.Hyperlink.
type Hyperlink struct {
	h   *dom.Hyperlink
	err error
}

func (h *Hyperlink) Node() *dom.Hyperlink { return h.h }
func (h *Hyperlink) Err() error           { return h.err }

func (h *Hyperlink) Target(target string) *Hyperlink { h.h.Name = target; return h }

func (h *Hyperlink) Type(typ dom.HyperlinkType) *Hyperlink { h.h.Type = typ; return h }

// AddText adds text; an empty string adds nothing.
func (h *Hyperlink) AddText(text string) *Hyperlink {
	if h.err == nil && text != "" {
		h.h.AddText(text)
	}
	return h
}

// AddParagraph copies the elements of src into the link text.
func (h *Hyperlink) AddParagraph(src any) *Hyperlink {
	if h.err != nil {
		return h
	}
	var elems []dom.Element
	switch v := src.(type) {
	case *Paragraph:
		elems = v.p.Elements
	case *dom.Paragraph:
		elems = v.Elements
	default:
		h.err = fmt.Errorf("%w: %T", dom.ErrUnsupportedElementKind, src)
		return h
	}
	if err := dom.Transfer(elems, h.h); err != nil {
		h.err = err
	}
	return h
}

func (h *Hyperlink) AddFormattedText(ft *FormattedText) *Hyperlink {
	if h.err == nil {
		if err := h.h.Add(ft.ft); err != nil {
			h.err = err
		}
	}
	return h
}
