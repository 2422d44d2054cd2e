// Package layout composes structured text (Markdown and HTML) into a
// document through the builder. The engine only decides which paragraphs,
// tables and runs to create; line breaking and pagination stay with the
// renderer.
package layout

import (
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/wudi/docez/builder"
	"github.com/wudi/docez/dom"
	"github.com/wudi/docez/observability"
	"github.com/wudi/docez/unit"
)

// Engine appends composed content at the cursor of a builder document.
type Engine struct {
	d *builder.Document

	log         observability.Logger
	normalize   bool
	listIndent  unit.Unit
	quoteIndent unit.Unit
	codeFont    string
	baseDir     string
}

// Option defines a configuration option for the Engine.
type Option func(*Engine)

// WithLogger sets the logger. It defaults to the document's logger.
func WithLogger(l observability.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithNormalization toggles NFC normalization of composed text.
func WithNormalization(v bool) Option {
	return func(e *Engine) {
		e.normalize = v
	}
}

// WithListIndent sets the indent added per list level.
func WithListIndent(w unit.Unit) Option {
	return func(e *Engine) {
		e.listIndent = w
	}
}

// WithQuoteIndent sets the indent added per block quote level.
func WithQuoteIndent(w unit.Unit) Option {
	return func(e *Engine) {
		e.quoteIndent = w
	}
}

// WithCodeFont sets the font used for code spans and code blocks.
func WithCodeFont(name string) Option {
	return func(e *Engine) {
		e.codeFont = name
	}
}

// WithBaseDir resolves relative image paths against dir.
func WithBaseDir(dir string) Option {
	return func(e *Engine) {
		e.baseDir = dir
	}
}

// NewEngine creates a new layout engine with optional configuration.
func NewEngine(d *builder.Document, opts ...Option) *Engine {
	e := &Engine{
		d:           d,
		log:         d.Logger(),
		normalize:   true,
		listIndent:  unit.Cm(0.75),
		quoteIndent: unit.Cm(1),
		codeFont:    "Courier",
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Document returns the builder the engine composes into.
func (e *Engine) Document() *builder.Document { return e.d }

// block carries the indentation in effect for nested content.
type block struct {
	indent unit.Unit
	depth  int
}

func (b block) quoted(w unit.Unit) block {
	b.indent += w
	return b
}

func (b block) nested(w unit.Unit) block {
	b.indent += w
	b.depth++
	return b
}

// paragraph appends a paragraph indented for b.
func (e *Engine) paragraph(b block) *builder.Paragraph {
	p := e.d.AddParagraph()
	if b.indent > 0 {
		p.LeftIndent(b.indent)
	}
	return p
}

// codeParagraph appends a shaded paragraph holding lines in the code font.
func (e *Engine) codeParagraph(b block, lines []string) {
	p := e.paragraph(b).Font(e.codeFont, 0).Shading(dom.RGB(245, 245, 245))
	for i, line := range lines {
		if i > 0 {
			p.AddLineBreak()
		}
		p.AddText(e.text(line))
	}
}

// rule appends an empty paragraph with a bottom border.
func (e *Engine) rule(b block) {
	p := e.paragraph(b).Node()
	p.Format.Borders.Bottom = dom.Border{Style: dom.BorderSingle, Width: unit.Ptr(0.5), Color: dom.Gray}
}

func (e *Engine) text(s string) string {
	if e.normalize {
		return norm.NFC.String(s)
	}
	return s
}

func (e *Engine) addText(dst dom.ElementContainer, s string) error {
	if s == "" {
		return nil
	}
	return dst.Add(dom.NewText(e.text(s)))
}

func (e *Engine) formatted(dst dom.ElementContainer, set func(*dom.Font)) (*dom.FormattedText, error) {
	ft := dom.NewFormattedText()
	set(&ft.Font)
	if err := dst.Add(ft); err != nil {
		return nil, err
	}
	return ft, nil
}

func (e *Engine) codeText(dst dom.ElementContainer, s string) error {
	ft, err := e.formatted(dst, func(f *dom.Font) { f.Name = e.codeFont })
	if err != nil {
		return err
	}
	return e.addText(ft, s)
}

// link adds a hyperlink for target. Fragment-only targets become bookmark
// links, everything else a web link.
func (e *Engine) link(dst dom.ElementContainer, target string) (*dom.Hyperlink, error) {
	var h *dom.Hyperlink
	if name, ok := strings.CutPrefix(target, "#"); ok {
		h = dom.NewHyperlink(name, dom.HyperlinkBookmark)
	} else {
		h = dom.NewHyperlink(target, dom.HyperlinkWeb)
	}
	if err := dst.Add(h); err != nil {
		return nil, err
	}
	return h, nil
}

// imagePath resolves src against the base directory. Remote sources are
// returned unchanged.
func (e *Engine) imagePath(src string) string {
	if u, err := url.Parse(src); err == nil && u.Scheme != "" && u.Scheme != "file" {
		return src
	}
	src = strings.TrimPrefix(src, "file://")
	if e.baseDir != "" && !filepath.IsAbs(src) {
		return filepath.Join(e.baseDir, filepath.FromSlash(src))
	}
	return src
}

// inlineImage adds an image element for src, probing its size when the
// file is readable.
func (e *Engine) inlineImage(dst dom.ElementContainer, src string) error {
	path := e.imagePath(src)
	img, err := builder.ImageFromFile(path)
	if err != nil {
		e.log.Debug("image size unknown", observability.String("path", path), observability.Error("error", err))
		return dst.Add(dom.NewImage(path))
	}
	return dst.Add(img.Node())
}

// bullet returns the list marker for item n of a list; ordered lists pass
// start >= 0.
func bullet(start, n int) string {
	if start < 0 {
		return "• "
	}
	return strconv.Itoa(start+n) + ". "
}
