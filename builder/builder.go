// Package builder provides a fluent API for composing documents.
//
// A Document keeps a cursor on the most recently added section; paragraphs,
// tables, images and links are appended there. Rows go to the most recently
// added table of that section. Every wrapper returned by the builder owns one
// node of the tree and returns itself from its mutators so calls chain:
//
//	doc := builder.New()
//	doc.AddHeading1("Report")
//	doc.AddParagraphText("Hello, ").AddText("world").Bold()
//	tbl, _ := doc.AddTable("3cm|1*;R")
//	doc.AddRow("Total", "42")
package builder

import (
	"context"
	"fmt"
	"io"

	"github.com/wudi/docez/dom"
	"github.com/wudi/docez/markup"
	"github.com/wudi/docez/observability"
	"github.com/wudi/docez/render"
	"github.com/wudi/docez/unit"
)

// Document is the builder cursor over a dom.Document.
type Document struct {
	doc    *dom.Document
	cur    cursor
	log    observability.Logger
	tracer observability.Tracer
}

// cursor tracks where implicit additions go.
type cursor struct {
	section *dom.Section
}

// Option configures a Document.
type Option func(*Document)

// WithLogger sets the logger used for structure and degradation messages.
func WithLogger(l observability.Logger) Option {
	return func(d *Document) {
		if l != nil {
			d.log = l
		}
	}
}

// WithTracer sets the tracer used around Build and Render.
func WithTracer(t observability.Tracer) Option {
	return func(d *Document) {
		if t != nil {
			d.tracer = t
		}
	}
}

// WithPageFormat sets the default page format of the document.
func WithPageFormat(f dom.PageFormat) Option {
	return func(d *Document) { d.doc.DefaultPageSetup.SetPageFormat(f) }
}

// WithOrientation sets the default page orientation.
func WithOrientation(o dom.Orientation) Option {
	return func(d *Document) { d.doc.DefaultPageSetup.Orientation = o }
}

// New returns a builder holding a document with one section.
func New(opts ...Option) *Document {
	d := &Document{
		doc:    dom.NewDocument(),
		log:    observability.NopLogger{},
		tracer: observability.NopTracer(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.cur.section = d.doc.AddSection()
	return d
}

// Wrap returns a builder over an existing document. The cursor starts at its
// last section, which is created when the document has none.
func Wrap(doc *dom.Document, opts ...Option) *Document {
	d := &Document{doc: doc, log: observability.NopLogger{}, tracer: observability.NopTracer()}
	for _, opt := range opts {
		opt(d)
	}
	d.cur.section = doc.LastSection()
	if d.cur.section == nil {
		d.cur.section = doc.AddSection()
	}
	return d
}

// Node returns the document under construction. Changes to it are visible
// to the builder.
func (d *Document) Node() *dom.Document { return d.doc }

// Logger returns the configured logger.
func (d *Document) Logger() observability.Logger { return d.log }

// Section returns the current section.
func (d *Document) Section() *dom.Section { return d.cur.section }

// AddSection starts a new section with a fresh copy of the default page
// setup and the given page format, and moves the cursor to it.
func (d *Document) AddSection(format dom.PageFormat) *dom.Section {
	s := d.doc.AddSection()
	s.PageSetup.SetPageFormat(format)
	d.cur.section = s
	d.log.Debug("section added",
		observability.Int("index", len(d.doc.Sections)-1),
		observability.String("format", format.String()))
	return s
}

// BodyWidth is the width available to content in the current section.
func (d *Document) BodyWidth() unit.Unit { return d.cur.section.PageSetup.BodyWidth() }

// Margins sets all four page margins of the current section.
func (d *Document) Margins(all unit.Unit) { d.MarginsTRBL(all, all, all, all) }

// MarginsHV sets top/bottom to horizontal and left/right to vertical.
func (d *Document) MarginsHV(horizontal, vertical unit.Unit) {
	d.MarginsTRBL(horizontal, vertical, horizontal, vertical)
}

func (d *Document) MarginsTRBL(top, right, bottom, left unit.Unit) {
	ps := &d.cur.section.PageSetup
	ps.TopMargin, ps.RightMargin, ps.BottomMargin, ps.LeftMargin = top, right, bottom, left
}

func (d *Document) SetTitle(v string) *Document    { d.doc.Info.Title = v; return d }
func (d *Document) SetAuthor(v string) *Document   { d.doc.Info.Author = v; return d }
func (d *Document) SetSubject(v string) *Document  { d.doc.Info.Subject = v; return d }
func (d *Document) SetComment(v string) *Document  { d.doc.Info.Comment = v; return d }
func (d *Document) SetKeywords(v string) *Document { d.doc.Info.Keywords = v; return d }

// Style returns a wrapper for an existing style. A missing style yields a
// wrapper whose Err reports dom.ErrUnknownStyle.
func (d *Document) Style(name string) *Style {
	st := d.doc.Styles.Get(name)
	if st == nil {
		return &Style{err: fmt.Errorf("%w: %q", dom.ErrUnknownStyle, name)}
	}
	return &Style{styles: d.doc.Styles, style: st}
}

// AddStyle defines a new style based on base (Normal when empty).
func (d *Document) AddStyle(name, base string) *Style {
	if base == "" {
		base = dom.StyleNormal
	}
	st, err := d.doc.Styles.Add(name, base)
	if err != nil {
		return &Style{err: err}
	}
	return &Style{styles: d.doc.Styles, style: st}
}

// AddPageBreak appends a page break to the current section.
func (d *Document) AddPageBreak() { d.cur.section.AddPageBreak() }

// AddParagraph appends an empty paragraph.
func (d *Document) AddParagraph() *Paragraph {
	return &Paragraph{p: d.cur.section.AddParagraph(""), log: d.log}
}

// AddParagraphText appends a paragraph holding text.
func (d *Document) AddParagraphText(text string) *Paragraph {
	return &Paragraph{p: d.cur.section.AddParagraph(text), log: d.log}
}

// AddParagraphStyled appends a paragraph holding text in the named style.
func (d *Document) AddParagraphStyled(style, text string) *Paragraph {
	p := d.AddParagraphText(text)
	p.p.Style = style
	return p
}

// AppendParagraph attaches an existing detached paragraph to the current
// section.
func (d *Document) AppendParagraph(p *Paragraph) *Paragraph {
	if p.err == nil {
		if err := d.cur.section.AddBlock(p.p); err != nil {
			p.err = err
		}
	}
	return p
}

// AddHeading appends a paragraph in the HeadingN style for level 1..9.
func (d *Document) AddHeading(level int, text string) *Paragraph {
	if level < 1 {
		level = 1
	} else if level > 9 {
		level = 9
	}
	return d.AddParagraphStyled(dom.HeadingStyle(level), text)
}

func (d *Document) AddHeading1(text string) *Paragraph { return d.AddHeading(1, text) }
func (d *Document) AddHeading2(text string) *Paragraph { return d.AddHeading(2, text) }
func (d *Document) AddHeading3(text string) *Paragraph { return d.AddHeading(3, text) }
func (d *Document) AddHeading4(text string) *Paragraph { return d.AddHeading(4, text) }
func (d *Document) AddHeading5(text string) *Paragraph { return d.AddHeading(5, text) }
func (d *Document) AddHeading6(text string) *Paragraph { return d.AddHeading(6, text) }
func (d *Document) AddHeading7(text string) *Paragraph { return d.AddHeading(7, text) }
func (d *Document) AddHeading8(text string) *Paragraph { return d.AddHeading(8, text) }
func (d *Document) AddHeading9(text string) *Paragraph { return d.AddHeading(9, text) }

// NewParagraph returns a detached paragraph for use as a row value, a
// header item or embedded content.
func (d *Document) NewParagraph(text ...string) *Paragraph { return NewParagraph(text...) }

// NewFormattedText returns a detached formatted run.
func (d *Document) NewFormattedText(text ...string) *FormattedText {
	return NewFormattedText(text...)
}

// AddHyperlink appends a new paragraph holding only a hyperlink.
func (d *Document) AddHyperlink(typ dom.HyperlinkType) *Hyperlink {
	p := d.cur.section.AddParagraph("")
	return &Hyperlink{h: p.AddHyperlink("", typ)}
}

func (d *Document) AddLocalLink(bookmark, text string) *Hyperlink {
	return d.AddHyperlink(dom.HyperlinkBookmark).Target(bookmark).AddText(text)
}

func (d *Document) AddWebLink(url, text string) *Hyperlink {
	return d.AddHyperlink(dom.HyperlinkWeb).Target(url).AddText(text)
}

func (d *Document) AddFileLink(file, text string) *Hyperlink {
	return d.AddHyperlink(dom.HyperlinkFile).Target(file).AddText(text)
}

// AddImage appends an image block. The intrinsic size is probed from the
// file header when the file is readable.
func (d *Document) AddImage(path string) *Image {
	img := d.cur.section.AddImage(path)
	if err := probeImage(img); err != nil {
		d.log.Debug("image size unknown", observability.String("path", path), observability.Error("error", err))
	}
	return &Image{img: img}
}

// AddTextFrame appends a text frame to the current section.
func (d *Document) AddTextFrame() *TextFrame {
	return &TextFrame{tf: d.cur.section.AddTextFrame(), log: d.log}
}

// AddChart appends a chart to the current section.
func (d *Document) AddChart(typ dom.ChartType) *dom.Chart {
	return d.cur.section.AddChart(typ)
}

// Build returns a detached deep copy of the document.
func (d *Document) Build() (*dom.Document, error) {
	_, span := d.tracer.StartSpan(context.Background(), observability.SpanBuild)
	defer span.Finish()
	doc, err := d.doc.Clone()
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	span.SetTag(observability.TagSectionCount, len(doc.Sections))
	return doc, nil
}

// Render hands a copy of the document to r.
func (d *Document) Render(ctx context.Context, r render.Renderer, w io.Writer) error {
	ctx, span := d.tracer.StartSpan(ctx, observability.SpanRender)
	defer span.Finish()
	doc, err := d.doc.Clone()
	if err != nil {
		span.SetError(err)
		return err
	}
	if err := r.Render(ctx, doc, w); err != nil {
		span.SetError(err)
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

// SaveMarkup writes the document as XML markup.
func (d *Document) SaveMarkup(w io.Writer) error {
	return markup.Encode(w, d.doc)
}
