package extensions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/wudi/docez/dom"
	"github.com/wudi/docez/unit"
)

// BasicInspector counts the nodes of a document.
type BasicInspector struct{}

func (i *BasicInspector) Name() string  { return "BasicInspector" }
func (i *BasicInspector) Phase() Phase  { return PhaseInspect }
func (i *BasicInspector) Priority() int { return 100 }
func (i *BasicInspector) Execute(ctx context.Context, doc *dom.Document) error {
	_, err := i.Inspect(ctx, doc)
	return err
}

func (i *BasicInspector) Inspect(ctx context.Context, doc *dom.Document) (*InspectionReport, error) {
	report := &InspectionReport{
		Sections: len(doc.Sections),
		Styles:   doc.Styles.Len(),
		Metadata: make(map[string]string),
	}
	for k, v := range map[string]string{
		"Title":    doc.Info.Title,
		"Author":   doc.Info.Author,
		"Subject":  doc.Info.Subject,
		"Keywords": doc.Info.Keywords,
	} {
		if v != "" {
			report.Metadata[k] = v
		}
	}

	walk(doc, visitor{
		block: func(_ string, b dom.Block) {
			switch b := b.(type) {
			case *dom.Paragraph:
				report.Paragraphs++
				report.Words += len(strings.Fields(b.PlainText()))
			case *dom.Table:
				report.Tables++
			case *dom.Image:
				report.Images++
			case *dom.TextFrame:
				report.TextFrames++
			case *dom.Chart:
				report.Charts++
			case *dom.PageBreak:
				report.PageBreaks++
			}
		},
		elem: func(_ string, e dom.Element) {
			switch e.(type) {
			case *dom.Image:
				report.Images++
			case *dom.Hyperlink:
				report.Hyperlinks++
			case *dom.Footnote:
				report.Footnotes++
			case *dom.BookmarkField:
				report.Bookmarks++
			case *dom.PageField, *dom.NumPagesField, *dom.PageRefField, *dom.SectionField,
				*dom.SectionPagesField, *dom.DateField, *dom.InfoField:
				report.Fields++
			}
		},
	})
	return report, ctx.Err()
}

// LinkSanitizer clears the target of hyperlinks whose scheme can run code
// in a viewer. The link text stays in place.
type LinkSanitizer struct {
	// Schemes lists the blocked schemes, lower case. Empty means
	// javascript, vbscript and data.
	Schemes []string
}

func (s *LinkSanitizer) Name() string  { return "LinkSanitizer" }
func (s *LinkSanitizer) Phase() Phase  { return PhaseSanitize }
func (s *LinkSanitizer) Priority() int { return 100 }
func (s *LinkSanitizer) Execute(ctx context.Context, doc *dom.Document) error {
	_, err := s.Sanitize(ctx, doc)
	return err
}

func (s *LinkSanitizer) Sanitize(ctx context.Context, doc *dom.Document) (*SanitizationReport, error) {
	report := &SanitizationReport{}
	walk(doc, visitor{elem: func(loc string, e dom.Element) {
		h, ok := e.(*dom.Hyperlink)
		if !ok || h.Type == dom.HyperlinkLocal || h.Type == dom.HyperlinkBookmark {
			return
		}
		scheme, blocked := s.blocked(h.Name)
		if !blocked {
			return
		}
		h.Name = ""
		report.ItemsRemoved++
		report.Actions = append(report.Actions, SanitizationAction{
			Type:        "RemoveLinkTarget",
			Description: fmt.Sprintf("Removed %s: link target", scheme),
			Location:    loc,
		})
	}})
	return report, ctx.Err()
}

func (s *LinkSanitizer) blocked(target string) (string, bool) {
	// Viewers ignore whitespace and control characters inside a scheme.
	clean := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, target)
	scheme, _, ok := strings.Cut(clean, ":")
	if !ok {
		return "", false
	}
	schemes := s.Schemes
	if len(schemes) == 0 {
		schemes = []string{"javascript", "vbscript", "data"}
	}
	for _, b := range schemes {
		if scheme == b {
			return scheme, true
		}
	}
	return "", false
}

// StyleValidator reports style definitions whose base chain is broken and
// references to styles that do not exist. Renderers fall back to Normal for
// both, so unknown references are warnings.
type StyleValidator struct{}

func (v *StyleValidator) Name() string  { return "StyleValidator" }
func (v *StyleValidator) Phase() Phase  { return PhaseValidate }
func (v *StyleValidator) Priority() int { return 100 }
func (v *StyleValidator) Execute(ctx context.Context, doc *dom.Document) error {
	_, err := v.Validate(ctx, doc)
	return err
}

func (v *StyleValidator) Validate(ctx context.Context, doc *dom.Document) (*ValidationReport, error) {
	report := &ValidationReport{}
	for _, name := range doc.Styles.Names() {
		_, err := doc.Styles.Chain(name)
		switch {
		case err == nil:
		case errors.Is(err, dom.ErrUnresolvedBaseStyle):
			report.Errors = append(report.Errors, ValidationError{
				Code:     "UNRESOLVED_BASE_STYLE",
				Message:  err.Error(),
				Location: "style " + name,
			})
		case errors.Is(err, dom.ErrStyleCycle):
			report.Errors = append(report.Errors, ValidationError{
				Code:     "STYLE_CYCLE",
				Message:  err.Error(),
				Location: "style " + name,
			})
		default:
			return nil, err
		}
	}

	seen := make(map[string]bool)
	check := func(loc, name string) {
		if name == "" || seen[name] || doc.Styles.Get(name) != nil {
			return
		}
		seen[name] = true
		report.Warnings = append(report.Warnings, ValidationWarning{
			Code:     "UNKNOWN_STYLE",
			Message:  fmt.Sprintf("style %q is not defined, %s is used", name, dom.StyleNormal),
			Location: loc,
		})
	}
	for i, s := range doc.Sections {
		for _, hf := range headerFooters(s) {
			check(fmt.Sprintf("section %d %s", i+1, hf.name), hf.hf.Style)
		}
	}
	walk(doc, visitor{
		block: func(loc string, b dom.Block) {
			switch b := b.(type) {
			case *dom.Paragraph:
				check(loc, b.Style)
			case *dom.Table:
				check(loc, b.Style)
				for _, c := range b.Columns() {
					check(fmt.Sprintf("%s, column %d", loc, c.Index+1), c.Style)
				}
				for ri, r := range b.Rows {
					check(fmt.Sprintf("%s, row %d", loc, ri+1), r.Style)
					for ci, c := range r.Cells {
						check(fmt.Sprintf("%s, cell %d:%d", loc, ri+1, ci+1), c.Style)
					}
				}
			}
		},
		elem: func(loc string, e dom.Element) {
			if ft, ok := e.(*dom.FormattedText); ok {
				check(loc, ft.Style)
			}
		},
	})
	report.Valid = len(report.Errors) == 0
	return report, ctx.Err()
}

// LayoutValidator reports structure the renderers can only degrade: tables
// wider than the body, merges past the table edge, margins leaving no body,
// images without a size, empty charts and links to missing bookmarks.
type LayoutValidator struct {
	// Tolerance is the overflow accepted before a table is reported.
	Tolerance unit.Unit
}

func (v *LayoutValidator) Name() string  { return "LayoutValidator" }
func (v *LayoutValidator) Phase() Phase  { return PhaseValidate }
func (v *LayoutValidator) Priority() int { return 200 }
func (v *LayoutValidator) Execute(ctx context.Context, doc *dom.Document) error {
	_, err := v.Validate(ctx, doc)
	return err
}

func (v *LayoutValidator) Validate(ctx context.Context, doc *dom.Document) (*ValidationReport, error) {
	report := &ValidationReport{}
	fail := func(code, loc, format string, args ...any) {
		report.Errors = append(report.Errors, ValidationError{Code: code, Message: fmt.Sprintf(format, args...), Location: loc})
	}
	warn := func(code, loc, format string, args ...any) {
		report.Warnings = append(report.Warnings, ValidationWarning{Code: code, Message: fmt.Sprintf(format, args...), Location: loc})
	}

	bookmarks := make(map[string]bool)
	type ref struct{ loc, name string }
	var refs []ref

	for i, s := range doc.Sections {
		secLoc := fmt.Sprintf("section %d", i+1)
		body := s.PageSetup.BodyWidth()
		if body <= 0 || s.PageSetup.BodyHeight() <= 0 {
			fail("PAGE_MARGINS", secLoc, "margins leave no printable body (%s wide)", body)
		}
		walkSection(secLoc, s, visitor{
			block: func(loc string, b dom.Block) {
				switch b := b.(type) {
				case *dom.Table:
					v.table(loc, b, s, body, fail, warn)
				case *dom.Image:
					if w, h := b.Size(); w == 0 || h == 0 {
						warn("IMAGE_SIZE_UNKNOWN", loc, "image %s has no size", b.Name)
					}
				case *dom.Chart:
					chart(loc, b, warn)
				}
			},
			elem: func(loc string, e dom.Element) {
				switch e := e.(type) {
				case *dom.BookmarkField:
					bookmarks[e.Name] = true
				case *dom.Hyperlink:
					if e.Type == dom.HyperlinkLocal || e.Type == dom.HyperlinkBookmark {
						refs = append(refs, ref{loc, e.Name})
					}
				case *dom.PageRefField:
					refs = append(refs, ref{loc, e.Name})
				case *dom.Image:
					if w, h := e.Size(); w == 0 || h == 0 {
						warn("IMAGE_SIZE_UNKNOWN", loc, "image %s has no size", e.Name)
					}
				}
			},
		})
	}
	for _, r := range refs {
		if !bookmarks[r.name] {
			warn("BROKEN_LINK", r.loc, "bookmark %q does not exist", r.name)
		}
	}
	report.Valid = len(report.Errors) == 0
	return report, ctx.Err()
}

func (v *LayoutValidator) table(loc string, t *dom.Table, s *dom.Section, body unit.Unit, fail, warn func(code, loc, format string, args ...any)) {
	for ri, r := range t.Rows {
		if len(r.Cells) != t.NumColumns() {
			fail("COLUMN_ARITY", fmt.Sprintf("%s, row %d", loc, ri+1), "row has %d cells for %d columns", len(r.Cells), t.NumColumns())
			continue
		}
		for ci, c := range r.Cells {
			cellLoc := fmt.Sprintf("%s, cell %d:%d", loc, ri+1, ci+1)
			if c.MergeRight < 0 || c.MergeDown < 0 {
				fail("MERGE_OUT_OF_RANGE", cellLoc, "negative merge")
			}
			if ci+c.MergeRight >= t.NumColumns() {
				fail("MERGE_OUT_OF_RANGE", cellLoc, "merges %d columns right of column %d in a %d column table", c.MergeRight, ci+1, t.NumColumns())
			}
			if ri+c.MergeDown >= len(t.Rows) {
				warn("MERGE_CLAMPED", cellLoc, "merges %d rows down past the last row", c.MergeDown)
			}
		}
	}
	if t.Parent() != s {
		return
	}
	width := t.Width()
	if t.LeftIndent != nil {
		width += *t.LeftIndent
	}
	if width > body+v.Tolerance {
		warn("TABLE_OVERFLOW", loc, "table is %s wide, the body %s", width, body)
	}
	for _, c := range t.Columns() {
		if c.Width <= 0 {
			warn("ZERO_WIDTH_COLUMN", fmt.Sprintf("%s, column %d", loc, c.Index+1), "column has no width")
		}
	}
}

func chart(loc string, c *dom.Chart, warn func(code, loc, format string, args ...any)) {
	if len(c.Series) == 0 {
		warn("EMPTY_CHART", loc, "chart %q has no series", c.Title)
		return
	}
	for _, s := range c.Series {
		if len(c.Categories) > 0 && len(s.Values) != len(c.Categories) {
			warn("SERIES_LENGTH", loc, "series %q has %d values for %d categories", s.Name, len(s.Values), len(c.Categories))
		}
	}
}
