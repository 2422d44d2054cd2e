// Package extensions runs pluggable passes over a finished document tree:
// inspection, sanitizing, transformation and validation, in that order.
// A Hub is a render.Interceptor, so the passes can run on the copy a
// renderer receives.
package extensions

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/wudi/docez/dom"
	"github.com/wudi/docez/observability"
)

// ErrInvalidDocument is returned by the hub when a validator reports errors.
var ErrInvalidDocument = errors.New("document failed validation")

type Phase int

const (
	PhaseInspect Phase = iota
	PhaseSanitize
	PhaseTransform
	PhaseValidate
)

func (p Phase) String() string { return []string{"Inspect", "Sanitize", "Transform", "Validate"}[p] }

type Extension interface {
	Name() string
	Phase() Phase
	Priority() int
	Execute(ctx context.Context, doc *dom.Document) error
}

// Inspector is an extension that inspects the document and produces a report.
type Inspector interface {
	Extension
	Inspect(ctx context.Context, doc *dom.Document) (*InspectionReport, error)
}

// Sanitizer is an extension that cleans up the document.
type Sanitizer interface {
	Extension
	Sanitize(ctx context.Context, doc *dom.Document) (*SanitizationReport, error)
}

// Transformer is an extension that modifies the document structure.
type Transformer interface {
	Extension
	Transform(ctx context.Context, doc *dom.Document) error
}

// Validator is an extension that checks the document for problems.
type Validator interface {
	Extension
	Validate(ctx context.Context, doc *dom.Document) (*ValidationReport, error)
}

type InspectionReport struct {
	Sections   int
	Paragraphs int
	Tables     int
	Images     int
	TextFrames int
	Charts     int
	PageBreaks int
	Hyperlinks int
	Footnotes  int
	Bookmarks  int
	Fields     int
	Words      int
	Styles     int
	Metadata   map[string]string
}

type SanitizationReport struct {
	ItemsRemoved int
	ItemsFixed   int
	Actions      []SanitizationAction
}

type SanitizationAction struct {
	Type        string
	Description string
	Location    string
}

type ValidationReport struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationWarning
}

type ValidationError struct {
	Code     string
	Message  string
	Location string
}

type ValidationWarning struct {
	Code     string
	Message  string
	Location string
}

// Results holds the reports of the last hub run.
type Results struct {
	Inspection   []*InspectionReport
	Sanitization []*SanitizationReport
	Validation   []*ValidationReport
}

// Valid reports whether no validator found an error.
func (r *Results) Valid() bool {
	for _, v := range r.Validation {
		if !v.Valid {
			return false
		}
	}
	return true
}

type Hub interface {
	Register(ext Extension) error
	Execute(ctx context.Context, doc *dom.Document) error
	Extensions(phase Phase) []Extension
}

type HubImpl struct {
	exts    map[Phase][]Extension
	log     observability.Logger
	strict  bool
	results Results
}

type HubOption func(*HubImpl)

// WithLogger sets the logger the hub reports findings to.
func WithLogger(l observability.Logger) HubOption {
	return func(h *HubImpl) {
		if l != nil {
			h.log = l
		}
	}
}

// WithStrict makes Execute fail with ErrInvalidDocument when a validator
// reports errors. Otherwise they are only logged.
func WithStrict(v bool) HubOption {
	return func(h *HubImpl) { h.strict = v }
}

func NewHub(opts ...HubOption) *HubImpl {
	h := &HubImpl{exts: make(map[Phase][]Extension), log: observability.NopLogger{}}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HubImpl) Register(ext Extension) error {
	if ext == nil {
		return fmt.Errorf("register: %w", dom.ErrNilNode)
	}
	ph := ext.Phase()
	for _, e := range h.exts[ph] {
		if e.Name() == ext.Name() {
			return fmt.Errorf("extension %q already registered", ext.Name())
		}
	}
	h.exts[ph] = append(h.exts[ph], ext)
	sort.SliceStable(h.exts[ph], func(i, j int) bool { return h.exts[ph][i].Priority() < h.exts[ph][j].Priority() })
	return nil
}

// Execute runs every extension phase by phase. Extensions implementing a
// phase interface have their report collected, see Results.
func (h *HubImpl) Execute(ctx context.Context, doc *dom.Document) error {
	if doc == nil {
		return fmt.Errorf("extensions: %w", dom.ErrNilNode)
	}
	h.results = Results{}
	phases := []Phase{PhaseInspect, PhaseSanitize, PhaseTransform, PhaseValidate}
	for _, ph := range phases {
		for _, e := range h.exts[ph] {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := h.run(ctx, e, doc); err != nil {
				return fmt.Errorf("%s: %w", e.Name(), err)
			}
		}
	}
	if h.strict && !h.results.Valid() {
		for _, v := range h.results.Validation {
			if len(v.Errors) > 0 {
				first := v.Errors[0]
				return fmt.Errorf("%w: %s: %s", ErrInvalidDocument, first.Code, first.Message)
			}
		}
		return ErrInvalidDocument
	}
	return nil
}

func (h *HubImpl) run(ctx context.Context, e Extension, doc *dom.Document) error {
	log := h.log.With(observability.String("extension", e.Name()))
	switch x := e.(type) {
	case Inspector:
		rep, err := x.Inspect(ctx, doc)
		if err != nil {
			return err
		}
		h.results.Inspection = append(h.results.Inspection, rep)
		log.Debug("document inspected", observability.Int("paragraphs", rep.Paragraphs),
			observability.Int("tables", rep.Tables), observability.Int("words", rep.Words))
	case Sanitizer:
		rep, err := x.Sanitize(ctx, doc)
		if err != nil {
			return err
		}
		h.results.Sanitization = append(h.results.Sanitization, rep)
		for _, a := range rep.Actions {
			log.Info(a.Description, observability.String("action", a.Type), observability.String("location", a.Location))
		}
	case Transformer:
		return x.Transform(ctx, doc)
	case Validator:
		rep, err := x.Validate(ctx, doc)
		if err != nil {
			return err
		}
		h.results.Validation = append(h.results.Validation, rep)
		for _, v := range rep.Errors {
			log.Error(v.Message, observability.String("code", v.Code), observability.String("location", v.Location))
		}
		for _, v := range rep.Warnings {
			log.Warn(v.Message, observability.String("code", v.Code), observability.String("location", v.Location))
		}
	default:
		return e.Execute(ctx, doc)
	}
	return nil
}

func (h *HubImpl) Extensions(phase Phase) []Extension {
	return append([]Extension(nil), h.exts[phase]...)
}

// Results returns the reports collected by the last Execute.
func (h *HubImpl) Results() Results { return h.results }

// BeforeRender runs the hub on the document handed to a renderer.
func (h *HubImpl) BeforeRender(ctx context.Context, doc *dom.Document) error {
	return h.Execute(ctx, doc)
}

func (h *HubImpl) AfterRender(ctx context.Context, doc *dom.Document, bytesWritten int64) error {
	h.log.Debug("document rendered", observability.Int64("bytes", bytesWritten))
	return nil
}
