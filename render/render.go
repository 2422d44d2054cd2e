// Package render defines the contract between the document tree and the
// output backends, plus the helpers the backends share: effective format
// resolution, inline run flattening and field evaluation.
package render

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/wudi/docez/dom"
)

// Format names an output backend.
type Format string

const (
	FormatPDF    Format = "pdf"
	FormatDOCX   Format = "docx"
	FormatText   Format = "txt"
	FormatMarkup Format = "xml"
)

// ParseFormat maps a name or file extension to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(s), ".")); f {
	case FormatPDF, FormatDOCX, FormatText, FormatMarkup:
		return f, nil
	case "text":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Renderer writes a finished document. The document is owned by the
// renderer for the duration of the call and must not be changed.
type Renderer interface {
	Render(ctx context.Context, doc *dom.Document, w io.Writer) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, doc *dom.Document, w io.Writer) error

func (f RendererFunc) Render(ctx context.Context, doc *dom.Document, w io.Writer) error {
	return f(ctx, doc, w)
}

// Interceptor observes a render call. BeforeRender may reject the document.
type Interceptor interface {
	BeforeRender(ctx context.Context, doc *dom.Document) error
	AfterRender(ctx context.Context, doc *dom.Document, bytesWritten int64) error
}

// Intercept wraps r so that every interceptor runs around it, in order.
func Intercept(r Renderer, interceptors ...Interceptor) Renderer {
	return &intercepted{next: r, interceptors: interceptors}
}

type intercepted struct {
	next         Renderer
	interceptors []Interceptor
}

func (r *intercepted) Render(ctx context.Context, doc *dom.Document, w io.Writer) error {
	for _, i := range r.interceptors {
		if err := i.BeforeRender(ctx, doc); err != nil {
			return err
		}
	}
	cw := &countingWriter{w: w}
	if err := r.next.Render(ctx, doc, cw); err != nil {
		return err
	}
	for _, i := range r.interceptors {
		if err := i.AfterRender(ctx, doc, cw.n); err != nil {
			return err
		}
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Canceled reports the context error, if any, so long loops can stop early.
func Canceled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
