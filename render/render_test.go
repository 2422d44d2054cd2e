package render

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/wudi/docez/dom"
)

func TestDateLayout(t *testing.T) {
	at := time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC)
	cases := map[string]string{
		"dd.MM.yyyy":          "05.03.2024",
		"d MMMM yyyy":         "5 March 2024",
		"yyyy-MM-dd HH:mm:ss": "2024-03-05 14:07:09",
		"'Printed' dd/MM/yy":  "Printed 05/03/24",
		"":                    "05.03.2024",
	}
	for pattern, want := range cases {
		if got := at.Format(DateLayout(pattern)); got != want {
			t.Fatalf("DateLayout(%q) formats %q, want %q", pattern, got, want)
		}
	}
}

func TestFlattener_RunsAndFields(t *testing.T) {
	p := dom.NewParagraph()
	p.AddText("Page ")
	p.AddPageField()
	p.AddText(" of ")
	p.AddNumPagesField()
	ft := p.AddFormattedText()
	ft.Font.Bold = dom.Bool(true)
	ft.AddText(" bold")
	p.AddTab()
	p.AddInfoField(dom.InfoTitle)
	p.AddFootnote("note")

	f := &Flattener{Fields: Fields{Page: "3", NumPages: "9", Info: dom.Info{Title: "Report"}}}
	runs := f.Runs(p.Elements, dom.Font{Name: "Verdana"})
	if len(runs) != 5 {
		t.Fatalf("expected 5 runs, got %d: %+v", len(runs), runs)
	}
	if runs[0].Text != "Page 3 of 9" {
		t.Fatalf("merged text = %q", runs[0].Text)
	}
	if runs[1].Text != " bold" || !runs[1].Font.IsBold() || runs[1].Font.Name != "Verdana" {
		t.Fatalf("formatted run = %+v", runs[1])
	}
	if runs[2].Kind != RunTab || runs[3].Text != "Report" {
		t.Fatalf("unexpected runs %+v", runs[2:4])
	}
	if runs[4].Footnote == nil || runs[4].Text != "1" || !IsSuperscript(runs[4].Font) {
		t.Fatalf("footnote mark = %+v", runs[4])
	}
	if len(f.TakeFootnotes()) != 1 || len(f.Footnotes()) != 0 {
		t.Fatalf("footnotes not collected")
	}
}

func TestFormats_FallsBackToNormal(t *testing.T) {
	doc := dom.NewDocument()
	p := dom.NewParagraph()
	p.Style = "Nope"
	p.Format.Font.Size = 12
	fs := NewFormats(doc)
	pf := fs.Paragraph(p, "")
	if pf.Font.Name != "Verdana" || pf.Font.Size != 12 {
		t.Fatalf("unexpected format %+v", pf.Font)
	}
	if !errors.Is(fs.Missing["Nope"], dom.ErrUnknownStyle) {
		t.Fatalf("missing style not recorded: %v", fs.Missing)
	}
}

type recorder struct {
	before, after int
	written       int64
	reject        error
}

func (r *recorder) BeforeRender(context.Context, *dom.Document) error {
	r.before++
	return r.reject
}

func (r *recorder) AfterRender(_ context.Context, _ *dom.Document, n int64) error {
	r.after++
	r.written = n
	return nil
}

func TestIntercept(t *testing.T) {
	inner := RendererFunc(func(_ context.Context, _ *dom.Document, w io.Writer) error {
		_, err := w.Write([]byte("hello"))
		return err
	})
	rec := &recorder{}
	var buf bytes.Buffer
	if err := Intercept(inner, rec).Render(context.Background(), dom.NewDocument(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	if rec.before != 1 || rec.after != 1 || rec.written != 5 || buf.String() != "hello" {
		t.Fatalf("unexpected interceptor state %+v, output %q", rec, buf.String())
	}
	rec.reject = errors.New("rejected")
	if err := Intercept(inner, rec).Render(context.Background(), dom.NewDocument(), &buf); err != rec.reject {
		t.Fatalf("expected rejection, got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(".PDF"); err != nil || f != FormatPDF {
		t.Fatalf("ParseFormat(.PDF) = %v, %v", f, err)
	}
	if _, err := ParseFormat("rtf"); err == nil {
		t.Fatalf("expected error for rtf")
	}
}
