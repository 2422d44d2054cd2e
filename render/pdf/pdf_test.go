package pdf

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wudi/docez/dom"
	"github.com/wudi/docez/observability"
	"github.com/wudi/docez/unit"
)

func sampleDocument(t *testing.T) *dom.Document {
	t.Helper()
	doc := dom.NewDocument()
	doc.Info.Title = "Sample"
	sec := doc.AddSection()

	sec.AddParagraph("Report").Style = dom.HeadingStyle(1)
	p := sec.AddParagraph("Hello world")
	bold := p.AddFormattedText()
	bold.Font.Bold = dom.Bool(true)
	bold.AddText(" bold")
	p.AddHyperlink("https://example.com", dom.HyperlinkWeb).AddText(" link")
	p.AddFootnote("A note.")

	tbl := sec.AddTable(unit.Cm(4), unit.Cm(6), unit.Cm(6))
	for i := 0; i < 3; i++ {
		row := tbl.AddRow()
		row.Cells[0].AddParagraph("cell")
		row.Cells[1].AddParagraph("a longer cell text that has to wrap inside its column at least once")
	}
	tbl.Rows[0].HeadingFormat = true
	tbl.Rows[1].Cells[1].MergeRight = 1
	tbl.Rows[1].Cells[0].MergeDown = 1
	if err := tbl.SetEdge(0, 0, 3, 3, dom.EdgeBox|dom.EdgeInterior, dom.BorderSingle, unit.Pt(0.75), dom.RGB(0, 0, 0)); err != nil {
		t.Fatalf("SetEdge: %v", err)
	}

	chart := sec.AddChart(dom.ChartColumn)
	chart.Title = "Sales"
	chart.AddSeries("2025", 1, 3, 2)
	chart.AddSeries("2026", 2, 4, 1)

	sec.AddPageBreak()
	sec.AddParagraph("Second page")

	foot := sec.Footers.Primary.AddParagraph("Page ")
	foot.AddPageField()
	foot.AddText(" of ")
	foot.AddNumPagesField()
	return doc
}

func TestRender_WritesPDF(t *testing.T) {
	var buf bytes.Buffer
	r := New(WithCompression(false), WithTime(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))
	if err := r.Render(context.Background(), sampleDocument(t), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.Bytes()
	if !bytes.HasPrefix(out, []byte("%PDF-1.")) {
		t.Fatalf("output does not start with a PDF header: %q", out[:min(len(out), 16)])
	}
	for _, want := range []string{"Hello world", "Second page", "Page 1 of 2", "Page 2 of 2", "https://example.com", "/Title"} {
		if !bytes.Contains(out, []byte(want)) {
			t.Errorf("output is missing %q", want)
		}
	}
	if bytes.Contains(out, []byte(numPagesAlias)) {
		t.Errorf("page count alias was not replaced")
	}
}

func TestRender_PageRefsUseFinalPagination(t *testing.T) {
	doc := dom.NewDocument()
	sec := doc.AddSection()
	p := sec.AddParagraph("see page ")
	p.AddPageRefField("target")
	sec.AddPageBreak()
	sec.AddParagraph("Target").AddBookmark("target")
	sec.AddParagraph("section pages ").AddSectionPagesField()

	if !needsPagination(doc) {
		t.Fatalf("needsPagination = false, want true")
	}
	var buf bytes.Buffer
	if err := New(WithCompression(false)).Render(context.Background(), doc, &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{"see page 2", "section pages 2"} {
		if !bytes.Contains(buf.Bytes(), []byte(want)) {
			t.Errorf("output is missing %q", want)
		}
	}
}

func TestRender_WarnsOnDegradedContent(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	doc := dom.NewDocument()
	sec := doc.AddSection()
	sec.AddParagraph("text")
	sec.AddImage("does-not-exist.png")
	sec.AddImage("picture.svg")
	sec.AddParagraph("odd").Style = "NoSuchStyle"

	r := New(WithLogger(observability.NewZap(zap.New(core))))
	if err := r.Render(context.Background(), doc, &bytes.Buffer{}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, msg := range []string{"font substituted", "image not found, skipped", "image format not supported, skipped", "style not resolved, using Normal"} {
		if logs.FilterMessage(msg).Len() == 0 {
			t.Errorf("no %q warning logged", msg)
		}
	}
	if n := logs.FilterMessage("font substituted").FilterField(zap.String("font", "Verdana")).Len(); n != 1 {
		t.Errorf("Verdana substitution logged %d times, want 1", n)
	}
}

func TestRender_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New().Render(ctx, sampleDocument(t), &bytes.Buffer{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Render error = %v, want context.Canceled", err)
	}
}

func TestRender_NilDocument(t *testing.T) {
	if err := New().Render(context.Background(), nil, &bytes.Buffer{}); !errors.Is(err, ErrNilDocument) {
		t.Fatalf("Render(nil) = %v, want ErrNilDocument", err)
	}
}

func TestFamily(t *testing.T) {
	s := &state{r: New(), fonts: make(map[string]string)}
	cases := map[string]string{
		"":                "Helvetica",
		"Arial":           "Helvetica",
		"Times New Roman": "Times",
		"Courier New":     "Courier",
		"DejaVu Sans":     "Helvetica",
		"Liberation Mono": "Courier",
		"Georgia":         "Times",
		"Verdana":         "Helvetica",
	}
	for name, want := range cases {
		if got := s.family(name); got != want {
			t.Errorf("family(%q) = %q, want %q", name, got, want)
		}
	}
}
