package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/unidoc/unioffice/measurement"

	"github.com/wudi/docez/dom"
	"github.com/wudi/docez/unit"
)

func parts(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("output is not a zip archive: %v", err)
	}
	out := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		out[f.Name] = string(b)
	}
	return out
}

func TestRender_WritesWordprocessingML(t *testing.T) {
	doc := dom.NewDocument()
	doc.Info.Title = "Quarterly"
	sec := doc.AddSection()
	sec.AddParagraph("Overview").Style = dom.HeadingStyle(1)
	p := sec.AddParagraph("Hello world")
	p.AddHyperlink("https://example.com", dom.HyperlinkWeb).AddText(" site")

	tbl := sec.AddTable(unit.Cm(5), unit.Cm(5))
	r0 := tbl.AddRow()
	r0.Cells[0].AddParagraph("spans")
	r0.Cells[0].MergeDown = 1
	r0.Cells[1].AddParagraph("right")
	tbl.AddRow().Cells[1].AddParagraph("below")

	chart := sec.AddChart(dom.ChartBar)
	chart.Categories = []string{"Q1", "Q2"}
	chart.AddSeries("Revenue", 10, 12.5)

	foot := sec.Footers.Primary.AddParagraph("Page ")
	foot.AddPageField()

	var buf bytes.Buffer
	if err := New().Render(context.Background(), doc, &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("PK")) {
		t.Fatalf("output does not start with a zip header")
	}
	files := parts(t, buf.Bytes())
	body, ok := files["word/document.xml"]
	if !ok {
		t.Fatalf("word/document.xml missing, parts: %d", len(files))
	}
	for _, want := range []string{"Overview", "Hello world", "spans", "below", "Revenue", "12.5", "vMerge"} {
		if !strings.Contains(body, want) {
			t.Errorf("document.xml is missing %q", want)
		}
	}
	if strings.Contains(body, "\x00") {
		t.Errorf("field marks leaked into document.xml")
	}

	var footer bool
	for name, content := range files {
		if strings.HasPrefix(name, "word/footer") && strings.Contains(content, "PAGE") {
			footer = true
		}
	}
	if !footer {
		t.Errorf("no footer part holds a PAGE field")
	}
	if !strings.Contains(files["docProps/core.xml"], "Quarterly") {
		t.Errorf("core properties are missing the title")
	}
}

func TestRender_ParagraphSpacingAndFlow(t *testing.T) {
	doc := dom.NewDocument()
	sec := doc.AddSection()
	sec.AddParagraph("airy").Format.LineSpacingRule = dom.LineSpacingOnePtFive
	tight := sec.AddParagraph("tight")
	tight.Format.LineSpacingRule = dom.LineSpacingExactly
	tight.Format.LineSpacing = unit.Ptr(14)
	sec.AddParagraph("glued").Format.KeepWithNext = dom.Bool(true)
	sec.AddParagraph("fresh").Format.PageBreakBefore = dom.Bool(true)

	var buf bytes.Buffer
	if err := New().Render(context.Background(), doc, &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	body := parts(t, buf.Bytes())["word/document.xml"]
	for _, want := range []string{
		`w:line="360" w:lineRule="auto"`,
		`w:line="280" w:lineRule="exact"`,
		"<w:keepNext",
		"<w:pageBreakBefore",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("document.xml is missing %s", want)
		}
	}
}

func TestLineSpacing(t *testing.T) {
	tests := []struct {
		name string
		pf   dom.ParagraphFormat
		want string
		ok   bool
	}{
		{"single", dom.ParagraphFormat{LineSpacingRule: dom.LineSpacingSingle}, "", false},
		{"double", dom.ParagraphFormat{LineSpacingRule: dom.LineSpacingDouble}, "24pt auto", true},
		{"multiple", dom.ParagraphFormat{LineSpacingRule: dom.LineSpacingMultiple, LineSpacing: unit.Ptr(1.25)}, "15pt auto", true},
		{"at least", dom.ParagraphFormat{LineSpacingRule: dom.LineSpacingAtLeast, LineSpacing: unit.Ptr(10)}, "10pt atLeast", true},
		{"exactly without value", dom.ParagraphFormat{LineSpacingRule: dom.LineSpacingExactly}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, rule, ok := lineSpacing(tt.pf)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if got := fmt.Sprintf("%gpt %s", float64(d/measurement.Point), rule); got != tt.want {
				t.Errorf("lineSpacing = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOwners(t *testing.T) {
	tbl := dom.NewTable(unit.Cm(2), unit.Cm(2), unit.Cm(2))
	tbl.AddRow()
	tbl.AddRow()
	tbl.Rows[0].Cells[0].MergeRight = 1
	tbl.Rows[0].Cells[0].MergeDown = 1
	tbl.Rows[0].Cells[2].MergeDown = 5

	owner := owners(tbl)
	anchor := tbl.Rows[0].Cells[0]
	for _, pos := range [][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}} {
		if got := owner[pos[0]][pos[1]]; got != anchor {
			t.Errorf("owner%v is not the merged anchor", pos)
		}
	}
	if owner[1][2] != tbl.Rows[0].Cells[2] {
		t.Errorf("merge down beyond the last row was not clamped")
	}
}

func TestRender_NilAndCanceled(t *testing.T) {
	if err := New().Render(context.Background(), nil, io.Discard); !errors.Is(err, ErrNilDocument) {
		t.Fatalf("Render(nil) = %v, want ErrNilDocument", err)
	}
	doc := dom.NewDocument()
	doc.AddSection().AddParagraph("x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := New().Render(ctx, doc, io.Discard); !errors.Is(err, context.Canceled) {
		t.Fatalf("Render = %v, want context.Canceled", err)
	}
}
