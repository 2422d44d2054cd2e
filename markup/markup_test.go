package markup

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/wudi/docez/dom"
	"github.com/wudi/docez/unit"
)

func richDocument(t *testing.T) *dom.Document {
	t.Helper()
	doc := dom.NewDocument()
	doc.Info = dom.Info{Title: "Invoice", Author: "Billing", Keywords: "a, b"}
	st, err := doc.Styles.Add("Reference", dom.StyleNormal)
	if err != nil {
		t.Fatalf("Add style: %v", err)
	}
	st.Format.Font.Italic = dom.Bool(true)
	st.Format.TabStops.Add(dom.TabStop{Position: unit.Cm(4), Alignment: dom.TabRight, Leader: dom.LeaderDots})

	sec := doc.AddSection()
	sec.PageSetup.Orientation = dom.Landscape
	sec.PageSetup.DifferentFirstPageHeaderFooter = true
	sec.Headers.FirstPage.AddParagraph("first page")
	foot := sec.Footers.Primary.AddParagraph("Page ")
	foot.AddPageField()
	foot.AddText(" of ")
	foot.AddNumPagesField()

	p := sec.AddParagraph("Dear ")
	p.Style = "Reference"
	p.Format.Alignment = dom.AlignJustify
	p.Format.SpaceAfter = unit.Ptr(6 * unit.Point)
	p.Format.Borders.Bottom = dom.Border{Style: dom.BorderSingle, Width: unit.Ptr(0.5), Color: dom.Red}
	p.Format.Shading = dom.Shading{Color: dom.LightGray}
	ft := p.AddFormattedText()
	ft.Font.Bold = dom.Bool(true)
	ft.Font.Size = 12 * unit.Point
	ft.AddText(" customer ")
	p.AddTab()
	p.AddCharacter(dom.SymbolEuro, 2)
	p.AddLineBreak()
	p.AddHyperlink("https://example.com", dom.HyperlinkWeb).AddText("site")
	p.AddBookmark("top")
	p.AddPageRefField("top")
	p.AddDateField("dd.MM.yyyy")
	p.AddInfoField(dom.InfoAuthor)
	p.AddSectionField()
	p.AddSectionPagesField()
	p.AddFootnote("See terms.")

	tbl := sec.AddTable(unit.Cm(3), unit.Cm(5))
	tbl.Style = "Table"
	tbl.LeftIndent = unit.Ptr(unit.Mm(5))
	r := tbl.AddRow()
	r.HeadingFormat = true
	r.Shading = dom.Shading{Color: dom.RGB(200, 220, 240)}
	r.Cells[0].AddParagraph("Item")
	r.Cells[0].MergeDown = 1
	r.Cells[1].AddParagraph("Price")
	r.Cells[1].VerticalAlignment = dom.VAlignBottom
	tbl.AddRow().Cells[1].AddImage("logo.png").Width = unit.Cm(2)
	if err := tbl.SetEdge(0, 0, 2, 2, dom.EdgeBox, dom.BorderSingle, 0.75, dom.Black); err != nil {
		t.Fatalf("SetEdge: %v", err)
	}

	img := sec.AddImage("photo.jpg")
	img.LockAspectRatio = true
	img.IntrinsicWidth, img.IntrinsicHeight = 300, 200
	img.Left = dom.Position(dom.PositionCenter)
	img.Top = dom.At(unit.Cm(1))
	img.RelativeVertical = dom.RelVerticalPage

	tf := sec.AddTextFrame()
	tf.Width = unit.Cm(6)
	tf.Wrap = dom.WrapNone
	tf.AddParagraph("framed")

	chart := sec.AddChart(dom.ChartPie)
	chart.Title = "Share"
	chart.Categories = []string{"a", "b"}
	chart.AddSeries("s", 0.25, 0.75)
	sec.AddPageBreak()

	doc.AddSection().AddParagraph("second")
	return doc
}

func TestRoundTrip(t *testing.T) {
	var first bytes.Buffer
	if err := Encode(&first, richDocument(t)); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	doc, err := Decode(bytes.NewReader(first.Bytes()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	var second bytes.Buffer
	if err := Encode(&second, doc); err != nil {
		t.Fatalf("Encode decoded: %v", err)
	}
	if first.String() != second.String() {
		t.Fatalf("round trip changed the markup\nfirst:\n%s\nsecond:\n%s", first.String(), second.String())
	}

	if len(doc.Sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(doc.Sections))
	}
	sec := doc.Sections[0]
	p, ok := sec.Blocks[0].(*dom.Paragraph)
	if !ok {
		t.Fatalf("first block is %T, want *dom.Paragraph", sec.Blocks[0])
	}
	ft, ok := p.Elements[1].(*dom.FormattedText)
	if !ok || ft.Elements[0].(*dom.Text).Content != " customer " {
		t.Errorf("formatted text did not keep its surrounding spaces")
	}
	if ft.Parent() != p {
		t.Errorf("decoded element is not attached to its paragraph")
	}
	tbl := sec.Blocks[1].(*dom.Table)
	if tbl.Rows[0].Cells[0].MergeDown != 1 || !tbl.Rows[0].HeadingFormat {
		t.Errorf("row properties lost: mergeDown=%d heading=%v", tbl.Rows[0].Cells[0].MergeDown, tbl.Rows[0].HeadingFormat)
	}
	if got := doc.Styles.Get("Reference"); got == nil || got.BaseStyle != dom.StyleNormal {
		t.Errorf("custom style lost: %+v", got)
	}
	if sec.PageSetup.Orientation != dom.Landscape || !sec.PageSetup.DifferentFirstPageHeaderFooter {
		t.Errorf("page setup lost: %+v", sec.PageSetup)
	}
	if sec.Headers.FirstPage.IsEmpty() || !sec.Headers.Primary.IsEmpty() {
		t.Errorf("header slots not restored")
	}
}

func TestEncode_OmitsUnsetProperties(t *testing.T) {
	doc := dom.NewDocument()
	doc.AddSection().AddParagraph("plain")
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<paragraph>") {
		t.Errorf("bare paragraph not written plainly:\n%s", out)
	}
	if strings.Contains(out, "<paragraph style") {
		t.Errorf("unset style written:\n%s", out)
	}
	if !strings.Contains(out, "<text>plain</text>") {
		t.Errorf("text not written:\n%s", out)
	}
}

func TestDecode_Errors(t *testing.T) {
	cases := map[string]string{
		"not xml":       "<<<",
		"wrong root":    `<book version="1"/>`,
		"version":       `<document version="9"/>`,
		"unknown block": `<document version="1"><section><widget/></section></document>`,
		"bad length":    `<document version="1"><section><pageSetup top="wide"/></section></document>`,
		"bad enum":      `<document version="1"><section><paragraph><format alignment="sideways"/></paragraph></section></document>`,
		"too many cells": `<document version="1"><section><table><column width="1cm"/>` +
			`<row><cell/><cell/></row></table></section></document>`,
		"style cycle": `<document version="1"><styles><style name="A" base="B"/><style name="B" base="A"/></styles></document>`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(in))
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("Decode error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestEncode_NilDocument(t *testing.T) {
	if err := Encode(&bytes.Buffer{}, nil); !errors.Is(err, ErrNilDocument) {
		t.Fatalf("Encode(nil) = %v, want ErrNilDocument", err)
	}
}
