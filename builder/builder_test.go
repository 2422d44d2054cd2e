package builder

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"math"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wudi/docez/colspec"
	"github.com/wudi/docez/dom"
	"github.com/wudi/docez/observability"
	"github.com/wudi/docez/unit"
)

type foreignElement struct{ *dom.Text }

func near(a, b unit.Unit) bool { return math.Abs(float64(a-b)) < 1e-6 }

func cellText(c *dom.Cell) string {
	if len(c.Blocks) == 0 {
		return ""
	}
	p, ok := c.Blocks[0].(*dom.Paragraph)
	if !ok {
		return ""
	}
	return p.PlainText()
}

func TestBuilder_AddTableResolvesColumns(t *testing.T) {
	doc := New()
	tbl, err := doc.AddTable("1cm;C|2*|3cm;R|1*")
	if err != nil {
		t.Fatalf("add table: %v", err)
	}
	want := []unit.Unit{unit.Cm(1), unit.Cm(8), unit.Cm(3), unit.Cm(4)}
	for i, w := range want {
		if got := tbl.Column(i).Node().Width; !near(got, w) {
			t.Fatalf("column %d width = %.2fcm, want %.2fcm", i, got.Centimeters(), w.Centimeters())
		}
	}
	if tbl.Column(0).Node().Format.Alignment != dom.AlignCenter || tbl.Column(2).Node().Format.Alignment != dom.AlignRight {
		t.Fatalf("column alignments not applied")
	}
	if tbl.Column(1).Node().Format.Alignment != dom.AlignUnset {
		t.Fatalf("star column should have no alignment")
	}
	if _, err := doc.AddTable("1cm;C;S;X"); !errors.Is(err, colspec.ErrInvalidColumnSpec) {
		t.Fatalf("expected ErrInvalidColumnSpec, got %v", err)
	}
	if doc.CurrentTable().Node() != tbl.Node() {
		t.Fatalf("failed table spec must not replace the current table")
	}
}

func TestBuilder_AddTableWarnsWhenClamped(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	doc := New(WithLogger(observability.NewZap(zap.New(core))))
	tbl, err := doc.AddTable("10cm|10cm|1*")
	if err != nil {
		t.Fatalf("add table: %v", err)
	}
	if tbl.Column(2).Node().Width != 0 {
		t.Fatalf("star column width = %v, want 0", tbl.Column(2).Node().Width)
	}
	if logs.FilterMessage("star columns clamped to zero width").Len() != 1 {
		t.Fatalf("expected a clamp warning, got %v", logs.All())
	}
}

func TestBuilder_AddRowTruncatesExtraValues(t *testing.T) {
	doc := New()
	if _, err := doc.AddTable("1*|1*"); err != nil {
		t.Fatalf("add table: %v", err)
	}
	row, err := doc.AddRow("A", "B", "C")
	if err != nil {
		t.Fatalf("add row: %v", err)
	}
	cells := row.Node().Cells
	if len(cells) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(cells))
	}
	if cellText(cells[0]) != "A" || cellText(cells[1]) != "B" {
		t.Fatalf("unexpected cells %q %q", cellText(cells[0]), cellText(cells[1]))
	}
}

func TestBuilder_AddRowPadsMissingValues(t *testing.T) {
	doc := New()
	doc.AddTable("1*|1*|1*")
	row, err := doc.AddRow("A")
	if err != nil {
		t.Fatalf("add row: %v", err)
	}
	if cellText(row.Cell(0)) != "A" || !row.Cell(1).IsEmpty() || !row.Cell(2).IsEmpty() {
		t.Fatalf("expected A and two empty cells")
	}
	row, err = doc.AddRow(nil, (*Paragraph)(nil), "C")
	if err != nil {
		t.Fatalf("add row with nils: %v", err)
	}
	if !row.Cell(0).IsEmpty() || !row.Cell(1).IsEmpty() || cellText(row.Cell(2)) != "C" {
		t.Fatalf("nil values should leave cells empty")
	}
}

func TestBuilder_AddRowWithoutTable(t *testing.T) {
	doc := New()
	if _, err := doc.AddRow("A"); !errors.Is(err, dom.ErrNoCurrentTable) {
		t.Fatalf("expected ErrNoCurrentTable, got %v", err)
	}
	doc.AddTable("1*")
	doc.AddSection(dom.Letter)
	if _, err := doc.AddRow("A"); !errors.Is(err, dom.ErrNoCurrentTable) {
		t.Fatalf("table of the previous section must not be current: %v", err)
	}
}

func TestBuilder_AddRowRejectsUnsupportedValues(t *testing.T) {
	doc := New()
	tbl, _ := doc.AddTable("1*|1*")
	if _, err := doc.AddRow("A", 42); !errors.Is(err, dom.ErrUnsupportedRowValue) {
		t.Fatalf("expected ErrUnsupportedRowValue, got %v", err)
	}
	if len(tbl.Node().Rows) != 0 {
		t.Fatalf("rejected row must not be added")
	}
	owned := doc.AddParagraphText("already placed")
	if _, err := doc.AddRow(owned); !errors.Is(err, dom.ErrAlreadyAttached) {
		t.Fatalf("expected ErrAlreadyAttached, got %v", err)
	}
	if len(tbl.Node().Rows) != 0 {
		t.Fatalf("row with an owned block must not be added")
	}
	twice := NewParagraph("twice")
	for _, values := range [][]any{{twice, twice}, {twice, twice.Node()}} {
		if _, err := doc.AddRow(values...); !errors.Is(err, dom.ErrAlreadyAttached) {
			t.Fatalf("expected ErrAlreadyAttached for a repeated block, got %v", err)
		}
	}
	if len(tbl.Node().Rows) != 0 || twice.Node().Parent() != nil {
		t.Fatalf("row with a repeated block must not be added")
	}
}

func TestTable_ColumnsFixedAfterAddTable(t *testing.T) {
	doc := New()
	tbl, err := doc.AddTable("1*|1*")
	if err != nil {
		t.Fatalf("add table: %v", err)
	}
	cols := tbl.Node().Columns()
	cols = append(cols, &dom.Column{Width: unit.Cm(1)})
	cols[0] = &dom.Column{Width: unit.Cm(9)}
	row, err := doc.AddRow("a", "b", "c")
	if err != nil {
		t.Fatalf("add row: %v", err)
	}
	if tbl.Node().NumColumns() != 2 || len(row.Node().Cells) != 2 {
		t.Fatalf("table has %d columns and %d cells, want 2 and 2", tbl.Node().NumColumns(), len(row.Node().Cells))
	}
	if tbl.Column(0).Node().Width == unit.Cm(9) {
		t.Fatalf("replacing an entry of Columns() changed the table")
	}
	if tbl.Column(2) != nil || tbl.Column(-1) != nil {
		t.Fatalf("column wrapper out of range should be nil")
	}

	c := tbl.Column(1).Width(unit.Cm(3)).Alignment(dom.AlignRight).Style("Amount").Shading(dom.LightGray)
	n := tbl.Node().Column(1)
	if c.Node() != n || n.Width != unit.Cm(3) || n.Format.Alignment != dom.AlignRight || n.Style != "Amount" || n.Shading.Color != dom.LightGray {
		t.Fatalf("column wrapper did not update column 1: %+v", n)
	}
}

func TestParagraph_AddImageLogsUnknownSize(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	doc := New(WithLogger(observability.NewZap(zap.New(core))))
	missing := filepath.Join(t.TempDir(), "missing.png")
	img := doc.AddParagraph().AddImage(missing)
	if img.Node().IntrinsicWidth != 0 {
		t.Fatalf("missing image has intrinsic width %v", img.Node().IntrinsicWidth)
	}
	entries := logs.FilterMessage("image size unknown").All()
	if len(entries) != 1 || entries[0].ContextMap()["path"] != missing {
		t.Fatalf("expected one debug entry for %s, got %v", missing, logs.All())
	}

	// Detached paragraphs have no logger and must not panic.
	NewParagraph().AddImage(missing)
}

func TestBuilder_AddRowBlockValues(t *testing.T) {
	doc := New()
	doc.AddTable("1*|1*|1*|1*")
	para := NewParagraph("para").Bold(true)
	frame := NewTextFrame()
	frame.AddParagraph("framed")
	chart := dom.NewChart(dom.ChartBar)
	img := dom.NewImage("logo.png")
	row, err := doc.AddRow(para, frame, chart, img)
	if err != nil {
		t.Fatalf("add row: %v", err)
	}
	if row.Cell(0).Blocks[0] != para.Node() || para.Node().Parent() != row.Cell(0) {
		t.Fatalf("paragraph not attached to cell 0")
	}
	if row.Cell(1).Blocks[0] != frame.Node() || row.Cell(2).Blocks[0] != chart || row.Cell(3).Blocks[0] != img {
		t.Fatalf("blocks not attached in order")
	}
}

func TestBuilder_HeaderAssembly(t *testing.T) {
	doc := New()
	page := doc.NewParagraph("Page ").AddPageField().AddText(" of ").AddNumPagesField()
	hf, err := doc.AddPrimaryFooter("Left", page, "Right", true)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	blocks := hf.Node().Blocks
	if len(blocks) != 1 {
		t.Fatalf("expected one paragraph, got %d", len(blocks))
	}
	p := blocks[0].(*dom.Paragraph)
	if got := p.PlainText(); got != "Left\tPage  of \tRight" {
		t.Fatalf("footer text = %q", got)
	}
	kinds := []dom.ElementKind{dom.KindText, dom.KindTab, dom.KindText, dom.KindPageField,
		dom.KindText, dom.KindNumPagesField, dom.KindTab, dom.KindText}
	if len(p.Elements) != len(kinds) {
		t.Fatalf("expected %d elements, got %d", len(kinds), len(p.Elements))
	}
	for i, k := range kinds {
		if p.Elements[i].Kind() != k {
			t.Fatalf("element %d = %v, want %v", i, p.Elements[i].Kind(), k)
		}
	}
	if p.Elements[2] == page.Node().Elements[0] || len(page.Node().Elements) != 4 {
		t.Fatalf("page paragraph must be copied, not moved")
	}
	stops := hf.Node().Format.TabStops.Stops
	if len(stops) != 2 || !near(stops[0].Position, unit.Cm(8)) || !near(stops[1].Position, unit.Cm(16)) {
		t.Fatalf("unexpected tab stops %+v", stops)
	}
	if stops[0].Alignment != dom.TabCenter || stops[1].Alignment != dom.TabRight {
		t.Fatalf("unexpected tab alignments %+v", stops)
	}

	if _, err := doc.AddPrimaryFooter("Again", nil, nil, true); err != nil {
		t.Fatalf("reassemble: %v", err)
	}
	if got := hf.Node().Blocks; len(got) != 1 || got[0].(*dom.Paragraph).PlainText() != "Again" {
		t.Fatalf("clear must replace previous content")
	}
}

func TestBuilder_HeaderSkipsNilAndEmptyItems(t *testing.T) {
	doc := New()
	hf, err := doc.AddPrimaryHeader(nil, nil, nil, true)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if !hf.Node().IsEmpty() {
		t.Fatalf("no items should add no paragraph")
	}
	hf, err = doc.AddEvenPageHeader("", nil, "R", true)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if got := hf.Node().Blocks[0].(*dom.Paragraph).PlainText(); got != "\t\tR" {
		t.Fatalf("header text = %q", got)
	}
	if !doc.Section().PageSetup.OddAndEvenPagesHeaderFooter {
		t.Fatalf("even page header should enable odd/even headers")
	}
}

func TestBuilder_HeaderUnsupportedKeepsPartialContent(t *testing.T) {
	doc := New()
	bad := doc.NewParagraph("kept")
	bad.Node().Elements = append(bad.Node().Elements, foreignElement{dom.NewText("x")})
	hf, err := doc.AddPrimaryHeader("L", bad, "R", true)
	if !errors.Is(err, dom.ErrUnsupportedElementKind) {
		t.Fatalf("expected ErrUnsupportedElementKind, got %v", err)
	}
	if got := hf.Node().Blocks[0].(*dom.Paragraph).PlainText(); got != "L\tkept" {
		t.Fatalf("partial content = %q", got)
	}
	if _, err := doc.AddFirstPageFooter(3.5, nil, nil, true); !errors.Is(err, dom.ErrUnsupportedElementKind) {
		t.Fatalf("expected ErrUnsupportedElementKind for a float item, got %v", err)
	}
}

func TestParagraph_AddParagraphCopiesElements(t *testing.T) {
	doc := New()
	src := doc.NewParagraph("inner")
	dst := doc.AddParagraphText("outer ").AddParagraph(src)
	if err := dst.Err(); err != nil {
		t.Fatalf("embed: %v", err)
	}
	src.Node().Elements[0].(*dom.Text).Content = "changed"
	if got := dst.Node().PlainText(); got != "outer inner" {
		t.Fatalf("embedded text = %q", got)
	}
	if dst.AddParagraph(42).Err() == nil {
		t.Fatalf("expected error for a non-paragraph")
	}
	if dst.AddText("ignored").Node().PlainText() != "outer inner" {
		t.Fatalf("adders must be no-ops after an error")
	}
}

func TestParagraph_AddFormattedTextOwnership(t *testing.T) {
	doc := New()
	ft := doc.NewFormattedText("bold").Bold(true)
	p1 := doc.AddParagraph().AddFormattedText(ft)
	if p1.Err() != nil {
		t.Fatalf("first attach: %v", p1.Err())
	}
	p2 := doc.AddParagraph().AddFormattedText(ft)
	if !errors.Is(p2.Err(), dom.ErrAlreadyAttached) {
		t.Fatalf("expected ErrAlreadyAttached, got %v", p2.Err())
	}
}

func TestHyperlink_Assembly(t *testing.T) {
	doc := New()
	link := doc.AddWebLink("https://example.com", "")
	link.AddParagraph(doc.NewParagraph("see ").AddText("site"))
	if link.Err() != nil {
		t.Fatalf("hyperlink: %v", link.Err())
	}
	para := doc.Section().LastParagraph()
	if para == nil || para.PlainText() != "see site" {
		t.Fatalf("hyperlink paragraph missing")
	}
	h := link.Node()
	if h.Type != dom.HyperlinkWeb || h.Name != "https://example.com" || h.Parent() != para {
		t.Fatalf("unexpected hyperlink %+v", h)
	}
	local := doc.AddLocalLink("top", "Back to top")
	if local.Node().Type != dom.HyperlinkBookmark || len(local.Node().Elements) != 1 {
		t.Fatalf("unexpected local link")
	}
}

func TestBuilder_HeadingsAndStyles(t *testing.T) {
	doc := New()
	for level := 1; level <= 9; level++ {
		doc.AddHeading(level, "h")
	}
	if got := doc.AddHeading9("x").Node().Style; got != "Heading9" {
		t.Fatalf("heading style = %q", got)
	}
	if err := doc.Style("Missing").Bold(true).Err(); !errors.Is(err, dom.ErrUnknownStyle) {
		t.Fatalf("expected ErrUnknownStyle, got %v", err)
	}
	st := doc.AddStyle("Table", "").Font("Times", 9).Bold(true)
	if st.Err() != nil {
		t.Fatalf("add style: %v", st.Err())
	}
	if err := doc.AddStyle("Table", "").Err(); !errors.Is(err, dom.ErrDuplicateStyle) {
		t.Fatalf("expected ErrDuplicateStyle, got %v", err)
	}
	f, err := doc.Node().Styles.Resolve("Table")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if f.Font.Name != "Times" || f.Font.Size != 9 || !f.Font.IsBold() {
		t.Fatalf("resolved font = %+v", f.Font)
	}
	if err := doc.Style("Normal").BaseStyle("Table").Err(); !errors.Is(err, dom.ErrStyleCycle) {
		t.Fatalf("expected ErrStyleCycle, got %v", err)
	}
}

func TestBuilder_SectionsAndBuild(t *testing.T) {
	doc := New(WithPageFormat(dom.Letter))
	doc.SetTitle("T").SetAuthor("A")
	first := doc.Section()
	if first.PageSetup.PageFormat != dom.Letter {
		t.Fatalf("default page format not applied")
	}
	doc.MarginsHV(unit.Cm(1), unit.Cm(2))
	if !near(doc.BodyWidth(), unit.In(8.5)-unit.Cm(4)) {
		t.Fatalf("body width = %v", doc.BodyWidth())
	}
	second := doc.AddSection(dom.A5)
	if doc.Section() != second || second == first {
		t.Fatalf("cursor did not move")
	}
	if !near(second.PageSetup.LeftMargin, unit.Cm(2.5)) {
		t.Fatalf("new section must start from the default page setup")
	}
	doc.AddParagraphText("body")

	built, err := doc.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if built.Info.Title != "T" || len(built.Sections) != 2 {
		t.Fatalf("unexpected built document")
	}
	doc.Section().LastParagraph().AddText(" more")
	if got := built.Sections[1].LastParagraph().PlainText(); got != "body" {
		t.Fatalf("built document aliases the builder: %q", got)
	}
}

func TestImage_FromReaderAndFit(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 200, 100))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	img, err := ImageFromReader("mem.png", &buf)
	if err != nil {
		t.Fatalf("image: %v", err)
	}
	if img.Node().IntrinsicWidth != 200 || img.Node().IntrinsicHeight != 100 {
		t.Fatalf("intrinsic size %v x %v", img.Node().IntrinsicWidth, img.Node().IntrinsicHeight)
	}
	img.FitToSize(100, 100)
	if img.Node().Width != 100 || img.Node().Height != 50 {
		t.Fatalf("fit size %v x %v", img.Node().Width, img.Node().Height)
	}
	img.StretchToSize(30, 40)
	if img.Node().Width != 30 || img.Node().Height != 40 {
		t.Fatalf("stretch size %v x %v", img.Node().Width, img.Node().Height)
	}
	if _, err := ImageFromReader("bad", bytes.NewReader([]byte("nope"))); err == nil {
		t.Fatalf("expected error for garbage input")
	}
}

func TestRow_Merges(t *testing.T) {
	doc := New()
	doc.AddTable("1*|1*|1*")
	row, _ := doc.AddRow("a", "b", "c")
	row.MergeRight(0, 1).Heading(true).Bold(true)
	if row.Err() != nil || row.Cell(0).MergeRight != 1 || !row.Node().HeadingFormat {
		t.Fatalf("merge right not applied")
	}
	if !errors.Is(row.MergeRight(2, 1).Err(), dom.ErrCellRange) {
		t.Fatalf("expected ErrCellRange")
	}
}
