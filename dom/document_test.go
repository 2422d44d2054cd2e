package dom

import (
	"errors"
	"math"
	"testing"

	"github.com/wudi/docez/unit"
)

func near(a, b unit.Unit) bool { return math.Abs(float64(a-b)) < 1e-6 }

func TestSection_AddBlockRejectsOwnedNode(t *testing.T) {
	doc := NewDocument()
	s1 := doc.AddSection()
	s2 := doc.AddSection()
	p := s1.AddParagraph("hello")
	if err := s2.AddBlock(p); !errors.Is(err, ErrAlreadyAttached) {
		t.Fatalf("expected ErrAlreadyAttached, got %v", err)
	}
	c, err := p.Clone()
	if err != nil {
		t.Fatalf("clone: %v", err)
	}
	if c.Attached() {
		t.Fatalf("clone must be detached")
	}
	if err := s2.AddBlock(c); err != nil {
		t.Fatalf("add clone: %v", err)
	}
	if c.Parent() != s2 {
		t.Fatalf("clone not owned by second section")
	}
	if err := s2.AddBlock(nil); !errors.Is(err, ErrNilNode) {
		t.Fatalf("expected ErrNilNode, got %v", err)
	}
}

func TestParagraph_AddRejectsOwnedElement(t *testing.T) {
	a, b := NewParagraph(), NewParagraph()
	txt := a.AddText("x")
	if err := b.Add(txt); !errors.Is(err, ErrAlreadyAttached) {
		t.Fatalf("expected ErrAlreadyAttached, got %v", err)
	}
	if len(b.Elements) != 0 {
		t.Fatalf("rejected element was appended")
	}
}

func TestTable_ColumnArity(t *testing.T) {
	tbl := NewTable(unit.Cm(2), unit.Cm(3), unit.Cm(4))
	r := tbl.AddRow()
	if len(r.Cells) != 3 {
		t.Fatalf("expected 3 cells, got %d", len(r.Cells))
	}
	cols := tbl.Columns()
	cols = append(cols, &Column{Width: unit.Cm(1)})
	cols[0] = &Column{Width: unit.Cm(9)}
	if tbl.NumColumns() != 3 || tbl.Column(0).Width != unit.Cm(2) {
		t.Fatalf("column list changed through Columns(): %d columns", tbl.NumColumns())
	}
	if tbl.Column(3) != nil || tbl.Column(-1) != nil {
		t.Fatalf("column lookup out of bounds handling wrong")
	}
	if tbl.Column(1).Table() != tbl || tbl.Column(1).Index != 1 {
		t.Fatalf("column back references not set")
	}
	if len(tbl.AddRow().Cells) != 3 {
		t.Fatalf("second row arity changed")
	}
	if !near(tbl.Width(), unit.Cm(9)) {
		t.Fatalf("table width = %v", tbl.Width())
	}
	if tbl.Cell(1, 2) == nil || tbl.Cell(2, 0) != nil || tbl.Cell(0, 3) != nil {
		t.Fatalf("cell lookup out of bounds handling wrong")
	}
	if r.Cells[1].Row() != r || r.Table() != tbl {
		t.Fatalf("back references not set")
	}
}

func TestTable_SetEdge(t *testing.T) {
	tbl := NewTable(unit.Cm(2), unit.Cm(2), unit.Cm(2))
	for i := 0; i < 3; i++ {
		tbl.AddRow()
	}
	if err := tbl.SetEdge(0, 0, 3, 2, EdgeBox, BorderSingle, 0.75, Black); err != nil {
		t.Fatalf("set edge: %v", err)
	}
	if !tbl.Cell(0, 1).Borders.Top.IsSet() || tbl.Cell(1, 1).Borders.Top.IsSet() {
		t.Fatalf("top edge applied to the wrong rows")
	}
	if !tbl.Cell(1, 0).Borders.Bottom.IsSet() || tbl.Cell(0, 0).Borders.Bottom.IsSet() {
		t.Fatalf("bottom edge applied to the wrong rows")
	}
	if !tbl.Cell(1, 2).Borders.Right.IsSet() || tbl.Cell(1, 1).Borders.Right.IsSet() {
		t.Fatalf("right edge applied to the wrong columns")
	}
	if tbl.Cell(2, 0).Borders.IsSet() {
		t.Fatalf("row outside the range was touched")
	}
	if err := tbl.SetEdge(1, 0, 3, 1, EdgeBox, BorderSingle, 1, Black); !errors.Is(err, ErrCellRange) {
		t.Fatalf("expected ErrCellRange, got %v", err)
	}
	if err := tbl.SetEdge(0, 0, 2, 2, EdgeInterior, BorderDot, 1, Red); err != nil {
		t.Fatalf("set interior: %v", err)
	}
	if got := tbl.Cell(0, 0).Borders.Edge(EdgeRight); got.Style != BorderDot || got.Color != Red {
		t.Fatalf("interior vertical edge = %+v", got)
	}
}

func TestStyles_ResolveFollowsBaseChain(t *testing.T) {
	styles := NewStyles()
	base, err := styles.Add("Base", StyleNormal)
	if err != nil {
		t.Fatalf("add base: %v", err)
	}
	base.Format.Font.Size = 12
	base.Format.Alignment = AlignCenter
	child, err := styles.Add("Child", "Base")
	if err != nil {
		t.Fatalf("add child: %v", err)
	}
	child.Format.Font.Size = 14
	child.Format.Font.Bold = Bool(true)

	f, err := styles.Resolve("Child")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if f.Font.Size != 14 || !f.Font.IsBold() {
		t.Fatalf("child overrides lost: %+v", f.Font)
	}
	if f.Alignment != AlignCenter {
		t.Fatalf("inherited alignment = %v", f.Alignment)
	}
	if f.Font.Name != "Verdana" {
		t.Fatalf("root font not inherited: %q", f.Font.Name)
	}
	chain, _ := styles.Chain("Child")
	if len(chain) != 3 || chain[0] != StyleNormal || chain[2] != "Child" {
		t.Fatalf("chain = %v", chain)
	}
}

func TestStyles_Errors(t *testing.T) {
	styles := NewStyles()
	if _, err := styles.Add("Orphan", "Missing"); err != nil {
		t.Fatalf("missing base must be tolerated at definition: %v", err)
	}
	if _, err := styles.Resolve("Orphan"); !errors.Is(err, ErrUnresolvedBaseStyle) {
		t.Fatalf("expected ErrUnresolvedBaseStyle, got %v", err)
	}
	if _, err := styles.Resolve("Nope"); !errors.Is(err, ErrUnknownStyle) {
		t.Fatalf("expected ErrUnknownStyle, got %v", err)
	}
	if _, err := styles.Add(StyleNormal, ""); !errors.Is(err, ErrDuplicateStyle) {
		t.Fatalf("expected ErrDuplicateStyle, got %v", err)
	}
	if _, err := styles.Add("Missing", "Orphan"); !errors.Is(err, ErrStyleCycle) {
		t.Fatalf("expected ErrStyleCycle, got %v", err)
	}
	if err := styles.SetBase(StyleNormal, HeadingStyle(9)); !errors.Is(err, ErrStyleCycle) {
		t.Fatalf("expected ErrStyleCycle, got %v", err)
	}
}

func TestStyles_PredefinedHeadings(t *testing.T) {
	styles := NewStyles()
	for level := 1; level <= 9; level++ {
		f, err := styles.Resolve(HeadingStyle(level))
		if err != nil {
			t.Fatalf("resolve heading %d: %v", level, err)
		}
		if f.OutlineLevel != level {
			t.Fatalf("heading %d outline level = %d", level, f.OutlineLevel)
		}
	}
	if got := styles.Get(HeadingStyle(4)).BaseStyle; got != HeadingStyle(3) {
		t.Fatalf("Heading4 based on %q", got)
	}
}

func TestPageSetup_BodyWidth(t *testing.T) {
	ps := DefaultPageSetup()
	if !near(ps.BodyWidth(), unit.Cm(16)) {
		t.Fatalf("A4 body width = %v", ps.BodyWidth())
	}
	ps.Orientation = Landscape
	if !near(ps.BodyWidth(), unit.Mm(297)-unit.Cm(5)) {
		t.Fatalf("landscape body width = %v", ps.BodyWidth())
	}
	ps.SetPageFormat(Letter)
	if !near(ps.PageWidth, unit.In(8.5)) {
		t.Fatalf("letter width = %v", ps.PageWidth)
	}
	if pf, ok := ParsePageFormat("legal"); !ok || pf != Legal {
		t.Fatalf("parse legal = %v, %v", pf, ok)
	}
}

func TestDocument_CloneDoesNotAlias(t *testing.T) {
	doc := NewDocument()
	doc.Info.Title = "Report"
	s := doc.AddSection()
	s.Headers.Primary.AddParagraph("head")
	p := s.AddParagraph("body")
	p.Format.SpaceAfter = unit.Ptr(6)
	tbl := s.AddTable(unit.Cm(3))
	tbl.AddRow().Cells[0].AddParagraph("cell")

	c, err := doc.Clone()
	if err != nil {
		t.Fatalf("clone: %v", err)
	}
	*p.Format.SpaceAfter = 99
	p.Elements[0].(*Text).Content = "mutated"
	tbl.Rows[0].Cells[0].Blocks[0].(*Paragraph).AddText("!")
	doc.Styles.Get(StyleNormal).Format.Font.Name = "Courier"

	cs := c.Sections[0]
	cp := cs.Blocks[0].(*Paragraph)
	if cp.PlainText() != "body" || *cp.Format.SpaceAfter != 6 {
		t.Fatalf("paragraph aliased: %q %v", cp.PlainText(), *cp.Format.SpaceAfter)
	}
	ct := cs.LastTable()
	if ct == nil || ct.Rows[0].Cells[0].Blocks[0].(*Paragraph).PlainText() != "cell" {
		t.Fatalf("table aliased")
	}
	if ct.Rows[0].Cells[0].Row().Table() != ct {
		t.Fatalf("cloned cells point at the source table")
	}
	if c.Styles.Get(StyleNormal).Format.Font.Name != "Verdana" {
		t.Fatalf("styles aliased")
	}
	if cs.Headers.Primary.Blocks[0].Parent() != cs.Headers.Primary || cs.Document() != c {
		t.Fatalf("cloned back references wrong")
	}
}

func TestImage_Size(t *testing.T) {
	img := NewImage("x.png")
	img.IntrinsicWidth, img.IntrinsicHeight = 200, 100
	if w, h := img.Size(); w != 200 || h != 100 {
		t.Fatalf("intrinsic size = %v x %v", w, h)
	}
	img.Width = 100
	if w, h := img.Size(); w != 100 || h != 50 {
		t.Fatalf("scaled size = %v x %v", w, h)
	}
}

func TestParagraph_PlainText(t *testing.T) {
	p := NewParagraph()
	p.AddText("a")
	p.AddTab()
	p.AddFormattedText().AddText("b")
	p.AddLineBreak()
	p.AddHyperlink("x", HyperlinkBookmark).AddText("c")
	p.AddPageField()
	if got := p.PlainText(); got != "a\tb\nc" {
		t.Fatalf("plain text = %q", got)
	}
}
