package dom

import (
	"fmt"
	"slices"

	"github.com/wudi/docez/unit"
)

// Edge selects table cell edges. Values combine as a bitmask.
type Edge uint8

const (
	EdgeTop Edge = 1 << iota
	EdgeRight
	EdgeBottom
	EdgeLeft
	EdgeInteriorHorizontal
	EdgeInteriorVertical

	EdgeBox      = EdgeTop | EdgeRight | EdgeBottom | EdgeLeft
	EdgeInterior = EdgeInteriorHorizontal | EdgeInteriorVertical
)

// Table is a grid of cells. Its columns are set when the table is created
// and never change afterwards.
type Table struct {
	node
	Style         string
	Format        ParagraphFormat
	columns       []*Column
	Rows          []*Row
	Borders       Borders
	Shading       Shading
	TopPadding    *unit.Unit
	BottomPadding *unit.Unit
	LeftPadding   *unit.Unit
	RightPadding  *unit.Unit
	LeftIndent    *unit.Unit
}

// NewTable returns a detached table with one column per width.
func NewTable(widths ...unit.Unit) *Table {
	t := &Table{columns: make([]*Column, len(widths))}
	for i, w := range widths {
		t.columns[i] = &Column{table: t, Index: i, Width: w}
	}
	return t
}

func (t *Table) BlockKind() BlockKind { return BlockTable }
func (t *Table) block() *node         { return &t.node }

// Columns returns a copy of the column list. Column properties may be
// changed through the returned pointers; the list itself is fixed.
func (t *Table) Columns() []*Column { return slices.Clone(t.columns) }

// Column returns column i, or nil.
func (t *Table) Column(i int) *Column {
	if i < 0 || i >= len(t.columns) {
		return nil
	}
	return t.columns[i]
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int { return len(t.columns) }

// AddRow appends a row with one empty cell per column.
func (t *Table) AddRow() *Row {
	r := &Row{table: t, Index: len(t.Rows)}
	r.Cells = make([]*Cell, len(t.columns))
	for i := range r.Cells {
		r.Cells[i] = &Cell{row: r, Column: i}
	}
	t.Rows = append(t.Rows, r)
	return r
}

// Cell returns the cell at (row, col), or nil when out of range.
func (t *Table) Cell(row, col int) *Cell {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.columns) {
		return nil
	}
	return t.Rows[row].Cells[col]
}

// Width is the sum of the column widths.
func (t *Table) Width() unit.Unit {
	var w unit.Unit
	for _, c := range t.columns {
		w += c.Width
	}
	return w
}

// SetEdge formats the selected edges of the cols x rows block starting at
// (col, row). Outer edges apply to the border cells of the block, interior
// edges to the lines between its cells.
func (t *Table) SetEdge(col, row, cols, rows int, edge Edge, style BorderStyle, width unit.Unit, color Color) error {
	if col < 0 || row < 0 || cols < 1 || rows < 1 ||
		col+cols > len(t.columns) || row+rows > len(t.Rows) {
		return fmt.Errorf("%w: %d,%d +%dx%d in %dx%d", ErrCellRange,
			col, row, cols, rows, len(t.columns), len(t.Rows))
	}
	b := Border{Width: unit.Ptr(width), Color: color, Style: style, Visible: Bool(style != BorderNone)}
	lastCol, lastRow := col+cols-1, row+rows-1
	for r := row; r <= lastRow; r++ {
		for c := col; c <= lastCol; c++ {
			cell := t.Rows[r].Cells[c]
			if edge&EdgeTop != 0 && r == row {
				cell.Borders.Top = b.clone()
			}
			if edge&EdgeBottom != 0 && r == lastRow {
				cell.Borders.Bottom = b.clone()
			}
			if edge&EdgeLeft != 0 && c == col {
				cell.Borders.Left = b.clone()
			}
			if edge&EdgeRight != 0 && c == lastCol {
				cell.Borders.Right = b.clone()
			}
			if edge&EdgeInteriorHorizontal != 0 && r < lastRow {
				cell.Borders.Bottom = b.clone()
			}
			if edge&EdgeInteriorVertical != 0 && c < lastCol {
				cell.Borders.Right = b.clone()
			}
		}
	}
	return nil
}

type Column struct {
	table   *Table
	Index   int
	Width   unit.Unit
	Style   string
	Format  ParagraphFormat
	Shading Shading
}

func (c *Column) Table() *Table { return c.table }

type Row struct {
	table             *Table
	Index             int
	Cells             []*Cell
	HeadingFormat     bool
	Style             string
	Format            ParagraphFormat
	Shading           Shading
	Borders           Borders
	TopPadding        *unit.Unit
	BottomPadding     *unit.Unit
	Height            *unit.Unit
	VerticalAlignment VerticalAlignment
}

func (r *Row) Table() *Table { return r.table }

// Cell is a block container at one grid position. MergeRight and MergeDown
// count the extra columns and rows it spans.
type Cell struct {
	row               *Row
	Column            int
	Blocks            []Block
	MergeRight        int
	MergeDown         int
	VerticalAlignment VerticalAlignment
	Style             string
	Format            ParagraphFormat
	Shading           Shading
	Borders           Borders
}

func (c *Cell) Row() *Row { return c.row }

func (c *Cell) AddBlock(b Block) error {
	if err := attachBlock(c, b); err != nil {
		return err
	}
	c.Blocks = append(c.Blocks, b)
	return nil
}

func (c *Cell) AddParagraph(text string) *Paragraph {
	p := newParagraph(text)
	p.parent = c
	c.Blocks = append(c.Blocks, p)
	return p
}

func (c *Cell) AddImage(name string) *Image {
	img := NewImage(name)
	img.parent = c
	c.Blocks = append(c.Blocks, img)
	return img
}

// IsEmpty reports whether the cell holds no blocks.
func (c *Cell) IsEmpty() bool { return len(c.Blocks) == 0 }
