package builder

import (
	"fmt"
	"reflect"

	"github.com/wudi/docez/colspec"
	"github.com/wudi/docez/dom"
	"github.com/wudi/docez/observability"
	"github.com/wudi/docez/unit"
)

// AddTable appends a table whose columns are described by spec (see package
// colspec) and resolved against the current body width.
func (d *Document) AddTable(spec string) (*Table, error) {
	specs, err := colspec.Parse(spec)
	if err != nil {
		return nil, err
	}
	return d.AddTableColumns(specs...)
}

// AddTableColumns appends a table with the given columns.
func (d *Document) AddTableColumns(specs ...colspec.Spec) (*Table, error) {
	body := d.BodyWidth()
	widths, err := colspec.Resolve(specs, body)
	if err != nil {
		return nil, err
	}
	if colspec.Clamped(specs, body) {
		d.log.Warn("star columns clamped to zero width",
			observability.String("columns", colspec.Format(specs)),
			observability.Float64("body_width", body.Points()))
	}
	t := d.cur.section.AddTable(widths...)
	for i, s := range specs {
		col := t.Column(i)
		col.Style = s.Style
		col.Format.Alignment = s.Alignment
	}
	d.log.Debug("table added", observability.Int("columns", len(specs)),
		observability.Float64("width", t.Width().Points()))
	return &Table{t: t, log: d.log}, nil
}

// CurrentTable returns the table rows are added to, or nil.
func (d *Document) CurrentTable() *Table {
	t := d.cur.section.LastTable()
	if t == nil {
		return nil
	}
	return &Table{t: t, log: d.log}
}

// AddRow appends a row to the current table. See Table.AddRow.
func (d *Document) AddRow(values ...any) (*Row, error) {
	t := d.cur.section.LastTable()
	if t == nil {
		return nil, fmt.Errorf("%w in section %d", dom.ErrNoCurrentTable, len(d.doc.Sections)-1)
	}
	return addRow(t, d.log, values)
}

// Table wraps a dom.Table.
type Table struct {
	t   *dom.Table
	log observability.Logger
	err error
}

// Node returns the wrapped table.
func (t *Table) Node() *dom.Table { return t.t }

// Err returns the first error recorded by a mutator.
func (t *Table) Err() error { return t.err }

// AddRow appends a row with one cell per column. Value i fills cell i:
// a string becomes a paragraph, paragraphs, images, charts and text frames
// are attached as they are, nil leaves the cell empty. Values beyond the
// column count are dropped. Nothing is added when a value is rejected.
func (t *Table) AddRow(values ...any) (*Row, error) {
	return addRow(t.t, t.log, values)
}

func addRow(t *dom.Table, log observability.Logger, values []any) (*Row, error) {
	if log == nil {
		log = observability.NopLogger{}
	}
	n := len(values)
	if n > t.NumColumns() {
		log.Warn("row values truncated",
			observability.Int("values", n), observability.Int("columns", t.NumColumns()))
		n = t.NumColumns()
	}
	blocks := make([]dom.Block, n)
	seen := make(map[dom.Block]bool, n)
	for i := 0; i < n; i++ {
		b, err := cellBlock(values[i])
		if err != nil {
			return nil, fmt.Errorf("cell %d: %w", i, err)
		}
		if b == nil {
			continue
		}
		if b.Parent() != nil || seen[b] {
			return nil, fmt.Errorf("cell %d: %w: %T", i, dom.ErrAlreadyAttached, b)
		}
		seen[b] = true
		blocks[i] = b
	}
	row := t.AddRow()
	for i, b := range blocks {
		if b == nil {
			continue
		}
		if err := row.Cells[i].AddBlock(b); err != nil {
			return &Row{r: row}, fmt.Errorf("cell %d: %w", i, err)
		}
	}
	return &Row{r: row}, nil
}

// cellBlock converts a row value to cell content; nil means empty.
func cellBlock(v any) (dom.Block, error) {
	if v == nil || isNilPointer(v) {
		return nil, nil
	}
	switch x := v.(type) {
	case string:
		p := dom.NewParagraph()
		p.AddText(x)
		return p, nil
	case *dom.Paragraph:
		return x, nil
	case *Paragraph:
		return x.p, nil
	case *dom.Image:
		return x, nil
	case *Image:
		return x.img, nil
	case *dom.Chart:
		return x, nil
	case *dom.TextFrame:
		return x, nil
	case *TextFrame:
		return x.tf, nil
	default:
		return nil, fmt.Errorf("%w: %T", dom.ErrUnsupportedRowValue, v)
	}
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func (t *Table) Style(name string) *Table { t.t.Style = name; return t }

// Column returns a wrapper for column i, or nil.
func (t *Table) Column(i int) *Column {
	c := t.t.Column(i)
	if c == nil {
		return nil
	}
	return &Column{c: c}
}

// Row returns a wrapper for row i, or nil.
func (t *Table) Row(i int) *Row {
	if i < 0 || i >= len(t.t.Rows) {
		return nil
	}
	return &Row{r: t.t.Rows[i]}
}

func (t *Table) BorderWidth(w unit.Unit) *Table {
	t.t.Borders.Width = unit.Ptr(w)
	return t
}

func (t *Table) BorderColor(c dom.Color) *Table {
	t.t.Borders.Color = c
	return t
}

// Borders sets width and color of all table borders.
func (t *Table) Borders(w unit.Unit, c dom.Color) *Table {
	return t.BorderWidth(w).BorderColor(c)
}

func (t *Table) BorderTop(w unit.Unit) *Table    { t.t.Borders.Top.Width = unit.Ptr(w); return t }
func (t *Table) BorderRight(w unit.Unit) *Table  { t.t.Borders.Right.Width = unit.Ptr(w); return t }
func (t *Table) BorderBottom(w unit.Unit) *Table { t.t.Borders.Bottom.Width = unit.Ptr(w); return t }
func (t *Table) BorderLeft(w unit.Unit) *Table   { t.t.Borders.Left.Width = unit.Ptr(w); return t }

// Padding sets the cell padding on all four sides.
func (t *Table) Padding(w unit.Unit) *Table {
	return t.TopPadding(w).RightPadding(w).BottomPadding(w).LeftPadding(w)
}

func (t *Table) TopPadding(w unit.Unit) *Table    { t.t.TopPadding = unit.Ptr(w); return t }
func (t *Table) RightPadding(w unit.Unit) *Table  { t.t.RightPadding = unit.Ptr(w); return t }
func (t *Table) BottomPadding(w unit.Unit) *Table { t.t.BottomPadding = unit.Ptr(w); return t }
func (t *Table) LeftPadding(w unit.Unit) *Table   { t.t.LeftPadding = unit.Ptr(w); return t }
func (t *Table) LeftIndent(w unit.Unit) *Table    { t.t.LeftIndent = unit.Ptr(w); return t }

func (t *Table) Shading(c dom.Color) *Table {
	t.t.Shading.Color = c
	return t
}

// SetEdge formats edges of a cell block; see dom.Table.SetEdge.
func (t *Table) SetEdge(col, row, cols, rows int, edge dom.Edge, style dom.BorderStyle, width unit.Unit, color dom.Color) *Table {
	if t.err != nil {
		return t
	}
	if err := t.t.SetEdge(col, row, cols, rows, edge, style, width, color); err != nil {
		t.err = err
	}
	return t
}

// Column wraps a dom.Column. The column set of a table is fixed; only the
// properties of existing columns change.
type Column struct {
	c *dom.Column
}

func (c *Column) Node() *dom.Column { return c.c }

func (c *Column) Width(w unit.Unit) *Column     { c.c.Width = w; return c }
func (c *Column) Style(name string) *Column     { c.c.Style = name; return c }
func (c *Column) Shading(col dom.Color) *Column { c.c.Shading.Color = col; return c }

func (c *Column) Alignment(a dom.Alignment) *Column {
	c.c.Format.Alignment = a
	return c
}

// Row wraps a dom.Row.
type Row struct {
	r   *dom.Row
	err error
}

func (r *Row) Node() *dom.Row { return r.r }
func (r *Row) Err() error     { return r.err }

// Cell returns cell i, or nil.
func (r *Row) Cell(i int) *dom.Cell {
	if i < 0 || i >= len(r.r.Cells) {
		return nil
	}
	return r.r.Cells[i]
}

func (r *Row) Heading(v bool) *Row    { r.r.HeadingFormat = v; return r }
func (r *Row) Style(name string) *Row { r.r.Style = name; return r }

func (r *Row) Alignment(a dom.Alignment) *Row {
	r.r.Format.Alignment = a
	return r
}

func (r *Row) Bold(v bool) *Row {
	r.r.Format.Font.Bold = dom.Bool(v)
	return r
}

func (r *Row) Shading(c dom.Color) *Row {
	r.r.Shading.Color = c
	return r
}

func (r *Row) TopPadding(w unit.Unit) *Row    { r.r.TopPadding = unit.Ptr(w); return r }
func (r *Row) BottomPadding(w unit.Unit) *Row { r.r.BottomPadding = unit.Ptr(w); return r }
func (r *Row) Height(h unit.Unit) *Row        { r.r.Height = unit.Ptr(h); return r }

func (r *Row) VerticalAlignment(v dom.VerticalAlignment) *Row {
	r.r.VerticalAlignment = v
	return r
}

// MergeRight makes cell i span n further columns.
func (r *Row) MergeRight(i, n int) *Row {
	if r.err != nil {
		return r
	}
	if i < 0 || n < 0 || i+n >= len(r.r.Cells) {
		r.err = fmt.Errorf("%w: merge right %d+%d of %d", dom.ErrCellRange, i, n, len(r.r.Cells))
		return r
	}
	r.r.Cells[i].MergeRight = n
	return r
}

// MergeDown makes cell i span n further rows. The rows need not exist yet.
func (r *Row) MergeDown(i, n int) *Row {
	if r.err != nil {
		return r
	}
	if i < 0 || n < 0 || i >= len(r.r.Cells) {
		r.err = fmt.Errorf("%w: merge down cell %d", dom.ErrCellRange, i)
		return r
	}
	r.r.Cells[i].MergeDown = n
	return r
}
