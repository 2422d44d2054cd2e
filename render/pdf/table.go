package pdf

import (
	"context"

	"github.com/wudi/docez/dom"
	"github.com/wudi/docez/render"
	"github.com/wudi/docez/unit"
)

// defaultCellPadding is the left and right padding of cells without an
// explicit one.
const defaultCellPadding = 1.2 * unit.Millimeter

type padding struct{ top, right, bottom, left float64 }

func (s *state) padding(t *dom.Table, row *dom.Row) padding {
	p := padding{
		left:  defaultCellPadding.Points(),
		right: defaultCellPadding.Points(),
	}
	if t.LeftPadding != nil {
		p.left = t.LeftPadding.Points()
	}
	if t.RightPadding != nil {
		p.right = t.RightPadding.Points()
	}
	p.top = dom.Length(t.TopPadding).Points()
	p.bottom = dom.Length(t.BottomPadding).Points()
	if row.TopPadding != nil {
		p.top = row.TopPadding.Points()
	}
	if row.BottomPadding != nil {
		p.bottom = row.BottomPadding.Points()
	}
	return p
}

// columnEdges returns the x positions of the column boundaries.
func (s *state) columnEdges(t *dom.Table, b box) []float64 {
	edges := make([]float64, t.NumColumns()+1)
	edges[0] = b.x + dom.Length(t.LeftIndent).Points()
	for i, c := range t.Columns() {
		edges[i+1] = edges[i] + c.Width.Points()
	}
	return edges
}

// span clamps the merge counts of c to the table.
func span(t *dom.Table, c *dom.Cell) (right, down int) {
	right = min(max(c.MergeRight, 0), t.NumColumns()-1-c.Column)
	down = min(max(c.MergeDown, 0), len(t.Rows)-1-c.Row().Index)
	return right, down
}

// cellFrame layers the table, column, row and cell formats.
func cellFrame(t *dom.Table, c *dom.Cell, fr frame) frame {
	row := c.Row()
	col := t.Column(c.Column)
	base := fr.base
	for _, name := range []string{t.Style, col.Style, row.Style, c.Style} {
		if name != "" {
			base = name
		}
	}
	layers := append(append([]dom.ParagraphFormat(nil), fr.layers...), t.Format, col.Format, row.Format, c.Format)
	return frame{base: base, layers: layers}
}

// rowHeights sizes every row. Content of cells merged down grows the last
// row they cover.
func (s *state) rowHeights(t *dom.Table, fr frame, edges []float64) []float64 {
	heights := make([]float64, len(t.Rows))
	type tall struct {
		first, last int
		h           float64
	}
	var merged []tall
	for i, row := range t.Rows {
		pad := s.padding(t, row)
		h := 0.0
		for _, c := range row.Cells {
			right, down := span(t, c)
			w := edges[c.Column+right+1] - edges[c.Column] - pad.left - pad.right
			ch := s.measure(c.Blocks, cellFrame(t, c, fr), w) + pad.top + pad.bottom
			if down > 0 {
				merged = append(merged, tall{first: i, last: i + down, h: ch})
				continue
			}
			h = max(h, ch)
		}
		if row.Height != nil {
			h = max(h, row.Height.Points())
		}
		heights[i] = h
	}
	for _, m := range merged {
		var sum float64
		for i := m.first; i <= m.last; i++ {
			sum += heights[i]
		}
		if m.h > sum {
			heights[m.last] += m.h - sum
		}
	}
	return heights
}

func (s *state) table(ctx context.Context, t *dom.Table, fr frame, b box) error {
	if t.NumColumns() == 0 || len(t.Rows) == 0 {
		return nil
	}
	f := s.f
	edges := s.columnEdges(t, b)
	heights := s.rowHeights(t, fr, edges)
	covered := make(map[[2]int]bool)
	for _, row := range t.Rows {
		for _, c := range row.Cells {
			right, down := span(t, c)
			for r := row.Index; r <= row.Index+down; r++ {
				for col := c.Column; col <= c.Column+right; col++ {
					if r != row.Index || col != c.Column {
						covered[[2]int{r, col}] = true
					}
				}
			}
		}
	}
	heading := 0
	for heading < len(t.Rows) && t.Rows[heading].HeadingFormat {
		heading++
	}

	_, pageH := f.GetPageSize()
	_, _, _, bottom := f.GetMargins()
	auto, margin := f.GetAutoPageBreak()
	f.SetAutoPageBreak(false, 0)
	defer f.SetAutoPageBreak(auto, margin)

	y := f.GetY()
	for i, row := range t.Rows {
		if err := render.Canceled(ctx); err != nil {
			return err
		}
		if s.inFrame == 0 && auto && y+heights[i] > pageH-bottom && !s.atPageTop() {
			f.SetAutoPageBreak(auto, margin)
			f.AddPage()
			f.SetAutoPageBreak(false, 0)
			y = f.GetY()
			if i >= heading {
				for h := 0; h < heading; h++ {
					if err := s.row(ctx, t, t.Rows[h], fr, edges, heights, covered, y); err != nil {
						return err
					}
					y += heights[h]
				}
			}
		}
		if err := s.row(ctx, t, row, fr, edges, heights, covered, y); err != nil {
			return err
		}
		y += heights[i]
	}
	f.SetXY(b.x, y)
	return nil
}

func (s *state) row(ctx context.Context, t *dom.Table, row *dom.Row, fr frame, edges, heights []float64,
	covered map[[2]int]bool, y float64) error {
	f := s.f
	pad := s.padding(t, row)
	for _, c := range row.Cells {
		if covered[[2]int{row.Index, c.Column}] {
			continue
		}
		right, down := span(t, c)
		x, w := edges[c.Column], edges[c.Column+right+1]-edges[c.Column]
		h := 0.0
		for r := row.Index; r <= row.Index+down; r++ {
			h += heights[r]
		}

		if sh := cellShading(t, c); sh.IsVisible() {
			col := sh.Color
			f.SetFillColor(int(col.R), int(col.G), int(col.B))
			f.Rect(x, y, w, h, "F")
		}

		cf := cellFrame(t, c, fr)
		inner := w - pad.left - pad.right
		content := s.measure(c.Blocks, cf, inner)
		top := y + pad.top
		valign := c.VerticalAlignment
		if valign == dom.VAlignTop {
			valign = row.VerticalAlignment
		}
		switch free := h - pad.top - pad.bottom - content; {
		case free <= 0:
		case valign == dom.VAlignCenter:
			top += free / 2
		case valign == dom.VAlignBottom:
			top += free
		}
		f.SetXY(x+pad.left, top)
		s.inFrame++
		err := s.blocks(ctx, c.Blocks, cf, box{x: x + pad.left, w: inner})
		s.inFrame--
		if err != nil {
			return err
		}

		bd := t.Borders.Merge(row.Borders).Merge(c.Borders)
		for _, e := range []struct {
			edge           dom.Edge
			x1, y1, x2, y2 float64
		}{
			{dom.EdgeTop, x, y, x + w, y},
			{dom.EdgeRight, x + w, y, x + w, y + h},
			{dom.EdgeBottom, x, y + h, x + w, y + h},
			{dom.EdgeLeft, x, y, x, y + h},
		} {
			if edge := bd.Edge(e.edge); edge.Shown() {
				s.setLine(edge)
				f.Line(e.x1, e.y1, e.x2, e.y2)
			}
		}
		resetLine(f)
	}
	return nil
}

func cellShading(t *dom.Table, c *dom.Cell) dom.Shading {
	for _, sh := range []dom.Shading{c.Shading, c.Row().Shading, t.Column(c.Column).Shading} {
		if sh.IsVisible() {
			return sh
		}
	}
	return t.Shading
}
