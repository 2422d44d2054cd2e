package text

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/wudi/docez/dom"
)

// grid is the computed layout of a table: which cell owns each slot, the
// content width of every column and the wrapped text of every cell.
type grid struct {
	t          *dom.Table
	owner      [][]*dom.Cell
	colWidths  []int
	rowHeights []int
	lines      map[*dom.Cell][]string
}

func (p *printer) table(t *dom.Table, base string) string {
	if t.NumColumns() == 0 || len(t.Rows) == 0 {
		return ""
	}
	g := &grid{
		t:          t,
		owner:      make([][]*dom.Cell, len(t.Rows)),
		colWidths:  make([]int, t.NumColumns()),
		rowHeights: make([]int, len(t.Rows)),
		lines:      make(map[*dom.Cell][]string),
	}
	for i := range g.owner {
		g.owner[i] = make([]*dom.Cell, t.NumColumns())
	}
	for i, c := range t.Columns() {
		g.colWidths[i] = max(p.columns(c.Width)-3, 1)
	}
	for _, row := range t.Rows {
		for _, c := range row.Cells {
			if g.owner[row.Index][c.Column] != nil {
				continue
			}
			right, down := spans(t, c)
			for r := 0; r <= down; r++ {
				for col := 0; col <= right; col++ {
					g.owner[row.Index+r][c.Column+col] = c
				}
			}
			g.lines[c] = p.cellLines(c.Blocks, cellBase(t, c, base), g.spanWidth(c.Column, right))
		}
	}
	for r := range t.Rows {
		g.rowHeights[r] = 1
		for col := range t.Columns() {
			c := g.owner[r][col]
			if c != nil && c.Row().Index == r && c.Column == col {
				_, down := spans(t, c)
				if down == 0 {
					g.rowHeights[r] = max(g.rowHeights[r], len(g.lines[c]))
				}
			}
		}
	}
	// Text of cells merged down spills into the rows they cover.
	for c, lines := range g.lines {
		_, down := spans(t, c)
		first := c.Row().Index
		total := 0
		for r := first; r <= first+down; r++ {
			total += g.rowHeights[r]
		}
		if extra := len(lines) - total; extra > 0 {
			g.rowHeights[first+down] += extra
		}
	}
	return g.render()
}

func spans(t *dom.Table, c *dom.Cell) (right, down int) {
	right = min(max(c.MergeRight, 0), t.NumColumns()-1-c.Column)
	down = min(max(c.MergeDown, 0), len(t.Rows)-1-c.Row().Index)
	return right, down
}

func cellBase(t *dom.Table, c *dom.Cell, base string) string {
	for _, name := range []string{c.Style, c.Row().Style, t.Column(c.Column).Style, t.Style} {
		if name != "" {
			return name
		}
	}
	return base
}

func (g *grid) spanWidth(col, right int) int {
	w := 0
	for i := col; i <= col+right; i++ {
		w += g.colWidths[i]
	}
	return w + right*3
}

func (p *printer) cellLines(blocks []dom.Block, base string, width int) []string {
	var out []string
	for _, b := range blocks {
		switch v := b.(type) {
		case *dom.Paragraph:
			for _, part := range strings.Split(p.inline(v, base, width), "\n") {
				out = append(out, wrap(part, width)...)
			}
		case *dom.Image:
			out = append(out, wrap(imageLabel(v), width)...)
		case *dom.Chart:
			out = append(out, wrap("[chart: "+v.Title+"]", width)...)
		case *dom.TextFrame:
			out = append(out, p.cellLines(v.Blocks, base, width)...)
		}
	}
	return out
}

func (g *grid) render() string {
	var sb strings.Builder
	sb.WriteString(g.rule(-1))
	sb.WriteByte('\n')
	for r := range g.t.Rows {
		for line := 0; line < g.rowHeights[r]; line++ {
			sb.WriteString(g.content(r, line))
			sb.WriteByte('\n')
		}
		sb.WriteString(g.rule(r))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// rule draws the horizontal line below row r, or the top line for r == -1.
func (g *grid) rule(r int) string {
	var sb strings.Builder
	sb.WriteByte('+')
	last := len(g.t.Rows) - 1
	for col, w := range g.colWidths {
		fill := "-"
		if r >= 0 && r < last && g.owner[r][col] == g.owner[r+1][col] {
			fill = " "
		}
		sb.WriteString(strings.Repeat(fill, w+2))
		if col < len(g.colWidths)-1 {
			joint := "+"
			if r >= 0 && r < last &&
				g.owner[r][col] == g.owner[r][col+1] && g.owner[r+1][col] == g.owner[r+1][col+1] {
				joint = "-"
				if g.owner[r][col] == g.owner[r+1][col] {
					joint = " "
				}
			}
			sb.WriteString(joint)
		}
	}
	sb.WriteByte('+')
	return sb.String()
}

// content draws display line n of row r.
func (g *grid) content(r, n int) string {
	var sb strings.Builder
	sb.WriteByte('|')
	for col := 0; col < len(g.colWidths); {
		c := g.owner[r][col]
		if c == nil || c.Column != col {
			col++
			continue
		}
		right, _ := spans(g.t, c)
		// Lines of a cell continue across the rows it covers.
		offset := n
		for prev := c.Row().Index; prev < r; prev++ {
			offset += g.rowHeights[prev]
		}
		text := ""
		if lines := g.lines[c]; offset < len(lines) {
			text = lines[offset]
		}
		sb.WriteByte(' ')
		sb.WriteString(runewidth.FillRight(text, g.spanWidth(col, right)))
		sb.WriteByte(' ')
		col += right + 1
		if col < len(g.colWidths) {
			sb.WriteByte('|')
		}
	}
	sb.WriteByte('|')
	return sb.String()
}
