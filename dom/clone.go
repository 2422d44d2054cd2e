package dom

import "fmt"

// CloneBlock returns a detached deep copy of b.
func CloneBlock(b Block) (Block, error) {
	switch v := b.(type) {
	case *Paragraph:
		return v.Clone()
	case *Table:
		return v.Clone()
	case *Image:
		return v.clone(), nil
	case *TextFrame:
		return v.Clone()
	case *Chart:
		return v.Clone(), nil
	case *PageBreak:
		return &PageBreak{}, nil
	case nil:
		return nil, fmt.Errorf("%w: block", ErrNilNode)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedElementKind, b)
	}
}

func cloneBlocks(parent any, src []Block) ([]Block, error) {
	if src == nil {
		return nil, nil
	}
	out := make([]Block, 0, len(src))
	for _, b := range src {
		c, err := CloneBlock(b)
		if err != nil {
			return nil, err
		}
		c.block().parent = parent
		out = append(out, c)
	}
	return out, nil
}

// Clone returns a detached deep copy of the paragraph.
func (p *Paragraph) Clone() (*Paragraph, error) {
	c := &Paragraph{Style: p.Style, Format: p.Format.Clone()}
	if err := cloneChildren(c, p.Elements, &c.Elements); err != nil {
		return nil, err
	}
	return c, nil
}

func (i *Image) clone() *Image {
	c := *i
	c.node = node{}
	return &c
}

// Clone returns a detached copy of the image.
func (i *Image) Clone() *Image { return i.clone() }

func (t *TextFrame) Clone() (*TextFrame, error) {
	c := &TextFrame{Shape: t.Shape}
	blocks, err := cloneBlocks(c, t.Blocks)
	if err != nil {
		return nil, err
	}
	c.Blocks = blocks
	return c, nil
}

func (c *Chart) Clone() *Chart {
	out := &Chart{Type: c.Type, Width: c.Width, Height: c.Height, Title: c.Title}
	out.Categories = append([]string(nil), c.Categories...)
	for _, s := range c.Series {
		out.Series = append(out.Series, Series{Name: s.Name, Values: append([]float64(nil), s.Values...)})
	}
	return out
}

// Clone returns a detached deep copy of the table, rows and cells included.
func (t *Table) Clone() (*Table, error) {
	c := &Table{
		Style:         t.Style,
		Format:        t.Format.Clone(),
		Borders:       t.Borders.clone(),
		Shading:       t.Shading.clone(),
		TopPadding:    clonePtr(t.TopPadding),
		BottomPadding: clonePtr(t.BottomPadding),
		LeftPadding:   clonePtr(t.LeftPadding),
		RightPadding:  clonePtr(t.RightPadding),
		LeftIndent:    clonePtr(t.LeftIndent),
	}
	for _, col := range t.columns {
		c.columns = append(c.columns, &Column{
			table:   c,
			Index:   col.Index,
			Width:   col.Width,
			Style:   col.Style,
			Format:  col.Format.Clone(),
			Shading: col.Shading.clone(),
		})
	}
	for _, row := range t.Rows {
		r := &Row{
			table:             c,
			Index:             row.Index,
			HeadingFormat:     row.HeadingFormat,
			Style:             row.Style,
			Format:            row.Format.Clone(),
			Shading:           row.Shading.clone(),
			Borders:           row.Borders.clone(),
			TopPadding:        clonePtr(row.TopPadding),
			BottomPadding:     clonePtr(row.BottomPadding),
			Height:            clonePtr(row.Height),
			VerticalAlignment: row.VerticalAlignment,
		}
		for _, cell := range row.Cells {
			nc := &Cell{
				row:               r,
				Column:            cell.Column,
				MergeRight:        cell.MergeRight,
				MergeDown:         cell.MergeDown,
				VerticalAlignment: cell.VerticalAlignment,
				Style:             cell.Style,
				Format:            cell.Format.Clone(),
				Shading:           cell.Shading.clone(),
				Borders:           cell.Borders.clone(),
			}
			blocks, err := cloneBlocks(nc, cell.Blocks)
			if err != nil {
				return nil, err
			}
			nc.Blocks = blocks
			r.Cells = append(r.Cells, nc)
		}
		c.Rows = append(c.Rows, r)
	}
	return c, nil
}

func (h *HeaderFooter) clone(s *Section) (*HeaderFooter, error) {
	c := &HeaderFooter{section: s, IsHeader: h.IsHeader, Style: h.Style, Format: h.Format.Clone()}
	blocks, err := cloneBlocks(c, h.Blocks)
	if err != nil {
		return nil, err
	}
	c.Blocks = blocks
	return c, nil
}

func (hf HeadersFooters) clone(s *Section) (HeadersFooters, error) {
	var out HeadersFooters
	var err error
	if out.Primary, err = hf.Primary.clone(s); err != nil {
		return out, err
	}
	if out.EvenPage, err = hf.EvenPage.clone(s); err != nil {
		return out, err
	}
	if out.FirstPage, err = hf.FirstPage.clone(s); err != nil {
		return out, err
	}
	return out, nil
}

// Clone returns a detached deep copy of the section.
func (s *Section) Clone() (*Section, error) {
	c := &Section{PageSetup: s.PageSetup}
	var err error
	if c.Headers, err = s.Headers.clone(c); err != nil {
		return nil, err
	}
	if c.Footers, err = s.Footers.clone(c); err != nil {
		return nil, err
	}
	if c.Blocks, err = cloneBlocks(c, s.Blocks); err != nil {
		return nil, err
	}
	return c, nil
}

// Clone returns a deep copy of the whole document.
func (d *Document) Clone() (*Document, error) {
	c := &Document{Info: d.Info, Styles: d.Styles.Clone(), DefaultPageSetup: d.DefaultPageSetup}
	for i, s := range d.Sections {
		cs, err := s.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone section %d: %w", i, err)
		}
		cs.document = c
		c.Sections = append(c.Sections, cs)
	}
	return c, nil
}
