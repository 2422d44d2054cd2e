package dom

import "fmt"

// CloneElement returns a detached deep copy of e. Containers are copied
// through the same dispatch, so a nested element outside the known kinds
// fails the whole copy.
func CloneElement(e Element) (Element, error) {
	switch v := e.(type) {
	case *Text:
		return &Text{Content: v.Content}, nil
	case *FormattedText:
		c := &FormattedText{Style: v.Style, Font: v.Font.clone()}
		if err := cloneChildren(c, v.Elements, &c.Elements); err != nil {
			return nil, err
		}
		return c, nil
	case *Hyperlink:
		c := &Hyperlink{Name: v.Name, Type: v.Type, Font: v.Font.clone()}
		if err := cloneChildren(c, v.Elements, &c.Elements); err != nil {
			return nil, err
		}
		return c, nil
	case *LineBreak:
		return &LineBreak{}, nil
	case *Tab:
		return &Tab{}, nil
	case *BookmarkField:
		return &BookmarkField{Name: v.Name}, nil
	case *Image:
		return v.clone(), nil
	case *Character:
		return &Character{Symbol: v.Symbol, Count: v.Count}, nil
	case *PageField:
		return &PageField{Format: v.Format}, nil
	case *NumPagesField:
		return &NumPagesField{Format: v.Format}, nil
	case *PageRefField:
		return &PageRefField{Name: v.Name, Format: v.Format}, nil
	case *SectionField:
		return &SectionField{Format: v.Format}, nil
	case *SectionPagesField:
		return &SectionPagesField{Format: v.Format}, nil
	case *DateField:
		return &DateField{Format: v.Format}, nil
	case *InfoField:
		return &InfoField{Name: v.Name}, nil
	case *Footnote:
		c := &Footnote{Reference: v.Reference, Format: v.Format.Clone()}
		for _, b := range v.Blocks {
			cb, err := CloneBlock(b)
			if err != nil {
				return nil, err
			}
			cb.block().parent = c
			c.Blocks = append(c.Blocks, cb)
		}
		return c, nil
	case nil:
		return nil, fmt.Errorf("%w: element", ErrNilNode)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedElementKind, e)
	}
}

func cloneChildren(parent any, src []Element, dst *[]Element) error {
	for _, e := range src {
		c, err := CloneElement(e)
		if err != nil {
			return err
		}
		c.inline().parent = parent
		*dst = append(*dst, c)
	}
	return nil
}

// Transfer appends a copy of every element of src to dst, in order. src is
// left untouched. On error the copies appended so far stay in dst.
func Transfer(src []Element, dst ElementContainer) error {
	for i, e := range src {
		c, err := CloneElement(e)
		if err != nil {
			return fmt.Errorf("transfer element %d: %w", i, err)
		}
		if err := dst.Add(c); err != nil {
			return fmt.Errorf("transfer element %d: %w", i, err)
		}
	}
	return nil
}
