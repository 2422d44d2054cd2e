package dom

import "fmt"

// node carries the ownership link shared by all tree nodes.
type node struct {
	parent any
}

// Parent returns the owning container, or nil for a detached node.
func (n *node) Parent() any { return n.parent }

// Attached reports whether the node already belongs to a container.
func (n *node) Attached() bool { return n.parent != nil }

func (n *node) attach(parent any, what any) error {
	if n.parent != nil {
		return fmt.Errorf("%w: %T", ErrAlreadyAttached, what)
	}
	n.parent = parent
	return nil
}

// ElementContainer accepts inline elements.
type ElementContainer interface {
	Add(e Element) error
}

// BlockContainer accepts blocks.
type BlockContainer interface {
	AddBlock(b Block) error
}

func attachElement(parent any, e Element) error {
	if e == nil {
		return fmt.Errorf("%w: element", ErrNilNode)
	}
	return e.inline().attach(parent, e)
}

func attachBlock(parent any, b Block) error {
	if b == nil {
		return fmt.Errorf("%w: block", ErrNilNode)
	}
	return b.block().attach(parent, b)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Bool returns a pointer to b, for optional boolean properties.
func Bool(b bool) *bool { return &b }
