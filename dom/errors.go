package dom

import "errors"

var (
	// ErrAlreadyAttached is returned when a node that already has a parent is
	// added to a second container.
	ErrAlreadyAttached = errors.New("node already attached to a parent")

	// ErrUnsupportedElementKind is returned when an inline element or block
	// outside the closed variant set reaches a clone or transfer.
	ErrUnsupportedElementKind = errors.New("unsupported element kind")

	// ErrUnsupportedRowValue is returned when a table row value has a type that
	// cannot be turned into cell content.
	ErrUnsupportedRowValue = errors.New("unsupported row value")

	// ErrNoCurrentTable is returned when a row is added before any table exists
	// in the current section.
	ErrNoCurrentTable = errors.New("no current table")

	// ErrUnresolvedBaseStyle is returned when a style's base chain names a style
	// that does not exist.
	ErrUnresolvedBaseStyle = errors.New("unresolved base style")

	ErrUnknownStyle   = errors.New("unknown style")
	ErrDuplicateStyle = errors.New("duplicate style")
	ErrStyleCycle     = errors.New("style inheritance cycle")
	ErrCellRange      = errors.New("cell range out of bounds")
	ErrNilNode        = errors.New("nil node")
)
