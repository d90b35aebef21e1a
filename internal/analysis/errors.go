package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput reports a missing dataset, an empty seller list or
	// figures that overflow to a non-finite value.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidConfiguration reports a missing or unknown strategy.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrUnresolvedReference reports a purchase record or line item that
	// points at a seller or SKU absent from the dataset.
	ErrUnresolvedReference = errors.New("unresolved reference")
)

type ReferenceKind string

const (
	RefSeller  ReferenceKind = "seller"
	RefProduct ReferenceKind = "product"
)

// ReferenceError carries the key that failed to resolve and the index of the
// purchase record it appeared in.
type ReferenceError struct {
	Kind   ReferenceKind
	Key    string
	Record int
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s: purchase record %d references unknown %s %q",
		ErrUnresolvedReference, e.Record, e.Kind, e.Key)
}

func (e *ReferenceError) Unwrap() error {
	return ErrUnresolvedReference
}
