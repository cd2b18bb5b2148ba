package document

import (
	"errors"
	"fmt"
)

// ErrProtectedSection is returned on any attempt to delete section 0.
var ErrProtectedSection = errors.New("section 0 is the title area and cannot be deleted")

// ValidationError reports a missing or empty required field. It is a
// caller mistake: the store is left untouched and no event is emitted.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// RangeError reports a section index outside the valid range for the
// requested operation.
type RangeError struct {
	Index int
	Len   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("section index %d out of range for document with %d sections", e.Index, e.Len)
}
