package interfaces

import "errors"

var (
	// ErrNotFound is returned when a document does not exist, and also when
	// a conditional write matched nothing because the document had already
	// left the expected state.
	ErrNotFound = errors.New("not found")
)
