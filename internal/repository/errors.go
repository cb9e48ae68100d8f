package repository

import "errors"

// ErrNotFound is returned when a document does not exist, regardless of the
// backing store.
var ErrNotFound = errors.New("not found")
