package entities

import (
	"errors"
	"fmt"
)

// ErrItemNotFound is returned when a cached item id does not exist.
var ErrItemNotFound = errors.New("list item not found")

// StorageError wraps a failure of the local persistence layer.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err as a StorageError for op. It returns nil for a
// nil err, and passes through errors that already are storage errors or
// ErrItemNotFound.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) || errors.Is(err, ErrItemNotFound) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
