// transfer/errors.go
package transfer

import "fmt"

// ValidationError reports a bad request before any state is touched.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError reports an unknown device or person id.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ConflictError reports a concurrent modification detected by the storage
// layer (duplicate key on the assignment's unique device index, or a
// transaction write conflict).
type ConflictError struct {
	Err error
}

func (e *ConflictError) Error() string { return "concurrent modification: " + e.Err.Error() }
func (e *ConflictError) Unwrap() error { return e.Err }

// StorageError wraps any other persistence failure. The transaction is
// rolled back before this surfaces.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string { return "storage failure: " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }
