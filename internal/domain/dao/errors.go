package dao

import (
	"errors"
	"fmt"
)

// StoreErrorKind classifies a store failure.
type StoreErrorKind string

const (
	KindConnectivity StoreErrorKind = "connectivity"
	KindConstraint   StoreErrorKind = "constraint"
	KindIndex        StoreErrorKind = "index"
	KindUnknown      StoreErrorKind = "unknown"
)

// StoreError wraps a failure raised by the underlying store. It is never
// retried or suppressed by the core.
type StoreError struct {
	Op   string
	Kind StoreErrorKind
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err for operation op. It returns nil for a nil err and
// leaves an existing StoreError untouched.
func NewStoreError(op string, kind StoreErrorKind, err error) error {
	if err == nil {
		return nil
	}
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return err
	}
	return &StoreError{Op: op, Kind: kind, Err: err}
}

// IsStoreError reports whether err is a StoreError.
func IsStoreError(err error) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr)
}

// IsDuplicateKey reports whether err is a store constraint violation.
func IsDuplicateKey(err error) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr) && storeErr.Kind == KindConstraint
}
