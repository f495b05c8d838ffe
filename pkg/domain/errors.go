package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is matched by every construction-time validation failure.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrCorruptedData is matched when a stored payload cannot be decoded.
	ErrCorruptedData = errors.New("corrupted session data")

	// ErrStoreFailure is matched when a session operation fails in the underlying client.
	ErrStoreFailure = errors.New("session store failure")

	// ErrQuery is matched by every failure reported by a data client.
	ErrQuery = errors.New("query failed")
)

// ConfigurationError reports an invalid construction parameter.
type ConfigurationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// CorruptedDataError is returned by Read when the stored payload is not valid base64.
// The session should be treated as unusable.
type CorruptedDataError struct {
	SessionID string
	Err       error
}

func (e *CorruptedDataError) Error() string {
	return fmt.Sprintf("session %q: %v: %v", e.SessionID, ErrCorruptedData, e.Err)
}

func (e *CorruptedDataError) Unwrap() []error { return []error{ErrCorruptedData, e.Err} }

// StoreError wraps a client failure raised while serving a session operation.
// SessionID is empty for operations without a session scope (gc).
type StoreError struct {
	Op        string
	SessionID string
	Err       error
}

func (e *StoreError) Error() string {
	if e.SessionID == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s session %q: %v", e.Op, e.SessionID, e.Err)
}

func (e *StoreError) Unwrap() []error { return []error{ErrStoreFailure, e.Err} }

// QueryError is the error type data clients return for any failed statement.
type QueryError struct {
	Op    string
	Table string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *QueryError) Unwrap() []error { return []error{ErrQuery, e.Err} }

// NewQueryError wraps err unless it already is a *QueryError.
func NewQueryError(op, table string, err error) error {
	if err == nil {
		return nil
	}
	var qe *QueryError
	if errors.As(err, &qe) {
		return err
	}
	return &QueryError{Op: op, Table: table, Err: err}
}
