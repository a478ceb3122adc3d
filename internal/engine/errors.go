package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/watchtower/internal/model"
)

// RuntimeError represents a failure detected while running a pass.
//
// Storage failures are reported to the actor as a toast and the pass goes
// on; they surface as RuntimeError only from operations that cannot proceed
// without the data (Prime, Sweep reading rules). Decode failures on Replace
// input are a caller bug and are always returned.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Collection is the affected collection, if any.
	Collection model.Collection

	// Err is the underlying cause.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeStoreRead indicates the snapshot store could not be read.
	ErrCodeStoreRead RuntimeErrorCode = "STORE_READ_FAILED"

	// ErrCodeStoreWrite indicates the snapshot store rejected a replace.
	ErrCodeStoreWrite RuntimeErrorCode = "STORE_WRITE_FAILED"

	// ErrCodeDecode indicates a snapshot is not valid JSON for its collection.
	ErrCodeDecode RuntimeErrorCode = "DECODE_FAILED"

	// ErrCodeUnknownCollection indicates an unrecognized collection name.
	ErrCodeUnknownCollection RuntimeErrorCode = "UNKNOWN_COLLECTION"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Collection != "" {
		msg += fmt.Sprintf(" (collection=%s)", e.Collection)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err is a store read or write failure.
func IsStorageError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeStoreRead || re.Code == ErrCodeStoreWrite
	}
	return false
}

// IsDecodeError reports whether err is a snapshot decode failure.
func IsDecodeError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeDecode
	}
	return false
}

func newStoreReadError(c model.Collection, err error) *RuntimeError {
	return &RuntimeError{Code: ErrCodeStoreRead, Message: "read snapshot", Collection: c, Err: err}
}

func newStoreWriteError(c model.Collection, err error) *RuntimeError {
	return &RuntimeError{Code: ErrCodeStoreWrite, Message: "replace snapshot", Collection: c, Err: err}
}

func newDecodeError(c model.Collection, err error) *RuntimeError {
	return &RuntimeError{Code: ErrCodeDecode, Message: "decode snapshot", Collection: c, Err: err}
}

func newUnknownCollectionError(c model.Collection) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeUnknownCollection,
		Message: fmt.Sprintf("unknown collection %q", string(c)),
	}
}
