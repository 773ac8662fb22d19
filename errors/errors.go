// Package errors provides error types and handling for resource publication.
package errors

import (
	"errors"
	"fmt"
)

// Error represents a publication operation error with context about the
// operation that failed. It wraps the underlying backend error with
// additional context for better debugging.
type Error struct {
	// Op is the operation that failed (e.g., "publishCollection", "unpublishResource")
	Op string

	// Container is the object-store container name (if applicable)
	Container string

	// Key is the target object key (if applicable)
	Key string

	// Err is the underlying error from the backend or other source
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Container != "" && e.Key != "" {
		return fmt.Sprintf("blobsync.%s %s/%s: %v", e.Op, e.Container, e.Key, e.Err)
	}
	if e.Container != "" {
		return fmt.Sprintf("blobsync.%s container %s: %v", e.Op, e.Container, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("blobsync.%s object %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("blobsync.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithContainer adds container context to an existing error.
func (e *Error) WithContainer(container string) *Error {
	e.Container = container
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewObjectError creates a new Error with container and key context.
func NewObjectError(op, container, key string, err error) *Error {
	return &Error{
		Op:        op,
		Container: container,
		Key:       key,
		Err:       err,
	}
}

// Sentinel errors for common publication failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrConfiguration indicates an invalid or incomplete target configuration.
	// Raised at construction time, never during publishing.
	ErrConfiguration = errors.New("blobsync: invalid configuration")

	// ErrSameContainer indicates that a collection's source and sink resolve
	// to the identical backend container
	ErrSameContainer = errors.New("blobsync: source and target use the same container")

	// ErrObjectNotFound indicates that the requested object does not exist
	ErrObjectNotFound = errors.New("blobsync: object not found")

	// ErrContainerNotFound indicates that the requested container does not exist
	ErrContainerNotFound = errors.New("blobsync: container not found")

	// ErrAccessDenied indicates that access to the backend resource is denied
	ErrAccessDenied = errors.New("blobsync: access denied")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("blobsync: invalid input")

	// ErrInvalidContainerName indicates that the container name is invalid
	ErrInvalidContainerName = errors.New("blobsync: invalid container name")

	// ErrInvalidObjectKey indicates that the object key is invalid
	ErrInvalidObjectKey = errors.New("blobsync: invalid object key")

	// ErrInvalidContentHash indicates that a resource's content hash is malformed
	ErrInvalidContentHash = errors.New("blobsync: invalid content hash")

	// ErrTranscode indicates that compressing a resource's content failed
	ErrTranscode = errors.New("blobsync: content transcoding failed")
)

// IsConfiguration checks if an error is a configuration-class error, including
// the same-container guard. This is a convenience function that handles both
// sentinel errors and wrapped errors.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration) || errors.Is(err, ErrSameContainer) ||
		errors.Is(err, ErrInvalidContainerName)
}

// IsSameContainer checks if an error indicates the same-container guard fired.
func IsSameContainer(err error) bool {
	return errors.Is(err, ErrSameContainer)
}

// IsObjectNotFound checks if an error indicates that an object was not found.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsObjectNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

// IsInvalidInput checks if an error indicates invalid input.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
