package errors

import "fmt"

// ErrorCode represents a lectern error code.
type ErrorCode string

const (
	ErrStorageUnavailable  ErrorCode = "STORAGE_UNAVAILABLE"  // storage medium could not be opened
	ErrStorageIO           ErrorCode = "STORAGE_IO"           // read/write failed after open
	ErrInvalidDocument     ErrorCode = "INVALID_DOCUMENT"     // empty or unrecognized document content
	ErrNotFound            ErrorCode = "NOT_FOUND"            // record does not exist
	ErrProgressUnavailable ErrorCode = "PROGRESS_UNAVAILABLE" // percentage function missing or failed
	ErrLookupUnavailable   ErrorCode = "LOOKUP_UNAVAILABLE"   // no resolution source reachable
	ErrSuperseded          ErrorCode = "SUPERSEDED"           // result arrived after a newer lookup
)

// Error is a structured error with a code and optional details.
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]any
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewStorageUnavailable wraps a failure to open the storage medium.
func NewStorageUnavailable(err error) *Error {
	msg := "storage medium could not be opened"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Code:    ErrStorageUnavailable,
		Message: msg,
		Cause:   err,
	}
}

// NewStorageIO wraps a read/write failure against an open store.
func NewStorageIO(op string, err error) *Error {
	msg := op
	if err != nil {
		msg = fmt.Sprintf("%s: %s", op, err.Error())
	}
	return &Error{
		Code:    ErrStorageIO,
		Message: msg,
		Details: map[string]any{"op": op},
		Cause:   err,
	}
}

// NewInvalidDocument creates an error for rejected import content.
func NewInvalidDocument(reason string) *Error {
	return &Error{
		Code:    ErrInvalidDocument,
		Message: reason,
	}
}

// NewNotFound creates an error for a missing record.
func NewNotFound(collection, id string) *Error {
	return &Error{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s record not found: %s", collection, id),
		Details: map[string]any{"collection": collection, "id": id},
	}
}

// NewProgressUnavailable creates the fail-soft progress error. Callers keep
// their previous progress value when they see this code.
func NewProgressUnavailable(reason string) *Error {
	return &Error{
		Code:    ErrProgressUnavailable,
		Message: reason,
	}
}

// NewLookupUnavailable creates an error for a word that could not be
// resolved by any source. Distinct from a legitimate not-found result.
func NewLookupUnavailable(word string, err error) *Error {
	return &Error{
		Code:    ErrLookupUnavailable,
		Message: fmt.Sprintf("no translation source reachable for %q", word),
		Details: map[string]any{"word": word},
		Cause:   err,
	}
}

// NewSuperseded creates an error for a lookup result that resolved after a
// newer lookup was issued.
func NewSuperseded(word string, generation, latest int64) *Error {
	return &Error{
		Code:    ErrSuperseded,
		Message: fmt.Sprintf("lookup for %q superseded (generation %d, latest %d)", word, generation, latest),
		Details: map[string]any{"word": word, "generation": generation, "latest": latest},
	}
}

// Is checks if an error is a lectern Error with the given code.
func Is(err error, code ErrorCode) bool {
	if lErr, ok := err.(*Error); ok {
		return lErr.Code == code
	}
	return false
}
