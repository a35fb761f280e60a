package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	err := &Error{
		Code:    ErrNotFound,
		Message: "documents record not found: 01ABC",
	}

	expected := "NOT_FOUND: documents record not found: 01ABC"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewStorageUnavailable_WrapsCause(t *testing.T) {
	cause := fmt.Errorf("unable to open database file")
	err := NewStorageUnavailable(cause)

	if err.Code != ErrStorageUnavailable {
		t.Errorf("Code = %q, want %q", err.Code, ErrStorageUnavailable)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestNewStorageIO(t *testing.T) {
	cause := fmt.Errorf("disk I/O error")
	err := NewStorageIO("put documents", cause)

	if err.Code != ErrStorageIO {
		t.Errorf("Code = %q, want %q", err.Code, ErrStorageIO)
	}
	if err.Details["op"] != "put documents" {
		t.Errorf("Details[op] = %v, want %q", err.Details["op"], "put documents")
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("documents", "book-1")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Details["collection"] != "documents" {
		t.Errorf("Details[collection] = %v, want %q", err.Details["collection"], "documents")
	}
	if err.Details["id"] != "book-1" {
		t.Errorf("Details[id] = %v, want %q", err.Details["id"], "book-1")
	}
}

func TestNewLookupUnavailable(t *testing.T) {
	err := NewLookupUnavailable("running", fmt.Errorf("connection refused"))

	if err.Code != ErrLookupUnavailable {
		t.Errorf("Code = %q, want %q", err.Code, ErrLookupUnavailable)
	}
	if err.Details["word"] != "running" {
		t.Errorf("Details[word] = %v, want %q", err.Details["word"], "running")
	}
}

func TestNewSuperseded(t *testing.T) {
	err := NewSuperseded("cat", 3, 5)

	if err.Code != ErrSuperseded {
		t.Errorf("Code = %q, want %q", err.Code, ErrSuperseded)
	}
	if err.Details["generation"] != int64(3) {
		t.Errorf("Details[generation] = %v, want 3", err.Details["generation"])
	}
	if err.Details["latest"] != int64(5) {
		t.Errorf("Details[latest] = %v, want 5", err.Details["latest"])
	}
}

func TestIs(t *testing.T) {
	err := NewProgressUnavailable("percentage function not available")

	if !Is(err, ErrProgressUnavailable) {
		t.Error("Is(err, ErrProgressUnavailable) = false, want true")
	}
	if Is(err, ErrNotFound) {
		t.Error("Is(err, ErrNotFound) = true, want false")
	}
	if Is(fmt.Errorf("plain error"), ErrNotFound) {
		t.Error("Is(plain error, ErrNotFound) = true, want false")
	}
	if Is(nil, ErrNotFound) {
		t.Error("Is(nil, ErrNotFound) = true, want false")
	}
}
