package store

import "fmt"

// Code identifies the kind of engine failure. Values are stable.
type Code string

const (
	CodeStorageUnavailable  Code = "STORAGE_API_NOT_SUPPORTED"
	CodeNotInitialized      Code = "STORAGE_API_NOT_INITIALIZED"
	CodeStoreNotInitialized Code = "STORE_NOT_INITIALIZED"
	CodeNotFound            Code = "OBJECT_NOT_FOUND"
)

// Error is the payload of every engine failure.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return "store: " + string(e.Code)
	}
	return fmt.Sprintf("store: %s: %s", e.Code, e.Message)
}

// Is matches any *Error with the same code, so errors.Is(err, ErrNotFound)
// holds regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

var (
	// ErrStorageUnavailable is returned when the substrate cannot be used.
	ErrStorageUnavailable = &Error{
		Code:    CodeStorageUnavailable,
		Message: "The storage API is not supported",
	}

	// ErrNotInitialized is returned when Init has not succeeded.
	ErrNotInitialized = &Error{
		Code:    CodeNotInitialized,
		Message: "The storage engine has not been initialized",
	}

	// ErrStoreNotInitialized is returned when a type has not been registered.
	ErrStoreNotInitialized = &Error{Code: CodeStoreNotInitialized}

	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = &Error{Code: CodeNotFound}
)

func storeNotInitialized(typ string) *Error {
	return &Error{
		Code:    CodeStoreNotInitialized,
		Message: fmt.Sprintf("The object store %s has not been initialized", typ),
	}
}

func notFound(id string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("The object store has no item with %s", id),
	}
}
