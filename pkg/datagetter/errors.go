package datagetter

import (
	"errors"
	"fmt"
)

// ErrorKind classifies resolution failures.
type ErrorKind string

const (
	// KindStoreAccess means the metadata store could not be read or the
	// query was rejected. It aborts a page resolution.
	KindStoreAccess ErrorKind = "store_access"

	// KindNoUsableType means a data getter declares no specific type.
	KindNoUsableType ErrorKind = "no_usable_type"

	// KindImplementationNotFound means the implementation name is not
	// registered.
	KindImplementationNotFound ErrorKind = "implementation_not_found"

	// KindConstruction means the implementation has no usable constructor
	// or its constructor failed.
	KindConstruction ErrorKind = "construction"

	// KindInvalidInput means a required identifier was empty.
	KindInvalidInput ErrorKind = "invalid_input"
)

// Error is a classified resolution error.
type Error struct {
	Kind ErrorKind `json:"kind"`

	// URI is the page or data getter the error is about.
	URI string `json:"uri,omitempty"`

	// Name is the implementation name, if one was resolved.
	Name string `json:"name,omitempty"`

	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	if e.URI != "" {
		msg += fmt.Sprintf(" (uri=%s", e.URI)
		if e.Name != "" {
			msg += fmt.Sprintf(", implementation=%s", e.Name)
		}
		msg += ")"
	} else if e.Name != "" {
		msg += fmt.Sprintf(" (implementation=%s)", e.Name)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNoUsableType)
// works for every no-usable-type error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is.
var (
	ErrStoreAccess            = &Error{Kind: KindStoreAccess, Message: "store access failed"}
	ErrNoUsableType           = &Error{Kind: KindNoUsableType, Message: "no useful type defined"}
	ErrImplementationNotFound = &Error{Kind: KindImplementationNotFound, Message: "implementation not found"}
	ErrConstruction           = &Error{Kind: KindConstruction, Message: "construction failed"}
	ErrInvalidInput           = &Error{Kind: KindInvalidInput, Message: "invalid input"}
)

// NewStoreAccessError wraps a store failure.
func NewStoreAccessError(uri string, err error) *Error {
	return &Error{Kind: KindStoreAccess, URI: uri, Message: "failed to read metadata store", Err: err}
}

// NewNoUsableTypeError reports a data getter without a specific type.
func NewNoUsableTypeError(uri string) *Error {
	return &Error{Kind: KindNoUsableType, URI: uri, Message: "no useful type defined"}
}

// NewImplementationNotFoundError reports an unregistered implementation.
func NewImplementationNotFoundError(uri, name string) *Error {
	return &Error{Kind: KindImplementationNotFound, URI: uri, Name: name, Message: "implementation not registered"}
}

// NewConstructionError reports a failed or impossible construction.
func NewConstructionError(uri, name, message string, err error) *Error {
	return &Error{Kind: KindConstruction, URI: uri, Name: name, Message: message, Err: err}
}

// NewInvalidInputError reports an empty or malformed argument.
func NewInvalidInputError(message string) *Error {
	return &Error{Kind: KindInvalidInput, Message: message}
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsStoreAccess reports whether err is a store access error.
func IsStoreAccess(err error) bool { return KindOf(err) == KindStoreAccess }

// IsNoUsableType reports whether err is a no-usable-type error.
func IsNoUsableType(err error) bool { return KindOf(err) == KindNoUsableType }

// IsImplementationNotFound reports whether err is an implementation-not-found error.
func IsImplementationNotFound(err error) bool { return KindOf(err) == KindImplementationNotFound }

// IsConstruction reports whether err is a construction error.
func IsConstruction(err error) bool { return KindOf(err) == KindConstruction }

// IsInvalidInput reports whether err is an invalid input error.
func IsInvalidInput(err error) bool { return KindOf(err) == KindInvalidInput }

// IsLinkError reports whether err only concerns a single data getter link.
// Page resolution skips such links and carries on.
func IsLinkError(err error) bool {
	switch KindOf(err) {
	case KindNoUsableType, KindImplementationNotFound, KindConstruction:
		return true
	default:
		return false
	}
}
