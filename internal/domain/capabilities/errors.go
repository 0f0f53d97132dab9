package capabilities

import (
	"errors"
	"fmt"
)

// Kind is the stable category of a bridge error. Only the kind crosses the
// sandbox boundary; causes stay on the host.
type Kind int

const (
	// KindNotFound means the name is absent from the table.
	KindNotFound Kind = iota + 1
	// KindPermissionDenied means the requested intent is not allowed.
	KindPermissionDenied
	// KindUnsupported means the operation is not part of the bridge contract.
	KindUnsupported
	// KindProcessingFailure means the processor rejected its input.
	KindProcessingFailure
	// KindInternal means the capability state can no longer be trusted.
	KindInternal
	// KindDuplicateName means a name was registered twice.
	KindDuplicateName
	// KindSealed means the table was already sealed.
	KindSealed
	// KindInvalidName means the name cannot be addressed as a path element.
	KindInvalidName
	// KindClosed means the handle was already closed.
	KindClosed
	// KindCancelled means the context ended before the request reached the
	// processor. The capability state is untouched.
	KindCancelled
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindPermissionDenied:
		return "permission denied"
	case KindUnsupported:
		return "unsupported"
	case KindProcessingFailure:
		return "processing failure"
	case KindInternal:
		return "internal error"
	case KindDuplicateName:
		return "duplicate name"
	case KindSealed:
		return "table sealed"
	case KindInvalidName:
		return "invalid name"
	case KindClosed:
		return "handle closed"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Sentinel errors for errors.Is. They match any *Error of the same kind.
var (
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrPermissionDenied  = &Error{Kind: KindPermissionDenied}
	ErrUnsupported       = &Error{Kind: KindUnsupported}
	ErrProcessingFailure = &Error{Kind: KindProcessingFailure}
	ErrInternal          = &Error{Kind: KindInternal}
	ErrDuplicateName     = &Error{Kind: KindDuplicateName}
	ErrSealed            = &Error{Kind: KindSealed}
	ErrInvalidName       = &Error{Kind: KindInvalidName}
	ErrClosed            = &Error{Kind: KindClosed}
	ErrCancelled         = &Error{Kind: KindCancelled}
)

// Error is the error type returned by every bridge operation.
type Error struct {
	Cause error
	Op    string // operation, e.g. "open", "write", "rename"
	Name  string // capability name, if any
	Kind  Kind
}

// NewError creates a new bridge error.
func NewError(kind Kind, op, name string, cause error) *Error {
	return &Error{
		Kind:  kind,
		Op:    op,
		Name:  name,
		Cause: cause,
	}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	switch {
	case e.Op != "" && e.Name != "":
		msg = fmt.Sprintf("%s %s: %s", e.Op, e.Name, msg)
	case e.Op != "":
		msg = fmt.Sprintf("%s: %s", e.Op, msg)
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors of the same kind so callers can compare against the
// package sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of err, or 0 if err is not a bridge error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
