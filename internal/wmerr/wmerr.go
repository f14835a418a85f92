// Package wmerr defines the error taxonomy the core uses to classify
// failures by recovery policy rather than by Go type. Callers switch on
// Kind to decide whether to log at warn/error/debug, retry, or abort.
package wmerr

import "fmt"

// Kind classifies an Error by its recovery policy.
type Kind int

const (
	// InvalidInput means the caller passed nonsense (an entity not on
	// the strip, an out-of-range index). Recovered locally: the
	// operation becomes a no-op and a warning is logged.
	InvalidInput Kind = iota
	// NotFound means an OS-backed entity vanished between steps.
	// Recovered by re-querying next tick or dropping the pending op.
	NotFound
	// PermissionDenied means the platform port refused a capability
	// call. Fatal at startup, non-fatal later (log, retry once).
	PermissionDenied
	// InvalidConfig means a config document failed to parse or
	// validate. The current config is retained.
	InvalidConfig
	// InvalidWindow means a constructed Window failed role/subrole
	// validation. Dropped silently.
	InvalidWindow
	// Fatal means the event channel disconnected; the pump emits Exit.
	Fatal
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case NotFound:
		return "not_found"
	case PermissionDenied:
		return "permission_denied"
	case InvalidConfig:
		return "invalid_config"
	case InvalidWindow:
		return "invalid_window"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error is the taxonomy carrier: Kind drives recovery, Op names the
// operation that failed, and Err optionally wraps an underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an *Error with no wrapped cause.
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf("%s", msg)}
}

// Wrap constructs an *Error that wraps an existing error.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Is reports whether err is a *Error of the given Kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
