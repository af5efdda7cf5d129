package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in an invocation the error occurred
type Phase string

const (
	PhaseHost      Phase = "host"      // capability call reported a failure
	PhaseEncode    Phase = "encode"    // guest value to wire shape
	PhaseDecode    Phase = "decode"    // wire shape to guest value
	PhaseLifetime  Phase = "lifetime"  // resource handle ownership
	PhaseDispatch  Phase = "dispatch"  // entry point registration and invocation
	PhaseTransport Phase = "transport" // envelope exchange with the host
)

// Kind is the unified error category every capability error maps onto.
// The set is closed: adding a kind means updating every mapping table.
type Kind uint8

const (
	KindUnauthorized Kind = iota
	KindMalformed
	KindNotFound
	KindTimeout
	KindPermissionDenied
	KindLimitExceeded
	KindFailedPrecondition
	KindCancelled
	KindInternal
	KindOther

	kindCount
)

// KindInvalidArgument is an alias; both names describe rejected input.
const KindInvalidArgument = KindMalformed

var kindNames = [...]string{
	KindUnauthorized:       "unauthorized",
	KindMalformed:          "malformed",
	KindNotFound:           "not_found",
	KindTimeout:            "timeout",
	KindPermissionDenied:   "permission_denied",
	KindLimitExceeded:      "limit_exceeded",
	KindFailedPrecondition: "failed_precondition",
	KindCancelled:          "cancelled",
	KindInternal:           "internal",
	KindOther:              "other",
}

var _ = [1]struct{}{}[len(kindNames)-int(kindCount)]

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Kinds returns every unified kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, kindCount)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// Error is the structured error type returned by every adapter
type Error struct {
	Cause      error
	Phase      Phase
	Kind       Kind
	Capability string
	Op         string
	Detail     string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(e.Kind.String())

	if e.Capability != "" {
		b.WriteString(" in ")
		b.WriteString(e.Capability)
		if e.Op != "" {
			b.WriteByte('.')
			b.WriteString(e.Op)
		}
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// Kinds must match; Phase, Capability and Detail only when the target sets them.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind != t.Kind {
		return false
	}
	if t.Phase != "" && e.Phase != t.Phase {
		return false
	}
	if t.Capability != "" && e.Capability != t.Capability {
		return false
	}
	if t.Detail != "" && e.Detail != t.Detail {
		return false
	}
	return true
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Capability sets the capability and operation that failed
func (b *Builder) Capability(name, op string) *Builder {
	b.err.Capability = name
	b.err.Op = op
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Malformed creates an error for input that could not be encoded or decoded
func Malformed(phase Phase, detail string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMalformed,
		Detail: detail,
		Cause:  cause,
	}
}

// InvalidInput creates a malformed-input error with a formatted detail
func InvalidInput(phase Phase, format string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMalformed,
		Detail: fmt.Sprintf(format, args...),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: what + " not found",
	}
}

// Internal creates an internal error wrapping cause
func Internal(phase Phase, detail string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInternal,
		Detail: detail,
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// KindOf returns the unified kind of err. Context errors report Timeout
// or Cancelled; any other error that is not *Error reports KindOther.
func KindOf(err error) Kind {
	var e *Error
	if As(err, &e) {
		return e.Kind
	}
	if k := contextKind(err); k != KindInternal {
		return k
	}
	return KindOther
}

// IsKind reports whether err carries the given unified kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
