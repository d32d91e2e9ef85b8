package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which operation produced the error
type Phase string

const (
	PhaseAllocate Phase = "allocate" // scope allocation
	PhaseAccess   Phase = "access"   // typed read or write
	PhaseSlice    Phase = "slice"    // range computation
	PhaseIterate  Phase = "iterate"  // slice iterator construction
	PhaseClose    Phase = "close"    // scope release
	PhaseLayout   Phase = "layout"   // layout validation
	PhaseLoad     Phase = "load"     // workload/config loading
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidSize   Kind = "invalid_size"
	KindOutOfBounds   Kind = "out_of_bounds"
	KindUseAfterClose Kind = "use_after_close"
	KindAlreadyClosed Kind = "already_closed"
	KindScopeClosed   Kind = "scope_closed"
	KindInvalidLayout Kind = "invalid_layout"
	KindAllocation    Kind = "allocation"
	KindUnsupported   Kind = "unsupported"
	KindInvalidInput  Kind = "invalid_input"
)

// Sentinels for errors.Is. They carry no Phase and therefore match any
// error of the same Kind.
var (
	ErrInvalidSize   = &Error{Kind: KindInvalidSize}
	ErrOutOfBounds   = &Error{Kind: KindOutOfBounds}
	ErrUseAfterClose = &Error{Kind: KindUseAfterClose}
	ErrAlreadyClosed = &Error{Kind: KindAlreadyClosed}
	ErrScopeClosed   = &Error{Kind: KindScopeClosed}
	ErrInvalidLayout = &Error{Kind: KindInvalidLayout}
	ErrAllocation    = &Error{Kind: KindAllocation}
	ErrUnsupported   = &Error{Kind: KindUnsupported}
	ErrInvalidInput  = &Error{Kind: KindInvalidInput}
)

// Error is the structured error type used throughout memseg
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
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

// Is reports whether target matches this error. A target without a Phase
// matches on Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase == "" {
		return e.Kind == t.Kind
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
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

// Path sets the segment path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
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

// InvalidSize creates an invalid size error for zero-byte requests
func InvalidSize(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidSize,
		Detail: fmt.Sprintf("%s must be greater than zero", what),
		Value:  uint64(0),
	}
}

// OutOfBounds creates an out of bounds error. end is the exclusive end of
// the requested range, length the byte length of the segment.
func OutOfBounds(phase Phase, end, length uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("offset %d out of bounds (length %d)", end, length),
		Value:  end,
	}
}

// IndexOutOfBounds creates an out of bounds error for an element index
func IndexOutOfBounds(phase Phase, index, elemSize, length uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   []string{fmt.Sprintf("[%d]", index)},
		Detail: fmt.Sprintf("element %d of size %d exceeds %d bytes", index, elemSize, length),
		Value:  index,
	}
}

// UseAfterClose creates an error for access through a released scope
func UseAfterClose(phase Phase, scope string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUseAfterClose,
		Detail: fmt.Sprintf("scope %s is closed", scope),
	}
}

// AlreadyClosed creates an error for a repeated close
func AlreadyClosed(scope string) *Error {
	return &Error{
		Phase:  PhaseClose,
		Kind:   KindAlreadyClosed,
		Detail: fmt.Sprintf("scope %s already closed", scope),
	}
}

// ScopeClosed creates an error for allocation through a closed scope
func ScopeClosed(scope string) *Error {
	return &Error{
		Phase:  PhaseAllocate,
		Kind:   KindScopeClosed,
		Detail: fmt.Sprintf("scope %s is closed", scope),
	}
}

// InvalidLayout creates a layout validation error
func InvalidLayout(detail string) *Error {
	return &Error{
		Phase:  PhaseLayout,
		Kind:   KindInvalidLayout,
		Detail: detail,
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(size uint64, cause error) *Error {
	return &Error{
		Phase:  PhaseAllocate,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes", size),
		Value:  size,
		Cause:  cause,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
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
