// Package errors provides structured error types for memseg.
//
// Errors are categorized by Phase (the operation that failed) and Kind (error
// category). The Error type carries the segment path, a detail message, the
// offending value and an optional cause.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseAccess, errors.KindOutOfBounds).
//		Path("buf", "[3]").
//		Value(uint64(3)).
//		Detail("element 3 of size 4 exceeds 12 bytes").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OutOfBounds(errors.PhaseSlice, 20, 16)
//	err := errors.UseAfterClose(errors.PhaseAccess, scopeID)
//
// All errors implement the standard error interface and support errors.Is/As.
// The exported sentinels match on Kind only, so callers can write
// errors.Is(err, errors.ErrUseAfterClose) without caring which operation
// raised it.
package errors
