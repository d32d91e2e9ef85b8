// Package store provides the backing stores behind segments.
//
// Three variants share the memseg.Backing interface:
//
//	Heap    - wraps an existing Go slice; never released
//	Mapped  - anonymous mmap pages outside the Go heap (unix only)
//	Linear  - the linear memory of a wazero module instance
//
// Mapped and Linear implement memseg.Native and are produced by an
// allocator. Both refuse access after Release instead of touching freed
// memory, so a stale view reports errors.ErrUseAfterClose rather than
// faulting.
//
// All variants decode through layout.Decode, so identical bytes read
// identically regardless of where they are stored.
//
// # Thread Safety
//
// Heap stores may be read from multiple goroutines. Native stores follow
// the confinement of their owning scope and must not be released while
// another goroutine reads them.
package store
