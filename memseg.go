package memseg

import "github.com/wippyai/memseg/layout"

// Backing is the storage behind a segment. Offsets are absolute within the
// store; callers bounds-check against Size before calling.
type Backing interface {
	Size() uint64
	Read(offset uint64, l layout.Layout) (layout.Value, error)
	Write(offset uint64, l layout.Layout, v layout.Value) error
	// Bytes returns a view of [offset, offset+length). Heap stores return
	// the wrapped buffer directly; native stores return memory that is
	// invalid after Release.
	Bytes(offset, length uint64) ([]byte, error)
}

// Native is a backing store allocated outside the Go heap with an explicit
// release. A Native store is owned by exactly one scope.
type Native interface {
	Backing
	// Release frees the memory. It is idempotent; reads after release fail.
	Release() error
	Released() bool
}

// Allocator produces native backing stores
type Allocator interface {
	Allocate(size uint64) (Native, error)
	Name() string
}
