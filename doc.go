// Package memseg provides bounds-checked views over contiguous memory that
// may live outside the Go heap.
//
// A segment is an immutable descriptor of a byte range over a backing store.
// Native stores are allocated by a scope and released when the scope closes;
// heap stores wrap an ordinary Go slice and are never released. Reads and
// slicing behave identically for both kinds; only lifetime rules differ.
//
// # Architecture Overview
//
//	memseg/              Root package with Backing, Native and Allocator interfaces
//	├── layout/          Element layouts, byte order, value codec, WIT mapping
//	├── store/           Heap, mmap-backed and wazero linear-memory stores
//	├── resource/        Handle table for stores owned by a scope
//	├── scope/           Scope lifecycle: open, allocate, close
//	├── segment/         Segment views, typed access and the slice iterator
//	├── errors/          Structured error types
//	└── cmd/slicewalk/   Loop-over-slice driver
//
// # Quick Start
//
//	sc := scope.Open()
//	defer sc.Close()
//
//	seg, err := sc.Allocate(16)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	it, _ := segment.Iterate(seg, 4)
//	for el := range it.All() {
//	    v, err := el.Get(layout.S32)
//	    ...
//	}
//
// After Close, every read through seg or any segment sliced from it fails
// with errors.ErrUseAfterClose.
package memseg
