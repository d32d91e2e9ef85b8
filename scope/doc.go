// Package scope governs the lifetime of native memory.
//
// A Scope is opened explicitly, allocates native stores through an
// allocator, and closes exactly once. Closing releases every store the
// scope owns; segments derived from those stores stay valid values but
// every access through them fails with errors.ErrUseAfterClose.
//
//	sc := scope.Open(scope.WithLogger(log))
//	seg, err := sc.Allocate(4096)
//	...
//	err = sc.Close() // errors.ErrAlreadyClosed on a second call
//
// # Guaranteed Release
//
// With runs a function inside a fresh scope and closes it on every exit
// path, including early returns and panics:
//
//	err := scope.With(func(sc *scope.Scope) error {
//	    seg, err := sc.Allocate(64)
//	    if err != nil {
//	        return err
//	    }
//	    return fill(seg)
//	})
//
// # Allocators
//
// The default allocator maps anonymous pages (store.MmapAllocator). Use
// WithAllocator to host stores in wazero linear memory instead:
//
//	alloc := store.NewLinearAllocator(ctx, rt)
//	sc := scope.Open(scope.WithAllocator(alloc))
//
// # Confinement
//
// A scope belongs to the goroutine that opened it. Allocate, Close and
// access through its segments must be serialized by that owner; the scope
// does not lock. Closing while another goroutine reads is a caller error.
package scope
