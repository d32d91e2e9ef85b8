// Package resource tracks the native stores owned by a scope.
//
// The Table maps integer handles to memseg.Native stores and guarantees
// that every store it holds is released exactly once: either individually
// through Release or all together when the table closes.
//
//	table := resource.NewTable()
//
//	h, err := table.Insert(native)
//	store, ok := table.Get(h)
//
//	// release everything, newest first
//	err = table.Close()
//
// # Observers
//
// Register observers to track store lifecycle events:
//
//	table.Subscribe(resource.ObserverFunc(func(e resource.Event) {
//	    switch e.Type {
//	    case resource.EventAllocated:
//	        log.Printf("store %d: %d bytes", e.Handle, e.Bytes)
//	    case resource.EventReleased:
//	        log.Printf("store %d released", e.Handle)
//	    }
//	}))
//
// # Thread Safety
//
// A Table is confined to the goroutine that owns its scope and performs no
// locking.
package resource
