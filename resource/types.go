package resource

import "github.com/wippyai/memseg"

// Handle is an opaque reference to a store in a table.
// Handle 0 is reserved and always invalid.
type Handle uint32

// EventType identifies a store lifecycle notification.
type EventType uint8

const (
	EventAllocated EventType = iota
	EventReleased
)

func (t EventType) String() string {
	if t == EventReleased {
		return "released"
	}
	return "allocated"
}

// Event represents a store lifecycle event. Err is set when a release
// failed; the store is considered released regardless.
type Event struct {
	Store  memseg.Native
	Err    error
	Bytes  uint64
	Handle Handle
	Type   EventType
}

// Observer receives notifications about store lifecycle events.
type Observer interface {
	OnStoreEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

func (f ObserverFunc) OnStoreEvent(e Event) { f(e) }
