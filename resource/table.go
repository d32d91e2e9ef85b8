package resource

import (
	stderrors "errors"

	"github.com/wippyai/memseg"
	"github.com/wippyai/memseg/errors"
)

// ErrClosed is returned when inserting into a closed table.
var ErrClosed = stderrors.New("resource table closed")

// Table owns native stores until they are released.
type Table struct {
	entries   []memseg.Native
	observers []Observer
	live      int
	bytes     uint64
	closed    bool
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		entries: make([]memseg.Native, 0, 4),
	}
}

// Insert takes ownership of store and returns its handle.
func (t *Table) Insert(store memseg.Native) (Handle, error) {
	if t.closed {
		return 0, ErrClosed
	}
	t.entries = append(t.entries, store)
	t.live++
	t.bytes += store.Size()

	h := Handle(len(t.entries))
	t.notify(Event{
		Type:   EventAllocated,
		Handle: h,
		Store:  store,
		Bytes:  store.Size(),
	})
	return h, nil
}

// Get retrieves a live store by handle.
func (t *Table) Get(h Handle) (memseg.Native, bool) {
	if h == 0 || int(h) > len(t.entries) {
		return nil, false
	}
	s := t.entries[h-1]
	return s, s != nil
}

// Release frees a single store ahead of Close. It reports false if the
// handle is unknown or already released.
func (t *Table) Release(h Handle) (bool, error) {
	if _, ok := t.Get(h); !ok {
		return false, nil
	}
	return true, t.release(h)
}

func (t *Table) release(h Handle) error {
	s := t.entries[h-1]
	t.entries[h-1] = nil
	t.live--
	t.bytes -= s.Size()

	err := s.Release()
	t.notify(Event{
		Type:   EventReleased,
		Handle: h,
		Store:  s,
		Bytes:  s.Size(),
		Err:    err,
	})
	return err
}

// Each visits live stores in allocation order until fn returns false.
func (t *Table) Each(fn func(Handle, memseg.Native) bool) {
	for i, s := range t.entries {
		if s == nil {
			continue
		}
		if !fn(Handle(i+1), s) {
			return
		}
	}
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.observers = append(t.observers, o)
}

// Len returns the number of live stores.
func (t *Table) Len() int {
	return t.live
}

// Bytes returns the total size of live stores.
func (t *Table) Bytes() uint64 {
	return t.bytes
}

// Close releases every live store, newest first, and stops accepting
// inserts. All stores are attempted even if some fail; failures are
// joined. Closing twice is a no-op.
func (t *Table) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true

	var errs []error
	for i := len(t.entries) - 1; i >= 0; i-- {
		if t.entries[i] == nil {
			continue
		}
		if err := t.release(Handle(i + 1)); err != nil {
			errs = append(errs, err)
		}
	}
	t.entries = nil

	if len(errs) > 0 {
		return errors.Wrap(errors.PhaseClose, errors.KindAllocation, stderrors.Join(errs...), "release stores")
	}
	return nil
}

func (t *Table) notify(e Event) {
	for _, o := range t.observers {
		o.OnStoreEvent(e)
	}
}
