package scope

import (
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/wippyai/memseg"
	"github.com/wippyai/memseg/errors"
	"github.com/wippyai/memseg/layout"
	"github.com/wippyai/memseg/resource"
	"github.com/wippyai/memseg/segment"
	"github.com/wippyai/memseg/store"
	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the scope package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the default logger for scopes opened afterwards.
func SetLogger(l *zap.Logger) {
	logger = l
}

// State is the lifecycle state of a scope
type State uint8

const (
	StateOpen State = iota
	StateClosed
)

func (s State) String() string {
	if s == StateClosed {
		return "closed"
	}
	return "open"
}

// Option configures a Scope.
type Option func(*Scope)

// WithAllocator sets the allocator for native stores.
func WithAllocator(a memseg.Allocator) Option {
	return func(s *Scope) {
		s.alloc = a
	}
}

// WithLogger sets the scope's logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scope) {
		s.log = l
	}
}

// WithName labels the scope in logs and errors.
func WithName(name string) Option {
	return func(s *Scope) {
		s.name = name
	}
}

// Scope owns native stores and releases them on Close.
type Scope struct {
	alloc   memseg.Allocator
	log     *zap.Logger
	stores  *resource.Table
	id      string
	name    string
	actions []func()
	closed  atomic.Bool
}

// Open creates a scope in the Open state with no stores.
func Open(opts ...Option) *Scope {
	s := &Scope{
		id:     uuid.NewString(),
		stores: resource.NewTable(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.alloc == nil {
		s.alloc = store.NewMmapAllocator()
	}
	if s.name == "" {
		s.name = s.id[:8]
	}
	if s.log == nil {
		s.log = Logger()
	}
	s.log = s.log.With(zap.String("scope", s.name))
	s.stores.Subscribe(resource.ObserverFunc(s.onStoreEvent))

	s.log.Debug("scope opened", zap.String("id", s.id), zap.String("allocator", s.alloc.Name()))
	return s
}

// ID returns the scope's unique identifier.
func (s *Scope) ID() string {
	return s.id
}

// Name returns the scope's label.
func (s *Scope) Name() string {
	return s.name
}

// State returns StateOpen or StateClosed.
func (s *Scope) State() State {
	if s.closed.Load() {
		return StateClosed
	}
	return StateOpen
}

// IsAlive reports whether the scope is still open.
func (s *Scope) IsAlive() bool {
	return !s.closed.Load()
}

// CheckAlive implements segment.Lifetime.
func (s *Scope) CheckAlive() error {
	if s.closed.Load() {
		return errors.UseAfterClose(errors.PhaseAccess, s.name)
	}
	return nil
}

// Stores returns the number of live native stores.
func (s *Scope) Stores() int {
	return s.stores.Len()
}

// Bytes returns the total size of live native stores.
func (s *Scope) Bytes() uint64 {
	return s.stores.Bytes()
}

// Allocate creates a zeroed native store of byteSize bytes owned by s and
// returns the root segment over it.
func (s *Scope) Allocate(byteSize uint64) (segment.Segment, error) {
	if byteSize == 0 {
		return segment.Segment{}, errors.InvalidSize(errors.PhaseAllocate, "byte size")
	}
	if s.closed.Load() {
		return segment.Segment{}, errors.ScopeClosed(s.name)
	}

	native, err := s.alloc.Allocate(byteSize)
	if err != nil {
		return segment.Segment{}, err
	}
	if _, err := s.stores.Insert(native); err != nil {
		_ = native.Release()
		if stderrors.Is(err, resource.ErrClosed) {
			return segment.Segment{}, errors.ScopeClosed(s.name)
		}
		return segment.Segment{}, errors.AllocationFailed(byteSize, err)
	}
	return segment.New(native, s), nil
}

// Free releases the native store behind seg before the scope closes. Any
// segment over that store then fails with errors.ErrUseAfterClose. Heap
// segments and stores not owned by s are rejected.
func (s *Scope) Free(seg segment.Segment) error {
	if s.closed.Load() {
		return errors.ScopeClosed(s.name)
	}
	if !seg.IsNative() || seg.Owner() != segment.Lifetime(s) {
		return errors.InvalidInput(errors.PhaseClose, "segment is not owned by scope "+s.name)
	}

	var handle resource.Handle
	s.stores.Each(func(h resource.Handle, n memseg.Native) bool {
		if memseg.Backing(n) == seg.Backing() {
			handle = h
			return false
		}
		return true
	})
	released, err := s.stores.Release(handle)
	if !released {
		return errors.InvalidInput(errors.PhaseClose, "store already freed")
	}
	return err
}

// AllocateLayout allocates room for count elements of l. Native stores
// start on a page boundary, so any layout alignment up to the page size is
// satisfied.
func (s *Scope) AllocateLayout(l layout.Layout, count uint64) (segment.Segment, error) {
	if err := l.Validate(); err != nil {
		return segment.Segment{}, err
	}
	if count == 0 {
		return segment.Segment{}, errors.InvalidSize(errors.PhaseAllocate, "element count")
	}
	size := l.Size * count
	if size/count != l.Size {
		return segment.Segment{}, errors.New(errors.PhaseAllocate, errors.KindInvalidSize).
			Detail("%d elements of %s overflow", count, l).
			Value(count).
			Build()
	}
	return s.Allocate(size)
}

// AddCloseAction registers fn to run when the scope closes. Actions run
// once, most recent first, before the stores are released.
func (s *Scope) AddCloseAction(fn func()) error {
	if s.closed.Load() {
		return errors.ScopeClosed(s.name)
	}
	s.actions = append(s.actions, fn)
	return nil
}

// Close transitions the scope to Closed and releases all owned stores. The
// scope is Closed even when a release fails or a close action panics; the
// stores are released before the panic propagates. A second call returns
// an already_closed error and does nothing.
func (s *Scope) Close() (err error) {
	if !s.closed.CompareAndSwap(false, true) {
		return errors.AlreadyClosed(s.name)
	}

	stores, bytes := s.stores.Len(), s.stores.Bytes()
	defer func() {
		if rerr := s.stores.Close(); rerr != nil {
			s.log.Warn("scope closed with release failures", zap.Error(rerr))
			err = rerr
			return
		}
		s.log.Debug("scope closed", zap.Int("stores", stores), zap.Uint64("bytes", bytes))
	}()

	actions := s.actions
	s.actions = nil
	for i := len(actions) - 1; i >= 0; i-- {
		actions[i]()
	}
	return nil
}

func (s *Scope) onStoreEvent(e resource.Event) {
	switch e.Type {
	case resource.EventAllocated:
		s.log.Debug("store allocated", zap.Uint32("handle", uint32(e.Handle)), zap.Uint64("bytes", e.Bytes))
	case resource.EventReleased:
		if e.Err != nil {
			s.log.Warn("store release failed", zap.Uint32("handle", uint32(e.Handle)), zap.Error(e.Err))
			return
		}
		s.log.Debug("store released", zap.Uint32("handle", uint32(e.Handle)), zap.Uint64("bytes", e.Bytes))
	}
}

func (s *Scope) String() string {
	return fmt.Sprintf("scope[%s %s stores=%d]", s.name, s.State(), s.stores.Len())
}

// With opens a scope, runs fn and closes the scope on every exit path. An
// explicit Close inside fn is not reported again; a release failure is
// returned only when fn itself succeeded.
func With(fn func(*Scope) error, opts ...Option) (err error) {
	s := Open(opts...)
	defer func() {
		cerr := s.Close()
		if cerr != nil && !stderrors.Is(cerr, errors.ErrAlreadyClosed) && err == nil {
			err = cerr
		}
	}()
	return fn(s)
}

var _ segment.Lifetime = (*Scope)(nil)
