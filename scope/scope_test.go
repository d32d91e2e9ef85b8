package scope

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/wippyai/memseg"
	"github.com/wippyai/memseg/errors"
	"github.com/wippyai/memseg/layout"
	"github.com/wippyai/memseg/segment"
	"github.com/wippyai/memseg/store"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// heapAllocator hands out heap-backed stores with a release flag so scope
// behavior can be tested without mmap.
type heapAllocator struct {
	failRelease error
	made        []*releasable
}

func (a *heapAllocator) Name() string { return "test" }

func (a *heapAllocator) Allocate(size uint64) (memseg.Native, error) {
	r := &releasable{Heap: store.NewHeap(make([]byte, size)), err: a.failRelease}
	a.made = append(a.made, r)
	return r, nil
}

type releasable struct {
	*store.Heap
	err      error
	released int
}

func (r *releasable) Release() error {
	r.released++
	return r.err
}

func (r *releasable) Released() bool { return r.released > 0 }

func TestOpen(t *testing.T) {
	s := Open(WithName("unit"))
	if s.State() != StateOpen || !s.IsAlive() {
		t.Fatalf("new scope state = %v", s.State())
	}
	if s.Name() != "unit" || s.ID() == "" {
		t.Errorf("Name=%q ID=%q", s.Name(), s.ID())
	}
	if s.Stores() != 0 {
		t.Errorf("Stores() = %d, want 0", s.Stores())
	}
	if err := s.CheckAlive(); err != nil {
		t.Errorf("CheckAlive() = %v", err)
	}

	other := Open()
	if other.ID() == s.ID() {
		t.Error("scope ids must be unique")
	}
	if len(other.Name()) != 8 {
		t.Errorf("default name = %q, want id prefix", other.Name())
	}
}

func TestAllocate(t *testing.T) {
	alloc := &heapAllocator{}
	s := Open(WithAllocator(alloc))

	if _, err := s.Allocate(0); !stderrors.Is(err, errors.ErrInvalidSize) {
		t.Fatalf("Allocate(0) = %v, want invalid_size", err)
	}

	seg, err := s.Allocate(32)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if seg.ByteSize() != 32 || seg.Offset() != 0 {
		t.Errorf("root segment off=%d len=%d", seg.Offset(), seg.ByteSize())
	}
	if seg.Owner() != segment.Lifetime(s) || !seg.IsNative() {
		t.Error("root segment not governed by scope")
	}
	if s.Stores() != 1 || s.Bytes() != 32 {
		t.Errorf("Stores=%d Bytes=%d", s.Stores(), s.Bytes())
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := s.Allocate(8); !stderrors.Is(err, errors.ErrScopeClosed) {
		t.Errorf("Allocate after close = %v, want scope_closed", err)
	}
	if len(alloc.made) != 1 || alloc.made[0].released != 1 {
		t.Errorf("store released %d times", alloc.made[0].released)
	}
}

func TestAllocateLayout(t *testing.T) {
	s := Open(WithAllocator(&heapAllocator{}))
	defer s.Close()

	seg, err := s.AllocateLayout(layout.S64, 3)
	if err != nil {
		t.Fatalf("AllocateLayout: %v", err)
	}
	if seg.ByteSize() != 24 {
		t.Errorf("ByteSize() = %d, want 24", seg.ByteSize())
	}

	if _, err := s.AllocateLayout(layout.S32, 0); !stderrors.Is(err, errors.ErrInvalidSize) {
		t.Errorf("count 0 = %v, want invalid_size", err)
	}
	if _, err := s.AllocateLayout(layout.Layout{}, 1); !stderrors.Is(err, errors.ErrInvalidLayout) {
		t.Errorf("zero layout = %v, want invalid_layout", err)
	}
	if _, err := s.AllocateLayout(layout.S64, ^uint64(0)/4); !stderrors.Is(err, errors.ErrInvalidSize) {
		t.Errorf("overflow = %v, want invalid_size", err)
	}
}

func TestClose(t *testing.T) {
	alloc := &heapAllocator{}
	s := Open(WithAllocator(alloc))
	a, _ := s.Allocate(8)
	b, _ := s.Allocate(8)
	sub, _ := a.Slice(4)

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if s.State() != StateClosed || s.IsAlive() {
		t.Errorf("state after close = %v", s.State())
	}
	for _, seg := range []segment.Segment{a, b, sub} {
		if _, err := seg.GetAtIndex(layout.U32, 0); !stderrors.Is(err, errors.ErrUseAfterClose) {
			t.Errorf("%v after close = %v, want use_after_close", seg, err)
		}
	}
	for i, r := range alloc.made {
		if r.released != 1 {
			t.Errorf("store %d released %d times", i, r.released)
		}
	}

	err := s.Close()
	if !stderrors.Is(err, errors.ErrAlreadyClosed) {
		t.Fatalf("second Close = %v, want already_closed", err)
	}
	for i, r := range alloc.made {
		if r.released != 1 {
			t.Errorf("second Close released store %d again", i)
		}
	}
}

func TestClose_ReleaseFailure(t *testing.T) {
	boom := stderrors.New("munmap: invalid argument")
	s := Open(WithAllocator(&heapAllocator{failRelease: boom}))
	seg, _ := s.Allocate(4)

	err := s.Close()
	if !stderrors.Is(err, boom) {
		t.Fatalf("Close = %v, want wrapped cause", err)
	}
	if s.State() != StateClosed {
		t.Error("scope must be closed even when release fails")
	}
	if _, err := seg.GetAtIndex(layout.U32, 0); !stderrors.Is(err, errors.ErrUseAfterClose) {
		t.Errorf("access after failed close = %v", err)
	}
}

func TestCloseActions(t *testing.T) {
	s := Open(WithAllocator(&heapAllocator{}))
	var order []int
	for i := 1; i <= 3; i++ {
		if err := s.AddCloseAction(func() { order = append(order, i) }); err != nil {
			t.Fatalf("AddCloseAction: %v", err)
		}
	}
	_ = s.Close()
	if len(order) != 3 || order[0] != 3 || order[2] != 1 {
		t.Errorf("close actions ran %v, want [3 2 1]", order)
	}
	if err := s.AddCloseAction(func() {}); !stderrors.Is(err, errors.ErrScopeClosed) {
		t.Errorf("AddCloseAction after close = %v", err)
	}
	_ = s.Close()
	if len(order) != 3 {
		t.Errorf("close actions ran again: %v", order)
	}
}

func TestClose_ActionPanicReleasesStores(t *testing.T) {
	alloc := &heapAllocator{}
	s := Open(WithAllocator(alloc))
	if _, err := s.Allocate(32); err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if err := s.AddCloseAction(func() { panic("action failed") }); err != nil {
		t.Fatalf("AddCloseAction: %v", err)
	}

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Error("expected close action panic to propagate")
			}
		}()
		_ = s.Close()
	}()

	if s.State() != StateClosed {
		t.Errorf("State = %v, want closed", s.State())
	}
	if s.Stores() != 0 {
		t.Errorf("Stores = %d, want 0", s.Stores())
	}
	if alloc.made[0].released != 1 {
		t.Errorf("store released %d times, want 1", alloc.made[0].released)
	}
}

func TestWith_ActionPanicReleasesStores(t *testing.T) {
	alloc := &heapAllocator{}
	func() {
		defer func() { _ = recover() }()
		_ = With(func(s *Scope) error {
			if _, err := s.Allocate(16); err != nil {
				return err
			}
			return s.AddCloseAction(func() { panic("action failed") })
		}, WithAllocator(alloc))
	}()

	if len(alloc.made) != 1 || alloc.made[0].released != 1 {
		t.Errorf("With left %d stores unreleased", len(alloc.made)-countReleased(alloc.made))
	}
}

func countReleased(rs []*releasable) int {
	n := 0
	for _, r := range rs {
		if r.released > 0 {
			n++
		}
	}
	return n
}

func TestFree(t *testing.T) {
	alloc := &heapAllocator{}
	s := Open(WithAllocator(alloc))
	defer s.Close()

	first, err := s.Allocate(8)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	second, err := s.Allocate(16)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	if err := s.Free(first); err != nil {
		t.Fatalf("Free: %v", err)
	}
	if alloc.made[0].released != 1 || alloc.made[1].released != 0 {
		t.Errorf("released = [%d %d], want [1 0]", alloc.made[0].released, alloc.made[1].released)
	}
	if s.Stores() != 1 || s.Bytes() != 16 {
		t.Errorf("Stores = %d Bytes = %d, want 1 and 16", s.Stores(), s.Bytes())
	}
	if _, err := second.GetAtIndex(layout.U8, 0); err != nil {
		t.Errorf("sibling store affected: %v", err)
	}

	tests := []struct {
		name string
		seg  segment.Segment
	}{
		{"already freed", first},
		{"heap segment", segment.WrapHeap(make([]byte, 4))},
		{"foreign scope", mustAllocate(t, Open(WithAllocator(&heapAllocator{})), 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Free(tt.seg); !stderrors.Is(err, errors.ErrInvalidInput) {
				t.Errorf("Free = %v, want invalid_input", err)
			}
		})
	}

	_ = s.Close()
	if err := s.Free(second); !stderrors.Is(err, errors.ErrScopeClosed) {
		t.Errorf("Free after close = %v, want scope_closed", err)
	}
	if alloc.made[1].released != 1 {
		t.Errorf("second store released %d times, want 1", alloc.made[1].released)
	}
}

func TestFree_MappedStoreRefusesAccess(t *testing.T) {
	s := Open()
	defer s.Close()

	seg, err := s.Allocate(64)
	if stderrors.Is(err, errors.ErrUnsupported) {
		t.Skip("mmap unsupported on this platform")
	}
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	tail, err := seg.Slice(32)
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	if err := s.Free(seg); err != nil {
		t.Fatalf("Free: %v", err)
	}
	if _, err := tail.GetAtIndex(layout.S32, 0); !stderrors.Is(err, errors.ErrUseAfterClose) {
		t.Errorf("read after Free = %v, want use_after_close", err)
	}
}

func mustAllocate(t *testing.T, s *Scope, size uint64) segment.Segment {
	t.Helper()
	seg, err := s.Allocate(size)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	return seg
}

func TestWith(t *testing.T) {
	t.Run("closes on success", func(t *testing.T) {
		var seg segment.Segment
		err := With(func(s *Scope) error {
			var err error
			seg, err = s.Allocate(8)
			return err
		}, WithAllocator(&heapAllocator{}))
		if err != nil {
			t.Fatalf("With: %v", err)
		}
		if _, err := seg.GetAtIndex(layout.U8, 0); !stderrors.Is(err, errors.ErrUseAfterClose) {
			t.Errorf("segment escaped With alive: %v", err)
		}
	})

	t.Run("closes on error", func(t *testing.T) {
		fail := stderrors.New("fill failed")
		var sc *Scope
		err := With(func(s *Scope) error {
			sc = s
			_, _ = s.Allocate(8)
			return fail
		}, WithAllocator(&heapAllocator{}))
		if !stderrors.Is(err, fail) {
			t.Fatalf("With = %v, want fn error", err)
		}
		if sc.State() != StateClosed {
			t.Error("scope left open after error")
		}
	})

	t.Run("closes on panic", func(t *testing.T) {
		var sc *Scope
		func() {
			defer func() { _ = recover() }()
			_ = With(func(s *Scope) error {
				sc = s
				panic("boom")
			}, WithAllocator(&heapAllocator{}))
		}()
		if sc == nil || sc.State() != StateClosed {
			t.Error("scope left open after panic")
		}
	})

	t.Run("explicit close inside", func(t *testing.T) {
		err := With(func(s *Scope) error {
			return s.Close()
		}, WithAllocator(&heapAllocator{}))
		if err != nil {
			t.Errorf("With = %v, want nil", err)
		}
	})

	t.Run("release failure surfaces", func(t *testing.T) {
		boom := stderrors.New("release")
		err := With(func(s *Scope) error {
			_, err := s.Allocate(4)
			return err
		}, WithAllocator(&heapAllocator{failRelease: boom}))
		if !stderrors.Is(err, boom) {
			t.Errorf("With = %v, want release error", err)
		}
	})
}

func TestLinearAllocator(t *testing.T) {
	ctx := context.Background()
	alloc := store.NewLinearAllocator(ctx, nil)
	defer alloc.Close(ctx)

	err := With(func(s *Scope) error {
		seg, err := s.Allocate(70000)
		if err != nil {
			return err
		}
		if err := seg.Set(layout.U32, 69996, layout.OfUint32(7)); err != nil {
			return err
		}
		v, err := seg.Get(layout.U32, 69996)
		if err != nil {
			return err
		}
		if v.Uint32() != 7 {
			t.Errorf("Get = %d, want 7", v.Uint32())
		}
		return nil
	}, WithAllocator(alloc))
	if err != nil {
		t.Fatalf("With: %v", err)
	}
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := Open(WithLogger(zap.New(core)), WithName("logged"), WithAllocator(&heapAllocator{}))
	_, _ = s.Allocate(16)
	_ = s.Close()

	want := []string{"scope opened", "store allocated", "store released", "scope closed"}
	entries := logs.All()
	if len(entries) != len(want) {
		t.Fatalf("got %d log entries, want %d: %v", len(entries), len(want), entries)
	}
	for i, msg := range want {
		if entries[i].Message != msg {
			t.Errorf("entry %d = %q, want %q", i, entries[i].Message, msg)
		}
		if entries[i].ContextMap()["scope"] != "logged" {
			t.Errorf("entry %d missing scope field", i)
		}
	}
	if entries[1].ContextMap()["bytes"] != uint64(16) {
		t.Errorf("bytes field = %v", entries[1].ContextMap()["bytes"])
	}
}
