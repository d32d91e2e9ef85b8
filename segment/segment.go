package segment

import (
	"fmt"

	"github.com/wippyai/memseg"
	"github.com/wippyai/memseg/errors"
	"github.com/wippyai/memseg/layout"
	"github.com/wippyai/memseg/store"
)

// Lifetime is implemented by whatever governs a native store. CheckAlive
// returns an error of kind use_after_close once the owner has closed.
type Lifetime interface {
	CheckAlive() error
}

// Segment is a view of [offset, offset+length) over a backing store.
// The zero Segment is empty.
type Segment struct {
	backing memseg.Backing
	owner   Lifetime
	offset  uint64
	length  uint64
}

// New returns a root segment spanning all of b. owner must be non-nil for
// native stores and nil for heap stores.
func New(b memseg.Backing, owner Lifetime) Segment {
	return Segment{backing: b, owner: owner, length: b.Size()}
}

// WrapHeap views buf without copying. The segment has no owner.
func WrapHeap(buf []byte) Segment {
	return New(store.NewHeap(buf), nil)
}

// Of views a typed Go slice as a heap segment.
func Of[T store.Fixed](s []T) Segment {
	return New(store.OfSlice(s), nil)
}

// ByteSize returns the length of the view.
func (s Segment) ByteSize() uint64 {
	return s.length
}

// Offset returns the start of the view within its backing store.
func (s Segment) Offset() uint64 {
	return s.offset
}

// Backing returns the store behind the view.
func (s Segment) Backing() memseg.Backing {
	return s.backing
}

// Owner returns the governing lifetime, nil for heap segments.
func (s Segment) Owner() Lifetime {
	return s.owner
}

// IsNative reports whether the segment is governed by a scope.
func (s Segment) IsNative() bool {
	return s.owner != nil
}

// Slice returns the view starting byteOffset bytes into s.
func (s Segment) Slice(byteOffset uint64) (Segment, error) {
	if byteOffset > s.length {
		return Segment{}, errors.OutOfBounds(errors.PhaseSlice, byteOffset, s.length)
	}
	return s.sub(byteOffset, s.length-byteOffset), nil
}

// AsSlice returns the view [byteOffset, byteOffset+length) of s.
func (s Segment) AsSlice(byteOffset, length uint64) (Segment, error) {
	if byteOffset > s.length || length > s.length-byteOffset {
		return Segment{}, errors.OutOfBounds(errors.PhaseSlice, byteOffset+length, s.length)
	}
	return s.sub(byteOffset, length), nil
}

func (s Segment) sub(byteOffset, length uint64) Segment {
	return Segment{
		backing: s.backing,
		owner:   s.owner,
		offset:  s.offset + byteOffset,
		length:  length,
	}
}

// GetAtIndex reads element index of l's size.
func (s Segment) GetAtIndex(l layout.Layout, index uint64) (layout.Value, error) {
	if err := checkLayout(l); err != nil {
		return layout.Value{}, err
	}
	if index >= s.length/l.Size {
		return layout.Value{}, errors.IndexOutOfBounds(errors.PhaseAccess, index, l.Size, s.length)
	}
	if err := s.checkAlive(); err != nil {
		return layout.Value{}, err
	}
	return s.backing.Read(s.offset+index*l.Size, l)
}

// SetAtIndex writes element index of l's size.
func (s Segment) SetAtIndex(l layout.Layout, index uint64, v layout.Value) error {
	if err := checkLayout(l); err != nil {
		return err
	}
	if index >= s.length/l.Size {
		return errors.IndexOutOfBounds(errors.PhaseAccess, index, l.Size, s.length)
	}
	if err := s.checkAlive(); err != nil {
		return err
	}
	return s.backing.Write(s.offset+index*l.Size, l, v)
}

// Get reads a value at an arbitrary byte offset.
func (s Segment) Get(l layout.Layout, byteOffset uint64) (layout.Value, error) {
	if err := checkLayout(l); err != nil {
		return layout.Value{}, err
	}
	if err := s.checkRange(byteOffset, l.Size); err != nil {
		return layout.Value{}, err
	}
	if err := s.checkAlive(); err != nil {
		return layout.Value{}, err
	}
	return s.backing.Read(s.offset+byteOffset, l)
}

// Set writes a value at an arbitrary byte offset.
func (s Segment) Set(l layout.Layout, byteOffset uint64, v layout.Value) error {
	if err := checkLayout(l); err != nil {
		return err
	}
	if err := s.checkRange(byteOffset, l.Size); err != nil {
		return err
	}
	if err := s.checkAlive(); err != nil {
		return err
	}
	return s.backing.Write(s.offset+byteOffset, l, v)
}

// ToBytes copies the view into a new slice.
func (s Segment) ToBytes() ([]byte, error) {
	raw, err := s.bytes()
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

// CopyFrom copies all of src into the start of s. Overlapping views are
// handled like copy.
func (s Segment) CopyFrom(src Segment) error {
	if src.length > s.length {
		return errors.OutOfBounds(errors.PhaseAccess, src.length, s.length)
	}
	from, err := src.bytes()
	if err != nil {
		return err
	}
	dst, err := s.sub(0, src.length).bytes()
	if err != nil {
		return err
	}
	copy(dst, from)
	return nil
}

// Fill sets every byte of the view to b.
func (s Segment) Fill(b byte) error {
	raw, err := s.bytes()
	if err != nil {
		return err
	}
	for i := range raw {
		raw[i] = b
	}
	return nil
}

// Equal reports whether both views cover the same range of the same store.
func (s Segment) Equal(o Segment) bool {
	return s.backing == o.backing && s.offset == o.offset && s.length == o.length
}

func (s Segment) String() string {
	kind := "heap"
	if s.IsNative() {
		kind = "native"
	}
	return fmt.Sprintf("segment[%s off=%d len=%d]", kind, s.offset, s.length)
}

func (s Segment) bytes() ([]byte, error) {
	if err := s.checkAlive(); err != nil {
		return nil, err
	}
	if s.length == 0 {
		return nil, nil
	}
	return s.backing.Bytes(s.offset, s.length)
}

func (s Segment) checkRange(byteOffset, size uint64) error {
	if byteOffset > s.length || size > s.length-byteOffset {
		return errors.OutOfBounds(errors.PhaseAccess, byteOffset+size, s.length)
	}
	return nil
}

func (s Segment) checkAlive() error {
	if s.owner == nil {
		return nil
	}
	return s.owner.CheckAlive()
}

func checkLayout(l layout.Layout) error {
	switch l.Size {
	case 1, 2, 4, 8:
		return nil
	}
	return errors.InvalidLayout(fmt.Sprintf("unsupported element size %d", l.Size))
}
