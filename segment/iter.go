package segment

import (
	"iter"

	"github.com/wippyai/memseg/errors"
	"github.com/wippyai/memseg/layout"
)

// IterOption configures an Iterator.
type IterOption func(*Iterator)

// Inclusive continues while the remaining length is at least one element,
// producing floor(n/size) elements instead of floor((n-1)/size).
func Inclusive() IterOption {
	return func(it *Iterator) {
		it.inclusive = true
	}
}

// Iterator produces fixed-size element views of a segment. It is a
// single-pass pull iterator; build a new one to walk the segment again.
type Iterator struct {
	cursor    Segment
	size      uint64
	inclusive bool
}

// Iterate returns an iterator over elementByteSize-sized elements of seg.
// Construction performs no memory access.
func Iterate(seg Segment, elementByteSize uint64, opts ...IterOption) (*Iterator, error) {
	if elementByteSize == 0 {
		return nil, errors.New(errors.PhaseIterate, errors.KindInvalidLayout).
			Detail("element size must be greater than zero").
			Value(elementByteSize).
			Build()
	}
	it := &Iterator{cursor: seg, size: elementByteSize}
	for _, opt := range opts {
		opt(it)
	}
	return it, nil
}

// Over is Iterate with the element size taken from l.
func Over(seg Segment, l layout.Layout, opts ...IterOption) (*Iterator, error) {
	return Iterate(seg, l.Size, opts...)
}

// HasNext reports whether Next will produce an element.
func (it *Iterator) HasNext() bool {
	if it.inclusive {
		return it.cursor.ByteSize() >= it.size
	}
	return it.cursor.ByteSize() > it.size
}

// Next returns the element at the cursor and advances past it.
func (it *Iterator) Next() (Element, bool) {
	if !it.HasNext() {
		return Element{}, false
	}
	el := Element{seg: it.cursor.sub(0, it.size)}
	it.cursor = it.cursor.sub(it.size, it.cursor.ByteSize()-it.size)
	return el, true
}

// Remaining returns how many elements Next will still produce.
func (it *Iterator) Remaining() uint64 {
	n := it.cursor.ByteSize()
	if !it.inclusive {
		if n == 0 {
			return 0
		}
		n--
	}
	return n / it.size
}

// All returns the remaining elements as a range-over-func sequence.
func (it *Iterator) All() iter.Seq[Element] {
	return func(yield func(Element) bool) {
		for {
			el, ok := it.Next()
			if !ok || !yield(el) {
				return
			}
		}
	}
}

// ForEach reads every remaining element through l and passes it to fn,
// stopping at the first error.
func (it *Iterator) ForEach(l layout.Layout, fn func(layout.Value) error) error {
	for el, ok := it.Next(); ok; el, ok = it.Next() {
		v, err := el.Get(l)
		if err != nil {
			return err
		}
		if err := fn(v); err != nil {
			return err
		}
	}
	return nil
}

// Element is one fixed-size view produced by an Iterator.
type Element struct {
	seg Segment
}

// Segment returns the element's view.
func (e Element) Segment() Segment {
	return e.seg
}

// Get reads the element's first value through l.
func (e Element) Get(l layout.Layout) (layout.Value, error) {
	return e.seg.GetAtIndex(l, 0)
}

// Set writes the element's first value through l.
func (e Element) Set(l layout.Layout, v layout.Value) error {
	return e.seg.SetAtIndex(l, 0, v)
}
