// Package segment provides immutable, bounds-checked views over backing
// stores and the iterator that walks them element by element.
//
// # Segments
//
// A Segment is a value descriptor (backing, offset, length, owner). Slicing
// is pure range arithmetic and never touches memory:
//
//	tail, err := seg.Slice(4)          // [4, len)
//	mid, err := seg.AsSlice(4, 8)      // [4, 12)
//
// Every typed access checks bounds first and then, for native segments,
// asks the owning scope whether it is still open:
//
//	v, err := seg.GetAtIndex(layout.S32, 2)
//	// errors.ErrOutOfBounds   if 3*4 > seg.ByteSize()
//	// errors.ErrUseAfterClose if the scope has been closed
//
// Heap segments (WrapHeap, Of) have no owner and never fail on liveness.
//
// # Iteration
//
// Iterate walks fixed-size elements with a cursor. The cursor advances while
// its remaining length is strictly greater than the element size, so the
// final element is not produced when the length is an exact multiple:
//
//	seg (16 bytes), size 4: elements at 0, 4, 8
//	seg (8 bytes),  size 4: element at 0
//
// Pass Inclusive() to use >= instead and cover the whole segment.
package segment
