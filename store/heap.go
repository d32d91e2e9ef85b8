package store

import (
	"unsafe"

	"github.com/wippyai/memseg/layout"
)

// Fixed is the set of Go element types a heap store can wrap.
type Fixed interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 |
		~int64 | ~uint64 | ~float32 | ~float64
}

// Heap wraps an in-process buffer. Its lifetime follows normal Go
// ownership: it has no Release and is never owned by a scope.
type Heap struct {
	buf []byte
}

// NewHeap wraps buf without copying.
func NewHeap(buf []byte) *Heap {
	return &Heap{buf: buf}
}

// OfSlice views a typed slice as bytes without copying. Element values
// written through the slice appear in host byte order.
func OfSlice[T Fixed](s []T) *Heap {
	if len(s) == 0 {
		return &Heap{buf: []byte{}}
	}
	var zero T
	n := len(s) * int(unsafe.Sizeof(zero))
	return &Heap{buf: unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), n)}
}

func (h *Heap) Size() uint64 {
	return uint64(len(h.buf))
}

func (h *Heap) Read(offset uint64, l layout.Layout) (layout.Value, error) {
	return readBytes(h.buf, offset, l)
}

func (h *Heap) Write(offset uint64, l layout.Layout, v layout.Value) error {
	return writeBytes(h.buf, offset, l, v)
}

func (h *Heap) Bytes(offset, length uint64) ([]byte, error) {
	if err := checkRange(offset, length, h.Size()); err != nil {
		return nil, err
	}
	return h.buf[offset : offset+length], nil
}
