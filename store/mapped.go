//go:build unix

package store

import (
	"github.com/wippyai/memseg"
	"github.com/wippyai/memseg/errors"
	"github.com/wippyai/memseg/layout"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Mapped is a native store backed by anonymous private pages.
type Mapped struct {
	mem  []byte
	size uint64
}

// MmapAllocator allocates Mapped stores with mmap(2).
type MmapAllocator struct{}

// NewMmapAllocator returns the default native allocator.
func NewMmapAllocator() memseg.Allocator {
	return MmapAllocator{}
}

func (MmapAllocator) Name() string { return "mmap" }

// Allocate maps size zeroed bytes. The mapping is rounded up to whole pages
// by the kernel; only size bytes are addressable through the store.
func (MmapAllocator) Allocate(size uint64) (memseg.Native, error) {
	if size == 0 {
		return nil, errors.InvalidSize(errors.PhaseAllocate, "byte size")
	}
	if size > uint64(maxInt) {
		return nil, errors.AllocationFailed(size, errors.InvalidInput(errors.PhaseAllocate, "size exceeds address space"))
	}
	mem, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.AllocationFailed(size, err)
	}
	Logger().Debug("mapped native store", zap.Uint64("bytes", size))
	return &Mapped{mem: mem, size: size}, nil
}

func (m *Mapped) Size() uint64 {
	return m.size
}

func (m *Mapped) Released() bool {
	return m.mem == nil
}

func (m *Mapped) Read(offset uint64, l layout.Layout) (layout.Value, error) {
	if m.mem == nil {
		return layout.Value{}, errors.UseAfterClose(errors.PhaseAccess, "mmap")
	}
	return readBytes(m.mem[:m.size], offset, l)
}

func (m *Mapped) Write(offset uint64, l layout.Layout, v layout.Value) error {
	if m.mem == nil {
		return errors.UseAfterClose(errors.PhaseAccess, "mmap")
	}
	return writeBytes(m.mem[:m.size], offset, l, v)
}

func (m *Mapped) Bytes(offset, length uint64) ([]byte, error) {
	if m.mem == nil {
		return nil, errors.UseAfterClose(errors.PhaseAccess, "mmap")
	}
	if err := checkRange(offset, length, m.size); err != nil {
		return nil, err
	}
	return m.mem[offset : offset+length], nil
}

// Release unmaps the pages. Calling it again is a no-op.
func (m *Mapped) Release() error {
	if m.mem == nil {
		return nil
	}
	mem := m.mem
	m.mem = nil
	if err := unix.Munmap(mem); err != nil {
		return errors.Wrap(errors.PhaseClose, errors.KindAllocation, err, "munmap")
	}
	Logger().Debug("unmapped native store", zap.Uint64("bytes", m.size))
	return nil
}

const maxInt = int(^uint(0) >> 1)

var _ memseg.Native = (*Mapped)(nil)
