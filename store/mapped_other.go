//go:build !unix

package store

import (
	"github.com/wippyai/memseg"
	"github.com/wippyai/memseg/errors"
)

// MmapAllocator is unavailable on this platform; use a LinearAllocator.
type MmapAllocator struct{}

func NewMmapAllocator() memseg.Allocator {
	return MmapAllocator{}
}

func (MmapAllocator) Name() string { return "mmap" }

func (MmapAllocator) Allocate(size uint64) (memseg.Native, error) {
	if size == 0 {
		return nil, errors.InvalidSize(errors.PhaseAllocate, "byte size")
	}
	return nil, errors.Unsupported(errors.PhaseAllocate, "mmap is not available on this platform")
}
