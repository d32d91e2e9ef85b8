package store

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/wippyai/memseg"
	"github.com/wippyai/memseg/errors"
	"github.com/wippyai/memseg/internal/wasmbin"
	"github.com/wippyai/memseg/layout"
	"go.uber.org/zap"
)

// PageSize is the WebAssembly linear memory page size.
const PageSize = 65536

const memoryExport = "memory"

// LinearAllocator allocates native stores as the linear memory of freshly
// instantiated wazero modules. Each store gets its own module, so stores
// are isolated from each other and released independently.
type LinearAllocator struct {
	ctx   context.Context
	rt    wazero.Runtime
	owned bool
	seq   atomic.Uint64
}

// NewLinearAllocator uses rt to host stores. A nil rt creates a private
// runtime that Close shuts down.
func NewLinearAllocator(ctx context.Context, rt wazero.Runtime) *LinearAllocator {
	a := &LinearAllocator{ctx: ctx, rt: rt}
	if rt == nil {
		a.rt = wazero.NewRuntime(ctx)
		a.owned = true
	}
	return a
}

func (a *LinearAllocator) Name() string { return "linear" }

// Close shuts down a runtime created by NewLinearAllocator. Stores still
// alive become unusable.
func (a *LinearAllocator) Close(ctx context.Context) error {
	if !a.owned {
		return nil
	}
	return a.rt.Close(ctx)
}

// Allocate instantiates a module whose memory holds at least size bytes.
func (a *LinearAllocator) Allocate(size uint64) (memseg.Native, error) {
	if size == 0 {
		return nil, errors.InvalidSize(errors.PhaseAllocate, "byte size")
	}
	if size > math.MaxUint32 {
		return nil, errors.AllocationFailed(size, errors.Unsupported(errors.PhaseAllocate, "linear memory is limited to 4GiB"))
	}
	pages := uint32((size + PageSize - 1) / PageSize)

	compiled, err := a.rt.CompileModule(a.ctx, wasmbin.MemoryModule(memoryExport, pages, pages))
	if err != nil {
		return nil, errors.AllocationFailed(size, err)
	}

	name := fmt.Sprintf("memseg-%d", a.seq.Add(1))
	mod, err := a.rt.InstantiateModule(a.ctx, compiled, wazero.NewModuleConfig().WithName(name))
	if err != nil {
		_ = compiled.Close(a.ctx)
		return nil, errors.AllocationFailed(size, err)
	}

	mem := mod.ExportedMemory(memoryExport)
	if mem == nil {
		_ = mod.Close(a.ctx)
		_ = compiled.Close(a.ctx)
		return nil, errors.AllocationFailed(size, fmt.Errorf("module %s exports no memory", name))
	}

	Logger().Debug("instantiated linear store",
		zap.String("module", name),
		zap.Uint64("bytes", size),
		zap.Uint32("pages", pages))

	return &Linear{
		ctx:      a.ctx,
		mem:      mem,
		mod:      mod,
		compiled: compiled,
		size:     size,
	}, nil
}

// Linear is a native store over a wazero api.Memory.
type Linear struct {
	ctx      context.Context
	mem      api.Memory
	mod      api.Module
	compiled wazero.CompiledModule
	size     uint64
	released bool
}

func (m *Linear) Size() uint64 {
	return m.size
}

func (m *Linear) Released() bool {
	return m.released
}

func (m *Linear) view(offset, length uint64) ([]byte, error) {
	if m.released {
		return nil, errors.UseAfterClose(errors.PhaseAccess, m.mod.Name())
	}
	if err := checkRange(offset, length, m.size); err != nil {
		return nil, err
	}
	data, ok := m.mem.Read(uint32(offset), uint32(length))
	if !ok {
		return nil, errors.OutOfBounds(errors.PhaseAccess, offset+length, uint64(m.mem.Size()))
	}
	return data, nil
}

func (m *Linear) Read(offset uint64, l layout.Layout) (layout.Value, error) {
	data, err := m.view(offset, l.Size)
	if err != nil {
		return layout.Value{}, err
	}
	return layout.Decode(data, l), nil
}

func (m *Linear) Write(offset uint64, l layout.Layout, v layout.Value) error {
	data, err := m.view(offset, l.Size)
	if err != nil {
		return err
	}
	layout.Encode(data, l, v)
	return nil
}

func (m *Linear) Bytes(offset, length uint64) ([]byte, error) {
	return m.view(offset, length)
}

// Release closes the backing module. Calling it again is a no-op.
func (m *Linear) Release() error {
	if m.released {
		return nil
	}
	m.released = true
	name := m.mod.Name()
	err := m.mod.Close(m.ctx)
	if cerr := m.compiled.Close(m.ctx); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Wrap(errors.PhaseClose, errors.KindAllocation, err, "close linear store "+name)
	}
	Logger().Debug("closed linear store", zap.String("module", name))
	return nil
}

var (
	_ memseg.Native    = (*Linear)(nil)
	_ memseg.Allocator = (*LinearAllocator)(nil)
)
