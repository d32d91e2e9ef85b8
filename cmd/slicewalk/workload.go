package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"go.uber.org/zap"

	"github.com/wippyai/memseg"
	"github.com/wippyai/memseg/errors"
	"github.com/wippyai/memseg/layout"
	"github.com/wippyai/memseg/scope"
	"github.com/wippyai/memseg/segment"
	"github.com/wippyai/memseg/store"
)

// workload describes one run: setup, N walks, then teardown.
type workload struct {
	Name       string `yaml:"name"`
	Backing    string `yaml:"backing"`
	Layout     string `yaml:"layout"`
	Elements   uint64 `yaml:"elements"`
	Iterations int    `yaml:"iterations"`
	Inclusive  bool   `yaml:"inclusive"`
}

type workloadFile struct {
	Runs []workload `yaml:"runs"`
}

type result struct {
	err      error
	w        workload
	elapsed  time.Duration
	bytes    uint64
	visited  uint64
	checksum int64
}

func (r result) perIteration() time.Duration {
	if r.w.Iterations == 0 {
		return 0
	}
	return r.elapsed / time.Duration(r.w.Iterations)
}

var backings = []string{"mapped", "linear", "heap"}

func loadWorkloads(path string) ([]workload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "read workload file")
	}
	var f workloadFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "parse workload file")
	}
	if len(f.Runs) == 0 {
		return nil, errors.InvalidInput(errors.PhaseLoad, "workload file defines no runs")
	}
	for i := range f.Runs {
		f.Runs[i].defaults()
		if err := f.Runs[i].validate(); err != nil {
			return nil, err
		}
	}
	return f.Runs, nil
}

func (w *workload) defaults() {
	if w.Layout == "" {
		w.Layout = "s32"
	}
	if w.Elements == 0 {
		w.Elements = 1_000_000
	}
	if w.Iterations == 0 {
		w.Iterations = 10
	}
	if w.Name == "" {
		w.Name = w.Backing + "_slice_loop"
	}
}

func (w workload) validate() error {
	switch w.Backing {
	case "mapped", "linear", "heap":
	default:
		return errors.InvalidInput(errors.PhaseLoad, fmt.Sprintf("run %q: unknown backing %q", w.Name, w.Backing))
	}
	if _, err := layout.Parse(w.Layout); err != nil {
		return err
	}
	if w.Iterations < 0 {
		return errors.InvalidInput(errors.PhaseLoad, fmt.Sprintf("run %q: negative iterations", w.Name))
	}
	return nil
}

func (w workload) run(ctx context.Context, log *zap.Logger) result {
	res := result{w: w}
	l, err := layout.Parse(w.Layout)
	if err != nil {
		res.err = err
		return res
	}
	res.bytes = w.Elements * l.Size

	walk := func(seg segment.Segment) error {
		if err := seed(seg, l); err != nil {
			return err
		}
		start := time.Now()
		for i := 0; i < w.Iterations; i++ {
			visited, sum, err := walkOnce(seg, l, w.Inclusive)
			if err != nil {
				return err
			}
			res.visited, res.checksum = visited, sum
		}
		res.elapsed = time.Since(start)
		return nil
	}

	if w.Backing == "heap" {
		seg, err := heapSegment(l, w.Elements)
		if err != nil {
			res.err = err
			return res
		}
		res.err = walk(seg)
		return res
	}

	var alloc memseg.Allocator = store.NewMmapAllocator()
	if w.Backing == "linear" {
		linear := store.NewLinearAllocator(ctx, nil)
		defer linear.Close(ctx)
		alloc = linear
	}

	res.err = scope.With(func(sc *scope.Scope) error {
		seg, err := sc.AllocateLayout(l, w.Elements)
		if err != nil {
			return err
		}
		return walk(seg)
	}, scope.WithAllocator(alloc), scope.WithLogger(log), scope.WithName(w.Name))
	return res
}

// maxHeapBytes bounds heap runs to what a single Go allocation can hold.
const maxHeapBytes = math.MaxInt32 * 8

// heapSegment wraps a typed Go slice of n elements matching l, the way a
// float[] or int[] array would be wrapped on the heap.
func heapSegment(l layout.Layout, n uint64) (segment.Segment, error) {
	if n > maxHeapBytes/l.Size {
		return segment.Segment{}, errors.New(errors.PhaseAllocate, errors.KindInvalidSize).
			Detail("%d elements of %s exceed the heap limit", n, l).
			Value(n).
			Build()
	}
	switch l.Kind {
	case layout.KindS8:
		return segment.Of(make([]int8, n)), nil
	case layout.KindU8:
		return segment.Of(make([]uint8, n)), nil
	case layout.KindS16:
		return segment.Of(make([]int16, n)), nil
	case layout.KindU16:
		return segment.Of(make([]uint16, n)), nil
	case layout.KindS32:
		return segment.Of(make([]int32, n)), nil
	case layout.KindU32:
		return segment.Of(make([]uint32, n)), nil
	case layout.KindS64:
		return segment.Of(make([]int64, n)), nil
	case layout.KindU64:
		return segment.Of(make([]uint64, n)), nil
	case layout.KindF32:
		return segment.Of(make([]float32, n)), nil
	case layout.KindF64:
		return segment.Of(make([]float64, n)), nil
	}
	return segment.Segment{}, errors.InvalidLayout(fmt.Sprintf("no heap element type for %s", l))
}

// seed stores each element's index so the walk has something to sum.
func seed(seg segment.Segment, l layout.Layout) error {
	n := seg.ByteSize() / l.Size
	for i := uint64(0); i < n; i++ {
		v := layout.OfInt64(int64(i))
		if l.Kind.Float() {
			v = layout.OfFloat64(float64(i))
			if l.Kind == layout.KindF32 {
				v = layout.OfFloat32(float32(i))
			}
		}
		if err := seg.SetAtIndex(l, i, v); err != nil {
			return err
		}
	}
	return nil
}

func walkOnce(seg segment.Segment, l layout.Layout, inclusive bool) (uint64, int64, error) {
	var opts []segment.IterOption
	if inclusive {
		opts = append(opts, segment.Inclusive())
	}
	it, err := segment.Over(seg, l, opts...)
	if err != nil {
		return 0, 0, err
	}

	var visited uint64
	var sum int64
	err = it.ForEach(l, func(v layout.Value) error {
		visited++
		switch l.Kind {
		case layout.KindF32:
			sum += int64(v.Float32())
		case layout.KindF64:
			sum += int64(v.Float64())
		default:
			sum += v.Int64()
		}
		return nil
	})
	return visited, sum, err
}
