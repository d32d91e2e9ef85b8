package segment_test

import (
	"context"
	"testing"

	"github.com/wippyai/memseg/layout"
	"github.com/wippyai/memseg/scope"
	"github.com/wippyai/memseg/segment"
	"github.com/wippyai/memseg/store"
)

const benchElements = 1_000_000

func sliceLoop(b *testing.B, seg segment.Segment) {
	b.Helper()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		it, _ := segment.Over(seg, layout.S32)
		for el := range it.All() {
			if _, err := el.Get(layout.S32); err != nil {
				b.Fatal(err)
			}
		}
	}
}

func BenchmarkNativeSliceLoop(b *testing.B) {
	sc := scope.Open()
	defer sc.Close()

	seg, err := sc.AllocateLayout(layout.S32, benchElements)
	if err != nil {
		b.Skipf("native allocation unavailable: %v", err)
	}
	sliceLoop(b, seg)
}

func BenchmarkLinearSliceLoop(b *testing.B) {
	ctx := context.Background()
	alloc := store.NewLinearAllocator(ctx, nil)
	defer alloc.Close(ctx)

	sc := scope.Open(scope.WithAllocator(alloc))
	defer sc.Close()

	seg, err := sc.AllocateLayout(layout.S32, benchElements)
	if err != nil {
		b.Fatal(err)
	}
	sliceLoop(b, seg)
}

func BenchmarkHeapSliceLoop(b *testing.B) {
	sliceLoop(b, segment.Of(make([]float32, benchElements)))
}
