package memory

import "testing"

func TestAlignUp(t *testing.T) {
	cases := []struct {
		size, alignment, want uint64
	}{
		{0, 16, 0},
		{1, 16, 16},
		{16, 16, 16},
		{17, 16, 32},
		{12, 0, 12},
	}
	for _, tc := range cases {
		if got := alignUp(tc.size, tc.alignment); got != tc.want {
			t.Errorf("alignUp(%d, %d) = %d, want %d", tc.size, tc.alignment, got, tc.want)
		}
	}
}

func TestTypedBufferFreeListReuse(t *testing.T) {
	tb := &typedBuffer{kind: KindUniform, capacity: 1 << 16}

	off1, err := tb.allocRange(nil, nil, nil, 64, 16)
	if err != nil {
		t.Fatalf("alloc 1: %s", err)
	}
	off2, err := tb.allocRange(nil, nil, nil, 64, 16)
	if err != nil {
		t.Fatalf("alloc 2: %s", err)
	}
	if off1 == off2 {
		t.Fatalf("distinct allocations returned the same offset %d", off1)
	}

	tb.release(off1, 64)
	if len(tb.free) != 1 {
		t.Fatalf("expected 1 free region after release, got %d", len(tb.free))
	}

	off3, err := tb.allocRange(nil, nil, nil, 64, 16)
	if err != nil {
		t.Fatalf("alloc 3: %s", err)
	}
	if off3 != off1 {
		t.Errorf("best-fit alloc should reuse freed offset %d, got %d", off1, off3)
	}
}

func TestTypedBufferBestFitPicksSmallestSufficientRegion(t *testing.T) {
	tb := &typedBuffer{
		kind:     KindStorage,
		capacity: 1 << 16,
		free: []freeRegion{
			{offset: 0, size: 256},
			{offset: 1024, size: 64},
			{offset: 2048, size: 128},
		},
	}

	idx, offset := tb.bestFit(64, 16)
	if idx == -1 {
		t.Fatalf("expected a fit for 64 bytes")
	}
	if offset != 1024 {
		t.Errorf("bestFit should pick the tightest region (offset 1024, size 64), got offset %d", offset)
	}
}
