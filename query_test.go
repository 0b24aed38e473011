package tgpu

import (
	"context"
	"testing"
)

func TestWriteTimestamp(t *testing.T) {
	d, rec := newTestDevice(t)
	set, err := d.CreateTimestampQuerySet("times", 4)
	if err != nil {
		t.Fatalf("CreateTimestampQuerySet: %v", err)
	}
	if set.Count() != 4 {
		t.Errorf("Count = %d, want 4", set.Count())
	}

	e, _ := d.CreateCommandEncoder("enc")
	e.WriteTimestamp(set, 0)
	e.WriteTimestamp(set, 3)
	expectPanic(t, "outside the set's 4 slots", func() {
		e.WriteTimestamp(set, 4)
	})

	if got := countOps(rec.Ops(), "writeTimestamp"); got != 2 {
		t.Errorf("writeTimestamp emitted %d times, want 2", got)
	}
}

func TestResolveQuerySet(t *testing.T) {
	d, rec := newTestDevice(t)
	set, err := d.CreateOcclusionQuerySet("vis", 4)
	if err != nil {
		t.Fatalf("CreateOcclusionQuerySet: %v", err)
	}
	dst, err := CreateBufferInit(d, "results", []uint64{1, 1, 1, 1},
		BufferUsageQueryResolve|BufferUsageMapRead)
	if err != nil {
		t.Fatalf("CreateBufferInit: %v", err)
	}

	e, _ := d.CreateCommandEncoder("enc")
	e.ResolveOcclusionQuerySet(set, 0, 4, dst)
	cb, err := e.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if err := d.Queue().Submit(cb); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if !hasOp(rec.Ops(), "resolveQuerySet set=1 first=0 count=4 dst=2 dstOff=0") {
		t.Errorf("journal = %q", rec.Ops())
	}

	// The recording driver zeroes resolved slots.
	if err := dst.MapRead(context.Background()); err != nil {
		t.Fatalf("MapRead: %v", err)
	}
	m := dst.Mapped()
	for i, got := range m.All() {
		if got != 0 {
			t.Errorf("result[%d] = %d, want 0", i, got)
		}
	}
	m.Release()
	dst.Unmap()
}

func TestResolveQuerySetValidation(t *testing.T) {
	d, _ := newTestDevice(t)
	set, _ := d.CreateOcclusionQuerySet("vis", 4)
	dst, _ := CreateBuffer[uint64](d, "results", 64, BufferUsageQueryResolve)
	e, _ := d.CreateCommandEncoder("enc")

	expectPanic(t, "outside the set's 4 slots", func() {
		e.ResolveOcclusionQuerySet(set, 2, 3, dst)
	})
	// The range check must not wrap around at the uint32 boundary.
	expectPanic(t, "outside the set's 4 slots", func() {
		e.ResolveOcclusionQuerySet(set, 0xFFFFFFFF, 2, dst)
	})
	expectPanic(t, "is not a multiple of 256", func() {
		// Element 1 puts the destination at byte offset 8.
		e.ResolveOcclusionQuerySet(set, 0, 2, dst.Slice(1, 3))
	})
	expectPanic(t, "holds 2 results, need 4", func() {
		e.ResolveOcclusionQuerySet(set, 0, 4, dst.Slice(0, 2))
	})

	noResolve, _ := CreateBuffer[uint64](d, "plain", 4, BufferUsageCopyDst)
	expectPanic(t, "missing the QueryResolve usage", func() {
		e.ResolveOcclusionQuerySet(set, 0, 4, noResolve)
	})
}

func TestQuerySetDestroy(t *testing.T) {
	d, rec := newTestDevice(t)
	set, _ := d.CreateOcclusionQuerySet("vis", 2)
	dst, _ := CreateBuffer[uint64](d, "results", 2, BufferUsageQueryResolve)
	set.Destroy()
	set.Destroy()
	if got := countOps(rec.Ops(), "querySet1.destroy"); got != 1 {
		t.Errorf("destroy calls = %d, want 1", got)
	}

	e, _ := d.CreateCommandEncoder("enc")
	expectPanic(t, "query set has been destroyed", func() {
		e.ResolveOcclusionQuerySet(set, 0, 2, dst)
	})
}
