package tgpu

import (
	"context"
	"testing"
)

func TestCopyBufferToBufferEndToEnd(t *testing.T) {
	d, rec := newTestDevice(t)
	src, err := CreateBufferInit(d, "src", []uint32{1, 2, 3, 4}, BufferUsageCopySrc)
	if err != nil {
		t.Fatalf("CreateBufferInit: %v", err)
	}
	dst, err := CreateBuffer[uint32](d, "dst", 4, BufferUsageCopyDst|BufferUsageMapRead)
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}

	e, err := d.CreateCommandEncoder("copy")
	if err != nil {
		t.Fatalf("CreateCommandEncoder: %v", err)
	}
	CopyBufferToBuffer(e, src, dst)
	cb, err := e.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if err := d.Queue().Submit(cb); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if err := dst.MapRead(context.Background()); err != nil {
		t.Fatalf("MapRead: %v", err)
	}
	m := dst.Mapped()
	if got := m.All(); got[0] != 1 || got[3] != 4 {
		t.Errorf("copied data = %v, want [1 2 3 4]", got)
	}
	m.Release()
	dst.Unmap()

	ops := rec.Ops()
	if !hasOp(ops, "copyB2B src=1 srcOff=0 dst=2 dstOff=0 size=16") {
		t.Errorf("journal missing copy, got %q", ops)
	}
}

func TestClearBufferZeroes(t *testing.T) {
	d, rec := newTestDevice(t)
	v, err := CreateBufferInit(d, "data", []uint32{9, 9, 9, 9}, BufferUsageCopyDst)
	if err != nil {
		t.Fatalf("CreateBufferInit: %v", err)
	}

	e, _ := d.CreateCommandEncoder("clear")
	ClearBuffer(e, v.Slice(1, 3))
	cb, err := e.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if err := d.Queue().Submit(cb); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	data := rawData(v)
	if data[0] != 9 || data[4] != 0 || data[8] != 0 || data[12] != 9 {
		t.Errorf("clear touched the wrong bytes: % x", data)
	}
	if !hasOp(rec.Ops(), "clearBuffer id=1 offset=4 size=8") {
		t.Errorf("journal = %q", rec.Ops())
	}
}

func TestClearBufferMisalignedPanics(t *testing.T) {
	d, _ := newTestDevice(t)
	v, err := CreateBuffer[uint16](d, "b", 8, BufferUsageCopyDst)
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}
	e, _ := d.CreateCommandEncoder("clear")
	expectPanic(t, "not aligned", func() {
		ClearBuffer(e, v.Slice(1, 3))
	})
	expectPanic(t, "not aligned", func() {
		ClearBuffer(e, v.Slice(0, 3))
	})
}

func TestClearBufferUsagePanics(t *testing.T) {
	d, _ := newTestDevice(t)
	v, err := CreateBuffer[uint32](d, "b", 4, BufferUsageCopySrc)
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}
	e, _ := d.CreateCommandEncoder("clear")
	expectPanic(t, "missing the CopyDst usage", func() {
		ClearBuffer(e, v)
	})
}

func TestCopyBufferToBufferValidation(t *testing.T) {
	d, _ := newTestDevice(t)
	src, _ := CreateBuffer[uint32](d, "src", 4, BufferUsageCopySrc)
	dst, _ := CreateBuffer[uint32](d, "dst", 8, BufferUsageCopyDst)
	e, _ := d.CreateCommandEncoder("copy")

	expectPanic(t, "copy length mismatch", func() {
		CopyBufferToBuffer(e, src, dst)
	})
	expectPanic(t, "cannot copy a buffer to itself", func() {
		both, _ := CreateBuffer[uint32](d, "both", 8, BufferUsageCopySrc|BufferUsageCopyDst)
		CopyBufferToBuffer(e, both.Slice(0, 4), both.Slice(4, 8))
	})
	expectPanic(t, "missing the CopySrc usage", func() {
		CopyBufferToBuffer(e, dst.SliceTo(4), dst.SliceTo(4))
	})
}

func TestEncoderLockedDuringPass(t *testing.T) {
	d, _ := newTestDevice(t)
	v, _ := CreateBuffer[uint32](d, "b", 4, BufferUsageCopyDst)
	e, _ := d.CreateCommandEncoder("enc")
	pass := e.BeginComputePass("pass")
	expectPanic(t, "is locked, not recording", func() {
		ClearBuffer(e, v)
	})
	pass.End()
	ClearBuffer(e, v)
}

func TestEncoderUseAfterFinishPanics(t *testing.T) {
	d, _ := newTestDevice(t)
	v, _ := CreateBuffer[uint32](d, "b", 4, BufferUsageCopyDst)
	e, _ := d.CreateCommandEncoder("enc")
	if _, err := e.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	expectPanic(t, "is finished, not recording", func() {
		ClearBuffer(e, v)
	})
	expectPanic(t, "is finished, not recording", func() {
		e.Finish()
	})
}

func TestSubmitAfterDestroyPanics(t *testing.T) {
	d, _ := newTestDevice(t)
	v, _ := CreateBufferInit(d, "src", []uint32{1}, BufferUsageCopySrc)
	dst, _ := CreateBuffer[uint32](d, "dst", 1, BufferUsageCopyDst)
	e, _ := d.CreateCommandEncoder("enc")
	CopyBufferToBuffer(e, v, dst)
	cb, err := e.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	dst.Destroy()
	expectPanic(t, "buffer has been destroyed", func() {
		d.Queue().Submit(cb)
	})
}
