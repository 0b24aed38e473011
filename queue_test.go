package tgpu

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/tgpu/format"
)

func TestWriteBuffer(t *testing.T) {
	d, rec := newTestDevice(t)
	v, err := CreateBuffer[uint32](d, "b", 4, BufferUsageCopyDst)
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}

	if err := WriteBuffer(d.Queue(), v.Slice(1, 3), []uint32{5, 6}); err != nil {
		t.Fatalf("WriteBuffer: %v", err)
	}

	data := rawData(v)
	if data[4] != 5 || data[8] != 6 {
		t.Errorf("written bytes = % x", data)
	}
	if !hasOp(rec.Ops(), "queue.writeBuffer id=1 offset=4 size=8") {
		t.Errorf("journal = %q", rec.Ops())
	}
}

func TestWriteBufferValidation(t *testing.T) {
	d, _ := newTestDevice(t)
	v, _ := CreateBuffer[uint32](d, "b", 4, BufferUsageCopyDst)
	noDst, _ := CreateBuffer[uint32](d, "src", 4, BufferUsageCopySrc)

	expectPanic(t, "write of 3 elements into a view of 4", func() {
		WriteBuffer(d.Queue(), v, []uint32{1, 2, 3})
	})
	expectPanic(t, "missing the CopyDst usage", func() {
		WriteBuffer(d.Queue(), noDst, []uint32{1, 2, 3, 4})
	})

	odd, _ := CreateBuffer[uint16](d, "odd", 4, BufferUsageCopyDst)
	expectPanic(t, "not aligned", func() {
		WriteBuffer(d.Queue(), odd.Slice(1, 4), []uint16{1, 2, 3})
	})
}

func TestWriteTexture(t *testing.T) {
	d, rec := newTestDevice(t)
	tex, err := d.CreateTexture(&TextureDescriptor{
		Label:  "tex",
		Width:  4,
		Height: 4,
		Format: format.RGBA8Unorm,
		Usage:  TextureUsageCopyDst,
	})
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}

	texels := make([]RGBA8, 16)
	err = WriteTexture(d.Queue(), ImageCopyTexture{Texture: tex}, texels,
		gputypes.Extent3D{Width: 4, Height: 4, DepthOrArrayLayers: 1})
	if err != nil {
		t.Fatalf("WriteTexture: %v", err)
	}
	if !hasOp(rec.Ops(), "queue.writeTexture id=1 mip=0 bytes=64 bytesPerRow=16") {
		t.Errorf("journal = %q", rec.Ops())
	}
}

func TestWriteTextureValidation(t *testing.T) {
	d, _ := newTestDevice(t)
	tex, _ := d.CreateTexture(&TextureDescriptor{
		Label:  "tex",
		Width:  4,
		Height: 4,
		Format: format.RGBA8Unorm,
		Usage:  TextureUsageCopyDst,
	})
	full := gputypes.Extent3D{Width: 4, Height: 4, DepthOrArrayLayers: 1}

	expectPanic(t, "does not match the rgba8unorm block size 4", func() {
		WriteTexture(d.Queue(), ImageCopyTexture{Texture: tex}, make([]uint16, 16), full)
	})
	expectPanic(t, "write needs 16 elements but data has 8", func() {
		WriteTexture(d.Queue(), ImageCopyTexture{Texture: tex}, make([]RGBA8, 8), full)
	})
	expectPanic(t, "exceeds mip level 0 extent", func() {
		WriteTexture(d.Queue(), ImageCopyTexture{Texture: tex}, make([]RGBA8, 64),
			gputypes.Extent3D{Width: 8, Height: 8, DepthOrArrayLayers: 1})
	})

	noDst, _ := d.CreateTexture(&TextureDescriptor{
		Label:  "sampled",
		Width:  4,
		Height: 4,
		Format: format.RGBA8Unorm,
		Usage:  TextureUsageTextureBinding,
	})
	expectPanic(t, "cannot be used as a copy destination", func() {
		WriteTexture(d.Queue(), ImageCopyTexture{Texture: noDst}, make([]RGBA8, 16), full)
	})
}

func TestQueueWait(t *testing.T) {
	d, rec := newTestDevice(t)
	if err := d.Queue().Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if !hasOp(rec.Ops(), "queue.wait") {
		t.Errorf("journal = %q", rec.Ops())
	}
}

func TestSubmitMultiple(t *testing.T) {
	d, rec := newTestDevice(t)
	e1, _ := d.CreateCommandEncoder("a")
	e2, _ := d.CreateCommandEncoder("b")
	cb1, _ := e1.Finish()
	cb2, _ := e2.Finish()
	if err := d.Queue().Submit(cb1, cb2); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !hasOp(rec.Ops(), "submit n=2") {
		t.Errorf("journal = %q", rec.Ops())
	}
}
