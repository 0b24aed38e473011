package tgpu

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/tgpu/format"
)

func newCopyTexture(t *testing.T, d *Device, usage TextureUsage) *Texture {
	t.Helper()
	tex, err := d.CreateTexture(&TextureDescriptor{
		Label:  "tex",
		Width:  16,
		Height: 16,
		Format: format.RGBA8Unorm,
		Usage:  usage,
	})
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	return tex
}

func TestNewImageCopyBufferAlignment(t *testing.T) {
	d, _ := newTestDevice(t)
	v, _ := CreateBuffer[RGBA8](d, "staging", 1024, BufferUsageCopySrc)
	expectPanic(t, "bytes per row 100 is not a multiple of 256", func() {
		NewImageCopyBuffer(v, 100, 0)
	})
	NewImageCopyBuffer(v, 256, 0)
}

func TestCopyBufferToTexture(t *testing.T) {
	d, rec := newTestDevice(t)
	tex := newCopyTexture(t, d, TextureUsageCopyDst)
	// 16 texels per row at 4 bytes each, padded to the 256-byte stride.
	v, _ := CreateBuffer[RGBA8](d, "staging", 64*16, BufferUsageCopySrc)

	e, _ := d.CreateCommandEncoder("upload")
	CopyBufferToTexture(e, NewImageCopyBuffer(v, 256, 0), ImageCopyTexture{Texture: tex},
		gputypes.Extent3D{Width: 16, Height: 16, DepthOrArrayLayers: 1})
	if _, err := e.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	if !hasOp(rec.Ops(), "copyB2T src=2 bytesPerRow=256 dst=1 mip=0 size=16x16x1") {
		t.Errorf("journal = %q", rec.Ops())
	}
}

func TestCopyTextureToBuffer(t *testing.T) {
	d, rec := newTestDevice(t)
	tex := newCopyTexture(t, d, TextureUsageCopySrc)
	v, _ := CreateBuffer[RGBA8](d, "readback", 64*16, BufferUsageCopyDst)

	e, _ := d.CreateCommandEncoder("readback")
	CopyTextureToBuffer(e, ImageCopyTexture{Texture: tex}, NewImageCopyBuffer(v, 256, 0),
		gputypes.Extent3D{Width: 16, Height: 16, DepthOrArrayLayers: 1})
	if _, err := e.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	if !hasOp(rec.Ops(), "copyT2B src=1 mip=0 dst=2 bytesPerRow=256") {
		t.Errorf("journal = %q", rec.Ops())
	}
}

func TestCopyBufferImageValidation(t *testing.T) {
	d, _ := newTestDevice(t)
	tex := newCopyTexture(t, d, TextureUsageCopyDst)
	full := gputypes.Extent3D{Width: 16, Height: 16, DepthOrArrayLayers: 1}

	e, _ := d.CreateCommandEncoder("upload")

	// Rows of 16 RGBA8 blocks need 64 bytes; 256 covers them, but a
	// short buffer does not hold 16 rows.
	small, _ := CreateBuffer[RGBA8](d, "small", 64, BufferUsageCopySrc)
	expectPanic(t, "copy needs", func() {
		CopyBufferToTexture(e, NewImageCopyBuffer(small, 256, 0), ImageCopyTexture{Texture: tex}, full)
	})

	// The element size must match the block size.
	wide, _ := CreateBuffer[uint64](d, "wide", 1024, BufferUsageCopySrc)
	expectPanic(t, "does not match the rgba8unorm block size 4", func() {
		CopyBufferToTexture(e, NewImageCopyBuffer(wide, 256, 0), ImageCopyTexture{Texture: tex}, full)
	})

	// Depth formats without a byte layout cannot be buffer-copied.
	depth, err := d.CreateTexture(&TextureDescriptor{
		Label:  "depth",
		Width:  16,
		Height: 16,
		Format: format.Depth24Plus,
		Usage:  TextureUsageCopyDst,
	})
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	buf, _ := CreateBuffer[uint32](d, "buf", 64*16, BufferUsageCopySrc)
	expectPanic(t, "cannot take part in buffer image copies", func() {
		CopyBufferToTexture(e, NewImageCopyBuffer(buf, 256, 0), ImageCopyTexture{Texture: depth}, full)
	})

	// Source usage is checked before the region.
	noSrc, _ := CreateBuffer[RGBA8](d, "noSrc", 64*16, BufferUsageCopyDst)
	expectPanic(t, "missing the CopySrc usage", func() {
		CopyBufferToTexture(e, NewImageCopyBuffer(noSrc, 256, 0), ImageCopyTexture{Texture: tex}, full)
	})
}

func TestCopyTextureToTexture(t *testing.T) {
	d, rec := newTestDevice(t)
	src := newCopyTexture(t, d, TextureUsageCopySrc)
	dst := newCopyTexture(t, d, TextureUsageCopyDst)

	e, _ := d.CreateCommandEncoder("blit")
	e.CopyTextureToTexture(ImageCopyTexture{Texture: src}, ImageCopyTexture{Texture: dst},
		gputypes.Extent3D{Width: 16, Height: 16, DepthOrArrayLayers: 1})

	if !hasOp(rec.Ops(), "copyT2T src=1 dst=2 size=16x16x1") {
		t.Errorf("journal = %q", rec.Ops())
	}
}

func TestCopyTextureToTextureFormatMismatchPanics(t *testing.T) {
	d, _ := newTestDevice(t)
	src := newCopyTexture(t, d, TextureUsageCopySrc)
	dst, _ := d.CreateTexture(&TextureDescriptor{
		Label:  "other",
		Width:  16,
		Height: 16,
		Format: format.BGRA8Unorm,
		Usage:  TextureUsageCopyDst,
	})

	e, _ := d.CreateCommandEncoder("blit")
	expectPanic(t, "cannot copy between rgba8unorm and bgra8unorm textures", func() {
		e.CopyTextureToTexture(ImageCopyTexture{Texture: src}, ImageCopyTexture{Texture: dst},
			gputypes.Extent3D{Width: 16, Height: 16, DepthOrArrayLayers: 1})
	})
}

func TestCopyRegionBlockAlignmentPanics(t *testing.T) {
	d, _ := newTestDevice(t)
	tex, err := d.CreateTexture(&TextureDescriptor{
		Label:  "bc",
		Width:  16,
		Height: 16,
		Format: format.BC1RGBAUnorm,
		Usage:  TextureUsageCopyDst,
	})
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	v, _ := CreateBuffer[uint64](d, "blocks", 64*4, BufferUsageCopySrc)

	e, _ := d.CreateCommandEncoder("upload")
	expectPanic(t, "not aligned to the bc1-rgba-unorm block size 4x4", func() {
		CopyBufferToTexture(e, NewImageCopyBuffer(v, 256, 0), ImageCopyTexture{Texture: tex},
			gputypes.Extent3D{Width: 6, Height: 4, DepthOrArrayLayers: 1})
	})
}
