package tgpu

import (
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/tgpu/format"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	return img
}

func TestGenerateMipChain(t *testing.T) {
	chain := GenerateMipChain(testImage(8, 4))
	if len(chain) != 4 {
		t.Fatalf("chain length = %d, want 4", len(chain))
	}
	wantSizes := [][2]int{{8, 4}, {4, 2}, {2, 1}, {1, 1}}
	for i, img := range chain {
		b := img.Bounds()
		if b.Dx() != wantSizes[i][0] || b.Dy() != wantSizes[i][1] {
			t.Errorf("level %d = %dx%d, want %dx%d", i, b.Dx(), b.Dy(), wantSizes[i][0], wantSizes[i][1])
		}
	}
}

func TestWriteImage(t *testing.T) {
	d, rec := newTestDevice(t)
	tex, err := d.CreateTexture(&TextureDescriptor{
		Label:  "sprite",
		Width:  8,
		Height: 8,
		Format: format.RGBA8Unorm,
		Usage:  TextureUsageCopyDst | TextureUsageTextureBinding,
	})
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	if err := WriteImage(d.Queue(), tex, 0, testImage(8, 8)); err != nil {
		t.Fatalf("WriteImage: %v", err)
	}
	if !hasOp(rec.Ops(), "queue.writeTexture id=1 mip=0 bytes=256 bytesPerRow=32") {
		t.Errorf("journal = %q", rec.Ops())
	}
}

func TestWriteImageCompressedPanics(t *testing.T) {
	d, _ := newTestDevice(t)
	tex, _ := d.CreateTexture(&TextureDescriptor{
		Label:  "bc",
		Width:  8,
		Height: 8,
		Format: format.BC1RGBAUnorm,
		Usage:  TextureUsageCopyDst,
	})
	expectPanic(t, "cannot upload an image to a bc1-rgba-unorm texture", func() {
		WriteImage(d.Queue(), tex, 0, testImage(8, 8))
	})
}

func TestWriteMipChain(t *testing.T) {
	d, rec := newTestDevice(t)
	tex, err := d.CreateTexture(&TextureDescriptor{
		Label:         "mipped",
		Width:         8,
		Height:        8,
		MipLevelCount: 4,
		Format:        format.RGBA8Unorm,
		Usage:         TextureUsageCopyDst | TextureUsageTextureBinding,
	})
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	if err := WriteMipChain(d.Queue(), tex, testImage(8, 8)); err != nil {
		t.Fatalf("WriteMipChain: %v", err)
	}
	if got := countOps(rec.Ops(), "queue.writeTexture"); got != 4 {
		t.Errorf("writeTexture emitted %d times, want 4", got)
	}
}

func TestWriteMipChainCountMismatchPanics(t *testing.T) {
	d, _ := newTestDevice(t)
	tex, _ := d.CreateTexture(&TextureDescriptor{
		Label:         "deep",
		Width:         64,
		Height:        64,
		MipLevelCount: 7,
		Format:        format.RGBA8Unorm,
		Usage:         TextureUsageCopyDst,
	})
	// An 8x8 source image only yields 4 levels.
	expectPanic(t, "image yields 4 mip levels, texture has 7", func() {
		WriteMipChain(d.Queue(), tex, testImage(8, 8))
	})
}
