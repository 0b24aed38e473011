package tgpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"

	"github.com/gogpu/tgpu/format"
)

// RGBA8 is the texel layout of the 8-bit RGBA formats.
type RGBA8 [4]uint8

// GenerateMipChain downscales img into a full mip chain, level 0 being
// img itself. Scaling uses Catmull-Rom resampling.
func GenerateMipChain(img image.Image) []*image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	levels := int(maxMipLevels(uint32(w), uint32(h), 1))
	chain := make([]*image.RGBA, levels)

	level0 := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(level0, level0.Bounds(), img, b.Min, draw.Src)
	chain[0] = level0

	for i := 1; i < levels; i++ {
		w = max(w/2, 1)
		h = max(h/2, 1)
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), chain[i-1], chain[i-1].Bounds(), draw.Src, nil)
		chain[i] = dst
	}
	return chain
}

// WriteImage uploads img into mip level mip of t. The texture must use
// an RGBA8 format of the level's exact size.
func WriteImage(q *Queue, t *Texture, mip uint32, img image.Image) error {
	if format.Get(t.Format()).BytesPerBlock != 4 || format.Get(t.Format()).IsCompressed() {
		panic(fmt.Sprintf("tgpu: cannot upload an image to a %s texture", t.Format()))
	}
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != 4*b.Dx() {
		tight := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(tight, tight.Bounds(), img, b.Min, draw.Src)
		rgba = tight
	}
	size := gputypes.Extent3D{Width: uint32(b.Dx()), Height: uint32(b.Dy()), DepthOrArrayLayers: 1}
	return WriteTexture(q, ImageCopyTexture{Texture: t, MipLevel: mip}, SliceFromBytes[RGBA8](rgba.Pix), size)
}

// WriteMipChain uploads img and its generated mip chain into t. The
// texture must have been created with a matching size and mip count.
func WriteMipChain(q *Queue, t *Texture, img image.Image) error {
	chain := GenerateMipChain(img)
	if uint32(len(chain)) < t.MipLevelCount() {
		panic(fmt.Sprintf("tgpu: image yields %d mip levels, texture has %d", len(chain), t.MipLevelCount()))
	}
	for mip := uint32(0); mip < t.MipLevelCount(); mip++ {
		if err := WriteImage(q, t, mip, chain[mip]); err != nil {
			return err
		}
	}
	return nil
}
