package tgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/tgpu/format"
)

// bytesPerRowAlignment is the required alignment of BytesPerRow in
// buffer image copies, and of destination offsets in query resolves.
const bytesPerRowAlignment = 256

// ImageCopyBuffer is the buffer endpoint of an image copy. The element
// type fixes the texel block size: copies only typecheck against
// formats whose BytesPerBlock equals the element size, which is
// verified when the copy is encoded.
type ImageCopyBuffer[T any] struct {
	view         *View[T]
	bytesPerRow  uint32
	rowsPerImage uint32
}

// NewImageCopyBuffer describes rows of blocks laid out in v.
// bytesPerRow must be a multiple of 256; rowsPerImage may be zero for
// single-layer copies.
func NewImageCopyBuffer[T any](v *View[T], bytesPerRow, rowsPerImage uint32) ImageCopyBuffer[T] {
	if bytesPerRow%bytesPerRowAlignment != 0 {
		panic(fmt.Sprintf("tgpu: bytes per row %d is not a multiple of %d", bytesPerRow, bytesPerRowAlignment))
	}
	return ImageCopyBuffer[T]{view: v, bytesPerRow: bytesPerRow, rowsPerImage: rowsPerImage}
}

// ImageCopyTexture is the texture endpoint of an image copy.
type ImageCopyTexture struct {
	Texture  *Texture
	MipLevel uint32
	Origin   gputypes.Origin3D
	Aspect   gputypes.TextureAspect
}

// validateTextureRegion panics unless the copy region lies inside the
// given mip level and is aligned to the format's block size.
func validateTextureRegion(t *Texture, mip uint32, origin gputypes.Origin3D, size gputypes.Extent3D) format.Info {
	t.checkAlive()
	if mip >= t.mipLevels {
		panic(fmt.Sprintf("tgpu: mip level %d is outside the texture's %d levels", mip, t.mipLevels))
	}
	info := format.Get(t.format)
	if origin.X%info.BlockWidth != 0 || origin.Y%info.BlockHeight != 0 ||
		size.Width%info.BlockWidth != 0 || size.Height%info.BlockHeight != 0 {
		panic(fmt.Sprintf("tgpu: copy region %dx%d at (%d, %d) is not aligned to the %s block size %dx%d",
			size.Width, size.Height, origin.X, origin.Y, t.format, info.BlockWidth, info.BlockHeight))
	}
	w, h, d := t.mipExtent(mip)
	if uint64(origin.X)+uint64(size.Width) > uint64(w) ||
		uint64(origin.Y)+uint64(size.Height) > uint64(h) ||
		uint64(origin.Z)+uint64(size.DepthOrArrayLayers) > uint64(d) {
		panic(fmt.Sprintf("tgpu: copy region %dx%dx%d at (%d, %d, %d) exceeds mip level %d extent %dx%dx%d",
			size.Width, size.Height, size.DepthOrArrayLayers, origin.X, origin.Y, origin.Z, mip, w, h, d))
	}
	return info
}

// validateBufferImage panics unless the buffer endpoint can hold the
// described region for a format with the given block info, and the
// element size matches the block size.
func validateBufferImage[T any](b ImageCopyBuffer[T], info format.Info, f format.Format, size gputypes.Extent3D) {
	if !info.CopyCompatible() {
		panic(fmt.Sprintf("tgpu: format %s cannot take part in buffer image copies", f))
	}
	if uint32(sizeOf[T]()) != info.BytesPerBlock {
		panic(fmt.Sprintf("tgpu: element size %d does not match the %s block size %d",
			sizeOf[T](), f, info.BytesPerBlock))
	}
	widthInBlocks := size.Width / info.BlockWidth
	heightInBlocks := size.Height / info.BlockHeight
	blocksPerRow := b.bytesPerRow / info.BytesPerBlock
	if blocksPerRow < widthInBlocks {
		panic(fmt.Sprintf("tgpu: bytes per row %d holds %d blocks, copy rows are %d blocks wide",
			b.bytesPerRow, blocksPerRow, widthInBlocks))
	}
	rows := b.rowsPerImage
	if rows == 0 {
		rows = heightInBlocks
	}
	if rows < heightInBlocks {
		panic(fmt.Sprintf("tgpu: rows per image %d is less than the copy height of %d block rows",
			rows, heightInBlocks))
	}
	if size.DepthOrArrayLayers == 0 || size.Width == 0 || size.Height == 0 {
		return
	}
	// The last row of the last image is not padded out to bytesPerRow.
	images := uint64(size.DepthOrArrayLayers-1) * uint64(rows) * uint64(b.bytesPerRow)
	lastImage := uint64(heightInBlocks-1)*uint64(b.bytesPerRow) + uint64(widthInBlocks)*uint64(info.BytesPerBlock)
	if need := images + lastImage; need > b.view.SizeBytes() {
		panic(fmt.Sprintf("tgpu: copy needs %d bytes but the buffer view has %d", need, b.view.SizeBytes()))
	}
}
