package tgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/tgpu/driver"
)

// Queue submits finished command buffers and performs direct writes on
// the queue timeline.
type Queue struct {
	dev *Device
	q   driver.Queue
}

// Submit hands command buffers to the GPU. Buffers referenced by the
// recordings must still be alive; a destroyed buffer panics here
// instead of faulting on the GPU timeline.
func (q *Queue) Submit(buffers ...*CommandBuffer) error {
	handles := make([]driver.CommandBuffer, len(buffers))
	for i, cb := range buffers {
		for _, b := range cb.retained {
			b.checkAlive()
		}
		handles[i] = cb.handle
	}
	if err := q.q.Submit(handles); err != nil {
		return fmt.Errorf("tgpu: submit: %w", err)
	}
	for _, cb := range buffers {
		cb.retained = nil
	}
	return nil
}

// WriteBuffer copies data into dst on the queue timeline, without
// mapping. The view must hold exactly len(data) elements, the byte
// range must be aligned to 4 bytes and the buffer needs CopyDst usage.
func WriteBuffer[T any](q *Queue, dst *View[T], data []T) error {
	dst.buf.checkAlive()
	requireUsage(dst.buf.usage, BufferUsageCopyDst, "a queue write")
	if len(data) != dst.Len() {
		panic(fmt.Sprintf("tgpu: write of %d elements into a view of %d", len(data), dst.Len()))
	}
	raw := toBytes(data)
	if dst.OffsetBytes()%copyAlignment != 0 || uint64(len(raw))%copyAlignment != 0 {
		panic(fmt.Sprintf("tgpu: write of %d bytes at offset %d is not aligned to %d bytes",
			len(raw), dst.OffsetBytes(), copyAlignment))
	}
	if err := q.q.WriteBuffer(dst.buf.handle, dst.OffsetBytes(), raw); err != nil {
		return fmt.Errorf("tgpu: write buffer %q: %w", dst.buf.label, err)
	}
	return nil
}

// WriteTexture copies tightly packed block rows into a texture region
// on the queue timeline. Unlike encoded copies, the row stride needs no
// 256-byte alignment. The element type must match the format's block
// size and the texture needs CopyDst usage.
func WriteTexture[T any](q *Queue, dst ImageCopyTexture, data []T, size gputypes.Extent3D) error {
	if dst.Texture.usage&TextureUsageCopyDst == 0 {
		panic(fmt.Sprintf("tgpu: texture %q cannot be used as a copy destination", dst.Texture.label))
	}
	info := validateTextureRegion(dst.Texture, dst.MipLevel, dst.Origin, size)
	if !info.CopyCompatible() {
		panic(fmt.Sprintf("tgpu: format %s cannot take part in buffer image copies", dst.Texture.format))
	}
	if uint32(sizeOf[T]()) != info.BytesPerBlock {
		panic(fmt.Sprintf("tgpu: element size %d does not match the %s block size %d",
			sizeOf[T](), dst.Texture.format, info.BytesPerBlock))
	}
	widthInBlocks := size.Width / info.BlockWidth
	heightInBlocks := size.Height / info.BlockHeight
	need := uint64(widthInBlocks) * uint64(heightInBlocks) * uint64(size.DepthOrArrayLayers)
	if uint64(len(data)) < need {
		panic(fmt.Sprintf("tgpu: write needs %d elements but data has %d", need, len(data)))
	}
	layout := gputypes.TextureDataLayout{
		BytesPerRow:  widthInBlocks * info.BytesPerBlock,
		RowsPerImage: heightInBlocks,
	}
	err := q.q.WriteTexture(&driver.ImageCopyTexture{
		Texture:  dst.Texture.handle,
		MipLevel: dst.MipLevel,
		Origin:   dst.Origin,
		Aspect:   dst.Aspect,
	}, toBytes(data), layout, size)
	if err != nil {
		return fmt.Errorf("tgpu: write texture %q: %w", dst.Texture.label, err)
	}
	return nil
}

// Wait blocks until all submitted work has completed.
func (q *Queue) Wait() error {
	if err := q.q.Wait(); err != nil {
		return fmt.Errorf("tgpu: wait: %w", err)
	}
	return nil
}
