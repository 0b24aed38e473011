package native

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/tgpu/driver"
)

// buffer implements driver.Buffer. Host access goes through the HAL's
// persistent mapping; buffers created mapped with non-mappable usage
// stage their contents in host memory and write back on Unmap.
type buffer struct {
	dev    *device
	handle hal.Buffer
	size   uint64

	staging []byte
	mapped  []byte
	mapOff  uint64
}

func (b *buffer) MapAsync(mode gputypes.MapMode, offset, size uint64, callback func(error)) {
	if mode == gputypes.MapModeRead {
		// A read must observe all submitted work.
		if err := b.dev.queue.Wait(); err != nil {
			callback(err)
			return
		}
	}
	m, err := b.dev.hdev.MapBuffer(b.handle, offset, size)
	if err != nil {
		callback(fmt.Errorf("native: map buffer: %w", err))
		return
	}
	b.mapped = unsafe.Slice((*byte)(m.Ptr), size)
	b.mapOff = offset
	callback(nil)
}

func (b *buffer) MappedRange(offset, size uint64) []byte {
	if b.staging != nil {
		return b.staging[offset : offset+size]
	}
	start := offset - b.mapOff
	return b.mapped[start : start+size]
}

func (b *buffer) Unmap() {
	if b.staging != nil {
		b.dev.queue.q.WriteBuffer(b.handle, 0, b.staging)
		b.staging = nil
		return
	}
	if b.mapped == nil {
		return
	}
	b.dev.hdev.UnmapBuffer(b.handle)
	b.mapped = nil
}

func (b *buffer) Destroy() {
	b.dev.hdev.DestroyBuffer(b.handle)
}

// queue implements driver.Queue. The HAL tracks completion internally;
// Wait blocks until the last submission index is reported done.
type queue struct {
	dev *device
	q   hal.Queue

	mu      sync.Mutex
	lastSub uint64
}

func (q *queue) Submit(buffers []driver.CommandBuffer) error {
	cmds := make([]hal.CommandBuffer, 0, len(buffers))
	for _, cb := range buffers {
		cmds = append(cmds, cb.(*commandBuffer).cmd)
	}

	idx, err := q.q.Submit(cmds)
	if err != nil {
		return fmt.Errorf("native: submit: %w", err)
	}
	q.mu.Lock()
	q.lastSub = idx
	q.mu.Unlock()
	return nil
}

func (q *queue) WriteBuffer(buf driver.Buffer, offset uint64, data []byte) error {
	if err := q.q.WriteBuffer(buf.(*buffer).handle, offset, data); err != nil {
		return fmt.Errorf("native: write buffer: %w", err)
	}
	return nil
}

func (q *queue) WriteTexture(dst *driver.ImageCopyTexture, data []byte, layout gputypes.TextureDataLayout, size gputypes.Extent3D) error {
	err := q.q.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  dst.Texture.(*texture).handle,
			MipLevel: dst.MipLevel,
			Origin:   hal.Origin3D{X: dst.Origin.X, Y: dst.Origin.Y, Z: dst.Origin.Z},
			Aspect:   gputypes.TextureAspectAll,
		},
		data,
		&hal.ImageDataLayout{
			Offset:       layout.Offset,
			BytesPerRow:  layout.BytesPerRow,
			RowsPerImage: layout.RowsPerImage,
		},
		&hal.Extent3D{
			Width:              size.Width,
			Height:             size.Height,
			DepthOrArrayLayers: size.DepthOrArrayLayers,
		},
	)
	if err != nil {
		return fmt.Errorf("native: write texture: %w", err)
	}
	return nil
}

func (q *queue) Wait() error {
	q.mu.Lock()
	last := q.lastSub
	q.mu.Unlock()

	if last == 0 || q.q.PollCompleted() >= last {
		return nil
	}
	if err := q.dev.hdev.WaitIdle(); err != nil {
		return fmt.Errorf("native: wait: %w", err)
	}
	return nil
}

// commandBuffer wraps the HAL recording.
type commandBuffer struct {
	cmd hal.CommandBuffer
}
