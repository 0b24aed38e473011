package tgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/tgpu/driver"
)

// encoderStatus tracks where a command encoder is in its lifecycle.
type encoderStatus int

const (
	// encoderRecording accepts top-level commands and pass begins.
	encoderRecording encoderStatus = iota
	// encoderLocked means a pass is open; only the pass may record.
	encoderLocked
	// encoderFinished means Finish was called.
	encoderFinished
)

func (s encoderStatus) String() string {
	switch s {
	case encoderRecording:
		return "recording"
	case encoderLocked:
		return "locked"
	case encoderFinished:
		return "finished"
	default:
		return fmt.Sprintf("encoderStatus(%d)", int(s))
	}
}

// CommandEncoder records GPU commands into a command buffer. Top-level
// copy and query commands are methods or package functions taking the
// encoder; passes are opened with BeginComputePass and BeginRenderPass,
// which lock the encoder until the pass ends.
//
// Encoders are not safe for concurrent use.
type CommandEncoder struct {
	dev    *Device
	handle driver.CommandEncoder
	label  string
	status encoderStatus

	// retained keeps buffers alive until the command buffer is
	// submitted, so a Destroy between encode and submit is caught.
	retained []*bufferShared
}

// CreateCommandEncoder creates a command encoder.
func (d *Device) CreateCommandEncoder(label string) (*CommandEncoder, error) {
	handle, err := d.dev.CreateCommandEncoder(label)
	if err != nil {
		return nil, fmt.Errorf("tgpu: create command encoder %q: %w", label, err)
	}
	return &CommandEncoder{dev: d, handle: handle, label: label}, nil
}

func (e *CommandEncoder) checkRecording() {
	if e.status != encoderRecording {
		panic(fmt.Sprintf("tgpu: command encoder %q is %s, not recording", e.label, e.status))
	}
}

func (e *CommandEncoder) retain(b *bufferShared) {
	b.checkAlive()
	e.retained = append(e.retained, b)
}

// ClearBuffer encodes zeroing of the view's bytes. The view's offset
// and size must be multiples of 4 and the buffer must have CopyDst
// usage.
func ClearBuffer[T any](e *CommandEncoder, v *View[T]) {
	e.checkRecording()
	requireUsage(v.buf.usage, BufferUsageCopyDst, "a clear destination")
	off, size := v.OffsetBytes(), v.SizeBytes()
	if off%copyAlignment != 0 || size%copyAlignment != 0 {
		panic(fmt.Sprintf("tgpu: clear range [%d, %d) is not aligned to %d bytes", off, off+size, copyAlignment))
	}
	e.retain(v.buf)
	e.handle.ClearBuffer(v.buf.handle, off, size)
}

// CopyBufferToBuffer encodes a copy of src's elements into dst. The
// views must have equal length, must not alias the same buffer, and
// both byte ranges must be aligned to 4 bytes. src needs CopySrc and
// dst needs CopyDst usage.
func CopyBufferToBuffer[T any](e *CommandEncoder, src, dst *View[T]) {
	e.checkRecording()
	if src.Len() != dst.Len() {
		panic(fmt.Sprintf("tgpu: copy length mismatch: source has %d elements, destination has %d",
			src.Len(), dst.Len()))
	}
	if src.buf == dst.buf {
		panic("tgpu: cannot copy a buffer to itself")
	}
	requireUsage(src.buf.usage, BufferUsageCopySrc, "a copy source")
	requireUsage(dst.buf.usage, BufferUsageCopyDst, "a copy destination")
	size := src.SizeBytes()
	if src.OffsetBytes()%copyAlignment != 0 || dst.OffsetBytes()%copyAlignment != 0 || size%copyAlignment != 0 {
		panic(fmt.Sprintf("tgpu: copy of %d bytes from offset %d to offset %d is not aligned to %d bytes",
			size, src.OffsetBytes(), dst.OffsetBytes(), copyAlignment))
	}
	e.retain(src.buf)
	e.retain(dst.buf)
	e.handle.CopyBufferToBuffer(src.buf.handle, src.OffsetBytes(), dst.buf.handle, dst.OffsetBytes(), size)
}

// CopyBufferToTexture encodes a copy of block rows from src into the
// dst region. The src buffer needs CopySrc usage and the dst texture
// needs CopyDst usage.
func CopyBufferToTexture[T any](e *CommandEncoder, src ImageCopyBuffer[T], dst ImageCopyTexture, size gputypes.Extent3D) {
	e.checkRecording()
	requireUsage(src.view.buf.usage, BufferUsageCopySrc, "a copy source")
	if dst.Texture.usage&TextureUsageCopyDst == 0 {
		panic(fmt.Sprintf("tgpu: texture %q cannot be used as a copy destination", dst.Texture.label))
	}
	info := validateTextureRegion(dst.Texture, dst.MipLevel, dst.Origin, size)
	validateBufferImage(src, info, dst.Texture.format, size)
	e.retain(src.view.buf)
	e.handle.CopyBufferToTexture(
		&driver.ImageCopyBuffer{
			Buffer: src.view.buf.handle,
			Layout: gputypes.TextureDataLayout{
				Offset:       src.view.OffsetBytes(),
				BytesPerRow:  src.bytesPerRow,
				RowsPerImage: src.rowsPerImage,
			},
		},
		&driver.ImageCopyTexture{
			Texture:  dst.Texture.handle,
			MipLevel: dst.MipLevel,
			Origin:   dst.Origin,
			Aspect:   dst.Aspect,
		},
		size,
	)
}

// CopyTextureToBuffer encodes a copy of the src region into block rows
// in dst. The src texture needs CopySrc usage and the dst buffer needs
// CopyDst usage.
func CopyTextureToBuffer[T any](e *CommandEncoder, src ImageCopyTexture, dst ImageCopyBuffer[T], size gputypes.Extent3D) {
	e.checkRecording()
	if src.Texture.usage&TextureUsageCopySrc == 0 {
		panic(fmt.Sprintf("tgpu: texture %q cannot be used as a copy source", src.Texture.label))
	}
	requireUsage(dst.view.buf.usage, BufferUsageCopyDst, "a copy destination")
	info := validateTextureRegion(src.Texture, src.MipLevel, src.Origin, size)
	validateBufferImage(dst, info, src.Texture.format, size)
	e.retain(dst.view.buf)
	e.handle.CopyTextureToBuffer(
		&driver.ImageCopyTexture{
			Texture:  src.Texture.handle,
			MipLevel: src.MipLevel,
			Origin:   src.Origin,
			Aspect:   src.Aspect,
		},
		&driver.ImageCopyBuffer{
			Buffer: dst.view.buf.handle,
			Layout: gputypes.TextureDataLayout{
				Offset:       dst.view.OffsetBytes(),
				BytesPerRow:  dst.bytesPerRow,
				RowsPerImage: dst.rowsPerImage,
			},
		},
		size,
	)
}

// CopyTextureToTexture encodes a texture-to-texture region copy. Both
// regions must share a format with equal block layout.
func (e *CommandEncoder) CopyTextureToTexture(src, dst ImageCopyTexture, size gputypes.Extent3D) {
	e.checkRecording()
	if src.Texture.usage&TextureUsageCopySrc == 0 {
		panic(fmt.Sprintf("tgpu: texture %q cannot be used as a copy source", src.Texture.label))
	}
	if dst.Texture.usage&TextureUsageCopyDst == 0 {
		panic(fmt.Sprintf("tgpu: texture %q cannot be used as a copy destination", dst.Texture.label))
	}
	if src.Texture.format != dst.Texture.format {
		panic(fmt.Sprintf("tgpu: cannot copy between %s and %s textures",
			src.Texture.format, dst.Texture.format))
	}
	validateTextureRegion(src.Texture, src.MipLevel, src.Origin, size)
	validateTextureRegion(dst.Texture, dst.MipLevel, dst.Origin, size)
	e.handle.CopyTextureToTexture(
		&driver.ImageCopyTexture{Texture: src.Texture.handle, MipLevel: src.MipLevel, Origin: src.Origin, Aspect: src.Aspect},
		&driver.ImageCopyTexture{Texture: dst.Texture.handle, MipLevel: dst.MipLevel, Origin: dst.Origin, Aspect: dst.Aspect},
		size,
	)
}

// WriteTimestamp encodes a timestamp write into slot index of set.
func (e *CommandEncoder) WriteTimestamp(set *TimestampQuerySet, index uint32) {
	e.checkRecording()
	set.q.checkAlive()
	if index >= set.q.count {
		panic(fmt.Sprintf("tgpu: query index %d is outside the set's %d slots", index, set.q.count))
	}
	e.handle.WriteTimestamp(set.q.handle, index)
}

// ResolveOcclusionQuerySet encodes resolving queryCount occlusion
// results starting at firstQuery into dst. The destination's byte
// offset must be a multiple of 256, it must hold queryCount results and
// its buffer needs QueryResolve usage.
func (e *CommandEncoder) ResolveOcclusionQuerySet(set *OcclusionQuerySet, firstQuery, queryCount uint32, dst *View[uint64]) {
	e.resolveQuerySet(&set.q, firstQuery, queryCount, dst)
}

// ResolveTimestampQuerySet encodes resolving queryCount timestamps
// starting at firstQuery into dst, under the same rules as
// ResolveOcclusionQuerySet.
func (e *CommandEncoder) ResolveTimestampQuerySet(set *TimestampQuerySet, firstQuery, queryCount uint32, dst *View[uint64]) {
	e.resolveQuerySet(&set.q, firstQuery, queryCount, dst)
}

func (e *CommandEncoder) resolveQuerySet(set *querySet, firstQuery, queryCount uint32, dst *View[uint64]) {
	e.checkRecording()
	set.checkAlive()
	if uint64(firstQuery)+uint64(queryCount) > uint64(set.count) {
		panic(fmt.Sprintf("tgpu: queries [%d, %d) are outside the set's %d slots",
			firstQuery, uint64(firstQuery)+uint64(queryCount), set.count))
	}
	requireUsage(dst.buf.usage, BufferUsageQueryResolve, "a query resolve destination")
	if dst.OffsetBytes()%bytesPerRowAlignment != 0 {
		panic(fmt.Sprintf("tgpu: query resolve offset %d is not a multiple of %d",
			dst.OffsetBytes(), bytesPerRowAlignment))
	}
	if uint32(dst.Len()) < queryCount {
		panic(fmt.Sprintf("tgpu: query resolve destination holds %d results, need %d", dst.Len(), queryCount))
	}
	e.retain(dst.buf)
	e.handle.ResolveQuerySet(set.handle, firstQuery, queryCount, dst.buf.handle, dst.OffsetBytes())
}

// Finish ends recording and returns the command buffer. The encoder
// must not be recording a pass and cannot be used afterwards.
func (e *CommandEncoder) Finish() (*CommandBuffer, error) {
	e.checkRecording()
	e.status = encoderFinished
	handle, err := e.handle.Finish()
	if err != nil {
		return nil, fmt.Errorf("tgpu: finish command encoder %q: %w", e.label, err)
	}
	retained := e.retained
	e.retained = nil
	return &CommandBuffer{handle: handle, label: e.label, retained: retained}, nil
}

// CommandBuffer is a finished, submittable recording.
type CommandBuffer struct {
	handle   driver.CommandBuffer
	label    string
	retained []*bufferShared
}
