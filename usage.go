package tgpu

import "github.com/gogpu/gputypes"

// BufferUsage is a bitmask of the operations a buffer participates in.
// A buffer's usage is fixed at creation; operations that need a missing
// bit are programming errors and panic.
type BufferUsage = gputypes.BufferUsage

// Buffer usage bits, following the WebGPU bit layout.
const (
	BufferUsageMapRead  = gputypes.BufferUsageMapRead
	BufferUsageMapWrite = gputypes.BufferUsageMapWrite
	BufferUsageCopySrc  = gputypes.BufferUsageCopySrc
	BufferUsageCopyDst  = gputypes.BufferUsageCopyDst
	BufferUsageIndex    = gputypes.BufferUsageIndex
	BufferUsageVertex   = gputypes.BufferUsageVertex
	BufferUsageUniform  = gputypes.BufferUsageUniform
	BufferUsageStorage  = gputypes.BufferUsageStorage

	BufferUsageIndirect     BufferUsage = 1 << 8
	BufferUsageQueryResolve BufferUsage = 1 << 9
)

// TextureUsage is a bitmask of the operations a texture participates in.
type TextureUsage = gputypes.TextureUsage

// Texture usage bits.
const (
	TextureUsageCopySrc          = gputypes.TextureUsageCopySrc
	TextureUsageCopyDst          = gputypes.TextureUsageCopyDst
	TextureUsageTextureBinding   = gputypes.TextureUsageTextureBinding
	TextureUsageRenderAttachment = gputypes.TextureUsageRenderAttachment
)

// requireUsage panics when usage lacks the needed bit. what names the
// attempted operation in the panic message.
func requireUsage(usage, needed BufferUsage, what string) {
	if !usage.Contains(needed) {
		panic("tgpu: buffer is missing the " + usageName(needed) + " usage required for " + what)
	}
}

func usageName(u BufferUsage) string {
	switch u {
	case BufferUsageMapRead:
		return "MapRead"
	case BufferUsageMapWrite:
		return "MapWrite"
	case BufferUsageCopySrc:
		return "CopySrc"
	case BufferUsageCopyDst:
		return "CopyDst"
	case BufferUsageIndex:
		return "Index"
	case BufferUsageVertex:
		return "Vertex"
	case BufferUsageUniform:
		return "Uniform"
	case BufferUsageStorage:
		return "Storage"
	case BufferUsageIndirect:
		return "Indirect"
	case BufferUsageQueryResolve:
		return "QueryResolve"
	default:
		return "requested"
	}
}
