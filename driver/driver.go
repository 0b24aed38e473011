// Package driver defines the contract between the typed tgpu layer and
// the GPU backends that execute it. The interfaces here are deliberately
// unchecked: every alignment, bounds, usage and ordering argument is
// settled above this line, so a backend only translates calls to its
// underlying API.
//
// Backends register themselves from init functions; client code imports
// a backend package for its side effect and opens a device through the
// registry (see registry.go).
package driver

import (
	"errors"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/tgpu/format"
)

// Driver errors.
var (
	// ErrNotAvailable means the backend cannot run in this environment
	// (missing native library, no adapter, unsupported platform).
	ErrNotAvailable = errors.New("driver: backend not available")

	// ErrNotSupported means the backend cannot provide a requested
	// optional capability, such as timestamp queries.
	ErrNotSupported = errors.New("driver: capability not supported")

	// ErrDeviceLost means the device is in an unrecoverable state. The
	// caller must destroy all resources and open a new device.
	ErrDeviceLost = errors.New("driver: device lost")

	// ErrMapFailed means an asynchronous buffer map did not complete
	// successfully.
	ErrMapFailed = errors.New("driver: buffer map failed")
)

// Driver opens devices for one backend implementation.
type Driver interface {
	// Name returns the registry name of the backend. It must not cause
	// the driver to initialize.
	Name() string

	// Open initializes the backend and returns a device. Open is not
	// safe for parallel execution.
	Open() (Device, error)

	// Close releases backend-global state. Closing an unopened driver
	// has no effect.
	Close()
}

// Device creates resources and command encoders.
type Device interface {
	Queue() Queue

	CreateBuffer(desc *BufferDescriptor) (Buffer, error)
	CreateTexture(desc *TextureDescriptor) (Texture, error)
	CreateSampler(desc *SamplerDescriptor) (Sampler, error)
	CreateShaderModule(desc *ShaderModuleDescriptor) (ShaderModule, error)
	CreateBindGroupLayout(desc *BindGroupLayoutDescriptor) (BindGroupLayout, error)
	CreatePipelineLayout(desc *PipelineLayoutDescriptor) (PipelineLayout, error)
	CreateBindGroup(desc *BindGroupDescriptor) (BindGroup, error)
	CreateComputePipeline(desc *ComputePipelineDescriptor) (ComputePipeline, error)
	CreateRenderPipeline(desc *RenderPipelineDescriptor) (RenderPipeline, error)
	CreateQuerySet(desc *QuerySetDescriptor) (QuerySet, error)
	CreateCommandEncoder(label string) (CommandEncoder, error)
	CreateRenderBundleEncoder(desc *RenderBundleEncoderDescriptor) (RenderBundleEncoder, error)

	Destroy()
}

// Queue submits finished command buffers and performs direct writes.
type Queue interface {
	Submit(buffers []CommandBuffer) error

	// WriteBuffer copies data into buf at offset on the queue timeline.
	WriteBuffer(buf Buffer, offset uint64, data []byte) error

	// WriteTexture copies tightly described data into a texture region.
	WriteTexture(dst *ImageCopyTexture, data []byte, layout gputypes.TextureDataLayout, size gputypes.Extent3D) error

	// Wait blocks until all submitted work has completed.
	Wait() error
}

// Buffer is a backend buffer handle.
//
// MapAsync delivers exactly one callback invocation, possibly before
// MapAsync returns. The mapped bytes returned by MappedRange reflect
// the buffer's current contents, for write mappings too, and stay
// valid until Unmap; backends that stage mappings in host memory write
// the bytes back on Unmap for write-mapped buffers.
type Buffer interface {
	MapAsync(mode gputypes.MapMode, offset, size uint64, callback func(error))
	MappedRange(offset, size uint64) []byte
	Unmap()
	Destroy()
}

// Texture is a backend texture handle.
type Texture interface {
	CreateView(desc *TextureViewDescriptor) (TextureView, error)
	Destroy()
}

// Opaque backend handles.
type (
	TextureView     any
	Sampler         any
	ShaderModule    any
	BindGroupLayout any
	PipelineLayout  any
	BindGroup       any
	ComputePipeline any
	RenderPipeline  any
	RenderBundle    any
	CommandBuffer   any
)

// QuerySet is a backend query set handle.
type QuerySet interface {
	Destroy()
}

// CommandEncoder records work outside of passes.
type CommandEncoder interface {
	ClearBuffer(buf Buffer, offset, size uint64)
	CopyBufferToBuffer(src Buffer, srcOffset uint64, dst Buffer, dstOffset, size uint64)
	CopyBufferToTexture(src *ImageCopyBuffer, dst *ImageCopyTexture, size gputypes.Extent3D)
	CopyTextureToBuffer(src *ImageCopyTexture, dst *ImageCopyBuffer, size gputypes.Extent3D)
	CopyTextureToTexture(src, dst *ImageCopyTexture, size gputypes.Extent3D)
	WriteTimestamp(set QuerySet, index uint32)
	ResolveQuerySet(set QuerySet, firstQuery, queryCount uint32, dst Buffer, dstOffset uint64)
	BeginComputePass(desc *ComputePassDescriptor) ComputePass
	BeginRenderPass(desc *RenderPassDescriptor) RenderPass
	Finish() (CommandBuffer, error)
}

// ComputePass records commands inside a compute pass.
type ComputePass interface {
	SetPipeline(p ComputePipeline)
	SetBindGroup(index uint32, group BindGroup, dynamicOffsets []uint32)
	Dispatch(x, y, z uint32)
	DispatchIndirect(buf Buffer, offset uint64)
	End()
}

// RenderPass records commands inside a render pass.
type RenderPass interface {
	SetPipeline(p RenderPipeline)
	SetBindGroup(index uint32, group BindGroup, dynamicOffsets []uint32)
	SetVertexBuffer(slot uint32, buf Buffer, offset, size uint64)
	SetIndexBuffer(buf Buffer, fmt gputypes.IndexFormat, offset, size uint64)
	SetViewport(x, y, width, height, minDepth, maxDepth float32)
	SetScissorRect(x, y, width, height uint32)
	SetBlendConstant(color gputypes.Color)
	SetStencilReference(reference uint32)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
	DrawIndirect(buf Buffer, offset uint64)
	DrawIndexedIndirect(buf Buffer, offset uint64)
	BeginOcclusionQuery(queryIndex uint32)
	EndOcclusionQuery()
	ExecuteBundles(bundles []RenderBundle)
	End()
}

// RenderBundleEncoder records reusable draw sequences.
type RenderBundleEncoder interface {
	SetPipeline(p RenderPipeline)
	SetBindGroup(index uint32, group BindGroup, dynamicOffsets []uint32)
	SetVertexBuffer(slot uint32, buf Buffer, offset, size uint64)
	SetIndexBuffer(buf Buffer, fmt gputypes.IndexFormat, offset, size uint64)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
	DrawIndirect(buf Buffer, offset uint64)
	DrawIndexedIndirect(buf Buffer, offset uint64)
	Finish() (RenderBundle, error)
}

// ==============================
// Descriptors
// ==============================

// BufferDescriptor describes a buffer allocation.
type BufferDescriptor struct {
	Label            string
	Size             uint64
	Usage            gputypes.BufferUsage
	MappedAtCreation bool
}

// TextureDescriptor describes a texture allocation.
type TextureDescriptor struct {
	Label         string
	Size          gputypes.Extent3D
	MipLevelCount uint32
	SampleCount   uint32
	Dimension     gputypes.TextureDimension
	Format        format.Format
	Usage         gputypes.TextureUsage
	ViewFormats   []format.Format
}

// TextureViewDescriptor describes a view over a texture subresource range.
type TextureViewDescriptor struct {
	Label           string
	Format          format.Format
	Dimension       gputypes.TextureViewDimension
	Aspect          gputypes.TextureAspect
	BaseMipLevel    uint32
	MipLevelCount   uint32
	BaseArrayLayer  uint32
	ArrayLayerCount uint32
}

// SamplerDescriptor describes a sampler.
type SamplerDescriptor struct {
	Label         string
	AddressModeU  gputypes.AddressMode
	AddressModeV  gputypes.AddressMode
	AddressModeW  gputypes.AddressMode
	MagFilter     gputypes.FilterMode
	MinFilter     gputypes.FilterMode
	MipmapFilter  gputypes.FilterMode
	LodMinClamp   float32
	LodMaxClamp   float32
	Compare       gputypes.CompareFunction
	MaxAnisotropy uint16
}

// ShaderModuleDescriptor carries validated WGSL source.
type ShaderModuleDescriptor struct {
	Label string
	WGSL  string
}

// BindGroupLayoutDescriptor describes binding slots.
type BindGroupLayoutDescriptor struct {
	Label   string
	Entries []gputypes.BindGroupLayoutEntry
}

// PipelineLayoutDescriptor lists the bind group layouts of a pipeline.
type PipelineLayoutDescriptor struct {
	Label            string
	BindGroupLayouts []BindGroupLayout
}

// BindGroupEntry binds one resource to a layout slot. Exactly one of
// Buffer, Sampler and TextureView is set.
type BindGroupEntry struct {
	Binding     uint32
	Buffer      Buffer
	Offset      uint64
	Size        uint64
	Sampler     Sampler
	TextureView TextureView
}

// BindGroupDescriptor describes a bind group.
type BindGroupDescriptor struct {
	Label   string
	Layout  BindGroupLayout
	Entries []BindGroupEntry
}

// ComputePipelineDescriptor describes a compute pipeline.
type ComputePipelineDescriptor struct {
	Label      string
	Layout     PipelineLayout
	Module     ShaderModule
	EntryPoint string
}

// ColorTargetState describes one color target of a render pipeline.
type ColorTargetState struct {
	Format    format.Format
	Blend     *BlendState
	WriteMask gputypes.ColorWriteMask
}

// BlendState describes blending for one color target.
type BlendState struct {
	ColorSrcFactor gputypes.BlendFactor
	ColorDstFactor gputypes.BlendFactor
	ColorOperation gputypes.BlendOperation
	AlphaSrcFactor gputypes.BlendFactor
	AlphaDstFactor gputypes.BlendFactor
	AlphaOperation gputypes.BlendOperation
}

// DepthStencilState describes the depth/stencil target of a pipeline.
type DepthStencilState struct {
	Format            format.Format
	DepthWriteEnabled bool
	DepthCompare      gputypes.CompareFunction
	StencilReadMask   uint32
	StencilWriteMask  uint32
}

// VertexBufferLayout describes one vertex buffer slot of a pipeline.
type VertexBufferLayout struct {
	ArrayStride uint64
	StepMode    gputypes.VertexStepMode
	Attributes  []gputypes.VertexAttribute
}

// RenderPipelineDescriptor describes a render pipeline.
type RenderPipelineDescriptor struct {
	Label          string
	Layout         PipelineLayout
	VertexModule   ShaderModule
	VertexEntry    string
	VertexBuffers  []VertexBufferLayout
	FragmentModule ShaderModule
	FragmentEntry  string
	ColorTargets   []ColorTargetState
	DepthStencil   *DepthStencilState
	Topology       gputypes.PrimitiveTopology
	FrontFace      gputypes.FrontFace
	CullMode       gputypes.CullMode
	IndexFormat    gputypes.IndexFormat
	SampleCount    uint32
}

// QueryType selects what a query set measures.
type QueryType int

const (
	QueryTypeOcclusion QueryType = iota
	QueryTypeTimestamp
)

// QuerySetDescriptor describes a query set.
type QuerySetDescriptor struct {
	Label string
	Type  QueryType
	Count uint32
}

// ComputePassDescriptor describes a compute pass.
type ComputePassDescriptor struct {
	Label string
}

// RenderPassColorAttachment describes one color attachment.
type RenderPassColorAttachment struct {
	View          TextureView
	ResolveTarget TextureView
	LoadOp        gputypes.LoadOp
	StoreOp       gputypes.StoreOp
	ClearValue    gputypes.Color
}

// RenderPassDepthStencilAttachment describes the depth/stencil attachment.
type RenderPassDepthStencilAttachment struct {
	View              TextureView
	DepthLoadOp       gputypes.LoadOp
	DepthStoreOp      gputypes.StoreOp
	DepthClearValue   float32
	DepthReadOnly     bool
	StencilLoadOp     gputypes.LoadOp
	StencilStoreOp    gputypes.StoreOp
	StencilClearValue uint32
	StencilReadOnly   bool
}

// RenderPassDescriptor describes a render pass.
type RenderPassDescriptor struct {
	Label                  string
	ColorAttachments       []RenderPassColorAttachment
	DepthStencilAttachment *RenderPassDepthStencilAttachment
	OcclusionQuerySet      QuerySet
}

// RenderBundleEncoderDescriptor fixes the target layout a bundle may
// execute against.
type RenderBundleEncoderDescriptor struct {
	Label              string
	ColorFormats       []format.Format
	DepthStencilFormat format.Format
	SampleCount        uint32
}

// ImageCopyBuffer is the buffer endpoint of an image copy.
type ImageCopyBuffer struct {
	Buffer Buffer
	Layout gputypes.TextureDataLayout
}

// ImageCopyTexture is the texture endpoint of an image copy.
type ImageCopyTexture struct {
	Texture  Texture
	MipLevel uint32
	Origin   gputypes.Origin3D
	Aspect   gputypes.TextureAspect
}
