package tgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"

	"github.com/gogpu/tgpu/driver"
	"github.com/gogpu/tgpu/format"
)

// ShaderModule is a validated WGSL shader.
type ShaderModule struct {
	dev    *Device
	handle driver.ShaderModule
	label  string
}

// CreateShaderModule validates wgsl with naga and hands it to the
// backend. Validation happens here so that shader errors surface at
// module creation instead of at pipeline creation on some backends.
func (d *Device) CreateShaderModule(label, wgsl string) (*ShaderModule, error) {
	if _, err := naga.Compile(wgsl); err != nil {
		return nil, fmt.Errorf("tgpu: shader module %q: %w", label, err)
	}
	handle, err := d.dev.CreateShaderModule(&driver.ShaderModuleDescriptor{Label: label, WGSL: wgsl})
	if err != nil {
		return nil, fmt.Errorf("tgpu: create shader module %q: %w", label, err)
	}
	return &ShaderModule{dev: d, handle: handle, label: label}, nil
}

// Sampler is an immutable texture sampler.
type Sampler struct {
	dev    *Device
	handle driver.Sampler
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

// CreateSampler creates a sampler.
func (d *Device) CreateSampler(desc *SamplerDescriptor) (*Sampler, error) {
	handle, err := d.dev.CreateSampler(&driver.SamplerDescriptor{
		Label:         desc.Label,
		AddressModeU:  desc.AddressModeU,
		AddressModeV:  desc.AddressModeV,
		AddressModeW:  desc.AddressModeW,
		MagFilter:     desc.MagFilter,
		MinFilter:     desc.MinFilter,
		MipmapFilter:  desc.MipmapFilter,
		LodMinClamp:   desc.LodMinClamp,
		LodMaxClamp:   desc.LodMaxClamp,
		Compare:       desc.Compare,
		MaxAnisotropy: desc.MaxAnisotropy,
	})
	if err != nil {
		return nil, fmt.Errorf("tgpu: create sampler %q: %w", desc.Label, err)
	}
	return &Sampler{dev: d, handle: handle}, nil
}

// ComputePipeline is an immutable compute pipeline.
type ComputePipeline struct {
	dev       *Device
	handle    driver.ComputePipeline
	id        uint64
	layoutIDs []uint64
}

// ComputePipelineDescriptor describes a compute pipeline.
type ComputePipelineDescriptor struct {
	Label      string
	Layout     *PipelineLayout
	Module     *ShaderModule
	EntryPoint string
}

// CreateComputePipeline creates a compute pipeline.
func (d *Device) CreateComputePipeline(desc *ComputePipelineDescriptor) (*ComputePipeline, error) {
	handle, err := d.dev.CreateComputePipeline(&driver.ComputePipelineDescriptor{
		Label:      desc.Label,
		Layout:     desc.Layout.handle,
		Module:     desc.Module.handle,
		EntryPoint: desc.EntryPoint,
	})
	if err != nil {
		return nil, fmt.Errorf("tgpu: create compute pipeline %q: %w", desc.Label, err)
	}
	return &ComputePipeline{
		dev:       d,
		handle:    handle,
		id:        resourceIDs.Add(1),
		layoutIDs: desc.Layout.layoutIDs,
	}, nil
}

// VertexBufferLayout describes the stride, step mode and attributes of
// one vertex buffer slot.
type VertexBufferLayout struct {
	ArrayStride uint64
	StepMode    gputypes.VertexStepMode
	Attributes  []gputypes.VertexAttribute
}

// VertexState is the vertex stage of a render pipeline.
type VertexState struct {
	Module     *ShaderModule
	EntryPoint string
	Buffers    []VertexBufferLayout
}

// ColorTarget describes one color target of a render pipeline.
type ColorTarget struct {
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

// FragmentState is the fragment stage of a render pipeline.
type FragmentState struct {
	Module     *ShaderModule
	EntryPoint string
	Targets    []ColorTarget
}

// DepthStencilState describes the depth/stencil target of a render
// pipeline.
type DepthStencilState struct {
	Format            format.Format
	DepthWriteEnabled bool
	DepthCompare      gputypes.CompareFunction
	StencilReadMask   uint32
	StencilWriteMask  uint32
}

// RenderPipelineDescriptor describes a render pipeline.
type RenderPipelineDescriptor struct {
	Label        string
	Layout       *PipelineLayout
	Vertex       VertexState
	Fragment     *FragmentState
	DepthStencil *DepthStencilState
	Topology     gputypes.PrimitiveTopology
	FrontFace    gputypes.FrontFace
	CullMode     gputypes.CullMode
	// StripIndexFormat is required for strip topologies that use
	// indexed draws.
	StripIndexFormat gputypes.IndexFormat
	SampleCount      uint32
}

// vertexSlotLayout is the draw-time compatibility key of one vertex
// buffer slot.
type vertexSlotLayout struct {
	stride   uint64
	stepMode gputypes.VertexStepMode
}

// renderTargetLayout is the value-compared attachment shape shared by
// render passes, render pipelines and render bundles. Two layouts are
// compatible exactly when they are equal.
type renderTargetLayout struct {
	colors       []format.Format
	depthStencil format.Format
	samples      uint32
}

func (l renderTargetLayout) equal(o renderTargetLayout) bool {
	if len(l.colors) != len(o.colors) || l.depthStencil != o.depthStencil || l.samples != o.samples {
		return false
	}
	for i := range l.colors {
		if l.colors[i] != o.colors[i] {
			return false
		}
	}
	return true
}

func (l renderTargetLayout) String() string {
	return fmt.Sprintf("{colors: %v, depthStencil: %s, samples: %d}", l.colors, l.depthStencil, l.samples)
}

// RenderPipeline is an immutable render pipeline together with the
// layout data that draw-time compatibility checks compare.
type RenderPipeline struct {
	dev       *Device
	handle    driver.RenderPipeline
	id        uint64
	layoutIDs []uint64

	targets     renderTargetLayout
	vertexSlots []vertexSlotLayout
	indexFormat gputypes.IndexFormat
}

// CreateRenderPipeline creates a render pipeline.
func (d *Device) CreateRenderPipeline(desc *RenderPipelineDescriptor) (*RenderPipeline, error) {
	samples := desc.SampleCount
	if samples == 0 {
		samples = 1
	}

	drvDesc := &driver.RenderPipelineDescriptor{
		Label:        desc.Label,
		Layout:       desc.Layout.handle,
		VertexModule: desc.Vertex.Module.handle,
		VertexEntry:  desc.Vertex.EntryPoint,
		Topology:     desc.Topology,
		FrontFace:    desc.FrontFace,
		CullMode:     desc.CullMode,
		IndexFormat:  desc.StripIndexFormat,
		SampleCount:  samples,
	}

	targets := renderTargetLayout{samples: samples}
	slots := make([]vertexSlotLayout, len(desc.Vertex.Buffers))
	for i, b := range desc.Vertex.Buffers {
		slots[i] = vertexSlotLayout{stride: b.ArrayStride, stepMode: b.StepMode}
		drvDesc.VertexBuffers = append(drvDesc.VertexBuffers, driver.VertexBufferLayout{
			ArrayStride: b.ArrayStride,
			StepMode:    b.StepMode,
			Attributes:  b.Attributes,
		})
	}
	if desc.Fragment != nil {
		drvDesc.FragmentModule = desc.Fragment.Module.handle
		drvDesc.FragmentEntry = desc.Fragment.EntryPoint
		for _, t := range desc.Fragment.Targets {
			info := format.Get(t.Format)
			if !info.Caps.Contains(format.CapRenderable) {
				panic(fmt.Sprintf("tgpu: format %s cannot be used as a color target", t.Format))
			}
			if t.Blend != nil && !info.Caps.Contains(format.CapBlendable) {
				panic(fmt.Sprintf("tgpu: format %s does not support blending", t.Format))
			}
			targets.colors = append(targets.colors, t.Format)
			dt := driver.ColorTargetState{Format: t.Format, WriteMask: t.WriteMask}
			if t.Blend != nil {
				b := driver.BlendState(*t.Blend)
				dt.Blend = &b
			}
			drvDesc.ColorTargets = append(drvDesc.ColorTargets, dt)
		}
	}
	if desc.DepthStencil != nil {
		info := format.Get(desc.DepthStencil.Format)
		if !info.IsDepthStencil() {
			panic(fmt.Sprintf("tgpu: format %s is not a depth/stencil format", desc.DepthStencil.Format))
		}
		targets.depthStencil = desc.DepthStencil.Format
		ds := driver.DepthStencilState{
			Format:            desc.DepthStencil.Format,
			DepthWriteEnabled: desc.DepthStencil.DepthWriteEnabled,
			DepthCompare:      desc.DepthStencil.DepthCompare,
			StencilReadMask:   desc.DepthStencil.StencilReadMask,
			StencilWriteMask:  desc.DepthStencil.StencilWriteMask,
		}
		drvDesc.DepthStencil = &ds
	}
	if len(targets.colors) == 0 && targets.depthStencil == format.Undefined {
		panic("tgpu: a render pipeline must have at least 1 color target or a depth/stencil target")
	}

	handle, err := d.dev.CreateRenderPipeline(drvDesc)
	if err != nil {
		return nil, fmt.Errorf("tgpu: create render pipeline %q: %w", desc.Label, err)
	}
	return &RenderPipeline{
		dev:         d,
		handle:      handle,
		id:          resourceIDs.Add(1),
		layoutIDs:   desc.Layout.layoutIDs,
		targets:     targets,
		vertexSlots: slots,
		indexFormat: desc.StripIndexFormat,
	}, nil
}
