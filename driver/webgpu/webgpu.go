//go:build cgo

// Package webgpu implements the driver contract on the wgpu-native FFI
// binding (WebGPU in the browser under wasm). Importing it registers
// the "webgpu" backend:
//
//	import _ "github.com/gogpu/tgpu/driver/webgpu"
//
// This is the full-featured backend: samplers, texture bindings, query
// sets and render bundles are all real, and buffer mapping uses the
// implementation's own mapped ranges.
package webgpu

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/tgpu/driver"
	"github.com/gogpu/tgpu/format"
)

func init() {
	driver.Register(&webgpuDriver{})
}

type webgpuDriver struct {
	mu       sync.Mutex
	instance *wgpu.Instance
}

func (d *webgpuDriver) Name() string { return driver.BackendWebGPU }

func (d *webgpuDriver) Open() (driver.Device, error) {
	instance := wgpu.CreateInstance(nil)
	if instance == nil {
		return nil, fmt.Errorf("%w: wgpu instance creation failed", driver.ErrNotAvailable)
	}

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil || adapter == nil {
		adapter, err = instance.RequestAdapter(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: request adapter: %v", driver.ErrNotAvailable, err)
	}
	if adapter == nil {
		return nil, fmt.Errorf("%w: no adapter found", driver.ErrNotAvailable)
	}

	wdev, err := adapter.RequestDevice(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: request device: %v", driver.ErrNotAvailable, err)
	}

	d.mu.Lock()
	d.instance = instance
	d.mu.Unlock()

	dev := &device{dev: wdev}
	dev.queue = &queue{dev: dev, q: wdev.GetQueue()}
	return dev, nil
}

func (d *webgpuDriver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}

// device implements driver.Device over a wgpu.Device.
type device struct {
	dev   *wgpu.Device
	queue *queue
}

func (d *device) Queue() driver.Queue { return d.queue }

func (d *device) Destroy() {
	d.dev.Release()
}

func textureFormat(f format.Format) (wgpu.TextureFormat, error) {
	wf, ok := formatToWGPU[f]
	if !ok {
		return wgpu.TextureFormatUndefined, fmt.Errorf("%w: format %s on the webgpu backend",
			driver.ErrNotSupported, f)
	}
	return wf, nil
}

func (d *device) CreateBuffer(desc *driver.BufferDescriptor) (driver.Buffer, error) {
	handle, err := d.dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            desc.Label,
		Size:             desc.Size,
		Usage:            bufferUsageToWGPU(desc.Usage),
		MappedAtCreation: desc.MappedAtCreation,
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: create buffer: %w", err)
	}
	return &buffer{dev: d, buf: handle}, nil
}

func (d *device) CreateTexture(desc *driver.TextureDescriptor) (driver.Texture, error) {
	wf, err := textureFormat(desc.Format)
	if err != nil {
		return nil, err
	}
	handle, err := d.dev.CreateTexture(&wgpu.TextureDescriptor{
		Label:         desc.Label,
		Size:          extentToWGPU(desc.Size),
		MipLevelCount: desc.MipLevelCount,
		SampleCount:   desc.SampleCount,
		Dimension:     textureDimensionToWGPU(desc.Dimension),
		Format:        wf,
		Usage:         textureUsageToWGPU(desc.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: create texture: %w", err)
	}
	return &texture{tex: handle}, nil
}

func (d *device) CreateSampler(desc *driver.SamplerDescriptor) (driver.Sampler, error) {
	handle, err := d.dev.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         desc.Label,
		AddressModeU:  addressModeToWGPU(desc.AddressModeU),
		AddressModeV:  addressModeToWGPU(desc.AddressModeV),
		AddressModeW:  addressModeToWGPU(desc.AddressModeW),
		MagFilter:     filterModeToWGPU(desc.MagFilter),
		MinFilter:     filterModeToWGPU(desc.MinFilter),
		MipmapFilter:  mipmapFilterToWGPU(desc.MipmapFilter),
		LodMinClamp:   desc.LodMinClamp,
		LodMaxClamp:   desc.LodMaxClamp,
		Compare:       compareToWGPU(desc.Compare),
		MaxAnisotropy: desc.MaxAnisotropy,
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: create sampler: %w", err)
	}
	return handle, nil
}

func (d *device) CreateShaderModule(desc *driver.ShaderModuleDescriptor) (driver.ShaderModule, error) {
	handle, err := d.dev.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          desc.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: desc.WGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: create shader module: %w", err)
	}
	return handle, nil
}

func (d *device) CreateBindGroupLayout(desc *driver.BindGroupLayoutDescriptor) (driver.BindGroupLayout, error) {
	entries := make([]wgpu.BindGroupLayoutEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		out := wgpu.BindGroupLayoutEntry{
			Binding:    e.Binding,
			Visibility: shaderStageToWGPU(e.Visibility),
		}
		switch {
		case e.Buffer != nil:
			out.Buffer = wgpu.BufferBindingLayout{
				Type:           bufferBindingTypeToWGPU(e.Buffer.Type),
				MinBindingSize: e.Buffer.MinBindingSize,
			}
		case e.Texture != nil:
			out.Texture = wgpu.TextureBindingLayout{
				SampleType:    sampleTypeToWGPU(e.Texture.SampleType),
				ViewDimension: viewDimensionToWGPU(e.Texture.ViewDimension),
			}
		case e.Sampler != nil:
			out.Sampler = wgpu.SamplerBindingLayout{
				Type: samplerBindingTypeToWGPU(e.Sampler.Type),
			}
		}
		entries[i] = out
	}
	handle, err := d.dev.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: create bind group layout: %w", err)
	}
	return handle, nil
}

func (d *device) CreatePipelineLayout(desc *driver.PipelineLayoutDescriptor) (driver.PipelineLayout, error) {
	layouts := make([]*wgpu.BindGroupLayout, len(desc.BindGroupLayouts))
	for i, l := range desc.BindGroupLayouts {
		layouts[i] = l.(*wgpu.BindGroupLayout)
	}
	handle, err := d.dev.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: create pipeline layout: %w", err)
	}
	return handle, nil
}

func (d *device) CreateBindGroup(desc *driver.BindGroupDescriptor) (driver.BindGroup, error) {
	entries := make([]wgpu.BindGroupEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		out := wgpu.BindGroupEntry{Binding: e.Binding}
		switch {
		case e.Buffer != nil:
			out.Buffer = e.Buffer.(*buffer).buf
			out.Offset = e.Offset
			out.Size = e.Size
		case e.Sampler != nil:
			out.Sampler = e.Sampler.(*wgpu.Sampler)
		case e.TextureView != nil:
			out.TextureView = e.TextureView.(*wgpu.TextureView)
		}
		entries[i] = out
	}
	handle, err := d.dev.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  desc.Layout.(*wgpu.BindGroupLayout),
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: create bind group: %w", err)
	}
	return handle, nil
}

func (d *device) CreateComputePipeline(desc *driver.ComputePipelineDescriptor) (driver.ComputePipeline, error) {
	handle, err := d.dev.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  desc.Label,
		Layout: desc.Layout.(*wgpu.PipelineLayout),
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     desc.Module.(*wgpu.ShaderModule),
			EntryPoint: desc.EntryPoint,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: create compute pipeline: %w", err)
	}
	return handle, nil
}

func (d *device) CreateRenderPipeline(desc *driver.RenderPipelineDescriptor) (driver.RenderPipeline, error) {
	wdesc := &wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: desc.Layout.(*wgpu.PipelineLayout),
		Vertex: wgpu.VertexState{
			Module:     desc.VertexModule.(*wgpu.ShaderModule),
			EntryPoint: desc.VertexEntry,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  topologyToWGPU(desc.Topology),
			FrontFace: frontFaceToWGPU(desc.FrontFace),
			CullMode:  cullModeToWGPU(desc.CullMode),
		},
		Multisample: wgpu.MultisampleState{
			Count: desc.SampleCount,
			Mask:  0xFFFFFFFF,
		},
	}
	// The strip index format only applies to strip topologies.
	if desc.Topology == gputypes.PrimitiveTopologyLineStrip ||
		desc.Topology == gputypes.PrimitiveTopologyTriangleStrip {
		wdesc.Primitive.StripIndexFormat = indexFormatToWGPU(desc.IndexFormat)
	}
	for _, b := range desc.VertexBuffers {
		layout := wgpu.VertexBufferLayout{
			ArrayStride: b.ArrayStride,
			StepMode:    stepModeToWGPU(b.StepMode),
		}
		for _, a := range b.Attributes {
			layout.Attributes = append(layout.Attributes, wgpu.VertexAttribute{
				ShaderLocation: a.ShaderLocation,
				Format:         vertexFormatToWGPU(a.Format),
				Offset:         a.Offset,
			})
		}
		wdesc.Vertex.Buffers = append(wdesc.Vertex.Buffers, layout)
	}
	if desc.FragmentModule != nil {
		frag := &wgpu.FragmentState{
			Module:     desc.FragmentModule.(*wgpu.ShaderModule),
			EntryPoint: desc.FragmentEntry,
		}
		for _, t := range desc.ColorTargets {
			wf, err := textureFormat(t.Format)
			if err != nil {
				return nil, err
			}
			target := wgpu.ColorTargetState{
				Format:    wf,
				WriteMask: writeMaskToWGPU(t.WriteMask),
			}
			if t.Blend != nil {
				target.Blend = &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						SrcFactor: blendFactorToWGPU(t.Blend.ColorSrcFactor),
						DstFactor: blendFactorToWGPU(t.Blend.ColorDstFactor),
						Operation: blendOpToWGPU(t.Blend.ColorOperation),
					},
					Alpha: wgpu.BlendComponent{
						SrcFactor: blendFactorToWGPU(t.Blend.AlphaSrcFactor),
						DstFactor: blendFactorToWGPU(t.Blend.AlphaDstFactor),
						Operation: blendOpToWGPU(t.Blend.AlphaOperation),
					},
				}
			}
			frag.Targets = append(frag.Targets, target)
		}
		wdesc.Fragment = frag
	}
	if ds := desc.DepthStencil; ds != nil {
		wf, err := textureFormat(ds.Format)
		if err != nil {
			return nil, err
		}
		wdesc.DepthStencil = &wgpu.DepthStencilState{
			Format:            wf,
			DepthWriteEnabled: ds.DepthWriteEnabled,
			DepthCompare:      compareToWGPU(ds.DepthCompare),
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilReadMask:   ds.StencilReadMask,
			StencilWriteMask:  ds.StencilWriteMask,
		}
	}
	handle, err := d.dev.CreateRenderPipeline(wdesc)
	if err != nil {
		return nil, fmt.Errorf("webgpu: create render pipeline: %w", err)
	}
	return handle, nil
}

func (d *device) CreateQuerySet(desc *driver.QuerySetDescriptor) (driver.QuerySet, error) {
	if desc.Type == driver.QueryTypeOcclusion {
		// The binding's render pass descriptor has no occlusion query
		// set field, so occlusion queries cannot be attached to a pass.
		return nil, fmt.Errorf("%w: occlusion queries on the webgpu backend", driver.ErrNotSupported)
	}
	handle, err := d.dev.CreateQuerySet(&wgpu.QuerySetDescriptor{
		Label: desc.Label,
		Type:  wgpu.QueryTypeTimestamp,
		Count: desc.Count,
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: create query set: %w", err)
	}
	return &querySet{qs: handle}, nil
}

func (d *device) CreateCommandEncoder(label string) (driver.CommandEncoder, error) {
	handle, err := d.dev.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("webgpu: create command encoder: %w", err)
	}
	return &encoder{enc: handle}, nil
}

func (d *device) CreateRenderBundleEncoder(desc *driver.RenderBundleEncoderDescriptor) (driver.RenderBundleEncoder, error) {
	colorFormats := make([]wgpu.TextureFormat, len(desc.ColorFormats))
	for i, f := range desc.ColorFormats {
		wf, err := textureFormat(f)
		if err != nil {
			return nil, err
		}
		colorFormats[i] = wf
	}
	depthFormat := wgpu.TextureFormatUndefined
	if desc.DepthStencilFormat != format.Undefined {
		wf, err := textureFormat(desc.DepthStencilFormat)
		if err != nil {
			return nil, err
		}
		depthFormat = wf
	}
	handle, err := d.dev.CreateRenderBundleEncoder(&wgpu.RenderBundleEncoderDescriptor{
		Label:              desc.Label,
		ColorFormats:       colorFormats,
		DepthStencilFormat: depthFormat,
		SampleCount:        desc.SampleCount,
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: create render bundle encoder: %w", err)
	}
	return &bundleEncoder{enc: handle}, nil
}

// buffer implements driver.Buffer with the implementation's own mapped
// ranges.
type buffer struct {
	dev *device
	buf *wgpu.Buffer
}

func (b *buffer) MapAsync(mode gputypes.MapMode, offset, size uint64, callback func(error)) {
	wmode := wgpu.MapModeRead
	if mode == gputypes.MapModeWrite {
		wmode = wgpu.MapModeWrite
	}
	err := b.buf.MapAsync(wmode, offset, size, func(status wgpu.BufferMapAsyncStatus) {
		if status != wgpu.BufferMapAsyncStatusSuccess {
			callback(fmt.Errorf("%w: status %d", driver.ErrMapFailed, status))
			return
		}
		callback(nil)
	})
	if err != nil {
		callback(fmt.Errorf("%w: %v", driver.ErrMapFailed, err))
		return
	}
	// Blocking poll drives the callback to completion.
	b.dev.dev.Poll(true, nil)
}

func (b *buffer) MappedRange(offset, size uint64) []byte {
	return b.buf.GetMappedRange(uint(offset), uint(size))
}

func (b *buffer) Unmap() {
	b.buf.Unmap()
}

func (b *buffer) Destroy() {
	b.buf.Destroy()
	b.buf.Release()
}

// texture implements driver.Texture.
type texture struct {
	tex *wgpu.Texture
}

func (t *texture) CreateView(desc *driver.TextureViewDescriptor) (driver.TextureView, error) {
	wf := wgpu.TextureFormatUndefined
	if desc.Format != format.Undefined {
		var err error
		wf, err = textureFormat(desc.Format)
		if err != nil {
			return nil, err
		}
	}
	view, err := t.tex.CreateView(&wgpu.TextureViewDescriptor{
		Label:           desc.Label,
		Format:          wf,
		Dimension:       viewDimensionToWGPU(desc.Dimension),
		Aspect:          aspectToWGPU(desc.Aspect),
		BaseMipLevel:    desc.BaseMipLevel,
		MipLevelCount:   desc.MipLevelCount,
		BaseArrayLayer:  desc.BaseArrayLayer,
		ArrayLayerCount: desc.ArrayLayerCount,
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: create texture view: %w", err)
	}
	return view, nil
}

func (t *texture) Destroy() {
	t.tex.Destroy()
	t.tex.Release()
}

// querySet implements driver.QuerySet.
type querySet struct {
	qs *wgpu.QuerySet
}

func (q *querySet) Destroy() {
	q.qs.Release()
}

// queue implements driver.Queue.
type queue struct {
	dev *device
	q   *wgpu.Queue
}

func (q *queue) Submit(buffers []driver.CommandBuffer) error {
	cmds := make([]*wgpu.CommandBuffer, len(buffers))
	for i, cb := range buffers {
		cmds[i] = cb.(*wgpu.CommandBuffer)
	}
	q.q.Submit(cmds...)
	return nil
}

func (q *queue) WriteBuffer(buf driver.Buffer, offset uint64, data []byte) error {
	return q.q.WriteBuffer(buf.(*buffer).buf, offset, data)
}

func (q *queue) WriteTexture(dst *driver.ImageCopyTexture, data []byte, layout gputypes.TextureDataLayout, size gputypes.Extent3D) error {
	q.q.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  dst.Texture.(*texture).tex,
			MipLevel: dst.MipLevel,
			Origin:   originToWGPU(dst.Origin),
			Aspect:   aspectToWGPU(dst.Aspect),
		},
		data,
		&wgpu.TextureDataLayout{
			Offset:       layout.Offset,
			BytesPerRow:  layout.BytesPerRow,
			RowsPerImage: layout.RowsPerImage,
		},
		&wgpu.Extent3D{
			Width:              size.Width,
			Height:             size.Height,
			DepthOrArrayLayers: size.DepthOrArrayLayers,
		},
	)
	return nil
}

func (q *queue) Wait() error {
	q.dev.dev.Poll(true, nil)
	return nil
}
