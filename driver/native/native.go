// Package native implements the driver contract on the pure-Go
// gogpu/wgpu HAL. Importing it registers the "native" backend:
//
//	import _ "github.com/gogpu/tgpu/driver/native"
//
// The HAL exposes no query sets and no non-buffer bind group entries,
// so the backend reports those as unsupported. Buffer mapping uses the
// HAL's persistent mappings; buffers created mapped with non-mappable
// usage are staged in host memory and written back on unmap.
package native

import (
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/tgpu/driver"
	"github.com/gogpu/tgpu/format"
)

func init() {
	driver.Register(&nativeDriver{})
}

type nativeDriver struct {
	mu       sync.Mutex
	instance hal.Instance
}

func (d *nativeDriver) Name() string { return driver.BackendNative }

func (d *nativeDriver) Open() (driver.Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend missing", driver.ErrNotAvailable)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %v", driver.ErrNotAvailable, err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w: no adapters found", driver.ErrNotAvailable)
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("%w: open adapter: %v", driver.ErrNotAvailable, err)
	}

	d.mu.Lock()
	d.instance = instance
	d.mu.Unlock()

	dev := &device{hdev: openDev.Device}
	dev.queue = &queue{dev: dev, q: openDev.Queue}
	return dev, nil
}

// OpenShared opens a device on GPU handles owned by an existing
// gpucontext host (a windowing app, typically) instead of creating a
// fresh instance. The provider must also expose its HAL handles
// through HalDevice and HalQueue; plain providers cannot be shared.
//
// The returned device borrows the handles. Destroy releases only the
// resources this package created on top of them.
func OpenShared(provider gpucontext.DeviceProvider) (driver.Device, error) {
	if provider == nil {
		return nil, fmt.Errorf("%w: nil device provider", driver.ErrNotAvailable)
	}
	hp, ok := provider.(interface {
		HalDevice() any
		HalQueue() any
	})
	if !ok {
		return nil, fmt.Errorf("%w: provider does not expose HAL handles", driver.ErrNotSupported)
	}
	hdev, ok := hp.HalDevice().(hal.Device)
	if !ok || hdev == nil {
		return nil, fmt.Errorf("%w: provider HalDevice is not a hal.Device", driver.ErrNotSupported)
	}
	hq, ok := hp.HalQueue().(hal.Queue)
	if !ok || hq == nil {
		return nil, fmt.Errorf("%w: provider HalQueue is not a hal.Queue", driver.ErrNotSupported)
	}

	dev := &device{hdev: hdev, shared: true}
	dev.queue = &queue{dev: dev, q: hq}
	return dev, nil
}

func (d *nativeDriver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
}

// device implements driver.Device over a hal.Device. A shared device
// borrows its handles from a gpucontext host and must not destroy them.
type device struct {
	hdev   hal.Device
	queue  *queue
	shared bool
}

func (d *device) Queue() driver.Queue { return d.queue }

func (d *device) Destroy() {
	if !d.shared {
		d.hdev.Destroy()
	}
}

// formatToHAL maps the formats the HAL's texture path understands.
func formatToHAL(f format.Format) (gputypes.TextureFormat, error) {
	switch f {
	case format.R8Unorm:
		return gputypes.TextureFormatR8Unorm, nil
	case format.RGBA8Unorm:
		return gputypes.TextureFormatRGBA8Unorm, nil
	case format.BGRA8Unorm:
		return gputypes.TextureFormatBGRA8Unorm, nil
	case format.Depth24PlusStencil8:
		return gputypes.TextureFormatDepth24PlusStencil8, nil
	default:
		return gputypes.TextureFormatUndefined, fmt.Errorf("%w: format %s on the native backend",
			driver.ErrNotSupported, f)
	}
}

func (d *device) CreateBuffer(desc *driver.BufferDescriptor) (driver.Buffer, error) {
	handle, err := d.hdev.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: desc.Usage,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create buffer: %w", err)
	}
	b := &buffer{dev: d, handle: handle, size: desc.Size}
	if desc.MappedAtCreation {
		b.staging = make([]byte, desc.Size)
	}
	return b, nil
}

func (d *device) CreateTexture(desc *driver.TextureDescriptor) (driver.Texture, error) {
	halFormat, err := formatToHAL(desc.Format)
	if err != nil {
		return nil, err
	}
	handle, err := d.hdev.CreateTexture(&hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:              desc.Size.Width,
			Height:             desc.Size.Height,
			DepthOrArrayLayers: desc.Size.DepthOrArrayLayers,
		},
		MipLevelCount: desc.MipLevelCount,
		SampleCount:   desc.SampleCount,
		Dimension:     desc.Dimension,
		Format:        halFormat,
		Usage:         desc.Usage,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create texture: %w", err)
	}
	return &texture{dev: d, handle: handle, format: desc.Format}, nil
}

func (d *device) CreateSampler(*driver.SamplerDescriptor) (driver.Sampler, error) {
	return nil, fmt.Errorf("%w: samplers on the native backend", driver.ErrNotSupported)
}

func (d *device) CreateShaderModule(desc *driver.ShaderModuleDescriptor) (driver.ShaderModule, error) {
	spirv, err := compileToSPIRV(desc.WGSL)
	if err != nil {
		return nil, fmt.Errorf("native: compile shader: %w", err)
	}
	handle, err := d.hdev.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  desc.Label,
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return nil, fmt.Errorf("native: create shader module: %w", err)
	}
	return handle, nil
}

// compileToSPIRV compiles WGSL to little-endian SPIR-V words.
func compileToSPIRV(wgsl string) ([]uint32, error) {
	raw, err := naga.Compile(wgsl)
	if err != nil {
		return nil, err
	}
	words := make([]uint32, len(raw)/4)
	for i := range words {
		words[i] = uint32(raw[i*4]) |
			uint32(raw[i*4+1])<<8 |
			uint32(raw[i*4+2])<<16 |
			uint32(raw[i*4+3])<<24
	}
	return words, nil
}

func (d *device) CreateBindGroupLayout(desc *driver.BindGroupLayoutDescriptor) (driver.BindGroupLayout, error) {
	handle, err := d.hdev.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: desc.Entries,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create bind group layout: %w", err)
	}
	return handle, nil
}

func (d *device) CreatePipelineLayout(desc *driver.PipelineLayoutDescriptor) (driver.PipelineLayout, error) {
	layouts := make([]hal.BindGroupLayout, len(desc.BindGroupLayouts))
	for i, l := range desc.BindGroupLayouts {
		layouts[i] = l.(hal.BindGroupLayout)
	}
	handle, err := d.hdev.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create pipeline layout: %w", err)
	}
	return handle, nil
}

func (d *device) CreateBindGroup(desc *driver.BindGroupDescriptor) (driver.BindGroup, error) {
	entries := make([]gputypes.BindGroupEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		if e.Buffer == nil {
			// The HAL binds buffers only; sampler and texture entries
			// need the webgpu backend.
			return nil, fmt.Errorf("%w: non-buffer bind group entries on the native backend",
				driver.ErrNotSupported)
		}
		entries[i] = gputypes.BindGroupEntry{
			Binding: e.Binding,
			Resource: gputypes.BufferBinding{
				Buffer: e.Buffer.(*buffer).handle.NativeHandle(),
				Offset: e.Offset,
				Size:   e.Size,
			},
		}
	}
	handle, err := d.hdev.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  desc.Layout.(hal.BindGroupLayout),
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create bind group: %w", err)
	}
	return handle, nil
}

func (d *device) CreateComputePipeline(desc *driver.ComputePipelineDescriptor) (driver.ComputePipeline, error) {
	handle, err := d.hdev.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  desc.Label,
		Layout: desc.Layout.(hal.PipelineLayout),
		Compute: hal.ComputeState{
			Module:     desc.Module.(hal.ShaderModule),
			EntryPoint: desc.EntryPoint,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("native: create compute pipeline: %w", err)
	}
	return handle, nil
}

func (d *device) CreateRenderPipeline(desc *driver.RenderPipelineDescriptor) (driver.RenderPipeline, error) {
	halDesc := &hal.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: desc.Layout.(hal.PipelineLayout),
		Vertex: hal.VertexState{
			Module:     desc.VertexModule.(hal.ShaderModule),
			EntryPoint: desc.VertexEntry,
		},
		Multisample: gputypes.MultisampleState{
			Count: desc.SampleCount,
			Mask:  0xFFFFFFFF,
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  desc.Topology,
			FrontFace: desc.FrontFace,
			CullMode:  desc.CullMode,
		},
	}
	for _, b := range desc.VertexBuffers {
		halDesc.Vertex.Buffers = append(halDesc.Vertex.Buffers, gputypes.VertexBufferLayout{
			ArrayStride: b.ArrayStride,
			StepMode:    b.StepMode,
			Attributes:  b.Attributes,
		})
	}
	if desc.FragmentModule != nil {
		frag := &hal.FragmentState{
			Module:     desc.FragmentModule.(hal.ShaderModule),
			EntryPoint: desc.FragmentEntry,
		}
		for _, t := range desc.ColorTargets {
			halFormat, err := formatToHAL(t.Format)
			if err != nil {
				return nil, err
			}
			frag.Targets = append(frag.Targets, gputypes.ColorTargetState{
				Format:    halFormat,
				WriteMask: t.WriteMask,
			})
		}
		halDesc.Fragment = frag
	}
	if ds := desc.DepthStencil; ds != nil {
		halFormat, err := formatToHAL(ds.Format)
		if err != nil {
			return nil, err
		}
		halDesc.DepthStencil = &hal.DepthStencilState{
			Format:            halFormat,
			DepthWriteEnabled: ds.DepthWriteEnabled,
			DepthCompare:      ds.DepthCompare,
			StencilFront: hal.StencilFaceState{
				Compare:     gputypes.CompareFunctionAlways,
				FailOp:      hal.StencilOperationKeep,
				DepthFailOp: hal.StencilOperationKeep,
				PassOp:      hal.StencilOperationKeep,
			},
			StencilBack: hal.StencilFaceState{
				Compare:     gputypes.CompareFunctionAlways,
				FailOp:      hal.StencilOperationKeep,
				DepthFailOp: hal.StencilOperationKeep,
				PassOp:      hal.StencilOperationKeep,
			},
			StencilReadMask:  ds.StencilReadMask,
			StencilWriteMask: ds.StencilWriteMask,
		}
	}
	handle, err := d.hdev.CreateRenderPipeline(halDesc)
	if err != nil {
		return nil, fmt.Errorf("native: create render pipeline: %w", err)
	}
	return handle, nil
}

func (d *device) CreateQuerySet(*driver.QuerySetDescriptor) (driver.QuerySet, error) {
	return nil, fmt.Errorf("%w: query sets on the native backend", driver.ErrNotSupported)
}

func (d *device) CreateCommandEncoder(label string) (driver.CommandEncoder, error) {
	handle, err := d.hdev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("native: create command encoder: %w", err)
	}
	if err := handle.BeginEncoding(label); err != nil {
		return nil, fmt.Errorf("native: begin encoding: %w", err)
	}
	return &encoder{dev: d, enc: handle, label: label}, nil
}

func (d *device) CreateRenderBundleEncoder(desc *driver.RenderBundleEncoderDescriptor) (driver.RenderBundleEncoder, error) {
	halDesc := &hal.RenderBundleEncoderDescriptor{
		Label:       desc.Label,
		SampleCount: desc.SampleCount,
	}
	for _, f := range desc.ColorFormats {
		halFormat, err := formatToHAL(f)
		if err != nil {
			return nil, err
		}
		halDesc.ColorFormats = append(halDesc.ColorFormats, halFormat)
	}
	if desc.DepthStencilFormat != format.Undefined {
		halFormat, err := formatToHAL(desc.DepthStencilFormat)
		if err != nil {
			return nil, err
		}
		halDesc.DepthStencilFormat = halFormat
	}
	handle, err := d.hdev.CreateRenderBundleEncoder(halDesc)
	if err != nil {
		return nil, fmt.Errorf("native: create render bundle encoder: %w", err)
	}
	return &bundleEncoder{enc: handle}, nil
}

// texture implements driver.Texture.
type texture struct {
	dev    *device
	handle hal.Texture
	format format.Format
}

func (t *texture) CreateView(desc *driver.TextureViewDescriptor) (driver.TextureView, error) {
	viewFormat := gputypes.TextureFormatUndefined
	if desc.Format != t.format {
		var err error
		viewFormat, err = formatToHAL(desc.Format)
		if err != nil {
			return nil, err
		}
	}
	view, err := t.dev.hdev.CreateTextureView(t.handle, &hal.TextureViewDescriptor{
		Label:           desc.Label,
		Format:          viewFormat,
		Dimension:       desc.Dimension,
		Aspect:          desc.Aspect,
		BaseMipLevel:    desc.BaseMipLevel,
		MipLevelCount:   desc.MipLevelCount,
		BaseArrayLayer:  desc.BaseArrayLayer,
		ArrayLayerCount: desc.ArrayLayerCount,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create texture view: %w", err)
	}
	return view, nil
}

func (t *texture) Destroy() {
	t.dev.hdev.DestroyTexture(t.handle)
}
