package tgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/tgpu/driver"
)

// BindGroupLayout describes the shape of one bind group slot set. Bind
// groups and pipelines created against the same layout object are
// compatible; compatibility is checked by layout identity at dispatch
// and draw time.
type BindGroupLayout struct {
	dev    *Device
	handle driver.BindGroupLayout
	id     uint64
}

// CreateBindGroupLayout creates a bind group layout from WebGPU-style
// entries.
func (d *Device) CreateBindGroupLayout(label string, entries []gputypes.BindGroupLayoutEntry) (*BindGroupLayout, error) {
	handle, err := d.dev.CreateBindGroupLayout(&driver.BindGroupLayoutDescriptor{
		Label:   label,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("tgpu: create bind group layout %q: %w", label, err)
	}
	return &BindGroupLayout{dev: d, handle: handle, id: resourceIDs.Add(1)}, nil
}

// PipelineLayout is an ordered list of bind group layouts shared by
// compatible pipelines.
type PipelineLayout struct {
	dev       *Device
	handle    driver.PipelineLayout
	layoutIDs []uint64
}

// CreatePipelineLayout creates a pipeline layout over the given bind
// group layouts, in slot order.
func (d *Device) CreatePipelineLayout(label string, layouts []*BindGroupLayout) (*PipelineLayout, error) {
	handles := make([]driver.BindGroupLayout, len(layouts))
	ids := make([]uint64, len(layouts))
	for i, l := range layouts {
		handles[i] = l.handle
		ids[i] = l.id
	}
	handle, err := d.dev.CreatePipelineLayout(&driver.PipelineLayoutDescriptor{
		Label:            label,
		BindGroupLayouts: handles,
	})
	if err != nil {
		return nil, fmt.Errorf("tgpu: create pipeline layout %q: %w", label, err)
	}
	return &PipelineLayout{dev: d, handle: handle, layoutIDs: ids}, nil
}

// BindingResource is one shader-visible resource: a buffer range, a
// sampler or a texture view. Values are built with Uniform, Storage,
// ReadOnlyStorage, SamplerBinding and TextureBinding.
type BindingResource struct {
	buffer      *bufferShared
	offset      uint64
	size        uint64
	sampler     *Sampler
	textureView *TextureView
}

// Uniform binds a single element as a uniform buffer resource. The
// underlying buffer must have Uniform usage.
func Uniform[T any](it *Item[T]) BindingResource {
	if sizeOf[T]() == 0 {
		panic("tgpu: cannot use a zero-sized value as a resource binding")
	}
	requireUsage(it.buf.usage, BufferUsageUniform, "a uniform binding")
	return BindingResource{buffer: it.buf, offset: it.off, size: uint64(sizeOf[T]())}
}

// Storage binds a view as a read-write storage buffer resource. The
// underlying buffer must have Storage usage and the view must not be
// empty.
func Storage[T any](v *View[T]) BindingResource {
	if v.SizeBytes() == 0 {
		panic("tgpu: cannot use a zero-sized buffer range as a resource binding")
	}
	requireUsage(v.buf.usage, BufferUsageStorage, "a storage binding")
	return BindingResource{buffer: v.buf, offset: v.off, size: v.SizeBytes()}
}

// ReadOnlyStorage binds a view as a read-only storage buffer resource,
// under the same rules as Storage.
func ReadOnlyStorage[T any](v *View[T]) BindingResource {
	return Storage(v)
}

// SamplerBinding binds a sampler.
func SamplerBinding(s *Sampler) BindingResource {
	return BindingResource{sampler: s}
}

// TextureBinding binds a texture view.
func TextureBinding(tv *TextureView) BindingResource {
	return BindingResource{textureView: tv}
}

// BindGroupEntry assigns a resource to a binding index.
type BindGroupEntry struct {
	Binding  uint32
	Resource BindingResource
}

// BindGroup is an immutable set of resources bound together against a
// layout.
type BindGroup struct {
	dev      *Device
	handle   driver.BindGroup
	id       uint64
	layoutID uint64
}

// CreateBindGroup creates a bind group against layout.
func (d *Device) CreateBindGroup(label string, layout *BindGroupLayout, entries []BindGroupEntry) (*BindGroup, error) {
	drvEntries := make([]driver.BindGroupEntry, len(entries))
	for i, e := range entries {
		de := driver.BindGroupEntry{Binding: e.Binding}
		switch {
		case e.Resource.buffer != nil:
			de.Buffer = e.Resource.buffer.handle
			de.Offset = e.Resource.offset
			de.Size = e.Resource.size
		case e.Resource.sampler != nil:
			de.Sampler = e.Resource.sampler.handle
		case e.Resource.textureView != nil:
			de.TextureView = e.Resource.textureView.handle
		default:
			panic(fmt.Sprintf("tgpu: bind group entry %d has no resource", e.Binding))
		}
		drvEntries[i] = de
	}
	handle, err := d.dev.CreateBindGroup(&driver.BindGroupDescriptor{
		Label:   label,
		Layout:  layout.handle,
		Entries: drvEntries,
	})
	if err != nil {
		return nil, fmt.Errorf("tgpu: create bind group %q: %w", label, err)
	}
	return &BindGroup{dev: d, handle: handle, id: resourceIDs.Add(1), layoutID: layout.id}, nil
}
