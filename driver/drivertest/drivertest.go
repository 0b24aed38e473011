// Package drivertest provides an in-memory driver implementation that
// records every call it receives into a journal. Tests use the journal
// to assert command ordering, redundancy elision and the map protocol
// without touching a real GPU.
//
// Buffers hold real host memory: copies, clears and queue writes move
// bytes when the command buffer is submitted, so end-to-end scenarios
// (upload, encode, submit, read back) behave like a device with an
// instantaneous timeline.
package drivertest

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/tgpu/driver"
)

// Driver is the registry entry point. Tests normally construct a Device
// directly with New instead.
type Driver struct {
	mu  sync.Mutex
	dev *Device
}

// Name returns "test".
func (d *Driver) Name() string { return "test" }

// Open returns a shared recording device.
func (d *Driver) Open() (driver.Device, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dev == nil {
		d.dev = New()
	}
	return d.dev, nil
}

// Close drops the shared device.
func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dev = nil
}

// Device is a recording driver.Device.
type Device struct {
	mu      sync.Mutex
	journal []string
	nextID  atomic.Uint64
	queue   *Queue

	// MapErr, when set, is delivered to every subsequent MapAsync
	// callback instead of success.
	MapErr error
}

// New creates an empty recording device.
func New() *Device {
	d := &Device{}
	d.queue = &Queue{dev: d}
	return d
}

// Ops returns a snapshot of the journal.
func (d *Device) Ops() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.journal))
	copy(out, d.journal)
	return out
}

// Reset clears the journal.
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.journal = d.journal[:0]
}

func (d *Device) log(format string, args ...any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.journal = append(d.journal, fmt.Sprintf(format, args...))
}

func (d *Device) id() uint64 { return d.nextID.Add(1) }

// Queue returns the device queue.
func (d *Device) Queue() driver.Queue { return d.queue }

// CreateBuffer allocates a host-memory buffer.
func (d *Device) CreateBuffer(desc *driver.BufferDescriptor) (driver.Buffer, error) {
	b := &Buffer{dev: d, ID: d.id(), Data: make([]byte, desc.Size)}
	d.log("createBuffer id=%d size=%d mapped=%t", b.ID, desc.Size, desc.MappedAtCreation)
	return b, nil
}

// CreateTexture allocates a texture handle.
func (d *Device) CreateTexture(desc *driver.TextureDescriptor) (driver.Texture, error) {
	t := &Texture{dev: d, ID: d.id()}
	d.log("createTexture id=%d size=%dx%dx%d format=%s mips=%d",
		t.ID, desc.Size.Width, desc.Size.Height, desc.Size.DepthOrArrayLayers,
		desc.Format, desc.MipLevelCount)
	return t, nil
}

// CreateSampler returns an opaque sampler handle.
func (d *Device) CreateSampler(desc *driver.SamplerDescriptor) (driver.Sampler, error) {
	id := d.id()
	d.log("createSampler id=%d", id)
	return handle{id}, nil
}

// CreateShaderModule returns an opaque module handle.
func (d *Device) CreateShaderModule(desc *driver.ShaderModuleDescriptor) (driver.ShaderModule, error) {
	id := d.id()
	d.log("createShaderModule id=%d label=%q", id, desc.Label)
	return handle{id}, nil
}

// CreateBindGroupLayout returns an opaque layout handle.
func (d *Device) CreateBindGroupLayout(desc *driver.BindGroupLayoutDescriptor) (driver.BindGroupLayout, error) {
	id := d.id()
	d.log("createBindGroupLayout id=%d entries=%d", id, len(desc.Entries))
	return handle{id}, nil
}

// CreatePipelineLayout returns an opaque layout handle.
func (d *Device) CreatePipelineLayout(desc *driver.PipelineLayoutDescriptor) (driver.PipelineLayout, error) {
	id := d.id()
	d.log("createPipelineLayout id=%d groups=%d", id, len(desc.BindGroupLayouts))
	return handle{id}, nil
}

// CreateBindGroup returns an opaque bind group handle.
func (d *Device) CreateBindGroup(desc *driver.BindGroupDescriptor) (driver.BindGroup, error) {
	id := d.id()
	d.log("createBindGroup id=%d entries=%d", id, len(desc.Entries))
	return handle{id}, nil
}

// CreateComputePipeline returns an opaque pipeline handle.
func (d *Device) CreateComputePipeline(desc *driver.ComputePipelineDescriptor) (driver.ComputePipeline, error) {
	id := d.id()
	d.log("createComputePipeline id=%d entry=%q", id, desc.EntryPoint)
	return handle{id}, nil
}

// CreateRenderPipeline returns an opaque pipeline handle.
func (d *Device) CreateRenderPipeline(desc *driver.RenderPipelineDescriptor) (driver.RenderPipeline, error) {
	id := d.id()
	d.log("createRenderPipeline id=%d targets=%d", id, len(desc.ColorTargets))
	return handle{id}, nil
}

// CreateQuerySet returns a query set handle.
func (d *Device) CreateQuerySet(desc *driver.QuerySetDescriptor) (driver.QuerySet, error) {
	q := &QuerySet{dev: d, ID: d.id(), Count: desc.Count}
	d.log("createQuerySet id=%d type=%d count=%d", q.ID, desc.Type, desc.Count)
	return q, nil
}

// CreateCommandEncoder returns a recording encoder.
func (d *Device) CreateCommandEncoder(label string) (driver.CommandEncoder, error) {
	id := d.id()
	d.log("createCommandEncoder id=%d", id)
	return &Encoder{dev: d, ID: id}, nil
}

// CreateRenderBundleEncoder returns a recording bundle encoder.
func (d *Device) CreateRenderBundleEncoder(desc *driver.RenderBundleEncoderDescriptor) (driver.RenderBundleEncoder, error) {
	id := d.id()
	d.log("createRenderBundleEncoder id=%d", id)
	return &BundleEncoder{dev: d, ID: id}, nil
}

// Destroy logs device destruction.
func (d *Device) Destroy() { d.log("destroyDevice") }

// handle is an opaque resource with an identity.
type handle struct{ ID uint64 }

// Buffer is a host-memory driver buffer.
type Buffer struct {
	dev *Device
	// ID identifies the buffer in journal entries.
	ID   uint64
	Data []byte

	mapped bool
}

// MapAsync records the request and completes immediately.
func (b *Buffer) MapAsync(mode gputypes.MapMode, offset, size uint64, callback func(error)) {
	b.dev.log("buffer%d.mapAsync offset=%d size=%d", b.ID, offset, size)
	if b.dev.MapErr != nil {
		callback(b.dev.MapErr)
		return
	}
	b.mapped = true
	callback(nil)
}

// MappedRange returns the live backing bytes.
func (b *Buffer) MappedRange(offset, size uint64) []byte {
	return b.Data[offset : offset+size]
}

// Unmap records the unmap.
func (b *Buffer) Unmap() {
	b.mapped = false
	b.dev.log("buffer%d.unmap", b.ID)
}

// Destroy records the destroy.
func (b *Buffer) Destroy() { b.dev.log("buffer%d.destroy", b.ID) }

// Texture is a recording driver texture.
type Texture struct {
	dev *Device
	ID  uint64
}

// CreateView returns an opaque view handle.
func (t *Texture) CreateView(desc *driver.TextureViewDescriptor) (driver.TextureView, error) {
	id := t.dev.id()
	t.dev.log("texture%d.createView id=%d baseMip=%d mips=%d", t.ID, id, desc.BaseMipLevel, desc.MipLevelCount)
	return handle{id}, nil
}

// Destroy records the destroy.
func (t *Texture) Destroy() { t.dev.log("texture%d.destroy", t.ID) }

// QuerySet is a recording query set.
type QuerySet struct {
	dev   *Device
	ID    uint64
	Count uint32
}

// Destroy records the destroy.
func (q *QuerySet) Destroy() { q.dev.log("querySet%d.destroy", q.ID) }

// Queue executes submitted command buffers against host memory.
type Queue struct {
	dev *Device
}

// Submit runs the deferred actions of each command buffer in order.
func (q *Queue) Submit(buffers []driver.CommandBuffer) error {
	q.dev.log("submit n=%d", len(buffers))
	for _, cb := range buffers {
		if c, ok := cb.(*CommandBuffer); ok {
			for _, action := range c.actions {
				action()
			}
		}
	}
	return nil
}

// WriteBuffer copies data into the buffer immediately.
func (q *Queue) WriteBuffer(buf driver.Buffer, offset uint64, data []byte) error {
	b := buf.(*Buffer)
	q.dev.log("queue.writeBuffer id=%d offset=%d size=%d", b.ID, offset, len(data))
	copy(b.Data[offset:], data)
	return nil
}

// WriteTexture records the write.
func (q *Queue) WriteTexture(dst *driver.ImageCopyTexture, data []byte, layout gputypes.TextureDataLayout, size gputypes.Extent3D) error {
	t := dst.Texture.(*Texture)
	q.dev.log("queue.writeTexture id=%d mip=%d bytes=%d bytesPerRow=%d", t.ID, dst.MipLevel, len(data), layout.BytesPerRow)
	return nil
}

// Wait returns immediately; the test timeline is synchronous.
func (q *Queue) Wait() error {
	q.dev.log("queue.wait")
	return nil
}

// CommandBuffer holds deferred byte-moving actions.
type CommandBuffer struct {
	ID      uint64
	actions []func()
}
