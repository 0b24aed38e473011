package tgpu

import (
	"fmt"

	"github.com/gogpu/tgpu/driver"
	"github.com/gogpu/tgpu/format"
)

// RenderBundleDescriptor fixes the attachment layout a bundle may be
// executed against. Zero SampleCount defaults to 1.
type RenderBundleDescriptor struct {
	Label              string
	ColorFormats       []format.Format
	DepthStencilFormat format.Format
	SampleCount        uint32
}

// RenderBundle is a finished, reusable draw sequence. It may only be
// executed in render passes whose attachments match the layout it was
// recorded against.
type RenderBundle struct {
	handle  driver.RenderBundle
	id      uint64
	label   string
	targets renderTargetLayout
}

// renderBundleState is shared by the bundle encoder wrapper types.
type renderBundleState struct {
	dev    *Device
	handle driver.RenderBundleEncoder
	label  string
	done   bool

	targets renderTargetLayout

	pipeline *RenderPipeline
	groups   [maxBindGroups]boundGroup
	vertex   [maxVertexSlots]boundVertex
	index    boundIndex
}

// CreateRenderBundleEncoder opens a bundle recording against the given
// attachment layout.
func (d *Device) CreateRenderBundleEncoder(desc *RenderBundleDescriptor) (*RenderBundleEncoder, error) {
	if len(desc.ColorFormats) == 0 && desc.DepthStencilFormat == format.Undefined {
		panic("tgpu: a render bundle must have at least 1 color format or a depth/stencil format")
	}
	if len(desc.ColorFormats) > maxColorAttachments {
		panic(fmt.Sprintf("tgpu: %d color formats exceed the maximum %d",
			len(desc.ColorFormats), maxColorAttachments))
	}
	samples := desc.SampleCount
	if samples == 0 {
		samples = 1
	}
	targets := renderTargetLayout{samples: samples}
	for _, f := range desc.ColorFormats {
		if !format.Get(f).Caps.Contains(format.CapRenderable) {
			panic(fmt.Sprintf("tgpu: format %s cannot be used as a color attachment", f))
		}
		targets.colors = append(targets.colors, f)
	}
	if f := desc.DepthStencilFormat; f != format.Undefined {
		if !format.Get(f).IsDepthStencil() {
			panic(fmt.Sprintf("tgpu: format %s is not a depth/stencil format", f))
		}
		targets.depthStencil = f
	}

	handle, err := d.dev.CreateRenderBundleEncoder(&driver.RenderBundleEncoderDescriptor{
		Label:              desc.Label,
		ColorFormats:       desc.ColorFormats,
		DepthStencilFormat: desc.DepthStencilFormat,
		SampleCount:        samples,
	})
	if err != nil {
		return nil, fmt.Errorf("tgpu: create render bundle encoder %q: %w", desc.Label, err)
	}
	return &RenderBundleEncoder{s: &renderBundleState{
		dev:     d,
		handle:  handle,
		label:   desc.Label,
		targets: targets,
	}}, nil
}

func (s *renderBundleState) checkOpen() {
	if s.done {
		panic(fmt.Sprintf("tgpu: render bundle encoder %q is finished", s.label))
	}
}

func (s *renderBundleState) setPipeline(p *RenderPipeline) {
	s.checkOpen()
	if !p.targets.equal(s.targets) {
		panic(fmt.Sprintf("tgpu: render pipeline targets %s do not match the bundle layout %s",
			p.targets, s.targets))
	}
	if s.pipeline != nil && s.pipeline.id == p.id {
		return
	}
	s.pipeline = p
	s.handle.SetPipeline(p.handle)
}

func (s *renderBundleState) setBindGroup(index uint32, group *BindGroup, dynamicOffsets []uint32) {
	s.checkOpen()
	if index >= maxBindGroups {
		panic(fmt.Sprintf("tgpu: bind group index %d is outside the %d slots", index, maxBindGroups))
	}
	prev := s.groups[index]
	if prev.id == group.id && !prev.dynamic && len(dynamicOffsets) == 0 {
		return
	}
	s.groups[index] = boundGroup{id: group.id, layoutID: group.layoutID, dynamic: len(dynamicOffsets) > 0}
	s.handle.SetBindGroup(index, group.handle, dynamicOffsets)
}

func (s *renderBundleState) setVertexBuffer(slot uint32, vb VertexBufferView) {
	s.checkOpen()
	if slot >= maxVertexSlots {
		panic(fmt.Sprintf("tgpu: vertex buffer slot %d is outside the %d slots", slot, maxVertexSlots))
	}
	next := boundVertex{id: vb.buf.id, off: vb.off, size: vb.size, stride: vb.stride}
	if s.vertex[slot] == next {
		return
	}
	s.vertex[slot] = next
	s.handle.SetVertexBuffer(slot, vb.buf.handle, vb.off, vb.size)
}

func (s *renderBundleState) setIndexBuffer(ib IndexBufferView) {
	s.checkOpen()
	next := boundIndex{id: ib.buf.id, off: ib.off, size: ib.size, format: ib.format, count: ib.count}
	if s.index == next {
		return
	}
	s.index = next
	s.handle.SetIndexBuffer(ib.buf.handle, ib.format, ib.off, ib.size)
}

func (s *renderBundleState) checkDraw() {
	s.checkOpen()
	if s.pipeline == nil {
		panic("tgpu: draw needs a pipeline")
	}
	for i, want := range s.pipeline.layoutIDs {
		got := s.groups[i]
		if got.id == 0 {
			panic(fmt.Sprintf("tgpu: draw needs a bind group in slot %d", i))
		}
		if got.layoutID != want {
			panic(fmt.Sprintf("tgpu: bind group in slot %d was not created from the pipeline's layout", i))
		}
	}
	for i, want := range s.pipeline.vertexSlots {
		got := s.vertex[i]
		if got.id == 0 {
			panic(fmt.Sprintf("tgpu: draw needs a vertex buffer in slot %d", i))
		}
		if got.stride != want.stride {
			panic(fmt.Sprintf("tgpu: vertex buffer in slot %d has stride %d, pipeline expects %d",
				i, got.stride, want.stride))
		}
	}
}

func (s *renderBundleState) checkDrawIndexed(indexCount, firstIndex uint32) {
	s.checkDraw()
	if s.index.id == 0 {
		panic("tgpu: indexed draw needs an index buffer")
	}
	if f := s.pipeline.indexFormat; f != 0 && f != s.index.format {
		panic("tgpu: index buffer format does not match the pipeline's strip index format")
	}
	if uint64(firstIndex)+uint64(indexCount) > uint64(s.index.count) {
		panic(fmt.Sprintf("tgpu: indices [%d, %d) are outside the index buffer's %d indices",
			firstIndex, firstIndex+indexCount, s.index.count))
	}
}

func (s *renderBundleState) finish() (*RenderBundle, error) {
	s.checkOpen()
	s.done = true
	handle, err := s.handle.Finish()
	if err != nil {
		return nil, fmt.Errorf("tgpu: finish render bundle %q: %w", s.label, err)
	}
	return &RenderBundle{
		handle:  handle,
		id:      resourceIDs.Add(1),
		label:   s.label,
		targets: s.targets,
	}, nil
}

// RenderBundleEncoder records a bundle with no pipeline set yet.
type RenderBundleEncoder struct {
	s *renderBundleState
}

// SetPipeline sets the pipeline and enables drawing. The pipeline's
// target layout must match the bundle layout.
func (p *RenderBundleEncoder) SetPipeline(pipeline *RenderPipeline) *RenderBundleDrawEncoder {
	p.s.setPipeline(pipeline)
	return &RenderBundleDrawEncoder{s: p.s}
}

// SetBindGroup binds group at index.
func (p *RenderBundleEncoder) SetBindGroup(index uint32, group *BindGroup, dynamicOffsets []uint32) *RenderBundleEncoder {
	p.s.setBindGroup(index, group, dynamicOffsets)
	return p
}

// SetVertexBuffer binds vertex data to a slot.
func (p *RenderBundleEncoder) SetVertexBuffer(slot uint32, vb VertexBufferView) *RenderBundleEncoder {
	p.s.setVertexBuffer(slot, vb)
	return p
}

// SetIndexBuffer binds the index buffer.
func (p *RenderBundleEncoder) SetIndexBuffer(ib IndexBufferView) *RenderBundleEncoder {
	p.s.setIndexBuffer(ib)
	return p
}

// Finish ends recording, producing an empty bundle if nothing was
// drawn.
func (p *RenderBundleEncoder) Finish() (*RenderBundle, error) {
	return p.s.finish()
}

// RenderBundleDrawEncoder records a bundle with a pipeline set.
type RenderBundleDrawEncoder struct {
	s *renderBundleState
}

// SetPipeline switches pipelines. Setting the current pipeline again is
// elided.
func (p *RenderBundleDrawEncoder) SetPipeline(pipeline *RenderPipeline) *RenderBundleDrawEncoder {
	p.s.setPipeline(pipeline)
	return p
}

// SetBindGroup binds group at index. Rebinding the same group with no
// dynamic offsets is elided.
func (p *RenderBundleDrawEncoder) SetBindGroup(index uint32, group *BindGroup, dynamicOffsets []uint32) *RenderBundleDrawEncoder {
	p.s.setBindGroup(index, group, dynamicOffsets)
	return p
}

// SetVertexBuffer binds vertex data to a slot.
func (p *RenderBundleDrawEncoder) SetVertexBuffer(slot uint32, vb VertexBufferView) *RenderBundleDrawEncoder {
	p.s.setVertexBuffer(slot, vb)
	return p
}

// SetIndexBuffer binds the index buffer.
func (p *RenderBundleDrawEncoder) SetIndexBuffer(ib IndexBufferView) *RenderBundleDrawEncoder {
	p.s.setIndexBuffer(ib)
	return p
}

// Draw encodes a non-indexed draw.
func (p *RenderBundleDrawEncoder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) *RenderBundleDrawEncoder {
	p.s.checkDraw()
	p.s.handle.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
	return p
}

// DrawIndexed encodes an indexed draw.
func (p *RenderBundleDrawEncoder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) *RenderBundleDrawEncoder {
	p.s.checkDrawIndexed(indexCount, firstIndex)
	p.s.handle.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
	return p
}

// DrawIndirect encodes a draw whose arguments are read from args at
// execution time.
func (p *RenderBundleDrawEncoder) DrawIndirect(args *Item[DrawArgs]) *RenderBundleDrawEncoder {
	p.s.checkDraw()
	requireUsage(args.buf.usage, BufferUsageIndirect, "an indirect draw")
	p.s.handle.DrawIndirect(args.buf.handle, args.off)
	return p
}

// DrawIndexedIndirect encodes an indexed draw whose arguments are read
// from args at execution time.
func (p *RenderBundleDrawEncoder) DrawIndexedIndirect(args *Item[DrawIndexedArgs]) *RenderBundleDrawEncoder {
	p.s.checkDraw()
	if p.s.index.id == 0 {
		panic("tgpu: indexed draw needs an index buffer")
	}
	requireUsage(args.buf.usage, BufferUsageIndirect, "an indirect draw")
	p.s.handle.DrawIndexedIndirect(args.buf.handle, args.off)
	return p
}

// Finish ends recording and returns the bundle.
func (p *RenderBundleDrawEncoder) Finish() (*RenderBundle, error) {
	return p.s.finish()
}
