package tgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/tgpu/driver"
	"github.com/gogpu/tgpu/format"
)

// maxColorAttachments is the number of color attachments a render pass
// or bundle may target.
const maxColorAttachments = 8

// maxVertexSlots is the number of vertex buffer slots a pass tracks.
const maxVertexSlots = 8

// ColorAttachment describes one color attachment of a render pass.
type ColorAttachment struct {
	View          *TextureView
	ResolveTarget *TextureView
	LoadOp        gputypes.LoadOp
	StoreOp       gputypes.StoreOp
	ClearValue    gputypes.Color
}

// DepthStencilAttachment describes the depth/stencil attachment of a
// render pass.
type DepthStencilAttachment struct {
	View              *TextureView
	DepthLoadOp       gputypes.LoadOp
	DepthStoreOp      gputypes.StoreOp
	DepthClearValue   float32
	DepthReadOnly     bool
	StencilLoadOp     gputypes.LoadOp
	StencilStoreOp    gputypes.StoreOp
	StencilClearValue uint32
	StencilReadOnly   bool
}

// RenderPassDescriptor describes a render pass. OcclusionQuerySet must
// be set for the pass to record occlusion queries.
type RenderPassDescriptor struct {
	Label                  string
	ColorAttachments       []ColorAttachment
	DepthStencilAttachment *DepthStencilAttachment
	OcclusionQuerySet      *OcclusionQuerySet
}

// VertexBufferView is a type-erased vertex buffer binding carrying the
// element stride its pipeline slot must match.
type VertexBufferView struct {
	buf    *bufferShared
	off    uint64
	size   uint64
	stride uint64
}

// VertexData binds a view as vertex data. The underlying buffer must
// have Vertex usage; the element size becomes the slot's stride.
func VertexData[V any](v *View[V]) VertexBufferView {
	requireUsage(v.buf.usage, BufferUsageVertex, "a vertex buffer")
	return VertexBufferView{buf: v.buf, off: v.off, size: v.SizeBytes(), stride: uint64(sizeOf[V]())}
}

// IndexBufferView is a type-erased index buffer binding.
type IndexBufferView struct {
	buf    *bufferShared
	off    uint64
	size   uint64
	format gputypes.IndexFormat
	count  uint32
}

// IndexDataUint16 binds a view of 16-bit indices. The underlying buffer
// must have Index usage.
func IndexDataUint16(v *View[uint16]) IndexBufferView {
	requireUsage(v.buf.usage, BufferUsageIndex, "an index buffer")
	return IndexBufferView{buf: v.buf, off: v.off, size: v.SizeBytes(),
		format: gputypes.IndexFormatUint16, count: uint32(v.Len())}
}

// IndexDataUint32 binds a view of 32-bit indices. The underlying buffer
// must have Index usage.
func IndexDataUint32(v *View[uint32]) IndexBufferView {
	requireUsage(v.buf.usage, BufferUsageIndex, "an index buffer")
	return IndexBufferView{buf: v.buf, off: v.off, size: v.SizeBytes(),
		format: gputypes.IndexFormatUint32, count: uint32(v.Len())}
}

// DrawArgs is the memory layout of an indirect draw.
type DrawArgs struct {
	VertexCount   uint32
	InstanceCount uint32
	FirstVertex   uint32
	FirstInstance uint32
}

// DrawIndexedArgs is the memory layout of an indirect indexed draw.
type DrawIndexedArgs struct {
	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	BaseVertex    int32
	FirstInstance uint32
}

// boundVertex remembers one vertex slot for elision and draw checks.
type boundVertex struct {
	id     uint64
	off    uint64
	size   uint64
	stride uint64
}

// boundIndex remembers the index buffer for elision and draw checks.
type boundIndex struct {
	id     uint64
	off    uint64
	size   uint64
	format gputypes.IndexFormat
	count  uint32
}

// renderPassState is shared by the render pass wrapper types.
type renderPassState struct {
	enc    *CommandEncoder
	handle driver.RenderPass
	label  string
	ended  bool

	targets renderTargetLayout

	pipeline *RenderPipeline
	groups   [maxBindGroups]boundGroup
	vertex   [maxVertexSlots]boundVertex
	index    boundIndex

	occlusionSet *OcclusionQuerySet
	queryActive  bool
	usedQueries  map[uint32]bool
}

// BeginRenderPass opens a render pass. The attachments fix the target
// layout every pipeline and bundle used in the pass must match. The
// encoder is locked until the pass ends.
func (e *CommandEncoder) BeginRenderPass(desc *RenderPassDescriptor) *RenderPassEncoder {
	e.checkRecording()
	if len(desc.ColorAttachments) == 0 && desc.DepthStencilAttachment == nil {
		panic("tgpu: a render pass must have at least 1 color attachment or a depth/stencil attachment")
	}
	if len(desc.ColorAttachments) > maxColorAttachments {
		panic(fmt.Sprintf("tgpu: %d color attachments exceed the maximum %d",
			len(desc.ColorAttachments), maxColorAttachments))
	}

	var width, height, samples uint32
	targets := renderTargetLayout{samples: 1}
	check := func(v *TextureView, what string) {
		if width == 0 {
			width, height, samples = v.width, v.height, v.samples
			targets.samples = samples
			return
		}
		if v.width != width || v.height != height {
			panic(fmt.Sprintf("tgpu: %s is %dx%d, other attachments are %dx%d",
				what, v.width, v.height, width, height))
		}
		if v.samples != samples {
			panic(fmt.Sprintf("tgpu: %s has %d samples, other attachments have %d",
				what, v.samples, samples))
		}
	}

	drvDesc := &driver.RenderPassDescriptor{Label: desc.Label}
	for i, a := range desc.ColorAttachments {
		info := format.Get(a.View.format)
		if !info.Caps.Contains(format.CapRenderable) {
			panic(fmt.Sprintf("tgpu: format %s cannot be used as a color attachment", a.View.format))
		}
		check(a.View, fmt.Sprintf("color attachment %d", i))
		da := driver.RenderPassColorAttachment{
			View:       a.View.handle,
			LoadOp:     a.LoadOp,
			StoreOp:    a.StoreOp,
			ClearValue: a.ClearValue,
		}
		if a.ResolveTarget != nil {
			if a.View.samples <= 1 {
				panic(fmt.Sprintf("tgpu: color attachment %d has a resolve target but only 1 sample", i))
			}
			if a.ResolveTarget.samples != 1 {
				panic(fmt.Sprintf("tgpu: resolve target of color attachment %d must have 1 sample", i))
			}
			if a.ResolveTarget.format != a.View.format {
				panic(fmt.Sprintf("tgpu: resolve target format %s does not match attachment format %s",
					a.ResolveTarget.format, a.View.format))
			}
			da.ResolveTarget = a.ResolveTarget.handle
		}
		targets.colors = append(targets.colors, a.View.format)
		drvDesc.ColorAttachments = append(drvDesc.ColorAttachments, da)
	}
	if ds := desc.DepthStencilAttachment; ds != nil {
		info := format.Get(ds.View.format)
		if !info.IsDepthStencil() {
			panic(fmt.Sprintf("tgpu: format %s cannot be used as a depth/stencil attachment", ds.View.format))
		}
		check(ds.View, "depth/stencil attachment")
		targets.depthStencil = ds.View.format
		drvDesc.DepthStencilAttachment = &driver.RenderPassDepthStencilAttachment{
			View:              ds.View.handle,
			DepthLoadOp:       ds.DepthLoadOp,
			DepthStoreOp:      ds.DepthStoreOp,
			DepthClearValue:   ds.DepthClearValue,
			DepthReadOnly:     ds.DepthReadOnly,
			StencilLoadOp:     ds.StencilLoadOp,
			StencilStoreOp:    ds.StencilStoreOp,
			StencilClearValue: ds.StencilClearValue,
			StencilReadOnly:   ds.StencilReadOnly,
		}
	}
	if desc.OcclusionQuerySet != nil {
		desc.OcclusionQuerySet.q.checkAlive()
		drvDesc.OcclusionQuerySet = desc.OcclusionQuerySet.q.handle
	}

	e.status = encoderLocked
	handle := e.handle.BeginRenderPass(drvDesc)
	return &RenderPassEncoder{s: &renderPassState{
		enc:          e,
		handle:       handle,
		label:        desc.Label,
		targets:      targets,
		occlusionSet: desc.OcclusionQuerySet,
	}}
}

func (s *renderPassState) checkOpen() {
	if s.ended {
		panic(fmt.Sprintf("tgpu: render pass %q has ended", s.label))
	}
}

func (s *renderPassState) setPipeline(p *RenderPipeline) {
	s.checkOpen()
	if !p.targets.equal(s.targets) {
		panic(fmt.Sprintf("tgpu: render pipeline targets %s do not match the pass attachments %s",
			p.targets, s.targets))
	}
	if s.pipeline != nil && s.pipeline.id == p.id {
		return
	}
	s.pipeline = p
	s.handle.SetPipeline(p.handle)
}

func (s *renderPassState) setBindGroup(index uint32, group *BindGroup, dynamicOffsets []uint32) {
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

func (s *renderPassState) setVertexBuffer(slot uint32, vb VertexBufferView) {
	s.checkOpen()
	if slot >= maxVertexSlots {
		panic(fmt.Sprintf("tgpu: vertex buffer slot %d is outside the %d slots", slot, maxVertexSlots))
	}
	next := boundVertex{id: vb.buf.id, off: vb.off, size: vb.size, stride: vb.stride}
	if s.vertex[slot] == next {
		return
	}
	s.vertex[slot] = next
	s.enc.retain(vb.buf)
	s.handle.SetVertexBuffer(slot, vb.buf.handle, vb.off, vb.size)
}

func (s *renderPassState) setIndexBuffer(ib IndexBufferView) {
	s.checkOpen()
	next := boundIndex{id: ib.buf.id, off: ib.off, size: ib.size, format: ib.format, count: ib.count}
	if s.index == next {
		return
	}
	s.index = next
	s.enc.retain(ib.buf)
	s.handle.SetIndexBuffer(ib.buf.handle, ib.format, ib.off, ib.size)
}

// checkDraw panics unless the bound state satisfies the current
// pipeline: compatible bind groups in every slot the layout names, and
// a vertex buffer with the right stride in every slot the vertex state
// names.
func (s *renderPassState) checkDraw() {
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

func (s *renderPassState) checkDrawIndexed(indexCount, firstIndex uint32) {
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

func (s *renderPassState) beginQuery(index uint32) {
	s.checkOpen()
	if s.occlusionSet == nil {
		panic(fmt.Sprintf("tgpu: render pass %q has no occlusion query set", s.label))
	}
	if index >= s.occlusionSet.q.count {
		panic(fmt.Sprintf("tgpu: query index %d is outside the set's %d slots", index, s.occlusionSet.q.count))
	}
	if s.usedQueries[index] {
		panic(fmt.Sprintf("tgpu: query index %d was already used in this pass", index))
	}
	if s.usedQueries == nil {
		s.usedQueries = make(map[uint32]bool)
	}
	s.usedQueries[index] = true
	s.queryActive = true
	s.handle.BeginOcclusionQuery(index)
}

func (s *renderPassState) endQuery() {
	s.checkOpen()
	s.queryActive = false
	s.handle.EndOcclusionQuery()
}

// executeBundles replays bundles and invalidates all tracked state,
// since a bundle leaves the pass's bindings undefined.
func (s *renderPassState) executeBundles(bundles []*RenderBundle) {
	s.checkOpen()
	handles := make([]driver.RenderBundle, len(bundles))
	for i, b := range bundles {
		if !b.targets.equal(s.targets) {
			panic(fmt.Sprintf("tgpu: render bundle targets %s do not match the pass attachments %s",
				b.targets, s.targets))
		}
		handles[i] = b.handle
	}
	s.pipeline = nil
	s.groups = [maxBindGroups]boundGroup{}
	s.vertex = [maxVertexSlots]boundVertex{}
	s.index = boundIndex{}
	s.handle.ExecuteBundles(handles)
}

func (s *renderPassState) end() {
	s.checkOpen()
	if s.queryActive {
		panic(fmt.Sprintf("tgpu: render pass %q ended with an open occlusion query", s.label))
	}
	s.ended = true
	s.handle.End()
	s.enc.status = encoderRecording
}

// RenderPassEncoder is an open render pass with no pipeline set and no
// occlusion query active. Setting a pipeline moves recording to a
// RenderDrawEncoder.
type RenderPassEncoder struct {
	s *renderPassState
}

// SetPipeline sets the pipeline and enables drawing. The pipeline's
// target layout must match the pass attachments.
func (p *RenderPassEncoder) SetPipeline(pipeline *RenderPipeline) *RenderDrawEncoder {
	p.s.setPipeline(pipeline)
	return &RenderDrawEncoder{s: p.s}
}

// SetBindGroup binds group at index.
func (p *RenderPassEncoder) SetBindGroup(index uint32, group *BindGroup, dynamicOffsets []uint32) *RenderPassEncoder {
	p.s.setBindGroup(index, group, dynamicOffsets)
	return p
}

// SetVertexBuffer binds vertex data to a slot.
func (p *RenderPassEncoder) SetVertexBuffer(slot uint32, vb VertexBufferView) *RenderPassEncoder {
	p.s.setVertexBuffer(slot, vb)
	return p
}

// SetIndexBuffer binds the index buffer.
func (p *RenderPassEncoder) SetIndexBuffer(ib IndexBufferView) *RenderPassEncoder {
	p.s.setIndexBuffer(ib)
	return p
}

// SetViewport sets the viewport transform.
func (p *RenderPassEncoder) SetViewport(x, y, width, height, minDepth, maxDepth float32) *RenderPassEncoder {
	p.s.checkOpen()
	p.s.handle.SetViewport(x, y, width, height, minDepth, maxDepth)
	return p
}

// SetScissorRect sets the scissor rectangle.
func (p *RenderPassEncoder) SetScissorRect(x, y, width, height uint32) *RenderPassEncoder {
	p.s.checkOpen()
	p.s.handle.SetScissorRect(x, y, width, height)
	return p
}

// SetBlendConstant sets the blend constant color.
func (p *RenderPassEncoder) SetBlendConstant(color gputypes.Color) *RenderPassEncoder {
	p.s.checkOpen()
	p.s.handle.SetBlendConstant(color)
	return p
}

// SetStencilReference sets the stencil reference value.
func (p *RenderPassEncoder) SetStencilReference(reference uint32) *RenderPassEncoder {
	p.s.checkOpen()
	p.s.handle.SetStencilReference(reference)
	return p
}

// BeginOcclusionQuery opens occlusion query index. The pass must have
// an occlusion query set and each index may be used once per pass.
func (p *RenderPassEncoder) BeginOcclusionQuery(index uint32) *RenderQueryEncoder {
	p.s.beginQuery(index)
	return &RenderQueryEncoder{s: p.s}
}

// ExecuteBundles replays pre-recorded bundles. All pipeline, bind group
// and buffer bindings are invalidated afterwards.
func (p *RenderPassEncoder) ExecuteBundles(bundles ...*RenderBundle) *RenderPassEncoder {
	p.s.executeBundles(bundles)
	return p
}

// End closes the pass and unlocks the encoder.
func (p *RenderPassEncoder) End() {
	p.s.end()
}

// RenderDrawEncoder is an open render pass with a pipeline set and no
// occlusion query active.
type RenderDrawEncoder struct {
	s *renderPassState
}

// SetPipeline switches pipelines. Setting the current pipeline again is
// elided.
func (p *RenderDrawEncoder) SetPipeline(pipeline *RenderPipeline) *RenderDrawEncoder {
	p.s.setPipeline(pipeline)
	return p
}

// SetBindGroup binds group at index. Rebinding the same group with no
// dynamic offsets is elided.
func (p *RenderDrawEncoder) SetBindGroup(index uint32, group *BindGroup, dynamicOffsets []uint32) *RenderDrawEncoder {
	p.s.setBindGroup(index, group, dynamicOffsets)
	return p
}

// SetVertexBuffer binds vertex data to a slot. Rebinding the same range
// is elided.
func (p *RenderDrawEncoder) SetVertexBuffer(slot uint32, vb VertexBufferView) *RenderDrawEncoder {
	p.s.setVertexBuffer(slot, vb)
	return p
}

// SetIndexBuffer binds the index buffer. Rebinding the same range with
// the same format is elided.
func (p *RenderDrawEncoder) SetIndexBuffer(ib IndexBufferView) *RenderDrawEncoder {
	p.s.setIndexBuffer(ib)
	return p
}

// SetViewport sets the viewport transform.
func (p *RenderDrawEncoder) SetViewport(x, y, width, height, minDepth, maxDepth float32) *RenderDrawEncoder {
	p.s.checkOpen()
	p.s.handle.SetViewport(x, y, width, height, minDepth, maxDepth)
	return p
}

// SetScissorRect sets the scissor rectangle.
func (p *RenderDrawEncoder) SetScissorRect(x, y, width, height uint32) *RenderDrawEncoder {
	p.s.checkOpen()
	p.s.handle.SetScissorRect(x, y, width, height)
	return p
}

// SetBlendConstant sets the blend constant color.
func (p *RenderDrawEncoder) SetBlendConstant(color gputypes.Color) *RenderDrawEncoder {
	p.s.checkOpen()
	p.s.handle.SetBlendConstant(color)
	return p
}

// SetStencilReference sets the stencil reference value.
func (p *RenderDrawEncoder) SetStencilReference(reference uint32) *RenderDrawEncoder {
	p.s.checkOpen()
	p.s.handle.SetStencilReference(reference)
	return p
}

// Draw encodes a non-indexed draw.
func (p *RenderDrawEncoder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) *RenderDrawEncoder {
	p.s.checkDraw()
	p.s.handle.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
	return p
}

// DrawIndexed encodes an indexed draw. An index buffer must be bound
// and the index range must lie inside it.
func (p *RenderDrawEncoder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) *RenderDrawEncoder {
	p.s.checkDrawIndexed(indexCount, firstIndex)
	p.s.handle.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
	return p
}

// DrawIndirect encodes a draw whose arguments are read from args at
// execution time. The underlying buffer needs Indirect usage.
func (p *RenderDrawEncoder) DrawIndirect(args *Item[DrawArgs]) *RenderDrawEncoder {
	p.s.checkDraw()
	requireUsage(args.buf.usage, BufferUsageIndirect, "an indirect draw")
	p.s.enc.retain(args.buf)
	p.s.handle.DrawIndirect(args.buf.handle, args.off)
	return p
}

// DrawIndexedIndirect encodes an indexed draw whose arguments are read
// from args at execution time.
func (p *RenderDrawEncoder) DrawIndexedIndirect(args *Item[DrawIndexedArgs]) *RenderDrawEncoder {
	p.s.checkDraw()
	if p.s.index.id == 0 {
		panic("tgpu: indexed draw needs an index buffer")
	}
	requireUsage(args.buf.usage, BufferUsageIndirect, "an indirect draw")
	p.s.enc.retain(args.buf)
	p.s.handle.DrawIndexedIndirect(args.buf.handle, args.off)
	return p
}

// BeginOcclusionQuery opens occlusion query index.
func (p *RenderDrawEncoder) BeginOcclusionQuery(index uint32) *RenderQueryDrawEncoder {
	p.s.beginQuery(index)
	return &RenderQueryDrawEncoder{s: p.s}
}

// ExecuteBundles replays pre-recorded bundles. All pipeline, bind group
// and buffer bindings are invalidated, so recording drops back to a
// RenderPassEncoder.
func (p *RenderDrawEncoder) ExecuteBundles(bundles ...*RenderBundle) *RenderPassEncoder {
	p.s.executeBundles(bundles)
	return &RenderPassEncoder{s: p.s}
}

// End closes the pass and unlocks the encoder.
func (p *RenderDrawEncoder) End() {
	p.s.end()
}

// RenderQueryEncoder is an open render pass inside an occlusion query
// with no pipeline set. The query must be ended before the pass can
// end.
type RenderQueryEncoder struct {
	s *renderPassState
}

// SetPipeline sets the pipeline and enables drawing inside the query.
func (p *RenderQueryEncoder) SetPipeline(pipeline *RenderPipeline) *RenderQueryDrawEncoder {
	p.s.setPipeline(pipeline)
	return &RenderQueryDrawEncoder{s: p.s}
}

// SetBindGroup binds group at index.
func (p *RenderQueryEncoder) SetBindGroup(index uint32, group *BindGroup, dynamicOffsets []uint32) *RenderQueryEncoder {
	p.s.setBindGroup(index, group, dynamicOffsets)
	return p
}

// SetVertexBuffer binds vertex data to a slot.
func (p *RenderQueryEncoder) SetVertexBuffer(slot uint32, vb VertexBufferView) *RenderQueryEncoder {
	p.s.setVertexBuffer(slot, vb)
	return p
}

// SetIndexBuffer binds the index buffer.
func (p *RenderQueryEncoder) SetIndexBuffer(ib IndexBufferView) *RenderQueryEncoder {
	p.s.setIndexBuffer(ib)
	return p
}

// EndOcclusionQuery closes the open query.
func (p *RenderQueryEncoder) EndOcclusionQuery() *RenderPassEncoder {
	p.s.endQuery()
	return &RenderPassEncoder{s: p.s}
}

// RenderQueryDrawEncoder is an open render pass inside an occlusion
// query with a pipeline set.
type RenderQueryDrawEncoder struct {
	s *renderPassState
}

// SetPipeline switches pipelines.
func (p *RenderQueryDrawEncoder) SetPipeline(pipeline *RenderPipeline) *RenderQueryDrawEncoder {
	p.s.setPipeline(pipeline)
	return p
}

// SetBindGroup binds group at index.
func (p *RenderQueryDrawEncoder) SetBindGroup(index uint32, group *BindGroup, dynamicOffsets []uint32) *RenderQueryDrawEncoder {
	p.s.setBindGroup(index, group, dynamicOffsets)
	return p
}

// SetVertexBuffer binds vertex data to a slot.
func (p *RenderQueryDrawEncoder) SetVertexBuffer(slot uint32, vb VertexBufferView) *RenderQueryDrawEncoder {
	p.s.setVertexBuffer(slot, vb)
	return p
}

// SetIndexBuffer binds the index buffer.
func (p *RenderQueryDrawEncoder) SetIndexBuffer(ib IndexBufferView) *RenderQueryDrawEncoder {
	p.s.setIndexBuffer(ib)
	return p
}

// Draw encodes a non-indexed draw inside the query.
func (p *RenderQueryDrawEncoder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) *RenderQueryDrawEncoder {
	p.s.checkDraw()
	p.s.handle.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
	return p
}

// DrawIndexed encodes an indexed draw inside the query.
func (p *RenderQueryDrawEncoder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) *RenderQueryDrawEncoder {
	p.s.checkDrawIndexed(indexCount, firstIndex)
	p.s.handle.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
	return p
}

// DrawIndirect encodes an indirect draw inside the query.
func (p *RenderQueryDrawEncoder) DrawIndirect(args *Item[DrawArgs]) *RenderQueryDrawEncoder {
	p.s.checkDraw()
	requireUsage(args.buf.usage, BufferUsageIndirect, "an indirect draw")
	p.s.enc.retain(args.buf)
	p.s.handle.DrawIndirect(args.buf.handle, args.off)
	return p
}

// EndOcclusionQuery closes the open query and returns to drawable
// recording.
func (p *RenderQueryDrawEncoder) EndOcclusionQuery() *RenderDrawEncoder {
	p.s.endQuery()
	return &RenderDrawEncoder{s: p.s}
}
