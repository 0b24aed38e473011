package drivertest

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/tgpu/driver"
)

// Encoder records commands into the journal at encode time and collects
// deferred byte-moving actions that run on submit.
type Encoder struct {
	dev     *Device
	ID      uint64
	actions []func()
}

// ClearBuffer zeroes the range on submit.
func (e *Encoder) ClearBuffer(buf driver.Buffer, offset, size uint64) {
	b := buf.(*Buffer)
	e.dev.log("enc%d.clearBuffer id=%d offset=%d size=%d", e.ID, b.ID, offset, size)
	e.actions = append(e.actions, func() {
		clear(b.Data[offset : offset+size])
	})
}

// CopyBufferToBuffer copies bytes on submit.
func (e *Encoder) CopyBufferToBuffer(src driver.Buffer, srcOffset uint64, dst driver.Buffer, dstOffset, size uint64) {
	s, d := src.(*Buffer), dst.(*Buffer)
	e.dev.log("enc%d.copyB2B src=%d srcOff=%d dst=%d dstOff=%d size=%d", e.ID, s.ID, srcOffset, d.ID, dstOffset, size)
	e.actions = append(e.actions, func() {
		copy(d.Data[dstOffset:dstOffset+size], s.Data[srcOffset:srcOffset+size])
	})
}

// CopyBufferToTexture records the copy.
func (e *Encoder) CopyBufferToTexture(src *driver.ImageCopyBuffer, dst *driver.ImageCopyTexture, size gputypes.Extent3D) {
	b, t := src.Buffer.(*Buffer), dst.Texture.(*Texture)
	e.dev.log("enc%d.copyB2T src=%d bytesPerRow=%d dst=%d mip=%d size=%dx%dx%d",
		e.ID, b.ID, src.Layout.BytesPerRow, t.ID, dst.MipLevel, size.Width, size.Height, size.DepthOrArrayLayers)
}

// CopyTextureToBuffer records the copy.
func (e *Encoder) CopyTextureToBuffer(src *driver.ImageCopyTexture, dst *driver.ImageCopyBuffer, size gputypes.Extent3D) {
	t, b := src.Texture.(*Texture), dst.Buffer.(*Buffer)
	e.dev.log("enc%d.copyT2B src=%d mip=%d dst=%d bytesPerRow=%d size=%dx%dx%d",
		e.ID, t.ID, src.MipLevel, b.ID, dst.Layout.BytesPerRow, size.Width, size.Height, size.DepthOrArrayLayers)
}

// CopyTextureToTexture records the copy.
func (e *Encoder) CopyTextureToTexture(src, dst *driver.ImageCopyTexture, size gputypes.Extent3D) {
	s, d := src.Texture.(*Texture), dst.Texture.(*Texture)
	e.dev.log("enc%d.copyT2T src=%d dst=%d size=%dx%dx%d", e.ID, s.ID, d.ID, size.Width, size.Height, size.DepthOrArrayLayers)
}

// WriteTimestamp records the write.
func (e *Encoder) WriteTimestamp(set driver.QuerySet, index uint32) {
	q := set.(*QuerySet)
	e.dev.log("enc%d.writeTimestamp set=%d index=%d", e.ID, q.ID, index)
}

// ResolveQuerySet zeroes the destination range on submit, standing in
// for real query results.
func (e *Encoder) ResolveQuerySet(set driver.QuerySet, firstQuery, queryCount uint32, dst driver.Buffer, dstOffset uint64) {
	q, b := set.(*QuerySet), dst.(*Buffer)
	e.dev.log("enc%d.resolveQuerySet set=%d first=%d count=%d dst=%d dstOff=%d",
		e.ID, q.ID, firstQuery, queryCount, b.ID, dstOffset)
	e.actions = append(e.actions, func() {
		clear(b.Data[dstOffset : dstOffset+uint64(queryCount)*8])
	})
}

// BeginComputePass returns a recording compute pass.
func (e *Encoder) BeginComputePass(desc *driver.ComputePassDescriptor) driver.ComputePass {
	e.dev.log("enc%d.beginComputePass", e.ID)
	return &ComputePass{enc: e}
}

// BeginRenderPass returns a recording render pass.
func (e *Encoder) BeginRenderPass(desc *driver.RenderPassDescriptor) driver.RenderPass {
	e.dev.log("enc%d.beginRenderPass colors=%d", e.ID, len(desc.ColorAttachments))
	return &RenderPass{enc: e}
}

// Finish seals the encoder into a command buffer.
func (e *Encoder) Finish() (driver.CommandBuffer, error) {
	e.dev.log("enc%d.finish", e.ID)
	return &CommandBuffer{ID: e.ID, actions: e.actions}, nil
}

func idOf(v any) uint64 {
	switch h := v.(type) {
	case handle:
		return h.ID
	case *Buffer:
		return h.ID
	case *Texture:
		return h.ID
	case *QuerySet:
		return h.ID
	case *Bundle:
		return h.ID
	default:
		return 0
	}
}

// ComputePass records compute commands.
type ComputePass struct {
	enc *Encoder
}

// SetPipeline records the bind.
func (p *ComputePass) SetPipeline(pl driver.ComputePipeline) {
	p.enc.dev.log("cpass.setPipeline id=%d", idOf(pl))
}

// SetBindGroup records the bind.
func (p *ComputePass) SetBindGroup(index uint32, group driver.BindGroup, dynamicOffsets []uint32) {
	p.enc.dev.log("cpass.setBindGroup index=%d id=%d", index, idOf(group))
}

// Dispatch records the dispatch.
func (p *ComputePass) Dispatch(x, y, z uint32) {
	p.enc.dev.log("cpass.dispatch %dx%dx%d", x, y, z)
}

// DispatchIndirect records the dispatch.
func (p *ComputePass) DispatchIndirect(buf driver.Buffer, offset uint64) {
	p.enc.dev.log("cpass.dispatchIndirect id=%d offset=%d", idOf(buf), offset)
}

// End records the end of the pass.
func (p *ComputePass) End() {
	p.enc.dev.log("cpass.end")
}

// RenderPass records render commands.
type RenderPass struct {
	enc *Encoder
}

// SetPipeline records the bind.
func (p *RenderPass) SetPipeline(pl driver.RenderPipeline) {
	p.enc.dev.log("rpass.setPipeline id=%d", idOf(pl))
}

// SetBindGroup records the bind.
func (p *RenderPass) SetBindGroup(index uint32, group driver.BindGroup, dynamicOffsets []uint32) {
	p.enc.dev.log("rpass.setBindGroup index=%d id=%d", index, idOf(group))
}

// SetVertexBuffer records the bind.
func (p *RenderPass) SetVertexBuffer(slot uint32, buf driver.Buffer, offset, size uint64) {
	p.enc.dev.log("rpass.setVertexBuffer slot=%d id=%d offset=%d size=%d", slot, idOf(buf), offset, size)
}

// SetIndexBuffer records the bind.
func (p *RenderPass) SetIndexBuffer(buf driver.Buffer, fmt gputypes.IndexFormat, offset, size uint64) {
	p.enc.dev.log("rpass.setIndexBuffer id=%d offset=%d size=%d", idOf(buf), offset, size)
}

// SetViewport records the state change.
func (p *RenderPass) SetViewport(x, y, width, height, minDepth, maxDepth float32) {
	p.enc.dev.log("rpass.setViewport %gx%g+%g+%g depth=[%g,%g]", width, height, x, y, minDepth, maxDepth)
}

// SetScissorRect records the state change.
func (p *RenderPass) SetScissorRect(x, y, width, height uint32) {
	p.enc.dev.log("rpass.setScissorRect %dx%d+%d+%d", width, height, x, y)
}

// SetBlendConstant records the state change.
func (p *RenderPass) SetBlendConstant(color gputypes.Color) {
	p.enc.dev.log("rpass.setBlendConstant r=%g g=%g b=%g a=%g", color.R, color.G, color.B, color.A)
}

// SetStencilReference records the state change.
func (p *RenderPass) SetStencilReference(reference uint32) {
	p.enc.dev.log("rpass.setStencilReference %d", reference)
}

// Draw records the draw.
func (p *RenderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.enc.dev.log("rpass.draw verts=%d insts=%d", vertexCount, instanceCount)
}

// DrawIndexed records the draw.
func (p *RenderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.enc.dev.log("rpass.drawIndexed idx=%d insts=%d", indexCount, instanceCount)
}

// DrawIndirect records the draw.
func (p *RenderPass) DrawIndirect(buf driver.Buffer, offset uint64) {
	p.enc.dev.log("rpass.drawIndirect id=%d offset=%d", idOf(buf), offset)
}

// DrawIndexedIndirect records the draw.
func (p *RenderPass) DrawIndexedIndirect(buf driver.Buffer, offset uint64) {
	p.enc.dev.log("rpass.drawIndexedIndirect id=%d offset=%d", idOf(buf), offset)
}

// BeginOcclusionQuery records the begin.
func (p *RenderPass) BeginOcclusionQuery(queryIndex uint32) {
	p.enc.dev.log("rpass.beginOcclusionQuery index=%d", queryIndex)
}

// EndOcclusionQuery records the end.
func (p *RenderPass) EndOcclusionQuery() {
	p.enc.dev.log("rpass.endOcclusionQuery")
}

// ExecuteBundles records the execution.
func (p *RenderPass) ExecuteBundles(bundles []driver.RenderBundle) {
	p.enc.dev.log("rpass.executeBundles n=%d", len(bundles))
}

// End records the end of the pass.
func (p *RenderPass) End() {
	p.enc.dev.log("rpass.end")
}

// BundleEncoder records bundle commands.
type BundleEncoder struct {
	dev *Device
	ID  uint64
}

// SetPipeline records the bind.
func (b *BundleEncoder) SetPipeline(pl driver.RenderPipeline) {
	b.dev.log("bundle%d.setPipeline id=%d", b.ID, idOf(pl))
}

// SetBindGroup records the bind.
func (b *BundleEncoder) SetBindGroup(index uint32, group driver.BindGroup, dynamicOffsets []uint32) {
	b.dev.log("bundle%d.setBindGroup index=%d id=%d", b.ID, index, idOf(group))
}

// SetVertexBuffer records the bind.
func (b *BundleEncoder) SetVertexBuffer(slot uint32, buf driver.Buffer, offset, size uint64) {
	b.dev.log("bundle%d.setVertexBuffer slot=%d id=%d", b.ID, slot, idOf(buf))
}

// SetIndexBuffer records the bind.
func (b *BundleEncoder) SetIndexBuffer(buf driver.Buffer, fmt gputypes.IndexFormat, offset, size uint64) {
	b.dev.log("bundle%d.setIndexBuffer id=%d", b.ID, idOf(buf))
}

// Draw records the draw.
func (b *BundleEncoder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	b.dev.log("bundle%d.draw verts=%d insts=%d", b.ID, vertexCount, instanceCount)
}

// DrawIndexed records the draw.
func (b *BundleEncoder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	b.dev.log("bundle%d.drawIndexed idx=%d insts=%d", b.ID, indexCount, instanceCount)
}

// DrawIndirect records the draw.
func (b *BundleEncoder) DrawIndirect(buf driver.Buffer, offset uint64) {
	b.dev.log("bundle%d.drawIndirect id=%d offset=%d", b.ID, idOf(buf), offset)
}

// DrawIndexedIndirect records the draw.
func (b *BundleEncoder) DrawIndexedIndirect(buf driver.Buffer, offset uint64) {
	b.dev.log("bundle%d.drawIndexedIndirect id=%d offset=%d", b.ID, idOf(buf), offset)
}

// Finish seals the bundle.
func (b *BundleEncoder) Finish() (driver.RenderBundle, error) {
	b.dev.log("bundle%d.finish", b.ID)
	return &Bundle{ID: b.ID}, nil
}

// Bundle is a finished recording bundle.
type Bundle struct {
	ID uint64
}
