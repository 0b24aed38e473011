//go:build cgo

package webgpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/tgpu/driver"
)

// encoder implements driver.CommandEncoder. Every command maps one to
// one onto the binding; the typed layer has already validated it.
type encoder struct {
	enc *wgpu.CommandEncoder
}

func (e *encoder) ClearBuffer(buf driver.Buffer, offset, size uint64) {
	e.enc.ClearBuffer(buf.(*buffer).buf, offset, size)
}

func (e *encoder) CopyBufferToBuffer(src driver.Buffer, srcOffset uint64, dst driver.Buffer, dstOffset, size uint64) {
	e.enc.CopyBufferToBuffer(src.(*buffer).buf, srcOffset, dst.(*buffer).buf, dstOffset, size)
}

func copyBuffer(c *driver.ImageCopyBuffer) *wgpu.ImageCopyBuffer {
	return &wgpu.ImageCopyBuffer{
		Buffer: c.Buffer.(*buffer).buf,
		Layout: wgpu.TextureDataLayout{
			Offset:       c.Layout.Offset,
			BytesPerRow:  c.Layout.BytesPerRow,
			RowsPerImage: c.Layout.RowsPerImage,
		},
	}
}

func copyTexture(c *driver.ImageCopyTexture) *wgpu.ImageCopyTexture {
	return &wgpu.ImageCopyTexture{
		Texture:  c.Texture.(*texture).tex,
		MipLevel: c.MipLevel,
		Origin:   originToWGPU(c.Origin),
		Aspect:   aspectToWGPU(c.Aspect),
	}
}

func (e *encoder) CopyBufferToTexture(src *driver.ImageCopyBuffer, dst *driver.ImageCopyTexture, size gputypes.Extent3D) {
	ext := extentToWGPU(size)
	e.enc.CopyBufferToTexture(copyBuffer(src), copyTexture(dst), &ext)
}

func (e *encoder) CopyTextureToBuffer(src *driver.ImageCopyTexture, dst *driver.ImageCopyBuffer, size gputypes.Extent3D) {
	ext := extentToWGPU(size)
	e.enc.CopyTextureToBuffer(copyTexture(src), copyBuffer(dst), &ext)
}

func (e *encoder) CopyTextureToTexture(src, dst *driver.ImageCopyTexture, size gputypes.Extent3D) {
	ext := extentToWGPU(size)
	e.enc.CopyTextureToTexture(copyTexture(src), copyTexture(dst), &ext)
}

func (e *encoder) WriteTimestamp(set driver.QuerySet, index uint32) {
	e.enc.WriteTimestamp(set.(*querySet).qs, index)
}

func (e *encoder) ResolveQuerySet(set driver.QuerySet, firstQuery, queryCount uint32, dst driver.Buffer, dstOffset uint64) {
	e.enc.ResolveQuerySet(set.(*querySet).qs, firstQuery, queryCount, dst.(*buffer).buf, dstOffset)
}

func (e *encoder) BeginComputePass(desc *driver.ComputePassDescriptor) driver.ComputePass {
	return &computePass{pass: e.enc.BeginComputePass(&wgpu.ComputePassDescriptor{Label: desc.Label})}
}

func (e *encoder) BeginRenderPass(desc *driver.RenderPassDescriptor) driver.RenderPass {
	wdesc := &wgpu.RenderPassDescriptor{Label: desc.Label}
	for _, ca := range desc.ColorAttachments {
		att := wgpu.RenderPassColorAttachment{
			LoadOp:     loadOpToWGPU(ca.LoadOp),
			StoreOp:    storeOpToWGPU(ca.StoreOp),
			ClearValue: colorToWGPU(ca.ClearValue),
		}
		if ca.View != nil {
			att.View = ca.View.(*wgpu.TextureView)
		}
		if ca.ResolveTarget != nil {
			att.ResolveTarget = ca.ResolveTarget.(*wgpu.TextureView)
		}
		wdesc.ColorAttachments = append(wdesc.ColorAttachments, att)
	}
	if ds := desc.DepthStencilAttachment; ds != nil {
		wdesc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:              ds.View.(*wgpu.TextureView),
			DepthLoadOp:       loadOpToWGPU(ds.DepthLoadOp),
			DepthStoreOp:      storeOpToWGPU(ds.DepthStoreOp),
			DepthClearValue:   ds.DepthClearValue,
			DepthReadOnly:     ds.DepthReadOnly,
			StencilLoadOp:     loadOpToWGPU(ds.StencilLoadOp),
			StencilStoreOp:    storeOpToWGPU(ds.StencilStoreOp),
			StencilClearValue: ds.StencilClearValue,
			StencilReadOnly:   ds.StencilReadOnly,
		}
	}
	// Occlusion query sets are never created on this backend, so the
	// descriptor's occlusion field is always nil here.
	return &renderPass{pass: e.enc.BeginRenderPass(wdesc)}
}

func (e *encoder) Finish() (driver.CommandBuffer, error) {
	cmd, err := e.enc.Finish(nil)
	if err != nil {
		return nil, fmt.Errorf("webgpu: finish encoder: %w", err)
	}
	e.enc.Release()
	return cmd, nil
}

// computePass implements driver.ComputePass.
type computePass struct {
	pass *wgpu.ComputePassEncoder
}

func (p *computePass) SetPipeline(pl driver.ComputePipeline) {
	p.pass.SetPipeline(pl.(*wgpu.ComputePipeline))
}

func (p *computePass) SetBindGroup(index uint32, group driver.BindGroup, dynamicOffsets []uint32) {
	p.pass.SetBindGroup(index, group.(*wgpu.BindGroup), dynamicOffsets)
}

func (p *computePass) Dispatch(x, y, z uint32) {
	p.pass.DispatchWorkgroups(x, y, z)
}

func (p *computePass) DispatchIndirect(buf driver.Buffer, offset uint64) {
	p.pass.DispatchWorkgroupsIndirect(buf.(*buffer).buf, offset)
}

func (p *computePass) End() {
	p.pass.End()
	p.pass.Release()
}

// renderPass implements driver.RenderPass.
type renderPass struct {
	pass *wgpu.RenderPassEncoder
}

func (p *renderPass) SetPipeline(pl driver.RenderPipeline) {
	p.pass.SetPipeline(pl.(*wgpu.RenderPipeline))
}

func (p *renderPass) SetBindGroup(index uint32, group driver.BindGroup, dynamicOffsets []uint32) {
	p.pass.SetBindGroup(index, group.(*wgpu.BindGroup), dynamicOffsets)
}

func (p *renderPass) SetVertexBuffer(slot uint32, buf driver.Buffer, offset, size uint64) {
	p.pass.SetVertexBuffer(slot, buf.(*buffer).buf, offset, size)
}

func (p *renderPass) SetIndexBuffer(buf driver.Buffer, fmt gputypes.IndexFormat, offset, size uint64) {
	p.pass.SetIndexBuffer(buf.(*buffer).buf, indexFormatToWGPU(fmt), offset, size)
}

func (p *renderPass) SetViewport(x, y, width, height, minDepth, maxDepth float32) {
	p.pass.SetViewport(x, y, width, height, minDepth, maxDepth)
}

func (p *renderPass) SetScissorRect(x, y, width, height uint32) {
	p.pass.SetScissorRect(x, y, width, height)
}

func (p *renderPass) SetBlendConstant(color gputypes.Color) {
	c := colorToWGPU(color)
	p.pass.SetBlendConstant(&c)
}

func (p *renderPass) SetStencilReference(reference uint32) {
	p.pass.SetStencilReference(reference)
}

func (p *renderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.pass.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (p *renderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.pass.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

func (p *renderPass) DrawIndirect(buf driver.Buffer, offset uint64) {
	p.pass.DrawIndirect(buf.(*buffer).buf, offset)
}

func (p *renderPass) DrawIndexedIndirect(buf driver.Buffer, offset uint64) {
	p.pass.DrawIndexedIndirect(buf.(*buffer).buf, offset)
}

func (p *renderPass) BeginOcclusionQuery(queryIndex uint32) {
	p.pass.BeginOcclusionQuery(queryIndex)
}

func (p *renderPass) EndOcclusionQuery() {
	p.pass.EndOcclusionQuery()
}

func (p *renderPass) ExecuteBundles(bundles []driver.RenderBundle) {
	wb := make([]*wgpu.RenderBundle, len(bundles))
	for i, b := range bundles {
		wb[i] = b.(*wgpu.RenderBundle)
	}
	p.pass.ExecuteBundles(wb...)
}

func (p *renderPass) End() {
	p.pass.End()
	p.pass.Release()
}

// bundleEncoder implements driver.RenderBundleEncoder.
type bundleEncoder struct {
	enc *wgpu.RenderBundleEncoder
}

func (b *bundleEncoder) SetPipeline(pl driver.RenderPipeline) {
	b.enc.SetPipeline(pl.(*wgpu.RenderPipeline))
}

func (b *bundleEncoder) SetBindGroup(index uint32, group driver.BindGroup, dynamicOffsets []uint32) {
	b.enc.SetBindGroup(index, group.(*wgpu.BindGroup), dynamicOffsets)
}

func (b *bundleEncoder) SetVertexBuffer(slot uint32, buf driver.Buffer, offset, size uint64) {
	b.enc.SetVertexBuffer(slot, buf.(*buffer).buf, offset, size)
}

func (b *bundleEncoder) SetIndexBuffer(buf driver.Buffer, fmt gputypes.IndexFormat, offset, size uint64) {
	b.enc.SetIndexBuffer(buf.(*buffer).buf, indexFormatToWGPU(fmt), offset, size)
}

func (b *bundleEncoder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	b.enc.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (b *bundleEncoder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	b.enc.DrawIndexed(indexCount, instanceCount, firstIndex, uint32(baseVertex), firstInstance)
}

func (b *bundleEncoder) DrawIndirect(buf driver.Buffer, offset uint64) {
	b.enc.DrawIndirect(buf.(*buffer).buf, offset)
}

func (b *bundleEncoder) DrawIndexedIndirect(buf driver.Buffer, offset uint64) {
	b.enc.DrawIndexedIndirect(buf.(*buffer).buf, offset)
}

func (b *bundleEncoder) Finish() (driver.RenderBundle, error) {
	return b.enc.Finish(nil), nil
}
