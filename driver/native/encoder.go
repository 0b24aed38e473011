package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/tgpu/driver"
)

// encoder implements driver.CommandEncoder over a hal.CommandEncoder.
type encoder struct {
	dev   *device
	enc   hal.CommandEncoder
	label string
}

func (e *encoder) ClearBuffer(buf driver.Buffer, offset, size uint64) {
	e.enc.ClearBuffer(buf.(*buffer).handle, offset, size)
}

func (e *encoder) CopyBufferToBuffer(src driver.Buffer, srcOffset uint64, dst driver.Buffer, dstOffset, size uint64) {
	e.enc.CopyBufferToBuffer(src.(*buffer).handle, dst.(*buffer).handle, []hal.BufferCopy{
		{SrcOffset: srcOffset, DstOffset: dstOffset, Size: size},
	})
}

func copyRegion(layout gputypes.TextureDataLayout, tex *driver.ImageCopyTexture, size gputypes.Extent3D) hal.BufferTextureCopy {
	return hal.BufferTextureCopy{
		BufferLayout: hal.ImageDataLayout{
			Offset:       layout.Offset,
			BytesPerRow:  layout.BytesPerRow,
			RowsPerImage: layout.RowsPerImage,
		},
		TextureBase: hal.ImageCopyTexture{
			Texture:  tex.Texture.(*texture).handle,
			MipLevel: tex.MipLevel,
			Origin:   hal.Origin3D{X: tex.Origin.X, Y: tex.Origin.Y, Z: tex.Origin.Z},
			Aspect:   tex.Aspect,
		},
		Size: hal.Extent3D{
			Width:              size.Width,
			Height:             size.Height,
			DepthOrArrayLayers: size.DepthOrArrayLayers,
		},
	}
}

func (e *encoder) CopyBufferToTexture(src *driver.ImageCopyBuffer, dst *driver.ImageCopyTexture, size gputypes.Extent3D) {
	e.enc.CopyBufferToTexture(src.Buffer.(*buffer).handle, dst.Texture.(*texture).handle,
		[]hal.BufferTextureCopy{copyRegion(src.Layout, dst, size)})
}

func (e *encoder) CopyTextureToBuffer(src *driver.ImageCopyTexture, dst *driver.ImageCopyBuffer, size gputypes.Extent3D) {
	e.enc.CopyTextureToBuffer(src.Texture.(*texture).handle, dst.Buffer.(*buffer).handle,
		[]hal.BufferTextureCopy{copyRegion(dst.Layout, src, size)})
}

func (e *encoder) CopyTextureToTexture(src, dst *driver.ImageCopyTexture, size gputypes.Extent3D) {
	base := func(t *driver.ImageCopyTexture) hal.ImageCopyTexture {
		return hal.ImageCopyTexture{
			Texture:  t.Texture.(*texture).handle,
			MipLevel: t.MipLevel,
			Origin:   hal.Origin3D{X: t.Origin.X, Y: t.Origin.Y, Z: t.Origin.Z},
			Aspect:   t.Aspect,
		}
	}
	e.enc.CopyTextureToTexture(src.Texture.(*texture).handle, dst.Texture.(*texture).handle,
		[]hal.TextureCopy{{
			SrcBase: base(src),
			DstBase: base(dst),
			Size: hal.Extent3D{
				Width:              size.Width,
				Height:             size.Height,
				DepthOrArrayLayers: size.DepthOrArrayLayers,
			},
		}})
}

// WriteTimestamp is unreachable: the backend creates no query sets.
func (e *encoder) WriteTimestamp(driver.QuerySet, uint32) {}

// ResolveQuerySet is unreachable: the backend creates no query sets.
func (e *encoder) ResolveQuerySet(driver.QuerySet, uint32, uint32, driver.Buffer, uint64) {}

func (e *encoder) BeginComputePass(desc *driver.ComputePassDescriptor) driver.ComputePass {
	pass := e.enc.BeginComputePass(&hal.ComputePassDescriptor{Label: desc.Label})
	return &computePass{pass: pass}
}

func (e *encoder) BeginRenderPass(desc *driver.RenderPassDescriptor) driver.RenderPass {
	halDesc := &hal.RenderPassDescriptor{Label: desc.Label}
	for _, a := range desc.ColorAttachments {
		ca := hal.RenderPassColorAttachment{
			View:       a.View.(hal.TextureView),
			LoadOp:     a.LoadOp,
			StoreOp:    a.StoreOp,
			ClearValue: a.ClearValue,
		}
		if a.ResolveTarget != nil {
			ca.ResolveTarget = a.ResolveTarget.(hal.TextureView)
		}
		halDesc.ColorAttachments = append(halDesc.ColorAttachments, ca)
	}
	if ds := desc.DepthStencilAttachment; ds != nil {
		halDesc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:              ds.View.(hal.TextureView),
			DepthLoadOp:       ds.DepthLoadOp,
			DepthStoreOp:      ds.DepthStoreOp,
			DepthClearValue:   ds.DepthClearValue,
			StencilLoadOp:     ds.StencilLoadOp,
			StencilStoreOp:    ds.StencilStoreOp,
			StencilClearValue: ds.StencilClearValue,
		}
	}
	rp := e.enc.BeginRenderPass(halDesc)
	return &renderPass{rp: rp}
}

func (e *encoder) Finish() (driver.CommandBuffer, error) {
	cmd, err := e.enc.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("native: end encoding: %w", err)
	}
	return &commandBuffer{cmd: cmd}, nil
}

// computePass implements driver.ComputePass.
type computePass struct {
	pass hal.ComputePassEncoder
}

func (p *computePass) SetPipeline(pl driver.ComputePipeline) {
	p.pass.SetPipeline(pl.(hal.ComputePipeline))
}

func (p *computePass) SetBindGroup(index uint32, group driver.BindGroup, dynamicOffsets []uint32) {
	p.pass.SetBindGroup(index, group.(hal.BindGroup), dynamicOffsets)
}

func (p *computePass) Dispatch(x, y, z uint32) {
	p.pass.Dispatch(x, y, z)
}

func (p *computePass) DispatchIndirect(buf driver.Buffer, offset uint64) {
	p.pass.DispatchIndirect(buf.(*buffer).handle, offset)
}

func (p *computePass) End() {
	p.pass.End()
}

// renderPass implements driver.RenderPass.
type renderPass struct {
	rp hal.RenderPassEncoder
}

func (p *renderPass) SetPipeline(pl driver.RenderPipeline) {
	p.rp.SetPipeline(pl.(hal.RenderPipeline))
}

func (p *renderPass) SetBindGroup(index uint32, group driver.BindGroup, dynamicOffsets []uint32) {
	p.rp.SetBindGroup(index, group.(hal.BindGroup), dynamicOffsets)
}

func (p *renderPass) SetVertexBuffer(slot uint32, buf driver.Buffer, offset, _ uint64) {
	p.rp.SetVertexBuffer(slot, buf.(*buffer).handle, offset)
}

func (p *renderPass) SetIndexBuffer(buf driver.Buffer, f gputypes.IndexFormat, offset, _ uint64) {
	p.rp.SetIndexBuffer(buf.(*buffer).handle, f, offset)
}

func (p *renderPass) SetViewport(x, y, width, height, minDepth, maxDepth float32) {
	p.rp.SetViewport(x, y, width, height, minDepth, maxDepth)
}

func (p *renderPass) SetScissorRect(x, y, width, height uint32) {
	p.rp.SetScissorRect(x, y, width, height)
}

func (p *renderPass) SetBlendConstant(color gputypes.Color) {
	p.rp.SetBlendConstant(&color)
}

func (p *renderPass) SetStencilReference(reference uint32) {
	p.rp.SetStencilReference(reference)
}

func (p *renderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.rp.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (p *renderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.rp.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

func (p *renderPass) DrawIndirect(buf driver.Buffer, offset uint64) {
	p.rp.DrawIndirect(buf.(*buffer).handle, offset)
}

func (p *renderPass) DrawIndexedIndirect(buf driver.Buffer, offset uint64) {
	p.rp.DrawIndexedIndirect(buf.(*buffer).handle, offset)
}

// BeginOcclusionQuery is unreachable: the backend creates no query sets.
func (p *renderPass) BeginOcclusionQuery(uint32) {}

// EndOcclusionQuery is unreachable: the backend creates no query sets.
func (p *renderPass) EndOcclusionQuery() {}

func (p *renderPass) ExecuteBundles(bundles []driver.RenderBundle) {
	for _, b := range bundles {
		p.rp.ExecuteBundle(b.(hal.RenderBundle))
	}
}

func (p *renderPass) End() {
	p.rp.End()
}

// bundleEncoder implements driver.RenderBundleEncoder over the HAL's
// bundle recording.
type bundleEncoder struct {
	enc hal.RenderBundleEncoder
}

func (b *bundleEncoder) SetPipeline(pl driver.RenderPipeline) {
	b.enc.SetPipeline(pl.(hal.RenderPipeline))
}

func (b *bundleEncoder) SetBindGroup(index uint32, group driver.BindGroup, dynamicOffsets []uint32) {
	b.enc.SetBindGroup(index, group.(hal.BindGroup), dynamicOffsets)
}

func (b *bundleEncoder) SetVertexBuffer(slot uint32, buf driver.Buffer, offset, _ uint64) {
	b.enc.SetVertexBuffer(slot, buf.(*buffer).handle, offset)
}

func (b *bundleEncoder) SetIndexBuffer(buf driver.Buffer, f gputypes.IndexFormat, offset, _ uint64) {
	b.enc.SetIndexBuffer(buf.(*buffer).handle, f, offset)
}

func (b *bundleEncoder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	b.enc.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (b *bundleEncoder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	b.enc.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

// DrawIndirect is not available in HAL bundles; the draw is dropped.
func (b *bundleEncoder) DrawIndirect(driver.Buffer, uint64) {}

// DrawIndexedIndirect is not available in HAL bundles; the draw is dropped.
func (b *bundleEncoder) DrawIndexedIndirect(driver.Buffer, uint64) {}

func (b *bundleEncoder) Finish() (driver.RenderBundle, error) {
	return b.enc.Finish(), nil
}
