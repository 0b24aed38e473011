package tgpu

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/tgpu/format"
)

const testRenderWGSL = `
@vertex
fn vs_main(@location(0) pos: vec2<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(pos, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 1.0, 1.0, 1.0);
}
`

type testVertex struct {
	X, Y float32
}

// newColorTarget creates a renderable texture and a full view of it.
func newColorTarget(t *testing.T, d *Device, f format.Format) *TextureView {
	t.Helper()
	tex, err := d.CreateTexture(&TextureDescriptor{
		Label:  "target",
		Width:  64,
		Height: 64,
		Format: f,
		Usage:  TextureUsageRenderAttachment,
	})
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	view, err := tex.CreateView(&TextureViewDescriptor{})
	if err != nil {
		t.Fatalf("CreateView: %v", err)
	}
	return view
}

// newRenderFixture builds a pipeline drawing testVertex data into one
// color target of the given format, with an empty pipeline layout.
func newRenderFixture(t *testing.T, d *Device, f format.Format) *RenderPipeline {
	t.Helper()
	layout, err := d.CreatePipelineLayout("empty", nil)
	if err != nil {
		t.Fatalf("CreatePipelineLayout: %v", err)
	}
	mod, err := d.CreateShaderModule("shaders", testRenderWGSL)
	if err != nil {
		t.Fatalf("CreateShaderModule: %v", err)
	}
	pipeline, err := d.CreateRenderPipeline(&RenderPipelineDescriptor{
		Label:  "draw",
		Layout: layout,
		Vertex: VertexState{
			Module:     mod,
			EntryPoint: "vs_main",
			Buffers: []VertexBufferLayout{{
				ArrayStride: 8,
				Attributes: []gputypes.VertexAttribute{{
					ShaderLocation: 0,
					Format:         gputypes.VertexFormatFloat32x2,
				}},
			}},
		},
		Fragment: &FragmentState{
			Module:     mod,
			EntryPoint: "fs_main",
			Targets:    []ColorTarget{{Format: f}},
		},
		Topology: gputypes.PrimitiveTopologyTriangleList,
	})
	if err != nil {
		t.Fatalf("CreateRenderPipeline: %v", err)
	}
	return pipeline
}

func testVertices(t *testing.T, d *Device, n int) *View[testVertex] {
	t.Helper()
	verts := make([]testVertex, n)
	v, err := CreateBufferInit(d, "verts", verts, BufferUsageVertex)
	if err != nil {
		t.Fatalf("CreateBufferInit: %v", err)
	}
	return v
}

func TestRenderPassDraw(t *testing.T) {
	d, rec := newTestDevice(t)
	pipeline := newRenderFixture(t, d, format.RGBA8Unorm)
	target := newColorTarget(t, d, format.RGBA8Unorm)
	verts := testVertices(t, d, 3)

	e, _ := d.CreateCommandEncoder("frame")
	e.BeginRenderPass(&RenderPassDescriptor{
		Label:            "main",
		ColorAttachments: []ColorAttachment{{View: target, LoadOp: gputypes.LoadOpClear, StoreOp: gputypes.StoreOpStore}},
	}).
		SetPipeline(pipeline).
		SetVertexBuffer(0, VertexData(verts)).
		Draw(3, 1, 0, 0).
		End()
	if _, err := e.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	ops := rec.Ops()
	for _, want := range []string{
		"beginRenderPass colors=1",
		"rpass.setPipeline",
		"rpass.setVertexBuffer slot=0",
		"rpass.draw verts=3 insts=1",
		"rpass.end",
	} {
		if !hasOp(ops, want) {
			t.Errorf("journal missing %q, got %q", want, ops)
		}
	}
}

func TestRenderPassTargetMismatchPanics(t *testing.T) {
	d, _ := newTestDevice(t)
	pipeline := newRenderFixture(t, d, format.BGRA8Unorm)
	target := newColorTarget(t, d, format.RGBA8Unorm)

	e, _ := d.CreateCommandEncoder("frame")
	p := e.BeginRenderPass(&RenderPassDescriptor{
		ColorAttachments: []ColorAttachment{{View: target}},
	})
	expectPanic(t, "do not match the pass attachments", func() {
		p.SetPipeline(pipeline)
	})
}

func TestRenderPassAttachmentValidation(t *testing.T) {
	d, _ := newTestDevice(t)
	e, _ := d.CreateCommandEncoder("frame")

	expectPanic(t, "at least 1 color attachment", func() {
		e.BeginRenderPass(&RenderPassDescriptor{})
	})

	// BC formats are sampled-only.
	tex, err := d.CreateTexture(&TextureDescriptor{
		Label:  "compressed",
		Width:  64,
		Height: 64,
		Format: format.BC1RGBAUnorm,
		Usage:  TextureUsageTextureBinding,
	})
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	view, err := tex.CreateView(&TextureViewDescriptor{})
	if err != nil {
		t.Fatalf("CreateView: %v", err)
	}
	expectPanic(t, "cannot be used as a color attachment", func() {
		e.BeginRenderPass(&RenderPassDescriptor{
			ColorAttachments: []ColorAttachment{{View: view}},
		})
	})
}

func TestRenderPassAttachmentSizeMismatchPanics(t *testing.T) {
	d, _ := newTestDevice(t)
	big := newColorTarget(t, d, format.RGBA8Unorm)
	small, err := d.CreateTexture(&TextureDescriptor{
		Label:  "small",
		Width:  32,
		Height: 32,
		Format: format.RGBA8Unorm,
		Usage:  TextureUsageRenderAttachment,
	})
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	smallView, _ := small.CreateView(&TextureViewDescriptor{})

	e, _ := d.CreateCommandEncoder("frame")
	expectPanic(t, "other attachments are", func() {
		e.BeginRenderPass(&RenderPassDescriptor{
			ColorAttachments: []ColorAttachment{{View: big}, {View: smallView}},
		})
	})
}

func TestRenderPassVertexElision(t *testing.T) {
	d, rec := newTestDevice(t)
	pipeline := newRenderFixture(t, d, format.RGBA8Unorm)
	target := newColorTarget(t, d, format.RGBA8Unorm)
	verts := testVertices(t, d, 6)

	e, _ := d.CreateCommandEncoder("frame")
	p := e.BeginRenderPass(&RenderPassDescriptor{
		ColorAttachments: []ColorAttachment{{View: target}},
	}).SetPipeline(pipeline)
	p.SetVertexBuffer(0, VertexData(verts)).Draw(3, 1, 0, 0)
	p.SetVertexBuffer(0, VertexData(verts)).Draw(3, 1, 3, 0)
	p.SetVertexBuffer(0, VertexData(verts.Slice(3, 6))).Draw(3, 1, 0, 0)
	p.End()

	if got := countOps(rec.Ops(), "rpass.setVertexBuffer"); got != 2 {
		t.Errorf("setVertexBuffer emitted %d times, want 2", got)
	}
}

func TestDrawWithoutVertexBufferPanics(t *testing.T) {
	d, _ := newTestDevice(t)
	pipeline := newRenderFixture(t, d, format.RGBA8Unorm)
	target := newColorTarget(t, d, format.RGBA8Unorm)

	e, _ := d.CreateCommandEncoder("frame")
	p := e.BeginRenderPass(&RenderPassDescriptor{
		ColorAttachments: []ColorAttachment{{View: target}},
	}).SetPipeline(pipeline)
	expectPanic(t, "draw needs a vertex buffer in slot 0", func() {
		p.Draw(3, 1, 0, 0)
	})
}

func TestDrawStrideMismatchPanics(t *testing.T) {
	d, _ := newTestDevice(t)
	pipeline := newRenderFixture(t, d, format.RGBA8Unorm)
	target := newColorTarget(t, d, format.RGBA8Unorm)
	wrong, err := CreateBufferInit(d, "wrong", []float32{0, 0, 0}, BufferUsageVertex)
	if err != nil {
		t.Fatalf("CreateBufferInit: %v", err)
	}

	e, _ := d.CreateCommandEncoder("frame")
	p := e.BeginRenderPass(&RenderPassDescriptor{
		ColorAttachments: []ColorAttachment{{View: target}},
	}).SetPipeline(pipeline).SetVertexBuffer(0, VertexData(wrong))
	expectPanic(t, "pipeline expects 8", func() {
		p.Draw(3, 1, 0, 0)
	})
}

func TestDrawIndexed(t *testing.T) {
	d, rec := newTestDevice(t)
	pipeline := newRenderFixture(t, d, format.RGBA8Unorm)
	target := newColorTarget(t, d, format.RGBA8Unorm)
	verts := testVertices(t, d, 4)
	indices, err := CreateBufferInit(d, "indices", []uint16{0, 1, 2, 2, 1, 3}, BufferUsageIndex)
	if err != nil {
		t.Fatalf("CreateBufferInit: %v", err)
	}

	e, _ := d.CreateCommandEncoder("frame")
	p := e.BeginRenderPass(&RenderPassDescriptor{
		ColorAttachments: []ColorAttachment{{View: target}},
	}).
		SetPipeline(pipeline).
		SetVertexBuffer(0, VertexData(verts)).
		SetIndexBuffer(IndexDataUint16(indices)).
		DrawIndexed(6, 1, 0, 0, 0)

	expectPanic(t, "outside the index buffer's 6 indices", func() {
		p.DrawIndexed(6, 1, 1, 0, 0)
	})
	p.End()

	if !hasOp(rec.Ops(), "rpass.drawIndexed idx=6 insts=1") {
		t.Errorf("journal missing drawIndexed, got %q", rec.Ops())
	}
}

func TestDrawIndexedWithoutIndexBufferPanics(t *testing.T) {
	d, _ := newTestDevice(t)
	pipeline := newRenderFixture(t, d, format.RGBA8Unorm)
	target := newColorTarget(t, d, format.RGBA8Unorm)
	verts := testVertices(t, d, 3)

	e, _ := d.CreateCommandEncoder("frame")
	p := e.BeginRenderPass(&RenderPassDescriptor{
		ColorAttachments: []ColorAttachment{{View: target}},
	}).SetPipeline(pipeline).SetVertexBuffer(0, VertexData(verts))
	expectPanic(t, "indexed draw needs an index buffer", func() {
		p.DrawIndexed(3, 1, 0, 0, 0)
	})
}

func TestOcclusionQueryLifecycle(t *testing.T) {
	d, rec := newTestDevice(t)
	pipeline := newRenderFixture(t, d, format.RGBA8Unorm)
	target := newColorTarget(t, d, format.RGBA8Unorm)
	verts := testVertices(t, d, 3)
	set, err := d.CreateOcclusionQuerySet("vis", 4)
	if err != nil {
		t.Fatalf("CreateOcclusionQuerySet: %v", err)
	}

	e, _ := d.CreateCommandEncoder("frame")
	p := e.BeginRenderPass(&RenderPassDescriptor{
		ColorAttachments:  []ColorAttachment{{View: target}},
		OcclusionQuerySet: set,
	})
	p.BeginOcclusionQuery(0).
		SetPipeline(pipeline).
		SetVertexBuffer(0, VertexData(verts)).
		Draw(3, 1, 0, 0).
		EndOcclusionQuery().
		BeginOcclusionQuery(1).
		Draw(3, 1, 0, 0).
		EndOcclusionQuery().
		End()

	ops := rec.Ops()
	if got := countOps(ops, "rpass.beginOcclusionQuery"); got != 2 {
		t.Errorf("beginOcclusionQuery emitted %d times, want 2", got)
	}
	if got := countOps(ops, "rpass.endOcclusionQuery"); got != 2 {
		t.Errorf("endOcclusionQuery emitted %d times, want 2", got)
	}
}

func TestOcclusionQueryReusePanics(t *testing.T) {
	d, _ := newTestDevice(t)
	target := newColorTarget(t, d, format.RGBA8Unorm)
	set, _ := d.CreateOcclusionQuerySet("vis", 2)

	e, _ := d.CreateCommandEncoder("frame")
	p := e.BeginRenderPass(&RenderPassDescriptor{
		ColorAttachments:  []ColorAttachment{{View: target}},
		OcclusionQuerySet: set,
	})
	p = p.BeginOcclusionQuery(0).EndOcclusionQuery()
	expectPanic(t, "query index 0 was already used in this pass", func() {
		p.BeginOcclusionQuery(0)
	})
}

func TestOcclusionQueryWithoutSetPanics(t *testing.T) {
	d, _ := newTestDevice(t)
	target := newColorTarget(t, d, format.RGBA8Unorm)

	e, _ := d.CreateCommandEncoder("frame")
	p := e.BeginRenderPass(&RenderPassDescriptor{
		ColorAttachments: []ColorAttachment{{View: target}},
	})
	expectPanic(t, "has no occlusion query set", func() {
		p.BeginOcclusionQuery(0)
	})
}

func TestOcclusionQueryIndexOutOfRangePanics(t *testing.T) {
	d, _ := newTestDevice(t)
	target := newColorTarget(t, d, format.RGBA8Unorm)
	set, _ := d.CreateOcclusionQuerySet("vis", 2)

	e, _ := d.CreateCommandEncoder("frame")
	p := e.BeginRenderPass(&RenderPassDescriptor{
		ColorAttachments:  []ColorAttachment{{View: target}},
		OcclusionQuerySet: set,
	})
	expectPanic(t, "outside the set's 2 slots", func() {
		p.BeginOcclusionQuery(2)
	})
}

func TestEndWithOpenQueryPanics(t *testing.T) {
	d, _ := newTestDevice(t)
	target := newColorTarget(t, d, format.RGBA8Unorm)
	set, _ := d.CreateOcclusionQuerySet("vis", 1)

	e, _ := d.CreateCommandEncoder("frame")
	p := e.BeginRenderPass(&RenderPassDescriptor{
		ColorAttachments:  []ColorAttachment{{View: target}},
		OcclusionQuerySet: set,
	})
	p.BeginOcclusionQuery(0)
	// The pre-query encoder still aliases the same pass state.
	expectPanic(t, "ended with an open occlusion query", func() {
		p.End()
	})
}

func TestExecuteBundlesInvalidatesState(t *testing.T) {
	d, rec := newTestDevice(t)
	pipeline := newRenderFixture(t, d, format.RGBA8Unorm)
	target := newColorTarget(t, d, format.RGBA8Unorm)
	verts := testVertices(t, d, 3)
	bundle := newTestBundle(t, d, format.RGBA8Unorm)

	e, _ := d.CreateCommandEncoder("frame")
	p := e.BeginRenderPass(&RenderPassDescriptor{
		ColorAttachments: []ColorAttachment{{View: target}},
	}).
		SetPipeline(pipeline).
		SetVertexBuffer(0, VertexData(verts))
	p.Draw(3, 1, 0, 0)
	p.ExecuteBundles(bundle).
		SetPipeline(pipeline).
		SetVertexBuffer(0, VertexData(verts)).
		Draw(3, 1, 0, 0).
		End()

	ops := rec.Ops()
	if !hasOp(ops, "rpass.executeBundles n=1") {
		t.Errorf("journal missing executeBundles, got %q", ops)
	}
	// The bundle wipes the tracked state, so the same pipeline and
	// vertex buffer are emitted again.
	if got := countOps(ops, "rpass.setPipeline"); got != 2 {
		t.Errorf("setPipeline emitted %d times, want 2", got)
	}
	if got := countOps(ops, "rpass.setVertexBuffer"); got != 2 {
		t.Errorf("setVertexBuffer emitted %d times, want 2", got)
	}
}

func TestExecuteBundlesTargetMismatchPanics(t *testing.T) {
	d, _ := newTestDevice(t)
	target := newColorTarget(t, d, format.RGBA8Unorm)
	bundle := newTestBundle(t, d, format.BGRA8Unorm)

	e, _ := d.CreateCommandEncoder("frame")
	p := e.BeginRenderPass(&RenderPassDescriptor{
		ColorAttachments: []ColorAttachment{{View: target}},
	})
	expectPanic(t, "do not match the pass attachments", func() {
		p.ExecuteBundles(bundle)
	})
}

func TestRenderPassStateCommands(t *testing.T) {
	d, rec := newTestDevice(t)
	target := newColorTarget(t, d, format.RGBA8Unorm)

	e, _ := d.CreateCommandEncoder("frame")
	e.BeginRenderPass(&RenderPassDescriptor{
		ColorAttachments: []ColorAttachment{{View: target}},
	}).
		SetViewport(0, 0, 64, 64, 0, 1).
		SetScissorRect(0, 0, 64, 64).
		SetBlendConstant(gputypes.Color{R: 1}).
		SetStencilReference(7).
		End()

	ops := rec.Ops()
	for _, want := range []string{
		"rpass.setViewport",
		"rpass.setScissorRect",
		"rpass.setBlendConstant",
		"rpass.setStencilReference 7",
	} {
		if !hasOp(ops, want) {
			t.Errorf("journal missing %q, got %q", want, ops)
		}
	}
}
