package tgpu

import (
	"testing"

	"github.com/gogpu/gputypes"
)

const testComputeWGSL = `
@compute @workgroup_size(64)
fn main() {}
`

// newComputeFixture builds a storage-buffer pipeline plus a matching
// bind group.
func newComputeFixture(t *testing.T, d *Device) (*ComputePipeline, *BindGroup, *BindGroupLayout) {
	t.Helper()
	layout, err := d.CreateBindGroupLayout("storage", []gputypes.BindGroupLayoutEntry{{
		Binding:    0,
		Visibility: gputypes.ShaderStageCompute,
		Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage},
	}})
	if err != nil {
		t.Fatalf("CreateBindGroupLayout: %v", err)
	}
	plLayout, err := d.CreatePipelineLayout("pl", []*BindGroupLayout{layout})
	if err != nil {
		t.Fatalf("CreatePipelineLayout: %v", err)
	}
	mod, err := d.CreateShaderModule("cs", testComputeWGSL)
	if err != nil {
		t.Fatalf("CreateShaderModule: %v", err)
	}
	pipeline, err := d.CreateComputePipeline(&ComputePipelineDescriptor{
		Label:      "cp",
		Layout:     plLayout,
		Module:     mod,
		EntryPoint: "main",
	})
	if err != nil {
		t.Fatalf("CreateComputePipeline: %v", err)
	}

	buf, err := CreateBuffer[uint32](d, "particles", 64, BufferUsageStorage)
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}
	group, err := d.CreateBindGroup("bg", layout, []BindGroupEntry{
		{Binding: 0, Resource: Storage(buf)},
	})
	if err != nil {
		t.Fatalf("CreateBindGroup: %v", err)
	}
	return pipeline, group, layout
}

func TestComputePassDispatch(t *testing.T) {
	d, rec := newTestDevice(t)
	pipeline, group, _ := newComputeFixture(t, d)

	e, _ := d.CreateCommandEncoder("enc")
	e.BeginComputePass("sim").
		SetPipeline(pipeline).
		SetBindGroup(0, group, nil).
		Dispatch(8, 1, 1).
		End()
	if _, err := e.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	ops := rec.Ops()
	for _, want := range []string{
		"beginComputePass",
		"cpass.setPipeline",
		"cpass.setBindGroup index=0",
		"cpass.dispatch 8x1x1",
		"cpass.end",
		"finish",
	} {
		if !hasOp(ops, want) {
			t.Errorf("journal missing %q, got %q", want, ops)
		}
	}
}

func TestComputePassRedundancyElision(t *testing.T) {
	d, rec := newTestDevice(t)
	pipeline, group, _ := newComputeFixture(t, d)

	e, _ := d.CreateCommandEncoder("enc")
	p := e.BeginComputePass("sim").SetPipeline(pipeline)
	p.SetBindGroup(0, group, nil).Dispatch(1, 1, 1)
	p.SetPipeline(pipeline).SetBindGroup(0, group, nil).Dispatch(2, 1, 1)
	p.End()

	ops := rec.Ops()
	if got := countOps(ops, "cpass.setPipeline"); got != 1 {
		t.Errorf("setPipeline emitted %d times, want 1", got)
	}
	if got := countOps(ops, "cpass.setBindGroup"); got != 1 {
		t.Errorf("setBindGroup emitted %d times, want 1", got)
	}
}

func TestComputePassDynamicOffsetsForceRebind(t *testing.T) {
	d, rec := newTestDevice(t)
	pipeline, group, _ := newComputeFixture(t, d)

	e, _ := d.CreateCommandEncoder("enc")
	p := e.BeginComputePass("sim").SetPipeline(pipeline)
	p.SetBindGroup(0, group, []uint32{0})
	p.SetBindGroup(0, group, []uint32{256})
	p.SetBindGroup(0, group, nil)
	p.End()

	if got := countOps(rec.Ops(), "cpass.setBindGroup"); got != 3 {
		t.Errorf("setBindGroup emitted %d times, want 3", got)
	}
}

func TestDispatchWithoutBindGroupPanics(t *testing.T) {
	d, _ := newTestDevice(t)
	pipeline, _, _ := newComputeFixture(t, d)

	e, _ := d.CreateCommandEncoder("enc")
	p := e.BeginComputePass("sim").SetPipeline(pipeline)
	expectPanic(t, "dispatch needs a bind group in slot 0", func() {
		p.Dispatch(1, 1, 1)
	})
}

func TestDispatchWithForeignLayoutPanics(t *testing.T) {
	d, _ := newTestDevice(t)
	pipeline, _, _ := newComputeFixture(t, d)

	other, err := d.CreateBindGroupLayout("other", []gputypes.BindGroupLayoutEntry{{
		Binding:    0,
		Visibility: gputypes.ShaderStageCompute,
		Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage},
	}})
	if err != nil {
		t.Fatalf("CreateBindGroupLayout: %v", err)
	}
	buf, _ := CreateBuffer[uint32](d, "b", 4, BufferUsageStorage)
	group, err := d.CreateBindGroup("bg", other, []BindGroupEntry{
		{Binding: 0, Resource: Storage(buf)},
	})
	if err != nil {
		t.Fatalf("CreateBindGroup: %v", err)
	}

	e, _ := d.CreateCommandEncoder("enc")
	p := e.BeginComputePass("sim").SetPipeline(pipeline).SetBindGroup(0, group, nil)
	expectPanic(t, "was not created from the pipeline's layout", func() {
		p.Dispatch(1, 1, 1)
	})
}

func TestDispatchIndirect(t *testing.T) {
	d, rec := newTestDevice(t)
	pipeline, group, _ := newComputeFixture(t, d)
	args, err := CreateBufferInit(d, "args", []DispatchArgs{{X: 4, Y: 2, Z: 1}}, BufferUsageIndirect)
	if err != nil {
		t.Fatalf("CreateBufferInit: %v", err)
	}

	e, _ := d.CreateCommandEncoder("enc")
	e.BeginComputePass("sim").
		SetPipeline(pipeline).
		SetBindGroup(0, group, nil).
		DispatchIndirect(args.At(0)).
		End()

	if !hasOp(rec.Ops(), "cpass.dispatchIndirect") {
		t.Errorf("journal missing dispatchIndirect, got %q", rec.Ops())
	}
}

func TestDispatchIndirectUsagePanics(t *testing.T) {
	d, _ := newTestDevice(t)
	pipeline, group, _ := newComputeFixture(t, d)
	args, _ := CreateBuffer[DispatchArgs](d, "args", 1, BufferUsageStorage)

	e, _ := d.CreateCommandEncoder("enc")
	p := e.BeginComputePass("sim").SetPipeline(pipeline).SetBindGroup(0, group, nil)
	expectPanic(t, "missing the Indirect usage", func() {
		p.DispatchIndirect(args.At(0))
	})
}

func TestComputePassUseAfterEndPanics(t *testing.T) {
	d, _ := newTestDevice(t)
	pipeline, _, _ := newComputeFixture(t, d)

	e, _ := d.CreateCommandEncoder("enc")
	p := e.BeginComputePass("sim")
	dp := p.SetPipeline(pipeline)
	dp.End()
	expectPanic(t, "has ended", func() { dp.SetPipeline(pipeline) })
	expectPanic(t, "has ended", func() { dp.End() })
}

func TestBindGroupIndexOutOfRangePanics(t *testing.T) {
	d, _ := newTestDevice(t)
	_, group, _ := newComputeFixture(t, d)

	e, _ := d.CreateCommandEncoder("enc")
	p := e.BeginComputePass("sim")
	expectPanic(t, "outside the 8 slots", func() {
		p.SetBindGroup(8, group, nil)
	})
}
