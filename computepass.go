package tgpu

import (
	"fmt"

	"github.com/gogpu/tgpu/driver"
)

// maxBindGroups is the number of bind group slots a pass tracks.
const maxBindGroups = 8

// boundGroup remembers what occupies a bind group slot for redundancy
// elision and dispatch-time layout checks.
type boundGroup struct {
	id       uint64
	layoutID uint64
	dynamic  bool
}

// computePassState is shared by the compute pass wrapper types.
type computePassState struct {
	enc    *CommandEncoder
	handle driver.ComputePass
	label  string
	ended  bool

	pipeline *ComputePipeline
	groups   [maxBindGroups]boundGroup
}

func (s *computePassState) checkOpen() {
	if s.ended {
		panic(fmt.Sprintf("tgpu: compute pass %q has ended", s.label))
	}
}

func (s *computePassState) setPipeline(p *ComputePipeline) {
	s.checkOpen()
	if s.pipeline != nil && s.pipeline.id == p.id {
		return
	}
	s.pipeline = p
	s.handle.SetPipeline(p.handle)
}

func (s *computePassState) setBindGroup(index uint32, group *BindGroup, dynamicOffsets []uint32) {
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

// checkDispatch panics unless every bind group slot the pipeline's
// layout names holds a group created against the same layout object.
func (s *computePassState) checkDispatch() {
	s.checkOpen()
	if s.pipeline == nil {
		panic("tgpu: dispatch needs a pipeline")
	}
	for i, want := range s.pipeline.layoutIDs {
		got := s.groups[i]
		if got.id == 0 {
			panic(fmt.Sprintf("tgpu: dispatch needs a bind group in slot %d", i))
		}
		if got.layoutID != want {
			panic(fmt.Sprintf("tgpu: bind group in slot %d was not created from the pipeline's layout", i))
		}
	}
}

func (s *computePassState) end() {
	s.checkOpen()
	s.ended = true
	s.handle.End()
	s.enc.status = encoderRecording
}

// ComputePassEncoder is an open compute pass with no pipeline set yet.
// Setting a pipeline moves recording to a ComputeDispatchEncoder.
type ComputePassEncoder struct {
	s *computePassState
}

// BeginComputePass opens a compute pass. The encoder is locked until
// the pass ends.
func (e *CommandEncoder) BeginComputePass(label string) *ComputePassEncoder {
	e.checkRecording()
	e.status = encoderLocked
	handle := e.handle.BeginComputePass(&driver.ComputePassDescriptor{Label: label})
	return &ComputePassEncoder{s: &computePassState{enc: e, handle: handle, label: label}}
}

// SetBindGroup binds group at index. Groups may be bound before the
// first pipeline.
func (p *ComputePassEncoder) SetBindGroup(index uint32, group *BindGroup, dynamicOffsets []uint32) *ComputePassEncoder {
	p.s.setBindGroup(index, group, dynamicOffsets)
	return p
}

// SetPipeline sets the pipeline and enables dispatching.
func (p *ComputePassEncoder) SetPipeline(pipeline *ComputePipeline) *ComputeDispatchEncoder {
	p.s.setPipeline(pipeline)
	return &ComputeDispatchEncoder{s: p.s}
}

// End closes the pass and unlocks the encoder.
func (p *ComputePassEncoder) End() {
	p.s.end()
}

// ComputeDispatchEncoder is an open compute pass with a pipeline set.
type ComputeDispatchEncoder struct {
	s *computePassState
}

// SetPipeline switches pipelines. Setting the current pipeline again is
// elided.
func (p *ComputeDispatchEncoder) SetPipeline(pipeline *ComputePipeline) *ComputeDispatchEncoder {
	p.s.setPipeline(pipeline)
	return p
}

// SetBindGroup binds group at index. Rebinding the same group with no
// dynamic offsets is elided.
func (p *ComputeDispatchEncoder) SetBindGroup(index uint32, group *BindGroup, dynamicOffsets []uint32) *ComputeDispatchEncoder {
	p.s.setBindGroup(index, group, dynamicOffsets)
	return p
}

// Dispatch encodes a dispatch of x by y by z workgroups. Every bind
// group slot the pipeline layout names must be filled with a compatible
// group.
func (p *ComputeDispatchEncoder) Dispatch(x, y, z uint32) *ComputeDispatchEncoder {
	p.s.checkDispatch()
	p.s.handle.Dispatch(x, y, z)
	return p
}

// DispatchArgs is the memory layout of an indirect dispatch.
type DispatchArgs struct {
	X, Y, Z uint32
}

// DispatchIndirect encodes a dispatch whose workgroup counts are read
// from args at execution time. The underlying buffer needs Indirect
// usage.
func (p *ComputeDispatchEncoder) DispatchIndirect(args *Item[DispatchArgs]) *ComputeDispatchEncoder {
	p.s.checkDispatch()
	requireUsage(args.buf.usage, BufferUsageIndirect, "an indirect dispatch")
	p.s.enc.retain(args.buf)
	p.s.handle.DispatchIndirect(args.buf.handle, args.off)
	return p
}

// End closes the pass and unlocks the encoder.
func (p *ComputeDispatchEncoder) End() {
	p.s.end()
}
