// Package tgpu is a statically typed layer over the WebGPU-style GPU
// API. Buffers are accessed through typed views ([View], [Item]) whose
// element type fixes every byte offset and size, so copies, bindings
// and mapped access are validated at the type level instead of against
// raw byte counts.
//
// Command recording uses typestate wrappers: a compute pass starts as a
// [ComputePassEncoder] and only exposes Dispatch once a pipeline is set,
// a render pass moves between [RenderPassEncoder], [RenderDrawEncoder]
// and the occlusion-query variants, and a finished pass hands control
// back to the [CommandEncoder]. Invalid sequences fail to compile or
// panic at record time, never on the GPU timeline.
//
// Backends implement the driver contract and register themselves on
// import:
//
//	import (
//		"github.com/gogpu/tgpu"
//		_ "github.com/gogpu/tgpu/driver/webgpu"
//	)
//
//	dev, err := tgpu.OpenDefault()
//
// The webgpu backend binds wgpu-native (and the browser's WebGPU under
// wasm); the native backend runs on the pure-Go gogpu/wgpu HAL with a
// reduced feature set.
package tgpu
