package tgpu

import (
	"context"
	"fmt"

	"github.com/gogpu/gputypes"
)

// View is a typed window over a contiguous run of T elements in a
// buffer. Views are cheap values: slicing produces a new view over the
// same buffer without copying. All byte arithmetic happens here; the
// rest of the API consumes views, so a well-typed program cannot address
// bytes outside a view's window.
type View[T any] struct {
	buf *bufferShared
	off uint64 // byte offset of element 0
	n   int
}

// Len returns the number of elements in the view.
func (v *View[T]) Len() int { return v.n }

// SizeBytes returns the view's length in bytes.
func (v *View[T]) SizeBytes() uint64 { return uint64(v.n) * uint64(sizeOf[T]()) }

// OffsetBytes returns the view's byte offset inside its buffer.
func (v *View[T]) OffsetBytes() uint64 { return v.off }

// Usage returns the usage flags of the underlying buffer.
func (v *View[T]) Usage() BufferUsage { return v.buf.usage }

// Label returns the label of the underlying buffer.
func (v *View[T]) Label() string { return v.buf.label }

// Slice returns the sub-view [start, end). It panics when start > end
// or end > Len().
func (v *View[T]) Slice(start, end int) *View[T] {
	if start < 0 || start > end || end > v.n {
		panic(fmt.Sprintf("tgpu: view slice [%d:%d] out of range for length %d", start, end, v.n))
	}
	return &View[T]{
		buf: v.buf,
		off: v.off + uint64(start)*uint64(sizeOf[T]()),
		n:   end - start,
	}
}

// SliceFrom returns the sub-view [start, Len()).
func (v *View[T]) SliceFrom(start int) *View[T] { return v.Slice(start, v.n) }

// SliceTo returns the sub-view [0, end).
func (v *View[T]) SliceTo(end int) *View[T] { return v.Slice(0, end) }

// At returns a single-element view of element i. It panics when i is
// out of range.
func (v *View[T]) At(i int) *Item[T] {
	if i < 0 || i >= v.n {
		panic(fmt.Sprintf("tgpu: view index %d out of range for length %d", i, v.n))
	}
	return &Item[T]{
		buf: v.buf,
		off: v.off + uint64(i)*uint64(sizeOf[T]()),
	}
}

// MapRead maps the view's byte range for reading. It blocks until the
// driver completes the request or ctx is canceled. The buffer must have
// MapRead usage and must not already be mapped.
func (v *View[T]) MapRead(ctx context.Context) error {
	requireUsage(v.buf.usage, BufferUsageMapRead, "MapRead")
	return v.buf.mapRange(ctx, gputypes.MapModeRead, v.off, alignUp(v.SizeBytes(), copyAlignment))
}

// MapWrite maps the view's byte range for writing. It blocks until the
// driver completes the request or ctx is canceled. The buffer must have
// MapWrite usage and must not already be mapped.
func (v *View[T]) MapWrite(ctx context.Context) error {
	requireUsage(v.buf.usage, BufferUsageMapWrite, "MapWrite")
	return v.buf.mapRange(ctx, gputypes.MapModeWrite, v.off, alignUp(v.SizeBytes(), copyAlignment))
}

// Unmap invalidates the buffer's mapping. Every guard must have been
// released; unmapping with live guards panics. Unmapping an unmapped
// buffer has no effect; unmapping with a map request in flight cancels
// the request.
func (v *View[T]) Unmap() { v.buf.unmap() }

// Destroy releases the underlying buffer. All views over the buffer
// become invalid. Destroy is idempotent.
func (v *View[T]) Destroy() { v.buf.destroy() }

// Item is a typed view of a single T inside a buffer.
type Item[T any] struct {
	buf *bufferShared
	off uint64
}

// SizeBytes returns the element size in bytes.
func (it *Item[T]) SizeBytes() uint64 { return uint64(sizeOf[T]()) }

// OffsetBytes returns the element's byte offset inside its buffer.
func (it *Item[T]) OffsetBytes() uint64 { return it.off }

// AsView returns a length-1 view of the element.
func (it *Item[T]) AsView() *View[T] {
	return &View[T]{buf: it.buf, off: it.off, n: 1}
}
