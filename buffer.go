package tgpu

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/tgpu/driver"
)

// Buffer errors.
var (
	// ErrMapFailed is returned when an asynchronous map request does
	// not complete successfully.
	ErrMapFailed = errors.New("tgpu: buffer map failed")
)

// copyAlignment is the required alignment, in bytes, for buffer clear
// and copy offsets and sizes.
const copyAlignment uint64 = 4

// mapAlignment is the required alignment, in bytes, of a map offset.
const mapAlignment uint64 = 8

// bufferMapState tracks the mapping lifecycle of a buffer.
type bufferMapState int

const (
	// bufferUnmapped means the buffer is not mapped and not pending.
	bufferUnmapped bufferMapState = iota

	// bufferMapPending means a map request has been issued to the
	// driver and has not completed.
	bufferMapPending

	// bufferMapped means buffer memory is accessible to the host.
	bufferMapped
)

// String returns the string representation of bufferMapState.
func (s bufferMapState) String() string {
	switch s {
	case bufferUnmapped:
		return "Unmapped"
	case bufferMapPending:
		return "Pending"
	case bufferMapped:
		return "Mapped"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// bufferIDs generates process-unique buffer identities, used for
// redundancy elision keys in pass encoders.
var bufferIDs atomic.Uint64

// bufferShared is the state shared by every view of one buffer.
type bufferShared struct {
	dev    *Device
	handle driver.Buffer
	id     uint64
	label  string
	size   uint64
	usage  BufferUsage

	mu        sync.Mutex
	state     bufferMapState
	mapCtx    mapContext
	destroyed bool
}

func (b *bufferShared) checkAlive() {
	if b.destroyed {
		panic("tgpu: buffer has been destroyed")
	}
}

// mapRange issues a map request for [offset, offset+size) and blocks
// until the driver completes it or ctx is canceled.
func (b *bufferShared) mapRange(ctx context.Context, mode gputypes.MapMode, offset, size uint64) error {
	b.mu.Lock()
	b.checkAlive()
	if b.state != bufferUnmapped {
		panic("tgpu: buffer is already mapped")
	}
	if offset%mapAlignment != 0 {
		panic(fmt.Sprintf("tgpu: map offset must be a multiple of %d, got %d", mapAlignment, offset))
	}
	if size%copyAlignment != 0 {
		panic(fmt.Sprintf("tgpu: map size must be a multiple of %d, got %d", copyAlignment, size))
	}
	b.state = bufferMapPending
	b.mu.Unlock()

	// Buffered so a late driver callback never blocks after the waiter
	// has given up on a canceled context.
	done := make(chan error, 1)
	b.handle.MapAsync(mode, offset, size, func(err error) {
		done <- err
	})

	select {
	case <-ctx.Done():
		// The request stays pending; Unmap cancels it.
		return ctx.Err()
	case err := <-done:
		b.mu.Lock()
		defer b.mu.Unlock()
		if err != nil {
			b.state = bufferUnmapped
			return fmt.Errorf("%w: %v", ErrMapFailed, err)
		}
		b.state = bufferMapped
		b.mapCtx.beginMap(byteRange{offset, offset + size})
		return nil
	}
}

// unmap invalidates the mapping. Guards must all be released first.
func (b *bufferShared) unmap() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.checkAlive()
	switch b.state {
	case bufferUnmapped:
		return
	case bufferMapped:
		b.mapCtx.endMap()
	case bufferMapPending:
		// Unmapping a pending buffer cancels the request.
	}
	b.state = bufferUnmapped
	b.handle.Unmap()
}

// destroy releases the driver buffer. Idempotent.
func (b *bufferShared) destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.destroyed {
		return
	}
	if b.state == bufferMapped && len(b.mapCtx.subRanges) != 0 {
		panic("tgpu: cannot destroy a buffer that still has accessible mapped views")
	}
	b.destroyed = true
	b.handle.Destroy()
}

// claimGuard registers a guard's byte range under the buffer lock.
func (b *bufferShared) claimGuard(r byteRange) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.checkAlive()
	if b.state != bufferMapped {
		panic("tgpu: buffer is not mapped")
	}
	b.mapCtx.claim(r)
}

// releaseGuard removes a guard's byte range under the buffer lock.
func (b *bufferShared) releaseGuard(r byteRange) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mapCtx.release(r)
}

// alignUp rounds v up to the next multiple of align.
func alignUp(v, align uint64) uint64 {
	return (v + align - 1) / align * align
}

func newBufferShared(d *Device, label string, sizeBytes uint64, usage BufferUsage, mappedAtCreation bool) (*bufferShared, error) {
	allocSize := alignUp(sizeBytes, copyAlignment)
	if allocSize == 0 {
		allocSize = copyAlignment
	}
	handle, err := d.dev.CreateBuffer(&driver.BufferDescriptor{
		Label:            label,
		Size:             allocSize,
		Usage:            usage,
		MappedAtCreation: mappedAtCreation,
	})
	if err != nil {
		return nil, fmt.Errorf("tgpu: create buffer %q: %w", label, err)
	}
	b := &bufferShared{
		dev:    d,
		handle: handle,
		id:     bufferIDs.Add(1),
		label:  label,
		size:   allocSize,
		usage:  usage,
	}
	if mappedAtCreation {
		b.state = bufferMapped
		b.mapCtx.beginMap(byteRange{0, allocSize})
	}
	Logger().Debug("tgpu: buffer created", "label", label, "size", allocSize, "mapped", mappedAtCreation)
	return b, nil
}

// CreateBuffer creates a zero-initialized buffer of n elements of T and
// returns a view covering all of them.
func CreateBuffer[T any](d *Device, label string, n int, usage BufferUsage) (*View[T], error) {
	if n < 0 {
		panic(fmt.Sprintf("tgpu: negative buffer length %d", n))
	}
	b, err := newBufferShared(d, label, uint64(n)*uint64(sizeOf[T]()), usage, false)
	if err != nil {
		return nil, err
	}
	return &View[T]{buf: b, n: n}, nil
}

// CreateBufferInit creates a buffer holding a copy of data, uploaded
// through a creation mapping, and returns a view covering it. The
// buffer is unmapped when CreateBufferInit returns.
func CreateBufferInit[T any](d *Device, label string, data []T, usage BufferUsage) (*View[T], error) {
	b, err := newBufferShared(d, label, uint64(len(data))*uint64(sizeOf[T]()), usage, true)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		dst := b.handle.MappedRange(0, uint64(len(data))*uint64(sizeOf[T]()))
		copy(dst, toBytes(data))
	}
	b.mapCtx.endMap()
	b.state = bufferUnmapped
	b.handle.Unmap()
	return &View[T]{buf: b, n: len(data)}, nil
}

// CreateBufferMapped creates a buffer of n elements that starts out
// mapped for writing. The caller fills it through write guards and then
// calls Unmap on the view before using the buffer on the GPU.
func CreateBufferMapped[T any](d *Device, label string, n int, usage BufferUsage) (*View[T], error) {
	if n < 0 {
		panic(fmt.Sprintf("tgpu: negative buffer length %d", n))
	}
	b, err := newBufferShared(d, label, uint64(n)*uint64(sizeOf[T]()), usage, true)
	if err != nil {
		return nil, err
	}
	return &View[T]{buf: b, n: n}, nil
}

// CreateUninitBuffer creates a buffer of n elements with undefined
// contents. The returned view must be initialized (for example by a
// copy or a queue write) before AssumeInit is called.
func CreateUninitBuffer[T any](d *Device, label string, n int, usage BufferUsage) (*UninitView[T], error) {
	v, err := CreateBuffer[T](d, label, n, usage)
	if err != nil {
		return nil, err
	}
	return &UninitView[T]{view: *v}, nil
}

// UninitView is a view over a buffer whose contents have not yet been
// initialized. It only supports being the destination of copies and
// writes until AssumeInit converts it.
type UninitView[T any] struct {
	view View[T]
}

// AssumeInit asserts that the buffer now holds valid T values and
// returns the typed view. The caller is responsible for having
// initialized every element.
func (u *UninitView[T]) AssumeInit() *View[T] {
	v := u.view
	return &v
}

// Len returns the number of elements.
func (u *UninitView[T]) Len() int { return u.view.Len() }

// Slice narrows the uninitialized view to [start, end).
func (u *UninitView[T]) Slice(start, end int) *UninitView[T] {
	return &UninitView[T]{view: *u.view.Slice(start, end)}
}
