package tgpu

// Mapped is a read guard over the mapped bytes of a view. While a guard
// is live its byte range is claimed in the buffer's map context, so the
// buffer cannot be unmapped underneath it and no overlapping guard can
// be created. Guards must be released explicitly:
//
//	m := view.Mapped()
//	defer m.Release()
type Mapped[T any] struct {
	buf      *bufferShared
	r        byteRange
	data     []T
	released bool
}

// Mapped returns a read guard over the view's elements. The buffer must
// be mapped and the view's byte range must not intersect another live
// guard; violations panic.
func (v *View[T]) Mapped() *Mapped[T] {
	r := byteRange{v.off, v.off + v.SizeBytes()}
	v.buf.claimGuard(r)
	raw := v.buf.handle.MappedRange(v.off, v.SizeBytes())
	return &Mapped[T]{
		buf:  v.buf,
		r:    r,
		data: SliceFromBytes[T](raw),
	}
}

// Len returns the number of accessible elements.
func (m *Mapped[T]) Len() int { return len(m.data) }

// Get returns element i.
func (m *Mapped[T]) Get(i int) T {
	m.checkLive()
	return m.data[i]
}

// Copy copies elements into dst, returning the number copied.
func (m *Mapped[T]) Copy(dst []T) int {
	m.checkLive()
	return copy(dst, m.data)
}

// All returns a copy of all elements.
func (m *Mapped[T]) All() []T {
	m.checkLive()
	out := make([]T, len(m.data))
	copy(out, m.data)
	return out
}

// Release gives up the guard's claim. The guard must not be used after
// Release. Releasing twice panics.
func (m *Mapped[T]) Release() {
	m.checkLive()
	m.released = true
	m.data = nil
	m.buf.releaseGuard(m.r)
}

func (m *Mapped[T]) checkLive() {
	if m.released {
		panic("tgpu: use of released mapped view")
	}
}

// MappedMut is a write guard over the mapped bytes of a view. Writes go
// directly to the mapped memory; the driver makes them visible to the
// GPU when the buffer is unmapped.
type MappedMut[T any] struct {
	buf      *bufferShared
	r        byteRange
	data     []T
	released bool
}

// MappedMut returns a write guard over the view's elements, under the
// same claim rules as Mapped.
func (v *View[T]) MappedMut() *MappedMut[T] {
	r := byteRange{v.off, v.off + v.SizeBytes()}
	v.buf.claimGuard(r)
	raw := v.buf.handle.MappedRange(v.off, v.SizeBytes())
	return &MappedMut[T]{
		buf:  v.buf,
		r:    r,
		data: SliceFromBytes[T](raw),
	}
}

// Len returns the number of accessible elements.
func (m *MappedMut[T]) Len() int { return len(m.data) }

// Get returns element i.
func (m *MappedMut[T]) Get(i int) T {
	m.checkLive()
	return m.data[i]
}

// Set stores value at element i.
func (m *MappedMut[T]) Set(i int, value T) {
	m.checkLive()
	m.data[i] = value
}

// CopyFrom copies elements from src, returning the number copied.
func (m *MappedMut[T]) CopyFrom(src []T) int {
	m.checkLive()
	return copy(m.data, src)
}

// Release gives up the guard's claim. The guard must not be used after
// Release. Releasing twice panics.
func (m *MappedMut[T]) Release() {
	m.checkLive()
	m.released = true
	m.data = nil
	m.buf.releaseGuard(m.r)
}

func (m *MappedMut[T]) checkLive() {
	if m.released {
		panic("tgpu: use of released mapped view")
	}
}
