package tgpu

import "fmt"

// Projection maps an Item[T] to an Item[P] for a P-typed field embedded
// in T at a fixed byte offset. Offsets come from unsafe.Offsetof at the
// call site, so the projection agrees with Go's actual struct layout:
//
//	type Uniforms struct {
//		Transform [16]float32
//		Tint      [4]float32
//	}
//	tint := tgpu.NewProjection[Uniforms, [4]float32](unsafe.Offsetof(Uniforms{}.Tint))
//	tintItem := tint.Apply(uniformsItem)
type Projection[T, P any] struct {
	offset uintptr
}

// NewProjection creates a projection of P at the given byte offset
// inside T. It panics when the projected field would extend past the
// end of T or when the offset is not aligned for P.
func NewProjection[T, P any](offset uintptr) Projection[T, P] {
	if offset+sizeOf[P]() > sizeOf[T]() {
		panic(fmt.Sprintf("tgpu: projection at offset %d with size %d extends past the element size %d",
			offset, sizeOf[P](), sizeOf[T]()))
	}
	if offset%alignOf[P]() != 0 {
		panic(fmt.Sprintf("tgpu: projection offset %d is not aligned to %d", offset, alignOf[P]()))
	}
	return Projection[T, P]{offset: offset}
}

// Offset returns the projection's byte offset.
func (p Projection[T, P]) Offset() uintptr { return p.offset }

// Apply narrows an element view to the projected field.
func (p Projection[T, P]) Apply(it *Item[T]) *Item[P] {
	return &Item[P]{buf: it.buf, off: it.off + uint64(p.offset)}
}

// Then composes two projections: first p, then next inside the
// projected field.
func Then[T, P, Q any](p Projection[T, P], next Projection[P, Q]) Projection[T, Q] {
	return Projection[T, Q]{offset: p.offset + next.offset}
}
