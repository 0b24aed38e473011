package tgpu

import (
	"fmt"
	"unsafe"
)

// CastError reports a failed reinterpretation between bytes and typed
// values. It is one of the few recoverable errors in the package: a
// mismatched length or alignment frequently comes from external data.
type CastError struct {
	// Len is the byte length that was offered.
	Len int
	// ElemSize is the size of the target element type.
	ElemSize uintptr
	// Reason describes the violated requirement.
	Reason string
}

func (e *CastError) Error() string {
	return fmt.Sprintf("tgpu: cannot cast %d bytes to elements of size %d: %s", e.Len, e.ElemSize, e.Reason)
}

func sizeOf[T any]() uintptr {
	var z T
	return unsafe.Sizeof(z)
}

func alignOf[T any]() uintptr {
	var z T
	return unsafe.Alignof(z)
}

// toBytes reinterprets a slice of T as its backing bytes without
// copying. The result aliases s.
func toBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), uintptr(len(s))*sizeOf[T]())
}

// Bytes returns the bytes of value without copying. The result aliases
// the value; it stays valid while the pointer does.
func Bytes[T any](value *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(value)), sizeOf[T]())
}

// BytesOf returns a copy of the bytes of values.
func BytesOf[T any](values []T) []byte {
	out := make([]byte, len(values)*int(sizeOf[T]()))
	copy(out, toBytes(values))
	return out
}

// TryFromBytes reinterprets data as a single T. The length of data must
// equal the size of T and data must be aligned for T; otherwise a
// *CastError is returned. The result aliases data.
func TryFromBytes[T any](data []byte) (*T, error) {
	size := sizeOf[T]()
	if uintptr(len(data)) != size {
		return nil, &CastError{Len: len(data), ElemSize: size, Reason: "length must equal element size"}
	}
	if uintptr(unsafe.Pointer(&data[0]))%alignOf[T]() != 0 {
		return nil, &CastError{Len: len(data), ElemSize: size, Reason: "data is not aligned for the element type"}
	}
	return (*T)(unsafe.Pointer(&data[0])), nil
}

// FromBytes is TryFromBytes that panics on failure.
func FromBytes[T any](data []byte) *T {
	v, err := TryFromBytes[T](data)
	if err != nil {
		panic(err.Error())
	}
	return v
}

// TrySliceFromBytes reinterprets data as a slice of T. The length of
// data must be a whole multiple of the size of T and data must be
// aligned for T; otherwise a *CastError is returned. The result aliases
// data.
func TrySliceFromBytes[T any](data []byte) ([]T, error) {
	size := sizeOf[T]()
	if size == 0 {
		return nil, &CastError{Len: len(data), ElemSize: size, Reason: "element type has zero size"}
	}
	if uintptr(len(data))%size != 0 {
		return nil, &CastError{Len: len(data), ElemSize: size, Reason: "length must be a multiple of element size"}
	}
	if len(data) == 0 {
		return nil, nil
	}
	if uintptr(unsafe.Pointer(&data[0]))%alignOf[T]() != 0 {
		return nil, &CastError{Len: len(data), ElemSize: size, Reason: "data is not aligned for the element type"}
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&data[0])), uintptr(len(data))/size), nil
}

// SliceFromBytes is TrySliceFromBytes that panics on failure.
func SliceFromBytes[T any](data []byte) []T {
	s, err := TrySliceFromBytes[T](data)
	if err != nil {
		panic(err.Error())
	}
	return s
}
