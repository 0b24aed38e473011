package tgpu

import (
	"errors"
	"testing"
)

func TestBytesRoundTrip(t *testing.T) {
	v := uint32(0x04030201)
	b := Bytes(&v)
	if len(b) != 4 {
		t.Fatalf("len(Bytes) = %d, want 4", len(b))
	}
	got, err := TryFromBytes[uint32](b)
	if err != nil {
		t.Fatalf("TryFromBytes: %v", err)
	}
	if *got != v {
		t.Errorf("TryFromBytes = %#x, want %#x", *got, v)
	}

	// Bytes aliases the value.
	b[0] = 0xff
	if v&0xff != 0xff {
		t.Errorf("write through Bytes not visible, v = %#x", v)
	}
}

func TestBytesOfCopies(t *testing.T) {
	src := []uint16{1, 2, 3}
	b := BytesOf(src)
	if len(b) != 6 {
		t.Fatalf("len(BytesOf) = %d, want 6", len(b))
	}
	b[0] = 0xff
	if src[0] != 1 {
		t.Errorf("BytesOf aliases its input, src[0] = %d", src[0])
	}
}

func TestSliceFromBytesRoundTrip(t *testing.T) {
	src := []uint32{10, 20, 30}
	got, err := TrySliceFromBytes[uint32](toBytes(src))
	if err != nil {
		t.Fatalf("TrySliceFromBytes: %v", err)
	}
	if len(got) != 3 || got[0] != 10 || got[2] != 30 {
		t.Errorf("TrySliceFromBytes = %v, want [10 20 30]", got)
	}
}

func TestTryFromBytesLengthMismatch(t *testing.T) {
	_, err := TryFromBytes[uint32](make([]byte, 5))
	var cerr *CastError
	if !errors.As(err, &cerr) {
		t.Fatalf("error = %v, want *CastError", err)
	}
	if cerr.Len != 5 || cerr.ElemSize != 4 {
		t.Errorf("CastError = {Len: %d, ElemSize: %d}, want {5, 4}", cerr.Len, cerr.ElemSize)
	}
}

func TestTrySliceFromBytesLengthMismatch(t *testing.T) {
	_, err := TrySliceFromBytes[uint32](make([]byte, 6))
	var cerr *CastError
	if !errors.As(err, &cerr) {
		t.Fatalf("error = %v, want *CastError", err)
	}
}

func TestTryFromBytesMisaligned(t *testing.T) {
	backing := make([]byte, 16)
	_, err := TryFromBytes[uint32](backing[1:5])
	var cerr *CastError
	if !errors.As(err, &cerr) {
		t.Fatalf("error = %v, want *CastError", err)
	}
	if cerr.Reason != "data is not aligned for the element type" {
		t.Errorf("Reason = %q", cerr.Reason)
	}
}

func TestSliceFromBytesEmpty(t *testing.T) {
	got, err := TrySliceFromBytes[uint64](nil)
	if err != nil {
		t.Fatalf("TrySliceFromBytes(nil): %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestFromBytesPanicsOnError(t *testing.T) {
	expectPanic(t, "cannot cast", func() {
		FromBytes[uint32](make([]byte, 3))
	})
	expectPanic(t, "cannot cast", func() {
		SliceFromBytes[uint32](make([]byte, 3))
	})
}
