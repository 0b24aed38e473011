package format

import "testing"

func TestTableComplete(t *testing.T) {
	for _, f := range All() {
		info := Get(f)
		if info.BlockWidth == 0 || info.BlockHeight == 0 {
			t.Errorf("%s has a zero block size", f)
		}
		if info.Caps == 0 {
			t.Errorf("%s has no capabilities", f)
		}
		if f.String() == "" || f.String() == "undefined" {
			t.Errorf("format %d has no name", uint32(f))
		}
	}
	if n := len(All()); n != int(formatCount)-1 {
		t.Errorf("All() returned %d formats, want %d", n, int(formatCount)-1)
	}
}

func TestCapabilityConsistency(t *testing.T) {
	for _, f := range All() {
		info := Get(f)
		if info.Caps.Contains(CapBlendable) && !info.Caps.Contains(CapRenderable) {
			t.Errorf("%s is blendable but not renderable", f)
		}
		if info.Caps.Contains(CapResolve) && !info.Caps.Contains(CapMultisample) {
			t.Errorf("%s is a resolve target but not multisampleable", f)
		}
		if info.Caps.Contains(CapFilterable) && !info.Caps.Contains(CapSampled) {
			t.Errorf("%s is filterable but not sampleable", f)
		}
		if info.IsCompressed() && info.Caps.Contains(CapRenderable) {
			t.Errorf("%s is compressed but renderable", f)
		}
	}
}

func TestCompressedBlockLayout(t *testing.T) {
	for _, f := range []Format{
		BC1RGBAUnorm, BC1RGBAUnormSrgb, BC2RGBAUnorm, BC2RGBAUnormSrgb,
		BC3RGBAUnorm, BC3RGBAUnormSrgb, BC4RUnorm, BC4RSnorm,
		BC5RGUnorm, BC5RGSnorm, BC6HRGBUfloat, BC6HRGBFloat,
		BC7RGBAUnorm, BC7RGBAUnormSrgb,
	} {
		info := Get(f)
		if !info.IsCompressed() {
			t.Errorf("%s does not report as compressed", f)
		}
		if info.BlockWidth != 4 || info.BlockHeight != 4 {
			t.Errorf("%s block = %dx%d, want 4x4", f, info.BlockWidth, info.BlockHeight)
		}
		if info.BytesPerBlock != 8 && info.BytesPerBlock != 16 {
			t.Errorf("%s bytes per block = %d, want 8 or 16", f, info.BytesPerBlock)
		}
	}
}

func TestDepthStencilFormats(t *testing.T) {
	tests := []struct {
		f       Format
		depth   bool
		stencil bool
	}{
		{Stencil8, false, true},
		{Depth16Unorm, true, false},
		{Depth24Plus, true, false},
		{Depth24PlusStencil8, true, true},
		{Depth32Float, true, false},
	}
	for _, tt := range tests {
		info := Get(tt.f)
		if !info.IsDepthStencil() {
			t.Errorf("%s does not report as depth/stencil", tt.f)
		}
		if got := info.Caps.Contains(CapDepth); got != tt.depth {
			t.Errorf("%s depth aspect = %v, want %v", tt.f, got, tt.depth)
		}
		if got := info.Caps.Contains(CapStencil); got != tt.stencil {
			t.Errorf("%s stencil aspect = %v, want %v", tt.f, got, tt.stencil)
		}
	}
}

func TestCopyCompatibility(t *testing.T) {
	// The 24-bit depth formats have an opaque layout and no per-block
	// byte size.
	for _, f := range All() {
		info := Get(f)
		want := f != Depth24Plus && f != Depth24PlusStencil8
		if got := info.CopyCompatible(); got != want {
			t.Errorf("%s CopyCompatible = %v, want %v", f, got, want)
		}
	}
}

func TestGetUnknown(t *testing.T) {
	if info := Get(Format(9999)); info != (Info{}) {
		t.Errorf("Get(9999) = %+v, want zero Info", info)
	}
	if got := Format(9999).String(); got != "Format(9999)" {
		t.Errorf("String = %q, want %q", got, "Format(9999)")
	}
	if got := Undefined.String(); got != "undefined" {
		t.Errorf("Undefined.String = %q", got)
	}
}
