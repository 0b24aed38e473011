// Package format defines the closed set of texture formats and their
// static capabilities. The table is consulted by texture creation, view
// creation, image-copy validation and render-target compatibility checks;
// it has no GPU dependencies of its own.
package format

import "fmt"

// Format identifies a texture format. The zero value is Undefined.
type Format uint32

// Texture formats. The order follows the WebGPU specification's format
// listing: 8-bit, 16-bit, 32-bit, packed, 64-bit, 128-bit, depth/stencil,
// then BC-compressed.
const (
	Undefined Format = iota

	// 8-bit formats.
	R8Unorm
	R8Snorm
	R8Uint
	R8Sint

	// 16-bit formats.
	R16Uint
	R16Sint
	R16Float
	RG8Unorm
	RG8Snorm
	RG8Uint
	RG8Sint

	// 32-bit formats.
	R32Uint
	R32Sint
	R32Float
	RG16Uint
	RG16Sint
	RG16Float
	RGBA8Unorm
	RGBA8UnormSrgb
	RGBA8Snorm
	RGBA8Uint
	RGBA8Sint
	BGRA8Unorm
	BGRA8UnormSrgb
	RGB10A2Unorm
	RG11B10Ufloat

	// 64-bit formats.
	RG32Uint
	RG32Sint
	RG32Float
	RGBA16Uint
	RGBA16Sint
	RGBA16Float

	// 128-bit formats.
	RGBA32Uint
	RGBA32Sint
	RGBA32Float

	// Depth/stencil formats.
	Stencil8
	Depth16Unorm
	Depth24Plus
	Depth24PlusStencil8
	Depth32Float

	// BC compressed formats (4x4 blocks).
	BC1RGBAUnorm
	BC1RGBAUnormSrgb
	BC2RGBAUnorm
	BC2RGBAUnormSrgb
	BC3RGBAUnorm
	BC3RGBAUnormSrgb
	BC4RUnorm
	BC4RSnorm
	BC5RGUnorm
	BC5RGSnorm
	BC6HRGBUfloat
	BC6HRGBFloat
	BC7RGBAUnorm
	BC7RGBAUnormSrgb

	formatCount
)

// Capability bits describing what a format supports.
type Capability uint32

const (
	// CapSampled marks formats usable in sampled texture bindings.
	CapSampled Capability = 1 << iota
	// CapFilterable marks formats that support linear filtering.
	CapFilterable
	// CapRenderable marks formats usable as color attachments.
	CapRenderable
	// CapBlendable marks renderable formats that support blending.
	CapBlendable
	// CapStorage marks formats usable in storage texture bindings.
	CapStorage
	// CapMultisample marks formats usable with sample counts above 1.
	CapMultisample
	// CapResolve marks multisample formats usable as resolve targets.
	CapResolve
	// CapDepth marks formats with a depth aspect.
	CapDepth
	// CapStencil marks formats with a stencil aspect.
	CapStencil
)

// Contains reports whether all bits of other are set in c.
func (c Capability) Contains(other Capability) bool { return c&other == other }

// Info describes the static layout and capabilities of a format.
//
// BytesPerBlock is zero for Depth24Plus and Depth24PlusStencil8, whose
// depth aspect has an opaque driver-defined layout and cannot take part
// in buffer image copies.
type Info struct {
	BlockWidth    uint32
	BlockHeight   uint32
	BytesPerBlock uint32
	Caps          Capability
}

// IsCompressed reports whether the format uses blocks larger than 1x1.
func (i Info) IsCompressed() bool { return i.BlockWidth > 1 || i.BlockHeight > 1 }

// IsDepthStencil reports whether the format has a depth or stencil aspect.
func (i Info) IsDepthStencil() bool { return i.Caps&(CapDepth|CapStencil) != 0 }

// CopyCompatible reports whether the format can be the endpoint of a
// buffer image copy: it must have a defined per-block byte size.
func (i Info) CopyCompatible() bool { return i.BytesPerBlock != 0 }

const (
	colorCaps   = CapSampled | CapFilterable | CapRenderable | CapBlendable | CapMultisample | CapResolve
	intCaps     = CapSampled | CapRenderable | CapMultisample
	sampledOnly = CapSampled | CapFilterable
)

var infos = [formatCount]Info{
	Undefined: {},

	R8Unorm: {1, 1, 1, colorCaps},
	R8Snorm: {1, 1, 1, sampledOnly},
	R8Uint:  {1, 1, 1, intCaps},
	R8Sint:  {1, 1, 1, intCaps},

	R16Uint:  {1, 1, 2, intCaps},
	R16Sint:  {1, 1, 2, intCaps},
	R16Float: {1, 1, 2, colorCaps},
	RG8Unorm: {1, 1, 2, colorCaps},
	RG8Snorm: {1, 1, 2, sampledOnly},
	RG8Uint:  {1, 1, 2, intCaps},
	RG8Sint:  {1, 1, 2, intCaps},

	R32Uint:        {1, 1, 4, (intCaps &^ CapMultisample) | CapStorage},
	R32Sint:        {1, 1, 4, (intCaps &^ CapMultisample) | CapStorage},
	R32Float:       {1, 1, 4, CapSampled | CapRenderable | CapStorage | CapMultisample},
	RG16Uint:       {1, 1, 4, intCaps},
	RG16Sint:       {1, 1, 4, intCaps},
	RG16Float:      {1, 1, 4, colorCaps},
	RGBA8Unorm:     {1, 1, 4, colorCaps | CapStorage},
	RGBA8UnormSrgb: {1, 1, 4, colorCaps},
	RGBA8Snorm:     {1, 1, 4, sampledOnly | CapStorage},
	RGBA8Uint:      {1, 1, 4, intCaps | CapStorage},
	RGBA8Sint:      {1, 1, 4, intCaps | CapStorage},
	BGRA8Unorm:     {1, 1, 4, colorCaps},
	BGRA8UnormSrgb: {1, 1, 4, colorCaps},
	RGB10A2Unorm:   {1, 1, 4, colorCaps},
	RG11B10Ufloat:  {1, 1, 4, sampledOnly},

	RG32Uint:    {1, 1, 8, (intCaps &^ CapMultisample) | CapStorage},
	RG32Sint:    {1, 1, 8, (intCaps &^ CapMultisample) | CapStorage},
	RG32Float:   {1, 1, 8, CapSampled | CapRenderable | CapStorage},
	RGBA16Uint:  {1, 1, 8, intCaps | CapStorage},
	RGBA16Sint:  {1, 1, 8, intCaps | CapStorage},
	RGBA16Float: {1, 1, 8, colorCaps | CapStorage},

	RGBA32Uint:  {1, 1, 16, (intCaps &^ CapMultisample) | CapStorage},
	RGBA32Sint:  {1, 1, 16, (intCaps &^ CapMultisample) | CapStorage},
	RGBA32Float: {1, 1, 16, CapSampled | CapRenderable | CapStorage},

	Stencil8:            {1, 1, 1, CapSampled | CapRenderable | CapMultisample | CapStencil},
	Depth16Unorm:        {1, 1, 2, CapSampled | CapRenderable | CapMultisample | CapDepth},
	Depth24Plus:         {1, 1, 0, CapSampled | CapRenderable | CapMultisample | CapDepth},
	Depth24PlusStencil8: {1, 1, 0, CapSampled | CapRenderable | CapMultisample | CapDepth | CapStencil},
	Depth32Float:        {1, 1, 4, CapSampled | CapRenderable | CapMultisample | CapDepth},

	BC1RGBAUnorm:     {4, 4, 8, sampledOnly},
	BC1RGBAUnormSrgb: {4, 4, 8, sampledOnly},
	BC2RGBAUnorm:     {4, 4, 16, sampledOnly},
	BC2RGBAUnormSrgb: {4, 4, 16, sampledOnly},
	BC3RGBAUnorm:     {4, 4, 16, sampledOnly},
	BC3RGBAUnormSrgb: {4, 4, 16, sampledOnly},
	BC4RUnorm:        {4, 4, 8, sampledOnly},
	BC4RSnorm:        {4, 4, 8, sampledOnly},
	BC5RGUnorm:       {4, 4, 16, sampledOnly},
	BC5RGSnorm:       {4, 4, 16, sampledOnly},
	BC6HRGBUfloat:    {4, 4, 16, sampledOnly},
	BC6HRGBFloat:     {4, 4, 16, sampledOnly},
	BC7RGBAUnorm:     {4, 4, 16, sampledOnly},
	BC7RGBAUnormSrgb: {4, 4, 16, sampledOnly},
}

var names = [formatCount]string{
	Undefined:           "undefined",
	R8Unorm:             "r8unorm",
	R8Snorm:             "r8snorm",
	R8Uint:              "r8uint",
	R8Sint:              "r8sint",
	R16Uint:             "r16uint",
	R16Sint:             "r16sint",
	R16Float:            "r16float",
	RG8Unorm:            "rg8unorm",
	RG8Snorm:            "rg8snorm",
	RG8Uint:             "rg8uint",
	RG8Sint:             "rg8sint",
	R32Uint:             "r32uint",
	R32Sint:             "r32sint",
	R32Float:            "r32float",
	RG16Uint:            "rg16uint",
	RG16Sint:            "rg16sint",
	RG16Float:           "rg16float",
	RGBA8Unorm:          "rgba8unorm",
	RGBA8UnormSrgb:      "rgba8unorm-srgb",
	RGBA8Snorm:          "rgba8snorm",
	RGBA8Uint:           "rgba8uint",
	RGBA8Sint:           "rgba8sint",
	BGRA8Unorm:          "bgra8unorm",
	BGRA8UnormSrgb:      "bgra8unorm-srgb",
	RGB10A2Unorm:        "rgb10a2unorm",
	RG11B10Ufloat:       "rg11b10ufloat",
	RG32Uint:            "rg32uint",
	RG32Sint:            "rg32sint",
	RG32Float:           "rg32float",
	RGBA16Uint:          "rgba16uint",
	RGBA16Sint:          "rgba16sint",
	RGBA16Float:         "rgba16float",
	RGBA32Uint:          "rgba32uint",
	RGBA32Sint:          "rgba32sint",
	RGBA32Float:         "rgba32float",
	Stencil8:            "stencil8",
	Depth16Unorm:        "depth16unorm",
	Depth24Plus:         "depth24plus",
	Depth24PlusStencil8: "depth24plus-stencil8",
	Depth32Float:        "depth32float",
	BC1RGBAUnorm:        "bc1-rgba-unorm",
	BC1RGBAUnormSrgb:    "bc1-rgba-unorm-srgb",
	BC2RGBAUnorm:        "bc2-rgba-unorm",
	BC2RGBAUnormSrgb:    "bc2-rgba-unorm-srgb",
	BC3RGBAUnorm:        "bc3-rgba-unorm",
	BC3RGBAUnormSrgb:    "bc3-rgba-unorm-srgb",
	BC4RUnorm:           "bc4-r-unorm",
	BC4RSnorm:           "bc4-r-snorm",
	BC5RGUnorm:          "bc5-rg-unorm",
	BC5RGSnorm:          "bc5-rg-snorm",
	BC6HRGBUfloat:       "bc6h-rgb-ufloat",
	BC6HRGBFloat:        "bc6h-rgb-float",
	BC7RGBAUnorm:        "bc7-rgba-unorm",
	BC7RGBAUnormSrgb:    "bc7-rgba-unorm-srgb",
}

// Get returns the capability info for f. Unknown values report as Undefined.
func Get(f Format) Info {
	if f >= formatCount {
		return infos[Undefined]
	}
	return infos[f]
}

// String returns the WebGPU-style name of the format.
func (f Format) String() string {
	if f >= formatCount {
		return fmt.Sprintf("Format(%d)", uint32(f))
	}
	return names[f]
}

// All returns every defined format except Undefined, in declaration order.
func All() []Format {
	out := make([]Format, 0, formatCount-1)
	for f := Format(1); f < formatCount; f++ {
		out = append(out, f)
	}
	return out
}
