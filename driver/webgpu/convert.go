//go:build cgo

package webgpu

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/tgpu/format"
)

// The driver contract speaks gputypes and format values; everything
// crossing into the binding is converted here. Unknown enum values fall
// through to the zero (undefined) value, which wgpu rejects with its
// own validation error.

// Extended buffer usage bits layered on top of the gputypes flags.
const (
	usageIndirect     gputypes.BufferUsage = 1 << 8
	usageQueryResolve gputypes.BufferUsage = 1 << 9
)

func bufferUsageToWGPU(u gputypes.BufferUsage) wgpu.BufferUsage {
	var out wgpu.BufferUsage
	if u&gputypes.BufferUsageMapRead != 0 {
		out |= wgpu.BufferUsageMapRead
	}
	if u&gputypes.BufferUsageMapWrite != 0 {
		out |= wgpu.BufferUsageMapWrite
	}
	if u&gputypes.BufferUsageCopySrc != 0 {
		out |= wgpu.BufferUsageCopySrc
	}
	if u&gputypes.BufferUsageCopyDst != 0 {
		out |= wgpu.BufferUsageCopyDst
	}
	if u&gputypes.BufferUsageIndex != 0 {
		out |= wgpu.BufferUsageIndex
	}
	if u&gputypes.BufferUsageVertex != 0 {
		out |= wgpu.BufferUsageVertex
	}
	if u&gputypes.BufferUsageUniform != 0 {
		out |= wgpu.BufferUsageUniform
	}
	if u&gputypes.BufferUsageStorage != 0 {
		out |= wgpu.BufferUsageStorage
	}
	if u&usageIndirect != 0 {
		out |= wgpu.BufferUsageIndirect
	}
	if u&usageQueryResolve != 0 {
		out |= wgpu.BufferUsageQueryResolve
	}
	return out
}

func textureUsageToWGPU(u gputypes.TextureUsage) wgpu.TextureUsage {
	var out wgpu.TextureUsage
	if u&gputypes.TextureUsageCopySrc != 0 {
		out |= wgpu.TextureUsageCopySrc
	}
	if u&gputypes.TextureUsageCopyDst != 0 {
		out |= wgpu.TextureUsageCopyDst
	}
	if u&gputypes.TextureUsageTextureBinding != 0 {
		out |= wgpu.TextureUsageTextureBinding
	}
	if u&gputypes.TextureUsageStorageBinding != 0 {
		out |= wgpu.TextureUsageStorageBinding
	}
	if u&gputypes.TextureUsageRenderAttachment != 0 {
		out |= wgpu.TextureUsageRenderAttachment
	}
	return out
}

var formatToWGPU = map[format.Format]wgpu.TextureFormat{
	format.R8Unorm:             wgpu.TextureFormatR8Unorm,
	format.R8Snorm:             wgpu.TextureFormatR8Snorm,
	format.R8Uint:              wgpu.TextureFormatR8Uint,
	format.R8Sint:              wgpu.TextureFormatR8Sint,
	format.R16Uint:             wgpu.TextureFormatR16Uint,
	format.R16Sint:             wgpu.TextureFormatR16Sint,
	format.R16Float:            wgpu.TextureFormatR16Float,
	format.RG8Unorm:            wgpu.TextureFormatRG8Unorm,
	format.RG8Snorm:            wgpu.TextureFormatRG8Snorm,
	format.RG8Uint:             wgpu.TextureFormatRG8Uint,
	format.RG8Sint:             wgpu.TextureFormatRG8Sint,
	format.R32Uint:             wgpu.TextureFormatR32Uint,
	format.R32Sint:             wgpu.TextureFormatR32Sint,
	format.R32Float:            wgpu.TextureFormatR32Float,
	format.RG16Uint:            wgpu.TextureFormatRG16Uint,
	format.RG16Sint:            wgpu.TextureFormatRG16Sint,
	format.RG16Float:           wgpu.TextureFormatRG16Float,
	format.RGBA8Unorm:          wgpu.TextureFormatRGBA8Unorm,
	format.RGBA8UnormSrgb:      wgpu.TextureFormatRGBA8UnormSrgb,
	format.RGBA8Snorm:          wgpu.TextureFormatRGBA8Snorm,
	format.RGBA8Uint:           wgpu.TextureFormatRGBA8Uint,
	format.RGBA8Sint:           wgpu.TextureFormatRGBA8Sint,
	format.BGRA8Unorm:          wgpu.TextureFormatBGRA8Unorm,
	format.BGRA8UnormSrgb:      wgpu.TextureFormatBGRA8UnormSrgb,
	format.RGB10A2Unorm:        wgpu.TextureFormatRGB10A2Unorm,
	format.RG11B10Ufloat:       wgpu.TextureFormatRG11B10Ufloat,
	format.RG32Uint:            wgpu.TextureFormatRG32Uint,
	format.RG32Sint:            wgpu.TextureFormatRG32Sint,
	format.RG32Float:           wgpu.TextureFormatRG32Float,
	format.RGBA16Uint:          wgpu.TextureFormatRGBA16Uint,
	format.RGBA16Sint:          wgpu.TextureFormatRGBA16Sint,
	format.RGBA16Float:         wgpu.TextureFormatRGBA16Float,
	format.RGBA32Uint:          wgpu.TextureFormatRGBA32Uint,
	format.RGBA32Sint:          wgpu.TextureFormatRGBA32Sint,
	format.RGBA32Float:         wgpu.TextureFormatRGBA32Float,
	format.Stencil8:            wgpu.TextureFormatStencil8,
	format.Depth16Unorm:        wgpu.TextureFormatDepth16Unorm,
	format.Depth24Plus:         wgpu.TextureFormatDepth24Plus,
	format.Depth24PlusStencil8: wgpu.TextureFormatDepth24PlusStencil8,
	format.Depth32Float:        wgpu.TextureFormatDepth32Float,
	format.BC1RGBAUnorm:        wgpu.TextureFormatBC1RGBAUnorm,
	format.BC1RGBAUnormSrgb:    wgpu.TextureFormatBC1RGBAUnormSrgb,
	format.BC2RGBAUnorm:        wgpu.TextureFormatBC2RGBAUnorm,
	format.BC2RGBAUnormSrgb:    wgpu.TextureFormatBC2RGBAUnormSrgb,
	format.BC3RGBAUnorm:        wgpu.TextureFormatBC3RGBAUnorm,
	format.BC3RGBAUnormSrgb:    wgpu.TextureFormatBC3RGBAUnormSrgb,
	format.BC4RUnorm:           wgpu.TextureFormatBC4RUnorm,
	format.BC4RSnorm:           wgpu.TextureFormatBC4RSnorm,
	format.BC5RGUnorm:          wgpu.TextureFormatBC5RGUnorm,
	format.BC5RGSnorm:          wgpu.TextureFormatBC5RGSnorm,
	format.BC6HRGBUfloat:       wgpu.TextureFormatBC6HRGBUfloat,
	format.BC6HRGBFloat:        wgpu.TextureFormatBC6HRGBFloat,
	format.BC7RGBAUnorm:        wgpu.TextureFormatBC7RGBAUnorm,
	format.BC7RGBAUnormSrgb:    wgpu.TextureFormatBC7RGBAUnormSrgb,
}

func textureDimensionToWGPU(d gputypes.TextureDimension) wgpu.TextureDimension {
	switch d {
	case gputypes.TextureDimension1D:
		return wgpu.TextureDimension1D
	case gputypes.TextureDimension3D:
		return wgpu.TextureDimension3D
	default:
		return wgpu.TextureDimension2D
	}
}

func viewDimensionToWGPU(d gputypes.TextureViewDimension) wgpu.TextureViewDimension {
	switch d {
	case gputypes.TextureViewDimension1D:
		return wgpu.TextureViewDimension1D
	case gputypes.TextureViewDimension2D:
		return wgpu.TextureViewDimension2D
	case gputypes.TextureViewDimension2DArray:
		return wgpu.TextureViewDimension2DArray
	case gputypes.TextureViewDimensionCube:
		return wgpu.TextureViewDimensionCube
	case gputypes.TextureViewDimensionCubeArray:
		return wgpu.TextureViewDimensionCubeArray
	case gputypes.TextureViewDimension3D:
		return wgpu.TextureViewDimension3D
	default:
		return wgpu.TextureViewDimensionUndefined
	}
}

func aspectToWGPU(a gputypes.TextureAspect) wgpu.TextureAspect {
	switch a {
	case gputypes.TextureAspectStencilOnly:
		return wgpu.TextureAspectStencilOnly
	case gputypes.TextureAspectDepthOnly:
		return wgpu.TextureAspectDepthOnly
	default:
		return wgpu.TextureAspectAll
	}
}

func loadOpToWGPU(op gputypes.LoadOp) wgpu.LoadOp {
	if op == gputypes.LoadOpLoad {
		return wgpu.LoadOpLoad
	}
	return wgpu.LoadOpClear
}

func storeOpToWGPU(op gputypes.StoreOp) wgpu.StoreOp {
	if op == gputypes.StoreOpDiscard {
		return wgpu.StoreOpDiscard
	}
	return wgpu.StoreOpStore
}

func compareToWGPU(f gputypes.CompareFunction) wgpu.CompareFunction {
	switch f {
	case gputypes.CompareFunctionNever:
		return wgpu.CompareFunctionNever
	case gputypes.CompareFunctionLess:
		return wgpu.CompareFunctionLess
	case gputypes.CompareFunctionEqual:
		return wgpu.CompareFunctionEqual
	case gputypes.CompareFunctionLessEqual:
		return wgpu.CompareFunctionLessEqual
	case gputypes.CompareFunctionGreater:
		return wgpu.CompareFunctionGreater
	case gputypes.CompareFunctionNotEqual:
		return wgpu.CompareFunctionNotEqual
	case gputypes.CompareFunctionGreaterEqual:
		return wgpu.CompareFunctionGreaterEqual
	case gputypes.CompareFunctionAlways:
		return wgpu.CompareFunctionAlways
	default:
		return wgpu.CompareFunctionUndefined
	}
}

func indexFormatToWGPU(f gputypes.IndexFormat) wgpu.IndexFormat {
	if f == gputypes.IndexFormatUint16 {
		return wgpu.IndexFormatUint16
	}
	return wgpu.IndexFormatUint32
}

func topologyToWGPU(t gputypes.PrimitiveTopology) wgpu.PrimitiveTopology {
	switch t {
	case gputypes.PrimitiveTopologyPointList:
		return wgpu.PrimitiveTopologyPointList
	case gputypes.PrimitiveTopologyLineList:
		return wgpu.PrimitiveTopologyLineList
	case gputypes.PrimitiveTopologyLineStrip:
		return wgpu.PrimitiveTopologyLineStrip
	case gputypes.PrimitiveTopologyTriangleStrip:
		return wgpu.PrimitiveTopologyTriangleStrip
	default:
		return wgpu.PrimitiveTopologyTriangleList
	}
}

func frontFaceToWGPU(f gputypes.FrontFace) wgpu.FrontFace {
	if f == gputypes.FrontFaceCW {
		return wgpu.FrontFaceCW
	}
	return wgpu.FrontFaceCCW
}

func cullModeToWGPU(m gputypes.CullMode) wgpu.CullMode {
	switch m {
	case gputypes.CullModeFront:
		return wgpu.CullModeFront
	case gputypes.CullModeBack:
		return wgpu.CullModeBack
	default:
		return wgpu.CullModeNone
	}
}

func stepModeToWGPU(m gputypes.VertexStepMode) wgpu.VertexStepMode {
	if m == gputypes.VertexStepModeInstance {
		return wgpu.VertexStepModeInstance
	}
	return wgpu.VertexStepModeVertex
}

func vertexFormatToWGPU(f gputypes.VertexFormat) wgpu.VertexFormat {
	switch f {
	case gputypes.VertexFormatUint8x2:
		return wgpu.VertexFormatUint8x2
	case gputypes.VertexFormatUint8x4:
		return wgpu.VertexFormatUint8x4
	case gputypes.VertexFormatSint8x2:
		return wgpu.VertexFormatSint8x2
	case gputypes.VertexFormatSint8x4:
		return wgpu.VertexFormatSint8x4
	case gputypes.VertexFormatUnorm8x2:
		return wgpu.VertexFormatUnorm8x2
	case gputypes.VertexFormatUnorm8x4:
		return wgpu.VertexFormatUnorm8x4
	case gputypes.VertexFormatSnorm8x2:
		return wgpu.VertexFormatSnorm8x2
	case gputypes.VertexFormatSnorm8x4:
		return wgpu.VertexFormatSnorm8x4
	case gputypes.VertexFormatUint16x2:
		return wgpu.VertexFormatUint16x2
	case gputypes.VertexFormatUint16x4:
		return wgpu.VertexFormatUint16x4
	case gputypes.VertexFormatSint16x2:
		return wgpu.VertexFormatSint16x2
	case gputypes.VertexFormatSint16x4:
		return wgpu.VertexFormatSint16x4
	case gputypes.VertexFormatUnorm16x2:
		return wgpu.VertexFormatUnorm16x2
	case gputypes.VertexFormatUnorm16x4:
		return wgpu.VertexFormatUnorm16x4
	case gputypes.VertexFormatSnorm16x2:
		return wgpu.VertexFormatSnorm16x2
	case gputypes.VertexFormatSnorm16x4:
		return wgpu.VertexFormatSnorm16x4
	case gputypes.VertexFormatFloat16x2:
		return wgpu.VertexFormatFloat16x2
	case gputypes.VertexFormatFloat16x4:
		return wgpu.VertexFormatFloat16x4
	case gputypes.VertexFormatFloat32:
		return wgpu.VertexFormatFloat32
	case gputypes.VertexFormatFloat32x2:
		return wgpu.VertexFormatFloat32x2
	case gputypes.VertexFormatFloat32x3:
		return wgpu.VertexFormatFloat32x3
	case gputypes.VertexFormatFloat32x4:
		return wgpu.VertexFormatFloat32x4
	case gputypes.VertexFormatUint32:
		return wgpu.VertexFormatUint32
	case gputypes.VertexFormatUint32x2:
		return wgpu.VertexFormatUint32x2
	case gputypes.VertexFormatUint32x3:
		return wgpu.VertexFormatUint32x3
	case gputypes.VertexFormatUint32x4:
		return wgpu.VertexFormatUint32x4
	case gputypes.VertexFormatSint32:
		return wgpu.VertexFormatSint32
	case gputypes.VertexFormatSint32x2:
		return wgpu.VertexFormatSint32x2
	case gputypes.VertexFormatSint32x3:
		return wgpu.VertexFormatSint32x3
	case gputypes.VertexFormatSint32x4:
		return wgpu.VertexFormatSint32x4
	default:
		return wgpu.VertexFormatUndefined
	}
}

func shaderStageToWGPU(s gputypes.ShaderStage) wgpu.ShaderStage {
	var out wgpu.ShaderStage
	if s&gputypes.ShaderStageVertex != 0 {
		out |= wgpu.ShaderStageVertex
	}
	if s&gputypes.ShaderStageFragment != 0 {
		out |= wgpu.ShaderStageFragment
	}
	if s&gputypes.ShaderStageCompute != 0 {
		out |= wgpu.ShaderStageCompute
	}
	return out
}

func bufferBindingTypeToWGPU(t gputypes.BufferBindingType) wgpu.BufferBindingType {
	switch t {
	case gputypes.BufferBindingTypeUniform:
		return wgpu.BufferBindingTypeUniform
	case gputypes.BufferBindingTypeStorage:
		return wgpu.BufferBindingTypeStorage
	case gputypes.BufferBindingTypeReadOnlyStorage:
		return wgpu.BufferBindingTypeReadOnlyStorage
	default:
		return wgpu.BufferBindingTypeUndefined
	}
}

func sampleTypeToWGPU(t gputypes.TextureSampleType) wgpu.TextureSampleType {
	switch t {
	case gputypes.TextureSampleTypeFloat:
		return wgpu.TextureSampleTypeFloat
	case gputypes.TextureSampleTypeUnfilterableFloat:
		return wgpu.TextureSampleTypeUnfilterableFloat
	case gputypes.TextureSampleTypeDepth:
		return wgpu.TextureSampleTypeDepth
	case gputypes.TextureSampleTypeSint:
		return wgpu.TextureSampleTypeSint
	case gputypes.TextureSampleTypeUint:
		return wgpu.TextureSampleTypeUint
	default:
		return wgpu.TextureSampleTypeUndefined
	}
}

func samplerBindingTypeToWGPU(t gputypes.SamplerBindingType) wgpu.SamplerBindingType {
	switch t {
	case gputypes.SamplerBindingTypeFiltering:
		return wgpu.SamplerBindingTypeFiltering
	case gputypes.SamplerBindingTypeNonFiltering:
		return wgpu.SamplerBindingTypeNonFiltering
	case gputypes.SamplerBindingTypeComparison:
		return wgpu.SamplerBindingTypeComparison
	default:
		return wgpu.SamplerBindingTypeUndefined
	}
}

func addressModeToWGPU(m gputypes.AddressMode) wgpu.AddressMode {
	switch m {
	case gputypes.AddressModeRepeat:
		return wgpu.AddressModeRepeat
	case gputypes.AddressModeMirrorRepeat:
		return wgpu.AddressModeMirrorRepeat
	default:
		return wgpu.AddressModeClampToEdge
	}
}

func filterModeToWGPU(m gputypes.FilterMode) wgpu.FilterMode {
	if m == gputypes.FilterModeLinear {
		return wgpu.FilterModeLinear
	}
	return wgpu.FilterModeNearest
}

func mipmapFilterToWGPU(m gputypes.FilterMode) wgpu.MipmapFilterMode {
	if m == gputypes.FilterModeLinear {
		return wgpu.MipmapFilterModeLinear
	}
	return wgpu.MipmapFilterModeNearest
}

func blendFactorToWGPU(f gputypes.BlendFactor) wgpu.BlendFactor {
	switch f {
	case gputypes.BlendFactorZero:
		return wgpu.BlendFactorZero
	case gputypes.BlendFactorOne:
		return wgpu.BlendFactorOne
	case gputypes.BlendFactorSrc:
		return wgpu.BlendFactorSrc
	case gputypes.BlendFactorOneMinusSrc:
		return wgpu.BlendFactorOneMinusSrc
	case gputypes.BlendFactorSrcAlpha:
		return wgpu.BlendFactorSrcAlpha
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return wgpu.BlendFactorOneMinusSrcAlpha
	case gputypes.BlendFactorDst:
		return wgpu.BlendFactorDst
	case gputypes.BlendFactorOneMinusDst:
		return wgpu.BlendFactorOneMinusDst
	case gputypes.BlendFactorDstAlpha:
		return wgpu.BlendFactorDstAlpha
	case gputypes.BlendFactorOneMinusDstAlpha:
		return wgpu.BlendFactorOneMinusDstAlpha
	case gputypes.BlendFactorSrcAlphaSaturated:
		return wgpu.BlendFactorSrcAlphaSaturated
	case gputypes.BlendFactorConstant:
		return wgpu.BlendFactorConstant
	case gputypes.BlendFactorOneMinusConstant:
		return wgpu.BlendFactorOneMinusConstant
	default:
		return wgpu.BlendFactorOne
	}
}

func blendOpToWGPU(op gputypes.BlendOperation) wgpu.BlendOperation {
	switch op {
	case gputypes.BlendOperationSubtract:
		return wgpu.BlendOperationSubtract
	case gputypes.BlendOperationReverseSubtract:
		return wgpu.BlendOperationReverseSubtract
	case gputypes.BlendOperationMin:
		return wgpu.BlendOperationMin
	case gputypes.BlendOperationMax:
		return wgpu.BlendOperationMax
	default:
		return wgpu.BlendOperationAdd
	}
}

func writeMaskToWGPU(m gputypes.ColorWriteMask) wgpu.ColorWriteMask {
	var out wgpu.ColorWriteMask
	if m&gputypes.ColorWriteMaskRed != 0 {
		out |= wgpu.ColorWriteMaskRed
	}
	if m&gputypes.ColorWriteMaskGreen != 0 {
		out |= wgpu.ColorWriteMaskGreen
	}
	if m&gputypes.ColorWriteMaskBlue != 0 {
		out |= wgpu.ColorWriteMaskBlue
	}
	if m&gputypes.ColorWriteMaskAlpha != 0 {
		out |= wgpu.ColorWriteMaskAlpha
	}
	return out
}

func colorToWGPU(c gputypes.Color) wgpu.Color {
	return wgpu.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

func extentToWGPU(e gputypes.Extent3D) wgpu.Extent3D {
	return wgpu.Extent3D{
		Width:              e.Width,
		Height:             e.Height,
		DepthOrArrayLayers: e.DepthOrArrayLayers,
	}
}

func originToWGPU(o gputypes.Origin3D) wgpu.Origin3D {
	return wgpu.Origin3D{X: o.X, Y: o.Y, Z: o.Z}
}
