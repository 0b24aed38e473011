package tgpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/tgpu/driver"
	"github.com/gogpu/tgpu/format"
)

// ErrUnsupportedViewFormat is returned by CreateView when the requested
// view format was not listed in the texture's ViewFormats at creation.
var ErrUnsupportedViewFormat = errors.New("tgpu: view format not declared at texture creation")

// TextureDescriptor describes a texture allocation.
type TextureDescriptor struct {
	Label         string
	Width         uint32
	Height        uint32
	Depth         uint32
	MipLevelCount uint32
	SampleCount   uint32
	Dimension     gputypes.TextureDimension
	Format        format.Format
	Usage         TextureUsage
	// ViewFormats lists additional formats views may reinterpret the
	// texture as. The texture's own format is always allowed.
	ViewFormats []format.Format
}

// Texture is a typed texture together with the layout data its views and
// copies are validated against.
type Texture struct {
	dev    *Device
	handle driver.Texture
	id     uint64
	label  string

	width     uint32
	height    uint32
	depth     uint32
	mipLevels uint32
	samples   uint32
	dimension gputypes.TextureDimension
	format    format.Format
	usage     TextureUsage

	viewFormats []format.Format

	mu        sync.Mutex
	destroyed bool
}

// CreateTexture creates a texture. Zero Depth, MipLevelCount and
// SampleCount default to 1.
func (d *Device) CreateTexture(desc *TextureDescriptor) (*Texture, error) {
	if desc.Width == 0 || desc.Height == 0 {
		panic("tgpu: texture dimensions must be at least 1")
	}
	depth := desc.Depth
	if depth == 0 {
		depth = 1
	}
	mips := desc.MipLevelCount
	if mips == 0 {
		mips = 1
	}
	samples := desc.SampleCount
	if samples == 0 {
		samples = 1
	}
	if desc.Format == format.Undefined {
		panic("tgpu: texture format must be set")
	}
	info := format.Get(desc.Format)
	if desc.Width%info.BlockWidth != 0 || desc.Height%info.BlockHeight != 0 {
		panic(fmt.Sprintf("tgpu: texture size %dx%d is not a multiple of the %s block size %dx%d",
			desc.Width, desc.Height, desc.Format, info.BlockWidth, info.BlockHeight))
	}
	if mips > 1 {
		if m := maxMipLevels(desc.Width, desc.Height, depth); mips > m {
			panic(fmt.Sprintf("tgpu: %d mip levels exceed the maximum %d for a %dx%dx%d texture",
				mips, m, desc.Width, desc.Height, depth))
		}
	}
	if samples > 1 {
		if !info.Caps.Contains(format.CapMultisample) {
			panic(fmt.Sprintf("tgpu: format %s does not support multisampling", desc.Format))
		}
		if mips > 1 {
			panic("tgpu: a multisampled texture cannot have mip levels")
		}
	}

	handle, err := d.dev.CreateTexture(&driver.TextureDescriptor{
		Label:         desc.Label,
		Size:          gputypes.Extent3D{Width: desc.Width, Height: desc.Height, DepthOrArrayLayers: depth},
		MipLevelCount: mips,
		SampleCount:   samples,
		Dimension:     desc.Dimension,
		Format:        desc.Format,
		Usage:         desc.Usage,
		ViewFormats:   desc.ViewFormats,
	})
	if err != nil {
		return nil, fmt.Errorf("tgpu: create texture %q: %w", desc.Label, err)
	}
	t := &Texture{
		dev:         d,
		handle:      handle,
		id:          resourceIDs.Add(1),
		label:       desc.Label,
		width:       desc.Width,
		height:      desc.Height,
		depth:       depth,
		mipLevels:   mips,
		samples:     samples,
		dimension:   desc.Dimension,
		format:      desc.Format,
		usage:       desc.Usage,
		viewFormats: desc.ViewFormats,
	}
	Logger().Debug("tgpu: created texture",
		"label", desc.Label, "format", desc.Format.String(),
		"width", desc.Width, "height", desc.Height, "mips", mips)
	return t, nil
}

// maxMipLevels returns floor(log2(max dimension)) + 1.
func maxMipLevels(w, h, d uint32) uint32 {
	m := max(w, max(h, d))
	var n uint32
	for m > 0 {
		n++
		m >>= 1
	}
	return n
}

// Format returns the texture's storage format.
func (t *Texture) Format() format.Format { return t.format }

// Width returns the level-0 width in texels.
func (t *Texture) Width() uint32 { return t.width }

// Height returns the level-0 height in texels.
func (t *Texture) Height() uint32 { return t.height }

// Depth returns the depth or array layer count.
func (t *Texture) Depth() uint32 { return t.depth }

// MipLevelCount returns the number of mip levels.
func (t *Texture) MipLevelCount() uint32 { return t.mipLevels }

// SampleCount returns the number of samples per texel.
func (t *Texture) SampleCount() uint32 { return t.samples }

// Usage returns the texture's usage flags.
func (t *Texture) Usage() TextureUsage { return t.usage }

// Label returns the texture's debug label.
func (t *Texture) Label() string { return t.label }

// mipExtent returns the size of the given mip level.
func (t *Texture) mipExtent(level uint32) (w, h, d uint32) {
	w = max(t.width>>level, 1)
	h = max(t.height>>level, 1)
	d = t.depth
	if t.dimension != gputypes.TextureDimension2D {
		d = max(t.depth>>level, 1)
	}
	return w, h, d
}

func (t *Texture) checkAlive() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.destroyed {
		panic(fmt.Sprintf("tgpu: use of destroyed texture %q", t.label))
	}
}

// Destroy releases the texture. Views created from it must no longer be
// used. Idempotent.
func (t *Texture) Destroy() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.destroyed {
		return
	}
	t.destroyed = true
	t.handle.Destroy()
}

// TextureViewDescriptor selects a subresource window and optionally a
// reinterpreting format for a view. Zero MipLevelCount or
// ArrayLayerCount means all remaining levels or layers.
type TextureViewDescriptor struct {
	Label           string
	Format          format.Format
	Dimension       gputypes.TextureViewDimension
	Aspect          gputypes.TextureAspect
	BaseMipLevel    uint32
	MipLevelCount   uint32
	BaseArrayLayer  uint32
	ArrayLayerCount uint32
}

// TextureView is a view over a texture subresource window. It carries
// the format and level-0 extent of its window so that render pass
// attachment shapes can be checked without driver round trips.
type TextureView struct {
	tex    *Texture
	handle driver.TextureView
	id     uint64

	format  format.Format
	width   uint32
	height  uint32
	samples uint32
}

// CreateView creates a view over a window of the texture. The window
// must lie inside the texture's levels and layers; violations panic. A
// reinterpreting Format that was not declared in the texture's
// ViewFormats returns ErrUnsupportedViewFormat.
func (t *Texture) CreateView(desc *TextureViewDescriptor) (*TextureView, error) {
	t.checkAlive()
	f := desc.Format
	if f == format.Undefined {
		f = t.format
	} else if f != t.format {
		ok := false
		for _, vf := range t.viewFormats {
			if vf == f {
				ok = true
				break
			}
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s view of a %s texture", ErrUnsupportedViewFormat, f, t.format)
		}
	}

	mips := desc.MipLevelCount
	if mips == 0 {
		if desc.BaseMipLevel >= t.mipLevels {
			panic(fmt.Sprintf("tgpu: base mip level %d is outside the texture's %d levels",
				desc.BaseMipLevel, t.mipLevels))
		}
		mips = t.mipLevels - desc.BaseMipLevel
	}
	if uint64(desc.BaseMipLevel)+uint64(mips) > uint64(t.mipLevels) {
		panic(fmt.Sprintf("tgpu: mip levels [%d, %d) are outside the texture's %d levels",
			desc.BaseMipLevel, uint64(desc.BaseMipLevel)+uint64(mips), t.mipLevels))
	}
	layers := desc.ArrayLayerCount
	if layers == 0 {
		if desc.BaseArrayLayer >= t.depth {
			panic(fmt.Sprintf("tgpu: base array layer %d is outside the texture's %d layers",
				desc.BaseArrayLayer, t.depth))
		}
		layers = t.depth - desc.BaseArrayLayer
	}
	if uint64(desc.BaseArrayLayer)+uint64(layers) > uint64(t.depth) {
		panic(fmt.Sprintf("tgpu: array layers [%d, %d) are outside the texture's %d layers",
			desc.BaseArrayLayer, uint64(desc.BaseArrayLayer)+uint64(layers), t.depth))
	}

	handle, err := t.handle.CreateView(&driver.TextureViewDescriptor{
		Label:           desc.Label,
		Format:          f,
		Dimension:       desc.Dimension,
		Aspect:          desc.Aspect,
		BaseMipLevel:    desc.BaseMipLevel,
		MipLevelCount:   mips,
		BaseArrayLayer:  desc.BaseArrayLayer,
		ArrayLayerCount: layers,
	})
	if err != nil {
		return nil, fmt.Errorf("tgpu: create view of texture %q: %w", t.label, err)
	}
	w, h, _ := t.mipExtent(desc.BaseMipLevel)
	return &TextureView{
		tex:     t,
		handle:  handle,
		id:      resourceIDs.Add(1),
		format:  f,
		width:   w,
		height:  h,
		samples: t.samples,
	}, nil
}

// Format returns the view's format.
func (v *TextureView) Format() format.Format { return v.format }

// Width returns the width of the view's base mip level.
func (v *TextureView) Width() uint32 { return v.width }

// Height returns the height of the view's base mip level.
func (v *TextureView) Height() uint32 { return v.height }

// Texture returns the viewed texture.
func (v *TextureView) Texture() *Texture { return v.tex }
