package vegetation

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ChannelOrder describes how the channels of a source pixel are laid out.
type ChannelOrder int

const (
	OrderRGB ChannelOrder = iota
	OrderBGR
	OrderRGBA
	OrderBGRA
)

// String returns the conventional name of the order, e.g. "RGBA".
func (o ChannelOrder) String() string {
	switch o {
	case OrderRGB:
		return "RGB"
	case OrderBGR:
		return "BGR"
	case OrderRGBA:
		return "RGBA"
	case OrderBGRA:
		return "BGRA"
	default:
		return fmt.Sprintf("ChannelOrder(%d)", int(o))
	}
}

// Channels returns the number of interleaved channels per pixel, or 0 for an
// unknown order. Alpha, when present, is always the last channel.
func (o ChannelOrder) Channels() int {
	switch o {
	case OrderRGB, OrderBGR:
		return 3
	case OrderRGBA, OrderBGRA:
		return 4
	default:
		return 0
	}
}

// offsets returns the index of the red, green and blue channel within a pixel.
func (o ChannelOrder) offsets() (r, g, b int) {
	switch o {
	case OrderBGR, OrderBGRA:
		return 2, 1, 0
	default:
		return 0, 1, 2
	}
}

// Image is a row-major buffer of interleaved 8-bit channels.
//
// The same type carries decoded color images (3 or 4 channels, layout given
// by a ChannelOrder) and HSV images (always 3 channels: H, S, V).
type Image struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// NewImage allocates a zeroed image.
func NewImage(width, height, channels int) *Image {
	return &Image{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}
}

// Area returns Width*Height, or 0 when either dimension is not positive.
func (img *Image) Area() int {
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return 0
	}
	return img.Width * img.Height
}

// At returns the channels of the pixel at (x, y). The slice aliases Pix.
func (img *Image) At(x, y int) []uint8 {
	i := (y*img.Width + x) * img.Channels
	return img.Pix[i : i+img.Channels]
}

// FromImage copies any decoded Go image into an independently owned RGBA
// buffer. Color channels are straight (not alpha-premultiplied) so dropping
// alpha later leaves the original color intact.
func FromImage(src image.Image) (*Image, ChannelOrder) {
	nrgba := imaging.Clone(src)
	b := nrgba.Bounds()
	return &Image{
		Width:    b.Dx(),
		Height:   b.Dy(),
		Channels: 4,
		Pix:      nrgba.Pix,
	}, OrderRGBA
}
