package vegetation

import (
	"fmt"
	"math"

	"github.com/anthonynsimon/bild/parallel"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Channel domains of the 8-bit HSV encoding.
const (
	MaxHue        = 179
	MaxSaturation = 255
	MaxValue      = 255
)

// ConvertToHSV converts a color image laid out per order into a new 3-channel
// HSV image of the same dimensions.
//
// Any alpha channel is discarded, not blended. The input is never modified.
//
// Returns *InvalidImageError if img is nil, has fewer than 3 channels, has
// zero area, or its buffer does not match its declared shape and order.
func ConvertToHSV(img *Image, order ChannelOrder) (*Image, error) {
	if err := checkSource(img, order); err != nil {
		return nil, err
	}

	ri, gi, bi := order.offsets()
	n := img.Channels
	w := img.Width
	out := NewImage(w, img.Height, 3)

	parallel.Line(img.Height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				p := y*w + x
				src := img.Pix[p*n : p*n+n]
				h, s, v := RGBToHSV(src[ri], src[gi], src[bi])
				out.Pix[p*3] = h
				out.Pix[p*3+1] = s
				out.Pix[p*3+2] = v
			}
		}
	})

	return out, nil
}

// RGBToHSV converts one 8-bit RGB triple to 8-bit HSV (H 0-179, S and V 0-255).
//
// Hue is the standard hexcone hue in degrees, halved and rounded; a result
// that rounds up to 180 folds back to 0. Saturation is (max-min)/max scaled to
// 255 (0 for black) and Value is max.
func RGBToHSV(r, g, b uint8) (h, s, v uint8) {
	c := colorful.Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}
	hf, sf, vf := c.Hsv()

	h8 := int(math.Round(hf / 2))
	if h8 > MaxHue {
		h8 -= MaxHue + 1
	}
	return uint8(h8), uint8(math.Round(sf * 255)), uint8(math.Round(vf * 255))
}

func checkSource(img *Image, order ChannelOrder) error {
	if img == nil {
		return &InvalidImageError{Reason: "nil image"}
	}
	if img.Channels < 3 {
		return &InvalidImageError{Reason: fmt.Sprintf("image has %d channels, need at least 3", img.Channels)}
	}
	if img.Area() == 0 {
		return &InvalidImageError{Reason: fmt.Sprintf("zero area (%dx%d)", img.Width, img.Height)}
	}
	want := order.Channels()
	if want == 0 {
		return &InvalidImageError{Reason: fmt.Sprintf("unknown channel order %s", order)}
	}
	if img.Channels != want {
		return &InvalidImageError{Reason: fmt.Sprintf("channel order %s expects %d channels, image has %d", order, want, img.Channels)}
	}
	if len(img.Pix) != img.Area()*img.Channels {
		return &InvalidImageError{Reason: fmt.Sprintf("pixel buffer holds %d bytes, want %d", len(img.Pix), img.Area()*img.Channels)}
	}
	return nil
}
