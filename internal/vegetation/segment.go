package vegetation

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/parallel"
	"go.uber.org/multierr"
)

// Mask values.
const (
	Excluded uint8 = 0
	Included uint8 = 255
)

// ColorBound is one corner of an HSV range.
//
// Components are plain ints so out-of-domain input from callers can be
// represented and rejected rather than silently truncated.
type ColorBound struct {
	H int `json:"h"` // Hue: 0-179
	S int `json:"s"` // Saturation: 0-255
	V int `json:"v"` // Value: 0-255
}

// ColorRange is an inclusive, per-channel HSV range.
type ColorRange struct {
	Lower ColorBound `json:"lower"`
	Upper ColorBound `json:"upper"`
}

// NewColorRange builds a range from the six slider-style bounds.
func NewColorRange(hMin, hMax, sMin, sMax, vMin, vMax int) ColorRange {
	return ColorRange{
		Lower: ColorBound{H: hMin, S: sMin, V: vMin},
		Upper: ColorBound{H: hMax, S: sMax, V: vMax},
	}
}

// FullRange selects every pixel.
func FullRange() ColorRange {
	return NewColorRange(0, MaxHue, 0, MaxSaturation, 0, MaxValue)
}

// Validate checks every component against its channel domain. All violations
// are returned combined; each is an *InvalidRangeError.
//
// Lower above Upper is valid: the channel simply matches nothing.
func (r ColorRange) Validate() error {
	return multierr.Combine(
		r.Lower.validate("lower"),
		r.Upper.validate("upper"),
	)
}

func (b ColorBound) validate(which string) error {
	return multierr.Combine(
		checkComponent(which, "H", b.H, MaxHue),
		checkComponent(which, "S", b.S, MaxSaturation),
		checkComponent(which, "V", b.V, MaxValue),
	)
}

func checkComponent(which, channel string, value, max int) error {
	if value < 0 || value > max {
		return &InvalidRangeError{Bound: which, Channel: channel, Value: value, Max: max}
	}
	return nil
}

// Contains reports whether an HSV triple lies within the range on every
// channel.
func (r ColorRange) Contains(h, s, v uint8) bool {
	return r.Lower.H <= int(h) && int(h) <= r.Upper.H &&
		r.Lower.S <= int(s) && int(s) <= r.Upper.S &&
		r.Lower.V <= int(v) && int(v) <= r.Upper.V
}

// Inverted reports whether any channel has Lower above Upper.
func (r ColorRange) Inverted() bool {
	return r.Lower.H > r.Upper.H || r.Lower.S > r.Upper.S || r.Lower.V > r.Upper.V
}

// String formats the range as "H[35,85] S[50,255] V[50,255]".
func (r ColorRange) String() string {
	return fmt.Sprintf("H[%d,%d] S[%d,%d] V[%d,%d]",
		r.Lower.H, r.Upper.H, r.Lower.S, r.Upper.S, r.Lower.V, r.Upper.V)
}

// Mask is a single-channel classification buffer with values 0 or 255.
type Mask struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewMask allocates an all-excluded mask.
func NewMask(width, height int) *Mask {
	return &Mask{Width: width, Height: height, Pix: make([]uint8, width*height)}
}

// At returns the mask value at (x, y).
func (m *Mask) At(x, y int) uint8 {
	return m.Pix[y*m.Width+x]
}

// CountNonZero returns the number of included pixels.
func (m *Mask) CountNonZero() int {
	n := 0
	for _, p := range m.Pix {
		if p != Excluded {
			n++
		}
	}
	return n
}

// Gray returns the mask as a grayscale image (vegetation white). The image
// shares the mask's buffer.
func (m *Mask) Gray() *image.Gray {
	return &image.Gray{
		Pix:    m.Pix,
		Stride: m.Width,
		Rect:   image.Rect(0, 0, m.Width, m.Height),
	}
}

// Metrics summarizes a mask.
type Metrics struct {
	IncludedPixels int     `json:"included_pixels"`
	TotalPixels    int     `json:"total_pixels"`
	Percentage     float64 `json:"percentage"` // 0-100
}

// NewMetrics derives the percentage from the two counts. Percentage is 0 when
// total is 0.
func NewMetrics(included, total int) Metrics {
	m := Metrics{IncludedPixels: included, TotalPixels: total}
	if total > 0 {
		m.Percentage = float64(included) / float64(total) * 100
	}
	return m
}

// String formats metrics for display with a two-decimal percentage.
func (m Metrics) String() string {
	return fmt.Sprintf("%d of %d pixels (%.2f %%)", m.IncludedPixels, m.TotalPixels, m.Percentage)
}

// Segment classifies every pixel of an HSV image against r.
//
// Parameters:
//   - hsv: 3-channel HSV image as produced by ConvertToHSV.
//   - r: inclusive per-channel bounds. Inverted channels match nothing.
//
// Returns:
//   - *Mask: same dimensions as hsv, 255 where the pixel is in range, else 0.
//   - Metrics: included count, total count and percentage.
//   - error: *DimensionMismatchError for a nil, zero-area or mis-shaped image;
//     *InvalidRangeError (possibly several, combined) for out-of-domain bounds.
//
// Segment is deterministic: repeated calls with equal inputs return
// bit-identical results.
func Segment(hsv *Image, r ColorRange) (*Mask, Metrics, error) {
	if err := checkHSV(hsv); err != nil {
		return nil, Metrics{}, err
	}
	if err := r.Validate(); err != nil {
		return nil, Metrics{}, err
	}

	w := hsv.Width
	mask := NewMask(w, hsv.Height)

	if !r.Inverted() {
		parallel.Line(hsv.Height, func(start, end int) {
			for y := start; y < end; y++ {
				for x := 0; x < w; x++ {
					p := y*w + x
					if r.Contains(hsv.Pix[p*3], hsv.Pix[p*3+1], hsv.Pix[p*3+2]) {
						mask.Pix[p] = Included
					}
				}
			}
		})
	}

	return mask, NewMetrics(mask.CountNonZero(), hsv.Area()), nil
}

func checkHSV(hsv *Image) error {
	if hsv == nil {
		return &DimensionMismatchError{Reason: "nil image"}
	}
	if hsv.Area() == 0 {
		return &DimensionMismatchError{Reason: fmt.Sprintf("zero area (%dx%d)", hsv.Width, hsv.Height)}
	}
	if hsv.Channels != 3 {
		return &DimensionMismatchError{Reason: fmt.Sprintf("HSV image has %d channels, want 3", hsv.Channels)}
	}
	if len(hsv.Pix) != hsv.Area()*3 {
		return &DimensionMismatchError{Reason: fmt.Sprintf("pixel buffer holds %d bytes, want %d", len(hsv.Pix), hsv.Area()*3)}
	}
	return nil
}
