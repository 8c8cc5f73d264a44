package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"

	"github.com/ironsheep/vegetation-tools-mcp/internal/vegetation"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// HSLColor is a color in HSL space for display.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees
	S int `json:"s"` // Saturation: 0-100 percent
	L int `json:"l"` // Lightness: 0-100 percent
}

// HSVColor is a color in the 8-bit HSV encoding used by detection ranges.
type HSVColor struct {
	H uint8 `json:"h"` // Hue: 0-179
	S uint8 `json:"s"` // Saturation: 0-255
	V uint8 `json:"v"` // Value: 0-255
}

// ColorResult contains a sampled color in several representations.
//
// HSV is the encoding to read when choosing detection bounds: a pixel is
// selected by a range exactly when its HSV triple lies inside it.
type ColorResult struct {
	Hex   string   `json:"hex"` // "#RRGGBB", alpha excluded
	RGB   RGBColor `json:"rgb"`
	Alpha uint8    `json:"alpha"`
	HSL   HSLColor `json:"hsl"`
	HSV   HSVColor `json:"hsv"`
}

// SampleColor returns the color at (x, y).
//
// Colors are read without alpha premultiplication, matching what the detector
// sees after dropping alpha.
func SampleColor(img image.Image, x, y int) (*ColorResult, error) {
	bounds := img.Bounds()
	if !(image.Point{X: x, Y: y}).In(bounds) {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}

	c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	h, s, v := vegetation.RGBToHSV(c.R, c.G, c.B)

	return &ColorResult{
		Hex:   fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B),
		RGB:   RGBColor{R: c.R, G: c.G, B: c.B},
		Alpha: c.A,
		HSL:   toHSL(c.R, c.G, c.B),
		HSV:   HSVColor{H: h, S: s, V: v},
	}, nil
}

// LabeledPoint is a pixel coordinate with an optional label such as
// "tree_canopy" or "lawn".
type LabeledPoint struct {
	X     int
	Y     int
	Label string
}

// LabeledColorResult combines a color sample with its location and label.
type LabeledColorResult struct {
	Label string      `json:"label,omitempty"`
	X     int         `json:"x"`
	Y     int         `json:"y"`
	Color ColorResult `json:"color"`
}

// MultiColorResult contains color samples in input order.
type MultiColorResult struct {
	Samples []LabeledColorResult `json:"samples"`
}

// SampleColorsMulti samples every point. Any out-of-bounds point fails the
// whole call.
func SampleColorsMulti(img image.Image, points []LabeledPoint) (*MultiColorResult, error) {
	results := make([]LabeledColorResult, 0, len(points))

	for _, p := range points {
		c, err := SampleColor(img, p.X, p.Y)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to sample point (%d,%d)", p.X, p.Y)
		}
		results = append(results, LabeledColorResult{
			Label: p.Label,
			X:     p.X,
			Y:     p.Y,
			Color: *c,
		})
	}

	return &MultiColorResult{Samples: results}, nil
}

func toHSL(r, g, b uint8) HSLColor {
	h, s, l := colorful.Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}.Hsl()
	return HSLColor{
		H: int(math.Round(h)) % 360,
		S: int(math.Round(s * 100)),
		L: int(math.Round(l * 100)),
	}
}
