//go:build opencv

package vegetation

import (
	"fmt"

	"gocv.io/x/gocv"
)

// OpenCVBackend is the name under which the OpenCV backend registers.
const OpenCVBackend = "opencv"

func init() {
	RegisterBackend(opencvBackend{})
}

// opencvBackend runs cvtColor + inRange through gocv. Hue values can differ
// from the native backend by one step where OpenCV's fixed-point rounding
// disagrees with float rounding.
type opencvBackend struct{}

func (opencvBackend) Name() string { return OpenCVBackend }

func (opencvBackend) Detect(src *Image, order ChannelOrder, r ColorRange) (*Mask, Metrics, error) {
	if err := checkSource(src, order); err != nil {
		return nil, Metrics{}, err
	}
	if err := r.Validate(); err != nil {
		return nil, Metrics{}, err
	}

	rgb, err := gocv.NewMatFromBytes(src.Height, src.Width, gocv.MatTypeCV8UC3, packRGB(src, order))
	if err != nil {
		return nil, Metrics{}, fmt.Errorf("failed to wrap pixels: %w", err)
	}
	defer rgb.Close()

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(rgb, &hsv, gocv.ColorRGBToHSV)

	dst := gocv.NewMat()
	defer dst.Close()
	lb := gocv.NewScalar(float64(r.Lower.H), float64(r.Lower.S), float64(r.Lower.V), 0)
	ub := gocv.NewScalar(float64(r.Upper.H), float64(r.Upper.S), float64(r.Upper.V), 0)
	gocv.InRangeWithScalar(hsv, lb, ub, &dst)

	mask := &Mask{Width: src.Width, Height: src.Height, Pix: dst.ToBytes()}
	return mask, NewMetrics(gocv.CountNonZero(dst), src.Area()), nil
}

// packRGB copies src into a tightly packed 3-channel RGB buffer, dropping alpha.
func packRGB(src *Image, order ChannelOrder) []byte {
	ri, gi, bi := order.offsets()
	n := src.Channels
	out := make([]byte, src.Area()*3)
	for p := 0; p < src.Area(); p++ {
		px := src.Pix[p*n : p*n+n]
		out[p*3] = px[ri]
		out[p*3+1] = px[gi]
		out[p*3+2] = px[bi]
	}
	return out
}
