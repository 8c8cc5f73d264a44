package vegetation

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

// defaultGreen mirrors the slider defaults of the detection UI.
var defaultGreen = NewColorRange(35, 85, 50, 255, 50, 255)

// newHSVImage builds a 3-channel HSV image from a flat list of triples.
func newHSVImage(width, height int, pixels ...[3]uint8) *Image {
	img := NewImage(width, height, 3)
	for i, p := range pixels {
		copy(img.Pix[i*3:], p[:])
	}
	return img
}

// randomHSVImage fills an image with reproducible values inside the HSV domain.
func randomHSVImage(width, height int, seed int64) *Image {
	rng := rand.New(rand.NewSource(seed))
	img := NewImage(width, height, 3)
	for p := 0; p < img.Area(); p++ {
		img.Pix[p*3] = uint8(rng.Intn(MaxHue + 1))
		img.Pix[p*3+1] = uint8(rng.Intn(MaxSaturation + 1))
		img.Pix[p*3+2] = uint8(rng.Intn(MaxValue + 1))
	}
	return img
}

func fourColorImage() *Image {
	return newHSVImage(2, 2,
		[3]uint8{60, 255, 255}, // green
		[3]uint8{0, 255, 255},  // red
		[3]uint8{0, 0, 0},      // black
		[3]uint8{0, 0, 255},    // white
	)
}

func TestSegment_FourColorScenario(t *testing.T) {
	mask, metrics, err := Segment(fourColorImage(), defaultGreen)
	require.NoError(t, err)

	assert.Equal(t, []uint8{255, 0, 0, 0}, mask.Pix)
	assert.Equal(t, 1, metrics.IncludedPixels)
	assert.Equal(t, 4, metrics.TotalPixels)
	assert.InDelta(t, 25.0, metrics.Percentage, 1e-9)
	assert.Equal(t, "1 of 4 pixels (25.00 %)", metrics.String())
}

func TestDetect_FourColorScenarioFromRGB(t *testing.T) {
	src := newRGBImage(2, 2,
		[3]uint8{0, 255, 0},
		[3]uint8{255, 0, 0},
		[3]uint8{0, 0, 0},
		[3]uint8{255, 255, 255},
	)

	mask, metrics, err := Detect(src, OrderRGB, defaultGreen)
	require.NoError(t, err)
	assert.Equal(t, []uint8{255, 0, 0, 0}, mask.Pix)
	assert.Equal(t, NewMetrics(1, 4), metrics)
}

func TestSegment_FullRange(t *testing.T) {
	img := randomHSVImage(17, 9, 1)

	mask, metrics, err := Segment(img, FullRange())
	require.NoError(t, err)
	assert.Equal(t, img.Area(), metrics.IncludedPixels)
	assert.Equal(t, img.Area(), metrics.TotalPixels)
	assert.InDelta(t, 100.0, metrics.Percentage, 1e-9)
	for _, p := range mask.Pix {
		require.Equal(t, Included, p)
	}
}

func TestSegment_MaskShapeAndValues(t *testing.T) {
	img := randomHSVImage(31, 13, 2)

	mask, metrics, err := Segment(img, defaultGreen)
	require.NoError(t, err)
	assert.Equal(t, img.Width, mask.Width)
	assert.Equal(t, img.Height, mask.Height)
	require.Len(t, mask.Pix, img.Area())

	included := 0
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			v := mask.At(x, y)
			require.True(t, v == Included || v == Excluded, "mask value %d at (%d,%d)", v, x, y)

			p := img.At(x, y)
			assert.Equal(t, defaultGreen.Contains(p[0], p[1], p[2]), v == Included)
			if v == Included {
				included++
			}
		}
	}
	assert.Equal(t, included, metrics.IncludedPixels)
	assert.LessOrEqual(t, metrics.IncludedPixels, metrics.TotalPixels)
	assert.InDelta(t, float64(included)/float64(img.Area())*100, metrics.Percentage, 1e-9)
}

func TestSegment_PerChannelNotDistance(t *testing.T) {
	// Hue in range, saturation one below the lower bound.
	img := newHSVImage(1, 1, [3]uint8{60, 49, 200})

	_, metrics, err := Segment(img, defaultGreen)
	require.NoError(t, err)
	assert.Equal(t, 0, metrics.IncludedPixels)
}

func TestSegment_Idempotent(t *testing.T) {
	img := randomHSVImage(40, 25, 3)

	mask1, metrics1, err := Segment(img, defaultGreen)
	require.NoError(t, err)
	mask2, metrics2, err := Segment(img, defaultGreen)
	require.NoError(t, err)

	assert.Equal(t, mask1, mask2)
	assert.Equal(t, metrics1, metrics2)
}

func TestSegment_MonotonicWidening(t *testing.T) {
	img := randomHSVImage(64, 64, 4)
	rng := rand.New(rand.NewSource(5))

	for i := 0; i < 50; i++ {
		base := NewColorRange(
			rng.Intn(90), 90+rng.Intn(90),
			rng.Intn(128), 128+rng.Intn(128),
			rng.Intn(128), 128+rng.Intn(128),
		)
		wider := base
		wider.Lower.H -= rng.Intn(base.Lower.H + 1)
		wider.Upper.S += rng.Intn(MaxSaturation - base.Upper.S + 1)
		wider.Lower.V -= rng.Intn(base.Lower.V + 1)

		_, narrow, err := Segment(img, base)
		require.NoError(t, err)
		_, wide, err := Segment(img, wider)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, wide.IncludedPixels, narrow.IncludedPixels, "base %s wider %s", base, wider)
	}
}

func TestSegment_DegenerateRange(t *testing.T) {
	img := newHSVImage(3, 1,
		[3]uint8{60, 200, 100},
		[3]uint8{60, 200, 101},
		[3]uint8{60, 200, 100},
	)
	exact := NewColorRange(60, 60, 200, 200, 100, 100)

	mask, metrics, err := Segment(img, exact)
	require.NoError(t, err)
	assert.Equal(t, []uint8{255, 0, 255}, mask.Pix)
	assert.Equal(t, 2, metrics.IncludedPixels)
}

func TestSegment_InvertedRange(t *testing.T) {
	img := randomHSVImage(20, 20, 6)

	tests := []struct {
		name string
		r    ColorRange
	}{
		{"hue inverted", NewColorRange(170, 10, 0, 255, 0, 255)},
		{"saturation inverted", NewColorRange(0, 179, 200, 100, 0, 255)},
		{"value inverted", NewColorRange(0, 179, 0, 255, 1, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, tt.r.Inverted())
			mask, metrics, err := Segment(img, tt.r)
			require.NoError(t, err)
			assert.Equal(t, 0, metrics.IncludedPixels)
			assert.Equal(t, 0, mask.CountNonZero())
			assert.Equal(t, img.Area(), metrics.TotalPixels)
		})
	}
}

func TestSegment_DimensionMismatch(t *testing.T) {
	tests := []struct {
		name string
		img  *Image
	}{
		{"nil image", nil},
		{"zero area", &Image{Width: 0, Height: 0, Channels: 3}},
		{"four channels", NewImage(2, 2, 4)},
		{"short buffer", &Image{Width: 2, Height: 2, Channels: 3, Pix: make([]uint8, 11)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mask, _, err := Segment(tt.img, defaultGreen)
			require.Error(t, err)
			assert.Nil(t, mask)

			var mismatch *DimensionMismatchError
			assert.True(t, errors.As(err, &mismatch), "want *DimensionMismatchError, got %T", err)
		})
	}
}

func TestSegment_InvalidRange(t *testing.T) {
	img := fourColorImage()

	tests := []struct {
		name    string
		r       ColorRange
		wantErr int
	}{
		{"hue above 179", NewColorRange(0, 180, 0, 255, 0, 255), 1},
		{"negative saturation", NewColorRange(0, 179, -1, 255, 0, 255), 1},
		{"value above 255", NewColorRange(0, 179, 0, 255, 0, 256), 1},
		{"several violations", NewColorRange(-1, 200, 0, 300, -5, 255), 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mask, _, err := Segment(img, tt.r)
			require.Error(t, err)
			assert.Nil(t, mask)
			assert.Len(t, multierr.Errors(err), tt.wantErr)

			var invalid *InvalidRangeError
			require.True(t, errors.As(err, &invalid), "want *InvalidRangeError, got %T", err)
			assert.NotEmpty(t, invalid.Channel)
		})
	}
}

func TestColorRange_Validate(t *testing.T) {
	assert.NoError(t, defaultGreen.Validate())
	assert.NoError(t, FullRange().Validate())
	assert.NoError(t, NewColorRange(85, 35, 255, 50, 255, 50).Validate(), "inverted bounds are valid")

	err := NewColorRange(0, 179, 0, 255, 0, 999).Validate()
	var invalid *InvalidRangeError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "upper", invalid.Bound)
	assert.Equal(t, "V", invalid.Channel)
	assert.Equal(t, 999, invalid.Value)
	assert.Equal(t, "invalid range: upper V=999 outside [0,255]", invalid.Error())
}

func TestNewMetrics_ZeroTotal(t *testing.T) {
	m := NewMetrics(0, 0)
	assert.Equal(t, 0.0, m.Percentage)
	assert.Equal(t, "0 of 0 pixels (0.00 %)", m.String())
}

func TestMask_Gray(t *testing.T) {
	mask, _, err := Segment(fourColorImage(), defaultGreen)
	require.NoError(t, err)

	gray := mask.Gray()
	assert.Equal(t, 2, gray.Bounds().Dx())
	assert.Equal(t, 2, gray.Bounds().Dy())
	assert.Equal(t, uint8(255), gray.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(0), gray.GrayAt(1, 1).Y)
}

func TestBackends(t *testing.T) {
	assert.Contains(t, BackendNames(), DefaultBackend)

	b, err := LookupBackend(DefaultBackend)
	require.NoError(t, err)
	assert.Equal(t, DefaultBackend, b.Name())

	src := newRGBImage(1, 1, [3]uint8{0, 255, 0})
	_, metrics, err := b.Detect(src, OrderRGB, defaultGreen)
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.IncludedPixels)

	_, err = LookupBackend("does-not-exist")
	assert.Error(t, err)
}
