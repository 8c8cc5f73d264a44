package vegetation

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ChannelStats summarizes the distribution of one HSV channel.
type ChannelStats struct {
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	P05    int     `json:"p05"`
	P50    int     `json:"p50"`
	P95    int     `json:"p95"`
}

// HSVStats holds per-channel statistics of an HSV image.
//
// Sampling a patch that is known to be vegetation and reading its 5th and
// 95th percentiles gives a starting range for Segment.
type HSVStats struct {
	Pixels int          `json:"pixels"`
	H      ChannelStats `json:"h"`
	S      ChannelStats `json:"s"`
	V      ChannelStats `json:"v"`
}

// ComputeStats gathers per-channel statistics over every pixel of hsv.
//
// Returns *DimensionMismatchError under the same conditions as Segment.
func ComputeStats(hsv *Image) (*HSVStats, error) {
	if err := checkHSV(hsv); err != nil {
		return nil, err
	}

	n := hsv.Area()
	channels := [3][]float64{
		make([]float64, n),
		make([]float64, n),
		make([]float64, n),
	}
	for p := 0; p < n; p++ {
		for c := 0; c < 3; c++ {
			channels[c][p] = float64(hsv.Pix[p*3+c])
		}
	}

	return &HSVStats{
		Pixels: n,
		H:      channelStats(channels[0]),
		S:      channelStats(channels[1]),
		V:      channelStats(channels[2]),
	}, nil
}

// channelStats sorts x in place.
func channelStats(x []float64) ChannelStats {
	sort.Float64s(x)

	mean, std := stat.MeanStdDev(x, nil)
	if len(x) < 2 || math.IsNaN(std) {
		std = 0
	}

	return ChannelStats{
		Min:    int(floats.Min(x)),
		Max:    int(floats.Max(x)),
		Mean:   math.Round(mean*100) / 100,
		StdDev: math.Round(std*100) / 100,
		P05:    int(stat.Quantile(0.05, stat.Empirical, x, nil)),
		P50:    int(stat.Quantile(0.50, stat.Empirical, x, nil)),
		P95:    int(stat.Quantile(0.95, stat.Empirical, x, nil)),
	}
}

// SuggestRange returns the range spanning the 5th to 95th percentile of each
// channel.
func (s *HSVStats) SuggestRange() ColorRange {
	return NewColorRange(s.H.P05, s.H.P95, s.S.P05, s.S.P95, s.V.P05, s.V.P95)
}
