package vegetation

import "fmt"

// InvalidImageError reports a source image that cannot be converted.
type InvalidImageError struct {
	Reason string
}

func (e *InvalidImageError) Error() string {
	return "invalid image: " + e.Reason
}

// DimensionMismatchError reports an HSV image whose shape cannot be segmented.
type DimensionMismatchError struct {
	Reason string
}

func (e *DimensionMismatchError) Error() string {
	return "dimension mismatch: " + e.Reason
}

// InvalidRangeError reports a single bound component outside its domain.
//
// When several components are out of range, Validate returns all of them
// combined; each one is still reachable with errors.As.
type InvalidRangeError struct {
	Bound   string // "lower" or "upper"
	Channel string // "H", "S" or "V"
	Value   int
	Max     int
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range: %s %s=%d outside [0,%d]", e.Bound, e.Channel, e.Value, e.Max)
}
