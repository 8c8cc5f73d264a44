// Package vegetation classifies image pixels as vegetation using a bounded
// HSV color range and reports how much of the image was selected.
//
// The package is a pair of pure functions used in sequence:
//
//  1. ConvertToHSV turns a decoded color image into an 8-bit HSV image.
//  2. Segment tests every HSV pixel against a ColorRange, producing a binary
//     Mask and pixel-count Metrics.
//
// # HSV Encoding
//
// HSV values use the common 8-bit convention:
//   - H: 0-179 (degrees divided by two, so the hue circle wraps at 180)
//   - S: 0-255
//   - V: 0-255
//
// # Range Semantics
//
// A pixel is included when each channel independently lies within the
// inclusive [Lower, Upper] bounds. There is no hue wrap-around: a range whose
// lower hue is above its upper hue matches nothing, as does any inverted
// channel. Bounds outside the channel domains are rejected with
// InvalidRangeError.
//
// # Thread Safety
//
// Every function is stateless. Inputs are never mutated and each call
// allocates fresh output buffers, so independent images can be processed
// concurrently. Rows of a single image are processed in parallel internally;
// the result does not depend on scheduling.
//
// # Error Handling
//
// Errors are returned as typed values that can be matched with errors.As:
//   - InvalidImageError: malformed or empty source image
//   - DimensionMismatchError: zero-area or mis-shaped HSV image
//   - InvalidRangeError: bound component outside its domain
package vegetation
