// Package imaging loads, samples, crops and renders images around the
// vegetation detector.
//
// The vegetation package works on raw channel buffers; this package is the
// bridge to Go's image.Image world: decoding files through a shared cache,
// sampling pixel colors in the encodings a user tunes ranges with, cropping
// a region of interest, and turning masks back into PNG output.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner.
// Regions use an inclusive top-left (X1,Y1) and exclusive bottom-right (X2,Y2).
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. All other functions are stateless and
// never modify their inputs.
package imaging
