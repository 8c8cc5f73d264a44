// Package server implements the MCP (Model Context Protocol) server for
// vegetation detection.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods: initialize, tools/list, tools/call, ping.
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Color Sampling:
//   - image_sample_color: Get color at pixel, including 8-bit HSV
//   - image_sample_colors_multi: Sample multiple labeled points
//
// Vegetation Detection:
//   - vegetation_default_range: Report the configured default bounds
//   - vegetation_detect: Segment an image or region and report coverage
//   - vegetation_hsv_stats: Per-channel HSV statistics and a suggested range
//   - vegetation_export: Write mask and overlay PNG files
//
// Bounds use the 8-bit HSV encoding: hue 0-179, saturation and value 0-255.
// Any bound left out of a call takes the configured default.
//
// # Image Caching
//
// Images are cached by path and reused across tool calls for the lifetime of
// the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with code
// -32000. The message is "Invalid range", "Invalid image" or "Dimension
// mismatch" for detection input errors and "Tool execution failed" otherwise;
// data carries the Go error string.
package server
