package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/ironsheep/vegetation-tools-mcp/internal/imaging"
	"github.com/ironsheep/vegetation-tools-mcp/internal/vegetation"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "vegetation_detect").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
// The message names the failure class for detection errors (invalid image,
// invalid range, dimension mismatch) so a client can point the user at the
// input to fix.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.Warn().Err(err).Str("tool", params.Name).Msg("tool failed")
		return s.errorResponse(req.ID, -32000, toolErrorMessage(err), err.Error())
	}
	s.log.Debug().Str("tool", params.Name).Dur("elapsed", time.Since(start)).Msg("tool done")

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// toolErrorMessage classifies a tool error for the JSON-RPC message field.
func toolErrorMessage(err error) string {
	var (
		invalidImage *vegetation.InvalidImageError
		invalidRange *vegetation.InvalidRangeError
		mismatch     *vegetation.DimensionMismatchError
	)
	switch {
	case errors.As(err, &invalidRange):
		return "Invalid range"
	case errors.As(err, &invalidImage):
		return "Invalid image"
	case errors.As(err, &mismatch):
		return "Dimension mismatch"
	default:
		return "Tool execution failed"
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Color Sampling
	case "image_sample_color":
		return s.handleImageSampleColor(args)
	case "image_sample_colors_multi":
		return s.handleImageSampleColorsMulti(args)

	// Vegetation Detection
	case "vegetation_default_range":
		return s.handleVegetationDefaultRange(args)
	case "vegetation_detect":
		return s.handleVegetationDetect(args)
	case "vegetation_hsv_stats":
		return s.handleVegetationHSVStats(args)
	case "vegetation_export":
		return s.handleVegetationExport(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes tool arguments, treating absent arguments as {}.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	return json.Unmarshal(args, v)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Color Sampling Handlers ===

type imageSampleColorArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func (s *Server) handleImageSampleColor(args json.RawMessage) (interface{}, error) {
	var a imageSampleColorArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.SampleColor(img, a.X, a.Y)
}

type imageSampleColorsMultiArgs struct {
	Path   string `json:"path"`
	Points []struct {
		X     int    `json:"x"`
		Y     int    `json:"y"`
		Label string `json:"label,omitempty"`
	} `json:"points"`
}

func (s *Server) handleImageSampleColorsMulti(args json.RawMessage) (interface{}, error) {
	var a imageSampleColorsMultiArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	points := make([]imaging.LabeledPoint, len(a.Points))
	for i, p := range a.Points {
		points[i] = imaging.LabeledPoint{X: p.X, Y: p.Y, Label: p.Label}
	}
	return imaging.SampleColorsMulti(img, points)
}

// === Vegetation Detection Handlers ===

// rangeArgs holds the six bounds. Nil fields take the configured default.
type rangeArgs struct {
	HMin *int `json:"h_min"`
	HMax *int `json:"h_max"`
	SMin *int `json:"s_min"`
	SMax *int `json:"s_max"`
	VMin *int `json:"v_min"`
	VMax *int `json:"v_max"`
}

func (a rangeArgs) resolve(def vegetation.ColorRange) vegetation.ColorRange {
	r := def
	for _, f := range []struct {
		src *int
		dst *int
	}{
		{a.HMin, &r.Lower.H}, {a.HMax, &r.Upper.H},
		{a.SMin, &r.Lower.S}, {a.SMax, &r.Upper.S},
		{a.VMin, &r.Lower.V}, {a.VMax, &r.Upper.V},
	} {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
	return r
}

type regionArgs struct {
	Region     *imaging.Region `json:"region,omitempty"`
	RegionName string          `json:"region_name,omitempty"`
}

// resolve returns the region to analyze within img, or nil for the whole
// image.
func (a regionArgs) resolve(img image.Image) (*imaging.Region, error) {
	if a.Region != nil {
		return a.Region, nil
	}
	if a.RegionName == "" {
		return nil, nil
	}
	r, err := imaging.NamedRegion(img.Bounds(), a.RegionName)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

type detectArgs struct {
	Path string `json:"path"`
	rangeArgs
	regionArgs
}

// detection is the outcome of one run, shared by detect and export.
type detection struct {
	source  image.Image
	region  *imaging.Region
	r       vegetation.ColorRange
	mask    *vegetation.Mask
	metrics vegetation.Metrics
}

func (s *Server) detect(a detectArgs) (*detection, error) {
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	region, err := a.regionArgs.resolve(img)
	if err != nil {
		return nil, err
	}
	cropped, err := imaging.CropRegion(img, region)
	if err != nil {
		return nil, err
	}

	r := a.rangeArgs.resolve(s.cfg.DefaultRange)
	src, order := vegetation.FromImage(cropped)
	mask, metrics, err := s.backend.Detect(src, order, r)
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("path", a.Path).
		Stringer("range", r).
		Int("included", metrics.IncludedPixels).
		Int("total", metrics.TotalPixels).
		Msg("detected")

	return &detection{source: cropped, region: region, r: r, mask: mask, metrics: metrics}, nil
}

// DetectResult is the vegetation_detect output.
type DetectResult struct {
	vegetation.Metrics
	PercentageDisplay string                `json:"percentage_display"` // two decimals, e.g. "25.00 %"
	Range             vegetation.ColorRange `json:"range"`
	Region            *imaging.Region       `json:"region,omitempty"`
	Backend           string                `json:"backend"`
	Mask              *imaging.EncodedImage `json:"mask,omitempty"`
	Overlay           *imaging.EncodedImage `json:"overlay,omitempty"`
}

type vegetationDetectArgs struct {
	detectArgs
	IncludeMask    bool `json:"include_mask"`
	IncludeOverlay bool `json:"include_overlay"`
}

func (s *Server) handleVegetationDetect(args json.RawMessage) (interface{}, error) {
	var a vegetationDetectArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	d, err := s.detect(a.detectArgs)
	if err != nil {
		return nil, err
	}

	result := &DetectResult{
		Metrics:           d.metrics,
		PercentageDisplay: fmt.Sprintf("%.2f %%", d.metrics.Percentage),
		Range:             d.r,
		Region:            d.region,
		Backend:           s.backend.Name(),
	}
	if a.IncludeMask {
		if result.Mask, err = imaging.EncodePNG(d.mask.Gray()); err != nil {
			return nil, err
		}
	}
	if a.IncludeOverlay {
		overlay, err := imaging.ApplyMask(d.source, d.mask)
		if err != nil {
			return nil, err
		}
		if result.Overlay, err = imaging.EncodePNG(overlay); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// ExportResult is the vegetation_export output.
type ExportResult struct {
	vegetation.Metrics
	Range       vegetation.ColorRange `json:"range"`
	MaskPath    string                `json:"mask_path,omitempty"`
	OverlayPath string                `json:"overlay_path,omitempty"`
}

type vegetationExportArgs struct {
	detectArgs
	MaskPath    string `json:"mask_path"`
	OverlayPath string `json:"overlay_path"`
}

func (s *Server) handleVegetationExport(args json.RawMessage) (interface{}, error) {
	var a vegetationExportArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.MaskPath == "" && a.OverlayPath == "" {
		return nil, fmt.Errorf("at least one of mask_path or overlay_path is required")
	}
	d, err := s.detect(a.detectArgs)
	if err != nil {
		return nil, err
	}

	if a.MaskPath != "" {
		if err := imaging.SavePNG(a.MaskPath, d.mask.Gray()); err != nil {
			return nil, err
		}
	}
	if a.OverlayPath != "" {
		overlay, err := imaging.ApplyMask(d.source, d.mask)
		if err != nil {
			return nil, err
		}
		if err := imaging.SavePNG(a.OverlayPath, overlay); err != nil {
			return nil, err
		}
	}

	return &ExportResult{
		Metrics:     d.metrics,
		Range:       d.r,
		MaskPath:    a.MaskPath,
		OverlayPath: a.OverlayPath,
	}, nil
}

// HSVStatsResult is the vegetation_hsv_stats output.
type HSVStatsResult struct {
	*vegetation.HSVStats
	Region         *imaging.Region       `json:"region,omitempty"`
	SuggestedRange vegetation.ColorRange `json:"suggested_range"`
}

type vegetationHSVStatsArgs struct {
	Path string `json:"path"`
	regionArgs
}

func (s *Server) handleVegetationHSVStats(args json.RawMessage) (interface{}, error) {
	var a vegetationHSVStatsArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	region, err := a.regionArgs.resolve(img)
	if err != nil {
		return nil, err
	}
	cropped, err := imaging.CropRegion(img, region)
	if err != nil {
		return nil, err
	}

	hsv, err := vegetation.ConvertToHSV(vegetation.FromImage(cropped))
	if err != nil {
		return nil, err
	}
	stats, err := vegetation.ComputeStats(hsv)
	if err != nil {
		return nil, err
	}
	return &HSVStatsResult{
		HSVStats:       stats,
		Region:         region,
		SuggestedRange: stats.SuggestRange(),
	}, nil
}

// DefaultRangeResult is the vegetation_default_range output.
type DefaultRangeResult struct {
	Range    vegetation.ColorRange `json:"range"`
	Backend  string                `json:"backend"`
	Backends []string              `json:"backends"`
}

func (s *Server) handleVegetationDefaultRange(json.RawMessage) (interface{}, error) {
	return &DefaultRangeResult{
		Range:    s.cfg.DefaultRange,
		Backend:  s.backend.Name(),
		Backends: vegetation.BackendNames(),
	}, nil
}
