package server

import "github.com/ironsheep/vegetation-tools-mcp/internal/vegetation"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// regionNames are the values accepted by region_name.
var regionNames = []string{
	"full", "top-left", "top-right", "bottom-left", "bottom-right",
	"top-half", "bottom-half", "left-half", "right-half", "center",
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file (PNG, JPEG or GIF)",
	}
}

func intProperty(description string, max int) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
		"minimum":     0,
		"maximum":     max,
	}
}

// regionProperties describe the optional area of interest shared by the
// detection tools. An explicit region wins over region_name.
func regionProperties() map[string]interface{} {
	return map[string]interface{}{
		"region": map[string]interface{}{
			"type":        "object",
			"description": "Optional rectangle to analyze; (x1,y1) inclusive, (x2,y2) exclusive",
			"properties": map[string]interface{}{
				"x1": map[string]interface{}{"type": "integer"},
				"y1": map[string]interface{}{"type": "integer"},
				"x2": map[string]interface{}{"type": "integer"},
				"y2": map[string]interface{}{"type": "integer"},
			},
			"required": []string{"x1", "y1", "x2", "y2"},
		},
		"region_name": map[string]interface{}{
			"type":        "string",
			"enum":        regionNames,
			"description": "Optional named region to analyze. Ignored when region is given",
		},
	}
}

// detectProperties are the inputs shared by vegetation_detect and
// vegetation_export: path, the six bounds and the region.
func detectProperties() map[string]interface{} {
	props := map[string]interface{}{
		"path":  pathProperty(),
		"h_min": intProperty("Minimum hue (0-179). Defaults to the configured range", vegetation.MaxHue),
		"h_max": intProperty("Maximum hue (0-179). Defaults to the configured range", vegetation.MaxHue),
		"s_min": intProperty("Minimum saturation (0-255). Defaults to the configured range", vegetation.MaxSaturation),
		"s_max": intProperty("Maximum saturation (0-255). Defaults to the configured range", vegetation.MaxSaturation),
		"v_min": intProperty("Minimum value/brightness (0-255). Defaults to the configured range", vegetation.MaxValue),
		"v_max": intProperty("Maximum value/brightness (0-255). Defaults to the configured range", vegetation.MaxValue),
	}
	for k, v := range regionProperties() {
		props[k] = v
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	detectProps := detectProperties()
	detectProps["include_mask"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Return the mask as base64 PNG (vegetation white, everything else black)",
		"default":     false,
	}
	detectProps["include_overlay"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Return the image with non-vegetation pixels blacked out as base64 PNG",
		"default":     false,
	}

	exportProps := detectProperties()
	exportProps["mask_path"] = map[string]interface{}{
		"type":        "string",
		"description": "File to write the mask PNG to",
	}
	exportProps["overlay_path"] = map[string]interface{}{
		"type":        "string",
		"description": "File to write the highlighted vegetation PNG to",
	}

	statsProps := map[string]interface{}{"path": pathProperty()}
	for k, v := range regionProperties() {
		statsProps[k] = v
	}

	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, pixel count and format.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{"path": pathProperty()},
				"required":   []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{"path": pathProperty()},
				"required":   []string{"path"},
			},
		},

		// Color Sampling
		{
			Name:        "image_sample_color",
			Description: "Get the color at a pixel as hex, RGB, HSL and the 8-bit HSV used by vegetation ranges (H 0-179, S and V 0-255).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based, from left)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based, from top)",
					},
				},
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name:        "image_sample_colors_multi",
			Description: "Get colors, including 8-bit HSV, at multiple pixel coordinates in a single call.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"points": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":     map[string]interface{}{"type": "integer"},
								"y":     map[string]interface{}{"type": "integer"},
								"label": map[string]interface{}{"type": "string", "description": "Optional label for this point"},
							},
							"required": []string{"x", "y"},
						},
						"description": "Array of points to sample",
					},
				},
				"required": []string{"path", "points"},
			},
		},

		// Vegetation Detection
		{
			Name:        "vegetation_default_range",
			Description: "Get the default HSV bounds used when a detection call omits them, and the detection backends available.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "vegetation_detect",
			Description: "Classify pixels as vegetation with an inclusive per-channel HSV range and report the included pixel count, total pixel count and percentage. Any bound left out uses the default range.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": detectProps,
				"required":   []string{"path"},
			},
		},
		{
			Name:        "vegetation_hsv_stats",
			Description: "Per-channel HSV statistics (min, max, mean, std dev, 5th/50th/95th percentile) and a suggested range. Sample a region that is known to be vegetation to tune bounds.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": statsProps,
				"required":   []string{"path"},
			},
		},
		{
			Name:        "vegetation_export",
			Description: "Run vegetation detection and write the mask and/or highlighted image to PNG files.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": exportProps,
				"required":   []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
