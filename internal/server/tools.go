package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func imageSourceProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the input image (PNG, JPEG, GIF, WebP, BMP or TIFF). Either path or image_base64 is required.",
		},
		"image_base64": map[string]interface{}{
			"type":        "string",
			"description": "Base64-encoded input image, optionally as a data URL",
		},
	}
}

func settingsSchema() map[string]interface{} {
	curve := map[string]interface{}{
		"type": "array",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"x": map[string]interface{}{"type": "number"},
				"y": map[string]interface{}{"type": "number"},
			},
			"required": []string{"x", "y"},
		},
	}
	return map[string]interface{}{
		"type":        "object",
		"description": "Grade settings. Every field is optional; missing or unusable values take the neutral default.",
		"properties": map[string]interface{}{
			"resolution": map[string]interface{}{
				"type":        "integer",
				"description": "LUT edge size: 17, 33 or 65 (default 33; other values fall back to 33)",
				"enum":        []int{17, 33, 65},
				"default":     33,
			},
			"exposure": map[string]interface{}{
				"type":        "number",
				"description": "Exposure in EV stops (default 0)",
				"default":     0,
			},
			"contrast": map[string]interface{}{
				"type":        "number",
				"description": "Contrast multiplier around mid-gray (default 1)",
				"default":     1,
			},
			"gamma": map[string]interface{}{
				"type":        "number",
				"description": "Gamma, applied as c^(1/gamma) (default 1)",
				"default":     1,
			},
			"hue": map[string]interface{}{
				"type":        "number",
				"description": "Hue rotation in degrees (default 0)",
				"default":     0,
			},
			"saturation": map[string]interface{}{
				"type":        "number",
				"description": "Saturation multiplier (default 1)",
				"default":     1,
			},
			"vibrance": map[string]interface{}{
				"type":        "number",
				"description": "Vibrance multiplier; boosts muted colors more than saturated ones (default 1)",
				"default":     1,
			},
			"curves": map[string]interface{}{
				"type":        "object",
				"description": "Piecewise-linear tone curves with points in [0,1]. Channel curves run before master.",
				"properties": map[string]interface{}{
					"r":      curve,
					"g":      curve,
					"b":      curve,
					"master": curve,
				},
			},
		},
	}
}

func withProperties(base map[string]interface{}, extra map[string]interface{}) map[string]interface{} {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// LUT Operations
		{
			Name:        "lut_apply",
			Description: "Apply a .cube 3D LUT to an image using trilinear interpolation, blended with the original by strength. Returns the graded image as base64, or writes it to output_path. Pass paths to grade several images with one LUT.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(imageSourceProperties(), map[string]interface{}{
					"cube_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to a .cube file. Either cube_path or cube_text is required.",
					},
					"cube_text": map[string]interface{}{
						"type":        "string",
						"description": "Contents of a .cube file",
					},
					"strength": map[string]interface{}{
						"type":        "number",
						"description": "Blend strength from 0 (original) to 1 (full LUT). Default 1.0",
						"default":     1.0,
					},
					"format": map[string]interface{}{
						"type":        "string",
						"description": "Output format: png or jpeg. Default png",
						"enum":        []string{"png", "jpeg"},
						"default":     "png",
					},
					"quality": map[string]interface{}{
						"type":        "number",
						"description": "JPEG quality from 0 to 1. Default 0.92",
						"default":     0.92,
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional path to write the result to instead of returning base64",
					},
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Absolute paths of several images to grade with the same LUT, instead of path or image_base64",
					},
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "With paths, a directory to write each result to as graded_<name>.<format> instead of returning base64",
					},
				}),
			},
		},
		{
			Name:        "lut_generate",
			Description: "Generate a .cube 3D LUT from grade settings (exposure, contrast, gamma, hue, saturation, vibrance, tone curves). Returns the cube text, or writes it to output_path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"settings": settingsSchema(),
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional path to write the .cube file to",
					},
				},
			},
		},
		{
			Name:        "lut_preview",
			Description: "Preview grade settings on an image without exporting a LUT. Returns a base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(imageSourceProperties(), map[string]interface{}{
					"settings": settingsSchema(),
					"max_dimension": map[string]interface{}{
						"type":        "integer",
						"description": "Optional longest side in pixels; larger images are downsized first for a faster preview",
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional path to write the PNG to instead of returning base64",
					},
				}),
			},
		},
		{
			Name:        "lut_info",
			Description: "Validate a .cube file and report its title, size, domain and entry count.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"cube_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to a .cube file. Either cube_path or cube_text is required.",
					},
					"cube_text": map[string]interface{}{
						"type":        "string",
						"description": "Contents of a .cube file",
					},
				},
			},
		},

		// Basic Image Information
		{
			Name:        "image_info",
			Description: "Load an image file and return its dimensions, format, bit depth and alpha.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
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
