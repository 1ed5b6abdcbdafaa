package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ironsheep/cube-lut-mcp/internal/cube"
	"github.com/ironsheep/cube-lut-mcp/internal/engine"
	"github.com/ironsheep/cube-lut-mcp/internal/grade"
	"github.com/ironsheep/cube-lut-mcp/internal/imaging"
	"github.com/ironsheep/cube-lut-mcp/internal/lut"
	"github.com/ironsheep/cube-lut-mcp/internal/sample"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "lut_apply", "lut_generate").
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
// Tool execution errors, including gate refusals, return a JSON-RPC error
// response with code -32000 and data {"error": "<message>"}.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	entry := log.WithField("tool", params.Name)
	start := time.Now()

	if err := s.admit(ctx, params.Name); err != nil {
		entry.WithError(err).Info("tool call refused")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	result, err := s.runTool(ctx, params.Name, params.Arguments)
	if err != nil {
		entry.WithError(err).WithField("elapsed", time.Since(start)).Warn("tool call failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	entry.WithField("elapsed", time.Since(start)).Debug("tool call finished")

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

// admit consults the gate, reporting a panicking gate as a refusal.
func (s *Server) admit(ctx context.Context, name string) (err error) {
	defer recoverTool(name, &err)
	return s.gate.Admit(ctx, name)
}

// runTool executes a tool, turning a panic into an error.
func (s *Server) runTool(ctx context.Context, name string, args json.RawMessage) (result interface{}, err error) {
	defer recoverTool(name, &err)
	return s.executeTool(ctx, name, args)
}

func recoverTool(name string, err *error) {
	if r := recover(); r != nil {
		log.WithFields(log.Fields{"tool": name, "panic": r}).Error("tool call panicked")
		*err = fmt.Errorf("internal error in %s: %v", name, r)
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Reads input images and cube files
//  4. Calls the engine
//  5. Encodes the result, writing it to disk when output_path is given
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// LUT Operations
	case "lut_apply":
		return s.handleLutApply(ctx, args)
	case "lut_generate":
		return s.handleLutGenerate(ctx, args)
	case "lut_preview":
		return s.handleLutPreview(ctx, args)
	case "lut_info":
		return s.handleLutInfo(args)

	// Basic Image Information
	case "image_info":
		return s.handleImageInfo(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response. The message detail is
// carried in data as {"error": detail}.
func (s *Server) errorResponse(id interface{}, code int, message, detail string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    map[string]string{"error": detail},
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes tool arguments. Missing arguments decode as an
// empty object.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(bytes.TrimSpace(args)) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// loadImage reads the input image from a path or base64 data.
func loadImage(path, b64 string) (image.Image, error) {
	switch {
	case path != "" && b64 != "":
		return nil, fmt.Errorf("provide either path or image_base64, not both")
	case path != "":
		img, _, err := imaging.Load(path)
		return img, err
	case b64 != "":
		img, _, err := imaging.DecodeBase64(b64)
		return img, err
	}
	return nil, fmt.Errorf("an input image is required: provide path or image_base64")
}

// loadCube returns cube text from a file or inline text.
func loadCube(path, text string) (string, error) {
	switch {
	case path != "" && text != "":
		return "", fmt.Errorf("provide either cube_path or cube_text, not both")
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read cube file: %w", err)
		}
		return string(data), nil
	case text != "":
		return text, nil
	}
	return "", fmt.Errorf("a LUT is required: provide cube_path or cube_text")
}

// settingsArg decodes grade settings given either as a JSON object or as a
// string holding JSON.
func settingsArg(raw json.RawMessage) grade.Settings {
	var text string
	if json.Unmarshal(raw, &text) == nil {
		return grade.ParseSettings([]byte(text))
	}
	return grade.ParseSettings(raw)
}

// encodeOutput encodes img and either attaches it as base64 or writes it to
// outputPath.
func encodeOutput(img image.Image, f imaging.Format, quality int, outputPath string) (*imaging.EncodedImage, error) {
	data, err := imaging.Encode(img, f, quality)
	if err != nil {
		return nil, err
	}
	result := imaging.NewEncodedImage(img, f, data)
	if outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write output: %w", err)
		}
		result.ImageBase64 = ""
		result.OutputPath = outputPath
	}
	return result, nil
}

// === LUT Operation Handlers ===

type lutApplyArgs struct {
	Path        string   `json:"path"`
	ImageBase64 string   `json:"image_base64"`
	Paths       []string `json:"paths"`
	CubePath    string   `json:"cube_path"`
	CubeText    string   `json:"cube_text"`
	Strength    *float64 `json:"strength"`
	Format      string   `json:"format"`
	Quality     *float64 `json:"quality"`
	OutputPath  string   `json:"output_path"`
	OutputDir   string   `json:"output_dir"`
}

type lutApplyResult struct {
	*imaging.EncodedImage
	Strength float64 `json:"strength"`
	Sampler  string  `json:"sampler"`
}

type lutApplyBatchResult struct {
	Images   []*imaging.EncodedImage `json:"images"`
	Strength float64                 `json:"strength"`
	Sampler  string                  `json:"sampler"`
}

func (s *Server) handleLutApply(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a lutApplyArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	strength := 1.0
	if a.Strength != nil {
		strength = *a.Strength
	}
	quality := imaging.DefaultQuality
	if a.Quality != nil {
		quality = *a.Quality
	}
	format := imaging.ParseFormat(a.Format)

	if len(a.Paths) > 0 {
		return s.handleLutApplyBatch(ctx, a, strength, format, imaging.JPEGQuality(quality))
	}
	if a.OutputDir != "" {
		return nil, fmt.Errorf("output_dir requires paths")
	}

	img, err := loadImage(a.Path, a.ImageBase64)
	if err != nil {
		return nil, err
	}
	text, err := loadCube(a.CubePath, a.CubeText)
	if err != nil {
		return nil, err
	}

	out, err := s.engine.ApplyExternalLut(img, text, strength)
	if err != nil {
		return nil, err
	}

	encoded, err := encodeOutput(out, format, imaging.JPEGQuality(quality), a.OutputPath)
	if err != nil {
		return nil, err
	}
	return &lutApplyResult{
		EncodedImage: encoded,
		Strength:     sample.NormalizeStrength(strength),
		Sampler:      s.engine.Sampler().Name(),
	}, nil
}

// handleLutApplyBatch grades every image in a.Paths with one parsed LUT.
// With output_dir each result is written as graded_<name>.<format>.
func (s *Server) handleLutApplyBatch(ctx context.Context, a lutApplyArgs, strength float64, format imaging.Format, quality int) (interface{}, error) {
	if a.Path != "" || a.ImageBase64 != "" {
		return nil, fmt.Errorf("provide either paths or a single image, not both")
	}
	if a.OutputPath != "" {
		return nil, fmt.Errorf("output_path applies to a single image; use output_dir with paths")
	}

	outPaths := make([]string, len(a.Paths))
	if a.OutputDir != "" {
		seen := make(map[string]string, len(a.Paths))
		for i, p := range a.Paths {
			outPaths[i] = filepath.Join(a.OutputDir, gradedName(p, format))
			if prev, ok := seen[outPaths[i]]; ok {
				return nil, fmt.Errorf("%s and %s would both be written to %s", prev, p, outPaths[i])
			}
			seen[outPaths[i]] = p
		}
	}

	text, err := loadCube(a.CubePath, a.CubeText)
	if err != nil {
		return nil, err
	}

	imgs := make([]image.Image, len(a.Paths))
	for i, p := range a.Paths {
		if imgs[i], _, err = imaging.Load(p); err != nil {
			return nil, err
		}
	}

	outs, err := s.engine.ApplyExternalLutBatch(ctx, imgs, text, strength)
	if err != nil {
		return nil, err
	}

	result := &lutApplyBatchResult{
		Images:   make([]*imaging.EncodedImage, len(outs)),
		Strength: sample.NormalizeStrength(strength),
		Sampler:  s.engine.Sampler().Name(),
	}
	for i, out := range outs {
		if result.Images[i], err = encodeOutput(out, format, quality, outPaths[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// gradedName is the output file name for a batch input.
func gradedName(path string, f imaging.Format) string {
	base := filepath.Base(path)
	return "graded_" + strings.TrimSuffix(base, filepath.Ext(base)) + "." + string(f)
}

type lutGenerateArgs struct {
	Settings   json.RawMessage `json:"settings"`
	OutputPath string          `json:"output_path"`
}

type lutGenerateResult struct {
	Filename   string         `json:"filename"`
	Size       int            `json:"size"`
	SizeBytes  int            `json:"size_bytes"`
	Settings   grade.Settings `json:"settings"`
	CubeText   string         `json:"cube_text,omitempty"`
	OutputPath string         `json:"output_path,omitempty"`
}

func (s *Server) handleLutGenerate(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a lutGenerateArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	settings := settingsArg(a.Settings)

	data, err := s.engine.GenerateCube(ctx, settings)
	if err != nil {
		return nil, err
	}

	size, _ := grade.NormalizeResolution(settings.Resolution)
	settings.Resolution = size
	result := &lutGenerateResult{
		Filename:  engine.CubeFilename,
		Size:      size,
		SizeBytes: len(data),
		Settings:  settings,
	}
	if a.OutputPath != "" {
		if err := os.WriteFile(a.OutputPath, data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write output: %w", err)
		}
		result.OutputPath = a.OutputPath
	} else {
		result.CubeText = string(data)
	}
	return result, nil
}

type lutPreviewArgs struct {
	Path         string          `json:"path"`
	ImageBase64  string          `json:"image_base64"`
	Settings     json.RawMessage `json:"settings"`
	MaxDimension int             `json:"max_dimension"`
	OutputPath   string          `json:"output_path"`
}

func (s *Server) handleLutPreview(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a lutPreviewArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}

	img, err := loadImage(a.Path, a.ImageBase64)
	if err != nil {
		return nil, err
	}
	img = imaging.Fit(img, a.MaxDimension)

	out, err := s.engine.PreviewWithSettings(ctx, img, settingsArg(a.Settings))
	if err != nil {
		return nil, err
	}
	return encodeOutput(out, imaging.FormatPNG, 0, a.OutputPath)
}

type lutInfoArgs struct {
	CubePath string `json:"cube_path"`
	CubeText string `json:"cube_text"`
}

type lutInfoResult struct {
	Title     string     `json:"title,omitempty"`
	Size      int        `json:"size"`
	Entries   int        `json:"entries"`
	DomainMin lut.Triple `json:"domain_min"`
	DomainMax lut.Triple `json:"domain_max"`
	Skipped   []string   `json:"skipped_keywords,omitempty"`
}

func (s *Server) handleLutInfo(args json.RawMessage) (interface{}, error) {
	var a lutInfoArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	text, err := loadCube(a.CubePath, a.CubeText)
	if err != nil {
		return nil, err
	}

	v, info, err := cube.ParseWithInfo(bytes.NewReader([]byte(text)))
	if err != nil {
		return nil, fmt.Errorf("invalid cube file: %w", err)
	}
	return &lutInfoResult{
		Title:     info.Title,
		Size:      v.Size(),
		Entries:   v.Len(),
		DomainMin: v.DomainMin(),
		DomainMax: v.DomainMax(),
		Skipped:   info.Skipped,
	}, nil
}

// === Basic Image Information Handlers ===

type imageInfoArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageInfo(args json.RawMessage) (interface{}, error) {
	var a imageInfoArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	return imaging.LoadImageInfo(a.Path)
}
