// Package server implements the MCP (Model Context Protocol) server for 3D LUT tools.
//
// This package provides a JSON-RPC 2.0 server that exposes LUT generation and
// application through the MCP protocol.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// LUT Operations:
//   - lut_apply: Apply a .cube LUT to an image at a blend strength
//   - lut_generate: Build a .cube LUT from grade settings
//   - lut_preview: Grade an image with settings, without exporting a LUT
//   - lut_info: Validate a .cube file and describe it
//
// Basic Image Information:
//   - image_info: Dimensions, format, bit depth and alpha of an image
//
// Images are passed by path or as base64; cube files by path or as text.
// Results are returned inline, or written to output_path when given.
// lut_apply also takes paths, grading several images with one parsed LUT,
// with output_dir for writing them to disk.
//
// # Gates and Timeouts
//
// Every tool call runs under a context bounded by the configured timeout
// (DefaultTimeout unless WithTimeout says otherwise) and is first submitted
// to the Gate installed with WithGate. The default gate admits everything.
//
// # Error Handling
//
// A panic inside a tool call is recovered and reported like any other tool
// failure. Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: "Tool execution failed"
//   - data: {"error": "<Go error string>"}
//
// # Usage
//
// The server is typically started by an MCP client:
//
//	srv := server.New(server.WithVersion(version))
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
