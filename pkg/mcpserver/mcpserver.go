// Package mcpserver exposes soundbank inspection and conversion as MCP tools
// over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/james-see/bank2sf2/pkg/converter"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"
)

const version = "1.0.0"

type tools struct {
	opts converter.Options
}

// NewServer registers the soundbank tools on a fresh MCP server
func NewServer(opts converter.Options) *server.MCPServer {
	t := &tools{opts: opts}

	s := server.NewMCPServer(
		"bank2sf2 MCP",
		version,
		server.WithToolCapabilities(false),
	)

	formatsTool := mcp.NewTool("soundbank_list-conversions",
		mcp.WithDescription("Lists the soundbank conversions this server can perform."),
	)
	s.AddTool(formatsTool, t.listConversions)

	inspectTool := mcp.NewTool("soundbank_inspect",
		mcp.WithDescription("Summarises a DLS or SoundFont bank: presets, instruments, samples and structural warnings."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the soundbank file (.dls, .sf2, .sbk).")),
	)
	s.AddTool(inspectTool, t.inspect)

	convertTool := mcp.NewTool("soundbank_convert-dls",
		mcp.WithDescription("Converts a DLS collection into a SoundFont 2 bank."),
		mcp.WithString("input", mcp.Required(), mcp.Description("Path of the DLS collection to read.")),
		mcp.WithString("output", mcp.Required(), mcp.Description("Path of the .sf2 file to write.")),
	)
	s.AddTool(convertTool, t.convertDLS)

	return s
}

// Serve runs the MCP server on stdin/stdout until the client disconnects
func Serve(opts converter.Options) error {
	s := NewServer(opts)
	log.Println("Starting bank2sf2 MCP server...")

	if err := server.ServeStdio(s); err != nil {
		return errors.Wrap(err, "MCP server stopped")
	}
	return nil
}

func (t *tools) listConversions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Println("[mcp]Handling list conversions request.")

	return mcp.NewToolResultText(strings.Join(converter.GetSupportedConversions(), "\n")), nil
}

func (t *tools) inspect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Println("[mcp]Handling inspect request.")

	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read %s: %v", path, err)), nil
	}

	summary, err := converter.New(t.opts).Inspect(data, converter.DetectFormat(path))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	asJson, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary to JSON: %v", err)
	}

	return mcp.NewToolResultText(string(asJson)), nil
}

func (t *tools) convertDLS(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Println("[mcp]Handling DLS conversion request.")

	input, err := request.RequireString("input")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	output, err := request.RequireString("output")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	conv := converter.New(t.opts)
	if err := conv.ConvertFile(input, output); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	msg := fmt.Sprintf("Converted %s to %s", input, output)
	if n := conv.Dropped(); n > 0 {
		msg += fmt.Sprintf(" (%d articulation blocks dropped)", n)
	}
	return mcp.NewToolResultText(msg), nil
}
