package docpipe

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterMCP registers the extraction tools on an MCP server, making the
// engine reachable from MCP hosts alongside the HTTP surface.
func (p *Pipeline) RegisterMCP(srv *mcp.Server) {
	p.registerParseTool(srv)
	p.registerDetectTool(srv)
	p.registerFormatsTool(srv)
}

func inputSchema(properties map[string]any, required []string) json.RawMessage {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	raw, _ := json.Marshal(s)
	return raw
}

func toolResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		var res mcp.CallToolResult
		res.SetError(err)
		return &res, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}

func toolError(err error) (*mcp.CallToolResult, error) {
	var res mcp.CallToolResult
	res.SetError(errors.New(err.Error()))
	return &res, nil
}

// --- parse ---

type parseReq struct {
	Path string `json:"path"`
}

func (p *Pipeline) registerParseTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "docutils_parse",
		Description: "Parse a document file and extract its text content (pdf, docx, xlsx, pptx, html, text).",
		InputSchema: inputSchema(map[string]any{
			"path": map[string]any{"type": "string", "description": "File path to parse"},
		}, []string{"path"}),
	}

	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var r parseReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return toolError(err)
		}
		doc, err := p.ExtractFile(ctx, r.Path)
		if err != nil {
			return toolError(err)
		}
		return toolResult(doc)
	})
}

// --- detect ---

type detectReq struct {
	Filename string `json:"filename"`
}

func (p *Pipeline) registerDetectTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "docutils_detect",
		Description: "Detect the format of a document from its filename extension.",
		InputSchema: inputSchema(map[string]any{
			"filename": map[string]any{"type": "string", "description": "Filename to resolve"},
		}, []string{"filename"}),
	}

	srv.AddTool(tool, func(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var r detectReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return toolError(err)
		}
		format, ok := Resolve(r.Filename)
		if !ok {
			return toolResult(map[string]any{"supported": false})
		}
		return toolResult(map[string]any{"supported": true, "format": string(format)})
	})
}

// --- formats ---

func (p *Pipeline) registerFormatsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "docutils_formats",
		Description: "List all supported document extensions.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	srv.AddTool(tool, func(_ context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return toolResult(map[string]any{"formats": SupportedExtensions()})
	})
}
