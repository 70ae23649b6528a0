package docpipe

import (
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestRegisterMCP(t *testing.T) {
	srv := mcp.NewServer(&mcp.Implementation{Name: "docutils-test", Version: "0"}, nil)

	pipe := New(Config{})
	pipe.RegisterMCP(srv)
}

func TestInputSchema(t *testing.T) {
	raw := inputSchema(map[string]any{
		"path": map[string]any{"type": "string"},
	}, []string{"path"})

	var s map[string]any
	if err := json.Unmarshal(raw, &s); err != nil {
		t.Fatal(err)
	}
	if s["type"] != "object" {
		t.Fatalf("schema type = %v", s["type"])
	}
	req, _ := s["required"].([]any)
	if len(req) != 1 || req[0] != "path" {
		t.Fatalf("required = %v", s["required"])
	}
}
