package docpipe

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeHTML(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractHTML(t *testing.T) {
	path := writeHTML(t, "page.html", `<!DOCTYPE html>
<html><head><title>  Test Page  </title></head>
<body>
<h1>Main Heading</h1>
<p>First paragraph.</p>
<p>Second paragraph.</p>
</body></html>`)

	doc, err := extractHTML(path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Format != FormatHTML {
		t.Fatalf("format = %q, want html", doc.Format)
	}
	if doc.Title != "Test Page" {
		t.Fatalf("title = %q, want 'Test Page' (trimmed)", doc.Title)
	}

	// Text runs become lines, in document order.
	want := []string{"Test Page", "Main Heading", "First paragraph.", "Second paragraph."}
	lines := strings.Split(doc.FullText, "\n")
	if len(lines) != len(want) {
		t.Fatalf("lines = %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestExtractHTML_StripsScriptAndStyle(t *testing.T) {
	// WHAT: script and style subtrees are removed before text extraction.
	// WHY: their text content is code, not document text.
	path := writeHTML(t, "scripted.html", `<html><head>
<style>body { color: red; }</style>
<script>var secret = "payload";</script>
</head><body>
<p>Visible content</p>
<script>console.log("inline")</script>
</body></html>`)

	doc, err := extractHTML(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(doc.FullText, "payload") || strings.Contains(doc.FullText, "color: red") {
		t.Errorf("script/style text leaked into output: %q", doc.FullText)
	}
	if !strings.Contains(doc.FullText, "Visible content") {
		t.Errorf("visible text missing: %q", doc.FullText)
	}
}

func TestExtractHTML_NoTitle(t *testing.T) {
	path := writeHTML(t, "bare.htm", `<html><body><p>Just text</p></body></html>`)

	doc, err := extractHTML(path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title != "" {
		t.Fatalf("title = %q, want empty", doc.Title)
	}
	if doc.FullText != "Just text" {
		t.Fatalf("full text = %q", doc.FullText)
	}
}

func TestExtractHTML_WhitespaceOnlyNodesDropped(t *testing.T) {
	path := writeHTML(t, "ws.html", "<html><body>\n\n  <div>  one  </div>\n  <div>two</div>\n</body></html>")

	doc, err := extractHTML(path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.FullText != "one\ntwo" {
		t.Fatalf("full text = %q, want 'one\\ntwo'", doc.FullText)
	}
}
