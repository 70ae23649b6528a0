package docpipe

import (
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// extractHTML parses an HTML file as a DOM tree, removes script and style
// subtrees before any text extraction, and flattens the remaining visible
// text with a line break between text runs. Title comes from the <title>
// element when present, else empty string.
func extractHTML(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())

	var lines []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				lines = append(lines, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Selection.Nodes {
		walk(n)
	}

	return &Document{
		Format:   FormatHTML,
		Title:    title,
		FullText: strings.Join(lines, "\n"),
	}, nil
}
