package docpipe

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// extractPDF extracts per-page text and document metadata from a PDF file.
// Pages are numbered from 1 and every page keeps its slot in the structural
// list even when it has no extractable text; only non-empty pages contribute
// to FullText, joined by a blank line.
func extractPDF(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	pages := make([]Page, 0, ctx.PageCount)
	var nonEmpty []string
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		text := pageText(ctx, pageNr)
		pages = append(pages, Page{Page: pageNr, Text: text})
		if text != "" {
			nonEmpty = append(nonEmpty, text)
		}
	}

	return &Document{
		Format:   FormatPDF,
		Pages:    pages,
		Metadata: infoMetadata(ctx),
		FullText: strings.Join(nonEmpty, "\n\n"),
	}, nil
}

// infoMetadata collects the document information dictionary as a map of
// non-empty key/value pairs; keys whose value is empty are dropped.
func infoMetadata(ctx *model.Context) map[string]string {
	fields := map[string]string{
		"Title":    ctx.Title,
		"Author":   ctx.Author,
		"Subject":  ctx.Subject,
		"Creator":  ctx.Creator,
		"Producer": ctx.Producer,
		// Qualified: Configuration also carries a CreationDate (pdfcpu's
		// write-side stamp); the info-dict value lives on the XRefTable.
		"CreationDate": ctx.XRefTable.CreationDate,
		"ModDate":      ctx.ModDate,
	}
	md := make(map[string]string)
	for k, v := range fields {
		if strings.TrimSpace(v) != "" {
			md[k] = v
		}
	}
	return md
}

// pageText extracts trimmed reading-order text from a single page's content
// stream. A page whose content cannot be read yields an empty string rather
// than failing the whole document.
func pageText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return textFromContentStream(data)
}

// pdfStringRe matches PDF string literals in parentheses: (text here)
var pdfStringRe = regexp.MustCompile(`\(([^)]*)\)`)

// textFromContentStream walks content-stream lines and renders the text-show
// operators: Tj and TJ emit their string operands, ' starts a new line before
// showing, Td/TD positioning becomes a space, T* becomes a newline.
func textFromContentStream(data []byte) string {
	var sb strings.Builder

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		switch {
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.WriteString(decodePDFString(m[1]))
			}

		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				if text := decodePDFString(m[1]); text != "" {
					sb.WriteByte('\n')
					sb.WriteString(text)
				}
			}

		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")):
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}

		case bytes.Equal(line, []byte("T*")):
			sb.WriteByte('\n')
		}
	}

	return normalizePageText(sb.String())
}

// decodePDFString resolves basic PDF escape sequences, including octal byte
// escapes like \040.
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for j := 0; j < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; j++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				sb.WriteByte(byte(val))
			} else {
				sb.WriteByte(raw[i])
			}
		}
	}
	return sb.String()
}

// normalizePageText collapses runs of horizontal whitespace to single spaces,
// keeps line structure, drops unprintable runes, and trims the result.
func normalizePageText(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range text {
		switch {
		case r == '\n':
			sb.WriteByte('\n')
			prevSpace = true
		case unicode.IsSpace(r):
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		case unicode.IsPrint(r):
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}
