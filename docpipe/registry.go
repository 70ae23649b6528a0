package docpipe

import (
	"path/filepath"
	"sort"
	"strings"
)

// formatByExt is the registry: immutable static configuration mapping a
// lowercase filename extension to the strategy responsible for it. Dispatch
// over the resulting Format is a closed switch, so a format without a strategy
// is a compile-visible gap rather than a runtime map miss.
var formatByExt = map[string]Format{
	".pdf":  FormatPDF,
	".docx": FormatDocx,
	".xlsx": FormatXlsx,
	".pptx": FormatPptx,
	".html": FormatHTML,
	".htm":  FormatHTML,
	".txt":  FormatText,
	".md":   FormatText,
	".csv":  FormatText,
	".json": FormatText,
	".xml":  FormatText,
	".yaml": FormatText,
	".yml":  FormatText,
	".log":  FormatText,
}

// Resolve maps a filename to its Format. Only the substring after the final
// dot is significant, compared case-insensitively. No side effects.
func Resolve(filename string) (Format, bool) {
	f, ok := formatByExt[strings.ToLower(filepath.Ext(filename))]
	return f, ok
}

// SupportedExtensions returns every known extension, dot-prefixed and sorted.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(formatByExt))
	for ext := range formatByExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
