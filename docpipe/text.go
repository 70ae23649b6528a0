package docpipe

import (
	"os"
	"strings"
	"unicode/utf8"
)

// extractText reads a plain-text-family file verbatim. Bytes are decoded as
// UTF-8 with invalid sequences replaced by U+FFFD, so the strategy never fails
// on encoding alone. Lines counts newline characters plus one; Characters is
// the rune count of the decoded content.
func extractText(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	text := strings.ToValidUTF8(string(data), string(utf8.RuneError))
	lines := strings.Count(text, "\n") + 1
	chars := utf8.RuneCountInString(text)

	return &Document{
		Format:     FormatText,
		FullText:   text,
		Lines:      &lines,
		Characters: &chars,
	}, nil
}
