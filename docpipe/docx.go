package docpipe

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"strings"
)

// extractDocx parses a .docx file by streaming word/document.xml from the ZIP
// archive. Body paragraphs are collected in document order, dropping those
// whose trimmed text is empty. Tables are collected separately as row grids of
// trimmed cell text; structurally empty cells stay in place — only
// paragraph-level filtering drops empties. Table text never leaks into the
// paragraph list, and tables are not concatenated into FullText.
func extractDocx(path string) (*Document, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()

	var (
		paragraphs []string
		tables     [][][]string

		curTable [][]string
		curRow   []string

		paraText strings.Builder
		cellText strings.Builder

		tableDepth int
		inPara     bool
		inCell     bool
		inText     bool
	)

	err = streamTokens(&r.Reader, "word/document.xml", func(tok xml.Token) error {
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
				if tableDepth == 1 {
					curTable = nil
				}
			case "tr":
				if tableDepth == 1 {
					curRow = []string{}
				}
			case "tc":
				if tableDepth == 1 {
					inCell = true
					cellText.Reset()
				}
			case "p":
				if tableDepth == 0 {
					inPara = true
					paraText.Reset()
				}
			case "t":
				inText = true
			}

		case xml.CharData:
			if !inText {
				return nil
			}
			switch {
			case inCell && tableDepth == 1:
				cellText.Write(t)
			case inPara && tableDepth == 0:
				paraText.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if inPara && tableDepth == 0 {
					inPara = false
					if text := strings.TrimSpace(paraText.String()); text != "" {
						paragraphs = append(paragraphs, text)
					}
				}
			case "tc":
				if inCell && tableDepth == 1 {
					inCell = false
					curRow = append(curRow, strings.TrimSpace(cellText.String()))
				}
			case "tr":
				if tableDepth == 1 {
					curTable = append(curTable, curRow)
					curRow = nil
				}
			case "tbl":
				if tableDepth == 1 {
					tables = append(tables, curTable)
					curTable = nil
				}
				tableDepth--
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Document{
		Format:     FormatDocx,
		Paragraphs: paragraphs,
		Tables:     tables,
		FullText:   strings.Join(paragraphs, "\n\n"),
	}, nil
}
