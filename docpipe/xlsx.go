package docpipe

import (
	"archive/zip"
	"fmt"
	"strconv"
	"strings"
)

// xlsxWorkbook mirrors xl/workbook.xml: the sheet list in declared order.
type xlsxWorkbook struct {
	Sheets []xlsxSheetRef `xml:"sheets>sheet"`
}

type xlsxSheetRef struct {
	Name string `xml:"name,attr"`
	RID  string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
}

// xlsxShared mirrors xl/sharedStrings.xml. A string item is either a plain
// <t> or a sequence of rich-text runs.
type xlsxShared struct {
	Items []xlsxSharedItem `xml:"si"`
}

type xlsxSharedItem struct {
	Plain string   `xml:"t"`
	Runs  []string `xml:"r>t"`
}

func (s xlsxSharedItem) text() string {
	if len(s.Runs) > 0 {
		return strings.Join(s.Runs, "")
	}
	return s.Plain
}

// xlsxWorksheet mirrors one xl/worksheets/sheetN.xml.
type xlsxWorksheet struct {
	Rows []xlsxRow `xml:"sheetData>row"`
}

type xlsxRow struct {
	Cells []xlsxCell `xml:"c"`
}

type xlsxCell struct {
	Ref    string   `xml:"r,attr"`
	Type   string   `xml:"t,attr"`
	Value  string   `xml:"v"`
	Inline []string `xml:"is>t"`
	Rich   []string `xml:"is>r>t"`
}

// extractXlsx parses a .xlsx workbook. Sheets keep their workbook-declared
// order; every cell is read as its cached/computed string value (never the
// formula text), absent cells become empty strings, and rows whose cells are
// all blank after trimming are dropped. A sheet left with no rows is retained.
func extractXlsx(path string) (*Document, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()

	var wb xlsxWorkbook
	if err := decodePart(&r.Reader, "xl/workbook.xml", &wb); err != nil {
		return nil, err
	}

	var rels relationships
	if err := decodePart(&r.Reader, "xl/_rels/workbook.xml.rels", &rels); err != nil {
		return nil, err
	}
	partByRID := rels.targets("xl")

	var shared xlsxShared
	if zipPart(&r.Reader, "xl/sharedStrings.xml") != nil {
		if err := decodePart(&r.Reader, "xl/sharedStrings.xml", &shared); err != nil {
			return nil, err
		}
	}

	order := make([]string, 0, len(wb.Sheets))
	data := make(map[string][][]string, len(wb.Sheets))

	for _, ref := range wb.Sheets {
		part, ok := partByRID[ref.RID]
		if !ok {
			return nil, fmt.Errorf("sheet %q: relationship %s not found", ref.Name, ref.RID)
		}

		var ws xlsxWorksheet
		if err := decodePart(&r.Reader, part, &ws); err != nil {
			return nil, err
		}

		var rows [][]string
		for _, row := range ws.Rows {
			cells := assembleRow(row, shared.Items)
			if rowBlank(cells) {
				continue
			}
			rows = append(rows, cells)
		}

		order = append(order, ref.Name)
		data[ref.Name] = rows
	}

	return &Document{
		Format:     FormatXlsx,
		SheetNames: order,
		SheetData:  data,
		FullText:   xlsxFullText(order, data),
	}, nil
}

// assembleRow places cell values by their column reference, filling skipped
// columns with empty strings so consumers see a dense row.
func assembleRow(row xlsxRow, shared []xlsxSharedItem) []string {
	var cells []string
	next := 0
	for _, c := range row.Cells {
		col := next
		if c.Ref != "" {
			col = columnIndex(c.Ref)
		}
		for len(cells) < col {
			cells = append(cells, "")
		}
		cells = append(cells, cellValue(c, shared))
		next = col + 1
	}
	return cells
}

// cellValue renders a cell's cached value as a string. Formula cells carry
// their computed result in <v>; the formula text itself is never read.
func cellValue(c xlsxCell, shared []xlsxSharedItem) string {
	switch c.Type {
	case "s":
		idx, err := strconv.Atoi(strings.TrimSpace(c.Value))
		if err != nil || idx < 0 || idx >= len(shared) {
			return ""
		}
		return shared[idx].text()
	case "inlineStr":
		if len(c.Rich) > 0 {
			return strings.Join(c.Rich, "")
		}
		return strings.Join(c.Inline, "")
	case "b":
		if strings.TrimSpace(c.Value) == "1" {
			return "TRUE"
		}
		return "FALSE"
	default:
		// Numbers, cached formula results ("str"), and error values all keep
		// their literal <v> text.
		return c.Value
	}
}

func rowBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// columnIndex converts the column letters of a cell reference ("BC12") to a
// zero-based column number.
func columnIndex(ref string) int {
	n := 0
	for _, r := range ref {
		if r >= 'A' && r <= 'Z' {
			n = n*26 + int(r-'A') + 1
		} else if r >= 'a' && r <= 'z' {
			n = n*26 + int(r-'a') + 1
		} else {
			break
		}
	}
	if n == 0 {
		return 0
	}
	return n - 1
}

// xlsxFullText renders each sheet as a "[name]" header line followed by its
// rows with tab-joined cells; sheet blocks are joined by newline. The header
// always carries its own newline, so a sheet with no retained rows leaves a
// blank line before the next block.
func xlsxFullText(order []string, data map[string][][]string) string {
	blocks := make([]string, 0, len(order))
	for _, name := range order {
		rows := make([]string, 0, len(data[name]))
		for _, row := range data[name] {
			rows = append(rows, strings.Join(row, "\t"))
		}
		blocks = append(blocks, "["+name+"]\n"+strings.Join(rows, "\n"))
	}
	return strings.Join(blocks, "\n")
}
