package docpipe

import (
	"strings"
	"testing"
)

const xlsxRelsXML = `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/>
<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet2.xml"/>
</Relationships>`

func xlsxWorkbookXML(sheets string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<sheets>` + sheets + `</sheets>
</workbook>`
}

func TestExtractXlsx(t *testing.T) {
	path := writeArchive(t, "book.xlsx", map[string]string{
		"xl/workbook.xml": xlsxWorkbookXML(
			`<sheet name="People" sheetId="1" r:id="rId1"/>`),
		"xl/_rels/workbook.xml.rels": xlsxRelsXML,
		"xl/sharedStrings.xml": `<?xml version="1.0" encoding="UTF-8"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="3" uniqueCount="3">
<si><t>Name</t></si><si><t>Age</t></si><si><t>Alice</t></si>
</sst>`,
		"xl/worksheets/sheet1.xml": `<?xml version="1.0" encoding="UTF-8"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<sheetData>
<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c></row>
<row r="2"><c r="A2" t="s"><v>2</v></c><c r="B2"><v>30</v></c></row>
</sheetData>
</worksheet>`,
	})

	doc, err := extractXlsx(path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Format != FormatXlsx {
		t.Fatalf("format = %q, want xlsx", doc.Format)
	}
	if len(doc.SheetNames) != 1 || doc.SheetNames[0] != "People" {
		t.Fatalf("sheets = %v", doc.SheetNames)
	}
	rows := doc.SheetData["People"]
	if len(rows) != 2 {
		t.Fatalf("rows = %v", rows)
	}
	if rows[0][0] != "Name" || rows[0][1] != "Age" {
		t.Fatalf("header row = %v", rows[0])
	}
	// Shared string + literal number side by side.
	if rows[1][0] != "Alice" || rows[1][1] != "30" {
		t.Fatalf("data row = %v", rows[1])
	}
	if doc.FullText != "[People]\nName\tAge\nAlice\t30" {
		t.Fatalf("full text = %q", doc.FullText)
	}
}

func TestExtractXlsx_SheetOrderAndEmptySheet(t *testing.T) {
	// WHAT: sheets keep workbook order; a sheet with no retained rows stays.
	path := writeArchive(t, "multi.xlsx", map[string]string{
		"xl/workbook.xml": xlsxWorkbookXML(
			`<sheet name="Second" sheetId="1" r:id="rId2"/><sheet name="First" sheetId="2" r:id="rId1"/>`),
		"xl/_rels/workbook.xml.rels": xlsxRelsXML,
		"xl/worksheets/sheet1.xml": `<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<sheetData><row r="1"><c r="A1" t="inlineStr"><is><t>data</t></is></c></row></sheetData>
</worksheet>`,
		"xl/worksheets/sheet2.xml": `<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<sheetData></sheetData>
</worksheet>`,
	})

	doc, err := extractXlsx(path)
	if err != nil {
		t.Fatal(err)
	}
	// Declared order wins, not relationship ID order.
	if len(doc.SheetNames) != 2 || doc.SheetNames[0] != "Second" || doc.SheetNames[1] != "First" {
		t.Fatalf("sheet order = %v", doc.SheetNames)
	}
	if len(doc.SheetData["Second"]) != 0 {
		t.Fatalf("Second rows = %v, want none", doc.SheetData["Second"])
	}
	if len(doc.SheetData["First"]) != 1 || doc.SheetData["First"][0][0] != "data" {
		t.Fatalf("First rows = %v", doc.SheetData["First"])
	}
	// Empty sheet still gets its header block, and the header's newline
	// stays, leaving a blank line before the next sheet.
	if doc.FullText != "[Second]\n\n[First]\ndata" {
		t.Fatalf("full text = %q", doc.FullText)
	}
}

func TestExtractXlsx_GapFillAndBlankRows(t *testing.T) {
	// WHAT: skipped columns become empty strings; all-blank rows are dropped.
	path := writeArchive(t, "gaps.xlsx", map[string]string{
		"xl/workbook.xml": xlsxWorkbookXML(
			`<sheet name="Data" sheetId="1" r:id="rId1"/>`),
		"xl/_rels/workbook.xml.rels": xlsxRelsXML,
		"xl/worksheets/sheet1.xml": `<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<sheetData>
<row r="1"><c r="A1"><v>a</v></c><c r="C1"><v>c</v></c></row>
<row r="2"><c r="A2" t="inlineStr"><is><t>   </t></is></c></row>
<row r="3"><c r="B3" t="b"><v>1</v></c><c r="C3" t="b"><v>0</v></c></row>
</sheetData>
</worksheet>`,
	})

	doc, err := extractXlsx(path)
	if err != nil {
		t.Fatal(err)
	}
	rows := doc.SheetData["Data"]
	if len(rows) != 2 {
		t.Fatalf("rows = %v, want blank row dropped", rows)
	}
	if len(rows[0]) != 3 || rows[0][0] != "a" || rows[0][1] != "" || rows[0][2] != "c" {
		t.Fatalf("gap row = %v", rows[0])
	}
	// Booleans render as TRUE/FALSE; the leading gap stays.
	if len(rows[1]) != 3 || rows[1][0] != "" || rows[1][1] != "TRUE" || rows[1][2] != "FALSE" {
		t.Fatalf("bool row = %v", rows[1])
	}
}

func TestExtractXlsx_RichTextSharedString(t *testing.T) {
	path := writeArchive(t, "rich.xlsx", map[string]string{
		"xl/workbook.xml": xlsxWorkbookXML(
			`<sheet name="Data" sheetId="1" r:id="rId1"/>`),
		"xl/_rels/workbook.xml.rels": xlsxRelsXML,
		"xl/sharedStrings.xml": `<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<si><r><t>bold</t></r><r><t> and plain</t></r></si>
</sst>`,
		"xl/worksheets/sheet1.xml": `<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<sheetData><row r="1"><c r="A1" t="s"><v>0</v></c></row></sheetData>
</worksheet>`,
	})

	doc, err := extractXlsx(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := doc.SheetData["Data"][0][0]; got != "bold and plain" {
		t.Fatalf("rich text cell = %q", got)
	}
}

func TestExtractXlsx_MissingWorkbook(t *testing.T) {
	path := writeArchive(t, "hollow.xlsx", map[string]string{
		"xl/other.xml": "<x/>",
	})
	_, err := extractXlsx(path)
	if err == nil || !strings.Contains(err.Error(), "workbook.xml") {
		t.Fatalf("expected workbook.xml error, got: %v", err)
	}
}

func TestColumnIndex(t *testing.T) {
	tests := []struct {
		ref  string
		want int
	}{
		{"A1", 0},
		{"B12", 1},
		{"Z3", 25},
		{"AA1", 26},
		{"BC12", 54},
		{"", 0},
	}
	for _, tt := range tests {
		if got := columnIndex(tt.ref); got != tt.want {
			t.Errorf("columnIndex(%q) = %d, want %d", tt.ref, got, tt.want)
		}
	}
}
