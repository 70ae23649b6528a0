package docpipe

// Format identifies a supported document kind, derived from the filename
// extension by Resolve.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDocx Format = "docx"
	FormatXlsx Format = "xlsx"
	FormatPptx Format = "pptx"
	FormatHTML Format = "html"
	FormatText Format = "text"
)

// Page is one PDF page in document order, numbered from 1. Pages without
// extractable text keep their slot with an empty Text.
type Page struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// Slide is one PPTX slide in presentation order, numbered from 1. Text holds
// the non-empty paragraph lines of its text frames; textless slides carry an
// empty (never nil) list.
type Slide struct {
	Slide int      `json:"slide"`
	Text  []string `json:"text"`
}

// Document is the canonical extraction result. Format and FullText are always
// set; the structured fields depend on the format. A Document is built once
// per request by exactly one strategy and never mutated afterwards.
type Document struct {
	Format   Format `json:"format"`
	FullText string `json:"full_text"`

	// Merged by the coordinator, not by strategies. Always present in the
	// response even at their zero values (a sub-millisecond extraction
	// rounds to 0 but the key stays).
	Filename       string  `json:"filename"`
	FileSize       int64   `json:"file_size"`
	ProcessingTime float64 `json:"processing_time"`

	// PDF.
	Pages    []Page            `json:"pages,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`

	// DOCX. Tables are row grids of trimmed cell text; structurally empty
	// cells stay in place.
	Paragraphs []string     `json:"paragraphs,omitempty"`
	Tables     [][][]string `json:"tables,omitempty"`

	// XLSX. SheetNames preserves workbook order; SheetData maps sheet name to
	// its retained rows.
	SheetNames []string              `json:"sheets,omitempty"`
	SheetData  map[string][][]string `json:"data,omitempty"`

	// PPTX.
	Slides []Slide `json:"slides,omitempty"`

	// HTML.
	Title string `json:"title,omitempty"`

	// Plain-text family. Pointers keep the keys present for text documents
	// even at zero (an empty file has 0 characters) while leaving them
	// absent for every other format.
	Lines      *int `json:"lines,omitempty"`
	Characters *int `json:"characters,omitempty"`
}
