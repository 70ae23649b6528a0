package docpipe

import (
	"strings"
	"testing"
)

const pptxPresentationXML = `<?xml version="1.0" encoding="UTF-8"?>
<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<p:sldIdLst>
<p:sldId id="256" r:id="rId2"/>
<p:sldId id="257" r:id="rId3"/>
</p:sldIdLst>
</p:presentation>`

const pptxRelsXML = `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="slideMasters/slideMaster1.xml"/>
<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide1.xml"/>
<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide2.xml"/>
</Relationships>`

func pptxSlideXML(paragraphs ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString(`<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">`)
	b.WriteString(`<p:cSld><p:spTree><p:sp><p:txBody>`)
	for _, p := range paragraphs {
		b.WriteString(`<a:p><a:r><a:t>` + p + `</a:t></a:r></a:p>`)
	}
	b.WriteString(`</p:txBody></p:sp></p:spTree></p:cSld></p:sld>`)
	return b.String()
}

func TestExtractPptx(t *testing.T) {
	path := writeArchive(t, "deck.pptx", map[string]string{
		"ppt/presentation.xml":            pptxPresentationXML,
		"ppt/_rels/presentation.xml.rels": pptxRelsXML,
		"ppt/slides/slide1.xml":           pptxSlideXML("Title Slide", "Subtitle here"),
		"ppt/slides/slide2.xml":           pptxSlideXML("Second slide body"),
	})

	doc, err := extractPptx(path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Format != FormatPptx {
		t.Fatalf("format = %q, want pptx", doc.Format)
	}
	if len(doc.Slides) != 2 {
		t.Fatalf("slides = %d, want 2", len(doc.Slides))
	}
	if doc.Slides[0].Slide != 1 || doc.Slides[1].Slide != 2 {
		t.Fatalf("slide numbering = %v", doc.Slides)
	}
	if len(doc.Slides[0].Text) != 2 || doc.Slides[0].Text[0] != "Title Slide" {
		t.Fatalf("slide 1 text = %v", doc.Slides[0].Text)
	}

	want := "--- Slide 1 ---\nTitle Slide\nSubtitle here\n\n--- Slide 2 ---\nSecond slide body"
	if doc.FullText != want {
		t.Fatalf("full text = %q, want %q", doc.FullText, want)
	}
}

func TestExtractPptx_TextlessSlideKeepsSlot(t *testing.T) {
	// WHAT: a slide without text keeps its position with an empty (non-nil)
	// text list and contributes no FullText block.
	path := writeArchive(t, "gaps.pptx", map[string]string{
		"ppt/presentation.xml":            pptxPresentationXML,
		"ppt/_rels/presentation.xml.rels": pptxRelsXML,
		"ppt/slides/slide1.xml":           pptxSlideXML(),
		"ppt/slides/slide2.xml":           pptxSlideXML("Only this"),
	})

	doc, err := extractPptx(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Slides) != 2 {
		t.Fatalf("slides = %d, want 2", len(doc.Slides))
	}
	if doc.Slides[0].Text == nil || len(doc.Slides[0].Text) != 0 {
		t.Fatalf("slide 1 text = %#v, want empty non-nil", doc.Slides[0].Text)
	}
	if doc.FullText != "--- Slide 2 ---\nOnly this" {
		t.Fatalf("full text = %q", doc.FullText)
	}
}

func TestExtractPptx_MissingSlidePart(t *testing.T) {
	path := writeArchive(t, "broken.pptx", map[string]string{
		"ppt/presentation.xml":            pptxPresentationXML,
		"ppt/_rels/presentation.xml.rels": pptxRelsXML,
		"ppt/slides/slide1.xml":           pptxSlideXML("ok"),
		// slide2.xml missing
	})

	if _, err := extractPptx(path); err == nil {
		t.Fatal("expected error for missing slide part")
	}
}

func TestExtractPptx_XMLBomb(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">`)
	for i := 0; i < 300; i++ {
		b.WriteString("<a:p>")
	}
	b.WriteString("<a:t>deep</a:t>")
	for i := 0; i < 300; i++ {
		b.WriteString("</a:p>")
	}
	b.WriteString("</p:sld>")

	path := writeArchive(t, "bomb.pptx", map[string]string{
		"ppt/presentation.xml":            pptxPresentationXML,
		"ppt/_rels/presentation.xml.rels": pptxRelsXML,
		"ppt/slides/slide1.xml":           b.String(),
		"ppt/slides/slide2.xml":           pptxSlideXML(),
	})

	_, err := extractPptx(path)
	if err == nil {
		t.Fatal("expected error for deeply nested XML")
	}
	if !strings.Contains(err.Error(), "nesting depth") {
		t.Errorf("expected 'nesting depth' error, got: %v", err)
	}
}
