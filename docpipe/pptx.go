package docpipe

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"strings"
)

// pptxPresentation mirrors ppt/presentation.xml: the slide ID list gives the
// presentation-declared slide order.
type pptxPresentation struct {
	SlideIDs []pptxSlideID `xml:"sldIdLst>sldId"`
}

// RID is namespace-qualified: sldId also carries a plain id attribute
// holding the numeric slide ID, which is not the relationship key.
type pptxSlideID struct {
	RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
}

// extractPptx parses a .pptx presentation. Slides keep their declared order,
// numbered from 1. For each slide the text-frame paragraphs are collected in
// document order, trimmed, dropping empties; a slide without text keeps its
// slot with an empty text list but contributes nothing to FullText.
func extractPptx(path string) (*Document, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()

	var pres pptxPresentation
	if err := decodePart(&r.Reader, "ppt/presentation.xml", &pres); err != nil {
		return nil, err
	}

	var rels relationships
	if err := decodePart(&r.Reader, "ppt/_rels/presentation.xml.rels", &rels); err != nil {
		return nil, err
	}
	partByRID := rels.targets("ppt")

	slides := make([]Slide, 0, len(pres.SlideIDs))
	var blocks []string

	for i, sid := range pres.SlideIDs {
		part, ok := partByRID[sid.RID]
		if !ok {
			return nil, fmt.Errorf("slide %d: relationship %s not found", i+1, sid.RID)
		}

		texts, err := slideParagraphs(&r.Reader, part)
		if err != nil {
			return nil, err
		}
		if texts == nil {
			texts = []string{}
		}
		slides = append(slides, Slide{Slide: i + 1, Text: texts})

		if len(texts) > 0 {
			blocks = append(blocks,
				fmt.Sprintf("--- Slide %d ---\n%s", i+1, strings.Join(texts, "\n")))
		}
	}

	return &Document{
		Format:   FormatPptx,
		Slides:   slides,
		FullText: strings.Join(blocks, "\n\n"),
	}, nil
}

// slideParagraphs streams one slide part, returning the trimmed non-empty
// paragraph texts of its text frames in document order. Each <a:p> paragraph
// concatenates its <a:t> runs.
func slideParagraphs(r *zip.Reader, part string) ([]string, error) {
	var (
		texts  []string
		cur    strings.Builder
		inPara bool
		inText bool
	)

	err := streamTokens(r, part, func(tok xml.Token) error {
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inPara = true
				cur.Reset()
			case "t":
				inText = inPara
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if inPara {
					inPara = false
					if text := strings.TrimSpace(cur.String()); text != "" {
						texts = append(texts, text)
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return texts, nil
}
