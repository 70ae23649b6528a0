package docpipe

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// maxXMLDepth bounds element nesting in OOXML part parsing. Real documents
// stay far below this; past it we are looking at an XML bomb.
const maxXMLDepth = 256

var errXMLTooDeep = fmt.Errorf("xml nesting depth exceeds %d", maxXMLDepth)

// zipPart returns the named file from an OOXML archive, or nil.
func zipPart(r *zip.Reader, name string) *zip.File {
	for _, f := range r.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// decodePart opens an archive part and decodes it into v.
func decodePart(r *zip.Reader, name string, v any) error {
	f := zipPart(r, name)
	if f == nil {
		return fmt.Errorf("%s not found in archive", name)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()
	if err := xml.NewDecoder(rc).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// relationships mirrors an OPC .rels part: relationship IDs to part targets.
type relationships struct {
	Rels []relationship `xml:"Relationship"`
}

type relationship struct {
	ID     string `xml:"Id,attr"`
	Target string `xml:"Target,attr"`
}

// targets returns the ID→target map with targets resolved relative to base
// (e.g. base "xl" turns "worksheets/sheet1.xml" into "xl/worksheets/sheet1.xml";
// absolute targets like "/xl/worksheets/sheet1.xml" lose their leading slash).
func (r *relationships) targets(base string) map[string]string {
	m := make(map[string]string, len(r.Rels))
	for _, rel := range r.Rels {
		t := rel.Target
		if strings.HasPrefix(t, "/") {
			t = strings.TrimPrefix(t, "/")
		} else if base != "" {
			t = base + "/" + t
		}
		m[rel.ID] = t
	}
	return m
}

// streamTokens walks an archive part token by token with depth accounting,
// calling fn for every token. Used by the parts too irregular for struct
// decoding (word/document.xml, slide XML).
func streamTokens(r *zip.Reader, name string, fn func(tok xml.Token) error) error {
	f := zipPart(r, name)
	if f == nil {
		return fmt.Errorf("%s not found in archive", name)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	depth := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
			if depth > maxXMLDepth {
				return fmt.Errorf("%s: %w", name, errXMLTooDeep)
			}
		case xml.EndElement:
			depth--
		}
		if err := fn(tok); err != nil {
			return err
		}
	}
}
