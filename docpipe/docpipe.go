// Package docpipe extracts canonical text and structure from document files.
//
// Supported formats:
//   - .pdf          — per-page text + document metadata (pdfcpu)
//   - .docx         — body paragraphs + table grids (archive/zip → word/document.xml)
//   - .xlsx         — sheet rows with cached cell values (archive/zip → worksheets)
//   - .pptx         — per-slide text frames (archive/zip → ppt/slides)
//   - .html / .htm  — title + flattened visible text
//   - .txt .md .csv .json .xml .yaml .yml .log — verbatim text passthrough
//
// Every strategy is pure in the input bytes: the same bytes always produce the
// same structured content. Parse failures surface as *Error with
// KindMalformedInput, carrying the underlying parser message.
//
// Usage:
//
//	pipe := docpipe.New(docpipe.Config{})
//	doc, err := pipe.ExtractUpload(ctx, "report.pdf", data)
package docpipe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hazyhaar/docutils/spool"
)

// Config configures a Pipeline.
type Config struct {
	// MaxFileSize is the maximum upload size to process (default: 100 MB).
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size"`

	// SpoolDir is where uploads are materialized (default: os.TempDir).
	SpoolDir string `json:"spool_dir" yaml:"spool_dir"`

	// Logger for debug/info messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 100 * 1024 * 1024
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Pipeline is the extraction engine. It holds only configuration; all request
// state lives in per-call locals, so one Pipeline serves any number of
// concurrent requests.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Pipeline with the given configuration.
func New(cfg Config) *Pipeline {
	cfg.defaults()
	return &Pipeline{cfg: cfg, logger: cfg.Logger}
}

// ExtractUpload runs the full lifecycle for one uploaded document: resolve the
// format from the declared filename, spool the bytes to a uniquely named
// temporary file, invoke the matching strategy, and release the temporary file
// on every exit path. On success the result carries the filename, the byte
// size of the upload, and the wall-clock duration of the extraction step.
func (p *Pipeline) ExtractUpload(ctx context.Context, filename string, data []byte) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	format, ok := Resolve(filename)
	if !ok {
		return nil, errUnsupported(ext)
	}
	if int64(len(data)) > p.cfg.MaxFileSize {
		return nil, errTooLarge(int64(len(data)), p.cfg.MaxFileSize)
	}

	res, err := spool.Acquire(p.cfg.SpoolDir, data, ext)
	if err != nil {
		return nil, errResource(err)
	}
	defer res.Release()

	start := time.Now()
	doc, err := p.extract(format, res.Path())
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	doc.Filename = filename
	doc.FileSize = int64(len(data))
	doc.ProcessingTime = roundMillis(elapsed)

	p.logger.Info("parsed document",
		"filename", filename, "format", format, "bytes", len(data), "elapsed", elapsed)
	return doc, nil
}

// ExtractFile extracts a document that already sits on disk (the CLI and MCP
// path). No spooling happens; the format is resolved from the path itself.
func (p *Pipeline) ExtractFile(ctx context.Context, path string) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	format, ok := Resolve(path)
	if !ok {
		return nil, errUnsupported(ext)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, errResource(err)
	}
	if info.Size() > p.cfg.MaxFileSize {
		return nil, errTooLarge(info.Size(), p.cfg.MaxFileSize)
	}

	start := time.Now()
	doc, err := p.extract(format, path)
	if err != nil {
		return nil, err
	}

	doc.Filename = filepath.Base(path)
	doc.FileSize = info.Size()
	doc.ProcessingTime = roundMillis(time.Since(start))
	return doc, nil
}

// extract dispatches to the strategy for format. The switch is exhaustive over
// the Format constants; plain errors from strategies are tagged malformed here
// so each strategy stays a pure parse function.
func (p *Pipeline) extract(format Format, path string) (*Document, error) {
	p.logger.Debug("extracting document", "path", path, "format", format)

	var (
		doc *Document
		err error
	)
	switch format {
	case FormatPDF:
		doc, err = extractPDF(path)
	case FormatDocx:
		doc, err = extractDocx(path)
	case FormatXlsx:
		doc, err = extractXlsx(path)
	case FormatPptx:
		doc, err = extractPptx(path)
	case FormatHTML:
		doc, err = extractHTML(path)
	case FormatText:
		doc, err = extractText(path)
	default:
		return nil, &Error{Kind: KindUnsupportedFormat,
			Message: fmt.Sprintf("no strategy for format %q", format)}
	}
	if err != nil {
		var perr *Error
		if errors.As(err, &perr) {
			return nil, perr
		}
		return nil, errMalformed(format, err)
	}
	return doc, nil
}

// roundMillis reports a duration in seconds, rounded to the millisecond.
func roundMillis(d time.Duration) float64 {
	return math.Round(d.Seconds()*1000) / 1000
}
