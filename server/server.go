// Package server exposes the extraction engine over HTTP. Error payloads
// follow the {"detail": "..."} shape so clients get one stable envelope for
// every failure.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hazyhaar/docutils/audit"
	"github.com/hazyhaar/docutils/docpipe"
)

// Server wires the pipeline behind a chi router. Extraction is CPU-bound, so
// in-flight parses are capped by a semaphore rather than left to the HTTP
// connection limit.
type Server struct {
	pipe   *docpipe.Pipeline
	audit  *audit.Logger
	logger *slog.Logger
	gate   chan struct{}
	router chi.Router
}

// Options configures a Server. Audit may be nil to disable outcome recording.
type Options struct {
	Pipeline      *docpipe.Pipeline
	Audit         *audit.Logger
	Logger        *slog.Logger
	MaxConcurrent int
	MaxFileSize   int64
}

// New builds a Server and its routes.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 8
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = 100 * 1024 * 1024
	}

	s := &Server{
		pipe:   opts.Pipeline,
		audit:  opts.Audit,
		logger: opts.Logger,
		gate:   make(chan struct{}, opts.MaxConcurrent),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/formats", s.handleFormats)
	r.Post("/parse", s.handleParse(opts.MaxFileSize))

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "docutils",
	})
}

func (s *Server) handleFormats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"formats": docpipe.SupportedExtensions(),
	})
}

// handleParse accepts a multipart upload under the "file" field, runs the
// extraction, and returns the canonical document. An optional "pages" form
// field is accepted for compatibility but does not alter extraction.
func (s *Server) handleParse(maxFileSize int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Leave headroom for multipart framing around the file itself.
		r.Body = http.MaxBytesReader(w, r.Body, maxFileSize+1<<20)

		if err := r.ParseMultipartForm(10 << 20); err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				writeDetail(w, http.StatusRequestEntityTooLarge,
					fmt.Sprintf("request body too large (max %d bytes)", maxFileSize))
				return
			}
			writeDetail(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "missing file field")
			return
		}
		defer file.Close()

		filename := header.Filename
		if filename == "" {
			filename = "document"
		}
		if pages := r.FormValue("pages"); pages != "" {
			s.logger.Debug("pages selector ignored", "pages", pages, "filename", filename)
		}

		data, err := io.ReadAll(file)
		if err != nil {
			writeDetail(w, http.StatusBadRequest,
				fmt.Sprintf("read upload %s: %v", filename, err))
			return
		}

		select {
		case s.gate <- struct{}{}:
			defer func() { <-s.gate }()
		case <-r.Context().Done():
			writeDetail(w, http.StatusServiceUnavailable, "request cancelled while queued")
			return
		}

		start := time.Now()
		doc, err := s.pipe.ExtractUpload(r.Context(), filename, data)
		if err != nil {
			s.recordAudit(r.Context(), audit.Entry{
				Filename:   filename,
				FileSize:   int64(len(data)),
				DurationMs: time.Since(start).Milliseconds(),
				Error:      err.Error(),
			})
			s.writeExtractError(w, filename, err)
			return
		}

		s.recordAudit(r.Context(), audit.Entry{
			Filename:   filename,
			Format:     string(doc.Format),
			FileSize:   int64(len(data)),
			DurationMs: time.Since(start).Milliseconds(),
			Success:    true,
		})
		writeJSON(w, http.StatusOK, doc)
	}
}

// writeExtractError maps pipeline failures to HTTP statuses. Unknown
// extensions are a client error carrying the full supported list; everything
// else is a parse failure in the upstream "Failed to parse" shape.
func (s *Server) writeExtractError(w http.ResponseWriter, filename string, err error) {
	var perr *docpipe.Error
	if errors.As(err, &perr) {
		switch perr.Kind {
		case docpipe.KindUnsupportedFormat:
			writeDetail(w, http.StatusBadRequest, perr.Message)
			return
		case docpipe.KindTooLarge:
			writeDetail(w, http.StatusRequestEntityTooLarge, perr.Message)
			return
		case docpipe.KindResource:
			s.logger.Error("spool failure", "filename", filename, "error", err)
			writeDetail(w, http.StatusInternalServerError, "internal error")
			return
		}
	}
	s.logger.Warn("extraction failed", "filename", filename, "error", err)
	writeDetail(w, http.StatusInternalServerError,
		fmt.Sprintf("Failed to parse %s: %v", filename, err))
}

func (s *Server) recordAudit(ctx context.Context, e audit.Entry) {
	if s.audit == nil {
		return
	}
	s.audit.Log(ctx, e)
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"elapsed", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
