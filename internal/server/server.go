package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/SaweraJamal/PowerScan/internal/config"
	"github.com/SaweraJamal/PowerScan/internal/core"
	"github.com/SaweraJamal/PowerScan/internal/filesystem"
	"github.com/SaweraJamal/PowerScan/internal/report"
	"github.com/SaweraJamal/PowerScan/pkg/models"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// multipartMemory is the part of an upload kept in memory before spilling to disk
const multipartMemory = 8 << 20

// Adviser produces migration advice for a finished scan
type Adviser interface {
	Advise(ctx context.Context, report *models.ScanReport) (*models.AdviceReport, error)
}

// Options carries the optional collaborators of a Server
type Options struct {
	Version string
	Store   Store
	Adviser Adviser
}

// Server exposes scanning and stored reports over HTTP
type Server struct {
	config  *config.Config
	catalog *CatalogHolder
	store   Store
	adviser Adviser
	version string
	logger  *zap.Logger
	router  *httprouter.Router
	server  *http.Server
}

// NewServer creates a new API server
func NewServer(cfg *config.Config, holder *CatalogHolder, logger *zap.Logger, opts Options) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	store := opts.Store
	if store == nil {
		store = NewMemoryStore(DefaultHistory)
	}

	s := &Server{
		config:  cfg,
		catalog: holder,
		store:   store,
		adviser: opts.Adviser,
		version: opts.Version,
		logger:  logger,
		router:  httprouter.New(),
	}

	s.setupRoutes()
	s.server = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.logger.Info("Starting server", zap.String("addr", s.config.Server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	s.router.GET("/api/detectors", s.handleDetectors)
	s.router.POST("/api/scan", s.handleScan)

	// Reports, "last" addresses the latest one
	s.router.GET("/api/reports", s.handleReports)
	s.router.GET("/api/reports/:id", s.handleReport)
	s.router.GET("/api/reports/:id/records", s.handleRecords)
	s.router.GET("/api/reports/:id/summary", s.handleSummary)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	cat := s.catalog.Load()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"version":   s.version,
		"catalog":   cat.Source(),
		"detectors": cat.Len(),
	})
}

func (s *Server) handleDetectors(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	cat := s.catalog.Load()
	writeJSON(w, http.StatusOK, map[string]any{
		"source":    cat.Source(),
		"count":     cat.Len(),
		"detectors": cat.Detectors(),
	})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	start := time.Now()

	if format := r.URL.Query().Get("format"); format != "" {
		if _, ok := report.NormalizeFormat(format); !ok {
			writeError(w, http.StatusBadRequest, "unknown report format: %s", format)
			return
		}
	}

	if limit := filesystem.ParseSize(s.config.Server.MaxUpload); limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds %d bytes", tooLarge.Limit)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form: %v", err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	targets, err := readUploads(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	if len(targets) == 0 {
		writeError(w, http.StatusBadRequest, "no files uploaded, use the \"files\" field")
		return
	}

	// One catalog for the whole request even if a reload lands mid-scan
	cat := s.catalog.Load()

	selected := s.config.DetectorSelection(cat.IDs())
	if values, ok := r.MultipartForm.Value["detectors"]; ok {
		selected = splitList(values)
	}
	severities := s.config.SeverityFilter()
	if values, ok := r.MultipartForm.Value["severities"]; ok {
		severities = parseSeverities(splitList(values))
	}

	scanner := core.NewScanner(cat, s.config, s.logger)
	result, err := scanner.Scan(r.Context(), targets, selected, severities)
	if err != nil {
		s.logger.Warn("Scan aborted", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "scan aborted: %v", err)
		return
	}

	doc := report.NewDocument(result, s.version, cat.Source(), time.Since(start))

	if s.adviser != nil && formBool(r.MultipartForm.Value["advise"]) {
		advice, err := s.adviser.Advise(r.Context(), result)
		if err != nil {
			s.logger.Warn("Advice failed", zap.Error(err))
		} else {
			doc.Advice = advice
		}
	}

	s.store.Save(doc)
	s.logger.Info("API scan completed",
		zap.String("scan_id", doc.Meta.ScanID),
		zap.Int("files", result.FileCount),
		zap.Int("occurrences", result.TotalCount))

	s.render(w, r, doc)
}

func (s *Server) handleReports(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]any{
		"reports": s.store.List(),
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	doc, ok := s.lookup(w, ps)
	if !ok {
		return
	}
	s.render(w, r, doc)
}

func (s *Server) handleRecords(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	doc, ok := s.lookup(w, ps)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report.Flatten(doc.Report))
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	doc, ok := s.lookup(w, ps)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report.SummarizeReport(doc.Report))
}

func (s *Server) lookup(w http.ResponseWriter, ps httprouter.Params) (*report.Document, bool) {
	id := ps.ByName("id")
	doc, ok := s.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "report %s not found", id)
		return nil, false
	}
	return doc, true
}

// render writes the document in the format named by the "format" query
// parameter, JSON by default
func (s *Server) render(w http.ResponseWriter, r *http.Request, doc *report.Document) {
	format := r.URL.Query().Get("format")
	if format == "" {
		writeJSON(w, http.StatusOK, doc)
		return
	}

	normalized, ok := report.NormalizeFormat(format)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown report format: %s", format)
		return
	}

	w.Header().Set("Content-Type", contentType(normalized))
	w.WriteHeader(http.StatusOK)
	if err := report.Render(w, normalized, doc); err != nil {
		s.logger.Error("Failed to render report", zap.String("format", normalized), zap.Error(err))
	}
}

// readUploads reads every part of the "files" field as a scan target
func readUploads(r *http.Request) ([]models.ScanTarget, error) {
	var targets []models.ScanTarget
	for _, fh := range r.MultipartForm.File["files"] {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
		}
		targets = append(targets, models.ScanTarget{Name: fh.Filename, Content: content})
	}
	return targets, nil
}

// splitList flattens repeated and comma separated form values. A present but
// blank field yields an empty, non-nil list.
func splitList(values []string) []string {
	out := []string{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseSeverities(names []string) []models.Severity {
	out := []models.Severity{}
	for _, name := range names {
		if sev, ok := models.ParseSeverity(name); ok {
			out = append(out, sev)
		}
	}
	return out
}

func formBool(values []string) bool {
	if len(values) == 0 {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(values[0])) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func contentType(format string) string {
	switch format {
	case report.FormatJSON, report.FormatRecords, report.FormatSARIF:
		return "application/json"
	case report.FormatCSV:
		return "text/csv; charset=utf-8"
	case report.FormatHTML:
		return "text/html; charset=utf-8"
	case report.FormatMarkdown:
		return "text/markdown; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, map[string]string{"error": fmt.Sprintf(format, args...)})
}
