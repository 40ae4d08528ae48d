package server

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/raysh454/rawdata/internal/logging"
	"github.com/raysh454/rawdata/internal/model"
	"github.com/raysh454/rawdata/internal/relay"
	"github.com/raysh454/rawdata/internal/render"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// handleIndex godoc
// @Summary Service information
// @Tags service
// @Produce json
// @Success 200 {object} ServiceInfo
// @Router / [get]
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ServiceInfo{
		Name:        "raw.data Server",
		Version:     Version,
		Description: "Server for storing webpage scans and providing shareable links for AI",
		Endpoints: map[string]string{
			"POST /scan":          "Upload scan data, get shareable link",
			"GET /scan/{id}":      "Retrieve scan by ID as HTML",
			"GET /scan/{id}/json": "Retrieve the raw scan JSON",
			"GET /scan/{id}/ai":   "Retrieve the scan as Markdown for AI",
			"GET /scan/{id}/pdf":  "Retrieve the scan as a PDF report",
			"POST /jobs/scan":     "Start a background scan",
			"GET /ws/scan":        "Run a scan and stream its progress",
			"GET /health":         "Server health check",
		},
		Docs: "/swagger/index.html",
	})
}

// handleHealth godoc
// @Summary Health check
// @Tags service
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:     "ok",
		ScansCount: s.relay.Len(),
		Uptime:     time.Since(s.started).Seconds(),
		Memory: MemoryReport{
			Used:  relay.FormatMB(int(mem.HeapAlloc)),
			Total: relay.FormatMB(int(mem.HeapSys)),
		},
	})
}

// handleUploadScan godoc
// @Summary Upload scan data and get a shareable link
// @Tags relay
// @Accept json
// @Produce json
// @Param scan body object true "Scan result"
// @Success 200 {object} relay.Receipt
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} SizeErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /scan [post]
func (s *Server) handleUploadScan(w http.ResponseWriter, r *http.Request) {
	// Whitespace is compacted away before the size check, so allow some
	// slack on the wire.
	limit := int64(s.relay.MaxSize()) * 4
	body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		s.logger.Warn("reading scan upload", logging.Field{Key: "error", Value: err.Error()})
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to save scan", Message: err.Error()})
		return
	}
	if int64(len(body)) > limit {
		s.writeTooLarge(w, &relay.SizeError{Size: len(body), Max: s.relay.MaxSize()})
		return
	}

	receipt, err := s.relay.Put(body)
	var sizeErr *relay.SizeError
	switch {
	case err == nil:
	case errors.Is(err, relay.ErrEmptyPayload):
		writeError(w, http.StatusBadRequest, "Scan data is empty")
		return
	case errors.Is(err, relay.ErrInvalidPayload):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Scan data is not a JSON object", Message: err.Error()})
		return
	case errors.As(err, &sizeErr):
		s.writeTooLarge(w, sizeErr)
		return
	default:
		s.logger.Error("saving scan", logging.Field{Key: "error", Value: err.Error()})
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to save scan", Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) writeTooLarge(w http.ResponseWriter, e *relay.SizeError) {
	s.logger.Warn("scan upload too large", logging.Field{Key: "size", Value: e.Size}, logging.Field{Key: "max", Value: e.Max})
	writeJSON(w, http.StatusRequestEntityTooLarge, SizeErrorResponse{
		Error:        "Scan data too large",
		MaxSize:      relay.FormatMB(e.Max),
		ReceivedSize: relay.FormatMB(e.Size),
	})
}

// lookup returns the stored scan for the {id} route parameter.
func (s *Server) lookup(r *http.Request) (string, *relay.Entry, error) {
	id := chi.URLParam(r, "id")
	entry, err := s.relay.Get(id)
	return id, entry, err
}

// decode reads a stored payload as a ScanResult. It writes the error
// response itself and reports whether the handler may continue.
func (s *Server) decode(w http.ResponseWriter, entry *relay.Entry) (*model.ScanResult, bool) {
	result, err := entry.Result()
	if err != nil {
		s.logger.Warn("decoding stored scan", logging.Field{Key: "id", Value: entry.ID}, logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusUnprocessableEntity, "stored data is not a scan result")
		return nil, false
	}
	return result, true
}

// handleScanHTML godoc
// @Summary Retrieve a scan as an HTML page
// @Tags relay
// @Produce html
// @Param id path string true "Scan ID"
// @Success 200 {string} string
// @Failure 404 {string} string
// @Router /scan/{id} [get]
func (s *Server) handleScanHTML(w http.ResponseWriter, r *http.Request) {
	id, entry, err := s.lookup(r)
	if err != nil {
		var buf bytes.Buffer
		_ = render.NotFoundHTML(&buf, id, errors.Is(err, relay.ErrExpired))
		writeText(w, http.StatusNotFound, "text/html; charset=utf-8", buf.String())
		return
	}
	result, ok := s.decode(w, entry)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := render.HTML(&buf, result, id); err != nil {
		s.logger.Error("rendering scan", logging.Field{Key: "id", Value: id}, logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, "failed to render scan")
		return
	}
	writeText(w, http.StatusOK, "text/html; charset=utf-8", buf.String())
}

// handleScanJSON godoc
// @Summary Retrieve the raw scan JSON
// @Tags relay
// @Produce json
// @Param id path string true "Scan ID"
// @Success 200 {object} object
// @Failure 404 {object} ErrorResponse
// @Router /scan/{id}/json [get]
func (s *Server) handleScanJSON(w http.ResponseWriter, r *http.Request) {
	id, entry, err := s.lookup(r)
	if err != nil {
		msg := "Scan not found or expired"
		if errors.Is(err, relay.ErrExpired) {
			msg = "Scan expired"
		}
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: msg, ID: id})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(entry.Payload)
}

// handleScanAI godoc
// @Summary Retrieve the scan as Markdown for AI assistants
// @Tags relay
// @Produce plain
// @Param id path string true "Scan ID"
// @Success 200 {string} string
// @Failure 404 {string} string
// @Router /scan/{id}/ai [get]
func (s *Server) handleScanAI(w http.ResponseWriter, r *http.Request) {
	id, entry, err := s.lookup(r)
	if err != nil {
		msg := "Scan not found or expired"
		if errors.Is(err, relay.ErrExpired) {
			msg = "Scan expired"
		}
		writeText(w, http.StatusNotFound, "text/plain; charset=utf-8", msg)
		return
	}
	result, ok := s.decode(w, entry)
	if !ok {
		return
	}
	writeText(w, http.StatusOK, "text/plain; charset=utf-8", render.Markdown(result, id))
}

// handleScanPDF godoc
// @Summary Retrieve the scan as a PDF report
// @Tags relay
// @Produce application/pdf
// @Param id path string true "Scan ID"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Router /scan/{id}/pdf [get]
func (s *Server) handleScanPDF(w http.ResponseWriter, r *http.Request) {
	id, entry, err := s.lookup(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Scan not found or expired", ID: id})
		return
	}
	result, ok := s.decode(w, entry)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := render.PDF(&buf, result, id); err != nil {
		s.logger.Error("rendering pdf", logging.Field{Key: "id", Value: id}, logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, "failed to render pdf")
		return
	}
	w.Header().Set("Content-Disposition", `inline; filename="rawdata-`+id+`.pdf"`)
	writeText(w, http.StatusOK, "application/pdf", buf.String())
}
