package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/raysh454/rawdata/internal/history"
	"github.com/raysh454/rawdata/internal/logging"
	"github.com/raysh454/rawdata/internal/relay"
	"github.com/raysh454/rawdata/internal/scandiff"
)

// handleListHistory godoc
// @Summary List stored scans
// @Tags history
// @Produce json
// @Success 200 {object} HistoryResponse
// @Failure 500 {object} ErrorResponse
// @Router /history [get]
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	store := s.app.Components.History
	items, err := store.List(r.Context())
	if err != nil {
		s.logger.Error("listing history", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, "failed to list history")
		return
	}
	usage, err := store.Usage(r.Context())
	if err != nil {
		s.logger.Error("reading history usage", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, "failed to list history")
		return
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Items: items, Usage: usage})
}

// handleClearHistory godoc
// @Summary Remove every stored scan
// @Tags history
// @Produce json
// @Success 200 {object} ClearedResponse
// @Router /history [delete]
func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	n, err := s.app.Components.History.Clear(r.Context())
	if err != nil {
		s.logger.Error("clearing history", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, "failed to clear history")
		return
	}
	writeJSON(w, http.StatusOK, ClearedResponse{Removed: n})
}

// handleGetHistory godoc
// @Summary Get one stored scan
// @Tags history
// @Produce json
// @Param id path string true "History ID"
// @Success 200 {object} model.ScanResult
// @Failure 404 {object} ErrorResponse
// @Router /history/{id} [get]
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, err := s.app.Components.History.Get(r.Context(), id)
	if err != nil {
		s.writeHistoryError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleDeleteHistory godoc
// @Summary Delete one stored scan
// @Tags history
// @Param id path string true "History ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /history/{id} [delete]
func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.app.Components.History.Delete(r.Context(), id); err != nil {
		s.writeHistoryError(w, id, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// handleUploadHistory godoc
// @Summary Upload a stored scan to the relay
// @Tags history
// @Produce json
// @Param id path string true "History ID"
// @Success 200 {object} relay.Receipt
// @Failure 404 {object} ErrorResponse
// @Failure 413 {object} SizeErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /history/{id}/upload [post]
func (s *Server) handleUploadHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	receipt, err := s.app.Orch.UploadFromHistory(r.Context(), id)
	var sizeErr *relay.SizeError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, receipt)
	case errors.Is(err, history.ErrScanNotFound):
		s.writeHistoryError(w, id, err)
	case errors.As(err, &sizeErr):
		s.writeTooLarge(w, sizeErr)
	default:
		s.logger.Warn("uploading stored scan", logging.Field{Key: "id", Value: id}, logging.Field{Key: "error", Value: err.Error()})
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: "upload failed", Message: err.Error(), ID: id})
	}
}

// handleDiffHistory godoc
// @Summary Compare two stored scans
// @Tags history
// @Produce json
// @Param id path string true "Base history ID"
// @Param other path string true "Head history ID"
// @Success 200 {object} scandiff.Diff
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /history/{id}/diff/{other} [get]
func (s *Server) handleDiffHistory(w http.ResponseWriter, r *http.Request) {
	store := s.app.Components.History
	baseID, headID := chi.URLParam(r, "id"), chi.URLParam(r, "other")
	base, err := store.Get(r.Context(), baseID)
	if err != nil {
		s.writeHistoryError(w, baseID, err)
		return
	}
	head, err := store.Get(r.Context(), headID)
	if err != nil {
		s.writeHistoryError(w, headID, err)
		return
	}
	d, err := scandiff.Compare(baseID, base, headID, head)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: "cannot compare scans", Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) writeHistoryError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, history.ErrScanNotFound) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "scan not found in history", ID: id})
		return
	}
	s.logger.Error("reading history", logging.Field{Key: "id", Value: id}, logging.Field{Key: "error", Value: err.Error()})
	writeError(w, http.StatusInternalServerError, "failed to read history")
}
