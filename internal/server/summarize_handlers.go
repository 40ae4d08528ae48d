package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/raysh454/rawdata/internal/logging"
	"github.com/raysh454/rawdata/internal/model"
	"github.com/raysh454/rawdata/internal/relay"
	"github.com/raysh454/rawdata/internal/summarize"
)

// handleSummarize godoc
// @Summary Ask the summariser about a stored scan
// @Tags summarize
// @Accept json
// @Produce json
// @Param request body SummarizeRequest true "Scan and question"
// @Success 200 {object} SummarizeResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /summarize [post]
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var body SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, ok := s.resolveScan(w, r, body.HistoryID, body.ScanID)
	if !ok {
		return
	}

	answer, err := s.app.Components.Summarizer.Summarize(r.Context(), result, body.Messages, body.Question)
	if err != nil {
		s.writeSummarizeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SummarizeResponse{Answer: answer})
}

// handleAssess godoc
// @Summary Judge the legitimacy of a scanned GitHub repository
// @Tags summarize
// @Accept json
// @Produce json
// @Param request body AssessRequest true "Deep GitHub scan"
// @Success 200 {object} summarize.Assessment
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /assess [post]
func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	var body AssessRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, ok := s.resolveScan(w, r, body.HistoryID, body.ScanID)
	if !ok {
		return
	}
	var repo *model.GitHubData
	if result.DeepData != nil {
		repo, _ = result.DeepData.Data.(*model.GitHubData)
	}
	if repo == nil {
		writeError(w, http.StatusBadRequest, "scan has no GitHub repository data")
		return
	}

	verdict, err := s.app.Components.Summarizer.AssessRepository(r.Context(), repo)
	if err != nil {
		s.writeSummarizeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, verdict)
}

// resolveScan loads the scan named by a history id or a relay id. It writes
// the error response itself and reports whether the handler may continue.
func (s *Server) resolveScan(w http.ResponseWriter, r *http.Request, historyID, scanID string) (*model.ScanResult, bool) {
	switch {
	case historyID != "":
		result, err := s.app.Components.History.Get(r.Context(), historyID)
		if err != nil {
			s.writeHistoryError(w, historyID, err)
			return nil, false
		}
		return result, true
	case scanID != "":
		entry, err := s.relay.Get(scanID)
		if err != nil {
			msg := "Scan not found or expired"
			if errors.Is(err, relay.ErrExpired) {
				msg = "Scan expired"
			}
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: msg, ID: scanID})
			return nil, false
		}
		return s.decode(w, entry)
	default:
		writeError(w, http.StatusBadRequest, "history_id or scan_id is required")
		return nil, false
	}
}

func (s *Server) writeSummarizeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, summarize.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, summarize.ErrPDFUnreadable):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.Warn("summariser request failed", logging.Field{Key: "error", Value: err.Error()})
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: "summariser request failed", Message: err.Error()})
	}
}
