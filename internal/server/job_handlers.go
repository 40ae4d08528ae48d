package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/raysh454/rawdata/internal/app"
	"github.com/raysh454/rawdata/internal/logging"
	"github.com/raysh454/rawdata/internal/model"
)

// Jobs (REST)

// handleStartScanJob godoc
// @Summary Start a background scan
// @Tags jobs
// @Accept json
// @Produce json
// @Param request body StartScanJobRequest true "Scan to run"
// @Success 202 {object} app.Job
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /jobs/scan [post]
func (s *Server) handleStartScanJob(w http.ResponseWriter, r *http.Request) {
	var body StartScanJobRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	job, err := s.app.Orch.StartScanJob(context.Background(), scanRequest(body))
	if err != nil {
		s.logger.Warn("starting scan job", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, jobErrorStatus(err), err.Error())
		return
	}
	s.logger.Info("started scan job", logging.Field{Key: "job_id", Value: job.ID}, logging.Field{Key: "url", Value: job.URL}, logging.Field{Key: "mode", Value: job.Mode})
	writeJSON(w, http.StatusAccepted, job)
}

func scanRequest(body StartScanJobRequest) app.ScanRequest {
	return app.ScanRequest{
		URL:     body.URL,
		Mode:    model.Mode(body.Mode),
		Backend: app.Backend(body.Backend),
		Overlay: body.Overlay,
		Upload:  body.Upload,
	}
}

func jobErrorStatus(err error) int {
	if errors.Is(err, app.ErrOrchestratorClosed) {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadRequest
}

// handleGetJob godoc
// @Summary Get a job
// @Tags jobs
// @Produce json
// @Param jobID path string true "Job ID"
// @Success 200 {object} app.Job
// @Failure 404 {object} ErrorResponse
// @Router /jobs/{jobID} [get]
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.app.Orch.GetJob(jobID)
	if job == nil {
		s.logger.Warn("getting job: not found", logging.Field{Key: "job_id", Value: jobID})
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleCancelJob godoc
// @Summary Cancel a job
// @Tags jobs
// @Param jobID path string true "Job ID"
// @Success 204
// @Router /jobs/{jobID} [delete]
func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	s.app.Orch.CancelJob(jobID)
	s.logger.Info("canceled job", logging.Field{Key: "job_id", Value: jobID})
	writeJSON(w, http.StatusNoContent, nil)
}

// handleListJobs godoc
// @Summary List jobs
// @Tags jobs
// @Produce json
// @Success 200 {array} app.Job
// @Router /jobs [get]
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.app.Orch.ListJobs()
	writeJSON(w, http.StatusOK, jobs)
}

// WebSockets

// handleScanWS godoc
// @Summary Run a scan and stream its progress over a WebSocket
// @Description Sends the job, then every job event, then the final job with its outcome.
// @Tags jobs
// @Param url query string true "Page to scan"
// @Param mode query string false "quick, full or deep"
// @Param backend query string false "http or browser"
// @Param overlay query bool false "Draw the element overlay"
// @Param upload query bool false "Upload the result to the relay"
// @Router /ws/scan [get]
func (s *Server) handleScanWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	body := StartScanJobRequest{
		URL:     q.Get("url"),
		Mode:    q.Get("mode"),
		Backend: q.Get("backend"),
		Overlay: queryBool(q.Get("overlay")),
		Upload:  queryBool(q.Get("upload")),
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	job, err := s.app.Orch.StartScanJob(r.Context(), scanRequest(body))
	if err != nil {
		s.logger.Warn("starting scan job", logging.Field{Key: "error", Value: err.Error()})
		_ = conn.WriteJSON(ErrorResponse{Error: err.Error()})
		return
	}

	s.logger.Info("started scan job", logging.Field{Key: "job_id", Value: job.ID}, logging.Field{Key: "url", Value: job.URL})
	_ = conn.WriteJSON(job)

	for ev := range job.Events {
		if err := conn.WriteJSON(ev); err != nil {
			// Client went away.
			s.app.Orch.CancelJob(job.ID)
			return
		}
	}

	if final := s.app.Orch.GetJob(job.ID); final != nil {
		_ = conn.WriteJSON(final)
	}
}

func queryBool(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}
