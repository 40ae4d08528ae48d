package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raysh454/rawdata/internal/engine"
	"github.com/raysh454/rawdata/internal/logging"
	"github.com/raysh454/rawdata/internal/model"
	"github.com/raysh454/rawdata/internal/pdftext"
	"github.com/raysh454/rawdata/internal/relay"
)

var ErrOrchestratorClosed = errors.New("orchestrator is closed")

type JobEventType string

const (
	JobEventStatus   JobEventType = "status"
	JobEventProgress JobEventType = "progress"
	JobEventResult   JobEventType = "result"
)

type JobEvent struct {
	JobID string       `json:"job_id"`
	Type  JobEventType `json:"type"`

	// For status changes
	Status JobStatus `json:"status,omitempty"`
	Error  string    `json:"error,omitempty"`

	// For PDF progress
	Stage     string `json:"stage,omitempty"`
	Processed int    `json:"processed,omitempty"`
	Total     int    `json:"total,omitempty"`
}

type JobStatus string

const (
	JobPending  JobStatus = "pending"
	JobRunning  JobStatus = "running"
	JobDone     JobStatus = "done"
	JobFailed   JobStatus = "failed"
	JobCanceled JobStatus = "canceled"
)

func (s JobStatus) finished() bool {
	return s == JobDone || s == JobFailed || s == JobCanceled
}

// ScanRequest describes one scan. Zero fields fall back to cfg.Scan.
type ScanRequest struct {
	URL     string     `json:"url"`
	Mode    model.Mode `json:"mode,omitempty"`
	Backend Backend    `json:"backend,omitempty"`
	Overlay bool       `json:"overlay,omitempty"`
	Upload  bool       `json:"upload,omitempty"`

	// Body, when set, is scanned instead of fetching URL.
	Body        []byte `json:"-"`
	ContentType string `json:"-"`
}

// ScanOutcome is what a finished scan produced.
type ScanOutcome struct {
	Result    *model.ScanResult `json:"result"`
	HistoryID string            `json:"history_id,omitempty"`
	Receipt   *relay.Receipt    `json:"relay,omitempty"`
	// UploadError is set when the upload failed. The scan is still in history.
	UploadError string `json:"upload_error,omitempty"`
}

type Job struct {
	ID        string        `json:"id"`
	Type      string        `json:"type"`
	URL       string        `json:"url"`
	Mode      model.Mode    `json:"mode"`
	Status    JobStatus     `json:"status"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
	Events    chan JobEvent `json:"-"`

	Outcome *ScanOutcome `json:"outcome,omitempty"`
}

// Orchestrator runs scans, records them in history and optionally uploads
// them to the relay. Background scans are tracked as jobs that stream events.
type Orchestrator struct {
	cfg    *Config
	comps  *Components
	logger logging.Logger
	now    func() time.Time

	jobsMu     sync.Mutex
	jobs       map[string]*Job
	jobCancels map[string]context.CancelFunc
	closed     bool
	wg         sync.WaitGroup
}

// NewOrchestrator ties together config, components and logger.
func NewOrchestrator(cfg *Config, comps *Components, logger logging.Logger) *Orchestrator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Orchestrator{
		cfg:        cfg,
		comps:      comps,
		logger:     logger.With(logging.Field{Key: "component", Value: "orchestrator"}),
		now:        time.Now,
		jobs:       make(map[string]*Job),
		jobCancels: make(map[string]context.CancelFunc),
	}
}

// Components returns the shared collaborators.
func (o *Orchestrator) Components() *Components { return o.comps }

func (o *Orchestrator) normalize(req ScanRequest) (ScanRequest, error) {
	if req.URL == "" && req.Body == nil {
		return req, errors.New("scan request needs a url")
	}
	if req.Mode == "" {
		req.Mode = o.cfg.Scan.Mode
	}
	mode, err := model.ParseMode(string(req.Mode))
	if err != nil {
		return req, err
	}
	req.Mode = mode
	if req.Backend == "" {
		req.Backend = o.cfg.Scan.Backend
	}
	if req.Backend, err = ParseBackend(string(req.Backend)); err != nil {
		return req, err
	}
	req.Overlay = req.Overlay || o.cfg.Scan.Overlay
	req.Upload = req.Upload || o.cfg.Scan.Upload
	return req, nil
}

func engineRequest(req ScanRequest, progress pdftext.ProgressFunc) engine.Request {
	return engine.Request{Mode: req.Mode, DrawOverlay: req.Overlay, Progress: progress}
}

// Scan runs req to completion in the caller's goroutine.
func (o *Orchestrator) Scan(ctx context.Context, req ScanRequest, progress pdftext.ProgressFunc) (*ScanOutcome, error) {
	req, err := o.normalize(req)
	if err != nil {
		return nil, err
	}

	target, release, err := o.comps.Target(ctx, req)
	if err != nil {
		return nil, err
	}
	defer release()

	result, err := o.comps.Scanner(target).Scan(ctx, engineRequest(req, progress))
	if err != nil {
		return nil, err
	}

	out := &ScanOutcome{Result: result}
	relayURL := ""
	if req.Upload {
		receipt, err := o.comps.Relay.Upload(ctx, result)
		if err != nil {
			o.logger.Warn("relay upload failed", logging.Field{Key: "url", Value: req.URL}, logging.Field{Key: "error", Value: err})
			out.UploadError = err.Error()
		} else {
			out.Receipt = receipt
			relayURL = receipt.URL
		}
	}

	id, err := o.comps.History.Add(ctx, result, relayURL)
	if err != nil {
		o.logger.Warn("saving scan to history failed", logging.Field{Key: "error", Value: err})
	} else {
		out.HistoryID = id
	}
	return out, nil
}

// UploadFromHistory sends a stored scan to the relay and remembers its link.
func (o *Orchestrator) UploadFromHistory(ctx context.Context, id string) (*relay.Receipt, error) {
	result, err := o.comps.History.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	receipt, err := o.comps.Relay.Upload(ctx, result)
	if err != nil {
		return nil, err
	}
	if err := o.comps.History.SetRelayURL(ctx, id, receipt.URL); err != nil {
		return nil, fmt.Errorf("record relay url: %w", err)
	}
	return receipt, nil
}

// StartScanJob runs req in the background. Progress and the final status are
// published on the job's Events channel, which is closed when the job ends.
// The job outlives ctx only through CancelJob or Close.
func (o *Orchestrator) StartScanJob(ctx context.Context, req ScanRequest) (*Job, error) {
	req, err := o.normalize(req)
	if err != nil {
		return nil, err
	}

	o.jobsMu.Lock()
	if o.closed {
		o.jobsMu.Unlock()
		return nil, ErrOrchestratorClosed
	}
	o.pruneLocked()
	job := &Job{
		ID:        uuid.New().String(),
		Type:      "scan",
		URL:       req.URL,
		Mode:      req.Mode,
		Status:    JobPending,
		StartedAt: o.now().UTC(),
		Events:    make(chan JobEvent, 16),
	}
	jobCtx, cancel := context.WithCancel(ctx)
	o.jobs[job.ID] = job
	o.jobCancels[job.ID] = cancel
	o.wg.Add(1)
	snapshot := *job
	o.jobsMu.Unlock()

	o.emitJobEvent(job.ID, JobEvent{JobID: job.ID, Type: JobEventStatus, Status: JobPending})

	go o.runJob(jobCtx, job.ID, req)
	return &snapshot, nil
}

func (o *Orchestrator) runJob(ctx context.Context, jobID string, req ScanRequest) {
	defer o.wg.Done()
	defer func() {
		o.jobsMu.Lock()
		j := o.jobs[jobID]
		if j != nil {
			j.EndedAt = o.now().UTC()
		}
		if cancel := o.jobCancels[jobID]; cancel != nil {
			cancel()
		}
		delete(o.jobCancels, jobID)
		o.jobsMu.Unlock()

		// Close events channel so websocket loop can terminate cleanly
		if j != nil && j.Events != nil {
			close(j.Events)
		}
	}()

	o.setStatus(jobID, JobRunning, "")
	o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventStatus, Status: JobRunning})

	progress := func(p pdftext.Progress) {
		o.emitJobEvent(jobID, JobEvent{
			JobID:     jobID,
			Type:      JobEventProgress,
			Stage:     p.Stage,
			Processed: p.Page,
			Total:     p.Total,
		})
	}

	out, err := o.Scan(ctx, req, progress)
	switch {
	case ctx.Err() != nil:
		o.setStatus(jobID, JobCanceled, ctx.Err().Error())
		o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventStatus, Status: JobCanceled, Error: ctx.Err().Error()})
	case err != nil:
		o.logger.Warn("scan job failed", logging.Field{Key: "job_id", Value: jobID}, logging.Field{Key: "error", Value: err})
		o.setStatus(jobID, JobFailed, err.Error())
		o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventStatus, Status: JobFailed, Error: err.Error()})
	default:
		o.jobsMu.Lock()
		if j, ok := o.jobs[jobID]; ok {
			j.Status = JobDone
			j.Outcome = out
		}
		o.jobsMu.Unlock()
		o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventResult, Status: JobDone})
	}
}

func (o *Orchestrator) setStatus(jobID string, status JobStatus, msg string) {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	if j, ok := o.jobs[jobID]; ok {
		j.Status = status
		j.Error = msg
	}
}

func (o *Orchestrator) emitJobEvent(jobID string, ev JobEvent) {
	o.jobsMu.Lock()
	job, ok := o.jobs[jobID]
	o.jobsMu.Unlock()
	if !ok || job == nil || job.Events == nil {
		return
	}

	// Non-blocking send; drop if buffer is full.
	select {
	case job.Events <- ev:
	default:
	}
}

// pruneLocked forgets finished jobs older than JobRetentionTime.
func (o *Orchestrator) pruneLocked() {
	if o.cfg.JobRetentionTime <= 0 {
		return
	}
	cutoff := o.now().UTC().Add(-o.cfg.JobRetentionTime)
	for id, j := range o.jobs {
		if j.Status.finished() && !j.EndedAt.IsZero() && j.EndedAt.Before(cutoff) {
			delete(o.jobs, id)
		}
	}
}

func (o *Orchestrator) CancelJob(jobID string) {
	o.jobsMu.Lock()
	cancel := o.jobCancels[jobID]
	o.jobsMu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// GetJob returns a snapshot of the job, or nil when it is unknown.
func (o *Orchestrator) GetJob(jobID string) *Job {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	j, ok := o.jobs[jobID]
	if !ok {
		return nil
	}
	cp := *j
	return &cp
}

// ListJobs returns snapshots of the tracked jobs, oldest first.
func (o *Orchestrator) ListJobs() []Job {
	o.jobsMu.Lock()
	o.pruneLocked()
	out := make([]Job, 0, len(o.jobs))
	for _, j := range o.jobs {
		out = append(out, *j)
	}
	o.jobsMu.Unlock()
	sort.Slice(out, func(a, b int) bool { return out[a].StartedAt.Before(out[b].StartedAt) })
	return out
}

// Close cancels running jobs, waits for them and rejects new ones.
func (o *Orchestrator) Close() {
	o.jobsMu.Lock()
	if o.closed {
		o.jobsMu.Unlock()
		return
	}
	o.closed = true
	for _, cancel := range o.jobCancels {
		cancel()
	}
	o.jobsMu.Unlock()
	o.wg.Wait()
}
