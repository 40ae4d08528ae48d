package server

import (
	"github.com/raysh454/rawdata/internal/history"
	"github.com/raysh454/rawdata/internal/summarize"
)

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error   string `json:"error" example:"Scan data is empty"`
	Message string `json:"message,omitempty"`
	ID      string `json:"id,omitempty" example:"aB3dE5fG"`
}

// SizeErrorResponse is returned with 413 when an upload is over the ceiling.
type SizeErrorResponse struct {
	Error        string `json:"error" example:"Scan data too large"`
	MaxSize      string `json:"max_size" example:"5.00MB"`
	ReceivedSize string `json:"received_size" example:"6.12MB"`
}

// HealthResponse reports relay liveness.
type HealthResponse struct {
	Status     string       `json:"status" example:"ok"`
	ScansCount int          `json:"scans_count" example:"3"`
	Uptime     float64      `json:"uptime" example:"42.5"`
	Memory     MemoryReport `json:"memory"`
}

type MemoryReport struct {
	Used  string `json:"used" example:"4.21MB"`
	Total string `json:"total" example:"11.50MB"`
}

// ServiceInfo is served at the root.
type ServiceInfo struct {
	Name        string            `json:"name" example:"raw.data Server"`
	Version     string            `json:"version" example:"1.0.0"`
	Description string            `json:"description"`
	Endpoints   map[string]string `json:"endpoints"`
	Docs        string            `json:"docs" example:"/swagger/index.html"`
}

// StartScanJobRequest starts a background scan.
type StartScanJobRequest struct {
	URL     string `json:"url" example:"http://localhost:9999/form"`
	Mode    string `json:"mode" example:"full"`
	Backend string `json:"backend" example:"http"`
	Overlay bool   `json:"overlay" example:"false"`
	Upload  bool   `json:"upload" example:"true"`
}

// HistoryResponse lists stored scans and what they occupy.
type HistoryResponse struct {
	Items []history.Item `json:"items"`
	Usage history.Usage  `json:"usage"`
}

// ClearedResponse reports how many scans were removed.
type ClearedResponse struct {
	Removed int `json:"removed" example:"10"`
}

// SummarizeRequest asks about a stored scan. Exactly one of HistoryID and
// ScanID selects the scan.
type SummarizeRequest struct {
	HistoryID string              `json:"history_id,omitempty"`
	ScanID    string              `json:"scan_id,omitempty" example:"aB3dE5fG"`
	Question  string              `json:"question,omitempty" example:"What can I do on this page?"`
	Messages  []summarize.Message `json:"messages,omitempty"`
}

type SummarizeResponse struct {
	Answer string `json:"answer"`
}

// AssessRequest asks for a legitimacy verdict on a deep GitHub scan.
type AssessRequest struct {
	HistoryID string `json:"history_id,omitempty"`
	ScanID    string `json:"scan_id,omitempty" example:"aB3dE5fG"`
}
