package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/raysh454/rawdata/internal/app"
	"github.com/raysh454/rawdata/internal/logging"
	"github.com/raysh454/rawdata/internal/relay"
	_ "github.com/raysh454/rawdata/internal/server/docs" // registers the OpenAPI document
)

// Server is the HTTP + WebSocket API surface for rawdata: the scan relay,
// live scan jobs, local history and the summariser.
type Server struct {
	cfg      Config
	app      *app.Application
	ownsApp  bool
	relay    *relay.Store
	router   chi.Router
	upgrader websocket.Upgrader
	logger   logging.Logger
	started  time.Time
}

// NewServer creates a new Server. Unless cfg.App is set it builds its own
// Application from cfg.AppConfig and owns it.
func NewServer(cfg Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("Server")
	}

	application := cfg.App
	owns := false
	if application == nil {
		if cfg.AppConfig == nil {
			cfg.AppConfig = app.DefaultConfig()
		}
		var err error
		application, err = app.NewApplication(cfg.AppConfig, logger)
		if err != nil {
			return nil, fmt.Errorf("creating application: %w", err)
		}
		if err := application.Start(); err != nil {
			return nil, fmt.Errorf("starting application: %w", err)
		}
		owns = true
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = application.Config.Server.ListenAddr
	}

	r := chi.NewRouter()
	s := &Server{
		cfg:     cfg,
		app:     application,
		ownsApp: owns,
		relay:   application.Relay,
		router:  r,
		logger:  logger.With(logging.Field{Key: "component", Value: "server"}),
		started: time.Now(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// The browser extension connects from its own origin.
				return true
			},
		},
	}

	s.routes()
	return s, nil
}

// App returns the underlying application for advanced use (tests, etc.).
func (s *Server) App() *app.Application {
	return s.app
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/scan", s.optionsHandler("POST"))
	r.Options("/scan/{id}", s.optionsHandler("GET"))
	r.Options("/scan/{id}/json", s.optionsHandler("GET"))
	r.Options("/scan/{id}/ai", s.optionsHandler("GET"))
	r.Options("/scan/{id}/pdf", s.optionsHandler("GET"))
	r.Options("/jobs/scan", s.optionsHandler("POST"))
	r.Options("/jobs", s.optionsHandler("GET"))
	r.Options("/jobs/{jobID}", s.optionsHandler("GET, DELETE"))
	r.Options("/history", s.optionsHandler("GET, DELETE"))
	r.Options("/history/{id}", s.optionsHandler("GET, DELETE"))
	r.Options("/history/{id}/upload", s.optionsHandler("POST"))
	r.Options("/history/{id}/diff/{other}", s.optionsHandler("GET"))
	r.Options("/summarize", s.optionsHandler("POST"))
	r.Options("/assess", s.optionsHandler("POST"))

	// Service
	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Relay
	r.Post("/scan", s.handleUploadScan)
	r.Get("/scan/{id}", s.handleScanHTML)
	r.Get("/scan/{id}/json", s.handleScanJSON)
	r.Get("/scan/{id}/ai", s.handleScanAI)
	r.Get("/scan/{id}/pdf", s.handleScanPDF)

	// Jobs over REST
	r.Post("/jobs/scan", s.handleStartScanJob)
	r.Get("/jobs", s.handleListJobs)
	r.Get("/jobs/{jobID}", s.handleGetJob)
	r.Delete("/jobs/{jobID}", s.handleCancelJob)

	// WebSocket for live scan progress
	r.Get("/ws/scan", s.handleScanWS)

	// History
	r.Get("/history", s.handleListHistory)
	r.Delete("/history", s.handleClearHistory)
	r.Get("/history/{id}", s.handleGetHistory)
	r.Delete("/history/{id}", s.handleDeleteHistory)
	r.Post("/history/{id}/upload", s.handleUploadHistory)
	r.Get("/history/{id}/diff/{other}", s.handleDiffHistory)

	// Summariser
	r.Post("/summarize", s.handleSummarize)
	r.Post("/assess", s.handleAssess)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler. Request bodies can be megabytes of scan
// data, so only their declared length is logged.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}
	if r.ContentLength > 0 {
		fields = append(fields, logging.Field{Key: "content_length", Value: r.ContentLength})
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// Close shuts down the application when the server owns it.
func (s *Server) Close() {
	if s.ownsApp && s.app != nil {
		if err := s.app.Shutdown(context.Background()); err != nil {
			s.logger.Warn("shutting down application", logging.Field{Key: "error", Value: err.Error()})
		}
	}
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // allow streaming
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeText(w http.ResponseWriter, status int, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
