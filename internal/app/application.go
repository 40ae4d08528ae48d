package app

import (
	"context"
	"errors"
	"time"

	"github.com/raysh454/rawdata/internal/logging"
	"github.com/raysh454/rawdata/internal/relay"
)

// Application is the global runtime state container.
// It holds config and the core services that are shared across commands
// (components, orchestrator, relay store, logger). Pass Application into
// modules that need access to the global state rather than using
// package-level variables.
type Application struct {
	Config *Config
	Logger logging.Logger

	Components *Components
	Orch       *Orchestrator
	// Relay is the in-process relay store served by `rawdata serve`.
	Relay *relay.Store

	// internal context for cancellation / lifecycle
	ctx    context.Context
	cancel context.CancelFunc
}

// NewApplication builds every shared service from cfg.
func NewApplication(cfg *Config, logger logging.Logger, opts ...ComponentOption) (*Application, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = NewLogger(cfg)
	}
	comps, err := NewComponents(cfg, logger, opts...)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Application{
		Config:     cfg,
		Logger:     logger,
		Components: comps,
		Orch:       NewOrchestrator(cfg, comps, logger),
		Relay:      relay.NewStore(cfg.Relay, logger),
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// Start begins background maintenance: the relay janitor.
func (a *Application) Start() error {
	if a == nil {
		return errors.New("application is nil")
	}
	a.Logger.Info("application starting",
		logging.Field{Key: "relay_ttl", Value: a.Relay.TTL().String()},
		logging.Field{Key: "relay_max_size", Value: relay.FormatMB(a.Relay.MaxSize())})
	go a.Relay.RunJanitor(a.ctx)
	return nil
}

// Shutdown cancels running jobs, stops background work and releases the
// components.
func (a *Application) Shutdown(ctx context.Context) error {
	if a == nil {
		return errors.New("application is nil")
	}
	a.Logger.Info("application shutdown initiated")

	// Ask orchestrator to shut down first with a bounded timeout.
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		a.Orch.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		a.Logger.Warn("orchestrator shutdown timed out", logging.Field{Key: "error", Value: shutdownCtx.Err().Error()})
	}

	// cancel internal ctx to signal local components/tests
	a.cancel()

	return a.Components.Close()
}
