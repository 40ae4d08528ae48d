// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/raysh454/rawdata/internal/geometry"
	"github.com/raysh454/rawdata/internal/logging"
	"github.com/raysh454/rawdata/internal/overlay"
	"github.com/raysh454/rawdata/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// WarnCount returns how many warnings were recorded.
func (l *DummyLogger) WarnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Warns)
}

// ─── WebClient ─────────────────────────────────────────────────────────

// DummyWebClient implements webclient.WebClient.
// By default it returns body "ok:<url>" with status 200.
// Set Bodies[url] to serve a specific body and FailURLs[url] = true to force
// an error for a specific URL.
type DummyWebClient struct {
	ResponseDelay time.Duration
	FailURLs      map[string]bool
	Bodies        map[string][]byte
	Headers       http.Header
	Status        int
	mu            sync.Mutex
	Requests      []*webclient.Request
}

func (d *DummyWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	if d.ResponseDelay > 0 {
		select {
		case <-time.After(d.ResponseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	d.mu.Unlock()

	if d.FailURLs != nil && d.FailURLs[req.URL] {
		return nil, &errString{"dummy fetch fail for " + req.URL}
	}

	body := []byte("ok:" + req.URL)
	if b, ok := d.Bodies[req.URL]; ok {
		body = b
	}
	status := d.Status
	if status == 0 {
		status = http.StatusOK
	}
	return &webclient.Response{
		Request:    req,
		Headers:    d.Headers,
		Body:       body,
		StatusCode: status,
		FetchedAt:  time.Now(),
	}, nil
}

func (d *DummyWebClient) Get(ctx context.Context, url string) (*webclient.Response, error) {
	return d.Do(ctx, &webclient.Request{Method: "GET", URL: url})
}

func (d *DummyWebClient) Close() error { return nil }

// ─── Overlay surface ───────────────────────────────────────────────────

// DummySurface implements overlay.Surface and records what is on screen.
type DummySurface struct {
	mu       sync.Mutex
	Shown    []overlay.Label
	Draws    int
	Removals int
	DrawErr  error
}

func (s *DummySurface) DrawLabels(_ context.Context, labels []overlay.Label) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DrawErr != nil {
		return s.DrawErr
	}
	s.Draws++
	s.Shown = append(s.Shown, labels...)
	return nil
}

func (s *DummySurface) RemoveLabels(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Removals++
	s.Shown = nil
	return nil
}

// OnScreen returns a copy of the labels currently drawn.
func (s *DummySurface) OnScreen() []overlay.Label {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]overlay.Label(nil), s.Shown...)
}

// Viewport is a desktop-sized viewport for tests.
var Viewport = geometry.Viewport{Width: 1280, Height: 800}

// ─── helpers ───────────────────────────────────────────────────────────

type errString struct{ s string }

func (e *errString) Error() string { return e.s }
