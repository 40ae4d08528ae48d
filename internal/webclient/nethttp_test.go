package webclient_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/raysh454/rawdata/internal/logging"
	"github.com/raysh454/rawdata/internal/webclient"
)

// noopLogger is a test-local logger implementation that discards all log messages
type noopLogger struct{}

func (n *noopLogger) Debug(msg string, fields ...logging.Field) {}
func (n *noopLogger) Info(msg string, fields ...logging.Field)  {}
func (n *noopLogger) Warn(msg string, fields ...logging.Field)  {}
func (n *noopLogger) Error(msg string, fields ...logging.Field) {}
func (n *noopLogger) With(fields ...logging.Field) logging.Logger {
	return n
}

func TestNewNetHTTPClient_DefaultTimeout(t *testing.T) {
	t.Parallel()
	client, err := webclient.NewNetHTTPClient(webclient.Config{}, &noopLogger{}, nil)
	if err != nil {
		t.Fatalf("NewNetHTTPClient returned error: %v", err)
	}
	defer client.Close()

	if client.HTTPClient().Timeout != webclient.DefaultTimeout {
		t.Errorf("timeout = %v", client.HTTPClient().Timeout)
	}
}

func TestNewNetHTTPClient_WithCustomClient(t *testing.T) {
	t.Parallel()
	customClient := &http.Client{}

	client, err := webclient.NewNetHTTPClient(webclient.Config{}, &noopLogger{}, customClient)
	if err != nil {
		t.Fatalf("NewNetHTTPClient returned error: %v", err)
	}
	defer client.Close()

	if client.HTTPClient() != customClient {
		t.Error("custom client was not kept")
	}
}

func TestNetHTTPClient_Close(t *testing.T) {
	t.Parallel()
	client, err := webclient.NewNetHTTPClient(webclient.Config{}, &noopLogger{}, nil)
	if err != nil {
		t.Fatalf("NewNetHTTPClient returned error: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close() returned error: %v", err)
	}
}

// ─── chromedp ──────────────────────────────────────────────────────────

func TestChromedpClient_RejectsNonGET(t *testing.T) {
	t.Parallel()
	client, err := webclient.NewChromedpClient(webclient.Config{Client: webclient.ClientChromedp}, &noopLogger{})
	if err != nil {
		t.Skipf("chromedp unavailable: %v", err)
	}
	defer client.Close()

	_, err = client.Do(context.Background(), &webclient.Request{Method: "POST", URL: "http://example.com"})
	if !errors.Is(err, webclient.ErrMethodNotSupported) {
		t.Fatalf("expected ErrMethodNotSupported, got %v", err)
	}
}
