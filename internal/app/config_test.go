package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/raysh454/rawdata/internal/model"
	"github.com/raysh454/rawdata/internal/webclient"
)

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Relay.TTL != 30*time.Minute || cfg.History.Retention != 10 || cfg.PDF.MaxPages != 50 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfig_YAMLOverridesDefaults(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "rawdata.yaml")
	yaml := `
server:
  listen_addr: ":9090"
scan:
  mode: deep
  backend: browser
relay:
  base_url: https://relay.example
  ttl: 10m
pdf:
  max_pages: 5
content:
  table_rows: 3
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.ListenAddr != ":9090" || cfg.Scan.Mode != model.ModeDeep || cfg.Scan.Backend != BackendBrowser {
		t.Errorf("server/scan = %+v %+v", cfg.Server, cfg.Scan)
	}
	if cfg.Relay.BaseURL != "https://relay.example" || cfg.Relay.TTL != 10*time.Minute {
		t.Errorf("relay = %+v", cfg.Relay)
	}
	if cfg.Relay.MaxSize != 5<<20 {
		t.Errorf("unset relay fields should keep defaults, got %d", cfg.Relay.MaxSize)
	}
	if cfg.PDF.MaxPages != 5 || cfg.PDF.OCRMaxPages != 10 || cfg.Content.TableRows != 3 {
		t.Errorf("limits = %+v %+v", cfg.PDF, cfg.Content)
	}
}

func TestLoadConfig_RejectsInvalidMode(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("scan:\n  mode: turbo\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); !errors.Is(err, model.ErrInvalidMode) {
		t.Fatalf("expected ErrInvalidMode, got %v", err)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Parallel()
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()
	env := map[string]string{
		envListenAddr:  ":7000",
		envScanMode:    "quick",
		envWebClient:   "chromedp",
		envRelayURL:    "https://r.test",
		envOCREnabled:  "false",
		envOpenAIKey:   "sk-openai",
		envAIAPIKey:    "sk-rawdata",
		envAIModel:     "local-model",
		envHistoryPath: "   ",
	}
	cfg := DefaultConfig()
	ApplyEnv(cfg, func(k string) string { return env[k] })

	if cfg.Server.ListenAddr != ":7000" || cfg.Scan.Mode != model.ModeQuick || cfg.WebClient.Client != webclient.ClientChromedp {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Relay.BaseURL != "https://r.test" || cfg.OCR.Enabled {
		t.Errorf("relay/ocr = %+v %+v", cfg.Relay, cfg.OCR)
	}
	if cfg.Summarize.APIKey != "sk-rawdata" || cfg.Summarize.Model != "local-model" {
		t.Errorf("summarize = %+v", cfg.Summarize)
	}
	if cfg.History.Path != DefaultConfig().History.Path {
		t.Errorf("blank env must not override, got %q", cfg.History.Path)
	}
}

func TestParseBackend(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]Backend{"": BackendHTTP, "HTTP": BackendHTTP, " browser ": BackendBrowser} {
		got, err := ParseBackend(in)
		if err != nil || got != want {
			t.Errorf("ParseBackend(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseBackend("ftp"); !errors.Is(err, ErrInvalidBackend) {
		t.Errorf("expected ErrInvalidBackend, got %v", err)
	}
}

func TestLoadDotEnv_MissingFileIsIgnored(t *testing.T) {
	t.Parallel()
	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
}
