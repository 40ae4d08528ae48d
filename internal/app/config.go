package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	yaml "gopkg.in/yaml.v3"

	"github.com/raysh454/rawdata/internal/browser"
	"github.com/raysh454/rawdata/internal/content"
	"github.com/raysh454/rawdata/internal/geometry"
	"github.com/raysh454/rawdata/internal/history"
	"github.com/raysh454/rawdata/internal/logging"
	"github.com/raysh454/rawdata/internal/model"
	"github.com/raysh454/rawdata/internal/ocr"
	"github.com/raysh454/rawdata/internal/pdftext"
	"github.com/raysh454/rawdata/internal/relay"
	"github.com/raysh454/rawdata/internal/summarize"
	"github.com/raysh454/rawdata/internal/webclient"
)

// Backend selects how a live scan reaches the page.
type Backend string

const (
	// BackendHTTP downloads the page and scans it statically.
	BackendHTTP Backend = "http"
	// BackendBrowser renders the page in headless Chrome.
	BackendBrowser Backend = "browser"
)

var ErrInvalidBackend = errors.New("invalid scan backend")

// ServerConfig holds the HTTP listen address of `rawdata serve`.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// ScanConfig holds the defaults applied to scan requests.
type ScanConfig struct {
	Mode        model.Mode `yaml:"mode"`
	Backend     Backend    `yaml:"backend"`
	Overlay     bool       `yaml:"overlay"`
	Upload      bool       `yaml:"upload"`
	Margin      float64    `yaml:"margin"`
	DegradedIDs bool       `yaml:"degraded_ids"`
}

// Config is the runtime configuration shared by the CLI, the relay server and
// the scan orchestrator. Each section belongs to the package that consumes it.
type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Log       logging.Config   `yaml:"log"`
	Scan      ScanConfig       `yaml:"scan"`
	WebClient webclient.Config `yaml:"webclient"`
	Browser   browser.Config   `yaml:"browser"`
	Content   content.Limits   `yaml:"content"`
	PDF       pdftext.Limits   `yaml:"pdf"`
	OCR       ocr.Config       `yaml:"ocr"`
	Relay     relay.Config     `yaml:"relay"`
	History   history.Config   `yaml:"history"`
	Summarize summarize.Config `yaml:"summarize"`

	// JobRetentionTime is how long finished jobs stay listed.
	JobRetentionTime time.Duration `yaml:"job_retention"`
}

// DefaultConfig returns a Config populated with sensible development defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{ListenAddr: ":8080"},
		Log:    logging.Config{Level: "info", Format: "console"},
		Scan: ScanConfig{
			Mode:    model.ModeFull,
			Backend: BackendHTTP,
			Margin:  geometry.DefaultMargin,
		},
		WebClient:        webclient.Config{Client: webclient.ClientNetHTTP},
		Browser:          browser.DefaultConfig(),
		Content:          content.DefaultLimits(),
		PDF:              pdftext.DefaultLimits(),
		OCR:              ocr.DefaultConfig(),
		Relay:            relay.DefaultConfig(),
		History:          history.DefaultConfig(),
		Summarize:        summarize.DefaultConfig(),
		JobRetentionTime: 10 * time.Minute,
	}
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	if _, err := model.ParseMode(string(c.Scan.Mode)); err != nil {
		return err
	}
	if _, err := ParseBackend(string(c.Scan.Backend)); err != nil {
		return err
	}
	if c.Relay.MaxSize < 0 {
		return fmt.Errorf("relay.max_size must not be negative")
	}
	return nil
}

// ParseBackend validates s as a Backend. Empty selects BackendHTTP.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return BackendHTTP, nil
	case BackendHTTP, BackendBrowser:
		return b, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidBackend, s)
}

// LoadConfig builds the configuration from the defaults, the YAML file at
// path (optional) and RAWDATA_* environment variables, in that order.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	ApplyEnv(cfg, os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files (default ".env") into
// the process environment. Missing files are ignored and variables already
// set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}

const (
	envListenAddr  = "RAWDATA_LISTEN_ADDR"
	envLogLevel    = "RAWDATA_LOG_LEVEL"
	envLogFormat   = "RAWDATA_LOG_FORMAT"
	envScanMode    = "RAWDATA_SCAN_MODE"
	envScanBackend = "RAWDATA_SCAN_BACKEND"
	envWebClient   = "RAWDATA_WEBCLIENT"
	envRelayURL    = "RAWDATA_RELAY_URL"
	envHistoryPath = "RAWDATA_HISTORY_PATH"
	envOCREnabled  = "RAWDATA_OCR_ENABLED"
	envOCRLanguage = "RAWDATA_OCR_LANGUAGE"
	envAIBaseURL   = "RAWDATA_AI_BASE_URL"
	envAIModel     = "RAWDATA_AI_MODEL"
	envAIAPIKey    = "RAWDATA_AI_API_KEY"
	envOpenAIKey   = "OPENAI_API_KEY"
)

// ApplyEnv overrides cfg with the environment variables getenv reports.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&cfg.Server.ListenAddr, envListenAddr)
	set(&cfg.Log.Level, envLogLevel)
	set(&cfg.Log.Format, envLogFormat)
	set(&cfg.Relay.BaseURL, envRelayURL)
	set(&cfg.History.Path, envHistoryPath)
	set(&cfg.OCR.Language, envOCRLanguage)
	set(&cfg.Summarize.BaseURL, envAIBaseURL)
	set(&cfg.Summarize.Model, envAIModel)
	set(&cfg.Summarize.APIKey, envOpenAIKey)
	set(&cfg.Summarize.APIKey, envAIAPIKey)

	if v := strings.TrimSpace(getenv(envScanMode)); v != "" {
		cfg.Scan.Mode = model.Mode(v)
	}
	if v := strings.TrimSpace(getenv(envScanBackend)); v != "" {
		cfg.Scan.Backend = Backend(v)
	}
	if v := strings.TrimSpace(getenv(envWebClient)); v != "" {
		cfg.WebClient.Client = webclient.Client(v)
	}
	if v := strings.TrimSpace(getenv(envOCREnabled)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.OCR.Enabled = b
		}
	}
}

// NewLogger builds the process logger from cfg.Log. Logs go to stderr so
// command output on stdout stays machine-readable.
func NewLogger(cfg *Config) logging.Logger {
	return logging.New(os.Stderr, cfg.Log)
}
