// Package relay keeps uploaded scan results for a short time under a short
// shareable id.
package relay

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raysh454/rawdata/internal/logging"
	"github.com/raysh454/rawdata/internal/model"
)

const (
	DefaultTTL             = 30 * time.Minute
	DefaultMaxSize         = 5 << 20
	DefaultJanitorInterval = 5 * time.Minute
	IDLength               = 8
)

var (
	ErrEmptyPayload   = errors.New("scan data is empty")
	ErrInvalidPayload = errors.New("scan data is not a JSON object")
	ErrNotFound       = errors.New("scan not found or expired")
	ErrExpired        = errors.New("scan expired")
)

// SizeError reports a payload whose serialised form exceeds the ceiling.
type SizeError struct {
	Size int
	Max  int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("scan data too large: %s exceeds %s", FormatMB(e.Size), FormatMB(e.Max))
}

// FormatMB renders n bytes as megabytes with two decimals.
func FormatMB(n int) string {
	return fmt.Sprintf("%.2fMB", float64(n)/1024/1024)
}

type Config struct {
	// BaseURL prefixes the shareable links handed out by Put.
	BaseURL         string        `yaml:"base_url"`
	TTL             time.Duration `yaml:"ttl"`
	MaxSize         int           `yaml:"max_size"`
	JanitorInterval time.Duration `yaml:"janitor_interval"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:         "http://localhost:8080",
		TTL:             DefaultTTL,
		MaxSize:         DefaultMaxSize,
		JanitorInterval: DefaultJanitorInterval,
	}
}

// Receipt is returned to the uploader.
type Receipt struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}

// Entry is one stored scan.
type Entry struct {
	ID        string
	Payload   json.RawMessage
	CreatedAt time.Time
}

// Result decodes the stored payload.
func (e *Entry) Result() (*model.ScanResult, error) {
	var r model.ScanResult
	if err := json.Unmarshal(e.Payload, &r); err != nil {
		return nil, fmt.Errorf("decode scan %s: %w", e.ID, err)
	}
	return &r, nil
}

// Store is an in-memory TTL store of scan payloads.
type Store struct {
	cfg    Config
	logger logging.Logger
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*Entry
}

type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(cfg Config, logger logging.Logger, opts ...Option) *Store {
	def := DefaultConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = def.MaxSize
	}
	if cfg.JanitorInterval <= 0 {
		cfg.JanitorInterval = def.JanitorInterval
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	s := &Store{
		cfg:     cfg,
		logger:  logger.With(logging.Field{Key: "component", Value: "relay"}),
		now:     time.Now,
		entries: make(map[string]*Entry),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Put validates and stores payload, which must be a non-empty JSON object.
func (s *Store) Put(payload []byte) (*Receipt, error) {
	var fields map[string]json.RawMessage
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, ErrEmptyPayload
	}
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if len(fields) == 0 {
		return nil, ErrEmptyPayload
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if compact.Len() > s.cfg.MaxSize {
		return nil, &SizeError{Size: compact.Len(), Max: s.cfg.MaxSize}
	}

	s.mu.Lock()
	id := s.newIDLocked()
	s.entries[id] = &Entry{ID: id, Payload: compact.Bytes(), CreatedAt: s.now()}
	s.mu.Unlock()

	s.logger.Info("stored scan",
		logging.Field{Key: "id", Value: id},
		logging.Field{Key: "size_kb", Value: compact.Len() / 1024})

	return &Receipt{
		ID:        id,
		URL:       s.cfg.BaseURL + "/scan/" + id,
		ExpiresIn: int(s.cfg.TTL / time.Second),
	}, nil
}

// Get returns the entry for id. An expired entry is removed and reported as
// ErrExpired.
func (s *Store) Get(id string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.expiredLocked(e) {
		delete(s.entries, id)
		return nil, ErrExpired
	}
	return e, nil
}

// Len returns the number of stored entries, expired ones included until the
// next sweep.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep removes expired entries and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.entries {
		if s.expiredLocked(e) {
			delete(s.entries, id)
			n++
		}
	}
	return n
}

// RunJanitor sweeps on every JanitorInterval until ctx is done.
func (s *Store) RunJanitor(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.JanitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Info("removed expired scans",
					logging.Field{Key: "count", Value: n},
					logging.Field{Key: "remaining", Value: s.Len()})
			}
		}
	}
}

// MaxSize returns the payload ceiling in bytes.
func (s *Store) MaxSize() int { return s.cfg.MaxSize }

// TTL returns how long entries live.
func (s *Store) TTL() time.Duration { return s.cfg.TTL }

func (s *Store) expiredLocked(e *Entry) bool {
	return s.now().Sub(e.CreatedAt) > s.cfg.TTL
}

func (s *Store) newIDLocked() string {
	for {
		u := uuid.New()
		id := base64.RawURLEncoding.EncodeToString(u[:])[:IDLength]
		if _, taken := s.entries[id]; !taken {
			return id
		}
	}
}
