// Package history keeps the most recent scan results in SQLite.
package history

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/raysh454/rawdata/internal/logging"
	"github.com/raysh454/rawdata/internal/model"
)

//go:embed schema.sql
var schemaFS embed.FS

const DefaultRetention = 10

var ErrScanNotFound = errors.New("scan not found in history")

type Config struct {
	// Path of the database file. Empty keeps history in memory.
	Path      string `yaml:"path"`
	Retention int    `yaml:"retention"`
}

func DefaultConfig() Config {
	return Config{Path: "~/.config/rawdata/history.db", Retention: DefaultRetention}
}

// Item is the listing view of a stored scan.
type Item struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	ScanType     string    `json:"scan_type"`
	ElementCount int       `json:"element_count"`
	RelayURL     string    `json:"relay_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	Size         int       `json:"size"`
}

// Usage summarises what history occupies.
type Usage struct {
	Scans int   `json:"scans"`
	Bytes int64 `json:"bytes"`
}

// Store is a bounded scan history.
type Store struct {
	db        *sql.DB
	retention int
	logger    logging.Logger
	now       func() time.Time
}

// Open opens or creates the database at cfg.Path.
func Open(cfg Config, logger logging.Logger) (*Store, error) {
	dsn := "file::memory:"
	if cfg.Path != "" {
		path, err := ExpandPath(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("expand history path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
		dsn = path
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	db.SetMaxOpenConns(1)
	s, err := New(db, cfg.Retention, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New applies the schema to db and returns a Store keeping at most retention
// scans. retention <= 0 selects DefaultRetention.
func New(db *sql.DB, retention int, logger logging.Logger) (*Store, error) {
	if db == nil {
		return nil, errors.New("history: db is nil")
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	for _, pragma := range []string{"PRAGMA busy_timeout=5000", "PRAGMA synchronous=NORMAL"} {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("set pragma %q: %w", pragma, err)
		}
	}
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return nil, fmt.Errorf("read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return nil, fmt.Errorf("execute schema: %w", err)
	}
	return &Store{
		db:        db,
		retention: retention,
		logger:    logger.With(logging.Field{Key: "component", Value: "history"}),
		now:       time.Now,
	}, nil
}

// Add stores result and evicts the oldest scans beyond the retention limit.
// relayURL may be empty.
func (s *Store) Add(ctx context.Context, result *model.ScanResult, relayURL string) (string, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("encode scan: %w", err)
	}
	id := uuid.New().String()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO scans (id, url, title, scan_type, element_count, relay_url, created_at, payload)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, result.Meta.URL, result.Meta.Title, result.Meta.ScanType, len(result.UIElements),
		relayURL, s.now().UnixNano(), string(payload),
	)
	if err != nil {
		return "", fmt.Errorf("insert scan: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM scans WHERE id NOT IN (
             SELECT id FROM scans ORDER BY created_at DESC, rowid DESC LIMIT ?
         )`, s.retention)
	if err != nil {
		return "", fmt.Errorf("evict scans: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	if n, _ := res.RowsAffected(); n > 0 {
		s.logger.Debug("evicted old scans", logging.Field{Key: "count", Value: n})
	}
	s.logger.Info("saved scan to history",
		logging.Field{Key: "id", Value: id},
		logging.Field{Key: "url", Value: result.Meta.URL})
	return id, nil
}

// SetRelayURL records the shareable link of an already stored scan.
func (s *Store) SetRelayURL(ctx context.Context, id, relayURL string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE scans SET relay_url = ? WHERE id = ?`, relayURL, id)
	if err != nil {
		return fmt.Errorf("update scan: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrScanNotFound
	}
	return nil
}

// List returns stored scans, newest first.
func (s *Store) List(ctx context.Context) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, title, scan_type, element_count, relay_url, created_at, LENGTH(payload)
         FROM scans
         ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Item{}
	for rows.Next() {
		var it Item
		var created int64
		if err := rows.Scan(&it.ID, &it.URL, &it.Title, &it.ScanType, &it.ElementCount, &it.RelayURL, &created, &it.Size); err != nil {
			return nil, err
		}
		it.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, it)
	}
	return out, rows.Err()
}

// Get returns the full result stored under id.
func (s *Store) Get(ctx context.Context, id string) (*model.ScanResult, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM scans WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScanNotFound
		}
		return nil, err
	}
	var r model.ScanResult
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return nil, fmt.Errorf("decode scan %s: %w", id, err)
	}
	return &r, nil
}

// Delete removes one scan.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete scan: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrScanNotFound
	}
	return nil
}

// Clear removes every scan and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scans`)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	n, _ := res.RowsAffected()
	s.logger.Info("cleared history", logging.Field{Key: "count", Value: n})
	return int(n), nil
}

// Usage reports the number of stored scans and the bytes their payloads use.
func (s *Store) Usage(ctx context.Context) (Usage, error) {
	var u Usage
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(LENGTH(payload)), 0) FROM scans`).Scan(&u.Scans, &u.Bytes)
	return u, err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ExpandPath resolves a leading "~" to the user's home directory.
func ExpandPath(p string) (string, error) {
	if len(p) > 0 && p[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, p[1:]), nil
	}
	return p, nil
}
