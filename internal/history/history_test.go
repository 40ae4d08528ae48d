package history_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/raysh454/rawdata/internal/history"
	"github.com/raysh454/rawdata/internal/model"
	"github.com/raysh454/rawdata/internal/testutil"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func newStore(t *testing.T, retention int) *history.Store {
	t.Helper()
	s, err := history.New(openTestDB(t), retention, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func scan(n int) *model.ScanResult {
	return &model.ScanResult{
		Meta: model.Meta{URL: fmt.Sprintf("https://site%d.test/", n), Title: fmt.Sprintf("Site %d", n), ScanType: "quick"},
		UIElements: []model.ElementDescriptor{
			{ID: "BTN-01", Type: model.TypeButton, Text: "Go", State: model.StateEnabled, Location: "top-left"},
		},
	}
}

// ─── Add / Get ─────────────────────────────────────────────────────────

func TestStore_AddGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t, 0)

	id, err := s.Add(ctx, scan(1), "")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Meta.URL != "https://site1.test/" || len(got.UIElements) != 1 || got.UIElements[0].ID != "BTN-01" {
		t.Errorf("got = %+v", got)
	}
	if _, err := s.Get(ctx, "missing"); !errors.Is(err, history.ErrScanNotFound) {
		t.Errorf("expected ErrScanNotFound, got %v", err)
	}
}

func TestStore_RetentionEvictsOldest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t, history.DefaultRetention)

	var ids []string
	for i := range 12 {
		id, err := s.Add(ctx, scan(i), "")
		if err != nil {
			t.Fatalf("Add %d: %v", i, err)
		}
		ids = append(ids, id)
	}

	items, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 10 {
		t.Fatalf("kept %d scans", len(items))
	}
	if items[0].ID != ids[11] || items[9].ID != ids[2] {
		t.Errorf("order = first %s last %s", items[0].URL, items[9].URL)
	}
	for _, evicted := range ids[:2] {
		if _, err := s.Get(ctx, evicted); !errors.Is(err, history.ErrScanNotFound) {
			t.Errorf("scan %s should have been evicted", evicted)
		}
	}
	if items[0].ElementCount != 1 || items[0].Size == 0 {
		t.Errorf("item = %+v", items[0])
	}
}

func TestStore_DeleteClearUsage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t, 0)

	a, _ := s.Add(ctx, scan(1), "")
	_, _ = s.Add(ctx, scan(2), "https://relay.test/scan/abcd1234")

	u, err := s.Usage(ctx)
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	if u.Scans != 2 || u.Bytes == 0 {
		t.Errorf("usage = %+v", u)
	}

	if err := s.Delete(ctx, a); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, a); !errors.Is(err, history.ErrScanNotFound) {
		t.Errorf("second delete = %v", err)
	}

	items, _ := s.List(ctx)
	if len(items) != 1 || items[0].RelayURL != "https://relay.test/scan/abcd1234" {
		t.Fatalf("items = %+v", items)
	}

	n, err := s.Clear(ctx)
	if err != nil || n != 1 {
		t.Fatalf("Clear = %d, %v", n, err)
	}
	u, _ = s.Usage(ctx)
	if u.Scans != 0 || u.Bytes != 0 {
		t.Errorf("usage after clear = %+v", u)
	}
}

func TestStore_SetRelayURL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t, 0)
	id, _ := s.Add(ctx, scan(1), "")

	if err := s.SetRelayURL(ctx, id, "https://relay.test/scan/x"); err != nil {
		t.Fatalf("SetRelayURL: %v", err)
	}
	items, _ := s.List(ctx)
	if items[0].RelayURL != "https://relay.test/scan/x" {
		t.Errorf("relay url = %q", items[0].RelayURL)
	}
	if err := s.SetRelayURL(ctx, "nope", "x"); !errors.Is(err, history.ErrScanNotFound) {
		t.Errorf("unknown id = %v", err)
	}
}

func TestOpen_CreatesFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	s, err := history.Open(history.Config{Path: path}, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	if _, err := s.Add(context.Background(), scan(1), ""); err != nil {
		t.Fatalf("Add: %v", err)
	}
}
