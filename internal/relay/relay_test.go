package relay_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/raysh454/rawdata/internal/model"
	"github.com/raysh454/rawdata/internal/relay"
	"github.com/raysh454/rawdata/internal/testutil"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newStore(t *testing.T, cfg relay.Config) (*relay.Store, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	return relay.NewStore(cfg, &testutil.DummyLogger{}, relay.WithClock(c.Now)), c
}

// ─── Store ─────────────────────────────────────────────────────────────

func TestStore_PutGet(t *testing.T) {
	t.Parallel()
	s, _ := newStore(t, relay.Config{BaseURL: "https://relay.example/"})

	rc, err := s.Put([]byte(`{ "meta": {"url": "https://a.test"} }`))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if len(rc.ID) != relay.IDLength {
		t.Errorf("id %q has length %d", rc.ID, len(rc.ID))
	}
	if rc.URL != "https://relay.example/scan/"+rc.ID {
		t.Errorf("url = %q", rc.URL)
	}
	if rc.ExpiresIn != 1800 {
		t.Errorf("expires_in = %d", rc.ExpiresIn)
	}

	e, err := s.Get(rc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(e.Payload) != `{"meta":{"url":"https://a.test"}}` {
		t.Errorf("payload = %s", e.Payload)
	}
	res, err := e.Result()
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if res.Meta.URL != "https://a.test" {
		t.Errorf("meta = %+v", res.Meta)
	}
}

func TestStore_IDsAreUnique(t *testing.T) {
	t.Parallel()
	s, _ := newStore(t, relay.DefaultConfig())
	seen := map[string]bool{}
	for range 200 {
		rc, err := s.Put([]byte(`{"a":1}`))
		if err != nil {
			t.Fatalf("Put: %v", err)
		}
		if seen[rc.ID] {
			t.Fatalf("duplicate id %q", rc.ID)
		}
		seen[rc.ID] = true
	}
}

func TestStore_RejectsEmptyAndInvalid(t *testing.T) {
	t.Parallel()
	s, _ := newStore(t, relay.DefaultConfig())
	for _, in := range []string{"", "  ", "{}", "null"} {
		if _, err := s.Put([]byte(in)); !errors.Is(err, relay.ErrEmptyPayload) {
			t.Errorf("Put(%q) = %v, want ErrEmptyPayload", in, err)
		}
	}
	for _, in := range []string{"[1,2]", "{broken", `"text"`} {
		if _, err := s.Put([]byte(in)); !errors.Is(err, relay.ErrInvalidPayload) {
			t.Errorf("Put(%q) = %v, want ErrInvalidPayload", in, err)
		}
	}
}

func TestStore_SizeCeiling(t *testing.T) {
	t.Parallel()
	s, _ := newStore(t, relay.Config{MaxSize: 64})

	big := `{"text":"` + strings.Repeat("x", 100) + `"}`
	_, err := s.Put([]byte(big))
	var se *relay.SizeError
	if !errors.As(err, &se) {
		t.Fatalf("expected SizeError, got %v", err)
	}
	if se.Size != len(big) || se.Max != 64 {
		t.Errorf("SizeError = %+v", se)
	}
	if s.Len() != 0 {
		t.Error("oversized payload must not be stored")
	}

	// Whitespace does not count against the ceiling.
	padded := `{"text":` + strings.Repeat(" ", 100) + `"short"}`
	if _, err := s.Put([]byte(padded)); err != nil {
		t.Errorf("compacted payload rejected: %v", err)
	}
}

func TestStore_Expiry(t *testing.T) {
	t.Parallel()
	s, c := newStore(t, relay.DefaultConfig())
	rc, _ := s.Put([]byte(`{"a":1}`))

	c.Advance(relay.DefaultTTL)
	if _, err := s.Get(rc.ID); err != nil {
		t.Fatalf("entry at exactly TTL should still be served: %v", err)
	}
	c.Advance(time.Second)
	if _, err := s.Get(rc.ID); !errors.Is(err, relay.ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
	if _, err := s.Get(rc.ID); !errors.Is(err, relay.ErrNotFound) {
		t.Fatalf("expired entry should be gone, got %v", err)
	}
}

func TestStore_Sweep(t *testing.T) {
	t.Parallel()
	s, c := newStore(t, relay.DefaultConfig())
	_, _ = s.Put([]byte(`{"a":1}`))
	c.Advance(20 * time.Minute)
	fresh, _ := s.Put([]byte(`{"b":2}`))
	c.Advance(15 * time.Minute)

	if n := s.Sweep(); n != 1 {
		t.Errorf("Sweep removed %d", n)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d", s.Len())
	}
	if _, err := s.Get(fresh.ID); err != nil {
		t.Errorf("fresh entry: %v", err)
	}
}

func TestStore_JanitorStopsWithContext(t *testing.T) {
	t.Parallel()
	s, _ := newStore(t, relay.Config{JanitorInterval: time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.RunJanitor(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not stop")
	}
}

// ─── Client ────────────────────────────────────────────────────────────

func TestClient_Upload(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{
		Bodies: map[string][]byte{
			"https://relay.example/scan": []byte(`{"id":"abcd1234","url":"https://relay.example/scan/abcd1234","expires_in":1800}`),
		},
	}
	c := relay.NewClient("https://relay.example/", 0, wc, &testutil.DummyLogger{})

	rc, err := c.Upload(context.Background(), &model.ScanResult{Meta: model.Meta{URL: "https://a.test", ScanType: "quick"}})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if rc.ID != "abcd1234" || rc.ExpiresIn != 1800 {
		t.Errorf("receipt = %+v", rc)
	}
	if len(wc.Requests) != 1 || wc.Requests[0].Method != http.MethodPost {
		t.Fatalf("requests = %+v", wc.Requests)
	}
	if !strings.Contains(string(wc.Requests[0].Body), `"scan_type":"quick"`) {
		t.Errorf("body = %s", wc.Requests[0].Body)
	}
}

func TestClient_OversizedNeverSent(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{}
	c := relay.NewClient("https://relay.example", 32, wc, &testutil.DummyLogger{})

	_, err := c.Upload(context.Background(), &model.ScanResult{Meta: model.Meta{URL: "https://a.test/" + strings.Repeat("p", 64)}})
	var se *relay.SizeError
	if !errors.As(err, &se) || se.Max != 32 {
		t.Fatalf("expected SizeError, got %v", err)
	}
	if len(wc.Requests) != 0 {
		t.Error("oversized scan must not be uploaded")
	}
}

func TestClient_ServerError(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{
		Status: http.StatusBadRequest,
		Bodies: map[string][]byte{"https://relay.example/scan": []byte(`{"error":"Scan data is empty"}`)},
	}
	c := relay.NewClient("https://relay.example", 0, wc, &testutil.DummyLogger{})
	_, err := c.Upload(context.Background(), &model.ScanResult{})
	if err == nil || !strings.Contains(err.Error(), "Scan data is empty") {
		t.Fatalf("err = %v", err)
	}
}
