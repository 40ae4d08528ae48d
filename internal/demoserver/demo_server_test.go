package demoserver_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/raysh454/rawdata/internal/demoserver"
	"github.com/raysh454/rawdata/internal/engine"
	"github.com/raysh454/rawdata/internal/model"
	"github.com/raysh454/rawdata/internal/testutil"
)

func newDemo(t *testing.T) *httptest.Server {
	t.Helper()
	ds, err := demoserver.NewDemoServer(demoserver.DefaultConfig(), &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("NewDemoServer: %v", err)
	}
	ts := httptest.NewServer(ds.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, rawURL string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(rawURL)
	if err != nil {
		t.Fatalf("GET %s: %v", rawURL, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, body
}

func setVersion(t *testing.T, base, path string, version string) int {
	t.Helper()
	resp, err := http.PostForm(base+"/demo/set-version", url.Values{"path": {path}, "version": {version}})
	if err != nil {
		t.Fatalf("set-version: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

// ─── Pages ─────────────────────────────────────────────────────────────

func TestDemoServer_ServesPages(t *testing.T) {
	t.Parallel()
	ts := newDemo(t)

	resp, body := get(t, ts.URL+"/")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "Demo Store") {
		t.Fatalf("home status = %d", resp.StatusCode)
	}

	resp, body = get(t, ts.URL+"/report.pdf")
	if resp.Header.Get("Content-Type") != "application/pdf" || !strings.HasPrefix(string(body), "%PDF") {
		t.Errorf("report type = %q", resp.Header.Get("Content-Type"))
	}

	resp, _ = get(t, ts.URL+"/nope")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown page status = %d", resp.StatusCode)
	}
}

func TestDemoServer_VersionSwitching(t *testing.T) {
	t.Parallel()
	ts := newDemo(t)

	if code := setVersion(t, ts.URL, "/checkout", "2"); code != http.StatusOK {
		t.Fatalf("set-version status = %d", code)
	}
	_, body := get(t, ts.URL+"/checkout")
	if !strings.Contains(string(body), "declined") {
		t.Error("checkout v2 not served")
	}

	// Pages without a v3 fall back to their newest version.
	setVersion(t, ts.URL, "/article", "3")
	resp, _ := get(t, ts.URL+"/article")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("fallback status = %d", resp.StatusCode)
	}

	if code := setVersion(t, ts.URL, "/missing", "1"); code != http.StatusNotFound {
		t.Errorf("unknown path status = %d", code)
	}
	if code := setVersion(t, ts.URL, "/checkout", "zero"); code != http.StatusBadRequest {
		t.Errorf("bad version status = %d", code)
	}
}

func TestDemoServer_BumpAndReset(t *testing.T) {
	t.Parallel()
	ts := newDemo(t)

	for _, path := range []string{"/demo/bump-all", "/demo/bump-all"} {
		resp, err := http.Post(ts.URL+path, "", nil)
		if err != nil {
			t.Fatalf("bump: %v", err)
		}
		resp.Body.Close()
	}

	_, body := get(t, ts.URL+"/demo/get-versions")
	var pages []demoserver.PageInfo
	if err := json.Unmarshal(body, &pages); err != nil {
		t.Fatalf("decode versions: %v", err)
	}
	for _, p := range pages {
		want := p.AvailableVersions[len(p.AvailableVersions)-1]
		if p.CurrentVersion != want {
			t.Errorf("%s at v%d, want v%d", p.Path, p.CurrentVersion, want)
		}
	}

	resp, err := http.Post(ts.URL+"/demo/reset", "", nil)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	resp.Body.Close()
	_, body = get(t, ts.URL+"/demo/get-versions")
	_ = json.Unmarshal(body, &pages)
	for _, p := range pages {
		if p.CurrentVersion != 1 {
			t.Errorf("%s at v%d after reset", p.Path, p.CurrentVersion)
		}
	}

	resp, _ = get(t, ts.URL+"/demo/reset")
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET reset status = %d", resp.StatusCode)
	}
}

func TestDemoServer_ControlPanel(t *testing.T) {
	t.Parallel()
	ts := newDemo(t)

	_, body := get(t, ts.URL+"/demo/control")
	for _, path := range []string{"/checkout", "/article", "/settings", "/report.pdf"} {
		if !strings.Contains(string(body), path) {
			t.Errorf("control panel missing %s", path)
		}
	}
}

// ─── Scanning the fixtures ─────────────────────────────────────────────

func TestDemoServer_CheckoutScansDisabledPayButton(t *testing.T) {
	t.Parallel()
	ts := newDemo(t)
	setVersion(t, ts.URL, "/checkout", "2")
	_, body := get(t, ts.URL+"/checkout")

	target := &engine.StaticTarget{RawURL: ts.URL + "/checkout", ContentType: "text/html", Body: body, Viewport: testutil.Viewport}
	res, err := engine.New(target, &testutil.DummyLogger{}).Scan(context.Background(), engine.Request{Mode: model.ModeQuick})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	var pay *model.ElementDescriptor
	for i := range res.UIElements {
		if el := &res.UIElements[i]; el.Type == model.TypeButton && strings.HasPrefix(el.Text, "Pay") {
			pay = el
			break
		}
	}
	if pay == nil {
		t.Fatalf("pay button not found in %+v", res.UIElements)
	}
	if !strings.HasPrefix(pay.ID, "BTN-") || pay.State != model.StateDisabled {
		t.Errorf("pay = %+v", pay)
	}
}
