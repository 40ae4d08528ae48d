package engine_test

import (
	"context"
	"errors"
	"image"
	"sync/atomic"
	"testing"
	"time"

	"github.com/raysh454/rawdata/internal/dom"
	"github.com/raysh454/rawdata/internal/engine"
	"github.com/raysh454/rawdata/internal/model"
	"github.com/raysh454/rawdata/internal/pdftext"
	"github.com/raysh454/rawdata/internal/testutil"
)

var fixed = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixed }

func page(url, markup string) *engine.StaticTarget {
	return &engine.StaticTarget{RawURL: url, ContentType: "text/html", Body: []byte(markup), Viewport: testutil.Viewport}
}

func scanner(target engine.Target, opts ...engine.Option) *engine.Scanner {
	opts = append([]engine.Option{engine.WithClock(clock)}, opts...)
	return engine.New(target, &testutil.DummyLogger{}, opts...)
}

const checkout = `<html><head><title>Checkout</title></head><body>
	<main>
		<h1>Checkout</h1>
		<p>Total due today is $42.50 including tax.</p>
		<form action="/pay" method="post">
			<button>Submit</button>
			<input type="text" placeholder="Name" disabled>
		</form>
		<a href="/help">Need help?</a>
	</main>
</body></html>`

// ─── Modes ─────────────────────────────────────────────────────────────

func TestScan_QuickScenario(t *testing.T) {
	t.Parallel()
	s := scanner(page("https://shop.example/checkout", checkout))

	res, err := s.Scan(context.Background(), engine.Request{Mode: model.ModeQuick})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if res.Meta.ScanType != "quick" || res.Meta.Title != "Checkout" || !res.Meta.Timestamp.Equal(fixed) {
		t.Errorf("meta = %+v", res.Meta)
	}
	if res.Page != nil || res.PDF != nil || res.DeepData != nil {
		t.Error("quick scan must not collect content or deep data")
	}

	got := map[string]model.ElementDescriptor{}
	for _, el := range res.UIElements {
		if _, dup := got[el.ID]; dup {
			t.Fatalf("duplicate id %s", el.ID)
		}
		got[el.ID] = el
	}
	if b := got["BTN-01"]; b.Text != "Submit" || b.State != model.StateEnabled {
		t.Errorf("BTN-01 = %+v", b)
	}
	if in := got["INPUT-01"]; in.State != model.StateDisabled || in.Placeholder != "Name" {
		t.Errorf("INPUT-01 = %+v", in)
	}
	if _, ok := got["LINK-01"]; !ok {
		t.Error("missing LINK-01")
	}
	if f := got["FORM-01"]; f.Method != "POST" {
		t.Errorf("FORM-01 = %+v", f)
	}
}

func TestScan_FullCollectsContent(t *testing.T) {
	t.Parallel()
	s := scanner(page("https://shop.example/checkout", checkout))

	res, err := s.Scan(context.Background(), engine.Request{Mode: model.ModeFull})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if res.Page == nil {
		t.Fatal("full scan must collect content")
	}
	if len(res.Page.Headings) != 1 || res.Page.Headings[0].Text != "Checkout" {
		t.Errorf("headings = %+v", res.Page.Headings)
	}
	if prices := res.Page.DisplayedData["prices"]; len(prices) != 1 || prices[0] != "$42.50" {
		t.Errorf("prices = %v", prices)
	}
	if res.DeepData != nil {
		t.Error("full scan must not run site scanners")
	}
}

func TestScan_DeepDispatchesSiteScanner(t *testing.T) {
	t.Parallel()
	s := scanner(page("https://github.com/acme/rocket", `<body>
		<strong itemprop="name"><a href="/acme/rocket">rocket</a></strong>
	</body>`))

	res, err := s.Scan(context.Background(), engine.Request{Mode: model.ModeDeep})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if res.DeepData == nil || res.DeepData.Source != model.SourceGitHub {
		t.Fatalf("deep = %+v", res.DeepData)
	}
	if res.Meta.ScanType != "deep" || res.Page == nil {
		t.Errorf("meta/page = %+v / %v", res.Meta, res.Page)
	}
}

func TestScan_DeepOnUnknownSiteHasNoDeepData(t *testing.T) {
	t.Parallel()
	res, err := scanner(page("https://shop.example/", checkout)).Scan(context.Background(), engine.Request{Mode: model.ModeDeep})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if res.DeepData != nil {
		t.Errorf("deep = %+v", res.DeepData)
	}
}

func TestScan_CountersResetPerScan(t *testing.T) {
	t.Parallel()
	s := scanner(page("https://shop.example/checkout", checkout))
	for i := 0; i < 2; i++ {
		res, err := s.Scan(context.Background(), engine.Request{Mode: model.ModeQuick})
		if err != nil {
			t.Fatalf("Scan: %v", err)
		}
		if res.UIElements[0].ID != "BTN-01" {
			t.Fatalf("scan %d first id = %s", i, res.UIElements[0].ID)
		}
	}
}

// ─── Validation ────────────────────────────────────────────────────────

func TestScan_InvalidMode(t *testing.T) {
	t.Parallel()
	_, err := scanner(page("https://shop.example/", checkout)).Scan(context.Background(), engine.Request{Mode: "turbo"})
	if !errors.Is(err, engine.ErrInvalidMode) {
		t.Fatalf("err = %v", err)
	}
}

func TestScan_RestrictedPages(t *testing.T) {
	t.Parallel()
	for _, url := range []string{
		"chrome://settings",
		"chrome-extension://abc/options.html",
		"edge://flags",
		"about:blank",
		"https://chrome.google.com/webstore/detail/x",
		"",
	} {
		_, err := scanner(page(url, checkout)).Scan(context.Background(), engine.Request{Mode: model.ModeQuick})
		if !errors.Is(err, engine.ErrRestrictedPage) {
			t.Errorf("%q: err = %v", url, err)
		}
	}
}

// ─── Capture channel ───────────────────────────────────────────────────

type flakyTarget struct {
	*engine.StaticTarget
	detachments int32
	captures    int32
	reattached  int32
}

func (f *flakyTarget) Capture(ctx context.Context) (*dom.Document, error) {
	n := atomic.AddInt32(&f.captures, 1)
	if n <= atomic.LoadInt32(&f.detachments) {
		return nil, engine.ErrChannelDetached
	}
	return f.StaticTarget.Capture(ctx)
}

func (f *flakyTarget) Reattach(context.Context) error {
	atomic.AddInt32(&f.reattached, 1)
	return nil
}

func TestScan_ReattachesOnceThenRetries(t *testing.T) {
	t.Parallel()
	target := &flakyTarget{StaticTarget: page("https://shop.example/", checkout), detachments: 1}

	res, err := scanner(target).Scan(context.Background(), engine.Request{Mode: model.ModeQuick})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(res.UIElements) == 0 {
		t.Error("retry should produce elements")
	}
	if target.reattached != 1 || target.captures != 2 {
		t.Errorf("reattached=%d captures=%d", target.reattached, target.captures)
	}
}

func TestScan_DetachedTwiceFails(t *testing.T) {
	t.Parallel()
	target := &flakyTarget{StaticTarget: page("https://shop.example/", checkout), detachments: 5}

	_, err := scanner(target).Scan(context.Background(), engine.Request{Mode: model.ModeQuick})
	if !errors.Is(err, engine.ErrChannelDetached) {
		t.Fatalf("err = %v", err)
	}
	if target.captures != 2 {
		t.Errorf("captures = %d, want exactly one retry", target.captures)
	}
}

// ─── Concurrency ───────────────────────────────────────────────────────

type blockingTarget struct {
	*engine.StaticTarget
	entered chan struct{}
	release chan struct{}
}

func (b *blockingTarget) Capture(ctx context.Context) (*dom.Document, error) {
	close(b.entered)
	<-b.release
	return b.StaticTarget.Capture(ctx)
}

func TestScan_OverlappingScanRejected(t *testing.T) {
	t.Parallel()
	target := &blockingTarget{
		StaticTarget: page("https://shop.example/", checkout),
		entered:      make(chan struct{}),
		release:      make(chan struct{}),
	}
	s := scanner(target)

	done := make(chan error, 1)
	go func() {
		_, err := s.Scan(context.Background(), engine.Request{Mode: model.ModeQuick})
		done <- err
	}()
	<-target.entered

	if _, err := s.Scan(context.Background(), engine.Request{Mode: model.ModeQuick}); !errors.Is(err, engine.ErrScanInProgress) {
		t.Fatalf("overlapping scan err = %v", err)
	}
	close(target.release)
	if err := <-done; err != nil {
		t.Fatalf("first scan: %v", err)
	}
}

// ─── Overlay ───────────────────────────────────────────────────────────

func TestScan_OverlayDrawnThenCleared(t *testing.T) {
	t.Parallel()
	surface := &testutil.DummySurface{}
	s := scanner(page("https://shop.example/checkout", checkout), engine.WithSurface(surface))

	res, err := s.Scan(context.Background(), engine.Request{Mode: model.ModeQuick, DrawOverlay: true})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	shown := surface.OnScreen()
	if len(shown) != len(res.UIElements) {
		t.Fatalf("labels = %d, elements = %d", len(shown), len(res.UIElements))
	}
	for i, l := range shown {
		if l.ID != res.UIElements[i].ID || l.Pos.Left < 0 {
			t.Errorf("label %d = %+v", i, l)
		}
	}

	if _, err := s.Scan(context.Background(), engine.Request{Mode: model.ModeQuick}); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(surface.OnScreen()) != 0 {
		t.Error("scan without overlay must clear previous labels")
	}
}

func TestScan_OverlayFailureDoesNotFailScan(t *testing.T) {
	t.Parallel()
	surface := &testutil.DummySurface{DrawErr: errors.New("detached")}
	s := scanner(page("https://shop.example/checkout", checkout), engine.WithSurface(surface))
	if _, err := s.Scan(context.Background(), engine.Request{Mode: model.ModeQuick, DrawOverlay: true}); err != nil {
		t.Fatalf("Scan: %v", err)
	}
}

// ─── PDF ───────────────────────────────────────────────────────────────

type blankDoc struct{ pages int }

func (d blankDoc) PageCount() int                               { return d.pages }
func (d blankDoc) PageText(int) ([]string, error)               { return nil, nil }
func (d blankDoc) RenderPage(int, float64) (image.Image, error) { return nil, pdftext.ErrNoRaster }

type blankLoader struct{}

func (blankLoader) Load([]byte) (pdftext.Document, error) { return blankDoc{pages: 3}, nil }

func TestScan_PDFWithoutTextOrOCR(t *testing.T) {
	t.Parallel()
	target := &engine.StaticTarget{RawURL: "https://docs.example/scan.pdf", ContentType: pdftext.ContentType, Body: []byte("%PDF-1.7")}
	pipeline := pdftext.NewPipeline(blankLoader{}, nil, pdftext.DefaultLimits(), &testutil.DummyLogger{})
	surface := &testutil.DummySurface{}

	res, err := scanner(target, engine.WithPDFPipeline(pipeline), engine.WithSurface(surface)).
		Scan(context.Background(), engine.Request{Mode: model.ModeFull, DrawOverlay: true})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !res.IsPDF() || !res.PDF.Failed() || res.PDF.Error != pdftext.MsgNoOCR {
		t.Fatalf("pdf = %+v", res.PDF)
	}
	if res.Meta.ScanType != "full_pdf" || res.Meta.Title != engine.DefaultPDFTitle {
		t.Errorf("meta = %+v", res.Meta)
	}
	if len(res.UIElements) != 0 || res.DeepData != nil || res.Page != nil {
		t.Error("pdf scans carry no elements, page content or deep data")
	}
	if surface.Draws != 0 {
		t.Error("pdf scans draw no labels")
	}
}

func TestScan_PDFWithoutPipeline(t *testing.T) {
	t.Parallel()
	target := &engine.StaticTarget{RawURL: "https://docs.example/a.pdf", ContentType: pdftext.ContentType}
	res, err := scanner(target).Scan(context.Background(), engine.Request{Mode: model.ModeQuick})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if res.PDF == nil || res.PDF.Error != pdftext.MsgNoLoader {
		t.Fatalf("pdf = %+v", res.PDF)
	}
}

type recordingFetcher struct {
	urls []string
}

func (f *recordingFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.urls = append(f.urls, url)
	return []byte("%PDF-1.7"), nil
}

func TestScan_EmbeddedPDFFetchesEmbedSource(t *testing.T) {
	t.Parallel()
	viewer := page("https://docs.example/viewer", `<html><body>
		<embed type="application/pdf" src="/files/report.pdf" width="800" height="600">
	</body></html>`)
	fetcher := &recordingFetcher{}
	pipeline := pdftext.NewPipeline(blankLoader{}, nil, pdftext.DefaultLimits(), &testutil.DummyLogger{})

	res, err := scanner(viewer, engine.WithPDFPipeline(pipeline), engine.WithFetcher(fetcher)).
		Scan(context.Background(), engine.Request{Mode: model.ModeFull})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !res.IsPDF() {
		t.Fatalf("viewer page should scan as PDF: %+v", res)
	}
	if len(fetcher.urls) != 1 || fetcher.urls[0] != "https://docs.example/files/report.pdf" {
		t.Errorf("fetched %v", fetcher.urls)
	}
}

// ─── HTTP target ───────────────────────────────────────────────────────

func TestHTTPTarget_ScansFetchedPage(t *testing.T) {
	t.Parallel()
	client := &testutil.DummyWebClient{Bodies: map[string][]byte{"https://shop.example/checkout": []byte(checkout)}}
	target := engine.NewHTTPTarget(client, "https://shop.example/checkout", testutil.Viewport)

	res, err := scanner(target).Scan(context.Background(), engine.Request{Mode: model.ModeQuick})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if res.Meta.Title != "Checkout" || len(res.UIElements) == 0 {
		t.Errorf("res = %+v", res.Meta)
	}
}

func TestHTTPTarget_ReusesPDFBody(t *testing.T) {
	t.Parallel()
	url := "https://docs.example/report.pdf"
	client := &testutil.DummyWebClient{Bodies: map[string][]byte{url: []byte("%PDF-1.4")}}
	target := engine.NewHTTPTarget(client, url, testutil.Viewport)
	pipeline := pdftext.NewPipeline(blankLoader{}, nil, pdftext.DefaultLimits(), &testutil.DummyLogger{})

	if _, err := scanner(target, engine.WithPDFPipeline(pipeline)).Scan(context.Background(), engine.Request{Mode: model.ModeQuick}); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(client.Requests) != 1 {
		t.Errorf("requests = %d, want the capture body reused", len(client.Requests))
	}
}
