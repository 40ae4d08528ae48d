// Package browser drives a headless Chrome through chromedp. A Tab is a live
// scan target: it captures the rendered document and draws overlay labels.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/raysh454/rawdata/internal/dom"
	"github.com/raysh454/rawdata/internal/engine"
	"github.com/raysh454/rawdata/internal/geometry"
	"github.com/raysh454/rawdata/internal/logging"
	"github.com/raysh454/rawdata/internal/overlay"
	"github.com/raysh454/rawdata/internal/webclient"
)

type Config struct {
	Headless  bool              `yaml:"headless"`
	Viewport  geometry.Viewport `yaml:"viewport"`
	IdleAfter time.Duration     `yaml:"idle_after"`
	Timeout   time.Duration     `yaml:"timeout"`
	UserAgent string            `yaml:"user_agent"`
}

func DefaultConfig() Config {
	return Config{
		Headless:  true,
		Viewport:  geometry.Viewport{Width: 1280, Height: 800},
		IdleAfter: webclient.DefaultIdleAfter,
		Timeout:   webclient.DefaultTimeout,
		UserAgent: webclient.DefaultUserAgent,
	}
}

// Browser owns one Chrome process. Tabs opened from it share the process.
type Browser struct {
	cfg         Config
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
	logger      logging.Logger
}

// Launch starts Chrome.
func Launch(cfg Config, logger logging.Logger) (*Browser, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.WindowSize(int(cfg.Viewport.Width), int(cfg.Viewport.Height)),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, cancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	b := &Browser{
		cfg:         cfg,
		allocCancel: allocCancel,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger.With(logging.Field{Key: "component", Value: "browser"}),
	}
	b.logger.Info("browser started", logging.Field{Key: "headless", Value: cfg.Headless})
	return b, nil
}

// Close shuts Chrome down.
func (b *Browser) Close() error {
	b.cancel()
	b.allocCancel()
	return nil
}

// Open loads url in a new tab and waits for the network to go idle.
func (b *Browser) Open(ctx context.Context, url string) (*Tab, error) {
	t := &Tab{browser: b, url: url, logger: b.logger.With(logging.Field{Key: "url", Value: url})}
	if err := t.attach(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// Tab is one page. It implements engine.Target, engine.Reattacher and
// overlay.Surface.
type Tab struct {
	browser *Browser
	logger  logging.Logger

	mu     sync.Mutex
	url    string
	ctx    context.Context
	cancel context.CancelFunc
}

var (
	_ engine.Target     = (*Tab)(nil)
	_ engine.Reattacher = (*Tab)(nil)
	_ overlay.Surface   = (*Tab)(nil)
)

func (t *Tab) attach(ctx context.Context) error {
	tabCtx, cancel := chromedp.NewContext(t.browser.ctx)
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return fmt.Errorf("open tab: %w", err)
	}

	idle := webclient.WaitNetworkIdle(tabCtx, t.browser.cfg.IdleAfter)
	runCtx, stop := t.bound(ctx, tabCtx)
	defer stop()

	vp := t.browser.cfg.Viewport
	err := chromedp.Run(runCtx,
		network.Enable(),
		chromedp.EmulateViewport(int64(vp.Width), int64(vp.Height)),
		chromedp.Navigate(t.url),
	)
	if err != nil {
		cancel()
		return fmt.Errorf("navigate: %w", err)
	}
	select {
	case <-idle:
	case <-runCtx.Done():
		t.logger.Warn("network never went idle, capturing anyway")
	}

	t.mu.Lock()
	old := t.cancel
	t.ctx, t.cancel = tabCtx, cancel
	t.mu.Unlock()
	if old != nil {
		old()
	}
	return nil
}

// bound derives a context from the tab context that also ends when ctx does
// or the configured timeout elapses. Cancelling it never closes the tab.
func (t *Tab) bound(ctx, tabCtx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithTimeout(tabCtx, t.browser.cfg.Timeout)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

func (t *Tab) current() context.Context {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ctx
}

func (t *Tab) URL() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.url
}

// Capture snapshots the rendered document.
func (t *Tab) Capture(ctx context.Context) (*dom.Document, error) {
	tabCtx := t.current()
	if tabCtx == nil || tabCtx.Err() != nil {
		return nil, engine.ErrChannelDetached
	}
	runCtx, stop := t.bound(ctx, tabCtx)
	defer stop()

	var c *dom.Capture
	if err := chromedp.Run(runCtx, chromedp.Evaluate(captureScript, &c)); err != nil {
		return nil, t.classify(err)
	}
	if c == nil {
		return nil, engine.ErrChannelDetached
	}
	t.mu.Lock()
	t.url = c.URL
	t.mu.Unlock()
	return dom.New(*c)
}

// Reattach opens a fresh tab on the current URL and drops the old one.
func (t *Tab) Reattach(ctx context.Context) error {
	t.logger.Debug("re-attaching tab")
	return t.attach(ctx)
}

func (t *Tab) DrawLabels(ctx context.Context, labels []overlay.Label) error {
	script, err := drawLabelsScript(labels)
	if err != nil {
		return err
	}
	return t.eval(ctx, script)
}

func (t *Tab) RemoveLabels(ctx context.Context) error {
	return t.eval(ctx, removeLabelsScript)
}

func (t *Tab) eval(ctx context.Context, script string) error {
	tabCtx := t.current()
	if tabCtx == nil || tabCtx.Err() != nil {
		return engine.ErrChannelDetached
	}
	runCtx, stop := t.bound(ctx, tabCtx)
	defer stop()
	var ignored any
	if err := chromedp.Run(runCtx, chromedp.Evaluate(script, &ignored)); err != nil {
		return t.classify(err)
	}
	return nil
}

// Close closes the tab.
func (t *Tab) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
	}
	return nil
}

func (t *Tab) classify(err error) error {
	if errors.Is(err, chromedp.ErrInvalidTarget) || errors.Is(err, chromedp.ErrInvalidContext) ||
		errors.Is(err, chromedp.ErrChannelClosed) || t.current().Err() != nil {
		return fmt.Errorf("%w: %v", engine.ErrChannelDetached, err)
	}
	return err
}
