package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/raysh454/rawdata/internal/browser"
	"github.com/raysh454/rawdata/internal/engine"
	"github.com/raysh454/rawdata/internal/history"
	"github.com/raysh454/rawdata/internal/logging"
	"github.com/raysh454/rawdata/internal/ocr"
	"github.com/raysh454/rawdata/internal/pdftext"
	"github.com/raysh454/rawdata/internal/relay"
	"github.com/raysh454/rawdata/internal/sites"
	"github.com/raysh454/rawdata/internal/summarize"
	"github.com/raysh454/rawdata/internal/webclient"
)

// Components are the long-lived collaborators a scan needs. They are built
// once per process and shared by every job.
type Components struct {
	cfg    *Config
	logger logging.Logger

	WebClient  webclient.WebClient
	PDF        *pdftext.Pipeline
	Sites      *sites.Registry
	History    *history.Store
	Relay      *relay.Client
	Summarizer *summarize.Summarizer

	recognizer ocr.Recognizer

	browserMu sync.Mutex
	browser   *browser.Browser
}

type componentOptions struct {
	webClient  webclient.WebClient
	recognizer ocr.Recognizer
	chat       summarize.ChatClient
	history    *history.Store
}

// ComponentOption replaces one collaborator, mostly for tests.
type ComponentOption func(*componentOptions)

func WithWebClient(wc webclient.WebClient) ComponentOption {
	return func(o *componentOptions) { o.webClient = wc }
}

func WithRecognizer(r ocr.Recognizer) ComponentOption {
	return func(o *componentOptions) { o.recognizer = r }
}

func WithChatClient(c summarize.ChatClient) ComponentOption {
	return func(o *componentOptions) { o.chat = c }
}

func WithHistory(h *history.Store) ComponentOption {
	return func(o *componentOptions) { o.history = h }
}

// NewComponents builds the shared collaborators from cfg.
func NewComponents(cfg *Config, logger logging.Logger, opts ...ComponentOption) (*Components, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	var o componentOptions
	for _, opt := range opts {
		opt(&o)
	}

	wc := o.webClient
	if wc == nil {
		var err error
		if wc, err = webclient.NewWebClient(cfg.WebClient, logger); err != nil {
			return nil, fmt.Errorf("new webclient: %w", err)
		}
	}

	rec := o.recognizer
	if rec == nil {
		r, err := ocr.New(cfg.OCR)
		switch {
		case errors.Is(err, ocr.ErrUnavailable):
			logger.Debug("ocr disabled")
		case err != nil:
			logger.Warn("ocr init failed, continuing without it", logging.Field{Key: "error", Value: err})
		default:
			rec = r
		}
	}

	hist := o.history
	if hist == nil {
		var err error
		if hist, err = history.Open(cfg.History, logger); err != nil {
			_ = wc.Close()
			return nil, fmt.Errorf("open history: %w", err)
		}
	}

	chat := o.chat
	if chat == nil && (cfg.Summarize.APIKey != "" || cfg.Summarize.BaseURL != "") {
		chat = summarize.NewClient(cfg.Summarize)
	}

	return &Components{
		cfg:        cfg,
		logger:     logger,
		WebClient:  wc,
		PDF:        pdftext.NewPipeline(pdftext.PDFCPULoader{}, rec, cfg.PDF, logger),
		Sites:      sites.DefaultRegistry(logger),
		History:    hist,
		Relay:      relay.NewClient(cfg.Relay.BaseURL, cfg.Relay.MaxSize, wc, logger),
		Summarizer: summarize.New(chat, cfg.Summarize, logger),
		recognizer: rec,
	}, nil
}

// Target resolves what a scan request reads: an in-memory body, a page
// downloaded through the webclient, or a live browser tab. The returned
// release func must be called once the scan is over.
func (c *Components) Target(ctx context.Context, req ScanRequest) (engine.Target, func(), error) {
	if req.Body != nil {
		return &engine.StaticTarget{
			RawURL:      req.URL,
			ContentType: req.ContentType,
			Body:        req.Body,
			Viewport:    c.cfg.Browser.Viewport,
		}, func() {}, nil
	}
	if req.Backend == BackendBrowser {
		b, err := c.launchBrowser()
		if err != nil {
			return nil, nil, err
		}
		tab, err := b.Open(ctx, req.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("open tab: %w", err)
		}
		return tab, func() { _ = tab.Close() }, nil
	}
	return engine.NewHTTPTarget(c.WebClient, req.URL, c.cfg.Browser.Viewport), func() {}, nil
}

// Scanner builds a Scanner over target configured from cfg.Scan.
func (c *Components) Scanner(target engine.Target) *engine.Scanner {
	opts := []engine.Option{
		engine.WithPDFPipeline(c.PDF),
		engine.WithSites(c.Sites),
		engine.WithContentLimits(c.cfg.Content),
		engine.WithMargin(c.cfg.Scan.Margin),
	}
	if _, ok := target.(pdftext.Fetcher); !ok {
		opts = append(opts, engine.WithFetcher(pdftext.WebFetcher{Client: c.WebClient}))
	}
	if c.cfg.Scan.DegradedIDs {
		opts = append(opts, engine.WithDegradedIDs())
	}
	return engine.New(target, c.logger, opts...)
}

func (c *Components) launchBrowser() (*browser.Browser, error) {
	c.browserMu.Lock()
	defer c.browserMu.Unlock()
	if c.browser != nil {
		return c.browser, nil
	}
	b, err := browser.Launch(c.cfg.Browser, c.logger)
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	c.browser = b
	return b, nil
}

// Close releases every collaborator.
func (c *Components) Close() error {
	var firstErr error
	c.browserMu.Lock()
	if c.browser != nil {
		if err := c.browser.Close(); err != nil {
			firstErr = fmt.Errorf("close browser: %w", err)
		}
		c.browser = nil
	}
	c.browserMu.Unlock()
	if closer, ok := c.recognizer.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close ocr: %w", err)
		}
	}
	if err := c.WebClient.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close webclient: %w", err)
	}
	if err := c.History.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close history: %w", err)
	}
	return firstErr
}
