package webclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/raysh454/rawdata/internal/logging"
)

// ChromedpClient renders pages in a headless browser and returns the
// serialised DOM after the network has gone idle. Only GET is supported.
type ChromedpClient struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	idleAfter   time.Duration
	timeout     time.Duration
	logger      logging.Logger
}

func NewChromedpClient(cfg Config, logger logging.Logger) (*ChromedpClient, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.headless()),
		chromedp.UserAgent(cfg.userAgent()),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	c := &ChromedpClient{
		allocCtx:    allocCtx,
		allocCancel: cancel,
		idleAfter:   cfg.idleAfter(),
		timeout:     cfg.timeout(),
		logger:      logger.With(logging.Field{Key: "backend", Value: "chromedp"}),
	}
	c.logger.Debug("created chromedp webclient",
		logging.Field{Key: "idle_after", Value: c.idleAfter.String()})
	return c, nil
}

// WaitNetworkIdle returns a channel that is closed once no request has been
// in flight for idleAfter. Listening starts immediately on ctx's target.
func WaitNetworkIdle(ctx context.Context, idleAfter time.Duration) <-chan struct{} {
	idle := make(chan struct{})
	var active int32
	var timer *time.Timer
	var timerMu sync.Mutex
	var once sync.Once

	startTimer := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(idleAfter, func() {
			if atomic.LoadInt32(&active) <= 0 {
				once.Do(func() { close(idle) })
			}
		})
	}

	chromedp.ListenTarget(ctx, func(ev any) {
		switch ev.(type) {
		case *network.EventRequestWillBeSent:
			atomic.AddInt32(&active, 1)
		case *network.EventLoadingFinished, *network.EventLoadingFailed:
			if atomic.AddInt32(&active, -1) <= 0 {
				startTimer()
			}
		}
	})
	startTimer()

	return idle
}

func (c *ChromedpClient) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}
	if m := strings.ToUpper(req.Method); m != "" && m != http.MethodGet {
		return nil, fmt.Errorf("%s: %w", m, ErrMethodNotSupported)
	}

	tabCtx, cancel := chromedp.NewContext(c.allocCtx)
	defer cancel()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, c.timeout)
	defer cancelTimeout()
	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	idle := WaitNetworkIdle(tabCtx, c.idleAfter)

	var (
		docMu   sync.Mutex
		status  int64
		headers network.Headers
	)
	chromedp.ListenTarget(tabCtx, func(ev any) {
		e, ok := ev.(*network.EventResponseReceived)
		if !ok || e.Type != network.ResourceTypeDocument {
			return
		}
		docMu.Lock()
		defer docMu.Unlock()
		if status == 0 {
			status = e.Response.Status
			headers = e.Response.Headers
		}
	})

	c.logger.Debug("rendering page", logging.Field{Key: "url", Value: req.URL})
	if err := chromedp.Run(tabCtx, network.Enable(), chromedp.Navigate(req.URL)); err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}

	if req.Options["wait"] != "none" {
		select {
		case <-idle:
		case <-tabCtx.Done():
			return nil, fmt.Errorf("wait for network idle: %w", tabCtx.Err())
		}
	}

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	docMu.Lock()
	defer docMu.Unlock()
	out := http.Header{}
	for k, v := range headers {
		out.Set(k, fmt.Sprint(v))
	}
	if status == 0 {
		status = http.StatusOK
	}
	return &Response{
		Request:    req,
		Headers:    out,
		Body:       []byte(html),
		StatusCode: int(status),
		FetchedAt:  time.Now(),
	}, nil
}

func (c *ChromedpClient) Get(ctx context.Context, url string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, URL: url})
}

func (c *ChromedpClient) Close() error {
	c.allocCancel()
	return nil
}
