package engine

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/raysh454/rawdata/internal/dom"
	"github.com/raysh454/rawdata/internal/geometry"
	"github.com/raysh454/rawdata/internal/pdftext"
	"github.com/raysh454/rawdata/internal/webclient"
)

// Target is the document a Scanner reads.
type Target interface {
	URL() string
	Capture(ctx context.Context) (*dom.Document, error)
}

// Reattacher is implemented by targets that can re-establish a lost capture
// channel.
type Reattacher interface {
	Reattach(ctx context.Context) error
}

// StaticTarget serves a document held in memory, such as a saved page or a
// local PDF. It also serves its own bytes to the PDF pipeline.
type StaticTarget struct {
	RawURL      string
	ContentType string
	Body        []byte
	Viewport    geometry.Viewport
}

func (s *StaticTarget) URL() string { return s.RawURL }

func (s *StaticTarget) Capture(context.Context) (*dom.Document, error) {
	body := s.Body
	if pdftext.IsPDFContentType(s.ContentType) {
		body = nil
	}
	return dom.FromHTML(s.RawURL, s.ContentType, bytes.NewReader(body), s.Viewport)
}

func (s *StaticTarget) Fetch(context.Context, string) ([]byte, error) { return s.Body, nil }

// HTTPTarget downloads the document through a webclient backend on every
// capture. The last body is kept so a PDF is not downloaded twice.
type HTTPTarget struct {
	client   webclient.WebClient
	rawURL   string
	viewport geometry.Viewport

	mu   sync.Mutex
	last *webclient.Response
}

func NewHTTPTarget(client webclient.WebClient, rawURL string, vp geometry.Viewport) *HTTPTarget {
	return &HTTPTarget{client: client, rawURL: rawURL, viewport: vp}
}

func (h *HTTPTarget) URL() string { return h.rawURL }

func (h *HTTPTarget) Capture(ctx context.Context) (*dom.Document, error) {
	resp, err := h.client.Get(ctx, h.rawURL)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch %s: status %d", h.rawURL, resp.StatusCode)
	}
	h.mu.Lock()
	h.last = resp
	h.mu.Unlock()

	ct := resp.ContentType()
	body := resp.Body
	if pdftext.IsPDFContentType(ct) || pdftext.IsPDFURL(h.rawURL) {
		body = nil
	}
	return dom.FromHTML(h.rawURL, ct, bytes.NewReader(body), h.viewport)
}

func (h *HTTPTarget) Fetch(ctx context.Context, url string) ([]byte, error) {
	h.mu.Lock()
	last := h.last
	h.mu.Unlock()
	if last != nil && last.Request != nil && last.Request.URL == url && last.StatusCode < 400 {
		return last.Body, nil
	}
	return pdftext.WebFetcher{Client: h.client}.Fetch(ctx, url)
}
