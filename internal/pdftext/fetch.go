package pdftext

import (
	"context"
	"fmt"
	"net/http"

	"github.com/raysh454/rawdata/internal/webclient"
)

// Fetcher retrieves the bytes of a PDF.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// WebFetcher fetches PDFs through a webclient backend.
type WebFetcher struct {
	Client webclient.WebClient
}

func (f WebFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.Client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch pdf: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch pdf: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return resp.Body, nil
}

// BytesFetcher serves a PDF already in memory.
type BytesFetcher []byte

func (b BytesFetcher) Fetch(context.Context, string) ([]byte, error) { return b, nil }
