// Package webclient fetches documents over pluggable backends: plain net/http
// for raw bytes and a headless browser for script-rendered pages.
package webclient

import "context"

type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)
	Get(ctx context.Context, url string) (*Response, error)

	Close() error
}
