package webclient

import (
	"net/http"
	"strings"
	"time"
)

type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
	// Options carries backend-specific switches such as "wait": "idle" for chromedp.
	Options map[string]string
}

type Response struct {
	Request    *Request
	Headers    http.Header
	Body       []byte
	StatusCode int
	FetchedAt  time.Time
}

// ContentType returns the media type of the response without parameters.
func (r *Response) ContentType() string {
	if r == nil || r.Headers == nil {
		return ""
	}
	ct, _, _ := strings.Cut(r.Headers.Get("Content-Type"), ";")
	return strings.ToLower(strings.TrimSpace(ct))
}
