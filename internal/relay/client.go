package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/raysh454/rawdata/internal/logging"
	"github.com/raysh454/rawdata/internal/model"
	"github.com/raysh454/rawdata/internal/webclient"
)

// Client uploads scan results to a relay server.
type Client struct {
	baseURL string
	maxSize int
	wc      webclient.WebClient
	logger  logging.Logger
}

// NewClient returns a Client posting to baseURL. maxSize <= 0 selects
// DefaultMaxSize.
func NewClient(baseURL string, maxSize int, wc webclient.WebClient, logger logging.Logger) *Client {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		maxSize: maxSize,
		wc:      wc,
		logger:  logger.With(logging.Field{Key: "component", Value: "relay-client"}),
	}
}

// Upload sends result and returns the relay's receipt. A result over the size
// ceiling is rejected with *SizeError without contacting the server.
func (c *Client) Upload(ctx context.Context, result *model.ScanResult) (*Receipt, error) {
	body, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode scan: %w", err)
	}
	if len(body) > c.maxSize {
		return nil, &SizeError{Size: len(body), Max: c.maxSize}
	}

	resp, err := c.wc.Do(ctx, &webclient.Request{
		Method:  http.MethodPost,
		URL:     c.baseURL + "/scan",
		Headers: http.Header{"Content-Type": {"application/json"}},
		Body:    body,
	})
	if err != nil {
		return nil, fmt.Errorf("upload scan: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusRequestEntityTooLarge:
		return nil, &SizeError{Size: len(body), Max: c.maxSize}
	default:
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(resp.Body, &e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("upload scan: %d %s", resp.StatusCode, e.Error)
	}

	var r Receipt
	if err := json.Unmarshal(resp.Body, &r); err != nil {
		return nil, fmt.Errorf("decode receipt: %w", err)
	}
	c.logger.Info("uploaded scan", logging.Field{Key: "id", Value: r.ID}, logging.Field{Key: "url", Value: r.URL})
	return &r, nil
}
