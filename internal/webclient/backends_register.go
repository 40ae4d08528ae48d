package webclient

import "github.com/raysh454/rawdata/internal/logging"

// RegisterDefaultBackends registers the nethttp and chromedp backends.
// Call it early in main() to make backends available to NewWebClient.
func RegisterDefaultBackends() {
	RegisterBackend(string(ClientNetHTTP), func(cfg Config, logger logging.Logger) (WebClient, error) {
		return NewNetHTTPClient(cfg, logger, nil)
	})
	RegisterBackend(string(ClientChromedp), func(cfg Config, logger logging.Logger) (WebClient, error) {
		return NewChromedpClient(cfg, logger)
	})
}
