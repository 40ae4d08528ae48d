package engine

import "strings"

var restrictedPrefixes = []string{
	"chrome://",
	"chrome-extension://",
	"edge://",
	"about:",
	"devtools://",
	"view-source:",
}

var restrictedHosts = []string{
	"chrome.google.com/webstore",
	"chromewebstore.google.com",
}

// IsRestricted reports whether rawURL is a browser surface that must not be
// scanned. An empty URL is restricted.
func IsRestricted(rawURL string) bool {
	u := strings.ToLower(strings.TrimSpace(rawURL))
	if u == "" {
		return true
	}
	for _, p := range restrictedPrefixes {
		if strings.HasPrefix(u, p) {
			return true
		}
	}
	for _, h := range restrictedHosts {
		if strings.Contains(u, h) {
			return true
		}
	}
	return false
}
