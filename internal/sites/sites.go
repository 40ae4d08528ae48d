// Package sites holds scanners that pull structured data out of specific
// well-known sites.
package sites

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/net/idna"

	"github.com/raysh454/rawdata/internal/dom"
	"github.com/raysh454/rawdata/internal/logging"
	"github.com/raysh454/rawdata/internal/model"
)

// Scanner extracts site-specific data from a document.
type Scanner interface {
	Source() model.DeepSource
	Match(host string) bool
	Extract(doc *dom.Document) any
}

// Registry dispatches a document to the first scanner matching its host.
type Registry struct {
	mu       sync.RWMutex
	scanners []Scanner
	logger   logging.Logger
}

// NewRegistry returns a Registry holding scanners in match order.
func NewRegistry(logger logging.Logger, scanners ...Scanner) *Registry {
	return &Registry{
		scanners: scanners,
		logger:   logger.With(logging.Field{Key: "component", Value: "sites"}),
	}
}

// DefaultRegistry returns a Registry with the GitHub, EVM explorer and
// Solscan scanners.
func DefaultRegistry(logger logging.Logger) *Registry {
	return NewRegistry(logger, GitHub{}, Explorer{}, Solscan{})
}

// Register appends a scanner.
func (r *Registry) Register(s Scanner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scanners = append(r.scanners, s)
}

// Lookup returns the scanner for host, or nil.
func (r *Registry) Lookup(host string) Scanner {
	host = NormalizeHost(host)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.scanners {
		if s.Match(host) {
			return s
		}
	}
	return nil
}

// Scan runs the matching scanner. It returns nil when no scanner matches or
// the scanner panics.
func (r *Registry) Scan(doc *dom.Document) (out *model.DeepData) {
	s := r.Lookup(doc.Host())
	if s == nil {
		return nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("site scanner failed",
				logging.Field{Key: "source", Value: string(s.Source())},
				logging.Field{Key: "url", Value: doc.URL()},
				logging.Field{Key: "error", Value: fmt.Sprint(rec)})
			out = nil
		}
	}()
	data := s.Extract(doc)
	if data == nil {
		return nil
	}
	return &model.DeepData{Source: s.Source(), Data: data}
}

// NormalizeHost lower-cases host, strips a port and converts internationalised
// names to their ASCII form.
func NormalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}
	host = strings.TrimSuffix(host, ".")
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		return ascii
	}
	return host
}

// MatchDomain reports whether host is domain or one of its subdomains.
func MatchDomain(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func matchAny(host string, domains []string) bool {
	for _, d := range domains {
		if MatchDomain(host, d) {
			return true
		}
	}
	return false
}

func text(n *dom.Node) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.TextContent())
}

func ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
