// Package urls normalises page addresses so two scans of the same page can
// be recognised even when their URLs were typed differently.
package urls

import (
	"errors"
	"net"
	"net/url"
	"path"
	"slices"
	"strings"

	"golang.org/x/net/idna"
)

var (
	ErrEmpty       = errors.New("empty url")
	ErrMissingHost = errors.New("url has no host")
)

// Options controls the optional parts of canonicalisation.
type Options struct {
	DropTracking       bool     // remove utm_*, gclid, fbclid and friends
	StripTrailingSlash bool     // treat /a and /a/ as the same page
	DefaultScheme      string   // scheme assumed for inputs without one; empty means required
	KeepParams         []string // when set, only these query params survive
}

// PageIdentity is what scan comparison uses: tracking noise and trailing
// slashes do not make a different page.
var PageIdentity = Options{DropTracking: true, StripTrailingSlash: true, DefaultScheme: "https"}

var trackingParams = map[string]struct{}{
	"utm_source": {}, "utm_medium": {}, "utm_campaign": {}, "utm_term": {}, "utm_content": {},
	"gclid": {}, "fbclid": {}, "mc_cid": {}, "mc_eid": {},
}

// Canonicalize returns a deterministic form of raw: lowercased scheme and
// punycode host, default ports dropped, credentials and fragment removed,
// a cleaned path and sorted query parameters.
func Canonicalize(raw string, opts Options) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmpty
	}
	if opts.DefaultScheme != "" && !strings.Contains(raw, "://") {
		raw = opts.DefaultScheme + "://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", &url.Error{Op: "canonicalize", URL: raw, Err: ErrMissingHost}
	}

	u.Scheme = strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if puny, err := idna.Lookup.ToASCII(host); err == nil {
		host = puny
	}
	switch port := u.Port(); {
	case port == "", u.Scheme == "http" && port == "80", u.Scheme == "https" && port == "443":
		u.Host = host
	default:
		u.Host = net.JoinHostPort(host, port)
	}
	u.User = nil
	u.Fragment = ""

	p := path.Clean(u.Path)
	if p == "." {
		p = "/"
	}
	if opts.StripTrailingSlash && len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	if p == "/" && opts.StripTrailingSlash {
		p = ""
	}
	u.Path = p
	u.RawPath = ""

	u.RawQuery = canonicalQuery(u.Query(), opts)
	return u.String(), nil
}

func canonicalQuery(q url.Values, opts Options) string {
	for k := range q {
		if len(opts.KeepParams) > 0 {
			if !slices.Contains(opts.KeepParams, k) {
				q.Del(k)
			}
			continue
		}
		if _, ok := trackingParams[strings.ToLower(k)]; ok && opts.DropTracking {
			q.Del(k)
		}
	}
	for _, v := range q {
		slices.Sort(v)
	}
	// Encode sorts by key.
	return q.Encode()
}

// Same reports whether a and b address the same page. Inputs that cannot be
// canonicalised, such as file:// paths, are compared verbatim.
func Same(a, b string) bool {
	ca, errA := Canonicalize(a, PageIdentity)
	cb, errB := Canonicalize(b, PageIdentity)
	if errA != nil || errB != nil {
		return a == b
	}
	return ca == cb
}
