package webclient

import "time"

type Client string

const (
	ClientNetHTTP  Client = "nethttp"
	ClientChromedp Client = "chromedp"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultIdleAfter = 2 * time.Second
	DefaultMaxBody   = 64 << 20
	DefaultUserAgent = "rawdata/1.0 (+https://github.com/raysh454/rawdata)"
)

// Config selects and tunes a backend. It is filled from app.Config by the
// caller so this package does not import app.
type Config struct {
	Client    Client        `yaml:"client"`
	Timeout   time.Duration `yaml:"timeout"`
	IdleAfter time.Duration `yaml:"idle_after"`
	Headless  *bool         `yaml:"headless"`
	UserAgent string        `yaml:"user_agent"`
	MaxBody   int64         `yaml:"max_body"`
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

func (c Config) idleAfter() time.Duration {
	if c.IdleAfter <= 0 {
		return DefaultIdleAfter
	}
	return c.IdleAfter
}

func (c Config) userAgent() string {
	if c.UserAgent == "" {
		return DefaultUserAgent
	}
	return c.UserAgent
}

func (c Config) maxBody() int64 {
	if c.MaxBody <= 0 {
		return DefaultMaxBody
	}
	return c.MaxBody
}

func (c Config) headless() bool {
	return c.Headless == nil || *c.Headless
}
