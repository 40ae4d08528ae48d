// Package ident issues short, per-scan identifiers such as BTN-01 or LINK-12.
package ident

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrUnknownCategory is returned when an element kind maps to no category and
// degraded fallback is off.
var ErrUnknownCategory = errors.New("unknown element category")

// Category is an identifier prefix.
type Category string

const (
	Button Category = "BTN"
	Input  Category = "INPUT"
	Link   Category = "LINK"
	Select Category = "SELECT"
	Form   Category = "FORM"
	Text   Category = "TEXT"
)

// Categories lists every category in allocation table order.
var Categories = []Category{Button, Input, Link, Select, Form, Text}

var kinds = map[string]Category{
	"button":    Button,
	"submit":    Button,
	"reset":     Button,
	"input":     Input,
	"textarea":  Input,
	"searchbox": Input,
	"textbox":   Input,
	"link":      Link,
	"anchor":    Link,
	"a":         Link,
	"select":    Select,
	"listbox":   Select,
	"combobox":  Select,
	"form":      Form,
	"text":      Text,
	"heading":   Text,
}

// CategoryFor maps an element kind or role onto its category.
func CategoryFor(kind string) (Category, bool) {
	c, ok := kinds[strings.ToLower(strings.TrimSpace(kind))]
	return c, ok
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithDegradedFallback makes AllocateFor issue random EL-XXXX identifiers for
// unknown kinds instead of failing.
func WithDegradedFallback() Option {
	return func(a *Allocator) { a.fallback = true }
}

// Allocator hands out sequential identifiers per category. It belongs to a
// single scan and is not safe for concurrent use.
type Allocator struct {
	counters map[Category]int
	fallback bool
	degraded bool
}

// New returns an Allocator with all counters at zero.
func New(opts ...Option) *Allocator {
	a := &Allocator{counters: make(map[Category]int, len(Categories))}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Reset sets every counter back to zero and clears the degraded flag.
func (a *Allocator) Reset() {
	for k := range a.counters {
		delete(a.counters, k)
	}
	a.degraded = false
}

// Allocate returns the next identifier for c, zero-padded to two digits.
func (a *Allocator) Allocate(c Category) string {
	a.counters[c]++
	return fmt.Sprintf("%s-%02d", c, a.counters[c])
}

// AllocateFor maps kind to a category and allocates from it.
func (a *Allocator) AllocateFor(kind string) (string, error) {
	if c, ok := CategoryFor(kind); ok {
		return a.Allocate(c), nil
	}
	if !a.fallback {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, kind)
	}
	a.degraded = true
	return "EL-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4]), nil
}

// Degraded reports whether a random identifier was issued since the last
// Reset.
func (a *Allocator) Degraded() bool { return a.degraded }

// Count returns how many identifiers c has issued.
func (a *Allocator) Count(c Category) int { return a.counters[c] }
