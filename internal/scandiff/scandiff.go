// Package scandiff compares two scans of the same page: which interactive
// elements appeared, disappeared or changed state, and how the rendered
// content moved between them.
package scandiff

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/raysh454/rawdata/internal/model"
	"github.com/raysh454/rawdata/internal/render"
	"github.com/raysh454/rawdata/internal/urls"
)

// ErrDifferentPages is returned when the two scans are not of the same page.
var ErrDifferentPages = errors.New("scans are of different pages")

type ChangeKind string

const (
	Added   ChangeKind = "added"
	Removed ChangeKind = "removed"
	Changed ChangeKind = "changed"
)

// ElementChange describes one element that differs between the scans.
// Elements are matched by ID, so a renumbered element shows up as changed.
type ElementChange struct {
	Kind   ChangeKind               `json:"kind"`
	ID     string                   `json:"id"`
	Before *model.ElementDescriptor `json:"before,omitempty"`
	After  *model.ElementDescriptor `json:"after,omitempty"`
}

// Chunk is a run of added or removed content lines.
type Chunk struct {
	Kind    ChangeKind `json:"kind"`
	Content string     `json:"content"`
}

type Diff struct {
	BaseID   string          `json:"base_id,omitempty"`
	HeadID   string          `json:"head_id,omitempty"`
	URL      string          `json:"url"`
	Elements []ElementChange `json:"elements"`
	Chunks   []Chunk         `json:"chunks"`
}

// Empty reports whether the scans are equivalent.
func (d *Diff) Empty() bool { return len(d.Elements) == 0 && len(d.Chunks) == 0 }

// Compare diffs head against base. Both scans must address the same page
// once tracking parameters and trailing slashes are ignored.
func Compare(baseID string, base *model.ScanResult, headID string, head *model.ScanResult) (*Diff, error) {
	if !urls.Same(base.Meta.URL, head.Meta.URL) {
		return nil, fmt.Errorf("%w: %s and %s", ErrDifferentPages, base.Meta.URL, head.Meta.URL)
	}
	return &Diff{
		BaseID:   baseID,
		HeadID:   headID,
		URL:      base.Meta.URL,
		Elements: compareElements(base.UIElements, head.UIElements),
		Chunks:   compareText(contentText(base, base.Meta.URL), contentText(head, base.Meta.URL)),
	}, nil
}

func compareElements(base, head []model.ElementDescriptor) []ElementChange {
	before := make(map[string]*model.ElementDescriptor, len(base))
	for i := range base {
		before[base[i].ID] = &base[i]
	}

	changes := []ElementChange{}
	seen := make(map[string]bool, len(head))
	for i := range head {
		h := &head[i]
		seen[h.ID] = true
		b, ok := before[h.ID]
		switch {
		case !ok:
			changes = append(changes, ElementChange{Kind: Added, ID: h.ID, After: h})
		case !sameElement(b, h):
			changes = append(changes, ElementChange{Kind: Changed, ID: h.ID, Before: b, After: h})
		}
	}
	for i := range base {
		if !seen[base[i].ID] {
			changes = append(changes, ElementChange{Kind: Removed, ID: base[i].ID, Before: &base[i]})
		}
	}
	return changes
}

func sameElement(a, b *model.ElementDescriptor) bool {
	return a.Type == b.Type &&
		a.Text == b.Text &&
		a.State == b.State &&
		a.Location == b.Location &&
		a.Href == b.Href &&
		a.CurrentValue == b.CurrentValue &&
		a.Placeholder == b.Placeholder
}

// contentText renders r as Markdown under a fixed URL and without its
// timestamp so that two scans of an unchanged page produce the same text.
func contentText(r *model.ScanResult, url string) string {
	c := *r
	c.Meta.URL = url
	c.Meta.Timestamp = time.Time{}
	return render.Markdown(&c, "")
}

// compareText diffs line by line.
func compareText(base, head string) []Chunk {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(base, head)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	chunks := []Chunk{}
	for _, d := range diffs {
		var kind ChangeKind
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			kind = Added
		case diffmatchpatch.DiffDelete:
			kind = Removed
		default:
			continue
		}
		if strings.TrimSpace(d.Text) == "" {
			continue
		}
		chunks = append(chunks, Chunk{Kind: kind, Content: d.Text})
	}
	return chunks
}

// Text renders d as a unified-style listing.
func (d *Diff) Text() string {
	if d.Empty() {
		return "No changes.\n"
	}
	var b strings.Builder
	if len(d.Elements) > 0 {
		b.WriteString("Elements:\n")
		for _, c := range d.Elements {
			switch c.Kind {
			case Added:
				b.WriteString("  + " + describe(c.After) + "\n")
			case Removed:
				b.WriteString("  - " + describe(c.Before) + "\n")
			case Changed:
				b.WriteString("  ~ " + describe(c.Before) + " -> " + describe(c.After) + "\n")
			}
		}
	}
	if len(d.Chunks) > 0 {
		b.WriteString("Content:\n")
		for _, c := range d.Chunks {
			prefix := "+ "
			if c.Kind == Removed {
				prefix = "- "
			}
			for _, line := range strings.Split(strings.TrimRight(c.Content, "\n"), "\n") {
				b.WriteString("  " + prefix + line + "\n")
			}
		}
	}
	return b.String()
}

func describe(e *model.ElementDescriptor) string {
	s := "[" + e.ID + "] " + string(e.Type) + " " + `"` + e.Text + `"`
	if e.State != "" && e.State != model.StateEnabled {
		s += " (" + string(e.State) + ")"
	}
	return s
}
