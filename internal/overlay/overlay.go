// Package overlay places identifier labels next to scanned elements and keeps
// track of the labels currently drawn on a surface.
package overlay

import (
	"context"
	"sync"
	"unicode/utf8"

	"github.com/raysh454/rawdata/internal/geometry"
)

// ClassName is the CSS class carried by every drawn label.
const ClassName = "rawdata-label"

const (
	edgeGap       = 5
	labelGap      = 3
	cornerGap     = 2
	smallWidth    = 30
	smallHeight   = 20
	charWidth     = 7
	labelPadding  = 8
	defaultHeight = 16
)

// Size is the rendered size of a label.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Position is the viewport-fixed top-left corner of a label.
type Position struct {
	Left float64 `json:"left"`
	Top  float64 `json:"top"`
}

// EstimateSize approximates the rendered size of a label showing text.
func EstimateSize(text string) Size {
	return Size{Width: float64(utf8.RuneCountInString(text)*charWidth + labelPadding), Height: defaultHeight}
}

// Place positions a label for an element occupying rect. The label is centred
// above the element, pulled back inside the left or right viewport edge when
// it would clip, moved below when it would clip the top, and pinned to the
// top-left corner for elements smaller than 30x20.
func Place(rect geometry.Rect, label Size, vp geometry.Viewport) Position {
	x := rect.Left + rect.Width/2
	centered := true
	top := rect.Top - label.Height - labelGap

	if x-label.Width/2 < edgeGap {
		x = rect.Left
		centered = false
	}
	if x+label.Width/2 > vp.Width-edgeGap {
		x = rect.Right() - label.Width
		centered = false
	}
	if top < edgeGap {
		top = rect.Bottom() + labelGap
	}
	if rect.Width < smallWidth || rect.Height < smallHeight {
		x = rect.Left
		top = rect.Top - label.Height - cornerGap
		centered = false
	}

	if centered {
		x -= label.Width / 2
	}
	return Position{Left: x, Top: top}
}

// Anchor is an element to label.
type Anchor struct {
	ID   string
	Type string
	Rect geometry.Rect
}

// Label is a placed label ready to draw.
type Label struct {
	ID   string   `json:"id"`
	Type string   `json:"type"`
	Pos  Position `json:"pos"`
	Size Size     `json:"size"`
}

// Layout places one label per anchor.
func Layout(anchors []Anchor, vp geometry.Viewport) []Label {
	out := make([]Label, 0, len(anchors))
	for _, a := range anchors {
		size := EstimateSize(a.ID)
		out = append(out, Label{ID: a.ID, Type: a.Type, Pos: Place(a.Rect, size, vp), Size: size})
	}
	return out
}

// Surface draws and removes labels on a document.
type Surface interface {
	DrawLabels(ctx context.Context, labels []Label) error
	RemoveLabels(ctx context.Context) error
}

// Layer owns the labels drawn on one surface. Labels from a previous Show are
// always removed before new ones appear.
type Layer struct {
	mu      sync.Mutex
	surface Surface
	labels  []Label
	enabled bool
}

// NewLayer returns an enabled Layer drawing on s.
func NewLayer(s Surface) *Layer {
	return &Layer{surface: s, enabled: true}
}

// Show replaces the current labels with labels for anchors. When the layer
// is disabled it only clears.
func (l *Layer) Show(ctx context.Context, anchors []Anchor, vp geometry.Viewport) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.clearLocked(ctx); err != nil {
		return err
	}
	if !l.enabled || len(anchors) == 0 {
		return nil
	}
	labels := Layout(anchors, vp)
	if err := l.surface.DrawLabels(ctx, labels); err != nil {
		return err
	}
	l.labels = labels
	return nil
}

// Clear removes every label.
func (l *Layer) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.clearLocked(ctx)
}

// SetEnabled toggles the layer; disabling clears immediately.
func (l *Layer) SetEnabled(ctx context.Context, enabled bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
	if !enabled {
		return l.clearLocked(ctx)
	}
	return nil
}

// Enabled reports whether Show draws labels.
func (l *Layer) Enabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

// Labels returns the labels currently drawn.
func (l *Layer) Labels() []Label {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Label(nil), l.labels...)
}

func (l *Layer) clearLocked(ctx context.Context) error {
	l.labels = nil
	return l.surface.RemoveLabels(ctx)
}
