// Package geometry decides element visibility and screen regions relative to
// the viewport.
package geometry

import "strings"

// DefaultMargin is how far outside the viewport an element may sit and still
// count as visible.
const DefaultMargin = 500

// Rect is a bounding box in viewport coordinates.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

func (r Rect) Right() float64  { return r.Left + r.Width }
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Viewport is the visible area of the document.
type Viewport struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Style holds the computed style properties that affect visibility.
type Style struct {
	Display    string `json:"display"`
	Visibility string `json:"visibility"`
	Opacity    string `json:"opacity"`
}

// Box is a rendered element as far as visibility is concerned.
type Box struct {
	Style Style
	Rect  Rect
}

// Region is a 3x3 screen bucket such as "top-left" or "middle-center".
type Region string

// Evaluator checks boxes against one viewport.
type Evaluator struct {
	Viewport Viewport
	Margin   float64
}

// NewEvaluator returns an Evaluator with the default margin.
func NewEvaluator(vp Viewport) *Evaluator {
	return &Evaluator{Viewport: vp, Margin: DefaultMargin}
}

// Visible reports whether the box is rendered and overlaps the viewport
// expanded by the margin on every side. Touching the margin edge is outside.
func (e *Evaluator) Visible(b Box) bool {
	if strings.EqualFold(b.Style.Display, "none") {
		return false
	}
	if strings.EqualFold(b.Style.Visibility, "hidden") {
		return false
	}
	if strings.TrimSpace(b.Style.Opacity) == "0" {
		return false
	}
	r := b.Rect
	if r.Width == 0 || r.Height == 0 {
		return false
	}
	if r.Bottom() <= -e.Margin || r.Top >= e.Viewport.Height+e.Margin {
		return false
	}
	if r.Right() <= -e.Margin || r.Left >= e.Viewport.Width+e.Margin {
		return false
	}
	return true
}

// Region buckets the rect's top-left corner into thirds of the viewport.
func (e *Evaluator) Region(r Rect) Region {
	v := "bottom"
	switch {
	case r.Top < e.Viewport.Height*0.33:
		v = "top"
	case r.Top < e.Viewport.Height*0.66:
		v = "middle"
	}
	h := "right"
	switch {
	case r.Left < e.Viewport.Width*0.33:
		h = "left"
	case r.Left < e.Viewport.Width*0.66:
		h = "center"
	}
	return Region(v + "-" + h)
}
