package overlay_test

import (
	"context"
	"errors"
	"testing"

	"github.com/raysh454/rawdata/internal/geometry"
	"github.com/raysh454/rawdata/internal/overlay"
	"github.com/raysh454/rawdata/internal/testutil"
)

var (
	vp    = geometry.Viewport{Width: 1000, Height: 800}
	label = overlay.Size{Width: 40, Height: 16}
)

// ─── Place ─────────────────────────────────────────────────────────────

func TestPlace_Rules(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		rect geometry.Rect
		want overlay.Position
	}{
		{"centred above", geometry.Rect{Left: 100, Top: 100, Width: 200, Height: 40}, overlay.Position{Left: 180, Top: 81}},
		{"left edge clip", geometry.Rect{Left: 0, Top: 100, Width: 30, Height: 40}, overlay.Position{Left: 0, Top: 81}},
		{"right edge clip", geometry.Rect{Left: 960, Top: 100, Width: 40, Height: 40}, overlay.Position{Left: 960, Top: 81}},
		{"top clip goes below", geometry.Rect{Left: 100, Top: 2, Width: 200, Height: 40}, overlay.Position{Left: 180, Top: 45}},
		{"small element corner", geometry.Rect{Left: 100, Top: 100, Width: 20, Height: 10}, overlay.Position{Left: 100, Top: 82}},
		{"short element corner", geometry.Rect{Left: 100, Top: 100, Width: 200, Height: 19}, overlay.Position{Left: 100, Top: 82}},
		{"small element at top is not clamped", geometry.Rect{Left: 100, Top: 0, Width: 20, Height: 10}, overlay.Position{Left: 100, Top: -18}},
	}
	for _, tt := range tests {
		if got := overlay.Place(tt.rect, label, vp); got != tt.want {
			t.Errorf("%s: Place = %+v, want %+v", tt.name, got, tt.want)
		}
	}
}

func TestPlace_LeftCorrectionNeverNegative(t *testing.T) {
	t.Parallel()
	for left := 0.0; left < 40; left += 2.5 {
		pos := overlay.Place(geometry.Rect{Left: left, Top: 300, Width: 60, Height: 30}, label, vp)
		if pos.Left < 0 {
			t.Fatalf("element at left=%v produced label left=%v", left, pos.Left)
		}
	}
}

func TestEstimateSize(t *testing.T) {
	t.Parallel()
	if s := overlay.EstimateSize("BTN-01"); s.Width != 50 || s.Height != 16 {
		t.Errorf("EstimateSize = %+v", s)
	}
}

// ─── Layer ─────────────────────────────────────────────────────────────

func anchors(ids ...string) []overlay.Anchor {
	out := make([]overlay.Anchor, len(ids))
	for i, id := range ids {
		out[i] = overlay.Anchor{ID: id, Type: "button", Rect: geometry.Rect{Left: 100, Top: float64(100 + 50*i), Width: 80, Height: 30}}
	}
	return out
}

func TestLayer_ShowReplacesPreviousLabels(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	surface := &testutil.DummySurface{}
	layer := overlay.NewLayer(surface)

	if err := layer.Show(ctx, anchors("BTN-01", "BTN-02"), vp); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if err := layer.Show(ctx, anchors("LINK-01"), vp); err != nil {
		t.Fatalf("Show: %v", err)
	}

	shown := surface.OnScreen()
	if len(shown) != 1 || shown[0].ID != "LINK-01" {
		t.Fatalf("on screen = %+v", shown)
	}
	if len(layer.Labels()) != 1 {
		t.Errorf("layer tracks %d labels", len(layer.Labels()))
	}
	if surface.Removals != 2 {
		t.Errorf("every Show clears first, removals = %d", surface.Removals)
	}
}

func TestLayer_DisableClears(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	surface := &testutil.DummySurface{}
	layer := overlay.NewLayer(surface)

	_ = layer.Show(ctx, anchors("BTN-01"), vp)
	if err := layer.SetEnabled(ctx, false); err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}
	if len(surface.OnScreen()) != 0 || len(layer.Labels()) != 0 {
		t.Fatal("disabling must remove every label")
	}
	_ = layer.Show(ctx, anchors("BTN-01"), vp)
	if len(surface.OnScreen()) != 0 {
		t.Error("disabled layer must not draw")
	}
}

func TestLayer_DrawFailureLeavesNothingTracked(t *testing.T) {
	t.Parallel()
	surface := &testutil.DummySurface{DrawErr: errors.New("detached")}
	layer := overlay.NewLayer(surface)

	if err := layer.Show(context.Background(), anchors("BTN-01"), vp); err == nil {
		t.Fatal("expected draw error")
	}
	if len(layer.Labels()) != 0 {
		t.Error("failed draw must not be tracked")
	}
}
