package scandiff_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/raysh454/rawdata/internal/model"
	"github.com/raysh454/rawdata/internal/scandiff"
)

func scan(ts time.Time, mainText string, elements ...model.ElementDescriptor) *model.ScanResult {
	return &model.ScanResult{
		Meta:       model.Meta{URL: "https://shop.example/checkout", Title: "Checkout", Timestamp: ts, ScanType: "full"},
		UIElements: elements,
		Page:       &model.ContentSnapshot{MainText: mainText},
	}
}

var (
	pay    = model.ElementDescriptor{ID: "BTN-01", Type: model.TypeButton, Text: "Pay", State: model.StateEnabled}
	name   = model.ElementDescriptor{ID: "INPUT-01", Type: model.TypeInput, Placeholder: "Name", State: model.StateEnabled}
	retry  = model.ElementDescriptor{ID: "BTN-02", Type: model.TypeButton, Text: "Try another card", State: model.StateEnabled}
	t0     = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	t1     = t0.Add(time.Hour)
	before = "Total due today is $42.50."
)

func compare(t *testing.T, base, head *model.ScanResult) *scandiff.Diff {
	t.Helper()
	d, err := scandiff.Compare("a", base, "b", head)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	return d
}

func TestCompare_SamePageIsEmpty(t *testing.T) {
	t.Parallel()
	d := compare(t, scan(t0, before, pay, name), scan(t1, before, pay, name))
	if !d.Empty() {
		t.Fatalf("diff = %+v", d)
	}
	if d.URL != "https://shop.example/checkout" || d.BaseID != "a" || d.HeadID != "b" {
		t.Errorf("diff header = %+v", d)
	}
	if d.Text() != "No changes.\n" {
		t.Errorf("text = %q", d.Text())
	}
}

func TestCompare_ElementChanges(t *testing.T) {
	t.Parallel()
	disabled := pay
	disabled.State = model.StateDisabled

	d := compare(t, scan(t0, before, pay, name), scan(t1, before, disabled, retry))

	got := map[string]scandiff.ChangeKind{}
	for _, c := range d.Elements {
		got[c.ID] = c.Kind
	}
	want := map[string]scandiff.ChangeKind{"BTN-01": scandiff.Changed, "BTN-02": scandiff.Added, "INPUT-01": scandiff.Removed}
	for id, kind := range want {
		if got[id] != kind {
			t.Errorf("%s = %q, want %q", id, got[id], kind)
		}
	}
	if len(d.Elements) != 3 {
		t.Errorf("changes = %d", len(d.Elements))
	}

	text := d.Text()
	for _, line := range []string{
		`~ [BTN-01] button "Pay" -> [BTN-01] button "Pay" (disabled)`,
		`+ [BTN-02] button "Try another card"`,
		`- [INPUT-01] input ""`,
	} {
		if !strings.Contains(text, line) {
			t.Errorf("text missing %q:\n%s", line, text)
		}
	}
}

func TestCompare_ContentChunks(t *testing.T) {
	t.Parallel()
	d := compare(t, scan(t0, before), scan(t1, "Your card was declined."))

	var added, removed bool
	for _, c := range d.Chunks {
		switch {
		case c.Kind == scandiff.Added && strings.Contains(c.Content, "declined"):
			added = true
		case c.Kind == scandiff.Removed && strings.Contains(c.Content, "$42.50"):
			removed = true
		}
	}
	if !added || !removed {
		t.Errorf("chunks = %+v", d.Chunks)
	}
	if len(d.Elements) != 0 {
		t.Errorf("elements = %+v", d.Elements)
	}
}

func TestCompare_URLNoiseIsTheSamePage(t *testing.T) {
	t.Parallel()
	head := scan(t1, before, pay)
	head.Meta.URL = "https://SHOP.example/checkout/?utm_source=mail"
	if d := compare(t, scan(t0, before, pay), head); !d.Empty() {
		t.Errorf("diff = %+v", d)
	}
}

func TestCompare_RejectsDifferentPages(t *testing.T) {
	t.Parallel()
	other := scan(t1, before, pay)
	other.Meta.URL = "https://shop.example/cart"
	if _, err := scandiff.Compare("a", scan(t0, before, pay), "b", other); !errors.Is(err, scandiff.ErrDifferentPages) {
		t.Errorf("err = %v", err)
	}
}
