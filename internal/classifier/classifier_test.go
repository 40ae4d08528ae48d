package classifier_test

import (
	"strings"
	"testing"

	"github.com/raysh454/rawdata/internal/classifier"
	"github.com/raysh454/rawdata/internal/dom"
	"github.com/raysh454/rawdata/internal/geometry"
	"github.com/raysh454/rawdata/internal/ident"
	"github.com/raysh454/rawdata/internal/model"
)

var vp = geometry.Viewport{Width: 1280, Height: 800}

func classify(t *testing.T, markup string) []classifier.Candidate {
	t.Helper()
	d, err := dom.FromHTML("https://shop.example/checkout", "text/html", strings.NewReader(markup), vp)
	if err != nil {
		t.Fatalf("FromHTML: %v", err)
	}
	return classifier.Classify(d, ident.New(), geometry.NewEvaluator(vp))
}

func byID(cs []classifier.Candidate) map[string]model.ElementDescriptor {
	out := map[string]model.ElementDescriptor{}
	for _, c := range cs {
		out[c.Descriptor.ID] = c.Descriptor
	}
	return out
}

// ─── Scenarios ─────────────────────────────────────────────────────────

func TestClassify_QuickScanScenario(t *testing.T) {
	t.Parallel()
	cs := classify(t, `<body>
		<button>Submit</button>
		<input type="text" placeholder="Name" disabled>
	</body>`)

	if len(cs) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(cs))
	}
	btn, in := cs[0].Descriptor, cs[1].Descriptor
	if btn.ID != "BTN-01" || btn.Text != "Submit" || btn.State != model.StateEnabled {
		t.Errorf("button = %+v", btn)
	}
	if in.ID != "INPUT-01" || in.State != model.StateDisabled || in.InputType != "text" || in.Placeholder != "Name" {
		t.Errorf("input = %+v", in)
	}
	if btn.Location != "top-left" {
		t.Errorf("location = %s", btn.Location)
	}
	if cs[0].Node == nil {
		t.Error("candidate must keep its node handle")
	}
}

func TestClassify_NoDoubleClassification(t *testing.T) {
	t.Parallel()
	cs := classify(t, `<body>
		<a href="/pay" role="button">Pay now</a>
		<input type="submit" value="Send">
		<input role="combobox" placeholder="Search">
	</body>`)

	ids := byID(cs)
	if len(cs) != 3 {
		t.Fatalf("expected 3 candidates, got %d: %+v", len(cs), ids)
	}
	if ids["BTN-01"].Text != "Pay now" || ids["BTN-02"].Text != "Send" {
		t.Errorf("buttons = %+v, %+v", ids["BTN-01"], ids["BTN-02"])
	}
	if _, ok := ids["LINK-01"]; ok {
		t.Error("role=button anchor must not be reported twice")
	}
	if _, ok := ids["SELECT-01"]; ok {
		t.Error("combobox input already classified as input")
	}
}

func TestClassify_InvisibleElementsSkipped(t *testing.T) {
	t.Parallel()
	cs := classify(t, `<body>
		<button style="display:none">A</button>
		<button hidden>B</button>
		<button style="opacity: 0">C</button>
		<button data-rd-rect="10,5000,50,20">Far</button>
		<button>Shown</button>
	</body>`)
	if len(cs) != 1 || cs[0].Descriptor.Text != "Shown" || cs[0].Descriptor.ID != "BTN-01" {
		t.Fatalf("unexpected candidates: %+v", classifier.Descriptors(cs))
	}
	eval := geometry.NewEvaluator(vp)
	for _, c := range cs {
		if !eval.Visible(c.Node.Box()) {
			t.Errorf("%s reported but not visible", c.Descriptor.ID)
		}
	}
}

// ─── Links, selects, forms ─────────────────────────────────────────────

func TestClassify_LinkFilters(t *testing.T) {
	t.Parallel()
	cs := classify(t, `<body>
		<a href="/a">x</a>
		<a href="javascript:void(0)">Run script</a>
		<a href="/docs">Docs</a>
		<a href="/img"><img alt="Logo" src="l.png"></a>
	</body>`)

	ids := byID(cs)
	if len(cs) != 2 {
		t.Fatalf("expected 2 links, got %+v", ids)
	}
	if ids["LINK-01"].Href != "https://shop.example/docs" {
		t.Errorf("href = %q", ids["LINK-01"].Href)
	}
	if ids["LINK-02"].Text != "Logo" {
		t.Errorf("alt fallback = %q", ids["LINK-02"].Text)
	}
}

func TestClassify_SelectOptionsCapped(t *testing.T) {
	t.Parallel()
	var b strings.Builder
	b.WriteString(`<body><select aria-label="Country">`)
	for i := 0; i < 12; i++ {
		b.WriteString(`<option value="c">  Country   ` + string(rune('A'+i)) + `</option>`)
	}
	b.WriteString(`</select><div role="listbox" aria-expanded="true">Pick</div></body>`)

	ids := byID(classify(t, b.String()))
	sel := ids["SELECT-01"]
	if len(sel.Options) != 10 || sel.Options[0] != "Country A" {
		t.Errorf("options = %q", sel.Options)
	}
	if sel.Text != "Country" || sel.CurrentValue != "c" {
		t.Errorf("select = %+v", sel)
	}
	lb := ids["SELECT-02"]
	if len(lb.Options) != 0 || lb.State != model.StateExpanded {
		t.Errorf("listbox = %+v", lb)
	}
}

func TestClassify_Forms(t *testing.T) {
	t.Parallel()
	ids := byID(classify(t, `<body>
		<form name="login" action="/session" method="post"><p>Sign in</p></form>
		<form><p>Search</p></form>
	</body>`))

	login := ids["FORM-01"]
	if login.Text != "login" || login.Action != "https://shop.example/session" || login.Method != "POST" {
		t.Errorf("login form = %+v", login)
	}
	anon := ids["FORM-02"]
	if anon.Text != "Form" || anon.Method != "GET" {
		t.Errorf("anonymous form = %+v", anon)
	}
}

// ─── Text and state ────────────────────────────────────────────────────

func TestText_FallbackOrder(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("word ", 30)
	ids := byID(classify(t, `<body>
		<button aria-label="Close" title="ignored">X</button>
		<button title="Help">?</button>
		<button value="from-value">`+long+`</button>
		<button></button>
	</body>`))

	want := map[string]string{"BTN-01": "Close", "BTN-02": "Help", "BTN-03": "from-value", "BTN-04": "Button"}
	for id, text := range want {
		if ids[id].Text != text {
			t.Errorf("%s text = %q, want %q", id, ids[id].Text, text)
		}
	}
}

func TestStateOf_Priority(t *testing.T) {
	t.Parallel()
	ids := byID(classify(t, `<body>
		<input disabled readonly>
		<input readonly checked>
		<input type="checkbox" checked aria-disabled="true">
		<input aria-disabled="true" aria-selected="true">
		<input aria-selected="true" aria-expanded="true">
		<input aria-expanded="true">
		<input>
	</body>`))

	want := []model.State{
		model.StateDisabled, model.StateReadOnly, model.StateChecked, model.StateDisabled,
		model.StateSelected, model.StateExpanded, model.StateEnabled,
	}
	for i, s := range want {
		id := "INPUT-0" + string(rune('1'+i))
		if ids[id].State != s {
			t.Errorf("%s state = %s, want %s", id, ids[id].State, s)
		}
	}
}
