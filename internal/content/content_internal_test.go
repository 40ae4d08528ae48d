package content

import (
	"strings"
	"testing"

	"github.com/raysh454/rawdata/internal/dom"
	"github.com/raysh454/rawdata/internal/geometry"
	"github.com/raysh454/rawdata/internal/testutil"
)

func TestTables_PanicDropsOnlyThatTable(t *testing.T) {
	t.Parallel()
	vp := geometry.Viewport{Width: 1280, Height: 800}
	d, err := dom.FromHTML("https://news.example/", "text/html", strings.NewReader(`<body>
		<table><tr><th>Coin</th></tr><tr><td>ETH</td></tr></table>
		<table><tr><th>Broken</th></tr><tr><td>boom</td></tr></table>
		<table><tr><th>Chain</th></tr><tr><td>Solana</td></tr></table>
	</body>`), vp)
	if err != nil {
		t.Fatalf("FromHTML: %v", err)
	}

	ex := NewExtractor(DefaultLimits(), &testutil.DummyLogger{})
	plain := ex.cellText
	ex.cellText = func(n *dom.Node) string {
		if text := plain(n); text != "boom" {
			return text
		}
		panic("cell exploded")
	}

	snap := ex.Extract(d, geometry.NewEvaluator(vp))
	if len(snap.Tables) != 2 {
		t.Fatalf("tables = %+v", snap.Tables)
	}
	if snap.Tables[0].Headers[0] != "Coin" || snap.Tables[1].Headers[0] != "Chain" {
		t.Errorf("tables = %+v", snap.Tables)
	}
}
