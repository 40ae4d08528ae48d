package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/raysh454/rawdata/internal/app"
	"github.com/raysh454/rawdata/internal/model"
	"github.com/raysh454/rawdata/internal/pdftext"
	"github.com/raysh454/rawdata/internal/testutil"
)

const checkout = `<html><head><title>Checkout</title></head><body>
	<main>
		<h1>Checkout</h1>
		<p>Total due today is $42.50 including tax.</p>
		<form action="/pay" method="post">
			<button>Submit</button>
		</form>
	</main>
</body></html>`

type fakeChat struct{ reply string }

func (f *fakeChat) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: f.reply}}},
	}, nil
}

func testOptions(t *testing.T, appOpts ...app.ComponentOption) *rootOptions {
	t.Helper()
	cfg := app.DefaultConfig()
	cfg.History.Path = filepath.Join(t.TempDir(), "history.db")
	cfg.OCR.Enabled = false
	cfg.Relay.BaseURL = "https://relay.test"
	return &rootOptions{
		cfg:     cfg,
		logger:  &testutil.DummyLogger{},
		appOpts: append([]app.ComponentOption{app.WithWebClient(&testutil.DummyWebClient{})}, appOpts...),
	}
}

// run executes the command tree once and returns stdout and stderr.
func run(t *testing.T, opts *rootOptions, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd(opts)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// historyID pulls the id out of the "Saved to history as" line.
func historyID(t *testing.T, stderr string) string {
	t.Helper()
	for _, line := range strings.Split(stderr, "\n") {
		if id, ok := strings.CutPrefix(line, "Saved to history as "); ok {
			return strings.TrimSpace(id)
		}
	}
	t.Fatalf("no history id in %q", stderr)
	return ""
}

// ─── Flags ─────────────────────────────────────────────────────────────

func TestScanFlags_ToRequest(t *testing.T) {
	t.Parallel()
	html := writeTemp(t, "page.html", checkout)
	pdf := writeTemp(t, "doc.bin", "%PDF-1.7\n")

	tests := []struct {
		name    string
		flags   scanFlags
		args    []string
		wantCT  string
		wantURL string
		wantErr bool
	}{
		{name: "url only", args: []string{"https://a.test/"}, wantURL: "https://a.test/"},
		{name: "nothing", wantErr: true},
		{name: "html file", flags: scanFlags{file: html}, wantCT: "text/html", wantURL: "file://"},
		{name: "pdf by magic", flags: scanFlags{file: pdf}, wantCT: pdftext.ContentType, wantURL: "file://"},
		{name: "file keeps url", flags: scanFlags{file: html}, args: []string{"https://a.test/saved"}, wantCT: "text/html", wantURL: "https://a.test/saved"},
		{name: "missing file", flags: scanFlags{file: filepath.Join(t.TempDir(), "nope.html")}, wantErr: true},
	}
	for _, tt := range tests {
		req, err := tt.flags.toRequest(tt.args)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%s: expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: %v", tt.name, err)
			continue
		}
		if req.ContentType != tt.wantCT || !strings.HasPrefix(req.URL, tt.wantURL) {
			t.Errorf("%s: request = %+v", tt.name, req)
		}
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]outputFormat{"json": formatJSON, "MD": formatMarkdown, "html": formatHTML} {
		got, err := parseFormat(in)
		if err != nil || got != want {
			t.Errorf("parseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := parseFormat("yaml"); err == nil {
		t.Error("expected error for yaml")
	}
}

// ─── Commands ──────────────────────────────────────────────────────────

func TestRoot_Version(t *testing.T) {
	t.Parallel()
	out, _, err := run(t, testOptions(t), "--version")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.TrimSpace(out) != "rawdata version "+Version {
		t.Errorf("out = %q", out)
	}
}

func TestRoot_LoadsConfigFile(t *testing.T) {
	t.Parallel()
	path := writeTemp(t, "rawdata.yaml", "scan:\n  mode: quick\nlog:\n  level: warn\n")
	opts := &rootOptions{ConfigPath: path, EnvFile: filepath.Join(t.TempDir(), "missing.env"), LogLevel: "debug"}

	if err := opts.load(&bytes.Buffer{}); err != nil {
		t.Fatalf("load: %v", err)
	}
	if opts.cfg.Scan.Mode != model.ModeQuick {
		t.Errorf("mode = %q", opts.cfg.Scan.Mode)
	}
	if opts.cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, flag should win", opts.cfg.Log.Level)
	}
}

func TestScanCmd_FileThenHistory(t *testing.T) {
	t.Parallel()
	opts := testOptions(t)
	page := writeTemp(t, "checkout.html", checkout)

	out, stderr, err := run(t, opts, "scan", "--file", page, "--mode", "quick")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	var result model.ScanResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode scan output: %v (%s)", err, out)
	}
	if result.Meta.Title != "Checkout" || result.Meta.ScanType != "quick" {
		t.Errorf("meta = %+v", result.Meta)
	}
	id := historyID(t, stderr)

	out, _, err = run(t, opts, "history", "list")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	if !strings.Contains(out, id) || !strings.Contains(out, "1 scans") {
		t.Errorf("list = %q", out)
	}

	out, _, err = run(t, opts, "history", "show", id, "--format", "markdown")
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	if !strings.Contains(out, "**Title:** Checkout") {
		t.Errorf("show = %q", out)
	}

	if _, _, err := run(t, opts, "history", "delete", id); err != nil {
		t.Fatalf("history delete: %v", err)
	}
	if _, _, err := run(t, opts, "history", "show", id); err == nil {
		t.Error("show after delete should fail")
	}
}

func TestScanCmd_WritesFiles(t *testing.T) {
	t.Parallel()
	opts := testOptions(t)
	page := writeTemp(t, "checkout.html", checkout)
	dir := t.TempDir()
	mdPath := filepath.Join(dir, "scan.md")
	pdfPath := filepath.Join(dir, "scan.pdf")

	out, _, err := run(t, opts, "scan", "--file", page, "--mode", "full", "--format", "markdown", "-o", mdPath, "--pdf", pdfPath)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if out != "" {
		t.Errorf("stdout should be empty with -o, got %q", out)
	}
	md, err := os.ReadFile(mdPath)
	if err != nil || !strings.Contains(string(md), "Checkout") {
		t.Errorf("markdown file: %v", err)
	}
	pdf, err := os.ReadFile(pdfPath)
	if err != nil || !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("pdf file: %v", err)
	}
}

func TestScanCmd_RejectsBadInput(t *testing.T) {
	t.Parallel()
	opts := testOptions(t)

	if _, _, err := run(t, opts, "scan"); err == nil {
		t.Error("expected error without url")
	}
	if _, _, err := run(t, opts, "scan", "https://a.test/", "--format", "yaml"); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, _, err := run(t, opts, "scan", "https://a.test/", "--mode", "turbo"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestHistoryClear(t *testing.T) {
	t.Parallel()
	opts := testOptions(t)
	page := writeTemp(t, "checkout.html", checkout)
	for range 2 {
		if _, _, err := run(t, opts, "scan", "--file", page, "--mode", "quick"); err != nil {
			t.Fatalf("scan: %v", err)
		}
	}

	out, _, err := run(t, opts, "history", "clear")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if strings.TrimSpace(out) != "Removed 2 scans" {
		t.Errorf("out = %q", out)
	}
}

func TestSummarizeCmd(t *testing.T) {
	t.Parallel()
	opts := testOptions(t, app.WithChatClient(&fakeChat{reply: "A checkout page.\n"}))
	page := writeTemp(t, "checkout.html", checkout)

	_, stderr, err := run(t, opts, "scan", "--file", page, "--mode", "quick")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	id := historyID(t, stderr)

	out, _, err := run(t, opts, "summarize", id, "-q", "What is this?")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if strings.TrimSpace(out) != "A checkout page." {
		t.Errorf("out = %q", out)
	}

	if _, _, err := run(t, opts, "assess", id); err == nil || !strings.Contains(err.Error(), "GitHub") {
		t.Errorf("assess on a plain page: %v", err)
	}
}

func TestHistoryDiff(t *testing.T) {
	t.Parallel()
	opts := testOptions(t)
	before := writeTemp(t, "before.html", checkout)
	after := writeTemp(t, "after.html", strings.Replace(checkout, "<button>Submit</button>", "<button disabled>Submit</button>", 1))

	var ids []string
	for _, page := range []string{before, after} {
		_, stderr, err := run(t, opts, "scan", "--file", page, "https://shop.example/checkout", "--mode", "quick")
		if err != nil {
			t.Fatalf("scan: %v", err)
		}
		ids = append(ids, historyID(t, stderr))
	}

	out, _, err := run(t, opts, "history", "diff", ids[0], ids[1])
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if !strings.Contains(out, "~ [") || !strings.Contains(out, "(disabled)") {
		t.Errorf("diff = %q", out)
	}

	out, _, err = run(t, opts, "history", "diff", ids[0], ids[0], "--json")
	if err != nil {
		t.Fatalf("diff --json: %v", err)
	}
	var d struct {
		URL      string            `json:"url"`
		Elements []json.RawMessage `json:"elements"`
	}
	if err := json.Unmarshal([]byte(out), &d); err != nil {
		t.Fatalf("decode diff: %v (%s)", err, out)
	}
	if d.URL != "https://shop.example/checkout" || len(d.Elements) != 0 {
		t.Errorf("self diff = %q", out)
	}

	other := writeTemp(t, "other.html", checkout)
	_, stderr, err := run(t, opts, "scan", "--file", other, "https://shop.example/cart", "--mode", "quick")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if _, _, err := run(t, opts, "history", "diff", ids[0], historyID(t, stderr)); err == nil {
		t.Error("diff across pages should fail")
	}
}
