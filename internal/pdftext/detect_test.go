package pdftext_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"

	"github.com/raysh454/rawdata/internal/dom"
	"github.com/raysh454/rawdata/internal/model"
	"github.com/raysh454/rawdata/internal/pdftext"
	"github.com/raysh454/rawdata/internal/testutil"
)

func TestIsPDFURL(t *testing.T) {
	t.Parallel()
	tests := map[string]bool{
		"https://example.com/paper.pdf":          true,
		"https://example.com/PAPER.PDF":          true,
		"https://example.com/paper.pdf?dl=1":     true,
		"https://example.com/paper.pdf#page=2":   true,
		"https://example.com/paper.pdfx":         false,
		"https://example.com/pdf/viewer":         false,
		"https://example.com/?file=paper.pdf.gz": false,
	}
	for in, want := range tests {
		if got := pdftext.IsPDFURL(in); got != want {
			t.Errorf("IsPDFURL(%q) = %v", in, got)
		}
	}
}

func TestDetect(t *testing.T) {
	t.Parallel()
	mk := func(url, ct, body string) *dom.Document {
		d, err := dom.FromHTML(url, ct, strings.NewReader(body), testutil.Viewport)
		if err != nil {
			t.Fatalf("FromHTML: %v", err)
		}
		return d
	}
	if !pdftext.Detect(mk("https://example.com/view", "application/pdf; charset=binary", "<body></body>")) {
		t.Error("content type should detect")
	}
	if !pdftext.Detect(mk("https://example.com/view", "text/html", `<body><embed type="application/pdf" src="x"></body>`)) {
		t.Error("embed should detect")
	}
	if pdftext.Detect(mk("https://example.com/view", "text/html", `<body><p>hi</p></body>`)) {
		t.Error("plain html must not detect")
	}
}

func TestSource(t *testing.T) {
	t.Parallel()
	tests := []struct {
		url, ct, body, want string
	}{
		{"https://example.com/a.pdf", "application/pdf", "", "https://example.com/a.pdf"},
		{"https://example.com/view/", "text/html", `<embed type="application/pdf" src="../files/b.pdf">`, "https://example.com/files/b.pdf"},
		{"https://example.com/view", "text/html", `<embed type="application/pdf" src="https://cdn.example/c.pdf">`, "https://cdn.example/c.pdf"},
		{"https://example.com/view", "text/html", `<embed type="application/pdf">`, "https://example.com/view"},
	}
	for _, tt := range tests {
		d, err := dom.FromHTML(tt.url, tt.ct, strings.NewReader(tt.body), testutil.Viewport)
		if err != nil {
			t.Fatalf("FromHTML: %v", err)
		}
		if got := pdftext.Source(d); got != tt.want {
			t.Errorf("Source(%s) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

// ─── pdfcpu ────────────────────────────────────────────────────────────

func textPDF(t *testing.T, pages ...string) []byte {
	t.Helper()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	for _, p := range pages {
		pdf.AddPage()
		pdf.MultiCell(0, 6, p, "", "L", false)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("gofpdf: %v", err)
	}
	return buf.Bytes()
}

func TestPDFCPULoader_ReadsTextLayer(t *testing.T) {
	t.Parallel()
	data := textPDF(t, "Quarterly report for the rawdata project.", "Second page mentions revenue growth.")

	p := pdftext.NewPipeline(pdftext.PDFCPULoader{}, nil, pdftext.DefaultLimits(), &testutil.DummyLogger{})
	out := p.ExtractBytes(context.Background(), data, nil)

	if out.Failed() {
		t.Fatalf("extraction failed: %s", out.Error)
	}
	if out.Method != model.MethodDirect || out.TotalPages != 2 {
		t.Errorf("method/total = %s/%d", out.Method, out.TotalPages)
	}
	for _, want := range []string{"--- Page 1 ---", "Quarterly report", "--- Page 2 ---", "revenue growth"} {
		if !strings.Contains(out.Text, want) {
			t.Errorf("text missing %q: %q", want, out.Text)
		}
	}
}

func TestPDFCPULoader_RejectsGarbage(t *testing.T) {
	t.Parallel()
	if _, err := (pdftext.PDFCPULoader{}).Load([]byte("not a pdf")); err == nil {
		t.Fatal("expected error")
	}
}
