package render

import (
	"bufio"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/raysh454/rawdata/internal/model"
)

// PDF writes the Markdown view of r as a simple A4 document. Headings keep
// their emphasis; everything else is laid out as plain paragraphs.
func PDF(w io.Writer, r *model.ScanResult, scanID string) error {
	return MarkdownPDF(w, Markdown(r, scanID))
}

// MarkdownPDF lays out markdown line by line.
func MarkdownPDF(w io.Writer, markdown string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "", 11)
	pdf.AddPage()

	sc := bufio.NewScanner(strings.NewReader(markdown))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			pdf.Ln(4)
			continue
		}
		if strings.HasPrefix(line, "#") {
			level := len(line) - len(strings.TrimLeft(line, "#"))
			text := strings.TrimSpace(line[level:])
			if text == "" {
				continue
			}
			size := 14.0
			if level >= 2 {
				size = 12.0
			}
			pdf.SetFont("Helvetica", "B", size)
			pdf.CellFormat(0, 8, tr(text), "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 11)
			continue
		}
		pdf.MultiCell(0, 5, tr(strings.ReplaceAll(line, "**", "")), "", "L", false)
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return pdf.Output(w)
}

// TextPDF builds a document with one page per entry of pages. It backs the
// demo fixtures and tests that need a PDF with a real text layer.
func TextPDF(w io.Writer, pages ...string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "", 12)
	for _, p := range pages {
		pdf.AddPage()
		pdf.MultiCell(0, 6, tr(p), "", "L", false)
	}
	return pdf.Output(w)
}
