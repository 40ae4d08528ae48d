package pdftext

import (
	"strings"

	"github.com/raysh454/rawdata/internal/dom"
)

// ContentType is the media type of PDF documents.
const ContentType = "application/pdf"

// IsPDFURL reports whether rawURL names a PDF by its extension.
func IsPDFURL(rawURL string) bool {
	u := strings.ToLower(rawURL)
	return strings.HasSuffix(u, ".pdf") || strings.Contains(u, ".pdf?") || strings.Contains(u, ".pdf#")
}

// IsPDFContentType reports whether contentType is application/pdf, ignoring
// parameters.
func IsPDFContentType(contentType string) bool {
	ct, _, _ := strings.Cut(contentType, ";")
	return strings.EqualFold(strings.TrimSpace(ct), ContentType)
}

const embedSelector = `embed[type="application/pdf"]`

// Detect reports whether doc is a PDF or a viewer page embedding one.
func Detect(doc *dom.Document) bool {
	return IsPDFURL(doc.URL()) ||
		IsPDFContentType(doc.ContentType()) ||
		doc.First(embedSelector) != nil
}

// Source returns the address of the PDF bytes: the document itself, or the
// resolved src of the embedded viewer when the document is an HTML page.
func Source(doc *dom.Document) string {
	if IsPDFURL(doc.URL()) || IsPDFContentType(doc.ContentType()) {
		return doc.URL()
	}
	if e := doc.First(embedSelector); e != nil {
		if src := strings.TrimSpace(e.AttrOr("src", "")); src != "" {
			return doc.Resolve(src)
		}
	}
	return doc.URL()
}
