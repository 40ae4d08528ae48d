package model

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// ExtractionMethod names the tier that produced PDF text.
type ExtractionMethod string

const (
	MethodDirect ExtractionMethod = "direct"
	MethodOCR    ExtractionMethod = "ocr"
)

// PDFFailureNote accompanies every failed PDF extraction.
const PDFFailureNote = "PDF detected but text extraction failed. The PDF might be image-based, protected, or needs more time to load."

// PDFContent is the content of a PDF scan. It is either a success record
// (Error empty) or a failure record; build it with NewPDFSuccess or
// NewPDFFailure.
type PDFContent struct {
	Text           string
	WordCount      int
	CharCount      int
	Method         ExtractionMethod
	PagesExtracted int
	TotalPages     int
	Error          string
	Note           string
}

// NewPDFSuccess builds a success record and computes word and character
// counts from text.
func NewPDFSuccess(text string, method ExtractionMethod, pagesExtracted, totalPages int) *PDFContent {
	return &PDFContent{
		Text:           text,
		WordCount:      len(strings.Fields(text)),
		CharCount:      utf8.RuneCountInString(text),
		Method:         method,
		PagesExtracted: pagesExtracted,
		TotalPages:     totalPages,
	}
}

// NewPDFFailure builds a failure record carrying msg and the advisory note.
func NewPDFFailure(msg string) *PDFContent {
	return &PDFContent{Error: msg, Note: PDFFailureNote}
}

// Failed reports whether this is a failure record.
func (p *PDFContent) Failed() bool { return p.Error != "" }

type pdfSuccessJSON struct {
	PDF              bool             `json:"pdf"`
	Text             string           `json:"text"`
	WordCount        int              `json:"word_count"`
	CharCount        int              `json:"char_count"`
	ExtractionMethod ExtractionMethod `json:"extraction_method"`
	PagesExtracted   *int             `json:"pages_extracted"`
	TotalPages       *int             `json:"total_pages"`
}

type pdfFailureJSON struct {
	PDF   bool   `json:"pdf"`
	Error string `json:"error"`
	Note  string `json:"note"`
}

func (p PDFContent) MarshalJSON() ([]byte, error) {
	if p.Failed() {
		return json.Marshal(pdfFailureJSON{PDF: true, Error: p.Error, Note: p.Note})
	}
	return json.Marshal(pdfSuccessJSON{
		PDF:              true,
		Text:             p.Text,
		WordCount:        p.WordCount,
		CharCount:        p.CharCount,
		ExtractionMethod: p.Method,
		PagesExtracted:   positive(p.PagesExtracted),
		TotalPages:       positive(p.TotalPages),
	})
}

func (p *PDFContent) UnmarshalJSON(data []byte) error {
	var raw struct {
		pdfSuccessJSON
		Error string `json:"error"`
		Note  string `json:"note"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Error != "" {
		*p = PDFContent{Error: raw.Error, Note: raw.Note}
		return nil
	}
	*p = PDFContent{
		Text:      raw.Text,
		WordCount: raw.WordCount,
		CharCount: raw.CharCount,
		Method:    raw.ExtractionMethod,
	}
	if raw.PagesExtracted != nil {
		p.PagesExtracted = *raw.PagesExtracted
	}
	if raw.TotalPages != nil {
		p.TotalPages = *raw.TotalPages
	}
	return nil
}

func positive(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}
