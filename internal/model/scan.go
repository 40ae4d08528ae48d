package model

import (
	"encoding/json"
	"time"
)

// Meta identifies the scanned document and the kind of scan.
type Meta struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
	ScanType  string    `json:"scan_type"`
}

// ScanResult is the output of one scan. At most one of Page and PDF is set;
// both are serialised under "content".
type ScanResult struct {
	Meta       Meta
	UIElements []ElementDescriptor
	Page       *ContentSnapshot
	PDF        *PDFContent
	DeepData   *DeepData
}

// IsPDF reports whether the result came from the PDF pipeline.
func (r *ScanResult) IsPDF() bool { return r.PDF != nil }

type scanResultJSON struct {
	Meta       Meta                `json:"meta"`
	UIElements []ElementDescriptor `json:"ui_elements"`
	Content    json.RawMessage     `json:"content"`
	DeepData   *DeepData           `json:"deep_data"`
}

func (r ScanResult) MarshalJSON() ([]byte, error) {
	out := scanResultJSON{
		Meta:       r.Meta,
		UIElements: r.UIElements,
		DeepData:   r.DeepData,
		Content:    json.RawMessage("null"),
	}
	if out.UIElements == nil {
		out.UIElements = []ElementDescriptor{}
	}
	var content any
	switch {
	case r.PDF != nil:
		content = r.PDF
	case r.Page != nil:
		content = r.Page
	}
	if content != nil {
		b, err := json.Marshal(content)
		if err != nil {
			return nil, err
		}
		out.Content = b
	}
	return json.Marshal(out)
}

func (r *ScanResult) UnmarshalJSON(data []byte) error {
	var raw scanResultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = ScanResult{Meta: raw.Meta, UIElements: raw.UIElements, DeepData: raw.DeepData}
	if len(raw.Content) == 0 || string(raw.Content) == "null" {
		return nil
	}
	var probe struct {
		PDF bool `json:"pdf"`
	}
	if err := json.Unmarshal(raw.Content, &probe); err != nil {
		return err
	}
	if probe.PDF {
		r.PDF = &PDFContent{}
		return json.Unmarshal(raw.Content, r.PDF)
	}
	r.Page = &ContentSnapshot{}
	return json.Unmarshal(raw.Content, r.Page)
}

// EncodedSize returns the length of the JSON serialisation of r.
func (r *ScanResult) EncodedSize() (int, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return 0, err
	}
	return len(b), nil
}
