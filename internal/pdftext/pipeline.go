// Package pdftext extracts text from PDF documents in tiers: the embedded
// text layer first, then OCR over rasterised pages when the text layer is
// too thin to be real.
package pdftext

import (
	"context"
	"errors"
	"fmt"
	"image"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/raysh454/rawdata/internal/logging"
	"github.com/raysh454/rawdata/internal/model"
	"github.com/raysh454/rawdata/internal/ocr"
)

// Failure messages carried in PDFContent.Error.
const (
	MsgNoLoader     = "PDF text layer library not available. Cannot parse PDF directly."
	MsgNoOCR        = "PDF is image-based (scanned). OCR library not available."
	MsgOCRNoText    = "OCR completed but no text was recognized. The PDF might have poor image quality."
	DirectTruncated = "[... Text truncated - PDF too large ...]"
	OCRTruncated    = "[... Text truncated - too large ...]"
)

var whitespace = regexp.MustCompile(`\s+`)

// ErrUndecodableText is returned by Document.PageText when the page's text
// layer cannot be mapped to characters. The page counts as having no text.
var ErrUndecodableText = errors.New("page text has no unicode mapping")

// MinPrintableRatio is the share of printable runes below which a page's
// text layer is treated as garbage.
const MinPrintableRatio = 0.85

// Document is a parsed PDF. Pages are numbered from 1.
type Document interface {
	PageCount() int
	PageText(page int) ([]string, error)
	RenderPage(page int, scale float64) (image.Image, error)
}

// Loader parses PDF bytes.
type Loader interface {
	Load(data []byte) (Document, error)
}

// Limits bound the work done on one document.
type Limits struct {
	MaxPages    int     `yaml:"max_pages"`
	MaxChars    int     `yaml:"max_chars"`
	MinChars    int     `yaml:"min_chars"`
	OCRMaxPages int     `yaml:"ocr_max_pages"`
	OCRMaxChars int     `yaml:"ocr_max_chars"`
	OCRScale    float64 `yaml:"ocr_scale"`
}

func DefaultLimits() Limits {
	return Limits{
		MaxPages:    50,
		MaxChars:    500000,
		MinChars:    50,
		OCRMaxPages: 10,
		OCRMaxChars: 300000,
		OCRScale:    2,
	}
}

// Stage names reported to a ProgressFunc.
const (
	StageFetch  = "fetch"
	StageDirect = "direct"
	StageOCR    = "ocr"
)

// Progress is reported once per stage start and once per page.
type Progress struct {
	Stage string `json:"stage"`
	Page  int    `json:"page"`
	Total int    `json:"total"`
}

type ProgressFunc func(Progress)

// Pipeline runs the tiers. A nil loader or recognizer is a supported
// configuration and yields the matching failure record.
type Pipeline struct {
	loader Loader
	ocr    ocr.Recognizer
	limits Limits
	logger logging.Logger
}

func NewPipeline(loader Loader, recognizer ocr.Recognizer, limits Limits, logger logging.Logger) *Pipeline {
	return &Pipeline{
		loader: loader,
		ocr:    recognizer,
		limits: limits,
		logger: logger.With(logging.Field{Key: "component", Value: "pdftext"}),
	}
}

// Extract fetches the PDF at url and runs the tiers over it. It never
// returns nil and never panics; every failure becomes a failure record.
func (p *Pipeline) Extract(ctx context.Context, f Fetcher, url string, progress ProgressFunc) (out *model.PDFContent) {
	defer func() {
		if rec := recover(); rec != nil {
			p.logger.Error("pdf pipeline panicked", logging.Field{Key: "url", Value: url}, logging.Field{Key: "error", Value: fmt.Sprint(rec)})
			out = model.NewPDFFailure(fmt.Sprint(rec))
		}
	}()
	if p.loader == nil {
		return model.NewPDFFailure(MsgNoLoader)
	}

	report(progress, Progress{Stage: StageFetch})
	data, err := f.Fetch(ctx, url)
	if err != nil {
		p.logger.Warn("pdf fetch failed", logging.Field{Key: "url", Value: url}, logging.Field{Key: "error", Value: err})
		return model.NewPDFFailure(err.Error())
	}
	return p.process(ctx, data, progress)
}

// ExtractBytes runs the tiers over an in-memory PDF.
func (p *Pipeline) ExtractBytes(ctx context.Context, data []byte, progress ProgressFunc) *model.PDFContent {
	return p.Extract(ctx, BytesFetcher(data), "", progress)
}

func (p *Pipeline) process(ctx context.Context, data []byte, progress ProgressFunc) *model.PDFContent {
	doc, err := p.loader.Load(data)
	if err != nil {
		return model.NewPDFFailure(err.Error())
	}
	total := doc.PageCount()
	p.logger.Debug("pdf loaded", logging.Field{Key: "pages", Value: total}, logging.Field{Key: "bytes", Value: len(data)})

	text, pages, err := p.direct(ctx, doc, total, progress)
	if err != nil {
		return model.NewPDFFailure(err.Error())
	}
	if utf8.RuneCountInString(text) >= p.limits.MinChars {
		return model.NewPDFSuccess(text, model.MethodDirect, pages, total)
	}

	p.logger.Info("pdf text layer too thin, trying ocr", logging.Field{Key: "chars", Value: utf8.RuneCountInString(text)})
	if p.ocr == nil {
		return model.NewPDFFailure(MsgNoOCR)
	}
	text, pages, err = p.recognize(ctx, doc, total, progress)
	if err != nil {
		return model.NewPDFFailure("OCR failed: " + err.Error())
	}
	if utf8.RuneCountInString(text) < p.limits.MinChars {
		return model.NewPDFFailure(MsgOCRNoText)
	}
	return model.NewPDFSuccess(text, model.MethodOCR, pages, total)
}

func (p *Pipeline) direct(ctx context.Context, doc Document, total int, progress ProgressFunc) (string, int, error) {
	last := min(total, p.limits.MaxPages)
	acc := newAccumulator(p.limits.MaxChars, DirectTruncated)
	pages := 0
	for n := 1; n <= last && !acc.full(); n++ {
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}
		report(progress, Progress{Stage: StageDirect, Page: n, Total: last})
		tokens, err := doc.PageText(n)
		if errors.Is(err, ErrUndecodableText) {
			p.logger.Debug("pdf page text undecodable", logging.Field{Key: "page", Value: n})
			pages++
			continue
		}
		if err != nil {
			return "", 0, err
		}
		pages++
		text := NormalizePage(tokens)
		if PrintableRatio(text) < MinPrintableRatio {
			p.logger.Debug("pdf page text is garbage", logging.Field{Key: "page", Value: n})
			continue
		}
		acc.add(fmt.Sprintf("--- Page %d ---", n), text)
	}
	return acc.String(), pages, nil
}

func (p *Pipeline) recognize(ctx context.Context, doc Document, total int, progress ProgressFunc) (string, int, error) {
	last := min(total, p.limits.OCRMaxPages)
	acc := newAccumulator(p.limits.OCRMaxChars, OCRTruncated)
	pages := 0
	for n := 1; n <= last && !acc.full(); n++ {
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}
		report(progress, Progress{Stage: StageOCR, Page: n, Total: last})
		pages++
		img, err := doc.RenderPage(n, p.limits.OCRScale)
		if errors.Is(err, ErrNoRaster) {
			p.logger.Debug("ocr page has no raster", logging.Field{Key: "page", Value: n})
			continue
		}
		if err != nil {
			return "", 0, err
		}
		text, err := p.ocr.Recognize(ctx, img)
		if err != nil {
			return "", 0, err
		}
		acc.add(fmt.Sprintf("--- Page %d (OCR) ---", n), strings.TrimSpace(norm.NFC.String(text)))
	}
	return acc.String(), pages, nil
}

// NormalizePage joins text-layer tokens with spaces, collapses whitespace and
// applies NFC normalisation.
func NormalizePage(tokens []string) string {
	joined := whitespace.ReplaceAllString(strings.Join(tokens, " "), " ")
	return norm.NFC.String(strings.TrimSpace(joined))
}

// PrintableRatio is the share of runes in text that are printable. Private
// use code points, U+FFFD and control characters count against it.
func PrintableRatio(text string) float64 {
	total, printable := 0, 0
	for _, r := range text {
		total++
		switch {
		case r >= 0xE000 && r <= 0xF8FF, r == utf8.RuneError:
		case unicode.IsPrint(r), r == '\n', r == '\r', r == '\t':
			printable++
		}
	}
	if total == 0 {
		return 1
	}
	return float64(printable) / float64(total)
}

// accumulator appends page sections and closes with a single truncation
// marker once the character budget is exceeded.
type accumulator struct {
	b      strings.Builder
	chars  int
	limit  int
	marker string
	closed bool
}

func newAccumulator(limit int, marker string) *accumulator {
	return &accumulator{limit: limit, marker: marker}
}

func (a *accumulator) add(header, text string) {
	if a.closed || text == "" {
		return
	}
	section := "\n\n" + header + "\n\n" + text
	a.b.WriteString(section)
	a.chars += utf8.RuneCountInString(section)
	if a.chars > a.limit {
		a.b.WriteString("\n\n" + a.marker)
		a.closed = true
	}
}

func (a *accumulator) full() bool { return a.closed }

func (a *accumulator) String() string { return strings.TrimSpace(a.b.String()) }

func report(fn ProgressFunc, p Progress) {
	if fn != nil {
		fn(p)
	}
}
