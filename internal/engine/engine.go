// Package engine runs scans: it captures a document, decides between the PDF
// pipeline and DOM extraction, and assembles the ScanResult.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/raysh454/rawdata/internal/classifier"
	"github.com/raysh454/rawdata/internal/content"
	"github.com/raysh454/rawdata/internal/dom"
	"github.com/raysh454/rawdata/internal/geometry"
	"github.com/raysh454/rawdata/internal/ident"
	"github.com/raysh454/rawdata/internal/logging"
	"github.com/raysh454/rawdata/internal/model"
	"github.com/raysh454/rawdata/internal/overlay"
	"github.com/raysh454/rawdata/internal/pdftext"
	"github.com/raysh454/rawdata/internal/sites"
)

// DefaultPDFTitle is used when a PDF document has no title.
const DefaultPDFTitle = "PDF Document"

// Request selects what a scan collects.
type Request struct {
	Mode        model.Mode
	DrawOverlay bool
	// Progress receives PDF pipeline progress. Optional.
	Progress pdftext.ProgressFunc
}

// Scanner scans one document context. At most one scan runs at a time.
type Scanner struct {
	busy sync.Mutex

	target    Target
	pdf       *pdftext.Pipeline
	fetcher   pdftext.Fetcher
	sites     *sites.Registry
	extractor *content.Extractor
	layer     *overlay.Layer
	margin    float64
	degraded  bool
	now       func() time.Time
	logger    logging.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithPDFPipeline sets the pipeline used for PDF documents.
func WithPDFPipeline(p *pdftext.Pipeline) Option { return func(s *Scanner) { s.pdf = p } }

// WithFetcher sets how PDF bytes are fetched when the target cannot serve
// them itself.
func WithFetcher(f pdftext.Fetcher) Option { return func(s *Scanner) { s.fetcher = f } }

// WithSites sets the site-specific scanner registry used by deep scans.
func WithSites(r *sites.Registry) Option { return func(s *Scanner) { s.sites = r } }

// WithContentLimits overrides the content extractor budgets.
func WithContentLimits(l content.Limits) Option {
	return func(s *Scanner) { s.extractor = content.NewExtractor(l, s.logger) }
}

// WithSurface draws overlay labels on surf.
func WithSurface(surf overlay.Surface) Option {
	return func(s *Scanner) { s.layer = overlay.NewLayer(surf) }
}

// WithMargin sets the off-screen tolerance of the visibility evaluator.
func WithMargin(m float64) Option { return func(s *Scanner) { s.margin = m } }

// WithDegradedIDs lets the identifier allocator issue random ids for
// unknown element kinds instead of failing.
func WithDegradedIDs() Option { return func(s *Scanner) { s.degraded = true } }

// WithClock sets the clock stamped into Meta.Timestamp.
func WithClock(now func() time.Time) Option { return func(s *Scanner) { s.now = now } }

// New returns a Scanner for target. When target implements overlay.Surface
// it is used for labels unless WithSurface says otherwise.
func New(target Target, logger logging.Logger, opts ...Option) *Scanner {
	s := &Scanner{
		target: target,
		margin: geometry.DefaultMargin,
		now:    time.Now,
		logger: logger.With(logging.Field{Key: "component", Value: "engine"}),
	}
	s.extractor = content.NewExtractor(content.DefaultLimits(), s.logger)
	if surf, ok := target.(overlay.Surface); ok {
		s.layer = overlay.NewLayer(surf)
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sites == nil {
		s.sites = sites.DefaultRegistry(s.logger)
	}
	if s.fetcher == nil {
		if f, ok := target.(pdftext.Fetcher); ok {
			s.fetcher = f
		}
	}
	return s
}

// Overlay returns the label layer, or nil when the target has no surface.
func (s *Scanner) Overlay() *overlay.Layer { return s.layer }

// session holds the state of one scan invocation.
type session struct {
	ids        *ident.Allocator
	eval       *geometry.Evaluator
	candidates []classifier.Candidate
}

func (s *Scanner) newSession(vp geometry.Viewport) *session {
	var opts []ident.Option
	if s.degraded {
		opts = append(opts, ident.WithDegradedFallback())
	}
	eval := geometry.NewEvaluator(vp)
	eval.Margin = s.margin
	return &session{ids: ident.New(opts...), eval: eval}
}

// Scan captures the target and builds a ScanResult. Overlapping calls fail
// fast with ErrScanInProgress.
func (s *Scanner) Scan(ctx context.Context, req Request) (*model.ScanResult, error) {
	mode, err := model.ParseMode(string(req.Mode))
	if err != nil {
		return nil, err
	}
	if !s.busy.TryLock() {
		return nil, ErrScanInProgress
	}
	defer s.busy.Unlock()

	url := s.target.URL()
	if IsRestricted(url) {
		return nil, fmt.Errorf("%w: %s", ErrRestrictedPage, url)
	}

	started := s.now()
	doc, err := s.capture(ctx)
	if err != nil {
		return nil, fmt.Errorf("capture document: %w", err)
	}

	result := &model.ScanResult{
		Meta: model.Meta{
			URL:       doc.URL(),
			Title:     doc.Title(),
			Timestamp: started.UTC(),
		},
	}

	if pdftext.Detect(doc) {
		s.clearOverlay(ctx)
		result.Meta.ScanType = mode.ScanType(true)
		if result.Meta.Title == "" {
			result.Meta.Title = DefaultPDFTitle
		}
		result.PDF = s.extractPDF(ctx, pdftext.Source(doc), req.Progress)
		s.logger.Info("pdf scanned",
			logging.Field{Key: "url", Value: url},
			logging.Field{Key: "failed", Value: result.PDF.Failed()},
			logging.Field{Key: "chars", Value: result.PDF.CharCount})
		return result, nil
	}

	result.Meta.ScanType = mode.ScanType(false)
	sess := s.newSession(doc.Viewport())
	sess.candidates = classifier.Classify(doc, sess.ids, sess.eval)
	result.UIElements = classifier.Descriptors(sess.candidates)

	if mode.IncludesContent() {
		result.Page = s.extractor.Extract(doc, sess.eval)
	}
	if mode.IncludesDeep() {
		result.DeepData = s.sites.Scan(doc)
	}

	if req.DrawOverlay {
		s.drawOverlay(ctx, sess, doc.Viewport())
	} else {
		s.clearOverlay(ctx)
	}

	s.logger.Info("page scanned",
		logging.Field{Key: "url", Value: url},
		logging.Field{Key: "mode", Value: string(mode)},
		logging.Field{Key: "elements", Value: len(result.UIElements)},
		logging.Field{Key: "elapsed", Value: s.now().Sub(started).String()})
	return result, nil
}

// capture reads the document, re-attaching once if the channel is missing.
func (s *Scanner) capture(ctx context.Context) (*dom.Document, error) {
	doc, err := s.target.Capture(ctx)
	if !errors.Is(err, ErrChannelDetached) {
		return doc, err
	}
	s.logger.Debug("capture channel detached, re-attaching")
	if r, ok := s.target.(Reattacher); ok {
		if rerr := r.Reattach(ctx); rerr != nil {
			return nil, fmt.Errorf("re-attach: %w", rerr)
		}
	}
	return s.target.Capture(ctx)
}

func (s *Scanner) extractPDF(ctx context.Context, url string, progress pdftext.ProgressFunc) *model.PDFContent {
	if s.pdf == nil {
		return model.NewPDFFailure(pdftext.MsgNoLoader)
	}
	fetcher := s.fetcher
	if fetcher == nil {
		return model.NewPDFFailure("no PDF source configured")
	}
	return s.pdf.Extract(ctx, fetcher, url, progress)
}

func (s *Scanner) drawOverlay(ctx context.Context, sess *session, vp geometry.Viewport) {
	if s.layer == nil {
		return
	}
	anchors := make([]overlay.Anchor, 0, len(sess.candidates))
	for _, c := range sess.candidates {
		anchors = append(anchors, overlay.Anchor{ID: c.Descriptor.ID, Type: string(c.Descriptor.Type), Rect: c.Node.Rect()})
	}
	if err := s.layer.Show(ctx, anchors, vp); err != nil {
		s.logger.Warn("overlay draw failed", logging.Field{Key: "error", Value: err})
	}
}

func (s *Scanner) clearOverlay(ctx context.Context) {
	if s.layer == nil {
		return
	}
	if err := s.layer.Clear(ctx); err != nil {
		s.logger.Warn("overlay clear failed", logging.Field{Key: "error", Value: err})
	}
}
