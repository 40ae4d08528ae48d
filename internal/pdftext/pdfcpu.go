package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// ErrNoRaster is returned by RenderPage for pages without an embedded image.
var ErrNoRaster = errors.New("page has no raster image")

var disableConfigDir sync.Once

// PDFCPULoader parses documents with pdfcpu.
type PDFCPULoader struct{}

func (PDFCPULoader) Load(data []byte) (Document, error) {
	disableConfigDir.Do(api.DisableConfigDir)

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}
	return &pdfcpuDocument{ctx: ctx}, nil
}

type pdfcpuDocument struct {
	ctx *model.Context
}

func (d *pdfcpuDocument) PageCount() int { return d.ctx.PageCount }

func (d *pdfcpuDocument) PageText(page int) ([]string, error) {
	if d.undecodableFonts(page) {
		return nil, ErrUndecodableText
	}
	r, err := pdfcpu.ExtractPageContent(d.ctx, page)
	if err != nil {
		return nil, fmt.Errorf("page %d content: %w", page, err)
	}
	if r == nil {
		return nil, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("page %d content: %w", page, err)
	}
	return ShowText(data), nil
}

// undecodableFonts reports whether every font on the page is a composite
// font with an Identity CMap and no ToUnicode map. Strings shown in such
// fonts are glyph ids, not characters.
func (d *pdfcpuDocument) undecodableFonts(page int) bool {
	_, _, attrs, err := d.ctx.PageDict(page, false)
	if err != nil || attrs == nil || attrs.Resources == nil {
		return false
	}
	obj, ok := attrs.Resources.Find("Font")
	if !ok {
		return false
	}
	fonts, err := d.ctx.DereferenceDict(obj)
	if err != nil || len(fonts) == 0 {
		return false
	}
	for _, ref := range fonts {
		font, err := d.ctx.DereferenceDict(ref)
		if err != nil || !identityWithoutUnicode(font) {
			return false
		}
	}
	return true
}

func identityWithoutUnicode(font types.Dict) bool {
	if font == nil {
		return false
	}
	if _, ok := font.Find("ToUnicode"); ok {
		return false
	}
	if sub := font.NameEntry("Subtype"); sub == nil || *sub != "Type0" {
		return false
	}
	enc := font.NameEntry("Encoding")
	return enc != nil && strings.HasPrefix(*enc, "Identity-")
}

// RenderPage returns the largest image painted on the page, scaled. Scanned
// documents carry one full-page image per page, which is what OCR needs.
func (d *pdfcpuDocument) RenderPage(page int, scale float64) (image.Image, error) {
	imgs, err := pdfcpu.ExtractPageImages(d.ctx, page, false)
	if err != nil {
		return nil, fmt.Errorf("page %d images: %w", page, err)
	}
	var best image.Image
	for _, im := range imgs {
		decoded, err := decodeRaster(im.Reader, im.FileType)
		if err != nil {
			continue
		}
		if best == nil || area(decoded) > area(best) {
			best = decoded
		}
	}
	if best == nil {
		return nil, ErrNoRaster
	}
	return Scale(best, scale), nil
}
