package pdftext

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

func decodeRaster(r io.Reader, fileType string) (image.Image, error) {
	if r == nil {
		return nil, ErrNoRaster
	}
	switch strings.ToLower(fileType) {
	case "tif", "tiff":
		img, err := tiff.Decode(r)
		if err != nil {
			return nil, fmt.Errorf("decode tiff: %w", err)
		}
		return img, nil
	}
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", fileType, err)
	}
	return img, nil
}

// Scale resizes img by factor with Catmull-Rom resampling into a grayscale
// raster. A factor of 1 or less only converts.
func Scale(img image.Image, factor float64) image.Image {
	b := img.Bounds()
	if factor <= 0 {
		factor = 1
	}
	w := int(math.Round(float64(b.Dx()) * factor))
	h := int(math.Round(float64(b.Dy()) * factor))
	dst := image.NewGray(image.Rect(0, 0, max(w, 1), max(h, 1)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func area(img image.Image) int {
	b := img.Bounds()
	return b.Dx() * b.Dy()
}
