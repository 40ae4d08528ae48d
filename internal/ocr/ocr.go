// Package ocr recognises text in page rasters.
package ocr

import (
	"context"
	"errors"
	"image"
)

// ErrUnavailable is returned by New when the binary was built without an OCR
// engine or OCR is disabled in the configuration.
var ErrUnavailable = errors.New("ocr engine not available")

// Recognizer turns an image into text.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// Config selects the recognition language.
type Config struct {
	Enabled  bool   `yaml:"enabled"`
	Language string `yaml:"language"`
}

// DefaultConfig enables English recognition.
func DefaultConfig() Config {
	return Config{Enabled: true, Language: "eng"}
}

// Func adapts a function to the Recognizer interface.
type Func func(ctx context.Context, img image.Image) (string, error)

func (f Func) Recognize(ctx context.Context, img image.Image) (string, error) {
	return f(ctx, img)
}
