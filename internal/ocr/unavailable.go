//go:build !tesseract

package ocr

// New reports ErrUnavailable; build with -tags tesseract to link libtesseract.
func New(Config) (Recognizer, error) {
	return nil, ErrUnavailable
}
