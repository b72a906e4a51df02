//go:build notesseract

package bootstrap

import (
	"errors"

	"github.com/eleven-am/helmet-detector/internal/ocr"
)

// Builds without libtesseract use -tags notesseract.
func newTesseractRecognizer(ocr.Config) (ocr.Recognizer, error) {
	return nil, errors.New("binary built without tesseract support")
}
