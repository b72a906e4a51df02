//go:build !notesseract

package bootstrap

import (
	"github.com/eleven-am/helmet-detector/internal/ocr"
	"github.com/eleven-am/helmet-detector/internal/ocr/tesseract"
)

func newTesseractRecognizer(cfg ocr.Config) (ocr.Recognizer, error) {
	return tesseract.NewRecognizer(cfg), nil
}
