//go:build !notesseract

// Package tesseract recognises plate text with a local Tesseract install.
// It needs cgo and libtesseract, so only the server binary imports it.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"

	"github.com/eleven-am/helmet-detector/internal/ocr"
	"github.com/eleven-am/helmet-detector/internal/shared"
)

type Recognizer struct {
	clientFactory func() *gosseract.Client
	languages     []string
}

func NewRecognizer(cfg ocr.Config) *Recognizer {
	return &Recognizer{
		clientFactory: gosseract.NewClient,
		languages:     tesseractLanguages(cfg.Languages),
	}
}

// Recognize uses a fresh client per call; gosseract clients are not safe
// for concurrent use.
func (r *Recognizer) Recognize(ctx context.Context, crop image.Image) ([]string, error) {
	if crop == nil || crop.Bounds().Empty() {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, crop); err != nil {
		return nil, fmt.Errorf("encode crop: %w", err)
	}

	c := r.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("%w: set image: %v", shared.ErrModelInvocation, err)
	}
	if len(r.languages) > 0 {
		if err := c.SetLanguage(r.languages...); err != nil {
			return nil, fmt.Errorf("%w: set languages: %v", shared.ErrModelInvocation, err)
		}
	}
	// Single uniform block of text, which is how a cropped plate reads.
	if err := c.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return nil, fmt.Errorf("%w: set page seg mode: %v", shared.ErrModelInvocation, err)
	}

	text, err := c.Text()
	if err != nil {
		return nil, fmt.Errorf("%w: recognize text: %v", shared.ErrModelInvocation, err)
	}
	return ocr.SplitLines(text), nil
}

// EasyOCR language codes are two letters; tesseract wants its own names.
func tesseractLanguages(langs []string) []string {
	out := make([]string, 0, len(langs))
	for _, l := range langs {
		switch l {
		case "en":
			out = append(out, "eng")
		case "hi":
			out = append(out, "hin")
		default:
			out = append(out, l)
		}
	}
	return out
}
