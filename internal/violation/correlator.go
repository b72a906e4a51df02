package violation

import (
	"context"
	"fmt"
	"image"
	"strings"
	"unicode"

	"github.com/disintegration/imaging"

	"github.com/eleven-am/helmet-detector/internal/detection"
	"github.com/eleven-am/helmet-detector/internal/ocr"
)

// Correlator pairs a without-helmet detection with the number plates that
// follow it in detector emission order. There is no spatial matching: a plate
// emitted before the first without-helmet detection is ignored, and when
// several plates follow, the last one wins.
type Correlator struct {
	recognizer ocr.Recognizer
}

func NewCorrelator(recognizer ocr.Recognizer) *Correlator {
	return &Correlator{recognizer: recognizer}
}

func (c *Correlator) Correlate(ctx context.Context, frame image.Image, dets []detection.Detection) (Record, error) {
	var rec Record

	for _, d := range dets {
		switch d.Class {
		case detection.LabelWithoutHelmet:
			rec.HelmetViolation = true
		case detection.LabelNumberPlate:
			if !rec.HelmetViolation {
				continue
			}
			text, err := c.readPlate(ctx, frame, d.Box)
			if err != nil {
				return Record{}, err
			}
			rec.PlateText = text
		}
	}

	if rec.PlateText == "" {
		rec.PlateText = NoPlateDetected
	}
	return rec, nil
}

func (c *Correlator) readPlate(ctx context.Context, frame image.Image, box detection.Box) (string, error) {
	crop := imaging.Crop(frame, box.Rect())
	if crop.Bounds().Empty() {
		return "", nil
	}

	fragments, err := c.recognizer.Recognize(ctx, crop)
	if err != nil {
		return "", fmt.Errorf("recognize plate: %w", err)
	}
	return stripSpace(strings.Join(fragments, "")), nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
