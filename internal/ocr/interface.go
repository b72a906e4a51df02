package ocr

import (
	"context"
	"image"
)

// Recognizer reads text from a plate crop. Fragments come back in reading
// order; an empty slice means no text was found.
type Recognizer interface {
	Recognize(ctx context.Context, crop image.Image) ([]string, error)
}
