package detection

import (
	"context"
	"image"
)

// Detector returns detections in the order the model emitted them.
type Detector interface {
	Detect(ctx context.Context, frame image.Image) ([]Detection, error)
}

type Postprocessor func([]Detection) []Detection

func NewScoreFilter(minConfidence float64) Postprocessor {
	return func(in []Detection) []Detection {
		out := make([]Detection, 0, len(in))
		for _, d := range in {
			if d.Confidence >= minConfidence {
				out = append(out, d)
			}
		}
		return out
	}
}
