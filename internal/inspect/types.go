package inspect

import (
	"context"

	"github.com/eleven-am/helmet-detector/internal/detection"
	"github.com/eleven-am/helmet-detector/internal/violation"
)

const SourceImage = "image"

type Config struct {
	JPEGQuality int
	VideoCodec  string
	FallbackFPS float64
	TempDir     string
}

// ImageResult is the outcome of a single image request.
type ImageResult struct {
	Image      string
	Record     violation.Record
	Detections []detection.Detection
}

type VideoStats struct {
	Frames int
	Width  int
	Height int
	FPS    float64
}

// ViolationNotifier is told about plates read alongside a violation. It must
// not block the caller.
type ViolationNotifier interface {
	Notify(ctx context.Context, plate, source string)
}

type DetectResponse struct {
	Image           string `json:"image" example:"/9j/4AAQSkZJRg..."`
	NumberPlateText string `json:"number_plate_text" example:"KA05MX1234"`
	HelmetViolation bool   `json:"helmet_violation" example:"true"`
	Filename        string `json:"filename,omitempty" example:"bike.jpg"`
}
