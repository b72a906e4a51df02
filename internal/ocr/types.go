package ocr

import "time"

type Backend string

const (
	BackendRemote      Backend = "remote"
	BackendTesseract   Backend = "tesseract"
	BackendRekognition Backend = "rekognition"
)

type Config struct {
	Backend   Backend
	URL       string
	Timeout   time.Duration
	Languages []string
	AWSRegion string
}

type Fragment struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}
