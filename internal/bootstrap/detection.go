package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.uber.org/fx"

	"github.com/eleven-am/helmet-detector/internal/detection"
	"github.com/eleven-am/helmet-detector/internal/health"
	"github.com/eleven-am/helmet-detector/internal/ocr"
	"github.com/eleven-am/helmet-detector/internal/violation"
)

// Recognition carries the configured OCR backend and, for remote backends,
// something health checks can probe.
type Recognition struct {
	Recognizer ocr.Recognizer
	Probe      health.Prober
}

func ProvideDetectionConfig(cfg *Config) detection.Config {
	return detection.Config{
		URL:           cfg.DetectorURL,
		ModelPath:     cfg.YOLOModelPath,
		Timeout:       cfg.DetectorTimeout,
		MinConfidence: cfg.DetectorMinConfidence,
		JPEGQuality:   cfg.JPEGQuality,
	}
}

func ProvideOCRConfig(cfg *Config) ocr.Config {
	return ocr.Config{
		Backend:   ocr.Backend(cfg.OCRBackend),
		URL:       cfg.OCRURL,
		Languages: cfg.OCRLanguages,
		AWSRegion: cfg.AWSRegion,
	}
}

func ProvideDetectorClient(cfg detection.Config, logger *slog.Logger) *detection.Client {
	logger.Info("detector configured", "url", cfg.URL, "model", cfg.ModelPath, "min_confidence", cfg.MinConfidence)
	return detection.NewClient(cfg)
}

func ProvideDetector(client *detection.Client) detection.Detector {
	return client
}

func ProvideRecognition(cfg ocr.Config, logger *slog.Logger) (*Recognition, error) {
	logger.Info("ocr backend configured", "backend", cfg.Backend, "languages", cfg.Languages)

	switch cfg.Backend {
	case ocr.BackendRemote, "":
		client := ocr.NewClient(cfg)
		return &Recognition{Recognizer: client, Probe: client}, nil
	case ocr.BackendTesseract:
		r, err := newTesseractRecognizer(cfg)
		if err != nil {
			return nil, err
		}
		return &Recognition{Recognizer: r}, nil
	case ocr.BackendRekognition:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		r, err := ocr.NewRekognitionRecognizer(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &Recognition{Recognizer: r}, nil
	default:
		return nil, fmt.Errorf("unknown OCR_BACKEND %q", cfg.Backend)
	}
}

func ProvideRecognizer(r *Recognition) ocr.Recognizer {
	return r.Recognizer
}

func ProvideCorrelator(recognizer ocr.Recognizer) *violation.Correlator {
	return violation.NewCorrelator(recognizer)
}

var DetectionModule = fx.Options(
	fx.Provide(
		ProvideDetectionConfig,
		ProvideOCRConfig,
		ProvideDetectorClient,
		ProvideDetector,
		ProvideRecognition,
		ProvideRecognizer,
		ProvideCorrelator,
	),
)
