package bootstrap

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/eleven-am/helmet-detector/internal/alert"
	"github.com/eleven-am/helmet-detector/internal/detection"
	"github.com/eleven-am/helmet-detector/internal/health"
	"github.com/eleven-am/helmet-detector/internal/media"
)

const version = "1.0.0"

func ProvideHealthHandler(
	detector *detection.Client,
	recognition *Recognition,
	redis *redis.Client,
	hub *alert.Hub,
) *health.Handler {
	return health.NewHandler(health.Dependencies{
		Detector:    detector,
		OCR:         recognition.Probe,
		Redis:       redis,
		Subscribers: hub,
		FFmpeg:      media.FFmpegAvailable,
	}, version)
}

func RegisterHealthRoutes(e *echo.Echo, h *health.Handler) {
	e.Use(h.Middleware())
	h.RegisterRoutes(e)
}

var HealthModule = fx.Options(
	fx.Provide(ProvideHealthHandler),
	fx.Invoke(RegisterHealthRoutes),
)
