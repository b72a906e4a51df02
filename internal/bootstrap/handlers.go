package bootstrap

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/fx"

	_ "github.com/eleven-am/helmet-detector/docs"
	"github.com/eleven-am/helmet-detector/internal/alert"
	"github.com/eleven-am/helmet-detector/internal/detection"
	"github.com/eleven-am/helmet-detector/internal/inspect"
	"github.com/eleven-am/helmet-detector/internal/violation"
)

type HandlerParams struct {
	fx.In

	InspectHandler *inspect.Handler
	AlertHub       *alert.Hub
}

func RegisterRoutes(e *echo.Echo, params HandlerParams) {
	params.InspectHandler.RegisterRoutes(e)
	params.AlertHub.RegisterRoutes(e)

	e.GET("/swagger/*", echoSwagger.EchoWrapHandler())
}

func ProvideInspectService(
	detector detection.Detector,
	correlator *violation.Correlator,
	dispatcher *alert.Dispatcher,
	cfg *Config,
	logger *slog.Logger,
) *inspect.Service {
	return inspect.NewService(detector, correlator, dispatcher, inspect.Config{
		JPEGQuality: cfg.JPEGQuality,
		VideoCodec:  cfg.VideoCodec,
		FallbackFPS: cfg.VideoFallbackFPS,
		TempDir:     cfg.TempDir,
	}, logger)
}

func ProvideInspectHandler(service *inspect.Service, logger *slog.Logger) *inspect.Handler {
	return inspect.NewHandler(service, logger)
}

var HandlersModule = fx.Options(
	fx.Provide(
		ProvideInspectService,
		ProvideInspectHandler,
	),
	fx.Invoke(RegisterRoutes),
)
