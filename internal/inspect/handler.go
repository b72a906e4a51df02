package inspect

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eleven-am/helmet-detector/internal/shared"
)

const RootMessage = "Detector is running. POST images to /detect and videos to /process_video"

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With("handler", "inspect"),
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	e.POST("/detect", h.Detect)
	e.POST("/process_video", h.ProcessVideo)
}

// @Summary      Service banner
// @Description  Plain-text message confirming the detector is up
// @Tags         detection
// @Produce      plain
// @Success      200  {string}  string
// @Router       / [get]
func (h *Handler) Root(c echo.Context) error {
	return c.String(http.StatusOK, RootMessage)
}

// @Summary      Detect helmet violations in an image
// @Description  Runs the detector, reads the plate that follows a without-helmet detection and returns the annotated image
// @Tags         detection
// @Accept       multipart/form-data
// @Produce      json
// @Param        image  formData  file  true  "Image to inspect"
// @Success      200  {object}  DetectResponse
// @Failure      400  {object}  shared.APIError
// @Failure      413  {object}  shared.APIError
// @Failure      500  {object}  shared.APIError
// @Router       /detect [post]
func (h *Handler) Detect(c echo.Context) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return uploadError(err, "No image provided")
	}

	file, err := fh.Open()
	if err != nil {
		h.logger.Error("failed to open upload", "error", err)
		return shared.InternalError("upload_failed", "failed to read upload")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("failed to read upload", "error", err)
		return shared.InternalError("upload_failed", "failed to read upload")
	}

	result, err := h.service.InspectImage(c.Request().Context(), data)
	if err != nil {
		return h.mapError(err, "image")
	}

	return c.JSON(http.StatusOK, DetectResponse{
		Image:           result.Image,
		NumberPlateText: result.Record.PlateText,
		HelmetViolation: result.Record.HelmetViolation,
		Filename:        fh.Filename,
	})
}

// @Summary      Annotate a video
// @Description  Draws detection boxes on every frame and returns the re-encoded MP4
// @Tags         detection
// @Accept       multipart/form-data
// @Produce      video/mp4
// @Param        video  formData  file  true  "Video to annotate"
// @Success      200  {file}    binary
// @Failure      400  {object}  shared.APIError
// @Failure      413  {object}  shared.APIError
// @Failure      500  {object}  shared.APIError
// @Router       /process_video [post]
func (h *Handler) ProcessVideo(c echo.Context) error {
	fh, err := c.FormFile("video")
	if err != nil {
		return uploadError(err, "No video provided")
	}

	file, err := fh.Open()
	if err != nil {
		h.logger.Error("failed to open upload", "error", err)
		return shared.InternalError("upload_failed", "failed to read upload")
	}
	defer file.Close()

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "video/mp4")

	stats, err := h.service.ProcessVideo(c.Request().Context(), file, resp)
	if err != nil {
		if resp.Committed {
			h.logger.Error("video stream interrupted", "error", err, "filename", fh.Filename)
			return nil
		}
		resp.Header().Del(echo.HeaderContentType)
		return h.mapError(err, "video")
	}

	h.logger.Info("video processed", "filename", fh.Filename, "frames", stats.Frames)
	return nil
}

// uploadError separates oversized bodies from a missing form field.
func uploadError(err error, missing string) error {
	var he *echo.HTTPError
	var mbe *http.MaxBytesError
	if (errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge) || errors.As(err, &mbe) {
		return shared.RequestTooLarge("upload_too_large", "upload exceeds size limit")
	}
	return shared.BadRequest("missing_input", missing)
}

func (h *Handler) mapError(err error, kind string) error {
	status := shared.StatusFor(err)

	var apiErr *shared.APIError
	switch {
	case errors.Is(err, shared.ErrMissingInput):
		apiErr = shared.NewAPIError("missing_input", "No "+kind+" provided")
	case errors.Is(err, shared.ErrInvalidMedia):
		apiErr = shared.NewAPIError("invalid_media", "Invalid "+kind+" file")
	case errors.Is(err, shared.ErrModelInvocation):
		h.logger.Error("model invocation failed", "error", err, "kind", kind)
		apiErr = shared.NewAPIError("model_invocation_failed", "detection failed").
			WithDetails(map[string]string{"media": kind})
	default:
		h.logger.Error("request failed", "error", err, "kind", kind)
		apiErr = shared.NewAPIError("internal_error", "internal server error")
	}
	return apiErr.ToHTTP(status)
}
