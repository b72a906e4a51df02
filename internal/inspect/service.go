package inspect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/eleven-am/helmet-detector/internal/annotate"
	"github.com/eleven-am/helmet-detector/internal/detection"
	"github.com/eleven-am/helmet-detector/internal/media"
	"github.com/eleven-am/helmet-detector/internal/shared"
	"github.com/eleven-am/helmet-detector/internal/violation"
)

// Service runs the image and video pipelines. It holds no per-request state,
// so one instance serves concurrent requests.
type Service struct {
	detector   detection.Detector
	correlator *violation.Correlator
	labelled   *annotate.Annotator
	boxesOnly  *annotate.Annotator
	notifier   ViolationNotifier
	cfg        Config
	logger     *slog.Logger
}

func NewService(
	detector detection.Detector,
	correlator *violation.Correlator,
	notifier ViolationNotifier,
	cfg Config,
	logger *slog.Logger,
) *Service {
	if cfg.JPEGQuality <= 0 {
		cfg.JPEGQuality = media.DefaultJPEGQuality
	}
	if cfg.FallbackFPS <= 0 {
		cfg.FallbackFPS = media.DefaultFallbackFPS
	}
	if cfg.VideoCodec == "" {
		cfg.VideoCodec = media.DefaultCodec
	}

	boxOpts := annotate.DefaultOptions()
	boxOpts.BoxesOnly = true

	return &Service{
		detector:   detector,
		correlator: correlator,
		labelled:   annotate.New(annotate.DefaultOptions()),
		boxesOnly:  annotate.New(boxOpts),
		notifier:   notifier,
		cfg:        cfg,
		logger:     logger.With("component", "inspect"),
	}
}

// InspectImage decodes an upload, detects, correlates the violation with a
// plate, annotates the frame and returns it as base64 JPEG. Undecodable input
// is rejected before the detector is called.
func (s *Service) InspectImage(ctx context.Context, data []byte) (*ImageResult, error) {
	if len(data) == 0 {
		return nil, shared.ErrMissingInput
	}

	frame, err := media.DecodeImage(data)
	if err != nil {
		return nil, err
	}

	dets, err := s.detector.Detect(ctx, frame)
	if err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}

	// OCR reads the clean frame, so correlation runs before any drawing.
	rec, err := s.correlator.Correlate(ctx, frame, dets)
	if err != nil {
		return nil, fmt.Errorf("correlate: %w", err)
	}

	s.labelled.Annotate(frame, dets)

	encoded, err := media.EncodeJPEGBase64(frame, s.cfg.JPEGQuality)
	if err != nil {
		return nil, err
	}

	if rec.HelmetViolation && rec.HasPlate() && s.notifier != nil {
		s.notifier.Notify(ctx, rec.PlateText, SourceImage)
	}

	s.logger.Debug("image inspected",
		"detections", len(dets),
		"helmet_violation", rec.HelmetViolation,
		"plate_read", rec.HasPlate(),
	)

	return &ImageResult{Image: encoded, Record: rec, Detections: dets}, nil
}

// ProcessVideo annotates every frame of src with boxes only and writes the
// encoded MP4 to dst. Frames keep their order, size and rate. Plates are not
// read on this path. dst is only written once the whole video is encoded.
func (s *Service) ProcessVideo(ctx context.Context, src io.Reader, dst io.Writer) (*VideoStats, error) {
	inPath, err := s.spool(src)
	if err != nil {
		return nil, err
	}
	defer os.Remove(inPath)

	info, err := media.Probe(ctx, inPath, s.cfg.FallbackFPS)
	if err != nil {
		return nil, err
	}

	outFile, err := os.CreateTemp(s.cfg.TempDir, "annotated-*.mp4")
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	outPath := outFile.Name()
	outFile.Close()
	defer os.Remove(outPath)

	frames, err := s.annotateVideo(ctx, inPath, outPath, info)
	if err != nil {
		return nil, err
	}

	out, err := os.Open(outPath)
	if err != nil {
		return nil, fmt.Errorf("open output file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(dst, out); err != nil {
		return nil, fmt.Errorf("write video: %w", err)
	}

	s.logger.Debug("video processed", "frames", frames, "width", info.Width, "height", info.Height, "fps", info.FPS)

	return &VideoStats{Frames: frames, Width: info.Width, Height: info.Height, FPS: info.FPS}, nil
}

func (s *Service) annotateVideo(ctx context.Context, inPath, outPath string, info media.VideoInfo) (int, error) {
	reader, err := media.NewFrameReader(ctx, inPath, info)
	if err != nil {
		return 0, err
	}
	defer reader.Close()

	writer, err := media.NewFrameWriter(ctx, outPath, info, s.cfg.VideoCodec)
	if err != nil {
		return 0, err
	}

	frames := 0
	for {
		frame, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			writer.Abort()
			return frames, err
		}

		dets, err := s.detector.Detect(ctx, frame)
		if err != nil {
			writer.Abort()
			return frames, fmt.Errorf("detect frame %d: %w", frames, err)
		}
		s.boxesOnly.Annotate(frame, dets)

		if err := writer.Write(frame); err != nil {
			writer.Abort()
			return frames, fmt.Errorf("write frame %d: %w", frames, err)
		}
		frames++
	}

	if err := writer.Close(); err != nil {
		return frames, err
	}
	if err := reader.Close(); err != nil {
		return frames, err
	}
	if frames == 0 {
		return 0, fmt.Errorf("%w: video has no frames", shared.ErrInvalidMedia)
	}
	return frames, nil
}

func (s *Service) spool(src io.Reader) (string, error) {
	if src == nil {
		return "", shared.ErrMissingInput
	}

	f, err := os.CreateTemp(s.cfg.TempDir, "upload-*.mp4")
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("save upload: %w", copyErr)
	}
	if n == 0 {
		os.Remove(f.Name())
		return "", shared.ErrMissingInput
	}
	return f.Name(), nil
}
