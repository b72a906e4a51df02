package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"golang.org/x/sync/errgroup"

	"github.com/eleven-am/helmet-detector/internal/shared"
)

const (
	DefaultFallbackFPS = 20.0
	DefaultCodec       = "mpeg4"
	probeTimeout       = 30 * time.Second
)

type VideoInfo struct {
	Width  int
	Height int
	FPS    float64
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	AvgFrameRate string `json:"avg_frame_rate"`
	RFrameRate   string `json:"r_frame_rate"`
	Tags         struct {
		Rotate string `json:"rotate"`
	} `json:"tags"`
	SideDataList []struct {
		Rotation *float64 `json:"rotation"`
	} `json:"side_data_list"`
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
}

// rotation returns the display rotation in degrees. Newer ffprobe builds
// report it as display matrix side data, older ones as a rotate tag.
func (s probeStream) rotation() int {
	for _, sd := range s.SideDataList {
		if sd.Rotation != nil {
			return int(math.Round(*sd.Rotation))
		}
	}
	if r, err := strconv.Atoi(strings.TrimSpace(s.Tags.Rotate)); err == nil {
		return r
	}
	return 0
}

// Probe reads resolution and frame rate of the first video stream. A missing
// or zero frame rate falls back to fallbackFPS. The resolution is the
// displayed one: ffmpeg autorotates while decoding, so quarter turns swap
// width and height.
func Probe(ctx context.Context, path string, fallbackFPS float64) (VideoInfo, error) {
	if err := ctx.Err(); err != nil {
		return VideoInfo{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := probeCommand(ctx, path)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return VideoInfo{}, fmt.Errorf("probe video: %w", ctxErr)
		}
		return VideoInfo{}, fmt.Errorf("%w: probe video: %v: %s", shared.ErrInvalidMedia, err, lastLine(&stderr))
	}
	return parseProbe(stdout.Bytes(), fallbackFPS)
}

// probeCommand builds the ffprobe invocation. The process is killed when ctx
// ends so an abandoned upload does not leave ffprobe running.
func probeCommand(ctx context.Context, path string) *exec.Cmd {
	return exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_streams",
		"-of", "json",
		path,
	)
}

func parseProbe(data []byte, fallbackFPS float64) (VideoInfo, error) {
	if fallbackFPS <= 0 {
		fallbackFPS = DefaultFallbackFPS
	}

	var probe probeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return VideoInfo{}, fmt.Errorf("%w: parse probe output: %v", shared.ErrInvalidMedia, err)
	}

	for _, s := range probe.Streams {
		if s.CodecType != "video" {
			continue
		}
		if s.Width <= 0 || s.Height <= 0 {
			return VideoInfo{}, fmt.Errorf("%w: video stream has no resolution", shared.ErrInvalidMedia)
		}
		fps := parseRate(s.AvgFrameRate)
		if fps <= 0 {
			fps = parseRate(s.RFrameRate)
		}
		if fps <= 0 {
			fps = fallbackFPS
		}
		width, height := s.Width, s.Height
		if quarterTurn(s.rotation()) {
			width, height = height, width
		}
		return VideoInfo{Width: width, Height: height, FPS: fps}, nil
	}
	return VideoInfo{}, fmt.Errorf("%w: no video stream", shared.ErrInvalidMedia)
}

func quarterTurn(degrees int) bool {
	d := ((degrees % 360) + 360) % 360
	return d == 90 || d == 270
}

// parseRate understands ffprobe rationals ("30000/1001") and plain numbers.
func parseRate(rate string) float64 {
	num, den, found := strings.Cut(rate, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

func formatRate(fps float64) string {
	return strconv.FormatFloat(fps, 'f', -1, 64)
}

// FFmpegAvailable reports whether the ffmpeg and ffprobe binaries are on PATH.
func FFmpegAvailable() bool {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return false
	}
	_, err := exec.LookPath("ffprobe")
	return err == nil
}

// FrameReader decodes a video file into RGBA frames, one at a time, in
// presentation order. It is consumed once.
type FrameReader struct {
	info   VideoInfo
	pipe   *io.PipeReader
	cancel context.CancelFunc
	group  *errgroup.Group
	stderr *bytes.Buffer
	done   bool
}

func NewFrameReader(ctx context.Context, path string, info VideoInfo) (*FrameReader, error) {
	if info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid frame size %dx%d", shared.ErrInvalidMedia, info.Width, info.Height)
	}

	ctx, cancel := context.WithCancel(ctx)
	pr, pw := io.Pipe()
	stderr := &bytes.Buffer{}

	stream := ffmpeg.Input(path).Output("pipe:", ffmpeg.KwArgs{
		"format":  "rawvideo",
		"pix_fmt": "rgba",
		"vsync":   "passthrough",
	})
	stream.Context = ctx

	g := &errgroup.Group{}
	g.Go(func() error {
		err := stream.WithOutput(pw).WithErrorOutput(stderr).Run()
		if err != nil {
			err = fmt.Errorf("%w: decode video: %v: %s", shared.ErrInvalidMedia, err, lastLine(stderr))
		}
		pw.CloseWithError(err)
		return err
	})

	return &FrameReader{info: info, pipe: pr, cancel: cancel, group: g, stderr: stderr}, nil
}

// Next returns the next frame, or io.EOF once the stream is exhausted.
func (r *FrameReader) Next() (*image.RGBA, error) {
	frame := image.NewRGBA(image.Rect(0, 0, r.info.Width, r.info.Height))
	_, err := io.ReadFull(r.pipe, frame.Pix)
	switch {
	case err == nil:
		return frame, nil
	case errors.Is(err, io.EOF):
		r.done = true
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return nil, fmt.Errorf("%w: truncated frame", shared.ErrInvalidMedia)
	default:
		return nil, err
	}
}

// Close stops the decoder if it is still running and releases the pipe. The
// decoder's exit status only matters once every frame has been read.
func (r *FrameReader) Close() error {
	r.pipe.Close()
	if r.done {
		err := r.group.Wait()
		r.cancel()
		return err
	}
	r.cancel()
	r.group.Wait()
	return nil
}

// FrameWriter encodes RGBA frames into a video file at a fixed size and rate.
type FrameWriter struct {
	info   VideoInfo
	pipe   *io.PipeWriter
	cancel context.CancelFunc
	group  *errgroup.Group
	stderr *bytes.Buffer
	closed bool
}

func NewFrameWriter(ctx context.Context, path string, info VideoInfo, codec string) (*FrameWriter, error) {
	if info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", info.Width, info.Height)
	}
	if info.FPS <= 0 {
		info.FPS = DefaultFallbackFPS
	}
	if codec == "" {
		codec = DefaultCodec
	}

	ctx, cancel := context.WithCancel(ctx)
	pr, pw := io.Pipe()
	stderr := &bytes.Buffer{}

	rate := formatRate(info.FPS)
	stream := ffmpeg.Input("pipe:", ffmpeg.KwArgs{
		"format":    "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", info.Width, info.Height),
		"framerate": rate,
	}).Output(path, ffmpeg.KwArgs{
		"vcodec":   codec,
		"pix_fmt":  "yuv420p",
		"r":        rate,
		"q:v":      "3",
		"movflags": "+faststart",
	}).OverWriteOutput()
	stream.Context = ctx

	g := &errgroup.Group{}
	g.Go(func() error {
		err := stream.WithInput(pr).WithErrorOutput(stderr).Run()
		if err != nil {
			err = fmt.Errorf("encode video: %v: %s", err, lastLine(stderr))
		}
		pr.CloseWithError(err)
		return err
	})

	return &FrameWriter{info: info, pipe: pw, cancel: cancel, group: g, stderr: stderr}, nil
}

func (w *FrameWriter) Write(frame *image.RGBA) error {
	b := frame.Bounds()
	if b.Dx() != w.info.Width || b.Dy() != w.info.Height {
		return fmt.Errorf("frame size %dx%d does not match stream %dx%d", b.Dx(), b.Dy(), w.info.Width, w.info.Height)
	}

	rowLen := b.Dx() * 4
	if frame.Stride == rowLen && b.Min == (image.Point{}) {
		_, err := w.pipe.Write(frame.Pix[:rowLen*b.Dy()])
		return err
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := frame.PixOffset(b.Min.X, y)
		if _, err := w.pipe.Write(frame.Pix[off : off+rowLen]); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes the encoder and waits for the output file to be finalised.
func (w *FrameWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.pipe.Close()
	err := w.group.Wait()
	w.cancel()
	return err
}

// Abort stops the encoder without waiting for a complete file.
func (w *FrameWriter) Abort() {
	if w.closed {
		return
	}
	w.closed = true
	w.cancel()
	w.pipe.CloseWithError(io.ErrClosedPipe)
	w.group.Wait()
}

func lastLine(buf *bytes.Buffer) string {
	s := strings.TrimSpace(buf.String())
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
