package media

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/eleven-am/helmet-detector/internal/shared"
)

func TestParseRate(t *testing.T) {
	tests := []struct {
		in       string
		expected float64
	}{
		{"25/1", 25},
		{"30000/1001", 30000.0 / 1001.0},
		{"15", 15},
		{"0/0", 0},
		{"", 0},
		{"abc/1", 0},
	}
	for _, tt := range tests {
		if got := parseRate(tt.in); math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("parseRate(%q) = %v, want %v", tt.in, got, tt.expected)
		}
	}
}

func TestParseProbe(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		expected VideoInfo
		wantErr  bool
	}{
		{
			name:     "avg frame rate",
			json:     `{"streams":[{"codec_type":"audio"},{"codec_type":"video","width":640,"height":360,"avg_frame_rate":"25/1","r_frame_rate":"50/1"}]}`,
			expected: VideoInfo{Width: 640, Height: 360, FPS: 25},
		},
		{
			name:     "falls back to r_frame_rate",
			json:     `{"streams":[{"codec_type":"video","width":320,"height":240,"avg_frame_rate":"0/0","r_frame_rate":"12/1"}]}`,
			expected: VideoInfo{Width: 320, Height: 240, FPS: 12},
		},
		{
			name:     "no rate uses fallback",
			json:     `{"streams":[{"codec_type":"video","width":320,"height":240,"avg_frame_rate":"0/0","r_frame_rate":"0/0"}]}`,
			expected: VideoInfo{Width: 320, Height: 240, FPS: DefaultFallbackFPS},
		},
		{
			name:     "display matrix quarter turn swaps dimensions",
			json:     `{"streams":[{"codec_type":"video","width":1920,"height":1080,"avg_frame_rate":"30/1","side_data_list":[{"side_data_type":"Display Matrix","rotation":-90}]}]}`,
			expected: VideoInfo{Width: 1080, Height: 1920, FPS: 30},
		},
		{
			name:     "rotate tag",
			json:     `{"streams":[{"codec_type":"video","width":1920,"height":1080,"avg_frame_rate":"30/1","tags":{"rotate":"270"}}]}`,
			expected: VideoInfo{Width: 1080, Height: 1920, FPS: 30},
		},
		{
			name:     "upside down keeps dimensions",
			json:     `{"streams":[{"codec_type":"video","width":1920,"height":1080,"avg_frame_rate":"30/1","side_data_list":[{"side_data_type":"Display Matrix","rotation":180}]}]}`,
			expected: VideoInfo{Width: 1920, Height: 1080, FPS: 30},
		},
		{name: "no video stream", json: `{"streams":[{"codec_type":"audio"}]}`, wantErr: true},
		{name: "no resolution", json: `{"streams":[{"codec_type":"video","avg_frame_rate":"25/1"}]}`, wantErr: true},
		{name: "garbage", json: `not json`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := parseProbe([]byte(tt.json), 0)
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidMedia) {
					t.Errorf("expected ErrInvalidMedia, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseProbe failed: %v", err)
			}
			if info != tt.expected {
				t.Errorf("expected %+v, got %+v", tt.expected, info)
			}
		})
	}
}

func TestParseProbe_CustomFallback(t *testing.T) {
	info, err := parseProbe([]byte(`{"streams":[{"codec_type":"video","width":2,"height":2}]}`), 7.5)
	if err != nil {
		t.Fatalf("parseProbe failed: %v", err)
	}
	if info.FPS != 7.5 {
		t.Errorf("expected fallback 7.5, got %v", info.FPS)
	}
}

func TestQuarterTurn(t *testing.T) {
	for _, d := range []int{90, -90, 270, -270, 450} {
		if !quarterTurn(d) {
			t.Errorf("expected %d to be a quarter turn", d)
		}
	}
	for _, d := range []int{0, 180, -180, 360} {
		if quarterTurn(d) {
			t.Errorf("expected %d not to be a quarter turn", d)
		}
	}
}

func TestProbeCommand(t *testing.T) {
	cmd := probeCommand(context.Background(), "/tmp/in.mp4")
	if cmd.Cancel == nil {
		t.Error("ffprobe should be bound to the request context")
	}
	if cmd.Args[0] != "ffprobe" || cmd.Args[len(cmd.Args)-1] != "/tmp/in.mp4" {
		t.Errorf("unexpected args %v", cmd.Args)
	}
}

func TestProbe_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Probe(ctx, "/tmp/in.mp4", 0)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, shared.ErrInvalidMedia) {
		t.Error("a cancelled request is not a media error")
	}
}

func requireFFmpeg(t *testing.T) {
	t.Helper()
	if !FFmpegAvailable() {
		t.Skip("ffmpeg not installed in PATH")
	}
}

func solidFrame(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, 255
	}
	return img
}

func TestVideoRoundTrip(t *testing.T) {
	requireFFmpeg(t)

	const (
		width  = 64
		height = 48
		fps    = 10.0
		frames = 6
	)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	shades := make([]uint8, frames)
	for i := range shades {
		shades[i] = uint8(i * 40)
	}

	w, err := NewFrameWriter(ctx, path, VideoInfo{Width: width, Height: height, FPS: fps}, "")
	if err != nil {
		t.Fatalf("NewFrameWriter failed: %v", err)
	}
	for _, s := range shades {
		if err := w.Write(solidFrame(width, height, color.RGBA{R: s, G: s, B: s})); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	info, err := Probe(ctx, path, DefaultFallbackFPS)
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if info.Width != width || info.Height != height {
		t.Errorf("unexpected resolution %dx%d", info.Width, info.Height)
	}
	if math.Abs(info.FPS-fps) > 0.01 {
		t.Errorf("expected %v fps, got %v", fps, info.FPS)
	}

	r, err := NewFrameReader(ctx, path, info)
	if err != nil {
		t.Fatalf("NewFrameReader failed: %v", err)
	}
	defer r.Close()

	var got []uint8
	for {
		frame, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		got = append(got, frame.RGBAAt(width/2, height/2).G)
	}

	if len(got) != frames {
		t.Fatalf("expected %d frames, got %d", frames, len(got))
	}
	for i := range got {
		if diff := int(got[i]) - int(shades[i]); diff > 12 || diff < -12 {
			t.Errorf("frame %d: expected shade near %d, got %d", i, shades[i], got[i])
		}
	}
}

func TestProbe_InvalidFile(t *testing.T) {
	requireFFmpeg(t)

	path := filepath.Join(t.TempDir(), "broken.mp4")
	if err := os.WriteFile(path, []byte("not a video"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Probe(context.Background(), path, 0); !errors.Is(err, shared.ErrInvalidMedia) {
		t.Errorf("expected ErrInvalidMedia, got %v", err)
	}
}

func TestFrameWriter_RejectsWrongSize(t *testing.T) {
	requireFFmpeg(t)

	w, err := NewFrameWriter(context.Background(), filepath.Join(t.TempDir(), "out.mp4"), VideoInfo{Width: 16, Height: 16, FPS: 5}, "")
	if err != nil {
		t.Fatalf("NewFrameWriter failed: %v", err)
	}
	defer w.Abort()

	if err := w.Write(image.NewRGBA(image.Rect(0, 0, 8, 8))); err == nil {
		t.Error("expected size mismatch error")
	}
}
