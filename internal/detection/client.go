package detection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"math"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/eleven-am/helmet-detector/internal/shared"
)

const (
	defaultTimeout     = 60 * time.Second
	defaultJPEGQuality = 95
)

// Client talks to the YOLO inference sidecar. The sidecar owns the weights
// and keeps them loaded; the client is stateless and safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	modelPath  string
	quality    int
	postproc   Postprocessor
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	quality := cfg.JPEGQuality
	if quality <= 0 || quality > 100 {
		quality = defaultJPEGQuality
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		modelPath:  cfg.ModelPath,
		quality:    quality,
	}
	if cfg.MinConfidence > 0 {
		c.postproc = NewScoreFilter(cfg.MinConfidence)
	}
	return c
}

type predictResponse struct {
	Detections []rawDetection `json:"detections"`
}

type rawDetection struct {
	Box        []float64 `json:"box"`
	Confidence float64   `json:"confidence"`
	ClassID    int       `json:"class_id"`
}

func (c *Client) Detect(ctx context.Context, frame image.Image) ([]Detection, error) {
	if frame == nil {
		return nil, fmt.Errorf("no frame provided")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("image", "frame.jpg")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if err := jpeg.Encode(part, frame, &jpeg.Options{Quality: c.quality}); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	if c.modelPath != "" {
		if err := writer.WriteField("model", c.modelPath); err != nil {
			return nil, fmt.Errorf("write model field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: detector request: %v", shared.ErrModelInvocation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: detector returned status %d", shared.ErrModelInvocation, resp.StatusCode)
	}

	var result predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode detector response: %v", shared.ErrModelInvocation, err)
	}

	detections := make([]Detection, 0, len(result.Detections))
	for i, raw := range result.Detections {
		det, err := raw.toDetection()
		if err != nil {
			return nil, fmt.Errorf("%w: detection %d: %v", shared.ErrModelInvocation, i, err)
		}
		detections = append(detections, det)
	}

	if c.postproc != nil {
		detections = c.postproc(detections)
	}
	return detections, nil
}

func (r rawDetection) toDetection() (Detection, error) {
	label, err := LabelFromID(r.ClassID)
	if err != nil {
		return Detection{}, err
	}
	if len(r.Box) != 4 {
		return Detection{}, fmt.Errorf("box has %d coordinates, want 4", len(r.Box))
	}
	box := Box{
		X1: int(math.Floor(r.Box[0])),
		Y1: int(math.Floor(r.Box[1])),
		X2: int(math.Ceil(r.Box[2])),
		Y2: int(math.Ceil(r.Box[3])),
	}
	if !box.Valid() {
		return Detection{}, fmt.Errorf("degenerate box %v", r.Box)
	}
	return Detection{Box: box, Confidence: r.Confidence, Class: label}, nil
}

func (c *Client) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
