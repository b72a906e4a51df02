package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/eleven-am/helmet-detector/internal/shared"
)

// Client calls an EasyOCR-style sidecar over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	languages  []string
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		languages:  cfg.Languages,
	}
}

type recognizeResponse struct {
	Fragments []Fragment `json:"fragments"`
}

func (c *Client) Recognize(ctx context.Context, crop image.Image) ([]string, error) {
	if crop == nil || crop.Bounds().Empty() {
		return nil, nil
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("image", "plate.png")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if err := png.Encode(part, crop); err != nil {
		return nil, fmt.Errorf("encode crop: %w", err)
	}
	for _, lang := range c.languages {
		if err := writer.WriteField("lang", lang); err != nil {
			return nil, fmt.Errorf("write lang field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/recognize", body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: ocr request: %v", shared.ErrModelInvocation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: ocr returned status %d", shared.ErrModelInvocation, resp.StatusCode)
	}

	var result recognizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode ocr response: %v", shared.ErrModelInvocation, err)
	}

	texts := make([]string, 0, len(result.Fragments))
	for _, f := range result.Fragments {
		texts = append(texts, f.Text)
	}
	return texts, nil
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
