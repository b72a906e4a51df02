// Package media decodes uploads and moves video frames in and out of ffmpeg.
package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	// Extra formats for image.Decode beyond jpeg/png/gif.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/eleven-am/helmet-detector/internal/shared"
)

const DefaultJPEGQuality = 90

// DecodeImage decodes an uploaded image, applies its EXIF orientation and
// returns an RGBA copy anchored at the origin.
func DecodeImage(data []byte) (*image.RGBA, error) {
	if len(data) == 0 {
		return nil, shared.ErrMissingInput
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidMedia, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: image has no pixels", shared.ErrInvalidMedia)
	}
	return ToRGBA(img), nil
}

func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func EncodeJPEGBase64(img image.Image, quality int) (string, error) {
	data, err := EncodeJPEG(img, quality)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
