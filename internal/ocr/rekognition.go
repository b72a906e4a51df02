package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/eleven-am/helmet-detector/internal/shared"
)

type textDetectAPI interface {
	DetectText(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error)
}

// RekognitionRecognizer uses AWS Rekognition DetectText. Only LINE results
// are returned; WORD results repeat the same text.
type RekognitionRecognizer struct {
	api textDetectAPI
}

func NewRekognitionRecognizer(ctx context.Context, cfg Config) (*RekognitionRecognizer, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.AWSRegion != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWSRegion))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &RekognitionRecognizer{api: rekognition.NewFromConfig(awsCfg)}, nil
}

func (r *RekognitionRecognizer) Recognize(ctx context.Context, crop image.Image) ([]string, error) {
	if crop == nil || crop.Bounds().Empty() {
		return nil, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, crop); err != nil {
		return nil, fmt.Errorf("encode crop: %w", err)
	}

	out, err := r.api.DetectText(ctx, &rekognition.DetectTextInput{
		Image: &types.Image{Bytes: buf.Bytes()},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: rekognition: %v", shared.ErrModelInvocation, err)
	}

	texts := make([]string, 0, len(out.TextDetections))
	for _, td := range out.TextDetections {
		if td.Type != types.TextTypesLine {
			continue
		}
		if text := aws.ToString(td.DetectedText); text != "" {
			texts = append(texts, text)
		}
	}
	return texts, nil
}
