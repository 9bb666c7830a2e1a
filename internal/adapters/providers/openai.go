package providers

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"pixery/internal/domain"
	"pixery/internal/ports"
)

// OpenAI generates images through the official Images API client.
// Reference images are not supported by the image endpoints and are
// ignored.
type OpenAI struct {
	client openai.Client
}

var _ ports.Generator = (*OpenAI)(nil)

// NewOpenAI creates a generator using the given API key.
func NewOpenAI(apiKey string, opts ...option.RequestOption) *OpenAI {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAI{client: openai.NewClient(opts...)}
}

// Generate produces one image and returns its decoded bytes.
func (o *OpenAI) Generate(ctx context.Context, params domain.GenerateParams) (*domain.GenerationOutput, error) {
	req := openai.ImageGenerateParams{
		Prompt: params.Prompt,
		Model:  openai.ImageModel(params.Model),
		N:      openai.Int(1),
		Size:   openai.ImageGenerateParamsSize1024x1024,
	}
	// DALL-E 3 needs an explicit response format and supports the
	// quality/style knobs; gpt-image-1 always returns base64.
	if params.Model == "dall-e-3" {
		req.ResponseFormat = openai.ImageGenerateParamsResponseFormatB64JSON
		req.Quality = openai.ImageGenerateParamsQualityStandard
		req.Style = openai.ImageGenerateParamsStyleVivid
	}

	start := time.Now()
	resp, err := o.client.Images.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	elapsed := time.Since(start).Seconds()

	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("openai: no image in response")
	}
	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("openai: failed to decode image: %w", err)
	}

	return &domain.GenerationOutput{
		ImageData:         data,
		GenerationSeconds: elapsed,
	}, nil
}
