package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"pixery/internal/domain"
	"pixery/internal/ports"
)

const falAPIBase = "https://queue.fal.run"

// Fal generates images through the fal.ai queue API. The first reference
// image, when present, is passed inline as a data URL.
type Fal struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

var _ ports.Generator = (*Fal)(nil)

// NewFal creates a generator using the given API key.
func NewFal(apiKey string) *Fal {
	return &Fal{apiKey: apiKey, baseURL: falAPIBase, http: httpClient}
}

type falRequest struct {
	Prompt    string `json:"prompt"`
	ImageURL  string `json:"image_url,omitempty"`
	ImageSize string `json:"image_size,omitempty"`
}

type falResponse struct {
	Images []struct {
		URL  string `json:"url"`
		Seed uint64 `json:"seed"`
	} `json:"images"`
	Error string `json:"error"`
}

// Generate submits the prompt and downloads the resulting image.
func (f *Fal) Generate(ctx context.Context, params domain.GenerateParams) (*domain.GenerationOutput, error) {
	req := falRequest{Prompt: params.Prompt, ImageSize: "square_hd"}
	if len(params.ReferencePaths) > 0 {
		url, err := imageDataURL(params.ReferencePaths[0])
		if err != nil {
			return nil, err
		}
		req.ImageURL = url
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		f.baseURL+"/"+params.Model, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Key "+f.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := f.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fal.ai: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fal.ai: status %d: %s", resp.StatusCode, text)
	}

	var out falResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("fal.ai: failed to parse response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("fal.ai: %s", out.Error)
	}
	if len(out.Images) == 0 {
		return nil, fmt.Errorf("fal.ai: no images in response")
	}

	data, err := f.fetchImage(ctx, out.Images[0].URL)
	if err != nil {
		return nil, err
	}

	result := &domain.GenerationOutput{
		ImageData:         data,
		GenerationSeconds: time.Since(start).Seconds(),
	}
	if out.Images[0].Seed != 0 {
		result.Seed = strconv.FormatUint(out.Images[0].Seed, 10)
	}
	return result, nil
}

func (f *Fal) fetchImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fal.ai: failed to fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fal.ai: failed to fetch image: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
