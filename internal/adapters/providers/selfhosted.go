package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pixery/internal/domain"
	"pixery/internal/ports"
)

// SelfHosted generates images on a local SDXL server. The server exposes
// POST /generate and GET /health; model loading can take minutes, so calls
// use the long shared timeout.
type SelfHosted struct {
	baseURL string
	http    *http.Client
}

var _ ports.Generator = (*SelfHosted)(nil)

// NewSelfHosted creates a generator for the server at url.
func NewSelfHosted(url string) *SelfHosted {
	return &SelfHosted{baseURL: strings.TrimSuffix(url, "/"), http: httpClient}
}

type selfHostedRequest struct {
	Prompt         string `json:"prompt"`
	Model          string `json:"model"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
	Width          int    `json:"width,omitempty"`
	Height         int    `json:"height,omitempty"`
	ReferenceImage string `json:"reference_image,omitempty"`
}

type selfHostedResponse struct {
	Image string `json:"image"`
	Seed  uint64 `json:"seed"`
}

type selfHostedError struct {
	Detail string `json:"detail"`
}

// Health describes the state of the self-hosted server.
type Health struct {
	Status          string   `json:"status"`
	CurrentModel    string   `json:"current_model"`
	AvailableModels []string `json:"available_models"`
	CudaAvailable   bool     `json:"cuda_available"`
	GPUName         string   `json:"gpu_name"`
	VRAMAllocatedGB float64  `json:"vram_allocated_gb"`
}

// Generate runs one SDXL generation on the server.
func (s *SelfHosted) Generate(ctx context.Context, params domain.GenerateParams) (*domain.GenerationOutput, error) {
	req := selfHostedRequest{
		Prompt:         params.Prompt,
		Model:          params.Model,
		NegativePrompt: params.NegativePrompt,
		Width:          params.Width,
		Height:         params.Height,
	}
	if len(params.ReferencePaths) > 0 {
		b64, err := imageBase64(params.ReferencePaths[0])
		if err != nil {
			return nil, err
		}
		req.ReferenceImage = b64
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("selfhosted: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(resp.Body)
		var detail selfHostedError
		if json.Unmarshal(text, &detail) == nil && detail.Detail != "" {
			return nil, fmt.Errorf("selfhosted: %s", detail.Detail)
		}
		return nil, fmt.Errorf("selfhosted: status %d: %s", resp.StatusCode, text)
	}

	var out selfHostedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("selfhosted: failed to parse response: %w", err)
	}
	data, err := base64.StdEncoding.DecodeString(out.Image)
	if err != nil {
		return nil, fmt.Errorf("selfhosted: failed to decode image: %w", err)
	}

	result := &domain.GenerationOutput{
		ImageData:         data,
		GenerationSeconds: time.Since(start).Seconds(),
	}
	if out.Seed != 0 {
		result.Seed = strconv.FormatUint(out.Seed, 10)
	}
	return result, nil
}

// CheckHealth queries the server's health endpoint.
func (s *SelfHosted) CheckHealth(ctx context.Context) (*Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/health", nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("selfhosted: health check failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("selfhosted: health check failed (%d): %s", resp.StatusCode, text)
	}
	var h Health
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return nil, fmt.Errorf("selfhosted: failed to parse health response: %w", err)
	}
	return &h, nil
}
