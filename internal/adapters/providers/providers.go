// Package providers wraps the image generation backends behind
// ports.Generator: OpenAI through the official client, fal.ai, Gemini, and
// a self-hosted SDXL server over plain HTTP.
package providers

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"pixery/internal/domain"
	"pixery/internal/ports"
)

// Config carries the credentials and endpoints for all backends. Empty
// fields disable the corresponding provider.
type Config struct {
	OpenAIKey     string
	FalKey        string
	GeminiKey     string
	SelfHostedURL string
}

// New builds the generator registry keyed by provider name. Providers
// without credentials are left out, so an unconfigured backend fails at
// validation instead of mid-generation.
func New(cfg Config) map[domain.ProviderName]ports.Generator {
	out := make(map[domain.ProviderName]ports.Generator)
	if cfg.OpenAIKey != "" {
		out[domain.ProviderOpenAI] = NewOpenAI(cfg.OpenAIKey)
	}
	if cfg.FalKey != "" {
		out[domain.ProviderFal] = NewFal(cfg.FalKey)
	}
	if cfg.GeminiKey != "" {
		out[domain.ProviderGemini] = NewGemini(cfg.GeminiKey)
	}
	if cfg.SelfHostedURL != "" {
		out[domain.ProviderSelfHosted] = NewSelfHosted(cfg.SelfHostedURL)
	}
	return out
}

// httpClient is shared by the plain-HTTP providers. Generation responses
// can take minutes when a backend loads a model.
var httpClient = &http.Client{Timeout: 5 * time.Minute}

// imageDataURL reads a reference image and encodes it as a data: URL.
func imageDataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read reference image: %w", err)
	}
	return "data:" + mimeType(path) + ";base64," +
		base64.StdEncoding.EncodeToString(data), nil
}

// imageBase64 reads a reference image as raw base64 without the URL prefix.
func imageBase64(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read reference image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func mimeType(path string) string {
	switch filepath.Ext(path) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/png"
	}
}
