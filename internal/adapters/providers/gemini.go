package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"pixery/internal/domain"
	"pixery/internal/ports"
)

const geminiAPIBase = "https://generativelanguage.googleapis.com/v1beta/models"

// Gemini generates images through the generateContent endpoint, asking for
// an image response modality. Reference images ride along as inline data
// parts.
type Gemini struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

var _ ports.Generator = (*Gemini)(nil)

// NewGemini creates a generator using the given API key.
func NewGemini(apiKey string) *Gemini {
	return &Gemini{apiKey: apiKey, baseURL: geminiAPIBase, http: httpClient}
}

// resolveGeminiModel maps catalog ids to API model ids.
func resolveGeminiModel(model string) string {
	switch model {
	case "gemini-flash", "flash":
		return "gemini-2.5-flash-image"
	case "gemini-pro", "pro":
		return "gemini-3-pro-image-preview"
	}
	return model
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiRequest struct {
	Contents []struct {
		Parts []geminiPart `json:"parts"`
	} `json:"contents"`
	GenerationConfig struct {
		ResponseModalities []string `json:"responseModalities"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int64 `json:"promptTokenCount"`
		CandidatesTokenCount int64 `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate produces one image and estimates cost from reported token usage.
func (g *Gemini) Generate(ctx context.Context, params domain.GenerateParams) (*domain.GenerationOutput, error) {
	model := resolveGeminiModel(params.Model)

	parts := []geminiPart{{Text: params.Prompt}}
	for _, ref := range params.ReferencePaths {
		b64, err := imageBase64(ref)
		if err != nil {
			return nil, err
		}
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{
			MimeType: mimeType(ref),
			Data:     b64,
		}})
	}

	var req geminiRequest
	req.Contents = append(req.Contents, struct {
		Parts []geminiPart `json:"parts"`
	}{Parts: parts})
	req.GenerationConfig.ResponseModalities = []string{"IMAGE"}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/%s:generateContent?key=%s", g.baseURL, model, g.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := g.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gemini: status %d: %s", resp.StatusCode, text)
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("gemini: failed to parse response: %w", err)
	}
	if out.Error.Message != "" {
		return nil, fmt.Errorf("gemini: %s", out.Error.Message)
	}

	for _, cand := range out.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData == nil {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("gemini: failed to decode image: %w", err)
			}
			return &domain.GenerationOutput{
				ImageData:         data,
				GenerationSeconds: time.Since(start).Seconds(),
				CostUSD: geminiCost(model,
					out.UsageMetadata.PromptTokenCount,
					out.UsageMetadata.CandidatesTokenCount),
			}, nil
		}
	}
	return nil, fmt.Errorf("gemini: no image in response")
}

// geminiCost estimates spend from token usage. Output images bill at the
// image rate; flash input is cheap, pro input is not.
func geminiCost(model string, promptTokens, outputTokens int64) float64 {
	var inputRate, outputRate float64 // USD per million tokens
	switch model {
	case "gemini-2.5-flash-image":
		inputRate, outputRate = 0.15, 30.0
	case "gemini-3-pro-image-preview":
		inputRate, outputRate = 1.25, 120.0
	default:
		return 0
	}
	return (float64(promptTokens)*inputRate + float64(outputTokens)*outputRate) / 1e6
}
