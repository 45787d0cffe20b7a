package textgen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"captioner/internal/domain"
)

type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// GeminiGenerator calls generateContent with a JSON response MIME type.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

const (
	geminiDefaultTimeout = 30 * time.Second
	defaultGeminiModel   = "gemini-2.0-flash"
)

func NewGeminiGenerator(ctx context.Context, opts GeminiOptions) (*GeminiGenerator, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: geminiDefaultTimeout}
	}
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"); baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL + "/"}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiGenerator{
		client: client,
		model:  coalesce(opts.Model, defaultGeminiModel),
	}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, req domain.CompletionRequest) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: req.SystemInstruction}}},
		Temperature:       genai.Ptr(float32(req.Temperature)),
		CandidateCount:    1,
		ResponseMIMEType:  "application/json",
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.UserInstruction), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("gemini: no candidates")
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("gemini: empty response")
	}
	return text, nil
}

// Model reports the configured model name.
func (g *GeminiGenerator) Model() string {
	return g.model
}
