package textgen

import (
	"context"
	"fmt"
	"strings"

	"captioner/internal/domain"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Generator is implemented by every text-generation backend.
type Generator interface {
	Generate(ctx context.Context, req domain.CompletionRequest) (string, error)
	Model() string
}

var (
	_ Generator = (*OpenAIGenerator)(nil)
	_ Generator = (*GeminiGenerator)(nil)
)

// Options selects and configures one backend.
type Options struct {
	Provider string
	OpenAI   OpenAIOptions
	Gemini   GeminiOptions
}

// New builds the generator named by opts.Provider.
func New(ctx context.Context, opts Options) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case ProviderOpenAI, "":
		return NewOpenAIGenerator(opts.OpenAI)
	case ProviderGemini:
		return NewGeminiGenerator(ctx, opts.Gemini)
	default:
		return nil, fmt.Errorf("unsupported prompt provider %q", opts.Provider)
	}
}

func coalesce(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return ""
}
