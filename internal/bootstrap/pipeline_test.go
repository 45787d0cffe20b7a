package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"captioner/internal/infra"
	"captioner/internal/providers/textgen"
)

func TestNewPipelineSelectsProvider(t *testing.T) {
	logger := zerolog.Nop()
	cfg := &infra.Config{
		PromptProvider:    infra.ProviderGemini,
		GeminiAPIKey:      "g-key",
		GeminiModel:       "gemini-2.0-flash",
		ImageCacheTTL:     time.Hour,
		GenerationTimeout: time.Second,
	}
	p, err := NewPipeline(context.Background(), cfg, &logger)
	require.NoError(t, err)
	assert.IsType(t, &textgen.GeminiGenerator{}, p.Generator)
	assert.False(t, p.Images.HasCredentials())
	assert.NotNil(t, p.Service)
}

func TestNewPipelineRejectsMissingKey(t *testing.T) {
	logger := zerolog.Nop()
	_, err := NewPipeline(context.Background(), &infra.Config{PromptProvider: infra.ProviderOpenAI}, &logger)
	require.Error(t, err)
}
