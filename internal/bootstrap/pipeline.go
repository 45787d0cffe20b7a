package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"captioner/internal/captions"
	"captioner/internal/infra"
	"captioner/internal/providers/image"
	"captioner/internal/providers/textgen"
)

// Pipeline is the caption service plus the provider it was built with.
type Pipeline struct {
	Service   *captions.Service
	Generator textgen.Generator
	Images    *image.UnsplashClient
}

// NewPipeline constructs the text provider, the image client and the caption
// service from cfg.
func NewPipeline(ctx context.Context, cfg *infra.Config, logger *infra.Logger) (*Pipeline, error) {
	httpClient := &http.Client{Timeout: 30 * time.Second}

	generator, err := textgen.New(ctx, textgen.Options{
		Provider: cfg.PromptProvider,
		OpenAI: textgen.OpenAIOptions{
			APIKey:       cfg.OpenAIAPIKey,
			Model:        cfg.OpenAIModel,
			BaseURL:      cfg.OpenAIBaseURL,
			Organization: cfg.OpenAIOrg,
			HTTPClient:   httpClient,
			OnWarning: func(reason, detail string) {
				logger.Warn().Str("reason", reason).Str("detail", detail).Msg("openai model adjusted")
			},
		},
		Gemini: textgen.GeminiOptions{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.GeminiModel,
			BaseURL:    cfg.GeminiBaseURL,
			HTTPClient: httpClient,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("configure text provider: %w", err)
	}

	images := image.NewUnsplashClient(image.UnsplashOptions{
		AccessKey:   cfg.UnsplashAccessKey,
		BaseURL:     cfg.UnsplashBaseURL,
		Orientation: cfg.ImageOrientation,
		CacheTTL:    cfg.ImageCacheTTL,
		HTTPClient:  &http.Client{Timeout: 10 * time.Second},
		Logger:      logger,
	})
	if !images.HasCredentials() {
		logger.Warn().Msg("UNSPLASH_ACCESS_KEY not set, captions will be returned without images")
	}

	extractor, err := captions.NewExtractor(captions.ExtractorOptions{
		Generator: generator,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}
	svc, err := captions.NewService(captions.ServiceOptions{
		Extractor:    extractor,
		Images:       images,
		Timeout:      cfg.GenerationTimeout,
		ImageTimeout: cfg.ImageTimeout,
		PageSpread:   cfg.ImagePageSpread,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}
	logger.Info().
		Str("provider", cfg.PromptProvider).
		Str("model", generator.Model()).
		Msg("caption pipeline ready")
	return &Pipeline{Service: svc, Generator: generator, Images: images}, nil
}
