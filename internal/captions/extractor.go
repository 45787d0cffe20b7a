package captions

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"captioner/internal/domain"
)

// TextGenerator sends one constrained-JSON completion request and returns the
// raw reply text.
type TextGenerator interface {
	Generate(ctx context.Context, req domain.CompletionRequest) (string, error)
}

// Attempt configures one provider call of the extraction loop.
type Attempt struct {
	Temperature      float64
	TokensPerCaption int
	BaseTokens       int
}

func (a Attempt) tokenBudget(count int) int {
	return a.BaseTokens + a.TokensPerCaption*count
}

// DefaultAttempts is a sampled first call followed by one deterministic retry
// with a smaller budget.
var DefaultAttempts = []Attempt{
	{Temperature: 0.7, TokensPerCaption: 40, BaseTokens: 60},
	{Temperature: 0, TokensPerCaption: 30, BaseTokens: 40},
}

const rawSnippetLimit = 200

// ExtractorOptions configures an Extractor.
type ExtractorOptions struct {
	Generator TextGenerator
	Attempts  []Attempt
	Logger    *zerolog.Logger
}

// Extractor turns prompts into a CaptionSet, recovering from noisy replies
// and retrying sequentially.
type Extractor struct {
	generator TextGenerator
	attempts  []Attempt
	logger    zerolog.Logger
}

func NewExtractor(opts ExtractorOptions) (*Extractor, error) {
	if opts.Generator == nil {
		return nil, errors.New("captions: text generator is required")
	}
	attempts := opts.Attempts
	if len(attempts) == 0 {
		attempts = DefaultAttempts
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Extractor{
		generator: opts.Generator,
		attempts:  attempts,
		logger:    logger,
	}, nil
}

// Extract calls the provider until a caption list is recovered or the
// attempts run out. It fails with domain.ErrGenerationFailed, or
// domain.ErrTimeout when ctx expires first.
func (e *Extractor) Extract(ctx context.Context, system, user string, count int) (domain.CaptionSet, error) {
	var lastErr error
	for i, attempt := range e.attempts {
		if err := ctx.Err(); err != nil {
			return nil, contextError(err)
		}
		log := e.logger.With().Int("attempt", i+1).Float64("temperature", attempt.Temperature).Logger()
		raw, err := e.generator.Generate(ctx, domain.CompletionRequest{
			SystemInstruction: system,
			UserInstruction:   user,
			Temperature:       attempt.Temperature,
			MaxTokens:         attempt.tokenBudget(count),
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, contextError(ctxErr)
			}
			log.Warn().Err(err).Msg("text provider call failed")
			lastErr = err
			continue
		}
		captions, err := ParseCaptions(raw)
		if err != nil {
			log.Warn().Err(err).Str("reply", snippet(raw)).Msg("caption reply unparsable")
			lastErr = err
			continue
		}
		if len(captions) != count {
			log.Debug().Int("want", count).Int("got", len(captions)).Msg("caption count differs from request")
		}
		return captions, nil
	}
	return nil, fmt.Errorf("%w after %d attempts: %v", domain.ErrGenerationFailed, len(e.attempts), lastErr)
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
}

func snippet(raw string) string {
	r := []rune(raw)
	if len(r) <= rawSnippetLimit {
		return raw
	}
	return string(r[:rawSnippetLimit]) + "…"
}
