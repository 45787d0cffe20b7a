package captions

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"captioner/internal/domain"
)

// ImageFinder looks up one photo for a topic. A nil result means no image;
// implementations never fail the caller.
type ImageFinder interface {
	FindImage(ctx context.Context, query domain.ImageQuery) *domain.ImageResult
}

// ServiceOptions wires the caption pipeline.
type ServiceOptions struct {
	Extractor *Extractor
	Images    ImageFinder
	// Timeout bounds the whole pipeline. Zero disables it.
	Timeout time.Duration
	// ImageTimeout bounds the image lookup. Zero disables it.
	ImageTimeout time.Duration
	// PageSpread picks a random result page in [1, PageSpread] when > 1.
	PageSpread int
	Logger     *zerolog.Logger
}

// Service runs caption extraction and image enrichment for one request.
type Service struct {
	extractor    *Extractor
	images       ImageFinder
	timeout      time.Duration
	imageTimeout time.Duration
	pageSpread   int
	logger       zerolog.Logger
}

// Generation is the raw output of a pipeline run, before assembly.
type Generation struct {
	Captions domain.CaptionSet
	Image    *domain.ImageResult
}

func NewService(opts ServiceOptions) (*Service, error) {
	if opts.Extractor == nil {
		return nil, errors.New("captions: extractor is required")
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Service{
		extractor:    opts.Extractor,
		images:       opts.Images,
		timeout:      opts.Timeout,
		imageTimeout: opts.ImageTimeout,
		pageSpread:   opts.PageSpread,
		logger:       logger,
	}, nil
}

// Generate builds the prompt, then extracts captions and looks up an image
// concurrently. Either all captions are returned or the call fails.
func (s *Service) Generate(ctx context.Context, req domain.GenerationRequest) (*Generation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	system, user := BuildPrompt(req)

	var out Generation
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		captions, err := s.extractor.Extract(gctx, system, user, req.Count)
		if err != nil {
			return err
		}
		out.Captions = captions
		return nil
	})
	if s.images != nil {
		g.Go(func() error {
			out.Image = s.findImage(gctx, req.Topic)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) findImage(ctx context.Context, topic string) *domain.ImageResult {
	if s.imageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.imageTimeout)
		defer cancel()
	}
	query := domain.ImageQuery{Topic: topic}
	if s.pageSpread > 1 {
		query.Page = rand.IntN(s.pageSpread) + 1
	}
	image := s.images.FindImage(ctx, query)
	if image == nil {
		s.logger.Debug().Str("topic", topic).Msg("no image found for topic")
	}
	return image
}
