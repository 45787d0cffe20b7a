package captions

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"captioner/internal/domain"
)

type reply struct {
	text string
	err  error
}

// scriptedGenerator returns its replies in order and records every request.
type scriptedGenerator struct {
	mu       sync.Mutex
	replies  []reply
	requests []domain.CompletionRequest
	block    bool
}

func (g *scriptedGenerator) Generate(ctx context.Context, req domain.CompletionRequest) (string, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	idx := len(g.requests) - 1
	g.mu.Unlock()
	if g.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if idx >= len(g.replies) {
		return "", errors.New("no scripted reply")
	}
	return g.replies[idx].text, g.replies[idx].err
}

func (g *scriptedGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

func newTestExtractor(t *testing.T, gen TextGenerator) *Extractor {
	t.Helper()
	ex, err := NewExtractor(ExtractorOptions{Generator: gen})
	require.NoError(t, err)
	return ex
}

func TestExtractFirstAttemptSucceeds(t *testing.T) {
	gen := &scriptedGenerator{replies: []reply{{text: `{"captions":["A","B","C"]}`}}}
	ex := newTestExtractor(t, gen)

	got, err := ex.Extract(context.Background(), "sys", "user", 3)
	require.NoError(t, err)
	assert.Equal(t, domain.CaptionSet{"A", "B", "C"}, got)
	require.Equal(t, 1, gen.calls())

	req := gen.requests[0]
	assert.Equal(t, "sys", req.SystemInstruction)
	assert.Equal(t, "user", req.UserInstruction)
	assert.Equal(t, 0.7, req.Temperature)
	assert.Equal(t, 60+40*3, req.MaxTokens)
}

func TestExtractRecoversFencedReplyWithoutRetry(t *testing.T) {
	gen := &scriptedGenerator{replies: []reply{{text: "```json\n{\"captions\":[\"A\"]}\n```"}}}
	ex := newTestExtractor(t, gen)

	got, err := ex.Extract(context.Background(), "sys", "user", 1)
	require.NoError(t, err)
	assert.Equal(t, domain.CaptionSet{"A"}, got)
	assert.Equal(t, 1, gen.calls())
}

func TestExtractRetriesDeterministicallyAfterGarbage(t *testing.T) {
	gen := &scriptedGenerator{replies: []reply{
		{text: "Sorry, here are some captions: A, B"},
		{text: `{"captions":["X","Y"]}`},
	}}
	ex := newTestExtractor(t, gen)

	got, err := ex.Extract(context.Background(), "sys", "user", 2)
	require.NoError(t, err)
	assert.Equal(t, domain.CaptionSet{"X", "Y"}, got)
	require.Equal(t, 2, gen.calls())

	retry := gen.requests[1]
	assert.Equal(t, 0.0, retry.Temperature)
	assert.Less(t, retry.MaxTokens, gen.requests[0].MaxTokens)
}

func TestExtractRetriesAfterTransportError(t *testing.T) {
	gen := &scriptedGenerator{replies: []reply{
		{err: errors.New("connection reset")},
		{text: `{"captions":["X"]}`},
	}}
	ex := newTestExtractor(t, gen)

	got, err := ex.Extract(context.Background(), "sys", "user", 1)
	require.NoError(t, err)
	assert.Equal(t, domain.CaptionSet{"X"}, got)
}

func TestExtractFailsAfterTwoBadReplies(t *testing.T) {
	gen := &scriptedGenerator{replies: []reply{
		{text: "not json"},
		{text: `{"captions":[1,2,3]}`},
		{text: `{"captions":["never used"]}`},
	}}
	ex := newTestExtractor(t, gen)

	got, err := ex.Extract(context.Background(), "sys", "user", 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrGenerationFailed), "err = %v", err)
	assert.Nil(t, got)
	assert.Equal(t, 2, gen.calls())
}

func TestExtractEmptyListIsSuccess(t *testing.T) {
	gen := &scriptedGenerator{replies: []reply{{text: `{"captions":[]}`}}}
	ex := newTestExtractor(t, gen)

	got, err := ex.Extract(context.Background(), "sys", "user", 3)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 1, gen.calls())
}

func TestExtractDoesNotPadOrTruncate(t *testing.T) {
	gen := &scriptedGenerator{replies: []reply{{text: `{"captions":["A","B","C","D","E"]}`}}}
	ex := newTestExtractor(t, gen)

	got, err := ex.Extract(context.Background(), "sys", "user", 3)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestExtractTimeout(t *testing.T) {
	gen := &scriptedGenerator{block: true}
	ex := newTestExtractor(t, gen)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := ex.Extract(ctx, "sys", "user", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTimeout), "err = %v", err)
	assert.False(t, errors.Is(err, domain.ErrGenerationFailed))
	assert.Equal(t, 1, gen.calls())
}

func TestNewExtractorRequiresGenerator(t *testing.T) {
	_, err := NewExtractor(ExtractorOptions{})
	require.Error(t, err)
}
