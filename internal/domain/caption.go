package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultMaxCaptions bounds how many captions a single request may ask for.
const DefaultMaxCaptions = 10

// GenerationRequest is the validated input of the caption pipeline.
type GenerationRequest struct {
	Topic string
	Tone  string
	Count int
}

// NewGenerationRequest normalizes caller input and validates it. Count is
// clamped to maxCount when maxCount is positive.
func NewGenerationRequest(topic, tone string, count, maxCount int) (GenerationRequest, error) {
	req := GenerationRequest{
		Topic: normalizeField(topic),
		Tone:  normalizeField(tone),
		Count: count,
	}
	if maxCount > 0 && req.Count > maxCount {
		req.Count = maxCount
	}
	if err := req.Validate(); err != nil {
		return GenerationRequest{}, err
	}
	return req, nil
}

// Validate reports ErrInvalidRequest when any field is missing.
func (r GenerationRequest) Validate() error {
	var missing []string
	if r.Topic == "" {
		missing = append(missing, "topic")
	}
	if r.Tone == "" {
		missing = append(missing, "tone")
	}
	if r.Count < 1 {
		missing = append(missing, "count")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}
	return nil
}

func normalizeField(v string) string {
	return strings.TrimSpace(norm.NFC.String(v))
}

// CaptionSet is the ordered list of captions recovered from the text provider.
type CaptionSet []string

// ImageResult is a single photo found for a topic.
type ImageResult struct {
	URL     string
	AltText string
}

// ImageQuery describes one image search. Page is optional; zero means the
// provider default.
type ImageQuery struct {
	Topic string
	Page  int
}

// GeneratedItem is one caption paired with the request's image.
type GeneratedItem struct {
	Caption  string  `json:"caption"`
	ImageURL *string `json:"imageUrl"`
	Alt      string  `json:"alt"`
}

// ResponsePayload is the wire shape returned to callers.
type ResponsePayload struct {
	Results []GeneratedItem `json:"results"`
}

// CompletionRequest is a single call to a text-generation provider.
type CompletionRequest struct {
	SystemInstruction string
	UserInstruction   string
	Temperature       float64
	MaxTokens         int
}

// Identity is the signed-in caller as reported by the session collaborator.
type Identity struct {
	Email string
}
