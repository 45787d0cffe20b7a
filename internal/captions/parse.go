package captions

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"captioner/internal/domain"
)

// ErrMalformedReply is returned when a provider reply does not contain a
// captions array of strings.
var ErrMalformedReply = errors.New("malformed caption reply")

var codeFencePattern = regexp.MustCompile("(?i)```(?:json)?")

// ParseCaptions recovers a caption list from raw provider text. It first
// decodes the reply as-is, then retries on the fence-stripped span between
// the first '{' and the last '}'.
func ParseCaptions(raw string) (domain.CaptionSet, error) {
	captions, directErr := decodeCaptions(raw)
	if directErr == nil {
		return captions, nil
	}
	fragment := extractJSONObject(raw)
	if fragment == "" {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReply, directErr)
	}
	captions, err := decodeCaptions(fragment)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	return captions, nil
}

// decodeCaptions requires an object with an exact "captions" key holding an
// array of JSON strings.
func decodeCaptions(text string) (domain.CaptionSet, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, err
	}
	raw, ok := fields["captions"]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, errors.New("captions field missing")
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("captions: %w", err)
	}
	captions := make(domain.CaptionSet, 0, len(entries))
	for i, entry := range entries {
		entry = bytes.TrimSpace(entry)
		if len(entry) == 0 || entry[0] != '"' {
			return nil, fmt.Errorf("captions[%d] is not a string", i)
		}
		var caption string
		if err := json.Unmarshal(entry, &caption); err != nil {
			return nil, fmt.Errorf("captions[%d]: %w", i, err)
		}
		captions = append(captions, caption)
	}
	return captions, nil
}

// extractJSONObject strips code fences and returns the greedy span from the
// first '{' to the last '}'. It assumes a single object per reply.
func extractJSONObject(raw string) string {
	text := strings.TrimSpace(codeFencePattern.ReplaceAllString(raw, ""))
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}
