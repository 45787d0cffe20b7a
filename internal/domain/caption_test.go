package domain

import (
	"errors"
	"testing"
)

func TestNewGenerationRequest(t *testing.T) {
	cases := []struct {
		name      string
		topic     string
		tone      string
		count     int
		maxCount  int
		wantErr   bool
		wantCount int
	}{
		{name: "valid", topic: "coffee shop", tone: "playful", count: 3, maxCount: 10, wantCount: 3},
		{name: "missing topic", topic: "", tone: "playful", count: 3, wantErr: true},
		{name: "blank tone", topic: "bakery", tone: "   ", count: 3, wantErr: true},
		{name: "zero count", topic: "bakery", tone: "warm", count: 0, wantErr: true},
		{name: "negative count", topic: "bakery", tone: "warm", count: -2, wantErr: true},
		{name: "clamped", topic: "bakery", tone: "warm", count: 50, maxCount: 10, wantCount: 10},
		{name: "no cap", topic: "bakery", tone: "warm", count: 50, wantCount: 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := NewGenerationRequest(tc.topic, tc.tone, tc.count, tc.maxCount)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidRequest) {
					t.Fatalf("err = %v, want ErrInvalidRequest", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.Count != tc.wantCount {
				t.Fatalf("Count = %d, want %d", req.Count, tc.wantCount)
			}
		})
	}
}

func TestNewGenerationRequestNormalizesInput(t *testing.T) {
	// "cafe" with a combining acute accent composes to a single rune.
	req, err := NewGenerationRequest("  cafe\u0301 ", "calm", 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Topic != "caf\u00e9" {
		t.Fatalf("Topic = %q, want %q", req.Topic, "caf\u00e9")
	}
}
