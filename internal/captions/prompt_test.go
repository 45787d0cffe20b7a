package captions

import (
	"strings"
	"testing"

	"captioner/internal/domain"
)

func TestBuildPrompt(t *testing.T) {
	req := domain.GenerationRequest{Topic: "coffee shop", Tone: "playful", Count: 3}
	system, user := BuildPrompt(req)

	if !strings.Contains(system, `{"captions": string[]}`) {
		t.Fatalf("system instruction missing output contract: %q", system)
	}
	for _, want := range []string{"3 short marketing captions", "coffee shop", "playful tone", "exactly 3 strings"} {
		if !strings.Contains(user, want) {
			t.Fatalf("user instruction %q missing %q", user, want)
		}
	}

	system2, user2 := BuildPrompt(req)
	if system != system2 || user != user2 {
		t.Fatal("BuildPrompt is not deterministic")
	}
}

func TestBuildPromptKeepsInputVerbatim(t *testing.T) {
	req := domain.GenerationRequest{Topic: `vegan "street" food`, Tone: "bold & loud", Count: 1}
	_, user := BuildPrompt(req)
	if !strings.Contains(user, `vegan "street" food`) || !strings.Contains(user, "bold & loud") {
		t.Fatalf("user instruction altered input: %q", user)
	}
}
