package textgen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"captioner/internal/domain"
)

func TestGeminiGenerate(t *testing.T) {
	var body map[string]any
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"captions\":[\"A\"]}"}]},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	gen, err := NewGeminiGenerator(context.Background(), GeminiOptions{APIKey: "key", BaseURL: srv.URL, HTTPClient: srv.Client()})
	require.NoError(t, err)
	assert.Equal(t, defaultGeminiModel, gen.Model())

	text, err := gen.Generate(context.Background(), domain.CompletionRequest{
		SystemInstruction: "sys",
		UserInstruction:   "user",
		Temperature:       0.7,
		MaxTokens:         120,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"captions":["A"]}`, text)
	assert.True(t, strings.HasSuffix(path, "models/"+defaultGeminiModel+":generateContent"), path)

	cfg, ok := body["generationConfig"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "application/json", cfg["responseMimeType"])
	assert.EqualValues(t, 120, cfg["maxOutputTokens"])
	require.Contains(t, body, "systemInstruction")
}

func TestGeminiGenerateErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`},
		{name: "no candidates", status: http.StatusOK, body: `{"candidates":[]}`},
		{name: "blank text", status: http.StatusOK, body: `{"candidates":[{"content":{"role":"model","parts":[{"text":"  "}]}}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			gen, err := NewGeminiGenerator(context.Background(), GeminiOptions{APIKey: "key", BaseURL: srv.URL, HTTPClient: srv.Client()})
			require.NoError(t, err)
			_, err = gen.Generate(context.Background(), domain.CompletionRequest{UserInstruction: "u"})
			require.Error(t, err)
		})
	}
}

func TestNewSelectsProvider(t *testing.T) {
	gen, err := New(context.Background(), Options{Provider: "", OpenAI: OpenAIOptions{APIKey: "sk"}})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIGenerator{}, gen)

	gen, err = New(context.Background(), Options{Provider: "Gemini", Gemini: GeminiOptions{APIKey: "k"}})
	require.NoError(t, err)
	assert.IsType(t, &GeminiGenerator{}, gen)

	_, err = New(context.Background(), Options{Provider: "llama"})
	require.Error(t, err)
}
