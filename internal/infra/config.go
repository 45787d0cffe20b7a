package infra

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"

	"captioner/internal/domain"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"development"`
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`

	SessionSecret       string `env:"SESSION_SECRET"`
	SessionEncryptKey   string `env:"SESSION_ENCRYPT_KEY"`
	SessionSecureCookie bool   `env:"SESSION_SECURE_COOKIE"`

	GoogleClientID     string   `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string   `env:"GOOGLE_CLIENT_SECRET"`
	OAuthRedirectURL   string   `env:"OAUTH_REDIRECT_URL" envDefault:"http://localhost:8080/auth/callback"`
	AllowedEmails      []string `env:"ALLOWED_EMAILS" envSeparator:","`
	AllowedDomains     []string `env:"ALLOWED_DOMAINS" envSeparator:","`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	PromptProvider string `env:"PROMPT_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey   string `env:"OPENAI_API_KEY"`
	OpenAIModel    string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIBaseURL  string `env:"OPENAI_BASE_URL"`
	OpenAIOrg      string `env:"OPENAI_ORG"`
	GeminiAPIKey   string `env:"GEMINI_API_KEY"`
	GeminiModel    string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	GeminiBaseURL  string `env:"GEMINI_BASE_URL"`

	UnsplashAccessKey string        `env:"UNSPLASH_ACCESS_KEY"`
	UnsplashBaseURL   string        `env:"UNSPLASH_BASE_URL" envDefault:"https://api.unsplash.com"`
	ImageOrientation  string        `env:"IMAGE_ORIENTATION" envDefault:"squarish"`
	ImagePageSpread   int           `env:"IMAGE_PAGE_SPREAD" envDefault:"1"`
	ImageCacheTTL     time.Duration `env:"IMAGE_CACHE_TTL" envDefault:"24h"`
	ImageTimeout      time.Duration `env:"IMAGE_TIMEOUT" envDefault:"5s"`

	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT" envDefault:"25s"`
	MaxCaptions       int           `env:"MAX_CAPTIONS" envDefault:"10"`

	HTTPReadTimeoutSeconds  int `env:"HTTP_READ_TIMEOUT_SECONDS" envDefault:"15"`
	HTTPWriteTimeoutSeconds int `env:"HTTP_WRITE_TIMEOUT_SECONDS" envDefault:"30"`
	HTTPIdleTimeoutSeconds  int `env:"HTTP_IDLE_TIMEOUT_SECONDS" envDefault:"60"`

	HTTPReadTimeout  time.Duration `env:"-"`
	HTTPWriteTimeout time.Duration `env:"-"`
	HTTPIdleTimeout  time.Duration `env:"-"`
}

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg, err := parseConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadPipelineConfig loads the settings needed to run captions without the
// HTTP surface, so session settings are not required.
func LoadPipelineConfig() (*Config, error) {
	cfg, err := parseConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.validateProvider(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	c.PromptProvider = strings.ToLower(strings.TrimSpace(c.PromptProvider))
	if c.PromptProvider == "" {
		c.PromptProvider = ProviderOpenAI
	}
	c.AllowedEmails = cleanList(c.AllowedEmails, true)
	c.AllowedDomains = cleanList(c.AllowedDomains, true)
	c.CORSAllowedOrigins = cleanList(c.CORSAllowedOrigins, false)
	if c.MaxCaptions <= 0 {
		c.MaxCaptions = domain.DefaultMaxCaptions
	}
	if c.ImagePageSpread < 1 {
		c.ImagePageSpread = 1
	}
	c.HTTPReadTimeout = time.Second * time.Duration(c.HTTPReadTimeoutSeconds)
	c.HTTPWriteTimeout = time.Second * time.Duration(c.HTTPWriteTimeoutSeconds)
	c.HTTPIdleTimeout = time.Second * time.Duration(c.HTTPIdleTimeoutSeconds)
	// The write deadline must leave room for the 504 body after generation times out.
	if c.GenerationTimeout > 0 && c.HTTPWriteTimeout <= c.GenerationTimeout {
		c.HTTPWriteTimeout = c.GenerationTimeout + 5*time.Second
	}
}

// Validate reports the first missing or inconsistent setting.
func (c *Config) Validate() error {
	if len(c.SessionSecret) < 32 {
		return fmt.Errorf("SESSION_SECRET is required and must be at least 32 bytes")
	}
	switch len(c.SessionEncryptKey) {
	case 0, 16, 24, 32:
	default:
		return fmt.Errorf("SESSION_ENCRYPT_KEY must be 16, 24 or 32 bytes")
	}
	return c.validateProvider()
}

func (c *Config) validateProvider() error {
	switch c.PromptProvider {
	case ProviderOpenAI:
		if strings.TrimSpace(c.OpenAIAPIKey) == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when PROMPT_PROVIDER=openai")
		}
	case ProviderGemini:
		if strings.TrimSpace(c.GeminiAPIKey) == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when PROMPT_PROVIDER=gemini")
		}
	default:
		return fmt.Errorf("unsupported PROMPT_PROVIDER %q", c.PromptProvider)
	}
	if c.GenerationTimeout < 0 || c.ImageTimeout < 0 {
		return fmt.Errorf("GENERATION_TIMEOUT and IMAGE_TIMEOUT must not be negative")
	}
	return nil
}

// OAuthEnabled reports whether Google sign-in is configured.
func (c *Config) OAuthEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func cleanList(values []string, lower bool) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if lower {
			v = strings.ToLower(v)
		}
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
