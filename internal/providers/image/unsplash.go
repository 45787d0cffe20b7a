package image

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"captioner/internal/domain"
)

const (
	defaultUnsplashBaseURL = "https://api.unsplash.com"
	defaultCacheTTL        = 24 * time.Hour
	defaultRequestTimeout  = 10 * time.Second
)

// UnsplashOptions configures the stock photo search client.
type UnsplashOptions struct {
	AccessKey   string
	BaseURL     string
	Orientation string
	CacheTTL    time.Duration
	HTTPClient  *http.Client
	Logger      *zerolog.Logger
}

// UnsplashClient finds one representative photo per topic. Lookups never fail
// the caller: any problem is logged and reported as no image.
type UnsplashClient struct {
	accessKey   string
	baseURL     string
	orientation string
	httpClient  *http.Client
	cache       *gocache.Cache
	logger      *zerolog.Logger
}

type searchResponse struct {
	Total   int           `json:"total"`
	Results []searchPhoto `json:"results"`
}

type searchPhoto struct {
	ID             string `json:"id"`
	Description    string `json:"description"`
	AltDescription string `json:"alt_description"`
	URLs           struct {
		Raw     string `json:"raw"`
		Full    string `json:"full"`
		Regular string `json:"regular"`
		Small   string `json:"small"`
		Thumb   string `json:"thumb"`
	} `json:"urls"`
}

type errorResponse struct {
	Errors []string `json:"errors"`
}

// cachedLookup lets a "no results" answer be cached next to real hits.
type cachedLookup struct {
	image *domain.ImageResult
}

func NewUnsplashClient(opts UnsplashOptions) *UnsplashClient {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultUnsplashBaseURL
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &UnsplashClient{
		accessKey:   strings.TrimSpace(opts.AccessKey),
		baseURL:     baseURL,
		orientation: normalizeOrientation(opts.Orientation),
		httpClient:  httpClient,
		cache:       gocache.New(ttl, ttl/2),
		logger:      logger,
	}
}

// HasCredentials reports whether the client can perform remote calls.
func (c *UnsplashClient) HasCredentials() bool {
	return c != nil && c.accessKey != ""
}

// FindImage returns the first matching photo, or nil when none is available.
func (c *UnsplashClient) FindImage(ctx context.Context, query domain.ImageQuery) *domain.ImageResult {
	if !c.HasCredentials() {
		return nil
	}
	topic := strings.TrimSpace(query.Topic)
	if topic == "" {
		return nil
	}
	params := c.searchParams(topic, query.Page)
	if cached, ok := c.cache.Get(params); ok {
		if entry, ok := cached.(cachedLookup); ok {
			return entry.image
		}
	}
	photo, err := c.search(ctx, params)
	if err != nil {
		c.logger.Warn().
			Err(fmt.Errorf("%w: %v", domain.ErrImageLookupFailed, err)).
			Str("topic", topic).
			Int("page", query.Page).
			Msg("unsplash: image lookup failed")
		return nil
	}
	var result *domain.ImageResult
	if photo != nil {
		result = &domain.ImageResult{
			URL:     firstNonEmpty(photo.URLs.Regular, photo.URLs.Small, photo.URLs.Full),
			AltText: firstNonEmpty(photo.AltDescription, photo.Description, topic),
		}
		if result.URL == "" {
			result = nil
		}
	}
	c.cache.Set(params, cachedLookup{image: result}, gocache.DefaultExpiration)
	return result
}

func (c *UnsplashClient) searchParams(topic string, page int) string {
	values := url.Values{}
	values.Set("query", topic)
	values.Set("per_page", "1")
	if page > 0 {
		values.Set("page", strconv.Itoa(page))
	}
	if c.orientation != "" {
		values.Set("orientation", c.orientation)
	}
	return values.Encode()
}

func (c *UnsplashClient) search(ctx context.Context, params string) (*searchPhoto, error) {
	endpoint := c.baseURL + "/search/photos?" + params
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)
	req.Header.Set("Accept-Version", "v1")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		var detail errorResponse
		if err := json.Unmarshal(raw, &detail); err == nil && len(detail.Errors) > 0 {
			return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.Join(detail.Errors, "; "))
		}
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	var decoded searchResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Results) == 0 {
		c.logger.Debug().Str("params", params).Msg("unsplash: no results")
		return nil, nil
	}
	return &decoded.Results[0], nil
}

func normalizeOrientation(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "landscape":
		return "landscape"
	case "portrait":
		return "portrait"
	case "squarish", "square":
		return "squarish"
	default:
		return ""
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
