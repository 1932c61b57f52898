// Package websearch is the Tavily web search client used by deep-research mode.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/docrag/internal/domain"
)

// Defaults.
const (
	DefaultBaseURL           = "https://api.tavily.com"
	DefaultMaxResults        = 5
	DefaultRequestsPerSecond = 1.0
	DefaultTimeout           = 10 * time.Second
)

// SummaryTitle marks the synthesized answer Tavily returns alongside results.
const SummaryTitle = "AI Summary"

// Config holds Tavily client settings.
type Config struct {
	APIKey            string
	BaseURL           string
	MaxResults        int
	RequestsPerSecond float64
	Timeout           time.Duration
	Logger            *zap.Logger
}

// Client calls the Tavily search API under a token-bucket limit.
type Client struct {
	http       *http.Client
	limiter    *rate.Limiter
	apiKey     string
	baseURL    string
	maxResults int
	logger     *zap.Logger
}

// NewClient creates a Tavily client.
func NewClient(cfg *Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:       &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxResults: maxResults,
		logger:     logger,
	}
}

type searchRequest struct {
	APIKey            string `json:"api_key"`
	Query             string `json:"query"`
	MaxResults        int    `json:"max_results"`
	SearchDepth       string `json:"search_depth"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeRawContent bool   `json:"include_raw_content"`
	IncludeImages     bool   `json:"include_images"`
}

type searchResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// Search implements domain.WebSearcher. A synthesized answer, when present, is
// returned first under SummaryTitle with no URL.
func (c *Client) Search(ctx context.Context, query string) ([]domain.WebResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is required: %w", domain.ErrInvalidInput)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := json.Marshal(searchRequest{
		APIKey:        c.apiKey,
		Query:         query,
		MaxResults:    c.maxResults,
		SearchDepth:   "advanced",
		IncludeAnswer: true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request: %v: %w", err, domain.ErrWebSearchFailed)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tavily status %d: %s: %w",
			resp.StatusCode, strings.TrimSpace(string(detail)), domain.ErrWebSearchFailed)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode response: %v: %w", err, domain.ErrWebSearchFailed)
	}

	out := make([]domain.WebResult, 0, len(sr.Results)+1)
	if a := strings.TrimSpace(sr.Answer); a != "" {
		out = append(out, domain.WebResult{Title: SummaryTitle, Content: a})
	}
	for _, r := range sr.Results {
		if strings.TrimSpace(r.Content) == "" {
			continue
		}
		out = append(out, domain.WebResult{Title: r.Title, URL: r.URL, Content: r.Content})
	}

	c.logger.Debug("web search",
		zap.Int("results", len(out)),
		zap.Duration("duration", time.Since(start)),
	)
	return out, nil
}
