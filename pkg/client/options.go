package client

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	apiKey     string
	httpClient *http.Client

	pollInterval time.Duration
	maxAttempts  int
	backoffStart time.Duration
	backoffMax   time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithAPIKey sends the key as a Bearer token.
func WithAPIKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = key
	})
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithPolling sets the WaitForJob interval and attempt cap.
// Defaults: 1s, 600 attempts.
func WithPolling(interval time.Duration, maxAttempts int) Option {
	return optionFunc(func(c *clientConfig) {
		c.pollInterval = interval
		c.maxAttempts = maxAttempts
	})
}

// WithBackoff sets the delay after transient errors while polling. The delay
// doubles from start up to limit. Defaults: 5s, 30s.
func WithBackoff(start, limit time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.backoffStart = start
		c.backoffMax = limit
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
