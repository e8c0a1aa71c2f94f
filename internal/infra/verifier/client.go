// Package verifier provides HTTP client utilities for external revenue
// verification providers.
package verifier

import (
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
)

// ClientConfig holds configuration for a verifier client.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	Retry   RetryConfig
	CB      CBConfig
}

// RetryConfig holds retry configuration.
type RetryConfig struct {
	MaxAttempts int
	WaitTime    time.Duration
	MaxWaitTime time.Duration
}

// CBConfig holds circuit breaker configuration.
type CBConfig struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
}

// NewRestyClient creates a new Resty HTTP client with retry configuration.
// Retries fire on transport errors and 5xx responses; 4xx responses are
// treated as final.
func NewRestyClient(cfg ClientConfig) *resty.Client {
	return resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", "trending-score-service").
		SetRetryCount(cfg.Retry.MaxAttempts).
		SetRetryWaitTime(cfg.Retry.WaitTime).
		SetRetryMaxWaitTime(cfg.Retry.MaxWaitTime).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}

			return r.StatusCode() >= 500
		})
}

// StateChangeFunc is called when a circuit breaker changes state.
type StateChangeFunc func(name string, from, to gobreaker.State)

// NewCircuitBreaker creates a new circuit breaker for a verifier. The breaker
// trips once at least 3 requests have been seen and the failure ratio crosses
// the configured threshold. onStateChange may be nil.
func NewCircuitBreaker[T any](name string, cfg CBConfig, onStateChange StateChangeFunc) *gobreaker.CircuitBreaker[T] {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)

			return counts.Requests >= 3 && failureRatio >= cfg.FailureRatio
		},
	}
	if onStateChange != nil {
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			onStateChange(name, from, to)
		}
	}

	return gobreaker.NewCircuitBreaker[T](settings)
}
