// Package stripe implements the JSON revenue verifier client.
package stripe

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"trending-score-service/internal/domain"
	"trending-score-service/internal/infra/verifier"
)

// Endpoint is the API path for the Stripe bridge's verification endpoint.
const Endpoint = "/v1/verifications"

// Client implements domain.RevenueVerifier for the Stripe bridge (JSON).
type Client struct {
	name   string
	client *resty.Client
	cb     *gobreaker.CircuitBreaker[*resty.Response]
	logger *zap.Logger
}

// New creates a new Stripe verifier client.
func New(cfg verifier.ClientConfig, logger *zap.Logger) *Client {
	onStateChange := func(name string, from, to gobreaker.State) {
		logger.Warn("circuit breaker state changed",
			zap.String("verifier", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}

	return &Client{
		name:   "stripe",
		client: verifier.NewRestyClient(cfg),
		cb:     verifier.NewCircuitBreaker[*resty.Response]("stripe", cfg.CB, onStateChange),
		logger: logger,
	}
}

// Name returns the verifier identifier.
func (c *Client) Name() string {
	return c.name
}

// Fetch retrieves all verified revenue records from the Stripe bridge.
func (c *Client) Fetch(ctx context.Context) ([]domain.VerifiedRevenue, error) {
	resp, err := c.cb.Execute(func() (*resty.Response, error) {
		var result Response
		r, err := c.client.R().
			SetContext(ctx).
			SetResult(&result).
			Get(Endpoint)
		if err != nil {
			return nil, err
		}
		if r.IsError() {
			return nil, fmt.Errorf("stripe returned status %d", r.StatusCode())
		}

		return r, nil
	})

	if err != nil {
		c.logger.Warn("stripe fetch failed",
			zap.Error(err),
			zap.String("state", c.cb.State().String()),
		)

		return nil, fmt.Errorf("fetching from stripe: %w", err)
	}

	result := resp.Result().(*Response)
	records := make([]domain.VerifiedRevenue, 0, len(result.Verifications))

	for _, item := range result.Verifications {
		records = append(records, item.ToDomain())
	}

	c.logger.Info("stripe fetch completed",
		zap.Int("count", len(records)),
	)

	return records, nil
}

// HealthCheck verifies the bridge is accessible.
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.client.R().
		SetContext(ctx).
		Get("/health")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("health check returned status %d", resp.StatusCode())
	}

	return nil
}
