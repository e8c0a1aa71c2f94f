// Package paddle implements the XML revenue verifier client.
package paddle

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"trending-score-service/internal/domain"
	"trending-score-service/internal/infra/verifier"
)

// Endpoint is the API path for the Paddle bridge's revenue report.
const Endpoint = "/report"

// Client implements domain.RevenueVerifier for the Paddle bridge (XML).
type Client struct {
	name   string
	client *resty.Client
	cb     *gobreaker.CircuitBreaker[*resty.Response]
	logger *zap.Logger
}

// New creates a new Paddle verifier client.
func New(cfg verifier.ClientConfig, logger *zap.Logger) *Client {
	onStateChange := func(name string, from, to gobreaker.State) {
		logger.Warn("circuit breaker state changed",
			zap.String("verifier", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}

	return &Client{
		name:   "paddle",
		client: verifier.NewRestyClient(cfg),
		cb:     verifier.NewCircuitBreaker[*resty.Response]("paddle", cfg.CB, onStateChange),
		logger: logger,
	}
}

// Name returns the verifier identifier.
func (c *Client) Name() string {
	return c.name
}

// Fetch retrieves all verified revenue records from the Paddle bridge.
func (c *Client) Fetch(ctx context.Context) ([]domain.VerifiedRevenue, error) {
	resp, err := c.cb.Execute(func() (*resty.Response, error) {
		r, err := c.client.R().
			SetContext(ctx).
			SetHeader("Accept", "application/xml").
			Get(Endpoint)
		if err != nil {
			return nil, err
		}
		if r.IsError() {
			return nil, fmt.Errorf("paddle returned status %d", r.StatusCode())
		}

		return r, nil
	})

	if err != nil {
		c.logger.Warn("paddle fetch failed",
			zap.Error(err),
			zap.String("state", c.cb.State().String()),
		)

		return nil, fmt.Errorf("fetching from paddle: %w", err)
	}

	var report Report
	if err := xml.Unmarshal(resp.Body(), &report); err != nil {
		return nil, fmt.Errorf("parsing paddle XML: %w", err)
	}

	records := make([]domain.VerifiedRevenue, 0, len(report.Entries.Entries))

	for _, entry := range report.Entries.Entries {
		records = append(records, entry.ToDomain())
	}

	c.logger.Info("paddle fetch completed",
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
