package registry

import (
	"trending-score-service/internal/config"
	"trending-score-service/internal/domain"
	"trending-score-service/internal/infra/verifier"
	"trending-score-service/internal/infra/verifier/paddle"
	"trending-score-service/internal/infra/verifier/stripe"

	"go.uber.org/zap"
)

// NewVerifiers creates all configured revenue verifier clients.
// This is a factory function that centralizes verifier initialization
// while maintaining dependency injection principles.
//
// Parameters:
//   - cfg: Verifier configuration containing endpoints, timeouts, retry, and circuit breaker settings
//   - logger: Zap logger instance for structured logging
//
// Returns a slice of domain.RevenueVerifier instances ready for use in services.
func NewVerifiers(cfg config.VerifierConfig, logger *zap.Logger) []domain.RevenueVerifier {
	verifiers := make([]domain.RevenueVerifier, 0, 2)

	// Stripe bridge
	stripeClient := stripe.New(clientConfig(cfg.Stripe), logger)
	verifiers = append(verifiers, stripeClient)

	// Paddle bridge
	paddleClient := paddle.New(clientConfig(cfg.Paddle), logger)
	verifiers = append(verifiers, paddleClient)

	return verifiers
}

func clientConfig(ep config.VerifierEndpoint) verifier.ClientConfig {
	return verifier.ClientConfig{
		BaseURL: ep.BaseURL,
		Timeout: ep.Timeout,
		Retry: verifier.RetryConfig{
			MaxAttempts: ep.Retry.MaxAttempts,
			WaitTime:    ep.Retry.WaitTime,
			MaxWaitTime: ep.Retry.MaxWaitTime,
		},
		CB: verifier.CBConfig{
			MaxRequests:  ep.CB.MaxRequests,
			Interval:     ep.CB.Interval,
			Timeout:      ep.CB.Timeout,
			FailureRatio: ep.CB.FailureRatio,
		},
	}
}
