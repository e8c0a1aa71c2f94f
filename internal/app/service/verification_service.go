package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"trending-score-service/internal/domain"
)

// VerificationService pulls verified revenue figures from external providers
// and applies them to listings. Verification only ever feeds the score engine
// through the listing's status multiplier.
type VerificationService struct {
	listings  domain.ListingRepository
	verifiers []domain.RevenueVerifier
	logger    *zap.Logger
}

// NewVerificationService creates a new VerificationService.
func NewVerificationService(listings domain.ListingRepository, verifiers []domain.RevenueVerifier, logger *zap.Logger) *VerificationService {
	return &VerificationService{
		listings:  listings,
		verifiers: verifiers,
		logger:    logger,
	}
}

// VerifyResult holds the result of one provider's verification pull.
type VerifyResult struct {
	Verifier string
	Count    int
	Duration time.Duration
	Error    error
}

// VerifyAll pulls from all providers concurrently and applies the results.
// Partial failures are allowed: one provider being down does not stop the
// others from landing their verifications.
func (s *VerificationService) VerifyAll(ctx context.Context) []VerifyResult {
	results := make([]VerifyResult, len(s.verifiers))
	var wg sync.WaitGroup

	s.logger.Info("starting verification pull from all providers",
		zap.Int("verifier_count", len(s.verifiers)),
	)

	for i, verifier := range s.verifiers {
		wg.Add(1)
		go func(idx int, v domain.RevenueVerifier) {
			defer wg.Done()
			results[idx] = s.verifyProvider(ctx, v)
		}(i, verifier)
	}

	wg.Wait()

	totalApplied := 0
	totalErrors := 0
	for _, r := range results {
		if r.Error != nil {
			totalErrors++
		} else {
			totalApplied += r.Count
		}
	}

	s.logger.Info("verification pull completed",
		zap.Int("total_applied", totalApplied),
		zap.Int("verifiers_failed", totalErrors),
	)

	return results
}

// verifyProvider fetches and applies revenue records from a single provider.
func (s *VerificationService) verifyProvider(ctx context.Context, verifier domain.RevenueVerifier) VerifyResult {
	start := time.Now()
	result := VerifyResult{
		Verifier: verifier.Name(),
	}

	records, err := verifier.Fetch(ctx)
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		s.logger.Warn("verifier fetch failed",
			zap.String("verifier", verifier.Name()),
			zap.Error(err),
		)
		return result
	}

	applied := 0
	for _, record := range records {
		if err := s.listings.MarkVerified(ctx, record.ListingID, record.MRRCents, record.VerifiedAt); err != nil {
			// Unknown or deleted listing ids are logged and skipped
			s.logger.Warn("applying verification failed",
				zap.String("verifier", verifier.Name()),
				zap.String("listing_id", record.ListingID),
				zap.Error(err),
			)
			continue
		}
		applied++
	}

	result.Count = applied
	result.Duration = time.Since(start)

	s.logger.Info("verifier pull completed",
		zap.String("verifier", verifier.Name()),
		zap.Int("applied", applied),
		zap.Int("fetched", len(records)),
		zap.Duration("duration", result.Duration),
	)

	return result
}

// VerifierStatus holds the health state of one provider.
type VerifierStatus struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// Health checks each provider's availability.
func (s *VerificationService) Health(ctx context.Context) []VerifierStatus {
	statuses := make([]VerifierStatus, len(s.verifiers))

	for i, v := range s.verifiers {
		status := VerifierStatus{Name: v.Name(), Healthy: true}
		if err := v.HealthCheck(ctx); err != nil {
			status.Healthy = false
			status.Error = err.Error()
		}
		statuses[i] = status
	}

	return statuses
}

// VerifierNames returns the names of all registered providers.
func (s *VerificationService) VerifierNames() []string {
	names := make([]string, len(s.verifiers))
	for i, v := range s.verifiers {
		names[i] = v.Name()
	}
	return names
}
