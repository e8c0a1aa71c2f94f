package stripe

import (
	"time"

	"trending-score-service/internal/domain"
)

// Response is the JSON payload returned by the Stripe revenue bridge.
type Response struct {
	Verifications []VerificationItem `json:"verifications"`
}

// VerificationItem is a single verified revenue record.
type VerificationItem struct {
	ListingID  string `json:"listing_id"`
	MRRCents   int64  `json:"mrr_cents"`
	VerifiedAt string `json:"verified_at"`
}

// ToDomain converts a verification item to the domain representation.
// A missing or malformed timestamp falls back to the current time.
func (v VerificationItem) ToDomain() domain.VerifiedRevenue {
	verifiedAt, err := time.Parse(time.RFC3339, v.VerifiedAt)
	if err != nil {
		verifiedAt = time.Now().UTC()
	}

	return domain.VerifiedRevenue{
		ListingID:  v.ListingID,
		MRRCents:   v.MRRCents,
		VerifiedAt: verifiedAt,
	}
}
