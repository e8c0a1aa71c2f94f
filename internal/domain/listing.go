// Package domain contains the core business logic and entities.
// This package has no external dependencies (only stdlib).
package domain

import (
	"time"
)

// VerificationStatus represents the revenue verification state of a listing.
type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "UNVERIFIED"
	VerificationPending    VerificationStatus = "PENDING"
	VerificationVerified   VerificationStatus = "VERIFIED"
)

// Stage represents the sale-lifecycle stage of a listing.
type Stage string

const (
	StageMakingMoney Stage = "MAKING_MONEY"
	StageForSale     Stage = "FOR_SALE"
	StageExitReady   Stage = "EXIT_READY"
	StageSold        Stage = "SOLD"
)

// Listing is a startup/product entry eligible for trending ranking.
// The scoring engine treats it as read-only input; ownership, revenue
// screenshots and the rest of the marketplace profile live outside this
// service's scope.
type Listing struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Tags []string `json:"tags,omitempty"`

	VerificationStatus VerificationStatus `json:"verification_status"`
	Stage              Stage              `json:"stage"`

	// VerifiedMRRCents is the monthly recurring revenue reported by the
	// verification provider, in cents. Zero when unverified.
	VerifiedMRRCents int64      `json:"verified_mrr_cents,omitempty"`
	VerifiedAt       *time.Time `json:"verified_at,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	LaunchedAt *time.Time `json:"launched_at,omitempty"`
}

// IsVerified returns true if the listing's revenue has been verified.
func (l *Listing) IsVerified() bool {
	return l.VerificationStatus == VerificationVerified
}

// AgeReference returns the timestamp the inline estimator measures listing
// age from: the launch time when set, otherwise creation time.
func (l *Listing) AgeReference() time.Time {
	if l.LaunchedAt != nil && !l.LaunchedAt.IsZero() {
		return *l.LaunchedAt
	}

	return l.CreatedAt
}

// HoursSince returns the listing age in hours relative to now, never negative.
func (l *Listing) HoursSince(now time.Time) float64 {
	hours := now.Sub(l.AgeReference()).Hours()
	if hours < 0 {
		return 0
	}

	return hours
}
