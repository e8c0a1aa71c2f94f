package domain

import "time"

// ScoreStrategy names the scoring path that produced a number. The two
// strategies compute different values for the "same" concept and are not
// interchangeable: the batch aggregator decays each event individually and
// log-compresses the sum, the estimator applies one recency multiplier to
// raw counters with no compression.
type ScoreStrategy string

const (
	StrategyPreciseBatch ScoreStrategy = "precise_batch"
	StrategyFastEstimate ScoreStrategy = "fast_estimate"
)

// EngagementCounts holds direct per-listing counters. A zero value is valid
// input (missing counters score 0, not an error).
type EngagementCounts struct {
	Upvotes  int `json:"upvotes"`
	Comments int `json:"comments"`
	Guesses  int `json:"guesses"`
}

// Estimator is the fast scoring strategy consulted by feed assembly when no
// fresh snapshot exists. It works from already-fetched counters with pure
// in-memory arithmetic, so it never adds a data-store round trip and never
// fails.
type Estimator struct {
	cfg ScoringConfig
}

// NewEstimator creates an Estimator with the given configuration.
func NewEstimator(cfg ScoringConfig) *Estimator {
	return &Estimator{cfg: cfg}
}

// Estimate computes an approximate score from raw counters and listing age.
//
// The category weights match the batch aggregator's, but instead of decaying
// each event the whole weighted sum gets a single recency multiplier from
// time since launch (or creation), using the same half-life decay shape.
// There is no logarithmic compression. Always finite and non-negative.
func (e *Estimator) Estimate(listing *Listing, counts EngagementCounts, now time.Time) float64 {
	if listing == nil {
		return 0
	}

	weighted := float64(counts.Upvotes)*e.cfg.Weights.Upvote +
		float64(counts.Comments)*e.cfg.Weights.Comment +
		float64(counts.Guesses)*e.cfg.Weights.Guess
	if weighted <= 0 {
		return 0
	}

	recency := Decay(listing.HoursSince(now), e.cfg.HalfLifeHours)

	return roundTo2Decimals(weighted * recency)
}
