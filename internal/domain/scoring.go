package domain

import (
	"errors"
	"math"
	"time"
)

// ErrMalformedListing is returned when a listing is missing the status
// fields the aggregator needs. The sweep skips the listing and continues.
var ErrMalformedListing = errors.New("listing missing verification status or stage")

// EventWeights holds the per-category contribution weights.
type EventWeights struct {
	Upvote        float64
	Comment       float64
	Guess         float64
	IntroRequest  float64
	IntroAccepted float64
}

// StatusMultipliers holds the multiplicative adjustments for verification
// state and sale-lifecycle stage. They compose multiplicatively, never
// additively, so a sold-but-verified listing is still suppressed overall.
type StatusMultipliers struct {
	Verified  float64 // >1 bonus when revenue is verified
	ForSale   float64 // >1 boost
	ExitReady float64 // >1 boost
	Sold      float64 // <1 strong penalty
}

// ScoringConfig is the injected configuration for the score engine. Both the
// batch aggregator and the inline estimator take it at construction time so
// tests can supply alternate values without touching process-wide state.
type ScoringConfig struct {
	HalfLifeHours float64
	Weights       EventWeights
	Multipliers   StatusMultipliers
}

// DefaultScoringConfig returns the production scoring configuration.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		HalfLifeHours: 36,
		Weights: EventWeights{
			Upvote:        1.0,
			Comment:       2.0,
			Guess:         1.5,
			IntroRequest:  5.0,
			IntroAccepted: 10.0,
		},
		Multipliers: StatusMultipliers{
			Verified:  1.5,
			ForSale:   1.25,
			ExitReady: 1.25,
			Sold:      0.2,
		},
	}
}

// WeightFor returns the contribution weight for a sub-score category.
func (c ScoringConfig) WeightFor(category Category) float64 {
	switch category {
	case CategoryUpvote:
		return c.Weights.Upvote
	case CategoryComment:
		return c.Weights.Comment
	case CategoryGuess:
		return c.Weights.Guess
	case CategoryIntroRequest:
		return c.Weights.IntroRequest
	case CategoryIntroAccepted:
		return c.Weights.IntroAccepted
	default:
		return 0
	}
}

// Decay maps elapsed hours to a multiplier in (0, 1].
//
// Formula: 0.5^(h/H) for half-life H. At h=0 the multiplier is 1.0; it
// halves every H hours, decreases monotonically and approaches but never
// reaches 0. Negative elapsed time (clock skew) is clamped to 0.
func Decay(hoursAgo, halfLifeHours float64) float64 {
	if hoursAgo <= 0 {
		return 1.0
	}

	return math.Pow(0.5, hoursAgo/halfLifeHours)
}

// StatusMultiplier computes the composed multiplier for a listing's current
// verification status and stage. Starts at 1.0, multiplied by the verified
// bonus when applicable, then by the stage factor.
func (c ScoringConfig) StatusMultiplier(l *Listing) float64 {
	multiplier := 1.0

	if l.IsVerified() {
		multiplier *= c.Multipliers.Verified
	}

	switch l.Stage {
	case StageForSale:
		multiplier *= c.Multipliers.ForSale
	case StageExitReady:
		multiplier *= c.Multipliers.ExitReady
	case StageSold:
		multiplier *= c.Multipliers.Sold
	}

	return multiplier
}

// SubScores holds the decayed, weighted contribution per category.
type SubScores struct {
	Upvote        float64 `json:"upvote"`
	Comment       float64 `json:"comment"`
	Guess         float64 `json:"guess"`
	IntroRequest  float64 `json:"intro_request"`
	IntroAccepted float64 `json:"intro_accepted"`
}

// Sum returns the base score: the pre-multiplier, pre-compression total.
func (s SubScores) Sum() float64 {
	return s.Upvote + s.Comment + s.Guess + s.IntroRequest + s.IntroAccepted
}

func (s *SubScores) add(category Category, value float64) {
	switch category {
	case CategoryUpvote:
		s.Upvote += value
	case CategoryComment:
		s.Comment += value
	case CategoryGuess:
		s.Guess += value
	case CategoryIntroRequest:
		s.IntroRequest += value
	case CategoryIntroAccepted:
		s.IntroAccepted += value
	}
}

func (s SubScores) has(category Category) bool {
	switch category {
	case CategoryUpvote:
		return s.Upvote > 0
	case CategoryComment:
		return s.Comment > 0
	case CategoryGuess:
		return s.Guess > 0
	case CategoryIntroRequest:
		return s.IntroRequest > 0
	case CategoryIntroAccepted:
		return s.IntroAccepted > 0
	default:
		return false
	}
}

func (s SubScores) rounded() SubScores {
	return SubScores{
		Upvote:        roundTo2Decimals(s.Upvote),
		Comment:       roundTo2Decimals(s.Comment),
		Guess:         roundTo2Decimals(s.Guess),
		IntroRequest:  roundTo2Decimals(s.IntroRequest),
		IntroAccepted: roundTo2Decimals(s.IntroAccepted),
	}
}

// DirectRecords holds the in-window timestamps of direct engagement rows
// (upvote rows, comment rows, ...) per category. They serve as the
// completeness fallback when the event log has no entries for a category.
type DirectRecords map[Category][]time.Time

// Aggregator is the precise batch scoring strategy. It produces one
// ScoreSnapshot per (listing, window) pair from the full in-window event set.
//
// This is one of two named strategies: Aggregator (precise batch score) and
// Estimator (fast estimate). They are intentionally non-equivalent; callers
// choose deliberately.
type Aggregator struct {
	cfg ScoringConfig
}

// NewAggregator creates an Aggregator with the given configuration.
func NewAggregator(cfg ScoringConfig) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// Config returns the scoring configuration the aggregator was built with.
func (a *Aggregator) Config() ScoringConfig {
	return a.cfg
}

// Aggregate computes the score snapshot for one listing over one window.
//
// Formula:
//
//	baseScore  = Σ weight(kind) × 0.5^(hoursAgo/halfLife)   over in-window events
//	finalScore = ln(1 + baseScore) × 100 × statusMultiplier
//
// The logarithmic compression bounds growth as engagement volume increases
// so runaway listings cannot permanently dominate a linear ranking; the ×100
// rescales into a human-readable range.
//
// records is the counter cross-check input: for any category with zero
// matching events but direct rows with in-window timestamps, those rows'
// decayed weights are added instead. The fallback is all-or-nothing per
// category per listing: it only fires when the event log has no entry for
// that category at all, so it never double-counts.
//
// now must be a single consistent timestamp for the whole aggregation pass.
// Deterministic given the same event set and now; never negative.
func (a *Aggregator) Aggregate(
	listing *Listing,
	window Window,
	events []EngagementEvent,
	records DirectRecords,
	now time.Time,
) (*ScoreSnapshot, error) {
	if listing == nil || listing.VerificationStatus == "" || listing.Stage == "" {
		return nil, ErrMalformedListing
	}

	cutoff := now.Add(-window.Duration)
	var subs SubScores

	for _, event := range events {
		if event.Timestamp.IsZero() || event.Timestamp.Before(cutoff) {
			continue
		}

		category, ok := Classify(event.Kind)
		if !ok {
			continue
		}

		hoursAgo := now.Sub(event.Timestamp).Hours()
		decay := Decay(hoursAgo, a.cfg.HalfLifeHours)
		subs.add(category, a.cfg.WeightFor(category)*decay)
	}

	// Completeness fallback against direct records for categories the event
	// log has no coverage of.
	for category, timestamps := range records {
		if subs.has(category) {
			continue
		}
		weight := a.cfg.WeightFor(category)
		for _, ts := range timestamps {
			// Future timestamps (clock skew) score at full weight, same as
			// the event-log path where Decay clamps to 1.0
			if ts.IsZero() || ts.Before(cutoff) {
				continue
			}
			subs.add(category, weight*Decay(now.Sub(ts).Hours(), a.cfg.HalfLifeHours))
		}
	}

	baseScore := subs.Sum()
	multiplier := a.cfg.StatusMultiplier(listing)
	finalScore := math.Log(1+baseScore) * 100 * multiplier

	return &ScoreSnapshot{
		ListingID:        listing.ID,
		Window:           window.Name,
		Total:            roundTo2Decimals(finalScore),
		SubScores:        subs.rounded(),
		StatusMultiplier: multiplier,
		CalculatedAt:     now,
	}, nil
}

// roundTo2Decimals rounds a float to 2 decimal places.
func roundTo2Decimals(value float64) float64 {
	return math.Round(value*100) / 100
}
