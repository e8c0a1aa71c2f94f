package domain

import (
	"testing"
	"time"
)

func TestEstimate(t *testing.T) {
	cfg := DefaultScoringConfig()
	estimator := NewEstimator(cfg)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	launched := now.Add(-36 * time.Hour)

	tests := []struct {
		name     string
		listing  *Listing
		counts   EngagementCounts
		expected float64
	}{
		{
			name:    "one half-life old listing",
			listing: &Listing{ID: "a", CreatedAt: now.Add(-10 * 24 * time.Hour), LaunchedAt: &launched},
			counts:  EngagementCounts{Upvotes: 10, Comments: 2},
			// (10*1.0 + 2*2.0) * 0.5 = 7.0
			expected: 7.0,
		},
		{
			name:    "brand new listing, full recency",
			listing: &Listing{ID: "b", CreatedAt: now},
			counts:  EngagementCounts{Upvotes: 4, Guesses: 2},
			// (4*1.0 + 2*1.5) * 1.0 = 7.0
			expected: 7.0,
		},
		{
			name:     "missing counters score zero",
			listing:  &Listing{ID: "c", CreatedAt: now.Add(-time.Hour)},
			counts:   EngagementCounts{},
			expected: 0,
		},
		{
			name:     "nil listing never fails",
			listing:  nil,
			counts:   EngagementCounts{Upvotes: 100},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := estimator.Estimate(tt.listing, tt.counts, now)
			if got != tt.expected {
				t.Errorf("Estimate() = %v, want %v", got, tt.expected)
			}
			if got < 0 {
				t.Errorf("Estimate() = %v, want non-negative", got)
			}
		})
	}
}

func TestEstimate_FallsWithAge(t *testing.T) {
	estimator := NewEstimator(DefaultScoringConfig())
	now := time.Now().UTC()
	counts := EngagementCounts{Upvotes: 20, Comments: 5, Guesses: 3}

	var prev float64
	for i, age := range []time.Duration{0, 12 * time.Hour, 48 * time.Hour, 240 * time.Hour} {
		listing := &Listing{ID: "a", CreatedAt: now.Add(-age)}
		score := estimator.Estimate(listing, counts, now)
		if i > 0 && score > prev {
			t.Errorf("estimate rose with age: %v -> %v at age %v", prev, score, age)
		}
		prev = score
	}
}

func TestAgeReference(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	launched := created.Add(14 * 24 * time.Hour)

	withLaunch := &Listing{CreatedAt: created, LaunchedAt: &launched}
	if got := withLaunch.AgeReference(); !got.Equal(launched) {
		t.Errorf("AgeReference() = %v, want launch time %v", got, launched)
	}

	withoutLaunch := &Listing{CreatedAt: created}
	if got := withoutLaunch.AgeReference(); !got.Equal(created) {
		t.Errorf("AgeReference() = %v, want creation time %v", got, created)
	}
}
