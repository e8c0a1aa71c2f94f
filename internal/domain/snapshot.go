package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownWindow is returned when a window name is not configured.
var ErrUnknownWindow = errors.New("unknown window")

// Window is a fixed lookback duration engagement is aggregated over.
// The set of windows is process-wide configuration, fixed at startup.
type Window struct {
	Name     string
	Duration time.Duration
}

// Hours returns the window duration in hours.
func (w Window) Hours() float64 {
	return w.Duration.Hours()
}

// DefaultWindows returns the windows the recalculation job evaluates.
func DefaultWindows() []Window {
	return []Window{
		{Name: "24h", Duration: 24 * time.Hour},
		{Name: "7d", Duration: 7 * 24 * time.Hour},
	}
}

// FindWindow resolves a window by name.
func FindWindow(windows []Window, name string) (Window, error) {
	for _, w := range windows {
		if w.Name == name {
			return w, nil
		}
	}

	return Window{}, fmt.Errorf("%w %q", ErrUnknownWindow, name)
}

// ScoreSnapshot is the persisted result of one scoring computation for one
// (listing, window) pair. At most one live snapshot exists per key; the
// recalculation job overwrites it on every run.
type ScoreSnapshot struct {
	ListingID string `json:"listing_id"`
	Window    string `json:"window"`

	Total            float64   `json:"total"`
	SubScores        SubScores `json:"sub_scores"`
	StatusMultiplier float64   `json:"status_multiplier"`

	CalculatedAt time.Time `json:"calculated_at"`
}

// FreshAt reports whether the snapshot was calculated within maxAge of now.
// Stale or missing snapshots make feed assembly fall back to the estimator.
func (s *ScoreSnapshot) FreshAt(now time.Time, maxAge time.Duration) bool {
	if s == nil {
		return false
	}

	return now.Sub(s.CalculatedAt) <= maxAge
}
