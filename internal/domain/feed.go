package domain

import "time"

// SortOrder represents the sort direction.
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// FeedParams holds filter and pagination parameters for the listing feed.
type FeedParams struct {
	Window    string // Window name, e.g. "24h", "7d"
	SortOrder SortOrder

	Page     int // 1-indexed
	PageSize int
}

// DefaultFeedParams returns feed params with sensible defaults.
func DefaultFeedParams() FeedParams {
	return FeedParams{
		Window:    "24h",
		SortOrder: SortOrderDesc,
		Page:      1,
		PageSize:  20,
	}
}

// Normalize clamps feed params into acceptable bounds.
func (p *FeedParams) Normalize() {
	if p.Window == "" {
		p.Window = "24h"
	}
	if p.SortOrder == "" {
		p.SortOrder = SortOrderDesc
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

// Offset calculates the pagination offset.
func (p *FeedParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// FeedSource is one listing plus its already-fetched direct counters, as
// returned by the feed query. The counters are what the inline estimator
// works from when the snapshot is stale or absent.
type FeedSource struct {
	Listing *Listing
	Counts  EngagementCounts
}

// FeedItem is one scored listing in the feed. Strategy records which scoring
// path produced the number so callers can tell a precise snapshot score from
// a fast estimate.
type FeedItem struct {
	Listing      *Listing      `json:"listing"`
	Score        float64       `json:"score"`
	Strategy     ScoreStrategy `json:"strategy"`
	CalculatedAt time.Time     `json:"calculated_at"`
}

// FeedResult holds one page of the score-sorted feed.
type FeedResult struct {
	Items      []FeedItem `json:"items"`
	Window     string     `json:"window"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}

// NewFeedResult builds a FeedResult with calculated pagination.
func NewFeedResult(items []FeedItem, total int, params FeedParams) *FeedResult {
	totalPages := total / params.PageSize
	if total%params.PageSize > 0 {
		totalPages++
	}

	return &FeedResult{
		Items:      items,
		Window:     params.Window,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	}
}
