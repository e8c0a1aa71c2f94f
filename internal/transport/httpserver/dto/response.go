package dto

import (
	"time"

	"trending-score-service/internal/app/service"
	"trending-score-service/internal/domain"
)

// ListingResponse represents a single listing in the response.
type ListingResponse struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Tags               []string `json:"tags,omitempty"`
	VerificationStatus string   `json:"verification_status"`
	Stage              string   `json:"stage"`
	VerifiedMRRCents   int64    `json:"verified_mrr_cents,omitempty"`
	LaunchedAt         string   `json:"launched_at,omitempty"`
	CreatedAt          string   `json:"created_at"`
}

// FromDomainListing converts domain.Listing to ListingResponse.
func FromDomainListing(l *domain.Listing) ListingResponse {
	resp := ListingResponse{
		ID:                 l.ID,
		Name:               l.Name,
		Tags:               l.Tags,
		VerificationStatus: string(l.VerificationStatus),
		Stage:              string(l.Stage),
		VerifiedMRRCents:   l.VerifiedMRRCents,
		CreatedAt:          l.CreatedAt.Format(time.RFC3339),
	}
	if l.LaunchedAt != nil {
		resp.LaunchedAt = l.LaunchedAt.Format(time.RFC3339)
	}

	return resp
}

// FeedItemResponse represents one scored listing in the feed.
type FeedItemResponse struct {
	Listing      ListingResponse `json:"listing"`
	Score        float64         `json:"score"`
	Strategy     string          `json:"strategy"`
	CalculatedAt string          `json:"calculated_at"`
}

// FeedResponse represents the trending feed response.
type FeedResponse struct {
	Items      []FeedItemResponse `json:"items"`
	Window     string             `json:"window"`
	Pagination PaginationMeta     `json:"pagination"`
}

// PaginationMeta holds pagination metadata.
type PaginationMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// FromFeedResult converts domain.FeedResult to FeedResponse.
func FromFeedResult(result *domain.FeedResult) FeedResponse {
	items := make([]FeedItemResponse, len(result.Items))
	for i, item := range result.Items {
		items[i] = FeedItemResponse{
			Listing:      FromDomainListing(item.Listing),
			Score:        item.Score,
			Strategy:     string(item.Strategy),
			CalculatedAt: item.CalculatedAt.Format(time.RFC3339),
		}
	}

	return FeedResponse{
		Items:  items,
		Window: result.Window,
		Pagination: PaginationMeta{
			Total:      result.Total,
			Page:       result.Page,
			PageSize:   result.PageSize,
			TotalPages: result.TotalPages,
		},
	}
}

// SubScoresResponse breaks a score down by engagement category.
type SubScoresResponse struct {
	Upvote        float64 `json:"upvote"`
	Comment       float64 `json:"comment"`
	Guess         float64 `json:"guess"`
	IntroRequest  float64 `json:"intro_request"`
	IntroAccepted float64 `json:"intro_accepted"`
}

// ScoreResponse represents a single listing's score snapshot.
type ScoreResponse struct {
	ListingID        string            `json:"listing_id"`
	Window           string            `json:"window"`
	Total            float64           `json:"total"`
	SubScores        SubScoresResponse `json:"sub_scores"`
	StatusMultiplier float64           `json:"status_multiplier"`
	CalculatedAt     string            `json:"calculated_at"`
}

// FromSnapshot converts domain.ScoreSnapshot to ScoreResponse.
func FromSnapshot(s *domain.ScoreSnapshot) ScoreResponse {
	return ScoreResponse{
		ListingID: s.ListingID,
		Window:    s.Window,
		Total:     s.Total,
		SubScores: SubScoresResponse{
			Upvote:        s.SubScores.Upvote,
			Comment:       s.SubScores.Comment,
			Guess:         s.SubScores.Guess,
			IntroRequest:  s.SubScores.IntroRequest,
			IntroAccepted: s.SubScores.IntroAccepted,
		},
		StatusMultiplier: s.StatusMultiplier,
		CalculatedAt:     s.CalculatedAt.Format(time.RFC3339),
	}
}

// SweepResponse represents the result of a recalculation sweep.
type SweepResponse struct {
	StartedAt        string   `json:"started_at"`
	Duration         string   `json:"duration"`
	Windows          []string `json:"windows"`
	ListingsScored   int      `json:"listings_scored"`
	ListingsSkipped  int      `json:"listings_skipped"`
	SnapshotsWritten int      `json:"snapshots_written"`
}

// FromSweepSummary converts service.SweepSummary to SweepResponse.
func FromSweepSummary(s *service.SweepSummary) SweepResponse {
	return SweepResponse{
		StartedAt:        s.StartedAt.Format(time.RFC3339),
		Duration:         s.Duration.String(),
		Windows:          s.Windows,
		ListingsScored:   s.ListingsScored,
		ListingsSkipped:  s.ListingsSkipped,
		SnapshotsWritten: s.SnapshotsWritten,
	}
}

// ScoringConfigResponse exposes the effective scoring configuration on the
// status surfaces.
type ScoringConfigResponse struct {
	HalfLifeHours  float64            `json:"half_life_hours"`
	Weights        map[string]float64 `json:"weights"`
	Multipliers    map[string]float64 `json:"multipliers"`
	Windows        []WindowResponse   `json:"windows"`
	SnapshotMaxAge string             `json:"snapshot_max_age"`
}

// WindowResponse represents one configured scoring window.
type WindowResponse struct {
	Name  string  `json:"name"`
	Hours float64 `json:"hours"`
}

// FromScoringConfig converts the injected scoring configuration to
// ScoringConfigResponse.
func FromScoringConfig(cfg domain.ScoringConfig, windows []domain.Window, snapshotMaxAge time.Duration) ScoringConfigResponse {
	resp := ScoringConfigResponse{
		HalfLifeHours: cfg.HalfLifeHours,
		Weights: map[string]float64{
			"upvote":         cfg.Weights.Upvote,
			"comment":        cfg.Weights.Comment,
			"guess":          cfg.Weights.Guess,
			"intro_request":  cfg.Weights.IntroRequest,
			"intro_accepted": cfg.Weights.IntroAccepted,
		},
		Multipliers: map[string]float64{
			"verified":   cfg.Multipliers.Verified,
			"for_sale":   cfg.Multipliers.ForSale,
			"exit_ready": cfg.Multipliers.ExitReady,
			"sold":       cfg.Multipliers.Sold,
		},
		Windows:        make([]WindowResponse, len(windows)),
		SnapshotMaxAge: snapshotMaxAge.String(),
	}
	for i, w := range windows {
		resp.Windows[i] = WindowResponse{Name: w.Name, Hours: w.Hours()}
	}

	return resp
}

// VerifyResultResponse represents the result of one provider's pull.
type VerifyResultResponse struct {
	Verifier string `json:"verifier"`
	Count    int    `json:"count"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

// VerifyResponse represents the response for a verification pull.
type VerifyResponse struct {
	Results []VerifyResultResponse `json:"results"`
	Summary VerifySummary          `json:"summary"`
}

// VerifySummary holds summary of a verification pull.
type VerifySummary struct {
	TotalApplied  int `json:"total_applied"`
	VerifiersOK   int `json:"verifiers_ok"`
	VerifiersFail int `json:"verifiers_fail"`
}

// FromVerifyResults converts service.VerifyResult slice to VerifyResponse.
func FromVerifyResults(results []service.VerifyResult) VerifyResponse {
	resp := VerifyResponse{
		Results: make([]VerifyResultResponse, len(results)),
	}

	for i, r := range results {
		errMsg := ""
		if r.Error != nil {
			errMsg = r.Error.Error()
			resp.Summary.VerifiersFail++
		} else {
			resp.Summary.TotalApplied += r.Count
			resp.Summary.VerifiersOK++
		}

		resp.Results[i] = VerifyResultResponse{
			Verifier: r.Verifier,
			Count:    r.Count,
			Duration: r.Duration.String(),
			Error:    errMsg,
		}
	}

	return resp
}

// HealthResponse represents health check response.
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp string            `json:"timestamp"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}
