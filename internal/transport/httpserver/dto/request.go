// Package dto provides Data Transfer Objects for HTTP requests and responses.
package dto

import "trending-score-service/internal/domain"

// FeedRequest represents the query parameters for the trending feed.
type FeedRequest struct {
	Window    string `query:"window" validate:"omitempty,max=20"`
	SortOrder string `query:"sort_order" validate:"omitempty,oneof=asc desc"`
	Page      int    `query:"page" validate:"omitempty,min=1"`
	PageSize  int    `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// ToFeedParams converts FeedRequest to domain.FeedParams.
func (r *FeedRequest) ToFeedParams() domain.FeedParams {
	params := domain.DefaultFeedParams()

	if r.Window != "" {
		params.Window = r.Window
	}
	if r.SortOrder != "" {
		params.SortOrder = domain.SortOrder(r.SortOrder)
	}
	if r.Page > 0 {
		params.Page = r.Page
	}
	if r.PageSize > 0 {
		params.PageSize = r.PageSize
	}

	return params
}

// ScoreRequest represents the query parameters for a single listing's score.
type ScoreRequest struct {
	Window string `query:"window" validate:"omitempty,max=20"`
}

// WindowOrDefault returns the requested window, defaulting to the short one.
func (r *ScoreRequest) WindowOrDefault() string {
	if r.Window == "" {
		return "24h"
	}
	return r.Window
}
