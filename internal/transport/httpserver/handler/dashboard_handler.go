package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"trending-score-service/internal/app/service"
	"trending-score-service/internal/domain"
	"trending-score-service/internal/transport/httpserver/dto"
)

// DashboardHandler handles dashboard-related HTTP requests.
type DashboardHandler struct {
	feedService   *service.FeedService
	recalcService *service.RecalcService
	scoringStatus dto.ScoringConfigResponse
	logger        *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(feedSvc *service.FeedService, recalcSvc *service.RecalcService, scoringStatus dto.ScoringConfigResponse, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		feedService:   feedSvc,
		recalcService: recalcSvc,
		scoringStatus: scoringStatus,
		logger:        logger,
	}
}

// Render handles GET /dashboard
// Renders the operations dashboard using Fiber's template engine.
func (h *DashboardHandler) Render(c *fiber.Ctx) error {
	params := domain.DefaultFeedParams()
	params.PageSize = 10

	feed, err := h.feedService.Feed(c.Context(), params)
	if err != nil {
		h.logger.Warn("dashboard feed load failed", zap.Error(err))
		feed = &domain.FeedResult{Window: params.Window}
	}

	return c.Render("pages/dashboard", fiber.Map{
		"Title":        "Trending Score Dashboard",
		"Window":       feed.Window,
		"ListingCount": feed.Total,
		"TopItems":     feed.Items,
		"LastRun":      h.recalcService.LastRun(),
		"Scoring":      h.scoringStatus,
	}, "layouts/base")
}
