// Package handler provides HTTP handlers for the API.
package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"trending-score-service/internal/app/service"
	"trending-score-service/internal/domain"
	"trending-score-service/internal/transport/httpserver/dto"
	"trending-score-service/internal/validator"
)

// FeedHandler handles feed-related HTTP requests.
type FeedHandler struct {
	service   *service.FeedService
	validator *validator.Validator
	logger    *zap.Logger
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(svc *service.FeedService, v *validator.Validator, logger *zap.Logger) *FeedHandler {
	return &FeedHandler{
		service:   svc,
		validator: v,
		logger:    logger,
	}
}

// Feed handles GET /api/v1/feed
func (h *FeedHandler) Feed(c *fiber.Ctx) error {
	var req dto.FeedRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid query parameters",
			Code:  "INVALID_PARAMS",
		})
	}

	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	params := req.ToFeedParams()
	result, err := h.service.Feed(c.Context(), params)
	if err != nil {
		if isUnknownWindow(err) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: err.Error(),
				Code:  "UNKNOWN_WINDOW",
			})
		}
		h.logger.Error("feed assembly failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "feed assembly failed",
			Code:  "INTERNAL_ERROR",
		})
	}

	return c.JSON(dto.FromFeedResult(result))
}

// GetScore handles GET /api/v1/listings/:id/score
func (h *FeedHandler) GetScore(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "id is required",
			Code:  "MISSING_ID",
		})
	}

	var req dto.ScoreRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid query parameters",
			Code:  "INVALID_PARAMS",
		})
	}

	snapshot, err := h.service.GetScore(c.Context(), id, req.WindowOrDefault())
	if err != nil {
		if isUnknownWindow(err) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: err.Error(),
				Code:  "UNKNOWN_WINDOW",
			})
		}
		h.logger.Error("get score failed", zap.String("id", id), zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "failed to get score",
			Code:  "INTERNAL_ERROR",
		})
	}

	if snapshot == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: "listing not found",
			Code:  "NOT_FOUND",
		})
	}

	return c.JSON(dto.FromSnapshot(snapshot))
}

func isUnknownWindow(err error) bool {
	return errors.Is(err, domain.ErrUnknownWindow)
}
