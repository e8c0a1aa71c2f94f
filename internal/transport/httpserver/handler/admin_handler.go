package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"trending-score-service/internal/app/service"
	"trending-score-service/internal/transport/httpserver/dto"
)

// AdminHandler handles the admin trigger surface.
type AdminHandler struct {
	recalcService *service.RecalcService
	verifyService *service.VerificationService
	scoringStatus dto.ScoringConfigResponse
	logger        *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(recalcSvc *service.RecalcService, verifySvc *service.VerificationService, scoringStatus dto.ScoringConfigResponse, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		recalcService: recalcSvc,
		verifyService: verifySvc,
		scoringStatus: scoringStatus,
		logger:        logger,
	}
}

// Recalculate handles POST /api/v1/admin/recalculate
func (h *AdminHandler) Recalculate(c *fiber.Ctx) error {
	h.logger.Info("manual recalculation triggered")

	summary, err := h.recalcService.RecalcAll(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  "RECALC_FAILED",
		})
	}

	return c.JSON(dto.FromSweepSummary(summary))
}

// RecalcStatus handles GET /api/v1/admin/recalculate/status
func (h *AdminHandler) RecalcStatus(c *fiber.Ctx) error {
	resp := fiber.Map{
		"last_run": nil,
		"scoring":  h.scoringStatus,
	}
	if summary := h.recalcService.LastRun(); summary != nil {
		resp["last_run"] = dto.FromSweepSummary(summary)
	}

	return c.JSON(resp)
}

// Verify handles POST /api/v1/admin/verify
func (h *AdminHandler) Verify(c *fiber.Ctx) error {
	h.logger.Info("manual verification pull triggered")

	results := h.verifyService.VerifyAll(c.Context())

	return c.JSON(dto.FromVerifyResults(results))
}

// GetVerifiers handles GET /api/v1/admin/verifiers
func (h *AdminHandler) GetVerifiers(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"verifiers": h.verifyService.Health(c.Context()),
	})
}
