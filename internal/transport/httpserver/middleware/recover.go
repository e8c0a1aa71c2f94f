package middleware

import (
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"trending-score-service/internal/transport/httpserver/dto"
)

// Recover returns a middleware that converts panics into 500 responses so a
// single bad request cannot take down the feed.
func Recover(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("method", c.Method()),
					zap.String("path", c.Path()),
					zap.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)),
					zap.ByteString("stack", debug.Stack()),
				)

				err = c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
					Error: "internal server error",
					Code:  "PANIC",
				})
			}
		}()

		return c.Next()
	}
}
