// Package httpserver provides HTTP server and routing.
package httpserver

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/template/html/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"trending-score-service/internal/app/service"
	"trending-score-service/internal/domain"
	"trending-score-service/internal/transport/httpserver/dto"
	"trending-score-service/internal/transport/httpserver/handler"
	"trending-score-service/internal/transport/httpserver/middleware"
	"trending-score-service/internal/validator"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port       int
	BodyLimit  int
	Debug      bool
	AdminToken string

	// Effective scoring configuration, exposed read-only on the status
	// surfaces.
	Scoring        domain.ScoringConfig
	Windows        []domain.Window
	SnapshotMaxAge time.Duration
}

// Server wraps Fiber app with handlers.
type Server struct {
	App    *fiber.App
	Logger *zap.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	cfg ServerConfig,
	feedSvc *service.FeedService,
	recalcSvc *service.RecalcService,
	verifySvc *service.VerificationService,
	db *gorm.DB,
	v *validator.Validator,
	logger *zap.Logger,
) *Server {
	// Template engine for dashboard
	engine := html.New("./web/templates", ".html")
	if cfg.Debug {
		engine.Reload(true)
	}

	app := fiber.New(fiber.Config{
		AppName:      "trending-score-service",
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: errorHandler(logger),
		Views:        engine,
	})

	// Health check middleware MUST be registered BEFORE other middleware
	// for Kubernetes probes to work even during high load
	app.Use(middleware.NewHealthCheck(db))

	// Global middleware
	app.Use(requestid.New())
	app.Use(middleware.Recover(logger))
	app.Use(middleware.Logger(logger))
	app.Use(cors.New())
	app.Use(compress.New())

	// Static files
	app.Static("/static", "./web/static")

	// Create handlers
	scoringStatus := dto.FromScoringConfig(cfg.Scoring, cfg.Windows, cfg.SnapshotMaxAge)
	feedHandler := handler.NewFeedHandler(feedSvc, v, logger)
	adminHandler := handler.NewAdminHandler(recalcSvc, verifySvc, scoringStatus, logger)
	dashboardHandler := handler.NewDashboardHandler(feedSvc, recalcSvc, scoringStatus, logger)

	registerRoutes(app, cfg, feedHandler, adminHandler, dashboardHandler)

	return &Server{
		App:    app,
		Logger: logger,
	}
}

// registerRoutes sets up all API routes.
func registerRoutes(
	app *fiber.App,
	cfg ServerConfig,
	feedHandler *handler.FeedHandler,
	adminHandler *handler.AdminHandler,
	dashboardHandler *handler.DashboardHandler,
) {
	// Health checks are handled by middleware (/livez, /readyz)

	// Dashboard (HTML)
	app.Get("/dashboard", dashboardHandler.Render)
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/dashboard")
	})

	// API v1 routes
	v1 := app.Group("/api/v1")

	// Public read surface
	v1.Get("/feed", feedHandler.Feed)
	v1.Get("/listings/:id/score", feedHandler.GetScore)

	// Admin trigger surface, behind the shared token
	admin := v1.Group("/admin", middleware.AdminAuth(cfg.AdminToken))
	admin.Post("/recalculate", adminHandler.Recalculate)
	admin.Get("/recalculate/status", adminHandler.RecalcStatus)
	admin.Post("/verify", adminHandler.Verify)
	admin.Get("/verifiers", adminHandler.GetVerifiers)
}

// errorHandler returns a custom error handler that logs based on HTTP status code.
// 404s are logged at DEBUG level (expected client behavior), 4xx at WARN, 5xx at ERROR.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		switch {
		case code == fiber.StatusNotFound:
			logger.Debug("resource not found",
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
			)
		case code >= 500:
			logger.Error("server error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		case code >= 400:
			logger.Warn("client error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		default:
			logger.Error("unhandled error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		}

		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "UNHANDLED_ERROR",
		})
	}
}

// Start starts the HTTP server.
func (s *Server) Start(port int) error {
	s.Logger.Info("starting HTTP server", zap.Int("port", port))

	return s.App.Listen(fmt.Sprintf(":%d", port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	s.Logger.Info("shutting down HTTP server")

	return s.App.Shutdown()
}
