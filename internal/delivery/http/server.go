package http

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/survey-reachability/internal/config"
	"github.com/survey-reachability/internal/delivery/http/handler"
	"github.com/survey-reachability/internal/delivery/http/middleware"
	"github.com/survey-reachability/internal/pkg/utils"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"
)

// Handlers - обработчики, подключаемые к маршрутам
type Handlers struct {
	Health       *handler.HealthHandler
	Scenario     *handler.ScenarioHandler
	Source       *handler.SourceHandler
	Reachability *handler.ReachabilityHandler
	Session      *handler.SessionHandler
	Submission   *handler.SubmissionHandler
}

// Server - HTTP сервер на основе Fiber
type Server struct {
	app      *fiber.App
	config   *config.Config
	logger   *zap.Logger
	handlers Handlers
}

// NewServer - создание нового HTTP сервера
func NewServer(cfg *config.Config, logger *zap.Logger, handlers Handlers) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Survey Reachability",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		// имена сценариев в пути содержат пробелы и "+"
		UnescapePath: true,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:      app,
		config:   cfg,
		logger:   logger,
		handlers: handlers,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// App - fiber приложение (для тестов через app.Test)
func (s *Server) App() *fiber.App {
	return s.app
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery(s.logger))
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS(s.config.Server.CORSOrigins))
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	api := s.app.Group("/api/v1")
	h := s.handlers

	api.Get("/health", h.Health.Health)

	// Scenarios
	api.Get("/scenarios", h.Scenario.List)
	api.Get("/scenarios/rings", h.Scenario.Rings)

	// Amenity sources
	api.Get("/sources", h.Source.List)
	api.Get("/sources/:id/features", h.Source.Features)
	api.Get("/sources/:id/buffers", h.Source.Buffers)

	api.Post("/reachability/evaluate", h.Reachability.Evaluate)

	// Sessions
	sessions := api.Group("/sessions")
	sessions.Post("/", h.Session.Create)
	sessions.Get("/:id", h.Session.Get)
	sessions.Put("/:id/origin", h.Session.SetOrigin)
	sessions.Put("/:id/scenarios/:name", h.Session.SetScenario)
	sessions.Put("/:id/sources/:source", h.Session.SetSource)
	sessions.Put("/:id/viewport", h.Session.SetViewport)
	sessions.Delete("/:id", h.Session.Delete)

	// Submissions
	submissions := api.Group("/submissions")
	submissions.Post("/", h.Submission.Submit)
	submissions.Post("/form", h.Submission.SubmitForm)
	submissions.Get("/", h.Submission.List)
	submissions.Get("/:id", h.Submission.Get)
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - ошибки, не обработанные в хендлерах (404 маршрута, паники, лимиты тела)
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if stderrors.As(err, &fe) {
			logger.Warn("HTTP Error",
				zap.String("path", c.Path()),
				zap.Int("status", fe.Code),
				zap.Error(err),
			)
			return c.Status(fe.Code).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    "HTTP_ERROR",
					"message": fe.Message,
				},
			})
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return utils.SendError(c, err)
	}
}
