package main

// @title Survey Reachability API
// @version 1.0.0
// @description Сервис карты сценариев доступности для анкеты.
// @description
// @description Основные возможности:
// @description - Слои объектов из ArcGIS feature services (магазины, рынки, клиники, школы, парки)
// @description - Оценка достижимости объектов от точки отсчёта по сценариям (пешком, транспорт, микромобильность)
// @description - Кольца сценариев и 15-минутные пешие буферы в GeoJSON
// @description - Сессии страницы с отложенным обновлением при сдвиге карты
// @description - Отправка анкеты в таблицу и архив отправленных анкет

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/survey-reachability/docs"
	"github.com/survey-reachability/internal/config"
	httpDelivery "github.com/survey-reachability/internal/delivery/http"
	"github.com/survey-reachability/internal/delivery/http/handler"
	"github.com/survey-reachability/internal/domain/repository"
	"github.com/survey-reachability/internal/infrastructure/arcgis"
	"github.com/survey-reachability/internal/infrastructure/sheets"
	"github.com/survey-reachability/internal/pkg/logger"
	"github.com/survey-reachability/internal/repository/cache"
	"github.com/survey-reachability/internal/repository/postgres"
	redisRepo "github.com/survey-reachability/internal/repository/redis"
	"github.com/survey-reachability/internal/session"
	"github.com/survey-reachability/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(logger.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: "survey-api",
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Survey Reachability API")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.Bool("redis", cfg.RedisEnabled()),
		zap.Bool("archive", cfg.DatabaseEnabled()),
	)

	// 3. Catalogue of scenarios and amenity sources
	catalog, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Fatal("Failed to load catalog", zap.Error(err))
	}
	log.Info("Catalog loaded",
		zap.Int("scenarios", len(catalog.Scenarios)),
		zap.Int("sources", len(catalog.Sources)))

	health := make(map[string]handler.HealthChecker)

	// 4. Redis: кеш запросов к источникам и стрим анкет (необязателен)
	var (
		cacheRepo  repository.CacheRepository
		streamRepo repository.StreamRepository
	)
	if cfg.RedisEnabled() {
		redisClient, err := cache.NewRedis(&cfg.Redis, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Failed to close Redis connection", zap.Error(err))
			}
		}()

		cacheRepo = cache.NewCacheRepository(redisClient)
		if cfg.Submission.PublishEvents {
			streamRepo = redisRepo.NewStreamRepository(redisClient.Client(), cfg.Worker.StreamReadTimeout, log)
		}
		health["redis"] = redisClient
	} else {
		log.Warn("Redis is not configured: amenity cache and submission events are disabled")
	}

	// 5. PostgreSQL: архив анкет для чтения (необязателен)
	var archive repository.SubmissionArchive
	if cfg.DatabaseEnabled() {
		db, err := postgres.New(&cfg.Database, log)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Failed to close PostgreSQL connection", zap.Error(err))
			}
		}()

		migrateCtx, migrateCancel := context.WithTimeout(context.Background(), time.Minute)
		err = db.Migrate(migrateCtx)
		migrateCancel()
		if err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}

		archive = postgres.NewSubmissionRepository(db)
		health["postgres"] = db
	}

	if cfg.Submission.WebhookURL == "" {
		log.Warn("SUBMISSION_WEBHOOK_URL is empty: survey submissions will fail")
	}

	// 6. Infrastructure clients
	amenityRepo := arcgis.NewClient(&cfg.ArcGIS, log)
	sink := sheets.NewClient(&cfg.Submission, log)

	// 7. Initialize Use Cases
	amenityUC := usecase.NewAmenityUseCase(
		catalog,
		amenityRepo,
		cacheRepo,
		cfg.Cache.AmenityCacheTTL,
		cfg.Reachability.BufferLimit,
		cfg.Reachability.CircleSegments,
		log,
	)

	reachUC := usecase.NewReachabilityUseCase(
		catalog,
		amenityUC,
		cfg.Reachability.FeatureLimit,
		cfg.Reachability.CircleSegments,
		log,
	)

	submissionUC := usecase.NewSubmissionUseCase(
		sink,
		streamRepo,
		archive,
		cfg.Submission.SelectionLimits,
		log,
	)

	sessions := session.NewManager(catalog, amenityUC, reachUC, session.Options{
		Debounce:       cfg.Reachability.Debounce,
		RefreshTimeout: cfg.Reachability.RefreshTimeout,
		FeatureLimit:   cfg.Reachability.FeatureLimit,
	}, cfg.Reachability.SessionIdleTTL, log)
	defer sessions.Close()

	log.Info("Use cases initialized")

	// 8. Initialize HTTP server
	server := httpDelivery.NewServer(cfg, log, httpDelivery.Handlers{
		Health:       handler.NewHealthHandler(health, log),
		Scenario:     handler.NewScenarioHandler(reachUC, log),
		Source:       handler.NewSourceHandler(amenityUC, log),
		Reachability: handler.NewReachabilityHandler(reachUC, log),
		Session:      handler.NewSessionHandler(sessions, reachUC, log),
		Submission:   handler.NewSubmissionHandler(submissionUC, log),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sessions.Run(ctx)

	// 9. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 10. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}
