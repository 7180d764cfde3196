package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/survey-reachability/internal/config"
	"github.com/survey-reachability/internal/pkg/logger"
	"github.com/survey-reachability/internal/repository/cache"
	"github.com/survey-reachability/internal/repository/postgres"
	redisRepo "github.com/survey-reachability/internal/repository/redis"
	"github.com/survey-reachability/internal/worker"
	"github.com/survey-reachability/internal/worker/submission"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Check if worker is enabled
	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(logger.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: "survey-worker",
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Submission Archive Worker")
	log.Info("Configuration loaded",
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.Int("batch_size", cfg.Worker.BatchSize),
		zap.Duration("retry_idle", cfg.Worker.RetryIdle),
		zap.Duration("stream_read_timeout", cfg.Worker.StreamReadTimeout))

	if !cfg.DatabaseEnabled() || !cfg.RedisEnabled() {
		log.Fatal("Worker requires DB_HOST and REDIS_HOST")
	}

	// 3. Connect to PostgreSQL and apply migrations
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

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// 5. Initialize repositories
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), cfg.Worker.StreamReadTimeout, log)
	archive := postgres.NewSubmissionRepository(db)

	// 6. Initialize workers
	archiveWorker := submission.NewArchiveWorker(
		streamRepo,
		archive,
		cfg.Worker.ConsumerGroup,
		cfg.Worker.BatchSize,
		log,
	)
	archiveWorker.RetryIdle = cfg.Worker.RetryIdle

	// 7. Create worker manager and register workers
	workerManager := worker.NewWorkerManager(log)
	workerManager.Register(archiveWorker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	// 8. Wait for interrupt signal or worker failure
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info("Received shutdown signal")
	case <-workerManager.Done():
		log.Error("Workers exited", zap.Error(workerManager.Err()))
	}

	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}
	cancel()

	log.Info("Worker shutdown complete")
}
