package main

import (
	"os"

	"github.com/hibiken/asynq"

	"github.com/researchmem/researchmem/internal/app/config"
	"github.com/researchmem/researchmem/internal/infrastructure/database"
	"github.com/researchmem/researchmem/internal/infrastructure/repositories/postgresql"
	"github.com/researchmem/researchmem/internal/worker"
	"github.com/researchmem/researchmem/pkg/logger"
)

func main() {
	// Initialize logger
	log := logger.New()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Connect to database
	db, err := database.New(cfg.GetDatabaseURL())
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repos := postgresql.NewRepositories(db)
	processor := worker.NewProcessor(repos.JobRepo, log.Logger)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
		},
	)

	log.Info("Starting worker", "concurrency", cfg.Worker.Concurrency, "redis", cfg.Redis.Addr())

	// Run blocks until SIGINT/SIGTERM and drains in-flight tasks.
	if err := srv.Run(processor.Handler()); err != nil {
		log.Error("Worker stopped", "error", err)
		os.Exit(1)
	}
}
