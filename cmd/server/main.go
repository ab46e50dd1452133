package main

import (
	"fmt"
	"log"
	"time"

	"claimdesk/internal/config"
	"claimdesk/internal/confidence"
	"claimdesk/internal/extractor/model"
	"claimdesk/internal/extractor/pattern"
	"claimdesk/internal/handler"
	"claimdesk/internal/inference"
	_ "claimdesk/internal/inference/vllm"
	"claimdesk/internal/orchestrator"
	"claimdesk/internal/repository/postgres"
	"claimdesk/internal/router"
	"claimdesk/internal/service"
	"claimdesk/internal/validator"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	outcomeRepo := postgres.NewOutcomeRepo(db)
	dupeIndex := postgres.NewDuplicateRepo(db)

	// Initialize extractors
	var modelExt orchestrator.ModelExtractor
	if cfg.Inference.Enabled {
		client, err := inference.NewClient(&cfg.Inference)
		if err != nil {
			return fmt.Errorf("failed to initialize inference client: %w", err)
		}
		modelExt = model.New(client, model.Config{
			MaxRetries:        cfg.Inference.MaxRetries,
			BackoffBase:       time.Duration(cfg.Inference.BackoffBaseMS) * time.Millisecond,
			BackoffCap:        time.Duration(cfg.Inference.BackoffCapMS) * time.Millisecond,
			Timeout:           time.Duration(cfg.Inference.TimeoutSecs) * time.Second,
			Temperature:       cfg.Inference.Temperature,
			MaxOutputTokens:   cfg.Inference.MaxOutputTokens,
			ProximityBaseline: cfg.Extract.ModelProximityBaseline,
		})
	}
	patternExt := pattern.New()

	// Initialize core components
	fieldValidator := validator.New(validator.Config{
		MaxYearsBack: cfg.Extract.MaxYearsBack,
		FraudCeiling: cfg.Extract.FraudCeiling,
	})
	scorer := confidence.New(cfg.Extract.OptionalAbsentConfidence)
	orch := orchestrator.New(modelExt, patternExt, fieldValidator, scorer, dupeIndex, orchestrator.Config{
		AcceptThreshold:     cfg.Extract.AcceptThreshold,
		AutoAcceptThreshold: cfg.Extract.AutoAcceptThreshold,
	})

	// Initialize services and handlers
	extractSvc := service.NewExtractionService(
		orch, outcomeRepo,
		time.Duration(cfg.Extract.DocumentTimeoutSecs)*time.Second,
		cfg.Queue.Concurrency,
	)
	extractH := handler.NewExtractHandler(extractSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(extractH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
