package main

import (
	"context"
	"fmt"
	"os"

	"github.com/automatize/proposals-service/internal/auth"
	"github.com/automatize/proposals-service/internal/config"
	"github.com/automatize/proposals-service/internal/db"
	"github.com/automatize/proposals-service/internal/excel"
	httphandler "github.com/automatize/proposals-service/internal/http"
	"github.com/automatize/proposals-service/internal/http/middleware"
	"github.com/automatize/proposals-service/internal/logger"
	"github.com/automatize/proposals-service/internal/omie"
	"github.com/automatize/proposals-service/internal/pdf"
	"github.com/automatize/proposals-service/internal/repository"
	"github.com/automatize/proposals-service/internal/service"
	"github.com/automatize/proposals-service/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	proposalRepo := repository.NewProposalRepository(database)

	renderer, err := pdf.NewGenerator()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init pdf generator")
	}

	blobStore, err := storage.NewS3Store(context.Background(), cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init blob store")
	}

	proposalService := service.NewProposalService(proposalRepo, renderer, blobStore, cfg, log)
	exportGenerator := excel.NewGenerator()
	omieClient := omie.NewClient(cfg.Omie)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(proposalService, exportGenerator, omieClient, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting proposals service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
