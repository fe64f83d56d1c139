package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dfryer1193/imgstash/images/application"
	"github.com/dfryer1193/imgstash/images/persistence"
	"github.com/dfryer1193/imgstash/internal/config"
	"github.com/dfryer1193/imgstash/internal/middleware"
	"github.com/dfryer1193/imgstash/internal/rest"
	"github.com/dfryer1193/imgstash/shared/db/sqlite"
	"github.com/dfryer1193/imgstash/shared/storage"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	// Optional .env for local development
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	database := sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{Path: cfg.Database.Path})
	if err := database.Connect(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	blobs, err := newBlobStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize blob storage")
	}

	svc := application.NewImageService(persistence.NewImageRepository(database.DB()), blobs)

	if len(cfg.Auth.Tokens) == 0 {
		log.Warn().Msg("No auth tokens configured; all requests will be rejected")
	}
	verifier := &middleware.StaticVerifier{Tokens: cfg.Auth.Tokens}

	router := gin.New()
	router.Use(middleware.LoggingMiddleware())
	router.Use(gin.CustomRecovery(middleware.HandlePanics()))
	rest.NewApi(router, svc, verifier)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("storage", cfg.Storage.Backend).Msg("Starting imgstash server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

func newBlobStore(cfg *config.Config) (storage.BlobStore, error) {
	switch cfg.Storage.Backend {
	case config.StorageS3:
		return storage.NewS3Store(cfg.Storage.S3.Region, cfg.Storage.S3.Bucket)
	default:
		return storage.NewLocalStore(cfg.Storage.Local.BaseDir), nil
	}
}
