package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vbonduro/photoshare/internal/auth"
	"github.com/vbonduro/photoshare/internal/config"
	"github.com/vbonduro/photoshare/internal/db"
	"github.com/vbonduro/photoshare/internal/logging"
	"github.com/vbonduro/photoshare/internal/metrics"
	"github.com/vbonduro/photoshare/internal/notify"
	"github.com/vbonduro/photoshare/internal/photostore"
	"github.com/vbonduro/photoshare/internal/photostore/local"
	s3store "github.com/vbonduro/photoshare/internal/photostore/s3"
	"github.com/vbonduro/photoshare/internal/service"
	"github.com/vbonduro/photoshare/internal/sharing"
	"github.com/vbonduro/photoshare/internal/store"
	"github.com/vbonduro/photoshare/internal/vision"
	claudevision "github.com/vbonduro/photoshare/internal/vision/claude"
	ollamavision "github.com/vbonduro/photoshare/internal/vision/ollama"
	"github.com/vbonduro/photoshare/internal/web"
)

func main() {
	cfg := config.Load()

	if len(os.Args) > 1 && os.Args[1] == "token" {
		if err := printToken(cfg, os.Args[2:]); err != nil {
			log.Fatal(err)
		}
		return
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	contactStore := store.NewContactStore(database)
	photoStore := store.NewPhotoStore(database)
	shareStore := store.NewShareStore(database)
	profileStore := store.NewProfileStore(database)

	photoStg, err := newPhotoStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize photo store", "error", err)
		return
	}

	tagger, responder := newVision(cfg, logger)

	hub := notify.NewHub(logger, cfg.CORSOrigins...)
	go hub.Run(ctx)

	m := metrics.New()
	m.WatchStats(store.NewStatsStore(database), logger)
	m.WatchSubscribers(hub.Clients)

	shareService := service.NewShareService(
		contactStore,
		shareStore,
		profileStore,
		photoStore,
		sharing.NewLinkGenerator(cfg.DefaultCountryCode),
		hub,
		logger,
	)
	galleryService := service.NewGalleryService(photoStore, photoStg, tagger, logger)
	searchService := service.NewSearchService(photoStore, responder, logger)

	if cfg.AuthSecret == "" {
		logger.Warn("AUTH_SECRET is not set; the API is unauthenticated")
	}
	server := web.NewServer(shareService, galleryService, searchService, hub, m, web.Options{
		AuthSecret:     []byte(cfg.AuthSecret),
		CORSOrigins:    cfg.CORSOrigins,
		RateLimit:      cfg.RateLimitRPS,
		RateBurst:      cfg.RateLimitBurst,
		TrustedProxies: cfg.TrustedProxies,
	}, logger)

	if err := server.ListenAndServe(ctx, cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}

func newPhotoStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (photostore.PhotoStore, error) {
	if cfg.PhotoBackend == "s3" {
		logger.Info("using S3 photo backend", "bucket", cfg.S3Bucket, "endpoint", cfg.S3Endpoint)
		return s3store.NewS3PhotoStore(ctx, s3store.Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	}
	logger.Info("using local photo backend", "path", cfg.PhotoPath)
	return local.NewLocalPhotoStore(cfg.PhotoPath)
}

// newVision returns nil interfaces when tagging is disabled, so callers fall
// back to orientation tags and the default chat reply.
func newVision(cfg *config.Config, logger *slog.Logger) (vision.Tagger, vision.Responder) {
	switch cfg.VisionBackend {
	case "claude":
		logger.Info("using Claude vision backend", "model", cfg.ClaudeModel)
		c := claudevision.NewClaudeTagger(cfg.ClaudeAPIKey, cfg.ClaudeModel)
		return c, c
	case "ollama":
		logger.Info("using Ollama vision backend", "model", cfg.OllamaModel)
		return ollamavision.NewOllamaTagger(cfg.OllamaHost, cfg.OllamaModel), nil
	default:
		logger.Info("vision tagging disabled")
		return nil, nil
	}
}

// printToken issues a bearer token for the given name: photoshare token <name>.
func printToken(cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: photoshare token <name>")
	}
	token, err := auth.GenerateToken(args[0], []byte(cfg.AuthSecret), cfg.TokenTTL)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
