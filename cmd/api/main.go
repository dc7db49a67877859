package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/pageza/recipehub/backend/config"
	"github.com/pageza/recipehub/backend/internal/blob"
	"github.com/pageza/recipehub/backend/internal/database"
	"github.com/pageza/recipehub/backend/internal/logging"
	"github.com/pageza/recipehub/backend/internal/router"
	"github.com/pageza/recipehub/backend/internal/server"
	"github.com/pageza/recipehub/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration:\n%v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel, cfg.Environment.IsDevelopment())
	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.New(cfg, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.RunMigrations(db, log); err != nil {
		return err
	}

	revocations, err := newRevocationStore(cfg, db, log)
	if err != nil {
		return err
	}
	blobs, err := newBlobStore(ctx, cfg, db)
	if err != nil {
		return err
	}

	authSvc := service.NewAuthService(db, revocations, service.AuthConfig{
		JWTSecret:             cfg.JWTSecret,
		Issuer:                cfg.JWTIssuer,
		TokenTTL:              cfg.TokenTTL,
		DefaultProfilePicture: cfg.DefaultProfilePicture,
	}, log)
	recipeSvc := service.NewRecipeService(db, blobs, service.RecipeConfig{
		PopularRefresh: cfg.PopularRefresh,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}, log)
	userSvc := service.NewUserService(db, recipeSvc, blobs, service.UserConfig{
		DefaultProfilePicture: cfg.DefaultProfilePicture,
		MaxUploadBytes:        cfg.MaxUploadBytes,
	}, log)

	handler := router.SetupRouter(router.Deps{
		DB:            db,
		Log:           log,
		CORSOrigins:   cfg.CORSOrigins,
		Blobs:         blobs,
		Auth:          authSvc,
		Users:         userSvc,
		Recipes:       recipeSvc,
		Comments:      service.NewCommentService(db, log),
		Notifications: service.NewNotificationService(db),
	})

	srv := server.New(cfg.Addr(), handler, log)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info().Msg("received shutdown signal")
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

func newRevocationStore(cfg *config.Config, db *gorm.DB, log zerolog.Logger) (service.RevocationStore, error) {
	if cfg.RevocationBackend == config.BackendRedis {
		client, err := database.NewRedisClient(cfg, log)
		if err != nil {
			return nil, err
		}
		return service.NewRedisRevocationStore(client), nil
	}
	return service.NewGormRevocationStore(db), nil
}

func newBlobStore(ctx context.Context, cfg *config.Config, db *gorm.DB) (blob.Store, error) {
	if cfg.BlobBackend == config.BackendS3 {
		s3Cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("configuring S3: %w", err)
		}
		return blob.NewS3Store(s3Cfg), nil
	}
	return blob.NewGormStore(db), nil
}
