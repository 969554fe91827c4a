package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipehub/database"
	"recipehub/internal/broadcast"
	"recipehub/internal/cache"
	"recipehub/internal/config"
	"recipehub/internal/handler"
	"recipehub/internal/repository"
	"recipehub/internal/router"
	"recipehub/internal/service"
	"recipehub/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(h)
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg, logger)
	if err != nil {
		return err
	}
	if err := database.SeedSuperAdmin(db, cfg, logger); err != nil {
		return err
	}

	blobs, err := storage.NewLocalBlobStore(cfg.MediaPath, cfg.MediaURL, logger)
	if err != nil {
		return fmt.Errorf("failed to set up media storage: %w", err)
	}

	cacheClient, err := cache.New(cfg.RedisURL, cfg.RedisPassword, cfg.CacheTTL, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer cacheClient.Close()

	hub := broadcast.NewHub(logger)
	go hub.Run(ctx)

	userRepo := repository.NewUserRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	homepageRepo := repository.NewHomepageRepository(db)

	authService := service.NewAuthService(userRepo, refreshTokenRepo, blobs, hub, cfg, logger)
	userService := service.NewUserService(userRepo, recipeRepo, ratingRepo, refreshTokenRepo, blobs, hub, logger)
	recipeService := service.NewRecipeService(recipeRepo, blobs, hub, logger)
	ratingService := service.NewRatingService(ratingRepo, recipeRepo, blobs, hub)
	homepageService := service.NewHomepageService(homepageRepo, recipeRepo, blobs, hub, cacheClient, logger)

	engine := router.New(router.Dependencies{
		Config:          cfg,
		AuthService:     authService,
		AuthHandler:     handler.NewAuthHandler(authService, userService),
		RecipeHandler:   handler.NewRecipeHandler(recipeService, ratingService),
		UserHandler:     handler.NewUserHandler(userService),
		HomepageHandler: handler.NewHomepageHandler(homepageService),
		Hub:             hub,
		MediaDir:        blobs.BasePath(),
		Logger:          logger,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", server.Addr, "env", cfg.GoEnv)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
