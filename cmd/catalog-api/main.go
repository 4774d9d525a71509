package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/college-catalog/internal/handler"
	"github.com/noah-isme/college-catalog/internal/middleware"
	"github.com/noah-isme/college-catalog/internal/repository"
	"github.com/noah-isme/college-catalog/internal/service"
	"github.com/noah-isme/college-catalog/pkg/config"
	"github.com/noah-isme/college-catalog/pkg/database"
	"github.com/noah-isme/college-catalog/pkg/logger"
	corsmiddleware "github.com/noah-isme/college-catalog/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/college-catalog/pkg/middleware/requestid"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	validate := validator.New()
	metrics := service.NewMetricsService()
	tokens := service.NewTokenService(service.TokenConfig{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		Expiration: cfg.JWT.Expiration,
	})

	var (
		catalogSvc  *service.CatalogService
		favoriteSvc *service.FavoriteService
	)
	switch cfg.Server.Backend {
	case config.BackendPostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer db.Close() //nolint:errcheck
		if err := database.EnsureSchema(ctx, db); err != nil {
			return err
		}
		catalogRepo := repository.NewCatalogRepository(db)
		catalogSvc = service.NewCatalogService(catalogRepo, validate, logr)
		favoriteSvc = service.NewFavoriteService(repository.NewFavoriteRepository(db), catalogRepo, validate, logr)
	default:
		repo := repository.NewMemoryCatalogRepository()
		catalogSvc = service.NewCatalogService(repo, validate, logr)
		favoriteSvc = service.NewFavoriteService(repo, repo, validate, logr)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics, "/health", "/metrics"))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "backend": cfg.Server.Backend})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	handler.RegisterRoutes(r.Group(cfg.Server.APIPrefix),
		handler.NewCatalogHandler(catalogSvc),
		handler.NewFavoriteHandler(favoriteSvc),
		tokens,
	)

	if cfg.Env != config.EnvProduction {
		token, expiresAt, err := tokens.Issue("dev-user")
		if err == nil {
			logr.Info("development token issued", zap.String("user_id", "dev-user"), zap.String("token", token), zap.Time("expires_at", expiresAt))
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("backend", cfg.Server.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logr.Info("server shutting down")
	return srv.Shutdown(shutdownCtx)
}
