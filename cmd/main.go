// Package main is the entry point for the project amenities form service.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/project-amenities/backend/internal/cache"
	"github.com/project-amenities/backend/internal/config"
	"github.com/project-amenities/backend/internal/database"
	"github.com/project-amenities/backend/internal/gateway"
	"github.com/project-amenities/backend/internal/handler"
	"github.com/project-amenities/backend/internal/preview"
	"github.com/project-amenities/backend/internal/service"
	"github.com/project-amenities/backend/internal/validation"
)

const previewURLPrefix = "/api/v1/previews"

func main() {
	// Parse command line flags
	role := flag.String("role", "", "Service role: gateway or handler (overrides SERVICE_ROLE env var)")
	port := flag.String("port", "", "Server port (overrides SERVER_PORT env var)")
	flag.Parse()

	// Override environment variables if flags are provided
	if *role != "" {
		os.Setenv("SERVICE_ROLE", *role)
	}
	if *port != "" {
		os.Setenv("SERVER_PORT", *port)
	}

	app := fx.New(
		fx.Provide(
			config.New,
			newLogger,
			newGinEngine,
		),
		fx.Invoke(startServer),
	)

	app.Run()
}

// newLogger creates a new zap logger based on the environment.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// newGinEngine creates and configures a new Gin engine.
func newGinEngine(cfg *config.Config) *gin.Engine {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())
	engine.MaxMultipartMemory = int64(cfg.MaxUploadBytes)

	// CORS middleware
	engine.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	return engine
}

// newPreviewStore picks the preview backend from configuration.
func newPreviewStore(cfg *config.Config, logger *zap.Logger) (preview.Store, error) {
	if cfg.UsesMinIO() {
		return preview.NewMinIOStore(cfg, logger)
	}
	return preview.NewLocalStore(cfg.PreviewLocalPath, previewURLPrefix, logger)
}

// startServer starts the HTTP server based on the configured role.
func startServer(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger, engine *gin.Engine) error {
	logger.Info("Starting service",
		zap.String("role", cfg.Role),
		zap.String("port", cfg.ServerPort),
	)

	apiV1 := engine.Group("/api/v1")

	gw := gateway.NewGateway(cfg, logger)
	engine.GET("/health", gw.HealthCheck)

	var repo database.Repository
	var redisCache *cache.RedisCache

	if cfg.IsHandler() {
		// Handler mode: connect to storage and serve the form API
		var err error
		repo, err = database.NewPostgresRepository(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
			return err
		}

		redisCache, err = cache.NewRedisCache(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
			return err
		}

		previews, err := newPreviewStore(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to set up preview storage", zap.Error(err))
			return err
		}

		forms := service.NewFormService(
			repo,
			redisCache,
			redisCache.Drafts(),
			previews,
			redisCache.Previews(),
			validation.New(),
			logger,
		)
		h := handler.NewHandler(forms, previews, handler.UploadLimits{
			FileBytes:    int64(cfg.MaxUploadBytes),
			RequestBytes: int64(cfg.MaxRequestBytes),
		}, logger)
		h.RegisterRoutes(apiV1)

		// Previews of drafts that expire without being closed are revoked
		// in the background.
		sweepCtx, stopSweeper := context.WithCancel(context.Background())
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				go forms.RunSweeper(sweepCtx, cfg.PreviewSweepInterval)
				return nil
			},
			OnStop: func(ctx context.Context) error {
				stopSweeper()
				return nil
			},
		})

		logger.Info("Handler routes registered",
			zap.String("preview_backend", cfg.PreviewBackend),
		)
	} else {
		// Gateway mode: setup proxy to handler
		gw.RegisterRoutes(apiV1)

		logger.Info("Gateway routes registered",
			zap.String("handler_url", cfg.HandlerURL),
		)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info("Server starting", zap.String("addr", server.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal("Server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Server shutting down")

			if repo != nil {
				repo.Close()
			}
			if redisCache != nil {
				_ = redisCache.Close()
			}

			return server.Shutdown(ctx)
		},
	})

	return nil
}
