package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/lycan-99/devcord/internal/api"
	"github.com/lycan-99/devcord/internal/auth"
	"github.com/lycan-99/devcord/internal/config"
	"github.com/lycan-99/devcord/internal/db"
	"github.com/lycan-99/devcord/internal/hub"
	"github.com/lycan-99/devcord/internal/observ"
	"github.com/lycan-99/devcord/internal/preview"
	"github.com/lycan-99/devcord/internal/store/postgres"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	// Startup has no deadline: take as long as needed to connect. Once
	// serving, each request carries its own context.
	database, err := db.New(context.Background(), cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Close()

	pool := database.Pool()
	if err := postgres.EnsureSchema(context.Background(), pool); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	// Redis only backs the link-preview cache; a missing Redis degrades
	// previews to uncached, it doesn't take the server down.
	redisClient, err := db.NewRedis(context.Background(), cfg.RedisURL, logger)
	if err != nil {
		logger.Warn("redis unavailable, link previews will be uncached", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	projectStore := postgres.NewProjectStore(pool)
	messageStore := postgres.NewMessageStore(pool)

	invites := auth.NewInvites(cfg.JWTSecret, cfg.SessionTTL)
	fetcher := preview.New(cfg.PreviewAPI, redisClient, logger.Named("preview"))

	h := hub.New(projectStore, messageStore, invites, cfg.SessionTTL, logger.Named("hub"))
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go h.Run(hubCtx)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := gin.New()
	srv.Use(gin.Logger(), gin.Recovery(), api.CORS(cfg.ClientOrigin))

	api.Routes(srv, h,
		api.NewProjectHandler(projectStore, h, logger.Named("api")),
		api.NewMessageHandler(messageStore, h, api.EscapeRenderer{}, logger.Named("api")),
		api.NewInviteHandler(h, invites, cfg.ClientOrigin, logger.Named("api")),
		api.NewPreviewHandler(fetcher, logger.Named("api")),
	)

	logger.Info("starting devcord",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
	)

	return srv.Run(":" + cfg.Port)
}
