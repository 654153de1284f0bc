package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deiparinemarwen-tech/AletheianDocs/internal/cache"
	"github.com/deiparinemarwen-tech/AletheianDocs/internal/config"
	"github.com/deiparinemarwen-tech/AletheianDocs/internal/domain"
	"github.com/deiparinemarwen-tech/AletheianDocs/internal/handler"
	"github.com/deiparinemarwen-tech/AletheianDocs/internal/hub"
	"github.com/deiparinemarwen-tech/AletheianDocs/internal/kafka"
	"github.com/deiparinemarwen-tech/AletheianDocs/internal/registry"
	"github.com/deiparinemarwen-tech/AletheianDocs/internal/repository"
	"github.com/deiparinemarwen-tech/AletheianDocs/internal/service"
	"github.com/deiparinemarwen-tech/AletheianDocs/pkg/database"
	"github.com/deiparinemarwen-tech/AletheianDocs/pkg/jwt"
	pkglog "github.com/deiparinemarwen-tech/AletheianDocs/pkg/log"
	"github.com/deiparinemarwen-tech/AletheianDocs/pkg/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Level == "debug",
		ServiceName: "chat-service",
	})
	logger := pkglog.L()

	// Connect to database using GORM
	db, err := database.New(&database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		FilePath:        cfg.Database.FilePath,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Auto-migrate
	if err := database.AutoMigrate(db, &domain.MessageModel{}); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Msg("database migration completed")

	// Initialize repository
	messageRepo := repository.NewGormMessageRepository(db)

	// Initialize Redis cache for history pages
	historyCache, err := cache.NewRedisHistoryCache(cfg.Redis, cfg.Cache.Prefix)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer historyCache.Close()
	logger.Info().Msg("redis cache connected")

	// Optional Kafka archive producer
	var producer kafka.MessageProducer
	if cfg.Kafka.Enabled {
		p, err := kafka.NewConfluentProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Partitions)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create kafka producer")
		}
		defer p.Close()
		producer = p
		logger.Info().Str("topic", cfg.Kafka.Topic).Msg("kafka archive producer connected")
	}

	// Token verification shared by the websocket and admin surfaces
	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TokenExpiry)
	authMiddleware := middleware.NewAuthMiddleware(tokens)

	// Realtime plumbing
	connHub := hub.NewHub()
	roomRegistry := registry.NewMemoryRegistry()

	// Services
	chatService := service.NewChatService(messageRepo, roomRegistry, connHub, producer, cfg.Chat)
	historyService := service.NewHistoryService(messageRepo, historyCache, cfg.Cache.TTL)

	// Handlers
	wsHandler := handler.NewWSHandler(connHub, chatService, tokens, cfg.WebSocket)
	httpHandler := handler.NewHTTPHandler(historyService, authMiddleware)

	// Setup Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))

	wsHandler.RegisterRoutes(r)
	httpHandler.RegisterRoutes(r)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		logger.Info().Str("addr", addr).Str("driver", cfg.Database.Driver).Msg("chat-service starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
	}

	logger.Info().Msg("chat-service stopped")
}
