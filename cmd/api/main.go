package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/exp/slog"

	"fairbet-backend/internal/config"
	"fairbet-backend/internal/handlers"
	"fairbet-backend/internal/lib/logger/sl"
	"fairbet-backend/internal/middleware"
	"fairbet-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", sl.Err(err))
		os.Exit(1)
	}

	log := setupLogger(cfg.Env)
	log.Info("starting server", sl.String("env", cfg.Env))

	redisService, err := services.NewRedisService(cfg)
	if err != nil {
		log.Error("failed to connect to redis", sl.Err(err))
		os.Exit(1)
	}
	defer redisService.Close()

	jwtService := services.NewJWTService(cfg)

	engine := services.NewGameEngine(redisService, redisService, redisService, services.Rules{
		MinBet:        cfg.MinBet,
		MaxBet:        cfg.MaxBet,
		HouseEdge:     cfg.HouseEdge,
		SessionExpiry: cfg.SessionExpiry,
	}, log)

	wsHandler := handlers.NewWebSocketHandler(log)
	engine.SetBroadcaster(wsHandler)

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			expired, err := engine.ExpireStale(context.Background())
			if err != nil {
				log.Error("expiry sweep failed", sl.Err(err))
				continue
			}
			if expired > 0 {
				log.Info("expired stale sessions", sl.Any("count", expired))
			}
		}
	}()

	authHandler := handlers.NewAuthHandler(jwtService, redisService)
	userHandler := handlers.NewUserHandler(redisService)
	gameHandler := handlers.NewGameHandler(engine, redisService)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.POST("/auth/wallet", authHandler.ConnectWallet)

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtService))
	protected.Use(middleware.RateLimitMiddleware(redisService))
	{
		protected.GET("/me", userHandler.GetProfile)
		protected.GET("/ws", wsHandler.HandleWebSocket)

		protected.POST("/sessions", gameHandler.StartSession)
		protected.POST("/sessions/:id/complete", gameHandler.CompleteSession)
		protected.GET("/sessions/:id/verify", gameHandler.VerifySession)

		protected.GET("/balance", gameHandler.GetBalance)
		protected.GET("/history", gameHandler.GetHistory)
		protected.GET("/transactions", gameHandler.GetTransactions)
	}

	log.Info("listening", sl.String("port", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Error("server stopped", sl.Err(err))
		os.Exit(1)
	}
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case "production":
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	return log
}
