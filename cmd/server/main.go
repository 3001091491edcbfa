package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"furniture_board/internal/board"
	"furniture_board/internal/config"
	"furniture_board/internal/database"
	"furniture_board/internal/handlers"
	"furniture_board/internal/logger"
	"furniture_board/internal/middleware"
	"furniture_board/internal/migrations"
	"furniture_board/internal/redis"
	"furniture_board/internal/repository"
	"furniture_board/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zapLogger, err := logger.New(cfg)
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	defer zapLogger.Sync()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := migrations.RunMigrations(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Redis only backs preferences and drafts; the board works without it.
	var cache handlers.SessionCache
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		zapLogger.Warn("Redis unavailable, preferences and drafts disabled", zap.Error(err))
	} else {
		cache = redisClient
		defer redisClient.Close()
	}

	repos := repository.NewRepositories(db)
	gateway := services.NewGateway(repos)

	store := board.NewStore(gateway, zapLogger, cfg.EventBuffer)
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	store.LoadData(loadCtx)
	cancelLoad()
	if msg := store.Snapshot().Error; msg != "" {
		zapLogger.Warn("Initial board load failed", zap.String("error", msg))
	}

	drag := board.NewDragController(store)
	intake := board.NewIntake(store, cfg.DefaultPaymentTerms)
	drafts := handlers.NewDrafts(cache, cfg.DraftExpiry(), zapLogger)

	// Setup routes
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Session(), middleware.Logger(zapLogger))

	router.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	handlers.NewBoardHandler(store, drag, cache, cfg.PreferencesExpiry(), zapLogger).RegisterRoutes(api)
	handlers.NewOrderHandler(store, intake, drafts).RegisterRoutes(api)
	handlers.NewExpenseHandler(store, intake, drafts).RegisterRoutes(api)
	handlers.NewDirectoryHandler(store, intake).RegisterRoutes(api)
	handlers.NewTransactionHandler(gateway).RegisterRoutes(api)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // event streams stay open
	}

	go func() {
		zapLogger.Info("Server starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace())
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exited")
}
