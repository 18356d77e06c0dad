package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/aurayouth/server/adapters"
	"github.com/aurayouth/server/adapters/llm"
	"github.com/aurayouth/server/adapters/media"
	mongodb "github.com/aurayouth/server/adapters/mongo"
	"github.com/aurayouth/server/domain/repositories"
	"github.com/aurayouth/server/internal/api"
	"github.com/aurayouth/server/internal/websocket"
	"github.com/aurayouth/server/usecase"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Profile storage: Mongo when reachable, memory-only otherwise.
	var profiles repositories.ProfileRepository
	mongoClient, err := mongodb.NewClient(logger)
	if err != nil {
		logger.Warn("MongoDB unavailable, running in memory-only mode", zap.Error(err))
		profiles = adapters.NewMemoryProfileRepository()
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			mongoClient.Close(ctx)
		}()
		profiles = mongodb.NewProfileRepository(mongoClient.Database)
	}

	// Reply generation: Gemini when configured, otherwise the canned tiers
	// carry the conversation on their own.
	var generator repositories.ReplyGenerator
	if gemini, err := llm.NewGeminiGenerator(logger); err != nil {
		logger.Warn("Reply generator disabled", zap.Error(err))
	} else {
		generator = gemini
	}

	// Initialize usecase services
	emotions := usecase.NewEmotionService(logger)
	responder := usecase.NewResponderService(generator, logger)
	twin := usecase.NewTwinService(profiles, logger)
	chat := usecase.NewChatService(
		emotions,
		responder,
		twin,
		media.NewAudioAnalyzer(logger),
		media.NewVideoAnalyzer(logger),
		logger,
	)

	// Initialize WebSocket hub with the chat pipeline
	hub := websocket.NewHub(chat, logger)
	go hub.Run()

	// Initialize API routes
	api.InitRoutes(e, chat, twin, hub, logger)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("port", port))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
