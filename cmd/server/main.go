package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"precisionquiz-backend/internal/config"
	"precisionquiz-backend/internal/database"
	"precisionquiz-backend/internal/handlers"
	"precisionquiz-backend/internal/middleware"
	"precisionquiz-backend/internal/repository"
	"precisionquiz-backend/internal/router"
	"precisionquiz-backend/internal/services"
	"precisionquiz-backend/internal/websocket"
)

func main() {
	log.Println("🚀 Starting Precision Quiz Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	sessionRepo := repository.NewSessionRepo(redisClients.Store, cfg.SessionTTL)

	// ──── Step 3: Initialize Gemini Client ────
	gemini, err := services.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiConcurrentReqs, cfg.GeminiTimeout)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer gemini.Close()
	log.Printf("✓ Gemini client initialized (%s)", cfg.GeminiModel)

	// ──── Step 4: Wire the document-to-quiz pipeline ────
	pipeline := services.NewPipeline(
		services.NewFileExtractService(),
		services.NewQuestionGenerator(gemini),
		sessionRepo,
		cfg.MinTextLength,
	)

	sessionAuth := middleware.NewSessionAuth(cfg.SessionSecret, cfg.SessionTTL)
	uploadLimiter := middleware.NewRateLimiter(cfg.UploadRateLimit, time.Minute)
	defer uploadLimiter.Stop()

	// one pipeline run may wait up to a minute for a Gemini slot before its call starts
	uploadTimeout := cfg.GeminiTimeout + time.Minute

	contentHandler := handlers.NewContentHandler()
	quizHandler := handlers.NewQuizHandler(sessionRepo, pipeline, sessionAuth, cfg.MaxUploadBytes, uploadTimeout)

	// ──── Step 5: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, sessionAuth)
	defer wsHub.Close()
	log.Println("✓ WebSocket hub started")

	// ──── Step 6: Start HTTP Server ────
	r := router.New(
		sessionAuth,
		uploadLimiter,
		contentHandler,
		quizHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: uploadTimeout + time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Precision Quiz Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
