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

	"candor.io/interview-agent/internal/api"
	"candor.io/interview-agent/internal/auth"
	"candor.io/interview-agent/internal/cache"
	"candor.io/interview-agent/internal/config"
	"candor.io/interview-agent/internal/core"
	"candor.io/interview-agent/internal/llm"
	"candor.io/interview-agent/internal/speech"
	"candor.io/interview-agent/internal/store"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if cfg.LogLevel == "DEBUG" {
		log.Println("Service starting in DEBUG mode")
	}

	// Initialize database store
	dbStore, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbStore.Close()

	// Initialize the response cache (optional; nil-safe when Redis is absent)
	responseCache := cache.New(cfg.RedisURL, cfg.RedisPassword)
	defer responseCache.Close()

	// Initialize LLM client
	generator := llm.NewOpenAIClient(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel)

	// Initialize services
	platformService := core.NewPlatformService(dbStore, responseCache)
	interviewService := core.NewInterviewService(dbStore, generator)
	speechService := speech.NewMockService()
	authManager := auth.NewManager(cfg.JWTSecret)

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(platformService, interviewService, speechService, authManager)
	router := api.NewRouter(apiHandler, cfg.ChatRateLimit)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // LLM calls can take time
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give active connections time to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting gracefully")
}
