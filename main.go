package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/voice-memo/backend/internal/api"
	"github.com/voice-memo/backend/internal/auth"
	"github.com/voice-memo/backend/internal/config"
	"github.com/voice-memo/backend/internal/db"
	"github.com/voice-memo/backend/internal/heph"
	"github.com/voice-memo/backend/internal/ollama"
	"github.com/voice-memo/backend/internal/pipeline"
)

func main() {
	cfg := config.Load()

	// Ensure data directories exist
	os.MkdirAll(cfg.DataPath, 0755)
	os.MkdirAll(cfg.AudioPath, 0755)

	// Initialize database
	database, err := db.NewSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Ensure admin user exists
	if err := database.EnsureAdmin(cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}
	log.Printf("Admin user ensured: %s", cfg.AdminUsername)

	// Remote clients
	hephClient := heph.NewClient(cfg.HephBaseURL, cfg.HephAPIKey, cfg.HephEmail, cfg.HephPassword)
	if hephClient.Configured() {
		log.Printf("Heph transcription provider: %s", cfg.HephBaseURL)
	} else {
		log.Printf("WARNING: Heph provider not configured, transcription disabled")
	}
	ollamaClient := ollama.NewClient(cfg.OllamaBaseURL)
	if ollamaClient.Configured() {
		log.Printf("Ollama summarizer: %s (model %s)", cfg.OllamaBaseURL, cfg.OllamaModel)
	} else {
		log.Printf("WARNING: Ollama summarizer not configured, summarization disabled")
	}

	// Pipeline
	pipe := pipeline.New(database, hephClient, ollamaClient, pipeline.Options{
		AudioPath:       cfg.AudioPath,
		WhisperModel:    cfg.WhisperModel,
		SummaryModel:    cfg.OllamaModel,
		PollInterval:    cfg.PollInterval,
		MaxPollAttempts: cfg.MaxPollAttempts,
		AutoSummarize:   cfg.AutoSummarize,
	})

	// Initialize JWT service
	jwtService := auth.NewJWTService(cfg.JWTSecret)

	// Create router
	router := api.NewRouter(database, jwtService, cfg, pipe)

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("Starting server on %s", addr)
	log.Printf("Audio path: %s", cfg.AudioPath)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")
		os.Exit(0)
	}()

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
