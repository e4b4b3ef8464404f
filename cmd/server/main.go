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

	"chatrelay-backend/internal/config"
	"chatrelay-backend/internal/handlers"
	"chatrelay-backend/internal/router"
	"chatrelay-backend/internal/services"
)

func main() {
	log.Println("🚀 Starting Chat Relay Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")
	if cfg.GroqAPIKey == "" {
		log.Println("⚠ GROQ_API_KEY not set; /chat will answer 500 until it is configured")
	}

	// ──── Step 2: Load Knowledge Base & FAQ ────
	kb := services.LoadKnowledgeBase(cfg.KnowledgePath, cfg.ContactNote)
	log.Printf("✓ Knowledge base loaded (%d snippets)", kb.Len())

	faq := services.LoadFAQIndex(cfg.FAQPath)
	log.Printf("✓ FAQ index loaded (%d entries)", faq.Len())

	// ──── Step 3: Initialize Services ────
	groqService := services.NewGroqService(cfg.GroqAPIKey, cfg.GroqAPIURL, cfg.Model, cfg.MaxTokens)
	assistService := services.NewAssistService(kb, faq, groqService, cfg.ContactNote)
	log.Printf("✓ Groq client initialized (model %s, max tokens %d)", cfg.Model, cfg.MaxTokens)

	// ──── Step 4: Initialize Handlers ────
	chatHandler := handlers.NewChatHandler(cfg.GroqAPIKey, groqService)
	askHandler := handlers.NewAskHandler(assistService)

	// ──── Step 5: Start HTTP Server ────
	r := router.New(chatHandler, askHandler)

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
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

	log.Printf("✓ Chat Relay Backend ready on http://localhost:%s", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
