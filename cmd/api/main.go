package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"bargainbot/internal/bot"
	"bargainbot/internal/config"
	"bargainbot/internal/handlers"
	"bargainbot/internal/llm"
	"bargainbot/internal/pricing"
	"bargainbot/internal/store"
)

func main() {
	// 1. Load environment configuration. Missing API key warns, never aborts.
	cfg := config.Load()

	// 2. Load and compile the YAML prompt template.
	llm.LoadPrompt(cfg.PromptPath)

	// 3. Build the Gemini-backed generator.
	gen, err := llm.NewGeminiClient(context.Background(), cfg.GeminiAPIKey)
	if err != nil {
		log.Fatalf("llm: %v", err)
	}

	// 4. Optional SQLite audit log.
	var st *store.Store
	if cfg.DBPath != "" {
		st = store.Init(cfg.DBPath)
	} else {
		log.Println("store: DB_PATH not set, audit log disabled")
	}

	b := bot.New(pricing.Default(), gen, bot.Strategy(cfg.Strategy))

	// 5. Set up the router.
	r := mux.NewRouter()
	r.Use(handlers.Recover)

	r.HandleFunc("/", handlers.Home(b)).Methods(http.MethodGet)
	r.HandleFunc("/health", handlers.HealthCheck(b)).Methods(http.MethodGet)

	r.HandleFunc("/api/bargain", handlers.HandleBargain(b, st)).Methods(http.MethodPost)
	r.HandleFunc("/api/bargain/initial", handlers.HandleInitial(b)).Methods(http.MethodPost)
	r.HandleFunc("/api/bargain/product-info", handlers.HandleProductInfo(b)).Methods(http.MethodPost)

	// 6. Start the server.
	log.Printf("server: listening on %s (strategy=%s)", cfg.Addr, cfg.Strategy)
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		log.Fatalf("server: %v", err)
	}
}
