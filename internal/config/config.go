package config

import (
	"log"
	"os"
)

type Config struct {
	Addr string

	GeminiAPIKey string

	// Strategy selects the negotiation variant: "steps" or "intent".
	Strategy string

	// DBPath enables the SQLite audit log when non-empty.
	DBPath string

	PromptPath string
}

// Load reads configuration from the environment. A missing GEMINI_API_KEY is
// a warning, not a failure: the process still starts, and requests that need
// the external call fail at call time instead.
func Load() *Config {
	c := &Config{
		Addr:         getenv("ADDR", ":8080"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		Strategy:     getenv("BOT_STRATEGY", "steps"),
		DBPath:       os.Getenv("DB_PATH"),
		PromptPath:   getenv("PROMPT_PATH", "templates/negotiation_prompt.yaml"),
	}

	if c.GeminiAPIKey == "" {
		log.Println("config: warning: GEMINI_API_KEY is not set — generation calls will fail")
	}
	if c.Strategy != "steps" && c.Strategy != "intent" {
		log.Printf("config: unknown BOT_STRATEGY %q, using steps", c.Strategy)
		c.Strategy = "steps"
	}

	return c
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
