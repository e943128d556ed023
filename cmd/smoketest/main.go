// smoketest verifies a running local API end to end, including a real
// generation call when GEMINI_API_KEY is set.
// Run with: go run ./cmd/smoketest/main.go
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

const localAPI = "http://localhost:8080"

func main() {
	passed := 0
	failed := 0

	run := func(name string, fn func() error) {
		fmt.Printf("  %-55s", name)
		if err := fn(); err != nil {
			fmt.Printf("FAIL — %v\n", err)
			failed++
		} else {
			fmt.Printf("OK\n")
			passed++
		}
	}

	fmt.Println("\n── Local API ───────────────────────────────────────────────")
	run("GET /health returns 200 + {status:healthy}", checkHealth)
	run("GET / lists endpoints", checkHome)

	fmt.Println("\n── Validation ──────────────────────────────────────────────")
	run("POST /api/bargain without product_details returns 400", checkMissingProduct)
	run("POST /api/bargain/initial without price returns 400", checkMissingPrice)

	fmt.Println("\n── Negotiation ─────────────────────────────────────────────")
	run("POST /api/bargain/initial returns opening message", checkInitial)
	run("POST /api/bargain with empty history greets", checkGreeting)

	fmt.Printf("\n%d passed, %d failed\n\n", passed, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

var client = &http.Client{Timeout: 60 * time.Second}

func checkHealth() error {
	resp, err := client.Get(localAPI + "/health")
	if err != nil {
		return fmt.Errorf("could not reach server (is it running?): %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if body["status"] != "healthy" {
		return fmt.Errorf("expected status=healthy, got %v", body["status"])
	}
	return nil
}

func checkHome() error {
	resp, err := client.Get(localAPI + "/")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if _, ok := body["available_endpoints"]; !ok {
		return fmt.Errorf("missing available_endpoints")
	}
	return nil
}

func post(path string, payload any) (*http.Response, error) {
	b, _ := json.Marshal(payload)
	return client.Post(localAPI+path, "application/json", bytes.NewReader(b))
}

func checkMissingProduct() error {
	resp, err := post("/api/bargain", map[string]any{"conversation_history": []any{}})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		return fmt.Errorf("expected 400, got %d", resp.StatusCode)
	}
	return nil
}

func checkMissingPrice() error {
	resp, err := post("/api/bargain/initial", map[string]any{
		"product_details": map[string]any{"name": "Widget"},
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		return fmt.Errorf("expected 400, got %d", resp.StatusCode)
	}
	return nil
}

func checkInitial() error {
	resp, err := post("/api/bargain/initial", map[string]any{
		"product_details": map[string]any{"name": "Widget", "price": 100},
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if body["initial_message"] == "" {
		return fmt.Errorf("empty initial_message")
	}
	return nil
}

func checkGreeting() error {
	resp, err := post("/api/bargain", map[string]any{
		"product_details":      map[string]any{"name": "Widget", "price": 100},
		"conversation_history": []any{},
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if body["bot_response"] == "" {
		return fmt.Errorf("empty bot_response")
	}
	return nil
}
