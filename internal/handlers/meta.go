package handlers

import (
	"fmt"
	"net/http"
	"time"

	"bargainbot/internal/bot"
)

const serviceName = "Universal Multilingual Bargaining Chatbot API"

// Home describes the API.
func Home(b *bot.Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"message":     serviceName,
			"status":      "running",
			"description": "Negotiate prices for any product in multiple languages",
			"features": []string{
				"Multi-language support",
				"Automatic language detection",
				"Cultural negotiation adaptation",
				"Price negotiation in any language",
			},
			"available_endpoints": map[string]string{
				"health_check":    "GET /health",
				"initial_message": "POST /api/bargain/initial",
				"bargain_chat":    "POST /api/bargain",
				"product_info":    "POST /api/bargain/product-info",
			},
			"max_discount": fmt.Sprintf("%.0f%%", b.Policy().MaxDiscountPercent),
			"strategy":     strategyLabel(b.Strategy()),
			"timestamp":    time.Now().Format(time.RFC3339),
		})
	}
}

// HealthCheck reports service liveness.
func HealthCheck(b *bot.Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":       "healthy",
			"service":      serviceName,
			"max_discount": fmt.Sprintf("%.0f%%", b.Policy().MaxDiscountPercent),
			"timestamp":    time.Now().Format(time.RFC3339),
		})
	}
}

// Recover converts panics into 500 responses carrying the panic message.
// Leaking internal error text to callers is debug-friendly rather than
// production-safe; kept deliberately, see DESIGN.md.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				writeError(w, http.StatusInternalServerError, fmt.Sprintf("Internal server error: %v", rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
