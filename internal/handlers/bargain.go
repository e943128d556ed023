package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"bargainbot/internal/bot"
	"bargainbot/internal/models"
	"bargainbot/internal/pricing"
	"bargainbot/internal/store"
)

// ─── POST /api/bargain ────────────────────────────────────────────────────────

// HandleBargain runs one negotiation exchange over the caller-supplied
// conversation history. st may be nil (audit logging disabled).
func HandleBargain(b *bot.Bot, st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.BargainRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if !validateProduct(w, req.ProductDetails) {
			return
		}

		product := req.ProductDetails
		result := b.Respond(r.Context(), product, req.ConversationHistory)

		policy := b.Policy()
		minimumPrice := policy.MinimumPrice(product.Price)

		discountPct := 0.0
		if result.OfferedPrice != nil {
			discountPct = round2(pricing.DiscountPercent(product.Price, *result.OfferedPrice))
		}

		var negotiationInfo map[string]any
		if result.Intent != nil {
			negotiationInfo = map[string]any{
				"intent":              result.Intent.Intent,
				"sentiment":           result.Intent.Sentiment,
				"price_mentioned":     result.Intent.PriceMentioned,
				"deal_status":         result.Intent.DealStatus,
				"urgency":             result.Intent.Urgency,
				"cultural_context":    result.Intent.CulturalContext,
				"offered_price":       result.OfferedPrice,
				"discount_percentage": discountPct,
			}
		} else {
			negotiationInfo = map[string]any{
				"step":                result.Step,
				"max_steps":           pricing.MaxSteps,
				"offered_price":       result.OfferedPrice,
				"discount_percentage": discountPct,
				"is_final_offer":      result.Step >= pricing.MaxSteps,
			}
		}

		recordExchange(st, product, result)

		writeJSON(w, http.StatusOK, map[string]any{
			"status":       "success",
			"bot_response": result.BotResponse,
			"language_info": models.LanguageInfo{
				DetectedLanguage: result.DetectedLanguage,
				ResponseLanguage: result.DetectedLanguage,
			},
			"negotiation_info": negotiationInfo,
			"product_info": models.ProductInfo{
				Name:                  product.Name,
				OriginalPrice:         product.Price,
				MinimumPossiblePrice:  minimumPrice,
				MaxDiscountPercentage: policy.MaxDiscountPercent,
			},
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// ─── POST /api/bargain/initial ────────────────────────────────────────────────

func HandleInitial(b *bot.Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.InitialRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if !validateProduct(w, req.ProductDetails) {
			return
		}

		product := req.ProductDetails
		message, language := b.InitialMessage(r.Context(), product, req.Language)

		policy := b.Policy()
		savings := product.Price - policy.MinimumPrice(product.Price)

		writeJSON(w, http.StatusOK, map[string]any{
			"status":          "success",
			"initial_message": message,
			"language_info":   models.LanguageInfo{ResponseLanguage: language},
			"product_info": models.ProductInfo{
				Name:             product.Name,
				OriginalPrice:    product.Price,
				PotentialSavings: fmt.Sprintf("Up to $%.2f possible", savings),
			},
			"negotiation_info": map[string]any{
				"max_discount_percentage": policy.MaxDiscountPercent,
				"total_steps":             pricing.MaxSteps,
				"strategy":                strategyLabel(b.Strategy()),
			},
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// ─── POST /api/bargain/product-info ───────────────────────────────────────────

func HandleProductInfo(b *bot.Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.InitialRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if !validateProduct(w, req.ProductDetails) {
			return
		}

		product := req.ProductDetails
		policy := b.Policy()
		minimumPrice := policy.MinimumPrice(product.Price)

		writeJSON(w, http.StatusOK, map[string]any{
			"status": "success",
			"product_info": models.ProductInfo{
				Name:                  product.Name,
				OriginalPrice:         product.Price,
				MinimumPossiblePrice:  minimumPrice,
				MaxDiscountPercentage: policy.MaxDiscountPercent,
				PotentialSavings:      fmt.Sprintf("Up to $%.2f possible", product.Price-minimumPrice),
			},
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

// validateProduct enforces the request contract: product_details present with
// a name and a positive price. Writes the 400 itself and reports whether the
// caller may proceed.
func validateProduct(w http.ResponseWriter, product *models.ProductDetails) bool {
	if product == nil {
		writeError(w, http.StatusBadRequest, "Missing required field: product_details")
		return false
	}
	if product.Name == "" || product.Price <= 0 {
		writeError(w, http.StatusBadRequest, "Product details must include name and price")
		return false
	}
	return true
}

func recordExchange(st *store.Store, product *models.ProductDetails, result *models.NegotiationResult) {
	if st == nil {
		return
	}
	dealStatus := ""
	if result.Intent != nil {
		dealStatus = result.Intent.DealStatus
	}
	err := st.RecordExchange(&store.Exchange{
		ProductName:   product.Name,
		OriginalPrice: product.Price,
		OfferedPrice:  result.OfferedPrice,
		Step:          result.Step,
		DealStatus:    dealStatus,
		Language:      result.DetectedLanguage,
	})
	if err != nil {
		log.Printf("handlers: audit record failed: %v", err)
	}
}

func strategyLabel(s bot.Strategy) string {
	if s == bot.StrategyIntent {
		return "Intent-driven negotiation"
	}
	return "Step-by-step negotiation"
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// writeJSON encodes v as JSON to w, logging any error.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("handlers: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg, Status: "error"})
}
