// Package handlers tests — uses package-level access to test unexported helpers.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bargainbot/internal/bot"
	"bargainbot/internal/llm"
	"bargainbot/internal/models"
	"bargainbot/internal/pricing"
	"bargainbot/internal/store"
)

// scriptedGen replays canned replies in order; an error entry simulates a
// failed call.
type scriptedGen struct {
	replies []any
}

func (s *scriptedGen) Generate(ctx context.Context, prompt string) (string, error) {
	if len(s.replies) == 0 {
		return "", errors.New("scripted generator exhausted")
	}
	next := s.replies[0]
	s.replies = s.replies[1:]
	if err, ok := next.(error); ok {
		return "", err
	}
	return next.(string), nil
}

func init() {
	llm.SetTemplateForTest()
}

func stepBot(replies ...any) *bot.Bot {
	return bot.New(pricing.Default(), &scriptedGen{replies: replies}, bot.StrategySteps)
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	return body
}

// ─── Validation ───────────────────────────────────────────────────────────────

func TestHandleBargain_MissingProductDetails(t *testing.T) {
	w := postJSON(t, HandleBargain(stepBot(), nil), "/api/bargain", map[string]any{
		"conversation_history": []any{},
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	body := decode(t, w)
	if body["status"] != "error" {
		t.Errorf("expected status=error, got %v", body["status"])
	}
}

func TestHandleBargain_MissingPrice(t *testing.T) {
	w := postJSON(t, HandleBargain(stepBot(), nil), "/api/bargain", map[string]any{
		"product_details": map[string]any{"name": "Widget"},
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if decode(t, w)["status"] != "error" {
		t.Error("expected status=error")
	}
}

func TestHandleBargain_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/bargain", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	HandleBargain(stepBot(), nil)(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ─── POST /api/bargain ────────────────────────────────────────────────────────

func TestHandleBargain_EmptyHistory_Greets(t *testing.T) {
	w := postJSON(t, HandleBargain(stepBot(), nil), "/api/bargain", map[string]any{
		"product_details":      map[string]any{"name": "Widget", "price": 100},
		"conversation_history": []any{},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decode(t, w)
	if body["status"] != "success" {
		t.Errorf("expected status=success, got %v", body["status"])
	}

	info := body["negotiation_info"].(map[string]any)
	if info["step"].(float64) != 1 {
		t.Errorf("step = %v, want 1", info["step"])
	}
	if info["offered_price"] != nil {
		t.Errorf("greeting carries no price, got %v", info["offered_price"])
	}

	lang := body["language_info"].(map[string]any)
	if lang["detected_language"] != "English" {
		t.Errorf("detected_language = %v, want English", lang["detected_language"])
	}
}

func TestHandleBargain_FourUserMessages_FinalOffer(t *testing.T) {
	b := stepBot(
		"English",
		"My final offer is $90.00.",
	)

	history := []map[string]any{
		{"role": "user", "message": "hi", "timestamp": "1"},
		{"role": "user", "message": "discount?", "timestamp": "2"},
		{"role": "user", "message": "more", "timestamp": "3"},
		{"role": "user", "message": "final?", "timestamp": "4"},
	}
	w := postJSON(t, HandleBargain(b, nil), "/api/bargain", map[string]any{
		"product_details":      map[string]any{"name": "Widget", "price": 100},
		"conversation_history": history,
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decode(t, w)

	info := body["negotiation_info"].(map[string]any)
	if info["step"].(float64) != 4 {
		t.Errorf("step = %v, want 4", info["step"])
	}
	if info["is_final_offer"] != true {
		t.Error("step 4 must be the final offer")
	}
	if info["offered_price"].(float64) != 90 {
		t.Errorf("offered_price = %v, want 90", info["offered_price"])
	}
	if info["discount_percentage"].(float64) != 10 {
		t.Errorf("discount_percentage = %v, want 10", info["discount_percentage"])
	}

	product := body["product_info"].(map[string]any)
	if product["minimum_possible_price"].(float64) != 90 {
		t.Errorf("minimum_possible_price = %v, want 90", product["minimum_possible_price"])
	}
	if product["max_discount_percentage"].(float64) != 10 {
		t.Errorf("max_discount_percentage = %v, want 10", product["max_discount_percentage"])
	}
}

func TestHandleBargain_GenerationFailure_ApologyNotError(t *testing.T) {
	b := stepBot(
		"English",
		errors.New("service down"),
	)

	w := postJSON(t, HandleBargain(b, nil), "/api/bargain", map[string]any{
		"product_details": map[string]any{"name": "Widget", "price": 100},
		"conversation_history": []map[string]any{
			{"role": "user", "message": "hi", "timestamp": "1"},
		},
	})

	// External-call failure is a handled outcome, never a 500.
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decode(t, w)
	if !strings.Contains(body["bot_response"].(string), "I apologize") {
		t.Errorf("expected apology, got %v", body["bot_response"])
	}
	info := body["negotiation_info"].(map[string]any)
	if info["offered_price"] != nil {
		t.Error("apology must carry no price")
	}
}

func TestHandleBargain_IntentVariant_Envelope(t *testing.T) {
	b := bot.New(pricing.Default(), &scriptedGen{replies: []any{
		"English",
		`{"intent":"negotiation_request","sentiment":"neutral","price_mentioned":null,"deal_status":"actively_negotiating","urgency":"medium","cultural_context":"neutral"}`,
		"How about $95.00?",
	}}, bot.StrategyIntent)

	w := postJSON(t, HandleBargain(b, nil), "/api/bargain", map[string]any{
		"product_details": map[string]any{"name": "Widget", "price": 100},
		"conversation_history": []map[string]any{
			{"role": "user", "message": "cheaper?", "timestamp": "1"},
		},
	})

	body := decode(t, w)
	info := body["negotiation_info"].(map[string]any)
	if info["intent"] != "negotiation_request" {
		t.Errorf("intent = %v, want negotiation_request", info["intent"])
	}
	if info["deal_status"] != "actively_negotiating" {
		t.Errorf("deal_status = %v", info["deal_status"])
	}
	if _, hasStep := info["step"]; hasStep {
		t.Error("intent envelope must not carry a step counter")
	}
}

func TestHandleBargain_RecordsAudit(t *testing.T) {
	st := store.Init(":memory:")
	t.Cleanup(func() { st.Close() })

	b := stepBot("English", "Sure, $97.00.")
	w := postJSON(t, HandleBargain(b, st), "/api/bargain", map[string]any{
		"product_details": map[string]any{"name": "Widget", "price": 100},
		"conversation_history": []map[string]any{
			{"role": "user", "message": "hi", "timestamp": "1"},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	got, err := st.RecentExchanges(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 audit row, got %d", len(got))
	}
	if got[0].ProductName != "Widget" || got[0].OfferedPrice == nil || *got[0].OfferedPrice != 97 {
		t.Errorf("unexpected audit row: %+v", got[0])
	}
}

// ─── POST /api/bargain/initial ────────────────────────────────────────────────

func TestHandleInitial_English(t *testing.T) {
	w := postJSON(t, HandleInitial(stepBot()), "/api/bargain/initial", map[string]any{
		"product_details": map[string]any{"name": "Widget", "price": 100},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decode(t, w)
	if !strings.Contains(body["initial_message"].(string), "Widget") {
		t.Errorf("opening missing product name: %v", body["initial_message"])
	}

	product := body["product_info"].(map[string]any)
	if product["potential_savings"] != "Up to $10.00 possible" {
		t.Errorf("potential_savings = %v", product["potential_savings"])
	}

	lang := body["language_info"].(map[string]any)
	if lang["response_language"] != "English" {
		t.Errorf("response_language = %v, want English", lang["response_language"])
	}
}

func TestHandleInitial_NonEnglishFallsBackOnFailure(t *testing.T) {
	b := stepBot(errors.New("unavailable"))

	w := postJSON(t, HandleInitial(b), "/api/bargain/initial", map[string]any{
		"product_details": map[string]any{"name": "Widget", "price": 100},
		"language":        "Spanish",
	})

	body := decode(t, w)
	lang := body["language_info"].(map[string]any)
	if lang["response_language"] != "English" {
		t.Errorf("response_language = %v, want English fallback", lang["response_language"])
	}
}

func TestHandleInitial_MissingProduct(t *testing.T) {
	w := postJSON(t, HandleInitial(stepBot()), "/api/bargain/initial", map[string]any{
		"language": "Spanish",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ─── POST /api/bargain/product-info ───────────────────────────────────────────

func TestHandleProductInfo(t *testing.T) {
	w := postJSON(t, HandleProductInfo(stepBot()), "/api/bargain/product-info", map[string]any{
		"product_details": map[string]any{"name": "Widget", "price": 100},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	product := decode(t, w)["product_info"].(map[string]any)
	if product["minimum_possible_price"].(float64) != 90 {
		t.Errorf("minimum_possible_price = %v, want 90", product["minimum_possible_price"])
	}
}

// ─── GET / and /health ────────────────────────────────────────────────────────

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	HealthCheck(stepBot())(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if decode(t, w)["status"] != "healthy" {
		t.Error("expected status=healthy")
	}
}

func TestHome_ListsEndpoints(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	Home(stepBot())(w, req)

	body := decode(t, w)
	endpoints := body["available_endpoints"].(map[string]any)
	if endpoints["bargain_chat"] != "POST /api/bargain" {
		t.Errorf("unexpected endpoint listing: %v", endpoints)
	}
	if body["max_discount"] != "10%" {
		t.Errorf("max_discount = %v, want 10%%", body["max_discount"])
	}
}

// ─── Recover middleware ───────────────────────────────────────────────────────

func TestRecover_PanicBecomes500(t *testing.T) {
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	body := decode(t, w)
	if body["status"] != "error" {
		t.Errorf("expected status=error, got %v", body["status"])
	}
	if !strings.Contains(body["error"].(string), "boom") {
		t.Errorf("error body must carry the panic message, got %v", body["error"])
	}
}

// ─── models sanity ────────────────────────────────────────────────────────────

func TestBargainRequest_Decode(t *testing.T) {
	raw := `{"product_details":{"name":"Widget","price":100},"conversation_history":[{"role":"user","message":"hi","timestamp":"2024-01-01T00:00:00Z"}]}`

	var req models.BargainRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		t.Fatal(err)
	}
	if req.ProductDetails == nil || req.ProductDetails.Price != 100 {
		t.Errorf("unexpected product: %+v", req.ProductDetails)
	}
	if len(req.ConversationHistory) != 1 || req.ConversationHistory[0].Role != "user" {
		t.Errorf("unexpected history: %+v", req.ConversationHistory)
	}
}
