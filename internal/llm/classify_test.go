package llm

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"bargainbot/internal/models"
)

// fakeGen returns a canned reply, or an error when err is set.
type fakeGen struct {
	reply string
	err   error
}

func (f *fakeGen) Generate(ctx context.Context, prompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// ─── Language detection ───────────────────────────────────────────────────────

func TestDetectLanguage_ReturnsLanguageName(t *testing.T) {
	g := &fakeGen{reply: "Spanish\n"}
	if got := DetectLanguage(context.Background(), g, "hola"); got != "Spanish" {
		t.Errorf("DetectLanguage = %q, want Spanish", got)
	}
}

func TestDetectLanguage_StripsQuotes(t *testing.T) {
	g := &fakeGen{reply: `"French"`}
	if got := DetectLanguage(context.Background(), g, "bonjour"); got != "French" {
		t.Errorf("DetectLanguage = %q, want French", got)
	}
}

func TestDetectLanguage_CallFailure_FallsBackToEnglish(t *testing.T) {
	g := &fakeGen{err: errors.New("quota exceeded")}
	if got := DetectLanguage(context.Background(), g, "hola"); got != "English" {
		t.Errorf("DetectLanguage = %q, want English on failure", got)
	}
}

func TestDetectLanguage_EmptyReply_FallsBackToEnglish(t *testing.T) {
	g := &fakeGen{reply: "  "}
	if got := DetectLanguage(context.Background(), g, "hi"); got != "English" {
		t.Errorf("DetectLanguage = %q, want English on empty reply", got)
	}
}

// ─── Intent classification ────────────────────────────────────────────────────

func TestClassifyIntent_ParsesRecord(t *testing.T) {
	g := &fakeGen{reply: `{
		"intent": "acceptance",
		"sentiment": "positive",
		"price_mentioned": 92.5,
		"deal_status": "user_accepted",
		"urgency": "high",
		"cultural_context": "direct"
	}`}

	got := ClassifyIntent(context.Background(), g, nil, "deal, I'll take it at $92.50")
	if got.Intent != "acceptance" || got.DealStatus != "user_accepted" {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.PriceMentioned == nil || *got.PriceMentioned != 92.5 {
		t.Errorf("price_mentioned = %v, want 92.5", got.PriceMentioned)
	}
}

func TestClassifyIntent_UnwrapsMarkdownFences(t *testing.T) {
	g := &fakeGen{reply: "```json\n{\"intent\":\"question\",\"sentiment\":\"neutral\",\"price_mentioned\":null,\"deal_status\":\"actively_negotiating\",\"urgency\":\"low\",\"cultural_context\":\"neutral\"}\n```"}

	got := ClassifyIntent(context.Background(), g, nil, "does it ship?")
	if got.Intent != "question" {
		t.Errorf("intent = %q, want question", got.Intent)
	}
}

func TestClassifyIntent_MalformedReply_ExactFallback(t *testing.T) {
	g := &fakeGen{reply: "I think the customer wants a discount."}

	got := ClassifyIntent(context.Background(), g, nil, "cheaper?")
	if !reflect.DeepEqual(got, FallbackIntent()) {
		t.Errorf("expected exact fallback record, got %+v", got)
	}
}

func TestClassifyIntent_CallFailure_ExactFallback(t *testing.T) {
	g := &fakeGen{err: errors.New("network down")}

	got := ClassifyIntent(context.Background(), g, nil, "cheaper?")
	want := &models.IntentRecord{
		Intent:          "negotiation_request",
		Sentiment:       "neutral",
		PriceMentioned:  nil,
		DealStatus:      "actively_negotiating",
		Urgency:         "medium",
		CulturalContext: "neutral",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("fallback record = %+v, want %+v", got, want)
	}
}

func TestParseIntentReply_MissingRequiredFields(t *testing.T) {
	if _, err := parseIntentReply(`{"sentiment":"neutral"}`); err == nil {
		t.Error("expected error for record without intent/deal_status")
	}
}
