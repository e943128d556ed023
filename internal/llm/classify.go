package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"bargainbot/internal/models"
)

// ─── Language detection ───────────────────────────────────────────────────────

// DetectLanguage asks the generator which language the text is in and returns
// the bare language name. Any failure, or an unusable reply, falls back to
// "English".
func DetectLanguage(ctx context.Context, g Generator, text string) string {
	prompt := fmt.Sprintf(`Detect the language of this text and respond with ONLY the language name in English (e.g., "Spanish", "French", "Arabic", "Hindi", "Chinese", "Japanese", "German", etc.):

Text: "%s"

If the text is in English or you cannot determine the language, respond with "English".
Respond with only the language name, nothing else.`, text)

	reply, err := g.Generate(ctx, prompt)
	if err != nil {
		log.Printf("llm: language detection failed: %v", err)
		return "English"
	}

	language := strings.TrimSpace(reply)
	language = strings.Trim(language, `"'`)
	if language == "" {
		return "English"
	}
	return language
}

// ─── Intent classification ────────────────────────────────────────────────────

// FallbackIntent is the record used whenever classification cannot produce a
// parseable result. Exact and deterministic: tests force a parse failure and
// compare against this verbatim.
func FallbackIntent() *models.IntentRecord {
	return &models.IntentRecord{
		Intent:          "negotiation_request",
		Sentiment:       "neutral",
		PriceMentioned:  nil,
		DealStatus:      "actively_negotiating",
		Urgency:         "medium",
		CulturalContext: "neutral",
	}
}

// ClassifyIntent asks the generator to classify the customer's latest turn
// into a fixed-schema record. Never fails: call errors and malformed replies
// both yield FallbackIntent.
func ClassifyIntent(ctx context.Context, g Generator, history []models.ConversationMessage, userMessage string) *models.IntentRecord {
	prompt := fmt.Sprintf(`Analyze the customer's latest message in a price negotiation and respond with ONLY a JSON object matching this exact schema — no extra text, no markdown fences:
{
  "intent": "<one of: greeting | price_inquiry | negotiation_request | acceptance | rejection | question | complaint | goodbye>",
  "sentiment": "<one of: positive | neutral | negative | frustrated>",
  "price_mentioned": <number or null>,
  "deal_status": "<one of: just_started | actively_negotiating | user_accepted | user_rejected | deal_closed>",
  "urgency": "<one of: low | medium | high>",
  "cultural_context": "<short description, or 'neutral'>"
}

%s

Customer's latest message: "%s"`, FormatHistory(history), userMessage)

	reply, err := g.Generate(ctx, prompt)
	if err != nil {
		log.Printf("llm: intent classification failed: %v", err)
		return FallbackIntent()
	}

	record, err := parseIntentReply(reply)
	if err != nil {
		log.Printf("llm: intent parse failed: %v", err)
		return FallbackIntent()
	}
	return record
}

// parseIntentReply extracts the JSON object from the model's reply. Models
// sometimes wrap JSON in markdown fences or prose, so parsing starts at the
// first '{' and ends at the last '}'.
func parseIntentReply(reply string) (*models.IntentRecord, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in reply")
	}

	var record models.IntentRecord
	if err := json.Unmarshal([]byte(reply[start:end+1]), &record); err != nil {
		return nil, fmt.Errorf("unmarshal intent: %w", err)
	}
	if record.Intent == "" || record.DealStatus == "" {
		return nil, fmt.Errorf("intent reply missing required fields")
	}
	return &record, nil
}
