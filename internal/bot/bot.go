// Package bot sequences one negotiation exchange: derive state from the
// conversation, compose a prompt, invoke the generator, extract the offered
// price, assemble the result. Stateless; every request is reconstructed from
// the history the caller supplies.
package bot

import (
	"context"
	"log"

	"bargainbot/internal/llm"
	"bargainbot/internal/models"
	"bargainbot/internal/negotiation"
	"bargainbot/internal/pricing"
)

// Strategy selects which negotiation variant drives the prompt.
type Strategy string

const (
	// StrategySteps counts user messages and walks a fixed discount table.
	StrategySteps Strategy = "steps"
	// StrategyIntent classifies the customer's turn and negotiates on intent.
	StrategyIntent Strategy = "intent"
)

const (
	defaultLanguage = "English"

	greetingMessage = "I'm here to help you get the best deal! What would you like to know about this item?"
	apologyMessage  = "I apologize, but I'm having trouble processing your request right now. Please try again."
)

type Bot struct {
	policy   pricing.Policy
	gen      llm.Generator
	strategy Strategy
}

func New(policy pricing.Policy, gen llm.Generator, strategy Strategy) *Bot {
	return &Bot{policy: policy, gen: gen, strategy: strategy}
}

func (b *Bot) Policy() pricing.Policy { return b.policy }

func (b *Bot) Strategy() Strategy { return b.strategy }

// Respond runs one exchange. It never returns an error: a failed generation
// collapses to a fixed apology with state reset to initial defaults.
func (b *Bot) Respond(ctx context.Context, product *models.ProductDetails, history []models.ConversationMessage) *models.NegotiationResult {
	userMessage, ok := negotiation.LatestUserMessage(history)
	if !ok {
		// Start of conversation: canned greeting, no price, default state.
		return b.greetingResult()
	}

	language := llm.DetectLanguage(ctx, b.gen, userMessage)

	if b.strategy == StrategyIntent {
		return b.respondIntent(ctx, product, history, language, userMessage)
	}
	return b.respondSteps(ctx, product, history, language, userMessage)
}

func (b *Bot) respondSteps(ctx context.Context, product *models.ProductDetails, history []models.ConversationMessage, language, userMessage string) *models.NegotiationResult {
	step := negotiation.StepFromHistory(history)

	prompt := llm.ComposeStepPrompt(b.policy, product, history, step, language, userMessage)
	reply, err := b.gen.Generate(ctx, prompt)
	if err != nil {
		log.Printf("bot: generation failed: %v", err)
		return b.apologyResult()
	}

	result := &models.NegotiationResult{
		BotResponse:      reply,
		Step:             step,
		DetectedLanguage: language,
	}
	if price, ok := negotiation.ExtractPrice(reply); ok {
		result.OfferedPrice = &price
	}
	return result
}

func (b *Bot) respondIntent(ctx context.Context, product *models.ProductDetails, history []models.ConversationMessage, language, userMessage string) *models.NegotiationResult {
	intent := llm.ClassifyIntent(ctx, b.gen, history, userMessage)
	offers := previousOffers(history)

	prompt := llm.ComposeIntentPrompt(b.policy, product, history, intent, offers, language, userMessage)
	reply, err := b.gen.Generate(ctx, prompt)
	if err != nil {
		log.Printf("bot: generation failed: %v", err)
		return b.apologyResult()
	}

	// Secondary closed-deal signal from the generated text itself.
	if negotiation.DealClosed(reply) {
		intent.DealStatus = "deal_closed"
	}

	result := &models.NegotiationResult{
		BotResponse:      reply,
		Step:             negotiation.StepFromHistory(history),
		Intent:           intent,
		DetectedLanguage: language,
	}
	if price, ok := negotiation.ExtractPrice(reply); ok {
		result.OfferedPrice = &price
	}
	return result
}

func (b *Bot) greetingResult() *models.NegotiationResult {
	result := &models.NegotiationResult{
		BotResponse:      greetingMessage,
		Step:             1,
		DetectedLanguage: defaultLanguage,
	}
	if b.strategy == StrategyIntent {
		result.Intent = &models.IntentRecord{
			Intent:          "greeting",
			Sentiment:       "neutral",
			DealStatus:      "just_started",
			Urgency:         "low",
			CulturalContext: "neutral",
		}
	}
	return result
}

func (b *Bot) apologyResult() *models.NegotiationResult {
	result := &models.NegotiationResult{
		BotResponse:      apologyMessage,
		Step:             1,
		DetectedLanguage: defaultLanguage,
	}
	if b.strategy == StrategyIntent {
		result.Intent = llm.FallbackIntent()
	}
	return result
}

// previousOffers lists the prices already quoted in assistant messages, in
// history order, so the prompt can tell the model not to repeat itself.
func previousOffers(history []models.ConversationMessage) []float64 {
	var offers []float64
	for _, m := range history {
		if m.Role != "assistant" {
			continue
		}
		if price, ok := negotiation.ExtractPrice(m.Message); ok {
			offers = append(offers, price)
		}
	}
	return offers
}
