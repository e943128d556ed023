package bot

import (
	"context"
	"fmt"
	"log"
	"strings"

	"bargainbot/internal/llm"
	"bargainbot/internal/models"
)

// PriceContext buckets a price into the phrase used when greeting a customer.
func PriceContext(price float64) string {
	switch {
	case price < 50:
		return "affordable"
	case price < 200:
		return "reasonably priced"
	case price < 500:
		return "premium"
	default:
		return "high-end"
	}
}

func englishOpening(product *models.ProductDetails) string {
	return fmt.Sprintf(
		"Hello! I see you're interested in the %s listed at $%.2f. It's a %s item and I'm here to help you get the best possible deal! What would you like to discuss about this product?",
		product.Name, product.Price, PriceContext(product.Price),
	)
}

// InitialMessage produces the opening message for a product. English openings
// are canned; other languages are generated, with the English opening as the
// fallback when generation fails (the returned language is then "English").
func (b *Bot) InitialMessage(ctx context.Context, product *models.ProductDetails, language string) (message, responseLanguage string) {
	if language == "" || strings.EqualFold(language, defaultLanguage) {
		return englishOpening(product), defaultLanguage
	}

	prompt := llm.ComposeInitialPrompt(product, language, PriceContext(product.Price))
	reply, err := b.gen.Generate(ctx, prompt)
	if err != nil {
		log.Printf("bot: initial message generation failed: %v", err)
		return englishOpening(product), defaultLanguage
	}
	return strings.TrimSpace(reply), language
}
