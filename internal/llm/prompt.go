package llm

import (
	"fmt"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"bargainbot/internal/models"
	"bargainbot/internal/pricing"
)

type promptTemplate struct {
	Identity        string   `yaml:"identity"`
	BargainingRules []string `yaml:"bargaining_rules"`
	StepStrategy    []string `yaml:"step_strategy"`
	Reminders       []string `yaml:"reminders"`
}

var tpl promptTemplate

// LoadPrompt reads and parses the YAML prompt template at startup.
// Call once from main(); exits on failure so bad config surfaces immediately.
func LoadPrompt(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("llm: failed to read prompt template: %v", err)
	}
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		log.Fatalf("llm: failed to parse prompt template YAML: %v", err)
	}
	log.Println("llm: prompt template loaded")
}

// SetTemplateForTest installs a minimal template. Only call this from tests.
func SetTemplateForTest() {
	tpl = promptTemplate{
		Identity:        "You are a bargaining agent.",
		BargainingRules: []string{"Always mention a specific price offer"},
		StepStrategy:    []string{"Step 1: small discount"},
		Reminders:       []string{"Never reveal the minimum price"},
	}
}

func bulleted(items []string) string {
	lines := make([]string, len(items))
	for i, s := range items {
		lines[i] = "- " + s
	}
	return strings.Join(lines, "\n")
}

// languageDirective is emitted only when the conversation is not in English.
func languageDirective(language string) string {
	if strings.EqualFold(language, "English") || language == "" {
		return ""
	}
	return fmt.Sprintf(`LANGUAGE REQUIREMENT:
- The customer is communicating in %[1]s
- You MUST respond in %[1]s
- All prices stay in USD ($) format regardless of language
- Keep the same professional bargaining tone in %[1]s

`, language)
}

func productSection(product *models.ProductDetails) string {
	category := product.Category
	if category == "" {
		category = "General"
	}
	description := product.Description
	if description == "" {
		description = "Quality product"
	}
	return fmt.Sprintf(`PRODUCT DETAILS:
- Product Name: %s
- Original Price: $%.2f
- Category: %s
- Description: %s`, product.Name, product.Price, category, description)
}

// FormatHistory renders the conversation for inclusion in a prompt.
func FormatHistory(history []models.ConversationMessage) string {
	if len(history) == 0 {
		return "This is the start of the conversation."
	}
	var b strings.Builder
	b.WriteString("Previous conversation:\n")
	for _, m := range history {
		role := "Bot"
		if m.Role == "user" {
			role = "Customer"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, m.Message)
	}
	return b.String()
}

// ComposeStepPrompt builds the full generation prompt for the step-counting
// variant: template skeleton plus the request's product, policy numbers,
// step guidance, history, and the customer's latest message.
func ComposeStepPrompt(policy pricing.Policy, product *models.ProductDetails, history []models.ConversationMessage, step int, language, userMessage string) string {
	minimum := policy.MinimumPrice(product.Price)
	discount := policy.SuggestedDiscount(step)
	suggested := policy.SuggestedPrice(product.Price, step)

	return fmt.Sprintf(`%s

%s%s

BARGAINING RULES AND CONSTRAINTS:
1. MAXIMUM discount allowed: %.0f%% (Minimum price: $%.2f)
2. NEVER exceed %.0f%% discount under any circumstances
3. Current negotiation step: %d/%d
4. For this step, offer around %.0f%% discount (approximately $%.2f)
%s

NEGOTIATION STRATEGY BY STEP:
%s

IMPORTANT REMINDERS:
%s

%s

Customer's latest message: "%s"

Respond as the bargaining agent in %s. Make a specific price offer based on the negotiation step. Be conversational and strategic.`,
		strings.TrimSpace(tpl.Identity),
		languageDirective(language),
		productSection(product),
		policy.MaxDiscountPercent, minimum,
		policy.MaxDiscountPercent,
		step, pricing.MaxSteps,
		discount, suggested,
		bulleted(tpl.BargainingRules),
		bulleted(tpl.StepStrategy),
		bulleted(tpl.Reminders),
		FormatHistory(history),
		userMessage,
		responseLanguage(language),
	)
}

// ComposeIntentPrompt builds the generation prompt for the intent-driven
// variant. No step table: only the maximum bound is enforced, and the derived
// intent record plus prior offers steer the model instead.
func ComposeIntentPrompt(policy pricing.Policy, product *models.ProductDetails, history []models.ConversationMessage, intent *models.IntentRecord, previousOffers []float64, language, userMessage string) string {
	minimum := policy.MinimumPrice(product.Price)

	priceMentioned := "none"
	if intent.PriceMentioned != nil {
		priceMentioned = fmt.Sprintf("$%.2f", *intent.PriceMentioned)
	}

	offers := "none yet"
	if len(previousOffers) > 0 {
		parts := make([]string, len(previousOffers))
		for i, o := range previousOffers {
			parts[i] = fmt.Sprintf("$%.2f", o)
		}
		offers = strings.Join(parts, ", ")
	}

	return fmt.Sprintf(`%s

%s%s

BARGAINING RULES AND CONSTRAINTS:
1. MAXIMUM discount allowed: %.0f%% (Minimum price: $%.2f)
2. NEVER exceed %.0f%% discount under any circumstances
%s

CUSTOMER STATE (derived from the conversation):
- Intent: %s
- Sentiment: %s
- Price mentioned by customer: %s
- Deal status: %s
- Urgency: %s
- Cultural context: %s

PREVIOUS OFFERS ALREADY MADE: %s
Do not repeat an offer you have already made; move the negotiation forward instead.

STRATEGY:
- If the deal status is user_accepted or deal_closed, close warmly without offering any further discount.
- If the customer rejected, acknowledge it gracefully and leave the door open.
- Otherwise negotiate step by step; hold discounts back early and concede slowly.

IMPORTANT REMINDERS:
%s

%s

Customer's latest message: "%s"

Respond as the bargaining agent in %s. Be conversational and strategic.`,
		strings.TrimSpace(tpl.Identity),
		languageDirective(language),
		productSection(product),
		policy.MaxDiscountPercent, minimum,
		policy.MaxDiscountPercent,
		bulleted(tpl.BargainingRules),
		intent.Intent,
		intent.Sentiment,
		priceMentioned,
		intent.DealStatus,
		intent.Urgency,
		intent.CulturalContext,
		offers,
		bulleted(tpl.Reminders),
		FormatHistory(history),
		userMessage,
		responseLanguage(language),
	)
}

// ComposeInitialPrompt asks the model for an opening message in a non-English
// language. English openings skip generation entirely.
func ComposeInitialPrompt(product *models.ProductDetails, language, priceContext string) string {
	return fmt.Sprintf(`Generate a welcoming initial message for a bargaining chatbot in %[1]s.

Product: %[2]s
Price: $%.2[3]f
Context: %[4]s item

The message should:
1. Greet the customer warmly in %[1]s
2. Acknowledge their interest in the product
3. Mention the price in USD format
4. Offer to help them get the best deal
5. Be culturally appropriate for %[1]s speakers

Keep it friendly and professional in %[1]s.`,
		language, product.Name, product.Price, priceContext)
}

func responseLanguage(language string) string {
	if language == "" {
		return "English"
	}
	return language
}
