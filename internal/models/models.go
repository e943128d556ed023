package models

// ─── Inbound API payloads ─────────────────────────────────────────────────────

type BargainRequest struct {
	ProductDetails      *ProductDetails       `json:"product_details"`
	ConversationHistory []ConversationMessage `json:"conversation_history"`
}

type InitialRequest struct {
	ProductDetails *ProductDetails `json:"product_details"`
	Language       string          `json:"language"`
}

type ProductDetails struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Category    string  `json:"category,omitempty"`
	Description string  `json:"description,omitempty"`
}

type ConversationMessage struct {
	Role      string `json:"role"` // "user" | "assistant"
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"` // ISO-8601, sorts lexicographically
}

// ─── Intent classification (smart variant) ───────────────────────────────────

// IntentRecord is the structured classification of the latest conversational
// turn, parsed from the model's JSON reply. Values are free strings on the
// wire; the comments list what the classification prompt asks for.
type IntentRecord struct {
	Intent          string   `json:"intent"`          // greeting | price_inquiry | negotiation_request | acceptance | rejection | question | complaint | goodbye
	Sentiment       string   `json:"sentiment"`       // positive | neutral | negative | frustrated
	PriceMentioned  *float64 `json:"price_mentioned"` // nil when no price in the user message
	DealStatus      string   `json:"deal_status"`     // just_started | actively_negotiating | user_accepted | user_rejected | deal_closed
	Urgency         string   `json:"urgency"`         // low | medium | high
	CulturalContext string   `json:"cultural_context"`
}

// ─── Orchestrator result ──────────────────────────────────────────────────────

// NegotiationResult is the transient outcome of one exchange. Step carries
// meaning in the simple variant, Intent in the smart variant.
type NegotiationResult struct {
	BotResponse      string
	OfferedPrice     *float64
	Step             int
	Intent           *IntentRecord
	DetectedLanguage string
}

// ─── Response envelopes ───────────────────────────────────────────────────────

type LanguageInfo struct {
	DetectedLanguage string `json:"detected_language,omitempty"`
	ResponseLanguage string `json:"response_language"`
}

type ProductInfo struct {
	Name                  string  `json:"name"`
	OriginalPrice         float64 `json:"original_price"`
	MinimumPossiblePrice  float64 `json:"minimum_possible_price,omitempty"`
	MaxDiscountPercentage float64 `json:"max_discount_percentage,omitempty"`
	PotentialSavings      string  `json:"potential_savings,omitempty"`
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Status string `json:"status"`
}
