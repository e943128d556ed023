// Package negotiation derives negotiation state from caller-supplied
// conversation history. Everything here is deterministic; the semantic
// classification lives behind the llm package.
package negotiation

import (
	"sort"
	"strings"

	"bargainbot/internal/models"
)

// StepFromHistory returns the current negotiation step, 1..4, derived from the
// number of user-authored messages. Empty history counts as step 1. Purely
// structural: recomputing over the same history always yields the same step.
func StepFromHistory(history []models.ConversationMessage) int {
	step := 0
	for _, m := range history {
		if m.Role == "user" {
			step++
		}
	}
	if step < 1 {
		return 1
	}
	if step > 4 {
		return 4
	}
	return step
}

// LatestUserMessage sorts the history by timestamp ascending (stable on ties)
// and returns the most recent user-authored message. ok is false when the
// history has no user messages, which the orchestrator treats as the start of
// the conversation.
func LatestUserMessage(history []models.ConversationMessage) (string, bool) {
	if len(history) == 0 {
		return "", false
	}

	sorted := make([]models.ConversationMessage, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].Role == "user" {
			return sorted[i].Message, true
		}
	}
	return "", false
}

// DealClosed reports whether a generated reply reads like a closed deal.
// Ad hoc secondary signal, independent of the structured intent record: the
// reply must mention both "thank you" and "deal".
func DealClosed(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "thank you") && strings.Contains(lower, "deal")
}
