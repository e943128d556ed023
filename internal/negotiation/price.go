package negotiation

import (
	"regexp"
	"strconv"
)

// pricePattern matches $-prefixed amounts: whole dollars, or exactly two
// decimal places.
var pricePattern = regexp.MustCompile(`\$(\d+(?:\.\d{2})?)`)

// ExtractPrice scans free-form text for dollar amounts and returns the last
// (rightmost) one, on the assumption that the most recent figure in a reply
// is the effective offer. ok is false when no amount is present.
//
// Known limitation, kept on purpose: when a sentence quotes both the original
// and the discounted price, whichever appears last wins regardless of
// semantic role.
func ExtractPrice(text string) (float64, bool) {
	matches := pricePattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(matches[len(matches)-1][1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
