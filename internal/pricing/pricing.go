// Package pricing holds the discount policy: how low the bot may go, and how
// much discount each negotiation step should suggest. Pure arithmetic, no I/O.
package pricing

// MaxSteps is the number of negotiation rounds before the offer is final.
const MaxSteps = 4

// Policy is the immutable discount configuration, built once at startup and
// shared read-only across requests.
type Policy struct {
	// MaxDiscountPercent bounds every discount, in [0,100].
	MaxDiscountPercent float64
	// Steps maps negotiation step → suggested discount percent.
	Steps map[int]float64
}

// Default returns the stock policy: 10% ceiling, discounts 2/4/7/10 across
// the four steps.
func Default() Policy {
	return Policy{
		MaxDiscountPercent: 10,
		Steps:              map[int]float64{1: 2, 2: 4, 3: 7, 4: 10},
	}
}

// MinimumPrice returns the lowest allowable price for an item. No rounding;
// display rounding happens at formatting time only.
func (p Policy) MinimumPrice(originalPrice float64) float64 {
	return originalPrice * (1 - p.MaxDiscountPercent/100)
}

// SuggestedDiscount returns the discount percent for a step. Steps beyond the
// table clamp to the highest configured step rather than erroring.
func (p Policy) SuggestedDiscount(step int) float64 {
	if d, ok := p.Steps[step]; ok {
		return d
	}
	// Clamp to the deepest discount in the table.
	maxStep, found := 0, false
	for s := range p.Steps {
		if !found || s > maxStep {
			maxStep, found = s, true
		}
	}
	return p.Steps[maxStep]
}

// SuggestedPrice returns the price implied by the step's suggested discount.
func (p Policy) SuggestedPrice(originalPrice float64, step int) float64 {
	return originalPrice * (1 - p.SuggestedDiscount(step)/100)
}

// DiscountPercent computes the effective discount of an offered price
// relative to the original.
func DiscountPercent(originalPrice, offeredPrice float64) float64 {
	if originalPrice == 0 {
		return 0
	}
	return (originalPrice - offeredPrice) / originalPrice * 100
}
