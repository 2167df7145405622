package llm

// modelPricing holds per-model pricing in cents per 1M tokens.
type modelPricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// priceTable maps model identifiers to their pricing.
var priceTable = map[string]modelPricing{
	// OpenAI models
	"gpt-4o":      {InputPerMillion: 250, OutputPerMillion: 1000},
	"gpt-4o-mini": {InputPerMillion: 15, OutputPerMillion: 60},

	// Anthropic models
	"claude-sonnet-4-5-20250929": {InputPerMillion: 300, OutputPerMillion: 1500},
	"claude-haiku-4-5-20251001":  {InputPerMillion: 80, OutputPerMillion: 400},
}

// CostCents returns the cost in cents for the given model and token counts.
// Returns 0 if the model is not found in the price table; costs for cheap
// calls are fractional cents, so callers should sum before rounding.
func CostCents(model string, inputTokens, outputTokens int) float64 {
	pricing, ok := priceTable[model]
	if !ok {
		return 0
	}

	inputCost := float64(inputTokens) / 1_000_000.0 * pricing.InputPerMillion
	outputCost := float64(outputTokens) / 1_000_000.0 * pricing.OutputPerMillion
	return inputCost + outputCost
}

// EstimateTokens provides a rough token count estimation for the given text.
// Uses the approximation of 1 token per 4 characters.
func EstimateTokens(text string) int {
	n := len(text) / 4
	if n == 0 && len(text) > 0 {
		return 1
	}
	return n
}
