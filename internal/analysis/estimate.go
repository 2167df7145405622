package analysis

import (
	"github.com/seismohq/seismo/internal/forces"
	"github.com/seismohq/seismo/internal/llm"
)

// estimatedOutputTokens approximates the size of one structured score
// response.
const estimatedOutputTokens = 300

// CostEstimate is a dry-run projection of what a batch would cost.
type CostEstimate struct {
	Items        int
	InputTokens  int
	OutputTokens int
	CostCents    float64
}

// EstimateCost projects token usage and cost for a batch without making
// any provider calls. Token counts are rough (4 characters per token) and
// assume one attempt per item.
func EstimateCost(requests []forces.Request, model string) CostEstimate {
	est := CostEstimate{Items: len(requests)}
	for _, req := range requests {
		est.InputTokens += llm.EstimateTokens(systemPrompt + buildScorePrompt(req))
		est.OutputTokens += estimatedOutputTokens
	}
	est.CostCents = llm.CostCents(model, est.InputTokens, est.OutputTokens)
	return est
}
