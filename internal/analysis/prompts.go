package analysis

import (
	"fmt"
	"strings"

	"github.com/seismohq/seismo/internal/forces"
)

const systemPrompt = `You are an organizational-change analyst scoring free-text survey answers against the four forces of adoption: pain_of_old (frustration with the current state), pull_of_new (attraction to the proposed change), anchors_to_old (habits and structures holding people back), anxiety_of_new (fear or uncertainty about the change). Return only a JSON object. Be precise and factual; do not invent details that are not present in the answer.`

const scorePromptTemplate = `Score this survey answer and return a JSON object with exactly these fields:

{
  "primary_force": "pain_of_old|pull_of_new|anchors_to_old|anxiety_of_new|demographic",
  "secondary_forces": ["other forces clearly present, if any"],
  "force_strength": 3,
  "confidence": 3,
  "sentiment": {"score": 0.0, "label": "positive|neutral|negative"},
  "themes": ["short recurring-topic labels, lowercase"],
  "quality": "poor|fair|good|excellent",
  "reasoning": "1-2 sentences explaining the scoring"
}

force_strength and confidence are integers from 1 (weak) to 5 (strong).
sentiment.score is a number from -1.0 to 1.0.
quality rates how useful the answer is for analysis.

Question category suggests the force %q.%s

Question: %s

Answer:
"""
%s
"""`

// buildScorePrompt renders the user prompt for one request.
func buildScorePrompt(req forces.Request) string {
	var ctx strings.Builder
	if req.Context.Role != "" {
		fmt.Fprintf(&ctx, "\nRespondent role: %s.", req.Context.Role)
	}
	if req.Context.Department != "" {
		fmt.Fprintf(&ctx, "\nRespondent department: %s.", req.Context.Department)
	}
	if req.Context.OrganizationName != "" {
		fmt.Fprintf(&ctx, "\nOrganization: %s.", req.Context.OrganizationName)
	}

	return fmt.Sprintf(scorePromptTemplate,
		req.ExpectedForce, ctx.String(), req.QuestionText, req.AnswerText)
}
