// Package forces implements the force model used to interpret free-text
// survey answers: every analyzable answer maps onto one of five fixed
// forces describing what drives or resists adoption of a change.
package forces

// ForceType is the closed set of forces an answer can speak to.
type ForceType string

const (
	PainOfOld    ForceType = "pain_of_old"
	PullOfNew    ForceType = "pull_of_new"
	AnchorsToOld ForceType = "anchors_to_old"
	AnxietyOfNew ForceType = "anxiety_of_new"
	Demographic  ForceType = "demographic"
)

// All lists every force type in canonical order.
var All = []ForceType{PainOfOld, PullOfNew, AnchorsToOld, AnxietyOfNew, Demographic}

// Valid reports whether f is one of the five known force types.
func Valid(f ForceType) bool {
	switch f {
	case PainOfOld, PullOfNew, AnchorsToOld, AnxietyOfNew, Demographic:
		return true
	}
	return false
}

// Context carries the respondent and question provenance attached to a
// request so scoring can take organizational framing into account.
type Context struct {
	Role             string `json:"role,omitempty"`
	Department       string `json:"department,omitempty"`
	OrganizationName string `json:"organization_name,omitempty"`
	QuestionCategory string `json:"question_category,omitempty"`
}

// Request is one classified answer ready for analysis. Immutable once
// created; produced by Classify and consumed exactly once by the batch
// runner.
type Request struct {
	ItemID        string    `json:"item_id"`
	QuestionText  string    `json:"question_text"`
	ExpectedForce ForceType `json:"expected_force"`
	Context       Context   `json:"context"`
	AnswerText    string    `json:"answer_text"`
}
