package survey

import "time"

// Question is a single questionnaire item with its declared category.
type Question struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Category string `json:"category"`
	Type     string `json:"type,omitempty"` // free_text, scale, choice
}

// Respondent identifies who answered, with the organizational context that
// accompanies every analysis request.
type Respondent struct {
	ID         string `json:"id"`
	Role       string `json:"role,omitempty"`
	Department string `json:"department,omitempty"`
}

// Answer is one respondent's answer to one question.
type Answer struct {
	QuestionID string `json:"question_id"`
	Text       string `json:"text"`
}

// Submission is one respondent's full set of answers.
type Submission struct {
	Respondent  Respondent `json:"respondent"`
	Answers     []Answer   `json:"answers"`
	SubmittedAt time.Time  `json:"submitted_at,omitempty"`
}

// Survey holds the questionnaire metadata carried on an export.
type Survey struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	OrganizationID   string `json:"organization_id"`
	OrganizationName string `json:"organization_name,omitempty"`
}

// Export is the on-disk shape produced by the survey platform's export.
type Export struct {
	Survey      Survey       `json:"survey"`
	Questions   []Question   `json:"questions"`
	Submissions []Submission `json:"responses"`
}

// QuestionByID returns a lookup map over the export's questions.
func (e *Export) QuestionByID() map[string]Question {
	m := make(map[string]Question, len(e.Questions))
	for _, q := range e.Questions {
		m[q.ID] = q
	}
	return m
}
