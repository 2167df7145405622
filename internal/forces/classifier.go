package forces

import (
	"strings"

	"github.com/seismohq/seismo/internal/survey"
)

// categoryForce is the single source of truth for mapping a question's
// declared category onto a force. Categories not listed here default to
// Demographic.
var categoryForce = map[string]ForceType{
	"pain":           PainOfOld,
	"problems":       PainOfOld,
	"current_issues": PainOfOld,

	"benefits":      PullOfNew,
	"opportunities": PullOfNew,
	"ai_potential":  PullOfNew,

	"barriers":       AnchorsToOld,
	"resistance":     AnchorsToOld,
	"organizational": AnchorsToOld,

	"concerns": AnxietyOfNew,
	"fears":    AnxietyOfNew,
	"risks":    AnxietyOfNew,
}

// ForceForCategory returns the force a question category maps to.
// Unknown categories map to Demographic.
func ForceForCategory(category string) ForceType {
	if f, ok := categoryForce[strings.ToLower(strings.TrimSpace(category))]; ok {
		return f
	}
	return Demographic
}

// ClassifyOptions controls classification policy.
type ClassifyOptions struct {
	// IncludeDemographic requests demographic items instead of skipping them.
	IncludeDemographic bool
}

// Classify turns a question/answer/respondent triple into an analysis
// request. The second return value is false when the item is skipped:
// either the answer is empty or the question is demographic and the caller
// did not opt in.
func Classify(q survey.Question, a survey.Answer, r survey.Respondent, orgName string, opts ClassifyOptions) (*Request, bool) {
	answer := strings.TrimSpace(a.Text)
	if answer == "" {
		return nil, false
	}

	force := ForceForCategory(q.Category)
	if force == Demographic && !opts.IncludeDemographic {
		return nil, false
	}

	return &Request{
		ItemID:        q.ID + ":" + r.ID,
		QuestionText:  q.Text,
		ExpectedForce: force,
		Context: Context{
			Role:             r.Role,
			Department:       r.Department,
			OrganizationName: orgName,
			QuestionCategory: q.Category,
		},
		AnswerText: answer,
	}, true
}

// ClassifyExport classifies every answer in an export, returning the
// requests to analyze and the count of skipped items.
func ClassifyExport(export *survey.Export, opts ClassifyOptions) ([]Request, int) {
	questions := export.QuestionByID()

	var requests []Request
	skipped := 0
	for _, sub := range export.Submissions {
		for _, ans := range sub.Answers {
			q, ok := questions[ans.QuestionID]
			if !ok {
				skipped++
				continue
			}
			req, ok := Classify(q, ans, sub.Respondent, export.Survey.OrganizationName, opts)
			if !ok {
				skipped++
				continue
			}
			requests = append(requests, *req)
		}
	}
	return requests, skipped
}
