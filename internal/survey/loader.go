package survey

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// LoadExport reads and validates a survey export file.
func LoadExport(path string) (*Export, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading export %s: %w", path, err)
	}
	defer f.Close()

	export, err := ParseExport(f)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", path, err)
	}
	return export, nil
}

// ParseExport decodes and validates a survey export from a reader.
func ParseExport(r io.Reader) (*Export, error) {
	var export Export
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("parsing export: %w", err)
	}
	if err := export.Validate(); err != nil {
		return nil, fmt.Errorf("invalid export: %w", err)
	}
	return &export, nil
}

// Validate checks the structural invariants of an export: survey identity,
// unique question ids, and answers that reference declared questions.
func (e *Export) Validate() error {
	if e.Survey.ID == "" {
		return fmt.Errorf("survey.id is required")
	}
	if e.Survey.OrganizationID == "" {
		return fmt.Errorf("survey.organization_id is required")
	}
	if len(e.Questions) == 0 {
		return fmt.Errorf("export contains no questions")
	}

	seen := make(map[string]bool, len(e.Questions))
	for i, q := range e.Questions {
		if q.ID == "" {
			return fmt.Errorf("question %d has no id", i)
		}
		if seen[q.ID] {
			return fmt.Errorf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = true
	}

	for i, sub := range e.Submissions {
		if sub.Respondent.ID == "" {
			return fmt.Errorf("submission %d has no respondent id", i)
		}
		for _, a := range sub.Answers {
			if !seen[a.QuestionID] {
				return fmt.Errorf("submission %d answers unknown question %q", i, a.QuestionID)
			}
		}
	}
	return nil
}
