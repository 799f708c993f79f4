package scoring

import (
	"fmt"
	"sort"
	"strings"

	"garmentscore/internal/model"
)

// defaultLabels is used when a question has no option list of its own.
var defaultLabels = [...]string{
	0: "Not at all",
	1: "Basic",
	2: "Moderate",
	3: "Good",
	4: "Excellent",
}

// Violation reasons.
const (
	ReasonUnknownQuestion = "unknown_question"
	ReasonOutOfRange      = "out_of_range"
)

// Violation describes one response that cannot be scored.
type Violation struct {
	QuestionID string `json:"questionId"`
	Value      int    `json:"value"`
	MaxScore   int    `json:"maxScore,omitempty"`
	Reason     string `json:"reason"`
}

func (v Violation) String() string {
	if v.Reason == ReasonUnknownQuestion {
		return fmt.Sprintf("question %s is not part of this assessment", v.QuestionID)
	}
	return fmt.Sprintf("question %s: value %d is outside 0-%d", v.QuestionID, v.Value, v.MaxScore)
}

// IntegrityError rejects a response set. It lists every offending question.
type IntegrityError struct {
	Violations []Violation
}

func (e *IntegrityError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return "invalid responses: " + strings.Join(parts, "; ")
}

// QuestionIDs returns the ids of the offending questions
func (e *IntegrityError) QuestionIDs() []string {
	ids := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		ids[i] = v.QuestionID
	}
	return ids
}

// Normalize scores every answered catalog question, in catalog order.
// Unanswered questions are left out. Unknown ids and out-of-range values are
// rejected, never clamped or dropped.
func Normalize(catalog *model.Catalog, responses model.Responses) ([]model.NormalizedAnswer, error) {
	var violations []Violation
	answers := make([]model.NormalizedAnswer, 0, len(responses))

	for i := range catalog.Questions {
		q := &catalog.Questions[i]
		value, ok := responses[q.ID]
		if !ok {
			continue
		}
		if value < 0 || value > q.MaxScore {
			violations = append(violations, Violation{
				QuestionID: q.ID,
				Value:      value,
				MaxScore:   q.MaxScore,
				Reason:     ReasonOutOfRange,
			})
			continue
		}
		answers = append(answers, NormalizeOne(q, i+1, value))
	}

	var unknown []string
	for id := range responses {
		if _, ok := catalog.Question(id); !ok {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)
	for _, id := range unknown {
		violations = append(violations, Violation{
			QuestionID: id,
			Value:      responses[id],
			Reason:     ReasonUnknownQuestion,
		})
	}

	if len(violations) > 0 {
		return nil, &IntegrityError{Violations: violations}
	}
	return answers, nil
}

// NormalizeOne scores a single value that is already known to be in range.
func NormalizeOne(q *model.Question, ordinal, value int) model.NormalizedAnswer {
	return model.NormalizedAnswer{
		QuestionID:    q.ID,
		Ordinal:       ordinal,
		QuestionText:  q.Text,
		CategoryName:  q.CategoryName,
		Score:         value,
		MaxScore:      q.MaxScore,
		ResponseLabel: ResponseLabel(q, value),
		Bucket:        BucketFor(value, q.MaxScore),
	}
}

// ResponseLabel is the human readable text of a chosen value
func ResponseLabel(q *model.Question, value int) string {
	if value >= 0 && value < len(q.Options) && q.Options[value] != "" {
		return q.Options[value]
	}
	if value >= 0 && value < len(defaultLabels) {
		return defaultLabels[value]
	}
	return fmt.Sprintf("%d/%d", value, q.MaxScore)
}
