package scoring

import (
	"time"

	"garmentscore/internal/model"
)

// Scored is the output of the normalize and aggregate stages
type Scored struct {
	Answers []model.NormalizedAnswer
	Result  model.AssessmentResult
}

// Score runs normalization to completion, then aggregation. completedAt is
// supplied by the caller so that identical input gives identical output.
func Score(catalog *model.Catalog, responses model.Responses, completedAt time.Time) (*Scored, error) {
	answers, err := Normalize(catalog, responses)
	if err != nil {
		return nil, err
	}
	result := Aggregate(catalog, answers)
	result.Recommendations = Recommendations(catalog, result, answers)
	result.CompletedAt = completedAt.UTC()
	return &Scored{Answers: answers, Result: result}, nil
}

// HeatMap has one cell per answer, in question order.
func HeatMap(answers []model.NormalizedAnswer) []model.HeatMapCell {
	cells := make([]model.HeatMapCell, len(answers))
	for i, a := range answers {
		cells[i] = model.HeatMapCell{
			Ordinal:    a.Ordinal,
			QuestionID: a.QuestionID,
			Category:   a.CategoryName,
			Bucket:     a.Bucket,
			Color:      ColorFor(a.Bucket),
		}
	}
	return cells
}

// DeepDives groups answers by category in catalog order. Categories without
// answers are kept with an empty answer list.
func DeepDives(catalog *model.Catalog, result model.AssessmentResult, answers []model.NormalizedAnswer) []model.CategoryDeepDive {
	descriptions := make(map[string]string, len(catalog.Categories))
	for _, c := range catalog.Categories {
		descriptions[c.Name] = c.Description
	}

	grouped := make(map[string][]model.NormalizedAnswer)
	for _, a := range answers {
		grouped[a.CategoryName] = append(grouped[a.CategoryName], a)
	}

	names := catalog.CategoryNames()
	// answers whose category is missing from the catalog go last, first-seen order
	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}
	for _, a := range answers {
		if !known[a.CategoryName] {
			known[a.CategoryName] = true
			names = append(names, a.CategoryName)
		}
	}

	dives := make([]model.CategoryDeepDive, 0, len(names))
	for _, name := range names {
		list := grouped[name]
		if list == nil {
			list = []model.NormalizedAnswer{}
		}
		dives = append(dives, model.CategoryDeepDive{
			Category:    name,
			Description: descriptions[name],
			Score:       result.CategoryScores[name],
			Answers:     list,
		})
	}
	return dives
}

// AssembleInput carries everything needed to build a report
type AssembleInput struct {
	ReportID     string
	AssessmentID string
	ClientID     string
	Catalog      *model.Catalog
	Scored       *Scored
	Context      model.BusinessContext
	Insights     *model.NarrativeInsights // nil selects the fallback narrative
	CreatedAt    time.Time
}

// Assemble builds the report payload.
func Assemble(in AssembleInput) *model.Report {
	insights := in.Insights
	if insights == nil {
		insights = FallbackNarrative(in.Catalog, in.Scored.Result, in.Context, in.Scored.Answers)
	}
	return &model.Report{
		ID:              in.ReportID,
		AssessmentID:    in.AssessmentID,
		ClientID:        in.ClientID,
		Result:          in.Scored.Result,
		BusinessContext: in.Context,
		DeepDives:       DeepDives(in.Catalog, in.Scored.Result, in.Scored.Answers),
		HeatMap:         HeatMap(in.Scored.Answers),
		AIInsights:      insights,
		CallsToAction:   CallsToAction(in.Scored.Result.PerformanceTier),
		CreatedAt:       in.CreatedAt.UTC(),
	}
}
