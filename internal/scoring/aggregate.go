package scoring

import "garmentscore/internal/model"

// Grade thresholds on the overall percentage.
const (
	GradeAMin = 85.0
	GradeBMin = 70.0
	GradeCMin = 55.0
)

// Performance tiers, on the same boundaries as the grade.
const (
	TierIndustryLeader = "Industry Leader"
	TierCompetitive    = "Competitive"
	TierDeveloping     = "Developing"
	TierAtRisk         = "At Risk"
)

// GradeFor maps an overall percentage to a letter grade
func GradeFor(pct float64) model.Grade {
	switch {
	case pct >= GradeAMin:
		return model.GradeA
	case pct >= GradeBMin:
		return model.GradeB
	case pct >= GradeCMin:
		return model.GradeC
	default:
		return model.GradeD
	}
}

// TierFor maps an overall percentage to a performance tier
func TierFor(pct float64) string {
	switch {
	case pct >= GradeAMin:
		return TierIndustryLeader
	case pct >= GradeBMin:
		return TierCompetitive
	case pct >= GradeCMin:
		return TierDeveloping
	default:
		return TierAtRisk
	}
}

// Percentage is 100*score/max bounded to [0,100]; 0/0 is 0.
func Percentage(score, max int) float64 {
	if max <= 0 {
		return 0
	}
	p := 100 * float64(score) / float64(max)
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Aggregate folds normalized answers into category and overall scores.
// Every catalog category is present in the result, answered or not. Overall
// figures sum raw points across categories before taking the ratio.
// Recommendations and CompletedAt are left for the caller.
func Aggregate(catalog *model.Catalog, answers []model.NormalizedAnswer) model.AssessmentResult {
	scores := make(map[string]CategoryTotals)
	for _, name := range catalog.CategoryNames() {
		scores[name] = CategoryTotals{}
	}

	totalScore, totalMax := 0, 0
	for _, a := range answers {
		t := scores[a.CategoryName]
		t.Score += a.Score
		t.MaxScore += a.MaxScore
		t.Count++
		scores[a.CategoryName] = t

		totalScore += a.Score
		totalMax += a.MaxScore
	}

	categoryScores := make(map[string]model.CategoryScore, len(scores))
	for name, t := range scores {
		categoryScores[name] = model.CategoryScore{
			Score:         t.Score,
			MaxScore:      t.MaxScore,
			Percentage:    Percentage(t.Score, t.MaxScore),
			QuestionCount: t.Count,
		}
	}

	overall := Percentage(totalScore, totalMax)
	return model.AssessmentResult{
		TotalScore:        totalScore,
		TotalMaxScore:     totalMax,
		OverallPercentage: overall,
		Grade:             GradeFor(overall),
		PerformanceTier:   TierFor(overall),
		CategoryScores:    categoryScores,
		Recommendations:   []string{},
	}
}

// CategoryTotals is the running sum for one category
type CategoryTotals struct {
	Score    int
	MaxScore int
	Count    int
}
