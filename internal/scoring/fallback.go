package scoring

import (
	"fmt"
	"sort"
	"strings"

	"garmentscore/internal/model"
)

const (
	maxRecommendations = 5
	maxQuickWins       = 5
	recommendBelowPct  = GradeBMin
)

// scoredCategory is a category that received at least one answer
type scoredCategory struct {
	Name  string
	Score model.CategoryScore
}

// answeredCategories lists scored categories in catalog order
func answeredCategories(catalog *model.Catalog, result model.AssessmentResult) []scoredCategory {
	out := make([]scoredCategory, 0, len(result.CategoryScores))
	for _, name := range catalog.CategoryNames() {
		cs, ok := result.CategoryScores[name]
		if !ok || cs.MaxScore == 0 {
			continue
		}
		out = append(out, scoredCategory{Name: name, Score: cs})
	}
	return out
}

// strongestAndWeakest picks extremes; ties go to the earlier category.
func strongestAndWeakest(cats []scoredCategory) (strongest, weakest scoredCategory, ok bool) {
	if len(cats) == 0 {
		return scoredCategory{}, scoredCategory{}, false
	}
	strongest, weakest = cats[0], cats[0]
	for _, c := range cats[1:] {
		if c.Score.Percentage > strongest.Score.Percentage {
			strongest = c
		}
		if c.Score.Percentage < weakest.Score.Percentage {
			weakest = c
		}
	}
	return strongest, weakest, true
}

// weakAnswers returns Critical and Needs Improvement answers, lowest ratio
// first, catalog order on ties.
func weakAnswers(answers []model.NormalizedAnswer) []model.NormalizedAnswer {
	var weak []model.NormalizedAnswer
	for _, a := range answers {
		if a.Bucket == model.BucketCritical || a.Bucket == model.BucketNeedsImprovement {
			weak = append(weak, a)
		}
	}
	sort.SliceStable(weak, func(i, j int) bool {
		// a/b < c/d  <=>  a*d < c*b for positive denominators
		return weak[i].Score*weak[j].MaxScore < weak[j].Score*weak[i].MaxScore
	})
	return weak
}

// CriticalAnswers is the subset of answers that the narrative should focus on
func CriticalAnswers(answers []model.NormalizedAnswer) []model.NormalizedAnswer {
	return weakAnswers(answers)
}

// Recommendations derives the free-form recommendation list from the
// weakest categories and the lowest scoring answers.
func Recommendations(catalog *model.Catalog, result model.AssessmentResult, answers []model.NormalizedAnswer) []string {
	cats := answeredCategories(catalog, result)
	sort.SliceStable(cats, func(i, j int) bool {
		return cats[i].Score.Percentage < cats[j].Score.Percentage
	})

	recs := []string{}
	for _, c := range cats {
		if c.Score.Percentage >= recommendBelowPct || len(recs) >= maxRecommendations {
			break
		}
		recs = append(recs, fmt.Sprintf("Prioritize %s: currently at %.1f%%, below the %.0f%% competitive benchmark.",
			c.Name, c.Score.Percentage, recommendBelowPct))
	}
	for _, a := range weakAnswers(answers) {
		if len(recs) >= maxRecommendations {
			break
		}
		if a.Bucket != model.BucketCritical {
			continue
		}
		recs = append(recs, fmt.Sprintf("Address \"%s\" (%s): answered \"%s\".", a.QuestionText, a.CategoryName, a.ResponseLabel))
	}
	if len(recs) == 0 && len(cats) > 0 {
		recs = append(recs, "Maintain current practices and benchmark against export-grade manufacturers to find the next gains.")
	}
	return recs
}

// FallbackNarrative builds the rule-based narrative. It never fails and
// performs no I/O; the same input always yields the same output.
func FallbackNarrative(catalog *model.Catalog, result model.AssessmentResult, bc model.BusinessContext, answers []model.NormalizedAnswer) *model.NarrativeInsights {
	cats := answeredCategories(catalog, result)
	strongest, weakest, ok := strongestAndWeakest(cats)

	subject := "Your operation"
	if name := strings.TrimSpace(bc.CompanyName); name != "" {
		subject = name
	}

	var summary string
	if !ok {
		summary = fmt.Sprintf("%s has not answered any scored questions yet, so no category could be assessed. Complete the questionnaire to receive a full readiness profile.", subject)
	} else {
		summary = fmt.Sprintf("%s scored %.1f%% overall (grade %s, %s). The strongest category is %s at %.1f%%; the weakest category is %s at %.1f%%.",
			subject, result.OverallPercentage, result.Grade, result.PerformanceTier,
			strongest.Name, strongest.Score.Percentage, weakest.Name, weakest.Score.Percentage)
	}

	insights := make([]model.CategoryInsight, 0, len(cats))
	for _, c := range cats {
		insights = append(insights, model.CategoryInsight{
			Category: c.Name,
			Insight:  categoryInsight(c),
		})
	}

	return &model.NarrativeInsights{
		ExecutiveSummary: summary,
		CategoryInsights: insights,
		QuickWins:        quickWins(answers),
		Roadmap:          roadmap(cats, strongest, ok),
		Source:           model.NarrativeFallback,
	}
}

func categoryInsight(c scoredCategory) string {
	pct := c.Score.Percentage
	switch BucketForPercentage(pct) {
	case model.BucketExcellent:
		return fmt.Sprintf("%s is a clear strength at %.1f%%. Document these practices and use them as a selling point with buyers.", c.Name, pct)
	case model.BucketGood:
		return fmt.Sprintf("%s is solid at %.1f%%, with room to standardize the remaining gaps.", c.Name, pct)
	case model.BucketNeedsImprovement:
		return fmt.Sprintf("%s needs attention at %.1f%%. Inconsistent practices here are likely costing time and margin.", c.Name, pct)
	default:
		return fmt.Sprintf("%s is critical at %.1f%% and should be the first area to fix.", c.Name, pct)
	}
}

var genericQuickWins = []model.QuickWin{
	{Title: "Run a daily production huddle", Description: "A 10-minute line meeting on yesterday's output, defects and today's targets."},
	{Title: "Track first-pass yield per line", Description: "Record defects at end-of-line inspection and review the top three causes weekly."},
	{Title: "Publish a buyer-facing capability sheet", Description: "Summarize capacity, certifications and lead times on one page for sales conversations."},
}

func quickWins(answers []model.NormalizedAnswer) []model.QuickWin {
	weak := weakAnswers(answers)
	if len(weak) == 0 {
		return append([]model.QuickWin(nil), genericQuickWins...)
	}
	wins := make([]model.QuickWin, 0, maxQuickWins)
	for _, a := range weak {
		if len(wins) >= maxQuickWins {
			break
		}
		wins = append(wins, model.QuickWin{
			Title:       "Improve: " + a.QuestionText,
			Description: fmt.Sprintf("Currently \"%s\" (%d/%d). Assign an owner and set a 30-day target to move this up one level.", a.ResponseLabel, a.Score, a.MaxScore),
			Category:    a.CategoryName,
		})
	}
	return wins
}

func roadmap(cats []scoredCategory, strongest scoredCategory, ok bool) []model.RoadmapStage {
	var critical, developing []string
	for _, c := range cats {
		switch BucketForPercentage(c.Score.Percentage) {
		case model.BucketCritical:
			critical = append(critical, c.Name)
		case model.BucketNeedsImprovement:
			developing = append(developing, c.Name)
		}
	}

	stabilize := []string{"Assign an owner to each critical gap and agree weekly check-ins."}
	for _, name := range critical {
		stabilize = append(stabilize, "Put baseline controls in place for "+name+".")
	}
	improve := []string{"Standardize work instructions and measure them monthly."}
	for _, name := range developing {
		improve = append(improve, "Raise "+name+" to a documented, repeatable process.")
	}
	scale := []string{"Re-run this assessment to confirm progress."}
	if ok {
		scale = append(scale, "Use "+strongest.Name+" as a differentiator when pitching new buyers.")
	}

	return []model.RoadmapStage{
		{Stage: "Stabilize", Timeframe: "0-30 days", Actions: stabilize},
		{Stage: "Improve", Timeframe: "30-90 days", Actions: improve},
		{Stage: "Scale", Timeframe: "90-180 days", Actions: scale},
	}
}

// CallsToAction picks the sales prompts for a performance tier
func CallsToAction(tier string) []model.CallToAction {
	switch tier {
	case TierIndustryLeader:
		return []model.CallToAction{
			{Label: "Explore growth partnerships", Detail: "Connect with buyers looking for proven, high-capability manufacturers.", Action: "partner_intro"},
			{Label: "Book a strategy session", Detail: "Plan capacity expansion without losing quality.", Action: "book_consultation"},
		}
	case TierCompetitive:
		return []model.CallToAction{
			{Label: "Book a strategy session", Detail: "Turn your remaining gaps into a 90-day improvement plan.", Action: "book_consultation"},
			{Label: "Request a benchmark report", Detail: "See how you compare with similar manufacturers.", Action: "benchmark_report"},
		}
	case TierDeveloping:
		return []model.CallToAction{
			{Label: "Book a free diagnostic call", Detail: "Walk through your weakest categories with a specialist.", Action: "book_consultation"},
			{Label: "Start the improvement program", Detail: "Guided implementation of the quick wins in this report.", Action: "improvement_program"},
		}
	default:
		return []model.CallToAction{
			{Label: "Book an urgent review", Detail: "Critical gaps put buyer relationships at risk. Talk to a specialist this week.", Action: "book_consultation"},
			{Label: "Get an on-site audit", Detail: "A factory walkthrough to prioritize the fixes with the biggest impact.", Action: "onsite_audit"},
		}
	}
}
