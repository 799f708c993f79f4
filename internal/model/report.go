package model

import "time"

// NarrativeSource tells whether insights came from the LLM or the rule-based generator
type NarrativeSource string

const (
	NarrativeAI       NarrativeSource = "ai"
	NarrativeFallback NarrativeSource = "fallback"
)

// HeatMapCell is one question on the heat map
type HeatMapCell struct {
	Ordinal    int    `json:"ordinal" bson:"ordinal"`
	QuestionID string `json:"questionId" bson:"question_id"`
	Category   string `json:"category" bson:"category"`
	Bucket     Bucket `json:"bucket" bson:"bucket"`
	Color      string `json:"color" bson:"color"`
}

// CategoryDeepDive holds the answers of one category
type CategoryDeepDive struct {
	Category    string             `json:"category" bson:"category"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Score       CategoryScore      `json:"score" bson:"score"`
	Answers     []NormalizedAnswer `json:"answers" bson:"answers"`
}

// CategoryInsight is narrative text for one category
type CategoryInsight struct {
	Category string `json:"category" bson:"category"`
	Insight  string `json:"insight" bson:"insight"`
}

// QuickWin is a short-horizon improvement
type QuickWin struct {
	Title       string `json:"title" bson:"title"`
	Description string `json:"description" bson:"description"`
	Category    string `json:"category,omitempty" bson:"category,omitempty"`
}

// RoadmapStage is one stage of the action roadmap
type RoadmapStage struct {
	Stage     string   `json:"stage" bson:"stage"`         // e.g. "Stabilize"
	Timeframe string   `json:"timeframe" bson:"timeframe"` // e.g. "0-30 days"
	Actions   []string `json:"actions" bson:"actions"`
}

// NarrativeInsights is the generated narrative attached to a report
type NarrativeInsights struct {
	ExecutiveSummary string            `json:"executiveSummary" bson:"executive_summary"`
	CategoryInsights []CategoryInsight `json:"categoryInsights" bson:"category_insights"`
	QuickWins        []QuickWin        `json:"quickWins" bson:"quick_wins"`
	Roadmap          []RoadmapStage    `json:"roadmap" bson:"roadmap"`
	Source           NarrativeSource   `json:"source" bson:"source"`
}

// CallToAction is a sales prompt shown with the report
type CallToAction struct {
	Label  string `json:"label" bson:"label"`
	Detail string `json:"detail" bson:"detail"`
	Action string `json:"action" bson:"action"` // e.g. "book_consultation"
}

// Report is the terminal artifact of a submission. Never mutated.
type Report struct {
	ID              string             `json:"id" bson:"_id"`
	AssessmentID    string             `json:"assessmentId" bson:"assessment_id"`
	ClientID        string             `json:"clientId" bson:"client_id"`
	Result          AssessmentResult   `json:"result" bson:"result"`
	BusinessContext BusinessContext    `json:"businessContext" bson:"business_context"`
	DeepDives       []CategoryDeepDive `json:"deepDives" bson:"deep_dives"`
	HeatMap         []HeatMapCell      `json:"heatMap" bson:"heat_map"`
	AIInsights      *NarrativeInsights `json:"aiInsights,omitempty" bson:"ai_insights,omitempty"`
	CallsToAction   []CallToAction     `json:"callsToAction" bson:"calls_to_action"`
	CreatedAt       time.Time          `json:"createdAt" bson:"created_at"`
}
