package model

import "time"

// Responses maps question id to the chosen integer value
type Responses map[string]int

// Bucket is the per-question performance band used by the heat map
type Bucket string

const (
	BucketExcellent        Bucket = "Excellent"
	BucketGood             Bucket = "Good"
	BucketNeedsImprovement Bucket = "Needs Improvement"
	BucketCritical         Bucket = "Critical"
	BucketNA               Bucket = "N/A" // max score of zero
)

// Grade is the overall letter grade
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
)

// NormalizedAnswer is one scored response
type NormalizedAnswer struct {
	QuestionID    string `json:"questionId" bson:"question_id"`
	Ordinal       int    `json:"ordinal" bson:"ordinal"` // 1-based position in the catalog
	QuestionText  string `json:"questionText" bson:"question_text"`
	CategoryName  string `json:"categoryName" bson:"category_name"`
	Score         int    `json:"score" bson:"score"`
	MaxScore      int    `json:"maxScore" bson:"max_score"`
	ResponseLabel string `json:"responseLabel" bson:"response_label"`
	Bucket        Bucket `json:"bucket" bson:"bucket"`
}

// CategoryScore is the folded score of one category
type CategoryScore struct {
	Score         int     `json:"score" bson:"score"`
	MaxScore      int     `json:"maxScore" bson:"max_score"`
	Percentage    float64 `json:"percentage" bson:"percentage"` // 0-100, 0 when MaxScore is 0
	QuestionCount int     `json:"questionCount" bson:"question_count"`
}

// AssessmentResult is the scored outcome of one submission
type AssessmentResult struct {
	TotalScore        int                      `json:"totalScore" bson:"total_score"`
	TotalMaxScore     int                      `json:"totalMaxScore" bson:"max_score"`
	OverallPercentage float64                  `json:"overallPercentage" bson:"percentage"`
	Grade             Grade                    `json:"grade" bson:"grade"`
	PerformanceTier   string                   `json:"performanceTier" bson:"performance_tier"`
	CategoryScores    map[string]CategoryScore `json:"categoryScores" bson:"category_scores"`
	Recommendations   []string                 `json:"recommendations" bson:"recommendations"`
	CompletedAt       time.Time                `json:"completedAt" bson:"completed_at"`
}

// BusinessContext describes the respondent's operation. Never scored.
type BusinessContext struct {
	CompanyName       string `json:"companyName,omitempty" bson:"company_name,omitempty" validate:"max=200"`
	ProductCategories string `json:"productCategories,omitempty" bson:"product_categories,omitempty" validate:"max=500"`
	Employees         int    `json:"employees,omitempty" bson:"employees,omitempty" validate:"gte=0"`
	MonthlyCapacity   int    `json:"monthlyCapacity,omitempty" bson:"monthly_capacity,omitempty" validate:"gte=0"` // pieces per month
	AnnualRevenue     string `json:"annualRevenue,omitempty" bson:"annual_revenue,omitempty" validate:"max=100"`
	PrimaryMarkets    string `json:"primaryMarkets,omitempty" bson:"primary_markets,omitempty" validate:"max=500"`
	Goals             string `json:"goals,omitempty" bson:"goals,omitempty" validate:"max=2000"`
	Challenges        string `json:"challenges,omitempty" bson:"challenges,omitempty" validate:"max=2000"`
}

// AssessmentRecord is the persisted assessment row
type AssessmentRecord struct {
	ID              string           `json:"id" bson:"_id"`
	ClientID        string           `json:"clientId" bson:"client_id"`
	Result          AssessmentResult `json:"result" bson:"result"`
	BusinessContext BusinessContext  `json:"businessContext" bson:"business_context"`
	CreatedAt       time.Time        `json:"createdAt" bson:"created_at"`
}

// ResponseRecord links an assessment to one answered question
type ResponseRecord struct {
	ID           string `json:"id" bson:"_id"`
	AssessmentID string `json:"assessmentId" bson:"assessment_id"`
	QuestionID   string `json:"questionId" bson:"question_id"`
	Value        int    `json:"value" bson:"value"`
}

// SubmissionRequest is the body of a completed questionnaire. A missing
// responses object is an empty submission.
type SubmissionRequest struct {
	Responses       Responses       `json:"responses"`
	BusinessContext BusinessContext `json:"businessContext"`
}

// AssessmentSummary is one row of a client's assessment history
type AssessmentSummary struct {
	ID                string    `json:"id"`
	ClientID          string    `json:"clientId"`
	CompanyName       string    `json:"companyName,omitempty"`
	OverallPercentage float64   `json:"overallPercentage"`
	Grade             Grade     `json:"grade"`
	PerformanceTier   string    `json:"performanceTier"`
	CreatedAt         time.Time `json:"createdAt"`
}
