package service

// Broadcaster pushes events to connected admin dashboards (avoids import cycle with ws)
type Broadcaster interface {
	BroadcastToAdmins(msgType string, payload interface{})
}

// Event types sent on the admin feed
const (
	EventAssessmentCompleted = "assessment_completed"
	EventReportRegenerated   = "report_regenerated"
	EventClientApproved      = "client_approved"
)

// AssessmentEvent is the payload of assessment feed events
type AssessmentEvent struct {
	AssessmentID    string  `json:"assessmentId"`
	ReportID        string  `json:"reportId"`
	ClientID        string  `json:"clientId"`
	CompanyName     string  `json:"companyName,omitempty"`
	Percentage      float64 `json:"percentage"`
	Grade           string  `json:"grade"`
	PerformanceTier string  `json:"performanceTier"`
	NarrativeSource string  `json:"narrativeSource"`
}
