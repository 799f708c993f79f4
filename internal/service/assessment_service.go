package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"garmentscore/internal/cache"
	"garmentscore/internal/logger"
	"garmentscore/internal/metrics"
	"garmentscore/internal/model"
	"garmentscore/internal/repository"
	"garmentscore/internal/scoring"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

// CatalogSource provides the active catalog
type CatalogSource interface {
	GetActive(ctx context.Context) (*model.Catalog, error)
}

// AssessmentService runs a submission through scoring, narrative and persistence
type AssessmentService struct {
	catalogs       CatalogSource
	assessmentRepo repository.AssessmentRepo
	reportRepo     repository.ReportRepo
	reportCache    cache.ReportCache
	scoreboard     cache.ScoreboardCache
	narrator       Narrator
	broadcaster    Broadcaster
	log            *logger.Logger

	now   func() time.Time
	newID func() string
}

// NewAssessmentService creates a new assessment service
func NewAssessmentService(
	catalogs CatalogSource,
	assessmentRepo repository.AssessmentRepo,
	reportRepo repository.ReportRepo,
	reportCache cache.ReportCache,
	scoreboard cache.ScoreboardCache,
	narrator Narrator,
	log *logger.Logger,
) *AssessmentService {
	return &AssessmentService{
		catalogs:       catalogs,
		assessmentRepo: assessmentRepo,
		reportRepo:     reportRepo,
		reportCache:    reportCache,
		scoreboard:     scoreboard,
		narrator:       narrator,
		log:            log,
		now:            time.Now,
		newID:          uuid.NewString,
	}
}

// SetBroadcaster sets the admin feed broadcaster (called after hub is created)
func (s *AssessmentService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Submit scores a completed questionnaire and returns its report.
// Integrity violations come back as *scoring.IntegrityError and nothing is stored.
func (s *AssessmentService) Submit(ctx context.Context, clientID string, req *model.SubmissionRequest) (*model.Report, error) {
	start := time.Now()

	catalog, err := s.catalogs.GetActive(ctx)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	completedAt := s.now().UTC()
	scored, err := scoring.Score(catalog, req.Responses, completedAt)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	insights := s.narrator.Generate(ctx, catalog, scored, req.BusinessContext)

	assessmentID := s.newID()
	report := scoring.Assemble(scoring.AssembleInput{
		ReportID:     s.newID(),
		AssessmentID: assessmentID,
		ClientID:     clientID,
		Catalog:      catalog,
		Scored:       scored,
		Context:      req.BusinessContext,
		Insights:     insights,
		CreatedAt:    completedAt,
	})

	record := &model.AssessmentRecord{
		ID:              assessmentID,
		ClientID:        clientID,
		Result:          scored.Result,
		BusinessContext: req.BusinessContext,
		CreatedAt:       completedAt,
	}
	if err := s.assessmentRepo.SaveSubmission(ctx, record, s.responseRecords(assessmentID, req.Responses)); err != nil {
		metrics.SubmissionsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("save assessment: %w", err)
	}
	if err := s.reportRepo.Save(ctx, report); err != nil {
		metrics.SubmissionsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("save report: %w", err)
	}

	s.afterReport(ctx, report, EventAssessmentCompleted, true)

	metrics.SubmissionsTotal.WithLabelValues("ok").Inc()
	metrics.PipelineDuration.Observe(time.Since(start).Seconds())
	s.log.Info("assessment completed",
		"assessment_id", assessmentID,
		"client_id", clientID,
		"percentage", report.Result.OverallPercentage,
		"grade", report.Result.Grade,
		"narrative", report.AIInsights.Source,
	)
	return report, nil
}

// responseRecords orders rows by question id so stored data is reproducible
func (s *AssessmentService) responseRecords(assessmentID string, responses model.Responses) []model.ResponseRecord {
	ids := make([]string, 0, len(responses))
	for id := range responses {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([]model.ResponseRecord, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, model.ResponseRecord{
			ID:           s.newID(),
			AssessmentID: assessmentID,
			QuestionID:   id,
			Value:        responses[id],
		})
	}
	return rows
}

// afterReport runs the best-effort side effects of a stored report.
// The scoreboard is only touched when the report belongs to the client's newest assessment.
func (s *AssessmentService) afterReport(ctx context.Context, report *model.Report, event string, latest bool) {
	metrics.GradeTotal.WithLabelValues(string(report.Result.Grade)).Inc()

	if err := s.reportCache.Set(ctx, report); err != nil {
		s.log.Warn("report cache write failed", "report_id", report.ID, "error", err)
	}
	if latest {
		if err := s.scoreboard.Record(ctx, report.ClientID, report.Result.OverallPercentage); err != nil {
			s.log.Warn("scoreboard update failed", "client_id", report.ClientID, "error", err)
		}
	}
	if s.broadcaster == nil {
		return
	}

	source := model.NarrativeFallback
	if report.AIInsights != nil {
		source = report.AIInsights.Source
	}
	s.broadcaster.BroadcastToAdmins(event, AssessmentEvent{
		AssessmentID:    report.AssessmentID,
		ReportID:        report.ID,
		ClientID:        report.ClientID,
		CompanyName:     report.BusinessContext.CompanyName,
		Percentage:      report.Result.OverallPercentage,
		Grade:           string(report.Result.Grade),
		PerformanceTier: report.Result.PerformanceTier,
		NarrativeSource: string(source),
	})
}

// isLatest reports whether no other assessment of the same client was created after record
func (s *AssessmentService) isLatest(ctx context.Context, record *model.AssessmentRecord) bool {
	records, err := s.assessmentRepo.GetByClientID(ctx, record.ClientID)
	if err != nil {
		s.log.Warn("assessment history lookup failed", "client_id", record.ClientID, "error", err)
		return false
	}
	for _, r := range records {
		if r.ID != record.ID && r.CreatedAt.After(record.CreatedAt) {
			return false
		}
	}
	return true
}

// Get returns a stored assessment. A non-empty clientID restricts access to its owner.
func (s *AssessmentService) Get(ctx context.Context, id, clientID string) (*model.AssessmentRecord, error) {
	record, err := s.assessmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrNotFound
	}
	if clientID != "" && record.ClientID != clientID {
		return nil, ErrForbidden
	}
	return record, nil
}

// ListByClient returns a client's assessment history, newest first
func (s *AssessmentService) ListByClient(ctx context.Context, clientID string) ([]model.AssessmentSummary, error) {
	records, err := s.assessmentRepo.GetByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	out := make([]model.AssessmentSummary, 0, len(records))
	for _, r := range records {
		out = append(out, model.AssessmentSummary{
			ID:                r.ID,
			ClientID:          r.ClientID,
			CompanyName:       r.BusinessContext.CompanyName,
			OverallPercentage: r.Result.OverallPercentage,
			Grade:             r.Result.Grade,
			PerformanceTier:   r.Result.PerformanceTier,
			CreatedAt:         r.CreatedAt,
		})
	}
	return out, nil
}
