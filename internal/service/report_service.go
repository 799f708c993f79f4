package service

import (
	"context"
	"fmt"

	"garmentscore/internal/cache"
	"garmentscore/internal/model"
	"garmentscore/internal/repository"
	"garmentscore/internal/scoring"
)

// ReportService reads reports and regenerates them from stored responses
type ReportService struct {
	assessments *AssessmentService
	reportRepo  repository.ReportRepo
	reportCache cache.ReportCache
	scoreboard  cache.ScoreboardCache
}

// NewReportService creates a new report service
func NewReportService(
	assessments *AssessmentService,
	reportRepo repository.ReportRepo,
	reportCache cache.ReportCache,
	scoreboard cache.ScoreboardCache,
) *ReportService {
	return &ReportService{
		assessments: assessments,
		reportRepo:  reportRepo,
		reportCache: reportCache,
		scoreboard:  scoreboard,
	}
}

// GetByID returns a report. A non-empty clientID restricts access to its owner.
func (s *ReportService) GetByID(ctx context.Context, id, clientID string) (*model.Report, error) {
	report, err := s.reportCache.Get(ctx, id)
	if err != nil {
		s.assessments.log.Warn("report cache read failed", "report_id", id, "error", err)
	}
	if report == nil {
		report, err = s.reportRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
	}
	if report == nil {
		return nil, ErrNotFound
	}
	if clientID != "" && report.ClientID != clientID {
		return nil, ErrForbidden
	}
	return report, nil
}

// GetLatest returns the newest report of an assessment
func (s *ReportService) GetLatest(ctx context.Context, assessmentID, clientID string) (*model.Report, error) {
	id, err := s.reportCache.GetLatestID(ctx, assessmentID)
	if err != nil {
		s.assessments.log.Warn("report cache read failed", "assessment_id", assessmentID, "error", err)
	}
	if id != "" {
		return s.GetByID(ctx, id, clientID)
	}

	report, err := s.reportRepo.GetLatestByAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, ErrNotFound
	}
	if clientID != "" && report.ClientID != clientID {
		return nil, ErrForbidden
	}
	return report, nil
}

// Regenerate rebuilds a report from the stored responses against the current
// catalog. The assessment keeps its completion time; the report gets a new id.
func (s *ReportService) Regenerate(ctx context.Context, assessmentID string) (*model.Report, error) {
	a := s.assessments

	record, err := a.Get(ctx, assessmentID, "")
	if err != nil {
		return nil, err
	}
	responses, err := a.assessmentRepo.GetResponses(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("load responses: %w", err)
	}
	catalog, err := a.catalogs.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	scored, err := scoring.Score(catalog, responses, record.Result.CompletedAt)
	if err != nil {
		return nil, err
	}
	insights := a.narrator.Generate(ctx, catalog, scored, record.BusinessContext)

	report := scoring.Assemble(scoring.AssembleInput{
		ReportID:     a.newID(),
		AssessmentID: record.ID,
		ClientID:     record.ClientID,
		Catalog:      catalog,
		Scored:       scored,
		Context:      record.BusinessContext,
		Insights:     insights,
		CreatedAt:    a.now(),
	})
	if err := s.reportRepo.Save(ctx, report); err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}

	a.afterReport(ctx, report, EventReportRegenerated, a.isLatest(ctx, record))
	a.log.Info("report regenerated", "assessment_id", record.ID, "report_id", report.ID)
	return report, nil
}

// Scoreboard returns clients ranked by their latest overall percentage
func (s *ReportService) Scoreboard(ctx context.Context, limit int) ([]cache.ScoreboardEntry, error) {
	return s.scoreboard.GetTop(ctx, limit)
}

// Standing returns one client's position on the scoreboard
func (s *ReportService) Standing(ctx context.Context, clientID string) (*cache.ScoreboardEntry, error) {
	entry, err := s.scoreboard.GetRank(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrNotFound
	}
	return entry, nil
}
