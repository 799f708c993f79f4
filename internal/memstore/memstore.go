// Package memstore provides in-memory repositories and caches for tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"garmentscore/internal/cache"
	"garmentscore/internal/model"
)

// Catalog serves a fixed catalog
type Catalog struct {
	C *model.Catalog
}

func (s *Catalog) GetActive(ctx context.Context) (*model.Catalog, error) {
	return s.C, nil
}

// Assessments implements repository.AssessmentRepo
type Assessments struct {
	mu        sync.Mutex
	records   map[string]*model.AssessmentRecord
	responses map[string][]model.ResponseRecord
}

func NewAssessments() *Assessments {
	return &Assessments{
		records:   make(map[string]*model.AssessmentRecord),
		responses: make(map[string][]model.ResponseRecord),
	}
}

func (s *Assessments) SaveSubmission(ctx context.Context, record *model.AssessmentRecord, responses []model.ResponseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = record
	s.responses[record.ID] = responses
	return nil
}

func (s *Assessments) GetByID(ctx context.Context, id string) (*model.AssessmentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[id], nil
}

func (s *Assessments) GetByClientID(ctx context.Context, clientID string) ([]*model.AssessmentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.AssessmentRecord
	for _, r := range s.records {
		if r.ClientID == clientID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Assessments) GetResponses(ctx context.Context, assessmentID string) (model.Responses, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := model.Responses{}
	for _, r := range s.responses[assessmentID] {
		out[r.QuestionID] = r.Value
	}
	return out, nil
}

// Reports implements repository.ReportRepo
type Reports struct {
	mu      sync.Mutex
	reports map[string]*model.Report
	order   []string
}

func NewReports() *Reports {
	return &Reports{reports: make(map[string]*model.Report)}
}

func (s *Reports) Save(ctx context.Context, r *model.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[r.ID] = r
	s.order = append(s.order, r.ID)
	return nil
}

func (s *Reports) GetByID(ctx context.Context, id string) (*model.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reports[id], nil
}

func (s *Reports) GetLatestByAssessment(ctx context.Context, assessmentID string) (*model.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.order) - 1; i >= 0; i-- {
		if r := s.reports[s.order[i]]; r.AssessmentID == assessmentID {
			return r, nil
		}
	}
	return nil, nil
}

// ReportCache implements cache.ReportCache without expiry
type ReportCache struct {
	mu      sync.Mutex
	reports map[string]*model.Report
	latest  map[string]string
}

func NewReportCache() *ReportCache {
	return &ReportCache{reports: make(map[string]*model.Report), latest: make(map[string]string)}
}

func (c *ReportCache) Get(ctx context.Context, id string) (*model.Report, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reports[id], nil
}

func (c *ReportCache) Set(ctx context.Context, r *model.Report) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports[r.ID] = r
	c.latest[r.AssessmentID] = r.ID
	return nil
}

func (c *ReportCache) GetLatestID(ctx context.Context, assessmentID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest[assessmentID], nil
}

// Scoreboard implements cache.ScoreboardCache
type Scoreboard struct {
	mu     sync.Mutex
	scores map[string]float64
}

func NewScoreboard() *Scoreboard {
	return &Scoreboard{scores: make(map[string]float64)}
}

func (s *Scoreboard) Record(ctx context.Context, clientID string, pct float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[clientID] = pct
	return nil
}

func (s *Scoreboard) GetTop(ctx context.Context, limit int) ([]cache.ScoreboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]cache.ScoreboardEntry, 0, len(s.scores))
	for id, pct := range s.scores {
		out = append(out, cache.ScoreboardEntry{ClientID: id, Percentage: pct})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Percentage != out[j].Percentage {
			return out[i].Percentage > out[j].Percentage
		}
		return out[i].ClientID < out[j].ClientID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}

func (s *Scoreboard) GetRank(ctx context.Context, clientID string) (*cache.ScoreboardEntry, error) {
	top, _ := s.GetTop(ctx, 0)
	for i := range top {
		if top[i].ClientID == clientID {
			return &top[i], nil
		}
	}
	return nil, nil
}

// Approvals implements cache.ApprovalCache; ttl is ignored
type Approvals struct {
	mu        sync.Mutex
	approvals map[string]*cache.Approval
}

func NewApprovals() *Approvals {
	return &Approvals{approvals: make(map[string]*cache.Approval)}
}

func (s *Approvals) Set(ctx context.Context, a *cache.Approval, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.approvals[a.ClientID] = a
	return nil
}

func (s *Approvals) Get(ctx context.Context, clientID string) (*cache.Approval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.approvals[clientID], nil
}

func (s *Approvals) Delete(ctx context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.approvals, clientID)
	return nil
}
