package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"garmentscore/internal/config"
	"garmentscore/internal/logger"
	"garmentscore/internal/memstore"
	"garmentscore/internal/model"
)

var errStore = errors.New("store unavailable")

type fakeCatalogSource struct {
	catalog *model.Catalog
	err     error
}

func (f *fakeCatalogSource) GetActive(ctx context.Context) (*model.Catalog, error) {
	return f.catalog, f.err
}

type fakeCatalogRepo struct {
	catalog     *model.Catalog
	categories  []string
	questions   []string
	deactivated []string
	kept        []string
	reads       int
}

func (f *fakeCatalogRepo) GetActive(ctx context.Context) (*model.Catalog, error) {
	f.reads++
	return f.catalog, nil
}

func (f *fakeCatalogRepo) UpsertCategory(ctx context.Context, c *model.Category) error {
	f.categories = append(f.categories, c.ID)
	return nil
}

func (f *fakeCatalogRepo) UpsertQuestion(ctx context.Context, q *model.Question) error {
	f.questions = append(f.questions, q.ID)
	return nil
}

func (f *fakeCatalogRepo) DeactivateMissing(ctx context.Context, keepIDs []string) error {
	f.deactivated = keepIDs
	return nil
}

func (f *fakeCatalogRepo) RetireMissingCategories(ctx context.Context, keepIDs []string) error {
	f.kept = keepIDs
	return nil
}

type fakeCatalogCache struct {
	catalog     *model.Catalog
	err         error
	invalidated bool
}

func (f *fakeCatalogCache) Get(ctx context.Context) (*model.Catalog, error) {
	return f.catalog, f.err
}

func (f *fakeCatalogCache) Set(ctx context.Context, c *model.Catalog) error {
	if f.err != nil {
		return f.err
	}
	f.catalog = c
	return nil
}

func (f *fakeCatalogCache) Invalidate(ctx context.Context) error {
	f.invalidated = true
	f.catalog = nil
	return nil
}

type fakeAssessmentRepo struct {
	records   map[string]*model.AssessmentRecord
	responses map[string][]model.ResponseRecord
	saveErr   error
}

func newFakeAssessmentRepo() *fakeAssessmentRepo {
	return &fakeAssessmentRepo{
		records:   make(map[string]*model.AssessmentRecord),
		responses: make(map[string][]model.ResponseRecord),
	}
}

func (f *fakeAssessmentRepo) SaveSubmission(ctx context.Context, record *model.AssessmentRecord, responses []model.ResponseRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.records[record.ID] = record
	f.responses[record.ID] = responses
	return nil
}

func (f *fakeAssessmentRepo) GetByID(ctx context.Context, id string) (*model.AssessmentRecord, error) {
	return f.records[id], nil
}

func (f *fakeAssessmentRepo) GetByClientID(ctx context.Context, clientID string) ([]*model.AssessmentRecord, error) {
	var out []*model.AssessmentRecord
	for _, r := range f.records {
		if r.ClientID == clientID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeAssessmentRepo) GetResponses(ctx context.Context, assessmentID string) (model.Responses, error) {
	out := model.Responses{}
	for _, r := range f.responses[assessmentID] {
		out[r.QuestionID] = r.Value
	}
	return out, nil
}

type fakeReportRepo struct {
	reports map[string]*model.Report
	saved   []string
	saveErr error
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{reports: make(map[string]*model.Report)}
}

func (f *fakeReportRepo) Save(ctx context.Context, r *model.Report) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.reports[r.ID] = r
	f.saved = append(f.saved, r.ID)
	return nil
}

func (f *fakeReportRepo) GetByID(ctx context.Context, id string) (*model.Report, error) {
	return f.reports[id], nil
}

func (f *fakeReportRepo) GetLatestByAssessment(ctx context.Context, assessmentID string) (*model.Report, error) {
	for i := len(f.saved) - 1; i >= 0; i-- {
		if r := f.reports[f.saved[i]]; r.AssessmentID == assessmentID {
			return r, nil
		}
	}
	return nil, nil
}

type sentEvent struct {
	Type    string
	Payload interface{}
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []sentEvent
}

func (f *fakeBroadcaster) BroadcastToAdmins(msgType string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, sentEvent{Type: msgType, Payload: payload})
}

// sequentialIDs returns an id generator yielding id-1, id-2, ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

type testEnv struct {
	catalog     *model.Catalog
	assessments *fakeAssessmentRepo
	reports     *fakeReportRepo
	reportCache *memstore.ReportCache
	scoreboard  *memstore.Scoreboard
	broadcaster *fakeBroadcaster
	svc         *AssessmentService
	reportSvc   *ReportService
}

var fixedNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func newTestEnv() *testEnv {
	env := &testEnv{
		catalog:     testCatalog(),
		assessments: newFakeAssessmentRepo(),
		reports:     newFakeReportRepo(),
		reportCache: memstore.NewReportCache(),
		scoreboard:  memstore.NewScoreboard(),
		broadcaster: &fakeBroadcaster{},
	}
	narrator := NewNarrativeService(&config.AIConfig{}, logger.Nop())
	env.svc = NewAssessmentService(&fakeCatalogSource{catalog: env.catalog}, env.assessments, env.reports, env.reportCache, env.scoreboard, narrator, logger.Nop())
	env.svc.now = func() time.Time { return fixedNow }
	env.svc.newID = sequentialIDs()
	env.svc.SetBroadcaster(env.broadcaster)
	env.reportSvc = NewReportService(env.svc, env.reports, env.reportCache, env.scoreboard)
	return env
}
