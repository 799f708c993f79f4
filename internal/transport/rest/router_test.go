package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garmentscore/internal/config"
	"garmentscore/internal/logger"
	"garmentscore/internal/memstore"
	"garmentscore/internal/model"
	"garmentscore/internal/service"
)

func routerCatalog() *model.Catalog {
	c := &model.Catalog{
		Categories: []model.Category{
			{ID: "prod", Name: "Production", Ordinal: 1},
			{ID: "qual", Name: "Quality", Ordinal: 2},
		},
		Questions: []model.Question{
			{ID: "p1", Text: "Line balancing", CategoryID: "prod", Ordinal: 1, Active: true},
			{ID: "p2", Text: "Cut planning", CategoryID: "prod", Ordinal: 2, Active: true},
			{ID: "q1", Text: "Inline inspection", CategoryID: "qual", Ordinal: 3, Active: true},
		},
	}
	c.Resolve()
	return c
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	log := logger.Nop()
	cfg := &config.Config{AdminUsername: "admin", AdminPassword: "pw", JWTSecret: "secret"}

	catalogs := &memstore.Catalog{C: routerCatalog()}
	reports := memstore.NewReports()
	reportCache := memstore.NewReportCache()
	scoreboard := memstore.NewScoreboard()

	narrator := service.NewNarrativeService(&config.AIConfig{}, log)
	assessments := service.NewAssessmentService(catalogs, memstore.NewAssessments(), reports, reportCache, scoreboard, narrator, log)

	return NewRouter(&Container{
		AuthService:       service.NewAuthService(cfg, memstore.NewApprovals()),
		CatalogService:    catalogs,
		AssessmentService: assessments,
		ReportService:     service.NewReportService(assessments, reports, reportCache, scoreboard),
		Log:               log,
	})
}

func do(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func adminToken(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := do(t, h, "POST", "/v1/auth/login", "", model.LoginRequest{Username: "admin", Password: "pw"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp model.LoginResponse
	decode(t, rec, &resp)
	return resp.Token
}

func clientToken(t *testing.T, h http.Handler, admin, clientID string) string {
	t.Helper()
	rec := do(t, h, "POST", "/v1/clients/"+clientID+"/token", admin, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp model.ClientTokenResponse
	decode(t, rec, &resp)
	assert.Equal(t, clientID, resp.ClientID)
	return resp.Token
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, h, "GET", "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, "POST", "/v1/auth/login", "", model.LoginRequest{Username: "admin", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, "POST", "/v1/auth/login", "", `{"username":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "required", body.Fields["Password"])

	rec = do(t, h, "POST", "/v1/auth/login", "", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssessmentFlow(t *testing.T) {
	h := newTestRouter(t)
	admin := adminToken(t, h)
	client := clientToken(t, h, admin, "acme-1")

	rec := do(t, h, "GET", "/v1/catalog", client, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var c model.Catalog
	decode(t, rec, &c)
	assert.Len(t, c.Questions, 3)

	rec = do(t, h, "POST", "/v1/assessments", client, model.SubmissionRequest{
		Responses:       model.Responses{"p1": 4, "p2": 2, "q1": 0},
		BusinessContext: model.BusinessContext{CompanyName: "Acme"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var report model.Report
	decode(t, rec, &report)
	assert.Equal(t, model.GradeD, report.Result.Grade)
	assert.InDelta(t, 50.0, report.Result.OverallPercentage, 1e-9)
	assert.Equal(t, "acme-1", report.ClientID)
	assert.Len(t, report.HeatMap, 3)
	require.NotNil(t, report.AIInsights)
	assert.NotEmpty(t, report.CallsToAction)

	rec = do(t, h, "GET", "/v1/reports/"+report.ID, client, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, "GET", "/v1/assessments/"+report.AssessmentID, client, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, "GET", "/v1/assessments/"+report.AssessmentID+"/report", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	other := clientToken(t, h, admin, "other-2")
	rec = do(t, h, "GET", "/v1/reports/"+report.ID, other, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do(t, h, "GET", "/v1/reports/does-not-exist", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, "GET", "/v1/clients/acme-1/assessments", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []model.AssessmentSummary
	decode(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, report.AssessmentID, list[0].ID)

	rec = do(t, h, "POST", "/v1/assessments/"+report.AssessmentID+"/report", admin, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var regenerated model.Report
	decode(t, rec, &regenerated)
	assert.NotEqual(t, report.ID, regenerated.ID)
	assert.Equal(t, report.Result.OverallPercentage, regenerated.Result.OverallPercentage)

	rec = do(t, h, "GET", "/v1/scoreboard?limit=5", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var board []map[string]interface{}
	decode(t, rec, &board)
	require.Len(t, board, 1)
	assert.Equal(t, "acme-1", board[0]["clientId"])

	rec = do(t, h, "GET", "/v1/scoreboard?limit=0", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, "GET", "/v1/scoreboard/acme-1", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var standing map[string]interface{}
	decode(t, rec, &standing)
	assert.Equal(t, float64(1), standing["rank"])
	rec = do(t, h, "GET", "/v1/scoreboard/nobody", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmit_RejectsInvalidResponses(t *testing.T) {
	h := newTestRouter(t)
	client := clientToken(t, h, adminToken(t, h), "acme-1")

	rec := do(t, h, "POST", "/v1/assessments", client, `{"responses":{"p1":7,"zz":1}}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Error      string `json:"error"`
		Violations []struct {
			QuestionID string `json:"questionId"`
			Reason     string `json:"reason"`
		} `json:"violations"`
	}
	decode(t, rec, &body)
	require.Len(t, body.Violations, 2)
	assert.Equal(t, "p1", body.Violations[0].QuestionID)
	assert.Equal(t, "out_of_range", body.Violations[0].Reason)
	assert.Equal(t, "zz", body.Violations[1].QuestionID)
	assert.Equal(t, "unknown_question", body.Violations[1].Reason)
	assert.True(t, strings.HasPrefix(body.Error, "invalid responses"))

	rec = do(t, h, "POST", "/v1/assessments", client, `{"responses":{},"businessContext":{"employees":-3}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmit_MissingResponsesIsEmptySubmission(t *testing.T) {
	h := newTestRouter(t)
	client := clientToken(t, h, adminToken(t, h), "acme-1")

	rec := do(t, h, "POST", "/v1/assessments", client, `{"businessContext":{"companyName":"Acme"}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var report model.Report
	decode(t, rec, &report)
	assert.Equal(t, 0, report.Result.TotalMaxScore)
	assert.Equal(t, 0.0, report.Result.OverallPercentage)
	assert.Empty(t, report.HeatMap)
}

func TestAuthorization(t *testing.T) {
	h := newTestRouter(t)
	admin := adminToken(t, h)
	client := clientToken(t, h, admin, "acme-1")

	rec := do(t, h, "GET", "/v1/catalog", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, "GET", "/v1/scoreboard", client, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, "POST", "/v1/assessments", admin, `{"responses":{}}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, "POST", "/v1/clients/bad%20id/token", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, "DELETE", "/v1/clients/acme-1/token", admin, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, "GET", "/v1/catalog", client, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, "OPTIONS", "/v1/assessments", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
