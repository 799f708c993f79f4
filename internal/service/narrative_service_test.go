package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garmentscore/internal/config"
	"garmentscore/internal/logger"
	"garmentscore/internal/model"
	"garmentscore/internal/scoring"
)

func testCatalog() *model.Catalog {
	c := &model.Catalog{
		Categories: []model.Category{
			{ID: "prod", Name: "Production", Ordinal: 1},
			{ID: "qual", Name: "Quality", Ordinal: 2},
		},
		Questions: []model.Question{
			{ID: "p1", Text: "Line balancing", CategoryID: "prod", Ordinal: 1},
			{ID: "p2", Text: "Cut planning", CategoryID: "prod", Ordinal: 2},
			{ID: "q1", Text: "Inline inspection", CategoryID: "qual", Ordinal: 3},
		},
	}
	c.Resolve()
	return c
}

func testScored(t *testing.T, catalog *model.Catalog) *scoring.Scored {
	t.Helper()
	scored, err := scoring.Score(catalog, model.Responses{"p1": 4, "p2": 2, "q1": 0}, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)
	return scored
}

// chatServer answers /chat/completions with the given status and message content.
func chatServer(t *testing.T, status int, content string, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		format, _ := body["response_format"].(map[string]interface{})
		assert.Equal(t, "json_object", format["type"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte(`{"error":{"message":"upstream failure","type":"server_error"}}`))
			return
		}
		resp := map[string]interface{}{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]interface{}{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": content},
			}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func newTestNarrative(baseURL string, timeoutMS int) *NarrativeService {
	return NewNarrativeService(&config.AIConfig{
		APIKey:    "sk-test",
		BaseURL:   baseURL,
		Model:     "gpt-4o-mini",
		TimeoutMS: timeoutMS,
	}, logger.Nop())
}

func TestNarrative_Success(t *testing.T) {
	var calls int32
	content := `{"executive_summary":"Strong production, weak quality.","category_insights":[{"category":"Quality","insight":"Add inline checks."}],"quick_wins":[{"title":"Inline QC","description":"Start inline inspection.","category":"Quality"}],"roadmap":[{"stage":"Stabilize","timeframe":"0-30 days","actions":["Hire a QC lead"]}]}`
	srv := chatServer(t, http.StatusOK, content, &calls)
	defer srv.Close()

	catalog := testCatalog()
	ins := newTestNarrative(srv.URL, 5000).Generate(context.Background(), catalog, testScored(t, catalog), model.BusinessContext{CompanyName: "Acme"})

	require.NotNil(t, ins)
	assert.Equal(t, model.NarrativeAI, ins.Source)
	assert.Equal(t, "Strong production, weak quality.", ins.ExecutiveSummary)
	require.Len(t, ins.QuickWins, 1)
	assert.Equal(t, "Inline QC", ins.QuickWins[0].Title)
	require.Len(t, ins.Roadmap, 1)
	assert.Equal(t, []string{"Hire a QC lead"}, ins.Roadmap[0].Actions)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestNarrative_HTTP500FallsBackWithoutRetry(t *testing.T) {
	var calls int32
	srv := chatServer(t, http.StatusInternalServerError, "", &calls)
	defer srv.Close()

	catalog := testCatalog()
	ins := newTestNarrative(srv.URL, 5000).Generate(context.Background(), catalog, testScored(t, catalog), model.BusinessContext{})

	require.NotNil(t, ins)
	assert.Equal(t, model.NarrativeFallback, ins.Source)
	assert.NotEmpty(t, ins.ExecutiveSummary)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestNarrative_MalformedJSONFallsBack(t *testing.T) {
	for _, content := range []string{"not json at all", `{"category_insights":[]}`} {
		var calls int32
		srv := chatServer(t, http.StatusOK, content, &calls)

		catalog := testCatalog()
		ins := newTestNarrative(srv.URL, 5000).Generate(context.Background(), catalog, testScored(t, catalog), model.BusinessContext{})
		srv.Close()

		require.NotNil(t, ins)
		assert.Equal(t, model.NarrativeFallback, ins.Source, content)
		assert.NotEmpty(t, ins.ExecutiveSummary)
	}
}

func TestNarrative_TimeoutFallsBack(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	catalog := testCatalog()
	start := time.Now()
	ins := newTestNarrative(srv.URL, 100).Generate(context.Background(), catalog, testScored(t, catalog), model.BusinessContext{})

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, model.NarrativeFallback, ins.Source)
	assert.NotEmpty(t, ins.ExecutiveSummary)
}

func TestNarrative_DisabledNeverCallsOut(t *testing.T) {
	svc := NewNarrativeService(&config.AIConfig{BaseURL: "http://127.0.0.1:1"}, logger.Nop())
	catalog := testCatalog()
	scored := testScored(t, catalog)

	ins := svc.Generate(context.Background(), catalog, scored, model.BusinessContext{})
	want := scoring.FallbackNarrative(catalog, scored.Result, model.BusinessContext{}, scored.Answers)
	assert.Equal(t, want, ins)
}

func TestParseNarrative_CodeFence(t *testing.T) {
	ins, err := parseNarrative("```json\n{\"executive_summary\":\"ok\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "ok", ins.ExecutiveSummary)
	assert.NotNil(t, ins.QuickWins)
}

func TestBuildNarrativePrompt(t *testing.T) {
	catalog := testCatalog()
	prompt := buildNarrativePrompt(catalog, testScored(t, catalog), model.BusinessContext{CompanyName: "Acme", Goals: "Export to EU"})

	assert.Contains(t, prompt, "Overall: 6/12 (50.0%), grade D")
	assert.Contains(t, prompt, "- Production: 6/8 (75.0%, 2 questions)")
	assert.Contains(t, prompt, "[Quality] Inline inspection -> \"Not at all\"")
	assert.NotContains(t, prompt, "Line balancing")
	assert.Contains(t, prompt, "- Company: Acme")
	assert.Contains(t, prompt, "- Goals: Export to EU")
	assert.Contains(t, prompt, "- Challenges: n/a")
}
