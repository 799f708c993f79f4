package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"garmentscore/internal/config"
	"garmentscore/internal/logger"
	"garmentscore/internal/metrics"
	"garmentscore/internal/model"
	"garmentscore/internal/scoring"
)

// Fallback reasons reported in logs and metrics.
const (
	reasonDisabled  = "disabled"
	reasonTimeout   = "timeout"
	reasonRequest   = "request"
	reasonMalformed = "malformed"
)

const systemPrompt = "You are a senior consultant for garment manufacturers. You write concise, practical business assessments. Respond with a single JSON object only."

// Narrator produces the narrative insights of a report. Implementations must
// not fail: any problem degrades to the rule-based narrative.
type Narrator interface {
	Generate(ctx context.Context, catalog *model.Catalog, scored *scoring.Scored, bc model.BusinessContext) *model.NarrativeInsights
}

// NarrativeService asks an OpenAI-compatible model for report narrative
type NarrativeService struct {
	config *config.AIConfig
	client *openai.Client
	log    *logger.Logger
}

// NewNarrativeService creates a new narrative service. Without an API key it
// always uses the fallback narrative.
func NewNarrativeService(cfg *config.AIConfig, log *logger.Logger) *NarrativeService {
	s := &NarrativeService{config: cfg, log: log}
	if cfg.IsEnabled() {
		oc := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			oc.BaseURL = cfg.BaseURL
		}
		oc.HTTPClient = &http.Client{Timeout: cfg.Timeout()}
		s.client = openai.NewClientWithConfig(oc)
	}
	return s
}

// Generate makes one bounded attempt at the model, then falls back. Never retries.
func (s *NarrativeService) Generate(ctx context.Context, catalog *model.Catalog, scored *scoring.Scored, bc model.BusinessContext) *model.NarrativeInsights {
	if s.client == nil {
		return s.fallback(catalog, scored, bc, reasonDisabled, nil)
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout())
	defer cancel()

	start := time.Now()
	content, err := s.callModel(ctx, buildNarrativePrompt(catalog, scored, bc))
	metrics.NarrativeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		reason := reasonRequest
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			reason = reasonTimeout
		}
		return s.fallback(catalog, scored, bc, reason, err)
	}

	insights, err := parseNarrative(content)
	if err != nil {
		return s.fallback(catalog, scored, bc, reasonMalformed, err)
	}

	metrics.NarrativeTotal.WithLabelValues(metrics.OutcomeAI, "").Inc()
	return insights
}

func (s *NarrativeService) fallback(catalog *model.Catalog, scored *scoring.Scored, bc model.BusinessContext, reason string, err error) *model.NarrativeInsights {
	metrics.NarrativeTotal.WithLabelValues(metrics.OutcomeFallback, reason).Inc()
	if err != nil {
		s.log.Warn("narrative generation failed, using fallback", "reason", reason, "error", err)
	}
	return scoring.FallbackNarrative(catalog, scored.Result, bc, scored.Answers)
}

// callModel sends a single chat completion requesting a JSON object
func (s *NarrativeService) callModel(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: s.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.4,
	}
	if s.config.MaxTokens > 0 {
		req.MaxCompletionTokens = s.config.MaxTokens
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return resp.Choices[0].Message.Content, nil
}

// narrativeResponse is the JSON shape the prompt asks for
type narrativeResponse struct {
	ExecutiveSummary string `json:"executive_summary"`
	CategoryInsights []struct {
		Category string `json:"category"`
		Insight  string `json:"insight"`
	} `json:"category_insights"`
	QuickWins []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Category    string `json:"category"`
	} `json:"quick_wins"`
	Roadmap []struct {
		Stage     string   `json:"stage"`
		Timeframe string   `json:"timeframe"`
		Actions   []string `json:"actions"`
	} `json:"roadmap"`
}

func parseNarrative(content string) (*model.NarrativeInsights, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var raw narrativeResponse
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("decode narrative: %w", err)
	}
	if strings.TrimSpace(raw.ExecutiveSummary) == "" {
		return nil, fmt.Errorf("decode narrative: missing executive_summary")
	}

	out := &model.NarrativeInsights{
		ExecutiveSummary: strings.TrimSpace(raw.ExecutiveSummary),
		CategoryInsights: []model.CategoryInsight{},
		QuickWins:        []model.QuickWin{},
		Roadmap:          []model.RoadmapStage{},
		Source:           model.NarrativeAI,
	}
	for _, c := range raw.CategoryInsights {
		out.CategoryInsights = append(out.CategoryInsights, model.CategoryInsight{Category: c.Category, Insight: c.Insight})
	}
	for _, w := range raw.QuickWins {
		out.QuickWins = append(out.QuickWins, model.QuickWin{Title: w.Title, Description: w.Description, Category: w.Category})
	}
	for _, r := range raw.Roadmap {
		actions := r.Actions
		if actions == nil {
			actions = []string{}
		}
		out.Roadmap = append(out.Roadmap, model.RoadmapStage{Stage: r.Stage, Timeframe: r.Timeframe, Actions: actions})
	}
	return out, nil
}

func buildNarrativePrompt(catalog *model.Catalog, scored *scoring.Scored, bc model.BusinessContext) string {
	result := scored.Result

	var cats strings.Builder
	for _, name := range catalog.CategoryNames() {
		cs := result.CategoryScores[name]
		if cs.QuestionCount == 0 {
			fmt.Fprintf(&cats, "- %s: not answered\n", name)
			continue
		}
		fmt.Fprintf(&cats, "- %s: %d/%d (%.1f%%, %d questions)\n", name, cs.Score, cs.MaxScore, cs.Percentage, cs.QuestionCount)
	}

	var weak strings.Builder
	for _, a := range scoring.CriticalAnswers(scored.Answers) {
		fmt.Fprintf(&weak, "- [%s] %s -> \"%s\" (%d/%d, %s)\n", a.CategoryName, a.QuestionText, a.ResponseLabel, a.Score, a.MaxScore, a.Bucket)
	}
	if weak.Len() == 0 {
		weak.WriteString("- none\n")
	}

	return fmt.Sprintf(`Write an assessment narrative for this garment manufacturer. Return ONLY valid JSON matching this schema:
{
  "executive_summary": "3-4 sentences",
  "category_insights": [{"category": "category name", "insight": "2 sentences"}],
  "quick_wins": [{"title": "short title", "description": "what to do in the next 30 days", "category": "category name"}],
  "roadmap": [{"stage": "Stabilize|Improve|Scale", "timeframe": "e.g. 0-30 days", "actions": ["action"]}]
}

Overall: %d/%d (%.1f%%), grade %s, tier %s

Category scores:
%s
Weakest answers:
%s
Business context:
- Company: %s
- Product categories: %s
- Employees: %d
- Monthly capacity (pieces): %d
- Annual revenue: %s
- Primary markets: %s
- Goals: %s
- Challenges: %s

Give 3-5 quick wins focused on the weakest answers and a 3-stage roadmap. Refer to the business context where relevant.`,
		result.TotalScore, result.TotalMaxScore, result.OverallPercentage, result.Grade, result.PerformanceTier,
		cats.String(), weak.String(),
		orNA(bc.CompanyName), orNA(bc.ProductCategories), bc.Employees, bc.MonthlyCapacity,
		orNA(bc.AnnualRevenue), orNA(bc.PrimaryMarkets), orNA(bc.Goals), orNA(bc.Challenges))
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "n/a"
	}
	return s
}
