package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/jobforge/jobforge/internal/core/domain"
	"github.com/jobforge/jobforge/internal/core/ports/driven"
)

// Ensure Analyzer implements the interface.
var _ driven.Analyzer = (*Analyzer)(nil)

// fallbackPosition names the role when the model output carries none.
// It matches the query synthesizer fallback so retrieval still works.
const fallbackPosition = "candidature"

// defaultAnalyzerSystem is the persona used when no prompt store entry
// overrides it.
const defaultAnalyzerSystem = `You are a senior talent-acquisition analyst.
You extract structured facts from job offers. You never invent information:
when the offer does not state something, you leave that field empty.`

// defaultAnalyzerTask is the task prompt used when no prompt store entry
// overrides it. It must yield a single JSON object.
const defaultAnalyzerTask = `Analyze the job offer below and return a single JSON object,
with no surrounding prose, using exactly these keys:

{
  "summary": "3-4 sentence synthesis of the offer",
  "position": "job title",
  "company": "company name, or empty string",
  "key_skills": ["technical skills, most important first"],
  "missions": ["main responsibilities"],
  "sector": "business sector, or empty string",
  "soft_skills": ["interpersonal skills mentioned"],
  "values": ["company values mentioned"],
  "recruiter_tone": "formal | casual | enthusiastic | neutral"
}

The analysis will drive a {{.ContentType}} application, so favour the facts
a candidate should echo in that format.

JOB OFFER:
{{.Offer}}`

// analysisPayload is the JSON shape requested from the model.
type analysisPayload struct {
	Summary       string   `json:"summary"`
	Position      string   `json:"position"`
	Company       string   `json:"company"`
	KeySkills     []string `json:"key_skills"`
	Missions      []string `json:"missions"`
	Sector        string   `json:"sector"`
	SoftSkills    []string `json:"soft_skills"`
	Values        []string `json:"values"`
	RecruiterTone string   `json:"recruiter_tone"`
}

// analyzerTaskData feeds the analyzer task template.
type analyzerTaskData struct {
	Offer       string
	ContentType string
}

// Analyzer extracts a structured job analysis using the OpenAI chat API.
//
// Model output is parsed in tiers: the whole reply as JSON, then the
// first JSON object embedded in the reply, then a minimal analysis built
// from the raw text. Only transport failures and empty replies surface
// as errors.
type Analyzer struct {
	client  *Client
	prompts driven.PromptStore
}

// NewAnalyzer creates a job-offer analyzer. The prompt store is optional;
// without it the embedded default prompts are used.
func NewAnalyzer(client *Client, prompts driven.PromptStore) (*Analyzer, error) {
	if client == nil {
		return nil, fmt.Errorf("openai: client is required")
	}
	return &Analyzer{client: client, prompts: prompts}, nil
}

// Analyze extracts a JobAnalysis from the offer.
func (a *Analyzer) Analyze(ctx context.Context, offer domain.JobOffer, contentType domain.ContentType) (domain.JobAnalysis, error) {
	system := loadPrompt(a.prompts, driven.PromptAnalyzerSystem, defaultAnalyzerSystem)
	taskTemplate := loadPrompt(a.prompts, driven.PromptAnalyzerTask, defaultAnalyzerTask)

	task, err := renderTemplate("analyzer_task", taskTemplate, analyzerTaskData{
		Offer:       offer.Text(),
		ContentType: contentType.String(),
	})
	if err != nil {
		return domain.JobAnalysis{}, err
	}

	reply, err := a.client.Complete(ctx, system, task)
	if err != nil {
		return domain.JobAnalysis{}, fmt.Errorf("%w: %w", domain.ErrAnalysisFailed, err)
	}
	if strings.TrimSpace(reply) == "" {
		return domain.JobAnalysis{}, fmt.Errorf("%w: model returned empty analysis", domain.ErrAnalysisFailed)
	}

	return parseAnalysis(reply, contentType), nil
}

// parseAnalysis turns the model reply into a JobAnalysis, degrading to a
// minimal analysis when the reply is not the requested JSON.
func parseAnalysis(reply string, contentType domain.ContentType) domain.JobAnalysis {
	cleaned := stripCodeFence(strings.TrimSpace(reply))

	var payload analysisPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err == nil {
		return payload.toDomain(cleaned, contentType)
	}

	if block := extractJSONObject(cleaned); block != "" {
		if err := json.Unmarshal([]byte(block), &payload); err == nil {
			return payload.toDomain(cleaned, contentType)
		}
	}

	// The model answered in prose. Keep it as the summary so the run
	// can still proceed.
	return domain.JobAnalysis{
		Summary:     cleaned,
		Position:    fallbackPosition,
		ContentType: contentType.String(),
	}
}

// toDomain converts the wire payload, filling the fields Validate requires.
func (p analysisPayload) toDomain(raw string, contentType domain.ContentType) domain.JobAnalysis {
	summary := strings.TrimSpace(p.Summary)
	if summary == "" {
		summary = raw
	}
	position := strings.TrimSpace(p.Position)
	if position == "" {
		position = fallbackPosition
	}
	return domain.JobAnalysis{
		Summary:       summary,
		Position:      position,
		Company:       strings.TrimSpace(p.Company),
		KeySkills:     p.KeySkills,
		Missions:      p.Missions,
		Sector:        strings.TrimSpace(p.Sector),
		SoftSkills:    p.SoftSkills,
		Values:        p.Values,
		RecruiterTone: strings.TrimSpace(p.RecruiterTone),
		ContentType:   contentType.String(),
	}
}

// stripCodeFence removes a surrounding markdown code fence, which chat
// models add even when told not to.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:] // drop the language tag line
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// extractJSONObject returns the outermost {...} block of s, or empty.
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// loadPrompt loads a prompt from the store, falling back to the default
// if unavailable.
func loadPrompt(store driven.PromptStore, name, fallback string) string {
	if store == nil {
		return fallback
	}
	prompt, err := store.Load(name)
	if err != nil || strings.TrimSpace(prompt) == "" {
		return fallback
	}
	return prompt
}

// renderTemplate executes a text/template prompt body.
func renderTemplate(name, body string, data any) (string, error) {
	tmpl, err := template.New(name).Parse(body)
	if err != nil {
		return "", fmt.Errorf("parse %s prompt: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", name, err)
	}
	return buf.String(), nil
}
