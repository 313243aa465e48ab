package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobforge/jobforge/internal/core/domain"
)

// --- Mock implementations ---

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	prompt, ok := m.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return prompt, nil
}

func (m *mockPromptStore) Reload() {}

// --- Test fixtures ---

const analysisJSON = `{
  "summary": "Senior backend role building a payments platform in Go.",
  "position": "Senior Backend Engineer",
  "company": "Acme",
  "key_skills": ["Go", "PostgreSQL", "Kubernetes"],
  "missions": ["Design services", "Own schemas"],
  "sector": "fintech",
  "soft_skills": ["communication"],
  "values": ["ownership"],
  "recruiter_tone": "enthusiastic"
}`

func testOffer(t *testing.T) domain.JobOffer {
	t.Helper()
	offer, err := domain.NewJobOffer(
		"We are hiring a Senior Backend Engineer to build our payments platform with Go and PostgreSQL.")
	require.NoError(t, err)
	return offer
}

// chatServer serves a canned chat completion and records the last request.
func chatServer(t *testing.T, content string) (*Client, *chatCompletionRequest) {
	t.Helper()
	var lastReq chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&lastReq))
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		assert.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)
	return client, &lastReq
}

func errorServer(t *testing.T, status int, message string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		assert.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": message, "type": "server_error"},
		}))
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)
	return client
}

// --- Tests ---

func TestNewAnalyzer_RequiresClient(t *testing.T) {
	_, err := NewAnalyzer(nil, nil)
	require.Error(t, err)
}

func TestAnalyzer_Analyze_ParsesJSON(t *testing.T) {
	client, _ := chatServer(t, analysisJSON)
	analyzer, err := NewAnalyzer(client, nil)
	require.NoError(t, err)

	analysis, err := analyzer.Analyze(context.Background(), testOffer(t), domain.ContentTypeEmail)

	require.NoError(t, err)
	assert.Equal(t, "Senior Backend Engineer", analysis.Position)
	assert.Equal(t, "Acme", analysis.Company)
	assert.Equal(t, []string{"Go", "PostgreSQL", "Kubernetes"}, analysis.KeySkills)
	assert.Equal(t, "fintech", analysis.Sector)
	assert.Equal(t, "enthusiastic", analysis.RecruiterTone)
	assert.Equal(t, "email", analysis.ContentType)
	require.NoError(t, analysis.Validate())
}

func TestAnalyzer_Analyze_ParsesFencedJSON(t *testing.T) {
	client, _ := chatServer(t, "```json\n"+analysisJSON+"\n```")
	analyzer, err := NewAnalyzer(client, nil)
	require.NoError(t, err)

	analysis, err := analyzer.Analyze(context.Background(), testOffer(t), domain.ContentTypeEmail)

	require.NoError(t, err)
	assert.Equal(t, "Senior Backend Engineer", analysis.Position)
}

func TestAnalyzer_Analyze_ParsesEmbeddedJSON(t *testing.T) {
	client, _ := chatServer(t, "Here is the requested analysis:\n\n"+analysisJSON+"\n\nLet me know if you need more.")
	analyzer, err := NewAnalyzer(client, nil)
	require.NoError(t, err)

	analysis, err := analyzer.Analyze(context.Background(), testOffer(t), domain.ContentTypeEmail)

	require.NoError(t, err)
	assert.Equal(t, "Senior Backend Engineer", analysis.Position)
	assert.Equal(t, "Acme", analysis.Company)
}

func TestAnalyzer_Analyze_DegradesToMinimalAnalysis(t *testing.T) {
	prose := "This offer is for a senior Go engineer at a fintech startup in Lyon."
	client, _ := chatServer(t, prose)
	analyzer, err := NewAnalyzer(client, nil)
	require.NoError(t, err)

	analysis, err := analyzer.Analyze(context.Background(), testOffer(t), domain.ContentTypeLetter)

	require.NoError(t, err, "unparseable output degrades instead of failing")
	assert.Equal(t, prose, analysis.Summary)
	assert.Equal(t, fallbackPosition, analysis.Position)
	assert.Equal(t, "letter", analysis.ContentType)
	require.NoError(t, analysis.Validate())
}

func TestAnalyzer_Analyze_EmptyReply(t *testing.T) {
	client, _ := chatServer(t, "   ")
	analyzer, err := NewAnalyzer(client, nil)
	require.NoError(t, err)

	_, err = analyzer.Analyze(context.Background(), testOffer(t), domain.ContentTypeEmail)

	require.ErrorIs(t, err, domain.ErrAnalysisFailed)
}

func TestAnalyzer_Analyze_APIError(t *testing.T) {
	client := errorServer(t, http.StatusInternalServerError, "backend exploded")
	analyzer, err := NewAnalyzer(client, nil)
	require.NoError(t, err)

	_, err = analyzer.Analyze(context.Background(), testOffer(t), domain.ContentTypeEmail)

	require.ErrorIs(t, err, domain.ErrAnalysisFailed)
	assert.ErrorContains(t, err, "backend exploded")
}

func TestAnalyzer_Analyze_PromptCarriesOfferAndType(t *testing.T) {
	client, lastReq := chatServer(t, analysisJSON)
	analyzer, err := NewAnalyzer(client, nil)
	require.NoError(t, err)

	_, err = analyzer.Analyze(context.Background(), testOffer(t), domain.ContentTypeLinkedIn)

	require.NoError(t, err)
	require.Len(t, lastReq.Messages, 2)
	assert.Equal(t, "system", lastReq.Messages[0].Role)
	assert.Equal(t, "user", lastReq.Messages[1].Role)
	assert.Contains(t, lastReq.Messages[1].Content, "payments platform")
	assert.Contains(t, lastReq.Messages[1].Content, "linkedin")
}

func TestAnalyzer_Analyze_PromptStoreOverrides(t *testing.T) {
	client, lastReq := chatServer(t, analysisJSON)
	store := &mockPromptStore{prompts: map[string]string{
		"analyzer_system": "custom persona",
		"analyzer_task":   "custom task: {{.Offer}}",
	}}
	analyzer, err := NewAnalyzer(client, store)
	require.NoError(t, err)

	_, err = analyzer.Analyze(context.Background(), testOffer(t), domain.ContentTypeEmail)

	require.NoError(t, err)
	assert.Equal(t, "custom persona", lastReq.Messages[0].Content)
	assert.Contains(t, lastReq.Messages[1].Content, "custom task: We are hiring")
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFence(tt.input))
		})
	}
}
