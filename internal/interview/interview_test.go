package interview

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"text/template"
	"time"

	"mockmate/interviewer/internal/models"
)

type mockProvider struct {
	generateContentFn func(ctx context.Context, prompt string, requestID string) (*models.GenerationResponse, error)
	getProviderNameFn func() string
}

func (m *mockProvider) GenerateContent(ctx context.Context, prompt string, requestID string) (*models.GenerationResponse, error) {
	if m.generateContentFn == nil {
		return &models.GenerationResponse{Content: "mock response"}, nil
	}
	return m.generateContentFn(ctx, prompt, requestID)
}

func (m *mockProvider) GetProviderName() string {
	if m.getProviderNameFn == nil {
		return "mock"
	}
	return m.getProviderNameFn()
}

type mockPromptManager struct {
	buildPromptFn  func(mode, variant string, data interface{}) (string, error)
	getTemplatesFn func() map[string]map[string]*template.Template
}

func (m *mockPromptManager) BuildPrompt(mode, variant string, data interface{}) (string, error) {
	if m.buildPromptFn == nil {
		// the mode lets provider mocks tell question prompts apart from
		// evaluation prompts
		return mode + " prompt", nil
	}
	return m.buildPromptFn(mode, variant, data)
}

func (m *mockPromptManager) GetTemplates() map[string]map[string]*template.Template {
	if m.getTemplatesFn == nil {
		return map[string]map[string]*template.Template{}
	}
	return m.getTemplatesFn()
}

// recordingPresenter captures every event for assertions.
type recordingPresenter struct {
	mu            sync.Mutex
	questions     []*models.Question
	evaluations   []*models.Evaluation
	finals        []*models.FinalEvaluation
	announcements []string
}

func (p *recordingPresenter) DisplayQuestion(sessionID string, q *models.Question) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.questions = append(p.questions, q)
}

func (p *recordingPresenter) DisplayEvaluation(sessionID string, q *models.Question, ev *models.Evaluation) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.evaluations = append(p.evaluations, ev)
}

func (p *recordingPresenter) DisplayFinalEvaluation(sessionID string, final *models.FinalEvaluation, s *models.Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finals = append(p.finals, final)
}

func (p *recordingPresenter) Announce(sessionID string, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.announcements = append(p.announcements, message)
}

func (p *recordingPresenter) announced() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string{}, p.announcements...)
}

type mockStore struct {
	mu      sync.Mutex
	records []*models.SessionRecord
}

func (s *mockStore) Append(record *models.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.records {
		if existing.SessionID == record.SessionID {
			return nil
		}
	}
	s.records = append(s.records, record)
	return nil
}

func (s *mockStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func questionJSON(t *testing.T, text, category string, followUps []string) string {
	t.Helper()
	payload := map[string]interface{}{
		"question":           text,
		"category":           category,
		"difficulty":         "medium",
		"keyPoints":          []string{"clarity"},
		"followUpQuestions":  followUps,
		"evaluationCriteria": []string{"depth"},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal question payload: %v", err)
	}
	return string(data)
}

func evaluationJSON(t *testing.T, score int, needsFollowUp bool) string {
	t.Helper()
	payload := map[string]interface{}{
		"correctness":   score,
		"approach":      score,
		"codeQuality":   score,
		"complexity":    score,
		"communication": score,
		"overallScore":  score,
		"strengths":     []string{"clear reasoning"},
		"weaknesses":    []string{"missed edge cases"},
		"improvements":  []string{"discuss complexity"},
		"needsFollowUp": needsFollowUp,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal evaluation payload: %v", err)
	}
	return string(data)
}

// testOptions shrinks all engine timing so tests finish in milliseconds.
func testOptions() Options {
	return Options{
		AnswerTimeout:       200 * time.Millisecond,
		CodingAnswerTimeout: 200 * time.Millisecond,
		QuestionRetryDelay:  5 * time.Millisecond,
		PacingDelay:         5 * time.Millisecond,
		SessionTTL:          time.Hour,
	}
}

// waitFor polls cond until it returns true or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v: %s", timeout, msg)
}
