package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"text/template"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"mockmate/interviewer/internal/history"
	"mockmate/interviewer/internal/interview"
	"mockmate/interviewer/internal/middleware"
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
		return mode + " prompt", nil
	}
	return m.buildPromptFn(mode, variant, data)
}

func (m *mockPromptManager) GetTemplates() map[string]map[string]*template.Template {
	if m.getTemplatesFn == nil {
		return map[string]map[string]*template.Template{
			"question": {
				"technical": template.Must(template.New("test").Parse("test")),
			},
		}
	}
	return m.getTemplatesFn()
}

// scriptedProvider serves a fixed question and evaluation, keyed on the
// prompt prefix produced by mockPromptManager.
func scriptedProvider(t *testing.T) *mockProvider {
	t.Helper()

	question := map[string]interface{}{
		"question":   "Explain channels.",
		"category":   "technical",
		"difficulty": "medium",
	}
	evaluation := map[string]interface{}{
		"correctness": 80, "approach": 80, "codeQuality": 80,
		"complexity": 80, "communication": 80, "overallScore": 80,
	}

	return &mockProvider{
		generateContentFn: func(ctx context.Context, prompt string, requestID string) (*models.GenerationResponse, error) {
			payload := question
			if len(prompt) >= 10 && prompt[:10] == "evaluation" {
				payload = evaluation
			}
			data, err := json.Marshal(payload)
			if err != nil {
				t.Fatalf("failed to marshal scripted payload: %v", err)
			}
			return &models.GenerationResponse{Content: string(data)}, nil
		},
	}
}

func newTestEngine(t *testing.T) *interview.Engine {
	t.Helper()

	e := interview.NewEngine(scriptedProvider(t), &mockPromptManager{}, nil, nil, zap.NewNop(), interview.Options{
		AnswerTimeout:       time.Minute,
		CodingAnswerTimeout: time.Minute,
		QuestionRetryDelay:  time.Millisecond,
		PacingDelay:         time.Millisecond,
		SessionTTL:          time.Hour,
	})
	t.Cleanup(e.Shutdown)
	return e
}

func newTestHistoryStore(t *testing.T) *history.Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.SessionRecord{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return history.NewStore(db)
}

// newTestRouter mounts the interview routes the way the server does, with
// validation middleware in place.
func newTestRouter(h *InterviewHandler) *chi.Mux {
	router := chi.NewRouter()
	router.Route("/api/v1/interview", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.StartInterviewRequest]()).Post("/start", h.StartHandler)
		r.With(middleware.ValidateRequest[*models.SubmitAnswerRequest]()).Post("/{sessionID}/answer", h.AnswerHandler)
		r.Post("/{sessionID}/end", h.EndHandler)
		r.Get("/history", h.HistoryHandler)
		r.Get("/history/stats", h.StatsHandler)
		r.Get("/{sessionID}", h.GetHandler)
	})
	return router
}
