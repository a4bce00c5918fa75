package interview

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"mockmate/interviewer/internal/models"
)

// scriptedProvider answers question prompts and evaluation prompts from two
// independent scripts, using the prompt prefix produced by mockPromptManager.
func scriptedProvider(t *testing.T, questions []string, evaluations []string) *mockProvider {
	t.Helper()
	var qi, ei int
	return &mockProvider{
		generateContentFn: func(ctx context.Context, prompt string, requestID string) (*models.GenerationResponse, error) {
			if strings.HasPrefix(prompt, "evaluation") {
				if ei >= len(evaluations) {
					t.Errorf("unexpected evaluation call %d", ei+1)
					return nil, errors.New("script exhausted")
				}
				content := evaluations[ei]
				ei++
				return &models.GenerationResponse{Content: content}, nil
			}
			if qi >= len(questions) {
				t.Errorf("unexpected question call %d", qi+1)
				return nil, errors.New("script exhausted")
			}
			content := questions[qi]
			qi++
			return &models.GenerationResponse{Content: content}, nil
		},
	}
}

func TestStartInterviewAsksFirstQuestion(t *testing.T) {
	provider := scriptedProvider(t,
		[]string{questionJSON(t, "Explain interfaces in Go.", "technical", nil)}, nil)
	presenter := &recordingPresenter{}
	e := NewEngine(provider, &mockPromptManager{}, presenter, nil, nil, testOptions())
	defer e.Shutdown()

	s, err := e.StartInterview(context.Background(), models.InterviewConfig{QuestionCount: 3})
	if err != nil {
		t.Fatalf("StartInterview failed: %v", err)
	}

	if s.Status != models.StatusActive {
		t.Errorf("expected active status, got %q", s.Status)
	}
	if s.Config.Type != models.DefaultInterviewType {
		t.Errorf("expected default interview type, got %q", s.Config.Type)
	}
	if s.Config.Role != models.DefaultRole {
		t.Errorf("expected default role, got %q", s.Config.Role)
	}
	if len(s.Questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(s.Questions))
	}
	if s.Questions[0].Text != "Explain interfaces in Go." {
		t.Errorf("unexpected question text: %q", s.Questions[0].Text)
	}
	if s.Questions[0].UsedFallback {
		t.Error("expected a parsed question, not a fallback")
	}
	if s.CurrentQuestion != 0 {
		t.Errorf("expected current question 0, got %d", s.CurrentQuestion)
	}
}

func TestFullInterviewCompletesAfterAllAnswers(t *testing.T) {
	provider := scriptedProvider(t,
		[]string{
			questionJSON(t, "Question one?", "technical", nil),
			questionJSON(t, "Question two?", "technical", nil),
		},
		[]string{
			evaluationJSON(t, 80, false),
			evaluationJSON(t, 60, false),
		})
	presenter := &recordingPresenter{}
	store := &mockStore{}
	e := NewEngine(provider, &mockPromptManager{}, presenter, store, nil, testOptions())
	defer e.Shutdown()

	s, err := e.StartInterview(context.Background(), models.InterviewConfig{QuestionCount: 2})
	if err != nil {
		t.Fatalf("StartInterview failed: %v", err)
	}

	ev, err := e.SubmitAnswer(context.Background(), s.ID, "first answer")
	if err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}
	if ev.OverallScore != 80 {
		t.Errorf("expected overall score 80, got %d", ev.OverallScore)
	}

	// the second question arrives after the pacing pause
	waitFor(t, time.Second, func() bool {
		snap, err := e.GetSession(s.ID)
		return err == nil && len(snap.Questions) == 2
	}, "second question was never asked")

	if _, err := e.SubmitAnswer(context.Background(), s.ID, "second answer"); err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}

	snap, err := e.GetSession(s.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if snap.Status != models.StatusCompleted {
		t.Fatalf("expected completed status, got %q", snap.Status)
	}
	if snap.FinalEvaluation == nil {
		t.Fatal("expected a final evaluation")
	}
	if snap.FinalEvaluation.OverallScore != 70 {
		t.Errorf("expected overall score 70, got %d", snap.FinalEvaluation.OverallScore)
	}
	if snap.FinalEvaluation.QuestionsAnswered != len(snap.Questions) {
		t.Errorf("expected questions answered %d, got %d",
			len(snap.Questions), snap.FinalEvaluation.QuestionsAnswered)
	}
	if store.count() != 1 {
		t.Errorf("expected 1 persisted session, got %d", store.count())
	}
}

func TestAnswerTimeoutSynthesizesPlaceholderAnswer(t *testing.T) {
	provider := scriptedProvider(t,
		[]string{questionJSON(t, "Implement an LRU cache.", "coding-problem", nil)},
		[]string{evaluationJSON(t, 40, false)})
	e := NewEngine(provider, &mockPromptManager{}, nil, nil, nil, testOptions())
	defer e.Shutdown()

	s, err := e.StartInterview(context.Background(), models.InterviewConfig{
		Type:          models.TypeCodingProblem,
		QuestionCount: 1,
	})
	if err != nil {
		t.Fatalf("StartInterview failed: %v", err)
	}

	waitFor(t, time.Second, func() bool {
		snap, err := e.GetSession(s.ID)
		return err == nil && snap.Status == models.StatusCompleted
	}, "timeout did not complete the session")

	snap, err := e.GetSession(s.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	q := snap.Questions[0]
	if q.Answer == nil || *q.Answer != models.TimeoutAnswer {
		t.Fatalf("expected timeout placeholder answer, got %v", q.Answer)
	}
	if q.Evaluation == nil {
		t.Fatal("expected the timeout answer to be evaluated")
	}
}

func TestEvaluatorFailureYieldsDefaultEvaluation(t *testing.T) {
	provider := &mockProvider{
		generateContentFn: func(ctx context.Context, prompt string, requestID string) (*models.GenerationResponse, error) {
			if strings.HasPrefix(prompt, "evaluation") {
				return nil, errors.New("provider unavailable")
			}
			return &models.GenerationResponse{Content: questionJSON(t, "Question?", "technical", nil)}, nil
		},
	}
	e := NewEngine(provider, &mockPromptManager{}, nil, nil, nil, testOptions())
	defer e.Shutdown()

	s, err := e.StartInterview(context.Background(), models.InterviewConfig{QuestionCount: 1})
	if err != nil {
		t.Fatalf("StartInterview failed: %v", err)
	}

	ev, err := e.SubmitAnswer(context.Background(), s.ID, "my answer")
	if err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}

	want := models.DefaultEvaluation()
	if ev.Correctness != want.Correctness || ev.Approach != want.Approach ||
		ev.CodeQuality != want.CodeQuality || ev.Complexity != want.Complexity ||
		ev.Communication != want.Communication || ev.OverallScore != want.OverallScore {
		t.Errorf("expected default evaluation scores, got %+v", ev)
	}
	if !ev.UsedFallback {
		t.Error("expected the fallback flag to be set")
	}
	if ev.NeedsFollowUp {
		t.Error("default evaluation must not request a follow-up")
	}
}

func TestQuestionGenerationRetriesWithApology(t *testing.T) {
	calls := 0
	provider := &mockProvider{
		generateContentFn: func(ctx context.Context, prompt string, requestID string) (*models.GenerationResponse, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("transient failure")
			}
			return &models.GenerationResponse{Content: questionJSON(t, "Recovered question?", "technical", nil)}, nil
		},
	}
	presenter := &recordingPresenter{}
	e := NewEngine(provider, &mockPromptManager{}, presenter, nil, nil, testOptions())
	defer e.Shutdown()

	s, err := e.StartInterview(context.Background(), models.InterviewConfig{QuestionCount: 1})
	if err != nil {
		t.Fatalf("StartInterview failed: %v", err)
	}

	if s.Questions[0].Text != "Recovered question?" {
		t.Errorf("expected the retried question, got %q", s.Questions[0].Text)
	}
	announced := presenter.announced()
	if len(announced) != 1 || announced[0] != apologyMessage {
		t.Errorf("expected one apology announcement, got %v", announced)
	}
}

func TestQuestionGenerationFallsBackToCannedQuestion(t *testing.T) {
	provider := &mockProvider{
		generateContentFn: func(ctx context.Context, prompt string, requestID string) (*models.GenerationResponse, error) {
			return nil, errors.New("provider down")
		},
	}
	e := NewEngine(provider, &mockPromptManager{}, nil, nil, nil, testOptions())
	defer e.Shutdown()

	s, err := e.StartInterview(context.Background(), models.InterviewConfig{
		Role:          "Backend Engineer",
		QuestionCount: 1,
	})
	if err != nil {
		t.Fatalf("StartInterview failed: %v", err)
	}

	q := s.Questions[0]
	if !q.UsedFallback {
		t.Error("expected the canned question to carry the fallback flag")
	}
	if !strings.Contains(q.Text, "Backend Engineer") {
		t.Errorf("expected the canned question to mention the role, got %q", q.Text)
	}
	if s.Status != models.StatusActive {
		t.Errorf("expected the session to stay active, got %q", s.Status)
	}
}

func TestFollowUpQuestionIsAskedOnce(t *testing.T) {
	provider := scriptedProvider(t,
		[]string{questionJSON(t, "Primary question?", "technical", []string{"And the follow-up?"})},
		[]string{
			evaluationJSON(t, 50, true),
			evaluationJSON(t, 90, true), // follow-ups never chain even when requested
		})
	e := NewEngine(provider, &mockPromptManager{}, nil, nil, nil, testOptions())
	defer e.Shutdown()

	s, err := e.StartInterview(context.Background(), models.InterviewConfig{QuestionCount: 1})
	if err != nil {
		t.Fatalf("StartInterview failed: %v", err)
	}

	if _, err := e.SubmitAnswer(context.Background(), s.ID, "vague answer"); err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}

	snap, err := e.GetSession(s.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if snap.Status != models.StatusActive {
		t.Fatalf("expected the session to stay active for the follow-up, got %q", snap.Status)
	}
	if len(snap.Questions) != 2 {
		t.Fatalf("expected 2 questions after the follow-up, got %d", len(snap.Questions))
	}
	followUp := snap.Questions[1]
	if !followUp.IsFollowUp {
		t.Error("expected the second question to be marked as a follow-up")
	}
	if followUp.Text != "And the follow-up?" {
		t.Errorf("unexpected follow-up text: %q", followUp.Text)
	}
	if snap.CurrentQuestion != 0 {
		t.Errorf("follow-up must not advance the question index, got %d", snap.CurrentQuestion)
	}

	if _, err := e.SubmitAnswer(context.Background(), s.ID, "better answer"); err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}

	snap, err = e.GetSession(s.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if snap.Status != models.StatusCompleted {
		t.Fatalf("expected completed after the follow-up answer, got %q", snap.Status)
	}
	if len(snap.Questions) != 2 {
		t.Errorf("expected no chained follow-ups, got %d questions", len(snap.Questions))
	}
}

func TestEndInterviewIsIdempotent(t *testing.T) {
	provider := scriptedProvider(t,
		[]string{questionJSON(t, "Question?", "technical", nil)},
		[]string{evaluationJSON(t, 85, false)})
	store := &mockStore{}
	e := NewEngine(provider, &mockPromptManager{}, nil, store, nil, testOptions())
	defer e.Shutdown()

	s, err := e.StartInterview(context.Background(), models.InterviewConfig{QuestionCount: 3})
	if err != nil {
		t.Fatalf("StartInterview failed: %v", err)
	}
	if _, err := e.SubmitAnswer(context.Background(), s.ID, "answer"); err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}

	first, err := e.EndInterview(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("EndInterview failed: %v", err)
	}
	if first.Status != models.StatusCompleted {
		t.Fatalf("expected completed, got %q", first.Status)
	}

	second, err := e.EndInterview(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("second EndInterview failed: %v", err)
	}
	if second.FinalEvaluation.OverallScore != first.FinalEvaluation.OverallScore {
		t.Errorf("ending twice changed the final score: %d vs %d",
			first.FinalEvaluation.OverallScore, second.FinalEvaluation.OverallScore)
	}
	if !second.EndedAt.Equal(*first.EndedAt) {
		t.Error("ending twice changed the end time")
	}
	if store.count() != 1 {
		t.Errorf("expected 1 persisted session, got %d", store.count())
	}
}

func TestSubmitAnswerErrors(t *testing.T) {
	provider := scriptedProvider(t,
		[]string{questionJSON(t, "Question?", "technical", nil)},
		[]string{evaluationJSON(t, 70, false)})
	opts := testOptions()
	opts.PacingDelay = time.Hour // keep the between-questions gap open
	e := NewEngine(provider, &mockPromptManager{}, nil, nil, nil, opts)
	defer e.Shutdown()

	if _, err := e.SubmitAnswer(context.Background(), "missing", "answer"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}

	s, err := e.StartInterview(context.Background(), models.InterviewConfig{QuestionCount: 2})
	if err != nil {
		t.Fatalf("StartInterview failed: %v", err)
	}
	if _, err := e.SubmitAnswer(context.Background(), s.ID, "answer"); err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}

	// the next question has not been generated yet
	if _, err := e.SubmitAnswer(context.Background(), s.ID, "too eager"); !errors.Is(err, ErrNoPendingQuestion) {
		t.Errorf("expected ErrNoPendingQuestion, got %v", err)
	}

	if _, err := e.EndInterview(context.Background(), s.ID); err != nil {
		t.Fatalf("EndInterview failed: %v", err)
	}
	if _, err := e.SubmitAnswer(context.Background(), s.ID, "after the end"); !errors.Is(err, ErrSessionCompleted) {
		t.Errorf("expected ErrSessionCompleted, got %v", err)
	}
}

func TestUnparseableQuestionBecomesRawText(t *testing.T) {
	provider := &mockProvider{
		generateContentFn: func(ctx context.Context, prompt string, requestID string) (*models.GenerationResponse, error) {
			return &models.GenerationResponse{Content: "Just tell me about your experience with Go."}, nil
		},
	}
	e := NewEngine(provider, &mockPromptManager{}, nil, nil, nil, testOptions())
	defer e.Shutdown()

	s, err := e.StartInterview(context.Background(), models.InterviewConfig{QuestionCount: 1})
	if err != nil {
		t.Fatalf("StartInterview failed: %v", err)
	}

	q := s.Questions[0]
	if q.Text != "Just tell me about your experience with Go." {
		t.Errorf("expected the raw text as question, got %q", q.Text)
	}
	if !q.UsedFallback {
		t.Error("expected the fallback flag to be set")
	}
	if q.Difficulty != models.DefaultDifficulty {
		t.Errorf("expected medium difficulty, got %q", q.Difficulty)
	}
	if len(q.KeyPoints) != 0 || len(q.FollowUps) != 0 || len(q.Criteria) != 0 {
		t.Error("expected empty metadata lists on fallback questions")
	}
}

func TestGetSessionReturnsSnapshot(t *testing.T) {
	provider := scriptedProvider(t,
		[]string{questionJSON(t, "Question?", "technical", nil)}, nil)
	e := NewEngine(provider, &mockPromptManager{}, nil, nil, nil, testOptions())
	defer e.Shutdown()

	s, err := e.StartInterview(context.Background(), models.InterviewConfig{QuestionCount: 1})
	if err != nil {
		t.Fatalf("StartInterview failed: %v", err)
	}

	s.Questions[0].Text = "mutated"
	s.Status = "mutated"

	snap, err := e.GetSession(s.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if snap.Questions[0].Text != "Question?" {
		t.Error("mutating a snapshot leaked into engine state")
	}
	if snap.Status != models.StatusActive {
		t.Error("mutating a snapshot leaked into session status")
	}
}
