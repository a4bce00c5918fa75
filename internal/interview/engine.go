package interview

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mockmate/interviewer/internal/llm"
	"mockmate/interviewer/internal/metrics"
	"mockmate/interviewer/internal/models"
	"mockmate/interviewer/internal/prompts"
)

const apologyMessage = "I apologize, I had trouble preparing the next question. Give me a moment to try again."

// Options tunes engine timing. Zero values fall back to production defaults;
// tests shrink them to milliseconds.
type Options struct {
	AnswerTimeout       time.Duration // non-coding questions
	CodingAnswerTimeout time.Duration // coding-problem category questions
	QuestionRetryDelay  time.Duration // delay before the single generation retry
	PacingDelay         time.Duration // presentation pause before the next question
	SessionTTL          time.Duration // idle sessions are evicted after this
}

func (o *Options) applyDefaults() {
	if o.AnswerTimeout <= 0 {
		o.AnswerTimeout = 5 * time.Minute
	}
	if o.CodingAnswerTimeout <= 0 {
		o.CodingAnswerTimeout = 15 * time.Minute
	}
	if o.QuestionRetryDelay <= 0 {
		o.QuestionRetryDelay = 2 * time.Second
	}
	if o.PacingDelay <= 0 {
		o.PacingDelay = 3 * time.Second
	}
	if o.SessionTTL <= 0 {
		o.SessionTTL = 2 * time.Hour
	}
}

// Engine owns interview sessions and drives the ask/answer/evaluate loop.
// All collaborators are injected; there is no global instance.
type Engine struct {
	provider  llm.Provider
	prompts   prompts.PromptProvider
	presenter Presenter
	store     HistoryStore
	logger    *zap.Logger
	opts      Options

	mu       sync.RWMutex
	sessions map[string]*liveSession
	done     chan struct{}
	stopOnce sync.Once
}

// liveSession pairs a session with its runtime state. All access to the
// session goes through mu; the answer timer and the advance goroutine take
// the same lock, so the per-session pipeline is strictly serialized.
type liveSession struct {
	mu          sync.Mutex
	session     *models.Session
	ctx         context.Context
	cancel      context.CancelFunc
	answerTimer *time.Timer
	lastActive  time.Time
}

// NewEngine creates an interview engine. presenter and store may be nil, in
// which case events are discarded and completed sessions are not persisted.
func NewEngine(provider llm.Provider, promptManager prompts.PromptProvider, presenter Presenter, store HistoryStore, logger *zap.Logger, opts Options) *Engine {
	if presenter == nil {
		presenter = NopPresenter{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	opts.applyDefaults()

	e := &Engine{
		provider:  provider,
		prompts:   promptManager,
		presenter: presenter,
		store:     store,
		logger:    logger,
		opts:      opts,
		sessions:  make(map[string]*liveSession),
		done:      make(chan struct{}),
	}

	go e.evictionLoop()

	return e
}

// StartInterview creates a new active session and asks its first question
// before returning. The returned session is a snapshot safe for the caller
// to read.
func (e *Engine) StartInterview(ctx context.Context, cfg models.InterviewConfig) (*models.Session, error) {
	cfg.ApplyDefaults()

	sctx, cancel := context.WithCancel(context.Background())
	ls := &liveSession{
		session: &models.Session{
			ID:        uuid.New().String(),
			Config:    cfg,
			Status:    models.StatusActive,
			Questions: []*models.Question{},
			StartedAt: time.Now(),
		},
		ctx:        sctx,
		cancel:     cancel,
		lastActive: time.Now(),
	}

	e.mu.Lock()
	e.sessions[ls.session.ID] = ls
	e.mu.Unlock()

	metrics.SessionStarted(cfg.Type)
	e.logger.Info("interview started",
		zap.String("session_id", ls.session.ID),
		zap.String("type", cfg.Type),
		zap.String("role", cfg.Role),
		zap.Int("question_count", cfg.QuestionCount))

	ls.mu.Lock()
	defer ls.mu.Unlock()
	if err := e.generateNextQuestion(ls); err != nil {
		return nil, err
	}

	return snapshotSession(ls.session), nil
}

// SubmitAnswer records the candidate's answer to the pending question,
// evaluates it, and schedules the next step of the session.
func (e *Engine) SubmitAnswer(ctx context.Context, sessionID string, answer string) (*models.Evaluation, error) {
	ls, err := e.get(sessionID)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.session.Status != models.StatusActive {
		return nil, ErrSessionCompleted
	}
	q := ls.session.PendingQuestion()
	if q == nil {
		return nil, ErrNoPendingQuestion
	}

	e.stopAnswerTimer(ls)
	ev := e.submitLocked(ls, q, answer, "user")
	return ev, nil
}

// EndInterview completes a session, computing and persisting its final
// evaluation. Calling it on an already-completed session returns the existing
// result without recomputing or re-appending.
func (e *Engine) EndInterview(ctx context.Context, sessionID string) (*models.Session, error) {
	ls, err := e.get(sessionID)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.session.Status != models.StatusCompleted {
		e.finishLocked(ls)
	}
	return snapshotSession(ls.session), nil
}

// GetSession returns a snapshot of the session.
func (e *Engine) GetSession(sessionID string) (*models.Session, error) {
	ls, err := e.get(sessionID)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	return snapshotSession(ls.session), nil
}

// Shutdown cancels all live sessions and stops the eviction loop.
func (e *Engine) Shutdown() {
	e.stopOnce.Do(func() { close(e.done) })

	e.mu.Lock()
	defer e.mu.Unlock()
	for id, ls := range e.sessions {
		ls.cancel()
		ls.mu.Lock()
		e.stopAnswerTimer(ls)
		ls.mu.Unlock()
		delete(e.sessions, id)
	}
}

func (e *Engine) get(sessionID string) (*liveSession, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ls, ok := e.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return ls, nil
}

// generateNextQuestion produces and asks the next question, or ends the
// session when the question count is exhausted. Never stalls: every failure
// mode degrades to a usable question. Caller holds ls.mu.
func (e *Engine) generateNextQuestion(ls *liveSession) error {
	s := ls.session
	if s.Status != models.StatusActive {
		return nil
	}
	if s.CurrentQuestion >= s.Config.QuestionCount {
		return e.finishLocked(ls)
	}

	prompt, err := e.prompts.BuildPrompt("question", s.Config.Type, map[string]interface{}{
		"Type":    s.Config.Type,
		"Role":    s.Config.Role,
		"Level":   s.Config.Level,
		"Company": s.Config.Company,
		"Number":  s.CurrentQuestion + 1,
	})
	if err != nil {
		// prompt template problems degrade to a bare prompt rather than stall
		e.logger.Error("failed to build question prompt", zap.Error(err), zap.String("session_id", s.ID))
		prompt = fmt.Sprintf("Ask interview question %d of a %s interview for a %s-level %s role. Respond with the question text only.",
			s.CurrentQuestion+1, s.Config.Type, s.Config.Level, s.Config.Role)
	}

	var q *models.Question
	resp, err := e.generateWithRetry(ls, prompt)
	if err != nil {
		metrics.FallbackUsed("question")
		e.logger.Warn("question generation failed twice, using canned question",
			zap.Error(err), zap.String("session_id", s.ID))
		q = fallbackQuestion(cannedQuestion(s.Config), questionCategory(s.Config.Type))
	} else {
		q = parseQuestionResponse(resp.Content, s.Config.Type)
		if q.UsedFallback {
			metrics.FallbackUsed("question_parse")
		}
	}

	q.ID = uuid.New().String()
	s.Questions = append(s.Questions, q)
	e.askLocked(ls, q)
	return nil
}

// generateWithRetry performs the LLM call with a single fixed-delay retry,
// announcing an apology between attempts. Caller holds ls.mu.
func (e *Engine) generateWithRetry(ls *liveSession, prompt string) (*models.GenerationResponse, error) {
	requestID := uuid.New().String()

	start := time.Now()
	resp, err := e.provider.GenerateContent(ls.ctx, prompt, requestID)
	metrics.ObserveLLMDuration("question", time.Since(start))
	if err == nil {
		return resp, nil
	}

	metrics.LLMFailure("question")
	e.logger.Warn("question generation failed, retrying",
		zap.Error(err), zap.String("session_id", ls.session.ID))
	e.presenter.Announce(ls.session.ID, apologyMessage)

	select {
	case <-time.After(e.opts.QuestionRetryDelay):
	case <-ls.ctx.Done():
		return nil, ls.ctx.Err()
	}

	start = time.Now()
	resp, err = e.provider.GenerateContent(ls.ctx, prompt, requestID)
	metrics.ObserveLLMDuration("question", time.Since(start))
	if err != nil {
		metrics.LLMFailure("question")
		return nil, err
	}
	return resp, nil
}

// askLocked presents a question and arms its answer timeout. Caller holds ls.mu.
func (e *Engine) askLocked(ls *liveSession, q *models.Question) {
	q.StartedAt = time.Now()
	ls.lastActive = q.StartedAt
	metrics.QuestionAsked(q.Category)
	e.presenter.DisplayQuestion(ls.session.ID, q)

	timeout := e.opts.AnswerTimeout
	if q.Category == models.TypeCodingProblem {
		timeout = e.opts.CodingAnswerTimeout
	}

	questionID := q.ID
	ls.answerTimer = time.AfterFunc(timeout, func() {
		e.answerTimeout(ls, questionID)
	})
}

// answerTimeout fires when no answer arrived in time. It synthesizes the
// placeholder answer and proceeds exactly as a real submission would.
func (e *Engine) answerTimeout(ls *liveSession, questionID string) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.ctx.Err() != nil || ls.session.Status != models.StatusActive {
		return
	}
	q := ls.session.PendingQuestion()
	if q == nil || q.ID != questionID {
		return
	}

	e.logger.Info("answer timeout fired",
		zap.String("session_id", ls.session.ID),
		zap.String("question_id", questionID))
	e.submitLocked(ls, q, models.TimeoutAnswer, "timeout")
}

// submitLocked records the answer, evaluates it, and either asks a follow-up
// or moves the session forward. Caller holds ls.mu.
func (e *Engine) submitLocked(ls *liveSession, q *models.Question, answer string, source string) *models.Evaluation {
	now := time.Now()
	q.Answer = &answer
	q.EndedAt = &now
	ls.lastActive = now
	metrics.AnswerSubmitted(source)

	ev := e.evaluateAnswer(ls, q)
	q.Evaluation = ev
	e.presenter.DisplayEvaluation(ls.session.ID, q, ev)

	// At most one follow-up per primary question; follow-ups never chain.
	if ev.NeedsFollowUp && len(q.FollowUps) > 0 && !q.IsFollowUp {
		e.askFollowUpLocked(ls, q)
		return ev
	}

	ls.session.CurrentQuestion++
	if ls.session.CurrentQuestion >= ls.session.Config.QuestionCount {
		if err := e.finishLocked(ls); err != nil {
			e.logger.Error("failed to finish session", zap.Error(err), zap.String("session_id", ls.session.ID))
		}
		return ev
	}

	go e.advanceAfterPause(ls)
	return ev
}

// advanceAfterPause waits out the presentation pacing delay and generates
// the next question.
func (e *Engine) advanceAfterPause(ls *liveSession) {
	select {
	case <-time.After(e.opts.PacingDelay):
	case <-ls.ctx.Done():
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.session.Status != models.StatusActive {
		return
	}
	if err := e.generateNextQuestion(ls); err != nil {
		e.logger.Error("failed to generate next question",
			zap.Error(err), zap.String("session_id", ls.session.ID))
	}
}

func (e *Engine) askFollowUpLocked(ls *liveSession, parent *models.Question) {
	followUp := &models.Question{
		ID:         uuid.New().String(),
		Text:       parent.FollowUps[0],
		Category:   parent.Category,
		Difficulty: parent.Difficulty,
		KeyPoints:  parent.KeyPoints,
		FollowUps:  []string{},
		Criteria:   parent.Criteria,
		IsFollowUp: true,
	}
	ls.session.Questions = append(ls.session.Questions, followUp)
	e.askLocked(ls, followUp)
}

// evaluateAnswer scores an answered question. Any failure yields the default
// evaluation so the session always completes.
func (e *Engine) evaluateAnswer(ls *liveSession, q *models.Question) *models.Evaluation {
	prompt, err := e.prompts.BuildPrompt("evaluation", "default", map[string]interface{}{
		"Question":   q.Text,
		"Category":   q.Category,
		"Difficulty": q.Difficulty,
		"KeyPoints":  joinList(q.KeyPoints),
		"Answer":     *q.Answer,
	})
	if err != nil {
		e.logger.Error("failed to build evaluation prompt", zap.Error(err), zap.String("session_id", ls.session.ID))
		metrics.FallbackUsed("evaluation")
		return models.DefaultEvaluation()
	}

	start := time.Now()
	resp, err := e.provider.GenerateContent(ls.ctx, prompt, uuid.New().String())
	metrics.ObserveLLMDuration("evaluation", time.Since(start))
	if err != nil {
		metrics.LLMFailure("evaluation")
		metrics.FallbackUsed("evaluation")
		e.logger.Warn("evaluation call failed, using default evaluation",
			zap.Error(err), zap.String("session_id", ls.session.ID), zap.String("question_id", q.ID))
		return models.DefaultEvaluation()
	}

	ev, ok := parseEvaluationResponse(resp.Content)
	if !ok {
		metrics.FallbackUsed("evaluation_parse")
		e.logger.Warn("unparseable evaluation response, using default evaluation",
			zap.String("session_id", ls.session.ID), zap.String("question_id", q.ID))
		return models.DefaultEvaluation()
	}
	return ev
}

// finishLocked is the one-way transition to completed: it stamps the end
// time, aggregates the final evaluation, presents it, and appends the
// session to history. Caller holds ls.mu.
func (e *Engine) finishLocked(ls *liveSession) error {
	s := ls.session
	if s.Status == models.StatusCompleted {
		return nil
	}

	e.stopAnswerTimer(ls)
	now := time.Now()
	s.EndedAt = &now
	s.Status = models.StatusCompleted
	s.FinalEvaluation = CalculateFinalScore(s)

	e.presenter.DisplayFinalEvaluation(s.ID, s.FinalEvaluation, snapshotSession(s))
	metrics.SessionCompleted()

	if e.store != nil {
		record, err := models.NewSessionRecord(s)
		if err != nil {
			e.logger.Error("failed to build session record", zap.Error(err), zap.String("session_id", s.ID))
		} else if err := e.store.Append(record); err != nil {
			e.logger.Error("failed to persist session history", zap.Error(err), zap.String("session_id", s.ID))
		}
	}

	e.logger.Info("interview completed",
		zap.String("session_id", s.ID),
		zap.Int("overall_score", s.FinalEvaluation.OverallScore),
		zap.Int("questions_answered", s.FinalEvaluation.QuestionsAnswered))

	// drop in-flight work tied to this session
	ls.cancel()
	return nil
}

func (e *Engine) stopAnswerTimer(ls *liveSession) {
	if ls.answerTimer != nil {
		ls.answerTimer.Stop()
		ls.answerTimer = nil
	}
}

// evictionLoop removes idle sessions so abandoned interviews do not leak
// timers or in-flight calls.
func (e *Engine) evictionLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-e.done:
			return
		case <-ticker.C:
			e.evictIdle()
		}
	}
}

func (e *Engine) evictIdle() {
	cutoff := time.Now().Add(-e.opts.SessionTTL)

	e.mu.Lock()
	defer e.mu.Unlock()
	for id, ls := range e.sessions {
		ls.mu.Lock()
		idle := ls.lastActive.Before(cutoff)
		active := ls.session.Status == models.StatusActive
		ls.mu.Unlock()

		if !idle {
			continue
		}
		if active {
			e.logger.Warn("evicting abandoned session", zap.String("session_id", id))
		}
		ls.cancel()
		ls.mu.Lock()
		e.stopAnswerTimer(ls)
		ls.mu.Unlock()
		delete(e.sessions, id)
	}
}

func questionCategory(interviewType string) string {
	if interviewType == models.TypeMixed {
		return models.CategoryGeneral
	}
	return interviewType
}

func cannedQuestion(cfg models.InterviewConfig) string {
	return fmt.Sprintf("Tell me about a challenging problem you solved recently as a %s, and walk me through your approach.", cfg.Role)
}

func joinList(items []string) string {
	return strings.Join(items, "; ")
}

// snapshotSession copies the session and its questions so callers can read
// them without holding the session lock.
func snapshotSession(s *models.Session) *models.Session {
	copied := *s
	copied.Questions = make([]*models.Question, len(s.Questions))
	for i, q := range s.Questions {
		qc := *q
		copied.Questions[i] = &qc
	}
	return &copied
}
