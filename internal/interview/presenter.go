package interview

import "mockmate/interviewer/internal/models"

// Presenter receives presentation events from the engine. Implementations
// deliver them to a UI or voice layer; delivery is fire-and-forget and must
// not block the interview loop for long.
type Presenter interface {
	DisplayQuestion(sessionID string, question *models.Question)
	DisplayEvaluation(sessionID string, question *models.Question, evaluation *models.Evaluation)
	DisplayFinalEvaluation(sessionID string, final *models.FinalEvaluation, session *models.Session)
	Announce(sessionID string, message string)
}

// NopPresenter discards all events.
type NopPresenter struct{}

func (NopPresenter) DisplayQuestion(string, *models.Question)                                {}
func (NopPresenter) DisplayEvaluation(string, *models.Question, *models.Evaluation)          {}
func (NopPresenter) DisplayFinalEvaluation(string, *models.FinalEvaluation, *models.Session) {}
func (NopPresenter) Announce(string, string)                                                 {}

// HistoryStore persists completed sessions. Append must be idempotent per
// session id.
type HistoryStore interface {
	Append(record *models.SessionRecord) error
}
