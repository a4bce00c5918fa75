package presenter

import (
	"mockmate/interviewer/internal/interview"
	"mockmate/interviewer/internal/models"
)

// Multi fans presentation events out to several presenters.
type Multi struct {
	presenters []interview.Presenter
}

func NewMulti(presenters ...interview.Presenter) *Multi {
	return &Multi{presenters: presenters}
}

func (m *Multi) DisplayQuestion(sessionID string, question *models.Question) {
	for _, p := range m.presenters {
		p.DisplayQuestion(sessionID, question)
	}
}

func (m *Multi) DisplayEvaluation(sessionID string, question *models.Question, evaluation *models.Evaluation) {
	for _, p := range m.presenters {
		p.DisplayEvaluation(sessionID, question, evaluation)
	}
}

func (m *Multi) DisplayFinalEvaluation(sessionID string, final *models.FinalEvaluation, session *models.Session) {
	for _, p := range m.presenters {
		p.DisplayFinalEvaluation(sessionID, final, session)
	}
}

func (m *Multi) Announce(sessionID string, message string) {
	for _, p := range m.presenters {
		p.Announce(sessionID, message)
	}
}
