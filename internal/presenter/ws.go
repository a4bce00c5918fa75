package presenter

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"mockmate/interviewer/internal/models"
	"mockmate/interviewer/internal/ws"
)

// WSPresenter broadcasts presentation events to the WebSocket event stream
// consumed by the extension UI.
type WSPresenter struct {
	hub    *ws.Hub
	logger *zap.Logger
}

func NewWSPresenter(hub *ws.Hub, logger *zap.Logger) *WSPresenter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSPresenter{hub: hub, logger: logger}
}

func (p *WSPresenter) DisplayQuestion(sessionID string, question *models.Question) {
	p.broadcast(models.Event{
		Type:      models.EventDisplayQuestion,
		SessionID: sessionID,
		Question:  question,
	})
}

func (p *WSPresenter) DisplayEvaluation(sessionID string, question *models.Question, evaluation *models.Evaluation) {
	p.broadcast(models.Event{
		Type:       models.EventDisplayEvaluation,
		SessionID:  sessionID,
		Question:   question,
		Evaluation: evaluation,
	})
}

func (p *WSPresenter) DisplayFinalEvaluation(sessionID string, final *models.FinalEvaluation, session *models.Session) {
	p.broadcast(models.Event{
		Type:            models.EventDisplayFinalEvaluation,
		SessionID:       sessionID,
		FinalEvaluation: final,
		Session:         session,
	})
}

func (p *WSPresenter) Announce(sessionID string, message string) {
	p.broadcast(models.Event{
		Type:      models.EventAnnouncement,
		SessionID: sessionID,
		Message:   message,
	})
}

func (p *WSPresenter) broadcast(event models.Event) {
	event.Timestamp = time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal presentation event", zap.Error(err))
		return
	}
	p.hub.Broadcast(payload)
}
