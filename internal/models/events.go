package models

import "time"

// Presentation event types emitted by the interview engine. Events are
// fire-and-forget; no acknowledgment is expected from presenters.
const (
	EventDisplayQuestion        = "DISPLAY_QUESTION"
	EventDisplayEvaluation      = "DISPLAY_EVALUATION"
	EventDisplayFinalEvaluation = "DISPLAY_FINAL_EVALUATION"
	EventAnnouncement           = "ANNOUNCEMENT"
)

// Event is the wire shape published to presenter transports (WebSocket
// stream, Redis pub/sub). Only the fields relevant to Type are set.
type Event struct {
	Type            string           `json:"type"`
	SessionID       string           `json:"session_id"`
	Question        *Question        `json:"question,omitempty"`
	Evaluation      *Evaluation      `json:"evaluation,omitempty"`
	FinalEvaluation *FinalEvaluation `json:"final_evaluation,omitempty"`
	Session         *Session         `json:"session,omitempty"`
	Message         string           `json:"message,omitempty"`
	Timestamp       time.Time        `json:"timestamp"`
}
