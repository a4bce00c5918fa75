package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// SessionRecord is the persisted form of a completed session. The full
// question/evaluation transcript is stored as a JSON text column; the
// aggregate fields are denormalized for listing and export queries.
type SessionRecord struct {
	gorm.Model
	SessionID         string     `gorm:"uniqueIndex;not null" json:"session_id"`
	InterviewType     string     `gorm:"not null;index" json:"interview_type"`
	Role              string     `json:"role"`
	Level             string     `json:"level"`
	Company           string     `json:"company,omitempty"`
	QuestionCount     int        `json:"question_count"`
	QuestionsAnswered int        `json:"questions_answered"`
	OverallScore      int        `gorm:"not null" json:"overall_score"`
	Transcript        string     `gorm:"type:text;not null" json:"transcript"`
	StartedAt         time.Time  `gorm:"not null" json:"started_at"`
	EndedAt           time.Time  `gorm:"not null;index" json:"ended_at"`
	DurationMinutes   int        `json:"duration_minutes"`
	Exported          bool       `gorm:"not null;default:false;index" json:"exported"`
	ExportedAt        *time.Time `json:"exported_at"`
}

// SessionTranscript is the JSON document stored in SessionRecord.Transcript.
type SessionTranscript struct {
	Questions       []*Question      `json:"questions"`
	FinalEvaluation *FinalEvaluation `json:"final_evaluation"`
}

// NewSessionRecord builds the persisted record for a completed session.
func NewSessionRecord(s *Session) (*SessionRecord, error) {
	if s.Status != StatusCompleted || s.EndedAt == nil || s.FinalEvaluation == nil {
		return nil, fmt.Errorf("session %s is not completed", s.ID)
	}

	transcript, err := json.Marshal(SessionTranscript{
		Questions:       s.Questions,
		FinalEvaluation: s.FinalEvaluation,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session transcript: %w", err)
	}

	return &SessionRecord{
		SessionID:         s.ID,
		InterviewType:     s.Config.Type,
		Role:              s.Config.Role,
		Level:             s.Config.Level,
		Company:           s.Config.Company,
		QuestionCount:     s.Config.QuestionCount,
		QuestionsAnswered: s.FinalEvaluation.QuestionsAnswered,
		OverallScore:      s.FinalEvaluation.OverallScore,
		Transcript:        string(transcript),
		StartedAt:         s.StartedAt,
		EndedAt:           *s.EndedAt,
		DurationMinutes:   s.FinalEvaluation.DurationMinutes,
		Exported:          false,
	}, nil
}

// DecodeTranscript parses the stored transcript document.
func (r *SessionRecord) DecodeTranscript() (*SessionTranscript, error) {
	var t SessionTranscript
	if err := json.Unmarshal([]byte(r.Transcript), &t); err != nil {
		return nil, fmt.Errorf("failed to decode transcript for session %s: %w", r.SessionID, err)
	}
	return &t, nil
}

// TrainingDataPoint represents a single training example in JSONL format
// for Gemini fine-tuning.
type TrainingDataPoint struct {
	Contents []TrainingContent `json:"contents"`
}

type TrainingContent struct {
	Role  string         `json:"role"` // "user" or "model"
	Parts []TrainingPart `json:"parts"`
}

type TrainingPart struct {
	Text string `json:"text"`
}
