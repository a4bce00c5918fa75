package models

import "time"

// InterviewConfig holds the operator-chosen parameters for one session.
type InterviewConfig struct {
	Type          string `json:"type"`
	Role          string `json:"role"`
	Level         string `json:"level"`
	Company       string `json:"company,omitempty"`
	Duration      int    `json:"duration"`
	QuestionCount int    `json:"question_count"`
}

// ApplyDefaults fills empty fields with the documented defaults.
func (c *InterviewConfig) ApplyDefaults() {
	if c.Type == "" {
		c.Type = DefaultInterviewType
	}
	if c.Role == "" {
		c.Role = DefaultRole
	}
	if c.Level == "" {
		c.Level = DefaultLevel
	}
	if c.Duration <= 0 {
		c.Duration = DefaultDuration
	}
	if c.QuestionCount <= 0 {
		c.QuestionCount = DefaultQuestionCount
	}
}

// Session is one interview run with a fixed configuration and an ordered
// question sequence. Follow-up questions are appended to Questions but do
// not count against CurrentQuestion, which tracks primary questions only.
type Session struct {
	ID              string           `json:"id"`
	Config          InterviewConfig  `json:"config"`
	Status          string           `json:"status"`
	CurrentQuestion int              `json:"current_question"`
	Questions       []*Question      `json:"questions"`
	StartedAt       time.Time        `json:"started_at"`
	EndedAt         *time.Time       `json:"ended_at,omitempty"`
	FinalEvaluation *FinalEvaluation `json:"final_evaluation,omitempty"`
}

// PendingQuestion returns the most recently asked question if it has not
// been answered yet.
func (s *Session) PendingQuestion() *Question {
	if len(s.Questions) == 0 {
		return nil
	}
	q := s.Questions[len(s.Questions)-1]
	if q.Answer != nil {
		return nil
	}
	return q
}

// Question is one prompt posed to the candidate.
type Question struct {
	ID           string      `json:"id"`
	Text         string      `json:"text"`
	Category     string      `json:"category"`
	Difficulty   string      `json:"difficulty"`
	KeyPoints    []string    `json:"key_points"`
	FollowUps    []string    `json:"follow_up_questions"`
	Criteria     []string    `json:"evaluation_criteria"`
	Answer       *string     `json:"answer,omitempty"`
	StartedAt    time.Time   `json:"started_at"`
	EndedAt      *time.Time  `json:"ended_at,omitempty"`
	Evaluation   *Evaluation `json:"evaluation,omitempty"`
	IsFollowUp   bool        `json:"is_follow_up,omitempty"`
	UsedFallback bool        `json:"used_fallback,omitempty"`
}

// Evaluation is the scored judgment of one answer. Sub-scores and the
// overall score are always within [0,100].
type Evaluation struct {
	Correctness   int      `json:"correctness"`
	Approach      int      `json:"approach"`
	CodeQuality   int      `json:"code_quality"`
	Complexity    int      `json:"complexity"`
	Communication int      `json:"communication"`
	OverallScore  int      `json:"overall_score"`
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Improvements  []string `json:"improvements"`
	NeedsFollowUp bool     `json:"needs_follow_up"`
	UsedFallback  bool     `json:"used_fallback,omitempty"`
}

// FinalEvaluation aggregates all per-question evaluations of a session.
type FinalEvaluation struct {
	Correctness       int      `json:"correctness"`
	Approach          int      `json:"approach"`
	CodeQuality       int      `json:"code_quality"`
	Complexity        int      `json:"complexity"`
	Communication     int      `json:"communication"`
	OverallScore      int      `json:"overall_score"`
	Strengths         []string `json:"strengths"`
	Weaknesses        []string `json:"weaknesses"`
	Improvements      []string `json:"improvements"`
	QuestionsAnswered int      `json:"questions_answered"`
	DurationMinutes   int      `json:"duration_minutes"`
	UsedFallback      bool     `json:"used_fallback,omitempty"`
}

// DefaultEvaluation is the safe middle score substituted when the evaluator
// fails or returns an unusable response. UsedFallback marks the substitution
// so callers can observe degraded results.
func DefaultEvaluation() *Evaluation {
	return &Evaluation{
		Correctness:   70,
		Approach:      70,
		CodeQuality:   70,
		Complexity:    70,
		Communication: 70,
		OverallScore:  70,
		Strengths:     []string{"Attempted the question"},
		Weaknesses:    []string{"Could not be evaluated in detail"},
		Improvements:  []string{"Provide a more complete answer for detailed feedback"},
		NeedsFollowUp: false,
		UsedFallback:  true,
	}
}

// DefaultFinalEvaluation mirrors DefaultEvaluation for sessions that end
// with no evaluations at all.
func DefaultFinalEvaluation() *FinalEvaluation {
	ev := DefaultEvaluation()
	return &FinalEvaluation{
		Correctness:       ev.Correctness,
		Approach:          ev.Approach,
		CodeQuality:       ev.CodeQuality,
		Complexity:        ev.Complexity,
		Communication:     ev.Communication,
		OverallScore:      ev.OverallScore,
		Strengths:         ev.Strengths,
		Weaknesses:        ev.Weaknesses,
		Improvements:      ev.Improvements,
		QuestionsAnswered: 0,
		DurationMinutes:   0,
		UsedFallback:      true,
	}
}
