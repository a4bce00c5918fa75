package models

import "strings"

// StartInterviewRequest configures a new session. Empty fields fall back to
// the documented defaults; non-empty fields must be valid.
type StartInterviewRequest struct {
	Type          string `json:"type"`
	Role          string `json:"role"`
	Level         string `json:"level"`
	Company       string `json:"company,omitempty"`
	Duration      int    `json:"duration"`
	QuestionCount int    `json:"question_count"`
}

// implements the Validator interface
func (r *StartInterviewRequest) Validate() error {
	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
	r.Level = strings.ToLower(strings.TrimSpace(r.Level))
	r.Role = strings.TrimSpace(r.Role)
	r.Company = strings.TrimSpace(r.Company)

	if r.Type != "" && !ValidInterviewTypes[r.Type] {
		return &ErrorResponse{
			Code:    "invalid_interview_type",
			Message: "Interview type must be one of: " + strings.Join(ValidInterviewTypesList(), ", "),
		}
	}

	if r.Level != "" && !ValidLevels[r.Level] {
		return &ErrorResponse{
			Code:    "invalid_level",
			Message: "Level must be one of: " + strings.Join(ValidLevelsList(), ", "),
		}
	}

	if r.Duration < 0 || r.Duration > 180 {
		return &ErrorResponse{
			Code:    "invalid_duration",
			Message: "Duration must be between 1 and 180 minutes",
		}
	}

	if r.QuestionCount < 0 || r.QuestionCount > 20 {
		return &ErrorResponse{
			Code:    "invalid_question_count",
			Message: "Question count must be between 1 and 20",
		}
	}

	return nil
}

// Config converts the request into an InterviewConfig with defaults applied.
func (r *StartInterviewRequest) Config() InterviewConfig {
	cfg := InterviewConfig{
		Type:          r.Type,
		Role:          r.Role,
		Level:         r.Level,
		Company:       r.Company,
		Duration:      r.Duration,
		QuestionCount: r.QuestionCount,
	}
	cfg.ApplyDefaults()
	return cfg
}

// SubmitAnswerRequest carries the candidate's answer to the pending question.
type SubmitAnswerRequest struct {
	Answer string `json:"answer"`
}

func (r *SubmitAnswerRequest) Validate() error {
	if strings.TrimSpace(r.Answer) == "" {
		return &ErrorResponse{
			Code:    "missing_answer",
			Message: "Answer field is required",
		}
	}
	return nil
}
