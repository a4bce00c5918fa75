package models

// GenerationResponse is the raw output of one LLM call.
type GenerationResponse struct {
	Content   string             `json:"content"`
	RequestID string             `json:"request_id"`
	Metadata  GenerationMetadata `json:"metadata"`
}

// additional information about the generation
type GenerationMetadata struct {
	ProcessingTime int    `json:"processing_time_ms"`
	Provider       string `json:"provider"`
	Model          string `json:"model"`
}

// SubmitAnswerResponse returns the evaluation of the just-answered question.
type SubmitAnswerResponse struct {
	SessionID  string      `json:"session_id"`
	Evaluation *Evaluation `json:"evaluation"`
}

// uniform error responses
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ErrorResponse) Error() string {
	return e.Message
}
