package interview

import (
	"encoding/json"
	"strings"

	"mockmate/interviewer/internal/models"
	"mockmate/interviewer/internal/utils"
)

// expected JSON shape of a question-generation response
type questionPayload struct {
	Question   string   `json:"question"`
	Category   string   `json:"category"`
	Difficulty string   `json:"difficulty"`
	KeyPoints  []string `json:"keyPoints"`
	FollowUps  []string `json:"followUpQuestions"`
	Criteria   []string `json:"evaluationCriteria"`
}

// expected JSON shape of an evaluation response
type evaluationPayload struct {
	Correctness   int      `json:"correctness"`
	Approach      int      `json:"approach"`
	CodeQuality   int      `json:"codeQuality"`
	Complexity    int      `json:"complexity"`
	Communication int      `json:"communication"`
	OverallScore  int      `json:"overallScore"`
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Improvements  []string `json:"improvements"`
	NeedsFollowUp bool     `json:"needsFollowUp"`
}

// extractJSON pulls the first JSON object out of an LLM response, tolerating
// surrounding prose and Markdown fences.
func extractJSON(raw string) ([]byte, bool) {
	cleaned := utils.StripFences(raw)
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	return []byte(cleaned[start : end+1]), true
}

// parseQuestionResponse converts a raw LLM response into a Question. When the
// response is not usable JSON the raw text itself becomes the question, with
// empty metadata lists and medium difficulty, so the session always advances.
func parseQuestionResponse(raw string, interviewType string) *models.Question {
	fallbackCategory := interviewType
	if interviewType == models.TypeMixed {
		fallbackCategory = models.CategoryGeneral
	}

	data, ok := extractJSON(raw)
	if !ok {
		return fallbackQuestion(raw, fallbackCategory)
	}

	var payload questionPayload
	if err := json.Unmarshal(data, &payload); err != nil || strings.TrimSpace(payload.Question) == "" {
		return fallbackQuestion(raw, fallbackCategory)
	}

	category := utils.NormalizeInterviewType(payload.Category)
	if category == "" {
		category = fallbackCategory
	}
	difficulty := utils.NormalizeDifficulty(payload.Difficulty)
	if !models.ValidDifficulties[difficulty] {
		difficulty = models.DefaultDifficulty
	}

	return &models.Question{
		Text:       strings.TrimSpace(payload.Question),
		Category:   category,
		Difficulty: difficulty,
		KeyPoints:  emptyIfNil(payload.KeyPoints),
		FollowUps:  emptyIfNil(payload.FollowUps),
		Criteria:   emptyIfNil(payload.Criteria),
	}
}

func fallbackQuestion(raw string, category string) *models.Question {
	return &models.Question{
		Text:         strings.TrimSpace(raw),
		Category:     category,
		Difficulty:   models.DefaultDifficulty,
		KeyPoints:    []string{},
		FollowUps:    []string{},
		Criteria:     []string{},
		UsedFallback: true,
	}
}

// parseEvaluationResponse converts a raw LLM response into an Evaluation.
// The second return value is false when the response is unusable and the
// caller must substitute the default evaluation.
func parseEvaluationResponse(raw string) (*models.Evaluation, bool) {
	data, ok := extractJSON(raw)
	if !ok {
		return nil, false
	}

	var payload evaluationPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, false
	}

	ev := &models.Evaluation{
		Correctness:   clampScore(payload.Correctness),
		Approach:      clampScore(payload.Approach),
		CodeQuality:   clampScore(payload.CodeQuality),
		Complexity:    clampScore(payload.Complexity),
		Communication: clampScore(payload.Communication),
		OverallScore:  clampScore(payload.OverallScore),
		Strengths:     emptyIfNil(payload.Strengths),
		Weaknesses:    emptyIfNil(payload.Weaknesses),
		Improvements:  emptyIfNil(payload.Improvements),
		NeedsFollowUp: payload.NeedsFollowUp,
	}

	// A missing overall score is derived from the sub-scores.
	if payload.OverallScore == 0 {
		ev.OverallScore = meanScore(
			ev.Correctness, ev.Approach, ev.CodeQuality, ev.Complexity, ev.Communication)
	}

	return ev, true
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func meanScore(scores ...int) int {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	// round half up
	return (sum + len(scores)/2) / len(scores)
}

func emptyIfNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
