package interview

import (
	"math"

	"mockmate/interviewer/internal/models"
)

// CalculateFinalScore reduces all per-question evaluations of a session into
// one FinalEvaluation. Questions without an evaluation are skipped, not
// treated as zero. With no evaluations at all the default shape is returned.
func CalculateFinalScore(s *models.Session) *models.FinalEvaluation {
	var evals []*models.Evaluation
	answered := 0
	for _, q := range s.Questions {
		if q.Answer != nil {
			answered++
		}
		if q.Evaluation != nil {
			evals = append(evals, q.Evaluation)
		}
	}

	duration := 0
	if s.EndedAt != nil {
		duration = int(math.Round(s.EndedAt.Sub(s.StartedAt).Minutes()))
	}

	if len(evals) == 0 {
		return models.DefaultFinalEvaluation()
	}

	var correctness, approach, codeQuality, complexity, communication, overall int
	var strengths, weaknesses, improvements []string
	usedFallback := false
	for _, ev := range evals {
		correctness += ev.Correctness
		approach += ev.Approach
		codeQuality += ev.CodeQuality
		complexity += ev.Complexity
		communication += ev.Communication
		overall += ev.OverallScore
		strengths = append(strengths, ev.Strengths...)
		weaknesses = append(weaknesses, ev.Weaknesses...)
		improvements = append(improvements, ev.Improvements...)
		if ev.UsedFallback {
			usedFallback = true
		}
	}

	n := len(evals)
	return &models.FinalEvaluation{
		Correctness:       mean(correctness, n),
		Approach:          mean(approach, n),
		CodeQuality:       mean(codeQuality, n),
		Complexity:        mean(complexity, n),
		Communication:     mean(communication, n),
		OverallScore:      mean(overall, n),
		Strengths:         dedupeTruncate(strengths, 5),
		Weaknesses:        dedupeTruncate(weaknesses, 5),
		Improvements:      dedupeTruncate(improvements, 5),
		QuestionsAnswered: answered,
		DurationMinutes:   duration,
		UsedFallback:      usedFallback,
	}
}

func mean(sum, n int) int {
	return int(math.Round(float64(sum) / float64(n)))
}

// dedupeTruncate removes exact duplicates keeping first-occurrence order,
// then truncates to at most limit entries.
func dedupeTruncate(items []string, limit int) []string {
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, limit)
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		result = append(result, item)
		if len(result) == limit {
			break
		}
	}
	return result
}
