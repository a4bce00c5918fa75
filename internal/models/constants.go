package models

// contains all supported interview types (in lowercase)
var ValidInterviewTypes = map[string]bool{
	"technical":      true,
	"behavioral":     true,
	"system-design":  true,
	"coding-problem": true,
	"mixed":          true,
}

// contains all valid seniority levels (in lowercase)
var ValidLevels = map[string]bool{
	"junior": true,
	"mid":    true,
	"senior": true,
	"staff":  true,
}

// contains all valid question difficulties (in lowercase)
var ValidDifficulties = map[string]bool{
	"easy":   true,
	"medium": true,
	"hard":   true,
}

// Session lifecycle states. A completed session never transitions again.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

const (
	TypeTechnical     = "technical"
	TypeBehavioral    = "behavioral"
	TypeSystemDesign  = "system-design"
	TypeCodingProblem = "coding-problem"
	TypeMixed         = "mixed"
)

// CategoryGeneral is used for questions generated in mixed interviews.
const CategoryGeneral = "general"

const (
	DefaultInterviewType = TypeTechnical
	DefaultRole          = "Software Engineer"
	DefaultLevel         = "mid"
	DefaultDifficulty    = "medium"
	DefaultDuration      = 30
	DefaultQuestionCount = 5
)

// TimeoutAnswer is the literal answer recorded when the candidate never
// responds before the per-question deadline.
const TimeoutAnswer = "No answer provided - timeout"

func ValidInterviewTypesList() []string {
	return []string{"technical", "behavioral", "system-design", "coding-problem", "mixed"}
}

func ValidLevelsList() []string {
	return []string{"junior", "mid", "senior", "staff"}
}

func ValidDifficultiesList() []string {
	return []string{"easy", "medium", "hard"}
}
