package models

// GeneratedChapter is one chapter of an AI generated course outline.
type GeneratedChapter struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// GeneratedQuizQuestion is one quiz question of an AI generated course.
type GeneratedQuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correct_option"`
}

// GeneratedCourse is the structured payload expected from the course
// generation prompt.
type GeneratedCourse struct {
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	Chapters    []GeneratedChapter      `json:"chapters"`
	Quiz        []GeneratedQuizQuestion `json:"quiz"`
}

// CompatibilityReport is the structured payload expected from the
// applicant-to-job analysis prompt.
type CompatibilityReport struct {
	Score          int      `json:"score"`
	Strengths      []string `json:"strengths"`
	Gaps           []string `json:"gaps"`
	Recommendation string   `json:"recommendation"`
	Summary        string   `json:"summary"`
}
