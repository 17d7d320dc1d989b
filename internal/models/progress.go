package models

import "time"

// ProgressStatus enumerates course completion states.
type ProgressStatus string

const (
	ProgressStatusNotStarted ProgressStatus = "not_started"
	ProgressStatusInProgress ProgressStatus = "in_progress"
	ProgressStatusCompleted  ProgressStatus = "completed"
)

// Progress is a student's completion state for a course.
// ProgressPercentage is clamped to [0, 100].
type Progress struct {
	ID                  string         `db:"id" json:"id"`
	UserID              string         `db:"user_id" json:"user_id"`
	CourseID            string         `db:"course_id" json:"course_id"`
	ProgressPercentage  int            `db:"progress_percentage" json:"progress_percentage"`
	LastModuleCompleted int            `db:"last_module_completed" json:"last_module_completed"`
	Status              ProgressStatus `db:"status" json:"status"`
	UpdatedAt           time.Time      `db:"updated_at" json:"updated_at"`
}

// ProgressDetail joins course display fields for the student's course list.
type ProgressDetail struct {
	Progress
	CourseTitle     string `db:"course_title" json:"course_title"`
	CourseThumbnail string `db:"course_thumbnail" json:"course_thumbnail"`
}

// QuizAttempt records the outcome of a quiz submission.
type QuizAttempt struct {
	CourseID string `json:"course_id"`
	Score    int    `json:"score"`
	Correct  int    `json:"correct"`
	Total    int    `json:"total"`
	Passed   bool   `json:"passed"`
}
