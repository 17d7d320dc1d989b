package models

import (
	"time"

	"github.com/lib/pq"
)

// SkillLevel enumerates course difficulty tiers.
type SkillLevel string

const (
	SkillLevelBeginner     SkillLevel = "beginner"
	SkillLevelIntermediate SkillLevel = "intermediate"
	SkillLevelAdvanced     SkillLevel = "advanced"
)

// Course is a learning unit published by an instructor (employer or admin).
type Course struct {
	ID              string     `db:"id" json:"id"`
	Title           string     `db:"title" json:"title"`
	Description     string     `db:"description" json:"description"`
	Category        string     `db:"category" json:"category"`
	SkillLevel      SkillLevel `db:"skill_level" json:"skill_level"`
	DurationMinutes int        `db:"duration_minutes" json:"duration_minutes"`
	ThumbnailURL    string     `db:"thumbnail_url" json:"thumbnail_url"`
	InstructorID    string     `db:"instructor_id" json:"instructor_id"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// CourseChapter is an ordered content unit within a course.
// OrderIndex is a positive integer sequence starting at 1.
type CourseChapter struct {
	ID         string    `db:"id" json:"id"`
	CourseID   string    `db:"course_id" json:"course_id"`
	Title      string    `db:"title" json:"title"`
	Content    string    `db:"content" json:"content"`
	OrderIndex int       `db:"order_index" json:"order_index"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// QuizQuestion is a multiple-choice question attached to a course.
type QuizQuestion struct {
	ID            string         `db:"id" json:"id"`
	CourseID      string         `db:"course_id" json:"course_id"`
	Question      string         `db:"question" json:"question"`
	Options       pq.StringArray `db:"options" json:"options"`
	CorrectOption int            `db:"correct_option" json:"-"`
	OrderIndex    int            `db:"order_index" json:"order_index"`
}

// CourseDetail bundles a course with its chapters and quiz.
type CourseDetail struct {
	Course
	Chapters []CourseChapter `json:"chapters"`
	Quiz     []QuizQuestion  `json:"quiz,omitempty"`
}

// CourseFilter captures filtering criteria for listing courses.
type CourseFilter struct {
	Category     string
	SkillLevel   string
	InstructorID string
	Search       string
	Page         int
	PageSize     int
}
