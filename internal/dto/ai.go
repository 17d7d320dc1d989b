package dto

import "github.com/skillbridge-app/skillbridge-api/internal/models"

// GenerateCourseRequest asks the AI layer for a course outline.
type GenerateCourseRequest struct {
	Topic        string `json:"topic" validate:"required"`
	SkillLevel   string `json:"skill_level" validate:"omitempty,oneof=beginner intermediate advanced"`
	ChapterCount int    `json:"chapter_count" validate:"omitempty,min=1,max=20"`
}

// GenerateCourseResponse wraps the parsed generation result.
type GenerateCourseResponse struct {
	Course models.GeneratedCourse `json:"course"`
}

// CompatibilityResponse wraps the parsed applicant analysis.
type CompatibilityResponse struct {
	ApplicationID string                     `json:"application_id"`
	Report        models.CompatibilityReport `json:"report"`
}
