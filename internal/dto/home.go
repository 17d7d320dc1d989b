package dto

import "github.com/skillbridge-app/skillbridge-api/internal/models"

// HomeFeedResponse composes the student home screen payload.
type HomeFeedResponse struct {
	Recommended   []models.OpportunityDetail `json:"recommended"`
	ActiveCourses []models.ProgressDetail    `json:"active_courses"`
}
