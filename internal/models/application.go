package models

import "time"

// ApplicationStatus enumerates the review states of an application.
type ApplicationStatus string

const (
	ApplicationStatusPending   ApplicationStatus = "pending"
	ApplicationStatusReviewing ApplicationStatus = "reviewing"
	ApplicationStatusAccepted  ApplicationStatus = "accepted"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
	ApplicationStatusWithdrawn ApplicationStatus = "withdrawn"
)

// Application links one student profile to one opportunity.
// Unique per (student, opportunity) pair.
type Application struct {
	ID            string            `db:"id" json:"id"`
	StudentID     string            `db:"student_id" json:"student_id"`
	OpportunityID string            `db:"opportunity_id" json:"opportunity_id"`
	CompanyID     string            `db:"company_id" json:"company_id"`
	Status        ApplicationStatus `db:"status" json:"status"`
	ResumeURL     string            `db:"resume_url" json:"resume_url"`
	CreatedAt     time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time         `db:"updated_at" json:"updated_at"`
}

// ApplicationDetail joins applicant and opportunity display fields for employer review.
type ApplicationDetail struct {
	Application
	StudentFirstName string `db:"student_first_name" json:"student_first_name"`
	StudentLastName  string `db:"student_last_name" json:"student_last_name"`
	OpportunityTitle string `db:"opportunity_title" json:"opportunity_title"`
}

// ApplicationFilter captures filtering criteria for listing applications.
type ApplicationFilter struct {
	StudentID     string
	OpportunityID string
	CompanyID     string
	Status        string
	Page          int
	PageSize      int
}
