package models

import (
	"time"

	"github.com/lib/pq"
)

// OpportunityType enumerates the kinds of postings companies publish.
type OpportunityType string

const (
	OpportunityTypeJob        OpportunityType = "job"
	OpportunityTypeInternship OpportunityType = "internship"
	OpportunityTypeProject    OpportunityType = "project"
)

// OpportunityStatus enumerates posting lifecycle states.
type OpportunityStatus string

const (
	OpportunityStatusOpen   OpportunityStatus = "open"
	OpportunityStatusClosed OpportunityStatus = "closed"
)

// Opportunity is a job/internship/project posting owned by a company.
type Opportunity struct {
	ID                  string            `db:"id" json:"id"`
	CompanyID           string            `db:"company_id" json:"company_id"`
	Title               string            `db:"title" json:"title"`
	Description         string            `db:"description" json:"description"`
	Location            string            `db:"location" json:"location"`
	Type                OpportunityType   `db:"type" json:"type"`
	SkillsRequired      pq.StringArray    `db:"skills_required" json:"skills_required"`
	ApplicationDeadline *time.Time        `db:"application_deadline" json:"application_deadline,omitempty"`
	Status              OpportunityStatus `db:"status" json:"status"`
	Remote              bool              `db:"remote" json:"remote"`
	CreatedAt           time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time         `db:"updated_at" json:"updated_at"`
}

// OpportunityDetail joins the owning company's display fields.
type OpportunityDetail struct {
	Opportunity
	CompanyName string `db:"company_name" json:"company_name"`
	CompanyLogo string `db:"company_logo" json:"company_logo"`
}

// OpportunityFilter captures filtering criteria for listing opportunities.
type OpportunityFilter struct {
	CompanyID string
	Type      string
	Status    string
	Remote    *bool
	Search    string
	Page      int
	PageSize  int
}
