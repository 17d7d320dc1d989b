package models

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// Profile is the domain user record linked one-to-one with an auth identity.
type Profile struct {
	ID                  string          `db:"id" json:"id"`
	FirstName           string          `db:"first_name" json:"first_name"`
	LastName            string          `db:"last_name" json:"last_name"`
	Bio                 string          `db:"bio" json:"bio"`
	Skills              pq.StringArray  `db:"skills" json:"skills"`
	AvatarURL           string          `db:"avatar_url" json:"avatar_url"`
	Role                UserRole        `db:"role" json:"role"`
	CompanyID           *string         `db:"company_id" json:"company_id,omitempty"`
	ResumeURL           string          `db:"resume_url" json:"resume_url"`
	Education           json.RawMessage `db:"education" json:"education,omitempty"`
	OnboardingCompleted bool            `db:"onboarding_completed" json:"onboarding_completed"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name for display.
func (p Profile) FullName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// EducationEntry is a single record inside the education JSON column.
type EducationEntry struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	StartYear   int    `json:"start_year"`
	EndYear     int    `json:"end_year,omitempty"`
}

// ProfileFilter captures filtering criteria for listing profiles.
type ProfileFilter struct {
	Role      *UserRole
	CompanyID string
	Search    string
	Page      int
	PageSize  int
}
