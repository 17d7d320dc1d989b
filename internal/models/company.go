package models

import "time"

// Company is an employer organisation owning opportunities.
type Company struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	LogoURL     string    `db:"logo_url" json:"logo_url"`
	Website     string    `db:"website" json:"website"`
	Industry    string    `db:"industry" json:"industry"`
	Size        string    `db:"size" json:"size"`
	Location    string    `db:"location" json:"location"`
	Verified    bool      `db:"verified" json:"verified"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CompanyFilter captures filtering criteria for listing companies.
type CompanyFilter struct {
	Industry string
	Verified *bool
	Search   string
	Page     int
	PageSize int
}
