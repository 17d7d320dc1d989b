package models

import "time"

// ReportStatus enumerates export job lifecycle states.
type ReportStatus string

const (
	ReportStatusQueued     ReportStatus = "queued"
	ReportStatusProcessing ReportStatus = "processing"
	ReportStatusCompleted  ReportStatus = "completed"
	ReportStatusFailed     ReportStatus = "failed"
)

// ReportFormat enumerates supported export formats.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportJob tracks an asynchronous applications export.
type ReportJob struct {
	ID            string       `db:"id" json:"id"`
	OpportunityID string       `db:"opportunity_id" json:"opportunity_id"`
	RequestedBy   string       `db:"requested_by" json:"requested_by"`
	Format        ReportFormat `db:"format" json:"format"`
	Status        ReportStatus `db:"status" json:"status"`
	FilePath      string       `db:"file_path" json:"-"`
	ErrorMessage  string       `db:"error_message" json:"error_message,omitempty"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	CompletedAt   *time.Time   `db:"completed_at" json:"completed_at,omitempty"`
}
