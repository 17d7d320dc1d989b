package dto

import (
	"time"

	"github.com/skillbridge-app/skillbridge-api/internal/models"
)

// CreateReportRequest queues an applications export for an opportunity.
type CreateReportRequest struct {
	OpportunityID string `json:"opportunity_id" validate:"required"`
	Format        string `json:"format" validate:"required,oneof=csv pdf"`
}

// ReportResponse describes a queued or finished export job.
type ReportResponse struct {
	Job         models.ReportJob `json:"job"`
	DownloadURL string           `json:"download_url,omitempty"`
	ExpiresAt   *time.Time       `json:"expires_at,omitempty"`
}
