package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/skillbridge-app/skillbridge-api/internal/dto"
	"github.com/skillbridge-app/skillbridge-api/internal/models"
	appErrors "github.com/skillbridge-app/skillbridge-api/pkg/errors"
	"github.com/skillbridge-app/skillbridge-api/pkg/export"
	"github.com/skillbridge-app/skillbridge-api/pkg/jobs"
	"github.com/skillbridge-app/skillbridge-api/pkg/storage"
)

type reportRepository interface {
	Create(ctx context.Context, job *models.ReportJob) error
	FindByID(ctx context.Context, id string) (*models.ReportJob, error)
	MarkProcessing(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id, filePath string) error
	MarkFailed(ctx context.Context, id, message string) error
}

type reportApplicationRepository interface {
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error)
}

type reportStore interface {
	Save(bucket, object string, data []byte) error
}

type reportQueue interface {
	Enqueue(job jobs.Job) error
}

// ReportService renders applications exports asynchronously. Jobs are queued
// in-process and fetched back by ID once completed.
type ReportService struct {
	repo         reportRepository
	applications reportApplicationRepository
	store        reportStore
	signer       *storage.SignedURLSigner
	queue        reportQueue
	csv          *export.CSVExporter
	pdf          *export.PDFExporter
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewReportService constructs the report service. Attach the returned
// service's Process method as the queue handler.
func NewReportService(repo reportRepository, applications reportApplicationRepository, store reportStore, signer *storage.SignedURLSigner, validate *validator.Validate, logger *zap.Logger) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		repo:         repo,
		applications: applications,
		store:        store,
		signer:       signer,
		csv:          export.NewCSVExporter(),
		pdf:          export.NewPDFExporter(),
		validator:    validate,
		logger:       logger,
	}
}

// AttachQueue wires the worker queue used for async rendering.
func (s *ReportService) AttachQueue(queue reportQueue) {
	s.queue = queue
}

// Request queues an export of all applications for the opportunity.
func (s *ReportService) Request(ctx context.Context, requestedBy string, req dto.CreateReportRequest) (*models.ReportJob, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report payload")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "report queue is not running")
	}

	job := &models.ReportJob{
		OpportunityID: req.OpportunityID,
		RequestedBy:   requestedBy,
		Format:        models.ReportFormat(req.Format),
		Status:        models.ReportStatusQueued,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue report")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "applications-report", Payload: job.ID}); err != nil {
		if markErr := s.repo.MarkFailed(ctx, job.ID, "queue unavailable"); markErr != nil {
			s.logger.Warn("failed to mark report failed", zap.String("job_id", job.ID), zap.Error(markErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue report")
	}
	return job, nil
}

// Get returns the job and, once completed, a signed download token.
func (s *ReportService) Get(ctx context.Context, id, requestedBy string) (*dto.ReportResponse, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report")
	}
	if requestedBy != "" && job.RequestedBy != requestedBy {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report belongs to another user")
	}

	resp := &dto.ReportResponse{Job: *job}
	if job.Status == models.ReportStatusCompleted && job.FilePath != "" && s.signer != nil {
		token, expiresAt, err := s.signer.Generate(storage.BucketReports, job.FilePath)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download")
		}
		resp.DownloadURL = token
		resp.ExpiresAt = &expiresAt
	}
	return resp, nil
}

// Process renders one queued job. It is the handler attached to the worker
// queue; errors bubble up so the queue retries.
func (s *ReportService) Process(ctx context.Context, job jobs.Job) error {
	jobID, ok := job.Payload.(string)
	if !ok || jobID == "" {
		return fmt.Errorf("report job payload missing id")
	}

	stored, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load report job %s: %w", jobID, err)
	}
	if err := s.repo.MarkProcessing(ctx, jobID); err != nil {
		return err
	}

	applications, _, err := s.applications.List(ctx, models.ApplicationFilter{OpportunityID: stored.OpportunityID, PageSize: 100})
	if err != nil {
		if markErr := s.repo.MarkFailed(ctx, jobID, "failed to load applications"); markErr != nil {
			s.logger.Warn("failed to mark report failed", zap.String("job_id", jobID), zap.Error(markErr))
		}
		return err
	}

	dataset := applicationsDataset(applications)
	var rendered []byte
	var ext string
	switch stored.Format {
	case models.ReportFormatPDF:
		rendered, err = s.pdf.Render(dataset, "Applications Report")
		ext = "pdf"
	default:
		rendered, err = s.csv.Render(dataset)
		ext = "csv"
	}
	if err != nil {
		if markErr := s.repo.MarkFailed(ctx, jobID, "render failed"); markErr != nil {
			s.logger.Warn("failed to mark report failed", zap.String("job_id", jobID), zap.Error(markErr))
		}
		return err
	}

	object := fmt.Sprintf("%s/%s.%s", stored.OpportunityID, jobID, ext)
	if err := s.store.Save(storage.BucketReports, object, rendered); err != nil {
		if markErr := s.repo.MarkFailed(ctx, jobID, "store failed"); markErr != nil {
			s.logger.Warn("failed to mark report failed", zap.String("job_id", jobID), zap.Error(markErr))
		}
		return err
	}

	if err := s.repo.MarkCompleted(ctx, jobID, object); err != nil {
		return err
	}
	s.logger.Info("report completed",
		zap.String("job_id", jobID),
		zap.String("opportunity_id", stored.OpportunityID),
		zap.String("format", string(stored.Format)))
	return nil
}

func applicationsDataset(applications []models.ApplicationDetail) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"Applicant", "Opportunity", "Status", "Applied At"},
	}
	for _, application := range applications {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Applicant":   fmt.Sprintf("%s %s", application.StudentFirstName, application.StudentLastName),
			"Opportunity": application.OpportunityTitle,
			"Status":      string(application.Status),
			"Applied At":  application.CreatedAt.Format(time.RFC3339),
		})
	}
	return dataset
}
