package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/skillbridge-app/skillbridge-api/internal/models"
	appErrors "github.com/skillbridge-app/skillbridge-api/pkg/errors"
)

type applicationRepository interface {
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Application, error)
	Exists(ctx context.Context, studentID, opportunityID string) (bool, error)
	Create(ctx context.Context, application *models.Application) error
	UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error
}

type applicationOpportunityRepository interface {
	FindByID(ctx context.Context, id string) (*models.OpportunityDetail, error)
}

type applicationProfileRepository interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
}

// ApplyRequest holds payload for submitting an application.
type ApplyRequest struct {
	OpportunityID string `json:"opportunity_id" validate:"required"`
}

// ApplicationService handles application submission and review.
type ApplicationService struct {
	repo          applicationRepository
	opportunities applicationOpportunityRepository
	profiles      applicationProfileRepository
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewApplicationService constructs the application service.
func NewApplicationService(repo applicationRepository, opportunities applicationOpportunityRepository, profiles applicationProfileRepository, validate *validator.Validate, logger *zap.Logger) *ApplicationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{repo: repo, opportunities: opportunities, profiles: profiles, validator: validate, logger: logger}
}

// List returns applications and pagination metadata.
func (s *ApplicationService) List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, *models.Pagination, error) {
	applications, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return applications, pagination, nil
}

// Apply submits an application for the student. One application per
// (student, opportunity) pair; the student's current resume is attached.
func (s *ApplicationService) Apply(ctx context.Context, studentID string, req ApplyRequest) (*models.Application, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}

	opportunity, err := s.opportunities.FindByID(ctx, req.OpportunityID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "opportunity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load opportunity")
	}
	if opportunity.Status != models.OpportunityStatusOpen {
		return nil, appErrors.Clone(appErrors.ErrConflict, "opportunity is closed")
	}

	exists, err := s.repo.Exists(ctx, studentID, req.OpportunityID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing application")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrAlreadyApplied, "")
	}

	profile, err := s.profiles.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	application := &models.Application{
		StudentID:     studentID,
		OpportunityID: opportunity.ID,
		CompanyID:     opportunity.CompanyID,
		ResumeURL:     profile.ResumeURL,
	}
	if err := s.repo.Create(ctx, application); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application")
	}
	return application, nil
}

// validStatusTransitions maps each status to the states an employer or
// student may move it into.
var validStatusTransitions = map[models.ApplicationStatus][]models.ApplicationStatus{
	models.ApplicationStatusPending:   {models.ApplicationStatusReviewing, models.ApplicationStatusAccepted, models.ApplicationStatusRejected, models.ApplicationStatusWithdrawn},
	models.ApplicationStatusReviewing: {models.ApplicationStatusAccepted, models.ApplicationStatusRejected, models.ApplicationStatusWithdrawn},
}

// UpdateStatus transitions an application's review status. Terminal states
// cannot be left.
func (s *ApplicationService) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus, actorCompanyID string) (*models.Application, error) {
	application, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	if actorCompanyID != "" && application.CompanyID != actorCompanyID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "application belongs to another company")
	}

	allowed := false
	for _, next := range validStatusTransitions[application.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, appErrors.Clone(appErrors.ErrConflict, "invalid status transition")
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application")
	}
	application.Status = status
	return application, nil
}

// Withdraw lets a student withdraw their own application.
func (s *ApplicationService) Withdraw(ctx context.Context, id, studentID string) error {
	application, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	if application.StudentID != studentID {
		return appErrors.Clone(appErrors.ErrForbidden, "application belongs to another student")
	}
	if application.Status == models.ApplicationStatusAccepted || application.Status == models.ApplicationStatusRejected || application.Status == models.ApplicationStatusWithdrawn {
		return appErrors.Clone(appErrors.ErrConflict, "application already finalised")
	}
	if err := s.repo.UpdateStatus(ctx, id, models.ApplicationStatusWithdrawn); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to withdraw application")
	}
	return nil
}
