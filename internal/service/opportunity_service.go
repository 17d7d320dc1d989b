package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/skillbridge-app/skillbridge-api/internal/models"
	appErrors "github.com/skillbridge-app/skillbridge-api/pkg/errors"
)

type opportunityRepository interface {
	List(ctx context.Context, filter models.OpportunityFilter) ([]models.OpportunityDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.OpportunityDetail, error)
	Create(ctx context.Context, opportunity *models.Opportunity) error
	Update(ctx context.Context, opportunity *models.Opportunity) error
	Delete(ctx context.Context, id string) error
}

// OpportunityRequest holds payload for creating or updating a posting.
type OpportunityRequest struct {
	Title               string     `json:"title" validate:"required"`
	Description         string     `json:"description" validate:"required"`
	Location            string     `json:"location"`
	Type                string     `json:"type" validate:"required,oneof=job internship project"`
	SkillsRequired      []string   `json:"skills_required"`
	ApplicationDeadline *time.Time `json:"application_deadline"`
	Status              string     `json:"status" validate:"omitempty,oneof=open closed"`
	Remote              bool       `json:"remote"`
}

// OpportunityService handles opportunity posting use-cases.
type OpportunityService struct {
	repo      opportunityRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewOpportunityService constructs the opportunity service.
func NewOpportunityService(repo opportunityRepository, validate *validator.Validate, logger *zap.Logger) *OpportunityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpportunityService{repo: repo, validator: validate, logger: logger}
}

// List returns opportunities and pagination metadata.
func (s *OpportunityService) List(ctx context.Context, filter models.OpportunityFilter) ([]models.OpportunityDetail, *models.Pagination, error) {
	opportunities, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list opportunities")
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
	return opportunities, pagination, nil
}

// Get returns a single posting with company display fields.
func (s *OpportunityService) Get(ctx context.Context, id string) (*models.OpportunityDetail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "opportunity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load opportunity")
	}
	return detail, nil
}

// Create publishes a new posting for the given company.
func (s *OpportunityService) Create(ctx context.Context, companyID string, req OpportunityRequest) (*models.Opportunity, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid opportunity payload")
	}
	opportunity := &models.Opportunity{
		CompanyID:           companyID,
		Title:               req.Title,
		Description:         req.Description,
		Location:            req.Location,
		Type:                models.OpportunityType(req.Type),
		SkillsRequired:      req.SkillsRequired,
		ApplicationDeadline: req.ApplicationDeadline,
		Status:              models.OpportunityStatus(req.Status),
		Remote:              req.Remote,
	}
	if err := s.repo.Create(ctx, opportunity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create opportunity")
	}
	return opportunity, nil
}

// Update modifies an existing posting. Only the owning company may update it.
func (s *OpportunityService) Update(ctx context.Context, id, companyID string, req OpportunityRequest) (*models.Opportunity, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid opportunity payload")
	}
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if companyID != "" && detail.CompanyID != companyID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "opportunity belongs to another company")
	}

	opportunity := detail.Opportunity
	opportunity.Title = req.Title
	opportunity.Description = req.Description
	opportunity.Location = req.Location
	opportunity.Type = models.OpportunityType(req.Type)
	opportunity.SkillsRequired = req.SkillsRequired
	opportunity.ApplicationDeadline = req.ApplicationDeadline
	if req.Status != "" {
		opportunity.Status = models.OpportunityStatus(req.Status)
	}
	opportunity.Remote = req.Remote

	if err := s.repo.Update(ctx, &opportunity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update opportunity")
	}
	return &opportunity, nil
}

// Delete removes a posting and its applications.
func (s *OpportunityService) Delete(ctx context.Context, id, companyID string) error {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if companyID != "" && detail.CompanyID != companyID {
		return appErrors.Clone(appErrors.ErrForbidden, "opportunity belongs to another company")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete opportunity")
	}
	return nil
}
