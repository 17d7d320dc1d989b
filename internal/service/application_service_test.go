package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillbridge-app/skillbridge-api/internal/models"
	appErrors "github.com/skillbridge-app/skillbridge-api/pkg/errors"
)

type stubApplicationRepo struct {
	existing map[string]bool
	byID     map[string]*models.Application
	created  *models.Application
	updated  map[string]models.ApplicationStatus
}

func newStubApplicationRepo() *stubApplicationRepo {
	return &stubApplicationRepo{existing: map[string]bool{}, byID: map[string]*models.Application{}, updated: map[string]models.ApplicationStatus{}}
}

func (s *stubApplicationRepo) List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error) {
	return nil, 0, nil
}

func (s *stubApplicationRepo) FindByID(ctx context.Context, id string) (*models.Application, error) {
	if a, ok := s.byID[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubApplicationRepo) Exists(ctx context.Context, studentID, opportunityID string) (bool, error) {
	return s.existing[studentID+"/"+opportunityID], nil
}

func (s *stubApplicationRepo) Create(ctx context.Context, application *models.Application) error {
	application.Status = models.ApplicationStatusPending
	s.created = application
	return nil
}

func (s *stubApplicationRepo) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error {
	s.updated[id] = status
	return nil
}

type stubOpportunityLookup struct {
	detail *models.OpportunityDetail
}

func (s *stubOpportunityLookup) FindByID(ctx context.Context, id string) (*models.OpportunityDetail, error) {
	if s.detail == nil {
		return nil, sql.ErrNoRows
	}
	return s.detail, nil
}

type stubProfileLookup struct {
	profile *models.Profile
}

func (s *stubProfileLookup) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	if s.profile == nil {
		return nil, sql.ErrNoRows
	}
	return s.profile, nil
}

func openOpportunity() *models.OpportunityDetail {
	return &models.OpportunityDetail{Opportunity: models.Opportunity{ID: "opp-1", CompanyID: "com-1", Status: models.OpportunityStatusOpen}}
}

func TestApplyAttachesResume(t *testing.T) {
	repo := newStubApplicationRepo()
	svc := NewApplicationService(repo, &stubOpportunityLookup{detail: openOpportunity()}, &stubProfileLookup{profile: &models.Profile{ID: "stu-1", ResumeURL: "resumes/stu-1.pdf"}}, nil, nil)

	application, err := svc.Apply(context.Background(), "stu-1", ApplyRequest{OpportunityID: "opp-1"})
	require.NoError(t, err)
	assert.Equal(t, "com-1", application.CompanyID)
	assert.Equal(t, "resumes/stu-1.pdf", application.ResumeURL)
	assert.Equal(t, models.ApplicationStatusPending, application.Status)
}

func TestApplyTwiceRejected(t *testing.T) {
	repo := newStubApplicationRepo()
	repo.existing["stu-1/opp-1"] = true
	svc := NewApplicationService(repo, &stubOpportunityLookup{detail: openOpportunity()}, &stubProfileLookup{profile: &models.Profile{ID: "stu-1"}}, nil, nil)

	_, err := svc.Apply(context.Background(), "stu-1", ApplyRequest{OpportunityID: "opp-1"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrAlreadyApplied.Code, appErr.Code)
}

func TestApplyClosedOpportunityRejected(t *testing.T) {
	closed := openOpportunity()
	closed.Status = models.OpportunityStatusClosed
	svc := NewApplicationService(newStubApplicationRepo(), &stubOpportunityLookup{detail: closed}, &stubProfileLookup{profile: &models.Profile{ID: "stu-1"}}, nil, nil)

	_, err := svc.Apply(context.Background(), "stu-1", ApplyRequest{OpportunityID: "opp-1"})
	require.Error(t, err)
}

func TestUpdateStatusValidTransition(t *testing.T) {
	repo := newStubApplicationRepo()
	repo.byID["app-1"] = &models.Application{ID: "app-1", CompanyID: "com-1", Status: models.ApplicationStatusPending}
	svc := NewApplicationService(repo, &stubOpportunityLookup{}, &stubProfileLookup{}, nil, nil)

	application, err := svc.UpdateStatus(context.Background(), "app-1", models.ApplicationStatusReviewing, "com-1")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusReviewing, application.Status)
	assert.Equal(t, models.ApplicationStatusReviewing, repo.updated["app-1"])
}

func TestUpdateStatusTerminalStateLocked(t *testing.T) {
	repo := newStubApplicationRepo()
	repo.byID["app-1"] = &models.Application{ID: "app-1", CompanyID: "com-1", Status: models.ApplicationStatusRejected}
	svc := NewApplicationService(repo, &stubOpportunityLookup{}, &stubProfileLookup{}, nil, nil)

	_, err := svc.UpdateStatus(context.Background(), "app-1", models.ApplicationStatusAccepted, "com-1")
	require.Error(t, err)
}

func TestUpdateStatusWrongCompanyForbidden(t *testing.T) {
	repo := newStubApplicationRepo()
	repo.byID["app-1"] = &models.Application{ID: "app-1", CompanyID: "com-1", Status: models.ApplicationStatusPending}
	svc := NewApplicationService(repo, &stubOpportunityLookup{}, &stubProfileLookup{}, nil, nil)

	_, err := svc.UpdateStatus(context.Background(), "app-1", models.ApplicationStatusReviewing, "com-2")
	require.Error(t, err)
}

func TestWithdrawOwnApplication(t *testing.T) {
	repo := newStubApplicationRepo()
	repo.byID["app-1"] = &models.Application{ID: "app-1", StudentID: "stu-1", Status: models.ApplicationStatusPending}
	svc := NewApplicationService(repo, &stubOpportunityLookup{}, &stubProfileLookup{}, nil, nil)

	err := svc.Withdraw(context.Background(), "app-1", "stu-1")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusWithdrawn, repo.updated["app-1"])
}

func TestWithdrawOtherStudentsApplicationForbidden(t *testing.T) {
	repo := newStubApplicationRepo()
	repo.byID["app-1"] = &models.Application{ID: "app-1", StudentID: "stu-1", Status: models.ApplicationStatusPending}
	svc := NewApplicationService(repo, &stubOpportunityLookup{}, &stubProfileLookup{}, nil, nil)

	err := svc.Withdraw(context.Background(), "app-1", "stu-2")
	require.Error(t, err)
}
