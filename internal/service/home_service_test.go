package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillbridge-app/skillbridge-api/internal/models"
	"github.com/skillbridge-app/skillbridge-api/pkg/config"
)

type stubHomeOpportunities struct {
	rows       []models.OpportunityDetail
	lastSkills []string
}

func (s *stubHomeOpportunities) Recommended(ctx context.Context, skills []string, limit int) ([]models.OpportunityDetail, error) {
	s.lastSkills = skills
	return s.rows, nil
}

type stubHomeProgress struct {
	rows []models.ProgressDetail
}

func (s *stubHomeProgress) ListByUser(ctx context.Context, userID string, status string, limit int) ([]models.ProgressDetail, error) {
	return s.rows, nil
}

type stubHomeProfiles struct {
	profile *models.Profile
}

func (s *stubHomeProfiles) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	return s.profile, nil
}

func opportunityRow(id, title string) models.OpportunityDetail {
	return models.OpportunityDetail{Opportunity: models.Opportunity{ID: id, Title: title}}
}

func TestFeedUsesProfileSkills(t *testing.T) {
	opportunities := &stubHomeOpportunities{rows: []models.OpportunityDetail{opportunityRow("opp-1", "React Developer")}}
	progress := &stubHomeProgress{rows: []models.ProgressDetail{{Progress: models.Progress{CourseID: "crs-1"}, CourseTitle: "Go Basics"}}}
	profiles := &stubHomeProfiles{profile: &models.Profile{ID: "stu-1", Skills: []string{"react", "go"}}}
	svc := NewHomeService(opportunities, progress, profiles, nil, config.HomeFeedConfig{}, nil)

	feed, err := svc.Feed(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"react", "go"}, opportunities.lastSkills)
	require.Len(t, feed.Recommended, 1)
	require.Len(t, feed.ActiveCourses, 1)
}

func TestDedupeOpportunitiesLastSeenWins(t *testing.T) {
	rows := []models.OpportunityDetail{
		opportunityRow("opp-1", "first copy"),
		opportunityRow("opp-2", "keep"),
		opportunityRow("opp-1", "second copy"),
	}

	result := DedupeOpportunities(rows)
	require.Len(t, result, 2)
	assert.Equal(t, "opp-1", result[0].ID)
	assert.Equal(t, "second copy", result[0].Title)
	assert.Equal(t, "opp-2", result[1].ID)
}

func TestDedupeOpportunitiesEmpty(t *testing.T) {
	assert.Empty(t, DedupeOpportunities(nil))
}
