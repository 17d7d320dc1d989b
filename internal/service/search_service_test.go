package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillbridge-app/skillbridge-api/internal/models"
	"github.com/skillbridge-app/skillbridge-api/pkg/config"
)

type stubSearchRepo struct {
	set         *models.SearchResultSet
	courses     []models.Course
	suggestions [][]string

	searchAllCalls int
	lastLimit      int
	lastPerTable   int
}

func (s *stubSearchRepo) SearchAll(ctx context.Context, query string, limit int) (*models.SearchResultSet, error) {
	s.searchAllCalls++
	s.lastLimit = limit
	return s.set, nil
}

func (s *stubSearchRepo) Courses(ctx context.Context, query string, limit int) ([]models.Course, error) {
	s.lastLimit = limit
	return s.courses, nil
}

func (s *stubSearchRepo) Opportunities(ctx context.Context, query string, limit int) ([]models.OpportunityDetail, error) {
	s.lastLimit = limit
	return nil, nil
}

func (s *stubSearchRepo) Profiles(ctx context.Context, query string, limit int) ([]models.Profile, error) {
	s.lastLimit = limit
	return nil, nil
}

func (s *stubSearchRepo) Companies(ctx context.Context, query string, limit int) ([]models.Company, error) {
	s.lastLimit = limit
	return nil, nil
}

func (s *stubSearchRepo) SuggestionStrings(ctx context.Context, query string, perTable int) ([][]string, error) {
	s.lastPerTable = perTable
	return s.suggestions, nil
}

func searchConfig() config.SearchConfig {
	return config.SearchConfig{AllTabLimit: 5, SingleTabLimit: 10, SuggestionPerTable: 2, SuggestionTotal: 5}
}

func TestSearchAggregationOrder(t *testing.T) {
	repo := &stubSearchRepo{set: &models.SearchResultSet{
		Courses:       []models.Course{{ID: "crs-1", Title: "React Basics"}},
		Opportunities: []models.OpportunityDetail{{Opportunity: models.Opportunity{ID: "opp-1", Title: "React Developer"}}},
		Profiles:      []models.Profile{{ID: "pro-1", FirstName: "Rea", LastName: "Carter"}},
		Companies:     []models.Company{{ID: "com-1", Name: "Reactive Labs"}},
	}}
	svc := NewSearchService(repo, nil, nil, searchConfig(), nil)

	resp, err := svc.Search(context.Background(), "react", models.SearchTabAll)
	require.NoError(t, err)
	require.Len(t, resp.Entries, 4)
	assert.Equal(t, models.SearchKindCourse, resp.Entries[0].Kind)
	assert.Equal(t, models.SearchKindOpportunity, resp.Entries[1].Kind)
	assert.Equal(t, models.SearchKindCompany, resp.Entries[2].Kind)
	assert.Equal(t, models.SearchKindProfile, resp.Entries[3].Kind)
	assert.Equal(t, 5, repo.lastLimit)
}

func TestSearchEmptyQuerySkipsRepository(t *testing.T) {
	repo := &stubSearchRepo{}
	svc := NewSearchService(repo, nil, nil, searchConfig(), nil)

	resp, err := svc.Search(context.Background(), "   ", models.SearchTabAll)
	require.NoError(t, err)
	assert.Empty(t, resp.Entries)
	assert.Zero(t, repo.searchAllCalls)
}

func TestSearchUnknownTabRejected(t *testing.T) {
	svc := NewSearchService(&stubSearchRepo{}, nil, nil, searchConfig(), nil)

	_, err := svc.Search(context.Background(), "react", models.SearchTab("bogus"))
	require.Error(t, err)
}

func TestSearchSingleTabUsesLargerLimit(t *testing.T) {
	repo := &stubSearchRepo{courses: []models.Course{{ID: "crs-1", Title: "React Basics"}}}
	svc := NewSearchService(repo, nil, nil, searchConfig(), nil)

	resp, err := svc.Search(context.Background(), "react", models.SearchTabCourses)
	require.NoError(t, err)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, models.SearchKindCourse, resp.Entries[0].Kind)
	assert.Equal(t, 10, repo.lastLimit)
}

func TestSuggestionsCapAndOrder(t *testing.T) {
	repo := &stubSearchRepo{suggestions: [][]string{
		{"React Basics", "React Patterns"},
		{"React Developer", "React Native Intern"},
		{"Rea Carter", "Reagan Wells"},
		{"Reactive Labs"},
	}}
	svc := NewSearchService(repo, nil, nil, searchConfig(), nil)

	resp, err := svc.Suggestions(context.Background(), "rea")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.lastPerTable)
	assert.Equal(t, []string{"React Basics", "React Patterns", "React Developer", "React Native Intern", "Rea Carter"}, resp.Suggestions)
}

func TestSuggestionsDropBlankValues(t *testing.T) {
	repo := &stubSearchRepo{suggestions: [][]string{
		{"React Basics", ""},
		{"  "},
		{"Rea Carter"},
		nil,
	}}
	svc := NewSearchService(repo, nil, nil, searchConfig(), nil)

	resp, err := svc.Suggestions(context.Background(), "rea")
	require.NoError(t, err)
	assert.Equal(t, []string{"React Basics", "Rea Carter"}, resp.Suggestions)
}

func TestSuggestionsEmptyQuery(t *testing.T) {
	repo := &stubSearchRepo{}
	svc := NewSearchService(repo, nil, nil, searchConfig(), nil)

	resp, err := svc.Suggestions(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, resp.Suggestions)
	assert.Zero(t, repo.lastPerTable)
}
