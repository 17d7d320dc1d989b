package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/skillbridge-app/skillbridge-api/internal/dto"
	"github.com/skillbridge-app/skillbridge-api/internal/models"
	"github.com/skillbridge-app/skillbridge-api/pkg/config"
	appErrors "github.com/skillbridge-app/skillbridge-api/pkg/errors"
)

type searchRepository interface {
	SearchAll(ctx context.Context, query string, limit int) (*models.SearchResultSet, error)
	Courses(ctx context.Context, query string, limit int) ([]models.Course, error)
	Opportunities(ctx context.Context, query string, limit int) ([]models.OpportunityDetail, error)
	Profiles(ctx context.Context, query string, limit int) ([]models.Profile, error)
	Companies(ctx context.Context, query string, limit int) ([]models.Company, error)
	SuggestionStrings(ctx context.Context, query string, perTable int) ([][]string, error)
}

// SearchService aggregates multi-entity search results and autocomplete
// suggestions.
type SearchService struct {
	repo    searchRepository
	cache   *CacheService
	metrics *MetricsService
	cfg     config.SearchConfig
	logger  *zap.Logger
}

// NewSearchService constructs the search service.
func NewSearchService(repo searchRepository, cache *CacheService, metrics *MetricsService, cfg config.SearchConfig, logger *zap.Logger) *SearchService {
	if cfg.AllTabLimit <= 0 {
		cfg.AllTabLimit = 5
	}
	if cfg.SingleTabLimit <= 0 {
		cfg.SingleTabLimit = 10
	}
	if cfg.SuggestionPerTable <= 0 {
		cfg.SuggestionPerTable = 2
	}
	if cfg.SuggestionTotal <= 0 {
		cfg.SuggestionTotal = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchService{repo: repo, cache: cache, metrics: metrics, cfg: cfg, logger: logger}
}

// Search runs the query against the tables selected by the tab and flattens
// the rows into a single tagged list. An empty query returns an empty result
// without touching the database.
func (s *SearchService) Search(ctx context.Context, query string, tab models.SearchTab) (*dto.SearchResponse, error) {
	if tab == "" {
		tab = models.SearchTabAll
	}
	if !models.ValidSearchTab(tab) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown search tab %q", tab))
	}

	query = strings.TrimSpace(query)
	resp := &dto.SearchResponse{Query: query, Tab: tab, Entries: []models.SearchEntry{}}
	if query == "" {
		return resp, nil
	}

	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveSearch(string(tab), time.Since(start))
		}
	}()

	switch tab {
	case models.SearchTabAll:
		set, err := s.repo.SearchAll(ctx, query, s.cfg.AllTabLimit)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "search failed")
		}
		resp.Entries = aggregate(set)
	case models.SearchTabCourses:
		rows, err := s.repo.Courses(ctx, query, s.cfg.SingleTabLimit)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "course search failed")
		}
		for _, row := range rows {
			resp.Entries = append(resp.Entries, models.SearchEntry{Kind: models.SearchKindCourse, Data: row})
		}
	case models.SearchTabOpportunities:
		rows, err := s.repo.Opportunities(ctx, query, s.cfg.SingleTabLimit)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "opportunity search failed")
		}
		for _, row := range rows {
			resp.Entries = append(resp.Entries, models.SearchEntry{Kind: models.SearchKindOpportunity, Data: row})
		}
	case models.SearchTabProfiles:
		rows, err := s.repo.Profiles(ctx, query, s.cfg.SingleTabLimit)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "profile search failed")
		}
		for _, row := range rows {
			resp.Entries = append(resp.Entries, models.SearchEntry{Kind: models.SearchKindProfile, Data: row})
		}
	case models.SearchTabCompanies:
		rows, err := s.repo.Companies(ctx, query, s.cfg.SingleTabLimit)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "company search failed")
		}
		for _, row := range rows {
			resp.Entries = append(resp.Entries, models.SearchEntry{Kind: models.SearchKindCompany, Data: row})
		}
	}

	return resp, nil
}

// Suggestions returns up to the configured total of autocomplete strings,
// drawn in order from courses, opportunities, profiles, then companies. Blank
// display strings are dropped. Results are cached briefly since the same
// prefixes repeat while users type.
func (s *SearchService) Suggestions(ctx context.Context, query string) (*dto.SuggestionResponse, error) {
	query = strings.TrimSpace(query)
	resp := &dto.SuggestionResponse{Query: query, Suggestions: []string{}}
	if query == "" {
		return resp, nil
	}

	cacheKey := "search:suggest:" + strings.ToLower(query)
	if s.cache.Enabled() {
		var cached dto.SuggestionResponse
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	groups, err := s.repo.SuggestionStrings(ctx, query, s.cfg.SuggestionPerTable)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "suggestion lookup failed")
	}

	// Tables contribute in fixed order; courses first, companies last.
	for _, group := range groups {
		for _, value := range group {
			if strings.TrimSpace(value) == "" {
				continue
			}
			resp.Suggestions = append(resp.Suggestions, value)
			if len(resp.Suggestions) >= s.cfg.SuggestionTotal {
				break
			}
		}
		if len(resp.Suggestions) >= s.cfg.SuggestionTotal {
			break
		}
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, resp, s.cfg.SuggestionCacheTTL); err != nil {
			s.logger.Warn("suggestion cache write failed", zap.String("query", query), zap.Error(err))
		}
	}

	return resp, nil
}

// aggregate flattens the per-table rows into a single list, courses first,
// then opportunities, companies and profiles.
func aggregate(set *models.SearchResultSet) []models.SearchEntry {
	entries := []models.SearchEntry{}
	if set == nil {
		return entries
	}
	for _, row := range set.Courses {
		entries = append(entries, models.SearchEntry{Kind: models.SearchKindCourse, Data: row})
	}
	for _, row := range set.Opportunities {
		entries = append(entries, models.SearchEntry{Kind: models.SearchKindOpportunity, Data: row})
	}
	for _, row := range set.Companies {
		entries = append(entries, models.SearchEntry{Kind: models.SearchKindCompany, Data: row})
	}
	for _, row := range set.Profiles {
		entries = append(entries, models.SearchEntry{Kind: models.SearchKindProfile, Data: row})
	}
	return entries
}
