package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/skillbridge-app/skillbridge-api/internal/dto"
	"github.com/skillbridge-app/skillbridge-api/internal/models"
	"github.com/skillbridge-app/skillbridge-api/pkg/config"
	appErrors "github.com/skillbridge-app/skillbridge-api/pkg/errors"
)

type homeOpportunityRepository interface {
	Recommended(ctx context.Context, skills []string, limit int) ([]models.OpportunityDetail, error)
}

type homeProgressRepository interface {
	ListByUser(ctx context.Context, userID string, status string, limit int) ([]models.ProgressDetail, error)
}

type homeProfileRepository interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
}

// HomeService composes the student home feed from skill-matched postings and
// the student's in-progress courses.
type HomeService struct {
	opportunities homeOpportunityRepository
	progress      homeProgressRepository
	profiles      homeProfileRepository
	cache         *CacheService
	cfg           config.HomeFeedConfig
	logger        *zap.Logger
}

// NewHomeService constructs the home feed service.
func NewHomeService(opportunities homeOpportunityRepository, progress homeProgressRepository, profiles homeProfileRepository, cache *CacheService, cfg config.HomeFeedConfig, logger *zap.Logger) *HomeService {
	if cfg.RecommendedLimit <= 0 {
		cfg.RecommendedLimit = 10
	}
	if cfg.ActiveCoursesMax <= 0 {
		cfg.ActiveCoursesMax = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HomeService{opportunities: opportunities, progress: progress, profiles: profiles, cache: cache, cfg: cfg, logger: logger}
}

// Feed returns the home payload for a student.
func (s *HomeService) Feed(ctx context.Context, userID string) (*dto.HomeFeedResponse, error) {
	cacheKey := "home:" + userID
	if s.cache.Enabled() {
		var cached dto.HomeFeedResponse
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	profile, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	recommended, err := s.opportunities.Recommended(ctx, profile.Skills, s.cfg.RecommendedLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recommendations")
	}

	active, err := s.progress.ListByUser(ctx, userID, string(models.ProgressStatusInProgress), s.cfg.ActiveCoursesMax)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active courses")
	}

	resp := &dto.HomeFeedResponse{
		Recommended:   DedupeOpportunities(recommended),
		ActiveCourses: active,
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, resp, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("home feed cache write failed", zap.String("user_id", userID), zap.Error(err))
		}
	}

	return resp, nil
}

// DedupeOpportunities collapses repeated IDs keeping the last occurrence's
// data in the first occurrence's position.
func DedupeOpportunities(rows []models.OpportunityDetail) []models.OpportunityDetail {
	result := []models.OpportunityDetail{}
	position := map[string]int{}
	for _, row := range rows {
		if idx, seen := position[row.ID]; seen {
			result[idx] = row
			continue
		}
		position[row.ID] = len(result)
		result = append(result, row)
	}
	return result
}
