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

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
	Chapters(ctx context.Context, courseID string) ([]models.CourseChapter, error)
	CreateChapter(ctx context.Context, chapter *models.CourseChapter) error
	NextChapterIndex(ctx context.Context, courseID string) (int, error)
	Quiz(ctx context.Context, courseID string) ([]models.QuizQuestion, error)
	CreateQuizQuestion(ctx context.Context, question *models.QuizQuestion) error
}

// CourseRequest holds payload for creating or updating a course.
type CourseRequest struct {
	Title           string `json:"title" validate:"required"`
	Description     string `json:"description"`
	Category        string `json:"category" validate:"required"`
	SkillLevel      string `json:"skill_level" validate:"required,oneof=beginner intermediate advanced"`
	DurationMinutes int    `json:"duration_minutes" validate:"gte=0"`
}

// ChapterRequest holds payload for appending a chapter.
type ChapterRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// QuizQuestionRequest holds payload for appending a quiz question.
type QuizQuestionRequest struct {
	Question      string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"required,min=2"`
	CorrectOption int      `json:"correct_option" validate:"gte=0"`
}

// CourseService handles course, chapter and quiz use-cases.
type CourseService struct {
	repo      courseRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(repo courseRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns courses and pagination metadata.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
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
	return courses, pagination, nil
}

// Get returns the course with its ordered chapters and quiz. Correct answers
// are never serialised to clients.
func (s *CourseService) Get(ctx context.Context, id string) (*models.CourseDetail, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	chapters, err := s.repo.Chapters(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load chapters")
	}
	quiz, err := s.repo.Quiz(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load quiz")
	}

	return &models.CourseDetail{Course: *course, Chapters: chapters, Quiz: quiz}, nil
}

// Create publishes a new course for the given instructor.
func (s *CourseService) Create(ctx context.Context, instructorID string, req CourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	course := &models.Course{
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		SkillLevel:      models.SkillLevel(req.SkillLevel),
		DurationMinutes: req.DurationMinutes,
		InstructorID:    instructorID,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	s.invalidateFeeds(ctx)
	return course, nil
}

// Update modifies an existing course. Only the owning instructor may update it.
func (s *CourseService) Update(ctx context.Context, id, instructorID string, req CourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if instructorID != "" && course.InstructorID != instructorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "course belongs to another instructor")
	}

	course.Title = req.Title
	course.Description = req.Description
	course.Category = req.Category
	course.SkillLevel = models.SkillLevel(req.SkillLevel)
	course.DurationMinutes = req.DurationMinutes

	if err := s.repo.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	s.invalidateFeeds(ctx)
	return course, nil
}

// Delete removes a course along with its chapters, quiz and progress rows.
func (s *CourseService) Delete(ctx context.Context, id, instructorID string) error {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if instructorID != "" && course.InstructorID != instructorID {
		return appErrors.Clone(appErrors.ErrForbidden, "course belongs to another instructor")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	s.invalidateFeeds(ctx)
	return nil
}

// AddChapter appends a chapter at the next order index.
func (s *CourseService) AddChapter(ctx context.Context, courseID string, req ChapterRequest) (*models.CourseChapter, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid chapter payload")
	}
	if _, err := s.repo.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	next, err := s.repo.NextChapterIndex(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to determine chapter order")
	}

	chapter := &models.CourseChapter{
		CourseID:   courseID,
		Title:      req.Title,
		Content:    req.Content,
		OrderIndex: next,
	}
	if err := s.repo.CreateChapter(ctx, chapter); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create chapter")
	}
	return chapter, nil
}

// AddQuizQuestion appends a multiple-choice question to the course quiz.
func (s *CourseService) AddQuizQuestion(ctx context.Context, courseID string, req QuizQuestionRequest) (*models.QuizQuestion, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid quiz payload")
	}
	if req.CorrectOption >= len(req.Options) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "correct option out of range")
	}

	existing, err := s.repo.Quiz(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load quiz")
	}

	question := &models.QuizQuestion{
		CourseID:      courseID,
		Question:      req.Question,
		Options:       req.Options,
		CorrectOption: req.CorrectOption,
		OrderIndex:    len(existing) + 1,
	}
	if err := s.repo.CreateQuizQuestion(ctx, question); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create quiz question")
	}
	return question, nil
}

func (s *CourseService) invalidateFeeds(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "home:*"); err != nil {
		s.logger.Warn("home feed cache invalidation failed", zap.Error(err))
	}
	if err := s.cache.Invalidate(ctx, "search:suggest:*"); err != nil {
		s.logger.Warn("suggestion cache invalidation failed", zap.Error(err))
	}
}
