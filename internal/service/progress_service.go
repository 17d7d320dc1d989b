package service

import (
	"context"
	"database/sql"
	"errors"
	"math"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/skillbridge-app/skillbridge-api/internal/models"
	appErrors "github.com/skillbridge-app/skillbridge-api/pkg/errors"
)

type progressRepository interface {
	Find(ctx context.Context, userID, courseID string) (*models.Progress, error)
	ListByUser(ctx context.Context, userID string, status string, limit int) ([]models.ProgressDetail, error)
	Upsert(ctx context.Context, progress *models.Progress) error
}

type progressCourseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	CountChapters(ctx context.Context, courseID string) (int, error)
	Quiz(ctx context.Context, courseID string) ([]models.QuizQuestion, error)
}

// QuizSubmission carries the selected option index per question, keyed by
// question order.
type QuizSubmission struct {
	Answers []int `json:"answers" validate:"required,min=1"`
}

// ProgressService tracks students' course completion and scores quizzes.
type ProgressService struct {
	repo      progressRepository
	courses   progressCourseRepository
	passScore int
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProgressService constructs the progress service.
func NewProgressService(repo progressRepository, courses progressCourseRepository, passScore int, validate *validator.Validate, logger *zap.Logger) *ProgressService {
	if passScore <= 0 || passScore > 100 {
		passScore = 70
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressService{repo: repo, courses: courses, passScore: passScore, validator: validate, logger: logger}
}

// Get returns the progress record for a user/course pair. A missing row maps
// to a zero-value not_started record rather than an error.
func (s *ProgressService) Get(ctx context.Context, userID, courseID string) (*models.Progress, error) {
	progress, err := s.repo.Find(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.Progress{UserID: userID, CourseID: courseID, Status: models.ProgressStatusNotStarted}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load progress")
	}
	return progress, nil
}

// ListForUser returns a user's progress joined with course display fields.
func (s *ProgressService) ListForUser(ctx context.Context, userID string, status string, limit int) ([]models.ProgressDetail, error) {
	records, err := s.repo.ListByUser(ctx, userID, status, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list progress")
	}
	return records, nil
}

// CompleteModule records completion through the given chapter index and
// recomputes the percentage from the course's chapter count.
func (s *ProgressService) CompleteModule(ctx context.Context, userID, courseID string, moduleIndex int) (*models.Progress, error) {
	if moduleIndex < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "module index must be positive")
	}
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	total, err := s.courses.CountChapters(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count chapters")
	}
	if total == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course has no chapters")
	}
	if moduleIndex > total {
		moduleIndex = total
	}

	progress, err := s.Get(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	// Completion never moves backwards when modules are revisited.
	if moduleIndex < progress.LastModuleCompleted {
		moduleIndex = progress.LastModuleCompleted
	}

	progress.LastModuleCompleted = moduleIndex
	progress.ProgressPercentage = Percentage(moduleIndex, total)
	if progress.ProgressPercentage >= 100 {
		progress.Status = models.ProgressStatusCompleted
	} else {
		progress.Status = models.ProgressStatusInProgress
	}

	if err := s.repo.Upsert(ctx, progress); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save progress")
	}
	return progress, nil
}

// SubmitQuiz scores the submitted answers against the course quiz. Missing
// answers count as wrong; extra answers are ignored.
func (s *ProgressService) SubmitQuiz(ctx context.Context, userID, courseID string, submission QuizSubmission) (*models.QuizAttempt, error) {
	if err := s.validator.Struct(submission); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid quiz submission")
	}

	questions, err := s.courses.Quiz(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load quiz")
	}
	if len(questions) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course has no quiz")
	}

	correct := 0
	for i, question := range questions {
		if i < len(submission.Answers) && submission.Answers[i] == question.CorrectOption {
			correct++
		}
	}

	attempt := &models.QuizAttempt{
		CourseID: courseID,
		Score:    Percentage(correct, len(questions)),
		Correct:  correct,
		Total:    len(questions),
	}
	attempt.Passed = attempt.Score >= s.passScore
	return attempt, nil
}

// Percentage converts k completed out of n into a rounded integer percentage
// clamped to [0, 100].
func Percentage(k, n int) int {
	if n <= 0 {
		return 0
	}
	pct := int(math.Round(100 * float64(k) / float64(n)))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
