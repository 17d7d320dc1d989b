package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillbridge-app/skillbridge-api/internal/models"
)

type stubProgressRepo struct {
	records map[string]*models.Progress
	saved   *models.Progress
}

func progressKey(userID, courseID string) string { return userID + "/" + courseID }

func (s *stubProgressRepo) Find(ctx context.Context, userID, courseID string) (*models.Progress, error) {
	if p, ok := s.records[progressKey(userID, courseID)]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubProgressRepo) ListByUser(ctx context.Context, userID string, status string, limit int) ([]models.ProgressDetail, error) {
	return nil, nil
}

func (s *stubProgressRepo) Upsert(ctx context.Context, progress *models.Progress) error {
	s.saved = progress
	return nil
}

type stubCourseLookup struct {
	chapterCount int
	quiz         []models.QuizQuestion
}

func (s *stubCourseLookup) FindByID(ctx context.Context, id string) (*models.Course, error) {
	return &models.Course{ID: id, Title: "Go Basics"}, nil
}

func (s *stubCourseLookup) CountChapters(ctx context.Context, courseID string) (int, error) {
	return s.chapterCount, nil
}

func (s *stubCourseLookup) Quiz(ctx context.Context, courseID string) ([]models.QuizQuestion, error) {
	return s.quiz, nil
}

func TestCompleteModulePartial(t *testing.T) {
	repo := &stubProgressRepo{records: map[string]*models.Progress{}}
	svc := NewProgressService(repo, &stubCourseLookup{chapterCount: 5}, 70, nil, nil)

	progress, err := svc.CompleteModule(context.Background(), "stu-1", "crs-1", 3)
	require.NoError(t, err)
	assert.Equal(t, 60, progress.ProgressPercentage)
	assert.Equal(t, models.ProgressStatusInProgress, progress.Status)
	assert.Equal(t, 3, progress.LastModuleCompleted)
	require.NotNil(t, repo.saved)
}

func TestCompleteModuleFinishesCourse(t *testing.T) {
	repo := &stubProgressRepo{records: map[string]*models.Progress{}}
	svc := NewProgressService(repo, &stubCourseLookup{chapterCount: 5}, 70, nil, nil)

	progress, err := svc.CompleteModule(context.Background(), "stu-1", "crs-1", 5)
	require.NoError(t, err)
	assert.Equal(t, 100, progress.ProgressPercentage)
	assert.Equal(t, models.ProgressStatusCompleted, progress.Status)
}

func TestCompleteModuleNeverRegresses(t *testing.T) {
	repo := &stubProgressRepo{records: map[string]*models.Progress{
		progressKey("stu-1", "crs-1"): {UserID: "stu-1", CourseID: "crs-1", LastModuleCompleted: 4, ProgressPercentage: 80, Status: models.ProgressStatusInProgress},
	}}
	svc := NewProgressService(repo, &stubCourseLookup{chapterCount: 5}, 70, nil, nil)

	progress, err := svc.CompleteModule(context.Background(), "stu-1", "crs-1", 2)
	require.NoError(t, err)
	assert.Equal(t, 4, progress.LastModuleCompleted)
	assert.Equal(t, 80, progress.ProgressPercentage)
}

func TestCompleteModuleIndexClampedToChapterCount(t *testing.T) {
	repo := &stubProgressRepo{records: map[string]*models.Progress{}}
	svc := NewProgressService(repo, &stubCourseLookup{chapterCount: 3}, 70, nil, nil)

	progress, err := svc.CompleteModule(context.Background(), "stu-1", "crs-1", 9)
	require.NoError(t, err)
	assert.Equal(t, 3, progress.LastModuleCompleted)
	assert.Equal(t, 100, progress.ProgressPercentage)
}

func TestGetMissingProgressDefaultsToNotStarted(t *testing.T) {
	repo := &stubProgressRepo{records: map[string]*models.Progress{}}
	svc := NewProgressService(repo, &stubCourseLookup{}, 70, nil, nil)

	progress, err := svc.Get(context.Background(), "stu-1", "crs-1")
	require.NoError(t, err)
	assert.Equal(t, models.ProgressStatusNotStarted, progress.Status)
	assert.Zero(t, progress.ProgressPercentage)
}

func quizFixture() []models.QuizQuestion {
	return []models.QuizQuestion{
		{Question: "q1", Options: []string{"a", "b"}, CorrectOption: 0, OrderIndex: 1},
		{Question: "q2", Options: []string{"a", "b"}, CorrectOption: 1, OrderIndex: 2},
		{Question: "q3", Options: []string{"a", "b"}, CorrectOption: 1, OrderIndex: 3},
		{Question: "q4", Options: []string{"a", "b"}, CorrectOption: 0, OrderIndex: 4},
	}
}

func TestSubmitQuizPass(t *testing.T) {
	svc := NewProgressService(&stubProgressRepo{records: map[string]*models.Progress{}}, &stubCourseLookup{quiz: quizFixture()}, 70, nil, nil)

	attempt, err := svc.SubmitQuiz(context.Background(), "stu-1", "crs-1", QuizSubmission{Answers: []int{0, 1, 1, 0}})
	require.NoError(t, err)
	assert.Equal(t, 100, attempt.Score)
	assert.True(t, attempt.Passed)
}

func TestSubmitQuizFailBelowThreshold(t *testing.T) {
	svc := NewProgressService(&stubProgressRepo{records: map[string]*models.Progress{}}, &stubCourseLookup{quiz: quizFixture()}, 70, nil, nil)

	attempt, err := svc.SubmitQuiz(context.Background(), "stu-1", "crs-1", QuizSubmission{Answers: []int{0, 0, 0, 1}})
	require.NoError(t, err)
	assert.Equal(t, 25, attempt.Score)
	assert.Equal(t, 1, attempt.Correct)
	assert.False(t, attempt.Passed)
}

func TestSubmitQuizMissingAnswersCountWrong(t *testing.T) {
	svc := NewProgressService(&stubProgressRepo{records: map[string]*models.Progress{}}, &stubCourseLookup{quiz: quizFixture()}, 70, nil, nil)

	attempt, err := svc.SubmitQuiz(context.Background(), "stu-1", "crs-1", QuizSubmission{Answers: []int{0, 1}})
	require.NoError(t, err)
	assert.Equal(t, 2, attempt.Correct)
	assert.Equal(t, 50, attempt.Score)
}

func TestPercentageRoundingAndClamp(t *testing.T) {
	assert.Equal(t, 0, Percentage(0, 5))
	assert.Equal(t, 33, Percentage(1, 3))
	assert.Equal(t, 67, Percentage(2, 3))
	assert.Equal(t, 100, Percentage(7, 5))
	assert.Equal(t, 0, Percentage(3, 0))
	assert.Equal(t, 0, Percentage(-1, 5))
}
