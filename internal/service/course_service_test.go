package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillbridge-app/skillbridge-api/internal/models"
)

type stubCourseRepo struct {
	courses  map[string]*models.Course
	chapters []models.CourseChapter
	quiz     []models.QuizQuestion

	createdChapter  *models.CourseChapter
	createdQuestion *models.QuizQuestion
	deleted         []string
}

func newStubCourseRepo() *stubCourseRepo {
	return &stubCourseRepo{courses: map[string]*models.Course{}}
}

func (s *stubCourseRepo) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	return nil, 0, nil
}

func (s *stubCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := s.courses[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubCourseRepo) Create(ctx context.Context, course *models.Course) error {
	course.ID = "crs-new"
	s.courses[course.ID] = course
	return nil
}

func (s *stubCourseRepo) Update(ctx context.Context, course *models.Course) error {
	s.courses[course.ID] = course
	return nil
}

func (s *stubCourseRepo) Delete(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubCourseRepo) Chapters(ctx context.Context, courseID string) ([]models.CourseChapter, error) {
	return s.chapters, nil
}

func (s *stubCourseRepo) CreateChapter(ctx context.Context, chapter *models.CourseChapter) error {
	s.createdChapter = chapter
	return nil
}

func (s *stubCourseRepo) NextChapterIndex(ctx context.Context, courseID string) (int, error) {
	return len(s.chapters) + 1, nil
}

func (s *stubCourseRepo) Quiz(ctx context.Context, courseID string) ([]models.QuizQuestion, error) {
	return s.quiz, nil
}

func (s *stubCourseRepo) CreateQuizQuestion(ctx context.Context, question *models.QuizQuestion) error {
	s.createdQuestion = question
	return nil
}

func TestAddChapterAssignsNextIndex(t *testing.T) {
	repo := newStubCourseRepo()
	repo.courses["crs-1"] = &models.Course{ID: "crs-1", InstructorID: "emp-1"}
	repo.chapters = []models.CourseChapter{
		{CourseID: "crs-1", OrderIndex: 1},
		{CourseID: "crs-1", OrderIndex: 2},
	}
	svc := NewCourseService(repo, nil, nil, nil)

	chapter, err := svc.AddChapter(context.Background(), "crs-1", ChapterRequest{Title: "Hooks", Content: "useState and friends"})
	require.NoError(t, err)
	assert.Equal(t, 3, chapter.OrderIndex)
	require.NotNil(t, repo.createdChapter)
}

func TestAddChapterUnknownCourse(t *testing.T) {
	svc := NewCourseService(newStubCourseRepo(), nil, nil, nil)

	_, err := svc.AddChapter(context.Background(), "missing", ChapterRequest{Title: "x", Content: "y"})
	require.Error(t, err)
}

func TestAddQuizQuestionOptionRangeChecked(t *testing.T) {
	repo := newStubCourseRepo()
	repo.courses["crs-1"] = &models.Course{ID: "crs-1"}
	svc := NewCourseService(repo, nil, nil, nil)

	_, err := svc.AddQuizQuestion(context.Background(), "crs-1", QuizQuestionRequest{
		Question:      "What is JSX?",
		Options:       []string{"a", "b"},
		CorrectOption: 5,
	})
	require.Error(t, err)
	assert.Nil(t, repo.createdQuestion)
}

func TestAddQuizQuestionAppendsInOrder(t *testing.T) {
	repo := newStubCourseRepo()
	repo.courses["crs-1"] = &models.Course{ID: "crs-1"}
	repo.quiz = []models.QuizQuestion{{OrderIndex: 1}, {OrderIndex: 2}}
	svc := NewCourseService(repo, nil, nil, nil)

	question, err := svc.AddQuizQuestion(context.Background(), "crs-1", QuizQuestionRequest{
		Question:      "What is JSX?",
		Options:       []string{"a syntax extension", "a database"},
		CorrectOption: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, question.OrderIndex)
}

func TestUpdateCourseWrongInstructorForbidden(t *testing.T) {
	repo := newStubCourseRepo()
	repo.courses["crs-1"] = &models.Course{ID: "crs-1", InstructorID: "emp-1"}
	svc := NewCourseService(repo, nil, nil, nil)

	_, err := svc.Update(context.Background(), "crs-1", "emp-2", CourseRequest{Title: "t", Category: "c", SkillLevel: "beginner"})
	require.Error(t, err)
}

func TestGetCourseDetailIncludesChaptersAndQuiz(t *testing.T) {
	repo := newStubCourseRepo()
	repo.courses["crs-1"] = &models.Course{ID: "crs-1", Title: "React Basics"}
	repo.chapters = []models.CourseChapter{{CourseID: "crs-1", Title: "Components", OrderIndex: 1}}
	repo.quiz = []models.QuizQuestion{{CourseID: "crs-1", Question: "What is JSX?", OrderIndex: 1}}
	svc := NewCourseService(repo, nil, nil, nil)

	detail, err := svc.Get(context.Background(), "crs-1")
	require.NoError(t, err)
	assert.Equal(t, "React Basics", detail.Title)
	require.Len(t, detail.Chapters, 1)
	require.Len(t, detail.Quiz, 1)
}
