package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/skillbridge-app/skillbridge-api/internal/models"
)

// CourseRepository manages persistence for courses, chapters and quizzes.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = `id, title, description, category, skill_level, duration_minutes, thumbnail_url, instructor_id, created_at, updated_at`

// List returns courses matching the provided filters.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	base := "FROM courses"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, filter.Category)
	}
	if filter.SkillLevel != "" {
		conditions = append(conditions, fmt.Sprintf("skill_level = $%d", len(args)+1))
		args = append(args, filter.SkillLevel)
	}
	if filter.InstructorID != "" {
		conditions = append(conditions, fmt.Sprintf("instructor_id = $%d", len(args)+1))
		args = append(args, filter.InstructorID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.TrimSpace(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", courseColumns, base, size, offset)

	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}
	return courses, total, nil
}

// FindByID fetches a course by ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE id = $1", courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// Create inserts a new course row.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now
	const query = `INSERT INTO courses (id, title, description, category, skill_level, duration_minutes, thumbnail_url, instructor_id, created_at, updated_at)
        VALUES (:id, :title, :description, :category, :skill_level, :duration_minutes, :thumbnail_url, :instructor_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update modifies an existing course.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET title = :title, description = :description, category = :category, skill_level = :skill_level,
        duration_minutes = :duration_minutes, thumbnail_url = :thumbnail_url, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// Delete removes a course and its dependent rows.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete course: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, query := range []string{
		`DELETE FROM quiz_questions WHERE course_id = $1`,
		`DELETE FROM course_chapters WHERE course_id = $1`,
		`DELETE FROM progress WHERE course_id = $1`,
		`DELETE FROM courses WHERE id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, query, id); err != nil {
			return fmt.Errorf("delete course: %w", err)
		}
	}
	return tx.Commit()
}

// Chapters returns the ordered chapters of a course.
func (r *CourseRepository) Chapters(ctx context.Context, courseID string) ([]models.CourseChapter, error) {
	const query = `SELECT id, course_id, title, content, order_index, created_at FROM course_chapters WHERE course_id = $1 ORDER BY order_index ASC`
	var chapters []models.CourseChapter
	if err := r.db.SelectContext(ctx, &chapters, query, courseID); err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	return chapters, nil
}

// CreateChapter appends a chapter. OrderIndex must already be assigned.
func (r *CourseRepository) CreateChapter(ctx context.Context, chapter *models.CourseChapter) error {
	if chapter.ID == "" {
		chapter.ID = uuid.NewString()
	}
	if chapter.CreatedAt.IsZero() {
		chapter.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO course_chapters (id, course_id, title, content, order_index, created_at)
        VALUES (:id, :course_id, :title, :content, :order_index, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, chapter); err != nil {
		return fmt.Errorf("create chapter: %w", err)
	}
	return nil
}

// NextChapterIndex returns the next order index for a course's chapters.
func (r *CourseRepository) NextChapterIndex(ctx context.Context, courseID string) (int, error) {
	const query = `SELECT COALESCE(MAX(order_index), 0) + 1 FROM course_chapters WHERE course_id = $1`
	var next int
	if err := r.db.GetContext(ctx, &next, query, courseID); err != nil {
		return 0, fmt.Errorf("next chapter index: %w", err)
	}
	return next, nil
}

// CountChapters returns the number of chapters of a course.
func (r *CourseRepository) CountChapters(ctx context.Context, courseID string) (int, error) {
	const query = `SELECT COUNT(*) FROM course_chapters WHERE course_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, courseID); err != nil {
		return 0, fmt.Errorf("count chapters: %w", err)
	}
	return count, nil
}

// Quiz returns the ordered quiz questions of a course.
func (r *CourseRepository) Quiz(ctx context.Context, courseID string) ([]models.QuizQuestion, error) {
	const query = `SELECT id, course_id, question, options, correct_option, order_index FROM quiz_questions WHERE course_id = $1 ORDER BY order_index ASC`
	var questions []models.QuizQuestion
	if err := r.db.SelectContext(ctx, &questions, query, courseID); err != nil {
		return nil, fmt.Errorf("list quiz questions: %w", err)
	}
	return questions, nil
}

// CreateQuizQuestion appends a quiz question.
func (r *CourseRepository) CreateQuizQuestion(ctx context.Context, question *models.QuizQuestion) error {
	if question.ID == "" {
		question.ID = uuid.NewString()
	}
	const query = `INSERT INTO quiz_questions (id, course_id, question, options, correct_option, order_index)
        VALUES (:id, :course_id, :question, :options, :correct_option, :order_index)`
	if _, err := r.db.NamedExecContext(ctx, query, question); err != nil {
		return fmt.Errorf("create quiz question: %w", err)
	}
	return nil
}
