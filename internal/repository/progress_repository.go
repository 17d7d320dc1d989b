package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/skillbridge-app/skillbridge-api/internal/models"
)

// ProgressRepository manages persistence for course progress records.
type ProgressRepository struct {
	db *sqlx.DB
}

// NewProgressRepository constructs a ProgressRepository.
func NewProgressRepository(db *sqlx.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Find fetches the progress record for a user/course pair.
func (r *ProgressRepository) Find(ctx context.Context, userID, courseID string) (*models.Progress, error) {
	const query = `SELECT id, user_id, course_id, progress_percentage, last_module_completed, status, updated_at
        FROM progress WHERE user_id = $1 AND course_id = $2`
	var progress models.Progress
	if err := r.db.GetContext(ctx, &progress, query, userID, courseID); err != nil {
		return nil, err
	}
	return &progress, nil
}

// ListByUser returns a user's progress records joined with course display fields.
func (r *ProgressRepository) ListByUser(ctx context.Context, userID string, status string, limit int) ([]models.ProgressDetail, error) {
	query := `SELECT pr.id, pr.user_id, pr.course_id, pr.progress_percentage, pr.last_module_completed, pr.status, pr.updated_at,
        co.title AS course_title, co.thumbnail_url AS course_thumbnail
        FROM progress pr JOIN courses co ON co.id = pr.course_id
        WHERE pr.user_id = $1`
	args := []interface{}{userID}
	if status != "" {
		query += fmt.Sprintf(" AND pr.status = $%d", len(args)+1)
		args = append(args, status)
	}
	query += " ORDER BY pr.updated_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	var records []models.ProgressDetail
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	return records, nil
}

// Upsert inserts or updates the progress record for a user/course pair.
func (r *ProgressRepository) Upsert(ctx context.Context, progress *models.Progress) error {
	if progress.ID == "" {
		progress.ID = uuid.NewString()
	}
	progress.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO progress (id, user_id, course_id, progress_percentage, last_module_completed, status, updated_at)
        VALUES (:id, :user_id, :course_id, :progress_percentage, :last_module_completed, :status, :updated_at)
        ON CONFLICT (user_id, course_id) DO UPDATE SET
        progress_percentage = EXCLUDED.progress_percentage,
        last_module_completed = EXCLUDED.last_module_completed,
        status = EXCLUDED.status,
        updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, progress); err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}
