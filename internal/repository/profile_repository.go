package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/skillbridge-app/skillbridge-api/internal/models"
)

// ProfileRepository manages persistence for profile records.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository constructs a ProfileRepository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, first_name, last_name, bio, skills, avatar_url, role, company_id, resume_url, education, onboarding_completed, created_at, updated_at`

// List returns profiles matching the provided filters.
func (r *ProfileRepository) List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, int, error) {
	base := "FROM profiles"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Role != nil {
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, *filter.Role)
	}
	if filter.CompanyID != "" {
		conditions = append(conditions, fmt.Sprintf("company_id = $%d", len(args)+1))
		args = append(args, filter.CompanyID)
	}
	if filter.Search != "" {
		clause, clauseArgs := profileNameClause(filter.Search)
		clause = renumberPlaceholders(clause, len(args))
		conditions = append(conditions, clause)
		args = append(args, clauseArgs...)
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", profileColumns, base, size, offset)

	var profiles []models.Profile
	if err := r.db.SelectContext(ctx, &profiles, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list profiles: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count profiles: %w", err)
	}
	return profiles, total, nil
}

// FindByID fetches a profile by ID.
func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	query := fmt.Sprintf("SELECT %s FROM profiles WHERE id = $1", profileColumns)
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Create inserts a new profile row. The ID matches the auth identity's ID.
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	const query = `INSERT INTO profiles (id, first_name, last_name, bio, skills, avatar_url, role, company_id, resume_url, education, onboarding_completed, created_at, updated_at)
        VALUES (:id, :first_name, :last_name, :bio, :skills, :avatar_url, :role, :company_id, :resume_url, :education, :onboarding_completed, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

// Update modifies an existing profile.
func (r *ProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	profile.UpdatedAt = time.Now().UTC()
	const query = `UPDATE profiles SET first_name = :first_name, last_name = :last_name, bio = :bio, skills = :skills,
        avatar_url = :avatar_url, company_id = :company_id, resume_url = :resume_url, education = :education,
        onboarding_completed = :onboarding_completed, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// renumberPlaceholders shifts $n placeholders in a clause by the given offset
// so it can be appended after existing arguments.
func renumberPlaceholders(clause string, offset int) string {
	if offset == 0 {
		return clause
	}
	// Placeholders in generated clauses are single digit; rewrite highest first
	// to avoid double substitution.
	for n := 9; n >= 1; n-- {
		clause = strings.ReplaceAll(clause, fmt.Sprintf("$%d", n), fmt.Sprintf("$%d", n+offset))
	}
	return clause
}
