package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/skillbridge-app/skillbridge-api/internal/models"
)

// OpportunityRepository manages persistence for opportunity postings.
type OpportunityRepository struct {
	db *sqlx.DB
}

// NewOpportunityRepository constructs an OpportunityRepository.
func NewOpportunityRepository(db *sqlx.DB) *OpportunityRepository {
	return &OpportunityRepository{db: db}
}

// List returns opportunities with company display fields, matching the filters.
func (r *OpportunityRepository) List(ctx context.Context, filter models.OpportunityFilter) ([]models.OpportunityDetail, int, error) {
	base := "FROM opportunities o JOIN companies c ON c.id = o.company_id"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.CompanyID != "" {
		conditions = append(conditions, fmt.Sprintf("o.company_id = $%d", len(args)+1))
		args = append(args, filter.CompanyID)
	}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("o.type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Remote != nil {
		conditions = append(conditions, fmt.Sprintf("o.remote = $%d", len(args)+1))
		args = append(args, *filter.Remote)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(o.title ILIKE $%d OR o.description ILIKE $%d)", len(args)+1, len(args)+1))
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

	query := fmt.Sprintf(`SELECT o.id, o.company_id, o.title, o.description, o.location, o.type, o.skills_required,
        o.application_deadline, o.status, o.remote, o.created_at, o.updated_at,
        c.name AS company_name, c.logo_url AS company_logo
        %s ORDER BY o.created_at DESC LIMIT %d OFFSET %d`, base, size, offset)

	var opportunities []models.OpportunityDetail
	if err := r.db.SelectContext(ctx, &opportunities, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list opportunities: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count opportunities: %w", err)
	}
	return opportunities, total, nil
}

// FindByID fetches an opportunity with company display fields.
func (r *OpportunityRepository) FindByID(ctx context.Context, id string) (*models.OpportunityDetail, error) {
	const query = `SELECT o.id, o.company_id, o.title, o.description, o.location, o.type, o.skills_required,
        o.application_deadline, o.status, o.remote, o.created_at, o.updated_at,
        c.name AS company_name, c.logo_url AS company_logo
        FROM opportunities o JOIN companies c ON c.id = o.company_id
        WHERE o.id = $1`
	var detail models.OpportunityDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Recommended returns open postings matching any of the given skills, newest
// first. Rows may repeat across skill matches; callers deduplicate.
func (r *OpportunityRepository) Recommended(ctx context.Context, skills []string, limit int) ([]models.OpportunityDetail, error) {
	query := `SELECT o.id, o.company_id, o.title, o.description, o.location, o.type, o.skills_required,
        o.application_deadline, o.status, o.remote, o.created_at, o.updated_at,
        c.name AS company_name, c.logo_url AS company_logo
        FROM opportunities o JOIN companies c ON c.id = o.company_id
        WHERE o.status = $1`
	args := []interface{}{models.OpportunityStatusOpen}
	if len(skills) > 0 {
		query += fmt.Sprintf(" AND o.skills_required && $%d", len(args)+1)
		args = append(args, pq.StringArray(skills))
	}
	query += fmt.Sprintf(" ORDER BY o.created_at DESC LIMIT %d", limit)

	var opportunities []models.OpportunityDetail
	if err := r.db.SelectContext(ctx, &opportunities, query, args...); err != nil {
		return nil, fmt.Errorf("recommended opportunities: %w", err)
	}
	return opportunities, nil
}

// Create inserts a new opportunity row.
func (r *OpportunityRepository) Create(ctx context.Context, opportunity *models.Opportunity) error {
	if opportunity.ID == "" {
		opportunity.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if opportunity.CreatedAt.IsZero() {
		opportunity.CreatedAt = now
	}
	opportunity.UpdatedAt = now
	if opportunity.Status == "" {
		opportunity.Status = models.OpportunityStatusOpen
	}
	const query = `INSERT INTO opportunities (id, company_id, title, description, location, type, skills_required, application_deadline, status, remote, created_at, updated_at)
        VALUES (:id, :company_id, :title, :description, :location, :type, :skills_required, :application_deadline, :status, :remote, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, opportunity); err != nil {
		return fmt.Errorf("create opportunity: %w", err)
	}
	return nil
}

// Update modifies an existing opportunity.
func (r *OpportunityRepository) Update(ctx context.Context, opportunity *models.Opportunity) error {
	opportunity.UpdatedAt = time.Now().UTC()
	const query = `UPDATE opportunities SET title = :title, description = :description, location = :location, type = :type,
        skills_required = :skills_required, application_deadline = :application_deadline, status = :status, remote = :remote,
        updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, opportunity); err != nil {
		return fmt.Errorf("update opportunity: %w", err)
	}
	return nil
}

// Delete removes an opportunity and its applications.
func (r *OpportunityRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete opportunity: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, query := range []string{
		`DELETE FROM applications WHERE opportunity_id = $1`,
		`DELETE FROM opportunities WHERE id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, query, id); err != nil {
			return fmt.Errorf("delete opportunity: %w", err)
		}
	}
	return tx.Commit()
}
