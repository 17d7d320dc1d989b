package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/skillbridge-app/skillbridge-api/internal/models"
)

// SearchRepository dispatches case-insensitive substring queries across the
// four searchable entity tables.
type SearchRepository struct {
	db *sqlx.DB
}

// NewSearchRepository constructs a SearchRepository.
func NewSearchRepository(db *sqlx.DB) *SearchRepository {
	return &SearchRepository{db: db}
}

const opportunitySelect = `SELECT o.id, o.company_id, o.title, o.description, o.location, o.type, o.skills_required,
        o.application_deadline, o.status, o.remote, o.created_at, o.updated_at,
        c.name AS company_name, c.logo_url AS company_logo
        FROM opportunities o
        JOIN companies c ON c.id = o.company_id`

// SearchAll runs the four entity queries in a parallel join. A failure of any
// sub-query fails the whole batch.
func (r *SearchRepository) SearchAll(ctx context.Context, query string, limit int) (*models.SearchResultSet, error) {
	result := &models.SearchResultSet{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := r.Courses(gctx, query, limit)
		if err != nil {
			return err
		}
		result.Courses = rows
		return nil
	})
	g.Go(func() error {
		rows, err := r.Opportunities(gctx, query, limit)
		if err != nil {
			return err
		}
		result.Opportunities = rows
		return nil
	})
	g.Go(func() error {
		rows, err := r.Profiles(gctx, query, limit)
		if err != nil {
			return err
		}
		result.Profiles = rows
		return nil
	})
	g.Go(func() error {
		rows, err := r.Companies(gctx, query, limit)
		if err != nil {
			return err
		}
		result.Companies = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("search all: %w", err)
	}
	return result, nil
}

// Courses matches course titles and descriptions.
func (r *SearchRepository) Courses(ctx context.Context, query string, limit int) ([]models.Course, error) {
	const q = `SELECT id, title, description, category, skill_level, duration_minutes, thumbnail_url, instructor_id, created_at, updated_at
        FROM courses
        WHERE title ILIKE $1 OR description ILIKE $1
        ORDER BY created_at DESC LIMIT $2`
	var rows []models.Course
	if err := r.db.SelectContext(ctx, &rows, q, pattern(query), limit); err != nil {
		return nil, fmt.Errorf("search courses: %w", err)
	}
	return rows, nil
}

// Opportunities matches posting titles and descriptions, joining the owning
// company's name and logo.
func (r *SearchRepository) Opportunities(ctx context.Context, query string, limit int) ([]models.OpportunityDetail, error) {
	q := opportunitySelect + `
        WHERE o.title ILIKE $1 OR o.description ILIKE $1
        ORDER BY o.created_at DESC LIMIT $2`
	var rows []models.OpportunityDetail
	if err := r.db.SelectContext(ctx, &rows, q, pattern(query), limit); err != nil {
		return nil, fmt.Errorf("search opportunities: %w", err)
	}
	return rows, nil
}

// Profiles matches names using the whole query and, when it splits into two
// tokens, each token against first and last name.
func (r *SearchRepository) Profiles(ctx context.Context, query string, limit int) ([]models.Profile, error) {
	clause, args := profileNameClause(query)
	args = append(args, limit)
	q := fmt.Sprintf(`SELECT id, first_name, last_name, bio, skills, avatar_url, role, company_id, resume_url, education, onboarding_completed, created_at, updated_at
        FROM profiles
        WHERE %s
        ORDER BY created_at DESC LIMIT $%d`, clause, len(args))
	var rows []models.Profile
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}
	return rows, nil
}

// Companies matches company names and industries.
func (r *SearchRepository) Companies(ctx context.Context, query string, limit int) ([]models.Company, error) {
	const q = `SELECT id, name, description, logo_url, website, industry, size, location, verified, created_at, updated_at
        FROM companies
        WHERE name ILIKE $1 OR industry ILIKE $1
        ORDER BY created_at DESC LIMIT $2`
	var rows []models.Company
	if err := r.db.SelectContext(ctx, &rows, q, pattern(query), limit); err != nil {
		return nil, fmt.Errorf("search companies: %w", err)
	}
	return rows, nil
}

// SuggestionStrings runs the four lightweight autocomplete queries in a
// parallel join and returns the raw display strings in fixed table order:
// course titles, opportunity titles, profile names, company names.
func (r *SearchRepository) SuggestionStrings(ctx context.Context, query string, perTable int) ([][]string, error) {
	queries := []string{
		`SELECT title FROM courses WHERE title ILIKE $1 ORDER BY created_at DESC LIMIT $2`,
		`SELECT title FROM opportunities WHERE title ILIKE $1 ORDER BY created_at DESC LIMIT $2`,
		`SELECT TRIM(first_name || ' ' || last_name) FROM profiles WHERE first_name ILIKE $1 OR last_name ILIKE $1 ORDER BY created_at DESC LIMIT $2`,
		`SELECT name FROM companies WHERE name ILIKE $1 ORDER BY created_at DESC LIMIT $2`,
	}

	results := make([][]string, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			var values []string
			if err := r.db.SelectContext(gctx, &values, q, pattern(query), perTable); err != nil {
				return fmt.Errorf("suggestion query %d: %w", i, err)
			}
			results[i] = values
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// profileNameClause builds the OR clause matching the whole query and the
// first/last tokens of a two-word query against both name columns.
func profileNameClause(query string) (string, []interface{}) {
	args := []interface{}{pattern(query)}
	conditions := []string{"first_name ILIKE $1", "last_name ILIKE $1"}

	tokens := strings.Fields(query)
	if len(tokens) == 2 {
		args = append(args, pattern(tokens[0]))
		conditions = append(conditions, fmt.Sprintf("first_name ILIKE $%d", len(args)))
		args = append(args, pattern(tokens[1]))
		conditions = append(conditions, fmt.Sprintf("last_name ILIKE $%d", len(args)))
	}

	return "(" + strings.Join(conditions, " OR ") + ")", args
}

func pattern(query string) string {
	return "%" + strings.TrimSpace(query) + "%"
}
