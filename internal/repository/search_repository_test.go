package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSearchMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestProfileNameClauseSingleToken(t *testing.T) {
	clause, args := profileNameClause("jane")
	assert.Equal(t, "(first_name ILIKE $1 OR last_name ILIKE $1)", clause)
	assert.Equal(t, []interface{}{"%jane%"}, args)
}

func TestProfileNameClauseTwoTokens(t *testing.T) {
	clause, args := profileNameClause("Jane Doe")
	assert.Equal(t, "(first_name ILIKE $1 OR last_name ILIKE $1 OR first_name ILIKE $2 OR last_name ILIKE $3)", clause)
	assert.Equal(t, []interface{}{"%Jane Doe%", "%Jane%", "%Doe%"}, args)
}

func TestProfileNameClauseThreeTokensFallsBack(t *testing.T) {
	clause, args := profileNameClause("Jane van Doe")
	assert.Equal(t, "(first_name ILIKE $1 OR last_name ILIKE $1)", clause)
	assert.Len(t, args, 1)
}

func TestSearchRepositoryProfilesTokenSplit(t *testing.T) {
	db, mock, cleanup := newSearchMock(t)
	defer cleanup()
	repo := NewSearchRepository(db)

	rows := sqlmock.NewRows([]string{"id", "first_name", "last_name", "bio", "skills", "avatar_url", "role", "company_id", "resume_url", "education", "onboarding_completed", "created_at", "updated_at"}).
		AddRow("p-1", "Jane", "Doe", "", "{}", "", "STUDENT", nil, "", nil, true, time.Now(), time.Now())
	mock.ExpectQuery(`first_name ILIKE \$1 OR last_name ILIKE \$1 OR first_name ILIKE \$2 OR last_name ILIKE \$3`).
		WithArgs("%Jane Doe%", "%Jane%", "%Doe%", 10).
		WillReturnRows(rows)

	profiles, err := repo.Profiles(context.Background(), "Jane Doe", 10)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Jane", profiles[0].FirstName)
	assert.Equal(t, "Doe", profiles[0].LastName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchRepositoryOpportunitiesJoinsCompany(t *testing.T) {
	db, mock, cleanup := newSearchMock(t)
	defer cleanup()
	repo := NewSearchRepository(db)

	rows := sqlmock.NewRows([]string{"id", "company_id", "title", "description", "location", "type", "skills_required", "application_deadline", "status", "remote", "created_at", "updated_at", "company_name", "company_logo"}).
		AddRow("o-1", "c-1", "React Developer", "", "Remote", "job", "{react}", nil, "open", true, time.Now(), time.Now(), "Acme", "logo.png")
	mock.ExpectQuery(`JOIN companies c ON c.id = o.company_id`).
		WithArgs("%react%", 5).
		WillReturnRows(rows)

	opportunities, err := repo.Opportunities(context.Background(), "react", 5)
	require.NoError(t, err)
	require.Len(t, opportunities, 1)
	assert.Equal(t, "Acme", opportunities[0].CompanyName)
	assert.Equal(t, "logo.png", opportunities[0].CompanyLogo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchRepositorySuggestionStringsPerTableLimit(t *testing.T) {
	db, mock, cleanup := newSearchMock(t)
	defer cleanup()
	repo := NewSearchRepository(db)

	mock.MatchExpectationsInOrder(false)
	mock.ExpectQuery(`SELECT title FROM courses`).
		WithArgs("%go%", 2).
		WillReturnRows(sqlmock.NewRows([]string{"title"}).AddRow("Go Basics").AddRow("Go Advanced"))
	mock.ExpectQuery(`SELECT title FROM opportunities`).
		WithArgs("%go%", 2).
		WillReturnRows(sqlmock.NewRows([]string{"title"}).AddRow("Go Backend Engineer"))
	mock.ExpectQuery(`FROM profiles`).
		WithArgs("%go%", 2).
		WillReturnRows(sqlmock.NewRows([]string{"trim"}))
	mock.ExpectQuery(`SELECT name FROM companies`).
		WithArgs("%go%", 2).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("GoWorks"))

	groups, err := repo.SuggestionStrings(context.Background(), "go", 2)
	require.NoError(t, err)
	require.Len(t, groups, 4)
	assert.Equal(t, []string{"Go Basics", "Go Advanced"}, groups[0])
	assert.Equal(t, []string{"Go Backend Engineer"}, groups[1])
	assert.Empty(t, groups[2])
	assert.Equal(t, []string{"GoWorks"}, groups[3])
	assert.NoError(t, mock.ExpectationsWereMet())
}
