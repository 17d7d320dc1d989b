package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillbridge-app/skillbridge-api/internal/models"
)

func newProgressMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestProgressRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newProgressMock(t)
	defer cleanup()
	repo := NewProgressRepository(db)

	mock.ExpectExec("INSERT INTO progress").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	progress := &models.Progress{UserID: "stu-1", CourseID: "crs-1", ProgressPercentage: 60, LastModuleCompleted: 3, Status: models.ProgressStatusInProgress}
	err := repo.Upsert(context.Background(), progress)
	require.NoError(t, err)
	assert.NotEmpty(t, progress.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressRepositoryListByUser(t *testing.T) {
	db, mock, cleanup := newProgressMock(t)
	defer cleanup()
	repo := NewProgressRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "course_id", "progress_percentage", "last_module_completed", "status", "updated_at", "course_title", "course_thumbnail"}).
		AddRow("pr-1", "stu-1", "crs-1", 60, 3, "in_progress", time.Now(), "Go Basics", "thumb.png")
	mock.ExpectQuery(`FROM progress pr JOIN courses co`).
		WithArgs("stu-1", "in_progress").
		WillReturnRows(rows)

	records, err := repo.ListByUser(context.Background(), "stu-1", "in_progress", 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Go Basics", records[0].CourseTitle)
	assert.NoError(t, mock.ExpectationsWereMet())
}
