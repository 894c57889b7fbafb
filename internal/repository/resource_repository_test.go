package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitconnect/vault-api/internal/models"
)

var resourceCols = []string{"id", "file_name", "file_url", "file_path", "branch", "semester", "stream", "cycle", "category", "subject",
	"uploader_alias", "status", "upvotes", "mime_type", "size_bytes", "created_at"}

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestResourceRepositoryCreateAssignsIdentity(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewResourceRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO resources")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	res := &models.Resource{FileName: "unit1.pdf", Branch: "civil-engineering", Status: models.ResourceStatusPending, CreatedAt: time.Unix(0, 0)}
	require.NoError(t, repo.Create(context.Background(), res))
	assert.NotEmpty(t, res.ID)
	assert.WithinDuration(t, time.Now(), res.CreatedAt, time.Minute)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepositoryListBuildsFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewResourceRepository(db)
	sem := 4
	rows := sqlmock.NewRows(resourceCols).
		AddRow("r1", "unit1.pdf", "https://x/object/public/resources/a", "a", "mechanical-engineering", 4, nil, nil, "class-notes", "Thermo",
			"Anonymous", "approved", 3, "application/pdf", 100, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM resources WHERE status = $1 AND branch = $2 AND semester = $3 AND category = $4 ORDER BY created_at DESC LIMIT 200")).
		WithArgs(models.ResourceStatusApproved, "mechanical-engineering", 4, "class-notes").
		WillReturnRows(rows)

	items, err := repo.List(context.Background(), models.ResourceFilter{
		Status:   models.ResourceStatusApproved,
		Branch:   "mechanical-engineering",
		Semester: &sem,
		Category: "class-notes",
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Semester)
	assert.Equal(t, 4, *items[0].Semester)
	assert.Nil(t, items[0].Stream)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepositoryListFirstYear(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewResourceRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE status = $1 AND branch = $2 AND stream = $3 AND cycle = $4 ORDER BY")).
		WithArgs(models.ResourceStatusApproved, "first-year", "cse", "p-cycle").
		WillReturnRows(sqlmock.NewRows(resourceCols))

	items, err := repo.List(context.Background(), models.ResourceFilter{
		Status: models.ResourceStatusApproved,
		Branch: "first-year",
		Stream: "cse",
		Cycle:  "p-cycle",
	})
	require.NoError(t, err)
	assert.Empty(t, items)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepositoryApproveAndDeleteMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewResourceRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE resources SET status = 'approved' WHERE id = $1")).
		WithArgs("6f1c2a9e-3b7d-4c51-9a0e-2d8f4b6c1e01").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM resources WHERE id = $1")).
		WithArgs("0b5e8d3a-91c4-4f2e-8d67-5a1f9c3e7b22").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Approve(context.Background(), "6f1c2a9e-3b7d-4c51-9a0e-2d8f4b6c1e01"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "0b5e8d3a-91c4-4f2e-8d67-5a1f9c3e7b22"), sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepositoryIncrementUpvotes(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewResourceRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE resources SET upvotes = upvotes + $2 WHERE id = $1 RETURNING upvotes")).
		WithArgs("6f1c2a9e-3b7d-4c51-9a0e-2d8f4b6c1e01", -2).
		WillReturnRows(sqlmock.NewRows([]string{"upvotes"}).AddRow(5))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE resources SET upvotes")).
		WithArgs("0b5e8d3a-91c4-4f2e-8d67-5a1f9c3e7b22", 1).
		WillReturnError(sql.ErrNoRows)

	value, err := repo.IncrementUpvotes(context.Background(), "6f1c2a9e-3b7d-4c51-9a0e-2d8f4b6c1e01", -2)
	require.NoError(t, err)
	assert.Equal(t, 5, value)

	_, err = repo.IncrementUpvotes(context.Background(), "0b5e8d3a-91c4-4f2e-8d67-5a1f9c3e7b22", 1)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepositoryMalformedIDIsMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewResourceRepository(db)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "abc")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.ErrorIs(t, repo.Approve(ctx, "abc"), sql.ErrNoRows)
	assert.ErrorIs(t, repo.Delete(ctx, "../etc"), sql.ErrNoRows)
	_, err = repo.IncrementUpvotes(ctx, "abc", 1)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet(), "malformed ids never reach the database")
}
