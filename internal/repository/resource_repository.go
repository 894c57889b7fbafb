package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bitconnect/vault-api/internal/models"
)

const resourceColumns = `id, file_name, file_url, file_path, branch, semester, stream, cycle, category, subject,
       uploader_alias, status, upvotes, mime_type, size_bytes, created_at`

// ResourceRepository persists resource metadata records.
type ResourceRepository struct {
	db *sqlx.DB
}

// NewResourceRepository constructs the repository.
func NewResourceRepository(db *sqlx.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// Create inserts a new record. The id and creation time are assigned here.
func (r *ResourceRepository) Create(ctx context.Context, res *models.Resource) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	res.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO resources
	(id, file_name, file_url, file_path, branch, semester, stream, cycle, category, subject, uploader_alias, status, upvotes, mime_type, size_bytes, created_at)
	VALUES (:id, :file_name, :file_url, :file_path, :branch, :semester, :stream, :cycle, :category, :subject, :uploader_alias, :status, :upvotes, :mime_type, :size_bytes, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, res); err != nil {
		return fmt.Errorf("create resource: %w", err)
	}
	return nil
}

// GetByID loads one record.
func (r *ResourceRepository) GetByID(ctx context.Context, id string) (*models.Resource, error) {
	if !validID(id) {
		return nil, sql.ErrNoRows
	}
	query := `SELECT ` + resourceColumns + ` FROM resources WHERE id = $1`
	var res models.Resource
	if err := r.db.GetContext(ctx, &res, query, id); err != nil {
		return nil, err
	}
	return &res, nil
}

// List returns records matching the filter, newest first.
func (r *ResourceRepository) List(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, error) {
	var builder strings.Builder
	builder.WriteString(`SELECT ` + resourceColumns + ` FROM resources`)
	args := make([]interface{}, 0, 6)
	conditions := make([]string, 0, 6)

	add := func(column string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if filter.Status != "" {
		add("status", filter.Status)
	}
	if filter.Branch != "" {
		add("branch", filter.Branch)
	}
	if filter.Semester != nil {
		add("semester", *filter.Semester)
	}
	if filter.Stream != "" {
		add("stream", filter.Stream)
	}
	if filter.Cycle != "" {
		add("cycle", filter.Cycle)
	}
	if filter.Category != "" {
		add("category", filter.Category)
	}

	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d", limit))

	var records []models.Resource
	if err := r.db.SelectContext(ctx, &records, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	return records, nil
}

// Approve flips a record to approved. Approving an approved record succeeds.
func (r *ResourceRepository) Approve(ctx context.Context, id string) error {
	if !validID(id) {
		return sql.ErrNoRows
	}
	const query = `UPDATE resources SET status = 'approved' WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("approve resource: %w", err)
	}
	return requireAffected(res, "approve resource")
}

// Delete removes a record.
func (r *ResourceRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return sql.ErrNoRows
	}
	const query = `DELETE FROM resources WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	return requireAffected(res, "delete resource")
}

// IncrementUpvotes atomically adds delta to the counter and returns the new value.
func (r *ResourceRepository) IncrementUpvotes(ctx context.Context, id string, delta int) (int, error) {
	if !validID(id) {
		return 0, sql.ErrNoRows
	}
	const query = `UPDATE resources SET upvotes = upvotes + $2 WHERE id = $1 RETURNING upvotes`
	var upvotes int
	if err := r.db.GetContext(ctx, &upvotes, query, id, delta); err != nil {
		return 0, err
	}
	return upvotes, nil
}

// validID reports whether id can match a uuid primary key. Anything else is
// treated as a missing row instead of a cast error from Postgres.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func requireAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
