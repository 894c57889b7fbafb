package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bitconnect/vault-api/internal/models"
)

// CommunityRepository persists board posts and replies. Neither is ever
// updated or deleted.
type CommunityRepository struct {
	db *sqlx.DB
}

// NewCommunityRepository constructs the repository.
func NewCommunityRepository(db *sqlx.DB) *CommunityRepository {
	return &CommunityRepository{db: db}
}

// CreatePost inserts a post.
func (r *CommunityRepository) CreatePost(ctx context.Context, post *models.CommunityPost) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	post.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO community_posts (id, title, body, branch, author_alias, created_at)
	VALUES (:id, :title, :body, :branch, :author_alias, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, post); err != nil {
		return fmt.Errorf("create community post: %w", err)
	}
	return nil
}

// GetPost loads a post with its reply count.
func (r *CommunityRepository) GetPost(ctx context.Context, id string) (*models.CommunityPost, error) {
	if !validID(id) {
		return nil, sql.ErrNoRows
	}
	const query = `SELECT p.id, p.title, p.body, p.branch, p.author_alias, p.created_at,
       (SELECT COUNT(*) FROM community_replies r WHERE r.post_id = p.id) AS reply_count
	FROM community_posts p WHERE p.id = $1`
	var post models.CommunityPost
	if err := r.db.GetContext(ctx, &post, query, id); err != nil {
		return nil, err
	}
	return &post, nil
}

// ListPosts returns posts created at or after filter.Since, newest first.
// The window bound is always applied, with or without a branch.
func (r *CommunityRepository) ListPosts(ctx context.Context, filter models.PostFilter) ([]models.CommunityPost, error) {
	query := `SELECT p.id, p.title, p.body, p.branch, p.author_alias, p.created_at,
       (SELECT COUNT(*) FROM community_replies r WHERE r.post_id = p.id) AS reply_count
	FROM community_posts p WHERE p.created_at >= $1`
	args := []interface{}{filter.Since}
	if filter.Branch != "" {
		args = append(args, filter.Branch)
		query += fmt.Sprintf(" AND p.branch = $%d", len(args))
	}
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	query += fmt.Sprintf(" ORDER BY p.created_at DESC LIMIT %d", limit)

	var posts []models.CommunityPost
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("list community posts: %w", err)
	}
	return posts, nil
}

// CreateReply appends a reply to a post.
func (r *CommunityRepository) CreateReply(ctx context.Context, reply *models.CommunityReply) error {
	if reply.ID == "" {
		reply.ID = uuid.NewString()
	}
	reply.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO community_replies (id, post_id, reply_text, author_alias, created_at)
	VALUES (:id, :post_id, :reply_text, :author_alias, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, reply); err != nil {
		return fmt.Errorf("create community reply: %w", err)
	}
	return nil
}

// ListReplies returns a post's replies oldest first.
func (r *CommunityRepository) ListReplies(ctx context.Context, postID string) ([]models.CommunityReply, error) {
	if !validID(postID) {
		return nil, nil
	}
	const query = `SELECT id, post_id, reply_text, author_alias, created_at
	FROM community_replies WHERE post_id = $1 ORDER BY created_at ASC`
	var replies []models.CommunityReply
	if err := r.db.SelectContext(ctx, &replies, query, postID); err != nil {
		return nil, fmt.Errorf("list community replies: %w", err)
	}
	return replies, nil
}
