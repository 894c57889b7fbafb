package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bitconnect/vault-api/internal/dto"
	"github.com/bitconnect/vault-api/internal/models"
	"github.com/bitconnect/vault-api/internal/taxonomy"
	appErrors "github.com/bitconnect/vault-api/pkg/errors"
	"github.com/bitconnect/vault-api/pkg/pubsub"
)

type communityStore interface {
	CreatePost(ctx context.Context, post *models.CommunityPost) error
	GetPost(ctx context.Context, id string) (*models.CommunityPost, error)
	ListPosts(ctx context.Context, filter models.PostFilter) ([]models.CommunityPost, error)
	CreateReply(ctx context.Context, reply *models.CommunityReply) error
	ListReplies(ctx context.Context, postID string) ([]models.CommunityReply, error)
}

// CommunityService runs the Q&A board. Posts older than the window drop out
// of listings but are never deleted.
type CommunityService struct {
	repo      communityStore
	screening *ScreeningService
	events    pubsub.Publisher
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	window    time.Duration
	now       func() time.Time
}

// NewCommunityService constructs the service.
func NewCommunityService(repo communityStore, screening *ScreeningService, events pubsub.Publisher, metrics *MetricsService, logger *zap.Logger, window time.Duration) *CommunityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if window <= 0 {
		window = 60 * 24 * time.Hour
	}
	return &CommunityService{
		repo:      repo,
		screening: screening,
		events:    events,
		metrics:   metrics,
		validator: validator.New(),
		logger:    logger,
		window:    window,
		now:       time.Now,
	}
}

// CreatePost validates, screens and stores a new thread.
func (s *CommunityService) CreatePost(ctx context.Context, req dto.CreatePostRequest) (*models.CommunityPost, error) {
	post := &models.CommunityPost{
		Title:       plainText(req.Title),
		Body:        plainText(req.Body),
		Branch:      req.Branch,
		AuthorAlias: aliasOrDefault(req.AuthorAlias, models.DefaultAlias),
	}
	req.Title, req.Body = post.Title, post.Body
	if err := s.validator.Struct(req); err != nil {
		s.metrics.RecordCommunityWrite("post", "rejected")
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "title, body and branch are required")
	}
	if _, ok := taxonomy.LookupBranch(post.Branch); !ok {
		s.metrics.RecordCommunityWrite("post", "rejected")
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown branch")
	}
	if s.screening.Profane(post.Title, post.Body) {
		s.metrics.RecordCommunityWrite("post", "screened")
		return nil, appErrors.Clone(appErrors.ErrContent, "Your post contains inappropriate language")
	}

	if err := s.repo.CreatePost(ctx, post); err != nil {
		s.metrics.RecordCommunityWrite("post", "failed")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create post")
	}
	s.metrics.RecordCommunityWrite("post", "ok")
	if s.events != nil {
		s.events.Publish(models.TopicPostCreated, post)
	}
	return post, nil
}

// ListPosts returns posts inside the rolling window, newest first. The
// branch filter narrows the window and never widens it.
func (s *CommunityService) ListPosts(ctx context.Context, branch string) ([]models.CommunityPost, error) {
	filter := models.PostFilter{Since: s.now().UTC().Add(-s.window), Branch: branch}
	posts, err := s.repo.ListPosts(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load posts")
	}
	visible := make([]models.CommunityPost, 0, len(posts))
	for _, p := range posts {
		if !p.CreatedAt.Before(filter.Since) {
			visible = append(visible, p)
		}
	}
	return visible, nil
}

// ListReplies returns a post's replies oldest first.
func (s *CommunityService) ListReplies(ctx context.Context, postID string) ([]models.CommunityReply, error) {
	if _, err := s.loadPost(ctx, postID); err != nil {
		return nil, err
	}
	replies, err := s.repo.ListReplies(ctx, postID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load replies")
	}
	if replies == nil {
		replies = []models.CommunityReply{}
	}
	return replies, nil
}

// CreateReply appends a reply to an existing post.
func (s *CommunityService) CreateReply(ctx context.Context, postID string, req dto.CreateReplyRequest) (*models.CommunityReply, error) {
	reply := &models.CommunityReply{
		PostID:      postID,
		ReplyText:   plainText(req.ReplyText),
		AuthorAlias: aliasOrDefault(req.AuthorAlias, models.DefaultAlias),
	}
	req.ReplyText = reply.ReplyText
	if err := s.validator.Struct(req); err != nil {
		s.metrics.RecordCommunityWrite("reply", "rejected")
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "reply text is required")
	}
	if _, err := s.loadPost(ctx, postID); err != nil {
		return nil, err
	}
	if err := s.repo.CreateReply(ctx, reply); err != nil {
		s.metrics.RecordCommunityWrite("reply", "failed")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create reply")
	}
	s.metrics.RecordCommunityWrite("reply", "ok")
	if s.events != nil {
		s.events.Publish(models.TopicReplyCreated, reply)
	}
	return reply, nil
}

func (s *CommunityService) loadPost(ctx context.Context, id string) (*models.CommunityPost, error) {
	post, err := s.repo.GetPost(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "post not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load post")
	}
	return post, nil
}
