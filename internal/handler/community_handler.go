package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bitconnect/vault-api/internal/dto"
	"github.com/bitconnect/vault-api/internal/models"
	"github.com/bitconnect/vault-api/internal/service"
	appErrors "github.com/bitconnect/vault-api/pkg/errors"
	"github.com/bitconnect/vault-api/pkg/response"
)

type communityService interface {
	CreatePost(ctx context.Context, req dto.CreatePostRequest) (*models.CommunityPost, error)
	ListPosts(ctx context.Context, branch string) ([]models.CommunityPost, error)
	ListReplies(ctx context.Context, postID string) ([]models.CommunityReply, error)
	CreateReply(ctx context.Context, postID string, req dto.CreateReplyRequest) (*models.CommunityReply, error)
}

// CommunityHandler serves the Q&A board.
type CommunityHandler struct {
	service   communityService
	hub       eventSubscriber
	metrics   *service.MetricsService
	heartbeat time.Duration
}

// NewCommunityHandler constructs the handler.
func NewCommunityHandler(service communityService, hub eventSubscriber, metrics *service.MetricsService, heartbeat time.Duration) *CommunityHandler {
	return &CommunityHandler{service: service, hub: hub, metrics: metrics, heartbeat: heartbeat}
}

// ListPosts godoc
// @Summary Recent board posts, newest first
// @Tags Community
// @Produce json
// @Param branch query string false "Branch filter"
// @Success 200 {object} response.Envelope
// @Router /community/posts [get]
func (h *CommunityHandler) ListPosts(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "community service not configured"))
		return
	}
	var q dto.PostListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query"))
		return
	}
	posts, err := h.service.ListPosts(c.Request.Context(), q.Branch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, posts, len(posts), nil)
}

// CreatePost godoc
// @Summary Open a board thread
// @Tags Community
// @Accept json
// @Produce json
// @Param payload body dto.CreatePostRequest true "Post"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /community/posts [post]
func (h *CommunityHandler) CreatePost(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "community service not configured"))
		return
	}
	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid post payload"))
		return
	}
	post, err := h.service.CreatePost(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, post)
}

// ListReplies godoc
// @Summary Replies to a post, oldest first
// @Tags Community
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /community/posts/{id}/replies [get]
func (h *CommunityHandler) ListReplies(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "community service not configured"))
		return
	}
	replies, err := h.service.ListReplies(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, replies, len(replies), nil)
}

// CreateReply godoc
// @Summary Reply to a post
// @Tags Community
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param payload body dto.CreateReplyRequest true "Reply"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /community/posts/{id}/replies [post]
func (h *CommunityHandler) CreateReply(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "community service not configured"))
		return
	}
	var req dto.CreateReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid reply payload"))
		return
	}
	reply, err := h.service.CreateReply(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, reply, nil)
}

// Stream godoc
// @Summary Live board events
// @Tags Community
// @Produce text/event-stream
// @Router /community/stream [get]
func (h *CommunityHandler) Stream(c *gin.Context) {
	if h.hub == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "event hub not configured"))
		return
	}
	streamEvents(c, h.hub, h.metrics, h.heartbeat, models.TopicPostCreated, models.TopicReplyCreated)
}
