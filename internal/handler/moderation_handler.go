package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bitconnect/vault-api/internal/dto"
	"github.com/bitconnect/vault-api/internal/middleware"
	"github.com/bitconnect/vault-api/internal/models"
	"github.com/bitconnect/vault-api/internal/service"
	appErrors "github.com/bitconnect/vault-api/pkg/errors"
	"github.com/bitconnect/vault-api/pkg/response"
)

type sessionOpener interface {
	Open(password string) (*models.ModerationSession, error)
}

type moderationService interface {
	List(ctx context.Context, session *models.ModerationSession, status models.ResourceStatus) ([]dto.ResourceView, error)
	Approve(ctx context.Context, session *models.ModerationSession, id string) (*dto.ResourceView, error)
	Delete(ctx context.Context, session *models.ModerationSession, id string) error
	Export(ctx context.Context, session *models.ModerationSession, status models.ResourceStatus, format string) (*service.ExportFile, error)
}

// ModerationHandler serves the moderation console.
type ModerationHandler struct {
	sessions  sessionOpener
	service   moderationService
	hub       eventSubscriber
	metrics   *service.MetricsService
	heartbeat time.Duration
}

// NewModerationHandler constructs the handler.
func NewModerationHandler(sessions sessionOpener, service moderationService, hub eventSubscriber, metrics *service.MetricsService, heartbeat time.Duration) *ModerationHandler {
	return &ModerationHandler{sessions: sessions, service: service, hub: hub, metrics: metrics, heartbeat: heartbeat}
}

// OpenSession godoc
// @Summary Exchange the moderation password for a session token
// @Tags Moderation
// @Accept json
// @Produce json
// @Param payload body dto.SessionRequest true "Password"
// @Success 201 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admin/session [post]
func (h *ModerationHandler) OpenSession(c *gin.Context) {
	if h.sessions == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "session service not configured"))
		return
	}
	var req dto.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Password == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "password is required"))
		return
	}
	session, err := h.sessions.Open(req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// List godoc
// @Summary List a moderation queue
// @Tags Moderation
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending (default) or approved"
// @Success 200 {object} response.Envelope
// @Router /admin/resources [get]
func (h *ModerationHandler) List(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "moderation service not configured"))
		return
	}
	var q dto.ModerationListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query"))
		return
	}
	views, err := h.service.List(c.Request.Context(), middleware.SessionFromContext(c), q.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, views, len(views), nil)
}

// Approve godoc
// @Summary Approve a pending resource
// @Tags Moderation
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resource ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/resources/{id}/approve [post]
func (h *ModerationHandler) Approve(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "moderation service not configured"))
		return
	}
	view, err := h.service.Approve(c.Request.Context(), middleware.SessionFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Delete godoc
// @Summary Reject a pending resource or remove an approved one
// @Description The stored file is removed first. If that fails the record is kept.
// @Tags Moderation
// @Security BearerAuth
// @Param id path string true "Resource ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /admin/resources/{id} [delete]
func (h *ModerationHandler) Delete(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "moderation service not configured"))
		return
	}
	if err := h.service.Delete(c.Request.Context(), middleware.SessionFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Download a moderation queue report
// @Tags Moderation
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param status query string false "pending (default) or approved"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /admin/resources/export [get]
func (h *ModerationHandler) Export(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "moderation service not configured"))
		return
	}
	var q dto.ExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query"))
		return
	}
	file, err := h.service.Export(c.Request.Context(), middleware.SessionFromContext(c), q.Status, q.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", file.Name))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// Stream godoc
// @Summary Live moderation queue events
// @Description Server-sent events for new, approved and deleted resources.
// @Description EventSource clients pass the session token as the token query parameter.
// @Tags Moderation
// @Produce text/event-stream
// @Param token query string false "Session token"
// @Router /admin/resources/stream [get]
func (h *ModerationHandler) Stream(c *gin.Context) {
	if h.hub == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "event hub not configured"))
		return
	}
	streamEvents(c, h.hub, h.metrics, h.heartbeat,
		models.TopicResourcePending, models.TopicResourceApproved, models.TopicResourceDeleted)
}
