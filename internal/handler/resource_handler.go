package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bitconnect/vault-api/internal/dto"
	"github.com/bitconnect/vault-api/internal/middleware"
	"github.com/bitconnect/vault-api/internal/models"
	"github.com/bitconnect/vault-api/internal/service"
	appErrors "github.com/bitconnect/vault-api/pkg/errors"
	"github.com/bitconnect/vault-api/pkg/response"
)

type resourceService interface {
	Upload(ctx context.Context, req dto.UploadResourceRequest, upload service.ResourceUpload) (*models.Resource, error)
	Browse(ctx context.Context, q dto.BrowseQuery) ([]dto.ResourceView, bool, error)
	Get(ctx context.Context, id string) (*dto.ResourceView, error)
}

type voteService interface {
	State(ctx context.Context, voterID, resourceID string) (models.VoteState, error)
	Apply(ctx context.Context, voterID, resourceID string, direction models.VoteDirection, displayed int) (*models.VoteOutcome, error)
}

// ResourceHandler exposes the public catalog: uploads, browsing and votes.
type ResourceHandler struct {
	service resourceService
	votes   voteService
	maxBody int64
}

// NewResourceHandler constructs the handler. maxBody caps the multipart
// request body.
func NewResourceHandler(service resourceService, votes voteService, maxBody int64) *ResourceHandler {
	return &ResourceHandler{service: service, votes: votes, maxBody: maxBody}
}

// Upload godoc
// @Summary Submit a study resource for moderation
// @Tags Resources
// @Accept multipart/form-data
// @Produce json
// @Param branch formData string true "Branch id or first-year"
// @Param semester formData int false "Semester, for branch uploads"
// @Param stream formData string false "Stream, for first-year uploads"
// @Param cycle formData string false "Cycle, for first-year uploads"
// @Param category formData string true "Category"
// @Param subject formData string true "Subject"
// @Param uploaderAlias formData string false "Display alias"
// @Param file formData file true "PDF, PNG or JPG up to 15 MB"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /resources [post]
func (h *ResourceHandler) Upload(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "resource service not configured"))
		return
	}
	if h.maxBody > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody)
	}
	var req dto.UploadResourceRequest
	if err := c.ShouldBind(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file exceeds upload limit"))
			return
		}
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid upload payload"))
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	upload := service.ResourceUpload{
		FileName: fileHeader.Filename,
		Size:     fileHeader.Size,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Content:  src,
	}
	res, err := h.service.Upload(c.Request.Context(), req, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// Browse godoc
// @Summary List approved resources in one catalog location
// @Tags Resources
// @Produce json
// @Param branch query string true "Branch id or first-year"
// @Param semester query int false "Semester"
// @Param stream query string false "First-year stream"
// @Param cycle query string false "First-year cycle"
// @Param category query string false "Category"
// @Success 200 {object} response.Envelope
// @Router /resources [get]
func (h *ResourceHandler) Browse(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "resource service not configured"))
		return
	}
	start := time.Now()
	var q dto.BrowseQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid browse query"))
		return
	}
	views, cached, err := h.service.Browse(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cached)
	response.List(c, views, len(views), middleware.ResponseMeta(c, start))
}

// Get godoc
// @Summary Get one approved resource
// @Tags Resources
// @Produce json
// @Param id path string true "Resource ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /resources/{id} [get]
func (h *ResourceHandler) Get(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "resource service not configured"))
		return
	}
	view, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// VoteState godoc
// @Summary Current caller's vote on a resource
// @Tags Votes
// @Produce json
// @Param id path string true "Resource ID"
// @Success 200 {object} response.Envelope
// @Router /resources/{id}/vote [get]
func (h *ResourceHandler) VoteState(c *gin.Context) {
	if h.votes == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "vote service not configured"))
		return
	}
	id := c.Param("id")
	state, err := h.votes.State(c.Request.Context(), middleware.VoterFromContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.VoteStateResponse{ResourceID: id, State: state}, nil)
}

// Vote godoc
// @Summary Press the up or down vote button
// @Description Pressing the active direction clears the vote. When the counter
// @Description update fails the response carries the rolled back outcome.
// @Tags Votes
// @Accept json
// @Produce json
// @Param id path string true "Resource ID"
// @Param payload body dto.VoteRequest true "Vote press"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /resources/{id}/vote [post]
func (h *ResourceHandler) Vote(c *gin.Context) {
	if h.votes == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "vote service not configured"))
		return
	}
	var req dto.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid vote payload"))
		return
	}
	req.Direction = models.VoteDirection(strings.ToLower(string(req.Direction)))
	outcome, err := h.votes.Apply(c.Request.Context(), middleware.VoterFromContext(c), c.Param("id"), req.Direction, req.Displayed)
	if err != nil {
		if outcome != nil {
			response.ErrorWith(c, err, outcome)
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcome, nil)
}
