package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bitconnect/vault-api/internal/dto"
	"github.com/bitconnect/vault-api/internal/models"
	appErrors "github.com/bitconnect/vault-api/pkg/errors"
	"github.com/bitconnect/vault-api/pkg/response"
)

type adminService interface {
	DeleteFile(ctx context.Context, password, filePath string) error
	NotifyAdmin(ctx context.Context, notice models.UploadNotice) (models.NotifyResult, error)
}

// AdminHandler serves the two privileged endpoints. Both answer with flat
// bodies rather than the envelope.
type AdminHandler struct {
	service adminService
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(service adminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// DeleteFile godoc
// @Summary Delete a stored object with storage privileges
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body dto.DeleteFileRequest true "Password and object path"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /admin/delete-file [post]
func (h *AdminHandler) DeleteFile(c *gin.Context) {
	if h.service == nil {
		response.Plain(c, http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	var req dto.DeleteFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Plain(c, http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if err := h.service.DeleteFile(c.Request.Context(), req.Password, req.FilePath); err != nil {
		appErr := appErrors.FromError(err)
		response.Plain(c, appErr.Status, gin.H{"error": appErr.Message})
		return
	}
	response.Plain(c, http.StatusOK, gin.H{"success": true})
}

// NotifyAdmin godoc
// @Summary Send the moderator an upload notification
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.UploadNotice true "Upload details"
// @Success 200 {object} models.NotifyResult
// @Failure 500 {object} models.NotifyResult
// @Router /notify-admin [post]
func (h *AdminHandler) NotifyAdmin(c *gin.Context) {
	if h.service == nil {
		response.Plain(c, http.StatusInternalServerError, models.NotifyResult{Success: false, Reason: "Internal error"})
		return
	}
	var notice models.UploadNotice
	if err := c.ShouldBindJSON(&notice); err != nil {
		response.Plain(c, http.StatusInternalServerError, models.NotifyResult{Success: false, Reason: "Internal error"})
		return
	}
	result, err := h.service.NotifyAdmin(c.Request.Context(), notice)
	if err != nil {
		response.Plain(c, http.StatusInternalServerError, result)
		return
	}
	response.Plain(c, http.StatusOK, result)
}
