package dto

import "github.com/bitconnect/vault-api/internal/models"

// SessionRequest exchanges the shared password for a moderation session.
type SessionRequest struct {
	Password string `json:"password" validate:"required"`
}

// ModerationListQuery selects one moderation queue.
type ModerationListQuery struct {
	Status models.ResourceStatus `form:"status"`
}

// ExportQuery selects the queue and output format of a moderation report.
type ExportQuery struct {
	Status models.ResourceStatus `form:"status"`
	Format string                `form:"format"`
}

// DeleteFileRequest is the body of the privileged storage delete endpoint.
type DeleteFileRequest struct {
	Password string `json:"password"`
	FilePath string `json:"filePath"`
}
