package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/bitconnect/vault-api/internal/models"
	appErrors "github.com/bitconnect/vault-api/pkg/errors"
	"github.com/bitconnect/vault-api/pkg/storage"
)

type passwordChecker interface {
	CheckPassword(password string) bool
}

type noticeSender interface {
	Send(ctx context.Context, notice models.UploadNotice) (models.NotifyResult, error)
}

// AdminService backs the two privileged endpoints: raw object deletion and
// the moderator notification relay.
type AdminService struct {
	passwords passwordChecker
	store     storage.ObjectStore
	notifier  noticeSender
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewAdminService constructs the service.
func NewAdminService(passwords passwordChecker, store storage.ObjectStore, notifier noticeSender, metrics *MetricsService, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{passwords: passwords, store: store, notifier: notifier, metrics: metrics, logger: logger}
}

// DeleteFile removes an object with storage privileges after checking the
// shared password.
func (s *AdminService) DeleteFile(ctx context.Context, password, filePath string) error {
	if !s.passwords.CheckPassword(password) {
		return appErrors.Clone(appErrors.ErrUnauthorized, "Unauthorized")
	}
	filePath = strings.TrimSpace(filePath)
	if filePath == "" {
		return appErrors.Clone(appErrors.ErrValidation, "Missing filePath")
	}
	if err := s.store.Remove(ctx, filePath); err != nil {
		s.metrics.RecordModeration("delete_file", "storage_error")
		s.logger.Error("storage delete error", zap.String("path", filePath), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "Failed to delete file from storage")
	}
	s.metrics.RecordModeration("delete_file", "ok")
	return nil
}

// NotifyAdmin relays a notice to the moderator webhook.
func (s *AdminService) NotifyAdmin(ctx context.Context, notice models.UploadNotice) (models.NotifyResult, error) {
	return s.notifier.Send(ctx, notice)
}
