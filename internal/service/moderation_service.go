package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/bitconnect/vault-api/internal/dto"
	"github.com/bitconnect/vault-api/internal/models"
	appErrors "github.com/bitconnect/vault-api/pkg/errors"
	"github.com/bitconnect/vault-api/pkg/pubsub"
	"github.com/bitconnect/vault-api/pkg/storage"
)

type sessionGuard interface {
	Require(session *models.ModerationSession) error
}

type moderationStore interface {
	GetByID(ctx context.Context, id string) (*models.Resource, error)
	List(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, error)
	Approve(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type reportRenderer interface {
	Render(ctx context.Context, status models.ResourceStatus, format string) (*ExportFile, error)
}

// ModerationService works the pending and approved queues. Every call takes
// the moderation session explicitly and fails closed without one.
type ModerationService struct {
	sessions sessionGuard
	repo     moderationStore
	store    storage.ObjectStore
	bucket   string
	events   pubsub.Publisher
	cache    *CacheService
	reports  reportRenderer
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewModerationService constructs the service.
func NewModerationService(sessions sessionGuard, repo moderationStore, store storage.ObjectStore, bucket string, events pubsub.Publisher, cache *CacheService, reports reportRenderer, metrics *MetricsService, logger *zap.Logger) *ModerationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModerationService{
		sessions: sessions,
		repo:     repo,
		store:    store,
		bucket:   bucket,
		events:   events,
		cache:    cache,
		reports:  reports,
		metrics:  metrics,
		logger:   logger,
	}
}

// List returns one queue newest first. An empty status selects pending.
func (s *ModerationService) List(ctx context.Context, session *models.ModerationSession, status models.ResourceStatus) ([]dto.ResourceView, error) {
	if err := s.sessions.Require(session); err != nil {
		return nil, err
	}
	status, err := queueStatus(status)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.List(ctx, models.ResourceFilter{Status: status, Limit: 500})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load moderation queue")
	}
	return decorate(records), nil
}

// Approve publishes a pending resource. Approving twice is harmless.
func (s *ModerationService) Approve(ctx context.Context, session *models.ModerationSession, id string) (*dto.ResourceView, error) {
	if err := s.sessions.Require(session); err != nil {
		return nil, err
	}
	if err := s.repo.Approve(ctx, id); err != nil {
		s.metrics.RecordModeration("approve", "failed")
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve resource")
	}
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload resource")
	}

	s.metrics.RecordModeration("approve", "ok")
	s.cache.Invalidate(ctx, browseCachePattern)
	s.publish(models.TopicResourceApproved, res)
	s.logger.Info("resource approved", zap.String("resource_id", id), zap.String("session_id", session.ID))
	view := decorateOne(*res)
	return &view, nil
}

// Delete rejects a pending resource or removes an approved one. The stored
// object is removed first; if that fails the record stays.
func (s *ModerationService) Delete(ctx context.Context, session *models.ModerationSession, id string) error {
	if err := s.sessions.Require(session); err != nil {
		return err
	}
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}

	path := storage.ObjectPathFromURL(res.FileURL, s.bucket, res.FilePath)
	if path == "" {
		s.metrics.RecordModeration("delete", "storage_error")
		return appErrors.Clone(appErrors.ErrStorage, "cannot determine stored file path")
	}
	if err := s.store.Remove(ctx, path); err != nil {
		s.metrics.RecordModeration("delete", "storage_error")
		s.logger.Warn("storage delete failed, record kept", zap.String("resource_id", id), zap.String("path", path), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, appErrors.ErrStorage.Message)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.metrics.RecordModeration("delete", "failed")
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete resource")
	}

	s.metrics.RecordModeration("delete", "ok")
	if res.Status == models.ResourceStatusApproved {
		s.cache.Invalidate(ctx, browseCachePattern)
	}
	s.publish(models.TopicResourceDeleted, res)
	s.logger.Info("resource deleted", zap.String("resource_id", id), zap.String("status", string(res.Status)), zap.String("session_id", session.ID))
	return nil
}

// Export renders a queue report.
func (s *ModerationService) Export(ctx context.Context, session *models.ModerationSession, status models.ResourceStatus, format string) (*ExportFile, error) {
	if err := s.sessions.Require(session); err != nil {
		return nil, err
	}
	status, err := queueStatus(status)
	if err != nil {
		return nil, err
	}
	return s.reports.Render(ctx, status, format)
}

func (s *ModerationService) publish(topic string, res *models.Resource) {
	if s.events == nil {
		return
	}
	s.events.Publish(topic, models.ResourceEvent{
		ID: res.ID, FileName: res.FileName, Subject: res.Subject, Location: locationOf(res), Status: res.Status,
	})
}

func queueStatus(status models.ResourceStatus) (models.ResourceStatus, error) {
	if status == "" {
		return models.ResourceStatusPending, nil
	}
	if !status.Valid() {
		return "", appErrors.Clone(appErrors.ErrValidation, "status must be pending or approved")
	}
	return status, nil
}
