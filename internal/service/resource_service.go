package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"mime"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bitconnect/vault-api/internal/dto"
	"github.com/bitconnect/vault-api/internal/models"
	"github.com/bitconnect/vault-api/internal/taxonomy"
	appErrors "github.com/bitconnect/vault-api/pkg/errors"
	"github.com/bitconnect/vault-api/pkg/pubsub"
	"github.com/bitconnect/vault-api/pkg/storage"
)

const (
	browseCachePrefix  = "vault:browse:"
	browseCachePattern = browseCachePrefix + "*"
	sniffLength        = 3072
)

type resourceStore interface {
	Create(ctx context.Context, res *models.Resource) error
	GetByID(ctx context.Context, id string) (*models.Resource, error)
	List(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, error)
	Approve(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	IncrementUpvotes(ctx context.Context, id string, delta int) (int, error)
}

type uploadNotifier interface {
	NotifyUpload(notice models.UploadNotice)
}

// ResourceUpload carries the file part of an upload.
type ResourceUpload struct {
	FileName string
	Size     int64
	MimeType string
	Content  io.Reader
}

// ResourceServiceConfig bounds uploads and tunes the browse cache.
type ResourceServiceConfig struct {
	MaxFileSize  int64
	AllowedMIMEs []string
	CacheTTL     time.Duration
}

// ResourceService handles uploads into the moderation queue and the public
// catalog of approved resources.
type ResourceService struct {
	repo      resourceStore
	store     storage.ObjectStore
	cache     *CacheService
	events    pubsub.Publisher
	notifier  uploadNotifier
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ResourceServiceConfig
	mimeSet   map[string]struct{}
	now       func() time.Time
}

// NewResourceService constructs the service with defaults.
func NewResourceService(repo resourceStore, store storage.ObjectStore, cache *CacheService, events pubsub.Publisher, notifier uploadNotifier, metrics *MetricsService, logger *zap.Logger, cfg ResourceServiceConfig) *ResourceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 15 * 1024 * 1024
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{"application/pdf", "image/png", "image/jpeg", "image/jpg"}
	}
	mimeSet := make(map[string]struct{}, len(cfg.AllowedMIMEs))
	for _, mt := range cfg.AllowedMIMEs {
		mimeSet[strings.ToLower(mt)] = struct{}{}
	}
	return &ResourceService{
		repo:      repo,
		store:     store,
		cache:     cache,
		events:    events,
		notifier:  notifier,
		metrics:   metrics,
		validator: validator.New(),
		logger:    logger,
		cfg:       cfg,
		mimeSet:   mimeSet,
		now:       time.Now,
	}
}

// Upload validates the submission, stores the object and records it as
// pending. Validation failures never reach storage or the database.
func (s *ResourceService) Upload(ctx context.Context, req dto.UploadResourceRequest, upload ResourceUpload) (*models.Resource, error) {
	res, content, err := s.prepareUpload(req, upload)
	if err != nil {
		s.metrics.RecordUpload("rejected")
		return nil, err
	}

	res.FilePath = s.objectPath(res)
	if err := s.store.Upload(ctx, res.FilePath, res.MimeType, content); err != nil {
		s.metrics.RecordUpload("storage_error")
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to store file")
	}
	res.FileURL = s.store.PublicURL(res.FilePath)

	if err := s.repo.Create(ctx, res); err != nil {
		if rmErr := s.store.Remove(context.WithoutCancel(ctx), res.FilePath); rmErr != nil {
			s.logger.Warn("orphaned object after failed insert", zap.String("path", res.FilePath), zap.Error(rmErr))
		}
		s.metrics.RecordUpload("db_error")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record upload")
	}

	s.metrics.RecordUpload("accepted")
	s.logger.Info("resource submitted", zap.String("resource_id", res.ID), zap.String("path", res.FilePath))

	location := locationOf(res)
	if s.events != nil {
		s.events.Publish(models.TopicResourcePending, models.ResourceEvent{
			ID: res.ID, FileName: res.FileName, Subject: res.Subject, Location: location, Status: res.Status,
		})
	}
	if s.notifier != nil {
		s.notifier.NotifyUpload(models.UploadNotice{
			FileName:      res.FileName,
			Subject:       res.Subject,
			Branch:        noticeBranch(res),
			UploaderAlias: res.UploaderAlias,
		})
	}
	return res, nil
}

// Browse lists approved resources in one catalog location, newest first.
// The boolean reports whether the result came from cache.
func (s *ResourceService) Browse(ctx context.Context, q dto.BrowseQuery) ([]dto.ResourceView, bool, error) {
	filter, err := browseFilter(q)
	if err != nil {
		return nil, false, err
	}
	key := browseCacheKey(filter)

	var cached []dto.ResourceView
	if s.cache.Get(ctx, key, &cached) {
		return cached, true, nil
	}

	records, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resources")
	}
	views := decorate(records)
	s.cache.Set(ctx, key, views, s.cfg.CacheTTL)
	return views, false, nil
}

// Get returns one approved resource. Pending records are not public.
func (s *ResourceService) Get(ctx context.Context, id string) (*dto.ResourceView, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}
	if res.Status != models.ResourceStatusApproved {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "resource not found")
	}
	view := decorateOne(*res)
	return &view, nil
}

func (s *ResourceService) prepareUpload(req dto.UploadResourceRequest, upload ResourceUpload) (*models.Resource, io.Reader, error) {
	if upload.Content == nil || strings.TrimSpace(upload.FileName) == "" || upload.Size <= 0 {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if upload.Size > s.cfg.MaxFileSize {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds %d MB limit", s.cfg.MaxFileSize/(1024*1024)))
	}
	req.Category = strings.TrimSpace(req.Category)
	req.Subject = strings.TrimSpace(req.Subject)
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid upload metadata")
	}

	res := &models.Resource{
		FileName:      cleanFileName(upload.FileName),
		Category:      req.Category,
		Subject:       req.Subject,
		UploaderAlias: aliasOrDefault(req.UploaderAlias, models.DefaultAlias),
		Status:        models.ResourceStatusPending,
		Upvotes:       0,
		SizeBytes:     upload.Size,
	}
	if err := locate(res, req); err != nil {
		return nil, nil, err
	}

	mimeType, content, err := s.resolveMime(upload)
	if err != nil {
		return nil, nil, err
	}
	res.MimeType = mimeType
	return res, content, nil
}

// resolveMime trusts the declared type and sniffs only when none was sent.
func (s *ResourceService) resolveMime(upload ResourceUpload) (string, io.Reader, error) {
	declared := normalizeMime(upload.MimeType)
	content := upload.Content
	if declared == "" || declared == "application/octet-stream" {
		head := make([]byte, sniffLength)
		n, err := io.ReadFull(upload.Content, head)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to inspect file")
		}
		declared = normalizeMime(mimetype.Detect(head[:n]).String())
		content = io.MultiReader(bytes.NewReader(head[:n]), upload.Content)
	}
	if _, ok := s.mimeSet[declared]; !ok {
		return "", nil, appErrors.Clone(appErrors.ErrValidation, "only PDF, PNG and JPG files are allowed")
	}
	return declared, content, nil
}

func (s *ResourceService) objectPath(res *models.Resource) string {
	name := fmt.Sprintf("%d_%s", s.now().UnixMilli(), sanitizeSegment(res.FileName))
	if res.Branch == taxonomy.FirstYear {
		return strings.Join([]string{taxonomy.FirstYear, sanitizeSegment(*res.Stream), sanitizeSegment(*res.Cycle), sanitizeSegment(res.Category), name}, "/")
	}
	return strings.Join([]string{sanitizeSegment(res.Branch), strconv.Itoa(*res.Semester), sanitizeSegment(res.Category), name}, "/")
}

// locate fills the catalog location. A record sits either at branch and
// semester or, for first-year material, at stream and cycle.
func locate(res *models.Resource, req dto.UploadResourceRequest) error {
	branch := strings.TrimSpace(req.Branch)
	stream := strings.TrimSpace(req.Stream)
	cycle := strings.TrimSpace(req.Cycle)

	if branch == taxonomy.FirstYear || (branch == "" && (stream != "" || cycle != "")) {
		if stream == "" || cycle == "" {
			return appErrors.Clone(appErrors.ErrValidation, "stream and cycle are required for first-year uploads")
		}
		res.Branch = taxonomy.FirstYear
		res.Stream = &stream
		res.Cycle = &cycle
		return nil
	}
	if branch == "" || req.Semester == nil {
		return appErrors.Clone(appErrors.ErrValidation, "branch and semester are required")
	}
	if *req.Semester <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "semester must be positive")
	}
	semester := *req.Semester
	res.Branch = branch
	res.Semester = &semester
	return nil
}

func browseFilter(q dto.BrowseQuery) (models.ResourceFilter, error) {
	filter := models.ResourceFilter{
		Status:   models.ResourceStatusApproved,
		Branch:   strings.TrimSpace(q.Branch),
		Category: strings.TrimSpace(q.Category),
	}
	switch {
	case filter.Branch == "":
		return filter, appErrors.Clone(appErrors.ErrValidation, "branch is required")
	case filter.Branch == taxonomy.FirstYear:
		filter.Stream = strings.TrimSpace(q.Stream)
		filter.Cycle = strings.TrimSpace(q.Cycle)
		if filter.Stream == "" || filter.Cycle == "" {
			return filter, appErrors.Clone(appErrors.ErrValidation, "stream and cycle are required")
		}
	default:
		if q.Semester == nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "semester is required")
		}
		filter.Semester = q.Semester
	}
	return filter, nil
}

func browseCacheKey(f models.ResourceFilter) string {
	location := f.Stream + ":" + f.Cycle
	if f.Semester != nil {
		location = strconv.Itoa(*f.Semester)
	}
	category := f.Category
	if category == "" {
		category = "all"
	}
	return browseCachePrefix + f.Branch + ":" + location + ":" + category
}

func decorate(records []models.Resource) []dto.ResourceView {
	views := make([]dto.ResourceView, 0, len(records))
	for _, r := range records {
		views = append(views, decorateOne(r))
	}
	return views
}

func decorateOne(r models.Resource) dto.ResourceView {
	return dto.ResourceView{
		Resource:      r,
		BranchLabel:   taxonomy.BranchLabel(r.Branch),
		BranchName:    taxonomy.BranchName(r.Branch),
		CategoryLabel: taxonomy.CategoryLabel(r.Category),
		LocationLabel: locationOf(&r),
	}
}

func locationOf(r *models.Resource) string {
	return taxonomy.LocationLabel(r.Branch, r.Semester, deref(r.Stream), deref(r.Cycle))
}

// noticeBranch is the short branch label used in moderator notifications.
func noticeBranch(r *models.Resource) string {
	if r.Branch == taxonomy.FirstYear {
		return taxonomy.FirstYearLabel(deref(r.Stream), deref(r.Cycle))
	}
	return taxonomy.BranchLabel(r.Branch)
}

func normalizeMime(raw string) string {
	if raw == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(raw))
	}
	return strings.ToLower(mt)
}

func cleanFileName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// sanitizeSegment keeps one object key segment free of separators and
// control characters.
func sanitizeSegment(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), strings.ContainsRune("-_.() ", r):
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" || out == "." || out == ".." {
		return "_"
	}
	return out
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
