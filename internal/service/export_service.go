package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bitconnect/vault-api/internal/models"
	"github.com/bitconnect/vault-api/internal/taxonomy"
	appErrors "github.com/bitconnect/vault-api/pkg/errors"
	"github.com/bitconnect/vault-api/pkg/export"
)

type resourceLister interface {
	List(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, error)
}

// ExportFile is a rendered moderation report.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

var exportHeaders = []string{"Created", "File", "Subject", "Location", "Category", "Uploader", "Upvotes", "Size (KB)"}

// ExportService renders moderation queues as CSV or PDF reports.
type ExportService struct {
	repo   resourceLister
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(repo resourceLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{repo: repo, logger: logger, now: time.Now}
}

// Render builds the report for one queue.
func (s *ExportService) Render(ctx context.Context, status models.ResourceStatus, format string) (*ExportFile, error) {
	renderer, err := export.ForFormat(strings.ToLower(format))
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	records, err := s.repo.List(ctx, models.ResourceFilter{Status: status, Limit: 500})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resources")
	}

	dataset := export.Dataset{
		Title:   fmt.Sprintf("%s resources (%d)", statusTitle(status), len(records)),
		Headers: exportHeaders,
		Rows:    make([]map[string]string, 0, len(records)),
	}
	for _, r := range records {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Created":   r.CreatedAt.UTC().Format("2006-01-02 15:04"),
			"File":      r.FileName,
			"Subject":   r.Subject,
			"Location":  locationOf(&r),
			"Category":  taxonomy.CategoryLabel(r.Category),
			"Uploader":  r.UploaderAlias,
			"Upvotes":   strconv.Itoa(r.Upvotes),
			"Size (KB)": strconv.FormatInt((r.SizeBytes+1023)/1024, 10),
		})
	}

	data, err := renderer.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	name := fmt.Sprintf("%s_resources_%s.%s", status, s.now().UTC().Format("20060102_150405"), renderer.Extension())
	s.logger.Info("moderation export rendered", zap.String("status", string(status)), zap.Int("rows", len(records)), zap.String("format", renderer.Extension()))
	return &ExportFile{Name: name, ContentType: renderer.ContentType(), Data: data}, nil
}

func statusTitle(status models.ResourceStatus) string {
	if status == models.ResourceStatusApproved {
		return "Approved"
	}
	return "Pending"
}
