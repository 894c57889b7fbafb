package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bitconnect/vault-api/internal/models"
	appErrors "github.com/bitconnect/vault-api/pkg/errors"
	"github.com/bitconnect/vault-api/pkg/jobs"
)

const notifyJobType = "notify-upload"

// Reasons reported in the flat notify body.
const (
	ReasonNotConfigured = "API key not set"
	ReasonUpstream      = "WhatsApp API error"
	ReasonInternal      = "Internal error"
)

type jobEnqueuer interface {
	TryEnqueue(job jobs.Job) error
}

// NotifierConfig points the service at a CallMeBot-style webhook.
type NotifierConfig struct {
	WebhookURL string
	APIKey     string
	Phone      string
	AppURL     string
	Timeout    time.Duration
}

// NotifierService tells the moderator about new uploads. Delivery is best
// effort: at most once, never retried, never blocking an upload.
type NotifierService struct {
	cfg     NotifierConfig
	client  *http.Client
	queue   jobEnqueuer
	metrics *MetricsService
	logger  *zap.Logger
}

// NewNotifierService constructs the service. Attach a queue with UseQueue.
func NewNotifierService(cfg NotifierConfig, client *http.Client, metrics *MetricsService, logger *zap.Logger) *NotifierService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &NotifierService{cfg: cfg, client: client, metrics: metrics, logger: logger}
}

// UseQueue attaches the background queue used by NotifyUpload.
func (s *NotifierService) UseQueue(queue jobEnqueuer) {
	s.queue = queue
}

// Configured reports whether a webhook key is present.
func (s *NotifierService) Configured() bool {
	return s.cfg.APIKey != "" && s.cfg.WebhookURL != ""
}

// NotifyUpload queues a notification without waiting. A full queue drops it.
func (s *NotifierService) NotifyUpload(notice models.UploadNotice) {
	if !s.Configured() || s.queue == nil {
		s.metrics.RecordNotification("skipped")
		return
	}
	err := s.queue.TryEnqueue(jobs.Job{ID: uuid.NewString(), Type: notifyJobType, Payload: notice})
	if err != nil {
		s.metrics.RecordNotification("dropped")
		s.logger.Warn("notification dropped", zap.String("file", notice.FileName), zap.Error(err))
	}
}

// HandleJob is the queue handler delivering one notification.
func (s *NotifierService) HandleJob(ctx context.Context, job jobs.Job) error {
	notice, ok := job.Payload.(models.UploadNotice)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", job.Payload, job.Type)
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	_, err := s.Send(ctx, notice)
	return err
}

// Send delivers a notification synchronously. An unconfigured webhook is
// reported as a non-error result.
func (s *NotifierService) Send(ctx context.Context, notice models.UploadNotice) (models.NotifyResult, error) {
	if !s.Configured() {
		s.logger.Warn("notification webhook not configured, skipping")
		s.metrics.RecordNotification("skipped")
		return models.NotifyResult{Success: false, Reason: ReasonNotConfigured}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.webhookURL(notice), nil)
	if err != nil {
		s.metrics.RecordNotification("failed")
		return models.NotifyResult{Success: false, Reason: ReasonInternal}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, ReasonInternal)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		s.metrics.RecordNotification("failed")
		s.logger.Warn("notification request failed", zap.Error(err))
		return models.NotifyResult{Success: false, Reason: ReasonInternal}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, ReasonInternal)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		s.metrics.RecordNotification("failed")
		s.logger.Warn("notification webhook error", zap.Int("status", resp.StatusCode), zap.String("body", strings.TrimSpace(string(body))))
		upstream := errors.New(resp.Status)
		return models.NotifyResult{Success: false, Reason: ReasonUpstream}, appErrors.Wrap(upstream, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, ReasonUpstream)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	s.metrics.RecordNotification("sent")
	return models.NotifyResult{Success: true}, nil
}

// Message renders the WhatsApp text for a notice.
func (s *NotifierService) Message(notice models.UploadNotice) string {
	return strings.Join([]string{
		"*BIT Connect - New Upload*",
		"",
		"*File:* " + notice.FileName,
		"*Subject:* " + notice.Subject,
		"*Branch:* " + notice.Branch,
		"*Uploaded by:* " + notice.UploaderAlias,
		"",
		"*Review & Approve:*",
		strings.TrimRight(s.cfg.AppURL, "/") + "/admin",
	}, "\n")
}

func (s *NotifierService) webhookURL(notice models.UploadNotice) string {
	escape := func(v string) string { return strings.ReplaceAll(url.QueryEscape(v), "+", "%20") }
	sep := "?"
	if strings.Contains(s.cfg.WebhookURL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%sphone=%s&text=%s&apikey=%s", s.cfg.WebhookURL, sep, escape(s.cfg.Phone), escape(s.Message(notice)), escape(s.cfg.APIKey))
}
