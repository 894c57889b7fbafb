package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bitconnect/vault-api/internal/handler"
	"github.com/bitconnect/vault-api/internal/repository"
	"github.com/bitconnect/vault-api/internal/service"
	"github.com/bitconnect/vault-api/pkg/cache"
	"github.com/bitconnect/vault-api/pkg/config"
	"github.com/bitconnect/vault-api/pkg/database"
	"github.com/bitconnect/vault-api/pkg/jobs"
	"github.com/bitconnect/vault-api/pkg/logger"
	"github.com/bitconnect/vault-api/pkg/pubsub"
	"github.com/bitconnect/vault-api/pkg/storage"
)

// @title Study Vault API
// @version 1.0.0
// @description Academic resource portal: catalog, uploads, moderation and community board.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect to redis", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	store, localStore, err := newObjectStore(cfg.Storage)
	if err != nil {
		logr.Fatal("failed to init object storage", zap.Error(err))
	}

	app := buildApp(ctx, cfg, logr, db, redisClient, store)
	defer app.queue.Stop()

	router := newRouter(cfg, logr, app, localStore)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("storage", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// application holds the wired services handed to the router.
type application struct {
	metrics    *service.MetricsService
	hub        *pubsub.Hub
	queue      *jobs.Queue
	sessions   *service.SessionService
	resources  *service.ResourceService
	votes      *service.VoteService
	moderation *service.ModerationService
	community  *service.CommunityService
	admin      *service.AdminService
	checks     map[string]handler.Pinger
}

func buildApp(ctx context.Context, cfg *config.Config, logr *zap.Logger, db *sqlx.DB, redisClient *redis.Client, store storage.ObjectStore) *application {
	metrics := service.NewMetricsService()

	hub := pubsub.NewHub(cfg.Stream.Buffer)
	hub.OnDrop(metrics.RecordEventDropped)

	checks := map[string]handler.Pinger{"postgres": db}
	var cacheRepo service.CacheRepository
	var ledger service.VoteLedger = repository.NewMemoryVoteLedger()
	if redisClient != nil {
		redisCache := repository.NewCacheRepository(redisClient)
		cacheRepo = redisCache
		ledger = repository.NewVoteLedgerRepository(redisClient)
		checks["redis"] = handler.PingFunc(redisCache.Ping)
		go pubsub.NewRedisBridge(redisClient, hub, "vault:events", logr.Named("bridge")).Run(ctx)
	} else {
		logr.Warn("redis disabled: browse cache off, votes kept in memory, live views local to this instance")
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Browse.CacheTTL, logr.Named("cache"), cacheRepo != nil)

	sessions, err := service.NewSessionService(service.SessionConfig{
		Password: cfg.Admin.Password,
		Secret:   cfg.Admin.SessionSecret,
		TTL:      cfg.Admin.SessionTTL,
	}, logr.Named("session"))
	if err != nil {
		logr.Fatal("failed to init moderation sessions", zap.Error(err))
	}

	notifier := service.NewNotifierService(service.NotifierConfig{
		WebhookURL: cfg.Notify.WebhookURL,
		APIKey:     cfg.Notify.APIKey,
		Phone:      cfg.Notify.Phone,
		AppURL:     cfg.Notify.AppURL,
		Timeout:    cfg.Notify.Timeout,
	}, nil, metrics, logr.Named("notifier"))
	queue := jobs.NewQueue("notify", notifier.HandleJob, jobs.QueueConfig{
		Workers:    1,
		BufferSize: cfg.Notify.QueueSize,
		MaxRetries: -1,
		Logger:     logr.Named("queue"),
	})
	queue.Start(ctx)
	notifier.UseQueue(queue)
	if !notifier.Configured() {
		logr.Warn("moderator notifications disabled: webhook API key not set")
	}

	resourceRepo := repository.NewResourceRepository(db)
	communityRepo := repository.NewCommunityRepository(db)

	resources := service.NewResourceService(resourceRepo, store, cacheSvc, hub, notifier, metrics, logr.Named("resources"), service.ResourceServiceConfig{
		MaxFileSize:  cfg.Upload.MaxFileSizeBytes,
		AllowedMIMEs: cfg.Upload.AllowedMIMEs,
		CacheTTL:     cfg.Browse.CacheTTL,
	})
	votes := service.NewVoteService(resourceRepo, ledger, cacheSvc, metrics, logr.Named("votes"))
	exports := service.NewExportService(resourceRepo, logr.Named("export"))
	moderation := service.NewModerationService(sessions, resourceRepo, store, cfg.Storage.Bucket, hub, cacheSvc, exports, metrics, logr.Named("moderation"))
	screening := service.NewScreeningService(service.ScreeningConfig{
		Enabled:  cfg.Community.ProfanityFilter,
		Wordlist: cfg.Community.ProfanityWordlist,
	}, logr.Named("screening"))
	community := service.NewCommunityService(communityRepo, screening, hub, metrics, logr.Named("community"), cfg.Community.Window)
	admin := service.NewAdminService(sessions, store, notifier, metrics, logr.Named("admin"))

	return &application{
		metrics:    metrics,
		hub:        hub,
		queue:      queue,
		sessions:   sessions,
		resources:  resources,
		votes:      votes,
		moderation: moderation,
		community:  community,
		admin:      admin,
		checks:     checks,
	}
}

// newObjectStore selects the storage backend. The local store is also
// returned so its files can be served.
func newObjectStore(cfg config.StorageConfig) (storage.ObjectStore, *storage.LocalStorage, error) {
	switch cfg.Driver {
	case config.StorageDriverSupabase:
		store, err := storage.NewSupabaseStorage(cfg.SupabaseURL, cfg.Bucket, cfg.ServiceRoleKey, cfg.RequestTimeout, nil)
		return store, nil, err
	case config.StorageDriverLocal, "":
		store, err := storage.NewLocalStorage(cfg.LocalDir, cfg.LocalPublicURL, cfg.Bucket)
		return store, store, err
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
