package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/bitconnect/vault-api/api/swagger"
	"github.com/bitconnect/vault-api/internal/handler"
	"github.com/bitconnect/vault-api/internal/middleware"
	"github.com/bitconnect/vault-api/pkg/config"
	"github.com/bitconnect/vault-api/pkg/logger"
	corsmiddleware "github.com/bitconnect/vault-api/pkg/middleware/cors"
	reqidmiddleware "github.com/bitconnect/vault-api/pkg/middleware/requestid"
	"github.com/bitconnect/vault-api/pkg/storage"
)

const multipartOverhead = 1 << 20

func newRouter(cfg *config.Config, logr *zap.Logger, app *application, localStore *storage.LocalStorage) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(app.metrics))

	metricsHandler := handler.NewMetricsHandler(app.metrics, app.checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	if localStore != nil {
		r.Static("/storage/v1/object/public/"+localStore.Bucket(), localStore.Dir())
	}

	taxonomyHandler := handler.NewTaxonomyHandler()
	resourceHandler := handler.NewResourceHandler(app.resources, app.votes, cfg.Upload.MaxFileSizeBytes+multipartOverhead)
	moderationHandler := handler.NewModerationHandler(app.sessions, app.moderation, app.hub, app.metrics, cfg.Stream.Heartbeat)
	communityHandler := handler.NewCommunityHandler(app.community, app.hub, app.metrics, cfg.Stream.Heartbeat)
	adminHandler := handler.NewAdminHandler(app.admin)

	legacy := r.Group("/api")
	legacy.POST("/admin/delete-file", adminHandler.DeleteFile)
	legacy.POST("/notify-admin", adminHandler.NotifyAdmin)

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta())
	api.GET("/taxonomy", taxonomyHandler.Catalog)

	resources := api.Group("/resources")
	resources.POST("", resourceHandler.Upload)
	resources.GET("", resourceHandler.Browse)
	resources.GET("/:id", resourceHandler.Get)
	resources.GET("/:id/vote", middleware.VoterID(cfg.Env == config.EnvProduction), resourceHandler.VoteState)
	resources.POST("/:id/vote", middleware.VoterID(cfg.Env == config.EnvProduction), resourceHandler.Vote)

	api.POST("/admin/session", moderationHandler.OpenSession)
	moderation := api.Group("/admin/resources")
	moderation.Use(middleware.ModerationSession(app.sessions))
	moderation.GET("", moderationHandler.List)
	moderation.GET("/stream", moderationHandler.Stream)
	moderation.GET("/export", moderationHandler.Export)
	moderation.POST("/:id/approve", moderationHandler.Approve)
	moderation.DELETE("/:id", moderationHandler.Delete)

	community := api.Group("/community")
	community.GET("/posts", communityHandler.ListPosts)
	community.POST("/posts", communityHandler.CreatePost)
	community.GET("/posts/:id/replies", communityHandler.ListReplies)
	community.POST("/posts/:id/replies", communityHandler.CreateReply)
	community.GET("/stream", communityHandler.Stream)

	return r
}
