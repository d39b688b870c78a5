package api

import (
    sentrygin "github.com/getsentry/sentry-go/gin"
    "github.com/gin-contrib/gzip"
    "github.com/gin-gonic/gin"
    swaggerFiles "github.com/swaggo/files"
    ginSwagger "github.com/swaggo/gin-swagger"
    "go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
    "golang.org/x/time/rate"

    "github.com/d60-Lab/ticket-queue/config"
    _ "github.com/d60-Lab/ticket-queue/docs"
    "github.com/d60-Lab/ticket-queue/internal/api/handler"
    "github.com/d60-Lab/ticket-queue/internal/api/middleware"
)

// NewRouter 组装 gin 引擎：恢复、压缩、链路追踪、限流、鉴权、业务路由
func NewRouter(cfg *config.Config, h *handler.Handler) *gin.Engine {
    if cfg.Env == "production" {
        gin.SetMode(gin.ReleaseMode)
    }

    r := gin.New()
    r.Use(gin.Logger(), gin.Recovery())
    r.Use(gzip.Gzip(gzip.DefaultCompression))
    r.Use(otelgin.Middleware("ticket-queue"))
    if cfg.Observability.SentryDSN != "" {
        r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
    }

    r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
    r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

    api := r.Group("/api/v1")

    // 主站侧接口
    api.POST("/events", h.CreateEvent)
    api.GET("/events/:event_id", h.GetEvent)
    api.POST("/payments/webhook", middleware.WebhookAuth(cfg.Auth.WebhookTokenHash), h.PaymentWebhook)

    // 用户侧接口：开售期间位次轮询是大头，限流按调用方收口
    user := api.Group("")
    user.Use(middleware.Auth(cfg.Auth.JWTSecret))
    user.Use(middleware.RateLimit(rate.Limit(10), 20))
    user.POST("/events/:event_id/queue", h.RequestSpot)
    user.POST("/events/:event_id/queue/additional", h.RequestAdditionalSpot)
    user.GET("/events/:event_id/queue", h.GetPosition)
    user.DELETE("/events/:event_id/queue", h.Release)
    user.GET("/tickets", h.ListMyTickets)

    return r
}
