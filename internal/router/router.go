package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/seller-settlement/internal/config"
	adminhandlers "github.com/seller-settlement/internal/http/handlers/admin"
	"github.com/seller-settlement/internal/http/response"
	"github.com/seller-settlement/internal/logger"
	"github.com/seller-settlement/internal/metrics"
	"github.com/seller-settlement/internal/provider"

	"github.com/gin-gonic/gin"
)

const defaultMetricsPath = "/metrics"

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	adminHandler := adminhandlers.New(c)
	generateLimit := buildGenerateRateLimit(cfg, c)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/health", healthHandler(c))
	if cfg.Metrics.Enabled {
		path := strings.TrimSpace(cfg.Metrics.Path)
		if path == "" {
			path = defaultMetricsPath
		}
		r.GET(path, gin.WrapH(metrics.Handler()))
	}

	apiV1 := r.Group("/api/v1")
	{
		admin := apiV1.Group("/admin")
		{
			admin.GET("/sellers", adminHandler.GetAdminSellers)

			admin.GET("/commission-policies", adminHandler.GetAdminCommissionPolicies)
			admin.POST("/commission-policies", adminHandler.CreateCommissionPolicy)
			admin.GET("/commission-policies/resolve", adminHandler.ResolveCommissionPolicy)
			admin.GET("/commission-policies/:id", adminHandler.GetAdminCommissionPolicy)
			admin.PUT("/commission-policies/:id", adminHandler.UpdateCommissionPolicy)
			admin.POST("/commission-policies/:id/deactivate", adminHandler.DeactivateCommissionPolicy)

			admin.GET("/settlement-periods", adminHandler.GetAdminSettlementPeriods)
			admin.POST("/settlement-periods", adminHandler.CreateSettlementPeriod)
			admin.GET("/settlement-periods/:id", adminHandler.GetAdminSettlementPeriod)
			admin.GET("/settlement-periods/:id/summary", adminHandler.GetSettlementPeriodSummary)
			admin.POST("/settlement-periods/:id/complete", adminHandler.CompleteSettlementPeriod)
			admin.POST("/settlement-periods/:id/generate", generateLimit, adminHandler.GenerateSettlementPeriod)
			admin.POST("/settlement-periods/:id/sellers/:seller_id/generate", generateLimit, adminHandler.GenerateSellerSettlement)

			admin.GET("/settlements", adminHandler.GetAdminSettlements)
			admin.GET("/settlements/:id", adminHandler.GetAdminSettlement)
			admin.POST("/settlements/:id/recalculate", generateLimit, adminHandler.RecalculateSettlement)
			admin.POST("/settlements/:id/hold", adminHandler.HoldSettlement)
			admin.POST("/settlements/:id/resume", adminHandler.ResumeSettlement)
			admin.POST("/settlements/:id/complete", adminHandler.CompleteSettlement)
			admin.POST("/settlements/:id/cancel", adminHandler.CancelSettlement)
			admin.GET("/settlements/:id/export", adminHandler.ExportSettlement)
		}
	}

	return r
}

// buildGenerateRateLimit 生成/重算接口限流，优先使用 Redis 固定窗口，未启用时退化为进程内令牌桶
func buildGenerateRateLimit(cfg *config.Config, c *provider.Container) gin.HandlerFunc {
	if c != nil && c.Redis.Enabled() {
		return RateLimitMiddleware(c.Redis.Client(), RateLimitRule{
			Prefix:        c.Redis.Key("rate:generate"),
			WindowSeconds: cfg.RateLimit.WindowSeconds,
			MaxRequests:   cfg.RateLimit.MaxRequests,
		}, KeyByRouteAndIP)
	}
	return LocalRateLimitMiddleware(cfg.RateLimit.LocalRPS, cfg.RateLimit.LocalBurst, KeyByRouteAndIP)
}

func healthHandler(c *provider.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		status := gin.H{
			"database": "ok",
			"redis":    "disabled",
			"queue":    "disabled",
			"time":     time.Now().UTC().Format(time.RFC3339),
		}
		healthy := true
		if c != nil && c.DB != nil {
			if sqlDB, err := c.DB.DB(); err != nil || sqlDB.PingContext(ctx.Request.Context()) != nil {
				status["database"] = "down"
				healthy = false
			}
		}
		if c != nil && c.Redis.Enabled() {
			status["redis"] = "ok"
			if err := c.Redis.Ping(ctx.Request.Context()); err != nil {
				status["redis"] = "down"
				healthy = false
			}
		}
		if c != nil && c.QueueClient.Enabled() {
			status["queue"] = "ok"
		}
		if !healthy {
			ctx.JSON(http.StatusServiceUnavailable, response.Response{
				StatusCode: response.CodeUnavailable,
				Msg:        "unhealthy",
				Data:       status,
			})
			return
		}
		response.Success(ctx, status)
	}
}
