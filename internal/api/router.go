package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"agro-telemetry-backend/config"
	"agro-telemetry-backend/internal/auth"
	"agro-telemetry-backend/internal/engine"
	"agro-telemetry-backend/internal/mw"
	"agro-telemetry-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.ServerConfig, e *engine.Engine, authSvc *auth.Service, s store.Store, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(e, authSvc, s, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/health", handler.Health)
		api.POST("/auth/login", handler.Login)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)

		authed := api.Group("")
		authed.Use(mw.RequireAuth(authSvc))
		{
			authed.GET("/machines", handler.ListMachines)
			authed.POST("/machines", mw.RequireRole(auth.RoleAdmin), handler.CreateMachine)

			authed.GET("/readings/:machineId", handler.GetReadings)
			// Analytics over a trailing window are safe to cache briefly.
			authed.GET("/analytics/:machineId", caching, handler.GetAnalytics)

			authed.POST("/telemetry", mw.RequireRole("operator"), handler.RecordTelemetry)

			authed.GET("/subscriptions", handler.GetSubscription)
			authed.PUT("/subscriptions", handler.PutSubscription)
			authed.DELETE("/subscriptions", handler.DeleteSubscription)
		}
	}

	return r
}
