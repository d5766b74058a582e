// Package router wires the gin engine: middleware, health, metrics and the
// versioned verification API.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/DealDocs/dealdocs-backend/config"
	"github.com/DealDocs/dealdocs-backend/handlers"
	"github.com/DealDocs/dealdocs-backend/middleware"
)

// Dependencies holds everything required for setting up routes.
type Dependencies struct {
	Config              *config.Config
	VerificationHandler *handlers.VerificationHandler
	HealthHandler       *handlers.HealthHandler
	Logger              *zap.SugaredLogger
}

// SetupRouter configures and returns the main gin engine.
func SetupRouter(deps Dependencies) *gin.Engine {
	if deps.Config.Server.Environment == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))

	r.GET("/health", deps.HealthHandler.ReadinessCheck)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		deals := v1.Group("/deals")
		{
			deals.POST("/:id/verify", deps.VerificationHandler.VerifyDeal)
			deals.GET("/:id/review-items", deps.VerificationHandler.ListReviewItems)
			deals.POST("/:id/review-items/:itemID/resolve", deps.VerificationHandler.ResolveReviewItem)
		}
	}

	return r
}
