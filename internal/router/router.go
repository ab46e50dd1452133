package router

import (
	"github.com/gin-gonic/gin"

	"claimdesk/internal/handler"
	"claimdesk/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(extractH *handler.ExtractHandler, healthH *handler.HealthHandler) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	v1.POST("/extract", extractH.Extract)
	v1.POST("/extract/batch", extractH.ExtractBatch)
	v1.GET("/outcomes", extractH.ListOutcomes)
	v1.GET("/outcomes/:id", extractH.GetOutcome)

	return r
}
