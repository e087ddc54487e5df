package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hqnguyen/ingest-be/internal/api/handler"
)

// Role names understood by the capability check
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// Health holds the optional dependency probes for the health endpoint
type Health struct {
	DB interface {
		HealthCheck(ctx context.Context) error
	}
	Rabbit interface {
		IsConnected() bool
	}
}

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies, health *Health) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())
	if deps.Metrics != nil {
		r.Use(MetricsMiddleware(deps.Metrics))
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	r.GET("/health", healthHandler(health))

	ingestionHandler := handler.NewIngestionHandler(deps)
	documentHandler := handler.NewDocumentHandler(deps)

	v1 := r.Group("/api/v1")
	{
		documents := v1.Group("/documents")
		{
			documents.POST("", RequireRole(RoleAdmin, RoleEditor), documentHandler.CreateDocument)
			documents.GET("", RequireRole(RoleAdmin, RoleEditor, RoleViewer), documentHandler.ListDocuments)
			documents.GET("/:document_id", RequireRole(RoleAdmin, RoleEditor, RoleViewer), documentHandler.GetDocument)
			documents.GET("/:document_id/chunks", RequireRole(RoleAdmin, RoleEditor, RoleViewer), documentHandler.ListChunks)
			documents.DELETE("/:document_id", RequireRole(RoleAdmin), documentHandler.DeleteDocument)
		}

		ingestion := v1.Group("/ingestion")
		{
			ingestion.POST("/trigger", RequireRole(RoleAdmin, RoleEditor), ingestionHandler.TriggerIngestion)
			ingestion.GET("/status", RequireRole(RoleAdmin, RoleEditor, RoleViewer), ingestionHandler.ListJobStatus)
			ingestion.GET("/status/:job_id", RequireRole(RoleAdmin, RoleEditor, RoleViewer), ingestionHandler.GetJobStatus)
		}
	}

	return r
}

func healthHandler(health *Health) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{
			"status":  "healthy",
			"service": "ingestion-api-service",
		}

		if health != nil {
			if health.DB != nil {
				if err := health.DB.HealthCheck(c.Request.Context()); err != nil {
					status = http.StatusServiceUnavailable
					body["status"] = "unhealthy"
					body["database"] = err.Error()
				}
			}
			if health.Rabbit != nil && !health.Rabbit.IsConnected() {
				status = http.StatusServiceUnavailable
				body["status"] = "unhealthy"
				body["rabbitmq"] = "not connected"
			}
		}

		c.JSON(status, body)
	}
}
