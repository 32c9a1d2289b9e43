package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"lcutils/internal/handler"
	"lcutils/internal/middleware"
	"lcutils/internal/service"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Health    *handler.HealthHandler
	SignedURL *handler.SignedURLHandler
	Blob      *handler.BlobHandler
	Asset     *handler.AssetHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	authSvc service.AuthService,
	h Handlers,
	allowedOrigins []string,
	logger *slog.Logger,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	// Protected routes - require valid JWT
	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(authSvc))

	v1.POST("/signed-urls", h.SignedURL.Create)

	buckets := v1.Group("/buckets/:bucket")
	buckets.GET("/objects", h.Blob.ListObjects)
	buckets.DELETE("/objects/*key", h.Blob.DeleteObject)
	buckets.GET("/tif-uris", h.Blob.ListTIFURIs)
	buckets.GET("/export/csv", h.Blob.ExportCSV)
	buckets.POST("/input-groups", h.Blob.UploadInputGroup)

	v1.POST("/objects/copy", h.Blob.CopyObject)

	v1.GET("/assets", h.Asset.List)

	return r
}
