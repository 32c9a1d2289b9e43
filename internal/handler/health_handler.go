package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lcutils/internal/port"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	credentials port.CredentialProvider
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(credentials port.CredentialProvider) *HealthHandler {
	return &HealthHandler{credentials: credentials}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz. The service is ready once a signing identity
// can be resolved.
func (h *HealthHandler) Readiness(c *gin.Context) {
	id, err := h.credentials.Identity(c.Request.Context())
	if err != nil || id == nil || id.ServiceAccountEmail() == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "no signing identity"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service_account": id.ServiceAccountEmail()})
}
