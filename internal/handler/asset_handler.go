package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lcutils/internal/domain"
	"lcutils/internal/service"
)

// AssetHandler handles asset catalog endpoints.
type AssetHandler struct {
	assets service.AssetService
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(assets service.AssetService) *AssetHandler {
	return &AssetHandler{assets: assets}
}

// List handles GET /api/v1/assets?project=&folder=
func (h *AssetHandler) List(c *gin.Context) {
	project := c.Query("project")
	if project == "" {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "project is required")
		return
	}

	assets, err := h.assets.ListAssets(c.Request.Context(), project, c.Query("folder"))
	if err != nil {
		HandleError(c, err)
		return
	}
	if assets == nil {
		assets = []domain.Asset{}
	}
	RespondOK(c, assets)
}
