package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lycan-99/devcord/internal/preview"
	"go.uber.org/zap"
)

// PreviewHandler proxies link-metadata extraction for the client, so the
// browser never talks to the upstream service (or leaks its key) itself.
type PreviewHandler struct {
	fetcher *preview.Fetcher
	logger  *zap.Logger
}

func NewPreviewHandler(fetcher *preview.Fetcher, logger *zap.Logger) *PreviewHandler {
	return &PreviewHandler{fetcher: fetcher, logger: logger}
}

// Get handles GET /api/link-preview?url=...
func (h *PreviewHandler) Get(c *gin.Context) {
	target := c.Query("url")
	if target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url parameter is required"})
		return
	}

	meta := h.fetcher.Fetch(c.Request.Context(), target)
	if meta == nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "preview unavailable"})
		return
	}
	c.JSON(http.StatusOK, meta)
}
