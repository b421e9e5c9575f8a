package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lycan-99/devcord/internal/hub"
	"github.com/lycan-99/devcord/internal/models"
	"github.com/lycan-99/devcord/internal/store"
	"go.uber.org/zap"
)

// ProjectHandler serves project and channel structure mutations. These
// ride request/response rather than the realtime connection on purpose:
// a delete needs a definitive success or failure back to the UI action
// that triggered it. The hub is only notified after the commit succeeds,
// so a failed write is never broadcast.
type ProjectHandler struct {
	projects store.ProjectStore
	notifier Notifier
	logger   *zap.Logger
}

func NewProjectHandler(projects store.ProjectStore, notifier Notifier, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, notifier: notifier, logger: logger}
}

// List handles GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projects.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list projects", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list projects"})
		return
	}
	c.JSON(http.StatusOK, projects)
}

// Delete handles DELETE /api/projects/:projectId
func (h *ProjectHandler) Delete(c *gin.Context) {
	projectID := c.Param("projectId")

	// Validation before any write: the main project is permanent.
	if projectID == models.MainProject {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete the main project"})
		return
	}

	if err := h.projects.Delete(c.Request.Context(), projectID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		h.logger.Error("failed to delete project",
			zap.String("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete project"})
		return
	}

	h.notifier.Notify(hub.NewEvent(hub.EventProjectDeleted, projectID))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type createChannelRequest struct {
	ChannelID string `json:"channelId" binding:"required"`
}

// CreateChannel handles POST /api/projects/:projectId/channels
func (h *ProjectHandler) CreateChannel(c *gin.Context) {
	var req createChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	projectID := c.Param("projectId")

	err := h.projects.AddChannel(c.Request.Context(), projectID, req.ChannelID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	case errors.Is(err, store.ErrDuplicate):
		c.JSON(http.StatusBadRequest, gin.H{"error": "channel already exists"})
		return
	case err != nil:
		h.logger.Error("failed to create channel",
			zap.String("project_id", projectID),
			zap.String("channel_id", req.ChannelID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create channel"})
		return
	}

	h.notifier.Notify(hub.NewEvent(hub.EventChannelCreated, hub.ChannelChangedPayload{
		ProjectID: projectID,
		ChannelID: req.ChannelID,
	}))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteChannel handles DELETE /api/projects/:projectId/channels/:channelId
func (h *ProjectHandler) DeleteChannel(c *gin.Context) {
	projectID := c.Param("projectId")
	channelID := c.Param("channelId")

	// The general channel is permanent within every project.
	if channelID == models.GeneralChannel {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete the general channel"})
		return
	}

	if err := h.projects.RemoveChannel(c.Request.Context(), projectID, channelID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		h.logger.Error("failed to delete channel",
			zap.String("project_id", projectID),
			zap.String("channel_id", channelID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete channel"})
		return
	}

	h.notifier.Notify(hub.NewEvent(hub.EventChannelDeleted, hub.ChannelChangedPayload{
		ProjectID: projectID,
		ChannelID: channelID,
	}))
	c.JSON(http.StatusOK, gin.H{"success": true})
}
