package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lycan-99/devcord/internal/hub"
	"github.com/lycan-99/devcord/internal/models"
	"github.com/lycan-99/devcord/internal/store"
	"go.uber.org/zap"
)

// Renderer turns raw markdown-capable message text into HTML that is safe
// to embed. Rendering is an external collaborator — the core never
// depends on what it produces.
type Renderer interface {
	Render(text string) string
}

type MessageHandler struct {
	messages store.MessageStore
	notifier Notifier
	renderer Renderer
	logger   *zap.Logger
}

func NewMessageHandler(messages store.MessageStore, notifier Notifier, renderer Renderer, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{messages: messages, notifier: notifier, renderer: renderer, logger: logger}
}

// renderedMessage is a message plus its rendered HTML, returned when the
// caller asks for ?format=html.
type renderedMessage struct {
	models.Message
	HTML string `json:"html"`
}

// List handles GET /api/messages/:projectId/:channelId
//
// This read is the client's resynchronization point: the reconciler
// replaces its whole list for the channel key with this response on every
// load and channel switch, healing any broadcast it missed.
func (h *MessageHandler) List(c *gin.Context) {
	projectID := c.Param("projectId")
	channelID := c.Param("channelId")

	messages, err := h.messages.ListByChannel(c.Request.Context(), projectID, channelID)
	if err != nil {
		h.logger.Error("failed to list messages",
			zap.String("project_id", projectID),
			zap.String("channel_id", channelID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list messages"})
		return
	}

	if c.Query("format") == "html" {
		rendered := make([]renderedMessage, 0, len(messages))
		for _, m := range messages {
			rendered = append(rendered, renderedMessage{Message: m, HTML: h.renderer.Render(m.Text)})
		}
		c.JSON(http.StatusOK, rendered)
		return
	}

	c.JSON(http.StatusOK, messages)
}

// Delete handles DELETE /api/messages/:messageId
func (h *MessageHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("messageId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	deleted, err := h.messages.Delete(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
			return
		}
		h.logger.Error("failed to delete message", zap.Int64("message_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete message"})
		return
	}

	h.notifier.Notify(hub.NewEvent(hub.EventMessageDeleted, hub.MessageDeletedPayload{
		MessageID:  deleted.ID,
		ChannelKey: deleted.ChannelKey(),
	}))
	c.JSON(http.StatusOK, gin.H{"success": true})
}
