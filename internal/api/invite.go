package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lycan-99/devcord/internal/auth"
	"go.uber.org/zap"
)

// InviteHandler issues invite links. The link embeds a signed token
// carrying the new session id; the hub registers the session immediately,
// so a join arriving over the realtime connection finds it waiting.
type InviteHandler struct {
	sessions     SessionCreator
	invites      *auth.Invites
	clientOrigin string
	logger       *zap.Logger
}

func NewInviteHandler(sessions SessionCreator, invites *auth.Invites, clientOrigin string, logger *zap.Logger) *InviteHandler {
	return &InviteHandler{
		sessions:     sessions,
		invites:      invites,
		clientOrigin: clientOrigin,
		logger:       logger,
	}
}

// Create handles POST /create-invite
func (h *InviteHandler) Create(c *gin.Context) {
	sessionID := h.sessions.CreateSession()

	token, err := h.invites.Issue(sessionID)
	if err != nil {
		h.logger.Error("failed to issue invite token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create invite"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"inviteLink": h.clientOrigin + "/join/" + token,
	})
}
