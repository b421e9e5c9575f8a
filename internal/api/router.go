package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lycan-99/devcord/internal/hub"
)

// Notifier is the slice of the hub the REST handlers need: fan an event
// out to every connection after a store commit. The hub satisfies it.
type Notifier interface {
	Notify(ev hub.Event)
}

// SessionCreator registers a new invite session. Also the hub.
type SessionCreator interface {
	CreateSession() string
}

// Routes wires every HTTP route onto the engine. The realtime endpoint
// lives alongside the REST routes — same port, same process, single
// fan-out point.
func Routes(
	r *gin.Engine,
	h *hub.Hub,
	projects *ProjectHandler,
	messages *MessageHandler,
	invites *InviteHandler,
	previews *PreviewHandler,
) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ws", func(c *gin.Context) {
		h.ServeWS(c.Writer, c.Request)
	})

	r.POST("/create-invite", invites.Create)

	api := r.Group("/api")
	api.GET("/projects", projects.List)
	api.DELETE("/projects/:projectId", projects.Delete)
	api.POST("/projects/:projectId/channels", projects.CreateChannel)
	api.DELETE("/projects/:projectId/channels/:channelId", projects.DeleteChannel)
	api.GET("/messages/:projectId/:channelId", messages.List)
	api.DELETE("/messages/:messageId", messages.Delete)
	api.GET("/link-preview", previews.Get)
}

// CORS allows the browser client served from clientOrigin to call the
// API.
func CORS(clientOrigin string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins: []string{clientOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Content-Type"},
		MaxAge:       12 * time.Hour,
	})
}
