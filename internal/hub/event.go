package hub

import (
	"encoding/json"
	"fmt"

	"github.com/lycan-99/devcord/internal/models"
)

// Event is the wire envelope for everything crossing a realtime
// connection, in both directions.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Client → hub event types.
const (
	EventSendMessage   = "send-message"
	EventCreateProject = "create-project"
	EventJoinSession   = "join-session"
)

// Hub → client event types. ReceiveMessage goes to every connection
// except the sender; the sender gets MessageAck with the stored message
// instead, so it learns the assigned id without relying on its own echo.
const (
	EventReceiveMessage = "receive-message"
	EventMessageAck     = "message-ack"
	EventMessageError   = "message-error"
	EventMessageDeleted = "message-deleted"
	EventProjectCreated = "project-created"
	EventProjectError   = "project-error"
	EventProjectDeleted = "project-deleted"
	EventChannelCreated = "channel-created"
	EventChannelDeleted = "channel-deleted"
	EventSessionJoined  = "session-joined"
	EventSessionError   = "session-error"
)

// SendMessagePayload carries an outgoing message. ProjectID and ChannelID
// travel as separate fields; ChannelKey is informational and never parsed
// (slugs may contain hyphens, making the compound key ambiguous to split).
type SendMessagePayload struct {
	User       models.UserRef `json:"user"`
	Text       string         `json:"text"`
	Time       string         `json:"time"`
	ProjectID  string         `json:"projectId"`
	ChannelID  string         `json:"channelId"`
	ChannelKey string         `json:"channelKey"`
}

// MessagePayload is the stored message as broadcast, with the compound
// channel key precomputed for reconciler map addressing.
type MessagePayload struct {
	models.Message
	ChannelKey string `json:"channelKey"`
}

// CreateProjectPayload carries a project creation request. ID and
// Channels are optional; the hub derives the slug from Name and fills in
// the default channels when they are omitted.
type CreateProjectPayload struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Icon     string   `json:"icon"`
	Channels []string `json:"channels"`
}

type JoinSessionPayload struct {
	Token string `json:"token"`
}

type SessionJoinedPayload struct {
	SessionID string `json:"sessionId"`
}

type MessageDeletedPayload struct {
	MessageID  int64  `json:"messageId"`
	ChannelKey string `json:"channelKey"`
}

// ChannelChangedPayload is shared by channel-created and channel-deleted.
type ChannelChangedPayload struct {
	ProjectID string `json:"projectId"`
	ChannelID string `json:"channelId"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

// NewEvent marshals payload into an envelope. Marshaling our own payload
// structs cannot realistically fail, so the panic path stays theoretical.
func NewEvent(eventType string, payload any) Event {
	raw, err := json.Marshal(payload)
	if err != nil {
		panic(fmt.Sprintf("marshal %s payload: %v", eventType, err))
	}
	return Event{Type: eventType, Payload: raw}
}
