package hub

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lycan-99/devcord/internal/avatar"
	"github.com/lycan-99/devcord/internal/models"
	"github.com/lycan-99/devcord/internal/store"
	"go.uber.org/zap"
)

// How often empty sessions are swept against the TTL.
const sweepInterval = 10 * time.Minute

// TokenVerifier checks an invite token and returns the session id it
// carries. Implemented by the auth package; an interface here keeps the
// hub free of any token-format knowledge.
type TokenVerifier interface {
	Verify(token string) (sessionID string, err error)
}

type inboundEvent struct {
	client *Client
	event  Event
}

// Hub is the single realtime fan-out point. One goroutine (Run) owns the
// connection set and processes every mutation in arrival order: a
// send-message is persisted and then broadcast before the next event is
// touched, so broadcast order always equals store commit order and every
// observer sees the same relative order.
type Hub struct {
	projects store.ProjectStore
	messages store.MessageStore
	verifier TokenVerifier
	sessions *SessionTable
	logger   *zap.Logger

	sessionTTL time.Duration

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	inbound    chan inboundEvent
	notify     chan Event

	// done is closed when Run returns, releasing any goroutine blocked
	// on register or unregister.
	done chan struct{}

	upgrader websocket.Upgrader
}

func New(projects store.ProjectStore, messages store.MessageStore, verifier TokenVerifier, sessionTTL time.Duration, logger *zap.Logger) *Hub {
	return &Hub{
		projects:   projects,
		messages:   messages,
		verifier:   verifier,
		sessions:   NewSessionTable(),
		logger:     logger,
		sessionTTL: sessionTTL,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inboundEvent),
		notify:     make(chan Event, 256),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			// The browser client may be served from any origin in
			// development; CORS policy lives at the HTTP layer.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Run processes hub traffic until ctx is cancelled. It is the only
// goroutine that reads or writes the clients map.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	sweep := time.NewTicker(sweepInterval)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			return

		case c := <-h.register:
			h.clients[c] = true
			h.logger.Info("connection registered", zap.String("conn_id", c.id))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.sessions.Prune(c.id)
				h.logger.Info("connection closed", zap.String("conn_id", c.id))
			}

		case in := <-h.inbound:
			h.handleInbound(ctx, in.client, in.event)

		case ev := <-h.notify:
			h.broadcast(ev, nil)

		case <-sweep.C:
			if n := h.sessions.Sweep(h.sessionTTL); n > 0 {
				h.logger.Info("swept idle sessions", zap.Int("removed", n))
			}
		}
	}
}

// ServeWS upgrades an HTTP request into a hub connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &Client{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan Event, sendBuffer),
	}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// Notify fans an event out to every connection. REST handlers call this
// after their store commit succeeds; the fan-out happens on the hub loop,
// serialized with message sends.
func (h *Hub) Notify(ev Event) {
	h.notify <- ev
}

// CreateSession registers a new invite session and returns its id.
func (h *Hub) CreateSession() string {
	return h.sessions.Create()
}

// Sessions exposes the session table (invite issuance, tests).
func (h *Hub) Sessions() *SessionTable {
	return h.sessions
}

func (h *Hub) handleInbound(ctx context.Context, c *Client, ev Event) {
	switch ev.Type {
	case EventSendMessage:
		h.handleSend(ctx, c, ev)
	case EventCreateProject:
		h.handleCreateProject(ctx, c, ev)
	case EventJoinSession:
		h.handleJoinSession(c, ev)
	default:
		h.logger.Warn("unknown event type",
			zap.String("conn_id", c.id),
			zap.String("type", ev.Type),
		)
	}
}

// handleSend persists the message and fans it out: message-ack with the
// stored row (assigned id included) to the sender, receive-message to
// everyone else. On store failure only the sender learns anything.
func (h *Hub) handleSend(ctx context.Context, c *Client, ev Event) {
	var p SendMessagePayload
	if err := unmarshalPayload(ev, &p); err != nil {
		h.sendTo(c, NewEvent(EventMessageError, ErrorPayload{Error: "malformed send-message payload"}))
		return
	}
	if p.Text == "" || p.ProjectID == "" || p.ChannelID == "" {
		h.sendTo(c, NewEvent(EventMessageError, ErrorPayload{Error: "text, projectId and channelId are required"}))
		return
	}

	if p.User.Avatar == "" {
		// Senders without a chosen avatar get the deterministic
		// generated one, so the same username always renders the same.
		p.User.Avatar = avatar.URL(p.User.Username)
	}

	stored, err := h.messages.Create(ctx, models.Message{
		User:      p.User,
		Text:      p.Text,
		Time:      p.Time,
		ProjectID: p.ProjectID,
		ChannelID: p.ChannelID,
	})
	if err != nil {
		h.logger.Error("persist message failed",
			zap.String("conn_id", c.id),
			zap.Error(err),
		)
		h.sendTo(c, NewEvent(EventMessageError, ErrorPayload{Error: "failed to save message"}))
		return
	}

	payload := MessagePayload{Message: *stored, ChannelKey: stored.ChannelKey()}
	h.sendTo(c, NewEvent(EventMessageAck, payload))
	h.broadcast(NewEvent(EventReceiveMessage, payload), c)
}

func (h *Hub) handleCreateProject(ctx context.Context, c *Client, ev Event) {
	var p CreateProjectPayload
	if err := unmarshalPayload(ev, &p); err != nil {
		h.sendTo(c, NewEvent(EventProjectError, ErrorPayload{Error: "malformed create-project payload"}))
		return
	}
	if p.Name == "" {
		h.sendTo(c, NewEvent(EventProjectError, ErrorPayload{Error: "project name is required"}))
		return
	}

	proj := models.Project{
		ID:       p.ID,
		Name:     p.Name,
		Icon:     p.Icon,
		Channels: p.Channels,
	}
	if proj.ID == "" {
		proj.ID = models.Slugify(p.Name)
	}
	if proj.ID == "" {
		// A whitespace-only name slugifies to nothing; a project with an
		// empty id could never be addressed or deleted over REST.
		h.sendTo(c, NewEvent(EventProjectError, ErrorPayload{Error: "project name is required"}))
		return
	}
	if len(proj.Channels) == 0 {
		proj.Channels = append([]string(nil), models.DefaultChannels...)
	}
	if !proj.HasChannel(models.GeneralChannel) {
		// Every project carries a general channel, whatever the client asked for.
		proj.Channels = append([]string{models.GeneralChannel}, proj.Channels...)
	}

	created, err := h.projects.Create(ctx, proj)
	if err != nil {
		h.logger.Error("persist project failed",
			zap.String("project_id", proj.ID),
			zap.Error(err),
		)
		h.sendTo(c, NewEvent(EventProjectError, ErrorPayload{Error: "failed to create project"}))
		return
	}

	// The creator is included: its reconciler registers the project from
	// the same event as everyone else's.
	h.broadcast(NewEvent(EventProjectCreated, created), nil)
}

func (h *Hub) handleJoinSession(c *Client, ev Event) {
	var p JoinSessionPayload
	if err := unmarshalPayload(ev, &p); err != nil || p.Token == "" {
		h.sendTo(c, NewEvent(EventSessionError, ErrorPayload{Error: "invite token is required"}))
		return
	}

	sessionID, err := h.verifier.Verify(p.Token)
	if err != nil {
		h.logger.Warn("invite token rejected", zap.String("conn_id", c.id), zap.Error(err))
		h.sendTo(c, NewEvent(EventSessionError, ErrorPayload{Error: "invalid invite token"}))
		return
	}
	if err := h.sessions.Join(sessionID, c.id); err != nil {
		h.sendTo(c, NewEvent(EventSessionError, ErrorPayload{Error: "session no longer exists"}))
		return
	}

	h.sendTo(c, NewEvent(EventSessionJoined, SessionJoinedPayload{SessionID: sessionID}))
}

// broadcast queues ev on every connection except skip. A connection whose
// buffer is full is dropped on the spot — better than letting one stalled
// reader hold up the fan-out.
func (h *Hub) broadcast(ev Event, skip *Client) {
	for c := range h.clients {
		if c == skip {
			continue
		}
		h.sendTo(c, ev)
	}
}

func (h *Hub) sendTo(c *Client, ev Event) {
	// A dropped client's readPump stays alive until its conn closes, so
	// a late inbound event can still name it. Its send channel is closed
	// by then; sending would panic the loop.
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- ev:
	default:
		delete(h.clients, c)
		close(c.send)
		h.sessions.Prune(c.id)
		h.logger.Warn("dropping slow connection", zap.String("conn_id", c.id))
	}
}

func unmarshalPayload(ev Event, v any) error {
	if len(ev.Payload) == 0 {
		return errors.New("empty payload")
	}
	return json.Unmarshal(ev.Payload, v)
}
