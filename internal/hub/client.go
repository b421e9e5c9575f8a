package hub

import (
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write an event to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second

	// Ping period must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Messages carry unbounded markdown, but a megabyte of chat is a
	// misbehaving client.
	maxMessageSize = 1 << 20

	// Outbound buffer per connection. A client that falls this far
	// behind the broadcast stream is disconnected rather than allowed
	// to stall the fan-out.
	sendBuffer = 64
)

// Client is one realtime connection. The hub never touches the websocket
// directly: readPump feeds inbound events to the hub loop, writePump
// drains the send channel, and those two goroutines are the only ones
// that ever call the conn.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan Event
}

// readPump relays decoded events from the connection to the hub until the
// peer goes away or sends garbage.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var ev Event
		if err := c.conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("connection read failed",
					zap.String("conn_id", c.id),
					zap.Error(err),
				)
			}
			return
		}
		c.hub.inbound <- inboundEvent{client: c, event: ev}
	}
}

// writePump drains the send channel and keeps the connection alive with
// pings. A closed send channel (the hub dropped us) sends a close frame.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
