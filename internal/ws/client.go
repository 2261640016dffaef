package ws

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/pairpad/coordinator/internal/rooms"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256
)

// Client is one participant connection on the event channel.
type Client struct {
	ID     string
	UserID string

	hub   *Hub
	coord *rooms.Coordinator
	conn  *websocket.Conn
	send  chan []byte
}

func NewClient(id, userID string, hub *Hub, coord *rooms.Coordinator, conn *websocket.Conn) *Client {
	return &Client{
		ID:     id,
		UserID: userID,
		hub:    hub,
		coord:  coord,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}
}

// Start registers the client with the hub and runs the read/write pumps.
func (c *Client) Start() {
	c.hub.register(c)
	go c.writePump()
	go c.readPump()
}

func (c *Client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		logrus.WithField("connection_id", c.ID).Warn("Send buffer full, dropping message")
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
		c.coord.HandleDisconnect(context.Background(), c.ID)
		logrus.WithFields(logrus.Fields{
			"connection_id": c.ID,
			"user_id":       c.UserID,
		}).Info("Connection closed")
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).WithField("connection_id", c.ID).Warn("WebSocket error")
			}
			break
		}
		c.dispatch(raw)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logrus.WithError(err).WithField("connection_id", c.ID).Warn("Failed to write message")
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
