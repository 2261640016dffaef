package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/pairpad/coordinator/internal/rooms"
	"github.com/pairpad/coordinator/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checking is handled by middleware
		return true
	},
}

// HandleEvents upgrades the connection and attaches it to the event channel.
// Browsers can't set headers on a WebSocket dial, so the JWT arrives as a
// query parameter.
func HandleEvents(hub *ws.Hub, coord *rooms.Coordinator, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token is required"})
			return
		}

		userID, err := ParseToken(token, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logrus.WithError(err).Warn("Failed to upgrade connection")
			return
		}

		connectionID := uuid.New().String()
		client := ws.NewClient(connectionID, userID, hub, coord, conn)
		client.Start()

		logrus.WithFields(logrus.Fields{
			"connection_id": connectionID,
			"user_id":       userID,
		}).Info("Connection established")
	}
}
