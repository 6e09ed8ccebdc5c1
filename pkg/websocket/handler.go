package websocket

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Handler upgrades authenticated dashboard requests into hub clients.
type Handler struct {
	hub *Hub
}

func NewHandler() *Handler {
	hub := NewHub()
	go hub.Run()
	return &Handler{hub: hub}
}

func (h *Handler) GetHub() *Hub {
	return h.hub
}

// HandleWebSocket expects the auth middleware to have stored the admin
// identity on the gin context before the upgrade happens.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	adminID, ok := c.Get("admin_id")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, ok := adminID.(primitive.ObjectID)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid admin id"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}

	client := NewClient(h.hub, conn, id, c.GetString("branch_id"))
	h.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// SendAdminNotification pushes an ad-hoc event to a single admin's open
// sessions.
func (h *Handler) SendAdminNotification(adminID primitive.ObjectID, eventType string, data map[string]interface{}) {
	h.hub.SendToAdmin(adminID, Message{
		Type:      eventType,
		Timestamp: getCurrentTimestamp(),
		Data:      data,
	})
}
