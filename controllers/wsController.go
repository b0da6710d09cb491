package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"go-restaurant-pos/notify"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Displays run on the restaurant LAN and may be served from any origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWebSocket attaches a kitchen display to the hub for as long as the
// connection stays up.
func HandleWebSocket(hub *notify.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade has already answered the client.
			c.Error(err)
			return
		}
		hub.Serve(hub.Add(conn), conn)
	}
}
