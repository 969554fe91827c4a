package broadcast

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ServeWS upgrades an HTTP request to a WebSocket subscription on the shared
// channel. The endpoint is public: subscribers only ever receive committed
// state that the REST API would serve them anyway.
func ServeWS(hub *Hub, allowedOrigins []string, logger *slog.Logger) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Error("websocket upgrade failed", "error", err)
			return
		}

		client := NewClient(uuid.New().String(), conn, hub)
		hub.Register(client)

		go client.WritePump()
		go client.ReadPump()
	}
}
