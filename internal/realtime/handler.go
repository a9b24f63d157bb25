package realtime

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"servicehub/internal/pkg/jwt"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// TODO: restrict origins once the web client's domains are fixed.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler upgrades authenticated clients and keeps their connection
// registered in the hub. The socket is push-only: inbound frames are
// read solely to detect disconnects.
type WSHandler struct {
	hub    *Hub
	jwt    *jwt.Service
	logger zerolog.Logger
}

func NewWSHandler(hub *Hub, jwtService *jwt.Service, logger zerolog.Logger) *WSHandler {
	return &WSHandler{hub: hub, jwt: jwtService, logger: logger}
}

// HandleWebSocket serves GET /ws?token=JWT. Browsers cannot set headers
// on websocket dials, so the token travels as a query parameter.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token query parameter is required"})
		return
	}

	claims, err := h.jwt.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}
	userID := claims.UserID

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	registered := h.hub.Register(userID, conn)
	h.logger.Debug().Int64("user_id", userID).Msg("websocket connected")

	defer func() {
		h.hub.Unregister(userID)
		h.logger.Debug().Int64("user_id", userID).Msg("websocket disconnected")
	}()

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})

	// Pings go through the same write lock as hub pushes.
	go h.pingLoop(registered)
	h.readLoop(conn, userID)
}

func (h *WSHandler) pingLoop(c *Conn) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		if err := c.Ping(); err != nil {
			return
		}
	}
}

func (h *WSHandler) readLoop(conn *websocket.Conn, userID int64) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Debug().Err(err).Int64("user_id", userID).Msg("websocket read error")
			}
			return
		}
	}
}
