package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Udayam-Bangalore/Longevix-App-sub001/services"
	"github.com/Udayam-Bangalore/Longevix-App-sub001/utils"
)

// Browsers cannot set headers on a websocket handshake, so the token rides in
// the query string instead of the Authorization header.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type RealtimeController struct {
	hub *services.RealtimeHub
	log *zap.Logger
}

func NewRealtimeController(hub *services.RealtimeHub, log *zap.Logger) *RealtimeController {
	return &RealtimeController{hub: hub, log: log}
}

func (r *RealtimeController) Serve(c *gin.Context) {
	token := c.Query("token")
	userID, err := utils.ParseToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"statusCode": http.StatusUnauthorized, "message": "Invalid or expired session"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		r.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &services.WSClient{UserID: userID, Conn: conn}
	r.hub.Register(client)
	defer r.hub.Unregister(client)

	// Inbound traffic is ignored; the socket exists for server pushes. The
	// read loop only notices the peer going away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
