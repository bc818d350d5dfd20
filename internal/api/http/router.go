package http

import (
	"github.com/gin-gonic/gin"

	"sketchroom/internal/api/ws"
	"sketchroom/internal/monitoring"
	"sketchroom/internal/room"
)

func NewRouter(reg *room.Registry, hub *ws.Hub, metrics *monitoring.Metrics) *gin.Engine {
	r := gin.Default()

	// WebSocket entry point; everything game-related flows through here.
	r.GET("/ws", hub.HandleWS)

	r.GET("/healthz", HealthHandler())
	r.GET("/rooms", ListRoomsHandler(reg))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	return r
}
