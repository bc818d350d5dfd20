package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sketchroom/internal/room"
)

func HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// ListRoomsHandler returns the public joinable rooms for a lobby browser.
func ListRoomsHandler(reg *room.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		out := []RoomSummary{}
		for _, r := range reg.Rooms() {
			r.Lock()
			if !r.Settings.Private && !r.IsFull() {
				out = append(out, RoomSummary{
					Code:       r.Code,
					Language:   r.Settings.Language,
					Players:    len(r.Players),
					MaxPlayers: r.Settings.MaxPlayers,
					IsStarted:  r.IsStarted,
					Mode:       string(r.Settings.Mode),
				})
			}
			r.Unlock()
		}
		c.JSON(http.StatusOK, gin.H{"rooms": out})
	}
}
