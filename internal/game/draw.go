package game

import (
	"sketchroom/internal/event"
	"sketchroom/internal/room"
)

// handleMouse relays a stroke event to the rest of the room. Pure
// authorization gate plus fan-out: only the current drawer(s) may emit, and
// the payload is never interpreted.
func (e *Engine) handleMouse(sessionID string, ev event.Mouse) {
	e.withRoom(ev.RoomCode, func(r *room.Room) {
		if r.Phase != room.PhaseDrawing || !r.Drawer.Includes(sessionID) {
			return
		}
		e.hub.BroadcastExcept(r.Code, sessionID, "mouse", ev)
	})
}

// handleClearCanvas wipes the shared canvas for everyone. Any room member
// may trigger it, not just the drawer.
func (e *Engine) handleClearCanvas(sessionID string, ev event.ClearCanvas) {
	e.withRoom(ev.RoomCode, func(r *room.Room) {
		if r.Player(sessionID) == nil {
			return
		}
		e.hub.Broadcast(r.Code, "clear-canvas", struct{}{})
	})
}
