package room

// Broadcaster is the outbound side of the event protocol, implemented by the
// websocket hub. Session ids double as player ids.
type Broadcaster interface {
	Broadcast(roomCode, action string, data interface{})
	BroadcastExcept(roomCode, sessionID, action string, data interface{})
	SendTo(roomCode string, sessionIDs []string, action string, data interface{})
	SendToSession(sessionID, action string, data interface{})
	Join(sessionID, roomCode string)
	Leave(sessionID, roomCode string)
}
