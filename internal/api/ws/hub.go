package ws

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"sketchroom/internal/event"
)

// Handler consumes parsed inbound events. Implemented by the game engine.
type Handler interface {
	OnConnect(sessionID string)
	OnEvent(sessionID string, env event.Envelope)
	OnDisconnect(sessionID string)
}

// outbound is the frame written to clients.
type outbound struct {
	Action string      `json:"action"`
	Data   interface{} `json:"data"`
}

type client struct {
	sessionID string
	conn      *websocket.Conn
	send      chan outbound
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins
	},
}

// Hub owns every live connection, keyed by session id, and the per-room
// membership used for broadcast fan-out.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*client
	rooms    map[string]map[string]*client
	handler  Handler
	log      *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		sessions: make(map[string]*client),
		rooms:    make(map[string]map[string]*client),
		log:      log,
	}
}

func (h *Hub) SetHandler(handler Handler) {
	h.handler = handler
}

// HandleWS upgrades the connection, assigns it a session id and pumps
// inbound envelopes into the handler until the connection drops.
func (h *Hub) HandleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{
		sessionID: uuid.NewString(),
		conn:      conn,
		send:      make(chan outbound, 64),
	}
	h.mu.Lock()
	h.sessions[cl.sessionID] = cl
	h.mu.Unlock()

	go cl.writePump()
	h.handler.OnConnect(cl.sessionID)
	h.log.Info("session connected", zap.String("session", cl.sessionID))

	for {
		var env event.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			break
		}
		h.handler.OnEvent(cl.sessionID, env)
	}

	h.handler.OnDisconnect(cl.sessionID)
	h.drop(cl)
	h.log.Info("session disconnected", zap.String("session", cl.sessionID))
}

func (cl *client) writePump() {
	defer cl.conn.Close()
	for msg := range cl.send {
		if err := cl.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (h *Hub) drop(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[cl.sessionID]; !ok {
		return
	}
	delete(h.sessions, cl.sessionID)
	for code, members := range h.rooms {
		if _, ok := members[cl.sessionID]; ok {
			delete(members, cl.sessionID)
			if len(members) == 0 {
				delete(h.rooms, code)
			}
		}
	}
	close(cl.send)
}

// Join subscribes a session to a room's broadcasts.
func (h *Hub) Join(sessionID, roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	cl, ok := h.sessions[sessionID]
	if !ok {
		return
	}
	if _, ok := h.rooms[roomCode]; !ok {
		h.rooms[roomCode] = make(map[string]*client)
	}
	h.rooms[roomCode][sessionID] = cl
}

func (h *Hub) Leave(sessionID, roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[roomCode]; ok {
		delete(members, sessionID)
		if len(members) == 0 {
			delete(h.rooms, roomCode)
		}
	}
}

func (h *Hub) Broadcast(roomCode, action string, data interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, cl := range h.rooms[roomCode] {
		h.trySend(cl, outbound{Action: action, Data: data})
	}
}

func (h *Hub) BroadcastExcept(roomCode, sessionID, action string, data interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, cl := range h.rooms[roomCode] {
		if id == sessionID {
			continue
		}
		h.trySend(cl, outbound{Action: action, Data: data})
	}
}

func (h *Hub) SendTo(roomCode string, sessionIDs []string, action string, data interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	members := h.rooms[roomCode]
	for _, id := range sessionIDs {
		if cl, ok := members[id]; ok {
			h.trySend(cl, outbound{Action: action, Data: data})
		}
	}
}

func (h *Hub) SendToSession(sessionID, action string, data interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if cl, ok := h.sessions[sessionID]; ok {
		h.trySend(cl, outbound{Action: action, Data: data})
	}
}

// trySend never blocks an event handler on a slow client; a full buffer
// drops the frame.
func (h *Hub) trySend(cl *client, msg outbound) {
	select {
	case cl.send <- msg:
	default:
		h.log.Warn("dropping frame for slow client", zap.String("session", cl.sessionID))
	}
}
