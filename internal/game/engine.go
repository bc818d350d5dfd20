// Package game implements the server-authoritative session engine: event
// dispatch, the per-room turn state machine, guess handling, chat visibility
// and the drawing relay.
package game

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"sketchroom/internal/config"
	"sketchroom/internal/event"
	"sketchroom/internal/monitoring"
	"sketchroom/internal/room"
	"sketchroom/internal/words"
)

type Engine struct {
	reg     *room.Registry
	bank    *words.Bank
	cfg     config.Config
	hub     room.Broadcaster
	metrics *monitoring.Metrics
	log     *zap.Logger

	mu     sync.Mutex
	timers map[string]*timer
}

func NewEngine(reg *room.Registry, bank *words.Bank, cfg config.Config, hub room.Broadcaster, metrics *monitoring.Metrics, log *zap.Logger) *Engine {
	return &Engine{
		reg:     reg,
		bank:    bank,
		cfg:     cfg,
		hub:     hub,
		metrics: metrics,
		log:     log,
		timers:  map[string]*timer{},
	}
}

// OnConnect greets a fresh connection with its session id.
func (e *Engine) OnConnect(sessionID string) {
	e.hub.SendToSession(sessionID, "connected", map[string]string{"sessionId": sessionID})
}

// OnEvent parses the envelope into its typed payload and dispatches it.
// Malformed or unknown events are dropped; a bad client must not disturb the
// room.
func (e *Engine) OnEvent(sessionID string, env event.Envelope) {
	switch env.Event {
	case event.CreateRoomName:
		var ev event.CreateRoom
		if e.parse(env.Data, &ev) {
			e.handleCreateRoom(sessionID, ev)
		}
	case event.JoinRoomName:
		var ev event.JoinRoom
		if e.parse(env.Data, &ev) {
			e.handleJoinRoom(sessionID, ev)
		}
	case event.StartGameName:
		var ev event.StartGame
		if e.parse(env.Data, &ev) {
			e.handleStartGame(sessionID, ev)
		}
	case event.WordChosenName:
		var ev event.WordChosen
		if e.parse(env.Data, &ev) {
			e.handleWordChosen(sessionID, ev)
		}
	case event.SentMessageName:
		var ev event.SentMessage
		if e.parse(env.Data, &ev) {
			e.handleSentMessage(sessionID, ev)
		}
	case event.MouseName:
		var ev event.Mouse
		if e.parse(env.Data, &ev) {
			e.handleMouse(sessionID, ev)
		}
	case event.ClearCanvasName:
		var ev event.ClearCanvas
		if e.parse(env.Data, &ev) {
			e.handleClearCanvas(sessionID, ev)
		}
	case event.ToggleTeamModeName, event.AddToTeamName, event.RemoveFromTeamName, event.SwitchTeamName:
		var ev event.TeamAction
		if e.parse(env.Data, &ev) {
			e.handleTeamAction(sessionID, env.Event, ev)
		}
	case event.SetRoundsName, event.SetDrawTimeName, event.SetMaxPlayersName, event.SetHintsName, event.SetWordCountName:
		var ev event.SetNumber
		if e.parse(env.Data, &ev) {
			e.handleSetNumber(sessionID, env.Event, ev)
		}
	case event.SetCustomWordsName:
		var ev event.SetCustomWords
		if e.parse(env.Data, &ev) {
			e.handleSetCustomWords(sessionID, ev)
		}
	case event.SetCustomOnlyName:
		var ev event.SetCustomOnly
		if e.parse(env.Data, &ev) {
			e.handleSetCustomOnly(sessionID, ev)
		}
	default:
		e.log.Debug("unknown event", zap.String("event", env.Event), zap.String("session", sessionID))
	}
}

func (e *Engine) parse(raw json.RawMessage, v interface{}) bool {
	if err := json.Unmarshal(raw, v); err != nil {
		e.log.Debug("malformed event payload", zap.Error(err))
		return false
	}
	return true
}

// withRoom runs fn with the room locked. Unknown codes are silent no-ops.
func (e *Engine) withRoom(code string, fn func(r *room.Room)) {
	r, ok := e.reg.Get(code)
	if !ok {
		return
	}
	r.Lock()
	defer r.Unlock()
	fn(r)
}

func (e *Engine) handleCreateRoom(sessionID string, ev event.CreateRoom) {
	e.leaveCurrentRoom(sessionID)
	p := room.Profile{
		ID:       sessionID,
		Name:     ev.Profile.Name,
		Avatar:   ev.Profile.Avatar,
		Language: ev.Profile.Language,
	}
	r := e.reg.CreateRoom(p, false, "")
	e.hub.Join(sessionID, r.Code)
	e.metrics.RoomsActive.Inc()
	e.metrics.PlayersActive.Inc()

	r.Lock()
	defer r.Unlock()
	e.hub.SendToSession(sessionID, "room-created", map[string]interface{}{"room": r.Snapshot()})
	e.systemMessage(r, p.Name+" created the room", room.ColorInfo)
}

func (e *Engine) handleJoinRoom(sessionID string, ev event.JoinRoom) {
	if cur, ok := e.reg.FindByPlayer(sessionID); ok {
		cur.Lock()
		rejoin := cur.Code == ev.Code
		cur.Unlock()
		if rejoin {
			return
		}
		e.leaveCurrentRoom(sessionID)
	}

	p := room.Profile{
		ID:       sessionID,
		Name:     ev.Profile.Name,
		Avatar:   ev.Profile.Avatar,
		Language: ev.Profile.Language,
	}
	r, isNew := e.reg.JoinRoom(p, ev.Code)
	if r == nil {
		return
	}

	r.Lock()
	defer r.Unlock()
	if !isNew {
		if r.IsFull() {
			e.hub.SendToSession(sessionID, "message-received", room.Message{
				Kind:    room.KindSystem,
				Content: "That room is full",
				Color:   room.ColorWarning,
				SentAt:  time.Now(),
			})
			return
		}
		e.reg.AddPlayer(r, p)
	} else {
		e.metrics.RoomsActive.Inc()
	}
	e.hub.Join(sessionID, r.Code)
	e.metrics.PlayersActive.Inc()

	e.hub.SendToSession(sessionID, "room-joined", map[string]interface{}{
		"room":  r.Snapshot(),
		"isNew": isNew,
	})
	if isNew {
		e.hub.SendToSession(sessionID, "message-received", room.Message{
			Kind:    room.KindSystem,
			Content: "Waiting for players...",
			Color:   room.ColorInfo,
			SentAt:  time.Now(),
		})
	} else {
		e.systemMessage(r, p.Name+" joined the room", room.ColorInfo)
	}
	e.hub.Broadcast(r.Code, "update-room", r.Snapshot())
	e.broadcastState(r)
}

func (e *Engine) OnDisconnect(sessionID string) {
	e.leaveCurrentRoom(sessionID)
}

// leaveCurrentRoom is compensating logic that can race with an in-flight
// turn: the player is removed from whichever room holds the session, host
// and drawer roles are repaired, and the room is destroyed when it empties.
// Also runs before create-room and join-room, so a session belongs to at
// most one room at a time.
func (e *Engine) leaveCurrentRoom(sessionID string) {
	r, ok := e.reg.FindByPlayer(sessionID)
	if !ok {
		return
	}

	r.Lock()
	defer r.Unlock()
	removed, destroyed := e.reg.RemovePlayer(r, sessionID)
	if removed == nil {
		return
	}
	e.hub.Leave(sessionID, r.Code)
	e.metrics.PlayersActive.Dec()

	if destroyed {
		e.cancelTimer(r.Code)
		e.metrics.RoomsActive.Dec()
		return
	}

	e.systemMessage(r, removed.Name+" left the room", room.ColorInfo)
	if removed.IsHost {
		e.systemMessage(r, r.Players[0].Name+" is now the host", room.ColorInfo)
	}

	wasDrawer := r.Drawer.Includes(sessionID)
	if r.Drawer.Kind == room.DrawerTeam {
		delete(r.Drawer.Members, sessionID)
		wasDrawer = wasDrawer && len(r.Drawer.Members) == 0
	}
	delete(r.Guessed, sessionID)

	switch {
	case r.IsStarted && len(r.Players) < 2:
		e.gameEndLocked(r)
	case r.IsStarted && wasDrawer && (r.Phase == room.PhaseChoosing || r.Phase == room.PhaseDrawing):
		e.endTurnLocked(r)
	case r.IsStarted && r.Phase == room.PhaseDrawing && r.GuesserCount() > 0 && len(r.Guessed) >= r.GuesserCount():
		// The leaver was the last unsolved guesser.
		e.endTurnLocked(r)
	}

	e.hub.Broadcast(r.Code, "update-users", r.PlayerViews())
	e.hub.Broadcast(r.Code, "update-room", r.Snapshot())
}

// systemMessage appends a server-authored notice to the log and broadcasts
// it. Caller holds the room lock.
func (e *Engine) systemMessage(r *room.Room, content, color string) {
	msg := room.Message{
		Kind:    room.KindSystem,
		Content: content,
		Color:   color,
		SentAt:  time.Now(),
	}
	r.AppendMessage(msg)
	e.metrics.MessagesTotal.WithLabelValues(string(room.KindSystem)).Inc()
	e.hub.Broadcast(r.Code, "message-received", msg)
}

func (e *Engine) broadcastState(r *room.Room) {
	e.hub.Broadcast(r.Code, "update-state", map[string]interface{}{
		"phase":       r.Phase,
		"currentTurn": r.CurrentTurn,
		"timeLeft":    r.TimeLeft,
		"drawerIds":   r.Drawer.IDs(),
		"isStarted":   r.IsStarted,
		"showScores":  r.ShowScores,
	})
}

// canAdminister reports whether the sender may change room settings or start
// the game: the host in regular rooms, anyone in hostless default rooms.
func canAdminister(r *room.Room, sessionID string) bool {
	p := r.Player(sessionID)
	if p == nil {
		return false
	}
	return p.IsHost || r.IsDefault
}

// Close cancels every outstanding room timer.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for code, t := range e.timers {
		close(t.stop)
		delete(e.timers, code)
	}
}
