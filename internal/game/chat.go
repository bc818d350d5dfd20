package game

import (
	"fmt"
	"time"

	"sketchroom/internal/event"
	"sketchroom/internal/guess"
	"sketchroom/internal/room"
)

// handleSentMessage classifies a chat line and routes it. During an active
// turn, messages from the drawer(s) and from players who already guessed are
// secret-scoped; everyone else's lines run through the guess evaluator.
func (e *Engine) handleSentMessage(sessionID string, ev event.SentMessage) {
	e.withRoom(ev.RoomID, func(r *room.Room) {
		sender := r.Player(sessionID)
		if sender == nil || ev.Content == "" {
			return
		}

		inTurn := r.Phase == room.PhaseDrawing && r.Word != ""
		if inTurn && (r.Drawer.Includes(sessionID) || sender.HasGuessed) {
			e.secretChat(r, sender, ev.Content)
			return
		}
		if !inTurn {
			e.publicChat(r, sender, ev.Content)
			return
		}

		outcome := guess.Evaluate(ev.Content, r.Word)
		e.metrics.GuessesTotal.WithLabelValues(outcome.String()).Inc()
		switch outcome {
		case guess.Correct:
			// The winning line itself is suppressed; only the announcement
			// reaches the log, so the word stays out of the public history.
			sender.HasGuessed = true
			r.Guessed[sessionID] = true
			e.systemMessage(r, sender.Name+" found the word!", room.ColorSuccess)
			e.hub.Broadcast(r.Code, "update-users", r.PlayerViews())
			if len(r.Guessed) >= r.GuesserCount() {
				e.endTurnLocked(r)
			}
		case guess.Close:
			e.publicChat(r, sender, ev.Content)
			hint := room.Message{
				Kind:    room.KindSecret,
				Content: fmt.Sprintf("'%s' is close!", ev.Content),
				Color:   room.ColorWarning,
				SentAt:  time.Now(),
			}
			r.AppendMessage(hint)
			e.metrics.MessagesTotal.WithLabelValues(string(room.KindSecret)).Inc()
			e.hub.SendToSession(sessionID, "message-received", hint)
		default:
			e.publicChat(r, sender, ev.Content)
		}
	})
}

func (e *Engine) publicChat(r *room.Room, sender *room.Player, content string) {
	msg := room.Message{
		Kind:       room.KindMessage,
		Content:    content,
		SenderID:   sender.ID,
		SenderName: sender.Name,
		SentAt:     time.Now(),
	}
	r.AppendMessage(msg)
	e.metrics.MessagesTotal.WithLabelValues(string(room.KindMessage)).Inc()
	e.hub.Broadcast(r.Code, "message-received", msg)
}

// secretChat delivers a would-be-public line only to its sender, the
// drawer(s) and players who already guessed. The full log is revealed to
// everyone at turn end.
func (e *Engine) secretChat(r *room.Room, sender *room.Player, content string) {
	msg := room.Message{
		Kind:       room.KindSecret,
		Content:    content,
		SenderID:   sender.ID,
		SenderName: sender.Name,
		SentAt:     time.Now(),
	}
	r.AppendMessage(msg)
	e.metrics.MessagesTotal.WithLabelValues(string(room.KindSecret)).Inc()
	e.hub.SendTo(r.Code, secretAudience(r, sender.ID), "message-received", msg)
}

func secretAudience(r *room.Room, senderID string) []string {
	seen := map[string]bool{senderID: true}
	out := []string{senderID}
	for _, id := range r.Drawer.IDs() {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, p := range r.Players {
		if p.HasGuessed && !seen[p.ID] {
			seen[p.ID] = true
			out = append(out, p.ID)
		}
	}
	return out
}
