package game

import (
	"sketchroom/internal/event"
	"sketchroom/internal/room"
)

func (e *Engine) handleTeamAction(sessionID, name string, ev event.TeamAction) {
	e.withRoom(ev.RoomID, func(r *room.Room) {
		if r.Player(sessionID) == nil {
			return
		}
		target := ev.PlayerID
		if target == "" {
			target = sessionID
		}

		var changed bool
		switch name {
		case event.ToggleTeamModeName:
			if !canAdminister(r, sessionID) {
				return
			}
			changed = r.ToggleTeamMode()
			if changed {
				e.hub.Broadcast(r.Code, "mode-update", map[string]interface{}{
					"mode":  r.Settings.Mode,
					"teams": r.Teams,
				})
			}
		case event.AddToTeamName:
			changed = r.AddToLeastLoadedTeam(target)
		case event.RemoveFromTeamName:
			changed = r.RemoveFromTeam(target)
		case event.SwitchTeamName:
			changed = r.SwitchTeam(target, ev.TeamID)
		}
		if changed {
			e.hub.Broadcast(r.Code, "room-data-updated", r.Snapshot())
		}
	})
}

func (e *Engine) handleSetNumber(sessionID, name string, ev event.SetNumber) {
	e.withRoom(ev.RoomCode, func(r *room.Room) {
		if !canAdminister(r, sessionID) || r.IsStarted {
			return
		}
		switch name {
		case event.SetRoundsName:
			r.Settings.Rounds = clamp(ev.Value, 1, 10)
		case event.SetDrawTimeName:
			r.Settings.DrawTime = clamp(ev.Value, 15, 300)
		case event.SetMaxPlayersName:
			r.Settings.MaxPlayers = clamp(ev.Value, 2, 20)
		case event.SetHintsName:
			r.Settings.Hints = clamp(ev.Value, 0, 5)
		case event.SetWordCountName:
			r.Settings.WordChoices = clamp(ev.Value, 1, 5)
		}
		e.hub.Broadcast(r.Code, "room-data-updated", r.Snapshot())
	})
}

func (e *Engine) handleSetCustomWords(sessionID string, ev event.SetCustomWords) {
	e.withRoom(ev.RoomCode, func(r *room.Room) {
		if !canAdminister(r, sessionID) || r.IsStarted {
			return
		}
		words := make([]string, 0, len(ev.Words))
		for _, w := range ev.Words {
			if w != "" {
				words = append(words, w)
			}
		}
		r.Settings.CustomWords = words
		e.hub.Broadcast(r.Code, "room-data-updated", r.Snapshot())
	})
}

func (e *Engine) handleSetCustomOnly(sessionID string, ev event.SetCustomOnly) {
	e.withRoom(ev.RoomCode, func(r *room.Room) {
		if !canAdminister(r, sessionID) || r.IsStarted {
			return
		}
		r.Settings.CustomWordsOnly = ev.Enabled
		e.hub.Broadcast(r.Code, "room-data-updated", r.Snapshot())
	})
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
