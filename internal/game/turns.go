package game

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"sketchroom/internal/event"
	"sketchroom/internal/room"
)

type timer struct {
	stop chan struct{}
}

func (e *Engine) handleStartGame(sessionID string, ev event.StartGame) {
	e.withRoom(ev.RoomID, func(r *room.Room) {
		if !canAdminister(r, sessionID) || r.IsStarted {
			return
		}
		if len(r.Players) < 2 {
			e.hub.SendToSession(sessionID, "message-received", room.Message{
				Kind:    room.KindSystem,
				Content: "At least 2 players are needed to start",
				Color:   room.ColorWarning,
				SentAt:  time.Now(),
			})
			return
		}

		for _, p := range r.Players {
			p.HasGuessed = false
			p.Score = 0
		}
		r.IsStarted = true
		r.ShowScores = false
		r.CurrentTurn = 1

		// The last player (or team) in join order draws first; a round is
		// complete when the rotation wraps back to that index.
		if r.Settings.Mode == room.ModeTeam {
			r.StartIdx = len(r.Teams) - 1
		} else {
			r.StartIdx = len(r.Players) - 1
		}
		r.TurnIdx = r.StartIdx

		e.hub.Broadcast(r.Code, "update-users", r.PlayerViews())
		e.broadcastState(r)
		e.beginTurnLocked(r)
	})
}

// beginTurnLocked enters ChoosingWord: clears per-turn state, assigns the
// drawer from the rotation index and offers the candidate words to the
// drawer(s) only. Caller holds the room lock.
func (e *Engine) beginTurnLocked(r *room.Room) {
	e.cancelTimer(r.Code)

	r.Phase = room.PhaseChoosing
	r.Word = ""
	r.Guessed = map[string]bool{}
	r.Revealed = 0
	r.TimeLeft = r.Settings.DrawTime
	for _, p := range r.Players {
		p.HasGuessed = false
	}

	if r.Settings.Mode == room.ModeTeam {
		if !e.assignTeamDrawer(r) {
			e.gameEndLocked(r)
			return
		}
	} else {
		if len(r.Players) == 0 {
			return
		}
		r.TurnIdx %= len(r.Players)
		r.Drawer = room.SoloDrawer(r.Players[r.TurnIdx].ID)
	}

	r.PendingWords = e.bank.Pick(
		r.Settings.Language,
		r.Settings.WordChoices,
		r.Settings.CustomWords,
		r.Settings.CustomWordsOnly,
	)
	e.metrics.TurnsStarted.Inc()

	e.broadcastState(r)
	e.hub.SendTo(r.Code, r.Drawer.IDs(), "choose-word", map[string]interface{}{
		"words": r.PendingWords,
	})
	e.scheduleChoiceTimeout(r.Code)
	e.log.Info("turn started",
		zap.String("room", r.Code),
		zap.Int("turn", r.CurrentTurn),
		zap.Strings("drawers", r.Drawer.IDs()))
}

// scheduleChoiceTimeout picks the first candidate word for a drawer who
// never decides, so one idle drawer cannot stall the room in ChoosingWord.
func (e *Engine) scheduleChoiceTimeout(code string) {
	if e.cfg.ChooseTime <= 0 {
		return
	}
	t := e.replaceTimer(code)
	delay := time.Duration(e.cfg.ChooseTime) * time.Second
	go func() {
		select {
		case <-t.stop:
			return
		case <-time.After(delay):
		}
		e.withRoom(code, func(r *room.Room) {
			if r.Phase != room.PhaseChoosing || len(r.PendingWords) == 0 {
				return
			}
			e.chooseWordLocked(r, r.PendingWords[0])
		})
	}()
}

// assignTeamDrawer picks the next non-empty team in rotation. Returns false
// when no team has members left.
func (e *Engine) assignTeamDrawer(r *room.Room) bool {
	if len(r.Teams) == 0 {
		return false
	}
	for tries := 0; tries < len(r.Teams); tries++ {
		t := r.Teams[r.TurnIdx%len(r.Teams)]
		if len(t.Members) > 0 {
			r.Drawer = room.TeamDrawer(t.Members)
			return true
		}
		r.TurnIdx = (r.TurnIdx + 1) % len(r.Teams)
	}
	return false
}

func (e *Engine) handleWordChosen(sessionID string, ev event.WordChosen) {
	e.withRoom(ev.RoomID, func(r *room.Room) {
		if r.Phase != room.PhaseChoosing || !r.Drawer.Includes(sessionID) {
			return
		}
		chosen := false
		for _, w := range r.PendingWords {
			if w == ev.Word {
				chosen = true
				break
			}
		}
		if !chosen {
			return
		}
		e.chooseWordLocked(r, ev.Word)
	})
}

// chooseWordLocked commits the secret word and enters Drawing. Caller holds
// the room lock.
func (e *Engine) chooseWordLocked(r *room.Room, word string) {
	r.Word = word
	r.PendingWords = nil
	r.Phase = room.PhaseDrawing
	r.TimeLeft = r.Settings.DrawTime

	e.hub.Broadcast(r.Code, "word-chosen", map[string]interface{}{
		"wordLength": len([]rune(r.Word)),
		"mask":       wordMask(r.Word, 0),
	})
	e.broadcastState(r)
	e.startCountdown(r.Code)
}

// startCountdown replaces any previous timer for the room with a fresh
// once-per-second countdown. A stale timer must never tick against a new
// turn.
func (e *Engine) startCountdown(code string) {
	t := e.replaceTimer(code)
	go func() {
		tick := time.NewTicker(time.Second)
		defer tick.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-tick.C:
				if !e.tick(code) {
					return
				}
			}
		}
	}()
}

// tick advances the countdown by one second; reports whether the countdown
// should keep running.
func (e *Engine) tick(code string) bool {
	r, ok := e.reg.Get(code)
	if !ok {
		return false
	}
	r.Lock()
	defer r.Unlock()

	if r.Phase != room.PhaseDrawing {
		return false
	}
	r.TimeLeft--

	if target := e.revealTarget(r); target > r.Revealed {
		r.Revealed = target
		e.hub.Broadcast(r.Code, "hint", map[string]interface{}{
			"mask": wordMask(r.Word, r.Revealed),
		})
	}
	e.hub.Broadcast(r.Code, "countdown", map[string]interface{}{"timeLeft": r.TimeLeft})

	if r.TimeLeft <= 0 {
		e.endTurnLocked(r)
		return false
	}
	return true
}

// revealTarget maps elapsed time to the number of hint letters that should
// be visible, spreading Settings.Hints reveals evenly across the turn.
func (e *Engine) revealTarget(r *room.Room) int {
	hints := r.Settings.Hints
	if hints <= 0 || r.Settings.DrawTime <= 0 {
		return 0
	}
	interval := r.Settings.DrawTime / (hints + 1)
	if interval == 0 {
		return hints
	}
	elapsed := r.Settings.DrawTime - r.TimeLeft
	target := elapsed / interval
	if target > hints {
		target = hints
	}
	return target
}

// wordMask renders the secret word with all but `revealed` letters hidden.
// Odd positions are revealed first so the word shape stays hidden longest.
func wordMask(word string, revealed int) string {
	rs := []rune(word)
	order := make([]int, 0, len(rs))
	for i := 1; i < len(rs); i += 2 {
		order = append(order, i)
	}
	for i := 0; i < len(rs); i += 2 {
		order = append(order, i)
	}

	shown := make(map[int]bool, revealed)
	for i := 0; i < revealed && i < len(order); i++ {
		shown[order[i]] = true
	}

	var b strings.Builder
	for i, c := range rs {
		if shown[i] {
			b.WriteRune(c)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// endTurnLocked scores the turn, reveals the word and chat history, advances
// the rotation and either schedules the next turn or ends the game. Caller
// holds the room lock.
func (e *Engine) endTurnLocked(r *room.Room) {
	e.cancelTimer(r.Code)
	if r.Phase != room.PhaseChoosing && r.Phase != room.PhaseDrawing {
		return
	}
	r.Phase = room.PhaseTurnEnd

	guessers := len(r.Guessed)
	for id := range r.Guessed {
		if p := r.Player(id); p != nil {
			p.Score += 100
		}
	}
	for _, id := range r.Drawer.IDs() {
		if p := r.Player(id); p != nil {
			p.Score += 25 * guessers
		}
	}

	e.hub.Broadcast(r.Code, "turn-end", map[string]interface{}{
		"word":    r.Word,
		"players": r.PlayerViews(),
	})
	e.hub.Broadcast(r.Code, "update-users", r.PlayerViews())
	// The full log becomes visible to everyone once the turn is over.
	e.hub.Broadcast(r.Code, "chat-history", map[string]interface{}{"messages": r.Messages})

	n := len(r.Players)
	if r.Settings.Mode == room.ModeTeam {
		n = len(r.Teams)
	}
	if n > 0 {
		r.TurnIdx = (r.TurnIdx + 1) % n
		if r.TurnIdx == r.StartIdx%n {
			r.CurrentTurn++
		}
	}

	r.Drawer = room.NoDrawer()
	r.Word = ""
	r.Guessed = map[string]bool{}
	r.TimeLeft = 0

	if r.CurrentTurn > r.Settings.Rounds {
		e.gameEndLocked(r)
		return
	}
	e.broadcastState(r)
	e.scheduleNextTurn(r.Code)
}

// scheduleNextTurn re-enters ChoosingWord after the configured gap, unless
// the room ends or restarts in the meantime.
func (e *Engine) scheduleNextTurn(code string) {
	t := e.replaceTimer(code)
	delay := time.Duration(e.cfg.TurnGap) * time.Second
	go func() {
		select {
		case <-t.stop:
			return
		case <-time.After(delay):
		}
		e.withRoom(code, func(r *room.Room) {
			if r.IsStarted && r.Phase == room.PhaseTurnEnd {
				e.beginTurnLocked(r)
			}
		})
	}()
}

// gameEndLocked computes the podium and returns the room to the lobby with
// scores on display. Caller holds the room lock.
func (e *Engine) gameEndLocked(r *room.Room) {
	e.cancelTimer(r.Code)

	views := r.PlayerViews()
	// Stable selection sort keeps join order among ties.
	winners := make([]room.PlayerView, 0, 3)
	taken := make(map[string]bool, 3)
	for len(winners) < 3 && len(winners) < len(views) {
		var best *room.PlayerView
		for i := range views {
			v := &views[i]
			if taken[v.ID] {
				continue
			}
			if best == nil || v.Score > best.Score {
				best = v
			}
		}
		if best == nil {
			break
		}
		taken[best.ID] = true
		winners = append(winners, *best)
	}

	r.IsStarted = false
	r.ShowScores = true
	r.Phase = room.PhaseGameEnd
	r.Drawer = room.NoDrawer()
	r.Word = ""
	r.PendingWords = nil
	r.Guessed = map[string]bool{}
	r.TimeLeft = 0
	e.metrics.GamesFinished.Inc()

	e.hub.Broadcast(r.Code, "game-end", map[string]interface{}{"winners": winners})
	e.broadcastState(r)
	e.hub.Broadcast(r.Code, "update-users", r.PlayerViews())
	e.log.Info("game finished", zap.String("room", r.Code))
}

func (e *Engine) replaceTimer(code string) *timer {
	e.mu.Lock()
	defer e.mu.Unlock()
	if old, ok := e.timers[code]; ok {
		close(old.stop)
	}
	t := &timer{stop: make(chan struct{})}
	e.timers[code] = t
	return t
}

func (e *Engine) cancelTimer(code string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if t, ok := e.timers[code]; ok {
		close(t.stop)
		delete(e.timers, code)
	}
}
