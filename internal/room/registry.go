package room

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"sketchroom/internal/config"
)

type Store interface {
	GetRoom(code string) (*Room, bool)
	SaveRoom(r *Room)
	DeleteRoom(code string)
	Rooms() []*Room
}

// Profile carries the connection-scoped identity of a joining player. The ID
// is the transport session id.
type Profile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	Language string `json:"language"`
}

// Registry owns the set of active rooms and their player membership. Lookup
// failures are silent no-ops: a race between disconnect and an in-flight
// action must not crash the session.
type Registry struct {
	store Store
	cfg   config.Config
	log   *zap.Logger

	// mu makes the generate-then-save pair in CreateRoom atomic and guards
	// the shared rng.
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRegistry(s Store, cfg config.Config, log *zap.Logger) *Registry {
	return &Registry{
		store: s,
		cfg:   cfg,
		log:   log,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// DefaultSettings clones the immutable default settings template, keyed by
// the requester's language.
func (g *Registry) DefaultSettings(language string) Settings {
	if language == "" {
		language = g.cfg.DefaultLanguage
	}
	return Settings{
		Language:    strings.ToLower(language),
		MaxPlayers:  g.cfg.DefaultMaxPlayers,
		Mode:        ModeClassic,
		DrawTime:    g.cfg.DefaultDrawTime,
		Rounds:      g.cfg.DefaultRounds,
		Hints:       g.cfg.DefaultHints,
		WordChoices: g.cfg.DefaultWordCount,
	}
}

// CreateRoom registers a new room and adds the requester as its first
// player. Non-default rooms make the creator host. A code is generated
// unless one is supplied.
func (g *Registry) CreateRoom(p Profile, isDefault bool, code string) *Room {
	g.mu.Lock()
	if code == "" {
		code = g.uniqueCode()
	}
	r := &Room{
		Code:      code,
		IsDefault: isDefault,
		Phase:     PhaseLobby,
		Settings:  g.DefaultSettings(p.Language),
		Drawer:    NoDrawer(),
		Guessed:   map[string]bool{},
		CreatedAt: time.Now(),
	}
	r.Players = append(r.Players, &Player{
		ID:     p.ID,
		Name:   p.Name,
		Avatar: p.Avatar,
		IsHost: !isDefault,
	})
	g.store.SaveRoom(r)
	g.mu.Unlock()
	g.log.Info("room created",
		zap.String("code", code),
		zap.Bool("default", isDefault),
		zap.String("creator", p.ID))
	return r
}

// JoinRoom resolves the room a player should enter. With a code it returns
// that room if it exists, or registers a hostless default room under that
// code (joining never creates a new host). Without a code it quick-matches
// against existing non-full public rooms sharing the profile's language,
// first fit in iteration order, and otherwise creates a fresh default room.
// The bool reports whether a new room was created, in which case the
// requester is already its first player.
func (g *Registry) JoinRoom(p Profile, code string) (*Room, bool) {
	if code != "" {
		if r, ok := g.store.GetRoom(code); ok {
			return r, false
		}
		return g.CreateRoom(p, true, code), true
	}

	lang := strings.ToLower(p.Language)
	if lang == "" {
		lang = g.cfg.DefaultLanguage
	}
	for _, r := range g.store.Rooms() {
		r.Lock()
		fits := !r.Settings.Private && !r.IsFull() && r.Settings.Language == lang
		r.Unlock()
		if fits {
			return r, false
		}
	}
	return g.CreateRoom(p, true, ""), true
}

// AddPlayer appends a joiner to an existing room. Caller holds the room lock.
func (g *Registry) AddPlayer(r *Room, p Profile) *Player {
	pl := &Player{ID: p.ID, Name: p.Name, Avatar: p.Avatar}
	r.Players = append(r.Players, pl)
	if r.Settings.Mode == ModeTeam && !r.IsStarted {
		r.AddToLeastLoadedTeam(pl.ID)
	}
	return pl
}

func (g *Registry) Get(code string) (*Room, bool) {
	return g.store.GetRoom(code)
}

// Rooms lists every active room.
func (g *Registry) Rooms() []*Room {
	return g.store.Rooms()
}

// FindByPlayer locates the room holding the given session, if any.
func (g *Registry) FindByPlayer(sessionID string) (*Room, bool) {
	for _, r := range g.store.Rooms() {
		r.Lock()
		found := r.Player(sessionID) != nil
		r.Unlock()
		if found {
			return r, true
		}
	}
	return nil, false
}

// RemovePlayer drops a player from the room, reassigning the host role to
// the earliest-remaining player and destroying the room when it empties.
// Caller holds the room lock. The second return reports destruction.
func (g *Registry) RemovePlayer(r *Room, sessionID string) (*Player, bool) {
	idx := -1
	for i, p := range r.Players {
		if p.ID == sessionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}
	removed := r.Players[idx]
	r.Players = append(r.Players[:idx], r.Players[idx+1:]...)
	r.RemoveFromTeamUnchecked(sessionID)
	delete(r.Guessed, sessionID)

	if len(r.Players) == 0 {
		g.store.DeleteRoom(r.Code)
		g.log.Info("room destroyed", zap.String("code", r.Code))
		return removed, true
	}
	if removed.IsHost {
		r.Players[0].IsHost = true
	}
	return removed, false
}

const codeLetters = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// uniqueCode draws fresh codes until one is unclaimed. Caller holds g.mu, so
// the code stays reserved until the room is saved.
func (g *Registry) uniqueCode() string {
	for {
		b := make([]byte, 6)
		for i := range b {
			b[i] = codeLetters[g.rng.Intn(len(codeLetters))]
		}
		if _, taken := g.store.GetRoom(string(b)); !taken {
			return string(b)
		}
	}
}
