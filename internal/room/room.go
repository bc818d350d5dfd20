package room

import (
	"sync"
	"time"
)

type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhaseChoosing Phase = "choosing_word"
	PhaseDrawing  Phase = "drawing"
	PhaseTurnEnd  Phase = "turn_end"
	PhaseGameEnd  Phase = "game_end"
)

type Mode string

const (
	ModeClassic Mode = "classic"
	ModeTeam    Mode = "team"
)

type MessageKind string

const (
	KindMessage MessageKind = "message"
	KindSystem  MessageKind = "system"
	KindSecret  MessageKind = "secret"
)

// Colors used for server-authored system messages.
const (
	ColorInfo    = "#3b82f6"
	ColorSuccess = "#22c55e"
	ColorWarning = "#f59e0b"
)

type Message struct {
	Kind       MessageKind `json:"kind"`
	Content    string      `json:"content"`
	SenderID   string      `json:"senderId,omitempty"`
	SenderName string      `json:"senderName,omitempty"`
	Color      string      `json:"color,omitempty"`
	SentAt     time.Time   `json:"sentAt"`
}

type Settings struct {
	Language        string   `json:"language"`
	MaxPlayers      int      `json:"maxPlayers"`
	Mode            Mode     `json:"mode"`
	DrawTime        int      `json:"drawTime"`
	Rounds          int      `json:"rounds"`
	Hints           int      `json:"hints"`
	WordChoices     int      `json:"wordChoices"`
	CustomWords     []string `json:"customWords"`
	CustomWordsOnly bool     `json:"customWordsOnly"`
	Private         bool     `json:"private"`
}

type Player struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Avatar     string `json:"avatar"`
	IsHost     bool   `json:"isHost"`
	HasGuessed bool   `json:"hasGuessed"`
	Score      int    `json:"score"`
	TeamID     string `json:"teamId,omitempty"`
}

type Team struct {
	ID      string   `json:"id"`
	Members []string `json:"members"`
}

type DrawerKind int

const (
	DrawerNone DrawerKind = iota
	DrawerSolo
	DrawerTeam
)

// Drawer is the tagged drawer assignment for the current turn: nobody, a
// single player, or all members of the drawing team.
type Drawer struct {
	Kind     DrawerKind
	PlayerID string
	Members  map[string]bool
}

func NoDrawer() Drawer { return Drawer{Kind: DrawerNone} }

func SoloDrawer(playerID string) Drawer {
	return Drawer{Kind: DrawerSolo, PlayerID: playerID}
}

func TeamDrawer(playerIDs []string) Drawer {
	members := make(map[string]bool, len(playerIDs))
	for _, id := range playerIDs {
		members[id] = true
	}
	return Drawer{Kind: DrawerTeam, Members: members}
}

func (d Drawer) Includes(playerID string) bool {
	switch d.Kind {
	case DrawerSolo:
		return d.PlayerID == playerID
	case DrawerTeam:
		return d.Members[playerID]
	default:
		return false
	}
}

func (d Drawer) IDs() []string {
	switch d.Kind {
	case DrawerSolo:
		return []string{d.PlayerID}
	case DrawerTeam:
		out := make([]string, 0, len(d.Members))
		for id := range d.Members {
			out = append(out, id)
		}
		return out
	default:
		return nil
	}
}

// Room is one isolated game session. All fields are guarded by the room
// mutex; every event handler and countdown tick runs with it held, so
// handlers for the same room never interleave while rooms stay independent.
type Room struct {
	mu sync.Mutex

	Code      string
	IsDefault bool
	IsStarted bool

	// ShowScores flags the final score display after a finished game.
	ShowScores bool

	Phase    Phase
	Settings Settings
	Players  []*Player
	Teams    []*Team

	Drawer       Drawer
	Word         string
	PendingWords []string
	Guessed      map[string]bool

	CurrentTurn int
	TurnIdx     int
	StartIdx    int
	TimeLeft    int
	Revealed    int

	Messages  []Message
	CreatedAt time.Time
}

func (r *Room) Lock()   { r.mu.Lock() }
func (r *Room) Unlock() { r.mu.Unlock() }

func (r *Room) Player(id string) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) Host() *Player {
	for _, p := range r.Players {
		if p.IsHost {
			return p
		}
	}
	return nil
}

func (r *Room) IsFull() bool {
	return len(r.Players) >= r.Settings.MaxPlayers
}

// GuesserCount is the number of players expected to guess this turn.
func (r *Room) GuesserCount() int {
	return len(r.Players) - len(r.Drawer.IDs())
}

func (r *Room) AppendMessage(m Message) {
	r.Messages = append(r.Messages, m)
}

// PlayerView is the broadcast-safe projection of a player.
type PlayerView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Avatar     string `json:"avatar"`
	IsHost     bool   `json:"isHost"`
	HasGuessed bool   `json:"hasGuessed"`
	Score      int    `json:"score"`
	TeamID     string `json:"teamId,omitempty"`
}

// Snapshot is the room state sent to clients. The secret word itself never
// appears here, only its length.
type Snapshot struct {
	Code        string       `json:"code"`
	IsDefault   bool         `json:"isDefault"`
	IsStarted   bool         `json:"isStarted"`
	ShowScores  bool         `json:"showScores"`
	Phase       Phase        `json:"phase"`
	Settings    Settings     `json:"settings"`
	Players     []PlayerView `json:"players"`
	Teams       []*Team      `json:"teams,omitempty"`
	DrawerIDs   []string     `json:"drawerIds,omitempty"`
	WordLength  int          `json:"wordLength,omitempty"`
	CurrentTurn int          `json:"currentTurn"`
	TimeLeft    int          `json:"timeLeft"`
}

func (r *Room) Snapshot() Snapshot {
	return Snapshot{
		Code:        r.Code,
		IsDefault:   r.IsDefault,
		IsStarted:   r.IsStarted,
		ShowScores:  r.ShowScores,
		Phase:       r.Phase,
		Settings:    r.Settings,
		Players:     r.PlayerViews(),
		Teams:       r.Teams,
		DrawerIDs:   r.Drawer.IDs(),
		WordLength:  len([]rune(r.Word)),
		CurrentTurn: r.CurrentTurn,
		TimeLeft:    r.TimeLeft,
	}
}

func (r *Room) PlayerViews() []PlayerView {
	out := make([]PlayerView, 0, len(r.Players))
	for _, p := range r.Players {
		out = append(out, PlayerView{
			ID:         p.ID,
			Name:       p.Name,
			Avatar:     p.Avatar,
			IsHost:     p.IsHost,
			HasGuessed: p.HasGuessed,
			Score:      p.Score,
			TeamID:     p.TeamID,
		})
	}
	return out
}
