// Package event defines the closed set of typed inbound payloads. Raw
// websocket frames are parsed here at the boundary before dispatch; anything
// that fails to parse is dropped.
package event

import "encoding/json"

// Inbound event names.
const (
	CreateRoomName     = "create-room"
	JoinRoomName       = "join-room"
	StartGameName      = "start-game"
	WordChosenName     = "word-chosen"
	SentMessageName    = "sent-message"
	MouseName          = "mouse"
	ClearCanvasName    = "clear-canvas"
	ToggleTeamModeName = "change-team-play-mode"
	AddToTeamName      = "add-player-to-a-team"
	RemoveFromTeamName = "remove-player-from-team"
	SwitchTeamName     = "switch-player-team"
	SetRoundsName      = "set-rounds"
	SetDrawTimeName    = "set-draw-timer"
	SetMaxPlayersName  = "set-players-number"
	SetHintsName       = "set-hints-number"
	SetWordCountName   = "set-word-count"
	SetCustomWordsName = "set-custom-words"
	SetCustomOnlyName  = "set-custom-words-only"
)

// Envelope is the outer frame of every inbound message.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type Profile struct {
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	Language string `json:"language"`
}

type CreateRoom struct {
	Profile Profile `json:"profile"`
}

type JoinRoom struct {
	Profile Profile `json:"profile"`
	Code    string  `json:"code,omitempty"`
}

type StartGame struct {
	RoomID string `json:"room_id"`
}

type WordChosen struct {
	RoomID string `json:"room_id"`
	Word   string `json:"word"`
}

type SentMessage struct {
	RoomID  string `json:"room_id"`
	Content string `json:"message"`
}

// Mouse is a stroke event. Coordinates are relayed verbatim, never
// interpreted.
type Mouse struct {
	RoomCode    string  `json:"roomCode"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	PX          float64 `json:"px"`
	PY          float64 `json:"py"`
	Color       string  `json:"color"`
	StrokeWidth float64 `json:"strokeWidth"`
}

type ClearCanvas struct {
	RoomCode string `json:"roomCode"`
}

type TeamAction struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId,omitempty"`
	TeamID   string `json:"teamId,omitempty"`
}

type SetNumber struct {
	RoomCode string `json:"roomCode"`
	Value    int    `json:"value"`
}

type SetCustomWords struct {
	RoomCode string   `json:"roomCode"`
	Words    []string `json:"words"`
}

type SetCustomOnly struct {
	RoomCode string `json:"roomCode"`
	Enabled  bool   `json:"enabled"`
}
