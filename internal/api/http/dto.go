package http

// RoomSummary is one row of the public room directory.
type RoomSummary struct {
	Code       string `json:"code"`
	Language   string `json:"language"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"maxPlayers"`
	IsStarted  bool   `json:"isStarted"`
	Mode       string `json:"mode"`
}
