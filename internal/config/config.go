package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string

	// Defaults applied to newly created rooms.
	DefaultLanguage   string
	DefaultMaxPlayers int
	DefaultDrawTime   int // seconds
	DefaultRounds     int
	DefaultHints      int
	DefaultWordCount  int

	// Pause between the end of one turn and the next word choice, seconds.
	TurnGap int

	// How long a drawer may deliberate before the first candidate word is
	// picked for them, seconds. Zero disables the timeout.
	ChooseTime int
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func Load() Config {
	_ = godotenv.Load()

	return Config{
		HTTPAddr:          getenvStr("HTTP_ADDR", ":8080"),
		DefaultLanguage:   getenvStr("DEFAULT_LANGUAGE", "english"),
		DefaultMaxPlayers: getenvInt("DEFAULT_MAX_PLAYERS", 8),
		DefaultDrawTime:   getenvInt("DEFAULT_DRAW_TIME", 80),
		DefaultRounds:     getenvInt("DEFAULT_ROUNDS", 3),
		DefaultHints:      getenvInt("DEFAULT_HINTS", 2),
		DefaultWordCount:  getenvInt("DEFAULT_WORD_COUNT", 3),
		TurnGap:           getenvInt("TURN_GAP", 5),
		ChooseTime:        getenvInt("CHOOSE_TIME", 15),
	}
}
