package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the game-server business metrics plus the standard Go
// process collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	RoomsActive   prometheus.Gauge
	PlayersActive prometheus.Gauge
	MessagesTotal *prometheus.CounterVec
	GuessesTotal  *prometheus.CounterVec
	TurnsStarted  prometheus.Counter
	GamesFinished prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		RoomsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sketchroom_rooms_active",
			Help: "Number of active rooms.",
		}),
		PlayersActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sketchroom_players_active",
			Help: "Number of connected players in rooms.",
		}),
		MessagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sketchroom_messages_total",
			Help: "Chat messages routed, by kind.",
		}, []string{"kind"}),
		GuessesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sketchroom_guesses_total",
			Help: "Guess evaluations, by outcome.",
		}, []string{"outcome"}),
		TurnsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sketchroom_turns_started_total",
			Help: "Drawing turns started.",
		}),
		GamesFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sketchroom_games_finished_total",
			Help: "Games played to completion.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RoomsActive,
		m.PlayersActive,
		m.MessagesTotal,
		m.GuessesTotal,
		m.TurnsStarted,
		m.GamesFinished,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
