package main

import (
	"go.uber.org/zap"

	httpapi "sketchroom/internal/api/http"
	"sketchroom/internal/api/ws"
	"sketchroom/internal/config"
	"sketchroom/internal/game"
	"sketchroom/internal/monitoring"
	"sketchroom/internal/room"
	"sketchroom/internal/store"
	"sketchroom/internal/words"
)

func main() {
	cfg := config.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	bank, err := words.NewBank()
	if err != nil {
		log.Fatal("load word bank", zap.Error(err))
	}
	log.Info("word bank loaded", zap.Strings("languages", bank.Languages()))

	mem := store.NewMemoryStore()
	reg := room.NewRegistry(mem, cfg, log)
	metrics := monitoring.New()
	hub := ws.NewHub(log)
	engine := game.NewEngine(reg, bank, cfg, hub, metrics, log)
	hub.SetHandler(engine)
	defer engine.Close()

	r := httpapi.NewRouter(reg, hub, metrics)

	log.Info("listening", zap.String("addr", cfg.HTTPAddr))
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
