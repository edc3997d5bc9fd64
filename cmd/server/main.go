package main

import (
	"log"
	"net/http"

	"gameroom/internal/config"
	"gameroom/internal/eventlog"
	"gameroom/internal/game"
	"gameroom/internal/game/duel"
	"gameroom/internal/game/economy"
	"gameroom/internal/game/raceboard"
	"gameroom/internal/matchmaker"
	"gameroom/internal/server"
	"gameroom/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	events, err := eventlog.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("open event log: %v", err)
	}
	defer events.Close()

	rec := eventlog.NewRecorder(events, cfg.EventBuffer)
	defer rec.Close()

	variants := game.NewRegistry()
	variants.Register(duel.Duel{})
	variants.Register(raceboard.RaceBoard{})
	variants.Register(economy.Economy{})

	duelStore := session.NewStore(duel.Duel{})
	raceStore := session.NewStore(raceboard.RaceBoard{})
	economyStore := session.NewStore(economy.Economy{})
	for _, st := range []*session.Store{duelStore, raceStore, economyStore} {
		go st.CleanupLoop(cfg.CleanupInterval, cfg.SessionMaxAge)
	}

	mm := matchmaker.NewRegistry(variants)

	srv := server.New(mm, duelStore, raceStore, economyStore, rec, events)

	log.Printf("listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, srv); err != nil {
		log.Fatalf("server: %v", err)
	}
}
