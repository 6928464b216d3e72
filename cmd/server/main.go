package main

import (
	"log"
	"net/http"
	"os"

	"github.com/juju/clock"

	"yatube/internal/config"
	"yatube/internal/db"
	"yatube/internal/server"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG"))
	if err != nil {
		log.Fatal(err)
	}
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	srv, err := server.New(database, cfg, clock.WallClock)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, srv); err != nil {
		log.Fatal(err)
	}
}
