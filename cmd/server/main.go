package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"blockfall/highscore"
	"blockfall/server"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	store, err := highscore.Open(getEnv("DB_PATH", "./data/blockfall.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open high score store")
	}
	defer store.Close()

	srv := server.New(store, log.Logger)
	port := getEnv("PORT", "9000")
	log.Info().Str("port", port).Msg("starting blockfall server")
	if err := http.ListenAndServe(":"+port, srv.Handler()); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
