package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init global zerolog logger'ını ortama göre ayarlar
func Init(env string) {
	zerolog.TimeFieldFormat = time.RFC3339

	if env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		log.Logger = log.Output(os.Stdout)
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
