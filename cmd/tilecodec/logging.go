package main

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func setupLogger(levelStr, format string, w io.Writer) {
	zerolog.MessageFieldName = "message"
	zerolog.LevelFieldName = "level"

	if format == "json" {
		log.Logger = zerolog.New(w).
			Level(logLevelOrInfo(levelStr)).
			With().
			Timestamp().
			Logger()
		return
	}

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(logLevelOrInfo(levelStr)).
		With().
		Timestamp().
		Logger()
}

func logLevelOrInfo(levelStr string) zerolog.Level {
	levelStr = strings.ToLower(levelStr)
	if levelStr == "warning" {
		levelStr = "warn"
	}

	var level zerolog.Level
	if err := level.UnmarshalText([]byte(levelStr)); err == nil {
		return level
	}

	log.Warn().Msgf("Unknown log level '%s', defaulting to info", levelStr)
	return zerolog.InfoLevel
}
