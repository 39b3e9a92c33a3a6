// Package logging initializes the process-wide zerolog logger with dual
// sinks (console + rotating file), grounded on bbak-mcs-mcp's
// internal/logging.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init configures the global zerolog logger. dataPath is the directory under
// which the rotating "logs/aquamind.log" file is created; VERBOSE=true in the
// environment raises the level to debug.
func Init(dataPath string) {
	level := zerolog.InfoLevel
	if os.Getenv("VERBOSE") == "true" {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	isTerminal := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339Nano,
		NoColor:    !isTerminal,
	}

	if dataPath == "" {
		dataPath = "."
	}
	logDir := filepath.Join(dataPath, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Error().Err(err).Str("path", logDir).Msg("failed to create log directory, logging to console only")
		log.Logger = zerolog.New(consoleWriter).With().Timestamp().Logger()
		return
	}

	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "aquamind.log"),
		MaxSize:    16, // megabytes
		MaxBackups: 32,
		MaxAge:     365, // days
		Compress:   true,
	}

	multi := zerolog.MultiLevelWriter(io.Writer(consoleWriter), fileWriter)
	log.Logger = zerolog.New(multi).With().Timestamp().Logger()

	log.Info().Msg("logging initialized")
}
