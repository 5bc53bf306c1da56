package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LevelEnv overrides the configured level when set.
const LevelEnv = "VISION_RENAME_LOG_LEVEL"

// ParseLevel maps debug, info, warn and error to zerolog levels. Anything
// else is info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Init initializes the global logger. The level comes from level, or from
// VISION_RENAME_LOG_LEVEL when level is empty. Output goes to stderr so
// stdout stays free for reports and the MCP transport.
func Init(level string) {
	InitWithWriter(level, os.Stderr)
}

// InitWithWriter is Init with a custom destination.
func InitWithWriter(level string, w io.Writer) {
	if level == "" {
		level = os.Getenv(LevelEnv)
	}
	zerolog.SetGlobalLevel(ParseLevel(level))
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w})
}
