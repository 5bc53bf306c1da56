package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"chatty", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInitFallsBackToEnv(t *testing.T) {
	prevLevel, prevLogger := zerolog.GlobalLevel(), log.Logger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(prevLevel)
		log.Logger = prevLogger
	})

	t.Setenv(LevelEnv, "warn")
	InitWithWriter("", &bytes.Buffer{})
	if zerolog.GlobalLevel() != zerolog.WarnLevel {
		t.Errorf("level = %v, want warn from env", zerolog.GlobalLevel())
	}

	InitWithWriter("debug", &bytes.Buffer{})
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Errorf("level = %v, explicit level should win", zerolog.GlobalLevel())
	}
}

func TestRunLoggerLog(t *testing.T) {
	prevLevel, prevLogger := zerolog.GlobalLevel(), log.Logger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(prevLevel)
		log.Logger = prevLogger
	})

	var buf bytes.Buffer
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = zerolog.New(&buf)

	NewRunLogger("rename").
		Version("1.2.0").
		CommitHash("abc123").
		Feature("dryRun", true).
		Config("model", "llava").
		Log()

	out := buf.String()
	for _, want := range []string{
		`"command":"rename"`,
		`"version":"1.2.0"`,
		`"commitHash":"abc123"`,
		`"dryRun":true`,
		`"model":"llava"`,
		`"message":"Run configuration"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s: %s", want, out)
		}
	}
}
