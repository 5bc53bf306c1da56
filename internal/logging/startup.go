package logging

import (
	"runtime"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RunLogger collects build identity, resolved configuration and feature
// flags, then emits them as a single structured event at the start of a
// command. Reading that one line tells you how a run was configured.
type RunLogger struct {
	name      string
	version   string
	commit    string
	buildTime string
	features  map[string]bool
	config    map[string]string
	startup   time.Duration
}

// NewRunLogger creates a RunLogger for the named command (e.g. "rename").
func NewRunLogger(name string) *RunLogger {
	return &RunLogger{
		name:     name,
		features: make(map[string]bool),
		config:   make(map[string]string),
	}
}

// Version sets the release version baked into the binary.
func (r *RunLogger) Version(v string) *RunLogger {
	r.version = v
	return r
}

// CommitHash sets the git commit baked into the binary.
func (r *RunLogger) CommitHash(hash string) *RunLogger {
	r.commit = hash
	return r
}

// BuildTime sets the UTC build timestamp baked into the binary.
func (r *RunLogger) BuildTime(t string) *RunLogger {
	r.buildTime = t
	return r
}

// Feature registers a boolean flag such as "dryRun" or "datePrefix".
func (r *RunLogger) Feature(name string, enabled bool) *RunLogger {
	r.features[name] = enabled
	return r
}

// Config registers a non-sensitive configuration key-value pair.
func (r *RunLogger) Config(key, value string) *RunLogger {
	r.config[key] = value
	return r
}

// StartupDuration records how long setup took before the first task.
func (r *RunLogger) StartupDuration(d time.Duration) *RunLogger {
	r.startup = d
	return r
}

// Log emits one INFO event with everything collected.
func (r *RunLogger) Log() {
	build := zerolog.Dict().
		Str("command", r.name).
		Str("goVersion", runtime.Version()).
		Str("os", runtime.GOOS).
		Str("arch", runtime.GOARCH)
	if r.version != "" {
		build = build.Str("version", r.version)
	}
	if r.commit != "" {
		build = build.Str("commitHash", r.commit)
	}
	if r.buildTime != "" {
		build = build.Str("buildTime", r.buildTime)
	}

	evt := log.Info().Dict("build", build)

	if len(r.features) > 0 {
		d := zerolog.Dict()
		for _, k := range sortedKeys(r.features) {
			d = d.Bool(k, r.features[k])
		}
		evt = evt.Dict("features", d)
	}
	if len(r.config) > 0 {
		d := zerolog.Dict()
		for _, k := range sortedKeys(r.config) {
			d = d.Str(k, r.config[k])
		}
		evt = evt.Dict("config", d)
	}
	if r.startup > 0 {
		evt = evt.Dur("startupDuration", r.startup)
	}

	evt.Msg("Run configuration")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
