// Package metrics records per-operation timings and counters and emits them
// as a single structured log event, so one line in the log carries the full
// cost breakdown of a task.
package metrics

import (
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Metric units.
const (
	UnitMilliseconds = "Milliseconds"
	UnitCount        = "Count"
	UnitBytes        = "Bytes"
)

// Recorder accumulates dimensions, metrics and properties for a single flush.
// It is NOT safe for concurrent use from multiple goroutines; create one per operation.
type Recorder struct {
	namespace  string
	dimensions map[string]string
	metrics    map[string]float64
	units      map[string]string
	properties map[string]interface{}
	logger     *zerolog.Logger
}

// New creates a Recorder that flushes through the global logger.
func New(namespace string) *Recorder {
	return NewWithLogger(namespace, &log.Logger)
}

// NewWithLogger creates a Recorder that flushes through logger.
func NewWithLogger(namespace string, logger *zerolog.Logger) *Recorder {
	return &Recorder{
		namespace:  namespace,
		dimensions: make(map[string]string),
		metrics:    make(map[string]float64),
		units:      make(map[string]string),
		properties: make(map[string]interface{}),
		logger:     logger,
	}
}

// Dimension adds a dimension key-value pair.
func (r *Recorder) Dimension(key, value string) *Recorder {
	r.dimensions[key] = value
	return r
}

// Metric records a named metric value with a unit.
func (r *Recorder) Metric(name string, value float64, unit string) *Recorder {
	r.metrics[name] = value
	r.units[name] = unit
	return r
}

// Duration records d as a millisecond metric.
func (r *Recorder) Duration(name string, d time.Duration) *Recorder {
	return r.Metric(name, float64(d.Milliseconds()), UnitMilliseconds)
}

// Property adds a non-metric field.
func (r *Recorder) Property(key string, value interface{}) *Recorder {
	r.properties[key] = value
	return r
}

// Flush writes one debug-level event with every dimension, metric and
// property. After flushing, the Recorder should not be reused.
func (r *Recorder) Flush() {
	if len(r.metrics) == 0 {
		return
	}

	evt := r.logger.Debug().Str("namespace", r.namespace)

	if len(r.dimensions) > 0 {
		d := zerolog.Dict()
		for _, k := range sortedKeys(r.dimensions) {
			d = d.Str(k, r.dimensions[k])
		}
		evt = evt.Dict("dimensions", d)
	}

	m := zerolog.Dict()
	for _, k := range sortedKeys(r.metrics) {
		m = m.Float64(k, r.metrics[k])
	}
	evt = evt.Dict("metrics", m)

	if len(r.properties) > 0 {
		evt = evt.Fields(r.properties)
	}

	evt.Msg("Metrics")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
