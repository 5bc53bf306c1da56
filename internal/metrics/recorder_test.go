package metrics

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestRecorder(buf *bytes.Buffer) *Recorder {
	logger := zerolog.New(buf).Level(zerolog.DebugLevel)
	return NewWithLogger("VisionRename", &logger)
}

func TestRecorder_FlushOutput(t *testing.T) {
	var buf bytes.Buffer

	rec := newTestRecorder(&buf)
	rec.Dimension("Result", "success")
	rec.Duration("ModelMs", 1234*time.Millisecond)
	rec.Metric("PayloadBytes", 2048, UnitBytes)
	rec.Metric("SuggestionChars", 9, UnitCount)
	rec.Property("file", "a.png")
	rec.Flush()

	var doc map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("failed to parse output as JSON: %v\nOutput: %s", err, buf.String())
	}

	if doc["namespace"] != "VisionRename" {
		t.Errorf("namespace = %v, want VisionRename", doc["namespace"])
	}
	if doc["file"] != "a.png" {
		t.Errorf("file property = %v, want a.png", doc["file"])
	}

	dims, ok := doc["dimensions"].(map[string]interface{})
	if !ok || dims["Result"] != "success" {
		t.Errorf("dimensions = %v, want Result=success", doc["dimensions"])
	}

	metrics, ok := doc["metrics"].(map[string]interface{})
	if !ok {
		t.Fatalf("metrics missing: %v", doc)
	}
	want := map[string]float64{"ModelMs": 1234, "PayloadBytes": 2048, "SuggestionChars": 9}
	for k, v := range want {
		if metrics[k] != v {
			t.Errorf("metrics[%s] = %v, want %v", k, metrics[k], v)
		}
	}
}

func TestRecorder_EmptyFlush(t *testing.T) {
	var buf bytes.Buffer
	rec := newTestRecorder(&buf)
	rec.Dimension("Result", "error")
	rec.Flush()

	if buf.Len() != 0 {
		t.Errorf("expected no output without metrics, got %q", buf.String())
	}
}
