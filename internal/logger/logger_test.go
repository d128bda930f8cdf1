package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestToZapLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		DebugLevel: zapcore.DebugLevel,
		InfoLevel:  zapcore.InfoLevel,
		WarnLevel:  zapcore.WarnLevel,
		ErrorLevel: zapcore.ErrorLevel,
		"bogus":    zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := toZapLevel(in); got != want {
			t.Fatalf("toZapLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWithWriter_JSONFieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, WarnLevel, FormatJSON).Named("mapbuild")

	log.Infow("dropped", "k", 1)
	log.Warnw("layer_load_failed", "event_id", 190)
	_ = log.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected only the warn line, got %q", buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if entry["msg"] != "layer_load_failed" || entry["logger"] != "mapbuild" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if entry["event_id"].(float64) != 190 {
		t.Fatalf("event_id field = %v", entry["event_id"])
	}
}

func TestNamed_NilSafe(t *testing.T) {
	var l *Logger
	named := l.Named("x")
	if named == nil {
		t.Fatalf("Named on nil logger should return a no-op logger")
	}
	named.Infow("discarded", "k", "v")
}
