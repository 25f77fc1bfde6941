package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/yaguaretech/builder/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger_ProductionWritesJSONAtConfiguredLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, &config.Config{Env: "production", LogLevel: "warn"})

	l.Info().Msg("dropped")
	l.Warn().Str("module", "db").Msg("kept")

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("expected exactly one JSON line, got %q: %v", buf.String(), err)
	}
	if line["message"] != "kept" || line["level"] != "warn" || line["module"] != "db" {
		t.Errorf("unexpected line: %v", line)
	}
}

func TestNewLogger_DevelopmentIsConsole(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, &config.Config{Env: "development"})

	l.Info().Msg("hello")

	if json.Valid(bytes.TrimSpace(buf.Bytes())) {
		t.Errorf("expected console output, got JSON %q", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("hello")) {
		t.Errorf("message missing from %q", buf.String())
	}
}
