package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/HendryAvila/designmem/internal/config"
	"github.com/HendryAvila/designmem/internal/logging"
)

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.NewWithWriter(config.LogConfig{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatal(err)
	}
	log.Debug("hidden")
	log.Info("session finalized", zap.Int("commands", 3))
	_ = log.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1 (debug filtered): %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if entry["msg"] != "session finalized" || entry["commands"] != float64(3) || entry["logger"] != "designmem" {
		t.Errorf("entry = %v", entry)
	}
}

func TestNewWithWriter_Console(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.NewWithWriter(config.LogConfig{Level: "debug", Format: "console"}, &buf)
	if err != nil {
		t.Fatal(err)
	}
	log.Debug("dependency references unknown node")
	_ = log.Sync()
	if !strings.Contains(buf.String(), "DEBUG") {
		t.Errorf("console output = %q", buf.String())
	}
}

func TestNewWithWriter_Invalid(t *testing.T) {
	if _, err := logging.NewWithWriter(config.LogConfig{Level: "loud"}, &bytes.Buffer{}); err == nil {
		t.Error("expected level error")
	}
	if _, err := logging.NewWithWriter(config.LogConfig{Level: "info", Format: "xml"}, &bytes.Buffer{}); err == nil {
		t.Error("expected format error")
	}
}
