package logger

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"
)

type testEvent struct {
	level zapcore.Level
	msg   string
}

func (e testEvent) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("msg", e.msg)
	return nil
}

func (e testEvent) LogLevel() zapcore.Level { return e.level }
func (e testEvent) LogMessage() string      { return e.msg }

func TestNew(t *testing.T) {
	t.Run("rejects unknown level", func(t *testing.T) {
		if _, err := New(Config{Level: "loud", Format: "json"}); err == nil {
			t.Error("Expected error for unknown level")
		}
	})

	t.Run("console format", func(t *testing.T) {
		log, err := New(Config{Level: "debug", Format: "console"})
		if err != nil {
			t.Fatalf("Failed to create logger: %v", err)
		}
		if !log.Core().Enabled(zapcore.DebugLevel) {
			t.Error("Debug level should be enabled")
		}
	})

	t.Run("file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "redact.log")
		log, err := New(Config{Level: "warn", Format: "json", File: &FileConfig{Enabled: true, Path: path}})
		if err != nil {
			t.Fatalf("Failed to create logger: %v", err)
		}
		if log.Core().Enabled(zapcore.InfoLevel) {
			t.Error("Info level should be disabled at warn")
		}
	})

	t.Run("unwritable file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "redact.log")
		if _, err := New(Config{Level: "info", File: &FileConfig{Enabled: true, Path: path}}); err == nil {
			t.Error("Expected error for unwritable log file")
		}
	})
}

func TestLogEvents(t *testing.T) {
	log := NewNop().WithComponent("redaction").WithDocument("example.json")
	log.LogEvents([]Event{
		testEvent{level: zapcore.WarnLevel, msg: "mismatch"},
		testEvent{level: zapcore.DebugLevel, msg: "applied"},
	})
}
