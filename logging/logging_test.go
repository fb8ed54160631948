package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "debug", want: DebugLevel},
		{in: "INFO", want: InfoLevel},
		{in: "", want: InfoLevel},
		{in: "warning", want: WarnLevel},
		{in: "error", want: ErrorLevel},
		{in: "fatal", want: FatalLevel},
		{in: "loud", want: InfoLevel, wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDefaultLoggerFieldsAndLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWriterLogger(&buf)
	child := logger.WithFields(Fields{"component": "analyzer"})

	child.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug message written at info level: %q", buf.String())
	}

	child.Warn("shift degraded", Fields{"semitones": 3})
	out := buf.String()
	for _, want := range []string{"[WARN] shift degraded", "component=analyzer", "semitones=3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestDefaultLoggerFatalUsesExitHook(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWriterLogger(&buf)
	code := -1
	logger.exit = func(c int) { code = c }

	logger.Fatal(errors.New("boom"), "giving up")
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(buf.String(), "giving up: boom") {
		t.Errorf("fatal output = %q", buf.String())
	}
}

func TestWithContextPicksUpFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := ContextWithFields(context.Background(), Fields{"session_id": "abc"})
	NewWriterLogger(&buf).WithContext(ctx).Info("loaded")

	if !strings.Contains(buf.String(), "session_id=abc") {
		t.Errorf("output %q missing context field", buf.String())
	}
}

func TestLogrusLoggerJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogrusLogger(&buf, true)
	logger.WithFields(Fields{"component": "session"}).Error(errors.New("bad header"), "decode failed")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "decode failed" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["component"] != "session" {
		t.Errorf("component = %v", entry["component"])
	}
	if entry["error"] != "bad header" {
		t.Errorf("error = %v", entry["error"])
	}
}

func TestLogrusLoggerLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogrusLogger(&buf, false)
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug written at info level: %q", buf.String())
	}

	logger.SetLevel(DebugLevel)
	logger.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("debug missing after SetLevel: %q", buf.String())
	}
}

func TestNoOpLogger(t *testing.T) {
	t.Parallel()

	var l Logger = &NoOpLogger{}
	l = l.WithFields(Fields{"a": 1}).WithContext(context.Background())
	l.Info("nothing")
	l.Error(errors.New("x"), "nothing")
}
