package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestCriticalLevelName(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelInfo, "text")

	log.Critical("wallet drift", "community_id", "comm-1")
	if !strings.Contains(buf.String(), "level=CRITICAL") {
		t.Fatalf("expected CRITICAL level, got %q", buf.String())
	}
}

func TestBusinessAndInternalErrors(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelInfo, "json").With("component", "test")

	log.BusinessError("vote rejected", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected nil error to be skipped, got %q", buf.String())
	}

	log.BusinessError("vote rejected", errors.New("already voted"), "order_id", "o-1")
	if !strings.Contains(buf.String(), `"level":"WARN"`) || !strings.Contains(buf.String(), `"component":"test"`) {
		t.Fatalf("expected warn with component, got %q", buf.String())
	}

	buf.Reset()
	log.InternalError("publish failed", errors.New("broker down"))
	if !strings.Contains(buf.String(), `"level":"ERROR"`) || !strings.Contains(buf.String(), "broker down") {
		t.Fatalf("expected error entry, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		value string
		env   string
		want  slog.Level
	}{
		{value: "", env: "development", want: slog.LevelDebug},
		{value: "", env: "production", want: slog.LevelInfo},
		{value: "WARN", env: "production", want: slog.LevelWarn},
		{value: "fatal", env: "production", want: LevelCritical},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.value, tt.env); got != tt.want {
			t.Fatalf("parseLevel(%q, %q): expected %v, got %v", tt.value, tt.env, tt.want, got)
		}
	}
}

func TestNopDiscards(t *testing.T) {
	Nop().Critical("ignored")
}
