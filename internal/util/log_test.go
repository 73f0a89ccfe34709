package util

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewLoggerLevels(t *testing.T) {
	if got := NewLogger("debug").GetLevel(); got != zerolog.DebugLevel {
		t.Fatalf("expected debug level, got %v", got)
	}
	if got := NewLogger(" WARN ").GetLevel(); got != zerolog.WarnLevel {
		t.Fatalf("level parsing should trim and lowercase, got %v", got)
	}
	if got := NewLogger("nonsense").GetLevel(); got != zerolog.InfoLevel {
		t.Fatalf("unknown level should fall back to info, got %v", got)
	}
}

func TestNewLoggerToWrites(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerTo(&buf, "info")
	log.Info().Str("k", "v").Msg("hello")
	out := buf.String()
	if !strings.Contains(out, `"hello"`) || !strings.Contains(out, `"k":"v"`) {
		t.Fatalf("unexpected log output: %s", out)
	}
	if !strings.Contains(out, `"time"`) {
		t.Fatalf("logger should stamp entries: %s", out)
	}
}
