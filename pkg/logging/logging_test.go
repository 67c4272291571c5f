package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/JaimeStill/corretora/pkg/logging"
)

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&logging.Config{Level: logging.LevelInfo, Format: logging.FormatJSON}, &buf)

	logger.Debug("hidden")
	logger.Info("record created", "collection", "notificacoes")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1:\n%s", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if entry["service"] != "corretora" || entry["collection"] != "notificacoes" {
		t.Errorf("entry = %v", entry)
	}
}

func TestNewWithWriter_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&logging.Config{Level: logging.LevelDebug, Format: logging.FormatText}, &buf)

	logger.Debug("listener connected")

	if !strings.Contains(buf.String(), "msg=\"listener connected\"") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestLevel_ToSlogLevel(t *testing.T) {
	tests := []struct {
		level logging.Level
		want  slog.Level
	}{
		{logging.LevelDebug, slog.LevelDebug},
		{logging.LevelInfo, slog.LevelInfo},
		{logging.LevelWarn, slog.LevelWarn},
		{logging.LevelError, slog.LevelError},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := tt.level.ToSlogLevel(); got != tt.want {
			t.Errorf("%q.ToSlogLevel() = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestConfig_Finalize(t *testing.T) {
	t.Setenv("TEST_LOGGING_LEVEL", "DEBUG")

	cfg := &logging.Config{}
	if err := cfg.Finalize(&logging.Env{Level: "TEST_LOGGING_LEVEL"}); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if cfg.Level != logging.LevelDebug || cfg.Format != logging.FormatText {
		t.Errorf("cfg = %+v", cfg)
	}

	bad := &logging.Config{Format: "xml"}
	if err := bad.Finalize(nil); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := &logging.Config{Level: logging.LevelInfo, Format: logging.FormatText}
	cfg.Merge(&logging.Config{Format: logging.FormatJSON})

	if cfg.Level != logging.LevelInfo || cfg.Format != logging.FormatJSON {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestNewWithWriter_Redacts(t *testing.T) {
	cfg := &logging.Config{Format: logging.FormatJSON}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	var buf bytes.Buffer
	logger := logging.NewWithWriter(cfg, &buf)
	logger.Info("segurado recebido",
		"CPF", "123.456.789-00",
		slog.Group("request", "authorization", "Bearer abc"),
		"collection", "seguro_incendio",
	)

	out := buf.String()
	if strings.Contains(out, "123.456.789-00") || strings.Contains(out, "Bearer abc") {
		t.Fatalf("sensitive value logged: %s", out)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if entry["CPF"] != "[redacted]" || entry["collection"] != "seguro_incendio" {
		t.Errorf("entry = %v", entry)
	}
}

func TestConfig_RedactOverrides(t *testing.T) {
	t.Setenv("TEST_LOGGING_REDACT", "cpf, rg")

	cfg := &logging.Config{}
	if err := cfg.Finalize(&logging.Env{Redact: "TEST_LOGGING_REDACT"}); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(cfg.Redact) != 2 || cfg.Redact[0] != "cpf" || cfg.Redact[1] != "rg" {
		t.Errorf("Redact = %v", cfg.Redact)
	}

	none := &logging.Config{Redact: []string{}}
	if err := none.Finalize(nil); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	var buf bytes.Buffer
	logging.NewWithWriter(none, &buf).Info("x", "token", "abc")
	if !strings.Contains(buf.String(), "token=abc") {
		t.Errorf("empty redact list still masked: %s", buf.String())
	}
}
