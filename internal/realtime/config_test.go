package realtime

import (
	"testing"
	"time"
)

func TestConfig_Finalize_Defaults(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}
	if cfg.BufferSize != 64 {
		t.Errorf("BufferSize = %d, want 64", cfg.BufferSize)
	}
	if d := cfg.ReconnectDelayDuration(); d != 2*time.Second {
		t.Errorf("ReconnectDelayDuration() = %v, want 2s", d)
	}
}

func TestConfig_Finalize_EnvOverrides(t *testing.T) {
	t.Setenv("TEST_REALTIME_BUFFER", "8")
	t.Setenv("TEST_REALTIME_DELAY", "500ms")

	cfg := &Config{}
	env := &Env{BufferSize: "TEST_REALTIME_BUFFER", ReconnectDelay: "TEST_REALTIME_DELAY"}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}
	if cfg.BufferSize != 8 {
		t.Errorf("BufferSize = %d, want 8", cfg.BufferSize)
	}
	if d := cfg.ReconnectDelayDuration(); d != 500*time.Millisecond {
		t.Errorf("ReconnectDelayDuration() = %v, want 500ms", d)
	}
}

func TestConfig_Finalize_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"negative buffer", Config{BufferSize: -1}},
		{"bad delay", Config{ReconnectDelay: "soon"}},
		{"negative delay", Config{ReconnectDelay: "-1s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			if err := cfg.Finalize(nil); err == nil {
				t.Error("Finalize() error = nil, want error")
			}
		})
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := &Config{BufferSize: 64, ReconnectDelay: "2s"}
	cfg.Merge(&Config{ReconnectDelay: "5s"})
	if cfg.BufferSize != 64 || cfg.ReconnectDelay != "5s" {
		t.Errorf("Merge() = %+v", cfg)
	}
}
