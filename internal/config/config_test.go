package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.ServerPort)
	}
	if cfg.JWTExpiry != 24*time.Hour {
		t.Fatalf("expected 24h expiry, got %v", cfg.JWTExpiry)
	}
	if cfg.EventBatchTimeout != 2*time.Second {
		t.Fatalf("expected 2s batch timeout, got %v", cfg.EventBatchTimeout)
	}
	if cfg.AllowedOrigins != nil {
		t.Fatalf("expected allow-all origins, got %v", cfg.AllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("RANDOM_SEED", "42")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("EVENT_BATCH_TIMEOUT", "500ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerPort != "9090" || cfg.RandomSeed != 42 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "https://a.example" {
		t.Fatalf("expected trimmed origins, got %v", cfg.AllowedOrigins)
	}
	if cfg.EventBatchTimeout != 500*time.Millisecond {
		t.Fatalf("expected 500ms, got %v", cfg.EventBatchTimeout)
	}
}

func TestLoadError(t *testing.T) {
	t.Setenv("BCRYPT_COST", "not-an-int")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestChannelKeys(t *testing.T) {
	if got := ChannelKey.ExamMonitorChannel("e1"); got != "exam:e1:monitor" {
		t.Fatalf("unexpected channel %q", got)
	}
	if got := ChannelKey.SessionMonitorChannel("s1"); got != "session:s1:monitor" {
		t.Fatalf("unexpected channel %q", got)
	}
}
