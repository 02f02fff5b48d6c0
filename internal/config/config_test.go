package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg := Load()
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Errorf("PollInterval = %v, want 2s", cfg.PollInterval)
	}
	if cfg.MaxPollAttempts != 900 {
		t.Errorf("MaxPollAttempts = %d, want 900", cfg.MaxPollAttempts)
	}
	if cfg.AutoSummarize {
		t.Error("AutoSummarize should default to false")
	}
	if cfg.OllamaBaseURL != "" {
		t.Errorf("OllamaBaseURL = %q, want unset", cfg.OllamaBaseURL)
	}
	if cfg.WhisperModel != "small" {
		t.Errorf("WhisperModel = %q, want small", cfg.WhisperModel)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("POLL_INTERVAL", "500ms")
	t.Setenv("MAX_POLL_ATTEMPTS", "10")
	t.Setenv("AUTO_SUMMARIZE", "true")
	t.Setenv("HEPH_BASE_URL", "https://heph.example.com")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg := Load()
	if cfg.Port != 9090 {
		t.Errorf("Port = %d", cfg.Port)
	}
	if cfg.PollInterval != 500*time.Millisecond {
		t.Errorf("PollInterval = %v", cfg.PollInterval)
	}
	if cfg.MaxPollAttempts != 10 {
		t.Errorf("MaxPollAttempts = %d", cfg.MaxPollAttempts)
	}
	if !cfg.AutoSummarize {
		t.Error("AutoSummarize = false, want true")
	}
	if cfg.HephBaseURL != "https://heph.example.com" {
		t.Errorf("HephBaseURL = %q", cfg.HephBaseURL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example.com" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoadBadPollInterval(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("POLL_INTERVAL", "garbage")

	if cfg := Load(); cfg.PollInterval != 2*time.Second {
		t.Errorf("PollInterval = %v, want 2s fallback", cfg.PollInterval)
	}
}
