package config

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{
		"PORT", "ENCORE_MEDIA_ROOT", "ENCORE_SERVER_URL", "ENCORE_PREFS_BACKEND",
		"ENCORE_SHUFFLE_POLICY", "ENCORE_VIDEO_DURATION", "ENCORE_MPRIS", "ENCORE_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != DefaultPort {
		t.Errorf("Port = %d, expected %d", cfg.Port, DefaultPort)
	}
	if cfg.MediaRoot != DefaultMediaRoot {
		t.Errorf("MediaRoot = %q, expected %q", cfg.MediaRoot, DefaultMediaRoot)
	}
	if cfg.PrefsBackend != DefaultPrefsBackend {
		t.Errorf("PrefsBackend = %q, expected %q", cfg.PrefsBackend, DefaultPrefsBackend)
	}
	if !cfg.MPRIS {
		t.Error("MPRIS should default to enabled")
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, expected info", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "8081")
	t.Setenv("ENCORE_SERVER_URL", "http://example.test:9000/")
	t.Setenv("ENCORE_VIDEO_DURATION", "3m5s")
	t.Setenv("ENCORE_MPRIS", "off")
	t.Setenv("ENCORE_LOG_LEVEL", "debug")

	cfg := Load()
	if cfg.Port != 8081 {
		t.Errorf("Port = %d, expected 8081", cfg.Port)
	}
	if cfg.ServerURL != "http://example.test:9000" {
		t.Errorf("ServerURL = %q, trailing slash should be trimmed", cfg.ServerURL)
	}
	if cfg.VideoDuration != 3*time.Minute+5*time.Second {
		t.Errorf("VideoDuration = %v", cfg.VideoDuration)
	}
	if cfg.MPRIS {
		t.Error("MPRIS should be disabled")
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, expected debug", cfg.LogLevel)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "not-a-port")
	t.Setenv("ENCORE_VIDEO_DURATION", "-5s")

	cfg := Load()
	if cfg.Port != DefaultPort {
		t.Errorf("Port = %d, expected fallback %d", cfg.Port, DefaultPort)
	}
	if cfg.VideoDuration != 0 {
		t.Errorf("VideoDuration = %v, expected 0", cfg.VideoDuration)
	}
}

func TestConfigDirHonorsXDG(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if dir != filepath.Join(base, "encore") {
		t.Errorf("ConfigDir() = %q", dir)
	}
}
