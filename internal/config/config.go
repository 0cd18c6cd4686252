package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultServerURL     = "http://localhost:5000"
	DefaultPort          = 5000
	DefaultMediaRoot     = "./static"
	DefaultPrefsBackend  = "file"
	DefaultShufflePolicy = "any"
	DefaultLyricsLang    = "jp"
	DefaultMPRISName     = "org.mpris.MediaPlayer2.encore"
	HTTPTimeoutSeconds   = 10
	PollInterval         = 100 * time.Millisecond
	DriftThreshold       = 150 * time.Millisecond
	appDirName           = "encore"
)

type Config struct {
	MediaRoot     string
	ServerURL     string
	Port          int
	CatalogFile   string
	LyricsFile    string
	PrefsBackend  string
	PrefsPath     string
	ShufflePolicy string
	VideoDuration time.Duration
	LyricsLang    string
	MPRIS         bool
	Notify        bool
	SessionSecret string
	LogLevel      slog.Level
}

// Load reads an optional .env from the working directory, then the environment.
// Real environment variables always win over .env entries.
func Load() *Config {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnvOrDefault("PORT", strconv.Itoa(DefaultPort)))
	if err != nil || port <= 0 || port > 65535 {
		port = DefaultPort
	}

	videoDuration, err := time.ParseDuration(getEnvOrDefault("ENCORE_VIDEO_DURATION", "0s"))
	if err != nil || videoDuration < 0 {
		videoDuration = 0
	}

	return &Config{
		MediaRoot:     getEnvOrDefault("ENCORE_MEDIA_ROOT", DefaultMediaRoot),
		ServerURL:     strings.TrimRight(getEnvOrDefault("ENCORE_SERVER_URL", DefaultServerURL), "/"),
		Port:          port,
		CatalogFile:   os.Getenv("ENCORE_CATALOG_FILE"),
		LyricsFile:    os.Getenv("ENCORE_LYRICS_FILE"),
		PrefsBackend:  getEnvOrDefault("ENCORE_PREFS_BACKEND", DefaultPrefsBackend),
		PrefsPath:     os.Getenv("ENCORE_PREFS_PATH"),
		ShufflePolicy: getEnvOrDefault("ENCORE_SHUFFLE_POLICY", DefaultShufflePolicy),
		VideoDuration: videoDuration,
		LyricsLang:    getEnvOrDefault("ENCORE_LYRICS_LANG", DefaultLyricsLang),
		MPRIS:         parseBool(getEnvOrDefault("ENCORE_MPRIS", "true")),
		Notify:        parseBool(getEnvOrDefault("ENCORE_NOTIFY", "false")),
		SessionSecret: os.Getenv("ENCORE_SESSION_SECRET"),
		LogLevel:      ParseLevel(getEnvOrDefault("ENCORE_LOG_LEVEL", "info")),
	}
}

// ConfigDir is where persisted preferences live.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appDirName), nil
}

// StateDir holds the log file written while the TUI owns the terminal.
func StateDir() (string, error) {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", appDirName), nil
}

func getEnvOrDefault(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
