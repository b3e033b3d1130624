package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultPort          = "8080"
	defaultPresetBackend = "file"
	defaultPresetDir     = "presets"
	defaultDBPath        = "./presets.db"
	defaultLogLevel      = "info"
	defaultDefaultsPath  = "calculator.toml"
)

// Preset storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Port          string
	PresetBackend string
	PresetDir     string
	DBPath        string
	LogLevel      string
	DefaultsPath  string

	Warnings []string
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// A missing .env is fine; production injects real environment variables.
	_ = godotenv.Load(".env")

	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() Config {
	cfg := Config{
		Port:          os.Getenv("PORT"),
		PresetBackend: strings.ToLower(strings.TrimSpace(os.Getenv("PRESET_BACKEND"))),
		PresetDir:     os.Getenv("PRESET_DIR"),
		DBPath:        os.Getenv("DB_PATH"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		DefaultsPath:  os.Getenv("DEFAULTS_PATH"),
	}

	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.PresetDir == "" {
		cfg.PresetDir = defaultPresetDir
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.DefaultsPath == "" {
		cfg.DefaultsPath = defaultDefaultsPath
	}

	switch cfg.PresetBackend {
	case "":
		cfg.PresetBackend = defaultPresetBackend
	case BackendFile, BackendSQLite:
	default:
		cfg.Warnings = append(cfg.Warnings, "unknown PRESET_BACKEND "+cfg.PresetBackend+", using "+defaultPresetBackend)
		cfg.PresetBackend = defaultPresetBackend
	}

	return cfg
}
