// Package config resolves draftboard settings from built-in defaults, an
// optional TOML file and DRAFTBOARD_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/draftboard/internal/autosave"
	"github.com/alexanderramin/draftboard/internal/llm"
	toml "github.com/pelletier/go-toml/v2"
)

const appDirName = ".draftboard"

// Config is the resolved application configuration.
type Config struct {
	DBPath   string         `toml:"db_path"`
	Logging  LoggingConfig  `toml:"logging"`
	Debounce DebounceConfig `toml:"debounce"`
	LLM      llm.LLMConfig  `toml:"llm"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

// DebounceConfig holds the autosave quiet periods in milliseconds.
type DebounceConfig struct {
	TextMs       int `toml:"text_ms"`
	StructuralMs int `toml:"structural_ms"`
	CanvasMs     int `toml:"canvas_ms"`
}

// Default returns the built-in configuration.
func Default() (Config, error) {
	dir, err := DataDir()
	if err != nil {
		return Config{}, err
	}
	d := autosave.DefaultDelays()
	return Config{
		DBPath:  filepath.Join(dir, "draftboard.db"),
		Logging: LoggingConfig{Level: "warn"},
		Debounce: DebounceConfig{
			TextMs:       int(d.Text / time.Millisecond),
			StructuralMs: int(d.Structural / time.Millisecond),
			CanvasMs:     int(d.Canvas / time.Millisecond),
		},
		LLM: llm.DefaultConfig(),
	}, nil
}

// DataDir returns the base data directory for draftboard.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, appDirName), nil
}

// FilePath returns the config file location: $DRAFTBOARD_CONFIG when set,
// otherwise ~/.draftboard/config.toml.
func FilePath() (string, error) {
	if p := strings.TrimSpace(os.Getenv("DRAFTBOARD_CONFIG")); p != "" {
		return p, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load resolves the configuration. A missing config file is not an error.
func Load() (Config, error) {
	path, err := FilePath()
	if err != nil {
		return Config{}, err
	}
	return LoadFrom(path)
}

// LoadFrom resolves the configuration using the TOML file at path.
func LoadFrom(path string) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return Config{}, err
	}
	if err := readTOML(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the rest of the program cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("db_path must not be empty")
	}
	if c.Debounce.TextMs < 0 || c.Debounce.StructuralMs < 0 || c.Debounce.CanvasMs < 0 {
		return errors.New("debounce delays must not be negative")
	}
	if _, err := parseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// Delays converts the debounce settings for an autosave session.
func (c Config) Delays() autosave.Delays {
	return autosave.Delays{
		Text:       time.Duration(c.Debounce.TextMs) * time.Millisecond,
		Structural: time.Duration(c.Debounce.StructuralMs) * time.Millisecond,
		Canvas:     time.Duration(c.Debounce.CanvasMs) * time.Millisecond,
	}
}

// LogLevel returns the slog level for Logging.Level.
func (c Config) LogLevel() slog.Level {
	level, _ := parseLevel(c.Logging.Level)
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelWarn, nil
	}
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

func readTOML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return toml.Unmarshal(data, out)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DRAFTBOARD_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("DRAFTBOARD_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	applyMsEnv(&cfg.Debounce.TextMs, "DRAFTBOARD_TITLE_DEBOUNCE_MS")
	applyMsEnv(&cfg.Debounce.StructuralMs, "DRAFTBOARD_STRUCTURAL_DEBOUNCE_MS")
	applyMsEnv(&cfg.Debounce.CanvasMs, "DRAFTBOARD_CANVAS_DEBOUNCE_MS")
	llm.ApplyEnv(&cfg.LLM)
}

func applyMsEnv(dst *int, name string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 0 {
		*dst = n
	}
}
