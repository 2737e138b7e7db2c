package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the user settings for the xkcd CLI.
type Config struct {
	BaseURL      string
	CachePath    string
	CacheTTL     time.Duration
	Protocol     string
	Opener       string
	Theme        string
	ScaleUp      bool
	LogLevel     string
	LogFile      string
	ProbeTimeout time.Duration
}

const (
	defaultConfigPath   = "~/.config/xkcd/config.toml"
	defaultBaseURL      = "https://xkcd.com"
	defaultCacheTTL     = 24 * time.Hour
	defaultProtocol     = "auto"
	defaultTheme        = "Dracula"
	defaultLogLevel     = "warn"
	defaultProbeTimeout = 200 * time.Millisecond
	cacheDirName        = "xkcd-cli"
	cacheFileName       = "cache.json"
)

var validProtocols = map[string]bool{"auto": true, "kitty": true, "iterm": true, "sixel": true, "none": true}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		BaseURL:      defaultBaseURL,
		CachePath:    DefaultCachePath(),
		CacheTTL:     defaultCacheTTL,
		Protocol:     defaultProtocol,
		Theme:        defaultTheme,
		ScaleUp:      true,
		LogLevel:     defaultLogLevel,
		ProbeTimeout: defaultProbeTimeout,
	}
}

// DefaultCachePath returns <user cache dir>/xkcd-cli/cache.json.
func DefaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = mustExpand("~/.cache")
	}
	return filepath.Join(dir, cacheDirName, cacheFileName)
}

// DefaultPath returns the config file location used when none is given.
func DefaultPath() string {
	return mustExpand(defaultConfigPath)
}

// Load reads the config file, falling back to defaults when it is missing.
// Fields that are absent or blank keep their default values.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		BaseURL        string `toml:"base_url"`
		CachePath      string `toml:"cache_path"`
		CacheTTL       string `toml:"cache_ttl"`
		Protocol       string `toml:"protocol"`
		Opener         string `toml:"opener"`
		Theme          string `toml:"theme"`
		ScaleUp        *bool  `toml:"terminal_scale_up"`
		LogLevel       string `toml:"log_level"`
		LogFile        string `toml:"log_file"`
		ProbeTimeoutMS int    `toml:"probe_timeout_ms"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.BaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(raw.CachePath); v != "" {
		cfg.CachePath, err = expandPath(v)
		if err != nil {
			return Config{}, fmt.Errorf("cache_path: %w", err)
		}
	}
	if v := strings.TrimSpace(raw.CacheTTL); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil || ttl <= 0 {
			return Config{}, fmt.Errorf("cache_ttl %q: must be a positive duration", v)
		}
		cfg.CacheTTL = ttl
	}
	if v := strings.ToLower(strings.TrimSpace(raw.Protocol)); v != "" {
		if !validProtocols[v] {
			return Config{}, fmt.Errorf("protocol %q: want one of auto, kitty, iterm, sixel, none", v)
		}
		cfg.Protocol = v
	}
	cfg.Opener = strings.TrimSpace(raw.Opener)
	if v := strings.TrimSpace(raw.Theme); v != "" {
		cfg.Theme = v
	}
	if raw.ScaleUp != nil {
		cfg.ScaleUp = *raw.ScaleUp
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile, err = expandPath(v)
		if err != nil {
			return Config{}, fmt.Errorf("log_file: %w", err)
		}
	}
	if raw.ProbeTimeoutMS > 0 {
		cfg.ProbeTimeout = time.Duration(raw.ProbeTimeoutMS) * time.Millisecond
	}

	return cfg, nil
}

// ExpandPath resolves a user supplied path: "~" is the home directory and
// relative paths become absolute.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultPath(), nil
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
