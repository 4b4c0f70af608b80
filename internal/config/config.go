package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// NodeID styles for the in-memory tree.
const (
	NodeIDsUUID = "uuid"
	NodeIDsSeq  = "seq"
)

// Config is the contents of config.toml.
type Config struct {
	Log     LogConfig     `toml:"log"`
	Tree    TreeConfig    `toml:"tree"`
	Watch   WatchConfig   `toml:"watch"`
	Outline OutlineConfig `toml:"outline"`
}

// LogConfig controls the rotating log file.
type LogConfig struct {
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// TreeConfig controls node creation.
type TreeConfig struct {
	PageIcon string `toml:"page_icon"`
	NodeIDs  string `toml:"node_ids"` // "uuid" or "seq"
}

// WatchConfig controls snapshot reloading.
type WatchConfig struct {
	DebounceMS       int     `toml:"debounce_ms"`
	MaxReloadsPerSec float64 `toml:"max_reloads_per_sec"`
}

// OutlineConfig controls text output.
type OutlineConfig struct {
	TitleWidth int `toml:"title_width"`
}

// GetDir returns the ferndeck data directory (~/.ferndeck).
func GetDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".ferndeck"), nil
}

// DefaultPath returns ~/.ferndeck/config.toml.
func DefaultPath() (string, error) {
	dir, err := GetDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Defaults returns the configuration used when no file exists.
func Defaults() *Config {
	cfg := &Config{}
	cfg.normalize()
	return cfg
}

// Load reads path. A missing file yields the defaults; empty or invalid
// values are replaced by their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.normalize()
	return &cfg, nil
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("# ferndeck configuration\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}

func (c *Config) normalize() {
	if c.Log.File == "" {
		if dir, err := GetDir(); err == nil {
			c.Log.File = filepath.Join(dir, "logs", "ferndeck.log")
		}
	}
	if c.Log.MaxSizeMB <= 0 {
		c.Log.MaxSizeMB = 10
	}
	if c.Log.MaxBackups < 0 {
		c.Log.MaxBackups = 0
	} else if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
	if c.Log.MaxAgeDays < 0 {
		c.Log.MaxAgeDays = 0
	}

	if strings.TrimSpace(c.Tree.PageIcon) == "" {
		c.Tree.PageIcon = "fff-page"
	}
	c.Tree.NodeIDs = strings.ToLower(strings.TrimSpace(c.Tree.NodeIDs))
	switch c.Tree.NodeIDs {
	case NodeIDsUUID, NodeIDsSeq:
	default:
		c.Tree.NodeIDs = NodeIDsUUID
	}

	if c.Watch.DebounceMS <= 0 {
		c.Watch.DebounceMS = 100
	}
	if c.Watch.MaxReloadsPerSec <= 0 {
		c.Watch.MaxReloadsPerSec = 2
	}

	if c.Outline.TitleWidth <= 0 {
		c.Outline.TitleWidth = 48
	}
}
