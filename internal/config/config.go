// Package config layers engine configuration from defaults,
// environment variables, an optional JSON file, and CLI flags, in
// that order of increasing precedence.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const configFileName = "config.json"

// Config holds the knobs the engine and its cmd/ wrapper recognize.
type Config struct {
	ClaudeHome string `json:"claude_home"`
	DBPath     string `json:"db_path"`

	// Host and Port exist for a future HTTP presentation layer,
	// which is out of scope here; nothing in this repo binds to
	// them, but they still flow through the same layered loader.
	Host string `json:"host"`
	Port int    `json:"port"`
}

// Default returns a Config with the engine's built-in defaults:
// ClaudeHome under the user's home directory, DBPath under
// ClaudeHome's data subdirectory.
func Default() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("determining home directory: %w", err)
	}
	claudeHome := filepath.Join(home, ".claude")
	return Config{
		ClaudeHome: claudeHome,
		DBPath:     filepath.Join(claudeHome, "data", "conversations.db"),
		Host:       "127.0.0.1",
		Port:       8080,
	}, nil
}

// LoadMinimal builds a Config from defaults, environment variables,
// and an optional config file, without touching CLI flags. Use this
// for subcommands that manage their own flag sets.
func LoadMinimal() (Config, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}
	cfg.loadEnv()
	if err := cfg.loadFile(); err != nil {
		return cfg, fmt.Errorf("loading config file: %w", err)
	}
	return cfg, nil
}

// Load builds a Config by layering defaults, environment, config
// file, and finally CLI flags. fs must already be parsed; only
// flags explicitly set by the caller override the lower layers.
func Load(fs *flag.FlagSet) (Config, error) {
	cfg, err := LoadMinimal()
	if err != nil {
		return cfg, err
	}
	applyFlags(&cfg, fs)
	return cfg, nil
}

func (c *Config) configPath() string {
	return filepath.Join(c.ClaudeHome, configFileName)
}

func (c *Config) loadEnv() {
	if v := os.Getenv("AGENTLOG_CLAUDE_HOME"); v != "" {
		c.ClaudeHome = v
		c.DBPath = filepath.Join(v, "data", "conversations.db")
	}
	if v := os.Getenv("AGENTLOG_DB_PATH"); v != "" {
		c.DBPath = v
	}
}

func (c *Config) loadFile() error {
	data, err := os.ReadFile(c.configPath())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var file struct {
		ClaudeHome string `json:"claude_home"`
		DBPath     string `json:"db_path"`
		Host       string `json:"host"`
		Port       int    `json:"port"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	if file.ClaudeHome != "" {
		c.ClaudeHome = file.ClaudeHome
	}
	if file.DBPath != "" {
		c.DBPath = file.DBPath
	}
	if file.Host != "" {
		c.Host = file.Host
	}
	if file.Port != 0 {
		c.Port = file.Port
	}
	return nil
}

// RegisterFlags registers the engine's CLI flags on fs. The caller
// must call fs.Parse before passing fs to Load.
func RegisterFlags(fs *flag.FlagSet) {
	fs.String("claude-home", "", "Root directory above projects/ (default: ~/.claude)")
	fs.String("db-path", "", "Path to the SQLite database file")
	fs.String("host", "127.0.0.1", "Host to bind to (reserved for a future HTTP layer)")
	fs.Int("port", 8080, "Port to listen on (reserved for a future HTTP layer)")
}

func applyFlags(cfg *Config, fs *flag.FlagSet) {
	if fs == nil {
		return
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "claude-home":
			cfg.ClaudeHome = f.Value.String()
		case "db-path":
			cfg.DBPath = f.Value.String()
		case "host":
			cfg.Host = f.Value.String()
		case "port":
			cfg.Port, _ = strconv.Atoi(f.Value.String())
		}
	})
}
