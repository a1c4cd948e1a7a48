// Package config loads and persists the server's YAML configuration file,
// following the same load-or-create-default convention the rest of this
// codebase uses for on-disk settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the file name written under a data directory.
const ConfigFileName = "config.yaml"

// Config is the server's full runtime configuration.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	Port       int    `yaml:"port"`
	DataDir    string `yaml:"data_dir"`
	LogLevel   string `yaml:"log_level"`
}

// DefaultConfig returns sane defaults: listen on every interface, port
// 8000, data under the user's home directory, info-level logging.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr: "0.0.0.0",
		Port:       8000,
		DataDir:    "~/.swapcoordd",
		LogLevel:   "info",
	}
}

// ConfigPath returns the config file path under a data directory.
func ConfigPath(dataDir string) string {
	return filepath.Join(expandPath(dataDir), ConfigFileName)
}

// LoadConfig reads the config file under dataDir, creating one from
// defaults if it does not yet exist.
func LoadConfig(dataDir string) (*Config, error) {
	path := ConfigPath(dataDir)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.DataDir = dataDir
		if err := cfg.Save(path); err != nil {
			return nil, fmt.Errorf("write default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Save writes the config as YAML to path, creating its parent directory if
// needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	header := "# swapcoordd configuration\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ResolvePort applies the PORT environment variable override on top of the
// configured port, matching the listen-port override rule.
func (c *Config) ResolvePort() int {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			return port
		}
	}
	return c.Port
}

// ResolvedDataDir expands a leading "~" in DataDir.
func (c *Config) ResolvedDataDir() string {
	return expandPath(c.DataDir)
}

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}
