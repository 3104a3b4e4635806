package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/busybox42/edkey/pkg/crypto"
	"github.com/busybox42/edkey/pkg/keyenc"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds the CLI settings read from a YAML file.
type Config struct {
	KeyDir      string `yaml:"key_dir"`
	Encoding    string `yaml:"encoding"`
	VerifyRules string `yaml:"verify_rules"`
	LogLevel    string `yaml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		KeyDir:      defaultKeyDir(),
		Encoding:    keyenc.Hex.String(),
		VerifyRules: crypto.RulesRFC8032.String(),
		LogLevel:    logrus.InfoLevel.String(),
	}
}

func defaultKeyDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = os.Getenv("HOME")
	}
	return filepath.Join(home, ".edkey")
}

// Load reads a YAML file over the defaults. ${VAR} references are expanded
// from the environment before parsing.
func Load(path string) (Config, error) {
	// #nosec G304 -- path is operator-provided config path.
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	expanded := os.ExpandEnv(string(raw))
	expanded = strings.ReplaceAll(expanded, "\r\n", "\n")

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that every field is set to a value the CLI understands.
func (c Config) Validate() error {
	if strings.TrimSpace(c.KeyDir) == "" {
		return fmt.Errorf("key_dir is required")
	}
	if _, err := c.Format(); err != nil {
		return fmt.Errorf("encoding: %w", err)
	}
	if _, err := c.Rules(); err != nil {
		return fmt.Errorf("verify_rules: %w", err)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Format returns the parsed encoding.
func (c Config) Format() (keyenc.Format, error) {
	return keyenc.ParseFormat(c.Encoding)
}

// Rules returns the parsed verification rules.
func (c Config) Rules() (crypto.Rules, error) {
	return crypto.ParseRules(c.VerifyRules)
}

// Level returns the parsed log level; empty means info.
func (c Config) Level() (logrus.Level, error) {
	if strings.TrimSpace(c.LogLevel) == "" {
		return logrus.InfoLevel, nil
	}
	return logrus.ParseLevel(c.LogLevel)
}
