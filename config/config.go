// Package config handles loading the generator configuration from YAML or
// TOML files, a .env file, and environment variable overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/legwork/qrcodes/qr"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LEGWORK_QR_"

// Config holds all application configuration values.
type Config struct {
	Payload    string `yaml:"payload" toml:"payload"`
	OutputDir  string `yaml:"output_dir" toml:"output_dir"`
	Filename   string `yaml:"filename" toml:"filename"`
	Level      string `yaml:"level" toml:"level"`
	ModuleSize int    `yaml:"module_size" toml:"module_size"`
	Border     bool   `yaml:"border" toml:"border"`
	LogLevel   string `yaml:"log_level" toml:"log_level"`
	HistoryDB  string `yaml:"history_db" toml:"history_db"`
	Port       int    `yaml:"port" toml:"port"`
}

// defaults returns a Config that reproduces the leg-work landing page code.
func defaults() *Config {
	return &Config{
		Payload:    qr.DefaultPayload,
		OutputDir:  qr.DefaultOutputDir,
		Filename:   qr.DefaultFilename,
		Level:      "medium",
		ModuleSize: qr.DefaultModuleSize,
		Border:     true,
		LogLevel:   "info",
		Port:       8556,
	}
}

// Load reads configuration from the file at path, falling back to defaults
// if the file does not exist. Files ending in .toml are parsed as TOML,
// everything else as YAML. LEGWORK_QR_* variables from the environment, or
// failing that from a .env file in the working directory, override file and
// default values. The process environment is never modified.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		} else if err := decode(path, data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg, readDotEnv(".env")); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		_, err := toml.Decode(string(data), cfg)
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// readDotEnv returns the LEGWORK_QR_* entries of the .env file at path. The
// file may belong to another tool, so other keys are ignored and a file that
// does not parse is logged and skipped.
func readDotEnv(path string) map[string]string {
	vars, err := godotenv.Read(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("ignoring unreadable .env", "path", path, "error", err)
		}
		return nil
	}
	ours := make(map[string]string)
	for k, v := range vars {
		if strings.HasPrefix(k, EnvPrefix) {
			ours[k] = v
		}
	}
	return ours
}

// applyEnvOverrides applies LEGWORK_QR_* overrides to cfg. Real environment
// variables win over entries from dotenv.
func applyEnvOverrides(cfg *Config, dotenv map[string]string) error {
	lookup := func(name string) (string, bool) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			return v, true
		}
		v, ok := dotenv[EnvPrefix+name]
		return v, ok
	}

	if v, ok := lookup("PAYLOAD"); ok {
		cfg.Payload = v
	}
	if v, ok := lookup("OUTPUT_DIR"); ok && v != "" {
		cfg.OutputDir = v
	}
	if v, ok := lookup("FILENAME"); ok && v != "" {
		cfg.Filename = v
	}
	if v, ok := lookup("LEVEL"); ok && v != "" {
		cfg.Level = v
	}
	if v, ok := lookup("MODULE_SIZE"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sMODULE_SIZE: %w", EnvPrefix, err)
		}
		cfg.ModuleSize = n
	}
	if v, ok := lookup("BORDER"); ok {
		switch strings.ToLower(v) {
		case "true", "1", "yes":
			cfg.Border = true
		case "false", "0", "no":
			cfg.Border = false
		}
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookup("HISTORY_DB"); ok {
		cfg.HistoryDB = v
	}
	if v, ok := lookup("PORT"); ok && v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sPORT: %w", EnvPrefix, err)
		}
		cfg.Port = p
	}
	return nil
}

// Validate checks the fields that cannot be fixed up later.
func (c *Config) Validate() error {
	if c.Filename == "" {
		return fmt.Errorf("filename must not be empty")
	}
	if c.ModuleSize < 0 {
		return fmt.Errorf("module_size must not be negative, got %d", c.ModuleSize)
	}
	if _, err := qr.ParseLevel(c.Level); err != nil {
		return err
	}
	return nil
}

// Options converts the configuration into generator options.
func (c *Config) Options() (qr.Options, error) {
	level, err := qr.ParseLevel(c.Level)
	if err != nil {
		return qr.Options{}, err
	}
	return qr.Options{
		Payload:    c.Payload,
		OutputDir:  c.OutputDir,
		Filename:   c.Filename,
		Level:      level,
		ModuleSize: c.ModuleSize,
		Border:     c.Border,
	}, nil
}

// EnsureHistoryDir creates the directory holding the history database.
func (c *Config) EnsureHistoryDir() error {
	if c.HistoryDB == "" {
		return nil
	}
	dir := filepath.Dir(c.HistoryDB)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating history dir %s: %w", dir, err)
	}
	return nil
}
