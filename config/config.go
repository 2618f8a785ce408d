// Package config loads the viewer configuration: defaults, then an optional
// YAML file, then LOGVIEWER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"logviewer/utils"
)

// Config scopes every filesystem operation to RootDir.
type Config struct {
	RootDir      string `yaml:"root_dir"`
	ListenAddr   string `yaml:"listen_addr"`
	StaticDir    string `yaml:"static_dir"`
	DefaultFile  string `yaml:"default_file"`
	DefaultLines int    `yaml:"default_lines"`
	MaxLines     int    `yaml:"max_lines"`
	LineFormat   string `yaml:"line_format"`
	LogLevel     string `yaml:"log_level"`
	LogFormat    string `yaml:"log_format"`

	// Collector listen addresses; empty disables the listener.
	UDPAddr string `yaml:"udp_addr"`
	TCPAddr string `yaml:"tcp_addr"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		RootDir:      "/var/log/remote",
		ListenAddr:   ":8080",
		DefaultFile:  "all-remote.log",
		DefaultLines: 100,
		MaxLines:     10000,
		LineFormat:   "rfc3164",
		LogLevel:     "info",
		LogFormat:    "console",
		UDPAddr:      ":5514",
		TCPAddr:      ":6514",
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment, in that order.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("open config %s: %w", path, err)
		}
		defer f.Close()

		if err := DecodeStrict(f, &cfg); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}

	cfg.ApplyEnv()
	return cfg, nil
}

// DecodeStrict decodes YAML from a reader and rejects any unknown fields.
// An empty document leaves out untouched.
func DecodeStrict(r io.Reader, out any) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from LOGVIEWER_* environment variables.
func (c *Config) ApplyEnv() {
	p := utils.EnvPrefix
	c.RootDir = utils.GetEnvString(p+"ROOT_DIR", c.RootDir)
	c.ListenAddr = utils.GetEnvString(p+"LISTEN_ADDR", c.ListenAddr)
	c.StaticDir = utils.GetEnvString(p+"STATIC_DIR", c.StaticDir)
	c.DefaultFile = utils.GetEnvString(p+"DEFAULT_FILE", c.DefaultFile)
	c.DefaultLines = utils.GetSanitizedEnvInt(p+"DEFAULT_LINES", c.DefaultLines)
	c.MaxLines = utils.GetSanitizedEnvInt(p+"MAX_LINES", c.MaxLines)
	c.LineFormat = utils.GetSanitizedEnvString(p+"LINE_FORMAT", c.LineFormat)
	c.LogLevel = utils.GetSanitizedEnvString(p+"LOG_LEVEL", c.LogLevel)
	c.LogFormat = utils.GetSanitizedEnvString(p+"LOG_FORMAT", c.LogFormat)
	c.UDPAddr = utils.GetEnvString(p+"UDP_ADDR", c.UDPAddr)
	c.TCPAddr = utils.GetEnvString(p+"TCP_ADDR", c.TCPAddr)
}
