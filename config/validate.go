package config

import (
	"fmt"

	"logviewer/formats"
)

// Validate checks the configuration for structural correctness.
func Validate(c Config) []error {
	var errs []error

	if c.RootDir == "" {
		errs = append(errs, fmt.Errorf("root_dir is required"))
	}

	if c.DefaultLines <= 0 {
		errs = append(errs, fmt.Errorf("default_lines must be positive, got %d", c.DefaultLines))
	}

	if c.MaxLines <= 0 {
		errs = append(errs, fmt.Errorf("max_lines must be positive, got %d", c.MaxLines))
	} else if c.DefaultLines > c.MaxLines {
		errs = append(errs, fmt.Errorf("default_lines (%d) exceeds max_lines (%d)", c.DefaultLines, c.MaxLines))
	}

	if _, err := formats.ParserByName(c.LineFormat); err != nil {
		errs = append(errs, fmt.Errorf("line_format: %w", err))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level must be debug, info, warn, or error; got %q", c.LogLevel))
	}

	switch c.LogFormat {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be console or json; got %q", c.LogFormat))
	}

	return errs
}
